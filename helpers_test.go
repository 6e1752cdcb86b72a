package vptree

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

const floatTol = 1e-10

// scenarioPoints is the small fixture used across the query tests.
var scenarioPoints = [][]float64{{0, 0}, {1, 0}, {1, 1}, {5, 5}}

func seededConfig(seed uint64) Config {
	cfg := DefaultConfig()
	cfg.Source = rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	return cfg
}

func mustBuild(t testing.TB, points [][]float64, cfg Config) *Tree {
	t.Helper()
	tree, err := Build(points, cfg)
	require.NoError(t, err)
	return tree
}

func randomPoints(seed uint64, n, dims int) [][]float64 {
	rng := rand.New(rand.NewPCG(seed, seed))
	pts := make([][]float64, n)
	for i := range pts {
		pts[i] = make([]float64, dims)
		for j := range pts[i] {
			pts[i][j] = rng.Float64()
		}
	}
	return pts
}

func pointKey(p []float64) string { return fmt.Sprint(p) }

// distinctPoints drops repeated coordinates, keeping the first occurrence.
func distinctPoints(points [][]float64) [][]float64 {
	seen := make(map[string]bool, len(points))
	var out [][]float64
	for _, p := range points {
		k := pointKey(p)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	return out
}

// bruteForceKNN returns the ascending distances of the k nearest points.
func bruteForceKNN(points [][]float64, q []float64, k int, m DistanceMetric) []float64 {
	dists := make([]float64, len(points))
	for i, p := range points {
		dists[i] = m.Distance(q, p)
	}
	sort.Float64s(dists)
	if k < len(dists) {
		dists = dists[:k]
	}
	return dists
}

// bruteForceRadius returns the keys of all points within radius of q.
func bruteForceRadius(points [][]float64, q []float64, radius float64, m DistanceMetric) []string {
	keys := []string{}
	for _, p := range points {
		if m.Distance(q, p) <= radius {
			keys = append(keys, pointKey(p))
		}
	}
	sort.Strings(keys)
	return keys
}

func neighborDistances(ns []Neighbor) []float64 {
	out := make([]float64, len(ns))
	for i, n := range ns {
		out[i] = n.Distance
	}
	return out
}

func neighborKeys(ns []Neighbor) []string {
	keys := make([]string, len(ns))
	for i, n := range ns {
		keys[i] = pointKey(n.Point)
	}
	sort.Strings(keys)
	return keys
}

// subtreePoints collects the pivots of every node under n, n included.
func subtreePoints(n *Node) [][]float64 {
	var out [][]float64
	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == nil {
			continue
		}
		out = append(out, cur.Point())
		stack = append(stack, cur.Inner(), cur.Outer())
	}
	return out
}

func requireDistancesMatch(t *testing.T, want, got []float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		require.InDelta(t, want[i], got[i], floatTol, "neighbor %d", i)
	}
}
