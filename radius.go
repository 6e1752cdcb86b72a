package vptree

import (
	"context"
	"log/slog"
	"time"
)

// Radius returns every stored point within radius of target (inclusive), in
// traversal order. A negative or NaN radius and an empty tree yield an empty
// result. target must match the tree's dimensionality and be finite,
// otherwise the error wraps ErrInvalidInput.
func (t *Tree) Radius(target []float64, radius float64) ([]Neighbor, error) {
	if !(radius >= 0) || t.root == nil {
		return []Neighbor{}, nil
	}

	start := time.Now()
	if err := t.checkTarget(target); err != nil {
		t.metrics.RecordRadius(radius, 0, 0, time.Since(start), err)
		t.logger.Error("vptree radius search failed", "radius", radius, "error", err)
		return nil, err
	}

	res, visited := t.radiusSearch(target, radius)

	elapsed := time.Since(start)
	t.metrics.RecordRadius(radius, len(res), visited, elapsed, nil)
	if t.logger.Enabled(context.Background(), slog.LevelDebug) {
		t.logger.Debug("vptree radius search completed",
			"radius", radius,
			"results", len(res),
			"visited", visited,
			"duration", elapsed,
		)
	}
	return res, nil
}

// RegionSearch is the functional form of Tree.Radius. A nil tree is treated
// as empty.
func RegionSearch(t *Tree, target []float64, radius float64) ([]Neighbor, error) {
	if t == nil {
		return []Neighbor{}, nil
	}
	return t.Radius(target, radius)
}

func (t *Tree) radiusSearch(target []float64, radius float64) ([]Neighbor, int) {
	res := []Neighbor{}
	visited := 0
	stack := []searchFrame{{n: t.root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.probe && !f.admits(radius) {
			continue
		}

		n := f.n
		d := t.metric.Distance(target, n.point)
		visited++
		if d <= radius {
			res = append(res, Neighbor{Index: n.index, Point: n.point, Distance: d})
		}
		stack = pushChildren(stack, n, d)
	}
	return res, visited
}
