// Package vptree implements a vantage-point tree (VP-tree) for exact
// nearest-neighbor and fixed-radius queries over points in a metric space.
//
// A VP-tree recursively picks a pivot point and splits the remaining points
// at the median distance from that pivot. Queries use the triangle inequality
// to skip subtrees that cannot contain a relevant point, which makes them
// considerably cheaper than a brute-force scan for well-behaved metrics.
//
// The tree is built once from a fixed set of points and is immutable
// afterwards; any number of goroutines may query it concurrently.
//
// Basic usage:
//
//	cfg := vptree.DefaultConfig()
//	tree, err := vptree.Build(points, cfg)
//	neighbors, err := tree.KNN(query, 5)
//	// neighbors[i].Index is the position of the match in points,
//	// neighbors[i].Distance is its distance to query (ascending).
//	inRange, err := tree.Radius(query, 1.5)
//
// # Metrics
//
// Any type implementing [DistanceMetric] can be used, provided it is
// non-negative, symmetric and satisfies the triangle inequality. Built-in:
// [EuclideanMetric] (the default), [ManhattanMetric], [ChebyshevMetric] and
// [MinkowskiMetric]. [ValidateMetric] spot-checks the metric axioms for a
// triple of points and is meant for tests.
//
// # Duplicates
//
// Input points at distance 0 from a chosen pivot are coalesced into the
// pivot's node. Queries report each distinct point once; the number of input
// points a node stands for is available through [Node.Multiplicity].
package vptree
