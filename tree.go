package vptree

import (
	"log/slog"
)

// Node is one pivot of a vantage-point tree. Points at distance <= Threshold
// from the pivot live in the Inner subtree, the rest in Outer.
// Nodes are immutable once Build returns.
type Node struct {
	point        []float64
	index        int     // position of the pivot in the Build input
	threshold    float64 // median distance of the non-pivot candidates
	inner        *Node
	outer        *Node
	multiplicity int // input points coalesced into this node, pivot included
}

// Point returns the pivot's coordinates. The slice is owned by the tree and
// must not be modified.
func (n *Node) Point() []float64 { return n.point }

// Index returns the position of the pivot in the slice passed to Build.
func (n *Node) Index() int { return n.index }

// Threshold returns the median distance separating Inner from Outer.
// It is 0 for a leaf.
func (n *Node) Threshold() float64 { return n.threshold }

// Inner returns the subtree of points within Threshold of the pivot, or nil.
func (n *Node) Inner() *Node { return n.inner }

// Outer returns the subtree of points beyond Threshold, or nil.
func (n *Node) Outer() *Node { return n.outer }

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return n.inner == nil && n.outer == nil }

// Multiplicity returns how many input points this node represents: the pivot
// itself plus every input point found at distance 0 from it during the build.
func (n *Node) Multiplicity() int { return n.multiplicity }

// Tree is an immutable vantage-point tree. A Tree built from zero points is
// valid and answers every query with an empty result.
type Tree struct {
	root    *Node
	metric  DistanceMetric
	data    []float64 // flat row-major copy of the input points
	points  int       // number of input points, duplicates included
	dims    int
	nodes   int
	depth   int
	logger  *slog.Logger
	metrics MetricsCollector
}

// Root returns the root node, or nil for an empty tree.
func (t *Tree) Root() *Node { return t.root }

// Len returns the number of distinct nodes stored in the tree. It is smaller
// than the number of input points when duplicates were coalesced.
func (t *Tree) Len() int { return t.nodes }

// NumPoints returns the number of points passed to Build.
func (t *Tree) NumPoints() int { return t.points }

// Dims returns the dimensionality of the stored points (0 for an empty tree).
func (t *Tree) Dims() int { return t.dims }

// Depth returns the number of nodes on the longest root-to-leaf path.
func (t *Tree) Depth() int { return t.depth }

// Metric returns the distance metric the tree was built with.
func (t *Tree) Metric() DistanceMetric { return t.metric }

// Walk visits every node in depth-first pre-order (pivot, inner, outer),
// passing its depth (root = 1). Returning false from fn stops the walk.
func (t *Tree) Walk(fn func(n *Node, depth int) bool) {
	type frame struct {
		n     *Node
		depth int
	}
	if t == nil || t.root == nil {
		return
	}
	stack := []frame{{t.root, 1}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(f.n, f.depth) {
			return
		}
		if f.n.outer != nil {
			stack = append(stack, frame{f.n.outer, f.depth + 1})
		}
		if f.n.inner != nil {
			stack = append(stack, frame{f.n.inner, f.depth + 1})
		}
	}
}
