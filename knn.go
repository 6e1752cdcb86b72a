package vptree

import (
	"container/heap"
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"
)

// Neighbor is a query match.
type Neighbor struct {
	// Index is the position of the point in the slice passed to Build.
	Index int
	// Point is the stored copy of the point; treat it as read-only.
	Point []float64
	// Distance is the metric distance from the query target.
	Distance float64
}

// KNN returns the k points nearest to target, ascending by distance. Fewer
// than k are returned when the tree holds fewer distinct points. Ties in
// distance are returned in traversal order. k <= 0 and an empty tree yield
// an empty result. target must match the tree's dimensionality and be finite,
// otherwise the error wraps ErrInvalidInput.
func (t *Tree) KNN(target []float64, k int) ([]Neighbor, error) {
	if k <= 0 || t.root == nil {
		return []Neighbor{}, nil
	}

	start := time.Now()
	if err := t.checkTarget(target); err != nil {
		t.metrics.RecordKNN(k, 0, 0, time.Since(start), err)
		t.logger.Error("vptree knn failed", "k", k, "error", err)
		return nil, err
	}

	h := make(neighborHeap, 0, min(k, t.nodes))
	visited := t.knnSearch(target, k, &h)

	// Pop the max-heap from the back so the result ends up ascending.
	res := make([]Neighbor, h.Len())
	for i := len(res) - 1; i >= 0; i-- {
		res[i] = heap.Pop(&h).(Neighbor)
	}

	elapsed := time.Since(start)
	t.metrics.RecordKNN(k, len(res), visited, elapsed, nil)
	if t.logger.Enabled(context.Background(), slog.LevelDebug) {
		t.logger.Debug("vptree knn completed",
			"k", k,
			"results", len(res),
			"visited", visited,
			"duration", elapsed,
		)
	}
	return res, nil
}

// KNN is the functional form of Tree.KNN. A nil tree is treated as empty.
func KNN(t *Tree, target []float64, k int) ([]Neighbor, error) {
	if t == nil {
		return []Neighbor{}, nil
	}
	return t.KNN(target, k)
}

// searchFrame is either a node to visit or, when probe is set, a deferred
// check of a far child against the bound as it stands once the near child
// has been searched.
type searchFrame struct {
	n         *Node
	probe     bool
	outerSide bool    // probed child is the outer subtree
	d         float64 // distance from target to the parent pivot
	threshold float64 // parent threshold
}

// pushChildren schedules the near child of n for a visit and its far child
// for a probe. d is the distance from the target to n's pivot.
func pushChildren(stack []searchFrame, n *Node, d float64) []searchFrame {
	if n.IsLeaf() {
		return stack
	}
	if d < n.threshold {
		if n.outer != nil {
			stack = append(stack, searchFrame{n: n.outer, probe: true, outerSide: true, d: d, threshold: n.threshold})
		}
		if n.inner != nil {
			stack = append(stack, searchFrame{n: n.inner})
		}
		return stack
	}
	if n.inner != nil {
		stack = append(stack, searchFrame{n: n.inner, probe: true, d: d, threshold: n.threshold})
	}
	if n.outer != nil {
		stack = append(stack, searchFrame{n: n.outer})
	}
	return stack
}

// admits reports whether a probed child can hold a point within bound of the
// target. The outer subtree is reachable when d + bound >= threshold, the
// inner one when d - bound <= threshold.
func (f searchFrame) admits(bound float64) bool {
	if f.outerSide {
		return f.d+bound >= f.threshold
	}
	return f.d-bound <= f.threshold
}

// knnSearch fills h with the k nearest candidates and returns the number of
// distance evaluations. tau, the pruning bound, is the largest retained
// distance once k candidates are held and +Inf before that.
func (t *Tree) knnSearch(target []float64, k int, h *neighborHeap) int {
	tau := math.Inf(1)
	visited := 0
	stack := []searchFrame{{n: t.root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.probe {
			if !f.admits(tau) {
				continue
			}
			f.probe = false
		}

		n := f.n
		d := t.metric.Distance(target, n.point)
		visited++
		if h.Len() < k {
			heap.Push(h, Neighbor{Index: n.index, Point: n.point, Distance: d})
		} else if d < (*h)[0].Distance {
			(*h)[0] = Neighbor{Index: n.index, Point: n.point, Distance: d}
			heap.Fix(h, 0)
		}
		if h.Len() == k {
			tau = (*h)[0].Distance
		}

		stack = pushChildren(stack, n, d)
	}
	return visited
}

func (t *Tree) checkTarget(target []float64) error {
	if len(target) != t.dims {
		return &InvalidInputError{
			Index:  -1,
			Reason: fmt.Sprintf("dimension mismatch: expected %d, got %d", t.dims, len(target)),
		}
	}
	if j := nonFinite(target); j >= 0 {
		return &InvalidInputError{Index: -1, Reason: fmt.Sprintf("coordinate %d is %v", j, target[j])}
	}
	return nil
}

// --- max-heap for KNN queries ---

// neighborHeap is a max-heap of Neighbor (largest distance on top) used as a
// bounded priority queue: index 0 is always the worst retained candidate.
type neighborHeap []Neighbor

func (h neighborHeap) Len() int           { return len(h) }
func (h neighborHeap) Less(i, j int) bool { return h[i].Distance > h[j].Distance } // max-heap
func (h neighborHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *neighborHeap) Push(x any)        { *h = append(*h, x.(Neighbor)) }
func (h *neighborHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
