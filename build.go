package vptree

import (
	"context"
	"math/rand/v2"
	"slices"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// buildTask is one pending subtree: the candidate point indices, the random
// stream that drives its pivot sampling, and where to store the result.
type buildTask struct {
	idx   []int
	rng   *rand.Rand
	depth int
	dst   **Node
}

// scratch holds per-goroutine buffers reused across nodes.
type scratch struct {
	perm  []int     // sampling permutation
	buf   []float64 // pivot scoring distances
	cand  []int     // non-coalesced candidates of the current node
	dists []float64 // their distances to the pivot
	sort  []float64 // median workspace
}

// builder holds the state shared by all workers of one build. Workers only
// write to disjoint index ranges and to their own task's destination.
type builder struct {
	ctx               context.Context
	g                 *errgroup.Group
	data              []float64
	dims              int
	metric            DistanceMetric
	sampleSize        int
	parallelThreshold int

	nodes atomic.Int64
	depth atomic.Int64
}

func (b *builder) point(i int) []float64 {
	return b.data[i*b.dims : (i+1)*b.dims : (i+1)*b.dims]
}

func buildTree(ctx context.Context, points [][]float64, cfg *Config) (*Tree, error) {
	data, dims, err := flattenPoints(points)
	if err != nil {
		return nil, err
	}

	t := &Tree{
		metric:  cfg.Metric,
		data:    data,
		points:  len(points),
		dims:    dims,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
	}
	if len(points) == 0 {
		return t, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	// The calling goroutine is a worker too.
	g.SetLimit(cfg.Workers - 1)

	b := &builder{
		ctx:               gctx,
		g:                 g,
		data:              data,
		dims:              dims,
		metric:            cfg.Metric,
		sampleSize:        cfg.SampleSize,
		parallelThreshold: cfg.ParallelThreshold,
	}

	idx := make([]int, len(points))
	for i := range idx {
		idx[i] = i
	}
	root := buildTask{idx: idx, rng: rand.New(cfg.Source), depth: 1, dst: &t.root}

	runErr := b.run(root)
	if runErr != nil {
		cancel()
	}
	if err := g.Wait(); runErr == nil {
		runErr = err
	}
	if runErr != nil {
		return nil, runErr
	}

	t.nodes = int(b.nodes.Load())
	t.depth = int(b.depth.Load())
	return t, nil
}

// run builds the subtree of root with an explicit stack. Large child tasks
// are handed to idle workers; everything else stays on the local stack.
func (b *builder) run(root buildTask) error {
	var s scratch
	stack := []buildTask{root}
	maxDepth := 0
	defer func() { b.raiseDepth(maxDepth) }()

	for len(stack) > 0 {
		if err := b.ctx.Err(); err != nil {
			return err
		}
		task := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node, inner, outer := b.split(task, &s)
		*task.dst = node
		b.nodes.Add(1)
		maxDepth = max(maxDepth, task.depth)

		// Outer is pushed first so the inner subtree is built first.
		for _, child := range [2]buildTask{outer, inner} {
			if len(child.idx) == 0 {
				continue
			}
			if len(child.idx) >= b.parallelThreshold && b.g.TryGo(func() error { return b.run(child) }) {
				continue
			}
			stack = append(stack, child)
		}
	}
	return nil
}

func (b *builder) raiseDepth(d int) {
	for {
		cur := b.depth.Load()
		if int64(d) <= cur || b.depth.CompareAndSwap(cur, int64(d)) {
			return
		}
	}
}

// split creates the node for task and returns the inner and outer child
// tasks. Candidates at distance zero from the pivot are folded into the
// node. The children reuse disjoint ranges of task.idx.
func (b *builder) split(task buildTask, s *scratch) (*Node, buildTask, buildTask) {
	idx := task.idx
	if len(idx) == 1 {
		return &Node{point: b.point(idx[0]), index: idx[0], multiplicity: 1}, buildTask{}, buildTask{}
	}

	pos := b.selectPivot(idx, task.rng, s)
	pivot := idx[pos]
	pp := b.point(pivot)
	node := &Node{point: pp, index: pivot, multiplicity: 1}

	s.cand = s.cand[:0]
	s.dists = s.dists[:0]
	for i, c := range idx {
		if i == pos {
			continue
		}
		d := b.metric.Distance(pp, b.point(c))
		if d == 0 {
			node.multiplicity++
			continue
		}
		s.cand = append(s.cand, c)
		s.dists = append(s.dists, d)
	}
	if len(s.cand) == 0 {
		return node, buildTask{}, buildTask{}
	}

	node.threshold = b.median(s)

	// Inner indices go to the front of idx, outer ones right after.
	n := 0
	for i, c := range s.cand {
		if s.dists[i] <= node.threshold {
			idx[n] = c
			n++
		}
	}
	mid := n
	for i, c := range s.cand {
		if s.dists[i] > node.threshold {
			idx[n] = c
			n++
		}
	}

	inner := buildTask{idx: idx[:mid], rng: childRand(task.rng), depth: task.depth + 1, dst: &node.inner}
	outer := buildTask{idx: idx[mid:n], rng: childRand(task.rng), depth: task.depth + 1, dst: &node.outer}
	return node, inner, outer
}

// median returns the median of s.dists, averaging the two middle values for
// an even count.
func (b *builder) median(s *scratch) float64 {
	s.sort = append(s.sort[:0], s.dists...)
	slices.Sort(s.sort)
	n := len(s.sort)
	if n%2 == 1 {
		return s.sort[n/2]
	}
	return (s.sort[n/2-1] + s.sort[n/2]) / 2
}

// childRand derives an independent stream for a subtree so the tree's shape
// depends only on the seed and not on which worker builds what.
func childRand(parent *rand.Rand) *rand.Rand {
	return rand.New(rand.NewPCG(parent.Uint64(), parent.Uint64()))
}
