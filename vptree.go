package vptree

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"runtime"
	"time"
)

// DefaultSampleSize is the number of points sampled per node when scoring
// pivot candidates.
const DefaultSampleSize = 20

// DefaultParallelThreshold is the smallest subtree handed to another
// goroutine during a parallel build.
const DefaultParallelThreshold = 2048

// Config controls tree construction.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// Metric is the distance function between points.
	// Built-in: EuclideanMetric, ManhattanMetric, ChebyshevMetric,
	// MinkowskiMetric. Use DistanceFunc to wrap a custom function.
	// Default: EuclideanMetric.
	Metric DistanceMetric

	// SampleSize is how many points are sampled at each node to score pivot
	// candidates. Larger samples pick better-spread pivots at O(n*SampleSize)
	// cost per level. Must be >= 1. Default: 20.
	SampleSize int

	// Source seeds pivot sampling. The same Source state and input always
	// produce the same tree, independent of Workers. nil means a randomly
	// seeded source. The builder only reads from Source on the calling
	// goroutine.
	Source rand.Source

	// Workers bounds the number of goroutines building subtrees. 1 builds
	// sequentially. 0 means runtime.NumCPU(). Must be >= 0.
	Workers int

	// ParallelThreshold is the minimum number of points in a subtree before
	// it is offered to another worker. Must be >= 0. Default: 2048.
	ParallelThreshold int

	// Logger receives build and query logs. nil discards them.
	Logger *slog.Logger

	// Metrics receives build and query metrics. nil means NoopMetricsCollector.
	Metrics MetricsCollector
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		Metric:            EuclideanMetric{},
		SampleSize:        DefaultSampleSize,
		ParallelThreshold: DefaultParallelThreshold,
	}
}

// validateConfig checks that cfg fields are valid and returns a descriptive error if not.
func validateConfig(cfg *Config) error {
	if cfg.SampleSize < 1 {
		return fmt.Errorf("vptree: SampleSize must be >= 1, got %d", cfg.SampleSize)
	}
	if cfg.Workers < 1 {
		return fmt.Errorf("vptree: Workers must be >= 0 (0 means runtime.NumCPU()), got %d", cfg.Workers)
	}
	if cfg.ParallelThreshold < 1 {
		return fmt.Errorf("vptree: ParallelThreshold must be >= 0, got %d", cfg.ParallelThreshold)
	}
	return nil
}

// applyDefaults fills in zero-valued config fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.Metric == nil {
		cfg.Metric = EuclideanMetric{}
	}
	if cfg.SampleSize == 0 {
		cfg.SampleSize = DefaultSampleSize
	}
	if cfg.Source == nil {
		cfg.Source = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.ParallelThreshold == 0 {
		cfg.ParallelThreshold = DefaultParallelThreshold
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NoopMetricsCollector{}
	}
}

// Build constructs a tree from points. Every point must have the same,
// non-zero dimensionality and only finite coordinates; otherwise Build
// returns an error wrapping ErrInvalidInput. Building from zero points
// returns an empty tree. points is copied and may be reused by the caller.
func Build(points [][]float64, cfg Config) (*Tree, error) {
	return BuildContext(context.Background(), points, cfg)
}

// BuildContext is Build with cancellation. The context is checked once per
// node; if it is cancelled the build stops and its error is returned.
func BuildContext(ctx context.Context, points [][]float64, cfg Config) (*Tree, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	start := time.Now()
	t, err := buildTree(ctx, points, &cfg)
	elapsed := time.Since(start)
	if err != nil {
		cfg.Metrics.RecordBuild(len(points), 0, elapsed, err)
		cfg.Logger.ErrorContext(ctx, "vptree build failed",
			"points", len(points),
			"error", err,
		)
		return nil, err
	}

	cfg.Metrics.RecordBuild(len(points), t.nodes, elapsed, nil)
	cfg.Logger.DebugContext(ctx, "vptree built",
		"points", t.points,
		"nodes", t.nodes,
		"dimension", t.dims,
		"depth", t.depth,
		"duration", elapsed,
	)
	return t, nil
}

// flattenPoints validates points and copies them into one row-major array.
func flattenPoints(points [][]float64) ([]float64, int, error) {
	if len(points) == 0 {
		return nil, 0, nil
	}
	dims := len(points[0])
	if dims == 0 {
		return nil, 0, &InvalidInputError{Index: 0, Reason: "point has no coordinates"}
	}

	data := make([]float64, len(points)*dims)
	for i, p := range points {
		if len(p) != dims {
			return nil, 0, &InvalidInputError{
				Index:  i,
				Reason: fmt.Sprintf("dimension mismatch: expected %d, got %d", dims, len(p)),
			}
		}
		if j := nonFinite(p); j >= 0 {
			return nil, 0, &InvalidInputError{
				Index:  i,
				Reason: fmt.Sprintf("coordinate %d is %v", j, p[j]),
			}
		}
		copy(data[i*dims:], p)
	}
	return data, dims, nil
}

// nonFinite returns the position of the first NaN or infinite coordinate, or -1.
func nonFinite(p []float64) int {
	for j, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return j
		}
	}
	return -1
}
