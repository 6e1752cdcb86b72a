package vptree

import (
	"sync/atomic"
	"time"
)

// MetricsCollector receives operational metrics from a Tree.
// Implementations must be safe for concurrent use: queries on one tree may
// run from many goroutines at once. See the prommetrics package for a
// Prometheus-backed implementation.
type MetricsCollector interface {
	// RecordBuild is called once per Build. points is the number of input
	// points, nodes the number of distinct nodes stored.
	RecordBuild(points, nodes int, duration time.Duration, err error)

	// RecordKNN is called after each KNN query. visited is the number of
	// nodes whose distance to the target was evaluated.
	RecordKNN(k, results, visited int, duration time.Duration, err error)

	// RecordRadius is called after each Radius query.
	RecordRadius(radius float64, results, visited int, duration time.Duration, err error)
}

// NoopMetricsCollector discards all metrics.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordBuild(int, int, time.Duration, error)           {}
func (NoopMetricsCollector) RecordKNN(int, int, int, time.Duration, error)        {}
func (NoopMetricsCollector) RecordRadius(float64, int, int, time.Duration, error) {}

// BasicMetricsCollector keeps simple in-memory counters.
// Useful in tests and for debugging without a monitoring stack.
type BasicMetricsCollector struct {
	BuildCount       atomic.Int64
	BuildErrors      atomic.Int64
	BuildTotalNanos  atomic.Int64
	NodesBuilt       atomic.Int64
	KNNCount         atomic.Int64
	KNNErrors        atomic.Int64
	KNNVisited       atomic.Int64
	KNNTotalNanos    atomic.Int64
	RadiusCount      atomic.Int64
	RadiusErrors     atomic.Int64
	RadiusVisited    atomic.Int64
	RadiusResults    atomic.Int64
	RadiusTotalNanos atomic.Int64
}

// RecordBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBuild(_, nodes int, duration time.Duration, err error) {
	b.BuildCount.Add(1)
	b.BuildTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.BuildErrors.Add(1)
		return
	}
	b.NodesBuilt.Add(int64(nodes))
}

// RecordKNN implements MetricsCollector.
func (b *BasicMetricsCollector) RecordKNN(_, _, visited int, duration time.Duration, err error) {
	b.KNNCount.Add(1)
	b.KNNVisited.Add(int64(visited))
	b.KNNTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.KNNErrors.Add(1)
	}
}

// RecordRadius implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRadius(_ float64, results, visited int, duration time.Duration, err error) {
	b.RadiusCount.Add(1)
	b.RadiusResults.Add(int64(results))
	b.RadiusVisited.Add(int64(visited))
	b.RadiusTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RadiusErrors.Add(1)
	}
}

// MetricsStats is a point-in-time copy of a BasicMetricsCollector.
type MetricsStats struct {
	BuildCount    int64
	BuildErrors   int64
	NodesBuilt    int64
	KNNCount      int64
	KNNErrors     int64
	KNNVisited    int64
	RadiusCount   int64
	RadiusErrors  int64
	RadiusVisited int64
	RadiusResults int64
	AvgBuild      time.Duration
	AvgKNN        time.Duration
	AvgRadius     time.Duration
}

// Stats returns a snapshot of the collected counters.
func (b *BasicMetricsCollector) Stats() MetricsStats {
	s := MetricsStats{
		BuildCount:    b.BuildCount.Load(),
		BuildErrors:   b.BuildErrors.Load(),
		NodesBuilt:    b.NodesBuilt.Load(),
		KNNCount:      b.KNNCount.Load(),
		KNNErrors:     b.KNNErrors.Load(),
		KNNVisited:    b.KNNVisited.Load(),
		RadiusCount:   b.RadiusCount.Load(),
		RadiusErrors:  b.RadiusErrors.Load(),
		RadiusVisited: b.RadiusVisited.Load(),
		RadiusResults: b.RadiusResults.Load(),
	}
	if s.BuildCount > 0 {
		s.AvgBuild = time.Duration(b.BuildTotalNanos.Load() / s.BuildCount)
	}
	if s.KNNCount > 0 {
		s.AvgKNN = time.Duration(b.KNNTotalNanos.Load() / s.KNNCount)
	}
	if s.RadiusCount > 0 {
		s.AvgRadius = time.Duration(b.RadiusTotalNanos.Load() / s.RadiusCount)
	}
	return s
}
