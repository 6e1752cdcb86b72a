// Package prommetrics exports vptree build and query metrics to Prometheus.
//
//	c, err := prommetrics.New(prometheus.DefaultRegisterer, "myapp")
//	cfg := vptree.DefaultConfig()
//	cfg.Metrics = c
package prommetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/TrevorS/vptree"
)

const (
	opBuild  = "build"
	opKNN    = "knn"
	opRadius = "radius"
)

var _ vptree.MetricsCollector = (*Collector)(nil)

// Collector implements vptree.MetricsCollector with Prometheus metrics.
type Collector struct {
	operations *prometheus.CounterVec
	errors     *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	visited    *prometheus.HistogramVec
	results    *prometheus.HistogramVec
	nodes      prometheus.Counter
}

// New creates a Collector and registers its metrics with reg. A nil reg
// means prometheus.DefaultRegisterer. namespace prefixes every metric name
// and may be empty.
func New(reg prometheus.Registerer, namespace string) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "vptree",
			Name:      "operations_total",
			Help:      "Number of vptree builds and queries.",
		}, []string{"operation"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "vptree",
			Name:      "operation_errors_total",
			Help:      "Number of vptree builds and queries that returned an error.",
		}, []string{"operation"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "vptree",
			Name:      "operation_duration_seconds",
			Help:      "Duration of vptree builds and queries.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
		}, []string{"operation"}),
		visited: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "vptree",
			Name:      "visited_nodes",
			Help:      "Distance evaluations per query.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 12),
		}, []string{"operation"}),
		results: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "vptree",
			Name:      "results",
			Help:      "Points returned per query.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}, []string{"operation"}),
		nodes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "vptree",
			Name:      "nodes_built_total",
			Help:      "Number of tree nodes created by successful builds.",
		}),
	}

	for _, m := range []prometheus.Collector{c.operations, c.errors, c.duration, c.visited, c.results, c.nodes} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// RecordBuild implements vptree.MetricsCollector.
func (c *Collector) RecordBuild(_, nodes int, duration time.Duration, err error) {
	c.record(opBuild, duration, err)
	if err == nil {
		c.nodes.Add(float64(nodes))
	}
}

// RecordKNN implements vptree.MetricsCollector.
func (c *Collector) RecordKNN(_, results, visited int, duration time.Duration, err error) {
	c.record(opKNN, duration, err)
	if err == nil {
		c.visited.WithLabelValues(opKNN).Observe(float64(visited))
		c.results.WithLabelValues(opKNN).Observe(float64(results))
	}
}

// RecordRadius implements vptree.MetricsCollector.
func (c *Collector) RecordRadius(_ float64, results, visited int, duration time.Duration, err error) {
	c.record(opRadius, duration, err)
	if err == nil {
		c.visited.WithLabelValues(opRadius).Observe(float64(visited))
		c.results.WithLabelValues(opRadius).Observe(float64(results))
	}
}

func (c *Collector) record(op string, duration time.Duration, err error) {
	c.operations.WithLabelValues(op).Inc()
	c.duration.WithLabelValues(op).Observe(duration.Seconds())
	if err != nil {
		c.errors.WithLabelValues(op).Inc()
	}
}
