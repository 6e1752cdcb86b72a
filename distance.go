package vptree

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// DistanceMetric computes the distance between two points of equal
// dimensionality. Implementations must be non-negative, symmetric and satisfy
// the triangle inequality; the tree's pruning is only exact under those
// conditions. Distance must never return NaN.
type DistanceMetric interface {
	Distance(a, b []float64) float64
}

// DistanceFunc adapts a plain function into a DistanceMetric.
type DistanceFunc func(a, b []float64) float64

func (f DistanceFunc) Distance(a, b []float64) float64 { return f(a, b) }

// EuclideanMetric computes the Euclidean (L2) distance.
type EuclideanMetric struct{}

func (EuclideanMetric) Distance(a, b []float64) float64 {
	return floats.Distance(a, b, 2)
}

// ManhattanMetric computes the Manhattan (L1 / city-block) distance.
type ManhattanMetric struct{}

func (ManhattanMetric) Distance(a, b []float64) float64 {
	return floats.Distance(a, b, 1)
}

// ChebyshevMetric computes the Chebyshev (L-infinity) distance.
type ChebyshevMetric struct{}

func (ChebyshevMetric) Distance(a, b []float64) float64 {
	return floats.Distance(a, b, math.Inf(1))
}

// MinkowskiMetric computes the Minkowski distance parameterized by P.
// P must be >= 1, below that the triangle inequality does not hold.
// Panics if P < 1.
type MinkowskiMetric struct {
	P float64
}

func (m MinkowskiMetric) Distance(a, b []float64) float64 {
	if m.P < 1 {
		panic("MinkowskiMetric: P must be >= 1")
	}
	return floats.Distance(a, b, m.P)
}

// metricSlack is the relative tolerance for rounding in the symmetry and
// triangle checks.
const metricSlack = 1e-9

// ValidateMetric checks the metric axioms for one triple of points:
// non-negativity, symmetry and the triangle inequality d(a,c) <= d(a,b) + d(b,c).
// It returns an error wrapping ErrMetricViolation for the first axiom that
// fails. Intended for tests and diagnostics; the tree never calls it.
func ValidateMetric(m DistanceMetric, a, b, c []float64) error {
	dab := m.Distance(a, b)
	dba := m.Distance(b, a)
	if math.IsNaN(dab) || dab < 0 {
		return fmt.Errorf("%w: d(a,b) = %v is negative or NaN", ErrMetricViolation, dab)
	}
	if math.IsNaN(dba) || math.Abs(dab-dba) > metricSlack*math.Max(dab, dba) {
		return fmt.Errorf("%w: not symmetric, d(a,b) = %v, d(b,a) = %v", ErrMetricViolation, dab, dba)
	}

	dac := m.Distance(a, c)
	dbc := m.Distance(b, c)
	if dac > (dab+dbc)*(1+metricSlack) {
		return fmt.Errorf("%w: triangle inequality, d(a,c) = %v > d(a,b) + d(b,c) = %v",
			ErrMetricViolation, dac, dab+dbc)
	}
	return nil
}
