package vptree

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when a point or query has the wrong
	// dimensionality or a non-finite coordinate.
	ErrInvalidInput = errors.New("vptree: invalid input")

	// ErrMetricViolation is returned by ValidateMetric when a metric axiom fails.
	ErrMetricViolation = errors.New("vptree: metric axiom violated")
)

// InvalidInputError describes a rejected point. Index is the position of the
// point in the input slice passed to Build, or -1 for a query target.
//
// It unwraps to ErrInvalidInput.
type InvalidInputError struct {
	Index  int
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%v: query: %s", ErrInvalidInput, e.Reason)
	}
	return fmt.Sprintf("%v: point %d: %s", ErrInvalidInput, e.Index, e.Reason)
}

func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }
