package gen

import (
	"errors"
	"fmt"
)

// ErrEmptySet is returned by MinDistance when the reference set has no members.
var ErrEmptySet = errors.New("distance to empty set is undefined")

// ErrInsufficientData matches any *InsufficientDataError via errors.Is.
var ErrInsufficientData = &InsufficientDataError{}

// InsufficientDataError is returned when fewer than two points are supplied
// where pairwise distance statistics are required.
type InsufficientDataError struct {
	Points int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: need at least 2 points, got %d", e.Points)
}

func (e *InsufficientDataError) Is(target error) bool {
	_, ok := target.(*InsufficientDataError)
	return ok
}

// DimensionError reports a vector whose length differs from the expected dimension.
type DimensionError struct {
	Index    int
	Expected int
	Actual   int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("dimension mismatch at index %d: expected %d, got %d", e.Index, e.Expected, e.Actual)
}

// ErrOptimization matches any *OptimizationError via errors.Is.
var ErrOptimization = &OptimizationError{}

// OptimizationError is fatal to a generation pass: the optimizer failed or
// returned no usable solution for the given round.
type OptimizationError struct {
	Polarity Polarity
	Round    int
	Err      error
}

func (e *OptimizationError) Error() string {
	return fmt.Sprintf("optimization failed (%s round %d): %v", e.Polarity, e.Round, e.Err)
}

func (e *OptimizationError) Unwrap() error { return e.Err }

func (e *OptimizationError) Is(target error) bool {
	_, ok := target.(*OptimizationError)
	return ok
}

// ErrClassifierFit matches any *ClassifierFitError via errors.Is.
var ErrClassifierFit = &ClassifierFitError{}

// ClassifierFitError wraps a classifier rejecting the weighted training set.
type ClassifierFitError struct {
	Err error
}

func (e *ClassifierFitError) Error() string {
	return fmt.Sprintf("classifier fit failed: %v", e.Err)
}

func (e *ClassifierFitError) Unwrap() error { return e.Err }

func (e *ClassifierFitError) Is(target error) bool {
	_, ok := target.(*ClassifierFitError)
	return ok
}

// ClassifierPredictError wraps a fitted model failing to produce probabilities.
type ClassifierPredictError struct {
	Err error
}

func (e *ClassifierPredictError) Error() string {
	return fmt.Sprintf("classifier predict failed: %v", e.Err)
}

func (e *ClassifierPredictError) Unwrap() error { return e.Err }

// PersistenceError wraps a sink failure after a round was accepted.
type PersistenceError struct {
	Polarity Polarity
	Round    int
	Err      error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist failed (%s round %d): %v", e.Polarity, e.Round, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
