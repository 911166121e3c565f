package opt

import (
	"errors"
	"fmt"
)

// AlgorithmMayfly selects the mayfly optimizer.
const AlgorithmMayfly = "mayfly"

// ErrNoSolution is returned when a run finished without a single finite evaluation.
var ErrNoSolution = errors.New("optimizer produced no usable solution")

// Objective is a scalar function to minimize. A non-nil error aborts the run.
type Objective func(x []float64) (float64, error)

// Config describes one budgeted minimization.
type Config struct {
	Algorithm string      // optimizer selector; empty means the adapter's default
	Budget    int         // maximum number of objective evaluations
	AutoSet   bool        // derive algorithm parameters from the budget
	Seeds     [][]float64 // points evaluated before the search starts
}

// Result holds the best point found within the budget.
type Result struct {
	Best        []float64
	Cost        float64
	Evaluations int
}

// Optimizer defines a budgeted black-box minimizer
type Optimizer interface {
	// Run minimizes obj over dom, evaluating at most cfg.Budget points.
	// Returns the best evaluated point, which always lies inside dom.
	Run(obj Objective, dom Domain, cfg Config) (*Result, error)
}

// ConfigError reports an invalid domain or run configuration.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid optimizer config: %s %s", e.Field, e.Reason)
}

func validate(dom Domain, cfg Config) error {
	if err := dom.Validate(); err != nil {
		return err
	}
	if cfg.Budget <= 0 {
		return &ConfigError{Field: "Budget", Reason: "must be positive"}
	}
	for i, s := range cfg.Seeds {
		if len(s) != dom.Dim {
			return &ConfigError{Field: "Seeds", Reason: fmt.Sprintf("seed %d has dimension %d, want %d", i, len(s), dom.Dim)}
		}
	}
	return nil
}
