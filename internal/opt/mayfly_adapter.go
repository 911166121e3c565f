package opt

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/cwbudde/mayfly"
)

// minMayflyPop is the smallest population mayfly v0.1.0 accepts.
const minMayflyPop = 20

// MayflyAdapter wraps the external Mayfly library to conform to our Optimizer interface
type MayflyAdapter struct {
	maxIters int
	popSize  int
	seed     int64
	runs     int64
}

// NewMayfly creates a new Mayfly optimizer adapter. maxIters and popSize are
// used when a run does not request AutoSet.
func NewMayfly(maxIters, popSize int, seed int64) *MayflyAdapter {
	return &MayflyAdapter{
		maxIters: maxIters,
		popSize:  popSize,
		seed:     seed,
	}
}

// Run evaluates cfg.Seeds, then lets mayfly search dom until the budget is
// spent. The best evaluated point is returned, not mayfly's own global best,
// so seeds and budget-capped evaluations are taken into account.
func (m *MayflyAdapter) Run(obj Objective, dom Domain, cfg Config) (*Result, error) {
	if cfg.Algorithm != "" && cfg.Algorithm != AlgorithmMayfly {
		return nil, &ConfigError{Field: "Algorithm", Reason: fmt.Sprintf("unsupported %q", cfg.Algorithm)}
	}
	if err := validate(dom, cfg); err != nil {
		return nil, err
	}

	guard := newBudgetGuard(obj, dom, cfg.Budget)
	for _, s := range cfg.Seeds {
		guard.cost(s)
		if guard.stopped() {
			break
		}
	}

	if !guard.stopped() {
		popSize, maxIters := m.popSize, m.maxIters
		if cfg.AutoSet {
			popSize, maxIters = autoSize(cfg.Budget - guard.evals)
		}

		// Create config for external Mayfly library
		config := mayfly.NewDefaultConfig()
		config.ObjectiveFunc = guard.cost
		config.ProblemSize = dom.Dim
		config.MaxIterations = maxIters
		config.NPop = popSize

		// External library uses scalar bounds; the guard clamps per dimension.
		config.LowerBound, config.UpperBound = dom.span()

		// Distinct but reproducible stream per run
		config.Rand = rand.New(rand.NewSource(m.seed + m.runs))
		m.runs++

		if _, err := mayfly.Optimize(config); err != nil {
			return nil, fmt.Errorf("mayfly: %w", err)
		}
	}

	res, err := guard.result()
	if err != nil {
		return nil, err
	}

	slog.Debug("Mayfly run complete", "evaluations", res.Evaluations, "best_cost", res.Cost)
	return res, nil
}

// autoSize picks a population and iteration count that will exhaust budget.
func autoSize(budget int) (popSize, maxIters int) {
	popSize = minMayflyPop
	maxIters = (budget + popSize - 1) / popSize
	if maxIters < 1 {
		maxIters = 1
	}
	return popSize, maxIters
}
