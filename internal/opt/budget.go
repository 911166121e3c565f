package opt

import (
	"log/slog"
	"math"
)

// budgetGuard wraps an Objective so that it can be handed to optimizers that
// expect an infallible func([]float64) float64. It clamps every point into the
// domain, stops calling the objective once the budget is spent or an error was
// seen, and remembers the best finite evaluation.
type budgetGuard struct {
	obj    Objective
	dom    Domain
	budget int

	evals    int
	best     []float64
	bestCost float64
	err      error
}

func newBudgetGuard(obj Objective, dom Domain, budget int) *budgetGuard {
	return &budgetGuard{
		obj:      obj,
		dom:      dom,
		budget:   budget,
		bestCost: math.Inf(1),
	}
}

// cost evaluates x; once stopped it returns +Inf without calling the objective.
func (g *budgetGuard) cost(x []float64) float64 {
	if g.stopped() {
		return math.Inf(1)
	}

	p := g.dom.Clamp(x)
	v, err := g.obj(p)
	g.evals++
	if err != nil {
		g.err = err
		slog.Debug("Objective failed, stopping run", "evaluations", g.evals, "error", err)
		return math.Inf(1)
	}
	if math.IsNaN(v) {
		return math.Inf(1)
	}

	if g.best == nil || v < g.bestCost {
		g.best = p
		g.bestCost = v
	}
	return v
}

func (g *budgetGuard) stopped() bool {
	return g.err != nil || g.evals >= g.budget
}

func (g *budgetGuard) result() (*Result, error) {
	if g.err != nil {
		return nil, g.err
	}
	if g.best == nil || math.IsInf(g.bestCost, 1) {
		return nil, ErrNoSolution
	}
	return &Result{
		Best:        append([]float64(nil), g.best...),
		Cost:        g.bestCost,
		Evaluations: g.evals,
	}, nil
}
