package gen

import (
	"errors"
	"math"

	"github.com/cwbudde/asgen/internal/opt"
)

// constClassifier always predicts P(class) = p.
type constClassifier struct {
	p float64
}

func (c constClassifier) Fit(x [][]float64, y []int, w []float64) (Model, error) {
	return constModel(c), nil
}

type constModel struct {
	p float64
}

func (m constModel) PredictProba(x [][]float64) ([][2]float64, error) {
	out := make([][2]float64, len(x))
	for i := range out {
		out[i] = [2]float64{1 - m.p, m.p}
	}
	return out, nil
}

// recordingClassifier captures every training set it sees and predicts via fn.
type recordingClassifier struct {
	fits []fitCall
	fn   func(x []float64) float64
}

type fitCall struct {
	x [][]float64
	y []int
	w []float64
}

func (r *recordingClassifier) Fit(x [][]float64, y []int, w []float64) (Model, error) {
	r.fits = append(r.fits, fitCall{x: x, y: y, w: w})
	return funcModel(r.fn), nil
}

type funcModel func(x []float64) float64

func (f funcModel) PredictProba(x [][]float64) ([][2]float64, error) {
	out := make([][2]float64, len(x))
	for i, v := range x {
		p := f(v)
		out[i] = [2]float64{1 - p, p}
	}
	return out, nil
}

type failingClassifier struct{ err error }

func (f failingClassifier) Fit(x [][]float64, y []int, w []float64) (Model, error) {
	return nil, f.err
}

// shortModelClassifier returns one probability row too few.
type shortModelClassifier struct{}

func (shortModelClassifier) Fit(x [][]float64, y []int, w []float64) (Model, error) {
	return shortModel{}, nil
}

type shortModel struct{}

func (shortModel) PredictProba(x [][]float64) ([][2]float64, error) {
	return make([][2]float64, len(x)-1), nil
}

// scriptedOptimizer evaluates the seeds followed by a fixed candidate list
// and returns the best, mimicking a budgeted minimizer deterministically.
type scriptedOptimizer struct {
	candidates [][]float64
	configs    []opt.Config
	err        error
}

func (s *scriptedOptimizer) Run(obj opt.Objective, dom opt.Domain, cfg opt.Config) (*opt.Result, error) {
	s.configs = append(s.configs, cfg)
	if s.err != nil {
		return nil, s.err
	}

	points := append(append([][]float64{}, cfg.Seeds...), s.candidates...)
	if len(points) > cfg.Budget {
		points = points[:cfg.Budget]
	}

	var best []float64
	bestCost := math.Inf(1)
	for _, p := range points {
		x := dom.Clamp(p)
		v, err := obj(x)
		if err != nil {
			return nil, err
		}
		if v < bestCost {
			best, bestCost = x, v
		}
	}
	if best == nil {
		return nil, opt.ErrNoSolution
	}
	return &opt.Result{Best: best, Cost: bestCost, Evaluations: len(points)}, nil
}

// memSink keeps every persisted snapshot.
type memSink struct {
	rounds    []Round
	snapshots [][][]float64
	failAt    int
}

var errSinkFull = errors.New("sink full")

func (m *memSink) Persist(round Round, set [][]float64) error {
	if m.failAt > 0 && round.Index == m.failAt {
		return errSinkFull
	}
	m.rounds = append(m.rounds, round)
	m.snapshots = append(m.snapshots, set)
	return nil
}

var triangle = [][]float64{{0, 0}, {0, 3}, {4, 0}}

func testSessionConfig() SessionConfig {
	return SessionConfig{
		ClassID:      "7",
		GenerateSize: 3,
		Budget:       50,
		InitNum:      10,
		Lower:        -10,
		Upper:        10,
	}
}
