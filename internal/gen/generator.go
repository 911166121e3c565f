package gen

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/cwbudde/asgen/internal/opt"
)

// Polarity selects which synthetic set a pass generates.
type Polarity int

const (
	Positive Polarity = iota
	Negative
)

func (p Polarity) String() string {
	switch p {
	case Positive:
		return "positive"
	case Negative:
		return "negative"
	default:
		return fmt.Sprintf("polarity(%d)", int(p))
	}
}

// Tag is the short name used in output file names ("plus" / "minus").
func (p Polarity) Tag() string {
	if p == Negative {
		return "minus"
	}
	return "plus"
}

// ParsePolarity accepts "positive"/"plus" and "negative"/"minus".
func ParsePolarity(s string) (Polarity, error) {
	switch s {
	case "positive", "plus":
		return Positive, nil
	case "negative", "minus":
		return Negative, nil
	default:
		return 0, fmt.Errorf("unknown polarity: %s", s)
	}
}

// Round describes one accepted candidate.
type Round struct {
	Polarity    Polarity
	Index       int // 1-based
	Vector      []float64
	Score       float64 // objective value of Vector
	Evaluations int
	Elapsed     time.Duration
}

// Sink receives the accepted round and an immutable snapshot of the full
// synthetic set after every round.
type Sink interface {
	Persist(round Round, set [][]float64) error
}

// Generator runs generation passes for one session.
type Generator struct {
	session   *Session
	clf       Classifier
	optimizer opt.Optimizer
	sink      Sink
	rng       *rand.Rand
}

// NewGenerator wires a session to its collaborators. sink may be nil. rng
// drives seed sampling; pass a seeded source for reproducible runs.
func NewGenerator(session *Session, clf Classifier, optimizer opt.Optimizer, sink Sink, rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{
		session:   session,
		clf:       clf,
		optimizer: optimizer,
		sink:      sink,
		rng:       rng,
	}
}

// GeneratePositive runs the positive pass.
func (g *Generator) GeneratePositive() ([][]float64, error) {
	return g.Generate(Positive)
}

// GenerateNegative runs the negative pass.
func (g *Generator) GenerateNegative() ([][]float64, error) {
	return g.Generate(Negative)
}

// Generate accepts GenerateSize candidates for polarity p, one optimizer run
// per candidate, keeping previously accepted candidates fixed. The set is
// persisted after every round. Any failure aborts the pass; the set returned
// alongside an error holds only the rounds that were fully committed.
func (g *Generator) Generate(p Polarity) ([][]float64, error) {
	cfg := g.session.cfg
	dom := opt.NewUniformDomain(g.session.dim, cfg.Lower, cfg.Upper)

	slog.Info("Starting generation pass",
		"polarity", p,
		"class", cfg.ClassID,
		"size", cfg.GenerateSize,
		"budget", cfg.Budget,
	)

	set := make([][]float64, 0, cfg.GenerateSize)
	for i := 1; i <= cfg.GenerateSize; i++ {
		start := time.Now()

		objective := ObjectiveFor(p, g.session, g.clf, set)
		res, err := g.optimizer.Run(scalar(objective), dom, opt.Config{
			Algorithm: cfg.Algorithm,
			Budget:    cfg.Budget,
			AutoSet:   cfg.AutoSet,
			Seeds:     g.sampleSeeds(),
		})
		if err != nil {
			return set, &OptimizationError{Polarity: p, Round: i, Err: err}
		}
		if res == nil || len(res.Best) != g.session.dim {
			return set, &OptimizationError{Polarity: p, Round: i, Err: opt.ErrNoSolution}
		}

		accepted := append([]float64(nil), res.Best...)
		set = append(set, accepted)

		round := Round{
			Polarity:    p,
			Index:       i,
			Vector:      append([]float64(nil), accepted...),
			Score:       res.Cost,
			Evaluations: res.Evaluations,
			Elapsed:     time.Since(start),
		}

		slog.Info("Accepted candidate",
			"polarity", p,
			"class", cfg.ClassID,
			"round", i,
			"size", len(set),
			"score", res.Cost,
			"evaluations", res.Evaluations,
			"elapsed", round.Elapsed,
		)

		if g.sink != nil {
			if err := g.sink.Persist(round, cloneSet(set)); err != nil {
				return set[:len(set)-1], &PersistenceError{Polarity: p, Round: i, Err: err}
			}
		}
	}

	slog.Info("Generation pass complete", "polarity", p, "class", cfg.ClassID, "size", len(set))
	return set, nil
}

// sampleSeeds draws min(InitNum, |O|) distinct original points.
func (g *Generator) sampleSeeds() [][]float64 {
	n := g.session.cfg.InitNum
	if n > len(g.session.original) {
		n = len(g.session.original)
	}
	idx := g.rng.Perm(len(g.session.original))[:n]

	seeds := make([][]float64, n)
	for i, j := range idx {
		seeds[i] = append([]float64(nil), g.session.original[j]...)
	}
	return seeds
}

func scalar(obj Objective) opt.Objective {
	return func(x []float64) (float64, error) {
		s, err := obj(x)
		if err != nil {
			return 0, err
		}
		return s.Value, nil
	}
}
