package gen

import (
	"fmt"
	"log/slog"
)

// SessionConfig holds the tunable parameters of a generation session.
type SessionConfig struct {
	ClassID      string  // class identifier, used in output names
	GenerateSize int     // number of exemplars to accept per pass
	Budget       int     // objective evaluations per round
	InitNum      int     // optimizer seeds drawn from the original data per round
	Lower        float64 // search range applied to every dimension
	Upper        float64
	Algorithm    string // optimizer selector passed through to opt.Config
	AutoSet      bool   // let the optimizer derive its own parameters from the budget
}

// Session is the immutable context shared by both generation passes: the
// original class data, its distance statistics and the search configuration.
type Session struct {
	cfg      SessionConfig
	original [][]float64
	dim      int
	deta     float64
	detaMin  float64
}

// NewSession validates cfg, copies original and derives deta / deta_min.
func NewSession(original [][]float64, cfg SessionConfig) (*Session, error) {
	if len(original) < 2 {
		return nil, &InsufficientDataError{Points: len(original)}
	}
	dim := len(original[0])
	if dim == 0 {
		return nil, fmt.Errorf("original data has zero-dimensional vectors")
	}
	if cfg.GenerateSize < 0 {
		return nil, fmt.Errorf("generate size cannot be negative: %d", cfg.GenerateSize)
	}
	if cfg.Budget <= 0 {
		return nil, fmt.Errorf("budget must be positive: %d", cfg.Budget)
	}
	if cfg.InitNum <= 0 {
		return nil, fmt.Errorf("init num must be positive: %d", cfg.InitNum)
	}
	if !(cfg.Lower < cfg.Upper) {
		return nil, fmt.Errorf("invalid search range [%g, %g]", cfg.Lower, cfg.Upper)
	}

	data := cloneSet(original)
	deta, detaMin, err := ExtremeDistances(data)
	if err != nil {
		return nil, err
	}

	slog.Debug("Session created",
		"class", cfg.ClassID,
		"points", len(data),
		"dim", dim,
		"deta", deta,
		"deta_min", detaMin,
	)

	return &Session{
		cfg:      cfg,
		original: data,
		dim:      dim,
		deta:     deta,
		detaMin:  detaMin,
	}, nil
}

// Config returns the session configuration.
func (s *Session) Config() SessionConfig { return s.cfg }

// ClassID returns the class identifier.
func (s *Session) ClassID() string { return s.cfg.ClassID }

// Dim returns the feature dimensionality D.
func (s *Session) Dim() int { return s.dim }

// Deta returns the maximum pairwise distance within the original data.
func (s *Session) Deta() float64 { return s.deta }

// DetaMin returns the minimum pairwise distance within the original data.
func (s *Session) DetaMin() float64 { return s.detaMin }

// Original returns a copy of the original data.
func (s *Session) Original() [][]float64 { return cloneSet(s.original) }

// Len returns the number of original points.
func (s *Session) Len() int { return len(s.original) }

func cloneSet(set [][]float64) [][]float64 {
	out := make([][]float64, len(set))
	for i, v := range set {
		out[i] = append([]float64(nil), v...)
	}
	return out
}
