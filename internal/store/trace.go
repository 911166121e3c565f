package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"
)

const traceFile = "trace.jsonl"

// TraceEntry records one accepted round as a line of trace.jsonl.
type TraceEntry struct {
	Round       int       `json:"round"`
	Polarity    string    `json:"polarity"`
	Score       float64   `json:"score"`
	Evaluations int       `json:"evaluations"`
	ElapsedMs   int64     `json:"elapsedMs"`
	Vector      []float64 `json:"vector"`
	Timestamp   time.Time `json:"timestamp"`
}

// TraceWriter appends round entries to a run's trace. Every entry goes out
// in a single write, so the file never ends with a partial line unless the
// write itself fails.
type TraceWriter struct {
	f *os.File
}

// NewTraceWriter opens <dir>/trace.jsonl, truncating it unless appendTo is set.
func NewTraceWriter(dir string, appendTo bool) (*TraceWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create trace directory: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if appendTo {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	f, err := os.OpenFile(filepath.Join(dir, traceFile), flags, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}
	return &TraceWriter{f: f}, nil
}

// Append writes one entry.
func (tw *TraceWriter) Append(entry TraceEntry) error {
	if tw.f == nil {
		return errors.New("trace writer is closed")
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode round %d: %w", entry.Round, err)
	}
	if _, err := tw.f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to append round %d: %w", entry.Round, err)
	}
	return nil
}

// Close closes the trace file. Further appends fail.
func (tw *TraceWriter) Close() error {
	if tw.f == nil {
		return nil
	}
	err := tw.f.Close()
	tw.f = nil
	if err != nil {
		return fmt.Errorf("failed to close trace file: %w", err)
	}
	return nil
}

// ReadTrace returns the entries of <dir>/trace.jsonl in the order they were
// written. A missing trace is reported as *NotFoundError.
func ReadTrace(dir string) ([]TraceEntry, error) {
	f, err := os.Open(filepath.Join(dir, traceFile))
	if os.IsNotExist(err) {
		return nil, &NotFoundError{RunID: filepath.Base(dir)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}
	defer f.Close()

	var entries []TraceEntry
	dec := json.NewDecoder(f)
	for {
		var e TraceEntry
		err := dec.Decode(&e)
		if err == io.EOF {
			return entries, nil
		}
		if err != nil {
			return nil, fmt.Errorf("trace entry %d: %w", len(entries)+1, err)
		}
		entries = append(entries, e)
	}
}

// TraceSummary aggregates the rounds of one trace.
type TraceSummary struct {
	Rounds      int
	Evaluations int
	Elapsed     time.Duration
	BestRound   int // 0 when the trace is empty
	BestScore   float64
}

// Summarize totals evaluations and time and picks the lowest-scoring round.
func Summarize(entries []TraceEntry) TraceSummary {
	sum := TraceSummary{BestScore: math.Inf(1)}
	for _, e := range entries {
		sum.Rounds++
		sum.Evaluations += e.Evaluations
		sum.Elapsed += time.Duration(e.ElapsedMs) * time.Millisecond
		if e.Score < sum.BestScore {
			sum.BestRound, sum.BestScore = e.Round, e.Score
		}
	}
	if sum.BestRound == 0 {
		sum.BestScore = 0
	}
	return sum
}
