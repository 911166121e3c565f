package store

import (
	"time"

	"github.com/google/uuid"
)

// RunState represents the current state of a generation pass
type RunState string

const (
	StatePending   RunState = "pending"
	StateRunning   RunState = "running"
	StateCompleted RunState = "completed"
	StateFailed    RunState = "failed"
)

// RunConfig is the part of the generation configuration recorded with a run.
type RunConfig struct {
	DataPath     string  `json:"dataPath,omitempty"`
	GenerateSize int     `json:"generateSize"`
	Budget       int     `json:"budget"`
	InitNum      int     `json:"initNum"`
	Lower        float64 `json:"lower"`
	Upper        float64 `json:"upper"`
	Seed         int64   `json:"seed"`
	Algorithm    string  `json:"algorithm"`
	AppendMode   string  `json:"appendMode"`
}

// RunRecord is the persisted manifest of one generation pass.
type RunRecord struct {
	ID       string    `json:"id"`
	ClassID  string    `json:"classId"`
	Polarity string    `json:"polarity"`
	State    RunState  `json:"state"`
	Config   RunConfig `json:"config"`

	// Distance statistics of the original data
	Deta    float64 `json:"deta"`
	DetaMin float64 `json:"detaMin"`

	// Accepted is the number of rounds committed so far; LastScore is the
	// objective value of the most recent accepted vector.
	Accepted  int     `json:"accepted"`
	LastScore float64 `json:"lastScore"`

	AppendLogPath string `json:"appendLogPath,omitempty"`
	SnapshotPath  string `json:"snapshotPath,omitempty"`

	StartTime time.Time  `json:"startTime"`
	EndTime   *time.Time `json:"endTime,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// RunInfo is a summary of a run for listings.
type RunInfo struct {
	ID        string    `json:"id"`
	ClassID   string    `json:"classId"`
	Polarity  string    `json:"polarity"`
	State     RunState  `json:"state"`
	Accepted  int       `json:"accepted"`
	Target    int       `json:"target"`
	LastScore float64   `json:"lastScore"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRunRecord creates a pending record with a fresh ID.
func NewRunRecord(classID, polarity string, config RunConfig) *RunRecord {
	return &RunRecord{
		ID:        uuid.New().String(),
		ClassID:   classID,
		Polarity:  polarity,
		State:     StatePending,
		Config:    config,
		StartTime: time.Now(),
	}
}

// ToInfo converts a full RunRecord to RunInfo.
func (r *RunRecord) ToInfo() RunInfo {
	return RunInfo{
		ID:        r.ID,
		ClassID:   r.ClassID,
		Polarity:  r.Polarity,
		State:     r.State,
		Accepted:  r.Accepted,
		Target:    r.Config.GenerateSize,
		LastScore: r.LastScore,
		Timestamp: r.StartTime,
	}
}

// MarkCompleted moves the record to the completed state.
func (r *RunRecord) MarkCompleted() {
	end := time.Now()
	r.State = StateCompleted
	r.EndTime = &end
}

// MarkFailed moves the record to the failed state and keeps the error text.
func (r *RunRecord) MarkFailed(err error) {
	end := time.Now()
	r.State = StateFailed
	r.EndTime = &end
	if err != nil {
		r.Error = err.Error()
	}
}

// Validate checks if the record has valid data.
func (r *RunRecord) Validate() error {
	if r.ID == "" {
		return &ValidationError{Field: "ID", Reason: "cannot be empty"}
	}
	if r.ClassID == "" {
		return &ValidationError{Field: "ClassID", Reason: "cannot be empty"}
	}
	if r.Polarity == "" {
		return &ValidationError{Field: "Polarity", Reason: "cannot be empty"}
	}
	if r.Accepted < 0 {
		return &ValidationError{Field: "Accepted", Reason: "cannot be negative"}
	}
	if r.Accepted > r.Config.GenerateSize {
		return &ValidationError{Field: "Accepted", Reason: "exceeds generate size"}
	}
	if r.Config.Budget <= 0 {
		return &ValidationError{Field: "Config.Budget", Reason: "must be positive"}
	}
	if r.StartTime.IsZero() {
		return &ValidationError{Field: "StartTime", Reason: "cannot be zero"}
	}
	return nil
}

// ValidationError represents a run record validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}
