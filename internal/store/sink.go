package store

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cwbudde/asgen/internal/gen"
)

const (
	logDir      = "datastorage"
	snapshotDir = "gendata"

	// TimestampLayout names append logs, e.g. 20240415-093000.
	TimestampLayout = "20060102-150405"
)

// AppendMode controls what the append log receives after each round.
type AppendMode string

const (
	// AppendLine appends only the newly accepted vector.
	AppendLine AppendMode = "line"
	// AppendCumulative re-appends the whole set every round, so after k
	// rounds the log holds k(k+1)/2 lines. Kept for output compatibility
	// with files produced by earlier tooling.
	AppendCumulative AppendMode = "cumulative"
)

// ParseAppendMode validates a mode name.
func ParseAppendMode(s string) (AppendMode, error) {
	switch AppendMode(s) {
	case AppendLine, AppendCumulative:
		return AppendMode(s), nil
	default:
		return "", fmt.Errorf("unknown append mode: %s", s)
	}
}

// FSSink persists a synthetic set after every accepted round: an append-only
// log under datastorage/ and an overwritten snapshot under gendata/. A trace
// writer and a run record can be attached.
type FSSink struct {
	mode         AppendMode
	logPath      string
	snapshotPath string

	trace  *TraceWriter
	store  Store
	record *RunRecord
}

// NewFSSink prepares the output paths for one pass:
//
//	<baseDir>/datastorage/D_<plus|minus><class>_<timestamp>
//	<baseDir>/gendata/D_<plus|minus><class>_1
func NewFSSink(baseDir, classID string, p gen.Polarity, mode AppendMode, started time.Time) (*FSSink, error) {
	if classID == "" || strings.ContainsAny(classID, `/\`) {
		return nil, fmt.Errorf("invalid class identifier: %q", classID)
	}
	if _, err := ParseAppendMode(string(mode)); err != nil {
		return nil, err
	}

	name := "D_" + p.Tag() + classID
	return &FSSink{
		mode:         mode,
		logPath:      filepath.Join(baseDir, logDir, name+"_"+started.Format(TimestampLayout)),
		snapshotPath: filepath.Join(baseDir, snapshotDir, name+"_1"),
	}, nil
}

// WithTrace attaches a trace writer; the sink closes it on Close.
func (s *FSSink) WithTrace(tw *TraceWriter) *FSSink {
	s.trace = tw
	return s
}

// WithRun attaches a run record that is updated and saved after every round.
func (s *FSSink) WithRun(st Store, record *RunRecord) *FSSink {
	s.store = st
	s.record = record
	if record != nil {
		record.AppendLogPath = s.logPath
		record.SnapshotPath = s.snapshotPath
	}
	return s
}

// AppendLogPath returns the append log location.
func (s *FSSink) AppendLogPath() string { return s.logPath }

// SnapshotPath returns the snapshot location.
func (s *FSSink) SnapshotPath() string { return s.snapshotPath }

// Persist implements gen.Sink. The append log and the snapshot are the
// commit point: if either write fails, the log is rolled back to its length
// before the round and the round is not reflected on disk. Trace and run
// record updates happen after the commit; their failures are logged only.
func (s *FSSink) Persist(round gen.Round, set [][]float64) error {
	logSize, err := fileSize(s.logPath)
	if err != nil {
		return err
	}

	if err := s.appendLog(round, set); err != nil {
		s.rollbackLog(logSize)
		return err
	}
	if err := s.writeSnapshot(set); err != nil {
		s.rollbackLog(logSize)
		return err
	}

	if s.trace != nil {
		err := s.trace.Append(TraceEntry{
			Round:       round.Index,
			Polarity:    round.Polarity.String(),
			Score:       round.Score,
			Evaluations: round.Evaluations,
			ElapsedMs:   round.Elapsed.Milliseconds(),
			Vector:      round.Vector,
			Timestamp:   time.Now(),
		})
		if err != nil {
			slog.Warn("Failed to write round trace", "polarity", round.Polarity, "round", round.Index, "error", err)
		}
	}

	if s.store != nil && s.record != nil {
		s.record.Accepted = len(set)
		s.record.LastScore = round.Score
		if err := s.store.SaveRun(s.record); err != nil {
			slog.Warn("Failed to update run record", "run_id", s.record.ID, "round", round.Index, "error", err)
		}
	}

	slog.Debug("Round persisted",
		"polarity", round.Polarity,
		"round", round.Index,
		"log", s.logPath,
		"snapshot", s.snapshotPath,
	)
	return nil
}

// Close releases the attached trace writer.
func (s *FSSink) Close() error {
	if s.trace != nil {
		return s.trace.Close()
	}
	return nil
}

func (s *FSSink) appendLog(round gen.Round, set [][]float64) error {
	if err := os.MkdirAll(filepath.Dir(s.logPath), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(s.logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open append log: %w", err)
	}

	lines := [][]float64{round.Vector}
	if s.mode == AppendCumulative {
		lines = set
	}
	if err := WriteVectors(f, lines); err != nil {
		f.Close()
		return fmt.Errorf("failed to write append log: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close append log: %w", err)
	}
	return nil
}

// rollbackLog cuts the append log back to size bytes.
func (s *FSSink) rollbackLog(size int64) {
	if err := os.Truncate(s.logPath, size); err != nil && !os.IsNotExist(err) {
		slog.Error("Failed to roll back append log", "log", s.logPath, "size", size, "error", err)
	}
}

func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to stat append log: %w", err)
	}
	return info.Size(), nil
}

func (s *FSSink) writeSnapshot(set [][]float64) error {
	if err := os.MkdirAll(filepath.Dir(s.snapshotPath), 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	var b strings.Builder
	for _, v := range set {
		b.WriteString(FormatVector(v))
	}
	return writeFileAtomic(s.snapshotPath, []byte(b.String()))
}
