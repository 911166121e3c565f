package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunRecord(t *testing.T) {
	a := createTestRecord("1")
	b := createTestRecord("1")

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, StatePending, a.State)
	assert.False(t, a.StartTime.IsZero())
}

func TestRunRecordTransitions(t *testing.T) {
	r := createTestRecord("1")
	r.State = StateRunning

	r.MarkFailed(errors.New("optimizer exploded"))
	assert.Equal(t, StateFailed, r.State)
	assert.Equal(t, "optimizer exploded", r.Error)
	assert.NotNil(t, r.EndTime)

	r = createTestRecord("1")
	r.MarkCompleted()
	assert.Equal(t, StateCompleted, r.State)
	assert.NotNil(t, r.EndTime)
	assert.Empty(t, r.Error)
}

func TestRunRecordToInfo(t *testing.T) {
	r := createTestRecord("9")
	r.Accepted = 3
	r.LastScore = 0.5

	info := r.ToInfo()
	assert.Equal(t, r.ID, info.ID)
	assert.Equal(t, "9", info.ClassID)
	assert.Equal(t, 3, info.Accepted)
	assert.Equal(t, 10, info.Target)
	assert.Equal(t, 0.5, info.LastScore)
	assert.True(t, info.Timestamp.Equal(r.StartTime), "timestamp is the start time")
}

func TestRunRecordValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RunRecord)
		field  string
	}{
		{"valid", func(*RunRecord) {}, ""},
		{"empty id", func(r *RunRecord) { r.ID = "" }, "ID"},
		{"empty class", func(r *RunRecord) { r.ClassID = "" }, "ClassID"},
		{"empty polarity", func(r *RunRecord) { r.Polarity = "" }, "Polarity"},
		{"negative accepted", func(r *RunRecord) { r.Accepted = -1 }, "Accepted"},
		{"too many accepted", func(r *RunRecord) { r.Accepted = 11 }, "Accepted"},
		{"zero budget", func(r *RunRecord) { r.Config.Budget = 0 }, "Config.Budget"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := createTestRecord("1")
			tt.mutate(r)

			err := r.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}
