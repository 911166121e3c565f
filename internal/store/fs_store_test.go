package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore creates a temporary directory and returns an FSStore for testing.
func setupTestStore(t *testing.T) (*FSStore, string) {
	t.Helper()

	tempDir := t.TempDir()
	store, err := NewFSStore(tempDir)
	require.NoError(t, err)

	return store, tempDir
}

// createTestRecord creates a run record with test data.
func createTestRecord(classID string) *RunRecord {
	record := NewRunRecord(classID, "positive", RunConfig{
		DataPath:     "data/class3.txt",
		GenerateSize: 10,
		Budget:       1000,
		InitNum:      10,
		Lower:        -1,
		Upper:        1,
		Seed:         42,
		Algorithm:    "mayfly",
		AppendMode:   "line",
	})
	record.Deta = 5
	record.DetaMin = 3
	return record
}

func TestNewFSStore(t *testing.T) {
	baseDir := filepath.Join(t.TempDir(), "nested", "out")

	store, err := NewFSStore(baseDir)
	require.NoError(t, err)
	require.NotNil(t, store)

	assert.DirExists(t, baseDir)
}

func TestSaveAndLoadRun(t *testing.T) {
	store, tempDir := setupTestStore(t)

	record := createTestRecord("3")
	record.Accepted = 4
	record.LastScore = -0.25
	require.NoError(t, store.SaveRun(record))

	expectedPath := filepath.Join(tempDir, "runs", record.ID, "run.json")
	assert.FileExists(t, expectedPath)
	assert.NoFileExists(t, expectedPath+".tmp", "temp file should not remain after save")

	loaded, err := store.LoadRun(record.ID)
	require.NoError(t, err)

	assert.Equal(t, "3", loaded.ClassID)
	assert.Equal(t, "positive", loaded.Polarity)
	assert.Equal(t, 4, loaded.Accepted)
	assert.Equal(t, -0.25, loaded.LastScore)
	assert.Equal(t, record.Config, loaded.Config)
	assert.True(t, loaded.StartTime.Equal(record.StartTime))
}

func TestSaveRunOverwrites(t *testing.T) {
	store, _ := setupTestStore(t)

	record := createTestRecord("3")
	require.NoError(t, store.SaveRun(record))

	record.Accepted = 7
	record.MarkCompleted()
	require.NoError(t, store.SaveRun(record))

	loaded, err := store.LoadRun(record.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, loaded.Accepted)
	assert.Equal(t, StateCompleted, loaded.State)
	assert.NotNil(t, loaded.EndTime)
}

func TestSaveRunInvalid(t *testing.T) {
	store, _ := setupTestStore(t)

	assert.Error(t, store.SaveRun(nil), "nil record")
	assert.Error(t, store.SaveRun(&RunRecord{}), "empty ID")
}

func TestLoadRunNotFound(t *testing.T) {
	store, _ := setupTestStore(t)

	_, err := store.LoadRun("nonexistent")
	require.True(t, errors.Is(err, ErrNotFound), "got %v", err)

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "nonexistent", nf.RunID)
}

func TestLoadRunCorrupted(t *testing.T) {
	store, tempDir := setupTestStore(t)

	dir := filepath.Join(tempDir, "runs", "broken")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "run.json"), []byte("{not json"), 0644))

	_, err := store.LoadRun("broken")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestListRuns(t *testing.T) {
	store, tempDir := setupTestStore(t)

	infos, err := store.ListRuns()
	require.NoError(t, err)
	assert.Empty(t, infos)

	for _, class := range []string{"1", "2", "3"} {
		require.NoError(t, store.SaveRun(createTestRecord(class)))
	}

	// Corrupted record and stray file are skipped
	badDir := filepath.Join(tempDir, "runs", "bad")
	require.NoError(t, os.MkdirAll(badDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(badDir, "run.json"), []byte("nope"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "runs", "README"), []byte("x"), 0644))

	infos, err = store.ListRuns()
	require.NoError(t, err)
	require.Len(t, infos, 3)

	classes := map[string]bool{}
	for _, info := range infos {
		classes[info.ClassID] = true
		assert.Equal(t, 10, info.Target)
	}
	assert.Len(t, classes, 3)
}

func TestDeleteRun(t *testing.T) {
	store, tempDir := setupTestStore(t)

	record := createTestRecord("5")
	require.NoError(t, store.SaveRun(record))
	tw, err := NewTraceWriter(store.RunDir(record.ID), false)
	require.NoError(t, err)
	require.NoError(t, tw.Close())

	require.NoError(t, store.DeleteRun(record.ID))
	assert.NoDirExists(t, filepath.Join(tempDir, "runs", record.ID))

	err = store.DeleteRun(record.ID)
	assert.True(t, errors.Is(err, ErrNotFound), "second delete: %v", err)
}
