package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manuelminca/sharp-timer-speckit/internal/domain"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := New(t.TempDir())
	require.NoError(t, err)
	return s
}

func sampleDocument() *domain.StoredDocument {
	state := domain.TimerState{
		Mode:                 domain.ModeWork,
		RemainingSeconds:     900,
		TotalDurationSeconds: 1500,
		IsRunning:            true,
		SessionID:            domain.NewSessionID(),
		StartedAt:            time.Now().Add(-10 * time.Minute),
		LastPersistedAt:      time.Now(),
	}
	settings := domain.DefaultSettings()
	return &domain.StoredDocument{
		TimerState: &state,
		Metadata:   domain.Metadata{SchemaVersion: domain.SchemaVersion, LastSaved: time.Now()},
		Settings:   &settings,
	}
}

func TestFileStore_SaveLoad(t *testing.T) {
	s := newTestStore(t)
	doc := sampleDocument()

	require.NoError(t, s.Save(doc))

	loaded, err := s.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded.TimerState)
	assert.Equal(t, doc.TimerState.SessionID, loaded.TimerState.SessionID)
	assert.Equal(t, doc.TimerState.RemainingSeconds, loaded.TimerState.RemainingSeconds)
	assert.Equal(t, doc.Settings.WorkMinutes, loaded.Settings.WorkMinutes)
}

func TestFileStore_LoadMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Load()
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestFileStore_LoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	t.Run("truncated json", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "state.json"), []byte(`{"timer_state": {"mo`), 0600))
		_, err := s.Load()
		assert.ErrorIs(t, err, domain.ErrCorruptDocument)
	})

	t.Run("unknown schema version", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "state.json"), []byte(`{"metadata":{"schema_version":99}}`), 0600))
		_, err := s.Load()
		assert.ErrorIs(t, err, domain.ErrCorruptDocument)
	})

	t.Run("partial document still parses", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "state.json"), []byte(`{"settings":{"work_duration":45}}`), 0600))
		doc, err := s.Load()
		require.NoError(t, err)
		assert.Nil(t, doc.TimerState)
		assert.Equal(t, 45, doc.Settings.WorkMinutes)
	})
}

func TestFileStore_SaveIsAtomic(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, s.Save(sampleDocument()))

	// A leftover temp file from an interrupted save must not shadow or
	// corrupt the canonical document.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "state.json.tmp"), []byte("garbage"), 0600))
	loaded, err := s.Load()
	require.NoError(t, err)
	assert.NotNil(t, loaded.TimerState)

	// The next save replaces both cleanly.
	second := sampleDocument()
	second.TimerState.RemainingSeconds = 1
	require.NoError(t, s.Save(second))

	loaded, err = s.Load()
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.TimerState.RemainingSeconds)
	_, err = os.Stat(filepath.Join(dir, "state.json.tmp"))
	assert.True(t, errors.Is(err, os.ErrNotExist), "temp file should be gone after save")
}

func TestFileStore_Backups(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < 8; i++ {
		doc := sampleDocument()
		doc.TimerState.RemainingSeconds = 100 * (i + 1)
		require.NoError(t, s.WriteBackup(doc))
	}

	refs, err := s.ListBackups()
	require.NoError(t, err)
	require.Len(t, refs, 8)
	for i := 1; i < len(refs); i++ {
		assert.GreaterOrEqual(t, refs[i-1].Timestamp, refs[i].Timestamp, "newest first")
	}

	// The newest backup carries the last written snapshot.
	newest, err := s.LoadBackup(refs[0])
	require.NoError(t, err)
	assert.Equal(t, 800, newest.TimerState.RemainingSeconds)

	require.NoError(t, s.PruneBackups(5))
	refs, err = s.ListBackups()
	require.NoError(t, err)
	assert.Len(t, refs, 5)

	// The survivors are the five newest.
	oldest, err := s.LoadBackup(refs[len(refs)-1])
	require.NoError(t, err)
	assert.Equal(t, 400, oldest.TimerState.RemainingSeconds)
}

func TestFileStore_IgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, s.WriteBackup(sampleDocument()))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "backups", "notes.txt"), []byte("x"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "backups", "state_backup_abc.json"), []byte("x"), 0600))

	refs, err := s.ListBackups()
	require.NoError(t, err)
	assert.Len(t, refs, 1)
}
