package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/manuelminca/sharp-timer-speckit/internal/domain"
	"github.com/manuelminca/sharp-timer-speckit/internal/ports"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// memStore is an in-memory ports.DocumentStore. Documents are copied
// through JSON so tests see the serialization the file store would.
type memStore struct {
	mu       sync.Mutex
	doc      []byte
	backups  []memBackup
	stamp    int64
	failSave bool
	corrupt  bool
}

type memBackup struct {
	ref ports.BackupRef
	raw []byte
}

var errSaveFailed = errors.New("save failed")

func newMemStore() *memStore {
	return &memStore{}
}

func (s *memStore) Load() (*domain.StoredDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc == nil {
		return nil, domain.ErrDocumentNotFound
	}
	if s.corrupt {
		return nil, domain.ErrCorruptDocument
	}
	var doc domain.StoredDocument
	if err := json.Unmarshal(s.doc, &doc); err != nil {
		return nil, domain.ErrCorruptDocument
	}
	return &doc, nil
}

func (s *memStore) Save(doc *domain.StoredDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failSave {
		return errSaveFailed
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	s.doc = raw
	s.corrupt = false
	return nil
}

func (s *memStore) WriteBackup(doc *domain.StoredDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	s.stamp++
	ref := ports.BackupRef{Name: fmt.Sprintf("state_backup_%d.json", s.stamp), Timestamp: s.stamp}
	s.backups = append(s.backups, memBackup{ref: ref, raw: raw})
	return nil
}

func (s *memStore) ListBackups() ([]ports.BackupRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	refs := make([]ports.BackupRef, 0, len(s.backups))
	for i := len(s.backups) - 1; i >= 0; i-- {
		refs = append(refs, s.backups[i].ref)
	}
	return refs, nil
}

func (s *memStore) LoadBackup(ref ports.BackupRef) (*domain.StoredDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.backups {
		if b.ref.Name == ref.Name {
			var doc domain.StoredDocument
			if err := json.Unmarshal(b.raw, &doc); err != nil {
				return nil, domain.ErrCorruptDocument
			}
			return &doc, nil
		}
	}
	return nil, domain.ErrDocumentNotFound
}

func (s *memStore) PruneBackups(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.backups) > n {
		s.backups = s.backups[len(s.backups)-n:]
	}
	return nil
}

// storedDoc returns the current canonical document, failing on absence.
func (s *memStore) storedDoc() *domain.StoredDocument {
	doc, err := s.Load()
	if err != nil {
		return nil
	}
	return doc
}

// recordingSink captures every signal the core emits.
type recordingSink struct {
	mu          sync.Mutex
	ticks       []domain.DisplayState
	completed   []domain.Mode
	transitions []domain.Mode
	quitChoice  ports.QuitChoice
	dialogs     int
}

func newRecordingSink() *recordingSink {
	return &recordingSink{quitChoice: ports.QuitCancel}
}

func (r *recordingSink) OnTick(d domain.DisplayState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticks = append(r.ticks, d)
}

func (r *recordingSink) OnCompleted(mode domain.Mode, totalMinutes int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = append(r.completed, mode)
}

func (r *recordingSink) OnAutoTransition(mode domain.Mode, d domain.DisplayState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, mode)
}

func (r *recordingSink) OnQuitDialogNeeded(d domain.DisplayState) ports.QuitChoice {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dialogs++
	return r.quitChoice
}

func (r *recordingSink) completedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.completed)
}

// memHistory records sessions in memory.
type memHistory struct {
	mu      sync.Mutex
	records []ports.SessionRecord
}

func (h *memHistory) Record(ctx context.Context, rec ports.SessionRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, rec)
	return nil
}

func (h *memHistory) Recent(ctx context.Context, limit int) ([]ports.SessionRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if limit > len(h.records) {
		limit = len(h.records)
	}
	out := make([]ports.SessionRecord, 0, limit)
	for i := len(h.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, h.records[i])
	}
	return out, nil
}

func (h *memHistory) Close() error { return nil }
