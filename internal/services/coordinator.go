package services

import (
	"fmt"
	"sync"

	"github.com/manuelminca/sharp-timer-speckit/internal/domain"
	"github.com/manuelminca/sharp-timer-speckit/internal/ports"
)

// MaxBackups bounds the rotating backup set.
const MaxBackups = 5

// PersistenceCoordinator keeps the durable store eventually consistent
// with the in-memory engine state. All saves are serialized through a
// single writer lock, so an older in-flight save can never overwrite a
// newer one. Failures are absorbed here: they are recorded, reported to
// the caller, and never allowed to disturb the countdown.
type PersistenceCoordinator struct {
	mu    sync.Mutex
	store ports.DocumentStore
	clock ports.Clock

	lastErr error
}

// NewPersistenceCoordinator creates a coordinator over the given store.
func NewPersistenceCoordinator(store ports.DocumentStore, clock ports.Clock) *PersistenceCoordinator {
	return &PersistenceCoordinator{store: store, clock: clock}
}

// OnStateChanged persists the new snapshot after an engine mutation.
// It returns the snapshot actually written (with a fresh
// last-persisted timestamp) so callers can stay consistent with disk.
func (c *PersistenceCoordinator) OnStateChanged(state domain.TimerState) (domain.TimerState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	state.LastPersistedAt = c.clock.Now()
	err := c.saveLocked(func(doc *domain.StoredDocument) {
		doc.TimerState = &state
	})
	return state, err
}

// PeriodicAutosave performs the same save as OnStateChanged and, on
// this slower cadence only, also rotates a backup of the document.
func (c *PersistenceCoordinator) PeriodicAutosave(state domain.TimerState) (domain.TimerState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	state.LastPersistedAt = c.clock.Now()
	var saved *domain.StoredDocument
	err := c.saveLocked(func(doc *domain.StoredDocument) {
		doc.TimerState = &state
		saved = doc
	})
	if err != nil {
		return state, err
	}

	if err := c.store.WriteBackup(saved); err != nil {
		c.lastErr = fmt.Errorf("backup write failed: %w", err)
		return state, c.lastErr
	}
	if err := c.store.PruneBackups(MaxBackups); err != nil {
		c.lastErr = fmt.Errorf("backup rotation failed: %w", err)
		return state, c.lastErr
	}
	return state, nil
}

// OnSuspendRequested forces an immediate save ahead of a system sleep,
// marking the snapshot so the next launch knows it crossed a suspend.
func (c *PersistenceCoordinator) OnSuspendRequested(state domain.TimerState) (domain.TimerState, error) {
	state.SurvivedSleep = true
	return c.OnStateChanged(state)
}

// Clear removes the timer-state block from the document. The settings
// block is left untouched.
func (c *PersistenceCoordinator) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.saveLocked(func(doc *domain.StoredDocument) {
		doc.TimerState = nil
	})
}

// UpdateSettings persists the settings block of the document.
func (c *PersistenceCoordinator) UpdateSettings(settings domain.Settings) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.saveLocked(func(doc *domain.StoredDocument) {
		doc.Settings = &settings
	})
}

// Settings reads the settings block, falling back to defaults when the
// document is absent or partial.
func (c *PersistenceCoordinator) Settings() domain.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc, err := c.store.Load()
	if err != nil {
		return domain.DefaultSettings()
	}
	return doc.SettingsOrDefault()
}

// LastError returns the most recent persistence failure, if any. The
// shell may surface it as a non-blocking warning.
func (c *PersistenceCoordinator) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// saveLocked loads the current document (or starts a fresh one),
// applies the mutation, stamps metadata, and saves atomically. A
// corrupt canonical document is replaced rather than propagated.
// Callers must hold c.mu.
func (c *PersistenceCoordinator) saveLocked(mutate func(doc *domain.StoredDocument)) error {
	doc, err := c.store.Load()
	if err != nil {
		doc = &domain.StoredDocument{}
	}

	mutate(doc)

	backupCount := 0
	if backups, err := c.store.ListBackups(); err == nil {
		backupCount = len(backups)
	}
	doc.Metadata = domain.Metadata{
		SchemaVersion: domain.SchemaVersion,
		LastSaved:     c.clock.Now(),
		BackupCount:   backupCount,
	}

	if err := c.store.Save(doc); err != nil {
		c.lastErr = fmt.Errorf("document save failed: %w", err)
		return c.lastErr
	}
	c.lastErr = nil
	return nil
}
