// Package ports defines the interfaces (driven and driving ports)
// between the timer core and its infrastructure: the durable document
// store, the wall clock, the session history log, and the UI shell.
package ports

import (
	"github.com/manuelminca/sharp-timer-speckit/internal/domain"
)

// BackupRef identifies one point-in-time backup of the stored document.
type BackupRef struct {
	Name      string
	Timestamp int64
}

// DocumentStore persists the single canonical document plus a bounded
// set of backups. This is a driven port (implemented by adapters).
type DocumentStore interface {
	// Load reads the canonical document. Returns
	// domain.ErrDocumentNotFound when no document exists and
	// domain.ErrCorruptDocument when it cannot be parsed.
	Load() (*domain.StoredDocument, error)

	// Save atomically replaces the canonical document. On failure the
	// previously stored document is untouched.
	Save(doc *domain.StoredDocument) error

	// WriteBackup copies the document to a new timestamped backup slot.
	WriteBackup(doc *domain.StoredDocument) error

	// ListBackups returns all backups, newest first.
	ListBackups() ([]BackupRef, error)

	// LoadBackup reads one backup document.
	LoadBackup(ref BackupRef) (*domain.StoredDocument, error)

	// PruneBackups deletes the oldest backups until at most n remain.
	PruneBackups(n int) error
}
