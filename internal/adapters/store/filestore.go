// Package store persists the timer document as a single JSON file with
// a rotating set of timestamped backups beside it.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/manuelminca/sharp-timer-speckit/internal/domain"
	"github.com/manuelminca/sharp-timer-speckit/internal/ports"
)

const (
	documentName = "state.json"
	backupDir    = "backups"
	backupPrefix = "state_backup_"
	backupSuffix = ".json"
)

// FileStore implements ports.DocumentStore over a data directory.
// The document is single-writer: one process instance owns it.
type FileStore struct {
	mu   sync.Mutex
	path string
	bdir string
}

// Ensure FileStore implements ports.DocumentStore.
var _ ports.DocumentStore = (*FileStore)(nil)

// New creates a store rooted at dataDir, creating the directory tree
// with owner-only permissions.
func New(dataDir string) (*FileStore, error) {
	bdir := filepath.Join(dataDir, backupDir)
	if err := os.MkdirAll(bdir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileStore{
		path: filepath.Join(dataDir, documentName),
		bdir: bdir,
	}, nil
}

// Load reads and parses the canonical document.
func (s *FileStore) Load() (*domain.StoredDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return decodeDocument(raw)
}

// Save atomically replaces the canonical document: the full document
// is written to a temporary file, read back and verified to parse, and
// only then renamed over the canonical path. On any failure the
// previously stored document is untouched.
func (s *FileStore) Save(doc *domain.StoredDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0600); err != nil {
		return fmt.Errorf("failed to write temp document: %w", err)
	}

	// Verify the bytes on disk round-trip before replacing anything.
	written, err := os.ReadFile(tmp)
	if err == nil {
		_, err = decodeDocument(written)
	}
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("temp document failed verification: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace document: %w", err)
	}
	return nil
}

// WriteBackup copies the document into a new timestamped backup slot.
func (s *FileStore) WriteBackup(doc *domain.StoredDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal backup: %w", err)
	}

	name := fmt.Sprintf("%s%d%s", backupPrefix, nextBackupStamp(), backupSuffix)
	if err := os.WriteFile(filepath.Join(s.bdir, name), raw, 0600); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	return nil
}

// ListBackups returns all backups, newest first.
func (s *FileStore) ListBackups() ([]ports.BackupRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listLocked()
}

// LoadBackup reads one backup document.
func (s *FileStore) LoadBackup(ref ports.BackupRef) (*domain.StoredDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(filepath.Join(s.bdir, ref.Name))
	if err != nil {
		return nil, fmt.Errorf("failed to read backup: %w", err)
	}
	return decodeDocument(raw)
}

// PruneBackups deletes the oldest backups until at most n remain.
func (s *FileStore) PruneBackups(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	refs, err := s.listLocked()
	if err != nil {
		return err
	}
	for i := n; i < len(refs); i++ {
		if err := os.Remove(filepath.Join(s.bdir, refs[i].Name)); err != nil {
			return fmt.Errorf("failed to remove backup: %w", err)
		}
	}
	return nil
}

func (s *FileStore) listLocked() ([]ports.BackupRef, error) {
	entries, err := os.ReadDir(s.bdir)
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}

	var refs []ports.BackupRef
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, backupPrefix) || !strings.HasSuffix(name, backupSuffix) {
			continue
		}
		stamp := strings.TrimSuffix(strings.TrimPrefix(name, backupPrefix), backupSuffix)
		ts, err := strconv.ParseInt(stamp, 10, 64)
		if err != nil {
			continue
		}
		refs = append(refs, ports.BackupRef{Name: name, Timestamp: ts})
	}

	sort.Slice(refs, func(i, j int) bool {
		return refs[i].Timestamp > refs[j].Timestamp
	})
	return refs, nil
}

// nextBackupStamp orders backup slots by creation time.
func nextBackupStamp() int64 {
	return time.Now().UnixNano()
}

// decodeDocument parses a document and rejects unknown schema versions.
func decodeDocument(raw []byte) (*domain.StoredDocument, error) {
	var doc domain.StoredDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptDocument, err)
	}
	if doc.Metadata.SchemaVersion != 0 && doc.Metadata.SchemaVersion != domain.SchemaVersion {
		return nil, fmt.Errorf("%w: schema version %d", domain.ErrCorruptDocument, doc.Metadata.SchemaVersion)
	}
	return &doc, nil
}
