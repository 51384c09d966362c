package ports

import (
	"context"
	"time"

	"github.com/manuelminca/sharp-timer-speckit/internal/domain"
)

// SessionRecord is one finished countdown as kept in the history log.
type SessionRecord struct {
	SessionID       string
	Mode            domain.Mode
	DurationSeconds int
	CompletedAt     time.Time
	AutoTransition  bool
}

// HistoryLog records finished sessions for the history command.
// This is a driven port (implemented by adapters).
type HistoryLog interface {
	// Record appends one finished session.
	Record(ctx context.Context, rec SessionRecord) error

	// Recent returns the most recently finished sessions, newest first.
	Recent(ctx context.Context, limit int) ([]SessionRecord, error)

	// Close closes the underlying store.
	Close() error
}
