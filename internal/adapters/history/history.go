// Package history keeps a log of finished sessions in SQLite.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/manuelminca/sharp-timer-speckit/internal/domain"
	"github.com/manuelminca/sharp-timer-speckit/internal/ports"
	_ "modernc.org/sqlite"
)

// sqliteLog implements ports.HistoryLog using SQLite.
type sqliteLog struct {
	db *sql.DB
}

// Ensure sqliteLog implements ports.HistoryLog.
var _ ports.HistoryLog = (*sqliteLog)(nil)

// New opens (or creates) the history database at dbPath.
func New(dbPath string) (ports.HistoryLog, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	log := &sqliteLog{db: db}
	if err := log.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate history database: %w", err)
	}
	return log, nil
}

// NewMemory opens an in-memory history log for testing.
func NewMemory() (ports.HistoryLog, error) {
	return New(":memory:")
}

func (l *sqliteLog) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		mode TEXT NOT NULL,
		duration_seconds INTEGER NOT NULL,
		completed_at DATETIME NOT NULL,
		auto_transition INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_completed ON sessions(completed_at);
	`
	_, err := l.db.Exec(schema)
	return err
}

// Record appends one finished session.
func (l *sqliteLog) Record(ctx context.Context, rec ports.SessionRecord) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO sessions (session_id, mode, duration_seconds, completed_at, auto_transition)
		VALUES (?, ?, ?, ?, ?)`,
		rec.SessionID, string(rec.Mode), rec.DurationSeconds,
		rec.CompletedAt.UTC().Format(time.RFC3339), boolToInt(rec.AutoTransition))
	if err != nil {
		return fmt.Errorf("failed to record session: %w", err)
	}
	return nil
}

// Recent returns the most recently finished sessions, newest first.
func (l *sqliteLog) Recent(ctx context.Context, limit int) ([]ports.SessionRecord, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT session_id, mode, duration_seconds, completed_at, auto_transition
		FROM sessions ORDER BY completed_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var records []ports.SessionRecord
	for rows.Next() {
		var (
			rec      ports.SessionRecord
			mode     string
			finished string
			auto     int
		)
		if err := rows.Scan(&rec.SessionID, &mode, &rec.DurationSeconds, &finished, &auto); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		rec.Mode = domain.Mode(mode)
		rec.AutoTransition = auto != 0
		if t, err := time.Parse(time.RFC3339, finished); err == nil {
			rec.CompletedAt = t
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close closes the database connection.
func (l *sqliteLog) Close() error {
	return l.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
