package services

import (
	"time"

	"github.com/manuelminca/sharp-timer-speckit/internal/domain"
	"github.com/manuelminca/sharp-timer-speckit/internal/ports"
)

// DefaultMaxStateAge is how old a snapshot may be and still resume.
const DefaultMaxStateAge = 7 * 24 * time.Hour

// RecoveryOutcome is what startup recovery decided.
type RecoveryOutcome struct {
	// State is the session to install, nil when nothing is resumable.
	State *domain.TimerState

	// Settings is the persisted settings block (or defaults).
	Settings domain.Settings

	// CompletedOnLoad means the recovered session ran out while the
	// process was down; a completion signal is owed immediately.
	CompletedOnLoad bool

	// ReplayedTransition means a terminal snapshot with no successor
	// was found and State is the re-derived successor session.
	ReplayedTransition bool

	// FromBackup means the canonical document was unusable and State
	// came from the backup chain.
	FromBackup bool
}

// RecoveryReconciler decides, at process startup, what timer state (if
// any) to hand to the engine. It walks the canonical document and then
// the backup chain newest-to-oldest, rejects invalid or stale
// snapshots, and reconciles a running snapshot against the wall-clock
// time that passed while the process was not ticking.
type RecoveryReconciler struct {
	store  ports.DocumentStore
	clock  ports.Clock
	maxAge time.Duration
}

// NewRecoveryReconciler creates a reconciler with the given staleness
// bound; maxAge <= 0 selects the default of seven days.
func NewRecoveryReconciler(store ports.DocumentStore, clock ports.Clock, maxAge time.Duration) *RecoveryReconciler {
	if maxAge <= 0 {
		maxAge = DefaultMaxStateAge
	}
	return &RecoveryReconciler{store: store, clock: clock, maxAge: maxAge}
}

// Recover runs the full recovery algorithm.
func (r *RecoveryReconciler) Recover() RecoveryOutcome {
	now := r.clock.Now()
	outcome := RecoveryOutcome{Settings: domain.DefaultSettings()}

	doc, err := r.store.Load()
	if err == nil {
		outcome.Settings = doc.SettingsOrDefault()
	}

	state, fromBackup := r.findValidState(doc, err, now)
	if state == nil {
		return outcome
	}
	outcome.FromBackup = fromBackup

	// Staleness: an old session is not meaningfully resumable.
	if now.Sub(state.LastPersistedAt) > r.maxAge {
		return outcome
	}

	switch {
	case state.IsPaused:
		// Paused time does not elapse; restore verbatim.
		outcome.State = state

	case state.IsRunning:
		adjusted := *state
		elapsed := int(now.Sub(state.LastPersistedAt) / time.Second)
		adjusted.RemainingSeconds -= elapsed
		if adjusted.RemainingSeconds <= 0 {
			// The session ran out while the process was down (or the
			// engine died exactly at completion). The completion
			// signal must not be lost to the crash.
			adjusted.RemainingSeconds = 0
			adjusted.IsRunning = false
			outcome.CompletedOnLoad = true
		}
		outcome.State = &adjusted

	case state.IsCompleted():
		// Terminal snapshot with no successor: the process died
		// between "timer completed" and "next mode persisted".
		// Re-derive the successor through the same transition policy.
		if outcome.Settings.AutoTransition {
			successor := TransitionFrom(*state, outcome.Settings, now)
			outcome.State = &successor
			outcome.ReplayedTransition = true
		}

	default:
		// A stopped snapshot carries no session worth restoring.
	}

	return outcome
}

// findValidState returns the first valid snapshot: the canonical
// document's, else each backup newest to oldest.
func (r *RecoveryReconciler) findValidState(doc *domain.StoredDocument, loadErr error, now time.Time) (*domain.TimerState, bool) {
	if loadErr == nil && doc.TimerState == nil {
		// A clean document with no timer state means the user cleared
		// the session; backups must not resurrect it.
		return nil, false
	}
	if loadErr == nil && doc.TimerState.IsValid(now) {
		return doc.TimerState, false
	}

	refs, err := r.store.ListBackups()
	if err != nil {
		return nil, false
	}
	for _, ref := range refs {
		backup, err := r.store.LoadBackup(ref)
		if err != nil || backup.TimerState == nil {
			continue
		}
		if backup.TimerState.IsValid(now) {
			return backup.TimerState, true
		}
	}
	return nil, false
}
