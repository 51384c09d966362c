package domain

import (
	"fmt"
	"time"
)

// ClockSkewTolerance is how far into the future a snapshot's
// last-persisted timestamp may be before the snapshot is rejected.
const ClockSkewTolerance = 60 * time.Second

// TimerState is a serializable snapshot of one countdown session.
// The engine owns the authoritative copy; everything else receives
// value copies, never a shared reference.
type TimerState struct {
	Mode                 Mode      `json:"mode"`
	RemainingSeconds     int       `json:"remaining_seconds"`
	TotalDurationSeconds int       `json:"total_duration_seconds"`
	IsRunning            bool      `json:"is_running"`
	IsPaused             bool      `json:"is_paused"`
	SessionID            string    `json:"session_id"`
	StartedAt            time.Time `json:"started_at"`
	LastPersistedAt      time.Time `json:"last_persisted_at"`
	SurvivedSleep        bool      `json:"survived_sleep"`
}

// NewTimerState creates a fresh running session for the given mode.
func NewTimerState(mode Mode, total time.Duration, now time.Time) TimerState {
	seconds := int(total / time.Second)
	return TimerState{
		Mode:                 mode,
		RemainingSeconds:     seconds,
		TotalDurationSeconds: seconds,
		IsRunning:            true,
		IsPaused:             false,
		SessionID:            NewSessionID(),
		StartedAt:            now,
		LastPersistedAt:      now,
	}
}

// IsActive reports whether the session is running or paused.
func (s TimerState) IsActive() bool {
	return s.IsRunning || s.IsPaused
}

// IsCompleted reports whether the session ran down to zero.
func (s TimerState) IsCompleted() bool {
	return s.RemainingSeconds == 0 && !s.IsRunning && !s.IsPaused
}

// Remaining returns the remaining time as a duration.
func (s TimerState) Remaining() time.Duration {
	if s.RemainingSeconds < 0 {
		return 0
	}
	return time.Duration(s.RemainingSeconds) * time.Second
}

// Progress returns the completion percentage (0.0 to 1.0).
func (s TimerState) Progress() float64 {
	if s.TotalDurationSeconds <= 0 {
		return 0
	}
	progress := float64(s.TotalDurationSeconds-s.RemainingSeconds) / float64(s.TotalDurationSeconds)
	if progress < 0 {
		return 0
	}
	if progress > 1 {
		return 1
	}
	return progress
}

// Validate checks the snapshot invariants against the given wall-clock
// time. A nil result means the snapshot is safe to resume.
func (s TimerState) Validate(now time.Time) error {
	if !s.Mode.IsValid() {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidState, s.Mode)
	}
	if s.TotalDurationSeconds <= 0 {
		return fmt.Errorf("%w: total duration %d", ErrInvalidState, s.TotalDurationSeconds)
	}
	if s.RemainingSeconds < 0 || s.RemainingSeconds > s.TotalDurationSeconds {
		return fmt.Errorf("%w: remaining %d out of range [0,%d]",
			ErrInvalidState, s.RemainingSeconds, s.TotalDurationSeconds)
	}
	if s.IsRunning && s.IsPaused {
		return fmt.Errorf("%w: running and paused simultaneously", ErrInvalidState)
	}
	if s.SessionID == "" {
		return fmt.Errorf("%w: empty session id", ErrInvalidState)
	}
	if s.LastPersistedAt.After(now.Add(ClockSkewTolerance)) {
		return fmt.Errorf("%w: persisted timestamp %s is in the future",
			ErrInvalidState, s.LastPersistedAt.Format(time.RFC3339))
	}
	return nil
}

// IsValid reports whether the snapshot passes all invariants.
func (s TimerState) IsValid(now time.Time) bool {
	return s.Validate(now) == nil
}

// DisplayState is the UI-facing read model of a session.
type DisplayState struct {
	Mode                 Mode
	RemainingSeconds     int
	TotalDurationSeconds int
	IsRunning            bool
	IsPaused             bool
	Progress             float64
}

// Display projects the snapshot into its UI-facing read model.
func (s TimerState) Display() DisplayState {
	return DisplayState{
		Mode:                 s.Mode,
		RemainingSeconds:     s.RemainingSeconds,
		TotalDurationSeconds: s.TotalDurationSeconds,
		IsRunning:            s.IsRunning,
		IsPaused:             s.IsPaused,
		Progress:             s.Progress(),
	}
}

// Clock formats the remaining time as MM:SS.
func (d DisplayState) Clock() string {
	m := d.RemainingSeconds / 60
	s := d.RemainingSeconds % 60
	return fmt.Sprintf("%02d:%02d", m, s)
}
