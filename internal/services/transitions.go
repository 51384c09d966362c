package services

import (
	"time"

	"github.com/manuelminca/sharp-timer-speckit/internal/domain"
)

// NextMode returns the mode that follows a completed session:
// work alternates with rest_eyes, and a long rest always leads back to
// work.
func NextMode(completed domain.Mode) domain.Mode {
	if completed == domain.ModeWork {
		return domain.ModeRestEyes
	}
	return domain.ModeWork
}

// TransitionFrom builds the successor session for a completed one: the
// next mode at its configured duration, paused, with a fresh session
// id. The successor awaits a single user action to resume.
func TransitionFrom(completed domain.TimerState, settings domain.Settings, now time.Time) domain.TimerState {
	mode := NextMode(completed.Mode)
	seconds := int(settings.DurationFor(mode) / time.Second)
	return domain.TimerState{
		Mode:                 mode,
		RemainingSeconds:     seconds,
		TotalDurationSeconds: seconds,
		IsRunning:            false,
		IsPaused:             true,
		SessionID:            domain.NewSessionID(),
		StartedAt:            now,
		LastPersistedAt:      now,
	}
}
