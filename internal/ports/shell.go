package ports

import (
	"github.com/manuelminca/sharp-timer-speckit/internal/domain"
)

// QuitChoice is the user's answer to the quit confirmation dialog.
type QuitChoice string

const (
	// QuitStop stops the timer, clears persisted state, and exits.
	QuitStop QuitChoice = "stop_and_quit"

	// QuitPreserve saves the current state and exits; the next launch
	// resumes the session.
	QuitPreserve QuitChoice = "preserve_and_quit"

	// QuitCancel aborts the quit; nothing changes.
	QuitCancel QuitChoice = "cancel"
)

// StatusSink is the UI shell as seen from the core. This is a driving
// port: the core calls it, the shell renders on its own schedule.
type StatusSink interface {
	// OnTick delivers the current display state at least once per
	// second while a session is running.
	OnTick(state domain.DisplayState)

	// OnCompleted fires exactly once when a session runs down to zero.
	OnCompleted(mode domain.Mode, totalMinutes int)

	// OnAutoTransition fires after a completed session advanced to the
	// next mode, paused and awaiting the user.
	OnAutoTransition(mode domain.Mode, state domain.DisplayState)

	// OnQuitDialogNeeded blocks until the user picks one of the three
	// quit options. Only called while a session is active.
	OnQuitDialogNeeded(state domain.DisplayState) QuitChoice
}
