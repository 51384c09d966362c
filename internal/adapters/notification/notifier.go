// Package notification provides desktop notification utilities.
package notification

import (
	"fmt"

	"github.com/gen2brain/beeep"
	"github.com/manuelminca/sharp-timer-speckit/internal/domain"
)

// Notifier handles desktop notifications and the completion sound.
type Notifier struct {
	enabled bool
	sound   bool
}

// New creates a notifier honoring the settings toggles.
func New(settings domain.Settings) *Notifier {
	return &Notifier{
		enabled: settings.NotificationsEnabled,
		sound:   settings.SoundEnabled,
	}
}

// Apply reconfigures the notifier from freshly loaded settings.
func (n *Notifier) Apply(settings domain.Settings) {
	n.enabled = settings.NotificationsEnabled
	n.sound = settings.SoundEnabled
}

// SetEnabled toggles desktop notifications.
func (n *Notifier) SetEnabled(enabled bool) {
	n.enabled = enabled
}

// IsEnabled returns true if notifications are enabled.
func (n *Notifier) IsEnabled() bool {
	return n.enabled
}

// NotifyCompleted announces a finished session.
func (n *Notifier) NotifyCompleted(mode domain.Mode, totalMinutes int) error {
	if !n.enabled {
		return nil
	}
	if n.sound {
		_ = beeep.Beep(beeep.DefaultFreq, beeep.DefaultDuration)
	}

	var message string
	switch mode {
	case domain.ModeWork:
		message = fmt.Sprintf("Work session complete (%d min). Time to rest your eyes.", totalMinutes)
	case domain.ModeRestEyes:
		message = "Eyes rested. Back to work?"
	case domain.ModeLongRest:
		message = "Long rest over. Ready for a fresh work session?"
	}
	return beeep.Notify("Sharp Timer", message, "")
}

// NotifyAutoTransition announces the next mode waiting to start.
func (n *Notifier) NotifyAutoTransition(mode domain.Mode) error {
	if !n.enabled {
		return nil
	}
	message := fmt.Sprintf("%s is queued and paused. Press resume when ready.", mode.Label())
	return beeep.Notify("Sharp Timer", message, "")
}
