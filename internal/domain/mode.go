// Package domain contains the core entities for Sharp Timer: the timer
// modes, the serializable countdown state, and the on-disk document
// shape. These types are independent of any external infrastructure.
package domain

import "fmt"

// Mode identifies which preset a countdown session belongs to.
type Mode string

const (
	ModeWork     Mode = "work"
	ModeRestEyes Mode = "rest_eyes"
	ModeLongRest Mode = "long_rest"
)

// Modes returns all known modes in menu order.
func Modes() []Mode {
	return []Mode{ModeWork, ModeRestEyes, ModeLongRest}
}

// IsValid reports whether m is one of the known modes.
func (m Mode) IsValid() bool {
	switch m {
	case ModeWork, ModeRestEyes, ModeLongRest:
		return true
	}
	return false
}

// Label returns a human-readable name for the mode.
func (m Mode) Label() string {
	switch m {
	case ModeWork:
		return "Work"
	case ModeRestEyes:
		return "Rest Your Eyes"
	case ModeLongRest:
		return "Long Rest"
	default:
		return "Unknown"
	}
}

// ParseMode converts a string into a Mode.
func ParseMode(s string) (Mode, error) {
	m := Mode(s)
	if !m.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
	return m, nil
}
