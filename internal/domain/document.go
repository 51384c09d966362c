package domain

import "time"

// SchemaVersion is the current on-disk document schema version.
const SchemaVersion = 1

// Default durations in minutes for each mode.
const (
	DefaultWorkMinutes     = 25
	DefaultRestEyesMinutes = 5
	DefaultLongRestMinutes = 15
)

// Metadata describes the stored document itself.
type Metadata struct {
	SchemaVersion int       `json:"schema_version"`
	LastSaved     time.Time `json:"last_saved"`
	BackupCount   int       `json:"backup_count"`
}

// Settings is the user-configurable block of the stored document.
// Durations are kept in whole minutes, matching the settings screen.
type Settings struct {
	WorkMinutes          int  `json:"work_duration"`
	RestEyesMinutes      int  `json:"rest_eyes_duration"`
	LongRestMinutes      int  `json:"long_rest_duration"`
	CurrentMode          Mode `json:"current_mode"`
	NotificationsEnabled bool `json:"notifications_enabled"`
	SoundEnabled         bool `json:"sound_enabled"`
	AutoTransition       bool `json:"auto_start_next"`
}

// DefaultSettings returns the factory settings.
func DefaultSettings() Settings {
	return Settings{
		WorkMinutes:          DefaultWorkMinutes,
		RestEyesMinutes:      DefaultRestEyesMinutes,
		LongRestMinutes:      DefaultLongRestMinutes,
		CurrentMode:          ModeWork,
		NotificationsEnabled: true,
		SoundEnabled:         true,
		AutoTransition:       true,
	}
}

// DurationFor returns the configured session length for a mode.
// Unset or out-of-range values fall back to the defaults.
func (s Settings) DurationFor(mode Mode) time.Duration {
	minutes := 0
	switch mode {
	case ModeWork:
		minutes = s.WorkMinutes
	case ModeRestEyes:
		minutes = s.RestEyesMinutes
	case ModeLongRest:
		minutes = s.LongRestMinutes
	}
	if minutes < 1 || minutes > 60 {
		switch mode {
		case ModeRestEyes:
			minutes = DefaultRestEyesMinutes
		case ModeLongRest:
			minutes = DefaultLongRestMinutes
		default:
			minutes = DefaultWorkMinutes
		}
	}
	return time.Duration(minutes) * time.Minute
}

// StoredDocument is the single on-disk document. The timer state and
// settings blocks are each optional so that a failure or absence in one
// never corrupts the other.
type StoredDocument struct {
	TimerState *TimerState `json:"timer_state,omitempty"`
	Metadata   Metadata    `json:"metadata"`
	Settings   *Settings   `json:"settings,omitempty"`
}

// SettingsOrDefault returns the settings block, falling back to the
// factory settings for a partial document.
func (d *StoredDocument) SettingsOrDefault() Settings {
	if d == nil || d.Settings == nil {
		return DefaultSettings()
	}
	return *d.Settings
}
