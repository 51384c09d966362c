package domain

import "errors"

// Common domain errors.
var (
	ErrUnknownMode      = errors.New("unknown timer mode")
	ErrInvalidDuration  = errors.New("duration must be positive")
	ErrNoActiveSession  = errors.New("no active session")
	ErrDocumentNotFound = errors.New("stored document not found")
	ErrCorruptDocument  = errors.New("stored document is corrupt")
	ErrInvalidState     = errors.New("timer state failed validation")
)
