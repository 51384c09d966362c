package ports

import "time"

// Clock supplies wall-clock time to the core. Countdown math is always
// derived from absolute timestamps, so tests inject a fake clock here.
type Clock interface {
	Now() time.Time
}

// SystemClock is the real wall clock.
type SystemClock struct{}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time {
	return time.Now()
}
