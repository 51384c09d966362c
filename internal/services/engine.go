// Package services implements the timer core use cases: the countdown
// engine, the persistence coordinator, startup recovery, and the mode
// transition and quit policies.
package services

import (
	"sync"
	"time"

	"github.com/manuelminca/sharp-timer-speckit/internal/domain"
	"github.com/manuelminca/sharp-timer-speckit/internal/ports"
)

// TimerEngine owns the one authoritative in-memory countdown. All
// reads and mutations are serialized behind a single mutex; callers
// only ever receive value copies of the state.
//
// Remaining time is always recomputed from absolute wall-clock time
// relative to the session baseline, never decremented per tick. Missed
// ticks, scheduler jitter, and system sleep therefore self-correct on
// the next tick.
type TimerEngine struct {
	mu    sync.Mutex
	clock ports.Clock

	state *domain.TimerState
	// baseSeconds is the remaining time at StartedAt; ticks subtract
	// the elapsed time since StartedAt from this baseline.
	baseSeconds int
	// signaled guards the one-shot completion signal per session.
	signaled bool
}

// NewTimerEngine creates an engine reading time from the given clock.
func NewTimerEngine(clock ports.Clock) *TimerEngine {
	return &TimerEngine{clock: clock}
}

// Start begins a fresh session for the given mode, replacing any
// current session. Durations must be positive.
func (e *TimerEngine) Start(mode domain.Mode, total time.Duration) (domain.TimerState, error) {
	if total <= 0 {
		return domain.TimerState{}, domain.ErrInvalidDuration
	}
	if !mode.IsValid() {
		return domain.TimerState{}, domain.ErrUnknownMode
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	state := domain.NewTimerState(mode, total, e.clock.Now())
	e.state = &state
	e.baseSeconds = state.RemainingSeconds
	e.signaled = false
	return state, nil
}

// Pause freezes a running session. Pausing an already-paused or
// stopped session is a no-op, not an error.
func (e *TimerEngine) Pause() (domain.TimerState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == nil {
		return domain.TimerState{}, domain.ErrNoActiveSession
	}
	if !e.state.IsRunning {
		return *e.state, nil
	}

	e.recomputeLocked()
	e.state.IsRunning = false
	e.state.IsPaused = true
	return *e.state, nil
}

// Resume continues a paused session. The elapsed-time baseline is
// reset so paused time never counts against the session.
func (e *TimerEngine) Resume() (domain.TimerState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == nil {
		return domain.TimerState{}, domain.ErrNoActiveSession
	}
	if !e.state.IsPaused {
		return *e.state, nil
	}

	e.state.IsPaused = false
	e.state.IsRunning = true
	e.state.StartedAt = e.clock.Now()
	e.baseSeconds = e.state.RemainingSeconds
	return *e.state, nil
}

// Stop ends the session from any state: remaining time resets to the
// full duration and the countdown goes inactive.
func (e *TimerEngine) Stop() (domain.TimerState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == nil {
		return domain.TimerState{}, domain.ErrNoActiveSession
	}

	e.state.IsRunning = false
	e.state.IsPaused = false
	e.state.RemainingSeconds = e.state.TotalDurationSeconds
	e.state.StartedAt = time.Time{}
	e.baseSeconds = e.state.RemainingSeconds
	e.signaled = true
	return *e.state, nil
}

// Tick advances a running countdown. It returns the current snapshot
// and whether the session completed on this tick; completion is
// reported exactly once per session. Ticking a non-running engine is a
// no-op.
func (e *TimerEngine) Tick() (domain.TimerState, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == nil || !e.state.IsRunning {
		if e.state == nil {
			return domain.TimerState{}, false
		}
		return *e.state, false
	}

	e.recomputeLocked()
	if e.state.RemainingSeconds > 0 {
		return *e.state, false
	}

	e.state.IsRunning = false
	e.state.IsPaused = false
	if e.signaled {
		return *e.state, false
	}
	e.signaled = true
	return *e.state, true
}

// Snapshot returns a copy of the current state, if any.
func (e *TimerEngine) Snapshot() (domain.TimerState, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == nil {
		return domain.TimerState{}, false
	}
	return *e.state, true
}

// Install places a recovered state into the engine directly,
// bypassing the fresh-session semantics of Start. A running state has
// its elapsed-time baseline re-anchored at the current wall clock.
func (e *TimerEngine) Install(state domain.TimerState) {
	e.mu.Lock()
	defer e.mu.Unlock()

	installed := state
	if installed.IsRunning {
		installed.StartedAt = e.clock.Now()
	}
	e.state = &installed
	e.baseSeconds = installed.RemainingSeconds
	e.signaled = installed.IsCompleted()
}

// MarkSurvivedSleep records that the session crossed a system suspend.
func (e *TimerEngine) MarkSurvivedSleep() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != nil {
		e.state.SurvivedSleep = true
	}
}

// Clear removes the current session entirely.
func (e *TimerEngine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = nil
	e.baseSeconds = 0
	e.signaled = false
}

// recomputeLocked derives remaining time from the absolute elapsed
// wall-clock time since the baseline. Callers must hold e.mu.
func (e *TimerEngine) recomputeLocked() {
	elapsed := int(e.clock.Now().Sub(e.state.StartedAt) / time.Second)
	remaining := e.baseSeconds - elapsed
	if remaining < 0 {
		remaining = 0
	}
	e.state.RemainingSeconds = remaining
}
