package services

import (
	"context"
	"sync"
	"time"

	"github.com/manuelminca/sharp-timer-speckit/internal/domain"
	"github.com/manuelminca/sharp-timer-speckit/internal/ports"
)

// CoreConfig carries the run-loop tunables.
type CoreConfig struct {
	// AutosaveInterval is the cadence of backup-producing autosaves.
	AutosaveInterval time.Duration

	// SleepGapThreshold is the wall-clock gap between ticks treated as
	// a system suspend/resume.
	SleepGapThreshold time.Duration

	// MaxStateAge bounds how old a persisted session may be and still
	// resume on startup.
	MaxStateAge time.Duration
}

// withDefaults fills unset tunables.
func (c CoreConfig) withDefaults() CoreConfig {
	if c.AutosaveInterval <= 0 {
		c.AutosaveInterval = 30 * time.Second
	}
	if c.SleepGapThreshold <= 0 {
		c.SleepGapThreshold = 60 * time.Second
	}
	return c
}

// Core bundles the timer engine, persistence coordinator, recovery
// reconciler, and the transition and quit policies behind one object.
// The shell entry point that starts the process owns the Core; there
// is no ambient global state.
type Core struct {
	engine      *TimerEngine
	coordinator *PersistenceCoordinator
	reconciler  *RecoveryReconciler
	quit        *QuitPolicy
	sink        ports.StatusSink
	clock       ports.Clock
	history     ports.HistoryLog

	cfg CoreConfig

	mu           sync.Mutex
	settings     domain.Settings
	lastAutosave time.Time
	lastTick     time.Time
}

// NewCore wires a Core over the given store, shell, and clock. The
// history log is optional.
func NewCore(store ports.DocumentStore, sink ports.StatusSink, clock ports.Clock, history ports.HistoryLog, cfg CoreConfig) *Core {
	cfg = cfg.withDefaults()
	engine := NewTimerEngine(clock)
	coordinator := NewPersistenceCoordinator(store, clock)
	return &Core{
		engine:      engine,
		coordinator: coordinator,
		reconciler:  NewRecoveryReconciler(store, clock, cfg.MaxStateAge),
		quit:        NewQuitPolicy(engine, coordinator),
		sink:        sink,
		clock:       clock,
		history:     history,
		cfg:         cfg,
		settings:    domain.DefaultSettings(),
	}
}

// Startup recovers any persisted session and installs it into the
// engine, delivering signals that were owed across the restart.
func (c *Core) Startup() {
	outcome := c.reconciler.Recover()

	c.mu.Lock()
	c.settings = outcome.Settings
	c.lastTick = c.clock.Now()
	c.mu.Unlock()

	if outcome.State == nil {
		return
	}
	c.engine.Install(*outcome.State)

	switch {
	case outcome.CompletedOnLoad:
		// The countdown ran out while the process was down; the
		// completion must not be silently swallowed.
		c.handleCompletion(*outcome.State)

	case outcome.ReplayedTransition:
		saved, _ := c.coordinator.OnStateChanged(*outcome.State)
		c.engine.Install(saved)
		c.sink.OnAutoTransition(saved.Mode, saved.Display())

	default:
		saved, _ := c.coordinator.OnStateChanged(*outcome.State)
		c.engine.Install(saved)
		c.sink.OnTick(saved.Display())
	}
}

// Run drives the once-per-second tick stream until the context ends.
func (c *Core) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.step()
		}
	}
}

// step performs one tick: suspend detection, countdown advance, and
// the autosave cadence.
func (c *Core) step() {
	now := c.clock.Now()

	c.mu.Lock()
	gap := now.Sub(c.lastTick)
	c.lastTick = now
	threshold := c.cfg.SleepGapThreshold
	c.mu.Unlock()

	// A large gap between ticks means the machine slept (or the
	// process was stopped); checkpoint immediately so the snapshot
	// records that it crossed a suspend.
	if gap > threshold {
		if snap, ok := c.engine.Snapshot(); ok && snap.IsActive() {
			c.engine.MarkSurvivedSleep()
			_, _ = c.coordinator.OnSuspendRequested(snap)
		}
	}

	state, completed := c.engine.Tick()
	if completed {
		c.handleCompletion(state)
		return
	}

	if state.IsRunning {
		c.sink.OnTick(state.Display())
	}
	// The autosave cadence covers paused sessions too, so their
	// backups keep rotating while the user is away.
	if state.IsActive() {
		c.maybeAutosave(state, now)
	}
}

// maybeAutosave runs the 30-second autosave-plus-backup cadence while
// a session is active.
func (c *Core) maybeAutosave(state domain.TimerState, now time.Time) {
	c.mu.Lock()
	due := c.lastAutosave.IsZero() || now.Sub(c.lastAutosave) >= c.cfg.AutosaveInterval
	if due {
		c.lastAutosave = now
	}
	c.mu.Unlock()

	if due {
		_, _ = c.coordinator.PeriodicAutosave(state)
	}
}

// handleCompletion persists the terminal state, signals completion
// exactly once, records history, and performs the automatic mode
// transition as part of the same logical transaction. The terminal
// state is persisted before the successor so an interrupted transition
// can be replayed on the next launch.
func (c *Core) handleCompletion(terminal domain.TimerState) {
	saved, _ := c.coordinator.OnStateChanged(terminal)

	c.mu.Lock()
	settings := c.settings
	c.mu.Unlock()

	c.sink.OnCompleted(saved.Mode, saved.TotalDurationSeconds/60)
	c.recordHistory(saved, settings.AutoTransition)

	if !settings.AutoTransition {
		return
	}

	successor := TransitionFrom(saved, settings, c.clock.Now())
	persisted, _ := c.coordinator.OnStateChanged(successor)
	c.engine.Install(persisted)
	c.setCurrentMode(persisted.Mode)
	c.sink.OnAutoTransition(persisted.Mode, persisted.Display())
}

// StartTimer begins a fresh session for the mode at its configured
// duration. Settings are read once here; later settings changes do not
// retroactively alter the session.
func (c *Core) StartTimer(mode domain.Mode) error {
	c.mu.Lock()
	total := c.settings.DurationFor(mode)
	c.mu.Unlock()

	state, err := c.engine.Start(mode, total)
	if err != nil {
		return err
	}
	saved, err := c.coordinator.OnStateChanged(state)
	c.setCurrentMode(mode)
	c.sink.OnTick(saved.Display())
	return err
}

// PauseTimer freezes the running session.
func (c *Core) PauseTimer() error {
	state, err := c.engine.Pause()
	if err != nil {
		return err
	}
	saved, err := c.coordinator.OnStateChanged(state)
	c.sink.OnTick(saved.Display())
	return err
}

// ResumeTimer continues a paused session.
func (c *Core) ResumeTimer() error {
	state, err := c.engine.Resume()
	if err != nil {
		return err
	}
	saved, err := c.coordinator.OnStateChanged(state)
	c.sink.OnTick(saved.Display())
	return err
}

// StopTimer stops the session and clears it from the store.
func (c *Core) StopTimer() error {
	state, err := c.engine.Stop()
	if err != nil {
		return err
	}
	if err := c.coordinator.Clear(); err != nil {
		return err
	}
	c.sink.OnTick(state.Display())
	return nil
}

// RequestQuit runs the quit workflow and reports whether the process
// may exit. With no active session it exits unconditionally.
func (c *Core) RequestQuit() bool {
	if !c.quit.DialogNeeded() {
		return true
	}
	state, _ := c.engine.Snapshot()
	choice := c.sink.OnQuitDialogNeeded(state.Display())
	exit, _ := c.quit.Apply(choice)
	return exit
}

// SuspendNow forces an immediate checkpoint ahead of a system sleep.
func (c *Core) SuspendNow() {
	if snap, ok := c.engine.Snapshot(); ok && snap.IsActive() {
		c.engine.MarkSurvivedSleep()
		_, _ = c.coordinator.OnSuspendRequested(snap)
	}
}

// DisplayState returns the UI-facing view of the current session.
func (c *Core) DisplayState() (domain.DisplayState, bool) {
	state, ok := c.engine.Snapshot()
	if !ok {
		return domain.DisplayState{}, false
	}
	return state.Display(), true
}

// Settings returns the active settings.
func (c *Core) Settings() domain.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// UpdateSettings persists new settings. Active sessions keep the
// duration they were started with.
func (c *Core) UpdateSettings(settings domain.Settings) error {
	c.mu.Lock()
	c.settings = settings
	c.mu.Unlock()
	return c.coordinator.UpdateSettings(settings)
}

// LastPersistenceError exposes the most recent absorbed persistence
// failure for the shell to optionally display.
func (c *Core) LastPersistenceError() error {
	return c.coordinator.LastError()
}

// setCurrentMode remembers the mode across restarts.
func (c *Core) setCurrentMode(mode domain.Mode) {
	c.mu.Lock()
	c.settings.CurrentMode = mode
	settings := c.settings
	c.mu.Unlock()
	_ = c.coordinator.UpdateSettings(settings)
}

// recordHistory appends a finished session to the history log.
func (c *Core) recordHistory(state domain.TimerState, auto bool) {
	if c.history == nil {
		return
	}
	_ = c.history.Record(context.Background(), ports.SessionRecord{
		SessionID:       state.SessionID,
		Mode:            state.Mode,
		DurationSeconds: state.TotalDurationSeconds,
		CompletedAt:     c.clock.Now(),
		AutoTransition:  auto,
	})
}
