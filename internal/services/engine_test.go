package services

import (
	"testing"
	"time"

	"github.com/manuelminca/sharp-timer-speckit/internal/domain"
)

func TestTimerEngine_Start(t *testing.T) {
	clock := newFakeClock()
	engine := NewTimerEngine(clock)

	t.Run("fresh session", func(t *testing.T) {
		state, err := engine.Start(domain.ModeWork, 25*time.Minute)
		if err != nil {
			t.Fatalf("Start() error = %v", err)
		}
		if state.RemainingSeconds != 1500 || state.TotalDurationSeconds != 1500 {
			t.Errorf("Start() remaining/total = %d/%d, want 1500/1500",
				state.RemainingSeconds, state.TotalDurationSeconds)
		}
		if !state.IsRunning || state.IsPaused {
			t.Error("Start() should produce a running session")
		}
		if state.SessionID == "" {
			t.Error("Start() should assign a session id")
		}
	})

	t.Run("replaces the current session", func(t *testing.T) {
		first, _ := engine.Start(domain.ModeWork, 25*time.Minute)
		second, _ := engine.Start(domain.ModeRestEyes, 5*time.Minute)
		if first.SessionID == second.SessionID {
			t.Error("restart should mint a new session id")
		}
		if second.Mode != domain.ModeRestEyes {
			t.Errorf("Mode = %v, want rest_eyes", second.Mode)
		}
	})

	t.Run("rejects non-positive duration", func(t *testing.T) {
		if _, err := engine.Start(domain.ModeWork, 0); err != domain.ErrInvalidDuration {
			t.Errorf("Start(0) error = %v, want ErrInvalidDuration", err)
		}
		if _, err := engine.Start(domain.ModeWork, -time.Minute); err != domain.ErrInvalidDuration {
			t.Errorf("Start(-1m) error = %v, want ErrInvalidDuration", err)
		}
	})

	t.Run("rejects unknown mode", func(t *testing.T) {
		if _, err := engine.Start("nap", time.Minute); err != domain.ErrUnknownMode {
			t.Errorf("Start(nap) error = %v, want ErrUnknownMode", err)
		}
	})
}

func TestTimerEngine_Countdown(t *testing.T) {
	clock := newFakeClock()
	engine := NewTimerEngine(clock)
	engine.Start(domain.ModeWork, 10*time.Minute)

	clock.Advance(90 * time.Second)
	state, completed := engine.Tick()
	if completed {
		t.Fatal("Tick() completed early")
	}
	if state.RemainingSeconds != 510 {
		t.Errorf("remaining = %d, want 510", state.RemainingSeconds)
	}

	// Remaining is recomputed from the wall clock, so a jump larger
	// than the tick interval self-corrects instead of drifting.
	clock.Advance(5 * time.Minute)
	state, _ = engine.Tick()
	if state.RemainingSeconds != 210 {
		t.Errorf("remaining after jump = %d, want 210", state.RemainingSeconds)
	}
}

func TestTimerEngine_CompletionSignaledOnce(t *testing.T) {
	clock := newFakeClock()
	engine := NewTimerEngine(clock)
	engine.Start(domain.ModeWork, 10*time.Minute)

	// Jump well past the end: exactly one completion signal.
	clock.Advance(650 * time.Second)
	state, completed := engine.Tick()
	if !completed {
		t.Fatal("Tick() should report completion")
	}
	if state.RemainingSeconds != 0 || state.IsRunning {
		t.Errorf("terminal state = %+v, want remaining 0 and not running", state)
	}

	for i := 0; i < 3; i++ {
		if _, again := engine.Tick(); again {
			t.Fatal("completion signaled more than once")
		}
	}

	// A fresh session arms the signal again.
	engine.Start(domain.ModeWork, time.Minute)
	clock.Advance(2 * time.Minute)
	if _, completed := engine.Tick(); !completed {
		t.Error("new session should signal its own completion")
	}
}

func TestTimerEngine_PauseResume(t *testing.T) {
	clock := newFakeClock()
	engine := NewTimerEngine(clock)
	engine.Start(domain.ModeWork, 10*time.Minute)

	clock.Advance(100 * time.Second)
	paused, err := engine.Pause()
	if err != nil {
		t.Fatalf("Pause() error = %v", err)
	}
	if paused.IsRunning || !paused.IsPaused {
		t.Error("Pause() should freeze the session")
	}
	if paused.RemainingSeconds != 500 {
		t.Errorf("remaining at pause = %d, want 500", paused.RemainingSeconds)
	}

	t.Run("pause is idempotent", func(t *testing.T) {
		again, err := engine.Pause()
		if err != nil {
			t.Fatalf("second Pause() error = %v", err)
		}
		if again.RemainingSeconds != 500 {
			t.Errorf("second Pause() remaining = %d, want 500", again.RemainingSeconds)
		}
	})

	t.Run("paused time does not elapse", func(t *testing.T) {
		clock.Advance(time.Hour)
		resumed, err := engine.Resume()
		if err != nil {
			t.Fatalf("Resume() error = %v", err)
		}
		if resumed.RemainingSeconds != 500 {
			t.Errorf("remaining after resume = %d, want 500", resumed.RemainingSeconds)
		}

		clock.Advance(10 * time.Second)
		state, _ := engine.Tick()
		if state.RemainingSeconds != 490 {
			t.Errorf("remaining = %d, want 490", state.RemainingSeconds)
		}
	})

	t.Run("resume while running is a no-op", func(t *testing.T) {
		before, _ := engine.Snapshot()
		after, err := engine.Resume()
		if err != nil {
			t.Fatalf("Resume() error = %v", err)
		}
		if after.RemainingSeconds != before.RemainingSeconds {
			t.Error("Resume() on a running session changed state")
		}
	})
}

func TestTimerEngine_Stop(t *testing.T) {
	clock := newFakeClock()
	engine := NewTimerEngine(clock)

	if _, err := engine.Stop(); err != domain.ErrNoActiveSession {
		t.Errorf("Stop() without session error = %v, want ErrNoActiveSession", err)
	}

	engine.Start(domain.ModeWork, 10*time.Minute)
	clock.Advance(5 * time.Minute)
	engine.Tick()

	state, err := engine.Stop()
	if err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if state.IsRunning || state.IsPaused {
		t.Error("Stop() should deactivate the session")
	}
	if state.RemainingSeconds != state.TotalDurationSeconds {
		t.Errorf("Stop() remaining = %d, want full duration %d",
			state.RemainingSeconds, state.TotalDurationSeconds)
	}

	// A stopped session must not fire a completion signal.
	if _, completed := engine.Tick(); completed {
		t.Error("stopped session signaled completion")
	}
}

func TestTimerEngine_Install(t *testing.T) {
	clock := newFakeClock()
	engine := NewTimerEngine(clock)

	t.Run("running state re-anchors to now", func(t *testing.T) {
		recovered := domain.TimerState{
			Mode:                 domain.ModeWork,
			RemainingSeconds:     300,
			TotalDurationSeconds: 1500,
			IsRunning:            true,
			SessionID:            domain.NewSessionID(),
			StartedAt:            clock.Now().Add(-20 * time.Minute),
			LastPersistedAt:      clock.Now(),
		}
		engine.Install(recovered)

		clock.Advance(10 * time.Second)
		state, _ := engine.Tick()
		if state.RemainingSeconds != 290 {
			t.Errorf("remaining = %d, want 290", state.RemainingSeconds)
		}
	})

	t.Run("terminal state does not re-signal", func(t *testing.T) {
		terminal := domain.TimerState{
			Mode:                 domain.ModeWork,
			RemainingSeconds:     0,
			TotalDurationSeconds: 1500,
			SessionID:            domain.NewSessionID(),
			LastPersistedAt:      clock.Now(),
		}
		engine.Install(terminal)
		if _, completed := engine.Tick(); completed {
			t.Error("installed terminal state signaled completion")
		}
	})
}
