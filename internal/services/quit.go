package services

import (
	"github.com/manuelminca/sharp-timer-speckit/internal/domain"
	"github.com/manuelminca/sharp-timer-speckit/internal/ports"
)

// QuitPolicy decides how a quit request interacts with an active
// session. The confirmation dialog is only owed while a session is
// running or paused; a stopped timer quits unconditionally.
type QuitPolicy struct {
	engine      *TimerEngine
	coordinator *PersistenceCoordinator
}

// NewQuitPolicy creates the policy over the engine and coordinator.
func NewQuitPolicy(engine *TimerEngine, coordinator *PersistenceCoordinator) *QuitPolicy {
	return &QuitPolicy{engine: engine, coordinator: coordinator}
}

// DialogNeeded reports whether quitting requires user confirmation.
func (p *QuitPolicy) DialogNeeded() bool {
	state, ok := p.engine.Snapshot()
	return ok && state.IsActive()
}

// Apply executes the user's quit choice and reports whether the
// process may exit.
func (p *QuitPolicy) Apply(choice ports.QuitChoice) (bool, error) {
	switch choice {
	case ports.QuitStop:
		if _, err := p.engine.Stop(); err != nil && err != domain.ErrNoActiveSession {
			return true, err
		}
		return true, p.coordinator.Clear()

	case ports.QuitPreserve:
		state, ok := p.engine.Snapshot()
		if !ok {
			return true, nil
		}
		_, err := p.coordinator.OnStateChanged(state)
		return true, err

	default:
		return false, nil
	}
}
