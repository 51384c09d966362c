package tui

import (
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/manuelminca/sharp-timer-speckit/internal/adapters/notification"
	"github.com/manuelminca/sharp-timer-speckit/internal/domain"
	"github.com/manuelminca/sharp-timer-speckit/internal/ports"
)

// Shell is the interactive terminal frontend. It implements
// ports.StatusSink so the core can push countdown updates into the
// running Bubbletea program.
type Shell struct {
	notifier *notification.Notifier

	mu      sync.Mutex
	program *tea.Program
	ready   chan struct{}
}

// Ensure Shell implements ports.StatusSink.
var _ ports.StatusSink = (*Shell)(nil)

// NewShell creates a shell. The notifier is optional.
func NewShell(notifier *notification.Notifier) *Shell {
	return &Shell{
		notifier: notifier,
		ready:    make(chan struct{}),
	}
}

// Ready is closed once the Bubbletea program accepts messages. The
// core must not be started before then.
func (s *Shell) Ready() <-chan struct{} {
	return s.ready
}

// Run starts the interface and blocks until the user quits.
func (s *Shell) Run(controller Controller) error {
	var once sync.Once
	model := NewModel(controller, func() {
		once.Do(func() { close(s.ready) })
	})

	s.mu.Lock()
	s.program = tea.NewProgram(model, tea.WithAltScreen())
	s.mu.Unlock()

	if _, err := s.program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// Stop shuts the interface down from outside the UI loop.
func (s *Shell) Stop() {
	if p := s.currentProgram(); p != nil {
		p.Quit()
	}
}

// OnTick pushes a countdown update into the view.
func (s *Shell) OnTick(display domain.DisplayState) {
	s.send(tickMsg(display))
}

// OnCompleted announces a finished session and fires the desktop
// notification.
func (s *Shell) OnCompleted(mode domain.Mode, totalMinutes int) {
	if s.notifier != nil {
		_ = s.notifier.NotifyCompleted(mode, totalMinutes)
	}
	s.send(completedMsg{mode: mode, minutes: totalMinutes})
}

// OnAutoTransition announces the paused successor session.
func (s *Shell) OnAutoTransition(mode domain.Mode, display domain.DisplayState) {
	if s.notifier != nil {
		_ = s.notifier.NotifyAutoTransition(mode)
	}
	s.send(transitionMsg{mode: mode, display: display})
}

// OnQuitDialogNeeded shows the three-option quit dialog and blocks
// until the user chooses. It must not be called from the UI goroutine.
func (s *Shell) OnQuitDialogNeeded(display domain.DisplayState) ports.QuitChoice {
	p := s.currentProgram()
	if p == nil {
		return ports.QuitPreserve
	}
	reply := make(chan ports.QuitChoice, 1)
	p.Send(quitDialogMsg{display: display, reply: reply})
	return <-reply
}

func (s *Shell) currentProgram() *tea.Program {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.program
}

func (s *Shell) send(msg tea.Msg) {
	if p := s.currentProgram(); p != nil {
		p.Send(msg)
	}
}
