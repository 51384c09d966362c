// Package tui provides the terminal user interface implementation
// using the Bubbletea framework.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/manuelminca/sharp-timer-speckit/internal/domain"
	"github.com/manuelminca/sharp-timer-speckit/internal/ports"
)

// Controller is the slice of the application core the TUI drives.
type Controller interface {
	StartTimer(mode domain.Mode) error
	PauseTimer() error
	ResumeTimer() error
	StopTimer() error
	RequestQuit() bool
	Settings() domain.Settings
	LastPersistenceError() error
}

// uiTickMsg keeps the view refreshing while the countdown is paused.
type uiTickMsg time.Time

// tickMsg carries a countdown update from the core.
type tickMsg domain.DisplayState

// completedMsg announces a finished session.
type completedMsg struct {
	mode    domain.Mode
	minutes int
}

// transitionMsg announces the automatically queued successor session.
type transitionMsg struct {
	mode    domain.Mode
	display domain.DisplayState
}

// quitDialogMsg asks the user how to quit while a session is active.
// The choice is delivered on reply.
type quitDialogMsg struct {
	display domain.DisplayState
	reply   chan ports.QuitChoice
}

// quitGrantedMsg means the quit workflow decided the process may exit.
type quitGrantedMsg struct{}

// errMsg carries a failed command result.
type errMsg struct {
	err error
}

// quitDialog is the state of the three-option quit overlay.
type quitDialog struct {
	display domain.DisplayState
	reply   chan ports.QuitChoice
	cursor  int
}

var quitOptions = []struct {
	label  string
	choice ports.QuitChoice
}{
	{"Stop timer and quit", ports.QuitStop},
	{"Keep timer for next launch and quit", ports.QuitPreserve},
	{"Cancel", ports.QuitCancel},
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B")).MarginBottom(1)
	clockStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA"))
	modeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ECDC4"))
	pausedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#FFA500")).Padding(0, 1)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ECDC4"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))
	cursorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
)

// Model represents the TUI state.
type Model struct {
	controller Controller
	onReady    func()

	display    domain.DisplayState
	hasSession bool

	progress progress.Model
	width    int
	height   int

	status      string
	statusTicks int

	dialog *quitDialog
}

// NewModel creates a new TUI model.
func NewModel(controller Controller, onReady func()) Model {
	return Model{
		controller: controller,
		onReady:    onReady,
		progress:   progress.New(progress.WithDefaultGradient()),
	}
}

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{uiTickCmd()}
	if m.onReady != nil {
		ready := m.onReady
		cmds = append(cmds, func() tea.Msg {
			ready()
			return nil
		})
	}
	return tea.Batch(cmds...)
}

// commandCmd runs a controller command off the UI goroutine.
func commandCmd(run func() error) tea.Cmd {
	return func() tea.Msg {
		if err := run(); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}

// requestQuitCmd runs the blocking quit workflow off the UI goroutine.
func requestQuitCmd(controller Controller) tea.Cmd {
	return func() tea.Msg {
		if controller.RequestQuit() {
			return quitGrantedMsg{}
		}
		return nil
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.dialog != nil {
		return m.updateQuitDialog(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, requestQuitCmd(m.controller)
		case "s":
			mode := m.controller.Settings().CurrentMode
			if !mode.IsValid() {
				mode = domain.ModeWork
			}
			return m, commandCmd(func() error { return m.controller.StartTimer(mode) })
		case "1":
			return m, commandCmd(func() error { return m.controller.StartTimer(domain.ModeWork) })
		case "2":
			return m, commandCmd(func() error { return m.controller.StartTimer(domain.ModeRestEyes) })
		case "3":
			return m, commandCmd(func() error { return m.controller.StartTimer(domain.ModeLongRest) })
		case "p":
			return m, commandCmd(m.controller.PauseTimer)
		case "r":
			return m, commandCmd(m.controller.ResumeTimer)
		case "x":
			return m, commandCmd(m.controller.StopTimer)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 4

	case uiTickMsg:
		if m.statusTicks > 0 {
			m.statusTicks--
			if m.statusTicks == 0 {
				m.status = ""
			}
		}
		return m, uiTickCmd()

	case tickMsg:
		m.display = domain.DisplayState(msg)
		m.hasSession = true

	case completedMsg:
		m.status = fmt.Sprintf("%s complete!", msg.mode.Label())
		m.statusTicks = 5

	case transitionMsg:
		m.display = msg.display
		m.hasSession = true
		m.status = fmt.Sprintf("%s queued, press [r] to begin", msg.mode.Label())
		m.statusTicks = 10

	case quitDialogMsg:
		m.dialog = &quitDialog{display: msg.display, reply: msg.reply}

	case quitGrantedMsg:
		return m, tea.Quit

	case errMsg:
		m.status = msg.err.Error()
		m.statusTicks = 5
	}

	newProgress, cmd := m.progress.Update(msg)
	if p, ok := newProgress.(progress.Model); ok {
		m.progress = p
	}
	return m, cmd
}

// updateQuitDialog handles keys while the quit overlay is up.
func (m Model) updateQuitDialog(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	d := m.dialog
	switch key.String() {
	case "up", "k":
		if d.cursor > 0 {
			d.cursor--
		}
	case "down", "j":
		if d.cursor < len(quitOptions)-1 {
			d.cursor++
		}
	case "1", "2", "3":
		d.cursor = int(key.String()[0] - '1')
		return m.resolveQuitDialog(quitOptions[d.cursor].choice)
	case "enter":
		return m.resolveQuitDialog(quitOptions[d.cursor].choice)
	case "esc", "q", "ctrl+c":
		return m.resolveQuitDialog(ports.QuitCancel)
	}
	return m, nil
}

// resolveQuitDialog delivers the choice to the blocked quit workflow
// and tears the overlay down.
func (m Model) resolveQuitDialog(choice ports.QuitChoice) (tea.Model, tea.Cmd) {
	m.dialog.reply <- choice
	m.dialog = nil
	if choice == ports.QuitStop {
		m.hasSession = false
	}
	return m, nil
}

// View renders the TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	if m.dialog != nil {
		return m.viewQuitDialog()
	}

	var sections []string
	sections = append(sections, titleStyle.Render("⏱  Sharp Timer"))

	if m.hasSession {
		sections = append(sections, modeStyle.Render(m.display.Mode.Label()))
		sections = append(sections, "")
		sections = append(sections, clockStyle.Render(m.display.Clock()))
		if m.display.IsPaused {
			sections = append(sections, "")
			sections = append(sections, pausedStyle.Render("⏸ PAUSED"))
		}
		sections = append(sections, "")
		sections = append(sections, m.progress.ViewAs(m.display.Progress))
	} else {
		sections = append(sections, helpStyle.Render("No active session"))
	}

	if m.status != "" {
		sections = append(sections, "")
		sections = append(sections, statusStyle.Render(m.status))
	}
	if err := m.controller.LastPersistenceError(); err != nil {
		sections = append(sections, "")
		sections = append(sections, warnStyle.Render("⚠ last save failed, retrying on next change"))
	}

	sections = append(sections, "")
	sections = append(sections, helpStyle.Render(m.helpLine()))

	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m Model) helpLine() string {
	if !m.hasSession {
		return "[s]tart  [1]work [2]rest eyes [3]long rest  [q]uit"
	}
	if m.display.IsPaused {
		return "[r]esume  [x]stop  [1/2/3]switch mode  [q]uit"
	}
	if m.display.IsRunning {
		return "[p]ause  [x]stop  [1/2/3]switch mode  [q]uit"
	}
	return "[s]tart again  [1/2/3]switch mode  [q]uit"
}

func (m Model) viewQuitDialog() string {
	var sections []string
	sections = append(sections, titleStyle.Render("Quit Sharp Timer?"))
	sections = append(sections, modeStyle.Render(fmt.Sprintf("%s session at %s", m.dialog.display.Mode.Label(), m.dialog.display.Clock())))
	sections = append(sections, "")

	for i, opt := range quitOptions {
		line := "  " + opt.label
		if i == m.dialog.cursor {
			line = cursorStyle.Render("> " + opt.label)
		}
		sections = append(sections, line)
	}

	sections = append(sections, "")
	sections = append(sections, helpStyle.Render("↑/↓ move · enter select · esc cancel"))

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

// uiTickCmd creates a command that sends a UI refresh tick.
func uiTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return uiTickMsg(t)
	})
}
