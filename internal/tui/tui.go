// Package tui provides a Bubble Tea terminal host for a navigation session.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tournament-nav/internal/session"
	"tournament-nav/internal/view"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	navbarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)
)

// Model is the Bubble Tea model for the terminal host.
type Model struct {
	session   *session.Session
	current   view.View
	textInput textinput.Model
	prompting bool
	ready     bool
	notice    string

	width  int
	height int
}

// NewModel creates a model over s. The first frame is an initial paint.
func NewModel(s *session.Session) Model {
	ti := textinput.New()
	ti.Placeholder = "/wc/groups/2026"
	ti.CharLimit = 200
	ti.Width = 40

	return Model{
		session:   s,
		current:   s.View(),
		textInput: ti,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.ready = true
			m.session.MarkReady()
		}
		m.current = m.session.View()
		return m, nil

	case tea.KeyMsg:
		if m.prompting {
			return m.updatePrompt(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.prompting = false
		m.textInput.Blur()
		return m, nil
	case "enter":
		m.prompting = false
		m.textInput.Blur()
		if path := strings.TrimSpace(m.textInput.Value()); path != "" {
			m.current = m.session.Navigate(path)
			m.notice = ""
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "r":
		if nav := m.current.Navbar; nav != nil && nav.Refresh != nil {
			nav.Refresh()
		}
	case "[":
		m.stepSeason(-1)
	case "]":
		m.stepSeason(1)
	case "b":
		if _, ok := m.session.Back(); !ok {
			m.notice = "no earlier entry"
		}
	case "f":
		if _, ok := m.session.Forward(); !ok {
			m.notice = "no later entry"
		}
	case "/":
		m.prompting = true
		m.textInput.SetValue(m.session.Snapshot().State.Location.Path())
		m.textInput.CursorEnd()
		m.textInput.Focus()
		return m, textinput.Blink
	}
	m.current = m.session.View()
	return m, nil
}

// stepSeason asks the navbar for the neighbouring season of the page shown.
func (m Model) stepSeason(delta int) {
	nav, pages := m.current.Navbar, m.current.Pages
	if nav == nil || nav.OnSeasonChange == nil || pages == nil {
		return
	}
	nav.OnSeasonChange(pages.Tournament, pages.Stage, pages.Season+delta)
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Tournament navigator"))
	b.WriteString("\n")

	if nav := m.current.Navbar; nav != nil {
		b.WriteString(navbarStyle.Render(fmt.Sprintf("‹ [  %s  ] ›", nav.Location.Path())))
		b.WriteString("\n\n")
	}

	switch {
	case m.current.Pages != nil:
		b.WriteString(m.viewPages(m.current.Pages))
	case m.current.Redirect != "":
		b.WriteString(infoStyle.Render("redirecting to " + m.current.Redirect))
	}
	b.WriteString("\n")

	if popup := m.session.Popup(); popup.Error != nil {
		b.WriteString(errorStyle.Render(*popup.Error))
		b.WriteString("\n")
	}
	if err := m.session.LoadError(); err != nil {
		b.WriteString(errorStyle.Render("load failed: " + err.Error()))
		b.WriteString("\n")
	}
	if m.notice != "" {
		b.WriteString(warningStyle.Render(m.notice))
		b.WriteString("\n")
	}

	if m.prompting {
		b.WriteString("\n")
		b.WriteString(m.textInput.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.helpText()))
	return b.String()
}

func (m Model) viewPages(p *view.PagesProps) string {
	return boxStyle.Render(fmt.Sprintf(
		"Tournament: %s\nStage: %s\nSeason: %d\n\n%s",
		p.Tournament,
		p.Stage,
		p.Season,
		dimStyle.Render("key "+p.DummyKey),
	))
}

func (m Model) helpText() string {
	if m.prompting {
		return "enter: go • esc: cancel"
	}
	return "r: refresh • [/]: season • b/f: back/forward • /: go to path • q: quit"
}

// Run starts the Bubble Tea program over s.
func Run(s *session.Session, opts ...tea.ProgramOption) error {
	p := tea.NewProgram(NewModel(s), opts...)
	_, err := p.Run()
	return err
}
