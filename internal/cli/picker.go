package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ravik/cct/internal/sessions"
)

// Styles
var (
	pickerTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("170"))

	pickerSelectedStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57"))

	pickerNormalStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252"))

	pickerDimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	pickerCardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
)

// Key bindings
type pickerKeyMap struct {
	Up    key.Binding
	Down  key.Binding
	Enter key.Binding
	Quit  key.Binding
}

var pickerKeys = pickerKeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "resume"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c", "esc"),
		key.WithHelp("q", "quit"),
	),
}

type pickerModel struct {
	title    string
	sessions []sessions.Session
	cursor   int
	chosen   int // -1 until a selection is made
	quitting bool
}

func newPickerModel(title string, list []sessions.Session) pickerModel {
	return pickerModel{title: title, sessions: list, chosen: -1}
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, pickerKeys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, pickerKeys.Up):
			if m.cursor > 0 {
				m.cursor--
			}

		case key.Matches(msg, pickerKeys.Down):
			if m.cursor < len(m.sessions)-1 {
				m.cursor++
			}

		case key.Matches(msg, pickerKeys.Enter):
			if len(m.sessions) > 0 {
				m.chosen = m.cursor
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m pickerModel) View() string {
	if m.quitting || m.chosen >= 0 {
		return ""
	}

	s := pickerTitleStyle.Render(m.title) + "\n\n"

	for i, sess := range m.sessions {
		line := fmt.Sprintf("%-10s %-16s %s",
			shortID(sess.ID),
			truncateStr(sess.ProjectName, 16),
			sess.ModTime.Format("2006-01-02 15:04"))
		if i == m.cursor {
			s += pickerSelectedStyle.Render("> "+line) + "\n"
		} else {
			s += "  " + pickerNormalStyle.Render(line) + "\n"
		}
	}

	if m.cursor < len(m.sessions) {
		sess := m.sessions[m.cursor]
		card := pickerTitleStyle.Render(shortID(sess.ID)) + "\n"
		card += pickerDimStyle.Render("Project: ") + pickerNormalStyle.Render(sess.ProjectPath) + "\n"
		card += pickerDimStyle.Render("Lines:   ") + pickerNormalStyle.Render(fmt.Sprintf("%d", sess.Lines)) + "\n"
		card += pickerDimStyle.Render("Preview: ") + pickerNormalStyle.Render(sess.Preview)
		s += "\n" + pickerCardStyle.Render(card)
	}

	s += "\n\n"
	s += pickerDimStyle.Render("↑/↓  navigate") + "\n"
	s += pickerDimStyle.Render("enter  resume session") + "\n"
	s += pickerDimStyle.Render("q  quit")
	return s
}

// pickSession runs the interactive picker and returns the chosen session,
// or nil if the user bailed out. out lets shell mode render on stderr while
// stdout stays reserved for eval-able commands.
func pickSession(title string, list []sessions.Session, out io.Writer) (*sessions.Session, error) {
	p := tea.NewProgram(newPickerModel(title, list), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("running picker: %w", err)
	}

	m := final.(pickerModel)
	if m.chosen < 0 {
		return nil, nil
	}
	return &m.sessions[m.chosen], nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8] + "..."
	}
	return id
}

func truncateStr(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
