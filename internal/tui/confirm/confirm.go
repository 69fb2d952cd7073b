// Package confirm is a one-question yes/no prompt for destructive commands.
package confirm

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// --- Model ---

// Model is the confirmation dialog. It quits the program once answered.
type Model struct {
	Prompt    string
	Answered  bool
	Confirmed bool
	keys      keyMap
}

// New creates a dialog asking prompt.
func New(prompt string) Model {
	return Model{
		Prompt: prompt,
		keys:   defaultKeyMap,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// --- Update ---

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.Answered {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Confirm):
			m.Answered, m.Confirmed = true, true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Cancel):
			m.Answered = true
			return m, tea.Quit
		}
	}

	return m, nil
}

// --- View ---

var (
	borderColor = lipgloss.Color("208")
	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(1, 2)
)

func (m Model) View() string {
	if m.Answered {
		return ""
	}

	dialogBox := dialogStyle.Render(m.Prompt)

	helpText := lipgloss.NewStyle().
		Faint(true).
		Width(lipgloss.Width(dialogBox)).
		Align(lipgloss.Center).
		Render(fmt.Sprintf("\n%s • %s", m.keys.Confirm.Help().Key, m.keys.Cancel.Help().Key))

	return lipgloss.JoinVertical(lipgloss.Left, dialogBox, helpText) + "\n"
}

// --- KeyMap ---

type keyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

var defaultKeyMap = keyMap{
	Confirm: key.NewBinding(
		key.WithKeys("y", "Y"),
		key.WithHelp("y", "confirm"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("n", "N", "esc", "q", "ctrl+c"),
		key.WithHelp("n/esc", "cancel"),
	),
}

// Ask shows prompt on out, reads the answer from in and reports whether the
// user confirmed.
func Ask(prompt string, in io.Reader, out io.Writer) (bool, error) {
	p := tea.NewProgram(New(prompt), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return false, fmt.Errorf("confirmation prompt: %w", err)
	}
	m, ok := final.(Model)
	return ok && m.Confirmed, nil
}
