package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/memoask/internal/theme"
)

// Palette commands.
const (
	Chat     = "chat"
	Editor   = "editor"
	Settings = "settings"
	History  = "history"
	Clear    = "clear"
	Help     = "help"
	Quit     = "quit"
)

// Commands lists the palette commands in display order.
var Commands = []string{Chat, Editor, Settings, History, Clear, Help, Quit}

// CommandMsg is emitted when the user executes a command.
type CommandMsg string

// Parse normalizes raw palette input: a leading ':' is dropped, case is
// folded and "q" is an alias for quit. It reports false for unknown
// commands.
func Parse(raw string) (string, bool) {
	cmd := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), ":")))
	if cmd == "q" {
		cmd = Quit
	}
	for _, known := range Commands {
		if cmd == known {
			return cmd, true
		}
	}
	return cmd, false
}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	err    string
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "chat, editor, settings, history, clear, help, quit"
	ti.Prompt = ": "
	ti.ShowSuggestions = true
	ti.SetSuggestions(Commands)
	ti.Focus()
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" {
		raw := m.input.Value()
		if strings.TrimSpace(raw) == "" {
			return m, nil
		}

		cmd, ok := Parse(raw)
		if !ok {
			m.err = "unknown command: " + cmd
			return m, nil
		}

		m.err = ""
		m.input.Reset()
		return m, func() tea.Msg {
			return CommandMsg(cmd)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	sections := []string{
		theme.TitleStyle.Render("Command Palette"),
		m.input.View(),
	}
	if m.err != "" {
		sections = append(sections, "", theme.ErrorStyle.Render(m.err))
	}

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input and clears stale input.
func (m *Model) Focus() tea.Cmd {
	m.input.Reset()
	m.err = ""
	return m.input.Focus()
}
