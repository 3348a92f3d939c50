// Package chat is the Ask-AI conversation view.
package chat

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	chatctl "github.com/nhle/memoask/internal/chat"
	"github.com/nhle/memoask/internal/keys"
	"github.com/nhle/memoask/internal/model"
	"github.com/nhle/memoask/internal/theme"
)

// AnswerMsg carries the outcome of a question sent from the chat view.
type AnswerMsg struct {
	Resp *model.AskResponse
	Err  error
}

// entry is one line of the transcript.
type entry struct {
	Role    string
	Content string
}

// Model is the chat view: a question input above a scrollable transcript.
type Model struct {
	ctrl     *chatctl.Controller
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	entries  []entry
	keys     *keys.KeyMap
	style    string
	width    int
	height   int
}

// New creates the chat view driving ctrl.
func New(ctrl *chatctl.Controller, k *keys.KeyMap, width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask AI anything..."
	ti.Prompt = "> "
	ti.CharLimit = 4000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctrl:     ctrl,
		input:    ti,
		viewport: viewport.New(width, height),
		spinner:  sp,
		keys:     k,
		style:    StyleAuto,
	}
	m.SetSize(width, height)
	return m
}

// Init returns the initial command for the chat view.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the chat view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case AnswerMsg:
		return m.handleAnswer(msg), nil

	case spinner.TickMsg:
		if !m.ctrl.State().Pending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Submit):
			return m.submit()
		case key.Matches(msg, m.keys.ScrollUp, m.keys.ScrollDown):
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit hands the input to the controller. Blank input and submissions
// while a question is pending are ignored and keep the input text.
func (m Model) submit() (Model, tea.Cmd) {
	question, ok := m.ctrl.Begin(m.input.Value())
	if !ok {
		return m, nil
	}

	m.input.Reset()
	m.entries = append(m.entries, entry{Role: "You", Content: question})
	m.refresh()

	ctrl := m.ctrl
	return m, tea.Batch(
		m.spinner.Tick,
		func() tea.Msg {
			resp, err := ctrl.Ask(context.Background(), question)
			return AnswerMsg{Resp: resp, Err: err}
		},
	)
}

func (m Model) handleAnswer(msg AnswerMsg) Model {
	m.ctrl.Finish(msg.Resp, msg.Err)

	st := m.ctrl.State()
	if msg.Err == nil && msg.Resp != nil && msg.Resp.Error == "" {
		m.entries = append(m.entries, entry{Role: "AI", Content: st.Answer})
	} else {
		m.entries = append(m.entries, entry{Role: "Error", Content: st.Error})
	}
	m.refresh()
	return m
}

// refresh re-renders the transcript and scrolls to the bottom.
func (m *Model) refresh() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m Model) renderTranscript() string {
	if len(m.entries) == 0 {
		return theme.HelpStyle.Render("Ask a question. Answers use the AI settings (ctrl+s).")
	}

	var sections []string
	for _, e := range m.entries {
		body := e.Content
		switch e.Role {
		case "AI":
			body = renderMarkdown(e.Content, m.viewport.Width, m.style)
		case "Error":
			body = theme.ErrorStyle.Render(e.Content)
		}
		sections = append(sections, theme.RoleStyle(e.Role).Render(e.Role+":"), body, "")
	}
	return strings.Join(sections, "\n")
}

// View renders the chat view.
func (m Model) View() string {
	status := ""
	if m.ctrl.State().Pending {
		status = m.spinner.View() + " " + theme.HelpStyle.Render("asking...")
	}

	separator := lipgloss.NewStyle().
		Foreground(theme.ColorSubtle).
		Render(strings.Repeat("─", max(min(m.width-8, 80), 0)))

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		theme.TitleStyle.Render("Ask AI"),
		m.viewport.View(),
		separator,
		m.input.View(),
		status,
	)

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(content)
}

// SetSize updates the chat view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = max(width-10, 10)

	m.viewport.Width = max(width-8, 10)
	m.viewport.Height = max(height-11, 3)
	m.refresh()
}

// SetMarkdownStyle selects the glamour style used for answers.
func (m *Model) SetMarkdownStyle(style string) {
	m.style = style
	m.refresh()
}

// Focus gives keyboard focus to the question input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}

// SetInput replaces the question input text.
func (m *Model) SetInput(s string) {
	m.input.SetValue(s)
	m.input.CursorEnd()
}

// Clear empties the transcript and the controller state. It is ignored
// while a question is pending.
func (m *Model) Clear() {
	if m.ctrl.State().Pending {
		return
	}
	m.ctrl.Reset()
	m.entries = nil
	m.refresh()
}

// Pending reports whether a question is in flight.
func (m Model) Pending() bool {
	return m.ctrl.State().Pending
}
