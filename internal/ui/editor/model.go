// Package editor is the memo editor. Asking AI about a memo appends the
// answer below its content.
package editor

import (
	"context"
	"sync"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/memoask/internal/ai"
	chatctl "github.com/nhle/memoask/internal/chat"
	"github.com/nhle/memoask/internal/keys"
	"github.com/nhle/memoask/internal/model"
	"github.com/nhle/memoask/internal/theme"
)

// AnswerMsg carries the outcome of a question sent from the editor.
type AnswerMsg struct {
	Resp *model.AskResponse
	Err  error
}

// inbox receives answers from the controller hook. It is shared by every
// copy of the Model.
type inbox struct {
	mu      sync.Mutex
	answers []string
}

func (b *inbox) put(answer string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.answers = append(b.answers, answer)
}

func (b *inbox) drain() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.answers
	b.answers = nil
	return out
}

// Model is the memo editor view.
type Model struct {
	ctrl    *chatctl.Controller
	inbox   *inbox
	input   textarea.Model
	spinner spinner.Model
	keys    *keys.KeyMap
	width   int
	height  int
}

// New creates an editor that asks through asker. opts configure its own
// controller, separate from the chat view's.
func New(asker ai.Asker, k *keys.KeyMap, width, height int, opts ...chatctl.Option) Model {
	box := &inbox{}
	opts = append(opts, chatctl.OnAnswer(box.put))

	ta := textarea.New()
	ta.Placeholder = "Write a memo, then press ctrl+a to ask AI about it..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctrl:    chatctl.NewController(asker, opts...),
		inbox:   box,
		input:   ta,
		spinner: sp,
		keys:    k,
	}
	m.SetSize(width, height)
	return m
}

// Init returns the initial command for the editor.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles messages for the editor.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case AnswerMsg:
		m.ctrl.Finish(msg.Resp, msg.Err)
		for _, answer := range m.inbox.drain() {
			m.input.SetValue(chatctl.AppendResponse(m.input.Value(), answer))
		}
		return m, nil

	case spinner.TickMsg:
		if !m.ctrl.State().Pending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.AskAI) {
			return m.ask()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// ask sends the whole memo as the question. Disabled while pending.
func (m Model) ask() (Model, tea.Cmd) {
	question, ok := m.ctrl.Begin(m.input.Value())
	if !ok {
		return m, nil
	}

	ctrl := m.ctrl
	return m, tea.Batch(
		m.spinner.Tick,
		func() tea.Msg {
			resp, err := ctrl.Ask(context.Background(), question)
			return AnswerMsg{Resp: resp, Err: err}
		},
	)
}

// View renders the editor.
func (m Model) View() string {
	st := m.ctrl.State()

	var status string
	switch {
	case st.Pending:
		status = m.spinner.View() + " " + theme.HelpStyle.Render("asking AI...")
	case st.Error != "":
		status = theme.ErrorStyle.Render(st.Error)
	default:
		status = theme.HelpStyle.Render("ctrl+a ask AI about this memo")
	}

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		theme.TitleStyle.Render("Memo"),
		m.input.View(),
		"",
		status,
	)

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(content)
}

// SetSize updates the editor dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.SetWidth(max(width-8, 10))
	m.input.SetHeight(max(height-10, 3))
}

// Focus gives keyboard focus to the textarea.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}

// Value returns the memo content.
func (m Model) Value() string {
	return m.input.Value()
}

// SetValue replaces the memo content.
func (m *Model) SetValue(s string) {
	m.input.SetValue(s)
}

// Clear empties the memo and the controller state unless a question is
// pending.
func (m *Model) Clear() {
	if m.ctrl.State().Pending {
		return
	}
	m.ctrl.Reset()
	m.input.Reset()
}

// Pending reports whether a question is in flight.
func (m Model) Pending() bool {
	return m.ctrl.State().Pending
}
