package app

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/memoask/internal/ai"
	chatctl "github.com/nhle/memoask/internal/chat"
	"github.com/nhle/memoask/internal/settings"
	appsync "github.com/nhle/memoask/internal/sync"
	"github.com/nhle/memoask/internal/ui"
	chatview "github.com/nhle/memoask/internal/ui/chat"
	"github.com/nhle/memoask/internal/ui/command"
	"github.com/nhle/memoask/internal/ui/editor"
	helpview "github.com/nhle/memoask/internal/ui/help"
	historyview "github.com/nhle/memoask/internal/ui/history"
	settingsview "github.com/nhle/memoask/internal/ui/settings"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewChat ViewState = iota
	ViewEditor
	ViewSettings
	ViewHistory
	ViewHelp
	ViewCommand
)

// Deps holds what the root model needs from the caller.
type Deps struct {
	Asker    ai.Asker
	Settings *settings.Store

	// ChatOptions configure the controllers of both the chat view and the
	// editor.
	ChatOptions []chatctl.Option

	// MarkdownStyle is a glamour style name for rendered answers.
	MarkdownStyle string

	// History feeds the history view. Nil disables it.
	History historyview.Fetcher

	// Poller reports backend reachability in the header. Nil disables it.
	Poller *appsync.Poller
}

// Model is the root Bubble Tea model that manages view routing and layout.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	settings     *settings.Store
	keys         *KeyMap
	chatView     chatview.Model
	editorView   editor.Model
	settingsView settingsview.Model
	historyView  historyview.Model
	hasHistory   bool
	helpView     helpview.Model
	commandView  command.Model
	poller       *appsync.Poller
	backend      appsync.Status
	notice       string
	ready        bool
}

// New creates the root application model.
func New(deps Deps) Model {
	keys := DefaultKeyMap()

	chatView := chatview.New(chatctl.NewController(deps.Asker, deps.ChatOptions...), keys, 80, 24)
	if deps.MarkdownStyle != "" {
		chatView.SetMarkdownStyle(deps.MarkdownStyle)
	}

	m := Model{
		currentView:  ViewChat,
		settings:     deps.Settings,
		keys:         keys,
		chatView:     chatView,
		editorView:   editor.New(deps.Asker, keys, 80, 24, deps.ChatOptions...),
		settingsView: settingsview.New(deps.Settings, keys, 80, 24),
		historyView:  historyview.New(deps.History, keys, 80, 24),
		hasHistory:   deps.History != nil,
		poller:       deps.Poller,
		helpView:     helpview.New(keys, command.Commands, 80, 24),
		commandView:  command.New(80, 24),
	}

	// Without an API key the first question would fail, so start in the
	// settings panel.
	if deps.Settings.Get().APIKey == "" {
		m.currentView = ViewSettings
		m.notice = "no API key configured"
	}
	return m
}

// Init returns the initial command for the active view and starts the
// backend poller.
func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.currentView == ViewSettings {
		cmds = append(cmds, m.settingsView.Init())
	} else {
		cmds = append(cmds, m.chatView.Init())
	}
	if m.poller != nil {
		cmds = append(cmds, m.poller.Start())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.chatView.SetSize(contentWidth, contentHeight)
		m.editorView.SetSize(contentWidth, contentHeight)
		m.settingsView.SetSize(contentWidth, contentHeight)
		m.historyView.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		m.commandView.SetSize(contentWidth, contentHeight)
		return m, nil

	// Answers and spinner ticks go to their view even when it is hidden,
	// otherwise a pending question would never finish.
	case chatview.AnswerMsg:
		var cmd tea.Cmd
		m.chatView, cmd = m.chatView.Update(msg)
		return m, cmd

	case editor.AnswerMsg:
		var cmd tea.Cmd
		m.editorView, cmd = m.editorView.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		var chatCmd, editorCmd tea.Cmd
		m.chatView, chatCmd = m.chatView.Update(msg)
		m.editorView, editorCmd = m.editorView.Update(msg)
		return m, tea.Batch(chatCmd, editorCmd)

	case appsync.StatusMsg:
		m.backend = msg.Status
		return m, m.poller.WaitForNextResult()

	case historyview.LoadedMsg:
		var cmd tea.Cmd
		m.historyView, cmd = m.historyView.Update(msg)
		return m, cmd

	case historyview.ReaskMsg:
		m.currentView = ViewChat
		m.chatView.SetInput(msg.Question)
		return m, m.chatView.Focus()

	case command.CommandMsg:
		m.currentView = m.previousView
		return m, m.executeCommand(string(msg))

	case settingsview.SavedMsg:
		m.notice = fmt.Sprintf("settings saved (%d changed)", msg.Changed)
		m.currentView = ViewChat
		return m, m.chatView.Focus()

	case settingsview.DoneMsg:
		m.notice = ""
		m.currentView = ViewChat
		return m, m.chatView.Focus()

	case tea.KeyMsg:
		if cmd, handled := m.handleGlobalKey(msg); handled {
			return m, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKey processes keys that work in every view. It reports
// false when the key belongs to the active view.
func (m *Model) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.stopPoller()
		return tea.Quit, true

	case key.Matches(msg, m.keys.Help):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return nil, true
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return nil, true

	case key.Matches(msg, m.keys.Command):
		if m.currentView == ViewCommand {
			m.currentView = m.previousView
			return nil, true
		}
		m.previousView = m.currentView
		m.currentView = ViewCommand
		return m.commandView.Focus(), true

	case key.Matches(msg, m.keys.Settings):
		return m.openSettings(), true

	case key.Matches(msg, m.keys.History):
		if m.currentView == ViewHistory {
			// The view reloads itself.
			return nil, false
		}
		return m.openHistory(), true

	case key.Matches(msg, m.keys.Editor):
		m.currentView = ViewEditor
		return m.editorView.Focus(), true

	case key.Matches(msg, m.keys.Chat):
		m.currentView = ViewChat
		return m.chatView.Focus(), true

	case key.Matches(msg, m.keys.Clear):
		if m.currentView == ViewChat || m.currentView == ViewEditor {
			m.clearActive()
			return nil, true
		}

	case key.Matches(msg, m.keys.Back):
		switch m.currentView {
		case ViewHelp, ViewCommand:
			m.currentView = m.previousView
			return nil, true
		case ViewEditor, ViewHistory:
			m.currentView = ViewChat
			return m.chatView.Focus(), true
		}
		// The settings form handles esc itself and reports DoneMsg.
	}

	return nil, false
}

func (m *Model) openSettings() tea.Cmd {
	if m.currentView != ViewSettings {
		m.previousView = m.currentView
	}
	m.currentView = ViewSettings
	return m.settingsView.Open()
}

func (m *Model) openHistory() tea.Cmd {
	if !m.hasHistory {
		m.notice = "history is not available"
		return nil
	}
	m.currentView = ViewHistory
	cmd := m.historyView.Load()
	if m.poller != nil {
		m.poller.Refresh()
	}
	return cmd
}

func (m *Model) stopPoller() {
	if m.poller != nil {
		m.poller.Stop()
	}
}

func (m *Model) clearActive() {
	switch m.currentView {
	case ViewChat:
		m.chatView.Clear()
	case ViewEditor:
		m.editorView.Clear()
	}
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewChat:
		m.chatView, cmd = m.chatView.Update(msg)
	case ViewEditor:
		m.editorView, cmd = m.editorView.Update(msg)
	case ViewSettings:
		m.settingsView, cmd = m.settingsView.Update(msg)
	case ViewHistory:
		m.historyView, cmd = m.historyView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("memoask", m.status())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewChat:
		return m.chatView.View()
	case ViewEditor:
		return m.editorView.View()
	case ViewSettings:
		return m.settingsView.View()
	case ViewHistory:
		return m.historyView.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	default:
		return ""
	}
}

// status describes the active provider and model, and whether a question
// is in flight.
func (m Model) status() string {
	s := m.settings.Get()
	status := fmt.Sprintf("%s · %s", s.APIProvider, s.Model)
	if m.chatView.Pending() || m.editorView.Pending() {
		status += " · asking..."
	}
	if m.poller != nil {
		switch m.backend.State {
		case appsync.BackendOnline:
			status += " · ● online"
		case appsync.BackendOffline:
			status += " · ○ offline"
		}
	}
	return status
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	if m.notice != "" && m.currentView != ViewHelp {
		return m.notice
	}

	switch m.currentView {
	case ViewHelp:
		return "f1 close help | esc back"
	case ViewCommand:
		return "ctrl+k close | enter execute | esc back"
	case ViewSettings:
		return "enter next | shift+tab back | esc close"
	case ViewEditor:
		return "ctrl+a ask AI | ctrl+l clear | esc chat | f1 help"
	case ViewHistory:
		return "enter ask again | ctrl+r reload | esc chat"
	default:
		return "enter ask | ctrl+e editor | ctrl+s settings | ctrl+k commands | f1 help | ctrl+c quit"
	}
}

// executeCommand handles a command from the command palette.
func (m *Model) executeCommand(cmd string) tea.Cmd {
	switch cmd {
	case command.Chat:
		m.currentView = ViewChat
		return m.chatView.Focus()
	case command.Editor:
		m.currentView = ViewEditor
		return m.editorView.Focus()
	case command.Settings:
		return m.openSettings()
	case command.History:
		return m.openHistory()
	case command.Clear:
		m.clearActive()
		return nil
	case command.Help:
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return nil
	case command.Quit:
		m.stopPoller()
		return tea.Quit
	default:
		return nil
	}
}

// CurrentView reports the active view.
func (m Model) CurrentView() ViewState {
	return m.currentView
}
