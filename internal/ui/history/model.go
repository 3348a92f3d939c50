// Package history lists the exchanges recorded by the backend.
package history

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/memoask/internal/keys"
	"github.com/nhle/memoask/internal/model"
	"github.com/nhle/memoask/internal/theme"
)

// Limit is how many exchanges the view requests.
const Limit = 50

// Fetcher loads recorded exchanges. *ai.Client satisfies it.
type Fetcher interface {
	History(ctx context.Context, limit int) ([]model.Exchange, error)
}

// LoadedMsg is sent when exchanges have been fetched.
type LoadedMsg struct {
	Exchanges []model.Exchange
	Err       error
}

// ReaskMsg is sent when the user picks an exchange to ask again.
type ReaskMsg struct {
	Question string
}

// Model is the history view component.
type Model struct {
	list    list.Model
	fetcher Fetcher
	keys    *keys.KeyMap
	loading bool
	err     string
	width   int
	height  int
}

// New creates a history view reading from f.
func New(f Fetcher, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height-2)
	l.Title = "History"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:    l,
		fetcher: f,
		keys:    k,
		width:   width,
		height:  height,
	}
}

// Init loads the exchanges.
func (m Model) Init() tea.Cmd {
	return m.Load()
}

// Load returns a command fetching the latest exchanges.
func (m *Model) Load() tea.Cmd {
	m.loading = true
	f := m.fetcher
	return func() tea.Msg {
		exchanges, err := f.History(context.Background(), Limit)
		return LoadedMsg{Exchanges: exchanges, Err: err}
	}
}

// Update handles messages for the history view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.err = msg.Err.Error()
			return m, nil
		}
		m.err = ""
		items := make([]list.Item, len(msg.Exchanges))
		for i, ex := range msg.Exchanges {
			items[i] = ExchangeItem{Exchange: ex}
		}
		return m, m.list.SetItems(items)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Submit):
			item, ok := m.list.SelectedItem().(ExchangeItem)
			if !ok {
				return m, nil
			}
			q := item.Exchange.Question
			return m, func() tea.Msg { return ReaskMsg{Question: q} }

		case key.Matches(msg, m.keys.History):
			return m, m.Load()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the history view.
func (m Model) View() string {
	if m.err != "" {
		return m.renderMessage(theme.ErrorStyle.Render(m.err) + "\n\nctrl+r to retry")
	}
	if len(m.list.Items()) == 0 {
		if m.loading {
			return m.renderMessage("Loading...")
		}
		return m.renderMessage("No exchanges recorded yet.")
	}
	return m.list.View()
}

func (m Model) renderMessage(s string) string {
	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray).
		Render(s)
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}
