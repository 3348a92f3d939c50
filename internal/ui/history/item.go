package history

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/memoask/internal/model"
	"github.com/nhle/memoask/internal/theme"
)

// ExchangeItem wraps a model.Exchange so it can be used in a bubbles/list.
type ExchangeItem struct {
	Exchange model.Exchange
}

// FilterValue returns the string used for fuzzy filtering.
func (i ExchangeItem) FilterValue() string { return i.Exchange.Question }

// Title returns the question.
func (i ExchangeItem) Title() string { return i.Exchange.Question }

// Description returns a short summary line for the list.
func (i ExchangeItem) Description() string {
	parts := []string{
		i.Exchange.Provider + "/" + i.Exchange.Model,
		relativeTime(i.Exchange.CreatedAt),
	}
	return strings.Join(parts, " | ")
}

// ItemDelegate renders an exchange on two lines: the question, then the
// answer or error.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 2 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 1 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single exchange.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(ExchangeItem)
	if !ok {
		return
	}
	ex := it.Exchange

	width := m.Width() - 4
	meta := theme.DimmedStyle.Render(fmt.Sprintf("  %s · %dms", it.Description(), ex.LatencyMS))
	first := truncate(ex.Question, width/2) + meta

	var second string
	if ex.Succeeded() {
		second = "→ " + truncate(ex.Answer, width)
	} else {
		second = theme.ErrorStyle.Render("✗ " + truncate(ex.Error, width))
	}

	block := first + "\n" + second
	if index == m.Index() {
		block = theme.SelectedItemStyle.Render(block)
	} else {
		block = theme.ListItemStyle.Render(block)
	}

	fmt.Fprint(w, block)
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if n < 4 {
		n = 4
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// relativeTime returns a human-friendly relative time string.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return fmt.Sprintf("%dw ago", int(d.Hours()/24/7))
	}
}
