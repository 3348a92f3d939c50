package history

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/memoask/internal/keys"
	"github.com/nhle/memoask/internal/model"
)

type stubFetcher struct {
	exchanges []model.Exchange
	err       error
	limit     int
}

func (s *stubFetcher) History(_ context.Context, limit int) ([]model.Exchange, error) {
	s.limit = limit
	return s.exchanges, s.err
}

func load(t *testing.T, m Model) Model {
	t.Helper()
	cmd := m.Load()
	require.NotNil(t, cmd)
	m, _ = m.Update(cmd())
	return m
}

func TestLoadShowsExchanges(t *testing.T) {
	f := &stubFetcher{exchanges: []model.Exchange{
		{Question: "newest question", Answer: "an answer", Provider: "OpenAI", Model: "gpt-4o", CreatedAt: time.Now()},
		{Question: "older question", Error: "upstream returned status 500", Provider: "OpenAI", Model: "gpt-4o"},
	}}
	m := load(t, New(f, keys.DefaultKeyMap(), 100, 30))

	assert.Equal(t, Limit, f.limit)
	view := m.View()
	assert.Contains(t, view, "newest question")
	assert.Contains(t, view, "an answer")
	assert.Contains(t, view, "upstream returned status 500")
}

func TestLoadErrorIsShown(t *testing.T) {
	m := load(t, New(&stubFetcher{err: errors.New("connection refused")}, keys.DefaultKeyMap(), 100, 30))
	assert.Contains(t, m.View(), "connection refused")
}

func TestEmptyHistory(t *testing.T) {
	m := load(t, New(&stubFetcher{}, keys.DefaultKeyMap(), 100, 30))
	assert.Contains(t, m.View(), "No exchanges recorded yet.")
}

func TestEnterReasksSelected(t *testing.T) {
	f := &stubFetcher{exchanges: []model.Exchange{{Question: "what is sqlite?", Answer: "a db"}}}
	m := load(t, New(f, keys.DefaultKeyMap(), 100, 30))

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, ReaskMsg{Question: "what is sqlite?"}, cmd())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "a b", truncate("a\n  b", 10))
	assert.Equal(t, "abcdefghi…", truncate("abcdefghijklmnop", 10))
}
