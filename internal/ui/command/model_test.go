package command

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{":chat", Chat, true},
		{"  Settings ", Settings, true},
		{"q", Quit, true},
		{":editor", Editor, true},
		{"launch", "launch", false},
	}
	for _, tt := range tests {
		got, ok := Parse(tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
		assert.Equal(t, tt.wantOK, ok, tt.raw)
	}
}

func typeText(m Model, s string) Model {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestEnterEmitsCommand(t *testing.T) {
	m := typeText(New(80, 24), "settings")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, CommandMsg(Settings), cmd())
	assert.Empty(t, m.input.Value())
}

func TestEnterUnknownShowsError(t *testing.T) {
	m := typeText(New(80, 24), "bogus")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "unknown command: bogus")
}

func TestEnterOnEmptyInputDoesNothing(t *testing.T) {
	_, cmd := New(80, 24).Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}
