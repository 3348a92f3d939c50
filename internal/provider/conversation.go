package provider

import "github.com/nhle/memoask/internal/model"

// Conversation holds prior question/answer turns, oldest first, and drops
// the oldest turn once maxTurns is exceeded.
type Conversation struct {
	turns    [][2]string
	maxTurns int
}

// NewConversation creates a conversation keeping at most maxTurns turns.
// A limit of 0 keeps none.
func NewConversation(maxTurns int) *Conversation {
	if maxTurns < 0 {
		maxTurns = 0
	}
	return &Conversation{maxTurns: maxTurns}
}

// FromHistory builds a conversation from exchanges ordered newest first,
// as returned by the exchange store. Failed exchanges are skipped.
func FromHistory(history []model.Exchange, maxTurns int) *Conversation {
	c := NewConversation(maxTurns)
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Succeeded() {
			c.AddTurn(history[i].Question, history[i].Answer)
		}
	}
	return c
}

// AddTurn appends a completed turn.
func (c *Conversation) AddTurn(question, answer string) {
	if c.maxTurns == 0 {
		return
	}
	c.turns = append(c.turns, [2]string{question, answer})
	if excess := len(c.turns) - c.maxTurns; excess > 0 {
		c.turns = c.turns[excess:]
	}
}

// Len returns the number of kept turns.
func (c *Conversation) Len() int {
	return len(c.turns)
}

// Messages returns the kept turns followed by question as the final user
// message.
func (c *Conversation) Messages(question string) []Message {
	msgs := make([]Message, 0, len(c.turns)*2+1)
	for _, t := range c.turns {
		msgs = append(msgs,
			Message{Role: RoleUser, Content: t[0]},
			Message{Role: RoleAssistant, Content: t[1]},
		)
	}
	return append(msgs, Message{Role: RoleUser, Content: question})
}
