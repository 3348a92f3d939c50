// Package provider calls the upstream chat-completion APIs that answer
// questions on behalf of the backend.
package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/nhle/memoask/internal/model"
)

// ErrEmptyAnswer is returned when the upstream reply has no content.
var ErrEmptyAnswer = errors.New("no answer in upstream response")

// Role identifies the sender of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single entry in a chat-completion request.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatRequest carries the settings for one call and the messages to send,
// ending with the user's question.
type ChatRequest struct {
	Settings model.AISettings
	Messages []Message
}

// ChatResponse is the upstream answer.
type ChatResponse struct {
	Content    string
	Model      string
	TokensUsed int
}

// Provider is implemented by every upstream backend.
type Provider interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// UpstreamError reports a non-200 reply from the upstream API.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Body)
}
