// Package chat holds the interaction state shared by every Ask-AI surface:
// whether a question is in flight, the last answer, and the last error.
package chat

import (
	"context"
	"strings"
	"sync"

	"github.com/nhle/memoask/internal/ai"
	"github.com/nhle/memoask/internal/logger"
	"github.com/nhle/memoask/internal/model"
)

// DefaultErrorMessage is shown when a failure carries no message of its own.
const DefaultErrorMessage = "request failed, try again later"

// State is a snapshot of a Controller.
type State struct {
	Pending bool
	Answer  string
	Error   string
}

// Controller drives one chat surface. Begin is called from the UI loop and
// Finish may be called from the goroutine that ran the request.
type Controller struct {
	asker ai.Asker
	model string

	clearAnswerOnSubmit bool
	onAnswer            func(string)

	mu    sync.Mutex
	state State
}

// Option configures a Controller.
type Option func(*Controller)

// WithClearAnswerOnSubmit empties the previous answer when a question is
// accepted.
func WithClearAnswerOnSubmit(clear bool) Option {
	return func(c *Controller) {
		c.clearAnswerOnSubmit = clear
	}
}

// OnAnswer registers fn to receive every successful answer. It runs outside
// the controller lock.
func OnAnswer(fn func(answer string)) Option {
	return func(c *Controller) {
		c.onAnswer = fn
	}
}

// WithModel sets the per-request model override sent with every question.
func WithModel(name string) Option {
	return func(c *Controller) {
		c.model = name
	}
}

// NewController creates an idle controller that asks through asker.
func NewController(asker ai.Asker, opts ...Option) *Controller {
	c := &Controller{asker: asker}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Begin accepts question for sending. It returns the trimmed question and
// true, or false when the question is blank or a request is already pending.
func (c *Controller) Begin(question string) (string, bool) {
	trimmed := strings.TrimSpace(question)
	if trimmed == "" {
		return "", false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Pending {
		return "", false
	}

	c.state.Pending = true
	c.state.Error = ""
	if c.clearAnswerOnSubmit {
		c.state.Answer = ""
	}

	return trimmed, true
}

// Finish records the outcome of the request started by Begin and clears
// Pending. A failed request leaves the previous answer in place.
func (c *Controller) Finish(resp *model.AskResponse, err error) {
	var answer string

	c.mu.Lock()
	switch {
	case err != nil:
		c.state.Error = errorMessage(err.Error())
	case resp == nil:
		c.state.Error = DefaultErrorMessage
	case resp.Error != "":
		c.state.Error = resp.Error
	default:
		c.state.Answer = resp.Answer
		answer = resp.Answer
	}
	c.state.Pending = false
	succeeded := err == nil && resp != nil && resp.Error == ""
	c.mu.Unlock()

	if succeeded && c.onAnswer != nil {
		c.onAnswer(answer)
	}
}

// Submit runs Begin, the request and Finish on the calling goroutine. It
// returns false without contacting the backend when Begin rejects the
// question.
func (c *Controller) Submit(ctx context.Context, question string) bool {
	trimmed, ok := c.Begin(question)
	if !ok {
		return false
	}

	resp, err := c.Ask(ctx, trimmed)
	c.Finish(resp, err)
	return true
}

// Ask sends an already accepted question. UIs call it from a command
// goroutine between Begin and Finish.
func (c *Controller) Ask(ctx context.Context, question string) (*model.AskResponse, error) {
	resp, err := c.asker.Ask(ctx, model.AskRequest{Content: question, Model: c.model})
	if err != nil {
		logger.FromContext(ctx).Warn("ask failed", logger.Err(err))
		return nil, err
	}
	if resp != nil && resp.Error != "" {
		logger.FromContext(ctx).Info("ask returned error", "error", resp.Error)
	}
	return resp, nil
}

// Reset clears the answer and error. It is ignored while pending.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Pending {
		return
	}
	c.state = State{}
}

func errorMessage(msg string) string {
	if strings.TrimSpace(msg) == "" {
		return DefaultErrorMessage
	}
	return msg
}

// AppendResponse returns content with answer appended under an
// "AI Response:" heading. The original content is never replaced.
func AppendResponse(content, answer string) string {
	return content + "\n\nAI Response:\n" + answer
}
