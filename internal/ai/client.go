package ai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/nhle/memoask/internal/model"
	"github.com/nhle/memoask/internal/request"
	"github.com/nhle/memoask/internal/settings"
)

// Asker is the single operation chat surfaces need from the client.
type Asker interface {
	Ask(ctx context.Context, req model.AskRequest) (*model.AskResponse, error)
}

// Doer sends one JSON request. *request.Client satisfies it.
type Doer interface {
	Do(ctx context.Context, opts request.Options, out any) error
}

// Client posts questions to the chat backend together with the current
// AI settings.
type Client struct {
	doer           Doer
	settings       settings.Reader
	path           string
	enforceTimeout bool
}

// Option configures a Client.
type Option func(*Client)

// WithSettings attaches a settings reader. Without one the payload carries
// only the question and model.
func WithSettings(r settings.Reader) Option {
	return func(c *Client) {
		c.settings = r
	}
}

// WithTimeoutEnforcement bounds each call by the settings timeout. It has
// no effect without a settings reader or when the timeout is 0.
func WithTimeoutEnforcement() Option {
	return func(c *Client) {
		c.enforceTimeout = true
	}
}

// WithPath overrides the endpoint path.
func WithPath(path string) Option {
	return func(c *Client) {
		c.path = path
	}
}

// New creates a Client that sends requests through doer.
func New(doer Doer, opts ...Option) *Client {
	c := &Client{
		doer: doer,
		path: model.ChatPath,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ask sends req to the backend. The content is forwarded unvalidated.
//
// Transport failures, non-2xx statuses and undecodable bodies are returned
// as errors. A 2xx body with an "error" field is a successful call whose
// AskResponse.Error is set.
func (c *Client) Ask(ctx context.Context, req model.AskRequest) (*model.AskResponse, error) {
	payload := model.ChatRequest{
		Question: req.Content,
		Model:    req.Model,
	}

	if c.settings != nil {
		snapshot := c.settings.Get()
		payload.Settings = &snapshot

		if c.enforceTimeout && snapshot.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, time.Duration(snapshot.Timeout)*time.Second)
			defer cancel()
		}
	}

	var resp model.AskResponse
	err := c.doer.Do(ctx, request.Options{
		URL:    c.path,
		Method: http.MethodPost,
		Data:   payload,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("asking AI: %w", err)
	}

	return &resp, nil
}
