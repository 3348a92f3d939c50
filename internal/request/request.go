// Package request is the JSON-over-HTTP helper the chat surfaces use to
// reach the backend.
package request

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// ErrDecode marks a response body that could not be parsed as JSON.
var ErrDecode = errors.New("decoding response")

// maxErrorBody bounds how much of a failed response is kept in HTTPError.
const maxErrorBody = 2048

// Options describes a single request.
type Options struct {
	URL     string
	Method  string
	Data    any
	Headers map[string]string
}

// HTTPError is returned for any non-2xx status.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("request failed (%d): %s", e.StatusCode, e.Status)
	}
	return fmt.Sprintf("request failed (%d): %s: %s", e.StatusCode, e.Status, e.Body)
}

// Client sends JSON requests relative to a base URL.
type Client struct {
	baseURL *url.URL
	client  *http.Client
	headers map[string]string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithHeader attaches a header to every request made by the client.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers[key] = value
	}
}

// New creates a Client. Relative request URLs are resolved against baseURL;
// an empty baseURL requires absolute request URLs.
func New(baseURL string, opts ...Option) (*Client, error) {
	c := &Client{
		client:  &http.Client{},
		headers: make(map[string]string),
	}

	if strings.TrimSpace(baseURL) != "" {
		parsed, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("parsing base url %q: %w", baseURL, err)
		}
		if parsed.Scheme == "" || parsed.Host == "" {
			return nil, fmt.Errorf("base url %q must include scheme and host", baseURL)
		}
		c.baseURL = parsed
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Do sends the request and decodes a 2xx JSON body into out (which may be
// nil to discard it). Non-2xx statuses return *HTTPError; bodies that are
// not JSON return an error wrapping ErrDecode.
func (c *Client) Do(ctx context.Context, opts Options, out any) error {
	target, err := c.resolve(opts.URL)
	if err != nil {
		return err
	}

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if opts.Data != nil {
		raw, err := json.Marshal(opts.Data)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{
			StatusCode: resp.StatusCode,
			Status:     statusText(resp),
			Body:       truncate(strings.TrimSpace(string(respBody)), maxErrorBody),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}

	return nil
}

// resolve joins a relative URL onto the base URL.
func (c *Client) resolve(raw string) (string, error) {
	ref, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parsing url %q: %w", raw, err)
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}
	if c.baseURL == nil {
		return "", fmt.Errorf("relative url %q without a base url", raw)
	}
	return c.baseURL.ResolveReference(ref).String(), nil
}

// statusText returns the reason phrase without the leading code.
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, fmt.Sprintf("%d", resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
