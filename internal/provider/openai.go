package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nhle/memoask/internal/logger"
)

const completionsPath = "chat/completions"

// maxUpstreamBody bounds the error body kept from a failed upstream call.
const maxUpstreamBody = 4096

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature"`
}

type completionResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

type upstreamErrorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// OpenAICompatible talks to any OpenAI-style chat/completions endpoint.
// OpenAI and DeepSeek both use it; the settings select the base URL.
type OpenAICompatible struct {
	transport http.RoundTripper
}

// NewOpenAICompatible creates a provider. A nil transport uses a clone of
// http.DefaultTransport per call.
func NewOpenAICompatible(transport http.RoundTripper) *OpenAICompatible {
	return &OpenAICompatible{transport: transport}
}

// Chat sends the messages and returns the first choice.
func (p *OpenAICompatible) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	s := req.Settings
	log := logger.FromContext(ctx)

	body, err := json.Marshal(completionRequest{
		Model:       s.Model,
		Messages:    req.Messages,
		MaxTokens:   s.MaxTokens,
		Temperature: s.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	endpoint := CompletionsURL(s.APIBaseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.APIKey)
	if s.UserAgent != "" {
		httpReq.Header.Set("User-Agent", s.UserAgent)
	}

	client := &http.Client{
		Timeout:   time.Duration(s.Timeout) * time.Second,
		Transport: p.roundTripper(s.Proxy),
	}

	start := time.Now()
	resp, err := client.Do(httpReq)
	if err != nil {
		log.Error("upstream request failed", "model", s.Model, "elapsed", time.Since(start), logger.Err(err))
		return nil, fmt.Errorf("calling %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := upstreamMessage(respBody)
		log.Error("upstream error", "status", resp.StatusCode, "model", s.Model, "error", msg)
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: msg}
	}

	var result completionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		return nil, ErrEmptyAnswer
	}

	out := &ChatResponse{
		Content: result.Choices[0].Message.Content,
		Model:   result.Model,
	}
	if out.Model == "" {
		out.Model = s.Model
	}
	if result.Usage != nil {
		out.TokensUsed = result.Usage.TotalTokens
	}

	log.Info("upstream request completed",
		"model", out.Model,
		"elapsed", time.Since(start),
		"tokens", out.TokensUsed,
		"answer_chars", len(out.Content),
	)

	return out, nil
}

// roundTripper applies the proxy when it parses; an unparseable proxy is
// ignored.
func (p *OpenAICompatible) roundTripper(proxy string) http.RoundTripper {
	if p.transport != nil && proxy == "" {
		return p.transport
	}

	var base *http.Transport
	if t, ok := p.transport.(*http.Transport); ok {
		base = t.Clone()
	} else {
		base = http.DefaultTransport.(*http.Transport).Clone()
	}

	if proxy != "" {
		if proxyURL, err := url.Parse(proxy); err == nil && proxyURL.Host != "" {
			base.Proxy = http.ProxyURL(proxyURL)
		} else {
			logger.Warn("ignoring invalid proxy", "proxy", proxy)
		}
	}
	return base
}

// CompletionsURL joins base and the completions path with one slash.
func CompletionsURL(base string) string {
	return strings.TrimRight(base, "/") + "/" + completionsPath
}

func upstreamMessage(body []byte) string {
	var parsed upstreamErrorBody
	if json.Unmarshal(body, &parsed) == nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxUpstreamBody {
		msg = msg[:maxUpstreamBody] + "..."
	}
	return msg
}
