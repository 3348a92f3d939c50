package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/nhle/memoask/internal/logger"
	"github.com/nhle/memoask/internal/model"
	"github.com/nhle/memoask/internal/provider"
	"github.com/nhle/memoask/internal/store"
)

// Messages returned in the error field of a 200 response.
const (
	MsgQuestionRequired    = "question is required"
	MsgAPIKeyMissing       = "api key is not configured"
	MsgUnsupportedProvider = "unsupported api provider"
	MsgRateLimited         = "rate limited"
)

// DefaultHistoryLimit applies when /api/ai/history has no limit parameter.
const DefaultHistoryLimit = 20

// ChatHandler answers questions through an upstream provider.
type ChatHandler struct {
	provider provider.Provider
	history  store.ExchangeStore
	limiter  *rate.Limiter
	defaults model.AISettings
	logger   *slog.Logger
	now      func() time.Time
}

// ChatOption configures a ChatHandler.
type ChatOption func(*ChatHandler)

// WithHistory records every exchange in s and feeds prior turns to the
// provider.
func WithHistory(s store.ExchangeStore) ChatOption {
	return func(h *ChatHandler) {
		h.history = s
	}
}

// WithRateLimit allows perMinute chat requests per minute with a burst of
// the same size. 0 disables limiting.
func WithRateLimit(perMinute int) ChatOption {
	return func(h *ChatHandler) {
		if perMinute <= 0 {
			h.limiter = nil
			return
		}
		h.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
	}
}

// WithDefaults sets the settings used when a request carries none.
func WithDefaults(s model.AISettings) ChatOption {
	return func(h *ChatHandler) {
		h.defaults = s
	}
}

func NewChatHandler(log *slog.Logger, p provider.Provider, opts ...ChatOption) *ChatHandler {
	h := &ChatHandler{
		provider: p,
		defaults: model.DefaultAISettings(),
		logger:   log.With(slog.String("handler", "chat")),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *ChatHandler) Register(e *echo.Echo) {
	e.POST(model.ChatPath, h.Chat)
	e.POST(model.TestPath, h.Test)
	e.GET(model.HistoryPath, h.History)
}

// Chat handles POST /api/ai/chat.
//
// Problems with the question or settings are reported as 200 with an error
// field; only malformed bodies (400) and upstream failures (502) use an
// error status.
func (h *ChatHandler) Chat(c echo.Context) error {
	var req model.ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, model.AskResponse{Error: "invalid request: " + bindMessage(err)})
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		return c.JSON(http.StatusOK, model.AskResponse{Error: MsgQuestionRequired})
	}

	settings := h.defaults
	if req.Settings != nil {
		settings = *req.Settings
	}
	if req.Model != "" {
		settings.Model = req.Model
	}

	if !settings.APIProvider.Valid() {
		return c.JSON(http.StatusOK, model.AskResponse{Error: MsgUnsupportedProvider})
	}
	if strings.TrimSpace(settings.APIKey) == "" {
		return c.JSON(http.StatusOK, model.AskResponse{Error: MsgAPIKeyMissing})
	}
	if h.limiter != nil && !h.limiter.Allow() {
		return c.JSON(http.StatusOK, model.AskResponse{Error: MsgRateLimited})
	}

	ctx := c.Request().Context()
	log := logger.FromContext(ctx)

	conv := h.conversation(ctx, settings.MaxContext)

	start := h.now()
	resp, err := h.provider.Chat(ctx, provider.ChatRequest{
		Settings: settings,
		Messages: conv.Messages(question),
	})
	latency := h.now().Sub(start)

	ex := model.Exchange{
		Question:  question,
		Provider:  string(settings.APIProvider),
		Model:     settings.Model,
		LatencyMS: latency.Milliseconds(),
	}

	if err != nil {
		ex.Error = err.Error()
		h.record(ctx, ex)
		log.Error("chat failed",
			slog.String("provider", ex.Provider),
			slog.String("model", ex.Model),
			logger.Err(err),
		)
		return c.JSON(statusFor(err), model.AskResponse{Error: err.Error()})
	}

	ex.Answer = resp.Content
	if resp.Model != "" {
		ex.Model = resp.Model
	}
	h.record(ctx, ex)

	log.Info("chat answered",
		slog.String("provider", ex.Provider),
		slog.String("model", ex.Model),
		slog.Int("context_turns", conv.Len()),
		slog.Int("answer_chars", len(resp.Content)),
		slog.Duration("latency", latency),
	)

	return c.JSON(http.StatusOK, model.AskResponse{Answer: resp.Content})
}

// Test handles POST /api/ai/test.
func (h *ChatHandler) Test(c echo.Context) error {
	return c.JSON(http.StatusOK, model.TestResponse{Message: "Test endpoint working"})
}

// History handles GET /api/ai/history.
func (h *ChatHandler) History(c echo.Context) error {
	limit := DefaultHistoryLimit
	if raw := strings.TrimSpace(c.QueryParam("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = n
	}

	if h.history == nil {
		return c.JSON(http.StatusOK, model.HistoryResponse{Exchanges: []model.Exchange{}})
	}

	exchanges, err := h.history.RecentExchanges(c.Request().Context(), limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if exchanges == nil {
		exchanges = []model.Exchange{}
	}

	return c.JSON(http.StatusOK, model.HistoryResponse{Exchanges: exchanges})
}

// conversation loads up to maxTurns prior exchanges. History failures are
// logged and the question is sent without context.
func (h *ChatHandler) conversation(ctx context.Context, maxTurns int) *provider.Conversation {
	if h.history == nil || maxTurns <= 0 {
		return provider.NewConversation(0)
	}

	prior, err := h.history.RecentExchanges(ctx, maxTurns)
	if err != nil {
		h.logger.Warn("loading history failed", logger.Err(err))
		return provider.NewConversation(0)
	}
	return provider.FromHistory(prior, maxTurns)
}

func (h *ChatHandler) record(ctx context.Context, ex model.Exchange) {
	if h.history == nil {
		return
	}
	if _, err := h.history.RecordExchange(ctx, ex); err != nil {
		h.logger.Warn("recording exchange failed", logger.Err(err))
	}
}

// statusFor maps provider failures to a response status.
func statusFor(err error) int {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

func bindMessage(err error) string {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if msg, ok := he.Message.(string); ok {
			return msg
		}
	}
	return err.Error()
}
