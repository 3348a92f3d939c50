package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/memoask/internal/model"
	"github.com/nhle/memoask/internal/request"
	"github.com/nhle/memoask/internal/settings"
)

func newBackend(t *testing.T, handler http.HandlerFunc) *request.Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	rc, err := request.New(srv.URL)
	require.NoError(t, err)
	return rc
}

func TestAskSendsQuestionAndSettings(t *testing.T) {
	var gotPath string
	var body map[string]json.RawMessage

	rc := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"answer":"42"}`))
	})

	store := settings.NewStore(model.DefaultAISettings())
	store.Update(model.SettingsPatch{APIKey: model.Ptr("sk-test")})

	c := New(rc, WithSettings(store))
	resp, err := c.Ask(context.Background(), model.AskRequest{Content: "What is the answer?"})
	require.NoError(t, err)
	assert.Equal(t, "42", resp.Answer)
	assert.Empty(t, resp.Error)

	assert.Equal(t, model.ChatPath, gotPath)
	assert.JSONEq(t, `"What is the answer?"`, string(body["question"]))
	assert.NotContains(t, body, "model")

	var sent model.AISettings
	require.NoError(t, json.Unmarshal(body["settings"], &sent))
	assert.Equal(t, store.Get(), sent)
}

func TestAskSettingsUseCamelCaseNames(t *testing.T) {
	var settingsBody map[string]any

	rc := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Settings map[string]any `json:"settings"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		settingsBody = body.Settings
		_, _ = w.Write([]byte(`{"answer":"ok"}`))
	})

	c := New(rc, WithSettings(settings.NewStore(model.DefaultAISettings())))
	_, err := c.Ask(context.Background(), model.AskRequest{Content: "hi"})
	require.NoError(t, err)

	for _, key := range []string{
		"apiProvider", "timeout", "maxTokens", "temperature", "maxContext",
		"model", "apiKey", "proxy", "apiBaseUrl", "userAgent",
	} {
		assert.Contains(t, settingsBody, key)
	}
	assert.Len(t, settingsBody, 10)
}

func TestAskModelOverride(t *testing.T) {
	var body model.ChatRequest
	rc := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"answer":"ok"}`))
	})

	c := New(rc, WithSettings(settings.NewStore(model.DefaultAISettings())))
	_, err := c.Ask(context.Background(), model.AskRequest{Content: "hi", Model: "gpt-4o"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", body.Model)
	require.NotNil(t, body.Settings)
	assert.Equal(t, model.DefaultModel, body.Settings.Model)
}

func TestAskWithoutSettingsOmitsThem(t *testing.T) {
	var body map[string]json.RawMessage
	rc := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"answer":"ok"}`))
	})

	_, err := New(rc).Ask(context.Background(), model.AskRequest{Content: "hi"})
	require.NoError(t, err)
	assert.NotContains(t, body, "settings")
}

func TestAskForwardsContentUnvalidated(t *testing.T) {
	var body model.ChatRequest
	rc := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"error":"question is required"}`))
	})

	resp, err := New(rc).Ask(context.Background(), model.AskRequest{Content: "   "})
	require.NoError(t, err)
	assert.Equal(t, "   ", body.Question)
	assert.Equal(t, "question is required", resp.Error)
}

func TestAskDomainErrorIsNotAGoError(t *testing.T) {
	rc := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"rate limited"}`))
	})

	resp, err := New(rc).Ask(context.Background(), model.AskRequest{Content: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "rate limited", resp.Error)
	assert.Empty(t, resp.Answer)
}

func TestAskNon2xxFails(t *testing.T) {
	rc := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	})

	resp, err := New(rc).Ask(context.Background(), model.AskRequest{Content: "hi"})
	require.Error(t, err)
	assert.Nil(t, resp)

	var httpErr *request.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
	assert.Contains(t, err.Error(), "internal error")
}

func TestAskInvalidJSONFails(t *testing.T) {
	rc := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	})

	_, err := New(rc).Ask(context.Background(), model.AskRequest{Content: "hi"})
	assert.ErrorIs(t, err, request.ErrDecode)
}

func TestAskTimeoutEnforcement(t *testing.T) {
	release := make(chan struct{})
	rc := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
		_, _ = w.Write([]byte(`{"answer":"late"}`))
	})
	defer close(release)

	store := settings.NewStore(model.DefaultAISettings())
	store.Update(model.SettingsPatch{Timeout: model.Ptr(1)})

	c := New(rc, WithSettings(store), WithTimeoutEnforcement())

	start := time.Now()
	_, err := c.Ask(context.Background(), model.AskRequest{Content: "hi"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

type recordingDoer struct {
	opts request.Options
	ctx  context.Context
}

func (d *recordingDoer) Do(ctx context.Context, opts request.Options, out any) error {
	d.opts = opts
	d.ctx = ctx
	return json.Unmarshal([]byte(`{"answer":"stub"}`), out)
}

func TestAskWithoutEnforcementLeavesContextAlone(t *testing.T) {
	doer := &recordingDoer{}
	store := settings.NewStore(model.DefaultAISettings())

	resp, err := New(doer, WithSettings(store)).Ask(context.Background(), model.AskRequest{Content: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "stub", resp.Answer)

	_, hasDeadline := doer.ctx.Deadline()
	assert.False(t, hasDeadline)
	assert.Equal(t, http.MethodPost, doer.opts.Method)
	assert.Equal(t, model.ChatPath, doer.opts.URL)
}

func TestAskCustomPath(t *testing.T) {
	doer := &recordingDoer{}

	_, err := New(doer, WithPath("/custom")).Ask(context.Background(), model.AskRequest{Content: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "/custom", doer.opts.URL)
}
