package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/memoask/internal/ai"
	chatctl "github.com/nhle/memoask/internal/chat"
	"github.com/nhle/memoask/internal/credential"
	"github.com/nhle/memoask/internal/model"
	"github.com/nhle/memoask/internal/request"
	"github.com/nhle/memoask/internal/settings"
)

type stubAsker struct {
	got  model.AskRequest
	resp *model.AskResponse
	err  error
}

func (s *stubAsker) Ask(_ context.Context, req model.AskRequest) (*model.AskResponse, error) {
	s.got = req
	return s.resp, s.err
}

func TestAskOncePrintsAnswer(t *testing.T) {
	asker := &stubAsker{resp: &model.AskResponse{Answer: "42"}}
	var out bytes.Buffer

	err := askOnce(context.Background(), &out, asker, "  meaning of life  ", chatctl.WithModel("gpt-4o"))
	require.NoError(t, err)

	assert.Equal(t, "42\n", out.String())
	assert.Equal(t, "meaning of life", asker.got.Content)
	assert.Equal(t, "gpt-4o", asker.got.Model)
}

func TestAskOnceReturnsErrors(t *testing.T) {
	var out bytes.Buffer

	err := askOnce(context.Background(), &out, &stubAsker{resp: &model.AskResponse{Error: "rate limited"}}, "hi")
	require.EqualError(t, err, "rate limited")

	err = askOnce(context.Background(), &out, &stubAsker{err: errors.New("boom")}, "hi")
	require.EqualError(t, err, "boom")

	err = askOnce(context.Background(), &out, &stubAsker{}, "   ")
	require.Error(t, err)
	assert.Empty(t, out.String())
}

func TestNewAskerSendsStoreSettings(t *testing.T) {
	var body model.ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, model.ChatPath, r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_ = json.NewEncoder(w).Encode(model.AskResponse{Answer: "hello"})
	}))
	defer srv.Close()

	cfg := model.DefaultAppConfig()
	cfg.Client.BaseURL = srv.URL
	s := model.DefaultAISettings()
	s.APIKey = "sk-test"

	asker, err := newAsker(cfg, settings.NewStore(s))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, askOnce(context.Background(), &out, asker, "hi"))
	assert.Equal(t, "hello\n", out.String())
	require.NotNil(t, body.Settings)
	assert.Equal(t, "sk-test", body.Settings.APIKey)
}

func TestSeedSettingsPrefersEnv(t *testing.T) {
	t.Setenv(credential.APIKeyEnv, "from-env")
	cfg := model.DefaultAppConfig()
	cfg.AI.APIKey = "from-config"

	s, src := seedSettings(cfg, nil)
	assert.Equal(t, "from-env", s.APIKey)
	assert.Equal(t, credential.SourceEnv, src)
}

func TestSeedSettingsFallsBackToConfig(t *testing.T) {
	t.Setenv(credential.APIKeyEnv, "")
	cfg := model.DefaultAppConfig()
	cfg.AI.APIKey = "from-config"

	s, src := seedSettings(cfg, nil)
	assert.Equal(t, "from-config", s.APIKey)
	assert.Equal(t, credential.SourceConfig, src)
}

func TestPrintHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, model.HistoryPath, r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		_ = json.NewEncoder(w).Encode(model.HistoryResponse{Exchanges: []model.Exchange{
			{Question: "what is\nsqlite", Answer: "a database", Provider: "OpenAI", Model: "gpt-4o", LatencyMS: 120, CreatedAt: time.Now()},
			{Question: "and echo?", Error: "upstream returned status 500: boom", Provider: "OpenAI", Model: "gpt-4o"},
		}})
	}))
	defer srv.Close()

	rc, err := request.New(srv.URL)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, printHistory(context.Background(), &out, ai.New(rc), 5))

	assert.Contains(t, out.String(), "Q: what is sqlite")
	assert.Contains(t, out.String(), "A: a database")
	assert.Contains(t, out.String(), "error: upstream returned status 500: boom")
	assert.Contains(t, out.String(), "OpenAI/gpt-4o  120ms")
}

func TestPrintHistoryEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(model.HistoryResponse{Exchanges: []model.Exchange{}})
	}))
	defer srv.Close()

	rc, err := request.New(srv.URL)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, printHistory(context.Background(), &out, ai.New(rc), 20))
	assert.Equal(t, "No exchanges recorded.\n", out.String())
}

func TestInitConfigRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, initConfig(path, false))
	_, err := os.Stat(path)
	require.NoError(t, err)

	require.Error(t, initConfig(path, false))
	require.NoError(t, initConfig(path, true))

	cfg, err := model.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultAppConfig().Server.Addr, cfg.Server.Addr)
}

func TestShowConfigRedactsKey(t *testing.T) {
	cfg := model.DefaultAppConfig()
	cfg.AI.APIKey = "sk-secret"

	var out bytes.Buffer
	showConfig(&out, cfg, credential.SourceKeyring)

	assert.NotContains(t, out.String(), "sk-secret")
	assert.Contains(t, out.String(), "api_key: ******** (keyring)")
}

func TestOneLine(t *testing.T) {
	assert.Equal(t, "a b c", oneLine(" a\n b\t c "))
	long := oneLine(string(bytes.Repeat([]byte("x"), 150)))
	assert.Len(t, long, 100)
}
