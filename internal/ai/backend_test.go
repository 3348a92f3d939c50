package ai

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/memoask/internal/model"
	"github.com/nhle/memoask/internal/request"
)

func TestPing(t *testing.T) {
	rc := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, model.TestPath, r.URL.Path)
		_, _ = w.Write([]byte(`{"message":"Test endpoint working"}`))
	})

	require.NoError(t, New(rc).Ping(context.Background()))
}

func TestPingFailures(t *testing.T) {
	empty := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	assert.Error(t, New(empty).Ping(context.Background()))

	down := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	err := New(down).Ping(context.Background())
	var httpErr *request.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusServiceUnavailable, httpErr.StatusCode)
}

func TestHistory(t *testing.T) {
	rc := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, model.HistoryPath, r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"exchanges":[{"id":"b","question":"q2"},{"id":"a","question":"q1"}]}`))
	})

	got, err := New(rc).History(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "q2", got[0].Question)
}

func TestHistoryWithoutLimit(t *testing.T) {
	rc := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		_, _ = w.Write([]byte(`{"exchanges":[]}`))
	})

	got, err := New(rc).History(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}
