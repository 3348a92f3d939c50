package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/memoask/internal/model"
	"github.com/nhle/memoask/internal/store"
	"github.com/nhle/memoask/tests/testutil"
)

func TestMigrationsApplied(t *testing.T) {
	s := testutil.NewTestStore(t)

	version, err := s.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, 2, version)
}

func TestReopenKeepsSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memoask.db")

	s, err := store.NewSQLiteStore(path)
	require.NoError(t, err)
	_, err = s.RecordExchange(context.Background(), model.Exchange{Question: "q", Answer: "a"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = store.NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	n, err := s.CountExchanges(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRecordExchangeAssignsIDAndTime(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	saved, err := s.RecordExchange(ctx, model.Exchange{
		Question:  "what is the answer",
		Answer:    "42",
		Provider:  "DeepSeek",
		Model:     "deepseek-chat",
		LatencyMS: 120,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())

	got, err := s.RecentExchanges(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, saved.ID, got[0].ID)
	assert.Equal(t, "42", got[0].Answer)
	assert.Equal(t, int64(120), got[0].LatencyMS)
	assert.True(t, got[0].Succeeded())
}

func TestRecentExchangesNewestFirst(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for i, q := range []string{"first", "second", "third"} {
		_, err := s.RecordExchange(ctx, model.Exchange{
			Question:  q,
			Answer:    "a",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	got, err := s.RecentExchanges(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "third", got[0].Question)
	assert.Equal(t, "second", got[1].Question)
}

func TestRecentExchangesClampsLimit(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := s.RecordExchange(ctx, model.Exchange{Question: "q", Error: "rate limited"})
		require.NoError(t, err)
	}

	got, err := s.RecentExchanges(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.False(t, got[0].Succeeded())

	got, err = s.RecentExchanges(ctx, store.MaxHistoryLimit+50)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestRecordExchangeDuplicateID(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	_, err := s.RecordExchange(ctx, model.Exchange{ID: "fixed", Question: "q"})
	require.NoError(t, err)

	_, err = s.RecordExchange(ctx, model.Exchange{ID: "fixed", Question: "q"})
	assert.Error(t, err)
}

func TestPruneExchanges(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	old := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	_, err := s.RecordExchange(ctx, model.Exchange{Question: "old", CreatedAt: old})
	require.NoError(t, err)
	_, err = s.RecordExchange(ctx, model.Exchange{Question: "recent", CreatedAt: recent})
	require.NoError(t, err)

	removed, err := s.PruneExchanges(ctx, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	got, err := s.RecentExchanges(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "recent", got[0].Question)
}
