// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/nhle/memoask/internal/model"
	"github.com/nhle/memoask/internal/store"
)

// NewTestStore opens an in-memory exchange store with all migrations
// applied and closes it when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// SeedExchanges records one successful exchange per pair of question and
// answer, one minute apart and in the given order.
func SeedExchanges(t *testing.T, s store.ExchangeStore, pairs ...[2]string) {
	t.Helper()

	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	for i, p := range pairs {
		_, err := s.RecordExchange(context.Background(), model.Exchange{
			Question:  p[0],
			Answer:    p[1],
			Provider:  string(model.DefaultProvider),
			Model:     model.DefaultModel,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("seeding exchange %d: %v", i, err)
		}
	}
}
