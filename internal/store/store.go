package store

import (
	"context"

	"github.com/nhle/memoask/internal/model"
)

// MaxHistoryLimit caps how many exchanges a single history query returns.
const MaxHistoryLimit = 200

// ExchangeStore records the questions the backend answered.
type ExchangeStore interface {
	// RecordExchange stores ex, assigning an ID and timestamp when they are
	// empty, and returns the stored value.
	RecordExchange(ctx context.Context, ex model.Exchange) (model.Exchange, error)

	// RecentExchanges returns up to limit exchanges, newest first.
	RecentExchanges(ctx context.Context, limit int) ([]model.Exchange, error)
}
