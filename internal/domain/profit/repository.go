package profit

import (
	"context"
)

// Repository defines the read-only aggregation queries. Every query
// filters to non-returned sales within the range and computes cost as
// historical_cost_price * quantity.
type Repository interface {
	GetSummary(ctx context.Context, filter Filter) (Summary, error)
	GetByProduct(ctx context.Context, filter Filter) ([]ProductRow, error)
	GetByCategory(ctx context.Context, filter Filter) ([]GroupRow, error)
	GetBySupplier(ctx context.Context, filter Filter) ([]GroupRow, error)
	GetByDay(ctx context.Context, filter Filter) ([]DailyRow, error)
}

// Cache is an optional read-through cache for summary queries.
// Implemented by the redis-backed report cache; nil disables caching.
type Cache interface {
	GetSummary(ctx context.Context, filter Filter) (*Summary, bool)
	SetSummary(ctx context.Context, filter Filter, summary Summary)
}
