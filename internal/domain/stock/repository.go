package stock

import (
	"context"
	"time"

	"tillbook/internal/core/id"
	"tillbook/internal/domain/catalog/product"
)

// Repository defines storage operations for the stock ledger.
type Repository interface {
	// ApplyDelta atomically adds delta to the product counter with a
	// conditional UPDATE and returns the row after the change. Unless
	// allowDeficit is set, an update that would leave the counter
	// negative affects no rows and surfaces as InsufficientStock.
	// Soft-deleted and missing products surface as NotFound.
	ApplyDelta(ctx context.Context, productID id.ID, delta int64, allowDeficit bool) (*product.Product, error)

	// CreateAdjustments batch-appends ledger facts.
	CreateAdjustments(ctx context.Context, adjustments []Adjustment) error

	// List retrieves ledger facts, newest first.
	List(ctx context.Context, filter Filter) ([]Adjustment, error)

	// SumByProduct returns the signed sum of all deltas for a product.
	SumByProduct(ctx context.Context, productID id.ID) (int64, error)
}

// Filter for ledger queries.
type Filter struct {
	ProductID *id.ID
	Type      *AdjustmentType
	Reference string
	FromDate  *time.Time
	ToDate    *time.Time
	Limit     int
	Offset    int
}
