package sales

import (
	"context"
	"time"

	"tillbook/internal/core/id"
	"tillbook/internal/domain"
)

// Repository defines storage operations for sales.
type Repository interface {
	// Create inserts the sale header. A receipt number collision
	// surfaces as a DuplicateReceipt error.
	Create(ctx context.Context, sale *Sale) error

	// CreateItems batch-inserts the receipt lines.
	CreateItems(ctx context.Context, items []SaleItem) error

	GetByID(ctx context.Context, saleID id.ID) (*Sale, error)

	// GetForUpdate loads the sale header under a row lock so reversal
	// flows serialize on the terminal-state check.
	GetForUpdate(ctx context.Context, saleID id.ID) (*Sale, error)

	GetByReceiptNumber(ctx context.Context, receiptNumber string) (*Sale, error)

	GetItems(ctx context.Context, saleID id.ID) ([]SaleItem, error)

	// MarkReversed persists the terminal state: is_returned,
	// canceled_at, notes and updated_at. Totals are never rewritten.
	MarkReversed(ctx context.Context, sale *Sale) error

	// AddReturnedQuantity bumps the cumulative returned count of a line.
	AddReturnedQuantity(ctx context.Context, itemID id.ID, quantity int64) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Sale], error)
}

// ListFilter for filtering sales.
type ListFilter struct {
	domain.ListFilter

	ReceiptNumber string
	IsReturned    *bool
	DateFrom      *time.Time
	DateTo        *time.Time
}
