package product

import (
	"context"
	"time"

	"tillbook/internal/core/id"
	"tillbook/internal/domain"
)

// Repository defines storage operations for products.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, productID id.ID) (*Product, error)
	GetBySKU(ctx context.Context, sku string) (*Product, error)

	// Update persists catalog fields and prices. It never writes
	// stock_quantity; stock mutations go through the stock repository.
	Update(ctx context.Context, p *Product) error

	// SoftDelete marks the product deleted, keeping the row for
	// historical sale joins.
	SoftDelete(ctx context.Context, productID id.ID, at time.Time) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Product], error)

	// ListLowStock returns active products at or below their threshold.
	ListLowStock(ctx context.Context) ([]*Product, error)
}

// ListFilter for filtering product lists.
type ListFilter struct {
	domain.ListFilter

	Category string
	Supplier string
}
