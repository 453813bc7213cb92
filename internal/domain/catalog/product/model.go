// Package product provides the product catalog entity.
package product

import (
	"context"
	"time"

	"tillbook/internal/core/apperror"
	"tillbook/internal/core/id"
	"tillbook/internal/core/types"
)

// Product is a sellable item with a live cost price and a materialized
// stock counter. The counter is mutated only through the stock service;
// catalog updates never touch it.
type Product struct {
	ID   id.ID  `db:"id" json:"id"`
	SKU  string `db:"sku" json:"sku"`
	Name string `db:"name" json:"name"`

	// Category and Supplier are plain labels used for report grouping.
	Category string `db:"category" json:"category,omitempty"`
	Supplier string `db:"supplier" json:"supplier,omitempty"`

	// CostPrice is the current purchase cost. Sales snapshot it onto
	// sale items; historical figures never read it.
	CostPrice    types.Money `db:"cost_price" json:"costPrice"`
	SellingPrice types.Money `db:"selling_price" json:"sellingPrice"`

	// StockQuantity is the materialized current count in whole units.
	StockQuantity int64 `db:"stock_quantity" json:"stockQuantity"`

	// InitialStock is the count the product was created with. Together
	// with the adjustment ledger it reconstructs StockQuantity.
	InitialStock int64 `db:"initial_stock" json:"initialStock"`

	MinStockThreshold int64 `db:"min_stock_threshold" json:"minStockThreshold"`

	// DeletedAt marks a soft delete. Products referenced by sales are
	// never removed physically, so historical joins stay intact.
	DeletedAt *time.Time `db:"deleted_at" json:"deletedAt,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewProduct creates a product with a generated ID.
func NewProduct(sku, name string) *Product {
	now := time.Now().UTC()
	return &Product{
		ID:        id.New(),
		SKU:       sku,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsDeleted reports whether the product is soft-deleted.
func (p *Product) IsDeleted() bool {
	return p.DeletedAt != nil
}

// IsLowStock reports whether stock fell to the reorder threshold.
func (p *Product) IsLowStock() bool {
	return p.StockQuantity <= p.MinStockThreshold
}

// Touch updates the modification timestamp.
func (p *Product) Touch() {
	p.UpdatedAt = time.Now().UTC()
}

// Validate checks catalog invariants.
func (p *Product) Validate(ctx context.Context) error {
	if p.SKU == "" {
		return apperror.NewValidation("sku is required").WithDetail("field", "sku")
	}
	if p.Name == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if p.CostPrice.IsNegative() {
		return apperror.NewValidation("cost price must not be negative").WithDetail("field", "costPrice")
	}
	if p.SellingPrice.IsNegative() {
		return apperror.NewValidation("selling price must not be negative").WithDetail("field", "sellingPrice")
	}
	if p.StockQuantity < 0 {
		return apperror.NewValidation("stock quantity must not be negative").WithDetail("field", "stockQuantity")
	}
	if p.MinStockThreshold < 0 {
		return apperror.NewValidation("min stock threshold must not be negative").WithDetail("field", "minStockThreshold")
	}
	return nil
}
