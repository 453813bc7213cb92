package product

import (
	"context"
	"time"

	"tillbook/internal/core/id"
	"tillbook/internal/core/tx"
	"tillbook/internal/domain"
	"tillbook/pkg/logger"
)

// Service provides catalog operations for products.
type Service struct {
	repo Repository
	txm  tx.Manager
}

// NewService creates a new product service.
func NewService(repo Repository, txm tx.Manager) *Service {
	return &Service{repo: repo, txm: txm}
}

// Create adds a product to the catalog. The opening count is recorded
// as InitialStock so the adjustment ledger reconciles from day one.
func (s *Service) Create(ctx context.Context, p *Product) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}
	p.InitialStock = p.StockQuantity

	if err := s.repo.Create(ctx, p); err != nil {
		return err
	}

	logger.Info(ctx, "product created", "id", p.ID, "sku", p.SKU)
	return nil
}

// GetByID retrieves a product.
func (s *Service) GetByID(ctx context.Context, productID id.ID) (*Product, error) {
	return s.repo.GetByID(ctx, productID)
}

// Update persists catalog fields and prices. Changing CostPrice here
// never touches historical_cost_price on existing sale items.
func (s *Service) Update(ctx context.Context, p *Product) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}
	p.Touch()
	return s.repo.Update(ctx, p)
}

// Delete soft-deletes a product. Rows are never removed physically
// once referenced by a sale, so delete is always a soft delete.
func (s *Service) Delete(ctx context.Context, productID id.ID) error {
	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.repo.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if p.IsDeleted() {
			return nil
		}
		if err := s.repo.SoftDelete(ctx, productID, time.Now().UTC()); err != nil {
			return err
		}
		logger.Info(ctx, "product soft-deleted", "id", productID, "sku", p.SKU)
		return nil
	})
}

// List retrieves products with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Product], error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}
	return s.repo.List(ctx, filter)
}

// ListLowStock returns products at or below their reorder threshold.
func (s *Service) ListLowStock(ctx context.Context) ([]*Product, error) {
	return s.repo.ListLowStock(ctx)
}
