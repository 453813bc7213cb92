package stock

import (
	"context"
	"fmt"

	"tillbook/internal/core/apperror"
	"tillbook/internal/core/id"
	"tillbook/internal/core/tx"
	"tillbook/internal/domain/catalog/product"
	"tillbook/pkg/logger"
)

// Service owns every stock counter mutation. Both the counter update
// and the ledger append happen through Apply, inside one transaction,
// so the two can never drift apart.
type Service struct {
	repo Repository
	txm  tx.Manager
}

// NewService creates a new stock service.
func NewService(repo Repository, txm tx.Manager) *Service {
	return &Service{repo: repo, txm: txm}
}

// ApplyRequest describes one stock mutation.
type ApplyRequest struct {
	ProductID id.ID
	Delta     int64
	Type      AdjustmentType
	Reason    string
	Reference string
}

// ApplyResult carries the product state after the mutation. CostPrice
// on the returned product is read in the same transaction, which is
// what makes it a safe historical snapshot for sale items.
type ApplyResult struct {
	Product    *product.Product
	Adjustment Adjustment
}

// Apply mutates the counter and appends the matching ledger fact.
// It must run inside the caller's transaction; Service methods that
// stand alone wrap it themselves.
func (s *Service) Apply(ctx context.Context, req ApplyRequest) (*ApplyResult, error) {
	if !req.Type.Valid() {
		return nil, apperror.NewValidation(fmt.Sprintf("unknown adjustment type %q", req.Type))
	}
	if req.Delta == 0 {
		return nil, apperror.NewValidation("quantity change must not be zero")
	}

	allowDeficit := req.Delta > 0 || req.Type.AllowsDeficit()

	p, err := s.repo.ApplyDelta(ctx, req.ProductID, req.Delta, allowDeficit)
	if err != nil {
		return nil, err
	}

	adj := NewAdjustment(req.ProductID, req.Delta, req.Type, req.Reason, req.Reference)
	if err := s.repo.CreateAdjustments(ctx, []Adjustment{adj}); err != nil {
		return nil, fmt.Errorf("append adjustment: %w", err)
	}

	return &ApplyResult{Product: p, Adjustment: adj}, nil
}

// AdjustStock records a general-purpose stock mutation (purchase, loss,
// correction) as its own atomic unit of work. Sale-related types are
// reserved for the sale flow.
func (s *Service) AdjustStock(ctx context.Context, productID id.ID, delta int64, typ AdjustmentType, reason, reference string) (*product.Product, error) {
	if typ.SaleRelated() {
		return nil, apperror.NewValidation(fmt.Sprintf("adjustment type %q is reserved for sale processing", typ))
	}

	var result *ApplyResult
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		var applyErr error
		result, applyErr = s.Apply(ctx, ApplyRequest{
			ProductID: productID,
			Delta:     delta,
			Type:      typ,
			Reason:    reason,
			Reference: reference,
		})
		return applyErr
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock adjusted",
		"product_id", productID,
		"delta", delta,
		"type", typ,
		"stock_quantity", result.Product.StockQuantity,
	)
	return result.Product, nil
}

// History returns ledger facts for audit and UI.
func (s *Service) History(ctx context.Context, filter Filter) ([]Adjustment, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}
	return s.repo.List(ctx, filter)
}

// VerifyLedger reconciles a product counter against the ledger:
// initial stock plus the sum of all deltas must equal the counter.
type productReader interface {
	GetByID(ctx context.Context, productID id.ID) (*product.Product, error)
}

// Verifier reconciles counters against ledger facts.
type Verifier struct {
	stock    *Service
	products productReader
}

// NewVerifier creates a ledger verifier.
func NewVerifier(stock *Service, products productReader) *Verifier {
	return &Verifier{stock: stock, products: products}
}

// Check compares the materialized counter with the recomputed one.
func (v *Verifier) Check(ctx context.Context, productID id.ID) (*LedgerCheck, error) {
	p, err := v.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	sum, err := v.stock.repo.SumByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("sum adjustments: %w", err)
	}

	check := &LedgerCheck{
		ProductID:     productID,
		StockQuantity: p.StockQuantity,
		InitialStock:  p.InitialStock,
		LedgerSum:     sum,
		Consistent:    p.InitialStock+sum == p.StockQuantity,
	}

	if !check.Consistent {
		logger.Warn(ctx, "stock counter out of sync with ledger",
			"product_id", productID,
			"stock_quantity", check.StockQuantity,
			"expected", check.InitialStock+check.LedgerSum,
		)
	}

	return check, nil
}
