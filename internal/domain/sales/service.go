package sales

import (
	"context"
	"fmt"
	"time"

	"tillbook/internal/core/apperror"
	"tillbook/internal/core/id"
	"tillbook/internal/core/tx"
	"tillbook/internal/core/types"
	"tillbook/internal/domain"
	"tillbook/internal/domain/stock"
	"tillbook/pkg/logger"
	"tillbook/pkg/numerator"
)

// StockApplier is the single write path into the stock ledger.
// Satisfied by *stock.Service.
type StockApplier interface {
	Apply(ctx context.Context, req stock.ApplyRequest) (*stock.ApplyResult, error)
}

// Numberer allocates receipt numbers. Satisfied by *numerator.Service.
type Numberer interface {
	NextNumber(ctx context.Context, cfg numerator.Config, at time.Time) (string, error)
}

// Service orchestrates sale creation, cancellation and partial return.
// Every operation is one atomic unit of work: header, lines, stock
// counters and ledger facts commit or roll back together.
type Service struct {
	repo     Repository
	stock    StockApplier
	policy   *Policy
	numberer Numberer
	txm      tx.Manager
}

// NewService creates a new sale service.
func NewService(repo Repository, stockApplier StockApplier, policy *Policy, numberer Numberer, txm tx.Manager) *Service {
	return &Service{
		repo:     repo,
		stock:    stockApplier,
		policy:   policy,
		numberer: numberer,
		txm:      txm,
	}
}

// CreateSaleInput is the header plus ordered line items for a new sale.
type CreateSaleInput struct {
	// ReceiptNumber must be globally unique. Empty means one is
	// allocated from the receipt sequence.
	ReceiptNumber string

	PaymentMethod PaymentMethod
	TaxAmount     types.Money
	AmountPaid    types.Money
	CardAmount    types.Money
	CashAmount    types.Money
	Notes         string

	Items []CreateSaleItem
}

// CreateSaleItem is one requested receipt line.
type CreateSaleItem struct {
	ProductID id.ID
	Quantity  int64
	UnitPrice types.Money
	Discount  types.Money
}

// ReturnLine is one requested return against an existing sale item.
type ReturnLine struct {
	SaleItemID id.ID
	Quantity   int64
}

// Create records a sale. Within one transaction it inserts the header
// (receipt uniqueness enforced by the store), decrements each product
// conditionally while snapshotting its cost price, persists the lines
// with that snapshot, and appends one 'sale' ledger fact per line.
func (s *Service) Create(ctx context.Context, input CreateSaleInput) (*Sale, error) {
	sale := NewSale(input.ReceiptNumber, input.PaymentMethod)
	for _, item := range input.Items {
		sale.AddItem(item.ProductID, item.Quantity, item.UnitPrice, item.Discount)
	}
	sale.SetTax(input.TaxAmount)
	sale.SetPayment(input.AmountPaid, input.CardAmount, input.CashAmount)
	sale.Notes = input.Notes

	if err := sale.Validate(ctx); err != nil {
		return nil, err
	}
	if s.policy != nil {
		if err := s.policy.Check(sale); err != nil {
			return nil, err
		}
	}

	if sale.ReceiptNumber == "" {
		// Allocated outside the transaction so the sequence row is not
		// held locked while stock moves. A sale that fails below burns
		// its number; the sequence stays monotonic but can have gaps.
		number, err := s.numberer.NextNumber(ctx, numerator.DefaultConfig("RCP"), time.Now())
		if err != nil {
			return nil, fmt.Errorf("allocate receipt number: %w", err)
		}
		sale.ReceiptNumber = number
	}

	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		// Header first: a duplicate receipt fails before any stock moves.
		if err := s.repo.Create(ctx, sale); err != nil {
			return err
		}

		for i := range sale.Items {
			item := &sale.Items[i]
			result, err := s.stock.Apply(ctx, stock.ApplyRequest{
				ProductID: item.ProductID,
				Delta:     -item.Quantity,
				Type:      stock.AdjustmentSale,
				Reference: sale.ReceiptNumber,
			})
			if err != nil {
				return err
			}
			// Cost read in the same transaction as the decrement, so
			// it cannot be stale relative to a concurrent price change.
			item.HistoricalCostPrice = result.Product.CostPrice
		}

		if err := s.repo.CreateItems(ctx, sale.Items); err != nil {
			return fmt.Errorf("save items: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "sale created",
		"id", sale.ID,
		"receipt", sale.ReceiptNumber,
		"items", len(sale.Items),
		"total", sale.TotalAmount,
	)
	return sale, nil
}

// Cancel fully reverses a sale: restores every line's remaining stock,
// appends 'sale_cancel' ledger facts and flips the sale terminal.
// A canceled sale cannot be canceled again or re-activated.
func (s *Service) Cancel(ctx context.Context, saleID id.ID) (*Sale, error) {
	var sale *Sale
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		sale, err = s.repo.GetForUpdate(ctx, saleID)
		if err != nil {
			return err
		}
		if sale.IsReturned {
			return apperror.NewAlreadyReversed(sale.ID.String())
		}

		items, err := s.repo.GetItems(ctx, saleID)
		if err != nil {
			return fmt.Errorf("load items: %w", err)
		}
		sale.Items = items

		for i := range sale.Items {
			item := &sale.Items[i]
			// Restore only what has not already come back via returns.
			remaining := item.RemainingQuantity()
			if remaining <= 0 {
				continue
			}
			if _, err := s.stock.Apply(ctx, stock.ApplyRequest{
				ProductID: item.ProductID,
				Delta:     remaining,
				Type:      stock.AdjustmentSaleCancel,
				Reference: sale.ReceiptNumber,
			}); err != nil {
				return err
			}
			if err := s.repo.AddReturnedQuantity(ctx, item.ID, remaining); err != nil {
				return fmt.Errorf("record returned quantity: %w", err)
			}
			item.ReturnedQuantity = item.Quantity
		}

		sale.MarkReversed(time.Now().UTC(), "sale canceled, stock restored")
		if err := s.repo.MarkReversed(ctx, sale); err != nil {
			return fmt.Errorf("mark reversed: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "sale canceled", "id", sale.ID, "receipt", sale.ReceiptNumber)
	return sale, nil
}

// ProcessReturn partially reverses a sale. Each requested line is
// capped by its remaining (not yet returned) quantity; the sale flips
// terminal only when every line is returned in full.
func (s *Service) ProcessReturn(ctx context.Context, saleID id.ID, lines []ReturnLine) (*Sale, error) {
	if len(lines) == 0 {
		return nil, apperror.NewValidation("at least one return line is required")
	}
	for i, line := range lines {
		if line.Quantity <= 0 {
			return nil, apperror.NewValidation("return quantity must be positive").
				WithDetail("lineNo", i+1)
		}
	}

	var sale *Sale
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		sale, err = s.repo.GetForUpdate(ctx, saleID)
		if err != nil {
			return err
		}
		if sale.IsReturned {
			return apperror.NewAlreadyReversed(sale.ID.String())
		}

		items, err := s.repo.GetItems(ctx, saleID)
		if err != nil {
			return fmt.Errorf("load items: %w", err)
		}
		sale.Items = items

		byID := make(map[id.ID]*SaleItem, len(sale.Items))
		for i := range sale.Items {
			byID[sale.Items[i].ID] = &sale.Items[i]
		}

		for _, line := range lines {
			item, ok := byID[line.SaleItemID]
			if !ok {
				return apperror.NewValidation("return line does not belong to this sale").
					WithDetail("sale_item_id", line.SaleItemID.String())
			}

			remaining := item.RemainingQuantity()
			if line.Quantity > remaining {
				return apperror.NewOverReturn(item.ID.String(), line.Quantity, remaining)
			}

			if _, err := s.stock.Apply(ctx, stock.ApplyRequest{
				ProductID: item.ProductID,
				Delta:     line.Quantity,
				Type:      stock.AdjustmentSaleReturn,
				Reference: sale.ReceiptNumber,
			}); err != nil {
				return err
			}
			if err := s.repo.AddReturnedQuantity(ctx, item.ID, line.Quantity); err != nil {
				return fmt.Errorf("record returned quantity: %w", err)
			}
			item.ReturnedQuantity += line.Quantity
		}

		if sale.FullyReturned() {
			sale.MarkReversed(time.Now().UTC(), "all items returned")
			if err := s.repo.MarkReversed(ctx, sale); err != nil {
				return fmt.Errorf("mark reversed: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "return processed",
		"id", sale.ID,
		"receipt", sale.ReceiptNumber,
		"lines", len(lines),
		"fully_returned", sale.IsReturned,
	)
	return sale, nil
}

// GetWithItems retrieves a sale with its lines.
func (s *Service) GetWithItems(ctx context.Context, saleID id.ID) (*Sale, error) {
	sale, err := s.repo.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.GetItems(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	sale.Items = items
	return sale, nil
}

// List retrieves sales with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Sale], error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}
	return s.repo.List(ctx, filter)
}
