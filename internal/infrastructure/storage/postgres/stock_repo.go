package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"tillbook/internal/core/apperror"
	"tillbook/internal/core/id"
	"tillbook/internal/domain/catalog/product"
	"tillbook/internal/domain/stock"
)

const adjustmentsTable = "stock_adjustments"

var adjustmentColumns = []string{
	"id", "product_id", "quantity_change", "adjustment_type",
	"reason", "reference", "created_at",
}

// StockRepo implements stock.Repository.
type StockRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

// NewStockRepo creates a new stock ledger repository.
func NewStockRepo(txm *TxManager) *StockRepo {
	return &StockRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ApplyDelta mutates the product counter with one conditional UPDATE.
// The availability check lives in the WHERE clause, so two concurrent
// sales of the last unit cannot both succeed: the second update matches
// no rows and the caller's transaction rolls back untouched.
func (r *StockRepo) ApplyDelta(ctx context.Context, productID id.ID, delta int64, allowDeficit bool) (*product.Product, error) {
	sql := `
		UPDATE products
		SET stock_quantity = stock_quantity + $2,
		    updated_at = now()
		WHERE id = $1
		  AND deleted_at IS NULL
		  AND ($3 OR stock_quantity + $2 >= 0)
		RETURNING id, sku, name, category, supplier,
		          cost_price, selling_price,
		          stock_quantity, initial_stock, min_stock_threshold,
		          deleted_at, created_at, updated_at
	`

	var p product.Product
	querier := r.txm.GetQuerier(ctx)
	err := pgxscan.Get(ctx, querier, &p, sql, productID, delta, allowDeficit)
	if err == nil {
		return &p, nil
	}
	if !pgxscan.NotFound(err) {
		return nil, apperror.NewStore(fmt.Errorf("apply stock delta: %w", err))
	}

	// Zero rows: distinguish a missing/deleted product from a blocked
	// decrement by re-reading the counter.
	var available int64
	checkSQL := `SELECT stock_quantity FROM products WHERE id = $1 AND deleted_at IS NULL`
	err = querier.QueryRow(ctx, checkSQL, productID).Scan(&available)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperror.NewNotFound("product", productID.String())
		}
		return nil, apperror.NewStore(fmt.Errorf("check stock availability: %w", err))
	}

	return nil, apperror.NewInsufficientStock(productID.String(), -delta, available)
}

// CreateAdjustments batch-appends ledger facts. Uses COPY inside a
// transaction, plain multi-row insert otherwise.
func (r *StockRepo) CreateAdjustments(ctx context.Context, adjustments []stock.Adjustment) error {
	if len(adjustments) == 0 {
		return nil
	}

	if tx := r.txm.GetTx(ctx); tx != nil {
		inserter := NewBatchInserter(r.txm)
		rows := make([][]any, 0, len(adjustments))
		for _, a := range adjustments {
			rows = append(rows, []any{
				a.ID, a.ProductID, a.QuantityChange, a.Type,
				a.Reason, a.Reference, a.CreatedAt,
			})
		}
		if _, err := inserter.CopyFromSlice(ctx, adjustmentsTable, adjustmentColumns, rows); err != nil {
			return apperror.NewStore(fmt.Errorf("copy adjustments: %w", err))
		}
		return nil
	}

	q := r.builder.Insert(adjustmentsTable).Columns(adjustmentColumns...)
	for _, a := range adjustments {
		q = q.Values(
			a.ID, a.ProductID, a.QuantityChange, a.Type,
			a.Reason, a.Reference, a.CreatedAt,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return apperror.NewStore(fmt.Errorf("insert adjustments: %w", err))
	}

	return nil
}

// List retrieves ledger facts, newest first.
func (r *StockRepo) List(ctx context.Context, filter stock.Filter) ([]stock.Adjustment, error) {
	q := r.builder.Select(adjustmentColumns...).From(adjustmentsTable)

	if filter.ProductID != nil {
		q = q.Where(squirrel.Eq{"product_id": *filter.ProductID})
	}
	if filter.Type != nil {
		q = q.Where(squirrel.Eq{"adjustment_type": *filter.Type})
	}
	if filter.Reference != "" {
		q = q.Where(squirrel.Eq{"reference": filter.Reference})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *filter.ToDate})
	}

	q = q.OrderBy("created_at DESC", "id DESC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var adjustments []stock.Adjustment
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &adjustments, sql, args...); err != nil {
		return nil, apperror.NewStore(fmt.Errorf("select adjustments: %w", err))
	}

	return adjustments, nil
}

// SumByProduct returns the signed sum of all deltas for a product.
func (r *StockRepo) SumByProduct(ctx context.Context, productID id.ID) (int64, error) {
	sql := `
		SELECT COALESCE(SUM(quantity_change), 0)
		FROM stock_adjustments
		WHERE product_id = $1
	`

	var sum int64
	querier := r.txm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, productID).Scan(&sum); err != nil {
		return 0, apperror.NewStore(fmt.Errorf("sum adjustments: %w", err))
	}

	return sum, nil
}

var _ stock.Repository = (*StockRepo)(nil)
