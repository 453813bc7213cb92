package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tillbook/internal/core/apperror"
	"tillbook/internal/core/id"
	"tillbook/internal/domain"
	"tillbook/internal/domain/sales"
)

const (
	salesTable     = "sales"
	saleItemsTable = "sale_items"

	receiptUniqueConstraint = "sales_receipt_number_key"
)

var saleColumns = []string{
	"id", "receipt_number",
	"subtotal", "tax_amount", "discount_amount", "total_amount",
	"payment_method", "card_amount", "cash_amount", "amount_paid", "change_amount",
	"is_returned", "canceled_at", "notes",
	"created_at", "updated_at",
}

var saleItemColumns = []string{
	"id", "sale_id", "product_id",
	"quantity", "unit_price", "discount_amount", "total_price",
	"historical_cost_price", "returned_quantity",
}

// SaleRepo implements sales.Repository.
type SaleRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

// NewSaleRepo creates a new sale repository.
func NewSaleRepo(txm *TxManager) *SaleRepo {
	return &SaleRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts the sale header. The receipt number carries a unique
// constraint, so a duplicate fails here before any stock has moved.
func (r *SaleRepo) Create(ctx context.Context, sale *sales.Sale) error {
	q := r.builder.Insert(salesTable).
		Columns(saleColumns...).
		Values(
			sale.ID, sale.ReceiptNumber,
			sale.Subtotal, sale.TaxAmount, sale.DiscountAmount, sale.TotalAmount,
			sale.PaymentMethod, sale.CardAmount, sale.CashAmount, sale.AmountPaid, sale.ChangeAmount,
			sale.IsReturned, sale.CanceledAt, sale.Notes,
			sale.CreatedAt, sale.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		if IsUniqueViolation(err, receiptUniqueConstraint) {
			return apperror.NewDuplicateReceipt(sale.ReceiptNumber)
		}
		return apperror.NewStore(fmt.Errorf("insert sale: %w", err))
	}

	return nil
}

// CreateItems batch-inserts receipt lines via COPY.
func (r *SaleRepo) CreateItems(ctx context.Context, items []sales.SaleItem) error {
	if len(items) == 0 {
		return nil
	}

	if tx := r.txm.GetTx(ctx); tx != nil {
		inserter := NewBatchInserter(r.txm)
		rows := make([][]any, 0, len(items))
		for _, item := range items {
			rows = append(rows, []any{
				item.ID, item.SaleID, item.ProductID,
				item.Quantity, item.UnitPrice, item.DiscountAmount, item.TotalPrice,
				item.HistoricalCostPrice, item.ReturnedQuantity,
			})
		}
		if _, err := inserter.CopyFromSlice(ctx, saleItemsTable, saleItemColumns, rows); err != nil {
			return apperror.NewStore(fmt.Errorf("copy sale items: %w", err))
		}
		return nil
	}

	q := r.builder.Insert(saleItemsTable).Columns(saleItemColumns...)
	for _, item := range items {
		q = q.Values(
			item.ID, item.SaleID, item.ProductID,
			item.Quantity, item.UnitPrice, item.DiscountAmount, item.TotalPrice,
			item.HistoricalCostPrice, item.ReturnedQuantity,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return apperror.NewStore(fmt.Errorf("insert sale items: %w", err))
	}

	return nil
}

// GetByID retrieves a sale header by ID.
func (r *SaleRepo) GetByID(ctx context.Context, saleID id.ID) (*sales.Sale, error) {
	q := r.builder.Select(saleColumns...).
		From(salesTable).
		Where(squirrel.Eq{"id": saleID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	return r.getSale(ctx, sql, args, saleID.String())
}

// GetForUpdate loads the sale header under a row lock. Reversal flows
// serialize here, so the terminal-state check cannot race.
func (r *SaleRepo) GetForUpdate(ctx context.Context, saleID id.ID) (*sales.Sale, error) {
	sql := `
		SELECT id, receipt_number,
		       subtotal, tax_amount, discount_amount, total_amount,
		       payment_method, card_amount, cash_amount, amount_paid, change_amount,
		       is_returned, canceled_at, notes,
		       created_at, updated_at
		FROM sales
		WHERE id = $1
		FOR UPDATE
	`

	return r.getSale(ctx, sql, []any{saleID}, saleID.String())
}

// GetByReceiptNumber retrieves a sale header by receipt number.
func (r *SaleRepo) GetByReceiptNumber(ctx context.Context, receiptNumber string) (*sales.Sale, error) {
	q := r.builder.Select(saleColumns...).
		From(salesTable).
		Where(squirrel.Eq{"receipt_number": receiptNumber}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	return r.getSale(ctx, sql, args, receiptNumber)
}

func (r *SaleRepo) getSale(ctx context.Context, sql string, args []any, key string) (*sales.Sale, error) {
	var sale sales.Sale
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &sale, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("sale", key)
		}
		return nil, apperror.NewStore(fmt.Errorf("get sale: %w", err))
	}
	return &sale, nil
}

// GetItems retrieves the receipt lines of a sale.
func (r *SaleRepo) GetItems(ctx context.Context, saleID id.ID) ([]sales.SaleItem, error) {
	q := r.builder.Select(saleItemColumns...).
		From(saleItemsTable).
		Where(squirrel.Eq{"sale_id": saleID}).
		OrderBy("id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []sales.SaleItem
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, apperror.NewStore(fmt.Errorf("select sale items: %w", err))
	}

	return items, nil
}

// MarkReversed persists the terminal state. Financial totals are never
// part of this update.
func (r *SaleRepo) MarkReversed(ctx context.Context, sale *sales.Sale) error {
	q := r.builder.Update(salesTable).
		Set("is_returned", sale.IsReturned).
		Set("canceled_at", sale.CanceledAt).
		Set("notes", sale.Notes).
		Set("updated_at", sale.UpdatedAt).
		Where(squirrel.Eq{"id": sale.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewStore(fmt.Errorf("mark sale reversed: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("sale", sale.ID.String())
	}

	return nil
}

// AddReturnedQuantity bumps the cumulative returned count of a line.
// The column CHECK caps it at the sold quantity, so an over-count that
// slipped past the service would still fail here.
func (r *SaleRepo) AddReturnedQuantity(ctx context.Context, itemID id.ID, quantity int64) error {
	sql := `
		UPDATE sale_items
		SET returned_quantity = returned_quantity + $2
		WHERE id = $1
	`

	querier := r.txm.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, itemID, quantity)
	if err != nil {
		if IsCheckViolation(err) {
			return apperror.NewConflict("returned quantity exceeds sold quantity").
				WithDetail("saleItemId", itemID.String())
		}
		return apperror.NewStore(fmt.Errorf("add returned quantity: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("sale item", itemID.String())
	}

	return nil
}

// List retrieves sales with filtering and pagination.
func (r *SaleRepo) List(ctx context.Context, filter sales.ListFilter) (domain.ListResult[*sales.Sale], error) {
	result := domain.ListResult[*sales.Sale]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	base := r.builder.Select().From(salesTable)
	base = r.applySaleFilter(base, filter)

	countSQL, countArgs, err := base.Column("COUNT(*)").ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, apperror.NewStore(fmt.Errorf("count sales: %w", err))
	}

	q := r.builder.Select(saleColumns...).From(salesTable)
	q = r.applySaleFilter(q, filter)

	orderBy, err := parseOrderBy(filter.OrderBy, saleColumns, "created_at DESC")
	if err != nil {
		return result, err
	}
	q = q.OrderBy(orderBy)

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, apperror.NewStore(fmt.Errorf("select sales: %w", err))
	}

	return result, nil
}

func (r *SaleRepo) applySaleFilter(q squirrel.SelectBuilder, filter sales.ListFilter) squirrel.SelectBuilder {
	if filter.ReceiptNumber != "" {
		q = q.Where(squirrel.Eq{"receipt_number": filter.ReceiptNumber})
	}
	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"receipt_number": "%" + filter.Search + "%"})
	}
	if len(filter.IDs) > 0 {
		q = q.Where(squirrel.Eq{"id": filter.IDs})
	}
	if filter.IsReturned != nil {
		q = q.Where(squirrel.Eq{"is_returned": *filter.IsReturned})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *filter.DateTo})
	}
	return q
}

var _ sales.Repository = (*SaleRepo)(nil)
