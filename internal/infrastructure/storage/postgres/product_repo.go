package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tillbook/internal/core/apperror"
	"tillbook/internal/core/id"
	"tillbook/internal/domain"
	"tillbook/internal/domain/catalog/product"
)

const productsTable = "products"

var productColumns = []string{
	"id", "sku", "name", "category", "supplier",
	"cost_price", "selling_price",
	"stock_quantity", "initial_stock", "min_stock_threshold",
	"deleted_at", "created_at", "updated_at",
}

// ProductRepo implements product.Repository.
type ProductRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

// NewProductRepo creates a new product repository.
func NewProductRepo(txm *TxManager) *ProductRepo {
	return &ProductRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new product.
func (r *ProductRepo) Create(ctx context.Context, p *product.Product) error {
	q := r.builder.Insert(productsTable).
		Columns(productColumns...).
		Values(
			p.ID, p.SKU, p.Name, p.Category, p.Supplier,
			p.CostPrice, p.SellingPrice,
			p.StockQuantity, p.InitialStock, p.MinStockThreshold,
			p.DeletedAt, p.CreatedAt, p.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		if IsUniqueViolation(err, "products_sku_key") {
			return apperror.NewConflict(fmt.Sprintf("product with sku %q already exists", p.SKU)).
				WithDetail("sku", p.SKU)
		}
		return apperror.NewStore(fmt.Errorf("insert product: %w", err))
	}

	return nil
}

// GetByID retrieves a product by ID, soft-deleted rows included so
// historical receipts keep resolving their product.
func (r *ProductRepo) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	q := r.builder.Select(productColumns...).
		From(productsTable).
		Where(squirrel.Eq{"id": productID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p product.Product
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("product", productID.String())
		}
		return nil, apperror.NewStore(fmt.Errorf("get product: %w", err))
	}

	return &p, nil
}

// GetBySKU retrieves an active product by SKU.
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*product.Product, error) {
	q := r.builder.Select(productColumns...).
		From(productsTable).
		Where(squirrel.Eq{"sku": sku}).
		Where(squirrel.Eq{"deleted_at": nil}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p product.Product
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("product", sku)
		}
		return nil, apperror.NewStore(fmt.Errorf("get product by sku: %w", err))
	}

	return &p, nil
}

// Update persists catalog fields. stock_quantity and initial_stock are
// deliberately absent: the only write path for the counter is ApplyDelta.
func (r *ProductRepo) Update(ctx context.Context, p *product.Product) error {
	q := r.builder.Update(productsTable).
		Set("sku", p.SKU).
		Set("name", p.Name).
		Set("category", p.Category).
		Set("supplier", p.Supplier).
		Set("cost_price", p.CostPrice).
		Set("selling_price", p.SellingPrice).
		Set("min_stock_threshold", p.MinStockThreshold).
		Set("updated_at", p.UpdatedAt).
		Where(squirrel.Eq{"id": p.ID}).
		Where(squirrel.Eq{"deleted_at": nil})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		if IsUniqueViolation(err, "products_sku_key") {
			return apperror.NewConflict(fmt.Sprintf("product with sku %q already exists", p.SKU)).
				WithDetail("sku", p.SKU)
		}
		return apperror.NewStore(fmt.Errorf("update product: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("product", p.ID.String())
	}

	return nil
}

// SoftDelete marks a product deleted. Already-deleted rows are left
// untouched so the operation is idempotent.
func (r *ProductRepo) SoftDelete(ctx context.Context, productID id.ID, at time.Time) error {
	q := r.builder.Update(productsTable).
		Set("deleted_at", at).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": productID}).
		Where(squirrel.Eq{"deleted_at": nil})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return apperror.NewStore(fmt.Errorf("soft delete product: %w", err))
	}

	return nil
}

// List retrieves products with filtering and pagination.
func (r *ProductRepo) List(ctx context.Context, filter product.ListFilter) (domain.ListResult[*product.Product], error) {
	result := domain.ListResult[*product.Product]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	base := r.builder.Select().From(productsTable)
	base = r.applyProductFilter(base, filter)

	countSQL, countArgs, err := base.Column("COUNT(*)").ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, apperror.NewStore(fmt.Errorf("count products: %w", err))
	}

	q := r.builder.Select(productColumns...).From(productsTable)
	q = r.applyProductFilter(q, filter)

	orderBy, err := parseOrderBy(filter.OrderBy, productColumns, "name ASC")
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
		return result, apperror.NewStore(fmt.Errorf("select products: %w", err))
	}

	return result, nil
}

func (r *ProductRepo) applyProductFilter(q squirrel.SelectBuilder, filter product.ListFilter) squirrel.SelectBuilder {
	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deleted_at": nil})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"sku": pattern},
		})
	}
	if len(filter.IDs) > 0 {
		q = q.Where(squirrel.Eq{"id": filter.IDs})
	}
	if filter.Category != "" {
		q = q.Where(squirrel.Eq{"category": filter.Category})
	}
	if filter.Supplier != "" {
		q = q.Where(squirrel.Eq{"supplier": filter.Supplier})
	}
	return q
}

// ListLowStock returns active products at or below their threshold.
func (r *ProductRepo) ListLowStock(ctx context.Context) ([]*product.Product, error) {
	q := r.builder.Select(productColumns...).
		From(productsTable).
		Where(squirrel.Eq{"deleted_at": nil}).
		Where("stock_quantity <= min_stock_threshold").
		OrderBy("stock_quantity", "name")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var products []*product.Product
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &products, sql, args...); err != nil {
		return nil, apperror.NewStore(fmt.Errorf("select low stock: %w", err))
	}

	return products, nil
}

var _ product.Repository = (*ProductRepo)(nil)
