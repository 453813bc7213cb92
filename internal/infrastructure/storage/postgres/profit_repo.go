package postgres

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"tillbook/internal/core/apperror"
	"tillbook/internal/domain/profit"
)

// ProfitRepo implements profit.Repository. Every query reads only
// non-returned sales in the range; cost always comes from the
// historical_cost_price snapshot on the line, never the live product
// cost, so old reports are immune to later price changes.
type ProfitRepo struct {
	txm *TxManager
}

// NewProfitRepo creates a new profit report repository.
func NewProfitRepo(txm *TxManager) *ProfitRepo {
	return &ProfitRepo{txm: txm}
}

const profitBaseJoin = `
	FROM sale_items si
	JOIN sales s ON s.id = si.sale_id
	WHERE s.is_returned = false
	  AND s.created_at >= $1
	  AND s.created_at <= $2
`

// GetSummary returns aggregate revenue and cost for a range.
func (r *ProfitRepo) GetSummary(ctx context.Context, filter profit.Filter) (profit.Summary, error) {
	sql := `
		SELECT
			COALESCE(SUM(si.total_price), 0) AS revenue,
			COALESCE(SUM(si.historical_cost_price * si.quantity), 0) AS cost
	` + profitBaseJoin

	var summary profit.Summary
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &summary, sql, filter.From, filter.To); err != nil {
		return summary, apperror.NewStore(fmt.Errorf("profit summary: %w", err))
	}

	return summary, nil
}

// GetByProduct returns the per-product breakdown, highest revenue first.
func (r *ProfitRepo) GetByProduct(ctx context.Context, filter profit.Filter) ([]profit.ProductRow, error) {
	// The JOIN to products resolves the display name; soft-deleted
	// products still join because rows are never removed physically.
	sql := `
		SELECT
			si.product_id,
			p.name AS product_name,
			SUM(si.quantity) AS quantity_sold,
			COALESCE(SUM(si.total_price), 0) AS revenue,
			COALESCE(SUM(si.historical_cost_price * si.quantity), 0) AS cost
		FROM sale_items si
		JOIN sales s ON s.id = si.sale_id
		JOIN products p ON p.id = si.product_id
		WHERE s.is_returned = false
		  AND s.created_at >= $1
		  AND s.created_at <= $2
		GROUP BY si.product_id, p.name
		ORDER BY revenue DESC
	`

	var rows []profit.ProductRow
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, filter.From, filter.To); err != nil {
		return nil, apperror.NewStore(fmt.Errorf("profit by product: %w", err))
	}

	return rows, nil
}

// GetByCategory returns the per-category breakdown.
func (r *ProfitRepo) GetByCategory(ctx context.Context, filter profit.Filter) ([]profit.GroupRow, error) {
	return r.getGrouped(ctx, filter, "p.category")
}

// GetBySupplier returns the per-supplier breakdown.
func (r *ProfitRepo) GetBySupplier(ctx context.Context, filter profit.Filter) ([]profit.GroupRow, error) {
	return r.getGrouped(ctx, filter, "p.supplier")
}

func (r *ProfitRepo) getGrouped(ctx context.Context, filter profit.Filter, groupColumn string) ([]profit.GroupRow, error) {
	sql := fmt.Sprintf(`
		SELECT
			COALESCE(NULLIF(%s, ''), 'uncategorized') AS group_key,
			COALESCE(SUM(si.total_price), 0) AS revenue,
			COALESCE(SUM(si.historical_cost_price * si.quantity), 0) AS cost
		FROM sale_items si
		JOIN sales s ON s.id = si.sale_id
		JOIN products p ON p.id = si.product_id
		WHERE s.is_returned = false
		  AND s.created_at >= $1
		  AND s.created_at <= $2
		GROUP BY group_key
		ORDER BY revenue DESC
	`, groupColumn)

	var rows []profit.GroupRow
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, filter.From, filter.To); err != nil {
		return nil, apperror.NewStore(fmt.Errorf("profit by %s: %w", groupColumn, err))
	}

	return rows, nil
}

// GetByDay returns the per-day breakdown, oldest first.
func (r *ProfitRepo) GetByDay(ctx context.Context, filter profit.Filter) ([]profit.DailyRow, error) {
	sql := `
		SELECT
			date_trunc('day', s.created_at) AS day,
			COALESCE(SUM(si.total_price), 0) AS revenue,
			COALESCE(SUM(si.historical_cost_price * si.quantity), 0) AS cost
		FROM sale_items si
		JOIN sales s ON s.id = si.sale_id
		WHERE s.is_returned = false
		  AND s.created_at >= $1
		  AND s.created_at <= $2
		GROUP BY day
		ORDER BY day
	`

	var rows []profit.DailyRow
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, filter.From, filter.To); err != nil {
		return nil, apperror.NewStore(fmt.Errorf("profit by day: %w", err))
	}

	return rows, nil
}

var _ profit.Repository = (*ProfitRepo)(nil)
