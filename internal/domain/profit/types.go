// Package profit derives revenue, cost, profit and margin figures from
// completed sales. It is strictly read-only and sources cost from the
// historical_cost_price snapshots, never from live product cost.
package profit

import (
	"time"

	"tillbook/internal/core/id"
	"tillbook/internal/core/types"
)

// Filter scopes a profit query to a date range.
type Filter struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Summary holds aggregate figures for a period.
// Margin is profit/revenue, zero when there was no revenue.
type Summary struct {
	Revenue types.Money `db:"revenue" json:"revenue"`
	Cost    types.Money `db:"cost" json:"cost"`
	Profit  types.Money `db:"-" json:"profit"`
	Margin  types.Money `db:"-" json:"margin"`
}

// ProductRow is the per-product breakdown.
type ProductRow struct {
	ProductID    id.ID  `db:"product_id" json:"productId"`
	ProductName  string `db:"product_name" json:"productName"`
	QuantitySold int64  `db:"quantity_sold" json:"quantitySold"`
	Summary
}

// GroupRow is the per-category or per-supplier breakdown.
type GroupRow struct {
	Key string `db:"group_key" json:"key"`
	Summary
}

// DailyRow is the per-day breakdown.
type DailyRow struct {
	Day time.Time `db:"day" json:"day"`
	Summary
}

// derive fills Profit and Margin from Revenue and Cost.
func (s *Summary) derive() {
	s.Profit = s.Revenue.Sub(s.Cost)
	if s.Revenue.IsZero() {
		s.Margin = types.ZeroMoney()
		return
	}
	s.Margin = s.Profit.DivRound(s.Revenue, 4)
}
