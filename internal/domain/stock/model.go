// Package stock provides the stock ledger: the single write path that
// mutates product counters and appends adjustment facts in one unit of
// work.
package stock

import (
	"time"

	"tillbook/internal/core/id"
)

// AdjustmentType is the typed reason for a stock delta.
type AdjustmentType string

const (
	AdjustmentSale       AdjustmentType = "sale"
	AdjustmentSaleCancel AdjustmentType = "sale_cancel"
	AdjustmentSaleReturn AdjustmentType = "sale_return"
	AdjustmentPurchase   AdjustmentType = "purchase"
	AdjustmentLoss       AdjustmentType = "loss"
	AdjustmentCorrection AdjustmentType = "correction"
)

// Valid reports whether t is a known adjustment type.
func (t AdjustmentType) Valid() bool {
	switch t {
	case AdjustmentSale, AdjustmentSaleCancel, AdjustmentSaleReturn,
		AdjustmentPurchase, AdjustmentLoss, AdjustmentCorrection:
		return true
	}
	return false
}

// AllowsDeficit reports whether a negative delta of this type may drive
// the counter below zero. Corrections reconcile physical counts and so
// may record a deficit; everything else is bounded by available stock.
func (t AdjustmentType) AllowsDeficit() bool {
	return t == AdjustmentCorrection
}

// SaleRelated reports whether the type is written by the sale flow.
// These types are reserved: general-purpose adjustments cannot use them.
func (t AdjustmentType) SaleRelated() bool {
	return t == AdjustmentSale || t == AdjustmentSaleCancel || t == AdjustmentSaleReturn
}

// Adjustment is one immutable ledger fact. Rows are only ever inserted;
// there is no update or delete path.
type Adjustment struct {
	ID             id.ID          `db:"id" json:"id"`
	ProductID      id.ID          `db:"product_id" json:"productId"`
	QuantityChange int64          `db:"quantity_change" json:"quantityChange"`
	Type           AdjustmentType `db:"adjustment_type" json:"adjustmentType"`
	Reason         string         `db:"reason" json:"reason,omitempty"`

	// Reference links the fact back to its origin, e.g. a receipt number.
	Reference string `db:"reference" json:"reference,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewAdjustment creates a ledger fact with a generated ID.
func NewAdjustment(productID id.ID, change int64, typ AdjustmentType, reason, reference string) Adjustment {
	return Adjustment{
		ID:             id.New(),
		ProductID:      productID,
		QuantityChange: change,
		Type:           typ,
		Reason:         reason,
		Reference:      reference,
		CreatedAt:      time.Now().UTC(),
	}
}

// LedgerCheck is the result of reconciling a product counter against
// the ledger.
type LedgerCheck struct {
	ProductID     id.ID `json:"productId"`
	StockQuantity int64 `json:"stockQuantity"`
	InitialStock  int64 `json:"initialStock"`
	LedgerSum     int64 `json:"ledgerSum"`
	Consistent    bool  `json:"consistent"`
}
