package dto

import (
	"tillbook/internal/domain/stock"
)

// AdjustStockRequest is the payload for a general stock adjustment on a
// product. Sale-related types are rejected by the service.
type AdjustStockRequest struct {
	QuantityChange int64  `json:"quantityChange" binding:"required"`
	AdjustmentType string `json:"adjustmentType" binding:"required"`
	Reason         string `json:"reason"`
	Reference      string `json:"reference"`
}

// Type returns the typed adjustment kind.
func (r AdjustStockRequest) Type() stock.AdjustmentType {
	return stock.AdjustmentType(r.AdjustmentType)
}
