// Package dto defines the HTTP request and response shapes.
package dto

import (
	"tillbook/internal/core/apperror"
	"tillbook/internal/core/types"
	"tillbook/internal/domain/catalog/product"
)

// CreateProductRequest is the payload for adding a catalog product.
type CreateProductRequest struct {
	SKU               string `json:"sku" binding:"required"`
	Name              string `json:"name" binding:"required"`
	Category          string `json:"category"`
	Supplier          string `json:"supplier"`
	CostPrice         string `json:"costPrice"`
	SellingPrice      string `json:"sellingPrice"`
	StockQuantity     int64  `json:"stockQuantity"`
	MinStockThreshold int64  `json:"minStockThreshold"`
}

// ToEntity converts the request into a product entity.
func (r CreateProductRequest) ToEntity() (*product.Product, error) {
	p := product.NewProduct(r.SKU, r.Name)
	p.Category = r.Category
	p.Supplier = r.Supplier
	p.StockQuantity = r.StockQuantity
	p.MinStockThreshold = r.MinStockThreshold

	var err error
	if p.CostPrice, err = parseMoney(r.CostPrice, "costPrice"); err != nil {
		return nil, err
	}
	if p.SellingPrice, err = parseMoney(r.SellingPrice, "sellingPrice"); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateProductRequest is the payload for catalog updates. Stock fields
// are absent on purpose; stock moves only through adjustments.
type UpdateProductRequest struct {
	SKU               *string `json:"sku"`
	Name              *string `json:"name"`
	Category          *string `json:"category"`
	Supplier          *string `json:"supplier"`
	CostPrice         *string `json:"costPrice"`
	SellingPrice      *string `json:"sellingPrice"`
	MinStockThreshold *int64  `json:"minStockThreshold"`
}

// ApplyTo patches set fields onto an existing product.
func (r UpdateProductRequest) ApplyTo(p *product.Product) error {
	if r.SKU != nil {
		p.SKU = *r.SKU
	}
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Category != nil {
		p.Category = *r.Category
	}
	if r.Supplier != nil {
		p.Supplier = *r.Supplier
	}
	if r.MinStockThreshold != nil {
		p.MinStockThreshold = *r.MinStockThreshold
	}

	var err error
	if r.CostPrice != nil {
		if p.CostPrice, err = parseMoney(*r.CostPrice, "costPrice"); err != nil {
			return err
		}
	}
	if r.SellingPrice != nil {
		if p.SellingPrice, err = parseMoney(*r.SellingPrice, "sellingPrice"); err != nil {
			return err
		}
	}
	return nil
}

// ProductResponse is the wire shape of a product. The entity already
// carries json tags, so it is returned directly; this alias keeps the
// handler signatures uniform.
type ProductResponse = product.Product

// parseMoney parses a decimal string from the wire. Empty means zero so
// optional monetary fields can be omitted.
func parseMoney(value, field string) (types.Money, error) {
	if value == "" {
		return types.ZeroMoney(), nil
	}
	m, err := types.NewMoneyFromString(value)
	if err != nil {
		return types.ZeroMoney(), apperror.NewValidation("invalid decimal value").WithDetail("field", field)
	}
	return m, nil
}
