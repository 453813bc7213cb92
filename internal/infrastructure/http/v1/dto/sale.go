package dto

import (
	"tillbook/internal/core/apperror"
	"tillbook/internal/core/id"
	"tillbook/internal/domain/sales"
)

// CreateSaleRequest is the payload for recording a sale.
type CreateSaleRequest struct {
	// ReceiptNumber is optional; empty means the server allocates one.
	ReceiptNumber string `json:"receiptNumber"`

	PaymentMethod string `json:"paymentMethod" binding:"required"`
	TaxAmount     string `json:"taxAmount"`
	AmountPaid    string `json:"amountPaid"`
	CardAmount    string `json:"cardAmount"`
	CashAmount    string `json:"cashAmount"`
	Notes         string `json:"notes"`

	Items []CreateSaleItemRequest `json:"items" binding:"required"`
}

// CreateSaleItemRequest is one requested receipt line.
type CreateSaleItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int64  `json:"quantity" binding:"required"`
	UnitPrice string `json:"unitPrice" binding:"required"`
	Discount  string `json:"discount"`
}

// ToInput converts the request into service input.
func (r CreateSaleRequest) ToInput() (sales.CreateSaleInput, error) {
	input := sales.CreateSaleInput{
		ReceiptNumber: r.ReceiptNumber,
		PaymentMethod: sales.PaymentMethod(r.PaymentMethod),
		Notes:         r.Notes,
	}

	var err error
	if input.TaxAmount, err = parseMoney(r.TaxAmount, "taxAmount"); err != nil {
		return input, err
	}
	if input.AmountPaid, err = parseMoney(r.AmountPaid, "amountPaid"); err != nil {
		return input, err
	}
	if input.CardAmount, err = parseMoney(r.CardAmount, "cardAmount"); err != nil {
		return input, err
	}
	if input.CashAmount, err = parseMoney(r.CashAmount, "cashAmount"); err != nil {
		return input, err
	}

	input.Items = make([]sales.CreateSaleItem, 0, len(r.Items))
	for i, line := range r.Items {
		productID, err := id.Parse(line.ProductID)
		if err != nil {
			return input, apperror.NewValidation("invalid product id").
				WithDetail("lineNo", i+1)
		}

		item := sales.CreateSaleItem{
			ProductID: productID,
			Quantity:  line.Quantity,
		}
		if item.UnitPrice, err = parseMoney(line.UnitPrice, "unitPrice"); err != nil {
			return input, err
		}
		if item.Discount, err = parseMoney(line.Discount, "discount"); err != nil {
			return input, err
		}
		input.Items = append(input.Items, item)
	}

	return input, nil
}

// ReturnRequest is the payload for a partial return.
type ReturnRequest struct {
	Lines []ReturnLineRequest `json:"lines" binding:"required"`
}

// ReturnLineRequest is one requested return line.
type ReturnLineRequest struct {
	SaleItemID string `json:"saleItemId" binding:"required"`
	Quantity   int64  `json:"quantity" binding:"required"`
}

// ToLines converts the request into service return lines.
func (r ReturnRequest) ToLines() ([]sales.ReturnLine, error) {
	lines := make([]sales.ReturnLine, 0, len(r.Lines))
	for i, line := range r.Lines {
		itemID, err := id.Parse(line.SaleItemID)
		if err != nil {
			return nil, apperror.NewValidation("invalid sale item id").
				WithDetail("lineNo", i+1)
		}
		lines = append(lines, sales.ReturnLine{
			SaleItemID: itemID,
			Quantity:   line.Quantity,
		})
	}
	return lines, nil
}
