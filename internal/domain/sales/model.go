// Package sales provides the sale transaction: creation, full
// cancellation and partial return of receipts, each as one atomic unit
// of work against the stock ledger.
package sales

import (
	"context"
	"fmt"
	"time"

	"tillbook/internal/core/apperror"
	"tillbook/internal/core/id"
	"tillbook/internal/core/types"
)

// PaymentMethod enumerates accepted tender types.
type PaymentMethod string

const (
	PaymentCash          PaymentMethod = "cash"
	PaymentCard          PaymentMethod = "card"
	PaymentBankTransfer  PaymentMethod = "bank_transfer"
	PaymentCheck         PaymentMethod = "check"
	PaymentMobilePayment PaymentMethod = "mobile_payment"
	PaymentSplit         PaymentMethod = "split"
	PaymentOther         PaymentMethod = "other"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentBankTransfer, PaymentCheck,
		PaymentMobilePayment, PaymentSplit, PaymentOther:
		return true
	}
	return false
}

// Sale is a completed receipt. Financial totals are fixed at creation;
// once IsReturned is set the row is terminal and only the notes audit
// trail may still grow.
type Sale struct {
	ID            id.ID  `db:"id" json:"id"`
	ReceiptNumber string `db:"receipt_number" json:"receiptNumber"`

	Subtotal       types.Money `db:"subtotal" json:"subtotal"`
	TaxAmount      types.Money `db:"tax_amount" json:"taxAmount"`
	DiscountAmount types.Money `db:"discount_amount" json:"discountAmount"`
	TotalAmount    types.Money `db:"total_amount" json:"totalAmount"`

	PaymentMethod PaymentMethod `db:"payment_method" json:"paymentMethod"`
	CardAmount    types.Money   `db:"card_amount" json:"cardAmount"`
	CashAmount    types.Money   `db:"cash_amount" json:"cashAmount"`
	AmountPaid    types.Money   `db:"amount_paid" json:"amountPaid"`
	ChangeAmount  types.Money   `db:"change_amount" json:"changeAmount"`

	IsReturned bool       `db:"is_returned" json:"isReturned"`
	CanceledAt *time.Time `db:"canceled_at" json:"canceledAt,omitempty"`

	// Notes is an append-only audit trail; reversal markers are added,
	// existing text is never overwritten.
	Notes string `db:"notes" json:"notes,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`

	Items []SaleItem `db:"-" json:"items"`
}

// SaleItem is one receipt line. HistoricalCostPrice is the product cost
// copied at sale time and immutable afterwards; it is what keeps profit
// reporting stable under later cost changes.
type SaleItem struct {
	ID        id.ID `db:"id" json:"id"`
	SaleID    id.ID `db:"sale_id" json:"saleId"`
	ProductID id.ID `db:"product_id" json:"productId"`

	Quantity       int64       `db:"quantity" json:"quantity"`
	UnitPrice      types.Money `db:"unit_price" json:"unitPrice"`
	DiscountAmount types.Money `db:"discount_amount" json:"discountAmount"`
	TotalPrice     types.Money `db:"total_price" json:"totalPrice"`

	HistoricalCostPrice types.Money `db:"historical_cost_price" json:"historicalCostPrice"`

	// ReturnedQuantity tracks cumulative returns and caps further ones.
	ReturnedQuantity int64 `db:"returned_quantity" json:"returnedQuantity"`
}

// RemainingQuantity is the not-yet-returned part of the line.
func (i *SaleItem) RemainingQuantity() int64 {
	return i.Quantity - i.ReturnedQuantity
}

// NewSale creates an empty sale with a generated ID.
func NewSale(receiptNumber string, method PaymentMethod) *Sale {
	now := time.Now().UTC()
	return &Sale{
		ID:            id.New(),
		ReceiptNumber: receiptNumber,
		PaymentMethod: method,
		Subtotal:      types.ZeroMoney(),
		TaxAmount:     types.ZeroMoney(),
		DiscountAmount: types.ZeroMoney(),
		TotalAmount:   types.ZeroMoney(),
		CardAmount:    types.ZeroMoney(),
		CashAmount:    types.ZeroMoney(),
		AmountPaid:    types.ZeroMoney(),
		ChangeAmount:  types.ZeroMoney(),
		CreatedAt:     now,
		UpdatedAt:     now,
		Items:         make([]SaleItem, 0),
	}
}

// AddItem appends a line and recalculates totals.
// Line total = unit price * quantity - line discount.
func (s *Sale) AddItem(productID id.ID, quantity int64, unitPrice, discount types.Money) {
	gross := unitPrice.Mul(types.NewMoneyFromInt(quantity))
	item := SaleItem{
		ID:             id.New(),
		SaleID:         s.ID,
		ProductID:      productID,
		Quantity:       quantity,
		UnitPrice:      unitPrice,
		DiscountAmount: discount,
		TotalPrice:     types.RoundMoney(gross.Sub(discount)),
	}
	s.Items = append(s.Items, item)
	s.recalculateTotals()
}

// SetTax sets the header tax amount and recalculates totals.
func (s *Sale) SetTax(tax types.Money) {
	s.TaxAmount = tax
	s.recalculateTotals()
}

// SetPayment records how the sale was paid and derives the change.
func (s *Sale) SetPayment(amountPaid, cardAmount, cashAmount types.Money) {
	s.AmountPaid = amountPaid
	s.CardAmount = cardAmount
	s.CashAmount = cashAmount

	change := amountPaid.Sub(s.TotalAmount)
	if change.IsNegative() {
		change = types.ZeroMoney()
	}
	s.ChangeAmount = types.RoundMoney(change)
}

// recalculateTotals enforces total = subtotal + tax - discount.
// The subtotal is the gross of all lines; line discounts roll up into
// the sale discount.
func (s *Sale) recalculateTotals() {
	subtotal := types.ZeroMoney()
	discount := types.ZeroMoney()
	for _, item := range s.Items {
		subtotal = subtotal.Add(item.UnitPrice.Mul(types.NewMoneyFromInt(item.Quantity)))
		discount = discount.Add(item.DiscountAmount)
	}
	s.Subtotal = types.RoundMoney(subtotal)
	s.DiscountAmount = types.RoundMoney(discount)
	s.TotalAmount = types.RoundMoney(s.Subtotal.Add(s.TaxAmount).Sub(s.DiscountAmount))
}

// Validate checks the sale before it is persisted.
func (s *Sale) Validate(ctx context.Context) error {
	if !s.PaymentMethod.Valid() {
		return apperror.NewValidation(fmt.Sprintf("unknown payment method %q", s.PaymentMethod)).
			WithDetail("field", "paymentMethod")
	}

	if len(s.Items) == 0 {
		return apperror.NewValidation("at least one item is required").
			WithDetail("field", "items")
	}

	for i, item := range s.Items {
		if id.IsNil(item.ProductID) {
			return apperror.NewValidation("product is required").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
		if item.Quantity <= 0 {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
		if item.UnitPrice.IsNegative() {
			return apperror.NewValidation("unit price must not be negative").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
		if item.DiscountAmount.IsNegative() {
			return apperror.NewValidation("discount must not be negative").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
	}

	expected := s.Subtotal.Add(s.TaxAmount).Sub(s.DiscountAmount)
	if !s.TotalAmount.Equal(types.RoundMoney(expected)) {
		return apperror.NewValidation("total must equal subtotal + tax - discount").
			WithDetail("field", "totalAmount")
	}

	if s.PaymentMethod == PaymentSplit {
		split := s.CardAmount.Add(s.CashAmount)
		if !split.Equal(s.AmountPaid) {
			return apperror.NewValidation("card and cash amounts must add up to amount paid").
				WithDetail("field", "paymentMethod")
		}
	}

	return nil
}

// FullyReturned reports whether every line has been returned in full.
func (s *Sale) FullyReturned() bool {
	for _, item := range s.Items {
		if item.RemainingQuantity() > 0 {
			return false
		}
	}
	return len(s.Items) > 0
}

// MarkReversed flips the sale into its terminal state and appends an
// audit marker to the notes trail.
func (s *Sale) MarkReversed(at time.Time, marker string) {
	s.IsReturned = true
	s.CanceledAt = &at
	note := fmt.Sprintf("[%s] %s", at.Format(time.RFC3339), marker)
	if s.Notes == "" {
		s.Notes = note
	} else {
		s.Notes = s.Notes + "\n" + note
	}
	s.UpdatedAt = at
}
