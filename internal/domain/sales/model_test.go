package sales

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tillbook/internal/core/apperror"
	"tillbook/internal/core/id"
	"tillbook/internal/core/types"
)

func TestSaleTotals(t *testing.T) {
	sale := NewSale("RCP-2026-00001", PaymentCash)
	sale.AddItem(id.New(), 2, types.MustMoney("29.90"), types.MustMoney("5.00"))
	sale.AddItem(id.New(), 1, types.MustMoney("12.00"), types.ZeroMoney())
	sale.SetTax(types.MustMoney("3.50"))

	assert.True(t, sale.Subtotal.Equal(types.MustMoney("71.80")), "subtotal: %s", sale.Subtotal)
	assert.True(t, sale.DiscountAmount.Equal(types.MustMoney("5.00")))
	// total = subtotal + tax - discount
	assert.True(t, sale.TotalAmount.Equal(types.MustMoney("70.30")), "total: %s", sale.TotalAmount)

	// Line total is net of its own discount.
	assert.True(t, sale.Items[0].TotalPrice.Equal(types.MustMoney("54.80")))
}

func TestSaleChangeCalculation(t *testing.T) {
	sale := NewSale("RCP-2026-00002", PaymentCash)
	sale.AddItem(id.New(), 1, types.MustMoney("18.00"), types.ZeroMoney())

	sale.SetPayment(types.MustMoney("20.00"), types.ZeroMoney(), types.MustMoney("20.00"))
	assert.True(t, sale.ChangeAmount.Equal(types.MustMoney("2.00")))

	// Underpayment never yields negative change.
	sale.SetPayment(types.MustMoney("10.00"), types.ZeroMoney(), types.MustMoney("10.00"))
	assert.True(t, sale.ChangeAmount.IsZero())
}

func TestSaleValidate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid sale", func(t *testing.T) {
		sale := NewSale("RCP-1", PaymentCard)
		sale.AddItem(id.New(), 1, types.MustMoney("10.00"), types.ZeroMoney())
		require.NoError(t, sale.Validate(ctx))
	})

	t.Run("unknown payment method", func(t *testing.T) {
		sale := NewSale("RCP-2", PaymentMethod("barter"))
		sale.AddItem(id.New(), 1, types.MustMoney("10.00"), types.ZeroMoney())
		err := sale.Validate(ctx)
		assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
	})

	t.Run("no items", func(t *testing.T) {
		sale := NewSale("RCP-3", PaymentCash)
		err := sale.Validate(ctx)
		assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		sale := NewSale("RCP-4", PaymentCash)
		sale.AddItem(id.New(), 0, types.MustMoney("10.00"), types.ZeroMoney())
		err := sale.Validate(ctx)
		require.Error(t, err)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, 1, appErr.Details["lineNo"])
	})

	t.Run("tampered total", func(t *testing.T) {
		sale := NewSale("RCP-5", PaymentCash)
		sale.AddItem(id.New(), 1, types.MustMoney("10.00"), types.ZeroMoney())
		sale.TotalAmount = types.MustMoney("999.00")
		err := sale.Validate(ctx)
		assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
	})

	t.Run("split payment must reconcile", func(t *testing.T) {
		sale := NewSale("RCP-6", PaymentSplit)
		sale.AddItem(id.New(), 1, types.MustMoney("30.00"), types.ZeroMoney())
		sale.SetPayment(types.MustMoney("30.00"), types.MustMoney("20.00"), types.MustMoney("5.00"))
		err := sale.Validate(ctx)
		assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

		sale.SetPayment(types.MustMoney("30.00"), types.MustMoney("20.00"), types.MustMoney("10.00"))
		assert.NoError(t, sale.Validate(ctx))
	})
}

func TestSaleFullyReturned(t *testing.T) {
	sale := NewSale("RCP-7", PaymentCash)
	sale.AddItem(id.New(), 3, types.MustMoney("5.00"), types.ZeroMoney())
	sale.AddItem(id.New(), 1, types.MustMoney("8.00"), types.ZeroMoney())

	assert.False(t, sale.FullyReturned())

	sale.Items[0].ReturnedQuantity = 3
	assert.False(t, sale.FullyReturned())

	sale.Items[1].ReturnedQuantity = 1
	assert.True(t, sale.FullyReturned())
}

func TestMarkReversedAppendsNotes(t *testing.T) {
	sale := NewSale("RCP-8", PaymentCash)
	sale.Notes = "gift wrap requested"

	at := time.Date(2026, 3, 14, 15, 9, 0, 0, time.UTC)
	sale.MarkReversed(at, "sale canceled, stock restored")

	assert.True(t, sale.IsReturned)
	require.NotNil(t, sale.CanceledAt)
	assert.Equal(t, at, *sale.CanceledAt)
	assert.Contains(t, sale.Notes, "gift wrap requested")
	assert.Contains(t, sale.Notes, "[2026-03-14T15:09:00Z] sale canceled, stock restored")
}
