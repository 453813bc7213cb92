package sales

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tillbook/internal/core/apperror"
	"tillbook/internal/core/id"
	"tillbook/internal/core/types"
)

func TestPolicyDefaults(t *testing.T) {
	policy, err := NewPolicy(nil)
	require.NoError(t, err)

	sale := NewSale("RCP-1", PaymentCash)
	sale.AddItem(id.New(), 1, types.MustMoney("10.00"), types.MustMoney("2.00"))
	require.NoError(t, policy.Check(sale))

	// Discount above the subtotal violates a built-in rule.
	over := NewSale("RCP-2", PaymentCash)
	over.AddItem(id.New(), 1, types.MustMoney("10.00"), types.MustMoney("15.00"))
	err = policy.Check(over)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.Equal(t, "discount <= subtotal", appErr.Details["rule"])
}

func TestPolicyExtraRules(t *testing.T) {
	policy, err := NewPolicy([]string{"payment_method != 'check'"})
	require.NoError(t, err)

	sale := NewSale("RCP-3", PaymentCheck)
	sale.AddItem(id.New(), 1, types.MustMoney("10.00"), types.ZeroMoney())

	err = policy.Check(sale)
	require.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, "payment_method != 'check'", appErr.Details["rule"])

	sale.PaymentMethod = PaymentCash
	assert.NoError(t, policy.Check(sale))
}

func TestPolicyRejectsBadRules(t *testing.T) {
	_, err := NewPolicy([]string{"subtotal +"})
	assert.Error(t, err)

	_, err = NewPolicy([]string{"subtotal + 1.0"})
	assert.Error(t, err, "non-bool rules must be rejected at compile time")
}
