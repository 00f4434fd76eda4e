package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lounge-pos-billing/internal/domain"
	"lounge-pos-billing/internal/money"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleCart() *Cart {
	return &Cart{Items: []LineItem{
		{ProductID: "cola", UnitPrice: money.New(d("1.25"), d("111875")), Quantity: 3},
		{ProductID: "chips", UnitPrice: money.New(d("0.75"), d("67125")), Quantity: 2},
		{ProductID: "card", UnitPrice: money.New(d("5.00"), d("447500")), Quantity: 1},
	}}
}

func TestSubtotal(t *testing.T) {
	sub, err := sampleCart().Subtotal()
	require.NoError(t, err)
	assert.True(t, sub.USD.Equal(d("10.25")))
	assert.True(t, sub.LBP.Equal(d("917375")))

	empty := &Cart{}
	sub, err = empty.Subtotal()
	require.NoError(t, err)
	assert.True(t, sub.IsZero())
}

func TestSubtotalInvalidQuantity(t *testing.T) {
	c := &Cart{Items: []LineItem{{ProductID: "cola", UnitPrice: money.New(d("1"), d("89500")), Quantity: 0}}}
	_, err := c.Subtotal()
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestCheckout(t *testing.T) {
	t.Run("No discount", func(t *testing.T) {
		co, err := sampleCart().Checkout(nil)
		require.NoError(t, err)
		assert.Nil(t, co.Discount)
		assert.True(t, co.Total.Equal(co.Subtotal))
	})

	t.Run("Sale discount", func(t *testing.T) {
		co, err := sampleCart().Checkout(&domain.Discount{ID: "vip", Value: d("10"), Target: domain.DiscountTargetSale})
		require.NoError(t, err)
		require.NotNil(t, co.Discount)
		assert.True(t, co.Discount.DiscountAmount.USD.Equal(d("1.03")))
		assert.True(t, co.Total.USD.Equal(d("9.22")))
		assert.True(t, co.Total.LBP.Equal(d("825637")))
	})
}
