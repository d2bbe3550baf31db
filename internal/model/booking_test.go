package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMenuItemsRoundTripPreservesOrder(t *testing.T) {
	items := []MenuItem{
		{Name: "Salad", Quantity: 3, Price: 450},
		{Name: "Cake", Quantity: 1, Price: 2500},
		{Name: "Juice", Quantity: 10, Price: 120},
	}
	raw, err := EncodeMenuItems(items)
	require.NoError(t, err)

	decoded, err := DecodeMenuItems(raw)
	require.NoError(t, err)
	assert.Equal(t, items, decoded)
}

func TestDecodeMenuItemsEmpty(t *testing.T) {
	decoded, err := DecodeMenuItems("")
	require.NoError(t, err)
	assert.Empty(t, decoded)

	raw, err := EncodeMenuItems(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)
}

func TestValidPaymentStatus(t *testing.T) {
	for _, s := range []string{PaymentPending, PaymentPaid, PaymentCanceled, PaymentWaitingCapture} {
		assert.True(t, ValidPaymentStatus(s), s)
	}
	assert.False(t, ValidPaymentStatus("refunded"))
	assert.False(t, ValidPaymentStatus(""))
}
