package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelManagerCheckout(t *testing.T) {
	co := NewModelManager("usd").Checkout()
	assert.Empty(t, co.LineItems())
	assert.False(t, co.HasToken())
	assert.Equal(t, "USD", co.Currency())
	assert.False(t, co.Changes().Any())
}

func TestModelManagerCheckoutWithCart(t *testing.T) {
	m := NewModelManager("USD")
	cart := NewCart("EUR")
	cart.ID = "cart-1"
	require.NoError(t, cart.AddLineItem(line("a", 2)))

	co, err := m.CheckoutWithCart(cart)
	require.NoError(t, err)
	assert.Equal(t, []LineItem{line("a", 2)}, co.LineItems())
	assert.False(t, co.HasToken())
	assert.Equal(t, "EUR", co.Currency())
	assert.Equal(t, "cart-1", co.CartID())

	_, err = m.CheckoutWithCart(nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestModelManagerCheckoutWithVariant(t *testing.T) {
	m := NewModelManager("USD")
	v := variant("a", "4.25")
	co, err := m.CheckoutWithVariant(v)
	require.NoError(t, err)

	items := co.LineItems()
	require.Len(t, items, 1)
	assert.Equal(t, "a", items[0].VariantID)
	assert.Equal(t, 1, items[0].Quantity)
	assert.True(t, items[0].Price.Equal(v.Price))

	_, err = m.CheckoutWithVariant(ProductVariant{})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestModelManagerCheckoutWithCartToken(t *testing.T) {
	m := NewModelManager("USD")
	co, err := m.CheckoutWithCartToken("abc")
	require.NoError(t, err)
	assert.True(t, co.HasToken())
	assert.Equal(t, "abc", co.Token())
	assert.Empty(t, co.LineItems())
	assert.Empty(t, co.GiftCards())

	_, err = m.CheckoutWithCartToken("  ")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestModelManagerRestoreCheckout(t *testing.T) {
	m := NewModelManager("USD")
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	co, err := m.CheckoutWithCart(cartOf(t, line("a", 2)))
	require.NoError(t, err)
	co.SetToken("tok-1")
	co.SetEmail("shopper@example.com")
	co.SetNote("ring twice")
	co.SetTaxesIncluded(TaxesExcluded)
	require.NoError(t, co.AddGiftCard(GiftCard{ID: 5, LastCharacters: "1234", Balance: decimal.NewNullDecimal(decimal.NewFromInt(20)), AmountUsed: decimal.NewFromInt(20)}))
	require.NoError(t, co.SetTimestamps(created, created.Add(time.Hour)))
	require.NoError(t, co.SetVersion(7))

	raw, err := json.Marshal(co.Snapshot())
	require.NoError(t, err)
	var snap CheckoutSnapshot
	require.NoError(t, json.Unmarshal(raw, &snap))

	restored, err := m.RestoreCheckout(snap)
	require.NoError(t, err)
	assert.False(t, restored.Changes().Any())
	assert.Equal(t, "tok-1", restored.Token())
	assert.Equal(t, "shopper@example.com", restored.Email())
	assert.Equal(t, "ring twice", restored.Note())
	assert.Equal(t, TaxesExcluded, restored.TaxesIncluded())
	assert.Equal(t, created, restored.CreatedAt())
	assert.Equal(t, int64(7), restored.Version())
	require.Len(t, restored.LineItems(), 1)
	assert.Equal(t, 2, restored.LineItems()[0].Quantity)
	gc, ok := restored.GiftCardByID(5)
	require.True(t, ok)
	assert.True(t, gc.Resolved())
	assert.True(t, restored.PaymentDue().IsZero())
}

func TestModelManagerRestoreRequiresToken(t *testing.T) {
	_, err := NewModelManager("USD").RestoreCheckout(CheckoutSnapshot{})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestModelManagerRestoreRejectsNegativeVersion(t *testing.T) {
	_, err := NewModelManager("USD").RestoreCheckout(CheckoutSnapshot{Token: "tok", Version: -1})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
