package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cartOf(t *testing.T, lines ...LineItem) *Cart {
	t.Helper()
	cart := NewCart("USD")
	for _, li := range lines {
		require.NoError(t, cart.AddLineItem(li))
	}
	return cart
}

func line(variantID string, qty int) LineItem {
	return LineItem{VariantID: variantID, Price: decimal.RequireFromString("10.00"), Quantity: qty}
}

func TestCheckoutUpdateWithCartIsIdempotent(t *testing.T) {
	m := NewModelManager("USD")
	cart := cartOf(t, line("a", 2), line("b", 1))
	co := m.Checkout()

	require.NoError(t, co.UpdateWithCart(cart))
	first := co.LineItems()
	require.NoError(t, co.UpdateWithCart(cart))
	assert.Equal(t, first, co.LineItems())
	assert.True(t, co.Changes().LineItems)
}

func TestCheckoutUpdateWithCartReplaces(t *testing.T) {
	m := NewModelManager("USD")
	co, err := m.CheckoutWithCart(cartOf(t, line("a", 2)))
	require.NoError(t, err)

	require.NoError(t, co.UpdateWithCart(cartOf(t, line("b", 1))))
	assert.Equal(t, []LineItem{line("b", 1)}, co.LineItems())
}

func TestCheckoutUpdateWithEmptyCart(t *testing.T) {
	m := NewModelManager("USD")
	co, err := m.CheckoutWithCart(cartOf(t, line("a", 2)))
	require.NoError(t, err)
	co.MarkClean()

	require.NoError(t, co.UpdateWithCart(NewCart("USD")))
	assert.Empty(t, co.LineItems())
	assert.True(t, co.Changes().LineItems)
}

func TestCheckoutUpdateWithNilCart(t *testing.T) {
	co := NewModelManager("USD").Checkout()
	assert.ErrorIs(t, co.UpdateWithCart(nil), ErrInvalidArgument)
}

func TestCheckoutCopiesCart(t *testing.T) {
	m := NewModelManager("USD")
	cart := cartOf(t, line("a", 2))
	co, err := m.CheckoutWithCart(cart)
	require.NoError(t, err)

	require.NoError(t, cart.AddLineItem(line("b", 3)))
	require.NoError(t, cart.SetQuantity("a", 7))

	assert.Equal(t, []LineItem{line("a", 2)}, co.LineItems())
}

func TestCheckoutGiftCards(t *testing.T) {
	co := NewModelManager("USD").Checkout()
	require.NoError(t, co.AddGiftCard(GiftCard{ID: 7, Code: "AAAA7777"}))
	require.NoError(t, co.AddGiftCard(GiftCard{ID: 9, Code: "BBBB9999"}))

	gc, ok := co.GiftCardByID(7)
	require.True(t, ok)
	assert.Equal(t, int64(7), gc.ID)

	_, ok = co.GiftCardByID(42)
	assert.False(t, ok)

	assert.ErrorIs(t, co.AddGiftCard(GiftCard{ID: 7}), ErrAlreadyExists)
	assert.ErrorIs(t, co.AddGiftCard(GiftCard{}), ErrInvalidArgument)
	assert.Len(t, co.GiftCards(), 2)
}

func TestCheckoutRemoveUnknownGiftCard(t *testing.T) {
	co := NewModelManager("USD").Checkout()
	require.NoError(t, co.AddGiftCard(GiftCard{ID: 7}))
	co.MarkClean()
	before := co.GiftCards()

	assert.False(t, co.RemoveGiftCardByID(42))
	assert.Equal(t, before, co.GiftCards())
	assert.False(t, co.Changes().GiftCards)

	assert.True(t, co.RemoveGiftCardByID(7))
	assert.Empty(t, co.GiftCards())
	assert.True(t, co.Changes().GiftCards)
	assert.False(t, co.RemoveGiftCardByID(7))
}

func TestCheckoutPaymentDue(t *testing.T) {
	m := NewModelManager("USD")
	co, err := m.CheckoutWithCart(cartOf(t, line("a", 3)))
	require.NoError(t, err)
	require.NoError(t, co.AddGiftCard(GiftCard{ID: 1, AmountUsed: decimal.RequireFromString("12.50")}))

	assert.True(t, co.SubtotalPrice().Equal(decimal.RequireFromString("30.00")))
	assert.True(t, co.PaymentDue().Equal(decimal.RequireFromString("17.50")))

	require.NoError(t, co.AddGiftCard(GiftCard{ID: 2, AmountUsed: decimal.RequireFromString("50")}))
	assert.True(t, co.PaymentDue().IsZero())
}

func TestCheckoutAttributesDictionaryIsCopy(t *testing.T) {
	co := NewModelManager("USD").Checkout()
	require.NoError(t, co.SetAttribute("gift-wrap", true))
	co.SetNote("leave at the door")

	dict := co.AttributesDictionary()
	dict["gift-wrap"] = false
	dict["injected"] = "x"
	delete(dict, NoteAttributeKey)

	assert.Equal(t, map[string]any{"gift-wrap": true, NoteAttributeKey: "leave at the door"}, co.AttributesDictionary())
	assert.Equal(t, "leave at the door", co.Note())
}

func TestCheckoutSetAttribute(t *testing.T) {
	co := NewModelManager("USD").Checkout()
	require.NoError(t, co.SetAttribute("count", 2))
	require.NoError(t, co.SetAttribute("count", 3))
	v, ok := co.Attribute("count")
	require.True(t, ok)
	assert.Equal(t, 3, v)
	assert.Len(t, co.Attributes(), 1)

	assert.ErrorIs(t, co.SetAttribute("", "x"), ErrInvalidArgument)
	assert.ErrorIs(t, co.SetAttribute("nested", map[string]any{}), ErrInvalidArgument)
	assert.ErrorIs(t, co.SetAttribute("nil", nil), ErrInvalidArgument)

	assert.True(t, co.RemoveAttribute("count"))
	assert.False(t, co.RemoveAttribute("count"))
}

func TestCheckoutBlankNoteRemovesAttribute(t *testing.T) {
	co := NewModelManager("USD").Checkout()
	co.SetNote("hello")
	co.SetNote("   ")
	_, ok := co.Attribute(NoteAttributeKey)
	assert.False(t, ok)
	assert.Equal(t, "", co.Note())
}

func TestCheckoutTaxesIncludedDoesNotTouchLines(t *testing.T) {
	m := NewModelManager("USD")
	co, err := m.CheckoutWithCart(cartOf(t, line("a", 1)))
	require.NoError(t, err)
	before := co.LineItems()

	assert.Equal(t, TaxesUnknown, co.TaxesIncluded())
	co.SetTaxesIncluded(TaxesIncluded)
	assert.Equal(t, TaxesIncluded, co.TaxesIncluded())
	assert.Equal(t, before, co.LineItems())
}

func TestCheckoutTimestamps(t *testing.T) {
	co := NewModelManager("USD").Checkout()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, co.SetTimestamps(now, now.Add(time.Minute)))
	assert.Equal(t, now, co.CreatedAt())
	assert.ErrorIs(t, co.SetTimestamps(now, now.Add(-time.Second)), ErrInvalidArgument)
	assert.Equal(t, now.Add(time.Minute), co.UpdatedAt())
}

func TestCheckoutHasToken(t *testing.T) {
	co := NewModelManager("USD").Checkout()
	assert.False(t, co.HasToken())
	co.SetToken("tok")
	assert.True(t, co.HasToken())
	co.SetToken("")
	assert.False(t, co.HasToken())
}

func TestCheckoutAddressesAreCopied(t *testing.T) {
	co := NewModelManager("USD").Checkout()
	addr := &Address{Address1: "1 Main St", City: "Ottawa", CountryCode: "CA"}
	co.SetShippingAddress(addr)
	addr.City = "Toronto"

	got := co.ShippingAddress()
	require.NotNil(t, got)
	assert.Equal(t, "Ottawa", got.City)
	got.City = "Montreal"
	assert.Equal(t, "Ottawa", co.ShippingAddress().City)
	assert.Nil(t, co.BillingAddress())
}

func TestCheckoutAllocateGiftCards(t *testing.T) {
	m := NewModelManager("USD")
	co, err := m.CheckoutWithCart(cartOf(t, line("a", 3)))
	require.NoError(t, err)

	require.NoError(t, co.AddGiftCard(GiftCard{ID: 1, Balance: decimal.NewNullDecimal(decimal.RequireFromString("25.00"))}))
	require.NoError(t, co.AddGiftCard(GiftCard{ID: 2, Balance: decimal.NewNullDecimal(decimal.RequireFromString("50.00"))}))
	co.MarkClean()
	co.AllocateGiftCards()

	first, _ := co.GiftCardByID(1)
	second, _ := co.GiftCardByID(2)
	assert.True(t, first.AmountUsed.Equal(decimal.RequireFromString("25")))
	assert.True(t, second.AmountUsed.Equal(decimal.RequireFromString("5")))
	assert.True(t, co.PaymentDue().IsZero())
	assert.True(t, co.Changes().GiftCards)

	require.NoError(t, co.UpdateWithCart(cartOf(t, line("a", 1))))
	co.AllocateGiftCards()
	first, _ = co.GiftCardByID(1)
	second, _ = co.GiftCardByID(2)
	assert.True(t, first.AmountUsed.Equal(decimal.RequireFromString("10")))
	assert.True(t, second.AmountUsed.IsZero())
}

func TestCheckoutGiftCardAmountsMustBeStorable(t *testing.T) {
	co := NewModelManager("USD").Checkout()
	err := co.AddGiftCard(GiftCard{ID: 1, AmountUsed: decimal.RequireFromString("0.001")})
	require.ErrorIs(t, err, ErrInvalidArgument)
	err = co.AddGiftCard(GiftCard{ID: 2, Balance: decimal.NewNullDecimal(decimal.RequireFromString("5.125"))})
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.Empty(t, co.GiftCards())
	assert.False(t, co.Changes().GiftCards)
}
