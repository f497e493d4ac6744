package httpserver

import (
	"time"

	"storefront-checkout/internal/domain"
)

type ctCheckout struct {
	Type            string          `json:"type"`
	Token           string          `json:"token"`
	CartRef         *ctRef          `json:"cart,omitempty"`
	Email           string          `json:"email,omitempty"`
	Currency        string          `json:"currency"`
	LineItems       []ctLineItem    `json:"lineItems"`
	GiftCards       []ctGiftCard    `json:"giftCards"`
	Attributes      []ctAttribute   `json:"customAttributes"`
	Note            string          `json:"note,omitempty"`
	TaxesIncluded   *bool           `json:"taxesIncluded"`
	ShippingAddress *domain.Address `json:"shippingAddress,omitempty"`
	BillingAddress  *domain.Address `json:"billingAddress,omitempty"`
	SubtotalPrice   ctPriceValue    `json:"subtotalPrice"`
	PaymentDue      ctPriceValue    `json:"paymentDue"`
	CreatedAt       time.Time       `json:"createdAt"`
	LastModifiedAt  time.Time       `json:"lastModifiedAt"`
}

// ctGiftCard never carries the full code; shoppers see the last characters only.
type ctGiftCard struct {
	ID             int64         `json:"id"`
	LastCharacters string        `json:"lastCharacters"`
	Balance        *ctPriceValue `json:"balance"`
	AmountUsed     ctPriceValue  `json:"amountUsed"`
}

type ctAttribute struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

func toCTCheckout(co *domain.Checkout) ctCheckout {
	snap := co.Snapshot()
	out := ctCheckout{
		Type:            "Checkout",
		Token:           snap.Token,
		Email:           snap.Email,
		Currency:        snap.Currency,
		LineItems:       toCTLineItems(snap.LineItems, snap.Currency),
		GiftCards:       make([]ctGiftCard, 0, len(snap.GiftCards)),
		Attributes:      make([]ctAttribute, 0, len(snap.Attributes)),
		Note:            co.Note(),
		TaxesIncluded:   snap.TaxesIncluded.Bool(),
		ShippingAddress: snap.ShippingAddress,
		BillingAddress:  snap.BillingAddress,
		SubtotalPrice:   toCTMoney(snap.SubtotalPrice, snap.Currency),
		PaymentDue:      toCTMoney(snap.PaymentDue, snap.Currency),
		CreatedAt:       snap.CreatedAt,
		LastModifiedAt:  snap.UpdatedAt,
	}
	if snap.CartID != "" {
		out.CartRef = &ctRef{TypeID: "cart", ID: snap.CartID}
	}
	for _, gc := range snap.GiftCards {
		out.GiftCards = append(out.GiftCards, toCTGiftCard(gc, snap.Currency))
	}
	for _, a := range snap.Attributes {
		out.Attributes = append(out.Attributes, ctAttribute{Name: a.Name, Value: a.Value})
	}
	return out
}

func toCTGiftCard(gc domain.GiftCard, currency string) ctGiftCard {
	out := ctGiftCard{
		ID:             gc.ID,
		LastCharacters: gc.LastCharacters,
		AmountUsed:     toCTMoney(gc.AmountUsed, currency),
	}
	if gc.Balance.Valid {
		balance := toCTMoney(gc.Balance.Decimal, currency)
		out.Balance = &balance
	}
	return out
}
