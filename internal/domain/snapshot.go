package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CheckoutSnapshot is the serialisable state of a Checkout exchanged with
// storage and caches. SubtotalPrice and PaymentDue are derived and ignored on restore.
type CheckoutSnapshot struct {
	Token           string          `json:"token,omitempty"`
	CartID          string          `json:"cartId,omitempty"`
	Currency        string          `json:"currency"`
	Email           string          `json:"email,omitempty"`
	LineItems       []LineItem      `json:"lineItems"`
	GiftCards       []GiftCard      `json:"giftCards"`
	Attributes      []Attribute     `json:"attributes"`
	TaxesIncluded   TaxInclusion    `json:"taxesIncluded"`
	ShippingAddress *Address        `json:"shippingAddress,omitempty"`
	BillingAddress  *Address        `json:"billingAddress,omitempty"`
	SubtotalPrice   decimal.Decimal `json:"subtotalPrice"`
	PaymentDue      decimal.Decimal `json:"paymentDue"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
	Version         int64           `json:"version"`
}

// Snapshot copies the checkout's state out.
func (c *Checkout) Snapshot() CheckoutSnapshot {
	return CheckoutSnapshot{
		Token:           c.token,
		CartID:          c.cartID,
		Currency:        c.currency,
		Email:           c.email,
		LineItems:       c.LineItems(),
		GiftCards:       c.GiftCards(),
		Attributes:      c.Attributes(),
		TaxesIncluded:   c.taxesIncluded,
		ShippingAddress: c.ShippingAddress(),
		BillingAddress:  c.BillingAddress(),
		SubtotalPrice:   c.SubtotalPrice(),
		PaymentDue:      c.PaymentDue(),
		CreatedAt:       c.createdAt,
		UpdatedAt:       c.updatedAt,
		Version:         c.version,
	}
}
