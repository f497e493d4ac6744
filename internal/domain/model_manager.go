package domain

import (
	"fmt"
	"strings"
)

// ModelManager is the single construction point for checkouts so every
// instance in a session shares the same defaults. It keeps no reference to the
// checkouts it builds and performs no I/O.
type ModelManager struct {
	currency string
}

// NewModelManager returns a manager whose checkouts default to currency.
func NewModelManager(currency string) *ModelManager {
	return &ModelManager{currency: strings.ToUpper(strings.TrimSpace(currency))}
}

// Currency is the default currency applied to new checkouts.
func (m *ModelManager) Currency() string { return m.currency }

// Checkout returns an empty checkout with no line items and no token.
func (m *ModelManager) Checkout() *Checkout {
	return &Checkout{currency: m.currency}
}

// CheckoutWithCart returns a checkout whose line items are a snapshot of cart.
// Later changes to cart do not reach the checkout.
func (m *ModelManager) CheckoutWithCart(cart *Cart) (*Checkout, error) {
	if cart == nil {
		return nil, fmt.Errorf("cart required: %w", ErrInvalidArgument)
	}
	c := m.Checkout()
	if cart.Currency != "" {
		c.currency = cart.Currency
	}
	if err := c.UpdateWithCart(cart); err != nil {
		return nil, err
	}
	return c, nil
}

// CheckoutWithVariant returns a checkout for a single unit of v.
func (m *ModelManager) CheckoutWithVariant(v ProductVariant) (*Checkout, error) {
	if strings.TrimSpace(v.ID) == "" {
		return nil, fmt.Errorf("variant required: %w", ErrInvalidArgument)
	}
	cart := NewCart(v.Currency)
	if err := cart.AddVariant(v, 1); err != nil {
		return nil, err
	}
	return m.CheckoutWithCart(cart)
}

// CheckoutWithCartToken returns a checkout bound to an existing server-side
// checkout. Its contents stay empty until fetched.
func (m *ModelManager) CheckoutWithCartToken(token string) (*Checkout, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("checkout token required: %w", ErrInvalidArgument)
	}
	c := m.Checkout()
	c.token = token
	return c, nil
}

// RestoreCheckout rebuilds a persisted checkout. The result reports no changes.
func (m *ModelManager) RestoreCheckout(s CheckoutSnapshot) (*Checkout, error) {
	c, err := m.CheckoutWithCartToken(s.Token)
	if err != nil {
		return nil, err
	}
	if s.Currency != "" {
		c.currency = s.Currency
	}
	for _, li := range s.LineItems {
		if err := li.validate(); err != nil {
			return nil, err
		}
	}
	c.lineItems = copyLineItems(s.LineItems)
	for _, gc := range s.GiftCards {
		if err := c.AddGiftCard(gc); err != nil {
			return nil, err
		}
	}
	for _, a := range s.Attributes {
		if err := c.SetAttribute(a.Name, a.Value); err != nil {
			return nil, err
		}
	}
	c.cartID = s.CartID
	c.email = s.Email
	c.taxesIncluded = s.TaxesIncluded
	c.shippingAddress = cloneAddress(s.ShippingAddress)
	c.billingAddress = cloneAddress(s.BillingAddress)
	if err := c.SetTimestamps(s.CreatedAt, s.UpdatedAt); err != nil {
		return nil, err
	}
	if err := c.SetVersion(s.Version); err != nil {
		return nil, err
	}
	c.MarkClean()
	return c, nil
}
