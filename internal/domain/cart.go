package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	CartStateActive  = "active"
	CartStateDeleted = "deleted"
)

// Cart is the shopper's basket. Line items keep insertion order and a variant
// appears at most once.
type Cart struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"-"`
	Currency  string    `json:"currency"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	lineItems []LineItem
}

// NewCart returns an empty active cart.
func NewCart(currency string) *Cart {
	return &Cart{Currency: currency, State: CartStateActive}
}

// LineItems returns a copy of the cart's line items in shopper order.
func (c *Cart) LineItems() []LineItem {
	if c == nil {
		return nil
	}
	return copyLineItems(c.lineItems)
}

// Len reports the number of distinct variants in the cart.
func (c *Cart) Len() int {
	return len(c.lineItems)
}

// TotalQuantity sums the quantities of every line.
func (c *Cart) TotalQuantity() int {
	total := 0
	for _, li := range c.lineItems {
		total += li.Quantity
	}
	return total
}

// Subtotal is the sum of every line price.
func (c *Cart) Subtotal() decimal.Decimal {
	return sumLinePrices(c.lineItems)
}

// AddVariant adds quantity of v, merging into an existing line for the same variant.
func (c *Cart) AddVariant(v ProductVariant, quantity int) error {
	return c.AddLineItem(LineItemFromVariant(v, quantity))
}

// AddLineItem appends item or, when its variant is already present, increases
// that line's quantity.
func (c *Cart) AddLineItem(item LineItem) error {
	if err := item.validate(); err != nil {
		return err
	}
	if idx := c.indexOf(item.VariantID); idx >= 0 {
		if item.Quantity > MaxLineQuantity-c.lineItems[idx].Quantity {
			return fmt.Errorf("quantity of %s would exceed %d: %w", item.VariantID, MaxLineQuantity, ErrInvalidArgument)
		}
		c.lineItems[idx].Quantity += item.Quantity
		return nil
	}
	c.lineItems = append(c.lineItems, item)
	return nil
}

// SetQuantity overwrites the quantity of an existing line. Zero removes it.
func (c *Cart) SetQuantity(variantID string, quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("quantity must not be negative: %w", ErrInvalidArgument)
	}
	if quantity > MaxLineQuantity {
		return fmt.Errorf("quantity exceeds %d: %w", MaxLineQuantity, ErrInvalidArgument)
	}
	idx := c.indexOf(variantID)
	if idx < 0 {
		return ErrNotFound
	}
	if quantity == 0 {
		c.removeAt(idx)
		return nil
	}
	c.lineItems[idx].Quantity = quantity
	return nil
}

// RemoveVariant drops the line for variantID and reports whether one existed.
func (c *Cart) RemoveVariant(variantID string) bool {
	idx := c.indexOf(variantID)
	if idx < 0 {
		return false
	}
	c.removeAt(idx)
	return true
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lineItems = nil
}

func (c *Cart) indexOf(variantID string) int {
	for i, li := range c.lineItems {
		if li.VariantID == variantID {
			return i
		}
	}
	return -1
}

func (c *Cart) removeAt(idx int) {
	c.lineItems = append(c.lineItems[:idx:idx], c.lineItems[idx+1:]...)
}

func sumLinePrices(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, li := range items {
		total = total.Add(li.LinePrice())
	}
	return total
}
