package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ChangeSet lists the parts of a checkout modified since it was loaded or
// last persisted.
type ChangeSet struct {
	LineItems  bool
	GiftCards  bool
	Attributes bool
	Fields     bool
}

// Any reports whether anything changed.
func (c ChangeSet) Any() bool {
	return c.LineItems || c.GiftCards || c.Attributes || c.Fields
}

// Checkout is the server-synchronised aggregate for an in-progress purchase.
// Instances are built by a ModelManager. A Checkout is not safe for concurrent
// mutation; callers that share one across goroutines must lock around it.
type Checkout struct {
	token           string
	cartID          string
	currency        string
	email           string
	lineItems       []LineItem
	giftCards       []GiftCard
	attributes      []Attribute
	taxesIncluded   TaxInclusion
	shippingAddress *Address
	billingAddress  *Address
	createdAt       time.Time
	updatedAt       time.Time
	version         int64

	changes ChangeSet
}

func (c *Checkout) Token() string { return c.token }

// HasToken reports whether the checkout is bound to a server-side checkout.
func (c *Checkout) HasToken() bool { return c.token != "" }

// SetToken binds the checkout to the server-side identity assigned by the
// synchronisation layer.
func (c *Checkout) SetToken(token string) {
	c.token = strings.TrimSpace(token)
}

// CartID is the cart the checkout was last projected from, if any.
func (c *Checkout) CartID() string { return c.cartID }

func (c *Checkout) Currency() string { return c.currency }

func (c *Checkout) CreatedAt() time.Time { return c.createdAt }

func (c *Checkout) UpdatedAt() time.Time { return c.updatedAt }

// SetTimestamps records server-assigned timestamps. updatedAt may not precede createdAt.
func (c *Checkout) SetTimestamps(createdAt, updatedAt time.Time) error {
	if !createdAt.IsZero() && !updatedAt.IsZero() && updatedAt.Before(createdAt) {
		return fmt.Errorf("updatedAt %s before createdAt %s: %w", updatedAt, createdAt, ErrInvalidArgument)
	}
	c.createdAt = createdAt
	c.updatedAt = updatedAt
	return nil
}

// Version is the stored revision the checkout was loaded at. Zero means never stored.
func (c *Checkout) Version() int64 { return c.version }

// SetVersion records the revision assigned by storage after a write.
func (c *Checkout) SetVersion(v int64) error {
	if v < 0 {
		return fmt.Errorf("version %d: %w", v, ErrInvalidArgument)
	}
	c.version = v
	return nil
}

// LineItems returns a copy of the checkout's line items.
func (c *Checkout) LineItems() []LineItem {
	return copyLineItems(c.lineItems)
}

// UpdateWithCart replaces the checkout's line items with a snapshot of cart.
// Lines absent from the cart are dropped and quantities are taken verbatim.
// An empty cart leaves the checkout with no line items.
func (c *Checkout) UpdateWithCart(cart *Cart) error {
	if cart == nil {
		return fmt.Errorf("cart required: %w", ErrInvalidArgument)
	}
	c.lineItems = cart.LineItems()
	if cart.ID != "" {
		c.cartID = cart.ID
	}
	c.changes.LineItems = true
	return nil
}

// SubtotalPrice sums the line prices.
func (c *Checkout) SubtotalPrice() decimal.Decimal {
	return sumLinePrices(c.lineItems)
}

// PaymentDue is the subtotal less what attached gift cards cover, never negative.
func (c *Checkout) PaymentDue() decimal.Decimal {
	due := c.SubtotalPrice()
	for _, gc := range c.giftCards {
		due = due.Sub(gc.AmountUsed)
	}
	if due.IsNegative() {
		return decimal.Zero
	}
	return due
}

// GiftCards returns the attached gift cards in attach order.
func (c *Checkout) GiftCards() []GiftCard {
	out := make([]GiftCard, len(c.giftCards))
	copy(out, c.giftCards)
	return out
}

// AddGiftCard attaches card. Identifiers are unique within a checkout.
func (c *Checkout) AddGiftCard(card GiftCard) error {
	if card.ID == 0 {
		return fmt.Errorf("gift card identifier required: %w", ErrInvalidArgument)
	}
	if _, ok := c.GiftCardByID(card.ID); ok {
		return fmt.Errorf("gift card %d: %w", card.ID, ErrAlreadyExists)
	}
	if err := ValidateAmount(card.AmountUsed); err != nil {
		return fmt.Errorf("gift card %d amount used: %w", card.ID, err)
	}
	if card.Balance.Valid {
		if err := ValidateAmount(card.Balance.Decimal); err != nil {
			return fmt.Errorf("gift card %d balance: %w", card.ID, err)
		}
	}
	c.giftCards = append(c.giftCards, card)
	c.changes.GiftCards = true
	return nil
}

// GiftCardByID returns the gift card with the given identifier. The boolean is
// false when none is attached.
func (c *Checkout) GiftCardByID(id int64) (GiftCard, bool) {
	for _, gc := range c.giftCards {
		if gc.ID == id {
			return gc, true
		}
	}
	return GiftCard{}, false
}

// RemoveGiftCardByID detaches the gift card with the given identifier. Unknown
// identifiers are ignored; the result reports whether a card was removed.
func (c *Checkout) RemoveGiftCardByID(id int64) bool {
	for i, gc := range c.giftCards {
		if gc.ID == id {
			c.giftCards = append(c.giftCards[:i:i], c.giftCards[i+1:]...)
			c.changes.GiftCards = true
			return true
		}
	}
	return false
}

// AllocateGiftCards spreads the subtotal over resolved gift cards in attach
// order, each covering at most its balance. Unresolved cards keep their amount.
func (c *Checkout) AllocateGiftCards() {
	remaining := c.SubtotalPrice()
	for i := range c.giftCards {
		gc := &c.giftCards[i]
		if !gc.Balance.Valid {
			remaining = decimal.Max(decimal.Zero, remaining.Sub(gc.AmountUsed))
			continue
		}
		used := decimal.Max(decimal.Zero, decimal.Min(gc.Balance.Decimal, remaining))
		remaining = remaining.Sub(used)
		if !used.Equal(gc.AmountUsed) {
			gc.AmountUsed = used
			c.changes.GiftCards = true
		}
	}
}

func (c *Checkout) TaxesIncluded() TaxInclusion { return c.taxesIncluded }

// SetTaxesIncluded records the flag only; totals are recomputed server side.
func (c *Checkout) SetTaxesIncluded(t TaxInclusion) {
	if c.taxesIncluded == t {
		return
	}
	c.taxesIncluded = t
	c.changes.Fields = true
}

func (c *Checkout) Email() string { return c.email }

func (c *Checkout) SetEmail(email string) {
	email = strings.TrimSpace(email)
	if c.email == email {
		return
	}
	c.email = email
	c.changes.Fields = true
}

func (c *Checkout) ShippingAddress() *Address { return cloneAddress(c.shippingAddress) }

func (c *Checkout) SetShippingAddress(a *Address) {
	c.shippingAddress = cloneAddress(a)
	c.changes.Fields = true
}

func (c *Checkout) BillingAddress() *Address { return cloneAddress(c.billingAddress) }

func (c *Checkout) SetBillingAddress(a *Address) {
	c.billingAddress = cloneAddress(a)
	c.changes.Fields = true
}

// Attributes returns the stored attributes in insertion order.
func (c *Checkout) Attributes() []Attribute {
	out := make([]Attribute, len(c.attributes))
	copy(out, c.attributes)
	return out
}

// AttributesDictionary projects the attributes into a fresh map. Mutating the
// result has no effect on the checkout.
func (c *Checkout) AttributesDictionary() map[string]any {
	out := make(map[string]any, len(c.attributes))
	for _, a := range c.attributes {
		out[a.Name] = a.Value
	}
	return out
}

// Attribute returns the value stored under name.
func (c *Checkout) Attribute(name string) (any, bool) {
	for _, a := range c.attributes {
		if a.Name == name {
			return a.Value, true
		}
	}
	return nil, false
}

// SetAttribute stores a scalar value under name, replacing any previous value.
func (c *Checkout) SetAttribute(name string, value any) error {
	name = strings.TrimSpace(name)
	if err := validateAttribute(name, value); err != nil {
		return err
	}
	for i, a := range c.attributes {
		if a.Name == name {
			c.attributes[i].Value = value
			c.changes.Attributes = true
			return nil
		}
	}
	c.attributes = append(c.attributes, Attribute{Name: name, Value: value})
	c.changes.Attributes = true
	return nil
}

// RemoveAttribute deletes name and reports whether it was present.
func (c *Checkout) RemoveAttribute(name string) bool {
	for i, a := range c.attributes {
		if a.Name == name {
			c.attributes = append(c.attributes[:i:i], c.attributes[i+1:]...)
			c.changes.Attributes = true
			return true
		}
	}
	return false
}

// Note returns the free-text order note, or "" when none is set.
func (c *Checkout) Note() string {
	v, ok := c.Attribute(NoteAttributeKey)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// SetNote writes the order note. A blank note removes the attribute.
func (c *Checkout) SetNote(note string) {
	if strings.TrimSpace(note) == "" {
		c.RemoveAttribute(NoteAttributeKey)
		return
	}
	_ = c.SetAttribute(NoteAttributeKey, note)
}

// Changes reports what was modified since the checkout was built or last marked clean.
func (c *Checkout) Changes() ChangeSet { return c.changes }

// MarkClean resets the change set after a successful synchronisation.
func (c *Checkout) MarkClean() { c.changes = ChangeSet{} }

func cloneAddress(a *Address) *Address {
	if a == nil {
		return nil
	}
	cp := *a
	return &cp
}
