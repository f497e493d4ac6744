package domain

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// MaxLineQuantity is the largest quantity a single line may hold.
const MaxLineQuantity = math.MaxInt32

// LineItem is a variant and the quantity chosen for it. It is a value type:
// copying a LineItem yields an independent record.
type LineItem struct {
	VariantID string          `json:"variantId"`
	ProductID string          `json:"productId,omitempty"`
	Title     string          `json:"title,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// LineItemFromVariant builds a line item carrying a price snapshot of v.
func LineItemFromVariant(v ProductVariant, quantity int) LineItem {
	return LineItem{
		VariantID: v.ID,
		ProductID: v.ProductID,
		Title:     v.Title,
		Price:     v.Price,
		Quantity:  quantity,
	}
}

// LinePrice is the unit price multiplied by the quantity.
func (l LineItem) LinePrice() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func (l LineItem) validate() error {
	if l.VariantID == "" {
		return fmt.Errorf("line item variant required: %w", ErrInvalidArgument)
	}
	if l.Quantity <= 0 {
		return fmt.Errorf("line item quantity must be positive: %w", ErrInvalidArgument)
	}
	if l.Quantity > MaxLineQuantity {
		return fmt.Errorf("line item quantity exceeds %d: %w", MaxLineQuantity, ErrInvalidArgument)
	}
	if err := ValidateAmount(l.Price); err != nil {
		return fmt.Errorf("line item %s price: %w", l.VariantID, err)
	}
	return nil
}

func copyLineItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}
