package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductVariant is a purchasable SKU of a product.
type ProductVariant struct {
	ID        string          `json:"id"`
	ProjectID string          `json:"-"`
	ProductID string          `json:"productId"`
	SKU       string          `json:"sku"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Currency  string          `json:"currency"`
	CreatedAt time.Time       `json:"createdAt"`
}
