package httpserver

import (
	"strings"
	"time"

	"storefront-checkout/internal/domain"
)

type ctCart struct {
	Type                  string       `json:"type"`
	ID                    string       `json:"id"`
	Version               int          `json:"version"`
	CreatedAt             time.Time    `json:"createdAt"`
	LastModifiedAt        time.Time    `json:"lastModifiedAt"`
	LineItems             []ctLineItem `json:"lineItems"`
	CartState             string       `json:"cartState"`
	TotalPrice            ctPriceValue `json:"totalPrice"`
	TaxMode               string       `json:"taxMode"`
	Origin                string       `json:"origin"`
	TotalLineItemQuantity int          `json:"totalLineItemQuantity,omitempty"`
}

type ctLineItem struct {
	VariantID  string            `json:"variantId"`
	ProductID  string            `json:"productId,omitempty"`
	Name       map[string]string `json:"name"`
	Price      ctPriceValue      `json:"price"`
	Quantity   int               `json:"quantity"`
	TotalPrice ctPriceValue      `json:"totalPrice"`
}

func toCTCart(cart *domain.Cart) ctCart {
	return ctCart{
		Type:                  "Cart",
		ID:                    cart.ID,
		Version:               1,
		CreatedAt:             cart.CreatedAt,
		LastModifiedAt:        cart.UpdatedAt,
		LineItems:             toCTLineItems(cart.LineItems(), cart.Currency),
		CartState:             ctState(cart.State),
		TotalPrice:            toCTMoney(cart.Subtotal(), cart.Currency),
		TaxMode:               "Platform",
		Origin:                "Customer",
		TotalLineItemQuantity: cart.TotalQuantity(),
	}
}

func toCTLineItems(lines []domain.LineItem, currency string) []ctLineItem {
	out := make([]ctLineItem, 0, len(lines))
	for _, line := range lines {
		name := line.Title
		if name == "" {
			name = line.VariantID
		}
		out = append(out, ctLineItem{
			VariantID:  line.VariantID,
			ProductID:  line.ProductID,
			Name:       map[string]string{"en": name},
			Price:      toCTMoney(line.Price, currency),
			Quantity:   line.Quantity,
			TotalPrice: toCTMoney(line.LinePrice(), currency),
		})
	}
	return out
}

func ctState(state string) string {
	state = strings.TrimSpace(state)
	switch {
	case state == "", strings.EqualFold(state, domain.CartStateActive):
		return "Active"
	case strings.EqualFold(state, domain.CartStateDeleted):
		return "Deleted"
	default:
		return state
	}
}
