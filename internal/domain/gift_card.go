package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// GiftCard is a redeemable code attached to a checkout. Balance stays invalid
// until the code has been validated against the catalogue.
type GiftCard struct {
	ID             int64               `json:"id"`
	Code           string              `json:"code,omitempty"`
	LastCharacters string              `json:"lastCharacters"`
	Balance        decimal.NullDecimal `json:"balance"`
	AmountUsed     decimal.Decimal     `json:"amountUsed"`
}

// Resolved reports whether the card's balance has been populated.
func (g GiftCard) Resolved() bool {
	return g.Balance.Valid
}

// LastFour returns the trailing characters shown to shoppers in place of the code.
func LastFour(code string) string {
	code = strings.TrimSpace(code)
	if len(code) <= 4 {
		return code
	}
	return code[len(code)-4:]
}
