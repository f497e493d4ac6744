package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amounts are stored as NUMERIC(12,2).
const amountScale = 2

var amountLimit = decimal.New(1, 10)

// ValidateAmount rejects negative amounts, amounts with more than two decimal
// places and amounts too large to store.
func ValidateAmount(d decimal.Decimal) error {
	if d.IsNegative() {
		return fmt.Errorf("amount %s must not be negative: %w", d, ErrInvalidArgument)
	}
	if !d.Equal(d.Truncate(amountScale)) {
		return fmt.Errorf("amount %s has more than %d decimal places: %w", d, amountScale, ErrInvalidArgument)
	}
	if d.GreaterThanOrEqual(amountLimit) {
		return fmt.Errorf("amount %s exceeds %s: %w", d, amountLimit, ErrInvalidArgument)
	}
	return nil
}

// FormatAmount renders d for storage after validating it, so what is written
// is exactly what is held in memory.
func FormatAmount(d decimal.Decimal) (string, error) {
	if err := ValidateAmount(d); err != nil {
		return "", err
	}
	return d.StringFixed(amountScale), nil
}
