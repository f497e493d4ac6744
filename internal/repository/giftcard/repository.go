package giftcard

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Card is a redeemable code issued for a project.
type Card struct {
	ID        int64
	ProjectID string
	Code      string
	Balance   decimal.Decimal
	Currency  string
	CreatedAt time.Time
}

type Repository interface {
	GetByCode(ctx context.Context, projectID, code string) (*Card, error)
	Upsert(ctx context.Context, card Card) (*Card, error)
}
