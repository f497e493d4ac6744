package giftcard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"storefront-checkout/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

// GetByCode looks a code up case-insensitively.
func (r *postgresRepo) GetByCode(ctx context.Context, projectID, code string) (*Card, error) {
	const q = `
SELECT id, project_id::text, code, balance::text, currency, created_at
FROM gift_cards
WHERE project_id = $1 AND upper(code) = upper($2)
`
	card, err := scanCard(r.pool.QueryRow(ctx, q, projectID, strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return card, nil
}

// Upsert matches codes case-insensitively, like GetByCode. An existing card
// keeps the spelling it was first stored with.
func (r *postgresRepo) Upsert(ctx context.Context, card Card) (*Card, error) {
	const q = `
INSERT INTO gift_cards (project_id, code, balance, currency)
VALUES ($1, $2, $3::numeric, $4)
ON CONFLICT (project_id, upper(code)) DO UPDATE
SET balance = EXCLUDED.balance,
    currency = EXCLUDED.currency
RETURNING id, project_id::text, code, balance::text, currency, created_at
`
	balance, err := domain.FormatAmount(card.Balance)
	if err != nil {
		return nil, fmt.Errorf("gift card balance: %w", err)
	}
	out, err := scanCard(r.pool.QueryRow(ctx, q, card.ProjectID, strings.TrimSpace(card.Code), balance, card.Currency))
	if err != nil {
		return nil, fmt.Errorf("upsert gift card: %w", err)
	}
	return out, nil
}

func scanCard(row pgx.Row) (*Card, error) {
	var (
		c       Card
		balance string
	)
	if err := row.Scan(&c.ID, &c.ProjectID, &c.Code, &balance, &c.Currency, &c.CreatedAt); err != nil {
		return nil, err
	}
	parsed, err := decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("parse balance %q: %w", balance, err)
	}
	c.Balance = parsed
	return &c, nil
}
