package cart

import (
	"context"
	"errors"
	"fmt"

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

func (r *postgresRepo) Create(ctx context.Context, in CreateCartInput) (*domain.Cart, error) {
	const q = `
INSERT INTO carts (project_id, currency, state)
VALUES ($1, $2, 'active')
RETURNING id::text, project_id::text, currency, state, created_at, updated_at
`
	cart := domain.NewCart(in.Currency)
	if err := r.pool.QueryRow(ctx, q, in.ProjectID, in.Currency).Scan(
		&cart.ID,
		&cart.ProjectID,
		&cart.Currency,
		&cart.State,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return cart, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, projectID, id string) (*domain.Cart, error) {
	const cartQuery = `
SELECT id::text, project_id::text, currency, state, created_at, updated_at
FROM carts
WHERE project_id = $1 AND id::text = $2
`
	cart := domain.NewCart("")
	err := r.pool.QueryRow(ctx, cartQuery, projectID, id).Scan(
		&cart.ID,
		&cart.ProjectID,
		&cart.Currency,
		&cart.State,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	const linesQuery = `
SELECT variant_id::text, product_id, title, price::text, quantity
FROM cart_line_items
WHERE cart_id = $1
ORDER BY position ASC
`
	rows, err := r.pool.Query(ctx, linesQuery, cart.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			line  domain.LineItem
			price string
		)
		if err := rows.Scan(&line.VariantID, &line.ProductID, &line.Title, &price, &line.Quantity); err != nil {
			return nil, err
		}
		if line.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parse price %q: %w", price, err)
		}
		if err := cart.AddLineItem(line); err != nil {
			return nil, fmt.Errorf("load cart %s: %w", cart.ID, err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return cart, nil
}

// SaveLineItems replaces the stored lines of cart with its current contents.
func (r *postgresRepo) SaveLineItems(ctx context.Context, cart *domain.Cart) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `
UPDATE carts
SET updated_at = now()
WHERE id = $1 AND state = 'active'
`, cart.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_line_items WHERE cart_id = $1`, cart.ID); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for i, line := range cart.LineItems() {
		price, err := domain.FormatAmount(line.Price)
		if err != nil {
			return fmt.Errorf("line item %s: %w", line.VariantID, err)
		}
		batch.Queue(`
INSERT INTO cart_line_items (cart_id, position, variant_id, product_id, title, price, quantity)
VALUES ($1, $2, $3::uuid, $4, $5, $6::numeric, $7)
`, cart.ID, i, line.VariantID, line.ProductID, line.Title, price, line.Quantity)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return err
		}
	}

	if err := tx.QueryRow(ctx, `SELECT updated_at FROM carts WHERE id = $1`, cart.ID).Scan(&cart.UpdatedAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *postgresRepo) SetState(ctx context.Context, projectID, cartID, state string) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE carts
SET state = $1, updated_at = now()
WHERE project_id = $2 AND id::text = $3
`, state, projectID, cartID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
