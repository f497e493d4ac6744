package variant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"storefront-checkout/internal/domain"
)

const variantColumns = `id::text, project_id::text, product_id, sku, title, price::text, currency, created_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger zerolog.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logger.With().Str("repo", "variant").Logger()}
}

func (r *postgresRepo) ListByProject(ctx context.Context, projectID string) ([]domain.ProductVariant, error) {
	q := `SELECT ` + variantColumns + `
FROM product_variants
WHERE project_id = $1
ORDER BY created_at DESC, sku ASC
`
	rows, err := r.pool.Query(ctx, q, projectID)
	if err != nil {
		r.logger.Error().Err(err).Str("project_id", projectID).Msg("list variants")
		return nil, err
	}
	defer rows.Close()

	var result []domain.ProductVariant
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	r.logger.Debug().Str("project_id", projectID).Int("count", len(result)).Msg("list variants")
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, projectID, id string) (*domain.ProductVariant, error) {
	q := `SELECT ` + variantColumns + `
FROM product_variants
WHERE project_id = $1 AND id::text = $2
`
	return r.getOne(ctx, q, projectID, id)
}

func (r *postgresRepo) GetBySKU(ctx context.Context, projectID, sku string) (*domain.ProductVariant, error) {
	q := `SELECT ` + variantColumns + `
FROM product_variants
WHERE project_id = $1 AND sku = $2
`
	return r.getOne(ctx, q, projectID, sku)
}

func (r *postgresRepo) Upsert(ctx context.Context, v domain.ProductVariant) (*domain.ProductVariant, error) {
	q := `
INSERT INTO product_variants (project_id, product_id, sku, title, price, currency)
VALUES ($1, $2, $3, $4, $5::numeric, $6)
ON CONFLICT (project_id, sku) DO UPDATE
SET product_id = EXCLUDED.product_id,
    title = EXCLUDED.title,
    price = EXCLUDED.price,
    currency = EXCLUDED.currency
RETURNING ` + variantColumns
	price, err := domain.FormatAmount(v.Price)
	if err != nil {
		return nil, fmt.Errorf("variant %s price: %w", v.SKU, err)
	}
	out, err := scanVariant(r.pool.QueryRow(ctx, q, v.ProjectID, v.ProductID, v.SKU, v.Title, price, v.Currency))
	if err != nil {
		return nil, fmt.Errorf("upsert variant %s: %w", v.SKU, err)
	}
	return out, nil
}

func (r *postgresRepo) getOne(ctx context.Context, q string, args ...any) (*domain.ProductVariant, error) {
	v, err := scanVariant(r.pool.QueryRow(ctx, q, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

func scanVariant(row pgx.Row) (*domain.ProductVariant, error) {
	var (
		v         domain.ProductVariant
		price     string
		createdAt time.Time
	)
	if err := row.Scan(&v.ID, &v.ProjectID, &v.ProductID, &v.SKU, &v.Title, &price, &v.Currency, &createdAt); err != nil {
		return nil, err
	}
	parsed, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("parse price %q: %w", price, err)
	}
	v.Price = parsed
	v.CreatedAt = createdAt
	return &v, nil
}
