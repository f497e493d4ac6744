package project

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"storefront-checkout/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) GetByKey(ctx context.Context, key string) (*domain.Project, error) {
	const q = `
SELECT id::text, key, name, created_at
FROM projects
WHERE key = $1
`
	var p domain.Project
	err := r.pool.QueryRow(ctx, q, key).Scan(&p.ID, &p.Key, &p.Name, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Ensure returns the project with key, creating it when missing. An existing
// project keeps its name unless a non-blank one is given.
func (r *postgresRepo) Ensure(ctx context.Context, key, name string) (*domain.Project, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, errors.New("project key required")
	}
	const q = `
INSERT INTO projects (key, name)
VALUES ($1, COALESCE(NULLIF($2::text, ''), $1))
ON CONFLICT (key) DO UPDATE SET name = COALESCE(NULLIF($2::text, ''), projects.name)
RETURNING id::text, key, name, created_at
`
	var p domain.Project
	if err := r.pool.QueryRow(ctx, q, key, strings.TrimSpace(name)).Scan(&p.ID, &p.Key, &p.Name, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
