// Package dbtest provides a migrated, empty Postgres database for
// integration tests. Tests are skipped unless TEST_DB_DSN is set.
package dbtest

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"storefront-checkout/internal/migrate"
)

const tables = `checkout_attributes, checkout_gift_cards, checkout_line_items, checkouts,
gift_cards, cart_line_items, carts, product_variants, projects`

// Pool connects to TEST_DB_DSN, applies migrations and truncates every table.
// The pool is closed when the test ends.
func Pool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(pool.Close)
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("ping db: %v", err)
	}
	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE `+tables+` RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
	return pool
}

// Project inserts a project and returns its id.
func Project(t *testing.T, pool *pgxpool.Pool, key string) string {
	t.Helper()
	var id string
	if err := pool.QueryRow(context.Background(),
		`INSERT INTO projects (key, name) VALUES ($1, $1) RETURNING id::text`, key).Scan(&id); err != nil {
		t.Fatalf("insert project: %v", err)
	}
	return id
}

// Variant inserts a product variant and returns its id.
func Variant(t *testing.T, pool *pgxpool.Pool, projectID, sku, price string) string {
	t.Helper()
	var id string
	if err := pool.QueryRow(context.Background(), `
INSERT INTO product_variants (project_id, product_id, sku, title, price, currency)
VALUES ($1, 'prod-'||$2, $2, $2, $3::numeric, 'USD')
RETURNING id::text`, projectID, sku, price).Scan(&id); err != nil {
		t.Fatalf("insert variant: %v", err)
	}
	return id
}
