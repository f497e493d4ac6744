package variant

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"storefront-checkout/internal/db/dbtest"
	"storefront-checkout/internal/domain"
)

func TestVariantRepository_Integration(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(t)
	projectID := dbtest.Project(t, pool, "proj")
	repo := NewPostgres(pool, zerolog.Nop())

	v, err := repo.Upsert(ctx, domain.ProductVariant{
		ProjectID: projectID,
		ProductID: "shirt",
		SKU:       "SHIRT-M",
		Title:     "Shirt / M",
		Price:     decimal.RequireFromString("19.99"),
		Currency:  "USD",
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	byID, err := repo.GetByID(ctx, projectID, v.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	bySKU, err := repo.GetBySKU(ctx, projectID, "SHIRT-M")
	if err != nil {
		t.Fatalf("get by sku: %v", err)
	}
	if byID.ID != bySKU.ID || !bySKU.Price.Equal(decimal.RequireFromString("19.99")) {
		t.Fatalf("unexpected variants %+v %+v", byID, bySKU)
	}

	if _, err := repo.Upsert(ctx, domain.ProductVariant{ProjectID: projectID, ProductID: "shirt", SKU: "SHIRT-M", Title: "Shirt / M", Price: decimal.RequireFromString("17.00"), Currency: "USD"}); err != nil {
		t.Fatalf("re-upsert: %v", err)
	}
	list, err := repo.ListByProject(ctx, projectID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || !list[0].Price.Equal(decimal.RequireFromString("17")) {
		t.Fatalf("expected a single repriced variant, got %+v", list)
	}

	if _, err := repo.GetByID(ctx, projectID, "not-a-uuid"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
