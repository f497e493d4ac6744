package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"storefront-checkout/internal/db/dbtest"
	"storefront-checkout/internal/domain"
)

func TestCartRepository_Integration(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(t)
	projectID := dbtest.Project(t, pool, "proj")
	shirt := dbtest.Variant(t, pool, projectID, "shirt", "20.00")
	mug := dbtest.Variant(t, pool, projectID, "mug", "8.50")

	repo := NewPostgres(pool)
	cart, err := repo.Create(ctx, CreateCartInput{ProjectID: projectID, Currency: "USD"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if cart.State != domain.CartStateActive || cart.Len() != 0 {
		t.Fatalf("unexpected new cart %+v", cart)
	}

	for _, li := range []domain.LineItem{
		{VariantID: mug, ProductID: "prod-mug", Title: "mug", Price: decimal.RequireFromString("8.50"), Quantity: 1},
		{VariantID: shirt, ProductID: "prod-shirt", Title: "shirt", Price: decimal.RequireFromString("20.00"), Quantity: 2},
	} {
		if err := cart.AddLineItem(li); err != nil {
			t.Fatalf("add line: %v", err)
		}
	}
	if err := repo.SaveLineItems(ctx, cart); err != nil {
		t.Fatalf("save lines: %v", err)
	}

	got, err := repo.GetByID(ctx, projectID, cart.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	lines := got.LineItems()
	if len(lines) != 2 || lines[0].VariantID != mug || lines[1].VariantID != shirt {
		t.Fatalf("expected insertion order preserved, got %+v", lines)
	}
	if !got.Subtotal().Equal(decimal.RequireFromString("48.50")) {
		t.Fatalf("unexpected subtotal %s", got.Subtotal())
	}

	got.Clear()
	if err := repo.SaveLineItems(ctx, got); err != nil {
		t.Fatalf("save cleared: %v", err)
	}
	if reloaded, _ := repo.GetByID(ctx, projectID, cart.ID); reloaded.Len() != 0 {
		t.Fatalf("expected empty cart, got %+v", reloaded.LineItems())
	}

	if err := repo.SetState(ctx, projectID, cart.ID, domain.CartStateDeleted); err != nil {
		t.Fatalf("set state: %v", err)
	}
	if err := repo.SaveLineItems(ctx, got); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("deleted carts must reject line changes, got %v", err)
	}
	if _, err := repo.GetByID(ctx, projectID, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
