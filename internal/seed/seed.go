package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"storefront-checkout/internal/domain"
	giftcardrepo "storefront-checkout/internal/repository/giftcard"
	projectrepo "storefront-checkout/internal/repository/project"
	variantrepo "storefront-checkout/internal/repository/variant"
)

const (
	ProjectKey  = "demo"
	projectName = "Demo Project"
)

type variantSeed struct {
	ProductID string
	SKU       string
	Title     string
	Price     string
	Currency  string
}

type giftCardSeed struct {
	Code     string
	Balance  string
	Currency string
}

var variants = []variantSeed{
	{ProductID: "demo-shirt", SKU: "SKU-DEMO-TSHIRT-M", Title: "Demo T-Shirt / M", Price: "19.99", Currency: "USD"},
	{ProductID: "demo-shirt", SKU: "SKU-DEMO-TSHIRT-L", Title: "Demo T-Shirt / L", Price: "19.99", Currency: "USD"},
	{ProductID: "demo-mug", SKU: "SKU-DEMO-MUG", Title: "Demo Mug", Price: "12.99", Currency: "USD"},
}

var giftCards = []giftCardSeed{
	{Code: "DEMO-GIFT-0010", Balance: "10.00", Currency: "USD"},
	{Code: "DEMO-GIFT-0050", Balance: "50.00", Currency: "USD"},
}

// Apply inserts basic seed data for manual testing. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
	projects := projectrepo.NewPostgres(pool)
	project, err := projects.Ensure(ctx, ProjectKey, projectName)
	if err != nil {
		return fmt.Errorf("ensure project: %w", err)
	}

	variantRepo := variantrepo.NewPostgres(pool, logger)
	for _, v := range variants {
		if _, err := variantRepo.Upsert(ctx, domain.ProductVariant{
			ProjectID: project.ID,
			ProductID: v.ProductID,
			SKU:       v.SKU,
			Title:     v.Title,
			Price:     decimal.RequireFromString(v.Price),
			Currency:  v.Currency,
		}); err != nil {
			return fmt.Errorf("upsert variant %s: %w", v.SKU, err)
		}
	}

	cards := giftcardrepo.NewPostgres(pool)
	for _, gc := range giftCards {
		if _, err := cards.Upsert(ctx, giftcardrepo.Card{
			ProjectID: project.ID,
			Code:      gc.Code,
			Balance:   decimal.RequireFromString(gc.Balance),
			Currency:  gc.Currency,
		}); err != nil {
			return fmt.Errorf("upsert gift card %s: %w", domain.LastFour(gc.Code), err)
		}
	}

	logger.Info().
		Str("project", project.Key).
		Int("variants", len(variants)).
		Int("gift_cards", len(giftCards)).
		Msg("seed applied")
	return nil
}
