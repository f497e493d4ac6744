package variant

import (
	"context"

	"storefront-checkout/internal/domain"
)

type Repository interface {
	ListByProject(ctx context.Context, projectID string) ([]domain.ProductVariant, error)
	GetByID(ctx context.Context, projectID, id string) (*domain.ProductVariant, error)
	GetBySKU(ctx context.Context, projectID, sku string) (*domain.ProductVariant, error)
	Upsert(ctx context.Context, v domain.ProductVariant) (*domain.ProductVariant, error)
}
