package cart

import (
	"context"

	"storefront-checkout/internal/domain"
)

type CreateCartInput struct {
	ProjectID string
	Currency  string
}

type Repository interface {
	Create(ctx context.Context, in CreateCartInput) (*domain.Cart, error)
	GetByID(ctx context.Context, projectID, id string) (*domain.Cart, error)
	SaveLineItems(ctx context.Context, cart *domain.Cart) error
	SetState(ctx context.Context, projectID, cartID, state string) error
}
