package checkout

import (
	"context"
	"time"

	"storefront-checkout/internal/domain"
)

type Repository interface {
	// Create persists snap under a freshly assigned token and returns the
	// stored state with token and timestamps filled in.
	Create(ctx context.Context, projectID string, snap domain.CheckoutSnapshot) (domain.CheckoutSnapshot, error)
	GetByToken(ctx context.Context, projectID, token string) (*domain.CheckoutSnapshot, error)
	// Save writes scalar fields and the parts flagged in changes, returning
	// the new updatedAt and version. A snap.Version that is no longer current
	// yields domain.ErrConflict.
	Save(ctx context.Context, projectID string, snap domain.CheckoutSnapshot, changes domain.ChangeSet) (time.Time, int64, error)
}
