package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"storefront-checkout/internal/domain"
	cartrepo "storefront-checkout/internal/repository/cart"
)

type Service struct {
	repo     cartRepo
	variants variantRepo
	validate *validator.Validate
	logger   zerolog.Logger
}

type cartRepo interface {
	Create(ctx context.Context, in cartrepo.CreateCartInput) (*domain.Cart, error)
	GetByID(ctx context.Context, projectID, id string) (*domain.Cart, error)
	SaveLineItems(ctx context.Context, cart *domain.Cart) error
	SetState(ctx context.Context, projectID, cartID, state string) error
}

type variantRepo interface {
	GetByID(ctx context.Context, projectID, id string) (*domain.ProductVariant, error)
	GetBySKU(ctx context.Context, projectID, sku string) (*domain.ProductVariant, error)
}

func New(repo cartrepo.Repository, variants variantRepo, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		variants: variants,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.With().Str("service", "cart").Logger(),
	}
}

type CreateInput struct {
	Currency string `json:"currency" validate:"required,len=3,alpha"`
}

type UpdateInput struct {
	Actions []UpdateAction `json:"actions" validate:"required,min=1"`
}

type UpdateAction struct {
	Action    string `json:"action"`
	VariantID string `json:"variantId,omitempty"`
	SKU       string `json:"sku,omitempty"`
	Quantity  int    `json:"quantity,omitempty"`
}

func (s *Service) Create(ctx context.Context, projectID string, in CreateInput) (*domain.Cart, error) {
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	if err := s.validator().Struct(in); err != nil {
		return nil, fmt.Errorf("currency: %w", domain.ErrInvalidArgument)
	}
	cart, err := s.repo.Create(ctx, cartrepo.CreateCartInput{ProjectID: projectID, Currency: in.Currency})
	if err != nil {
		return nil, err
	}
	s.logger.Debug().Str("cart_id", cart.ID).Msg("cart created")
	return cart, nil
}

func (s *Service) Get(ctx context.Context, projectID, id string) (*domain.Cart, error) {
	return s.repo.GetByID(ctx, projectID, id)
}

// Update applies actions in order to an active cart and persists the result.
// Either every action applies or nothing is saved.
func (s *Service) Update(ctx context.Context, projectID, cartID string, in UpdateInput) (*domain.Cart, error) {
	if err := s.validator().Struct(in); err != nil {
		return nil, fmt.Errorf("actions required: %w", domain.ErrInvalidArgument)
	}
	cart, err := s.repo.GetByID(ctx, projectID, cartID)
	if err != nil {
		return nil, err
	}
	if cart.State != domain.CartStateActive {
		return nil, fmt.Errorf("cart %s is %s: %w", cart.ID, cart.State, domain.ErrConflict)
	}

	for _, action := range in.Actions {
		if err := s.apply(ctx, projectID, cart, action); err != nil {
			return nil, err
		}
	}

	if err := s.repo.SaveLineItems(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *Service) apply(ctx context.Context, projectID string, cart *domain.Cart, action UpdateAction) error {
	switch strings.ToLower(strings.TrimSpace(action.Action)) {
	case "addlineitem":
		quantity := action.Quantity
		if quantity == 0 {
			quantity = 1
		}
		if quantity < 0 {
			return fmt.Errorf("quantity must be positive: %w", domain.ErrInvalidArgument)
		}
		variant, err := s.resolveVariant(ctx, projectID, action)
		if err != nil {
			return err
		}
		if !strings.EqualFold(variant.Currency, cart.Currency) {
			return fmt.Errorf("variant %s priced in %s, cart uses %s: %w", variant.ID, variant.Currency, cart.Currency, domain.ErrInvalidArgument)
		}
		return cart.AddVariant(*variant, quantity)
	case "changelineitemquantity":
		variantID := strings.TrimSpace(action.VariantID)
		if variantID == "" {
			return fmt.Errorf("variantId required: %w", domain.ErrInvalidArgument)
		}
		if err := cart.SetQuantity(variantID, action.Quantity); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("variant %s not in cart: %w", variantID, domain.ErrInvalidArgument)
			}
			return err
		}
		return nil
	case "removelineitem":
		variantID := strings.TrimSpace(action.VariantID)
		if variantID == "" {
			return fmt.Errorf("variantId required: %w", domain.ErrInvalidArgument)
		}
		cart.RemoveVariant(variantID)
		return nil
	case "clear":
		cart.Clear()
		return nil
	default:
		return fmt.Errorf("unsupported action %q: %w", action.Action, domain.ErrInvalidArgument)
	}
}

func (s *Service) resolveVariant(ctx context.Context, projectID string, action UpdateAction) (*domain.ProductVariant, error) {
	if s.variants == nil {
		return nil, errors.New("variant repository unavailable")
	}
	var (
		variant *domain.ProductVariant
		err     error
	)
	switch {
	case strings.TrimSpace(action.VariantID) != "":
		variant, err = s.variants.GetByID(ctx, projectID, strings.TrimSpace(action.VariantID))
	case strings.TrimSpace(action.SKU) != "":
		variant, err = s.variants.GetBySKU(ctx, projectID, strings.TrimSpace(action.SKU))
	default:
		return nil, fmt.Errorf("variantId or sku required: %w", domain.ErrInvalidArgument)
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("variant not found: %w", domain.ErrInvalidArgument)
		}
		return nil, err
	}
	return variant, nil
}

// Delete marks the cart deleted. Checkouts built from it keep their line items.
func (s *Service) Delete(ctx context.Context, projectID, cartID string) (*domain.Cart, error) {
	if err := s.repo.SetState(ctx, projectID, cartID, domain.CartStateDeleted); err != nil {
		return nil, err
	}
	s.logger.Debug().Str("cart_id", cartID).Msg("cart deleted")
	return s.repo.GetByID(ctx, projectID, cartID)
}

func (s *Service) validator() *validator.Validate {
	if s.validate == nil {
		s.validate = validator.New(validator.WithRequiredStructEnabled())
	}
	return s.validate
}
