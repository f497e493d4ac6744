package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"storefront-checkout/internal/domain"
	"storefront-checkout/internal/metrics"
	giftcardrepo "storefront-checkout/internal/repository/giftcard"
)

type checkoutRepo interface {
	Create(ctx context.Context, projectID string, snap domain.CheckoutSnapshot) (domain.CheckoutSnapshot, error)
	GetByToken(ctx context.Context, projectID, token string) (*domain.CheckoutSnapshot, error)
	Save(ctx context.Context, projectID string, snap domain.CheckoutSnapshot, changes domain.ChangeSet) (time.Time, int64, error)
}

type cartRepo interface {
	GetByID(ctx context.Context, projectID, id string) (*domain.Cart, error)
}

type variantRepo interface {
	GetByID(ctx context.Context, projectID, id string) (*domain.ProductVariant, error)
}

type giftCardRepo interface {
	GetByCode(ctx context.Context, projectID, code string) (*giftcardrepo.Card, error)
}

type snapshotCache interface {
	Get(ctx context.Context, projectID, token string) (*domain.CheckoutSnapshot, bool, error)
	Set(ctx context.Context, projectID string, snap domain.CheckoutSnapshot) error
	Delete(ctx context.Context, projectID, token string) error
}

// Deps wires the collaborators of the checkout service. Cache and Metrics are optional.
type Deps struct {
	Manager   *domain.ModelManager
	Repo      checkoutRepo
	Carts     cartRepo
	Variants  variantRepo
	GiftCards giftCardRepo
	Cache     snapshotCache
	Metrics   *metrics.Recorder
	Logger    zerolog.Logger
}

// updateAttempts bounds how often Update replays its actions after losing a
// version race to a concurrent writer.
const updateAttempts = 3

// errStaleVersion marks a save rejected because the loaded version is no
// longer current. Action errors never carry it, so only saves are replayed.
var errStaleVersion = errors.New("stale checkout version")

type Service struct {
	manager   *domain.ModelManager
	repo      checkoutRepo
	carts     cartRepo
	variants  variantRepo
	giftCards giftCardRepo
	cache     snapshotCache
	metrics   *metrics.Recorder
	validate  *validator.Validate
	logger    zerolog.Logger
}

func New(d Deps) *Service {
	return &Service{
		manager:   d.Manager,
		repo:      d.Repo,
		carts:     d.Carts,
		variants:  d.Variants,
		giftCards: d.GiftCards,
		cache:     d.Cache,
		metrics:   d.Metrics,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		logger:    d.Logger.With().Str("service", "checkout").Logger(),
	}
}

type CreateInput struct {
	CartID    string `json:"cartId,omitempty" validate:"omitempty,excluded_with=VariantID"`
	VariantID string `json:"variantId,omitempty"`
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
}

type UpdateInput struct {
	Actions []UpdateAction `json:"actions" validate:"required,min=1"`
}

type UpdateAction struct {
	Action        string          `json:"action"`
	CartID        string          `json:"cartId,omitempty"`
	Code          string          `json:"code,omitempty"`
	GiftCardID    int64           `json:"giftCardId,omitempty"`
	Name          string          `json:"name,omitempty"`
	Value         any             `json:"value,omitempty"`
	Note          string          `json:"note,omitempty"`
	Email         string          `json:"email,omitempty"`
	TaxesIncluded *bool           `json:"taxesIncluded,omitempty"`
	Address       *domain.Address `json:"address,omitempty"`
}

// Create builds a checkout from a cart, a single variant or nothing, and
// persists it under a new token.
func (s *Service) Create(ctx context.Context, projectID string, in CreateInput) (co *domain.Checkout, err error) {
	defer func() { s.metrics.Observe("create", err) }()

	in.CartID = strings.TrimSpace(in.CartID)
	in.VariantID = strings.TrimSpace(in.VariantID)
	in.Email = strings.TrimSpace(in.Email)
	if err := s.validator().Struct(in); err != nil {
		return nil, fmt.Errorf("%s: %w", validationMessage(err), domain.ErrInvalidArgument)
	}

	switch {
	case in.CartID != "":
		cart, err := s.carts.GetByID(ctx, projectID, in.CartID)
		if err != nil {
			return nil, err
		}
		if cart.State != domain.CartStateActive {
			return nil, fmt.Errorf("cart %s is %s: %w", cart.ID, cart.State, domain.ErrConflict)
		}
		if co, err = s.manager.CheckoutWithCart(cart); err != nil {
			return nil, err
		}
	case in.VariantID != "":
		variant, err := s.variants.GetByID(ctx, projectID, in.VariantID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("variant %s not found: %w", in.VariantID, domain.ErrInvalidArgument)
			}
			return nil, err
		}
		if co, err = s.manager.CheckoutWithVariant(*variant); err != nil {
			return nil, err
		}
	default:
		co = s.manager.Checkout()
	}
	co.SetEmail(in.Email)

	stored, err := s.repo.Create(ctx, projectID, co.Snapshot())
	if err != nil {
		return nil, err
	}
	co, err = s.manager.RestoreCheckout(stored)
	if err != nil {
		return nil, err
	}
	s.remember(ctx, projectID, co)
	s.logger.Info().Str("token", co.Token()).Str("cart_id", co.CartID()).Int("line_items", len(stored.LineItems)).Msg("checkout created")
	return co, nil
}

// Get resumes the checkout identified by token, preferring the cache.
func (s *Service) Get(ctx context.Context, projectID, token string) (co *domain.Checkout, err error) {
	defer func() { s.metrics.Observe("get", err) }()
	return s.load(ctx, projectID, token, true)
}

// Update applies actions in order and saves the parts they changed. Either
// every action applies or nothing is saved. When a concurrent writer saved
// first, the actions are replayed on the stored state.
func (s *Service) Update(ctx context.Context, projectID, token string, in UpdateInput) (co *domain.Checkout, err error) {
	defer func() { s.metrics.Observe("update", err) }()

	if err := s.validator().Struct(in); err != nil {
		return nil, fmt.Errorf("actions required: %w", domain.ErrInvalidArgument)
	}
	for attempt := 1; ; attempt++ {
		co, err = s.update(ctx, projectID, token, in.Actions, attempt == 1)
		if err == nil || !errors.Is(err, errStaleVersion) {
			return co, err
		}
		if attempt == updateAttempts {
			return nil, fmt.Errorf("checkout %s changed concurrently: %w", token, domain.ErrConflict)
		}
		s.logger.Info().Str("token", token).Int("attempt", attempt).Msg("checkout version moved, replaying update")
	}
}

func (s *Service) update(ctx context.Context, projectID, token string, actions []UpdateAction, cached bool) (*domain.Checkout, error) {
	co, err := s.load(ctx, projectID, token, cached)
	if err != nil {
		return nil, err
	}
	for _, action := range actions {
		if err := s.apply(ctx, projectID, co, action); err != nil {
			return nil, err
		}
	}
	if err := s.persist(ctx, projectID, co); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("%w: %w", errStaleVersion, err)
		}
		return nil, err
	}
	return co, nil
}

// RemoveGiftCard detaches a gift card. Unknown identifiers leave the checkout untouched.
func (s *Service) RemoveGiftCard(ctx context.Context, projectID, token string, id int64) (*domain.Checkout, error) {
	return s.Update(ctx, projectID, token, UpdateInput{
		Actions: []UpdateAction{{Action: "removeGiftCard", GiftCardID: id}},
	})
}

func (s *Service) apply(ctx context.Context, projectID string, co *domain.Checkout, action UpdateAction) error {
	switch strings.ToLower(strings.TrimSpace(action.Action)) {
	case "updatewithcart":
		cartID := strings.TrimSpace(action.CartID)
		if cartID == "" {
			cartID = co.CartID()
		}
		if cartID == "" {
			return fmt.Errorf("cartId required: %w", domain.ErrInvalidArgument)
		}
		cart, err := s.carts.GetByID(ctx, projectID, cartID)
		if err != nil {
			return err
		}
		if cart.State != domain.CartStateActive {
			return fmt.Errorf("cart %s is %s: %w", cart.ID, cart.State, domain.ErrConflict)
		}
		if co.Currency() != "" && cart.Currency != "" && !strings.EqualFold(co.Currency(), cart.Currency) {
			return fmt.Errorf("cart currency %s differs from checkout %s: %w", cart.Currency, co.Currency(), domain.ErrInvalidArgument)
		}
		if err := co.UpdateWithCart(cart); err != nil {
			return err
		}
		co.AllocateGiftCards()
		return nil
	case "applygiftcard":
		return s.applyGiftCard(ctx, projectID, co, action.Code)
	case "removegiftcard":
		if action.GiftCardID == 0 {
			return fmt.Errorf("giftCardId required: %w", domain.ErrInvalidArgument)
		}
		if co.RemoveGiftCardByID(action.GiftCardID) {
			co.AllocateGiftCards()
		}
		return nil
	case "setattribute":
		return co.SetAttribute(action.Name, action.Value)
	case "removeattribute":
		if strings.TrimSpace(action.Name) == "" {
			return fmt.Errorf("attribute name required: %w", domain.ErrInvalidArgument)
		}
		co.RemoveAttribute(strings.TrimSpace(action.Name))
		return nil
	case "setnote":
		co.SetNote(action.Note)
		return nil
	case "setemail":
		email := strings.TrimSpace(action.Email)
		if err := s.validator().Var(email, "omitempty,email"); err != nil {
			return fmt.Errorf("invalid email %q: %w", email, domain.ErrInvalidArgument)
		}
		co.SetEmail(email)
		return nil
	case "settaxesincluded":
		co.SetTaxesIncluded(domain.TaxInclusionFromBool(action.TaxesIncluded))
		return nil
	case "setshippingaddress":
		if err := s.validateAddress(action.Address); err != nil {
			return err
		}
		co.SetShippingAddress(action.Address)
		return nil
	case "setbillingaddress":
		if err := s.validateAddress(action.Address); err != nil {
			return err
		}
		co.SetBillingAddress(action.Address)
		return nil
	default:
		return fmt.Errorf("unsupported action %q: %w", action.Action, domain.ErrInvalidArgument)
	}
}

func (s *Service) applyGiftCard(ctx context.Context, projectID string, co *domain.Checkout, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("gift card code required: %w", domain.ErrInvalidArgument)
	}
	if s.giftCards == nil {
		return errors.New("gift card repository unavailable")
	}
	card, err := s.giftCards.GetByCode(ctx, projectID, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("unknown gift card ending in %s: %w", domain.LastFour(code), domain.ErrInvalidArgument)
		}
		return err
	}
	if co.Currency() != "" && !strings.EqualFold(card.Currency, co.Currency()) {
		return fmt.Errorf("gift card currency %s differs from checkout %s: %w", card.Currency, co.Currency(), domain.ErrInvalidArgument)
	}

	gc := domain.GiftCard{
		ID:             card.ID,
		Code:           card.Code,
		LastCharacters: domain.LastFour(card.Code),
		Balance:        decimal.NewNullDecimal(card.Balance),
		AmountUsed:     decimal.Min(card.Balance, co.PaymentDue()),
	}
	if err := co.AddGiftCard(gc); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return fmt.Errorf("gift card ending in %s already applied: %w", gc.LastCharacters, domain.ErrConflict)
		}
		return err
	}
	return nil
}

func (s *Service) validateAddress(a *domain.Address) error {
	if a == nil {
		return nil
	}
	if err := s.validator().Struct(a); err != nil {
		return fmt.Errorf("address %s: %w", validationMessage(err), domain.ErrInvalidArgument)
	}
	return nil
}

// load resumes a checkout. cached=false skips the cache read, which may lag
// behind the repository.
func (s *Service) load(ctx context.Context, projectID, token string, cached bool) (*domain.Checkout, error) {
	// Validates the token shape before any lookup.
	if _, err := s.manager.CheckoutWithCartToken(token); err != nil {
		return nil, err
	}
	token = strings.TrimSpace(token)

	if cached && s.cache != nil {
		snap, hit, err := s.cache.Get(ctx, projectID, token)
		if err != nil {
			s.logger.Warn().Err(err).Str("token", token).Msg("checkout cache read failed")
		}
		s.metrics.CacheLookup(hit)
		if hit {
			co, err := s.manager.RestoreCheckout(*snap)
			if err == nil {
				return co, nil
			}
			s.logger.Warn().Err(err).Str("token", token).Msg("discarding cached checkout")
			s.forget(ctx, projectID, token)
		}
	}

	snap, err := s.repo.GetByToken(ctx, projectID, token)
	if err != nil {
		return nil, err
	}
	co, err := s.manager.RestoreCheckout(*snap)
	if err != nil {
		return nil, err
	}
	s.remember(ctx, projectID, co)
	return co, nil
}

func (s *Service) persist(ctx context.Context, projectID string, co *domain.Checkout) error {
	changes := co.Changes()
	if !changes.Any() {
		return nil
	}
	s.forget(ctx, projectID, co.Token())
	updatedAt, version, err := s.repo.Save(ctx, projectID, co.Snapshot(), changes)
	if err != nil {
		return err
	}
	if err := co.SetTimestamps(co.CreatedAt(), updatedAt); err != nil {
		return err
	}
	if err := co.SetVersion(version); err != nil {
		return err
	}
	co.MarkClean()
	s.remember(ctx, projectID, co)
	s.logger.Debug().
		Str("token", co.Token()).
		Bool("line_items", changes.LineItems).
		Bool("gift_cards", changes.GiftCards).
		Bool("attributes", changes.Attributes).
		Msg("checkout synchronised")
	return nil
}

func (s *Service) remember(ctx context.Context, projectID string, co *domain.Checkout) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, projectID, co.Snapshot()); err != nil {
		s.logger.Warn().Err(err).Str("token", co.Token()).Msg("checkout cache write failed")
	}
}

func (s *Service) forget(ctx context.Context, projectID, token string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, projectID, token); err != nil {
		s.logger.Warn().Err(err).Str("token", token).Msg("checkout cache delete failed")
	}
}

func (s *Service) validator() *validator.Validate {
	if s.validate == nil {
		s.validate = validator.New(validator.WithRequiredStructEnabled())
	}
	return s.validate
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(fields, ", ")
}
