package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"storefront-checkout/internal/domain"
)

const tokenAttempts = 5

type postgresRepo struct {
	pool     *pgxpool.Pool
	logger   zerolog.Logger
	newToken func() string
}

func NewPostgres(pool *pgxpool.Pool, logger zerolog.Logger) Repository {
	return &postgresRepo{
		pool:     pool,
		logger:   logger.With().Str("repo", "checkout").Logger(),
		newToken: newToken,
	}
}

func newToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (r *postgresRepo) Create(ctx context.Context, projectID string, snap domain.CheckoutSnapshot) (domain.CheckoutSnapshot, error) {
	for i := 0; i < tokenAttempts; i++ {
		snap.Token = r.newToken()
		created, err := r.insert(ctx, projectID, snap)
		if err == nil {
			return created, nil
		}
		if errors.Is(err, domain.ErrAlreadyExists) {
			r.logger.Warn().Str("token", snap.Token).Msg("checkout token collision, retrying")
			continue
		}
		return domain.CheckoutSnapshot{}, err
	}
	return domain.CheckoutSnapshot{}, errors.New("checkout token collision")
}

func (r *postgresRepo) insert(ctx context.Context, projectID string, snap domain.CheckoutSnapshot) (domain.CheckoutSnapshot, error) {
	shipping, err := marshalAddress(snap.ShippingAddress)
	if err != nil {
		return snap, err
	}
	billing, err := marshalAddress(snap.BillingAddress)
	if err != nil {
		return snap, err
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return snap, err
	}
	defer tx.Rollback(ctx)

	const q = `
INSERT INTO checkouts (token, project_id, cart_id, currency, email, taxes_included, shipping_address, billing_address)
VALUES ($1, $2, $3::uuid, $4, $5, $6, $7::jsonb, $8::jsonb)
RETURNING created_at, updated_at, version
`
	err = tx.QueryRow(ctx, q,
		snap.Token,
		projectID,
		nullString(snap.CartID),
		snap.Currency,
		snap.Email,
		snap.TaxesIncluded.Bool(),
		shipping,
		billing,
	).Scan(&snap.CreatedAt, &snap.UpdatedAt, &snap.Version)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return snap, domain.ErrAlreadyExists
		}
		return snap, err
	}

	if err := replaceLineItems(ctx, tx, snap.Token, snap.LineItems); err != nil {
		return snap, err
	}
	if err := replaceGiftCards(ctx, tx, snap.Token, snap.GiftCards); err != nil {
		return snap, err
	}
	if err := replaceAttributes(ctx, tx, snap.Token, snap.Attributes); err != nil {
		return snap, err
	}

	if err := tx.Commit(ctx); err != nil {
		return snap, err
	}
	r.logger.Debug().Str("token", snap.Token).Int("line_items", len(snap.LineItems)).Msg("checkout created")
	return snap, nil
}

func (r *postgresRepo) GetByToken(ctx context.Context, projectID, token string) (*domain.CheckoutSnapshot, error) {
	const q = `
SELECT token, COALESCE(cart_id::text, ''), currency, email, taxes_included, shipping_address, billing_address, created_at, updated_at, version
FROM checkouts
WHERE project_id = $1 AND token = $2
`
	var (
		snap              domain.CheckoutSnapshot
		taxes             *bool
		shipping, billing []byte
	)
	err := r.pool.QueryRow(ctx, q, projectID, token).Scan(
		&snap.Token,
		&snap.CartID,
		&snap.Currency,
		&snap.Email,
		&taxes,
		&shipping,
		&billing,
		&snap.CreatedAt,
		&snap.UpdatedAt,
		&snap.Version,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	snap.TaxesIncluded = domain.TaxInclusionFromBool(taxes)
	if snap.ShippingAddress, err = unmarshalAddress(shipping); err != nil {
		return nil, err
	}
	if snap.BillingAddress, err = unmarshalAddress(billing); err != nil {
		return nil, err
	}

	if snap.LineItems, err = r.lineItems(ctx, token); err != nil {
		return nil, err
	}
	if snap.GiftCards, err = r.giftCards(ctx, token); err != nil {
		return nil, err
	}
	if snap.Attributes, err = r.attributes(ctx, token); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Save only succeeds when the stored version still equals snap.Version.
func (r *postgresRepo) Save(ctx context.Context, projectID string, snap domain.CheckoutSnapshot, changes domain.ChangeSet) (time.Time, int64, error) {
	shipping, err := marshalAddress(snap.ShippingAddress)
	if err != nil {
		return time.Time{}, 0, err
	}
	billing, err := marshalAddress(snap.BillingAddress)
	if err != nil {
		return time.Time{}, 0, err
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return time.Time{}, 0, err
	}
	defer tx.Rollback(ctx)

	const q = `
UPDATE checkouts
SET cart_id = $3::uuid,
    currency = $4,
    email = $5,
    taxes_included = $6,
    shipping_address = $7::jsonb,
    billing_address = $8::jsonb,
    updated_at = GREATEST(now(), created_at),
    version = version + 1
WHERE project_id = $1 AND token = $2 AND version = $9
RETURNING updated_at, version
`
	var (
		updatedAt time.Time
		version   int64
	)
	err = tx.QueryRow(ctx, q,
		projectID,
		snap.Token,
		nullString(snap.CartID),
		snap.Currency,
		snap.Email,
		snap.TaxesIncluded.Bool(),
		shipping,
		billing,
		snap.Version,
	).Scan(&updatedAt, &version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, 0, r.missedSave(ctx, tx, projectID, snap)
		}
		return time.Time{}, 0, err
	}

	if changes.LineItems {
		if err := replaceLineItems(ctx, tx, snap.Token, snap.LineItems); err != nil {
			return time.Time{}, 0, err
		}
	}
	if changes.GiftCards {
		if err := replaceGiftCards(ctx, tx, snap.Token, snap.GiftCards); err != nil {
			return time.Time{}, 0, err
		}
	}
	if changes.Attributes {
		if err := replaceAttributes(ctx, tx, snap.Token, snap.Attributes); err != nil {
			return time.Time{}, 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return time.Time{}, 0, err
	}
	r.logger.Debug().
		Str("token", snap.Token).
		Int64("version", version).
		Bool("line_items", changes.LineItems).
		Bool("gift_cards", changes.GiftCards).
		Bool("attributes", changes.Attributes).
		Msg("checkout saved")
	return updatedAt, version, nil
}

// missedSave tells a missing checkout apart from one another writer has
// already moved past snap.Version.
func (r *postgresRepo) missedSave(ctx context.Context, tx pgx.Tx, projectID string, snap domain.CheckoutSnapshot) error {
	var current int64
	err := tx.QueryRow(ctx, `SELECT version FROM checkouts WHERE project_id = $1 AND token = $2`, projectID, snap.Token).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	r.logger.Info().
		Str("token", snap.Token).
		Int64("expected_version", snap.Version).
		Int64("current_version", current).
		Msg("stale checkout save rejected")
	return fmt.Errorf("checkout %s is at version %d, not %d: %w", snap.Token, current, snap.Version, domain.ErrConflict)
}

func (r *postgresRepo) lineItems(ctx context.Context, token string) ([]domain.LineItem, error) {
	rows, err := r.pool.Query(ctx, `
SELECT variant_id, product_id, title, price::text, quantity
FROM checkout_line_items
WHERE checkout_token = $1
ORDER BY position ASC
`, token)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.LineItem{}
	for rows.Next() {
		var (
			li    domain.LineItem
			price string
		)
		if err := rows.Scan(&li.VariantID, &li.ProductID, &li.Title, &price, &li.Quantity); err != nil {
			return nil, err
		}
		if li.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parse price %q: %w", price, err)
		}
		items = append(items, li)
	}
	return items, rows.Err()
}

func (r *postgresRepo) giftCards(ctx context.Context, token string) ([]domain.GiftCard, error) {
	rows, err := r.pool.Query(ctx, `
SELECT gift_card_id, code, last_characters, balance::text, amount_used::text
FROM checkout_gift_cards
WHERE checkout_token = $1
ORDER BY position ASC
`, token)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cards := []domain.GiftCard{}
	for rows.Next() {
		var (
			gc         domain.GiftCard
			balance    *string
			amountUsed string
		)
		if err := rows.Scan(&gc.ID, &gc.Code, &gc.LastCharacters, &balance, &amountUsed); err != nil {
			return nil, err
		}
		if balance != nil {
			b, err := decimal.NewFromString(*balance)
			if err != nil {
				return nil, fmt.Errorf("parse balance %q: %w", *balance, err)
			}
			gc.Balance = decimal.NewNullDecimal(b)
		}
		if gc.AmountUsed, err = decimal.NewFromString(amountUsed); err != nil {
			return nil, fmt.Errorf("parse amount used %q: %w", amountUsed, err)
		}
		cards = append(cards, gc)
	}
	return cards, rows.Err()
}

func (r *postgresRepo) attributes(ctx context.Context, token string) ([]domain.Attribute, error) {
	rows, err := r.pool.Query(ctx, `
SELECT name, value
FROM checkout_attributes
WHERE checkout_token = $1
ORDER BY position ASC
`, token)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attrs := []domain.Attribute{}
	for rows.Next() {
		var (
			name string
			raw  []byte
		)
		if err := rows.Scan(&name, &raw); err != nil {
			return nil, err
		}
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("decode attribute %q: %w", name, err)
		}
		attrs = append(attrs, domain.Attribute{Name: name, Value: value})
	}
	return attrs, rows.Err()
}

func replaceLineItems(ctx context.Context, tx pgx.Tx, token string, items []domain.LineItem) error {
	if _, err := tx.Exec(ctx, `DELETE FROM checkout_line_items WHERE checkout_token = $1`, token); err != nil {
		return err
	}
	batch := &pgx.Batch{}
	for i, li := range items {
		price, err := domain.FormatAmount(li.Price)
		if err != nil {
			return fmt.Errorf("line item %s: %w", li.VariantID, err)
		}
		batch.Queue(`
INSERT INTO checkout_line_items (checkout_token, position, variant_id, product_id, title, price, quantity)
VALUES ($1, $2, $3, $4, $5, $6::numeric, $7)
`, token, i, li.VariantID, li.ProductID, li.Title, price, li.Quantity)
	}
	return sendBatch(ctx, tx, batch)
}

func replaceGiftCards(ctx context.Context, tx pgx.Tx, token string, cards []domain.GiftCard) error {
	if _, err := tx.Exec(ctx, `DELETE FROM checkout_gift_cards WHERE checkout_token = $1`, token); err != nil {
		return err
	}
	batch := &pgx.Batch{}
	for i, gc := range cards {
		var balance *string
		if gc.Balance.Valid {
			s, err := domain.FormatAmount(gc.Balance.Decimal)
			if err != nil {
				return fmt.Errorf("gift card %d balance: %w", gc.ID, err)
			}
			balance = &s
		}
		used, err := domain.FormatAmount(gc.AmountUsed)
		if err != nil {
			return fmt.Errorf("gift card %d amount used: %w", gc.ID, err)
		}
		batch.Queue(`
INSERT INTO checkout_gift_cards (checkout_token, gift_card_id, position, code, last_characters, balance, amount_used)
VALUES ($1, $2, $3, $4, $5, $6::numeric, $7::numeric)
`, token, gc.ID, i, gc.Code, gc.LastCharacters, balance, used)
	}
	return sendBatch(ctx, tx, batch)
}

func replaceAttributes(ctx context.Context, tx pgx.Tx, token string, attrs []domain.Attribute) error {
	if _, err := tx.Exec(ctx, `DELETE FROM checkout_attributes WHERE checkout_token = $1`, token); err != nil {
		return err
	}
	batch := &pgx.Batch{}
	for i, a := range attrs {
		raw, err := json.Marshal(a.Value)
		if err != nil {
			return fmt.Errorf("encode attribute %q: %w", a.Name, err)
		}
		batch.Queue(`
INSERT INTO checkout_attributes (checkout_token, position, name, value)
VALUES ($1, $2, $3, $4::jsonb)
`, token, i, a.Name, string(raw))
	}
	return sendBatch(ctx, tx, batch)
}

func sendBatch(ctx context.Context, tx pgx.Tx, batch *pgx.Batch) error {
	if batch.Len() == 0 {
		return nil
	}
	return tx.SendBatch(ctx, batch).Close()
}

func marshalAddress(a *domain.Address) (*string, error) {
	if a == nil {
		return nil, nil
	}
	raw, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("encode address: %w", err)
	}
	s := string(raw)
	return &s, nil
}

func unmarshalAddress(raw []byte) (*domain.Address, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var a domain.Address
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("decode address: %w", err)
	}
	return &a, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
