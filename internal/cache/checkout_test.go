package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"storefront-checkout/internal/domain"
)

func TestCheckoutsRoundTrip(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	c := &Checkouts{store: mock, ttl: time.Minute}

	snap := domain.CheckoutSnapshot{
		Token:    "tok",
		Currency: "USD",
		LineItems: []domain.LineItem{
			{VariantID: "v1", Price: decimal.RequireFromString("9.99"), Quantity: 2},
		},
		TaxesIncluded: domain.TaxesIncluded,
		Attributes:    []domain.Attribute{{Name: "note", Value: "leave at door"}},
	}
	if err := c.Set(ctx, "p1", snap); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if mock.ttls["checkout:p1:tok"] != time.Minute {
		t.Fatalf("expected ttl to be applied, got %v", mock.ttls["checkout:p1:tok"])
	}

	got, ok, err := c.Get(ctx, "p1", "tok")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if got.TaxesIncluded != domain.TaxesIncluded {
		t.Fatalf("taxes flag lost: %v", got.TaxesIncluded)
	}
	if len(got.LineItems) != 1 || got.LineItems[0].Quantity != 2 || !got.LineItems[0].Price.Equal(decimal.RequireFromString("9.99")) {
		t.Fatalf("unexpected line items %+v", got.LineItems)
	}

	if err := c.Delete(ctx, "p1", "tok"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, ok, err := c.Get(ctx, "p1", "tok"); err != nil || ok {
		t.Fatalf("expected miss after delete, got ok=%v err=%v", ok, err)
	}
}

func TestCheckoutsSetRequiresToken(t *testing.T) {
	c := &Checkouts{store: newMockCmdable()}
	if err := c.Set(context.Background(), "p1", domain.CheckoutSnapshot{}); err == nil {
		t.Fatalf("expected error for snapshot without token")
	}
}

func TestCheckoutsCorruptEntry(t *testing.T) {
	mock := newMockCmdable()
	mock.data[Key("p1", "tok")] = "{not json"
	c := &Checkouts{store: mock}
	if _, ok, err := c.Get(context.Background(), "p1", "tok"); err == nil || ok {
		t.Fatalf("expected decode error, got ok=%v err=%v", ok, err)
	}
}

func TestCheckoutsKeepLargeIntegerAttributes(t *testing.T) {
	ctx := context.Background()
	c := &Checkouts{store: newMockCmdable(), ttl: time.Minute}
	snap := domain.CheckoutSnapshot{
		Token:      "tok",
		Currency:   "USD",
		Attributes: []domain.Attribute{{Name: "loyalty_id", Value: json.Number("9007199254740993")}},
	}
	if err := c.Set(ctx, "p1", snap); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	got, ok, err := c.Get(ctx, "p1", "tok")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	n, isNumber := got.Attributes[0].Value.(json.Number)
	if !isNumber || n.String() != "9007199254740993" {
		t.Fatalf("integer attribute lost precision: %#v", got.Attributes[0].Value)
	}
}

func TestCheckoutsSetKeepsNewerVersion(t *testing.T) {
	ctx := context.Background()
	c := &Checkouts{store: newMockCmdable(), ttl: time.Minute}

	newer := domain.CheckoutSnapshot{Token: "tok", Currency: "USD", Email: "new@example.com", Version: 3}
	if err := c.Set(ctx, "p1", newer); err != nil {
		t.Fatalf("set newer: %v", err)
	}
	older := domain.CheckoutSnapshot{Token: "tok", Currency: "USD", Email: "old@example.com", Version: 2}
	if err := c.Set(ctx, "p1", older); err != nil {
		t.Fatalf("set older: %v", err)
	}
	got, ok, err := c.Get(ctx, "p1", "tok")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if got.Version != 3 || got.Email != "new@example.com" {
		t.Fatalf("older snapshot replaced a newer one: %+v", got)
	}

	newest := domain.CheckoutSnapshot{Token: "tok", Currency: "USD", Email: "newest@example.com", Version: 4}
	if err := c.Set(ctx, "p1", newest); err != nil {
		t.Fatalf("set newest: %v", err)
	}
	if got, _, _ := c.Get(ctx, "p1", "tok"); got.Version != 4 {
		t.Fatalf("expected version 4, got %+v", got)
	}
}

func TestKey(t *testing.T) {
	if got := Key("p1", "abc"); got != "checkout:p1:abc" {
		t.Fatalf("unexpected key %s", got)
	}
}

type mockCmdable struct {
	data map[string]string
	ttls map[string]time.Duration
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		data: make(map[string]string),
		ttls: make(map[string]time.Duration),
	}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

// Eval mirrors setIfNewer, the only script the cache runs.
func (m *mockCmdable) Eval(_ context.Context, script string, keys []string, args ...any) *redis.Cmd {
	if script != setIfNewer || len(keys) != 1 || len(args) != 3 {
		return redis.NewCmdResult(nil, fmt.Errorf("unexpected script call %v %v", keys, args))
	}
	key := keys[0]
	version, ttl := args[1].(int64), args[2].(int64)
	if current, ok := m.data[key]; ok {
		var doc struct {
			Version int64 `json:"version"`
		}
		if json.Unmarshal([]byte(current), &doc) == nil && doc.Version > version {
			return redis.NewCmdResult(int64(0), nil)
		}
	}
	m.data[key] = fmt.Sprint(args[0])
	m.ttls[key] = time.Duration(ttl) * time.Millisecond
	return redis.NewCmdResult(int64(1), nil)
}

func (m *mockCmdable) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}
