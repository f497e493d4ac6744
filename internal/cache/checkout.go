package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"storefront-checkout/internal/config"
	"storefront-checkout/internal/domain"
)

const keyNamespace = "checkout"

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	Del(context.Context, ...string) *redis.IntCmd
	Eval(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd
}

// setIfNewer writes ARGV[1] unless the cached entry already holds a higher
// version. ARGV[2] is the incoming version, ARGV[3] the TTL in milliseconds.
const setIfNewer = `
local current = redis.call('GET', KEYS[1])
if current then
  local ok, doc = pcall(cjson.decode, current)
  if ok and type(doc) == 'table' then
    local cached = tonumber(doc['version'])
    if cached and cached > tonumber(ARGV[2]) then
      return 0
    end
  end
end
if tonumber(ARGV[3]) > 0 then
  redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
else
  redis.call('SET', KEYS[1], ARGV[1])
end
return 1
`

// Checkouts stores checkout snapshots in Redis, keyed by project and token.
type Checkouts struct {
	store cmdable
	raw   *redis.Client
	ttl   time.Duration
}

// New connects to Redis and verifies connectivity.
func New(ctx context.Context, cfg config.RedisConfig) (*Checkouts, error) {
	if !cfg.Enabled() {
		return nil, errors.New("redis address is required")
	}
	raw := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Checkouts{store: raw, raw: raw, ttl: cfg.TTL}, nil
}

// Key returns the cache key of a checkout.
func Key(projectID, token string) string {
	return strings.Join([]string{keyNamespace, projectID, token}, ":")
}

// Get returns the cached snapshot. The boolean is false on a miss.
func (c *Checkouts) Get(ctx context.Context, projectID, token string) (*domain.CheckoutSnapshot, bool, error) {
	raw, err := c.store.Get(ctx, Key(projectID, token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	// Attribute values are untyped; keep integers exact instead of float64.
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var snap domain.CheckoutSnapshot
	if err := dec.Decode(&snap); err != nil {
		return nil, false, fmt.Errorf("decode cached checkout: %w", err)
	}
	return &snap, true, nil
}

// Set caches snap unless a newer version of the same checkout is already
// cached, so a slow reader cannot overwrite a fresher write.
func (c *Checkouts) Set(ctx context.Context, projectID string, snap domain.CheckoutSnapshot) error {
	if snap.Token == "" {
		return fmt.Errorf("checkout token required: %w", domain.ErrInvalidArgument)
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode checkout: %w", err)
	}
	return c.store.Eval(ctx, setIfNewer, []string{Key(projectID, snap.Token)}, string(raw), snap.Version, c.ttl.Milliseconds()).Err()
}

func (c *Checkouts) Delete(ctx context.Context, projectID, token string) error {
	return c.store.Del(ctx, Key(projectID, token)).Err()
}

// Ping checks the connection for the readiness endpoint.
func (c *Checkouts) Ping(ctx context.Context) error {
	return c.store.Ping(ctx).Err()
}

func (c *Checkouts) Close() error {
	if c.raw == nil {
		return nil
	}
	return c.raw.Close()
}
