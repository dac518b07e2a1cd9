// Package rediscache keeps per-day availability lists in Redis so that
// repeated day prompts skip the database.
package rediscache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/m3rciful/bookingbot/booking"
)

const (
	defaultTTL    = 30 * time.Second
	defaultPrefix = "slots:avail:"
)

// commander is the subset of redis.Cmdable the cache uses.
type commander interface {
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

// Config describes the Redis connection. An empty URL disables the cache.
type Config struct {
	URL    string        `yaml:"url" envconfig:"REDIS_URL"`
	TTL    time.Duration `yaml:"ttl" envconfig:"REDIS_TTL"`
	Prefix string        `yaml:"prefix" envconfig:"REDIS_PREFIX"`
}

// Enabled reports whether a Redis URL is configured.
func (c Config) Enabled() bool {
	return c.URL != ""
}

// Cache implements booking.AvailabilityCache.
type Cache struct {
	client commander
	closer func() error
	ttl    time.Duration
	prefix string
}

var _ booking.AvailabilityCache = (*Cache)(nil)

// Open connects to cfg.URL and pings it.
func Open(ctx context.Context, cfg Config) (*Cache, error) {
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	c := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := c.Ping(pingCtx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	cache := newCache(c, cfg.TTL, cfg.Prefix)
	cache.closer = c.Close
	return cache, nil
}

func newCache(c commander, ttl time.Duration, prefix string) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Cache{client: c, ttl: ttl, prefix: prefix}
}

func (c *Cache) key(day booking.Day) string {
	return fmt.Sprintf("%s%d", c.prefix, int(day))
}

// genKey holds the day's generation. It has no expiry so an advanced
// generation outlives any list written under an older one.
func (c *Cache) genKey(day booking.Day) string {
	return fmt.Sprintf("%sgen:%d", c.prefix, int(day))
}

// entry is the stored form of a day list.
type entry struct {
	Gen    uint64          `json:"gen"`
	Starts []booking.Clock `json:"starts"`
}

// Get returns the cached starts of day together with the current
// generation. A list written under an older generation counts as a miss.
func (c *Cache) Get(ctx context.Context, day booking.Day) ([]booking.Clock, uint64, bool, error) {
	vals, err := c.client.MGet(ctx, c.key(day), c.genKey(day)).Result()
	if err != nil {
		return nil, 0, false, fmt.Errorf("redis get: %w", err)
	}
	if len(vals) != 2 {
		return nil, 0, false, fmt.Errorf("redis get: %d values for 2 keys", len(vals))
	}
	var gen uint64
	if raw, ok := vals[1].(string); ok {
		if gen, err = strconv.ParseUint(raw, 10, 64); err != nil {
			return nil, 0, false, fmt.Errorf("redis get: generation %q: %w", raw, err)
		}
	}
	raw, ok := vals[0].(string)
	if !ok {
		return nil, gen, false, nil
	}
	var e entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return nil, gen, false, fmt.Errorf("redis get: decode: %w", err)
	}
	if e.Gen != gen {
		return nil, gen, false, nil
	}
	if e.Starts == nil {
		e.Starts = []booking.Clock{}
	}
	return e.Starts, gen, true, nil
}

// Set stores starts as the list of generation gen.
func (c *Cache) Set(ctx context.Context, day booking.Day, gen uint64, starts []booking.Clock) error {
	if starts == nil {
		starts = []booking.Clock{}
	}
	raw, err := json.Marshal(entry{Gen: gen, Starts: starts})
	if err != nil {
		return fmt.Errorf("redis set: encode: %w", err)
	}
	if err := c.client.Set(ctx, c.key(day), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Invalidate advances the generation of day, then drops its list.
func (c *Cache) Invalidate(ctx context.Context, day booking.Day) error {
	if err := c.client.Incr(ctx, c.genKey(day)).Err(); err != nil {
		return fmt.Errorf("redis incr: %w", err)
	}
	if err := c.client.Del(ctx, c.key(day)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Ping checks connectivity, for readiness probes.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (c *Cache) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}
