package rediscache

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/m3rciful/bookingbot/booking"
)

type fakeRedis struct {
	data    map[string]string
	ttls    map[string]time.Duration
	failGet error
}

func newFake() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) MGet(_ context.Context, keys ...string) *redis.SliceCmd {
	if f.failGet != nil {
		return redis.NewSliceResult(nil, f.failGet)
	}
	vals := make([]any, len(keys))
	for i, k := range keys {
		if v, ok := f.data[k]; ok {
			vals[i] = v
		}
	}
	return redis.NewSliceResult(vals, nil)
}

func (f *fakeRedis) Incr(_ context.Context, key string) *redis.IntCmd {
	n, _ := strconv.ParseInt(f.data[key], 10, 64)
	n++
	f.data[key] = strconv.FormatInt(n, 10)
	return redis.NewIntResult(n, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	f.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeRedis) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func TestCacheRoundTrip(t *testing.T) {
	fake := newFake()
	c := newCache(fake, time.Minute, "")
	ctx := context.Background()

	_, gen, ok, err := c.Get(ctx, booking.Tuesday)
	if ok || err != nil || gen != 0 {
		t.Fatalf("expected miss at gen 0, got ok=%v gen=%d err=%v", ok, gen, err)
	}

	starts := []booking.Clock{booking.MustClock("09:00"), booking.MustClock("13:00")}
	if err := c.Set(ctx, booking.Tuesday, gen, starts); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if fake.ttls["slots:avail:2"] != time.Minute {
		t.Fatalf("ttl = %v", fake.ttls["slots:avail:2"])
	}

	got, _, ok, err := c.Get(ctx, booking.Tuesday)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if len(got) != 2 || got[0] != starts[0] || got[1] != starts[1] {
		t.Fatalf("got %v", got)
	}

	if err := c.Invalidate(ctx, booking.Tuesday); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, gen, ok, _ := c.Get(ctx, booking.Tuesday); ok || gen != 1 {
		t.Fatalf("expected miss at gen 1 after invalidate, got ok=%v gen=%d", ok, gen)
	}
}

func TestCacheRejectsListFromOlderGeneration(t *testing.T) {
	c := newCache(newFake(), 0, "")
	ctx := context.Background()

	// a reader misses and goes to the store
	_, seen, _, _ := c.Get(ctx, booking.Monday)
	stale := []booking.Clock{booking.MustClock("09:00"), booking.MustClock("10:00")}

	// a booking commits and invalidates before the reader writes back
	if err := c.Invalidate(ctx, booking.Monday); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if err := c.Set(ctx, booking.Monday, seen, stale); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if got, gen, ok, err := c.Get(ctx, booking.Monday); ok || err != nil {
		t.Fatalf("stale list served: %v gen=%d err=%v", got, gen, err)
	}
}

func TestCacheStoresEmptyDay(t *testing.T) {
	c := newCache(newFake(), 0, "test:")
	ctx := context.Background()
	if err := c.Set(ctx, booking.Friday, 0, nil); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, _, ok, err := c.Get(ctx, booking.Friday)
	if err != nil || !ok || got == nil || len(got) != 0 {
		t.Fatalf("Get = %v, %v, %v", got, ok, err)
	}
	if c.ttl != defaultTTL {
		t.Fatalf("ttl = %v", c.ttl)
	}
}

func TestCacheGetErrorIsReported(t *testing.T) {
	fake := newFake()
	fake.failGet = errors.New("connection reset")
	c := newCache(fake, 0, "")
	if _, _, ok, err := c.Get(context.Background(), booking.Monday); err == nil || ok {
		t.Fatalf("expected error, got ok=%v err=%v", ok, err)
	}
}

func TestCacheBadGenerationIsReported(t *testing.T) {
	fake := newFake()
	fake.data["slots:avail:gen:1"] = "not-a-number"
	c := newCache(fake, 0, "")
	if _, _, _, err := c.Get(context.Background(), booking.Monday); err == nil {
		t.Fatalf("expected error")
	}
}
