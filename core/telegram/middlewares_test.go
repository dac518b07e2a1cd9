package telegram

import (
	"testing"
	"time"

	coreconfig "github.com/m3rciful/bookingbot/core/config"
)

func middlewareNames(mws []Middleware) []string {
	names := make([]string, len(mws))
	for i, mw := range mws {
		names[i] = mw.Name
	}
	return names
}

func TestDefaultMiddlewaresWithoutRateLimit(t *testing.T) {
	got := middlewareNames(DefaultMiddlewares(&coreconfig.Config{}, nil))
	want := []string{"recover", "logger", "metrics"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestDefaultMiddlewaresWithRateLimit(t *testing.T) {
	cfg := &coreconfig.Config{RateLimit: coreconfig.RateLimitConfig{Interval: 500 * time.Millisecond, Burst: 3}}
	got := middlewareNames(DefaultMiddlewares(cfg, nil))
	if len(got) != 4 || got[1] != "rate_limit" {
		t.Fatalf("unexpected chain %v", got)
	}
}
