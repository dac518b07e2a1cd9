package middleware

import (
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/m3rciful/bookingbot/core/logger"
	tghelpers "github.com/m3rciful/bookingbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// RateLimitOptions configures the per-user token bucket.
type RateLimitOptions struct {
	// Interval is the refill period of one token.
	Interval time.Duration
	Burst    int
	// Exclude lists update kinds ("callback", "message") that are never limited.
	Exclude   map[string]struct{}
	OnLimited tele.HandlerFunc
	// IdleTTL drops limiters of users silent for that long.
	IdleTTL time.Duration
}

type userLimiter struct {
	lim  *rate.Limiter
	seen time.Time
}

// Limiter holds one token bucket per user.
type Limiter struct {
	opts  RateLimitOptions
	mu    sync.Mutex
	users map[int64]*userLimiter
	last  time.Time
}

// NewLimiter returns a limiter with defaults filled in.
func NewLimiter(opts RateLimitOptions) *Limiter {
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = 10 * time.Minute
	}
	return &Limiter{opts: opts, users: make(map[int64]*userLimiter)}
}

// Allow reports whether userID may proceed at now.
func (l *Limiter) Allow(userID int64, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if now.Sub(l.last) > l.opts.IdleTTL {
		for id, u := range l.users {
			if now.Sub(u.seen) > l.opts.IdleTTL {
				delete(l.users, id)
			}
		}
		l.last = now
	}
	u, ok := l.users[userID]
	if !ok {
		u = &userLimiter{lim: rate.NewLimiter(rate.Every(l.opts.Interval), l.opts.Burst)}
		l.users[userID] = u
	}
	u.seen = now
	return u.lim.AllowN(now, 1)
}

// Size reports the number of tracked users.
func (l *Limiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.users)
}

// Middleware drops updates of users who exceeded their budget.
func (l *Limiter) Middleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		uid := tghelpers.SenderID(c)
		if uid == 0 || l.opts.Interval <= 0 {
			return next(c)
		}
		if _, skip := l.opts.Exclude[updateKind(c.Update())]; skip {
			return next(c)
		}
		if l.Allow(uid, time.Now()) {
			return next(c)
		}
		logger.Warn(tghelpers.BuildContext(c), "tg", "tg.rate_limit",
			slog.Int64("user_id", uid),
		)
		if l.opts.OnLimited != nil {
			_ = l.opts.OnLimited(c)
		}
		return nil
	}
}

// RateLimitMiddleware builds a fresh Limiter and returns its middleware.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	return NewLimiter(opts).Middleware
}

func updateKind(upd tele.Update) string {
	switch {
	case upd.Callback != nil:
		return "callback"
	case upd.Message != nil:
		return "message"
	}
	return "other"
}
