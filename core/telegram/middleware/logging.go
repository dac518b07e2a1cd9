package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/bookingbot/core/logger"
	"github.com/m3rciful/bookingbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/bookingbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// seenUpdates remembers recently logged update ids so nested chains log once.
type seenUpdates struct {
	mu   sync.Mutex
	ids  map[int]time.Time
	keep time.Duration
}

var recent = &seenUpdates{ids: make(map[int]time.Time), keep: 10 * time.Second}

func (s *seenUpdates) firstTime(id int, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, ts := range s.ids {
		if now.Sub(ts) > s.keep {
			delete(s.ids, k)
		}
	}
	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = now
	return true
}

// LoggerMiddleware assigns the request id, caches the request context and
// logs one sampled receipt line per update.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		upd := c.Update()
		var chatID int64
		if chat := c.Chat(); chat != nil {
			chatID = chat.ID
		}
		userID := tghelpers.SenderID(c)

		if _, ok := tghelpers.ContextFrom(c); !ok {
			rid := logger.BuildRID(upd.ID, chatID, userID)
			c.Set("rid", rid)
			ctx := logger.WithRID(logger.Background(), rid)
			ctx = logger.WithUpdateMeta(ctx, upd.ID, userID, chatID)
			tghelpers.StoreContext(c, logger.WithLogger(ctx, logger.TG))
		}

		if logger.ShouldSampleDebug() && recent.firstTime(upd.ID, time.Now()) {
			logger.Debug(tghelpers.BuildContext(c), "tg", "update.received", receiptAttrs(c, upd)...)
		}
		return next(c)
	}
}

func receiptAttrs(c tele.Context, upd tele.Update) []slog.Attr {
	attrs := []slog.Attr{slog.String("status", "ok")}
	if u := c.Sender(); u != nil {
		if u.Username != "" {
			attrs = append(attrs, slog.String("username", logger.SanitizeLimit(u.Username, 64)))
		}
		if u.LanguageCode != "" {
			attrs = append(attrs, slog.String("lang", u.LanguageCode))
		}
	}
	switch {
	case upd.Callback != nil:
		key, payload := callbacks.Parse(upd.Callback)
		attrs = append(attrs,
			slog.String("cb_key", logger.SanitizeLimit(key, 64)),
			slog.String("payload", logger.SanitizeLimit(payload, 128)),
		)
	case upd.Message != nil:
		attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(c.Text(), 256)))
	}
	return attrs
}
