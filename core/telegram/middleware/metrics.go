package middleware

import (
	"log/slog"
	"time"

	"github.com/m3rciful/bookingbot/core/logger"
	tghelpers "github.com/m3rciful/bookingbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// MessageMetricsMiddleware resets the reply counters for the update and logs
// how many replies it produced and how long it took.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		tghelpers.ResetCounters(c)
		start := time.Now()
		err := next(c)
		if logger.ShouldSampleDebug() {
			msgs, kb := tghelpers.Counters(c)
			logger.Debug(tghelpers.BuildContext(c), "tg", "update.done",
				slog.Int("messages", msgs),
				slog.Bool("kb", kb),
				slog.Duration("duration", time.Since(start)),
			)
		}
		return err
	}
}
