package router

import (
	"log/slog"

	tg "github.com/m3rciful/bookingbot/core/telegram"
	"github.com/m3rciful/bookingbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/bookingbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// CallbackRoute returns the OnCallback route dispatching by unique key.
// Queries the handler did not answer are answered empty afterwards.
func CallbackRoute(reg *tg.Registry) tg.Route {
	handler := func(c tele.Context) error {
		if c.Callback() == nil {
			return nil
		}
		key, _ := callbacks.Parse(c.Callback())
		extras := []slog.Attr{slog.String("cb_key", key)}

		h, ok := reg.GetCallback(key)
		if !ok {
			h = reg.CallbackNotFound()
			extras = append(extras, slog.String("reason", "not_found"))
		}
		err := handleWithSummary(c, "callback."+normalizeHandlerName(key), h, extras...)
		if !tghelpers.Answered(c) {
			_ = c.Respond()
		}
		return err
	}
	return tg.Route{Endpoint: tele.OnCallback, Handler: handler}
}
