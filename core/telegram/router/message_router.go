package router

import (
	tg "github.com/m3rciful/bookingbot/core/telegram"
	tghelpers "github.com/m3rciful/bookingbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// Conversation receives free text while a user is inside a dialog.
type Conversation interface {
	InProgress(userID int64) bool
	HandleText(c tele.Context) error
}

// TextOptions controls text routing.
type TextOptions struct {
	Commands     CommandRouteOptions
	Conversation Conversation
}

// TextRoutes builds the OnText route. Commands and menu labels win over an
// open conversation, so "/cancel" or a menu button always works mid-dialog.
// Anything left goes to the registry text fallback.
func TextRoutes(reg *tg.Registry, opts TextOptions) []tg.Route {
	handler := func(c tele.Context) error {
		if reg != nil {
			if name, cmd, ok := reg.LookupCommand(c.Text()); ok {
				return wrapCommand(name, cmd, opts.Commands)(c)
			}
		}
		if conv := opts.Conversation; conv != nil && conv.InProgress(tghelpers.SenderID(c)) {
			return handleWithSummary(c, "conversation", conv.HandleText)
		}
		if reg != nil {
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "unknown_text", fb)
			}
		}
		SetOutcome(c, "skip")
		return handleWithSummary(c, "unknown_text", func(tele.Context) error { return nil })
	}
	return []tg.Route{{Endpoint: tele.OnText, Handler: handler}}
}
