// Package ui holds reply texts shared by every bot built on the core.
package ui

import (
	tghelpers "github.com/m3rciful/bookingbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// FallbackProvider supplies handlers for updates nothing else claimed.
type FallbackProvider interface {
	UnknownText() tele.HandlerFunc
	UnknownCallback() tele.HandlerFunc
}

// Static is a FallbackProvider answering with fixed texts.
type Static struct {
	Text     string
	Callback string
}

// UnknownText replies with s.Text.
func (s Static) UnknownText() tele.HandlerFunc {
	return func(c tele.Context) error {
		if s.Text == "" {
			return nil
		}
		return tghelpers.SendText(c, s.Text)
	}
}

// UnknownCallback answers the query with s.Callback as a toast.
func (s Static) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.Ack(c, s.Callback)
	}
}
