package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/m3rciful/bookingbot/core/logger"
	"github.com/m3rciful/bookingbot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var dispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher installs the dispatcher used by the send helpers. nil sends inline.
func SetDispatcher(d *sender.Dispatcher) {
	dispatcher.Store(d)
}

func enqueue(c tele.Context, action, endpoint string, run func() error) error {
	d := dispatcher.Load()
	if d == nil {
		return run()
	}
	ctx := BuildContext(c)
	err := d.Enqueue(ctx, action, endpoint, run)
	if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
		logger.Warn(ctx, "tg.sender", "queue.fallback",
			slog.String("action", action),
			slog.String("err", err.Error()),
		)
		return run()
	}
	return err
}

const (
	keyMessages = "messages"
	keyKeyboard = "kb"
)

// ResetCounters zeroes the per-update reply counters.
func ResetCounters(c tele.Context) {
	c.Set(keyMessages, 0)
	c.Set(keyKeyboard, false)
}

// Counters returns how many replies the update produced and whether any
// carried a keyboard.
func Counters(c tele.Context) (int, bool) {
	n, _ := c.Get(keyMessages).(int)
	kb, _ := c.Get(keyKeyboard).(bool)
	return n, kb
}

func noteReply(c tele.Context, markup []*tele.ReplyMarkup) {
	n, _ := c.Get(keyMessages).(int)
	c.Set(keyMessages, n+1)
	if len(markup) > 0 && markup[0] != nil {
		c.Set(keyKeyboard, true)
	}
}

func markdown(markup []*tele.ReplyMarkup) *tele.SendOptions {
	opts := &tele.SendOptions{ParseMode: tele.ModeMarkdown, DisableWebPagePreview: true}
	if len(markup) > 0 {
		opts.ReplyMarkup = markup[0]
	}
	return opts
}

// SendText sends plain text to the chat of the update.
func SendText(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	opts := &tele.SendOptions{}
	if len(markup) > 0 {
		opts.ReplyMarkup = markup[0]
	}
	noteReply(c, markup)
	return enqueue(c, "send.text", "sendMessage", func() error {
		return c.Send(text, opts)
	})
}

// SendMD sends Markdown text with an optional keyboard.
func SendMD(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	opts := markdown(markup)
	noteReply(c, markup)
	return enqueue(c, "send.md", "sendMessage", func() error {
		return c.Send(text, opts)
	})
}

// EditOrSendMD replaces the message behind a callback or sends a new one.
func EditOrSendMD(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	opts := markdown(markup)
	noteReply(c, markup)
	return enqueue(c, "edit.md", "editMessageText", func() error {
		return c.EditOrSend(text, opts)
	})
}

const keyAnswered = "cb_answered"

// Ack answers a callback query so the client stops its spinner. Text is
// shown as a toast when non-empty.
func Ack(c tele.Context, text string) error {
	if c.Callback() == nil || Answered(c) {
		return nil
	}
	c.Set(keyAnswered, true)
	return c.Respond(&tele.CallbackResponse{Text: text})
}

// Answered reports whether Ack already answered the current callback.
func Answered(c tele.Context) bool {
	done, _ := c.Get(keyAnswered).(bool)
	return done
}
