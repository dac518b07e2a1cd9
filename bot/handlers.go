package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/m3rciful/bookingbot/booking"
	"github.com/m3rciful/bookingbot/booking/dialog"
	"github.com/m3rciful/bookingbot/core/logger"
	"github.com/m3rciful/bookingbot/core/telegram/callbacks"
	"github.com/m3rciful/bookingbot/core/telegram/format"
	tghelpers "github.com/m3rciful/bookingbot/core/telegram/helpers"
	"github.com/m3rciful/bookingbot/core/telegram/router"

	tele "gopkg.in/telebot.v4"
)

// dialogMachine is the part of dialog.Machine the handlers use.
type dialogMachine interface {
	Handle(ctx context.Context, user dialog.UserIdentified, ev dialog.Event) (dialog.Outcome, error)
	InProgress(userID int64) bool
}

type slotBoard interface {
	All(ctx context.Context) ([]booking.Slot, error)
}

type handlers struct {
	machine dialogMachine
	slots   slotBoard
}

func identify(c tele.Context) dialog.UserIdentified {
	u := c.Sender()
	if u == nil {
		return dialog.UserIdentified{}
	}
	return dialog.UserIdentified{
		ExternalID:  u.ID,
		DisplayName: strings.TrimSpace(u.FirstName + " " + u.LastName),
		Handle:      u.Username,
	}
}

// run feeds ev to the machine and sends the rendered outcome. Storage
// errors are answered with a generic text and returned for the handler
// summary log.
func (h *handlers) run(c tele.Context, ev dialog.Event) error {
	ctx := tghelpers.BuildContext(c)
	out, err := h.machine.Handle(ctx, identify(c), ev)
	if out == nil {
		if err == nil {
			return nil
		}
		if errors.Is(err, booking.ErrValidation) {
			router.SetOutcome(c, "skip")
			return nil
		}
		out = dialog.Result{Kind: dialog.StorageError}
	}
	router.SetOutcome(c, outcomeLabel(out))
	if sendErr := h.send(c, render(out)); sendErr != nil && err == nil {
		err = sendErr
	}
	return err
}

func (h *handlers) send(c tele.Context, r reply) error {
	if r.Text == "" {
		return nil
	}
	if c.Callback() != nil {
		if err := tghelpers.Ack(c, r.Toast); err != nil {
			logger.Debug(tghelpers.BuildContext(c), logger.CompBot, "callback.ack",
				slog.String("status", "fail"),
				slog.String("err", err.Error()),
			)
		}
		if r.Markup != nil {
			return tghelpers.EditOrSendMD(c, r.Text, r.Markup)
		}
		return tghelpers.EditOrSendMD(c, r.Text)
	}
	if r.Markup != nil {
		return tghelpers.SendMD(c, r.Text, r.Markup)
	}
	return tghelpers.SendMD(c, r.Text)
}

func (h *handlers) start(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	user := identify(c)
	out, err := h.machine.Handle(ctx, user, user)
	if errors.Is(err, booking.ErrValidation) {
		router.SetOutcome(c, "skip")
		return nil
	}
	if err != nil {
		router.SetOutcome(c, "storage")
		_ = h.send(c, reply{Text: txtStorage})
		return err
	}
	if _, ok := out.(dialog.Registered); !ok {
		return nil
	}
	name := user.DisplayName
	if name == "" {
		name = "there"
	}
	return tghelpers.SendMD(c, fmt.Sprintf(txtWelcome, format.MD(name)), mainMenu())
}

func (h *handlers) help(c tele.Context) error {
	return tghelpers.SendMD(c, txtHelp, mainMenu())
}

func (h *handlers) book(c tele.Context) error {
	return h.run(c, dialog.StartBooking{})
}

func (h *handlers) mine(c tele.Context) error {
	return h.run(c, dialog.ShowAppointments{})
}

func (h *handlers) release(c tele.Context) error {
	return h.run(c, dialog.StartCancel{})
}

func (h *handlers) abort(c tele.Context) error {
	return h.run(c, dialog.Abort{})
}

// board is the admin-only overview of every slot.
func (h *handlers) board(c tele.Context) error {
	slots, err := h.slots.All(tghelpers.BuildContext(c))
	if err != nil {
		router.SetOutcome(c, "storage")
		_ = tghelpers.SendMD(c, txtStorage)
		return err
	}
	router.SetOutcome(c, "listed")
	return tghelpers.SendText(c, renderBoard(slots))
}

func (h *handlers) onDay(c tele.Context) error {
	token, value, err := callbacks.Pair(callbacks.Payload(c))
	if err != nil {
		return h.malformed(c)
	}
	return h.run(c, dialog.DaySelected{Token: token, Day: parseDay(value)})
}

func (h *handlers) onTime(c tele.Context) error {
	token, value, err := callbacks.Pair(callbacks.Payload(c))
	if err != nil {
		return h.malformed(c)
	}
	at, err := booking.ParseClock(value)
	if err != nil {
		at = -1
	}
	return h.run(c, dialog.TimeSelected{Token: token, Time: at})
}

func (h *handlers) onConfirm(c tele.Context) error {
	token, value, err := callbacks.Pair(callbacks.Payload(c))
	if err != nil || (value != answerYes && value != answerNo) {
		return h.malformed(c)
	}
	return h.run(c, dialog.Confirmed{Token: token, Yes: value == answerYes})
}

func (h *handlers) onRelease(c tele.Context) error {
	token, index, err := callbacks.PairInt(callbacks.Payload(c))
	if err != nil {
		return h.malformed(c)
	}
	return h.run(c, dialog.CancelTargetSelected{Token: token, Index: index})
}

func (h *handlers) onAbort(c tele.Context) error {
	token := callbacks.Payload(c)
	if token == "" {
		return h.malformed(c)
	}
	return h.run(c, dialog.Abort{Token: token})
}

func (h *handlers) malformed(c tele.Context) error {
	router.SetOutcome(c, "skip")
	return tghelpers.Ack(c, txtUnknownBtn)
}

// conversation routes free text to the machine while a dialog is open.
type conversation struct {
	h *handlers
}

func (cv conversation) InProgress(userID int64) bool {
	return cv.h.machine.InProgress(userID)
}

func (cv conversation) HandleText(c tele.Context) error {
	return cv.h.run(c, dialog.Text{Body: c.Text()})
}

// parseDay accepts the numeric form used in keyboards and day names.
// Unknown values become the zero Day, which the machine rejects.
func parseDay(v string) booking.Day {
	d, err := booking.ParseDay(v)
	if err != nil {
		return 0
	}
	return d
}
