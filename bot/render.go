package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/m3rciful/bookingbot/booking"
	"github.com/m3rciful/bookingbot/booking/dialog"
	"github.com/m3rciful/bookingbot/core/telegram/callbacks"
	"github.com/m3rciful/bookingbot/core/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

// Callback keys of the dialog keyboards.
const (
	cbDay     = "bk_day"
	cbTime    = "bk_time"
	cbConfirm = "bk_confirm"
	cbRelease = "bk_release"
	cbAbort   = "bk_abort"
)

const (
	answerYes = "yes"
	answerNo  = "no"
)

// reply is a rendered outcome. Toast is only used for callbacks.
type reply struct {
	Text   string
	Markup *tele.ReplyMarkup
	Toast  string
}

func mainMenu() *tele.ReplyMarkup {
	return keyboard.ReplyButtons(
		[]string{btnBook, btnMine},
		[]string{btnRelease, btnInfo},
	)
}

func render(out dialog.Outcome) reply {
	switch o := out.(type) {
	case dialog.PromptDays:
		btns := make([]keyboard.InlineBtn, 0, len(o.Days))
		for _, d := range o.Days {
			btns = append(btns, keyboard.InlineBtn{
				Text:   d.String(),
				Unique: cbDay,
				Data:   callbacks.Join(o.Token, strconv.Itoa(int(d))),
			})
		}
		return reply{Text: txtChooseDay, Markup: keyboard.Grid(btns, 2, abortRow(o.Token))}
	case dialog.PromptTimes:
		btns := make([]keyboard.InlineBtn, 0, len(o.Times))
		for _, t := range o.Times {
			btns = append(btns, keyboard.InlineBtn{
				Text:   t.String(),
				Unique: cbTime,
				Data:   callbacks.Join(o.Token, t.String()),
			})
		}
		return reply{
			Text:   fmt.Sprintf(txtChooseTime, o.Day),
			Markup: keyboard.Grid(btns, 3, abortRow(o.Token)),
		}
	case dialog.PromptConfirm:
		return reply{
			Text: fmt.Sprintf(txtConfirm, slotRange(o.Day, o.Start, o.End)),
			Markup: keyboard.Inline([]keyboard.InlineBtn{
				{Text: btnYes, Unique: cbConfirm, Data: callbacks.Join(o.Token, answerYes)},
				{Text: btnNo, Unique: cbConfirm, Data: callbacks.Join(o.Token, answerNo)},
			}),
		}
	case dialog.AppointmentList:
		return renderList(o)
	case dialog.Result:
		return reply{Text: resultText(o)}
	case dialog.Reprompt:
		return renderReprompt(o)
	}
	return reply{}
}

func renderList(o dialog.AppointmentList) reply {
	if len(o.Entries) == 0 {
		return reply{Text: txtNoAppts}
	}
	if !o.Selectable {
		var b strings.Builder
		b.WriteString(txtYourList)
		for i, e := range o.Entries {
			fmt.Fprintf(&b, "%d. %s\n", i+1, e.Range())
		}
		return reply{Text: strings.TrimRight(b.String(), "\n")}
	}
	rows := make([][]keyboard.InlineBtn, 0, len(o.Entries)+1)
	for i, e := range o.Entries {
		rows = append(rows, []keyboard.InlineBtn{{
			Text:   e.Range(),
			Unique: cbRelease,
			Data:   callbacks.Join(o.Token, strconv.Itoa(i)),
		}})
	}
	rows = append(rows, abortRow(o.Token))
	return reply{Text: txtChooseRelease, Markup: keyboard.Inline(rows...)}
}

func resultText(r dialog.Result) string {
	switch r.Kind {
	case dialog.Booked:
		return fmt.Sprintf(txtBooked, slotRange(r.Day, r.Start, r.End))
	case dialog.SlotTaken:
		return txtSlotTaken
	case dialog.NoSlotsAvailable:
		return fmt.Sprintf(txtNoSlots, r.Day)
	case dialog.Cancelled:
		return txtCancelled
	case dialog.Released:
		return fmt.Sprintf(txtReleased, slotRange(r.Day, r.Start, r.End))
	case dialog.NotFound:
		return txtNotFound
	case dialog.OwnershipError:
		return txtForbidden
	}
	return txtStorage
}

func renderReprompt(o dialog.Reprompt) reply {
	if o.Prompt == nil {
		return reply{Text: txtNoSession, Toast: toastExpired}
	}
	r := render(o.Prompt)
	switch o.Reason {
	case dialog.ReasonStaleToken:
		r.Toast = toastStale
	case dialog.ReasonUnexpected:
		r.Toast = toastUnexpected
	case dialog.ReasonSlotGone:
		r.Toast = toastSlotGone
		r.Text = txtSlotGone + "\n\n" + r.Text
	case dialog.ReasonText:
		r.Text = txtUseButtons + "\n\n" + r.Text
	default:
		r.Toast = toastInvalid
		r.Text = txtInvalidChoice + "\n\n" + r.Text
	}
	return r
}

func renderBoard(slots []booking.Slot) string {
	if len(slots) == 0 {
		return txtBoardEmpty
	}
	var b strings.Builder
	b.WriteString(txtBoard)
	for _, s := range slots {
		status := txtBoardFree
		if !s.Available {
			status = txtBoardTaken
		}
		fmt.Fprintf(&b, "🗓 %s: %s-%s | %s\n", s.Day, s.Start, s.End, status)
	}
	return strings.TrimRight(b.String(), "\n")
}

// outcomeLabel maps an outcome onto the handler summary vocabulary.
func outcomeLabel(out dialog.Outcome) string {
	switch o := out.(type) {
	case dialog.PromptDays, dialog.PromptTimes, dialog.PromptConfirm:
		return "prompted"
	case dialog.AppointmentList:
		return "listed"
	case dialog.Reprompt:
		return "reprompt"
	case dialog.Result:
		if o.Kind == dialog.StorageError {
			return "storage"
		}
		return o.Kind.String()
	}
	return "ok"
}

func abortRow(token string) []keyboard.InlineBtn {
	return []keyboard.InlineBtn{{Text: btnAbort, Unique: cbAbort, Data: token}}
}

func slotRange(day booking.Day, start, end booking.Clock) string {
	return fmt.Sprintf("%s %s-%s", day, start, end)
}
