package bot

import (
	"strings"
	"testing"

	"github.com/m3rciful/bookingbot/booking"
	"github.com/m3rciful/bookingbot/booking/dialog"
)

func TestRenderDaysKeyboard(t *testing.T) {
	r := render(dialog.PromptDays{Token: "tok", Days: []booking.Day{booking.Monday, booking.Tuesday, booking.Wednesday}})
	if r.Text != txtChooseDay || r.Markup == nil {
		t.Fatalf("reply = %+v", r)
	}
	rows := r.Markup.InlineKeyboard
	if len(rows) != 3 || len(rows[0]) != 2 || len(rows[1]) != 1 {
		t.Fatalf("rows = %+v", rows)
	}
	first := rows[0][0]
	if first.Unique != cbDay || first.Data != "tok|1" || first.Text != "Monday" {
		t.Fatalf("first button = %+v", first)
	}
	if abort := rows[2][0]; abort.Unique != cbAbort || abort.Data != "tok" {
		t.Fatalf("abort button = %+v", abort)
	}
}

func TestRenderConfirmAndResult(t *testing.T) {
	start := booking.MustClock("10:00")
	r := render(dialog.PromptConfirm{Token: "t", Day: booking.Monday, Start: start, End: booking.MustClock("11:00")})
	if !strings.Contains(r.Text, "Monday 10:00-11:00") {
		t.Fatalf("confirm text = %q", r.Text)
	}
	if btns := r.Markup.InlineKeyboard[0]; btns[0].Data != "t|yes" || btns[1].Data != "t|no" {
		t.Fatalf("confirm buttons = %+v", btns)
	}

	cases := map[dialog.ResultKind]string{
		dialog.SlotTaken:      txtSlotTaken,
		dialog.Cancelled:      txtCancelled,
		dialog.NotFound:       txtNotFound,
		dialog.OwnershipError: txtForbidden,
		dialog.StorageError:   txtStorage,
	}
	for kind, want := range cases {
		if got := render(dialog.Result{Kind: kind}).Text; got != want {
			t.Fatalf("%v: %q, want %q", kind, got, want)
		}
	}
	booked := render(dialog.Result{Kind: dialog.Booked, Day: booking.Monday, Start: start, End: booking.MustClock("11:00")})
	if !strings.Contains(booked.Text, "*Monday 10:00-11:00*") {
		t.Fatalf("booked text = %q", booked.Text)
	}
}

func TestRenderAppointmentLists(t *testing.T) {
	entries := []booking.Entry{
		{AppointmentID: 7, Day: booking.Monday, Start: booking.MustClock("09:00"), End: booking.MustClock("10:00")},
		{AppointmentID: 3, Day: booking.Friday, Start: booking.MustClock("15:00"), End: booking.MustClock("16:00")},
	}
	if r := render(dialog.AppointmentList{}); r.Text != txtNoAppts {
		t.Fatalf("empty = %q", r.Text)
	}
	plain := render(dialog.AppointmentList{Entries: entries})
	if plain.Markup != nil || !strings.Contains(plain.Text, "2. Friday 15:00-16:00") {
		t.Fatalf("plain = %+v", plain)
	}
	pick := render(dialog.AppointmentList{Token: "k", Entries: entries, Selectable: true})
	rows := pick.Markup.InlineKeyboard
	if len(rows) != 3 || rows[1][0].Data != "k|1" || rows[1][0].Unique != cbRelease {
		t.Fatalf("pick rows = %+v", rows)
	}
}

func TestRenderReprompt(t *testing.T) {
	expired := render(dialog.Reprompt{Reason: dialog.ReasonNoSession})
	if expired.Text != txtNoSession || expired.Toast != toastExpired {
		t.Fatalf("expired = %+v", expired)
	}
	stale := render(dialog.Reprompt{Reason: dialog.ReasonStaleToken, Prompt: dialog.PromptDays{Token: "new"}})
	if stale.Toast != toastStale || stale.Text != txtChooseDay {
		t.Fatalf("stale = %+v", stale)
	}
	text := render(dialog.Reprompt{Reason: dialog.ReasonText, Prompt: dialog.PromptDays{Token: "new"}})
	if !strings.HasPrefix(text.Text, txtUseButtons) {
		t.Fatalf("text = %+v", text)
	}
}

func TestRenderBoard(t *testing.T) {
	if got := renderBoard(nil); got != txtBoardEmpty {
		t.Fatalf("empty board = %q", got)
	}
	got := renderBoard([]booking.Slot{
		{Day: booking.Monday, Start: booking.MustClock("09:00"), End: booking.MustClock("10:00"), Available: true},
		{Day: booking.Monday, Start: booking.MustClock("10:00"), End: booking.MustClock("11:00")},
	})
	want := txtBoard + "🗓 Monday: 09:00-10:00 | " + txtBoardFree + "\n🗓 Monday: 10:00-11:00 | " + txtBoardTaken
	if got != want {
		t.Fatalf("board =\n%s\nwant\n%s", got, want)
	}
}

func TestOutcomeLabel(t *testing.T) {
	cases := []struct {
		out  dialog.Outcome
		want string
	}{
		{dialog.PromptTimes{}, "prompted"},
		{dialog.AppointmentList{}, "listed"},
		{dialog.Reprompt{}, "reprompt"},
		{dialog.Result{Kind: dialog.Booked}, "booked"},
		{dialog.Result{Kind: dialog.StorageError}, "storage"},
		{dialog.Registered{}, "ok"},
	}
	for _, tc := range cases {
		if got := outcomeLabel(tc.out); got != tc.want {
			t.Fatalf("%T: %q, want %q", tc.out, got, tc.want)
		}
	}
}
