package dialog

import (
	"time"

	"github.com/m3rciful/bookingbot/booking"
)

// State is the step a session is waiting in. A finished dialog has no
// session at all.
type State int

const (
	StateIdle State = iota
	StateSelectDay
	StateSelectTime
	StateConfirm
	StateCancelSelect
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSelectDay:
		return "select_day"
	case StateSelectTime:
		return "select_time"
	case StateConfirm:
		return "confirm"
	case StateCancelSelect:
		return "cancel_select"
	}
	return "unknown"
}

// Session is the per-user dialog context.
type Session struct {
	Token    string
	State    State
	ClientID int64

	OfferedDays         []booking.Day
	SelectedDay         booking.Day
	OfferedTimes        []booking.Clock
	SelectedStart       booking.Clock
	OfferedAppointments []booking.Entry

	UpdatedAt time.Time
}

// prompt rebuilds the outcome that asked for the session's current step.
func (s Session) prompt(duration time.Duration) Outcome {
	switch s.State {
	case StateSelectDay:
		return PromptDays{Token: s.Token, Days: s.OfferedDays}
	case StateSelectTime:
		return PromptTimes{Token: s.Token, Day: s.SelectedDay, Times: s.OfferedTimes}
	case StateConfirm:
		return PromptConfirm{
			Token: s.Token,
			Day:   s.SelectedDay,
			Start: s.SelectedStart,
			End:   s.SelectedStart.Add(duration),
		}
	case StateCancelSelect:
		return AppointmentList{Token: s.Token, Entries: s.OfferedAppointments, Selectable: true}
	}
	return nil
}
