// Package dialog sequences the booking and cancellation conversations.
//
// The transport turns user input into an Event, hands it to
// Machine.Handle together with the sender's identity and renders the
// returned Outcome. Selection events carry the session token that was
// embedded in the keyboard they came from, so input from an old keyboard
// is told apart from input for the current step.
package dialog

import "github.com/m3rciful/bookingbot/booking"

// Event is one user interaction.
type Event interface{ isEvent() }

// UserIdentified is who sent the event. Handled on its own, it only
// registers the client.
type UserIdentified struct {
	ExternalID  int64
	DisplayName string
	Handle      string
}

// StartBooking opens the booking dialog, discarding any open session.
type StartBooking struct{}

// DaySelected picks a day. An unparseable day arrives as the zero Day.
type DaySelected struct {
	Token string
	Day   booking.Day
}

// TimeSelected picks a start time from the offered ones.
type TimeSelected struct {
	Token string
	Time  booking.Clock
}

// Confirmed answers the confirmation prompt.
type Confirmed struct {
	Token string
	Yes   bool
}

// StartCancel opens the cancellation dialog, discarding any open session.
type StartCancel struct{}

// CancelTargetSelected picks an entry of the offered appointment list by
// its zero-based index.
type CancelTargetSelected struct {
	Token string
	Index int
}

// ShowAppointments lists the client's appointments without opening a dialog.
type ShowAppointments struct{}

// Abort closes the open dialog. A non-empty Token must match the session,
// so an old keyboard cannot close a newer dialog.
type Abort struct {
	Token string
}

// Text is free text typed while a dialog is open.
type Text struct {
	Body string
}

func (UserIdentified) isEvent()       {}
func (StartBooking) isEvent()         {}
func (DaySelected) isEvent()          {}
func (TimeSelected) isEvent()         {}
func (Confirmed) isEvent()            {}
func (StartCancel) isEvent()          {}
func (CancelTargetSelected) isEvent() {}
func (ShowAppointments) isEvent()     {}
func (Abort) isEvent()                {}
func (Text) isEvent()                 {}

func eventName(ev Event) string {
	switch ev.(type) {
	case UserIdentified:
		return "user_identified"
	case StartBooking:
		return "start_booking"
	case DaySelected:
		return "day_selected"
	case TimeSelected:
		return "time_selected"
	case Confirmed:
		return "confirmed"
	case StartCancel:
		return "start_cancel"
	case CancelTargetSelected:
		return "cancel_target_selected"
	case ShowAppointments:
		return "show_appointments"
	case Abort:
		return "abort"
	case Text:
		return "text"
	}
	return "unknown"
}
