package dialog

import "github.com/m3rciful/bookingbot/booking"

// Outcome is what the transport renders in reply to an Event.
type Outcome interface{ isOutcome() }

// Registered acknowledges a bare UserIdentified.
type Registered struct {
	ClientID int64
}

// PromptDays asks for a day.
type PromptDays struct {
	Token string
	Days  []booking.Day
}

// PromptTimes asks for a start time on Day.
type PromptTimes struct {
	Token string
	Day   booking.Day
	Times []booking.Clock
}

// PromptConfirm asks to confirm the selected slot.
type PromptConfirm struct {
	Token string
	Day   booking.Day
	Start booking.Clock
	End   booking.Clock
}

// ResultKind is the final answer of a dialog.
type ResultKind int

const (
	Booked ResultKind = iota + 1
	SlotTaken
	NoSlotsAvailable
	Cancelled
	Released
	NotFound
	OwnershipError
	StorageError
)

func (k ResultKind) String() string {
	switch k {
	case Booked:
		return "booked"
	case SlotTaken:
		return "slot_taken"
	case NoSlotsAvailable:
		return "no_slots"
	case Cancelled:
		return "cancelled"
	case Released:
		return "released"
	case NotFound:
		return "not_found"
	case OwnershipError:
		return "forbidden"
	case StorageError:
		return "storage_error"
	}
	return "unknown"
}

// Result ends a dialog. Day and the times describe the slot concerned when
// there is one.
type Result struct {
	Kind  ResultKind
	Day   booking.Day
	Start booking.Clock
	End   booking.Clock
}

// AppointmentList shows the client's appointments. When Selectable is
// true the entries can be picked for cancellation under Token.
type AppointmentList struct {
	Token      string
	Entries    []booking.Entry
	Selectable bool
}

// Reason explains a Reprompt.
type Reason int

const (
	// ReasonNoSession: the event needs a dialog and none is open.
	ReasonNoSession Reason = iota + 1
	// ReasonStaleToken: the event came from an outdated keyboard.
	ReasonStaleToken
	// ReasonUnexpected: the event does not belong to the current step.
	ReasonUnexpected
	ReasonInvalidDay
	ReasonInvalidTime
	ReasonInvalidIndex
	// ReasonSlotGone: the chosen time vanished since it was offered.
	ReasonSlotGone
	// ReasonText: free text where a button press is expected.
	ReasonText
)

func (r Reason) String() string {
	switch r {
	case ReasonNoSession:
		return "no_session"
	case ReasonStaleToken:
		return "stale_token"
	case ReasonUnexpected:
		return "unexpected"
	case ReasonInvalidDay:
		return "invalid_day"
	case ReasonInvalidTime:
		return "invalid_time"
	case ReasonInvalidIndex:
		return "invalid_index"
	case ReasonSlotGone:
		return "slot_gone"
	case ReasonText:
		return "text"
	}
	return "unknown"
}

// Reprompt rejects an event without changing state. Prompt repeats the
// current step and is nil when no dialog is open.
type Reprompt struct {
	Reason Reason
	Prompt Outcome
}

func (Registered) isOutcome()      {}
func (PromptDays) isOutcome()      {}
func (PromptTimes) isOutcome()     {}
func (PromptConfirm) isOutcome()   {}
func (Result) isOutcome()          {}
func (AppointmentList) isOutcome() {}
func (Reprompt) isOutcome()        {}

// OutcomeName labels o in logs.
func OutcomeName(o Outcome) string {
	switch v := o.(type) {
	case Registered:
		return "registered"
	case PromptDays:
		return "prompt_days"
	case PromptTimes:
		return "prompt_times"
	case PromptConfirm:
		return "prompt_confirm"
	case Result:
		return v.Kind.String()
	case AppointmentList:
		return "appointment_list"
	case Reprompt:
		return "reprompt_" + v.Reason.String()
	}
	return "none"
}
