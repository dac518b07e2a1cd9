package booking

import (
	"fmt"
	"sort"
	"time"
)

// Client is a registered user of the bot.
type Client struct {
	ID          int64     `db:"id"`
	ExternalID  int64     `db:"external_id"`
	DisplayName string    `db:"display_name"`
	Handle      string    `db:"handle"`
	CreatedAt   time.Time `db:"created_at"`
}

// ClientInput is what the transport knows about a user.
type ClientInput struct {
	ExternalID  int64
	DisplayName string
	Handle      string
}

// Slot is one bookable weekly (day, start) pair.
type Slot struct {
	Day       Day   `db:"day_of_week"`
	Start     Clock `db:"start_time"`
	End       Clock `db:"end_time"`
	Available bool  `db:"available"`
}

// Appointment binds a client to a slot by its natural key.
type Appointment struct {
	ID       int64 `db:"id"`
	ClientID int64 `db:"client_id"`
	Day      Day   `db:"day_of_week"`
	Start    Clock `db:"start_time"`
}

// Entry is an appointment as shown to its owner.
type Entry struct {
	AppointmentID int64 `db:"id"`
	Day           Day   `db:"day_of_week"`
	Start         Clock `db:"start_time"`
	End           Clock `db:"end_time"`
}

// Range renders "Monday 10:00-11:00".
func (e Entry) Range() string {
	return fmt.Sprintf("%s %s-%s", e.Day, e.Start, e.End)
}

// SortEntries orders entries by day ranking, then start time.
func SortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Day != entries[j].Day {
			return entries[i].Day < entries[j].Day
		}
		return entries[i].Start < entries[j].Start
	})
}

// SortSlots orders slots by day ranking, then start time.
func SortSlots(slots []Slot) {
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Day != slots[j].Day {
			return slots[i].Day < slots[j].Day
		}
		return slots[i].Start < slots[j].Start
	})
}
