package booking

import (
	"fmt"
	"slices"
	"time"
)

// ScheduleConfig describes the weekly grid of slots.
type ScheduleConfig struct {
	Days     []Day         `yaml:"days" envconfig:"SCHEDULE_DAYS"`
	Open     Clock         `yaml:"open" envconfig:"SCHEDULE_OPEN"`
	Close    Clock         `yaml:"close" envconfig:"SCHEDULE_CLOSE"`
	Duration time.Duration `yaml:"slot_duration" envconfig:"SCHEDULE_SLOT_DURATION"`
}

// DefaultSchedule is Monday to Saturday, 09:00-18:00, one hour slots.
func DefaultSchedule() ScheduleConfig {
	return ScheduleConfig{
		Days:     []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday},
		Open:     9 * 60,
		Close:    18 * 60,
		Duration: time.Hour,
	}
}

// Normalize fills zero fields from DefaultSchedule and validates the rest.
func (c *ScheduleConfig) Normalize() error {
	def := DefaultSchedule()
	if len(c.Days) == 0 {
		c.Days = def.Days
	}
	if c.Open == 0 && c.Close == 0 {
		c.Open, c.Close = def.Open, def.Close
	}
	if c.Duration == 0 {
		c.Duration = def.Duration
	}

	seen := make(map[Day]bool, len(c.Days))
	days := make([]Day, 0, len(c.Days))
	for _, d := range c.Days {
		if !d.Valid() {
			return fmt.Errorf("schedule.days: %w: %d", ErrInvalidDay, int(d))
		}
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	slices.Sort(days)
	c.Days = days

	if c.Duration < time.Minute || c.Duration%time.Minute != 0 {
		return fmt.Errorf("schedule.slot_duration must be a positive whole number of minutes, got %s", c.Duration)
	}
	if c.Open >= c.Close {
		return fmt.Errorf("schedule.open %s must be before schedule.close %s", c.Open, c.Close)
	}
	if c.Open.Add(c.Duration) > c.Close {
		return fmt.Errorf("schedule: no slot of %s fits between %s and %s", c.Duration, c.Open, c.Close)
	}
	return nil
}

// Has reports whether day is part of the schedule.
func (c ScheduleConfig) Has(day Day) bool {
	for _, d := range c.Days {
		if d == day {
			return true
		}
	}
	return false
}

// Starts lists the slot start times of one day in ascending order.
func (c ScheduleConfig) Starts() []Clock {
	var out []Clock
	for t := c.Open; t.Add(c.Duration) <= c.Close; t = t.Add(c.Duration) {
		out = append(out, t)
	}
	return out
}

// Slots expands the schedule into available slots, ordered by day then time.
func (c ScheduleConfig) Slots() []Slot {
	starts := c.Starts()
	out := make([]Slot, 0, len(c.Days)*len(starts))
	for _, d := range c.Days {
		for _, t := range starts {
			out = append(out, Slot{Day: d, Start: t, End: t.Add(c.Duration), Available: true})
		}
	}
	return out
}
