package booking

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Clock is a wall time of day in minutes since midnight. 24:00 is allowed
// only as the end of the last slot of a day.
type Clock int

const endOfDay Clock = 24 * 60

// NewClock builds a Clock from hours and minutes.
func NewClock(h, m int) (Clock, error) {
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: %02d:%02d", ErrInvalidTime, h, m)
	}
	return Clock(h*60 + m), nil
}

// ParseClock accepts "H:MM", "HH:MM" and "HH:MM:SS" (seconds must be zero).
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	if len(parts) == 3 && parts[2] != "00" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	if len(parts[1]) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	h, errH := strconv.Atoi(parts[0])
	m, errM := strconv.Atoi(parts[1])
	if errH != nil || errM != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return NewClock(h, m)
}

// MustClock is ParseClock for constants; it panics on bad input.
func MustClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

// String renders HH:MM.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Valid reports whether c is a time of day a slot can start at.
func (c Clock) Valid() bool {
	return c >= 0 && c < endOfDay
}

// Add returns c shifted by d, truncated to whole minutes.
func (c Clock) Add(d time.Duration) Clock {
	return c + Clock(d/time.Minute)
}

// UnmarshalText lets configuration decoders read "HH:MM".
func (c *Clock) UnmarshalText(b []byte) error {
	v, err := ParseClock(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// MarshalText renders HH:MM.
func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Value stores the clock as a TIME literal.
func (c Clock) Value() (driver.Value, error) {
	if c < 0 || c > endOfDay {
		return nil, fmt.Errorf("%w: %d minutes", ErrInvalidTime, int(c))
	}
	if c == endOfDay {
		return "24:00:00", nil
	}
	return c.String() + ":00", nil
}

// Scan reads TIME columns as returned by lib/pq (text) or other drivers (time.Time).
func (c *Clock) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*c = Clock(v.Hour()*60 + v.Minute())
		return nil
	case []byte:
		return c.scanString(string(v))
	case string:
		return c.scanString(v)
	}
	return fmt.Errorf("scan clock: unsupported type %T", src)
}

func (c *Clock) scanString(s string) error {
	if strings.HasPrefix(s, "24:00") {
		*c = endOfDay
		return nil
	}
	// lib/pq returns "15:04:05" and may append fractional seconds.
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	v, err := ParseClock(s)
	if err != nil {
		return fmt.Errorf("scan clock: %w", err)
	}
	*c = v
	return nil
}
