package booking

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
)

// Day is an ISO day of week, Monday = 1 through Sunday = 7. The numeric value
// is the ranking used to order listings.
type Day int

const (
	Monday Day = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var dayNames = [...]string{"", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// AllDays lists the week in ranking order.
func AllDays() []Day {
	return []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}
}

// Valid reports whether d is one of the seven recognized values.
func (d Day) Valid() bool {
	return d >= Monday && d <= Sunday
}

// String returns the English name of d.
func (d Day) String() string {
	if !d.Valid() {
		return "Day(" + strconv.Itoa(int(d)) + ")"
	}
	return dayNames[d]
}

// Short returns the three letter abbreviation of d.
func (d Day) Short() string {
	if !d.Valid() {
		return d.String()
	}
	return dayNames[d][:3]
}

// ParseDay accepts English names, three letter abbreviations (any case) and
// the ISO numbers 1-7.
func ParseDay(s string) (Day, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if d := Day(n); d.Valid() {
			return d, nil
		}
		return 0, fmt.Errorf("%w: %q", ErrInvalidDay, s)
	}
	for d := Monday; d <= Sunday; d++ {
		if strings.EqualFold(s, dayNames[d]) || strings.EqualFold(s, dayNames[d][:3]) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDay, s)
}

// UnmarshalText lets configuration decoders read days by name.
func (d *Day) UnmarshalText(b []byte) error {
	v, err := ParseDay(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// MarshalText renders the day name.
func (d Day) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDay, int(d))
	}
	return []byte(d.String()), nil
}

// Value stores the day as SMALLINT.
func (d Day) Value() (driver.Value, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDay, int(d))
	}
	return int64(d), nil
}

// Scan reads a SMALLINT day.
func (d *Day) Scan(src any) error {
	var n int64
	switch v := src.(type) {
	case int64:
		n = v
	case int32:
		n = int64(v)
	case []byte:
		parsed, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return fmt.Errorf("scan day: %w", err)
		}
		n = parsed
	default:
		return fmt.Errorf("scan day: unsupported type %T", src)
	}
	if !Day(n).Valid() {
		return fmt.Errorf("scan day: %w: %d", ErrInvalidDay, n)
	}
	*d = Day(n)
	return nil
}
