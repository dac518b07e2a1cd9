package booking

import (
	"errors"
	"testing"
	"time"
)

func TestParseDay(t *testing.T) {
	cases := map[string]Day{
		"Monday": Monday,
		"monday": Monday,
		"TUE":    Tuesday,
		" sun ":  Sunday,
		"6":      Saturday,
	}
	for in, want := range cases {
		got, err := ParseDay(in)
		if err != nil || got != want {
			t.Fatalf("ParseDay(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	for _, bad := range []string{"", "Mo", "Funday", "0", "8"} {
		if _, err := ParseDay(bad); !errors.Is(err, ErrInvalidDay) {
			t.Fatalf("ParseDay(%q) err = %v", bad, err)
		}
	}
}

func TestDayScanValue(t *testing.T) {
	v, err := Wednesday.Value()
	if err != nil || v != int64(3) {
		t.Fatalf("Value = %v, %v", v, err)
	}
	var d Day
	if err := d.Scan(int64(7)); err != nil || d != Sunday {
		t.Fatalf("Scan = %v, %v", d, err)
	}
	if err := d.Scan(int64(9)); err == nil {
		t.Fatalf("expected error for out of range day")
	}
}

func TestParseClock(t *testing.T) {
	cases := map[string]string{
		"9:00":     "09:00",
		"10:00":    "10:00",
		"23:59":    "23:59",
		"14:30:00": "14:30",
	}
	for in, want := range cases {
		c, err := ParseClock(in)
		if err != nil || c.String() != want {
			t.Fatalf("ParseClock(%q) = %v, %v; want %s", in, c, err, want)
		}
	}
	for _, bad := range []string{"", "10", "24:00", "10:5", "10:60", "10:00:30", "ab:cd"} {
		if _, err := ParseClock(bad); !errors.Is(err, ErrInvalidTime) {
			t.Fatalf("ParseClock(%q) err = %v", bad, err)
		}
	}
}

func TestClockScanValue(t *testing.T) {
	var c Clock
	if err := c.Scan([]byte("10:00:00")); err != nil || c != MustClock("10:00") {
		t.Fatalf("Scan bytes = %v, %v", c, err)
	}
	if err := c.Scan(time.Date(0, 1, 1, 17, 30, 0, 0, time.UTC)); err != nil || c.String() != "17:30" {
		t.Fatalf("Scan time = %v, %v", c, err)
	}
	if err := c.Scan("24:00:00"); err != nil || c.String() != "24:00" {
		t.Fatalf("Scan end of day = %v, %v", c, err)
	}
	v, err := MustClock("09:00").Value()
	if err != nil || v != "09:00:00" {
		t.Fatalf("Value = %v, %v", v, err)
	}
	if got := MustClock("23:00").Add(time.Hour).String(); got != "24:00" {
		t.Fatalf("Add = %s", got)
	}
}
