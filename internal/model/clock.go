package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MinutesPerDay is the upper bound of a TimeOfDay (24:00).
const MinutesPerDay = 24 * 60

const dateLayout = "2006-01-02"

// Date is a calendar day without a time zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses an ISO date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return DateOf(t), nil
}

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// In returns midnight of the date in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// AddDays returns the date n days later (or earlier for negative n).
func (d Date) AddDays(n int) Date {
	return DateOf(d.In(time.UTC).AddDate(0, 0, n))
}

// Weekday returns the day of the week.
func (d Date) Weekday() time.Weekday {
	return d.In(time.UTC).Weekday()
}

// Before reports whether d is strictly before other.
func (d Date) Before(other Date) bool {
	return d.In(time.UTC).Before(other.In(time.UTC))
}

// After reports whether d is strictly after other.
func (d Date) After(other Date) bool {
	return other.Before(d)
}

// IsZero reports whether d is the zero date.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// TimeOfDay is a wall-clock time in minutes since midnight, 0 through 1440.
type TimeOfDay int

// ParseTimeOfDay parses "HH:MM" or "HH:MM:SS". Seconds are truncated.
// "24:00" is accepted as end of day.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("invalid time %q (want HH:MM)", s)
	}
	nums := make([]int, len(parts))
	for i, p := range parts {
		if len(p) != 2 {
			return 0, fmt.Errorf("invalid time %q (want HH:MM)", s)
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid time %q (want HH:MM)", s)
		}
		nums[i] = n
	}
	h, m := nums[0], nums[1]
	if m > 59 || (len(nums) == 3 && nums[2] > 59) {
		return 0, fmt.Errorf("invalid time %q: minutes/seconds out of range", s)
	}
	if h > 24 || (h == 24 && (m != 0 || (len(nums) == 3 && nums[2] != 0))) {
		return 0, fmt.Errorf("invalid time %q: hour out of range", s)
	}
	return TimeOfDay(h*60 + m), nil
}

// MustTimeOfDay is ParseTimeOfDay for literals; it panics on malformed input.
func MustTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

// TimeOfDayOf returns the wall-clock time of t, truncated to the minute.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*60 + t.Minute())
}

// Minutes returns the number of minutes since midnight.
func (t TimeOfDay) Minutes() int { return int(t) }

// Add returns t shifted by the given number of minutes. The result is not clamped.
func (t TimeOfDay) Add(minutes int) TimeOfDay { return t + TimeOfDay(minutes) }

// On returns the instant at which t occurs on date d in loc.
func (t TimeOfDay) On(d Date, loc *time.Location) time.Time {
	return d.In(loc).Add(time.Duration(t) * time.Minute)
}

// Valid reports whether t lies within a single day.
func (t TimeOfDay) Valid() bool { return t >= 0 && t <= MinutesPerDay }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	parsed, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Interval is a half-open range [Start, End) in minutes since midnight.
type Interval struct {
	Start int
	End   int
}

// IntervalAt returns the interval of the given length starting at t.
func IntervalAt(t TimeOfDay, lengthMinutes int) Interval {
	return Interval{Start: int(t), End: int(t) + lengthMinutes}
}

// Overlaps reports whether the two intervals share at least one minute.
func (iv Interval) Overlaps(other Interval) bool {
	return !(iv.End <= other.Start || iv.Start >= other.End)
}
