package model

import (
	"fmt"
	"strings"
	"time"
)

// DayHours are the opening hours of a single weekday.
type DayHours struct {
	Open  TimeOfDay `json:"open" mapstructure:"open"`
	Close TimeOfDay `json:"close" mapstructure:"close"`
}

// Settings is the restaurant configuration consumed by the allocator.
type Settings struct {
	TablesEnabled bool    `json:"tablesEnabled" mapstructure:"tables_enabled"`
	Tables        []Table `json:"tables" mapstructure:"tables"`

	// Flat per-day cap used when table seating is disabled.
	MaxPeoplePerSlot int `json:"maxPeoplePerSlot" mapstructure:"max_people_per_slot"`

	SlotDuration       int `json:"slotDuration" mapstructure:"slot_duration"` // minutes
	AdvanceBookingDays int `json:"advanceBookingDays" mapstructure:"advance_booking_days"`
	MinAdvanceMinutes  int `json:"minAdvanceMinutes" mapstructure:"min_advance_minutes"`

	// Keyed by lowercase English weekday name ("monday").
	OpeningHours        map[string]DayHours `json:"openingHours" mapstructure:"opening_hours"`
	ExceptionalClosures []Date              `json:"exceptionalClosures" mapstructure:"exceptional_closures"`

	// IANA time zone for "now" comparisons; empty means the process location.
	Timezone string `json:"timezone,omitempty" mapstructure:"timezone"`
}

// Hours returns the opening hours for the weekday, if any.
func (s Settings) Hours(day time.Weekday) (DayHours, bool) {
	want := strings.ToLower(day.String())
	for k, h := range s.OpeningHours {
		if strings.ToLower(strings.TrimSpace(k)) == want {
			return h, true
		}
	}
	return DayHours{}, false
}

// IsClosedOn reports whether d is an exceptional closure.
func (s Settings) IsClosedOn(d Date) bool {
	for _, c := range s.ExceptionalClosures {
		if c == d {
			return true
		}
	}
	return false
}

// Location resolves the configured time zone.
func (s Settings) Location() (*time.Location, error) {
	switch strings.TrimSpace(s.Timezone) {
	case "", "Local":
		return time.Local, nil
	default:
		return time.LoadLocation(s.Timezone)
	}
}

// Table returns the configured table with the given name.
func (s Settings) Table(name string) (Table, bool) {
	for _, t := range s.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

var weekdays = map[string]bool{
	"sunday": true, "monday": true, "tuesday": true, "wednesday": true,
	"thursday": true, "friday": true, "saturday": true,
}

// Validate checks the settings for malformed fields.
func (s *Settings) Validate() error {
	if s.SlotDuration <= 0 {
		return fmt.Errorf("slot_duration must be positive, got %d", s.SlotDuration)
	}
	if s.SlotDuration > MinutesPerDay {
		return fmt.Errorf("slot_duration must not exceed a day, got %d", s.SlotDuration)
	}
	if s.MaxPeoplePerSlot < 0 {
		return fmt.Errorf("max_people_per_slot must be non-negative, got %d", s.MaxPeoplePerSlot)
	}
	if s.AdvanceBookingDays < 0 {
		return fmt.Errorf("advance_booking_days must be non-negative, got %d", s.AdvanceBookingDays)
	}
	if s.MinAdvanceMinutes < 0 {
		return fmt.Errorf("min_advance_minutes must be non-negative, got %d", s.MinAdvanceMinutes)
	}

	seen := make(map[string]bool, len(s.Tables))
	for i, t := range s.Tables {
		if strings.TrimSpace(t.Name) == "" {
			return fmt.Errorf("table %d has no name", i)
		}
		if seen[t.Name] {
			return fmt.Errorf("duplicate table name %q", t.Name)
		}
		seen[t.Name] = true
		if t.Seats < 1 {
			return fmt.Errorf("table %q must have at least 1 seat, got %d", t.Name, t.Seats)
		}
	}

	for day, h := range s.OpeningHours {
		if !weekdays[strings.ToLower(strings.TrimSpace(day))] {
			return fmt.Errorf("unknown weekday %q in opening_hours", day)
		}
		if !h.Open.Valid() || !h.Close.Valid() {
			return fmt.Errorf("opening hours for %s out of range", day)
		}
		if h.Close <= h.Open {
			return fmt.Errorf("opening hours for %s: close %s must be after open %s", day, h.Close, h.Open)
		}
	}

	if _, err := s.Location(); err != nil {
		return fmt.Errorf("timezone %q: %w", s.Timezone, err)
	}
	return nil
}
