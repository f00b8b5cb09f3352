package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/guimove/tablefit/internal/model"
)

var (
	ErrNoSettings       = errors.New("no restaurant settings available")
	ErrUnexpectedStatus = errors.New("unexpected response status from booking API")
	ErrUnknownSource    = errors.New("unknown snapshot source")
	ErrInvalidDateRange = errors.New("invalid date range")
)

// SettingsSource supplies the restaurant configuration.
type SettingsSource interface {
	// Settings returns the current restaurant configuration.
	Settings(ctx context.Context) (*model.Settings, error)

	// Ping validates connectivity to the backend.
	Ping(ctx context.Context) error

	// BackendType names the backend, e.g. "static" or "http".
	BackendType() string
}

// BookingSource supplies existing bookings. Sources never modify bookings.
type BookingSource interface {
	// Bookings returns all bookings, of any status, dated within r.
	Bookings(ctx context.Context, r Range) ([]model.Booking, error)

	// Ping validates connectivity to the backend.
	Ping(ctx context.Context) error

	// BackendType names the backend.
	BackendType() string
}

// Range is an inclusive span of dates.
type Range struct {
	From model.Date
	To   model.Date
}

// RangeFor returns the range covering days consecutive dates from from.
func RangeFor(from model.Date, days int) Range {
	if days < 1 {
		days = 1
	}
	return Range{From: from, To: from.AddDays(days - 1)}
}

// Contains reports whether d falls within the range.
func (r Range) Contains(d model.Date) bool {
	return !d.Before(r.From) && !d.After(r.To)
}

// Validate checks that the range is not inverted.
func (r Range) Validate() error {
	if r.To.Before(r.From) {
		return fmt.Errorf("%w: %s is after %s", ErrInvalidDateRange, r.From, r.To)
	}
	return nil
}

func filterBookings(all []model.Booking, r Range) []model.Booking {
	out := make([]model.Booking, 0, len(all))
	for _, b := range all {
		if r.Contains(b.Date) {
			out = append(out, b)
		}
	}
	return out
}

// Empty is a booking source with no bookings.
type Empty struct{}

func (Empty) Bookings(ctx context.Context, r Range) ([]model.Booking, error) {
	return nil, r.Validate()
}

func (Empty) Ping(ctx context.Context) error { return nil }

func (Empty) BackendType() string { return "none" }
