package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/guimove/tablefit/internal/model"
)

// Static serves settings and bookings from JSON files or in-memory values.
// Used for testing, offline planning, and CI pipelines.
type Static struct {
	settingsPath string
	bookingsPath string

	settings *model.Settings
	bookings []model.Booking
}

// NewStatic creates a source that reads from JSON files. Either path may be
// empty: no settings then yields ErrNoSettings and no bookings an empty list.
func NewStatic(settingsPath, bookingsPath string) *Static {
	return &Static{settingsPath: settingsPath, bookingsPath: bookingsPath}
}

// NewStaticFromSnapshot creates a source from pre-built values.
func NewStaticFromSnapshot(settings *model.Settings, bookings []model.Booking) *Static {
	return &Static{settings: settings, bookings: bookings}
}

// Ping checks that the configured files exist.
func (s *Static) Ping(ctx context.Context) error {
	for _, path := range []string{s.settingsPath, s.bookingsPath} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("static snapshot file: %w", err)
		}
	}
	return nil
}

// BackendType returns "static".
func (s *Static) BackendType() string {
	return "static"
}

// Settings returns the in-memory settings or loads them from file.
func (s *Static) Settings(ctx context.Context) (*model.Settings, error) {
	if s.settings != nil {
		cp := *s.settings
		return &cp, nil
	}
	if s.settingsPath == "" {
		return nil, ErrNoSettings
	}

	data, err := os.ReadFile(s.settingsPath)
	if err != nil {
		return nil, fmt.Errorf("reading settings file: %w", err)
	}

	var settings model.Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parsing settings file: %w", err)
	}
	return &settings, nil
}

// Bookings returns the bookings dated within r.
func (s *Static) Bookings(ctx context.Context, r Range) ([]model.Booking, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if s.bookings != nil || s.bookingsPath == "" {
		return filterBookings(s.bookings, r), nil
	}

	data, err := os.ReadFile(s.bookingsPath)
	if err != nil {
		return nil, fmt.Errorf("reading bookings file: %w", err)
	}

	var bookings []model.Booking
	if err := json.Unmarshal(data, &bookings); err != nil {
		return nil, fmt.Errorf("parsing bookings file: %w", err)
	}
	return filterBookings(bookings, r), nil
}
