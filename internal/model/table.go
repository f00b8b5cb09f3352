package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Table is a physical table in the dining room.
type Table struct {
	Name  string `json:"name" mapstructure:"name"`
	Seats int    `json:"seats" mapstructure:"seats"`
}

// TotalSeats returns the summed capacity of the given tables.
func TotalSeats(tables []Table) int {
	var total int
	for i := range tables {
		total += tables[i].Seats
	}
	return total
}

// TableNames returns the names of the given tables in order.
func TableNames(tables []Table) []string {
	names := make([]string, len(tables))
	for i := range tables {
		names[i] = tables[i].Name
	}
	return names
}

// BookingStatus is the lifecycle state reported by the booking backend.
type BookingStatus string

const (
	StatusActive    BookingStatus = "active"
	StatusCancelled BookingStatus = "cancelled"
)

// Blocks reports whether a booking in this state holds its tables.
// Only cancellation releases them.
func (s BookingStatus) Blocks() bool {
	return !strings.EqualFold(strings.TrimSpace(string(s)), string(StatusCancelled))
}

// Booking is an existing reservation as returned by the booking backend.
type Booking struct {
	ID     string        `json:"id,omitempty"`
	Date   Date          `json:"date"`
	Time   TimeOfDay     `json:"time"`
	Status BookingStatus `json:"status"`
	People int           `json:"people"`

	// Table names held by the booking; empty when table seating is disabled.
	Tables []string `json:"tables,omitempty"`
}

// Interval returns the minutes the booking occupies for the given slot length.
func (b Booking) Interval(slotDuration int) Interval {
	return IntervalAt(b.Time, slotDuration)
}

// BookingRequest is the payload submitted to the booking-creation endpoint
// once tables have been chosen.
type BookingRequest struct {
	ID        uuid.UUID `json:"id"`
	Date      Date      `json:"date"`
	Time      TimeOfDay `json:"time"`
	People    int       `json:"people"`
	Tables    []string  `json:"tables"`
	Waste     int       `json:"waste"`
	CreatedAt time.Time `json:"created_at"`
}

// NewBookingRequest builds a request for the given allocation.
func NewBookingRequest(date Date, at TimeOfDay, alloc Allocation, now time.Time) BookingRequest {
	tables := TableNames(alloc.Tables)
	return BookingRequest{
		ID:        uuid.New(),
		Date:      date,
		Time:      at,
		People:    alloc.People,
		Tables:    tables,
		Waste:     alloc.Waste,
		CreatedAt: now.UTC(),
	}
}
