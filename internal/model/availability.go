package model

// Allocation is a set of tables chosen to seat one party.
type Allocation struct {
	Tables []Table `json:"tables"`
	People int     `json:"people"`
	Seats  int     `json:"seats"`
	Waste  int     `json:"waste"` // Seats - People
}

// NewAllocation computes seats and waste for the given tables.
func NewAllocation(people int, tables []Table) Allocation {
	seats := TotalSeats(tables)
	return Allocation{
		Tables: tables,
		People: people,
		Seats:  seats,
		Waste:  seats - people,
	}
}

// SlotAvailability describes one candidate time slot for a party.
type SlotAvailability struct {
	Time     TimeOfDay   `json:"time"`
	Feasible bool        `json:"feasible"`
	Reason   string      `json:"reason"`
	Tables   []Table     `json:"free_tables,omitempty"`
	Best     *Allocation `json:"allocation,omitempty"`

	// People already booked that day; only reported when table seating is disabled.
	BookedPeople int `json:"booked_people,omitempty"`
}

// DayAvailability summarizes one calendar day for a party.
type DayAvailability struct {
	Date     Date               `json:"date"`
	Feasible bool               `json:"feasible"`
	Reason   string             `json:"reason"`
	Slots    []SlotAvailability `json:"slots,omitempty"`
}

// FeasibleSlots returns the number of slots that can seat the party.
func (d DayAvailability) FeasibleSlots() int {
	var n int
	for i := range d.Slots {
		if d.Slots[i].Feasible {
			n++
		}
	}
	return n
}

// Decision is the outcome of an allocation request.
type Decision struct {
	Date       Date            `json:"date"`
	Time       TimeOfDay       `json:"time"`
	People     int             `json:"people"`
	Reason     string          `json:"reason"`
	Allocation *Allocation     `json:"allocation,omitempty"`
	Request    *BookingRequest `json:"request,omitempty"`
}

// OK reports whether the party was seated.
func (d Decision) OK() bool { return d.Allocation != nil }
