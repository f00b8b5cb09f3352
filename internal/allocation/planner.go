package allocation

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/guimove/tablefit/internal/model"
)

// Reason explains the outcome of a feasibility or allocation check.
type Reason string

const (
	ReasonOK               Reason = "ok"
	ReasonInvalidParty     Reason = "invalid_party"
	ReasonClosed           Reason = "closed"
	ReasonOutsideWindow    Reason = "outside_window"
	ReasonOutsideHours     Reason = "outside_hours"
	ReasonTooSoon          Reason = "too_soon"
	ReasonCapacityExceeded Reason = "capacity_exceeded"
	ReasonNoTables         Reason = "no_tables"

	ReasonUnknownTable      Reason = "unknown_table"
	ReasonTableOccupied     Reason = "table_occupied"
	ReasonInsufficientSeats Reason = "insufficient_seats"
	ReasonTooManyTables     Reason = "too_many_tables"
)

// OK reports whether the reason is a success.
func (r Reason) OK() bool { return r == ReasonOK }

// Observer receives the outcome of every Allocate call.
type Observer interface {
	ObserveAllocation(people int, alloc *model.Allocation, reason Reason)
}

// Planner answers availability questions against one immutable snapshot of
// settings and bookings. Callers build a new Planner after re-fetching.
type Planner struct {
	Settings    model.Settings
	Policy      Policy
	Bookings    []model.Booking
	Now         func() time.Time
	Location    *time.Location
	Observer    Observer
	Parallelism int

	once   sync.Once
	byDate map[model.Date][]model.Booking
}

// NewPlanner creates a planner for the given snapshot, resolving the
// restaurant time zone.
func NewPlanner(settings model.Settings, bookings []model.Booking, policy Policy) (*Planner, error) {
	loc, err := settings.Location()
	if err != nil {
		return nil, fmt.Errorf("resolving restaurant timezone: %w", err)
	}
	return &Planner{
		Settings:    settings,
		Policy:      policy,
		Bookings:    bookings,
		Now:         time.Now,
		Location:    loc,
		Parallelism: runtime.NumCPU(),
	}, nil
}

func (p *Planner) location() *time.Location {
	if p.Location != nil {
		return p.Location
	}
	return time.Local
}

func (p *Planner) now() time.Time {
	if p.Now != nil {
		return p.Now().In(p.location())
	}
	return time.Now().In(p.location())
}

// Today returns the current date in the restaurant's time zone.
func (p *Planner) Today() model.Date {
	return model.DateOf(p.now())
}

// scan returns an occupancy index whose per-slot cache lives for one scan.
func (p *Planner) scan() *occupancyIndex {
	p.once.Do(func() {
		p.byDate = newOccupancyIndex(p.Bookings, p.Settings.SlotDuration).byDate
	})
	return &occupancyIndex{
		slotDuration: p.Settings.SlotDuration,
		byDate:       p.byDate,
		slots:        make(map[slotKey]map[string]struct{}),
	}
}

// SlotTimes lists the slot start times for date, from opening time up to
// closing time minus one slot, in slot-duration steps.
func (p *Planner) SlotTimes(date model.Date) []model.TimeOfDay {
	hours, ok := p.Settings.Hours(date.Weekday())
	step := p.Settings.SlotDuration
	if !ok || step <= 0 {
		return nil
	}
	var slots []model.TimeOfDay
	for t := hours.Open; t.Add(step) <= hours.Close; t = t.Add(step) {
		slots = append(slots, t)
	}
	return slots
}

// dayReason applies the checks that hold for the whole day.
func (p *Planner) dayReason(date model.Date, people int) Reason {
	if people <= 0 {
		return ReasonInvalidParty
	}
	if p.Settings.IsClosedOn(date) {
		return ReasonClosed
	}
	if _, ok := p.Settings.Hours(date.Weekday()); !ok {
		return ReasonClosed
	}
	today := p.Today()
	if date.Before(today) {
		return ReasonOutsideWindow
	}
	if p.Settings.AdvanceBookingDays > 0 && date.After(today.AddDays(p.Settings.AdvanceBookingDays)) {
		return ReasonOutsideWindow
	}
	return ReasonOK
}

func (p *Planner) tooSoon(date model.Date, t model.TimeOfDay) bool {
	earliest := p.now().Add(time.Duration(p.Settings.MinAdvanceMinutes) * time.Minute)
	return t.On(date, p.location()).Before(earliest)
}

func (p *Planner) withinCapacity(idx *occupancyIndex, date model.Date, people int) bool {
	return idx.bookedPeople(date)+people <= p.Settings.MaxPeoplePerSlot
}

// DayFeasible reports whether any slot on date can seat the party.
func (p *Planner) DayFeasible(date model.Date, people int) bool {
	if !p.dayReason(date, people).OK() {
		return false
	}
	idx := p.scan()
	if !p.Settings.TablesEnabled {
		return p.withinCapacity(idx, date, people)
	}
	for _, t := range p.SlotTimes(date) {
		if p.tooSoon(date, t) {
			continue
		}
		free := AvailableTables(p.Settings.Tables, idx.occupied(date, t))
		if Search(people, free, p.Policy) != nil {
			return true
		}
	}
	return false
}

// Day reports every slot of date for the party. Its Feasible field always
// agrees with DayFeasible.
func (p *Planner) Day(date model.Date, people int) model.DayAvailability {
	day := model.DayAvailability{Date: date}
	if r := p.dayReason(date, people); !r.OK() {
		day.Reason = string(r)
		return day
	}

	idx := p.scan()
	booked := idx.bookedPeople(date)
	capacityOK := p.withinCapacity(idx, date, people)

	var sawTooSoon, sawCapacity, sawNoTables bool
	for _, t := range p.SlotTimes(date) {
		slot := model.SlotAvailability{Time: t}
		switch {
		case p.tooSoon(date, t):
			slot.Reason = string(ReasonTooSoon)
			sawTooSoon = true
		case !p.Settings.TablesEnabled:
			slot.BookedPeople = booked
			if capacityOK {
				slot.Feasible = true
				slot.Reason = string(ReasonOK)
			} else {
				slot.Reason = string(ReasonCapacityExceeded)
				sawCapacity = true
			}
		default:
			slot.Tables = AvailableTables(p.Settings.Tables, idx.occupied(date, t))
			slot.Best = Search(people, slot.Tables, p.Policy)
			if slot.Best != nil {
				slot.Feasible = true
				slot.Reason = string(ReasonOK)
			} else {
				slot.Reason = string(ReasonNoTables)
				sawNoTables = true
			}
		}
		if slot.Feasible {
			day.Feasible = true
		}
		day.Slots = append(day.Slots, slot)
	}

	if !p.Settings.TablesEnabled {
		// Capacity is counted per day, not per slot.
		day.Feasible = capacityOK
		if !capacityOK {
			sawCapacity = true
		}
	}

	switch {
	case day.Feasible:
		day.Reason = string(ReasonOK)
	case sawCapacity:
		day.Reason = string(ReasonCapacityExceeded)
	case sawNoTables:
		day.Reason = string(ReasonNoTables)
	case sawTooSoon:
		day.Reason = string(ReasonTooSoon)
	default:
		day.Reason = string(ReasonClosed)
	}
	return day
}

// Calendar evaluates consecutive days starting at from. Days are computed in
// parallel and returned in date order.
func (p *Planner) Calendar(ctx context.Context, from model.Date, days, people int) ([]model.DayAvailability, error) {
	if days < 0 {
		return nil, fmt.Errorf("days must be non-negative, got %d", days)
	}

	parallelism := p.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}

	results := make([]model.DayAvailability, days)
	sem := make(chan struct{}, parallelism)
	var wg sync.WaitGroup

	for i := 0; i < days; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if ctx.Err() != nil {
				return
			}
			results[idx] = p.Day(from.AddDays(idx), people)
		}(i)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// Allocate picks tables for a party at a specific date and time.
// With table seating disabled a successful allocation carries no tables.
func (p *Planner) Allocate(date model.Date, at model.TimeOfDay, people int) (*model.Allocation, Reason) {
	alloc, reason := p.allocate(date, at, people)
	if p.Observer != nil {
		p.Observer.ObserveAllocation(people, alloc, reason)
	}
	return alloc, reason
}

func (p *Planner) allocate(date model.Date, at model.TimeOfDay, people int) (*model.Allocation, Reason) {
	if r := p.slotReason(date, at, people); !r.OK() {
		return nil, r
	}

	idx := p.scan()
	if !p.Settings.TablesEnabled {
		if !p.withinCapacity(idx, date, people) {
			return nil, ReasonCapacityExceeded
		}
		return &model.Allocation{People: people}, ReasonOK
	}

	free := AvailableTables(p.Settings.Tables, idx.occupied(date, at))
	alloc := Search(people, free, p.Policy)
	if alloc == nil {
		return nil, ReasonNoTables
	}
	return alloc, ReasonOK
}

// slotReason validates a requested start time. Start times need not sit on
// the slot grid; the whole slot must fit inside opening hours.
func (p *Planner) slotReason(date model.Date, at model.TimeOfDay, people int) Reason {
	if r := p.dayReason(date, people); !r.OK() {
		return r
	}
	hours, _ := p.Settings.Hours(date.Weekday())
	if at < hours.Open || at.Add(p.Settings.SlotDuration) > hours.Close {
		return ReasonOutsideHours
	}
	if p.tooSoon(date, at) {
		return ReasonTooSoon
	}
	return ReasonOK
}

// ValidateSelection checks a hand-picked set of tables for the party.
// Duplicate names count once. The waste cap does not apply to a manual
// choice, but the table cap does.
func (p *Planner) ValidateSelection(date model.Date, at model.TimeOfDay, people int, names []string) (*model.Allocation, Reason) {
	if len(names) == 0 {
		return p.Allocate(date, at, people)
	}
	alloc, reason := p.validateSelection(date, at, people, names)
	if p.Observer != nil {
		p.Observer.ObserveAllocation(people, alloc, reason)
	}
	return alloc, reason
}

func (p *Planner) validateSelection(date model.Date, at model.TimeOfDay, people int, names []string) (*model.Allocation, Reason) {
	if r := p.slotReason(date, at, people); !r.OK() {
		return nil, r
	}

	seen := make(map[string]bool, len(names))
	chosen := make([]model.Table, 0, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		t, ok := p.Settings.Table(name)
		if !ok {
			return nil, ReasonUnknownTable
		}
		chosen = append(chosen, t)
	}
	if p.Policy.MaxTables > 0 && len(chosen) > p.Policy.MaxTables {
		return nil, ReasonTooManyTables
	}

	occupied := p.scan().occupied(date, at)
	for _, t := range chosen {
		if _, taken := occupied[t.Name]; taken {
			return nil, ReasonTableOccupied
		}
	}

	alloc := model.NewAllocation(people, chosen)
	if alloc.Waste < 0 {
		return nil, ReasonInsufficientSeats
	}
	return &alloc, ReasonOK
}
