package allocation

import (
	"github.com/guimove/tablefit/internal/model"
)

// OccupiedTables returns the names of tables held by blocking bookings on
// date whose interval overlaps [start, start+slotDuration).
func OccupiedTables(bookings []model.Booking, date model.Date, start model.TimeOfDay, slotDuration int) map[string]struct{} {
	occupied := make(map[string]struct{})
	want := model.IntervalAt(start, slotDuration)
	for i := range bookings {
		b := &bookings[i]
		if b.Date != date || !b.Status.Blocks() {
			continue
		}
		if !b.Interval(slotDuration).Overlaps(want) {
			continue
		}
		for _, name := range b.Tables {
			occupied[name] = struct{}{}
		}
	}
	return occupied
}

// AvailableTables returns the tables not in the occupied set, in their
// configured order.
func AvailableTables(tables []model.Table, occupied map[string]struct{}) []model.Table {
	free := make([]model.Table, 0, len(tables))
	for _, t := range tables {
		if _, taken := occupied[t.Name]; taken {
			continue
		}
		free = append(free, t)
	}
	return free
}

// BookedPeople sums the party sizes of blocking bookings on date.
func BookedPeople(bookings []model.Booking, date model.Date) int {
	var total int
	for i := range bookings {
		if bookings[i].Date == date && bookings[i].Status.Blocks() {
			total += bookings[i].People
		}
	}
	return total
}

type slotKey struct {
	date  model.Date
	start model.TimeOfDay
}

// occupancyIndex groups blocking bookings by date and memoizes the occupied
// set per slot. It is not safe for concurrent use; each scan builds its own.
type occupancyIndex struct {
	slotDuration int
	byDate       map[model.Date][]model.Booking
	slots        map[slotKey]map[string]struct{}
}

func newOccupancyIndex(bookings []model.Booking, slotDuration int) *occupancyIndex {
	byDate := make(map[model.Date][]model.Booking)
	for _, b := range bookings {
		if !b.Status.Blocks() {
			continue
		}
		byDate[b.Date] = append(byDate[b.Date], b)
	}
	return &occupancyIndex{
		slotDuration: slotDuration,
		byDate:       byDate,
		slots:        make(map[slotKey]map[string]struct{}),
	}
}

func (x *occupancyIndex) occupied(date model.Date, start model.TimeOfDay) map[string]struct{} {
	key := slotKey{date: date, start: start}
	if occ, ok := x.slots[key]; ok {
		return occ
	}
	occ := OccupiedTables(x.byDate[date], date, start, x.slotDuration)
	x.slots[key] = occ
	return occ
}

func (x *occupancyIndex) bookedPeople(date model.Date) int {
	return BookedPeople(x.byDate[date], date)
}
