package allocation

import (
	"testing"

	"github.com/guimove/tablefit/internal/model"
)

var newYear = model.Date{Year: 2024, Month: 1, Day: 1}

func booking(date model.Date, at string, status model.BookingStatus, people int, tables ...string) model.Booking {
	return model.Booking{
		Date:   date,
		Time:   model.MustTimeOfDay(at),
		Status: status,
		People: people,
		Tables: tables,
	}
}

func TestOccupiedTables(t *testing.T) {
	active := []model.Booking{booking(newYear, "19:00", model.StatusActive, 4, "A")}
	cancelled := []model.Booking{booking(newYear, "19:00", model.StatusCancelled, 4, "A")}
	otherDay := []model.Booking{booking(newYear.AddDays(1), "19:00", model.StatusActive, 4, "A")}

	tests := []struct {
		name     string
		bookings []model.Booking
		at       string
		wantA    bool
	}{
		{"overlapping slot", active, "19:30", true},
		{"same start", active, "19:00", true},
		{"slot after booking ends", active, "21:00", false},
		{"slot touching booking end", active, "20:30", false},
		{"slot ending at booking start", active, "17:30", false},
		{"slot straddling booking start", active, "18:00", true},
		{"cancelled booking", cancelled, "19:30", false},
		{"different date", otherDay, "19:30", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			occ := OccupiedTables(tt.bookings, newYear, model.MustTimeOfDay(tt.at), 90)
			_, gotA := occ["A"]
			if gotA != tt.wantA {
				t.Errorf("A occupied = %v, want %v", gotA, tt.wantA)
			}
		})
	}
}

func TestOccupiedTables_CancelledStatusIsCaseInsensitive(t *testing.T) {
	bs := []model.Booking{booking(newYear, "19:00", "Cancelled", 2, "A")}
	if occ := OccupiedTables(bs, newYear, model.MustTimeOfDay("19:00"), 90); len(occ) != 0 {
		t.Errorf("expected no occupied tables, got %v", occ)
	}
}

func TestAvailableTables(t *testing.T) {
	all := []model.Table{{"A", 4}, {"B", 2}, {"C", 6}}
	occupied := map[string]struct{}{"B": {}, "ghost": {}}

	got := AvailableTables(all, occupied)
	if len(got) != 2 || got[0].Name != "A" || got[1].Name != "C" {
		t.Errorf("AvailableTables() = %v, want [A C]", got)
	}

	if got := AvailableTables(all, nil); len(got) != 3 {
		t.Errorf("nil occupied set should leave all tables, got %v", got)
	}
}

func TestBookedPeople(t *testing.T) {
	bs := []model.Booking{
		booking(newYear, "12:00", model.StatusActive, 4),
		booking(newYear, "20:00", "confirmed", 3),
		booking(newYear, "20:00", model.StatusCancelled, 10),
		booking(newYear.AddDays(1), "20:00", model.StatusActive, 7),
	}
	if got := BookedPeople(bs, newYear); got != 7 {
		t.Errorf("BookedPeople() = %d, want 7", got)
	}
}

func TestOccupancyIndex_MatchesDirectScan(t *testing.T) {
	bs := []model.Booking{
		booking(newYear, "18:00", model.StatusActive, 2, "A"),
		booking(newYear, "19:30", model.StatusActive, 4, "B", "C"),
		booking(newYear, "19:30", model.StatusCancelled, 4, "D"),
		booking(newYear.AddDays(1), "19:30", model.StatusActive, 4, "E"),
	}
	idx := newOccupancyIndex(bs, 90)

	for _, at := range []string{"17:00", "18:00", "19:00", "19:30", "21:00", "22:30"} {
		tod := model.MustTimeOfDay(at)
		want := OccupiedTables(bs, newYear, tod, 90)
		// Query twice so the second call hits the cache.
		for i := 0; i < 2; i++ {
			got := idx.occupied(newYear, tod)
			if len(got) != len(want) {
				t.Fatalf("%s: index %v, direct %v", at, got, want)
			}
			for name := range want {
				if _, ok := got[name]; !ok {
					t.Fatalf("%s: index missing %s", at, name)
				}
			}
		}
	}

	if got := idx.bookedPeople(newYear); got != 6 {
		t.Errorf("bookedPeople = %d, want 6", got)
	}
}
