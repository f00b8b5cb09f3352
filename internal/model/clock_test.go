package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{"19:00", 19 * 60, false},
		{"07:05", 7*60 + 5, false},
		{"18:15:30", 18*60 + 15, false},
		{"00:00", 0, false},
		{"24:00", MinutesPerDay, false},
		{" 12:30 ", 12*60 + 30, false},
		{"24:01", 0, true},
		{"25:00", 0, true},
		{"12:60", 0, true},
		{"7:00", 0, true},
		{"noon", 0, true},
		{"", 0, true},
		{"-1:00", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseTimeOfDay(%q) = %v, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTimeOfDay(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseTimeOfDay(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestTimeOfDay_StringAndAdd(t *testing.T) {
	tod := MustTimeOfDay("19:00")
	if got := tod.Add(90).String(); got != "20:30" {
		t.Errorf("Add(90) = %s, want 20:30", got)
	}
	if got := TimeOfDay(MinutesPerDay).String(); got != "24:00" {
		t.Errorf("end of day = %s, want 24:00", got)
	}
}

func TestTimeOfDay_On(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	d := Date{2024, time.January, 1}
	got := MustTimeOfDay("19:30").On(d, loc)
	want := time.Date(2024, time.January, 1, 19, 30, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("On() = %v, want %v", got, want)
	}
	if TimeOfDayOf(got) != MustTimeOfDay("19:30") {
		t.Errorf("TimeOfDayOf round trip failed: %v", TimeOfDayOf(got))
	}
}

func TestDate_ParseAndArithmetic(t *testing.T) {
	d, err := ParseDate("2024-02-28")
	if err != nil {
		t.Fatal(err)
	}
	if got := d.AddDays(1).String(); got != "2024-02-29" {
		t.Errorf("leap day: got %s", got)
	}
	if got := d.AddDays(2).String(); got != "2024-03-01" {
		t.Errorf("month rollover: got %s", got)
	}
	if d.Weekday() != time.Wednesday {
		t.Errorf("Weekday() = %v, want Wednesday", d.Weekday())
	}
	if !d.Before(d.AddDays(1)) || d.After(d.AddDays(1)) {
		t.Error("ordering is wrong")
	}
	if d.Before(d) {
		t.Error("a date must not be before itself")
	}

	if _, err := ParseDate("28/02/2024"); err == nil {
		t.Error("expected error for non-ISO date")
	}
}

func TestDate_JSON(t *testing.T) {
	var b Booking
	raw := `{"date":"2024-01-01","time":"19:00:00","status":"active","people":4,"tables":["A"]}`
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if b.Date != (Date{2024, time.January, 1}) {
		t.Errorf("Date = %v", b.Date)
	}
	if b.Time != MustTimeOfDay("19:00") {
		t.Errorf("Time = %v", b.Time)
	}

	out, err := json.Marshal(b)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"date":"2024-01-01","time":"19:00","status":"active","people":4,"tables":["A"]}`
	if string(out) != want {
		t.Errorf("marshal = %s, want %s", out, want)
	}
}

func TestInterval_Overlaps(t *testing.T) {
	booked := IntervalAt(MustTimeOfDay("19:00"), 90) // 19:00-20:30

	tests := []struct {
		name  string
		start string
		want  bool
	}{
		{"same start", "19:00", true},
		{"inside", "19:30", true},
		{"ends at booking start", "17:30", false},
		{"starts at booking end", "20:30", false},
		{"later", "21:00", false},
		{"straddles start", "18:00", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cand := IntervalAt(MustTimeOfDay(tt.start), 90)
			if got := cand.Overlaps(booked); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
			if got := booked.Overlaps(cand); got != tt.want {
				t.Errorf("Overlaps() not symmetric")
			}
		})
	}
}
