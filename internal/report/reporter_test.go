package report

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/guimove/tablefit/internal/model"
)

var monday = model.Date{Year: 2024, Month: time.January, Day: 1}

func sampleDays() []model.DayAvailability {
	best := model.NewAllocation(4, []model.Table{{Name: "A", Seats: 4}})
	return []model.DayAvailability{
		{
			Date: monday, Feasible: true, Reason: "ok",
			Slots: []model.SlotAvailability{
				{Time: model.MustTimeOfDay("18:00"), Reason: "too_soon"},
				{Time: model.MustTimeOfDay("19:30"), Feasible: true, Reason: "ok", Best: &best,
					Tables: []model.Table{{Name: "A", Seats: 4}, {Name: "B", Seats: 2}}},
			},
		},
		{Date: monday.AddDays(1), Reason: "closed"},
	}
}

func sampleMeta() ReportMeta {
	return ReportMeta{People: 4, TablesEnabled: true, TotalTables: 2, TotalSeats: 6, Bookings: 3, BookingsFrom: "static"}
}

func TestNewReporter(t *testing.T) {
	var buf bytes.Buffer
	if _, ok := NewReporter("json", &buf).(*JSONReporter); !ok {
		t.Error("json format should give JSONReporter")
	}
	if _, ok := NewReporter("markdown", &buf).(*MarkdownReporter); !ok {
		t.Error("markdown format should give MarkdownReporter")
	}
	if _, ok := NewReporter("", &buf).(*TableReporter); !ok {
		t.Error("default format should give TableReporter")
	}
}

func TestTableReporter_Calendar(t *testing.T) {
	var buf bytes.Buffer
	if err := NewReporter("table", &buf).Calendar(context.Background(), sampleDays(), sampleMeta()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"TableFit Calendar", "2024-01-01", "Monday", "available", "1/2", "closed", "1 of 2 days available"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTableReporter_Day(t *testing.T) {
	var buf bytes.Buffer
	if err := NewReporter("table", &buf).Day(context.Background(), sampleDays()[0], sampleMeta()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"19:30", "too_soon", "A,B", "1 of 2 slots available"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := NewReporter("table", &buf).Day(context.Background(), sampleDays()[1], sampleMeta()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No slots: closed") {
		t.Errorf("closed day output:\n%s", buf.String())
	}
}

func TestTableReporter_Allocation(t *testing.T) {
	alloc := model.NewAllocation(5, []model.Table{{Name: "B", Seats: 2}, {Name: "A", Seats: 4}})
	seated := model.Decision{Date: monday, Time: model.MustTimeOfDay("19:30"), People: 5, Reason: "ok", Allocation: &alloc}
	refused := model.Decision{Date: monday, Time: model.MustTimeOfDay("19:30"), People: 20, Reason: "no_tables"}

	var buf bytes.Buffer
	r := NewReporter("table", &buf)
	if err := r.Allocation(context.Background(), seated, sampleMeta()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "B,A") || !strings.Contains(buf.String(), "Waste:     1") {
		t.Errorf("seated output:\n%s", buf.String())
	}

	buf.Reset()
	if err := r.Allocation(context.Background(), refused, sampleMeta()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "not seated (no_tables)") {
		t.Errorf("refused output:\n%s", buf.String())
	}
}

func TestJSONReporter_Calendar(t *testing.T) {
	var buf bytes.Buffer
	if err := NewReporter("json", &buf).Calendar(context.Background(), sampleDays(), sampleMeta()); err != nil {
		t.Fatal(err)
	}

	var out struct {
		Meta ReportMeta `json:"meta"`
		Days []struct {
			Date     string `json:"date"`
			Feasible bool   `json:"feasible"`
			Slots    []struct {
				Time       string `json:"time"`
				Allocation *struct {
					Waste int `json:"waste"`
				} `json:"allocation"`
			} `json:"slots"`
		} `json:"days"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if out.Meta.People != 4 || len(out.Days) != 2 {
		t.Fatalf("decoded = %+v", out)
	}
	if out.Days[0].Date != "2024-01-01" || !out.Days[0].Feasible {
		t.Errorf("day 0 = %+v", out.Days[0])
	}
	if s := out.Days[0].Slots[1]; s.Time != "19:30" || s.Allocation == nil || s.Allocation.Waste != 0 {
		t.Errorf("slot = %+v", s)
	}
}

func TestJSONReporter_EmptyCalendar(t *testing.T) {
	var buf bytes.Buffer
	if err := NewReporter("json", &buf).Calendar(context.Background(), nil, sampleMeta()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"days": []`) {
		t.Errorf("empty calendar should encode an empty list:\n%s", buf.String())
	}
}

func TestMarkdownReporter(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter("markdown", &buf)
	ctx := context.Background()

	if err := r.Calendar(ctx, sampleDays(), sampleMeta()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "| 2024-01-01 | Monday | available | 1/2 | ok |") {
		t.Errorf("calendar markdown:\n%s", buf.String())
	}

	buf.Reset()
	if err := r.Day(ctx, sampleDays()[0], sampleMeta()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "| 19:30 | available | ok | A | 0 |") {
		t.Errorf("day markdown:\n%s", buf.String())
	}

	buf.Reset()
	if err := r.Allocation(ctx, model.Decision{Date: monday, People: 3, Reason: "closed"}, sampleMeta()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "**Not seated:** `closed`") {
		t.Errorf("allocation markdown:\n%s", buf.String())
	}
}
