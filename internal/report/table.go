package report

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/guimove/tablefit/internal/model"
)

// TableReporter outputs results as a formatted terminal table.
type TableReporter struct {
	w io.Writer
}

func (r *TableReporter) header(title string, meta ReportMeta) {
	fmt.Fprintf(r.w, "\n")
	fmt.Fprintf(r.w, "TableFit %s\n", title)
	fmt.Fprintf(r.w, "%s\n", strings.Repeat("=", 60))
	fmt.Fprintf(r.w, "Party:       %d\n", meta.People)
	if meta.TablesEnabled {
		fmt.Fprintf(r.w, "Tables:      %d (%d seats)\n", meta.TotalTables, meta.TotalSeats)
	} else {
		fmt.Fprintf(r.w, "Tables:      disabled (daily capacity only)\n")
	}
	fmt.Fprintf(r.w, "Bookings:    %d (%s)\n", meta.Bookings, meta.BookingsFrom)
	if meta.Timezone != "" {
		fmt.Fprintf(r.w, "Timezone:    %s\n", meta.Timezone)
	}
	fmt.Fprintf(r.w, "%s\n\n", strings.Repeat("=", 60))
}

func (r *TableReporter) Calendar(ctx context.Context, days []model.DayAvailability, meta ReportMeta) error {
	r.header("Calendar", meta)

	if len(days) == 0 {
		fmt.Fprintf(r.w, "No days requested.\n")
		return nil
	}

	fmt.Fprintf(r.w, "%-10s %-9s %-11s %5s  %s\n", "Date", "Weekday", "Status", "Slots", "Reason")
	fmt.Fprintf(r.w, "%s\n", strings.Repeat("-", 60))

	var open int
	for _, d := range days {
		slots := "-"
		if len(d.Slots) > 0 {
			slots = fmt.Sprintf("%d/%d", d.FeasibleSlots(), len(d.Slots))
		}
		fmt.Fprintf(r.w, "%-10s %-9s %-11s %5s  %s\n",
			d.Date, d.Date.Weekday(), status(d.Feasible), slots, d.Reason)
		if d.Feasible {
			open++
		}
	}

	fmt.Fprintf(r.w, "%s\n", strings.Repeat("-", 60))
	fmt.Fprintf(r.w, "%d of %d days available\n\n", open, len(days))
	return nil
}

func (r *TableReporter) Day(ctx context.Context, day model.DayAvailability, meta ReportMeta) error {
	r.header(fmt.Sprintf("Slots for %s (%s)", day.Date, day.Date.Weekday()), meta)

	if len(day.Slots) == 0 {
		fmt.Fprintf(r.w, "No slots: %s\n\n", day.Reason)
		return nil
	}

	fmt.Fprintf(r.w, "%-5s %-11s %-18s %-14s %5s  %s\n", "Time", "Status", "Reason", "Allocation", "Waste", "Free tables")
	fmt.Fprintf(r.w, "%s\n", strings.Repeat("-", 80))

	for _, s := range day.Slots {
		alloc, waste := "-", "-"
		if s.Best != nil {
			alloc = tableList(s.Best.Tables)
			waste = fmt.Sprintf("%d", s.Best.Waste)
		}
		if len(alloc) > 14 {
			alloc = alloc[:11] + "..."
		}
		fmt.Fprintf(r.w, "%-5s %-11s %-18s %-14s %5s  %s\n",
			s.Time, status(s.Feasible), s.Reason, alloc, waste, tableList(s.Tables))
	}

	fmt.Fprintf(r.w, "%s\n", strings.Repeat("-", 80))
	fmt.Fprintf(r.w, "%d of %d slots available\n\n", day.FeasibleSlots(), len(day.Slots))
	return nil
}

func (r *TableReporter) Allocation(ctx context.Context, d model.Decision, meta ReportMeta) error {
	r.header("Allocation", meta)

	fmt.Fprintf(r.w, "Requested:   %s %s for %d\n", d.Date, d.Time, d.People)
	if !d.OK() {
		fmt.Fprintf(r.w, "Result:      not seated (%s)\n\n", d.Reason)
		return nil
	}

	fmt.Fprintf(r.w, "Result:      seated\n")
	if len(d.Allocation.Tables) > 0 {
		fmt.Fprintf(r.w, "  Tables:    %s\n", tableList(d.Allocation.Tables))
		fmt.Fprintf(r.w, "  Seats:     %d\n", d.Allocation.Seats)
		fmt.Fprintf(r.w, "  Waste:     %d\n", d.Allocation.Waste)
	}
	if d.Request != nil {
		fmt.Fprintf(r.w, "  Request:   %s\n", d.Request.ID)
	}
	fmt.Fprintf(r.w, "\n")
	return nil
}
