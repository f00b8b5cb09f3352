package report

import (
	"context"
	"fmt"
	"io"

	"github.com/guimove/tablefit/internal/model"
)

// MarkdownReporter outputs results as GitHub-flavored markdown, suitable for
// pasting into a staff wiki or PR comment.
type MarkdownReporter struct {
	w io.Writer
}

func (r *MarkdownReporter) meta(meta ReportMeta) {
	fmt.Fprintf(r.w, "- **Party:** %d\n", meta.People)
	if meta.TablesEnabled {
		fmt.Fprintf(r.w, "- **Tables:** %d (%d seats)\n", meta.TotalTables, meta.TotalSeats)
	} else {
		fmt.Fprintf(r.w, "- **Tables:** disabled\n")
	}
	fmt.Fprintf(r.w, "- **Bookings:** %d\n\n", meta.Bookings)
}

func (r *MarkdownReporter) Calendar(ctx context.Context, days []model.DayAvailability, meta ReportMeta) error {
	fmt.Fprintf(r.w, "## Availability\n\n")
	r.meta(meta)

	if len(days) == 0 {
		fmt.Fprintf(r.w, "_No days requested._\n")
		return nil
	}

	fmt.Fprintf(r.w, "| Date | Weekday | Status | Slots | Reason |\n")
	fmt.Fprintf(r.w, "|------|---------|--------|------:|--------|\n")
	for _, d := range days {
		fmt.Fprintf(r.w, "| %s | %s | %s | %d/%d | %s |\n",
			d.Date, d.Date.Weekday(), status(d.Feasible), d.FeasibleSlots(), len(d.Slots), d.Reason)
	}
	fmt.Fprintf(r.w, "\n")
	return nil
}

func (r *MarkdownReporter) Day(ctx context.Context, day model.DayAvailability, meta ReportMeta) error {
	fmt.Fprintf(r.w, "## Slots for %s\n\n", day.Date)
	r.meta(meta)

	if len(day.Slots) == 0 {
		fmt.Fprintf(r.w, "_No slots: %s._\n", day.Reason)
		return nil
	}

	fmt.Fprintf(r.w, "| Time | Status | Reason | Allocation | Waste |\n")
	fmt.Fprintf(r.w, "|------|--------|--------|------------|------:|\n")
	for _, s := range day.Slots {
		alloc, waste := "-", "-"
		if s.Best != nil {
			alloc = tableList(s.Best.Tables)
			waste = fmt.Sprintf("%d", s.Best.Waste)
		}
		fmt.Fprintf(r.w, "| %s | %s | %s | %s | %s |\n", s.Time, status(s.Feasible), s.Reason, alloc, waste)
	}
	fmt.Fprintf(r.w, "\n")
	return nil
}

func (r *MarkdownReporter) Allocation(ctx context.Context, d model.Decision, meta ReportMeta) error {
	fmt.Fprintf(r.w, "## Allocation for %s %s\n\n", d.Date, d.Time)
	r.meta(meta)

	if !d.OK() {
		fmt.Fprintf(r.w, "**Not seated:** `%s`\n", d.Reason)
		return nil
	}
	fmt.Fprintf(r.w, "**Seated** %d guests", d.People)
	if len(d.Allocation.Tables) > 0 {
		fmt.Fprintf(r.w, " at `%s` (%d seats, %d spare)", tableList(d.Allocation.Tables), d.Allocation.Seats, d.Allocation.Waste)
	}
	fmt.Fprintf(r.w, "\n")
	return nil
}
