package report

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/guimove/tablefit/internal/model"
)

// Reporter formats and writes availability results to an output destination.
type Reporter interface {
	Calendar(ctx context.Context, days []model.DayAvailability, meta ReportMeta) error
	Day(ctx context.Context, day model.DayAvailability, meta ReportMeta) error
	Allocation(ctx context.Context, d model.Decision, meta ReportMeta) error
}

// ReportMeta contains contextual metadata for the report.
type ReportMeta struct {
	People        int       `json:"people"`
	GeneratedAt   time.Time `json:"generated_at"`
	Timezone      string    `json:"timezone,omitempty"`
	TablesEnabled bool      `json:"tables_enabled"`
	TotalTables   int       `json:"total_tables"`
	TotalSeats    int       `json:"total_seats"`
	Bookings      int       `json:"bookings"`
	SettingsFrom  string    `json:"settings_source"`
	BookingsFrom  string    `json:"bookings_source"`
}

// NewReporter creates a reporter for the given format writing to w.
func NewReporter(format string, w io.Writer) Reporter {
	switch format {
	case "json":
		return &JSONReporter{w: w}
	case "markdown":
		return &MarkdownReporter{w: w}
	default:
		return &TableReporter{w: w}
	}
}

func status(feasible bool) string {
	if feasible {
		return "available"
	}
	return "unavailable"
}

func tableList(tables []model.Table) string {
	if len(tables) == 0 {
		return "-"
	}
	return strings.Join(model.TableNames(tables), ",")
}
