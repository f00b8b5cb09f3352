package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/guimove/tablefit/internal/model"
)

// JSONReporter outputs results as indented JSON.
type JSONReporter struct {
	w io.Writer
}

type calendarOutput struct {
	Meta ReportMeta              `json:"meta"`
	Days []model.DayAvailability `json:"days"`
}

type dayOutput struct {
	Meta ReportMeta            `json:"meta"`
	Day  model.DayAvailability `json:"day"`
}

type decisionOutput struct {
	Meta     ReportMeta     `json:"meta"`
	Decision model.Decision `json:"decision"`
}

func (r *JSONReporter) Calendar(ctx context.Context, days []model.DayAvailability, meta ReportMeta) error {
	if days == nil {
		days = []model.DayAvailability{}
	}
	return r.encode(calendarOutput{Meta: meta, Days: days})
}

func (r *JSONReporter) Day(ctx context.Context, day model.DayAvailability, meta ReportMeta) error {
	return r.encode(dayOutput{Meta: meta, Day: day})
}

func (r *JSONReporter) Allocation(ctx context.Context, d model.Decision, meta ReportMeta) error {
	return r.encode(decisionOutput{Meta: meta, Decision: d})
}

func (r *JSONReporter) encode(v any) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}
	return nil
}
