package orchestrator

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/guimove/tablefit/internal/allocation"
	"github.com/guimove/tablefit/internal/config"
	"github.com/guimove/tablefit/internal/model"
	"github.com/guimove/tablefit/internal/publish"
	"github.com/guimove/tablefit/internal/report"
	"github.com/guimove/tablefit/internal/snapshot"
)

// Observer receives allocation outcomes and snapshot loads.
type Observer interface {
	allocation.Observer
	ObserveSnapshot(bookings int, err error)
}

// Publisher uploads calendar snapshots for static front ends.
type Publisher interface {
	PublishCalendar(ctx context.Context, snap publish.CalendarSnapshot) (string, error)
}

// Orchestrator coordinates the availability pipeline: fetch a fresh
// snapshot, plan against it, then report or publish.
type Orchestrator struct {
	Settings  snapshot.SettingsSource
	Bookings  snapshot.BookingSource
	Config    config.Config
	Writer    io.Writer
	Observer  Observer
	Publisher Publisher
	Now       func() time.Time
}

// New creates an orchestrator with the given sources.
func New(settings snapshot.SettingsSource, bookings snapshot.BookingSource, cfg config.Config) *Orchestrator {
	return &Orchestrator{
		Settings: settings,
		Bookings: bookings,
		Config:   cfg,
		Writer:   os.Stdout,
	}
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// Load fetches fresh settings and the bookings dated within r, and builds
// a planner over them.
func (o *Orchestrator) Load(ctx context.Context, r snapshot.Range) (*allocation.Planner, error) {
	return o.load(ctx, func(model.Date) snapshot.Range { return r })
}

// LoadDays loads a snapshot covering days dates from from. A zero from
// resolves to today in the restaurant's time zone; the resolved date is
// returned with the planner.
func (o *Orchestrator) LoadDays(ctx context.Context, from model.Date, days int) (*allocation.Planner, model.Date, error) {
	p, err := o.load(ctx, func(today model.Date) snapshot.Range {
		if from.IsZero() {
			from = today
		}
		return snapshot.RangeFor(from, days)
	})
	return p, from, err
}

// load resolves the booking range once the restaurant's "today" is known.
func (o *Orchestrator) load(ctx context.Context, span func(today model.Date) snapshot.Range) (*allocation.Planner, error) {
	p, err := o.buildPlanner(ctx, span)
	if o.Observer != nil {
		n := 0
		if p != nil {
			n = len(p.Bookings)
		}
		o.Observer.ObserveSnapshot(n, err)
	}
	return p, err
}

func (o *Orchestrator) buildPlanner(ctx context.Context, span func(today model.Date) snapshot.Range) (*allocation.Planner, error) {
	settings, err := o.CurrentSettings(ctx)
	if err != nil {
		return nil, err
	}

	p, err := allocation.NewPlanner(*settings, nil, o.Config.Policy)
	if err != nil {
		return nil, err
	}
	p.Now = o.now
	if o.Observer != nil {
		p.Observer = o.Observer
	}

	src := o.Bookings
	if src == nil {
		src = snapshot.Empty{}
	}
	r := span(p.Today())
	bookings, err := src.Bookings(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("loading bookings from %s: %w", src.BackendType(), err)
	}
	p.Bookings = bookings

	log.Debug().
		Str("settings", o.Settings.BackendType()).
		Str("bookings", src.BackendType()).
		Stringer("from", r.From).
		Stringer("to", r.To).
		Int("count", len(bookings)).
		Msg("loaded snapshot")
	return p, nil
}

func (o *Orchestrator) meta(p *allocation.Planner, people int) report.ReportMeta {
	m := report.ReportMeta{
		People:        people,
		GeneratedAt:   o.now(),
		Timezone:      p.Settings.Timezone,
		TablesEnabled: p.Settings.TablesEnabled,
		TotalTables:   len(p.Settings.Tables),
		TotalSeats:    model.TotalSeats(p.Settings.Tables),
		Bookings:      len(p.Bookings),
	}
	if o.Settings != nil {
		m.SettingsFrom = o.Settings.BackendType()
	}
	if o.Bookings != nil {
		m.BookingsFrom = o.Bookings.BackendType()
	} else {
		m.BookingsFrom = snapshot.Empty{}.BackendType()
	}
	return m
}

func (o *Orchestrator) reporter() report.Reporter {
	w := o.Writer
	if w == nil {
		w = io.Discard
	}
	return report.NewReporter(o.Config.Output.Format, w)
}

// CalendarOptions selects the days a calendar covers.
type CalendarOptions struct {
	From    model.Date // zero means today in the restaurant's time zone
	Days    int        // zero uses output.days
	People  int
	Publish bool
}

// Calendar reports day-level availability for a range of dates and
// optionally publishes it.
func (o *Orchestrator) Calendar(ctx context.Context, opts CalendarOptions) ([]model.DayAvailability, error) {
	days := opts.Days
	if days <= 0 {
		days = o.Config.Output.Days
	}

	p, from, err := o.LoadDays(ctx, opts.From, days)
	if err != nil {
		return nil, err
	}

	log.Info().Stringer("from", from).Int("days", days).Int("people", opts.People).Msg("computing calendar")

	cal, err := p.Calendar(ctx, from, days, opts.People)
	if err != nil {
		return nil, fmt.Errorf("computing calendar: %w", err)
	}

	if err := o.reporter().Calendar(ctx, cal, o.meta(p, opts.People)); err != nil {
		return nil, fmt.Errorf("generating report: %w", err)
	}

	if opts.Publish {
		if o.Publisher == nil {
			return cal, fmt.Errorf("publishing calendar: %w", publish.ErrNoBucket)
		}
		loc, err := o.Publisher.PublishCalendar(ctx, publish.CalendarSnapshot{
			GeneratedAt: o.now(),
			From:        from,
			People:      opts.People,
			Days:        cal,
		})
		if err != nil {
			return cal, fmt.Errorf("publishing calendar: %w", err)
		}
		log.Info().Str("location", loc).Msg("published calendar")
	}
	return cal, nil
}

// Day reports slot-level availability for one date. A zero date means today.
func (o *Orchestrator) Day(ctx context.Context, date model.Date, people int) (model.DayAvailability, error) {
	p, date, err := o.LoadDays(ctx, date, 1)
	if err != nil {
		return model.DayAvailability{}, err
	}

	day := p.Day(date, people)
	if err := o.reporter().Day(ctx, day, o.meta(p, people)); err != nil {
		return day, fmt.Errorf("generating report: %w", err)
	}
	return day, nil
}

// AllocationRequest asks for tables at a specific date and time. Tables,
// when set, is a manual selection to validate instead of searching.
type AllocationRequest struct {
	Date   model.Date
	Time   model.TimeOfDay
	People int
	Tables []string
}

// Decide loads a fresh snapshot and decides one allocation request without
// reporting it.
func (o *Orchestrator) Decide(ctx context.Context, req AllocationRequest) (model.Decision, error) {
	p, err := o.Load(ctx, snapshot.RangeFor(req.Date, 1))
	if err != nil {
		return model.Decision{}, err
	}
	return o.decide(p, req), nil
}

func (o *Orchestrator) decide(p *allocation.Planner, req AllocationRequest) model.Decision {
	alloc, reason := p.ValidateSelection(req.Date, req.Time, req.People, req.Tables)

	d := model.Decision{
		Date:       req.Date,
		Time:       req.Time,
		People:     req.People,
		Reason:     string(reason),
		Allocation: alloc,
	}
	if alloc != nil {
		br := model.NewBookingRequest(req.Date, req.Time, *alloc, o.now())
		d.Request = &br
	}

	ev := log.Info()
	if !reason.OK() {
		ev = log.Warn()
	}
	ev.Stringer("date", req.Date).
		Stringer("time", req.Time).
		Int("people", req.People).
		Str("reason", string(reason)).
		Msg("allocation decided")
	return d
}

// Allocate decides one allocation request and reports the outcome.
func (o *Orchestrator) Allocate(ctx context.Context, req AllocationRequest) (model.Decision, error) {
	p, err := o.Load(ctx, snapshot.RangeFor(req.Date, 1))
	if err != nil {
		return model.Decision{}, err
	}

	d := o.decide(p, req)
	if err := o.reporter().Allocation(ctx, d, o.meta(p, req.People)); err != nil {
		return d, fmt.Errorf("generating report: %w", err)
	}
	return d, nil
}

// CurrentSettings fetches and validates the restaurant settings.
func (o *Orchestrator) CurrentSettings(ctx context.Context) (*model.Settings, error) {
	if o.Settings == nil {
		return nil, snapshot.ErrNoSettings
	}
	s, err := o.Settings.Settings(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading settings from %s: %w", o.Settings.BackendType(), err)
	}
	if s == nil {
		return nil, snapshot.ErrNoSettings
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid restaurant settings: %w", err)
	}
	return s, nil
}
