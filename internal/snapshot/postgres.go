package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/guimove/tablefit/internal/model"
)

// bookingsQuery reads the booking table of the reservation backend. Start
// times come back as HH:MM text.
const bookingsQuery = `
SELECT id::text, booking_date, to_char(booking_time, 'HH24:MI'), status, people, COALESCE(tables, '{}')
FROM bookings
WHERE booking_date BETWEEN $1 AND $2
ORDER BY booking_date, booking_time`

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
}

// Postgres reads bookings straight from the reservation database.
type Postgres struct {
	db   querier
	pool *pgxpool.Pool
}

// OpenPostgres connects a pool to databaseURL.
func OpenPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}
	cfg.MaxConnLifetime = 5 * time.Minute
	cfg.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return &Postgres{db: pool, pool: pool}, nil
}

// Close releases the pool.
func (p *Postgres) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

// BackendType returns "postgres".
func (p *Postgres) BackendType() string { return "postgres" }

// Ping checks database connectivity.
func (p *Postgres) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return p.db.Ping(ctx)
}

// Bookings returns the bookings dated within r.
func (p *Postgres) Bookings(ctx context.Context, r Range) ([]model.Booking, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	rows, err := p.db.Query(ctx, bookingsQuery, r.From.In(time.UTC), r.To.In(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("querying bookings: %w", err)
	}
	defer rows.Close()

	var bookings []model.Booking
	for rows.Next() {
		var (
			b      model.Booking
			date   time.Time
			at     string
			status string
			people int32
		)
		if err := rows.Scan(&b.ID, &date, &at, &status, &people, &b.Tables); err != nil {
			return nil, fmt.Errorf("scanning booking: %w", err)
		}
		tod, err := model.ParseTimeOfDay(at)
		if err != nil {
			return nil, fmt.Errorf("booking %s: %w", b.ID, err)
		}
		b.Date = model.DateOf(date)
		b.Time = tod
		b.Status = model.BookingStatus(status)
		b.People = int(people)
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading bookings: %w", err)
	}
	return bookings, nil
}
