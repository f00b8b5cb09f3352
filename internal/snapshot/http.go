package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/guimove/tablefit/internal/model"
)

// HTTPOptions configures the REST snapshot client.
type HTTPOptions struct {
	BaseURL  string
	Token    string // sent as a bearer token when set
	Timeout  time.Duration
	CacheDir string // empty disables the settings cache
	CacheTTL time.Duration
	Client   *http.Client
}

// HTTP fetches settings and bookings from the booking backend's REST API.
// Settings may be cached on disk; bookings are always fetched fresh.
type HTTP struct {
	base     *url.URL
	token    string
	hc       *http.Client
	cache    *FileCache
	cacheTTL time.Duration
}

// NewHTTP creates a REST snapshot client.
func NewHTTP(opts HTTPOptions) (*HTTP, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("booking API base URL is required")
	}
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing booking API URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("booking API URL must be http or https, got %q", opts.BaseURL)
	}

	hc := opts.Client
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}

	h := &HTTP{base: base, token: opts.Token, hc: hc, cacheTTL: opts.CacheTTL}
	if opts.CacheDir != "" && opts.CacheTTL > 0 {
		h.cache = NewFileCache(opts.CacheDir)
	}
	return h, nil
}

// BackendType returns "http".
func (h *HTTP) BackendType() string { return "http" }

// Ping checks that the settings endpoint answers.
func (h *HTTP) Ping(ctx context.Context) error {
	resp, err := h.get(ctx, "settings", nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// Settings returns the restaurant configuration, from cache when fresh.
func (h *HTTP) Settings(ctx context.Context) (*model.Settings, error) {
	key := "settings:" + h.base.String()

	var settings model.Settings
	if h.cache != nil && h.cache.Get(key, h.cacheTTL, &settings) {
		log.Debug().Str("url", h.base.String()).Msg("settings served from cache")
		return &settings, nil
	}

	if err := h.getJSON(ctx, "settings", nil, &settings); err != nil {
		return nil, fmt.Errorf("fetching settings: %w", err)
	}

	if h.cache != nil {
		if err := h.cache.Set(key, settings); err != nil {
			log.Warn().Err(err).Msg("caching settings failed")
		}
	}
	return &settings, nil
}

// Bookings returns the bookings dated within r.
func (h *HTTP) Bookings(ctx context.Context, r Range) ([]model.Booking, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("from", r.From.String())
	q.Set("to", r.To.String())

	var bookings []model.Booking
	if err := h.getJSON(ctx, "bookings", q, &bookings); err != nil {
		return nil, fmt.Errorf("fetching bookings: %w", err)
	}
	log.Debug().
		Str("from", r.From.String()).
		Str("to", r.To.String()).
		Int("count", len(bookings)).
		Msg("bookings fetched")

	// The backend may ignore the range parameters.
	return filterBookings(bookings, r), nil
}

func (h *HTTP) getJSON(ctx context.Context, path string, q url.Values, dest any) error {
	resp, err := h.get(ctx, path, q)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

// get issues a GET and returns the response if the status is 2xx.
func (h *HTTP) get(ctx context.Context, path string, q url.Values) (*http.Response, error) {
	u := h.base.JoinPath(path)
	if q != nil {
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := h.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", u.Redacted(), err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("%w: GET %s returned %d: %s",
			ErrUnexpectedStatus, u.Redacted(), resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return resp, nil
}
