// Package sightingapi is the typed client for the sightings REST backend.
package sightingapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/tphakala/duckwatch/internal/conf"
	"github.com/tphakala/duckwatch/internal/errors"
	"github.com/tphakala/duckwatch/internal/httpclient"
	"github.com/tphakala/duckwatch/internal/logging"
	"github.com/tphakala/duckwatch/internal/observability/metrics"
	"github.com/tphakala/duckwatch/internal/sighting"
)

const (
	sightingsPath = "sightings"
	speciesPath   = "species"

	speciesCacheKey = "species"

	// maxErrorBody caps how much of an error response is kept for context.
	maxErrorBody = 512
)

// Config holds the backend location and client tuning.
type Config struct {
	BaseURL         string
	Timeout         time.Duration
	UserAgent       string
	RateLimit       float64       // requests per second, 0 disables limiting
	SpeciesCacheTTL time.Duration // 0 disables caching
	Transport       http.RoundTripper
}

// ConfigFromSettings maps the server section of the settings to a Config.
func ConfigFromSettings(settings *conf.Settings) Config {
	return Config{
		BaseURL:         settings.Server.URL,
		Timeout:         settings.Server.Timeout,
		UserAgent:       settings.Server.UserAgent,
		RateLimit:       settings.Server.RateLimit,
		SpeciesCacheTTL: settings.Server.SpeciesCacheTTL,
	}
}

// Recorder receives request metrics. *metrics.APIMetrics implements it.
type Recorder interface {
	metrics.Recorder
	RecordCacheHit()
	RecordCacheMiss()
}

type noopRecorder struct {
	metrics.NoOpRecorder
}

func (noopRecorder) RecordCacheHit()  {}
func (noopRecorder) RecordCacheMiss() {}

// Option customizes a Client.
type Option func(*Client)

// WithMetrics records request counts, durations and errors.
func WithMetrics(r Recorder) Option {
	return func(c *Client) {
		if r != nil {
			c.metrics = r
		}
	}
}

// WithLogger replaces the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// Client talks to GET /sightings, GET /species and POST /sightings.
type Client struct {
	baseURL  *url.URL
	timeout  time.Duration
	http     *httpclient.Client
	species  *cache.Cache
	cacheTTL time.Duration
	metrics  Recorder
	logger   *slog.Logger
}

// New creates a client for cfg.BaseURL.
func New(cfg Config, opts ...Option) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, errors.Newf("invalid server url %q", cfg.BaseURL).
			Component("sightingapi").
			Category(errors.CategoryConfiguration).
			Context("operation", "new_client").
			Build()
	}

	c := &Client{
		baseURL: base,
		timeout: cfg.Timeout,
		http: httpclient.New(&httpclient.Config{
			DefaultTimeout: cfg.Timeout,
			UserAgent:      cfg.UserAgent,
			RateLimit:      cfg.RateLimit,
			Transport:      cfg.Transport,
		}),
		cacheTTL: cfg.SpeciesCacheTTL,
		metrics:  noopRecorder{},
		logger:   logging.ForService("sightingapi"),
	}
	if cfg.SpeciesCacheTTL > 0 {
		c.species = cache.New(cfg.SpeciesCacheTTL, 2*cfg.SpeciesCacheTTL)
	}

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func (c *Client) endpoint(path string) string {
	return c.baseURL.JoinPath(path).String()
}

// ListSightings fetches every sighting.
func (c *Client) ListSightings(ctx context.Context) ([]sighting.Record, error) {
	const op = metrics.OpListSightings
	start := time.Now()

	var entries []json.RawMessage
	if err := c.getJSON(ctx, op, c.endpoint(sightingsPath), &entries); err != nil {
		return nil, c.fail(op, start, err)
	}

	records, skipped := sighting.DecodeRecords(entries)
	for _, err := range skipped {
		c.metrics.RecordError(op, string(errors.CategoryFileParsing))
		c.logger.Warn("skipping malformed sighting", "error", err)
	}

	c.succeed(op, start)
	c.logger.Debug("fetched sightings", "count", len(records), "duration_ms", time.Since(start).Milliseconds())
	return records, nil
}

// ListSpecies fetches the known species names in server order. Results are
// cached for SpeciesCacheTTL.
func (c *Client) ListSpecies(ctx context.Context) ([]string, error) {
	const op = metrics.OpListSpecies

	if c.species != nil {
		if cached, found := c.species.Get(speciesCacheKey); found {
			c.metrics.RecordCacheHit()
			return slices.Clone(cached.([]string)), nil
		}
		c.metrics.RecordCacheMiss()
	}

	start := time.Now()
	var dtos []sighting.SpeciesDTO
	if err := c.getJSON(ctx, op, c.endpoint(speciesPath), &dtos); err != nil {
		return nil, c.fail(op, start, err)
	}

	names := sighting.SpeciesNames(dtos)
	if c.species != nil {
		c.species.Set(speciesCacheKey, slices.Clone(names), cache.DefaultExpiration)
	}

	c.succeed(op, start)
	c.logger.Debug("fetched species", "count", len(names))
	return names, nil
}

// InvalidateSpecies drops the cached species list.
func (c *Client) InvalidateSpecies() {
	if c.species != nil {
		c.species.Delete(speciesCacheKey)
	}
}

// CreateSighting posts a new sighting. Any 2xx status is success; the
// response body is ignored.
func (c *Client) CreateSighting(ctx context.Context, req sighting.CreateRequest) error {
	const op = metrics.OpCreateSighting
	start := time.Now()
	target := c.endpoint(sightingsPath)

	resp, err := c.http.Post(ctx, target, "application/json", req)
	if err != nil {
		return c.fail(op, start, c.transportError(op, target, err))
	}
	defer drainAndClose(resp)

	if err := checkStatus(op, target, resp); err != nil {
		return c.fail(op, start, err)
	}

	c.succeed(op, start)
	c.logger.Info("sighting created", "species", req.Species, "count", req.Count, "date_time", req.DateTime)
	return nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.http.Close()
}

func (c *Client) getJSON(ctx context.Context, op, target string, v any) error {
	resp, err := c.http.Get(ctx, target)
	if err != nil {
		return c.transportError(op, target, err)
	}
	defer drainAndClose(resp)

	if err := checkStatus(op, target, resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return errors.New(fmt.Errorf("decode %s response: %w", op, err)).
			Component("sightingapi").
			Category(errors.CategoryFileParsing).
			Context("operation", op).
			Context("url", target).
			Build()
	}
	return nil
}

func (c *Client) transportError(op, target string, err error) error {
	category := errors.CategoryNetwork
	switch {
	case errors.Is(err, context.Canceled):
		category = errors.CategoryCancellation
	case errors.Is(err, context.DeadlineExceeded):
		category = errors.CategoryTimeout
	}
	return errors.New(err).
		Component("sightingapi").
		Category(category).
		NetworkContext(target, c.timeout).
		Context("operation", op).
		Build()
}

func checkStatus(op, target string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return errors.Newf("%s: unexpected status %d", op, resp.StatusCode).
		Component("sightingapi").
		Category(errors.CategoryHTTP).
		Context("operation", op).
		Context("url", target).
		Context("status_code", resp.StatusCode).
		Context("response_body", string(body)).
		Build()
}

// StatusCode returns the HTTP status carried by an error from this package,
// or 0 when the request never got a response.
func StatusCode(err error) int {
	var ee *errors.EnhancedError
	if !errors.As(err, &ee) {
		return 0
	}
	if code, ok := ee.GetContext()["status_code"].(int); ok {
		return code
	}
	return 0
}

func (c *Client) succeed(op string, start time.Time) {
	c.metrics.RecordOperation(op, metrics.StatusSuccess)
	c.metrics.RecordDuration(op, time.Since(start).Seconds())
}

func (c *Client) fail(op string, start time.Time, err error) error {
	c.metrics.RecordOperation(op, metrics.StatusError)
	c.metrics.RecordDuration(op, time.Since(start).Seconds())

	errorType := string(errors.CategoryGeneric)
	var ee *errors.EnhancedError
	if errors.As(err, &ee) {
		errorType = ee.GetCategory()
	}
	c.metrics.RecordError(op, errorType)

	c.logger.Warn("backend request failed", "operation", op, "error", err, "error_type", errorType)
	return err
}

func drainAndClose(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	_ = resp.Body.Close()
}
