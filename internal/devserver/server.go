package devserver

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/tphakala/duckwatch/internal/errors"
	"github.com/tphakala/duckwatch/internal/logging"
	"github.com/tphakala/duckwatch/internal/observability/metrics"
)

const (
	// ShutdownTimeout bounds graceful shutdown of the HTTP server.
	ShutdownTimeout = 5 * time.Second

	// bodyLimit caps POST bodies; a sighting is a few hundred bytes.
	bodyLimit = "64K"
)

// Server exposes a Store over the sightings REST API.
type Server struct {
	echo    *echo.Echo
	store   *Store
	metrics *metrics.HTTPMetrics
	logger  *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics records per-request metrics.
func WithMetrics(m *metrics.HTTPMetrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithLogger overrides the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// New creates a Server backed by store.
func New(store *Store, opts ...Option) *Server {
	s := &Server{
		store:  store,
		logger: logging.ForService("devserver"),
	}
	for _, opt := range opts {
		opt(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(newRequestLogger(s.logger))
	e.Use(middleware.BodyLimit(bodyLimit))
	if s.metrics != nil {
		e.Use(s.metricsMiddleware)
		s.metrics.SetSightingsStored(store.Len())
	}

	e.GET("/sightings", s.listSightings)
	e.POST("/sightings", s.createSighting)
	e.GET("/species", s.listSpecies)

	s.echo = e
	return s
}

// ServeHTTP makes the Server usable with httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Listen binds addr. Call Serve afterwards.
func (s *Server) Listen(addr string) (net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	s.echo.Listener = ln
	return ln.Addr(), nil
}

// Serve handles requests until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	if s.echo.Listener == nil {
		return errors.Newf("Listen must be called before Serve").
			Component("devserver").
			Category(errors.CategoryState).
			Build()
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dev backend listening", "address", s.echo.Listener.Addr().String())
		errCh <- s.echo.Start("")
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("dev backend stopped")
	return nil
}

// newRequestLogger logs one line per request.
func newRequestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.String("ip", v.RemoteIP),
				slog.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			logger.LogAttrs(c.Request().Context(), slog.LevelInfo, "request", attrs...)
			return nil
		},
	})
}

func (s *Server) metricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		if err := next(c); err != nil {
			c.Error(err)
		}

		req := c.Request()
		resp := c.Response()
		path := c.Path()
		s.metrics.RecordHTTPRequest(req.Method, path, resp.Status, time.Since(start).Seconds())
		s.metrics.RecordHTTPResponseSize(req.Method, path, resp.Size)
		return nil
	}
}
