// Package app wires settings, the REST client, the view-models and the
// optional metrics endpoint and MQTT publisher into one unit for the
// commands to drive.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/tphakala/duckwatch/internal/buildinfo"
	"github.com/tphakala/duckwatch/internal/conf"
	"github.com/tphakala/duckwatch/internal/errors"
	"github.com/tphakala/duckwatch/internal/logging"
	"github.com/tphakala/duckwatch/internal/mqtt"
	"github.com/tphakala/duckwatch/internal/observability"
	"github.com/tphakala/duckwatch/internal/sightingapi"
	"github.com/tphakala/duckwatch/internal/telemetry"
	"github.com/tphakala/duckwatch/internal/viewmodel"
)

// Context is shared by the root command and its subcommands. Settings is
// filled in by the root command before any subcommand runs.
type Context struct {
	Settings  *conf.Settings
	BuildInfo *buildinfo.Context

	mu      sync.Mutex
	closers []func() error
}

// OnClose registers fn to run when the process finishes, in reverse order
// of registration.
func (c *Context) OnClose(fn func() error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closers = append(c.closers, fn)
}

// Close runs the registered closers and joins their errors.
func (c *Context) Close() error {
	c.mu.Lock()
	closers := c.closers
	c.closers = nil
	c.mu.Unlock()

	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// App holds the wired components for one command invocation.
type App struct {
	Settings *conf.Settings
	Metrics  *observability.Metrics
	Client   *sightingapi.Client
	List     *viewmodel.ListViewModel
	Form     *viewmodel.FormViewModel

	mqttClient  mqtt.Client
	publisher   *mqtt.Publisher
	stopMetrics func()
	closeOnce   sync.Once
}

// New builds the client and view-models from settings.
func New(settings *conf.Settings) (*App, error) {
	m, err := observability.NewMetrics()
	if err != nil {
		return nil, err
	}

	client, err := sightingapi.New(sightingapi.ConfigFromSettings(settings), sightingapi.WithMetrics(m.API))
	if err != nil {
		return nil, err
	}

	loc, err := settings.Form.Location()
	if err != nil {
		return nil, fmt.Errorf("form timezone: %w", err)
	}

	a := &App{
		Settings: settings,
		Metrics:  m,
		Client:   client,
	}

	a.List = viewmodel.NewListViewModel(client, viewmodel.WithListMetrics(m.ViewModel))

	formOpts := []viewmodel.FormOption{
		viewmodel.WithRefresher(a.List),
		viewmodel.WithLocation(loc),
		viewmodel.WithResetOnOpen(settings.Form.ResetOnOpen),
		viewmodel.WithFormMetrics(m.ViewModel),
	}
	if settings.MQTT.Enabled {
		cfg := mqtt.ConfigFromSettings(settings)
		a.mqttClient = mqtt.NewClient(cfg, m.MQTT)
		a.publisher = mqtt.NewPublisher(a.mqttClient, cfg.Topic)
		formOpts = append(formOpts, viewmodel.WithCreatedHook(a.publisher.Hook()))
	}
	a.Form = viewmodel.NewFormViewModel(client, formOpts...)

	return a, nil
}

// StartMetrics serves /metrics when enabled in settings.
func (a *App) StartMetrics() error {
	stop, err := ServeMetrics(a.Settings, a.Metrics)
	if err != nil {
		return err
	}
	a.stopMetrics = stop
	return nil
}

// ServeMetrics starts the metrics endpoint for m when enabled in settings.
// The returned function stops it and waits for the server to exit.
func ServeMetrics(settings *conf.Settings, m *observability.Metrics) (stop func(), err error) {
	if !settings.Metrics.Enabled {
		return func() {}, nil
	}
	endpoint, err := observability.NewEndpoint(settings, m)
	if err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	quit := make(chan struct{})
	if err := endpoint.Start(&wg, quit); err != nil {
		return nil, err
	}
	return sync.OnceFunc(func() {
		close(quit)
		wg.Wait()
	}), nil
}

// Close stops background services and releases connections.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		if a.stopMetrics != nil {
			a.stopMetrics()
		}
		if a.publisher != nil {
			a.publisher.Close()
		}
		if a.mqttClient != nil {
			a.mqttClient.Disconnect()
		}
		a.Client.Close()
	})
}

// Initialize loads the list and the species list. Both are attempted; the
// first error is returned.
func (a *App) Initialize(ctx context.Context) error {
	listErr := a.List.Initialize(ctx)
	formErr := a.Form.Initialize(ctx)
	if listErr != nil {
		return listErr
	}
	return formErr
}

// SetupLogging points the structured logger at the configured log file and
// the human-readable logger at stderr. When interactive is set the terminal
// belongs to the UI and both loggers go to the file. The returned function
// closes the log file.
func SetupLogging(settings *conf.Settings, interactive bool) (func() error, error) {
	level := settings.Log.LogLevel()
	if settings.Debug {
		level = slog.LevelDebug
	}
	logging.SetLevel(level)

	noop := func() error { return nil }

	var human io.Writer = os.Stderr
	if interactive {
		human = io.Discard
	}

	if !settings.Log.Enabled {
		logging.SetOutput(io.Discard, human)
		return noop, nil
	}

	w, err := logging.NewFileWriter(settings.Log.Path, settings.Log)
	if err != nil {
		logging.SetOutput(io.Discard, human)
		return noop, err
	}
	if interactive {
		human = w
	}
	logging.SetOutput(w, human)
	return w.Close, nil
}

// SetupTelemetry initializes Sentry when enabled.
func SetupTelemetry(settings *conf.Settings, info *buildinfo.Context) error {
	return telemetry.Init(settings, info.GetVersion())
}

// ShutdownTelemetry flushes queued error reports.
func ShutdownTelemetry() {
	telemetry.Flush(telemetry.FlushTimeout)
}
