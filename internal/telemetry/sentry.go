// Package telemetry wires error reporting to Sentry.
package telemetry

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/tphakala/duckwatch/internal/conf"
	"github.com/tphakala/duckwatch/internal/errors"
	"github.com/tphakala/duckwatch/internal/logging"
)

// FlushTimeout bounds how long Flush waits for queued events at shutdown.
const FlushTimeout = 2 * time.Second

var sentryInitialized atomic.Bool

// Init initializes Sentry when it is enabled in settings and installs the
// reporter used by the errors package. It is a no-op when disabled.
func Init(settings *conf.Settings, version string) error {
	return initSentry(settings, version, nil)
}

func initSentry(settings *conf.Settings, version string, transport sentry.Transport) error {
	if !settings.Sentry.Enabled {
		return nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              settings.Sentry.DSN,
		Transport:        transport,
		SampleRate:       1.0,
		Debug:            false,
		AttachStacktrace: false,
		Environment:      environment(settings),
		ServerName:       "",
		Release:          fmt.Sprintf("duckwatch@%s", version),
		BeforeSend:       beforeSend,
	})
	if err != nil {
		return fmt.Errorf("sentry initialization failed: %w", err)
	}

	sentryInitialized.Store(true)
	errors.SetTelemetryReporter(errors.NewSentryReporter(true))

	logging.ForService("telemetry").Info("error telemetry enabled", "release", version)
	return nil
}

func environment(settings *conf.Settings) string {
	if settings.Debug {
		return "development"
	}
	return "production"
}

// beforeSend strips data that could identify the user or host.
func beforeSend(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	event.User = sentry.User{}
	event.ServerName = ""

	if event.Contexts != nil {
		delete(event.Contexts, "device")
		delete(event.Contexts, "os")
	}

	if event.Tags != nil {
		delete(event.Tags, "server_name")
		delete(event.Tags, "hostname")
	}

	return event
}

// IsInitialized reports whether Sentry was set up by Init.
func IsInitialized() bool {
	return sentryInitialized.Load()
}

// Flush waits up to timeout for buffered events and detaches the reporter.
func Flush(timeout time.Duration) bool {
	if !sentryInitialized.Load() {
		return true
	}
	errors.SetTelemetryReporter(nil)
	return sentry.Flush(timeout)
}
