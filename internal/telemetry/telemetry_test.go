package telemetry

import (
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/duckwatch/internal/conf"
	"github.com/tphakala/duckwatch/internal/errors"
)

func TestInitDisabledIsNoop(t *testing.T) {
	settings := conf.DefaultSettings()

	require.NoError(t, Init(settings, "test"))
	assert.False(t, IsInitialized())
	assert.Nil(t, errors.GetTelemetryReporter())
	assert.True(t, Flush(FlushTimeout))
}

func TestInitReportsEnhancedErrors(t *testing.T) {
	transport := &mockTransport{}
	settings := conf.DefaultSettings()
	settings.Sentry.Enabled = true

	require.NoError(t, initSentry(settings, "test", transport))
	t.Cleanup(func() {
		errors.SetTelemetryReporter(nil)
		sentryInitialized.Store(false)
	})

	assert.True(t, IsInitialized())
	require.NotNil(t, errors.GetTelemetryReporter())

	_ = errors.Newf("backend unavailable").
		Component("sightingapi").
		Category(errors.CategoryNetwork).
		Context("operation", "list_sightings").
		Build()

	assert.True(t, Flush(FlushTimeout))
	assert.Nil(t, errors.GetTelemetryReporter())

	events := transport.Events()
	require.Len(t, events, 1)
	assert.Contains(t, events[0].Message, "backend unavailable")
	assert.Equal(t, "sightingapi", events[0].Tags["component"])
	assert.Equal(t, "duckwatch@test", events[0].Release)
	assert.Equal(t, "production", events[0].Environment)
}

func TestBeforeSendStripsIdentifyingData(t *testing.T) {
	t.Parallel()

	event := &sentry.Event{
		ServerName: "birdhide",
		User:       sentry.User{ID: "42", Email: "birder@example.com"},
		Contexts: map[string]sentry.Context{
			"os":     {"name": "linux"},
			"device": {"arch": "arm64"},
			"app":    {"name": "duckwatch"},
		},
		Tags: map[string]string{"hostname": "birdhide", "component": "viewmodel"},
	}

	filtered := beforeSend(event, nil)

	assert.Empty(t, filtered.ServerName)
	assert.True(t, filtered.User.IsEmpty())
	assert.NotContains(t, filtered.Contexts, "os")
	assert.NotContains(t, filtered.Contexts, "device")
	assert.Contains(t, filtered.Contexts, "app")
	assert.NotContains(t, filtered.Tags, "hostname")
	assert.Equal(t, "viewmodel", filtered.Tags["component"])
}

func TestEnvironmentFollowsDebug(t *testing.T) {
	t.Parallel()

	settings := conf.DefaultSettings()
	assert.Equal(t, "production", environment(settings))
	settings.Debug = true
	assert.Equal(t, "development", environment(settings))
}
