package app

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/duckwatch/internal/conf"
	"github.com/tphakala/duckwatch/internal/devserver"
	"github.com/tphakala/duckwatch/internal/logging"
	"github.com/tphakala/duckwatch/internal/observability"
)

func TestContextCloseRunsInReverseOrder(t *testing.T) {
	t.Parallel()

	var ctx Context
	var order []int
	errFirst := errors.New("first failed")

	ctx.OnClose(func() error { order = append(order, 1); return errFirst })
	ctx.OnClose(func() error { order = append(order, 2); return nil })

	err := ctx.Close()
	require.ErrorIs(t, err, errFirst)
	assert.Equal(t, []int{2, 1}, order)

	// closers run once
	require.NoError(t, ctx.Close())
	assert.Len(t, order, 2)
}

func TestNewAndInitialize(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(devserver.New(devserver.NewSeededStore(), devserver.WithLogger(logging.Discard())))
	t.Cleanup(server.Close)

	settings := conf.DefaultSettings()
	settings.Server.URL = server.URL
	settings.Form.Timezone = "UTC"

	a, err := New(settings)
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, a.Initialize(t.Context()))
	assert.Equal(t, 5, a.List.Len())
	assert.Equal(t, devserver.DefaultSpecies, a.Form.Species())
}

func TestNewRejectsUnknownTimezone(t *testing.T) {
	t.Parallel()

	settings := conf.DefaultSettings()
	settings.Server.URL = "http://127.0.0.1:1"
	settings.Form.Timezone = "Mars/Olympus_Mons"

	_, err := New(settings)
	require.Error(t, err)
}

func TestServeMetrics(t *testing.T) {
	t.Parallel()

	m, err := observability.NewMetrics()
	require.NoError(t, err)

	settings := conf.DefaultSettings()
	settings.Metrics.Enabled = false
	stop, err := ServeMetrics(settings, m)
	require.NoError(t, err)
	stop()

	settings.Metrics.Enabled = true
	settings.Metrics.Listen = "127.0.0.1:0"
	stop, err = ServeMetrics(settings, m)
	require.NoError(t, err)
	stop()
	stop()
}

func TestCloseWithoutMetrics(t *testing.T) {
	t.Parallel()

	settings := conf.DefaultSettings()
	settings.Server.URL = "http://127.0.0.1:1"
	a, err := New(settings)
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		a.Close()
		a.Close()
	})
}
