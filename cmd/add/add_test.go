package add

import (
	"bytes"
	"net/http/httptest"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/duckwatch/internal/app"
	"github.com/tphakala/duckwatch/internal/conf"
	"github.com/tphakala/duckwatch/internal/devserver"
	"github.com/tphakala/duckwatch/internal/errors"
	"github.com/tphakala/duckwatch/internal/logging"
)

func runAdd(t *testing.T, store *devserver.Store, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	return runAddIn(t, store, "UTC", time.Now, args...)
}

func runAddIn(t *testing.T, store *devserver.Store, timezone string, clock func() time.Time, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	server := httptest.NewServer(devserver.New(store, devserver.WithLogger(logging.Discard())))
	t.Cleanup(server.Close)

	settings := conf.DefaultSettings()
	settings.Server.URL = server.URL
	settings.Form.Timezone = timezone

	cmd := newCommand(&app.Context{Settings: settings}, clock)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	err = cmd.ExecuteContext(t.Context())
	return out.String(), errOut.String(), err
}

func TestAddCreatesSighting(t *testing.T) {
	t.Parallel()

	store := devserver.NewSeededStore()
	out, _, err := runAdd(t, store,
		"--date", "5.3.2020",
		"--time", "14:30",
		"--species", "Gadwall",
		"--description", "seen near pond",
		"--count", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Sighting saved.")

	records := store.List()
	require.Len(t, records, 6)
	created := records[5]
	assert.Equal(t, "Gadwall", created.Species)
	assert.Equal(t, 2, created.Count)
	assert.Equal(t, "2020-03-05 14:30", created.DateTime.UTC().Format("2006-01-02 15:04"))
}

func TestAddDefaultsSpeciesAndCount(t *testing.T) {
	t.Parallel()

	store := devserver.NewStore(devserver.DefaultSpecies)
	_, _, err := runAdd(t, store, "--description", "quiet morning")
	require.NoError(t, err)

	records := store.List()
	require.Len(t, records, 1)
	assert.Equal(t, devserver.DefaultSpecies[0], records[0].Species)
	assert.Equal(t, 1, records[0].Count)
}

func TestAddReportsFieldErrors(t *testing.T) {
	t.Parallel()

	store := devserver.NewSeededStore()
	_, stderr, err := runAdd(t, store,
		"--date", "not a date",
		"--species", "Dodo",
		"--count", "0")
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))

	assert.Contains(t, stderr, "date: A valid date must be given")
	assert.Contains(t, stderr, "species: Invalid species")
	assert.Contains(t, stderr, "description: Description cannot be empty")
	assert.Contains(t, stderr, "count: Count must be a valid number higher than 0")
	assert.NotContains(t, stderr, "time:")
	assert.Equal(t, 5, store.Len())
}

func TestAddDefaultsToNowInFormTimezone(t *testing.T) {
	t.Parallel()

	now := time.Date(2020, 6, 1, 12, 0, 0, 0, time.UTC)
	store := devserver.NewStore(devserver.DefaultSpecies)
	_, _, err := runAddIn(t, store, "Europe/Helsinki", func() time.Time { return now },
		"--description", "evening swim")
	require.NoError(t, err)

	records := store.List()
	require.Len(t, records, 1)
	assert.True(t, records[0].DateTime.Equal(now), "posted %v, want %v", records[0].DateTime, now)
}
