package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loadFromFile loads settings from a temporary config file with a clean viper state.
func loadFromFile(t *testing.T, content string) (*Settings, error) {
	t.Helper()

	viper.Reset()
	t.Cleanup(func() {
		viper.Reset()
		SetConfigFile("")
	})

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	SetConfigFile(path)

	return Load()
}

func TestDefaultSettings(t *testing.T) {
	settings := DefaultSettings()

	assert.Equal(t, "http://localhost:8081/", settings.Server.URL)
	assert.Equal(t, 10*time.Second, settings.Server.Timeout)
	assert.Equal(t, time.Hour, settings.Server.SpeciesCacheTTL)
	assert.False(t, settings.Form.ResetOnOpen)
	assert.Equal(t, RotationDaily, settings.Log.Rotation)
	assert.Equal(t, "duckwatch/sightings", settings.MQTT.Topic)
	require.NoError(t, ValidateSettings(settings))
}

func TestEmbeddedConfigMatchesDefaults(t *testing.T) {
	data, err := getDefaultConfig()
	require.NoError(t, err)

	settings, err := loadFromFile(t, data)
	require.NoError(t, err)

	assert.Equal(t, DefaultSettings(), settings)
}

func TestLoadOverridesDefaults(t *testing.T) {
	settings, err := loadFromFile(t, `
server:
  url: https://ducks.example.com/api/
  timeout: 3s
form:
  resetonopen: true
  timezone: UTC
`)
	require.NoError(t, err)

	assert.Equal(t, "https://ducks.example.com/api/", settings.Server.URL)
	assert.Equal(t, 3*time.Second, settings.Server.Timeout)
	assert.True(t, settings.Form.ResetOnOpen)
	// Untouched keys keep their defaults
	assert.Equal(t, "duckwatch", settings.Server.UserAgent)
	assert.Same(t, settings, GetSettings())
}

func TestLoadEnvironmentOverride(t *testing.T) {
	t.Setenv("DUCKWATCH_SERVER_URL", "http://10.0.0.5:9000/")

	settings, err := loadFromFile(t, "debug: false\n")
	require.NoError(t, err)

	assert.Equal(t, "http://10.0.0.5:9000/", settings.Server.URL)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	_, err := loadFromFile(t, `
server:
  url: ftp://ducks.example.com
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server url must use http or https")
}

func TestValidateSettingsCollectsAllErrors(t *testing.T) {
	settings := DefaultSettings()
	settings.Server.URL = "not a url"
	settings.Sentry.Enabled = true
	settings.MQTT.Enabled = true
	settings.MQTT.Topic = ""

	err := ValidateSettings(settings)
	require.Error(t, err)

	var ve ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Errors, 3)
}

func TestFormSettingsLocation(t *testing.T) {
	tests := []struct {
		timezone string
		want     string
		wantErr  bool
	}{
		{"", "Local", false},
		{"Local", "Local", false},
		{"UTC", "UTC", false},
		{"Europe/Helsinki", "Europe/Helsinki", false},
		{"Mars/Olympus", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.timezone, func(t *testing.T) {
			loc, err := FormSettings{Timezone: tt.timezone}.Location()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, loc.String())
		})
	}
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", LogConfig{Level: "debug"}.LogLevel().String())
	assert.Equal(t, "WARN", LogConfig{Level: "WARN"}.LogLevel().String())
	assert.Equal(t, "INFO", LogConfig{Level: "bogus"}.LogLevel().String())
}

func TestSaveYAMLConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	settings := DefaultSettings()
	settings.Server.URL = "http://ducks.local:8081/"
	require.NoError(t, SaveYAMLConfig(path, settings))

	loaded, err := loadFromFile(t, mustRead(t, path))
	require.NoError(t, err)
	assert.Equal(t, settings, loaded)
}

func mustRead(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path) //nolint:gosec // G304: test fixture path
	require.NoError(t, err)
	return string(data)
}
