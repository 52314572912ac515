// config.go: This file contains the configuration for duckwatch. It defines the settings struct and functions to load and save the settings.
package conf

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

//go:embed config.yaml
var configFiles embed.FS

// ServerSettings describes the REST backend the client talks to.
type ServerSettings struct {
	URL             string        `yaml:"url"`             // base URL of the sightings backend
	Timeout         time.Duration `yaml:"timeout"`         // default per-request timeout
	UserAgent       string        `yaml:"useragent"`       // User-Agent header sent with requests
	RateLimit       float64       `yaml:"ratelimit"`       // max requests per second, 0 disables limiting
	SpeciesCacheTTL time.Duration `yaml:"speciescachettl"` // how long the species list is cached
}

// FormSettings contains settings for the sighting creation form.
type FormSettings struct {
	ResetOnOpen bool   `yaml:"resetonopen"` // true to clear the draft every time the form opens
	Timezone    string `yaml:"timezone"`    // IANA zone used to interpret entered date and time, "Local" for system zone
}

// Location resolves the configured timezone.
func (f FormSettings) Location() (*time.Location, error) {
	switch f.Timezone {
	case "", "Local", "local":
		return time.Local, nil
	case "UTC", "utc":
		return time.UTC, nil
	}
	return time.LoadLocation(f.Timezone)
}

// LogConfig defines the configuration for a log file
type LogConfig struct {
	Enabled  bool         `yaml:"enabled"`  // true to enable file logging
	Path     string       `yaml:"path"`     // path to the log file
	Rotation RotationType `yaml:"rotation"` // type of log rotation
	MaxSize  int64        `yaml:"maxsize"`  // max size in bytes for RotationSize
	Level    string       `yaml:"level"`    // debug, info, warn or error
}

// RotationType defines different types of log rotations.
type RotationType string

const (
	RotationDaily  RotationType = "daily"
	RotationWeekly RotationType = "weekly"
	RotationSize   RotationType = "size"
)

// MetricsSettings controls the Prometheus endpoint.
type MetricsSettings struct {
	Enabled bool   `yaml:"enabled"` // true to serve /metrics
	Listen  string `yaml:"listen"`  // listen address for the metrics endpoint
}

// SentrySettings controls error telemetry.
type SentrySettings struct {
	Enabled bool   `yaml:"enabled"` // true to report errors to Sentry
	DSN     string `yaml:"dsn"`     // Sentry project DSN
}

// MQTTSettings controls publishing of created sightings to a broker.
type MQTTSettings struct {
	Enabled  bool   `yaml:"enabled"`  // true to publish new sightings
	Broker   string `yaml:"broker"`   // broker URL, e.g. tcp://localhost:1883
	Topic    string `yaml:"topic"`    // topic for sighting events
	ClientID string `yaml:"clientid"` // MQTT client identifier
	Username string `yaml:"username"` // broker username
	Password string `yaml:"password"` // broker password
}

// DevServerSettings controls the in-memory development backend.
type DevServerSettings struct {
	Listen string `yaml:"listen"` // listen address
	Seed   bool   `yaml:"seed"`   // true to preload example sightings
}

// Settings contains all configuration options for duckwatch.
type Settings struct {
	Debug     bool              `yaml:"debug"`
	Server    ServerSettings    `yaml:"server"`
	Form      FormSettings      `yaml:"form"`
	Log       LogConfig         `yaml:"log"`
	Metrics   MetricsSettings   `yaml:"metrics"`
	Sentry    SentrySettings    `yaml:"sentry"`
	MQTT      MQTTSettings      `yaml:"mqtt"`
	DevServer DevServerSettings `yaml:"devserver"`
}

// settingsInstance is the current settings instance
var (
	settingsInstance *Settings
	once             sync.Once
	settingsMutex    sync.RWMutex
	configFileFlag   string
)

// SetConfigFile makes Load read the given file instead of searching the default paths.
func SetConfigFile(path string) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()
	configFileFlag = path
}

// Load reads the configuration file and environment variables into Settings.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	settings, err := unmarshalSettings()
	if err != nil {
		return nil, err
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// unmarshalSettings decodes and validates the current viper state.
func unmarshalSettings() (*Settings, error) {
	settings := &Settings{}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	return settings, nil
}

// SyncViper re-reads viper after command-line flags were bound so that flag
// values take precedence over the config file.
func SyncViper() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings, err := unmarshalSettings()
	if err != nil {
		return nil, err
	}
	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	setDefaultConfig()

	if err := configureEnvironmentVariables(); err != nil {
		// Invalid environment values are reported but do not stop startup
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	if configFileFlag != "" {
		viper.SetConfigFile(configFileFlag)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file %s: %w", configFileFlag, err)
		}
		return nil
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	err = viper.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return createDefaultConfig(configPaths[0])
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// createDefaultConfig writes the embedded default config to dir and reads it
func createDefaultConfig(dir string) error {
	configPath := filepath.Join(dir, "config.yaml")

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}

	defaultConfig, err := getDefaultConfig()
	if err != nil {
		return err
	}

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	fmt.Fprintln(os.Stderr, "Created default config file at:", configPath)
	return viper.ReadInConfig()
}

// getDefaultConfig reads the default configuration from the embedded config.yaml file.
func getDefaultConfig() (string, error) {
	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		return "", fmt.Errorf("error reading embedded config: %w", err)
	}
	return string(data), nil
}

// GetSettings returns the current settings instance
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// Setting returns the current settings instance, loading it on first use.
// When loading fails the defaults are used so callers always get a value.
func Setting() *Settings {
	once.Do(func() {
		if GetSettings() == nil {
			if _, err := Load(); err != nil {
				fmt.Fprintf(os.Stderr, "Error loading settings, using defaults: %v\n", err)
				settingsMutex.Lock()
				settingsInstance = DefaultSettings()
				settingsMutex.Unlock()
			}
		}
	})
	return GetSettings()
}

// SaveYAMLConfig writes settings to configPath atomically.
// It overwrites the existing file, not preserving comments or structure.
func SaveYAMLConfig(configPath string, settings *Settings) error {
	yamlData, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings to YAML: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(configPath), "config-*.yaml")
	if err != nil {
		return fmt.Errorf("error creating temporary file: %w", err)
	}
	tempFileName := tempFile.Name()
	defer os.Remove(tempFileName)

	if _, err := tempFile.Write(yamlData); err != nil {
		tempFile.Close()
		return fmt.Errorf("error writing to temporary file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("error closing temporary file: %w", err)
	}

	if err := os.Rename(tempFileName, configPath); err != nil {
		return fmt.Errorf("error replacing config file: %w", err)
	}

	return nil
}
