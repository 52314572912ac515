// env.go - Environment variable configuration and validation for duckwatch
package conf

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// envBinding holds metadata for environment variable bindings (internal use)
type envBinding struct {
	ConfigKey string             // Viper config key
	EnvVar    string             // Environment variable name
	Validate  func(string) error // Optional validation function
}

// getEnvBindings returns all environment variable bindings with validation
func getEnvBindings() []envBinding {
	return []envBinding{
		{"debug", "DUCKWATCH_DEBUG", validateEnvBool},

		{"server.url", "DUCKWATCH_SERVER_URL", validateEnvURL},
		{"server.timeout", "DUCKWATCH_SERVER_TIMEOUT", validateEnvDuration},
		{"server.ratelimit", "DUCKWATCH_SERVER_RATELIMIT", validateEnvNonNegativeFloat},

		{"form.timezone", "DUCKWATCH_TIMEZONE", validateEnvTimezone},

		{"log.path", "DUCKWATCH_LOG_PATH", nil},
		{"log.level", "DUCKWATCH_LOG_LEVEL", validateEnvLogLevel},

		{"sentry.enabled", "DUCKWATCH_SENTRY_ENABLED", validateEnvBool},
		{"sentry.dsn", "DUCKWATCH_SENTRY_DSN", nil},

		{"mqtt.enabled", "DUCKWATCH_MQTT_ENABLED", validateEnvBool},
		{"mqtt.broker", "DUCKWATCH_MQTT_BROKER", validateEnvURL},
		{"mqtt.username", "DUCKWATCH_MQTT_USERNAME", nil},
		{"mqtt.password", "DUCKWATCH_MQTT_PASSWORD", nil},
	}
}

// bindEnvVars sets up environment variable bindings with validation (internal)
func bindEnvVars() error {
	var warnings []string

	for _, binding := range getEnvBindings() {
		if err := viper.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			warnings = append(warnings, fmt.Sprintf("Failed to bind %s: %v", binding.EnvVar, err))
			continue
		}

		if binding.Validate != nil {
			if envValue := os.Getenv(binding.EnvVar); envValue != "" {
				if err := binding.Validate(envValue); err != nil {
					warnings = append(warnings, fmt.Sprintf("Invalid %s value '%s': %v", binding.EnvVar, envValue, err))
				}
			}
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}

	return nil
}

// configureEnvironmentVariables enables env overrides for every config key
func configureEnvironmentVariables() error {
	viper.SetEnvPrefix("DUCKWATCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	return bindEnvVars()
}

// Environment variable validation functions

func validateEnvBool(value string) error {
	if _, err := strconv.ParseBool(value); err != nil {
		return fmt.Errorf("must be true or false")
	}
	return nil
}

func validateEnvURL(value string) error {
	u, err := url.Parse(value)
	if err != nil {
		return err
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("must be an absolute URL")
	}
	return nil
}

func validateEnvDuration(value string) error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return err
	}
	if d <= 0 {
		return fmt.Errorf("must be positive")
	}
	return nil
}

func validateEnvNonNegativeFloat(value string) error {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return err
	}
	if f < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

func validateEnvTimezone(value string) error {
	_, err := FormSettings{Timezone: value}.Location()
	return err
}

func validateEnvLogLevel(value string) error {
	if _, ok := logLevels[strings.ToLower(value)]; !ok {
		return fmt.Errorf("must be one of debug, info, warn, error")
	}
	return nil
}
