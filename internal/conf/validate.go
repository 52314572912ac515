// conf/validate.go

package conf

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// LogLevel returns the slog level for the configured log level name.
func (l LogConfig) LogLevel() slog.Level {
	if level, ok := logLevels[strings.ToLower(l.Level)]; ok {
		return level
	}
	return slog.LevelInfo
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	for _, err := range []error{
		validateServerSettings(&settings.Server),
		validateFormSettings(&settings.Form),
		validateLogSettings(&settings.Log),
		validateMetricsSettings(&settings.Metrics),
		validateSentrySettings(&settings.Sentry),
		validateMQTTSettings(&settings.MQTT),
	} {
		if err != nil {
			ve.Errors = append(ve.Errors, err.Error())
		}
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateServerSettings(settings *ServerSettings) error {
	var errs []string

	u, err := url.Parse(settings.URL)
	switch {
	case err != nil:
		errs = append(errs, fmt.Sprintf("server url is invalid: %v", err))
	case u.Scheme != "http" && u.Scheme != "https":
		errs = append(errs, "server url must use http or https")
	case u.Host == "":
		errs = append(errs, "server url must include a host")
	}

	if settings.Timeout < 0 {
		errs = append(errs, "server timeout must not be negative")
	}
	if settings.RateLimit < 0 {
		errs = append(errs, "server ratelimit must not be negative")
	}
	if settings.SpeciesCacheTTL < 0 {
		errs = append(errs, "server speciescachettl must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("server settings errors: %v", errs)
	}
	return nil
}

func validateFormSettings(settings *FormSettings) error {
	if _, err := settings.Location(); err != nil {
		return fmt.Errorf("form timezone %q is invalid: %w", settings.Timezone, err)
	}
	return nil
}

func validateLogSettings(settings *LogConfig) error {
	if !settings.Enabled {
		return nil
	}

	var errs []string
	if settings.Path == "" {
		errs = append(errs, "log path must be set when logging is enabled")
	}
	switch settings.Rotation {
	case RotationDaily, RotationWeekly, RotationSize:
	default:
		errs = append(errs, fmt.Sprintf("unknown log rotation %q", settings.Rotation))
	}
	if settings.Rotation == RotationSize && settings.MaxSize <= 0 {
		errs = append(errs, "log maxsize must be positive for size rotation")
	}
	if _, ok := logLevels[strings.ToLower(settings.Level)]; !ok && settings.Level != "" {
		errs = append(errs, fmt.Sprintf("unknown log level %q", settings.Level))
	}

	if len(errs) > 0 {
		return fmt.Errorf("log settings errors: %v", errs)
	}
	return nil
}

func validateMetricsSettings(settings *MetricsSettings) error {
	if settings.Enabled && settings.Listen == "" {
		return fmt.Errorf("metrics listen address must be set when metrics are enabled")
	}
	return nil
}

func validateSentrySettings(settings *SentrySettings) error {
	if settings.Enabled && settings.DSN == "" {
		return fmt.Errorf("sentry dsn must be set when sentry is enabled")
	}
	return nil
}

func validateMQTTSettings(settings *MQTTSettings) error {
	if !settings.Enabled {
		return nil
	}

	var errs []string
	if settings.Broker == "" {
		errs = append(errs, "broker URL is required")
	} else if err := validateEnvURL(settings.Broker); err != nil {
		errs = append(errs, fmt.Sprintf("broker URL is invalid: %v", err))
	}
	if settings.Topic == "" {
		errs = append(errs, "topic is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("mqtt settings errors: %v", errs)
	}
	return nil
}
