// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	applyDefaults(viper.GetViper())
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)

	v.SetDefault("server.url", "http://localhost:8081/")
	v.SetDefault("server.timeout", 10*time.Second)
	v.SetDefault("server.useragent", "duckwatch")
	v.SetDefault("server.ratelimit", 10.0)
	v.SetDefault("server.speciescachettl", 1*time.Hour)

	v.SetDefault("form.resetonopen", false)
	v.SetDefault("form.timezone", "Local")

	v.SetDefault("log.enabled", true)
	v.SetDefault("log.path", "logs/duckwatch.log")
	v.SetDefault("log.rotation", RotationDaily)
	v.SetDefault("log.maxsize", 10485760)
	v.SetDefault("log.level", "info")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.listen", "127.0.0.1:9095")

	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.dsn", "")

	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.topic", "duckwatch/sightings")
	v.SetDefault("mqtt.clientid", "duckwatch")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")

	v.SetDefault("devserver.listen", "127.0.0.1:8081")
	v.SetDefault("devserver.seed", true)
}

// DefaultSettings returns settings built from the default values only.
func DefaultSettings() *Settings {
	v := viper.New()
	applyDefaults(v)

	settings := &Settings{}
	// Defaults are static and always decode
	_ = v.Unmarshal(settings)
	return settings
}
