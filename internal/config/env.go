package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

// envOverrides are SIGNBOARD_* variables. A zero value means unset.
type envOverrides struct {
	DiscoveryURL    string        `env:"SIGNBOARD_DISCOVERY_URL"`
	DiscoveryScheme string        `env:"SIGNBOARD_DISCOVERY_SCHEME"`
	DiscoveryHost   string        `env:"SIGNBOARD_DISCOVERY_HOST"`
	DiscoveryPort   int           `env:"SIGNBOARD_DISCOVERY_PORT"`
	ReconnectDelay  time.Duration `env:"SIGNBOARD_RECONNECT_DELAY"`
	LogLevel        string        `env:"SIGNBOARD_LOG_LEVEL"`
	LogFormat       string        `env:"SIGNBOARD_LOG_FORMAT"`
	LogFile         string        `env:"SIGNBOARD_LOG_FILE"`
	MetricsAddr     string        `env:"SIGNBOARD_METRICS_ADDR"`
}

// LoadDotEnv reads .env files into the process environment if present.
func LoadDotEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		slog.Debug("config.dotenv_skipped", "component", "config", "error", err)
	}
}

// ApplyEnv overrides s with any SIGNBOARD_* environment variables.
func ApplyEnv(s *Settings) error {
	var o envOverrides
	if err := env.Load(&o, nil); err != nil {
		return fmt.Errorf("load environment: %w", err)
	}

	setString(&s.Discovery.URL, o.DiscoveryURL)
	setString(&s.Discovery.Scheme, o.DiscoveryScheme)
	setString(&s.Discovery.Host, o.DiscoveryHost)
	if o.DiscoveryPort != 0 {
		s.Discovery.Port = o.DiscoveryPort
	}
	if o.ReconnectDelay != 0 {
		s.Timing.ReconnectDelay = o.ReconnectDelay
	}
	setString(&s.Log.Level, o.LogLevel)
	setString(&s.Log.Format, o.LogFormat)
	setString(&s.Log.File, o.LogFile)
	setString(&s.MetricsAddr, o.MetricsAddr)
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
