package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kostyay/signboard/internal/discovery"
	"github.com/kostyay/signboard/internal/model"
	"github.com/kostyay/signboard/internal/weather"
)

// MaxItems is the number of items the number keys can address.
const MaxItems = 9

// DiscoverySettings locates the endpoint that hands out the WebSocket address.
type DiscoverySettings struct {
	Scheme string `yaml:"scheme"`
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	Path   string `yaml:"path"`
	URL    string `yaml:"url"` // overrides scheme/host/port/path when set
}

// ItemSettings is one rotating content item.
type ItemSettings struct {
	Label   string `yaml:"label"`
	Seconds int    `yaml:"seconds"`
}

// TimingSettings holds every timer the board runs.
type TimingSettings struct {
	ReconnectDelay     time.Duration `yaml:"reconnectDelay"`
	DiscoveryPoll      time.Duration `yaml:"discoveryPoll"`
	HandshakeTimeout   time.Duration `yaml:"handshakeTimeout"`
	WeatherInterval    time.Duration `yaml:"weatherInterval"`
	WeatherLoadingPoll time.Duration `yaml:"weatherLoadingPoll"`
	Clock              time.Duration `yaml:"clock"`
	FogThreshold       float64       `yaml:"fogThreshold"` // percent
}

// LogSettings configures slog output.
type LogSettings struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
	File   string `yaml:"file"`   // used while the TUI owns stdout
}

// Settings holds user-configurable options.
type Settings struct {
	Discovery   DiscoverySettings `yaml:"discovery"`
	Items       []ItemSettings    `yaml:"items"`
	Timing      TimingSettings    `yaml:"timing"`
	Log         LogSettings       `yaml:"log"`
	MetricsAddr string            `yaml:"metricsAddr"`
	Animations  bool              `yaml:"animations"` // spinner and live pulse
}

// DefaultSettings returns the reference board configuration.
func DefaultSettings() *Settings {
	return &Settings{
		Discovery: DiscoverySettings{
			Scheme: "http",
			Host:   "localhost",
			Port:   3000,
			Path:   discovery.DefaultPath,
		},
		Items: []ItemSettings{
			{Label: "Vaktliste Elektro", Seconds: 15},
			{Label: "Vaktliste Renovasjon", Seconds: 15},
			{Label: "Vaktliste Bygg", Seconds: 15},
			{Label: "Telefon Vaktliste 1", Seconds: 10},
			{Label: "Telefon Vaktliste 2", Seconds: 10},
		},
		Timing: TimingSettings{
			ReconnectDelay:     5 * time.Second,
			DiscoveryPoll:      2 * time.Second,
			HandshakeTimeout:   10 * time.Second,
			WeatherInterval:    7 * time.Second,
			WeatherLoadingPoll: 500 * time.Millisecond,
			Clock:              time.Second,
			FogThreshold:       10,
		},
		Log: LogSettings{
			Level:  "info",
			Format: "text",
		},
		Animations: true,
	}
}

// DiscoveryURL returns the full discovery endpoint.
func (s *Settings) DiscoveryURL() string {
	if s.Discovery.URL != "" {
		return s.Discovery.URL
	}
	return discovery.URL(s.Discovery.Scheme, s.Discovery.Host, s.Discovery.Port, s.Discovery.Path)
}

// ContentItems converts the configured items for the rotator.
func (s *Settings) ContentItems() []model.ContentItem {
	items := make([]model.ContentItem, len(s.Items))
	for i, it := range s.Items {
		items[i] = model.ContentItem{
			Label:    it.Label,
			Duration: time.Duration(it.Seconds) * time.Second,
		}
	}
	return items
}

// WeatherTiming returns the weather cycle timing.
func (s *Settings) WeatherTiming() weather.Timing {
	return weather.Timing{
		Interval:     s.Timing.WeatherInterval,
		LoadingPoll:  s.Timing.WeatherLoadingPoll,
		FogThreshold: s.Timing.FogThreshold,
	}
}

// Validate checks the settings are usable.
func (s *Settings) Validate() error {
	if len(s.Items) == 0 {
		return errors.New("at least one content item is required")
	}
	if len(s.Items) > MaxItems {
		return fmt.Errorf("at most %d content items are supported, got %d", MaxItems, len(s.Items))
	}

	seen := make(map[string]bool, len(s.Items))
	for i, it := range s.Items {
		if it.Label == "" {
			return fmt.Errorf("item %d: label is required", i+1)
		}
		if seen[it.Label] {
			return fmt.Errorf("item %d: duplicate label %q", i+1, it.Label)
		}
		seen[it.Label] = true
		if it.Seconds <= 0 {
			return fmt.Errorf("item %q: seconds must be positive", it.Label)
		}
	}

	timers := map[string]time.Duration{
		"reconnectDelay":     s.Timing.ReconnectDelay,
		"discoveryPoll":      s.Timing.DiscoveryPoll,
		"handshakeTimeout":   s.Timing.HandshakeTimeout,
		"weatherInterval":    s.Timing.WeatherInterval,
		"weatherLoadingPoll": s.Timing.WeatherLoadingPoll,
		"clock":              s.Timing.Clock,
	}
	for name, d := range timers {
		if d <= 0 {
			return fmt.Errorf("timing.%s must be positive", name)
		}
	}

	if s.Discovery.URL == "" && (s.Discovery.Host == "" || s.Discovery.Port <= 0 || s.Discovery.Port > 65535) {
		return errors.New("discovery needs a url or a host and valid port")
	}
	return nil
}

// SettingsPath returns the path to the settings file.
func SettingsPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "signboard", "settings.yaml"), nil
}

// LoadSettings loads settings from the default path, returning defaults if
// the file does not exist.
func LoadSettings() (*Settings, error) {
	path, err := SettingsPath()
	if err != nil {
		return DefaultSettings(), nil
	}
	return LoadSettingsFrom(path)
}

// LoadSettingsFrom loads settings from path. Keys missing from the file keep
// their default values.
func LoadSettingsFrom(path string) (*Settings, error) {
	settings := DefaultSettings()

	// #nosec G304 - path comes from the user's own flag or config dir
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return settings, err
	}

	if err := yaml.Unmarshal(data, settings); err != nil {
		return DefaultSettings(), fmt.Errorf("parse %s: %w", path, err)
	}
	return settings, nil
}

// SaveSettings writes settings to path.
func SaveSettings(path string, s *Settings) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}
