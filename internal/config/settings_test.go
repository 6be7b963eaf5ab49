package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	if s == nil {
		t.Fatal("DefaultSettings returned nil")
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if len(s.Items) != 5 {
		t.Errorf("expected 5 reference items, got %d", len(s.Items))
	}
	if s.DiscoveryURL() != "http://localhost:3000/get-connection" {
		t.Errorf("DiscoveryURL = %q", s.DiscoveryURL())
	}
	if !s.Animations {
		t.Error("Animations should be true by default")
	}
}

func TestSettings_ContentItems(t *testing.T) {
	items := DefaultSettings().ContentItems()
	want := []time.Duration{15, 15, 15, 10, 10}
	for i, item := range items {
		if item.Duration != want[i]*time.Second {
			t.Errorf("item %d duration = %v, want %v", i, item.Duration, want[i]*time.Second)
		}
	}
	if items[3].Label != "Telefon Vaktliste 1" {
		t.Errorf("item 3 label = %q", items[3].Label)
	}
}

func TestSettings_WeatherTiming(t *testing.T) {
	wt := DefaultSettings().WeatherTiming()
	if wt.Interval != 7*time.Second || wt.LoadingPoll != 500*time.Millisecond || wt.FogThreshold != 10 {
		t.Errorf("unexpected weather timing %+v", wt)
	}
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr string
	}{
		{"no items", func(s *Settings) { s.Items = nil }, "at least one"},
		{"too many items", func(s *Settings) {
			for i := 0; i < 5; i++ {
				s.Items = append(s.Items, ItemSettings{Label: strings.Repeat("x", i+1), Seconds: 1})
			}
		}, "at most 9"},
		{"duplicate label", func(s *Settings) { s.Items[1].Label = s.Items[0].Label }, "duplicate"},
		{"empty label", func(s *Settings) { s.Items[2].Label = "" }, "label is required"},
		{"zero seconds", func(s *Settings) { s.Items[0].Seconds = 0 }, "must be positive"},
		{"zero reconnect", func(s *Settings) { s.Timing.ReconnectDelay = 0 }, "reconnectDelay"},
		{"bad port", func(s *Settings) { s.Discovery.Port = 70000 }, "discovery"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(s)
			err := s.Validate()
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestSettings_DiscoveryURLOverride(t *testing.T) {
	s := DefaultSettings()
	s.Discovery.URL = "https://board.example/get-connection"
	s.Discovery.Port = 0
	if err := s.Validate(); err != nil {
		t.Fatalf("explicit url should validate: %v", err)
	}
	if s.DiscoveryURL() != "https://board.example/get-connection" {
		t.Errorf("DiscoveryURL = %q", s.DiscoveryURL())
	}
}

func TestLoadSettingsFrom_MissingFileReturnsDefaults(t *testing.T) {
	s, err := LoadSettingsFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadSettingsFrom failed: %v", err)
	}
	if s.Discovery.Port != 3000 {
		t.Errorf("expected default port, got %d", s.Discovery.Port)
	}
}

func TestLoadSettingsFrom_PartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := `discovery:
  host: board.local
items:
  - label: Front
    seconds: 20
  - label: Back
    seconds: 5
timing:
  reconnectDelay: 3s
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	s, err := LoadSettingsFrom(path)
	if err != nil {
		t.Fatalf("LoadSettingsFrom failed: %v", err)
	}
	if s.Discovery.Host != "board.local" || s.Discovery.Port != 3000 {
		t.Errorf("discovery = %+v, want host override with default port", s.Discovery)
	}
	if len(s.Items) != 2 || s.Items[0].Label != "Front" {
		t.Errorf("items = %+v", s.Items)
	}
	if s.Timing.ReconnectDelay != 3*time.Second {
		t.Errorf("reconnectDelay = %v", s.Timing.ReconnectDelay)
	}
	if s.Timing.WeatherInterval != 7*time.Second {
		t.Errorf("weatherInterval should keep its default, got %v", s.Timing.WeatherInterval)
	}
}

func TestLoadSettingsFrom_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("items: [unclosed"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	s, err := LoadSettingsFrom(path)
	if err == nil {
		t.Fatal("expected a parse error")
	}
	if s == nil || len(s.Items) != 5 {
		t.Error("defaults should be returned alongside the error")
	}
}

func TestSaveSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "signboard", "settings.yaml")
	original := DefaultSettings()
	original.Discovery.Host = "kiosk-backend"

	if err := SaveSettings(path, original); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}
	loaded, err := LoadSettingsFrom(path)
	if err != nil {
		t.Fatalf("LoadSettingsFrom failed: %v", err)
	}
	if loaded.Discovery.Host != "kiosk-backend" {
		t.Errorf("host = %q", loaded.Discovery.Host)
	}
	if loaded.Timing.WeatherLoadingPoll != 500*time.Millisecond {
		t.Errorf("weatherLoadingPoll = %v", loaded.Timing.WeatherLoadingPoll)
	}
}

func TestSettingsPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	path, err := SettingsPath()
	if err != nil {
		t.Skipf("no config dir: %v", err)
	}
	if !strings.HasSuffix(path, filepath.Join("signboard", "settings.yaml")) {
		t.Errorf("SettingsPath = %q", path)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("SIGNBOARD_DISCOVERY_HOST", "10.0.0.7")
	t.Setenv("SIGNBOARD_DISCOVERY_PORT", "8080")
	t.Setenv("SIGNBOARD_RECONNECT_DELAY", "1500ms")
	t.Setenv("SIGNBOARD_LOG_LEVEL", "debug")

	s := DefaultSettings()
	if err := ApplyEnv(s); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}
	if s.DiscoveryURL() != "http://10.0.0.7:8080/get-connection" {
		t.Errorf("DiscoveryURL = %q", s.DiscoveryURL())
	}
	if s.Timing.ReconnectDelay != 1500*time.Millisecond {
		t.Errorf("ReconnectDelay = %v", s.Timing.ReconnectDelay)
	}
	if s.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", s.Log.Level)
	}
	if s.Log.Format != "text" {
		t.Errorf("unset variables must keep the current value, Log.Format = %q", s.Log.Format)
	}
}

func TestApplyEnv_BadValue(t *testing.T) {
	t.Setenv("SIGNBOARD_DISCOVERY_PORT", "not-a-port")
	if err := ApplyEnv(DefaultSettings()); err == nil {
		t.Error("expected an error for a non-numeric port")
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("SIGNBOARD_METRICS_ADDR=:9300\n"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	t.Setenv("SIGNBOARD_METRICS_ADDR", "")
	os.Unsetenv("SIGNBOARD_METRICS_ADDR")

	LoadDotEnv(path)

	s := DefaultSettings()
	if err := ApplyEnv(s); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}
	if s.MetricsAddr != ":9300" {
		t.Errorf("MetricsAddr = %q", s.MetricsAddr)
	}
}
