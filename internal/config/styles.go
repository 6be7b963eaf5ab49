package config

import (
	"embed"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed skins/dracula.yaml skins/industrial.yaml
var defaultSkin embed.FS

// Color represents a hex color string.
type Color string

// BoardStyle defines colors for the content area.
type BoardStyle struct {
	FgColor        Color `yaml:"fgColor"`
	BgColor        Color `yaml:"bgColor"`
	SlotFgColor    Color `yaml:"slotFgColor"`    // visible image slot
	HiddenFgColor  Color `yaml:"hiddenFgColor"`  // hidden image slots
	ClockFgColor   Color `yaml:"clockFgColor"`   // date/time element
	UpdatedFgColor Color `yaml:"updatedFgColor"` // "last updated" labels
}

// HeaderStyle defines colors for the header section.
type HeaderStyle struct {
	FgColor Color `yaml:"fgColor"`
	BgColor Color `yaml:"bgColor"`
	TitleFg Color `yaml:"titleFg"`
	LiveFg  Color `yaml:"liveFg"`  // connected (green pulse)
	WarnFg  Color `yaml:"warnFg"`  // connecting/reconnecting (amber)
	StatsFg Color `yaml:"statsFg"` // muted text
}

// SelectorStyle defines colors for the content selector.
type SelectorStyle struct {
	FgColor       Color `yaml:"fgColor"`
	CursorFgColor Color `yaml:"cursorFgColor"`
	CursorBgColor Color `yaml:"cursorBgColor"`
	ActiveFgColor Color `yaml:"activeFgColor"` // option currently applied
}

// WeatherStyle defines colors for the weather panel.
type WeatherStyle struct {
	TitleFg Color `yaml:"titleFg"`
	FgColor Color `yaml:"fgColor"`
	FogFg   Color `yaml:"fogFg"`
}

// FooterStyle defines colors for the footer section.
type FooterStyle struct {
	FgColor      Color `yaml:"fgColor"`
	BgColor      Color `yaml:"bgColor"`
	KeyFgColor   Color `yaml:"keyFgColor"`
	DescFgColor  Color `yaml:"descFgColor"`
	GroupFgColor Color `yaml:"groupFgColor"` // Group labels (VIEW, APP)
}

// StatusStyle defines colors for status lines.
type StatusStyle struct {
	FgColor Color `yaml:"fgColor"`
	BgColor Color `yaml:"bgColor"`
}

// ModalStyle defines colors for modal dialogs.
type ModalStyle struct {
	DimmedFgColor Color `yaml:"dimmedFgColor"` // Dimmed background when modal visible
	BorderFgColor Color `yaml:"borderFgColor"` // Modal border
	AccentFgColor Color `yaml:"accentFgColor"` // Accent color for modal
}

// BorderStyle defines colors for borders.
type BorderStyle struct {
	FgColor       Color `yaml:"fgColor"`       // Default border color
	ActiveFgColor Color `yaml:"activeFgColor"` // Active/focused border
}

// Styles holds all the theme colors.
type Styles struct {
	Board    BoardStyle    `yaml:"board"`
	Header   HeaderStyle   `yaml:"header"`
	Selector SelectorStyle `yaml:"selector"`
	Weather  WeatherStyle  `yaml:"weather"`
	Footer   FooterStyle   `yaml:"footer"`
	Status   StatusStyle   `yaml:"status"`
	Modal    ModalStyle    `yaml:"modal"`
	Border   BorderStyle   `yaml:"border"`
}

// Theme is the top-level theme configuration.
type Theme struct {
	Name   string `yaml:"name"`
	Styles Styles `yaml:"styles"`
}

// DefaultTheme returns the built-in Industrial theme.
func DefaultTheme() *Theme {
	return &Theme{
		Name: "industrial",
		Styles: Styles{
			Board: BoardStyle{
				FgColor:        "#e6edf3",
				BgColor:        "#0d1117",
				SlotFgColor:    "#ffffff",
				HiddenFgColor:  "#484f58",
				ClockFgColor:   "#58a6ff",
				UpdatedFgColor: "#7d8590",
			},
			Header: HeaderStyle{
				FgColor: "#e6edf3",
				BgColor: "#0d1117",
				TitleFg: "#58a6ff",
				LiveFg:  "#3fb950",
				WarnFg:  "#d29922",
				StatsFg: "#7d8590",
			},
			Selector: SelectorStyle{
				FgColor:       "#e6edf3",
				CursorFgColor: "#ffffff",
				CursorBgColor: "#58a6ff",
				ActiveFgColor: "#3fb950",
			},
			Weather: WeatherStyle{
				TitleFg: "#58a6ff",
				FgColor: "#e6edf3",
				FogFg:   "#d29922",
			},
			Footer: FooterStyle{
				FgColor:      "#e6edf3",
				BgColor:      "#0d1117",
				KeyFgColor:   "#58a6ff",
				DescFgColor:  "#7d8590",
				GroupFgColor: "#e6edf3",
			},
			Status: StatusStyle{
				FgColor: "#7d8590",
				BgColor: "#0d1117",
			},
			Modal: ModalStyle{
				DimmedFgColor: "#7d8590",
				BorderFgColor: "#30363d",
				AccentFgColor: "#58a6ff",
			},
			Border: BorderStyle{
				FgColor:       "#30363d",
				ActiveFgColor: "#58a6ff",
			},
		},
	}
}

// LoadTheme loads a theme from the user's config directory or returns the default.
func LoadTheme() (*Theme, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return loadEmbeddedTheme(), nil
	}
	return LoadThemeFrom(filepath.Join(configDir, "signboard")), nil
}

// LoadThemeFrom loads skin.yaml from dir, falling back to the embedded
// industrial theme when it is missing or unreadable.
func LoadThemeFrom(dir string) *Theme {
	userSkinPath := filepath.Join(dir, "skin.yaml")
	// #nosec G304 - userSkinPath is built from the config dir and a fixed name
	if data, err := os.ReadFile(userSkinPath); err == nil {
		var theme Theme
		if err := yaml.Unmarshal(data, &theme); err == nil {
			return &theme
		}
	}
	return loadEmbeddedTheme()
}

func loadEmbeddedTheme() *Theme {
	data, err := defaultSkin.ReadFile("skins/industrial.yaml")
	if err != nil {
		return DefaultTheme()
	}

	var theme Theme
	if err := yaml.Unmarshal(data, &theme); err != nil {
		return DefaultTheme()
	}
	return &theme
}

// CurrentTheme holds the loaded theme (singleton).
var CurrentTheme *Theme

// InitTheme initializes the global theme.
func InitTheme() error {
	theme, err := LoadTheme()
	if err != nil {
		return err
	}
	CurrentTheme = theme
	return nil
}

func init() {
	// Initialize with default theme on package load
	CurrentTheme = DefaultTheme()
}
