package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kostyay/signboard/internal/model"
	"github.com/kostyay/signboard/internal/rotator"
	"github.com/kostyay/signboard/internal/weather"
)

// DefaultClockInterval is how often the date/time element re-renders.
const DefaultClockInterval = time.Second

// Config holds what the board needs to start.
type Config struct {
	Items         []model.ContentItem
	WeatherTiming weather.Timing
	ClockInterval time.Duration
	Animations    bool             // spinner and live pulse
	Headless      bool             // log display transitions instead of drawing
	Now           func() time.Time // defaults to time.Now
}

// Model is the Bubble Tea model for the signage board.
type Model struct {
	// Content
	rotator *rotator.Rotator
	weather *weather.Cycle
	slots   []string // current image URL per slot, one slot per content item

	imagesUpdated  string
	weatherUpdated string

	// Connection
	status model.ConnectionStatus

	// Clock
	now           time.Time
	clockInterval time.Duration

	// Selector: 0 is "auto", i+1 is item i
	selectorCursor int

	// UI State
	helpMode       bool
	quitting       bool
	headless       bool
	animations     bool
	animationFrame int
	spinner        spinner.Model

	// Dimensions
	width  int
	height int
}

// NewModel creates a board showing the given content items.
func NewModel(cfg Config) (Model, error) {
	r, err := rotator.New(cfg.Items)
	if err != nil {
		return Model{}, fmt.Errorf("content rotator: %w", err)
	}
	if cfg.ClockInterval <= 0 {
		cfg.ClockInterval = DefaultClockInterval
	}
	if cfg.WeatherTiming == (weather.Timing{}) {
		cfg.WeatherTiming = weather.DefaultTiming()
	}
	now := time.Now
	if cfg.Now != nil {
		now = cfg.Now
	}

	return Model{
		rotator:       r,
		weather:       weather.NewCycle(cfg.WeatherTiming),
		slots:         make([]string, len(cfg.Items)),
		status:        model.ConnectionStatus{State: model.StateDiscovering},
		now:           now(),
		clockInterval: cfg.ClockInterval,
		headless:      cfg.Headless,
		animations:    cfg.Animations,
		spinner:       spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(LoadingStyle())),
	}, nil
}

// Header returns the label shown in the header.
func (m Model) Header() string {
	return m.rotator.Header()
}

// Slots returns the current image URL of every slot.
func (m Model) Slots() []string {
	return m.slots
}

// VisibleSlot returns the index of the slot on screen, -1 before the first
// rotation.
func (m Model) VisibleSlot() int {
	shown := m.rotator.Shown()
	if len(shown) == 0 {
		return -1
	}
	return shown[0]
}

// WeatherPanel returns what the weather area shows.
func (m Model) WeatherPanel() weather.Panel {
	return m.weather.Panel()
}

// Status returns the last reported connection status.
func (m Model) Status() model.ConnectionStatus {
	return m.status
}

// selectorOptions returns "auto" followed by every item label.
func (m Model) selectorOptions() []string {
	items := m.rotator.Items()
	opts := make([]string, 0, len(items)+1)
	opts = append(opts, "auto")
	for _, it := range items {
		opts = append(opts, it.Label)
	}
	return opts
}

var _ tea.Model = Model{}
