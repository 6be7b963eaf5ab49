package weather

import (
	"fmt"
	"time"

	"github.com/kostyay/signboard/internal/model"
)

// Phase is which half of the cycle the panel shows.
type Phase int

const (
	PhaseNow     Phase = iota // current conditions
	PhaseOutlook              // next 6 hours
)

// Timing controls the cycle.
type Timing struct {
	Interval     time.Duration // time each phase stays on screen
	LoadingPoll  time.Duration // re-check interval while no snapshot exists
	FogThreshold float64       // fog above this percentage replaces cloud cover
}

// DefaultTiming returns the reference cycle timing.
func DefaultTiming() Timing {
	return Timing{
		Interval:     7 * time.Second,
		LoadingPoll:  500 * time.Millisecond,
		FogThreshold: 10,
	}
}

// Panel is what the weather area displays.
type Panel struct {
	Loading bool
	Title   string
	Lines   []string
}

// Cycle alternates the panel between PhaseNow and PhaseOutlook. It never
// renders readings before a snapshot has been set.
type Cycle struct {
	timing   Timing
	snapshot *Snapshot
	phase    Phase
	gen      uint64
	panel    Panel
}

// NewCycle creates a cycle showing the loading panel.
func NewCycle(timing Timing) *Cycle {
	return &Cycle{
		timing: timing,
		panel:  loadingPanel(),
	}
}

// SetSnapshot replaces the current snapshot. The panel picks it up on the
// next tick.
func (c *Cycle) SetSnapshot(s Snapshot) {
	c.snapshot = &s
}

// Snapshot returns the current snapshot, if one has arrived.
func (c *Cycle) Snapshot() (Snapshot, bool) {
	if c.snapshot == nil {
		return Snapshot{}, false
	}
	return *c.snapshot, true
}

// Panel returns the panel as of the last tick.
func (c *Cycle) Panel() Panel {
	return c.panel
}

// Phase returns the phase the next tick will render.
func (c *Cycle) Phase() Phase {
	return c.phase
}

// Start runs the first invocation and returns the timer to arm.
func (c *Cycle) Start() model.Arm {
	return c.step()
}

// Tick runs one invocation if gen matches the armed timer. Stale ticks are
// ignored and report false.
func (c *Cycle) Tick(gen uint64) (model.Arm, bool) {
	if gen != c.gen {
		return model.Arm{}, false
	}
	return c.step(), true
}

func (c *Cycle) step() model.Arm {
	var after time.Duration
	if c.snapshot == nil {
		c.panel = loadingPanel()
		after = c.timing.LoadingPoll
	} else {
		if c.phase == PhaseNow {
			c.panel = c.nowPanel(*c.snapshot)
		} else {
			c.panel = outlookPanel(*c.snapshot)
		}
		after = c.timing.Interval
	}

	// The phase flips on every invocation, loading ones included.
	c.phase = (c.phase + 1) % 2

	c.gen++
	return model.Arm{Gen: c.gen, After: after}
}

func loadingPanel() Panel {
	return Panel{Loading: true, Title: "Loading weather"}
}

func (c *Cycle) nowPanel(s Snapshot) Panel {
	lines := []string{
		fmt.Sprintf("Temperature: %s°C", s.CurrentTemp),
		fmt.Sprintf("Rain: %smm", s.ExpectedRain),
		fmt.Sprintf("Wind: %sm/s", s.CurrentWind),
	}
	if fog, ok := s.CurrentFog.Float(); ok && fog > c.timing.FogThreshold {
		lines = append(lines, fmt.Sprintf("Fog: %s%%", s.CurrentFog))
	} else {
		lines = append(lines, fmt.Sprintf("Cloud cover: %s%%", s.CurrentCloud))
	}
	return Panel{Title: "Weather now", Lines: lines}
}

func outlookPanel(s Snapshot) Panel {
	return Panel{
		Title: "Next 6 hours",
		Lines: []string{
			fmt.Sprintf("Temperature: %s - %s°C", s.MinAirTemp6h, s.MaxAirTemp6h),
			fmt.Sprintf("Rain: %s - %smm", s.MinRain6h, s.MaxRain6h),
			fmt.Sprintf("Chance of rain: %s%%", s.RainProbability),
		},
	}
}
