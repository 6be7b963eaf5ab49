package output

import (
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/kostyay/signboard/internal/model"
	"github.com/kostyay/signboard/internal/weather"
)

// JSONItem represents a content item and its image slot in JSON output.
type JSONItem struct {
	Label           string `json:"label"`
	DurationSeconds int    `json:"duration_seconds"`
	Image           string `json:"image"`
}

// JSONOutput is the root JSON output structure.
type JSONOutput struct {
	Timestamp      time.Time         `json:"timestamp"`
	Connection     string            `json:"connection"`
	Address        string            `json:"address,omitempty"`
	Items          []JSONItem        `json:"items"`
	ImagesUpdated  string            `json:"images_updated,omitempty"`
	Weather        *weather.Snapshot `json:"weather"`
	WeatherUpdated string            `json:"weather_updated,omitempty"`
	Complete       bool              `json:"complete"`
}

// Collector records everything the backend pushes during a one-shot run.
// It implements protocol.Display and is safe for concurrent use.
type Collector struct {
	mu            sync.Mutex
	items         []model.ContentItem
	slots         []string
	imagesUpdated string
	gotImages     bool
	snap          *weather.Snapshot
	status        model.ConnectionStatus

	ready     chan struct{}
	readyOnce sync.Once
}

// NewCollector creates a collector with one slot per item.
func NewCollector(items []model.ContentItem) *Collector {
	return &Collector{
		items: items,
		slots: make([]string, len(items)),
		ready: make(chan struct{}),
	}
}

// ShowImages implements protocol.Display.
func (c *Collector) ShowImages(update model.ImageUpdate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	copy(c.slots, update.Slots)
	if update.LastUpdated != "" {
		c.imagesUpdated = update.LastUpdated
	}
	c.gotImages = true
	c.checkReady()
}

// ShowWeather implements protocol.Display.
func (c *Collector) ShowWeather(snap weather.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap = &snap
	c.checkReady()
}

// ShowStatus records the connection state.
func (c *Collector) ShowStatus(status model.ConnectionStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = status
}

// Ready is closed once both images and weather have arrived.
func (c *Collector) Ready() <-chan struct{} {
	return c.ready
}

// Output returns the collected board state.
func (c *Collector) Output(now time.Time) JSONOutput {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := JSONOutput{
		Timestamp:     now,
		Connection:    c.status.State.String(),
		Address:       c.status.Address,
		Items:         make([]JSONItem, 0, len(c.items)),
		ImagesUpdated: c.imagesUpdated,
		Complete:      c.gotImages && c.snap != nil,
	}
	for i, it := range c.items {
		out.Items = append(out.Items, JSONItem{
			Label:           it.Label,
			DurationSeconds: int(it.Duration / time.Second),
			Image:           c.slots[i],
		})
	}
	if c.snap != nil {
		snap := *c.snap
		out.Weather = &snap
		out.WeatherUpdated = string(snap.LastUpdated)
	}
	return out
}

func (c *Collector) checkReady() {
	if c.gotImages && c.snap != nil {
		c.readyOnce.Do(func() { close(c.ready) })
	}
}

// RenderJSON writes the board state as JSON to the writer.
func RenderJSON(w io.Writer, out JSONOutput) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
