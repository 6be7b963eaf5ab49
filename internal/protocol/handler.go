package protocol

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/kostyay/signboard/internal/eventloop"
	"github.com/kostyay/signboard/internal/metrics"
	"github.com/kostyay/signboard/internal/model"
	"github.com/kostyay/signboard/internal/reliable"
	"github.com/kostyay/signboard/internal/weather"
)

const (
	loadRetryDelay   = 200 * time.Millisecond
	reportRetryDelay = 500 * time.Millisecond
	reportAttempts   = 5

	// The backend stamps images one hour behind the board's wall clock.
	imageDateShift = 60 * time.Minute

	// LastUpdatedLayout renders DD/MM/YYYY, HH:MM:SS.
	LastUpdatedLayout = "02/01/2006, 15:04:05"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// Display receives content decoded from the backend.
type Display interface {
	ShowImages(update model.ImageUpdate)
	ShowWeather(snap weather.Snapshot)
}

// Handler dispatches inbound frames. All methods run on the scheduler's
// goroutine.
type Handler struct {
	sched   eventloop.Scheduler
	display Display
	slots   int
	now     func() time.Time
	loc     *time.Location
}

// Option configures a Handler.
type Option func(*Handler)

// WithClock overrides the time source used for cache-busting.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

// WithLocation overrides the zone "last updated" times are rendered in.
func WithLocation(loc *time.Location) Option {
	return func(h *Handler) { h.loc = loc }
}

// NewHandler creates a handler filling the given number of image slots.
func NewHandler(s eventloop.Scheduler, display Display, slots int, opts ...Option) *Handler {
	h := &Handler{
		sched:   s,
		display: display,
		slots:   slots,
		now:     time.Now,
		loc:     time.Local,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle processes one inbound frame received on conn. Replies go out over
// conn; it is resolved again on every retry, so a reconnect in between is
// picked up.
func (h *Handler) Handle(conn reliable.Conn, data []byte) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		h.reportClientError(conn, fmt.Errorf("decode message: %w", err))
		return
	}

	metrics.MessagesReceived.WithLabelValues(metricType(env.Type)).Inc()

	switch env.Type {
	case TypeDownloaded:
		h.requestLoad(conn)
	case TypeImages, TypeInitialImages:
		if err := h.handleImages(conn, env); err != nil {
			h.reportClientError(conn, err)
		}
	case TypeWeather, TypeInitialWeather:
		if err := h.handleWeather(env); err != nil {
			h.reportClientError(conn, err)
		}
	default:
		slog.Warn("protocol.unknown_type", "component", "protocol", "type", env.Type)
	}
}

// requestLoad asks for images and, once that request is on the wire, weather.
func (h *Handler) requestLoad(conn reliable.Conn) {
	reliable.SendWithCallback(h.sched, conn, LoadMessage(LoadImages), loadRetryDelay, func() {
		reliable.SendWithCallback(h.sched, conn, LoadMessage(LoadWeather), loadRetryDelay, nil)
	})
}

func (h *Handler) handleImages(conn reliable.Conn, env Envelope) error {
	var urls []string
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &urls); err != nil {
			return fmt.Errorf("decode images: %w", err)
		}
	}

	stamp := h.now().UnixMilli()
	n := min(len(urls), h.slots)
	update := model.ImageUpdate{Slots: make([]string, n)}
	for i := 0; i < n; i++ {
		update.Slots[i] = cacheBust(urls[i], stamp)
	}

	for i := h.slots; i < len(urls); i++ {
		slog.Warn("protocol.images.excess",
			"component", "protocol",
			"index", i,
			"slots", h.slots,
		)
		reliable.SendBounded(h.sched, conn, ErrorMessage(MsgArraySizeMismatch), reportRetryDelay, reportAttempts)
	}

	if env.Date != "" {
		formatted, err := FormatImageDate(env.Date, h.loc)
		if err != nil {
			slog.Warn("protocol.images.bad_date", "component", "protocol", "date", env.Date, "error", err)
		} else {
			update.LastUpdated = formatted
		}
	}

	slog.Debug("protocol.images", "component", "protocol", "type", env.Type, "count", len(urls))
	h.display.ShowImages(update)
	return nil
}

func (h *Handler) handleWeather(env Envelope) error {
	snap, err := weather.ParseSnapshot(env.Data)
	if err != nil {
		return fmt.Errorf("decode weather: %w", err)
	}
	slog.Debug("protocol.weather", "component", "protocol", "type", env.Type, "last_updated", string(snap.LastUpdated))
	h.display.ShowWeather(snap)
	return nil
}

func (h *Handler) reportClientError(conn reliable.Conn, err error) {
	slog.Error("protocol.handle_failed", "component", "protocol", "error", err)
	reliable.SendBounded(h.sched, conn, ErrorMessage("Client: "+err.Error()), reportRetryDelay, reportAttempts)
}

// FormatImageDate shifts an image batch timestamp by one hour minus loc's
// UTC offset and renders it in loc.
func FormatImageDate(raw string, loc *time.Location) (string, error) {
	t, err := parseDate(raw)
	if err != nil {
		return "", err
	}
	if loc == nil {
		loc = time.Local
	}
	_, offset := t.In(loc).Zone()
	shifted := t.Add(imageDateShift - time.Duration(offset)*time.Second)
	return shifted.In(loc).Format(LastUpdatedLayout), nil
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", raw)
}

// cacheBust appends a timestamp query parameter so the image is refetched.
func cacheBust(raw string, stamp int64) string {
	sep := "?"
	if strings.Contains(raw, "?") {
		sep = "&"
	}
	return raw + sep + "timestamp=" + strconv.FormatInt(stamp, 10)
}

func metricType(t string) string {
	switch t {
	case TypeDownloaded, TypeImages, TypeInitialImages, TypeWeather, TypeInitialWeather:
		return t
	default:
		return "unknown"
	}
}
