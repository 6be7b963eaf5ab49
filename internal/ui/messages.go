package ui

import (
	"time"

	"github.com/kostyay/signboard/internal/model"
	"github.com/kostyay/signboard/internal/weather"
)

// ClockTickMsg is sent once per clock interval.
type ClockTickMsg time.Time

// RotateTickMsg fires the content rotator timer armed with Gen.
type RotateTickMsg struct {
	Gen uint64
}

// WeatherTickMsg fires the weather cycle timer armed with Gen.
type WeatherTickMsg struct {
	Gen uint64
}

// ImagesMsg carries new image URLs from the backend.
type ImagesMsg model.ImageUpdate

// WeatherMsg carries a new weather snapshot from the backend.
type WeatherMsg weather.Snapshot

// StatusMsg reports a connection state change.
type StatusMsg model.ConnectionStatus
