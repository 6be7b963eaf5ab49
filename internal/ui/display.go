package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kostyay/signboard/internal/model"
	"github.com/kostyay/signboard/internal/weather"
)

// Sender delivers messages into a running program. *tea.Program satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// ProgramDisplay forwards network-side events into the UI loop. It is safe to
// call from any goroutine.
type ProgramDisplay struct {
	sender Sender
}

// NewProgramDisplay wraps a Sender.
func NewProgramDisplay(s Sender) *ProgramDisplay {
	return &ProgramDisplay{sender: s}
}

// ShowImages implements protocol.Display.
func (d *ProgramDisplay) ShowImages(update model.ImageUpdate) {
	d.sender.Send(ImagesMsg(update))
}

// ShowWeather implements protocol.Display.
func (d *ProgramDisplay) ShowWeather(snap weather.Snapshot) {
	d.sender.Send(WeatherMsg(snap))
}

// ShowStatus reports a connection state change.
func (d *ProgramDisplay) ShowStatus(status model.ConnectionStatus) {
	d.sender.Send(StatusMsg(status))
}
