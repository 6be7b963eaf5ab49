package ui

import (
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kostyay/signboard/internal/model"
	"github.com/kostyay/signboard/internal/weather"
)

// Init starts the clock, the rotation and the weather cycle.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.clockCmd(),
		rotateCmd(m.rotator.Start()),
		weatherCmd(m.weather.Start()),
	}
	if m.animations && !m.headless {
		cmds = append(cmds, m.spinner.Tick)
	}
	m.logShown()
	return tea.Batch(cmds...)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg.String())

	case ClockTickMsg:
		m.now = time.Time(msg)
		m.animationFrame = (m.animationFrame + 1) % 2
		return m, m.clockCmd()

	case RotateTickMsg:
		arm, ok := m.rotator.Tick(msg.Gen)
		if !ok {
			return m, nil
		}
		m.logShown()
		return m, rotateCmd(arm)

	case WeatherTickMsg:
		arm, ok := m.weather.Tick(msg.Gen)
		if !ok {
			return m, nil
		}
		if m.headless {
			panel := m.weather.Panel()
			slog.Info("board.weather", "component", "ui", "title", panel.Title, "loading", panel.Loading, "lines", panel.Lines)
		}
		return m, weatherCmd(arm)

	case ImagesMsg:
		for i, url := range msg.Slots {
			if i < len(m.slots) {
				m.slots[i] = url
			}
		}
		if msg.LastUpdated != "" {
			m.imagesUpdated = msg.LastUpdated
		}
		if m.headless {
			slog.Info("board.images", "component", "ui", "count", len(msg.Slots), "last_updated", m.imagesUpdated)
		}
		return m, nil

	case WeatherMsg:
		snap := weather.Snapshot(msg)
		m.weather.SetSnapshot(snap)
		m.weatherUpdated = string(snap.LastUpdated)
		return m, nil

	case StatusMsg:
		m.status = model.ConnectionStatus(msg)
		if m.headless {
			slog.Info("board.connection", "component", "ui", "state", m.status.State.String(), "address", m.status.Address)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.animations {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	// Help modal intercepts all keys
	if m.helpMode {
		switch {
		case matchKey(key, KeyQuitAlt):
			m.quitting = true
			return m, tea.Quit
		case matchKey(key, KeyEsc, KeyHelp, KeyQuit):
			m.helpMode = false
		}
		return m, nil
	}

	switch {
	case matchKey(key, KeyQuit, KeyQuitAlt):
		m.quitting = true
		return m, tea.Quit

	case matchKey(key, KeyHelp):
		m.helpMode = true
		return m, nil

	case matchKey(key, KeyAuto, KeyAutoAlt):
		return m.applyOption(0)

	case matchKey(key, KeyLeft, KeyLeftAlt):
		n := len(m.selectorOptions())
		m.selectorCursor = (m.selectorCursor - 1 + n) % n
		return m, nil

	case matchKey(key, KeyRight, KeyRightAlt):
		m.selectorCursor = (m.selectorCursor + 1) % len(m.selectorOptions())
		return m, nil

	case matchKey(key, KeyEnter, KeySpace):
		return m.applyOption(m.selectorCursor)
	}

	if idx, ok := itemKey(key); ok && idx < len(m.slots) {
		return m.applyOption(idx + 1)
	}
	return m, nil
}

// applyOption switches the rotator to the selector option at opt.
func (m Model) applyOption(opt int) (tea.Model, tea.Cmd) {
	m.selectorCursor = opt
	if opt == 0 {
		arm := m.rotator.SelectAuto()
		m.logShown()
		return m, rotateCmd(arm)
	}

	label := m.selectorOptions()[opt]
	if err := m.rotator.Select(label); err != nil {
		slog.Warn("board.select_failed", "component", "ui", "label", label, "error", err)
		return m, nil
	}
	m.logShown()
	return m, nil
}

func (m Model) logShown() {
	if !m.headless {
		return
	}
	slog.Info("board.show",
		"component", "ui",
		"header", m.rotator.Header(),
		"mode", m.rotator.Mode().String(),
		"slot", m.VisibleSlot(),
	)
}

func (m Model) clockCmd() tea.Cmd {
	return tea.Tick(m.clockInterval, func(t time.Time) tea.Msg {
		return ClockTickMsg(t)
	})
}

func rotateCmd(arm model.Arm) tea.Cmd {
	return tea.Tick(arm.After, func(time.Time) tea.Msg {
		return RotateTickMsg{Gen: arm.Gen}
	})
}

func weatherCmd(arm model.Arm) tea.Cmd {
	return tea.Tick(arm.After, func(time.Time) tea.Msg {
		return WeatherTickMsg{Gen: arm.Gen}
	})
}
