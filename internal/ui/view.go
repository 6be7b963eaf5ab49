package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kostyay/signboard/internal/model"
	"github.com/kostyay/signboard/internal/rotator"
)

const helpModalWidth = 52

// View renders the UI.
func (m Model) View() string {
	if m.quitting || m.headless {
		return ""
	}

	// Wait for the first WindowSizeMsg
	if m.width == 0 {
		return LoadingStyle().Render("Initializing...")
	}

	baseContent := m.renderBaseView()

	if m.helpMode {
		return m.overlayModal(baseContent, m.renderHelpModalContent(), "Keyboard Shortcuts", helpModalWidth)
	}

	return baseContent
}

// renderBaseView renders the board without modals.
func (m Model) renderBaseView() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderBox(m.rotator.Header(), m.renderSlots(), ActiveBorderStyle()))
	b.WriteString("\n")
	b.WriteString(m.renderWeather())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	return b.String()
}

// renderHeader renders the double-line header with the connection indicator,
// the current content label and the clock.
func (m Model) renderHeader() string {
	borderStyle := BorderStyle()
	innerWidth := m.width - 2

	topBorder := borderStyle.Render("╔") +
		titledRule("SIGNBOARD", innerWidth, "═", borderStyle, HeaderStyle()) +
		borderStyle.Render("╗")

	// Live indicator: ◉ (filled) or ○ (empty) based on animation frame
	indicator := "◉"
	if m.animations && m.animationFrame == 1 {
		indicator = "○"
	}
	connStyle := WarnStyle()
	if m.status.State == model.StateOpen {
		connStyle = LiveIndicatorStyle()
	}
	left := connStyle.Render(indicator+" "+connectionText(m.status.State)) +
		"  " + HeaderStyle().Render(m.rotator.Header())
	right := ClockStyle().Render(formatClock(m.now))

	gap := max(innerWidth-2-lipgloss.Width(left)-lipgloss.Width(right), 1)
	contentLine := borderStyle.Render("║") + " " + left + strings.Repeat(" ", gap) + right + " " + borderStyle.Render("║")

	bottomBorder := borderStyle.Render("╚" + strings.Repeat("═", max(innerWidth, 0)) + "╝")

	return topBorder + "\n" + contentLine + "\n" + bottomBorder
}

// renderSlots lists every image slot, highlighting the visible one.
func (m Model) renderSlots() []string {
	visible := m.VisibleSlot()
	urlWidth := max(m.width-8, 10)
	items := m.rotator.Items()

	lines := make([]string, 0, len(m.slots)+2)
	for i, url := range m.slots {
		label := items[i].Label
		text := LoadingStyle().Render("waiting for image")
		if url != "" {
			text = truncateString(url, max(urlWidth-len(label)-6, 10))
		}
		if i == visible {
			lines = append(lines, SlotStyle().Render(fmt.Sprintf("▸ %d %s", i+1, label))+"  "+text)
		} else {
			lines = append(lines, HiddenSlotStyle().Render(fmt.Sprintf("  %d %s  %s", i+1, label, stripAnsi(text))))
		}
	}
	lines = append(lines, "", UpdatedStyle().Render("Images updated: "+orDash(m.imagesUpdated)))
	return lines
}

// renderWeather renders the weather panel.
func (m Model) renderWeather() string {
	panel := m.weather.Panel()
	var lines []string
	if panel.Loading {
		spin := ""
		if m.animations {
			spin = m.spinner.View() + " "
		}
		lines = append(lines, LoadingStyle().Render(spin+"Loading weather..."))
	} else {
		for _, line := range panel.Lines {
			style := WeatherStyle()
			if strings.HasPrefix(line, "Fog:") {
				style = FogStyle()
			}
			lines = append(lines, style.Render(line))
		}
	}
	lines = append(lines, "", UpdatedStyle().Render("Weather updated: "+orDash(m.weatherUpdated)))
	return m.renderBox(panel.Title, lines, BorderStyle())
}

// renderBox renders lines in a rounded frame with a centered title.
func (m Model) renderBox(title string, lines []string, borderStyle lipgloss.Style) string {
	innerWidth := max(m.width-2, 0)

	var result strings.Builder
	result.WriteString(borderStyle.Render("╭"))
	result.WriteString(titledRule(title, innerWidth, "─", borderStyle, WeatherTitleStyle()))
	result.WriteString(borderStyle.Render("╮"))
	result.WriteString("\n")

	for _, line := range lines {
		result.WriteString(borderStyle.Render("│"))
		result.WriteString(" ")
		result.WriteString(padRight(line, innerWidth-2))
		result.WriteString(" ")
		result.WriteString(borderStyle.Render("│"))
		result.WriteString("\n")
	}

	result.WriteString(borderStyle.Render("╰" + strings.Repeat("─", innerWidth) + "╯"))
	return result.String()
}

// renderFooter renders the selector row and the keybindings row.
func (m Model) renderFooter() string {
	var b strings.Builder
	b.WriteString(m.renderSelector())
	b.WriteString("\n")
	b.WriteString(FooterStyle().Width(m.width).Render(m.renderKeybindingsText()))
	return b.String()
}

// renderSelector renders "auto" plus every item label. The cursor option is
// highlighted, the applied one is bold.
func (m Model) renderSelector() string {
	active := 0
	if m.rotator.Mode() == rotator.ModeManual {
		for i, it := range m.rotator.Items() {
			if it.Label == m.rotator.Header() {
				active = i + 1
				break
			}
		}
	}

	parts := make([]string, 0, len(m.slots)+1)
	for i, opt := range m.selectorOptions() {
		text := fmt.Sprintf(" %d %s ", i, opt)
		switch {
		case i == m.selectorCursor:
			parts = append(parts, SelectorCursorStyle().Render(text))
		case i == active:
			parts = append(parts, SelectorActiveStyle().Render(text))
		default:
			parts = append(parts, SelectorStyle().Render(text))
		}
	}
	return truncateLine(strings.Join(parts, StatusStyle().Render("·")), m.width)
}

// renderKeybindingsText returns keybindings in modern minimal style.
func (m Model) renderKeybindingsText() string {
	keyStyle := FooterKeyStyle()
	descStyle := FooterDescStyle()

	btn := func(key, label string) string {
		return keyStyle.Render(key) + " " + descStyle.Render(label)
	}
	sep := descStyle.Render("  ·  ")

	parts := []string{
		btn("←→", "choose"),
		btn("↵", "apply"),
		btn("0", "auto"),
		btn(fmt.Sprintf("1-%d", len(m.slots)), "item"),
		btn("?", "help"),
		btn("q", "quit"),
	}
	return strings.Join(parts, sep)
}

// truncateLine cuts a styled line to width visible cells.
func truncateLine(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}

// overlayModal renders a modal on top of background content with dimmed backdrop.
func (m Model) overlayModal(background, content, title string, modalWidth int) string {
	if m.width < modalWidth+4 {
		modalWidth = m.width - 4
	}

	contentLines := strings.Split(content, "\n")
	modalHeight := len(contentLines) + 4

	framedModal := RenderFrameWithTitle(content, title, modalWidth, modalHeight)
	modalLines := strings.Split(framedModal, "\n")

	leftPad := max((m.width-modalWidth-4)/2, 0)
	topPad := max((m.height-modalHeight)/2, 0)

	bgLines := strings.Split(background, "\n")
	for len(bgLines) < m.height {
		bgLines = append(bgLines, "")
	}

	dimStyle := DimmedStyle()
	for i := range bgLines {
		bgLines[i] = dimStyle.Render(stripAnsi(bgLines[i]))
	}

	for i, modalLine := range modalLines {
		bgIdx := topPad + i
		if bgIdx >= 0 && bgIdx < len(bgLines) {
			leftBg := ""
			if leftPad > 0 {
				leftBg = dimStyle.Render(strings.Repeat(" ", leftPad))
			}
			bgLines[bgIdx] = leftBg + modalLine
		}
	}

	if m.height > 0 && len(bgLines) > m.height {
		bgLines = bgLines[:m.height]
	}
	return strings.Join(bgLines, "\n")
}

// stripAnsi removes ANSI escape codes from a string.
func stripAnsi(s string) string {
	var result strings.Builder
	inEscape := false
	for _, r := range s {
		if r == '\x1b' {
			inEscape = true
			continue
		}
		if inEscape {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
			continue
		}
		result.WriteRune(r)
	}
	return result.String()
}

// renderHelpModalContent returns the help modal content.
func (m Model) renderHelpModalContent() string {
	keyStyle := FooterKeyStyle()
	descStyle := FooterDescStyle()

	formatKey := func(k Keybinding) string {
		return keyStyle.Render(k.Key) + descStyle.Render(" "+k.Desc)
	}

	lines := []string{
		HeaderStyle().Render("Content"),
		formatKey(KeyAuto) + ", " + keyStyle.Render(KeyAutoAlt.Key),
		keyStyle.Render(fmt.Sprintf("1-%d", len(m.slots))) + descStyle.Render(" Show one item and pause"),
		"",
		HeaderStyle().Render("Selector"),
		keyStyle.Render("←→") + descStyle.Render(" Move selector"),
		formatKey(KeyEnter),
		"",
		HeaderStyle().Render("Other"),
		formatKey(KeyHelp),
		formatKey(KeyQuit) + ", " + keyStyle.Render(KeyQuitAlt.Key) + descStyle.Render(" Quit"),
	}

	return strings.Join(lines, "\n")
}
