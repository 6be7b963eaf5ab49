package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kostyay/signboard/internal/config"
)

// Theme-aware style getters

// HeaderStyle returns the style for the main header title.
func HeaderStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(config.CurrentTheme.Styles.Header.TitleFg))
}

// FooterStyle returns the style for footer text.
func FooterStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(config.CurrentTheme.Styles.Footer.FgColor))
}

// FooterKeyStyle returns the style for keyboard shortcut keys in footer.
func FooterKeyStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(config.CurrentTheme.Styles.Footer.KeyFgColor))
}

// FooterDescStyle returns the style for key descriptions in footer.
func FooterDescStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(config.CurrentTheme.Styles.Footer.DescFgColor))
}

// StatusStyle returns the style for status bar text.
func StatusStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(config.CurrentTheme.Styles.Status.FgColor))
}

// LoadingStyle returns the style for loading indicators.
func LoadingStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(config.CurrentTheme.Styles.Status.FgColor)).
		Italic(true)
}

// SlotStyle returns the style for the visible image slot.
func SlotStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(config.CurrentTheme.Styles.Board.SlotFgColor)).
		Bold(true)
}

// HiddenSlotStyle returns the style for hidden image slots.
func HiddenSlotStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(config.CurrentTheme.Styles.Board.HiddenFgColor))
}

// ClockStyle returns the style for the date/time element.
func ClockStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(config.CurrentTheme.Styles.Board.ClockFgColor)).
		Bold(true)
}

// UpdatedStyle returns the style for "last updated" labels.
func UpdatedStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(config.CurrentTheme.Styles.Board.UpdatedFgColor)).
		Italic(true)
}

// SelectorStyle returns the style for unselected selector options.
func SelectorStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(config.CurrentTheme.Styles.Selector.FgColor))
}

// SelectorCursorStyle returns the style for the option under the cursor.
func SelectorCursorStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(config.CurrentTheme.Styles.Selector.CursorFgColor)).
		Background(lipgloss.Color(config.CurrentTheme.Styles.Selector.CursorBgColor))
}

// SelectorActiveStyle returns the style for the applied option.
func SelectorActiveStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(config.CurrentTheme.Styles.Selector.ActiveFgColor)).
		Bold(true)
}

// WeatherTitleStyle returns the style for the weather panel title.
func WeatherTitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(config.CurrentTheme.Styles.Weather.TitleFg)).
		Bold(true)
}

// WeatherStyle returns the style for weather readings.
func WeatherStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(config.CurrentTheme.Styles.Weather.FgColor))
}

// FogStyle returns the style for the fog reading.
func FogStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(config.CurrentTheme.Styles.Weather.FogFg))
}

// RenderFrameWithTitle renders content in a frame with a centered title on the top border.
// Uses heavy box drawing for modal prominence.
func RenderFrameWithTitle(content string, title string, width, height int) string {
	borderColor := lipgloss.Color(config.CurrentTheme.Styles.Modal.BorderFgColor)
	titleColor := lipgloss.Color(config.CurrentTheme.Styles.Modal.AccentFgColor)
	return renderFrameWithColors(content, title, width, height, borderColor, titleColor)
}

// splitLines splits a string into lines.
func splitLines(s string) []string {
	if s == "" {
		return []string{""}
	}
	return strings.Split(s, "\n")
}

// padRight pads a string to the specified width.
func padRight(s string, width int) string {
	// Use lipgloss to measure visible width (handles ANSI escape codes)
	visibleWidth := lipgloss.Width(s)
	if visibleWidth >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visibleWidth)
}

// DimmedStyle returns a style for dimmed background content when modal is visible.
func DimmedStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(config.CurrentTheme.Styles.Modal.DimmedFgColor)).
		Faint(true)
}

// renderFrameWithColors renders a frame with specified border and title colors.
func renderFrameWithColors(content, title string, width, height int, borderColor, titleColor lipgloss.Color) string {
	// Heavy box drawing characters for modal prominence
	topLeft := "┏"
	topRight := "┓"
	bottomLeft := "┗"
	bottomRight := "┛"
	horizontal := "━"
	vertical := "┃"

	borderStyle := lipgloss.NewStyle().Foreground(borderColor)
	titleStyle := lipgloss.NewStyle().Foreground(titleColor).Bold(true)

	innerWidth := max(width-2, 0)

	topBorder := borderStyle.Render(topLeft) +
		titledRule(title, innerWidth, horizontal, borderStyle, titleStyle) +
		borderStyle.Render(topRight)

	bottomBorder := borderStyle.Render(bottomLeft)
	bottomBorder += borderStyle.Render(strings.Repeat(horizontal, innerWidth))
	bottomBorder += borderStyle.Render(bottomRight)

	contentStyle := lipgloss.NewStyle().
		Width(innerWidth).
		Height(max(height-2, 0)).
		Padding(0, 1)

	styledContent := contentStyle.Render(content)

	var result strings.Builder
	result.WriteString(topBorder)
	result.WriteString("\n")

	for _, line := range splitLines(styledContent) {
		result.WriteString(borderStyle.Render(vertical))
		result.WriteString(padRight(line, innerWidth))
		result.WriteString(borderStyle.Render(vertical))
		result.WriteString("\n")
	}

	result.WriteString(bottomBorder)

	return result.String()
}

// titledRule renders a horizontal rule of width cells with title centered in it.
func titledRule(title string, width int, horizontal string, borderStyle, titleStyle lipgloss.Style) string {
	titleWithPadding := " " + title + " "
	remainingWidth := width - lipgloss.Width(titleWithPadding)
	if remainingWidth < 0 {
		remainingWidth = 0
		titleWithPadding = truncateString(titleWithPadding, width)
	}
	leftPad := remainingWidth / 2
	rightPad := remainingWidth - leftPad

	return borderStyle.Render(strings.Repeat(horizontal, leftPad)) +
		titleStyle.Render(titleWithPadding) +
		borderStyle.Render(strings.Repeat(horizontal, rightPad))
}

// LiveIndicatorStyle returns the style for the LIVE indicator (green).
func LiveIndicatorStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(config.CurrentTheme.Styles.Header.LiveFg)).
		Bold(true)
}

// WarnStyle returns the style for warning/attention text (amber).
func WarnStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(config.CurrentTheme.Styles.Header.WarnFg))
}

// StatsStyle returns the style for muted stats text.
func StatsStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(config.CurrentTheme.Styles.Header.StatsFg))
}

// FooterGroupStyle returns the style for footer group labels.
func FooterGroupStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(config.CurrentTheme.Styles.Footer.GroupFgColor)).
		Bold(true)
}

// BorderStyle returns the style for borders.
func BorderStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(config.CurrentTheme.Styles.Border.FgColor))
}

// ActiveBorderStyle returns the style for the frame around visible content.
func ActiveBorderStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(config.CurrentTheme.Styles.Border.ActiveFgColor))
}
