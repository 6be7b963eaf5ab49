package ui

import (
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/kostyay/signboard/internal/model"
)

// ClockLayout renders DD/MM/YYYY HH:MM:SS.
const ClockLayout = "02/01/2006 15:04:05"

// formatClock formats t in local time for the date/time element.
func formatClock(t time.Time) string {
	return t.Local().Format(ClockLayout)
}

// truncateString truncates a string to maxLen cells with ellipsis if needed.
// Multi-byte characters are never split.
func truncateString(s string, maxLen int) string {
	if ansi.StringWidth(s) <= maxLen {
		return s
	}
	if maxLen < 4 {
		return ansi.Truncate(s, maxLen, "")
	}
	return ansi.Truncate(s, maxLen, "...")
}

// orDash returns s, or "-" when s is empty.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// connectionText is the header's connection indicator text.
func connectionText(s model.ConnectionState) string {
	switch s {
	case model.StateOpen:
		return "LIVE"
	case model.StateConnecting:
		return "CONNECTING"
	case model.StateClosed:
		return "RECONNECTING"
	default:
		return "DISCOVERING"
	}
}
