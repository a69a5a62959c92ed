package tray

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatDuration renders d as "42s", "5m 3s" or "2h 15m".
func FormatDuration(d time.Duration) string {
	secs := int64(d / time.Second)
	if secs < 0 {
		secs = 0
	}
	switch {
	case secs < 60:
		return fmt.Sprintf("%ds", secs)
	case secs < 3600:
		return fmt.Sprintf("%dm %ds", secs/60, secs%60)
	default:
		return fmt.Sprintf("%dh %dm", secs/3600, (secs%3600)/60)
	}
}

func StatusText(s State) string {
	switch s.DisplayStatus() {
	case StatusBreak:
		return "On Break"
	case StatusIdle:
		if !s.Tracking {
			return "Tracking Stopped"
		}
		return "Idle"
	case StatusFocused:
		return "Focused"
	case StatusReading:
		return "Focused (Reading)"
	default:
		return "Distracted"
	}
}

// Tooltip expands {status}, {focused_time}, {total_time} and {percent} in tmpl.
func Tooltip(tmpl string, s State) string {
	stats := s.Stats.Normalize()
	r := strings.NewReplacer(
		"{status}", StatusText(s),
		"{focused_time}", FormatDuration(stats.Focused),
		"{total_time}", FormatDuration(stats.Total),
		"{percent}", strconv.Itoa(stats.FocusPercent()),
		"{app}", s.CurrentApp,
	)
	return r.Replace(tmpl)
}

// StatsText is the one-line summary shown in the tray menu.
func StatsText(stats Stats) string {
	stats = stats.Normalize()
	if stats.Total == 0 {
		return "No session data"
	}
	return fmt.Sprintf("Focus: %d%% (%s)", stats.FocusPercent(), FormatDuration(stats.Focused))
}
