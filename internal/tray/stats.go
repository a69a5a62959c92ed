package tray

import (
	"math"
	"time"
)

// Stats holds the session counters displayed in the tooltip and menu.
type Stats struct {
	Total   time.Duration
	Focused time.Duration
}

// Normalize clamps both counters to be non-negative and focused to at most total.
func (s Stats) Normalize() Stats {
	if s.Total < 0 {
		s.Total = 0
	}
	if s.Focused < 0 {
		s.Focused = 0
	}
	if s.Focused > s.Total {
		s.Focused = s.Total
	}
	return s
}

// FocusPercent returns the focused share of total in whole percent, rounded down.
func (s Stats) FocusPercent() int {
	n := s.Normalize()
	if n.Total <= 0 {
		return 0
	}
	focused, total := int64(n.Focused), int64(n.Total)
	for focused > math.MaxInt64/100 {
		focused /= 1000
		total /= 1000
	}
	return int(focused * 100 / total)
}
