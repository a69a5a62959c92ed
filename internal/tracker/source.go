package tracker

import (
	"strings"
	"time"
)

// Activity is one sample of what the user is doing.
type Activity struct {
	Focused bool
	App     string
	Title   string
	// Category labels the activity, e.g. "work", "social" or "idle".
	Category string
}

// Source produces activity samples for the tracker.
type Source interface {
	Sample(now time.Time) (Activity, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(now time.Time) (Activity, error)

func (f SourceFunc) Sample(now time.Time) (Activity, error) { return f(now) }

// Phase is one step of a simulated routine.
type Phase struct {
	Duration time.Duration
	Activity Activity
}

// DefaultRoutine alternates focused and distracted work in 5s phases.
var DefaultRoutine = []Phase{
	{5 * time.Second, Activity{Focused: true, App: "code", Title: "main.go - editor"}},
	{5 * time.Second, Activity{Focused: false, App: "browser", Title: "Video feed", Category: "entertainment"}},
	{5 * time.Second, Activity{Focused: true, App: "reader", Title: "design.pdf"}},
	{5 * time.Second, Activity{Focused: false, App: "chat", Title: "General channel", Category: "communication_personal"}},
}

// Simulator replays a fixed routine in a loop, starting at the first sample.
type Simulator struct {
	Routine []Phase

	start time.Time
	cycle time.Duration
}

func NewSimulator(routine []Phase) *Simulator {
	if len(routine) == 0 {
		routine = DefaultRoutine
	}
	var cycle time.Duration
	for _, p := range routine {
		cycle += p.Duration
	}
	return &Simulator{Routine: routine, cycle: cycle}
}

func (s *Simulator) Sample(now time.Time) (Activity, error) {
	if s.start.IsZero() {
		s.start = now
	}
	if s.cycle <= 0 {
		return s.Routine[0].Activity, nil
	}
	offset := now.Sub(s.start) % s.cycle
	if offset < 0 {
		offset += s.cycle
	}
	for _, p := range s.Routine {
		if offset < p.Duration {
			return p.Activity, nil
		}
		offset -= p.Duration
	}
	return s.Routine[len(s.Routine)-1].Activity, nil
}

var readingHints = []string{"reader", "pdf", "kindle", "docs", "book"}

// IsReading reports whether a focused activity looks like passive reading.
func IsReading(a Activity) bool {
	if !a.Focused {
		return false
	}
	s := strings.ToLower(a.App + " " + a.Title)
	for _, hint := range readingHints {
		if strings.Contains(s, hint) {
			return true
		}
	}
	return false
}
