package store

import (
	"time"

	"aura-app/internal/session"
)

// FromSummary converts a session summary ending at end into a Record.
func FromSummary(s session.Summary, end time.Time) Record {
	r := Record{
		Start:            s.Start,
		End:              end,
		FocusedSeconds:   s.Focused.Seconds(),
		UnfocusedSeconds: s.Unfocused.Seconds(),
	}
	if len(s.Apps) > 0 {
		r.Apps = make(map[string]AppUsage, len(s.Apps))
		for app, u := range s.Apps {
			r.Apps[app] = AppUsage{
				FocusedSeconds:   u.Focused.Seconds(),
				UnfocusedSeconds: u.Unfocused.Seconds(),
			}
		}
	}
	return r
}
