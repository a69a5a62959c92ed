package tray

import "time"

// State is the display state shared between the host and the tray goroutine.
// Manager guards it with a single mutex; readers get copies.
type State struct {
	Status        Status
	Tracking      bool
	WindowVisible bool
	CurrentApp    string
	Stats         Stats
	LastUpdate    time.Time
}

// DisplayStatus is the status whose icon is shown. Break always wins;
// otherwise a stopped tracker shows idle.
func (s State) DisplayStatus() Status {
	if s.Status == StatusBreak {
		return StatusBreak
	}
	if !s.Tracking {
		return StatusIdle
	}
	return s.Status
}
