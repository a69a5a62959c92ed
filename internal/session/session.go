// Package session accumulates focused and unfocused time from activity samples.
package session

import (
	"sync"
	"time"
)

// Event is one activity sample on the session timeline.
type Event struct {
	At      time.Time `json:"at"`
	Focused bool      `json:"focused"`
	App     string    `json:"app,omitempty"`
	Title   string    `json:"title,omitempty"`
}

// Usage is the time attributed to a single application.
type Usage struct {
	Focused   time.Duration `json:"focused"`
	Unfocused time.Duration `json:"unfocused"`
}

func (u Usage) Total() time.Duration { return u.Focused + u.Unfocused }

type Summary struct {
	Start     time.Time        `json:"start"`
	Focused   time.Duration    `json:"focused"`
	Unfocused time.Duration    `json:"unfocused"`
	Apps      map[string]Usage `json:"apps"`
}

func (s Summary) Total() time.Duration { return s.Focused + s.Unfocused }

// Data is the in-memory session store. Time accrues to the last known state
// between samples; paused intervals never accrue. Safe for concurrent use.
type Data struct {
	now func() time.Time

	mu        sync.Mutex
	timeline  []Event
	apps      map[string]Usage
	focused   time.Duration
	unfocused time.Duration
	start     time.Time
	last      time.Time
	lastState bool
	lastApp   string
	paused    bool
}

// New returns an empty session. A nil clock uses time.Now.
func New(clock func() time.Time) *Data {
	if clock == nil {
		clock = time.Now
	}
	d := &Data{now: clock}
	d.resetLocked()
	return d
}

// AddActivity records a sample at ts (zero means now) after accruing the
// elapsed time to the previous state. Samples older than the last one are
// clamped to it.
func (d *Data) AddActivity(focused bool, app, title string, ts time.Time) {
	if ts.IsZero() {
		ts = d.now()
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if ts.Before(d.last) {
		ts = d.last
	}
	d.accrueLocked(ts)

	d.lastState = focused
	d.lastApp = app
	d.last = ts
	d.timeline = append(d.timeline, Event{At: ts, Focused: focused, App: app, Title: title})
}

// Tick advances accumulation to now (zero means the clock) using the last state.
func (d *Data) Tick(now time.Time) {
	if now.IsZero() {
		now = d.now()
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.accrueLocked(now)
}

func (d *Data) Pause() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.paused {
		return
	}
	d.accrueLocked(d.now())
	d.paused = true
}

// Resume continues accumulation from now.
func (d *Data) Resume() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.paused {
		return
	}
	if now := d.now(); now.After(d.last) {
		d.last = now
	}
	d.paused = false
}

func (d *Data) Paused() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.paused
}

func (d *Data) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resetLocked()
}

func (d *Data) Summary() Summary {
	d.mu.Lock()
	defer d.mu.Unlock()

	apps := make(map[string]Usage, len(d.apps))
	for k, v := range d.apps {
		apps[k] = v
	}
	return Summary{
		Start:     d.start,
		Focused:   d.focused,
		Unfocused: d.unfocused,
		Apps:      apps,
	}
}

func (d *Data) Timeline() []Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Event, len(d.timeline))
	copy(out, d.timeline)
	return out
}

func (d *Data) resetLocked() {
	d.timeline = nil
	d.apps = make(map[string]Usage)
	d.focused = 0
	d.unfocused = 0
	d.start = d.now()
	d.last = d.start
	d.lastState = false
	d.lastApp = ""
	d.paused = false
}

func (d *Data) accrueLocked(now time.Time) {
	if !now.After(d.last) {
		return
	}
	delta := now.Sub(d.last)
	d.last = now
	if d.paused {
		return
	}

	if d.lastState {
		d.focused += delta
	} else {
		d.unfocused += delta
	}

	if d.lastApp == "" {
		return
	}
	u := d.apps[d.lastApp]
	if d.lastState {
		u.Focused += delta
	} else {
		u.Unfocused += delta
	}
	d.apps[d.lastApp] = u
}
