package tracker

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"aura-app/internal/session"
	"aura-app/internal/tray"
)

var (
	ErrRunning    = errors.New("tracking already running")
	ErrNotRunning = errors.New("tracking not running")
)

// Tracker samples a Source on an interval and accumulates the session.
// Callbacks fire on the poll goroutine, outside the tracker's lock.
type Tracker struct {
	source   Source
	session  *session.Data
	interval time.Duration
	now      func() time.Time

	OnStatusChange func(status tray.Status, app string)
	OnStatsUpdate  func(summary session.Summary)
	// OnSample receives every successful sample, including during breaks.
	OnSample func(a Activity, at time.Time)

	mu         sync.RWMutex
	running    bool
	onBreak    bool
	lastStatus tray.Status
	haveStatus bool
	stopPoll   chan struct{}
	done       chan struct{}
}

func New(source Source, interval time.Duration, clock func() time.Time) *Tracker {
	if clock == nil {
		clock = time.Now
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &Tracker{
		source:   source,
		session:  session.New(clock),
		interval: interval,
		now:      clock,
	}
}

// Start begins a fresh session and the poll loop.
func (t *Tracker) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return ErrRunning
	}
	if t.source == nil {
		return fmt.Errorf("start tracking: no activity source")
	}

	t.session.Reset()
	if t.onBreak {
		t.session.Pause()
	}
	t.haveStatus = false
	t.running = true
	t.stopPoll = make(chan struct{})
	t.done = make(chan struct{})

	go t.pollLoop(t.stopPoll, t.done)

	log.Info().Dur("interval", t.interval).Msg("Tracking started")
	return nil
}

// Stop ends the poll loop and returns the final session summary.
func (t *Tracker) Stop() (session.Summary, error) {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return session.Summary{}, ErrNotRunning
	}
	close(t.stopPoll)
	done := t.done
	t.running = false
	t.mu.Unlock()

	<-done
	t.session.Tick(time.Time{})
	summary := t.session.Summary()

	log.Info().
		Dur("focused", summary.Focused).
		Dur("total", summary.Total()).
		Msg("Tracking stopped")
	return summary, nil
}

// Close stops tracking if it is running.
func (t *Tracker) Close() {
	if _, err := t.Stop(); err != nil && !errors.Is(err, ErrNotRunning) {
		log.Warn().Err(err).Msg("Failed to stop tracker")
	}
}

func (t *Tracker) IsRunning() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.running
}

func (t *Tracker) Summary() session.Summary {
	return t.session.Summary()
}

// Timeline returns the samples recorded in the current session.
func (t *Tracker) Timeline() []session.Event {
	return t.session.Timeline()
}

// SetBreak pauses accumulation while a break is active. Status changes are
// not reported during a break; the first sample after it always is.
func (t *Tracker) SetBreak(active bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.onBreak == active {
		return
	}
	t.onBreak = active
	if active {
		t.session.Pause()
	} else {
		t.session.Resume()
		t.haveStatus = false
	}
}

func (t *Tracker) OnBreak() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.onBreak
}

func (t *Tracker) pollLoop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	t.poll(t.now())
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			t.poll(t.now())
		}
	}
}

// poll takes one sample and emits callbacks.
func (t *Tracker) poll(now time.Time) {
	act, err := t.source.Sample(now)
	if err != nil {
		log.Warn().Err(err).Msg("Activity sample failed")
		t.session.Tick(now)
		t.emitStats()
		return
	}

	t.session.AddActivity(act.Focused, act.App, act.Title, now)

	status := StatusFor(act)
	t.mu.Lock()
	changed := !t.onBreak && (!t.haveStatus || status != t.lastStatus)
	if changed {
		t.lastStatus = status
		t.haveStatus = true
	}
	t.mu.Unlock()

	// Emit callbacks outside the lock to avoid holding it during callbacks
	if t.OnSample != nil {
		t.OnSample(act, now)
	}
	if changed && t.OnStatusChange != nil {
		t.OnStatusChange(status, act.App)
	}
	t.emitStats()
}

func (t *Tracker) emitStats() {
	if t.OnStatsUpdate != nil {
		t.OnStatsUpdate(t.session.Summary())
	}
}

// StatusFor maps an activity sample to the tray status it should show.
func StatusFor(a Activity) tray.Status {
	switch {
	case IsReading(a):
		return tray.StatusReading
	case a.Focused:
		return tray.StatusFocused
	default:
		return tray.StatusDistracted
	}
}
