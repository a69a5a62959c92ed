// Package focustimer implements a Pomodoro-style work/break timer.
//
// States move Idle → Working → Break → Idle, with Paused reachable from
// Working and Break. Remaining time is always derived from the clock, never
// from counting ticks.
package focustimer

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type State int

const (
	Idle State = iota
	Working
	Break
	Paused
)

func (s State) String() string {
	switch s {
	case Working:
		return "working"
	case Break:
		return "break"
	case Paused:
		return "paused"
	default:
		return "idle"
	}
}

type Config struct {
	WorkDuration  time.Duration
	BreakDuration time.Duration
	// Tick is the cadence of tick callbacks and completion checks.
	Tick time.Duration
}

func DefaultConfig() Config {
	return Config{
		WorkDuration:  25 * time.Minute,
		BreakDuration: 5 * time.Minute,
		Tick:          200 * time.Millisecond,
	}
}

// Snapshot is the observable timer state.
type Snapshot struct {
	State     State
	Remaining time.Duration
	Total     time.Duration
	Completed int
}

type TickFunc func(Snapshot)

type Timer struct {
	cfg Config
	now func() time.Time

	// OnBreakStart fires when a break begins, with its length.
	OnBreakStart func(d time.Duration)
	// OnBreakEnd fires when a break completes or is reset.
	OnBreakEnd func()
	// Notify is used for period-end messages.
	Notify func(title, message string)

	mu              sync.Mutex
	state           State
	pausedFrom      State
	workTarget      time.Duration
	breakTarget     time.Duration
	startedAt       time.Time
	pausedRemaining time.Duration
	completed       int
	tickFns         []TickFunc

	loopStop chan struct{}
	loopDone chan struct{}
}

func New(cfg Config, clock func() time.Time) *Timer {
	def := DefaultConfig()
	if cfg.WorkDuration <= 0 {
		cfg.WorkDuration = def.WorkDuration
	}
	if cfg.BreakDuration <= 0 {
		cfg.BreakDuration = def.BreakDuration
	}
	if cfg.Tick <= 0 {
		cfg.Tick = def.Tick
	}
	if clock == nil {
		clock = time.Now
	}
	return &Timer{
		cfg:         cfg,
		now:         clock,
		workTarget:  cfg.WorkDuration,
		breakTarget: cfg.BreakDuration,
	}
}

// OnTick registers fn to receive a snapshot on every tick.
func (t *Timer) OnTick(fn TickFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tickFns = append(t.tickFns, fn)
}

// StartWork starts a work period of d (zero keeps the current target).
// A paused work period resumes where it left off.
func (t *Timer) StartWork(d time.Duration) {
	t.mu.Lock()
	if d > 0 {
		t.workTarget = d
	}
	now := t.now()
	if t.state == Paused && t.pausedFrom == Working && d <= 0 {
		t.startedAt = now.Add(-(t.workTarget - t.pausedRemaining))
	} else {
		t.startedAt = now
	}
	t.state = Working
	t.pausedRemaining = 0
	t.mu.Unlock()

	t.ensureLoop()
}

// StartBreak starts a break of d (zero keeps the current target).
func (t *Timer) StartBreak(d time.Duration) {
	t.mu.Lock()
	target, cb := t.startBreakLocked(d)
	t.mu.Unlock()

	if cb != nil {
		safeCall("break_start", func() { cb(target) })
	}
	t.ensureLoop()
}

func (t *Timer) startBreakLocked(d time.Duration) (time.Duration, func(time.Duration)) {
	if d > 0 {
		t.breakTarget = d
	}
	t.state = Break
	t.startedAt = t.now()
	t.pausedRemaining = 0
	return t.breakTarget, t.OnBreakStart
}

func (t *Timer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != Working && t.state != Break {
		return
	}
	t.pausedRemaining = t.remainingLocked()
	t.pausedFrom = t.state
	t.state = Paused
}

// Resume continues a paused period.
func (t *Timer) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != Paused {
		return
	}
	t.state = t.pausedFrom
	t.startedAt = t.now().Add(-(t.targetLocked() - t.pausedRemaining))
	t.pausedRemaining = 0
}

// Reset returns to Idle. Resetting during a break ends it.
func (t *Timer) Reset() {
	t.mu.Lock()
	wasBreak := t.state == Break || (t.state == Paused && t.pausedFrom == Break)
	t.state = Idle
	t.pausedRemaining = 0
	cb := t.OnBreakEnd
	t.mu.Unlock()

	if wasBreak && cb != nil {
		safeCall("break_end", cb)
	}
}

// State returns the current state with remaining and total time of the
// current period.
func (t *Timer) State() (State, time.Duration, time.Duration) {
	s := t.Snapshot()
	return s.State, s.Remaining, s.Total
}

func (t *Timer) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Timer) Completed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.completed
}

// Close stops the tick goroutine.
func (t *Timer) Close() {
	t.mu.Lock()
	stop, done := t.loopStop, t.loopDone
	t.loopStop, t.loopDone = nil, nil
	t.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func (t *Timer) ensureLoop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.loopStop != nil {
		return
	}
	t.loopStop = make(chan struct{})
	t.loopDone = make(chan struct{})
	go t.run(t.loopStop, t.loopDone)
}

func (t *Timer) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(t.cfg.Tick)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			t.step()
		}
	}
}

// step fires tick callbacks and handles period completion.
func (t *Timer) step() {
	t.mu.Lock()
	snap := t.snapshotLocked()
	fns := append([]TickFunc(nil), t.tickFns...)
	t.mu.Unlock()

	for _, fn := range fns {
		safeCall("tick", func() { fn(snap) })
	}
	// The period change happens under the same lock as the expiry check so
	// a concurrent Reset is never overwritten.
	t.mu.Lock()
	current := t.state
	expired := (current == Working || current == Break) && t.remainingLocked() <= 0
	var (
		breakLen time.Duration
		startCb  func(time.Duration)
	)
	if expired && current == Working {
		t.completed++
		breakLen, startCb = t.startBreakLocked(0)
	}
	if expired && current == Break {
		t.state = Idle
	}
	endCb := t.OnBreakEnd
	t.mu.Unlock()

	if !expired {
		return
	}
	if current == Working {
		if startCb != nil {
			safeCall("break_start", func() { startCb(breakLen) })
		}
		t.notify("Work complete", "Time for a short break!")
		return
	}
	t.notify("Break over", "Back to focus now.")
	if endCb != nil {
		safeCall("break_end", endCb)
	}
}

func (t *Timer) notify(title, message string) {
	log.Info().Str("title", title).Msg("Focus timer period ended")
	if t.Notify != nil {
		safeCall("notify", func() { t.Notify(title, message) })
	}
}

func (t *Timer) snapshotLocked() Snapshot {
	s := Snapshot{State: t.state, Completed: t.completed}
	switch t.state {
	case Working, Break:
		s.Total = t.targetLocked()
		s.Remaining = t.remainingLocked()
	case Paused:
		s.Total = t.targetLocked()
		s.Remaining = t.pausedRemaining
	default:
		s.Total = t.workTarget
		s.Remaining = t.workTarget
	}
	return s
}

func (t *Timer) targetLocked() time.Duration {
	state := t.state
	if state == Paused {
		state = t.pausedFrom
	}
	if state == Break {
		return t.breakTarget
	}
	return t.workTarget
}

func (t *Timer) remainingLocked() time.Duration {
	rem := t.targetLocked() - t.now().Sub(t.startedAt)
	if rem < 0 {
		return 0
	}
	return rem
}

func safeCall(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("callback", name).Interface("panic", r).Msg("Focus timer callback failed")
		}
	}()
	fn()
}
