package tray

import (
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	// ErrUnavailable is returned by Start when the platform has no tray.
	ErrUnavailable = errors.New("system tray not available")
	ErrStopTimeout = errors.New("tray loop did not exit in time")
)

// Callbacks are invoked on the tray goroutine when menu items are clicked.
// Nil entries are ignored. A callback must not call Manager.Stop
// synchronously: Stop waits for the goroutine the callback is running on.
type Callbacks struct {
	OnToggleWindow  func()
	OnStartTracking func()
	OnStopTracking  func()
	OnShowStats     func()
	OnExit          func()
}

type menuItems struct {
	window   MenuItem
	tracking MenuItem
	stats    MenuItem
	summary  MenuItem
	exit     MenuItem
}

// Manager owns the tray icon, tooltip and menu. Hosts push updates from any
// goroutine; the last write wins.
type Manager struct {
	cfg       Config
	callbacks Callbacks
	backend   Backend
	icons     *IconGenerator

	mu    sync.Mutex
	state State
	items *menuItems // nil until the backend is ready

	lifeMu sync.Mutex
	done   chan struct{}
	quit   chan struct{}
}

func NewManager(cfg Config, cb Callbacks, backend Backend) *Manager {
	cfg = cfg.withDefaults()
	if backend == nil {
		backend = NewBackend()
	}
	return &Manager{
		cfg:       cfg,
		callbacks: cb,
		backend:   backend,
		icons:     NewIconGenerator(cfg),
		state:     State{Status: StatusIdle},
	}
}

func (m *Manager) Icons() *IconGenerator { return m.icons }

// Start runs the tray loop on a dedicated goroutine. It returns
// ErrUnavailable when there is no tray to show; callers keep running
// without one.
func (m *Manager) Start() error {
	if !m.backend.Available() {
		log.Warn().Msg("System tray unavailable, continuing without tray icon")
		return ErrUnavailable
	}

	m.lifeMu.Lock()
	defer m.lifeMu.Unlock()

	if m.done != nil {
		select {
		case <-m.done:
		default:
			return nil // already running
		}
	}

	done := make(chan struct{})
	quit := make(chan struct{})
	m.done, m.quit = done, quit

	// The tray's hidden window and its message loop must share one OS thread.
	go func() {
		defer close(done)
		runtime.LockOSThread()
		m.backend.Run(m.onReady, m.onExit)
	}()
	go m.refreshLoop(quit, done)

	log.Info().Msg("System tray started")
	return nil
}

// Stop quits the tray loop and waits up to Config.StopTimeout for it to exit.
// After ErrStopTimeout the manager still counts as running and a later Stop
// waits for the same loop again.
func (m *Manager) Stop() error {
	m.lifeMu.Lock()
	done, quit := m.done, m.quit
	m.quit = nil
	m.lifeMu.Unlock()

	if done == nil {
		return nil
	}
	if quit != nil {
		close(quit)
		m.backend.Quit()
	}

	timer := time.NewTimer(m.cfg.StopTimeout)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
		log.Warn().Dur("timeout", m.cfg.StopTimeout).Msg("Tray loop did not exit")
		return ErrStopTimeout
	}

	m.lifeMu.Lock()
	if m.done == done {
		m.done = nil
	}
	m.lifeMu.Unlock()

	m.mu.Lock()
	m.items = nil
	m.mu.Unlock()
	log.Info().Msg("System tray stopped")
	return nil
}

// Running reports whether the tray loop is active.
func (m *Manager) Running() bool {
	m.lifeMu.Lock()
	defer m.lifeMu.Unlock()
	if m.done == nil {
		return false
	}
	select {
	case <-m.done:
		return false
	default:
		return true
	}
}

// Snapshot returns a copy of the current display state.
func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Tooltip returns the tooltip for the current state.
func (m *Manager) Tooltip() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Tooltip(m.cfg.TooltipTemplate, m.state)
}

func (m *Manager) UpdateStatus(s Status) {
	if !s.valid() {
		log.Warn().Int("status", int(s)).Msg("Ignoring invalid tray status")
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.LastUpdate = time.Now()
	if m.state.Status == s {
		return
	}
	prev := m.state.DisplayStatus()
	m.state.Status = s
	if m.state.DisplayStatus() != prev {
		m.applyIconLocked()
	}
	m.applyTextLocked()
}

func (m *Manager) SetTracking(active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Tracking == active {
		return
	}
	prev := m.state.DisplayStatus()
	m.state.Tracking = active
	if m.state.DisplayStatus() != prev {
		m.applyIconLocked()
	}
	m.applyMenuLocked()
	m.applyTextLocked()
}

func (m *Manager) SetWindowVisible(visible bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.WindowVisible == visible {
		return
	}
	m.state.WindowVisible = visible
	m.applyMenuLocked()
}

func (m *Manager) SetCurrentApp(app string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.CurrentApp = app
}

// UpdateSessionStats stores the session counters, clamped so that both are
// non-negative and focused never exceeds total.
func (m *Manager) UpdateSessionStats(total, focused time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.Stats = Stats{Total: total, Focused: focused}.Normalize()
	m.applyTextLocked()
}

// Reconfigure swaps colors, tooltip template and refresh settings at runtime.
func (m *Manager) Reconfigure(cfg Config) {
	cfg = cfg.withDefaults()
	m.icons.Reset(cfg)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg.Colors = cfg.Colors
	m.cfg.IconSize = cfg.IconSize
	m.cfg.IconPadding = cfg.IconPadding
	m.cfg.TooltipTemplate = cfg.TooltipTemplate
	m.applyIconLocked()
	m.applyTextLocked()
}

func (m *Manager) onReady() {
	m.mu.Lock()
	defer m.mu.Unlock()

	b := m.backend
	b.SetTitle(m.cfg.Title)
	b.SetOnClick(func() { m.dispatch("toggle_window", m.callbacks.OnToggleWindow) })

	items := &menuItems{}
	items.window = b.AddMenuItem(windowLabel(m.state.WindowVisible), "Show or hide the AURA window")
	items.tracking = b.AddMenuItem(trackingLabel(m.state.Tracking), "Start or stop focus tracking")
	b.AddSeparator()
	items.stats = b.AddMenuItem("Session Stats", "Show detailed session statistics")
	items.summary = b.AddMenuItem(StatsText(m.state.Stats), "")
	items.summary.Disable()
	b.AddSeparator()
	items.exit = b.AddMenuItem("Exit AURA", "Quit the application")

	items.window.Click(func() { m.dispatch("toggle_window", m.callbacks.OnToggleWindow) })
	items.tracking.Click(m.onTrackingClick)
	items.stats.Click(func() { m.dispatch("show_stats", m.callbacks.OnShowStats) })
	items.exit.Click(m.onExitClick)

	m.items = items
	m.applyIconLocked()
	m.applyTextLocked()
}

func (m *Manager) onExit() {
	m.mu.Lock()
	m.items = nil
	m.mu.Unlock()
}

func (m *Manager) onTrackingClick() {
	m.mu.Lock()
	tracking := m.state.Tracking
	m.mu.Unlock()

	if tracking {
		m.dispatch("stop_tracking", m.callbacks.OnStopTracking)
	} else {
		m.dispatch("start_tracking", m.callbacks.OnStartTracking)
	}
}

func (m *Manager) onExitClick() {
	m.dispatch("exit", m.callbacks.OnExit)
	// Stop from another goroutine: this one is the tray loop Stop waits for.
	go func() {
		if err := m.Stop(); err != nil {
			log.Warn().Err(err).Msg("Failed to stop tray after exit")
		}
	}()
}

// dispatch runs a host callback, isolating the tray loop from its panics.
func (m *Manager) dispatch(action string, fn func()) {
	if fn == nil {
		log.Debug().Str("action", action).Msg("No tray callback registered")
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("action", action).Interface("panic", r).Msg("Tray callback failed")
		}
	}()
	fn()
}

func (m *Manager) refreshLoop(quit, done <-chan struct{}) {
	if m.cfg.RefreshInterval <= 0 {
		return
	}
	ticker := time.NewTicker(m.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-quit:
			return
		case <-done:
			return
		case <-ticker.C:
			m.mu.Lock()
			m.applyTextLocked()
			m.mu.Unlock()
		}
	}
}

func (m *Manager) applyIconLocked() {
	if m.items == nil {
		return
	}
	icon, err := m.icons.Icon(m.state.DisplayStatus())
	if err != nil {
		log.Warn().Err(err).Msg("Failed to render tray icon")
		return
	}
	m.backend.SetIcon(icon.Data)
}

func (m *Manager) applyTextLocked() {
	if m.items == nil {
		return
	}
	m.backend.SetTooltip(Tooltip(m.cfg.TooltipTemplate, m.state))
	m.items.summary.SetTitle(StatsText(m.state.Stats))
}

func (m *Manager) applyMenuLocked() {
	if m.items == nil {
		return
	}
	m.items.window.SetTitle(windowLabel(m.state.WindowVisible))
	m.items.tracking.SetTitle(trackingLabel(m.state.Tracking))
}

func windowLabel(visible bool) string {
	if visible {
		return "Hide Window"
	}
	return "Show Window"
}

func trackingLabel(tracking bool) string {
	if tracking {
		return "Stop Tracking"
	}
	return "Start Tracking"
}
