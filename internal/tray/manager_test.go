package tray

import (
	"fmt"
	"image/color"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	itemWindow = iota
	itemTracking
	itemStats
	itemSummary
	itemExit
)

func startManager(t *testing.T, cb Callbacks) (*Manager, *fakeBackend) {
	t.Helper()
	backend := newFakeBackend()
	cfg := DefaultConfig()
	cfg.RefreshInterval = 0
	m := NewManager(cfg, cb, backend)

	require.NoError(t, m.Start())
	select {
	case <-backend.readyCh:
	case <-time.After(2 * time.Second):
		t.Fatal("tray never became ready")
	}
	t.Cleanup(func() { _ = m.Stop() })
	return m, backend
}

func TestManagerStartStop(t *testing.T) {
	m, backend := startManager(t, Callbacks{})

	assert.True(t, m.Running())
	assert.Equal(t, "AURA", backend.title)
	assert.Len(t, backend.items, 5)
	assert.Equal(t, 2, backend.separators)
	assert.Equal(t, 1, backend.iconCount(), "initial icon is set when ready")

	require.NoError(t, m.Start(), "second Start while running is a no-op")

	done := make(chan error, 1)
	go func() { done <- m.Stop() }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
	assert.False(t, m.Running())
	assert.NoError(t, m.Stop(), "Stop is idempotent")
}

func TestManagerUnavailableDegradesToNoop(t *testing.T) {
	backend := newFakeBackend()
	backend.available = false
	m := NewManager(DefaultConfig(), Callbacks{}, backend)

	err := m.Start()
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.False(t, m.Running())

	m.UpdateStatus(StatusFocused)
	m.SetTracking(true)
	m.UpdateSessionStats(time.Minute, 30*time.Second)
	assert.Zero(t, backend.iconCount())
	assert.NoError(t, m.Stop())

	snap := m.Snapshot()
	assert.Equal(t, StatusFocused, snap.Status)
	assert.Equal(t, 30*time.Second, snap.Stats.Focused)
}

func TestManagerStopTimeout(t *testing.T) {
	backend := newFakeBackend()
	backend.ignoreQuit = true
	cfg := DefaultConfig()
	cfg.StopTimeout = 50 * time.Millisecond
	m := NewManager(cfg, Callbacks{}, backend)

	require.NoError(t, m.Start())
	<-backend.readyCh

	assert.ErrorIs(t, m.Stop(), ErrStopTimeout)
	assert.True(t, m.Running(), "the loop is still alive after a timed-out stop")

	close(backend.release)
	assert.NoError(t, m.Stop(), "a second stop waits for the same loop")
	assert.False(t, m.Running())
}

func TestUpdateStatusUsesCachedIcons(t *testing.T) {
	m, backend := startManager(t, Callbacks{})
	m.SetTracking(true)

	for _, s := range []Status{StatusFocused, StatusDistracted, StatusBreak, StatusReading} {
		m.UpdateStatus(s)

		want, err := m.Icons().Icon(s)
		require.NoError(t, err)
		assert.Equal(t, want.Data, backend.lastIcon(), "icon for %s", s)
		assert.Equal(t, m.Icons().Color(s), centerPixel(t, want.PNG), "color for %s", s)

		count := backend.iconCount()
		m.UpdateStatus(s)
		assert.Equal(t, count, backend.iconCount(), "repeated %s update must not re-render", s)

		again, err := m.Icons().Icon(s)
		require.NoError(t, err)
		assert.Same(t, want, again)
	}

	// idle plus the four statuses above
	assert.Equal(t, 5, m.Icons().Len())
}

func TestStoppedTrackingShowsIdleExceptBreak(t *testing.T) {
	m, backend := startManager(t, Callbacks{})

	m.UpdateStatus(StatusFocused)
	idle, err := m.Icons().Icon(StatusIdle)
	require.NoError(t, err)
	assert.Equal(t, idle.Data, backend.lastIcon())

	m.UpdateStatus(StatusBreak)
	brk, err := m.Icons().Icon(StatusBreak)
	require.NoError(t, err)
	assert.Equal(t, brk.Data, backend.lastIcon())
	assert.Contains(t, backend.currentTooltip(), "On Break")
}

func TestUpdateSessionStats(t *testing.T) {
	m, backend := startManager(t, Callbacks{})
	m.SetTracking(true)
	m.UpdateStatus(StatusFocused)

	m.UpdateSessionStats(1800*time.Second, 1200*time.Second)

	assert.Equal(t, "Focus: 66% (20m 0s)", backend.item(itemSummary).Title())
	assert.False(t, backend.item(itemSummary).Enabled())
	assert.Equal(t, "AURA: Focused | 20m 0s focused of 30m 0s", backend.currentTooltip())

	m.UpdateSessionStats(60*time.Second, 90*time.Second)
	snap := m.Snapshot()
	assert.Equal(t, snap.Stats.Total, snap.Stats.Focused, "focused is clamped to total")

	m.UpdateSessionStats(-time.Second, -time.Second)
	assert.Equal(t, Stats{}, m.Snapshot().Stats)
	assert.Equal(t, "No session data", backend.item(itemSummary).Title())
}

func TestMenuLabelsFollowState(t *testing.T) {
	m, backend := startManager(t, Callbacks{})

	assert.Equal(t, "Show Window", backend.item(itemWindow).Title())
	assert.Equal(t, "Start Tracking", backend.item(itemTracking).Title())

	m.SetWindowVisible(true)
	m.SetTracking(true)
	assert.Equal(t, "Hide Window", backend.item(itemWindow).Title())
	assert.Equal(t, "Stop Tracking", backend.item(itemTracking).Title())
}

func TestMenuCallbacks(t *testing.T) {
	var toggle, start, stop, stats atomic.Int32
	m, backend := startManager(t, Callbacks{
		OnToggleWindow:  func() { toggle.Add(1) },
		OnStartTracking: func() { start.Add(1) },
		OnStopTracking:  func() { stop.Add(1) },
		OnShowStats:     func() { stats.Add(1) },
	})

	backend.item(itemWindow).trigger()
	backend.leftClick()
	assert.EqualValues(t, 2, toggle.Load())

	backend.item(itemTracking).trigger()
	assert.EqualValues(t, 1, start.Load())
	assert.EqualValues(t, 0, stop.Load())

	m.SetTracking(true)
	backend.item(itemTracking).trigger()
	assert.EqualValues(t, 1, start.Load())
	assert.EqualValues(t, 1, stop.Load())

	backend.item(itemStats).trigger()
	assert.EqualValues(t, 1, stats.Load())
}

func TestMissingCallbacksAreNoops(t *testing.T) {
	m, backend := startManager(t, Callbacks{})

	assert.NotPanics(t, func() {
		backend.leftClick()
		backend.item(itemWindow).trigger()
		backend.item(itemTracking).trigger()
		backend.item(itemStats).trigger()
	})
	assert.True(t, m.Running())
}

func TestPanickingCallbackIsRecovered(t *testing.T) {
	m, backend := startManager(t, Callbacks{
		OnShowStats: func() { panic("boom") },
	})

	assert.NotPanics(t, func() { backend.item(itemStats).trigger() })
	assert.True(t, m.Running())
}

func TestExitRunsCallbackAndStops(t *testing.T) {
	var exited atomic.Bool
	m, backend := startManager(t, Callbacks{
		OnExit: func() { exited.Store(true) },
	})

	backend.item(itemExit).trigger()

	assert.True(t, exited.Load())
	assert.Eventually(t, func() bool { return !m.Running() }, 2*time.Second, 10*time.Millisecond)
}

func TestReconfigureRerendersIcon(t *testing.T) {
	m, backend := startManager(t, Callbacks{})
	m.SetTracking(true)
	m.UpdateStatus(StatusFocused)
	before := backend.lastIcon()

	cfg := DefaultConfig()
	cfg.Colors = map[Status]color.RGBA{StatusFocused: {R: 1, G: 2, B: 3, A: 255}}
	m.Reconfigure(cfg)

	assert.NotEqual(t, before, backend.lastIcon())
	icon, err := m.Icons().Icon(StatusFocused)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 1, G: 2, B: 3, A: 255}, centerPixel(t, icon.PNG))
}

func TestRefreshLoopUpdatesTooltip(t *testing.T) {
	backend := newFakeBackend()
	cfg := DefaultConfig()
	cfg.RefreshInterval = 10 * time.Millisecond
	cfg.TooltipTemplate = "{status}"
	m := NewManager(cfg, Callbacks{}, backend)
	require.NoError(t, m.Start())
	t.Cleanup(func() { _ = m.Stop() })
	<-backend.readyCh

	backend.SetTooltip("")
	assert.Eventually(t, func() bool {
		return backend.currentTooltip() == "Tracking Stopped"
	}, time.Second, 5*time.Millisecond)
}

func TestConcurrentHostUpdatesAndTrayEvents(t *testing.T) {
	backend := newFakeBackend()
	cfg := DefaultConfig()
	cfg.RefreshInterval = time.Millisecond

	var m *Manager
	var clicks atomic.Int32
	m = NewManager(cfg, Callbacks{
		OnToggleWindow:  func() { clicks.Add(1); m.SetWindowVisible(!m.Snapshot().WindowVisible) },
		OnStartTracking: func() { clicks.Add(1); m.SetTracking(true) },
		OnStopTracking:  func() { clicks.Add(1); m.SetTracking(false) },
		OnShowStats:     func() { clicks.Add(1); _ = m.Tooltip() },
	}, backend)
	require.NoError(t, m.Start())
	<-backend.readyCh
	t.Cleanup(func() { _ = m.Stop() })

	statuses := AllStatuses()
	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				m.UpdateStatus(statuses[(g+i)%len(statuses)])
				m.UpdateSessionStats(time.Duration(i)*time.Second, time.Duration(2*i)*time.Second)
				m.SetTracking(i%2 == 0)
				m.SetCurrentApp(fmt.Sprintf("app-%d", g))
				_ = m.Snapshot()
			}
		}(g)
	}
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			backend.item(itemWindow).trigger()
			backend.item(itemTracking).trigger()
			backend.item(itemStats).trigger()
			backend.leftClick()
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			m.Reconfigure(cfg)
		}
	}()
	wg.Wait()

	snap := m.Snapshot()
	assert.LessOrEqual(t, snap.Stats.Focused, snap.Stats.Total)
	assert.EqualValues(t, 400, clicks.Load())
	assert.True(t, m.Running())
}
