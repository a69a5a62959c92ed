package tracker

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aura-app/internal/session"
	"aura-app/internal/tray"
)

type recorder struct {
	mu       sync.Mutex
	statuses []tray.Status
	apps     []string
	stats    []session.Summary
}

func (r *recorder) onStatus(s tray.Status, app string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, s)
	r.apps = append(r.apps, app)
}

func (r *recorder) onStats(s session.Summary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats = append(r.stats, s)
}

func (r *recorder) statusList() []tray.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]tray.Status(nil), r.statuses...)
}

func newTestTracker(src Source) (*Tracker, *recorder, *time.Time) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	tr := New(src, time.Hour, clock)
	rec := &recorder{}
	tr.OnStatusChange = rec.onStatus
	tr.OnStatsUpdate = rec.onStats
	return tr, rec, &now
}

func TestPollEmitsOnlyStatusChanges(t *testing.T) {
	acts := []Activity{
		{Focused: true, App: "code"},
		{Focused: true, App: "code"},
		{Focused: false, App: "browser"},
		{Focused: true, App: "reader", Title: "paper.pdf"},
	}
	i := 0
	src := SourceFunc(func(time.Time) (Activity, error) {
		a := acts[i]
		i++
		return a, nil
	})
	tr, rec, now := newTestTracker(src)

	for range acts {
		*now = now.Add(time.Second)
		tr.poll(*now)
	}

	assert.Equal(t, []tray.Status{tray.StatusFocused, tray.StatusDistracted, tray.StatusReading}, rec.statusList())
	assert.Equal(t, []string{"code", "browser", "reader"}, rec.apps)
	assert.Len(t, rec.stats, len(acts))

	sum := tr.Summary()
	assert.Equal(t, 2*time.Second, sum.Focused)
	assert.Equal(t, 2*time.Second, sum.Apps["code"].Total())
}

func TestPollSampleErrorStillTicks(t *testing.T) {
	src := SourceFunc(func(time.Time) (Activity, error) {
		return Activity{}, errors.New("no display")
	})
	tr, rec, now := newTestTracker(src)

	*now = now.Add(3 * time.Second)
	tr.poll(*now)

	assert.Empty(t, rec.statusList())
	require.Len(t, rec.stats, 1)
	assert.Equal(t, 3*time.Second, rec.stats[0].Unfocused)
}

func TestBreakSuppressesStatusAndPausesSession(t *testing.T) {
	src := SourceFunc(func(time.Time) (Activity, error) {
		return Activity{Focused: true, App: "code"}, nil
	})
	tr, rec, now := newTestTracker(src)

	*now = now.Add(time.Second)
	tr.poll(*now)
	tr.SetBreak(true)
	assert.True(t, tr.OnBreak())

	*now = now.Add(10 * time.Second)
	tr.poll(*now)
	tr.SetBreak(false)
	*now = now.Add(time.Second)
	tr.poll(*now)

	// focused reported again after the break
	assert.Equal(t, []tray.Status{tray.StatusFocused, tray.StatusFocused}, rec.statusList())
	assert.Equal(t, time.Second, tr.Summary().Focused)
}

func TestStartStopLifecycle(t *testing.T) {
	src := SourceFunc(func(time.Time) (Activity, error) {
		return Activity{Focused: true, App: "code"}, nil
	})
	tr := New(src, 5*time.Millisecond, nil)
	rec := &recorder{}
	tr.OnStatusChange = rec.onStatus

	require.NoError(t, tr.Start())
	assert.True(t, tr.IsRunning())
	assert.ErrorIs(t, tr.Start(), ErrRunning)

	assert.Eventually(t, func() bool { return len(rec.statusList()) == 1 }, time.Second, 5*time.Millisecond)

	_, err := tr.Stop()
	require.NoError(t, err)
	assert.False(t, tr.IsRunning())

	_, err = tr.Stop()
	assert.ErrorIs(t, err, ErrNotRunning)
	assert.NotPanics(t, tr.Close)
}

func TestStartWithoutSource(t *testing.T) {
	tr := New(nil, time.Second, nil)
	assert.Error(t, tr.Start())
}

func TestSimulatorCycles(t *testing.T) {
	sim := NewSimulator(nil)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	a, err := sim.Sample(start)
	require.NoError(t, err)
	assert.Equal(t, tray.StatusFocused, StatusFor(a))

	a, _ = sim.Sample(start.Add(6 * time.Second))
	assert.Equal(t, tray.StatusDistracted, StatusFor(a))

	a, _ = sim.Sample(start.Add(11 * time.Second))
	assert.Equal(t, tray.StatusReading, StatusFor(a))

	a, _ = sim.Sample(start.Add(21 * time.Second))
	assert.Equal(t, tray.StatusFocused, StatusFor(a), "routine wraps around")
}

func TestIsReading(t *testing.T) {
	assert.True(t, IsReading(Activity{Focused: true, Title: "Chapter 3 - Kindle"}))
	assert.False(t, IsReading(Activity{Focused: false, App: "reader"}))
	assert.False(t, IsReading(Activity{Focused: true, App: "code"}))
}

func TestOnSampleSeesEverySample(t *testing.T) {
	src := SourceFunc(func(time.Time) (Activity, error) {
		return Activity{App: "chat", Category: "social"}, nil
	})
	tr, _, now := newTestTracker(src)
	var got []Activity
	tr.OnSample = func(a Activity, at time.Time) {
		assert.Equal(t, *now, at)
		got = append(got, a)
	}

	*now = now.Add(time.Second)
	tr.poll(*now)
	tr.SetBreak(true)
	*now = now.Add(time.Second)
	tr.poll(*now)

	require.Len(t, got, 2)
	assert.Equal(t, "social", got[1].Category)
}
