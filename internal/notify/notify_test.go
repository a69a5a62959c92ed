package notify

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sent struct{ title, body string }

type fakeSender struct {
	mu   sync.Mutex
	msgs []sent
	err  error
}

func (f *fakeSender) Send(title, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, sent{title, body})
	return f.err
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.msgs)
}

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func at(sec int) time.Time { return t0.Add(time.Duration(sec) * time.Second) }

func distracted(sec int) Event {
	return Event{At: at(sec), Category: "news", App: "browser", Title: "Headlines"}
}

func TestDelayBeforeFirstAlert(t *testing.T) {
	sender := &fakeSender{}
	m := NewManager(DefaultSettings(), sender)

	_, ok := m.OnFocusEvent(distracted(0))
	assert.False(t, ok)
	_, ok = m.OnFocusEvent(distracted(9))
	assert.False(t, ok)

	msg, ok := m.OnFocusEvent(distracted(10))
	require.True(t, ok)
	assert.Equal(t, "AURA: Gentle reminder", msg.Title)
	assert.Equal(t, "You drifted to news in Headlines.\n10s away. Small nudge: switch back to your task when ready.", msg.Body)
	assert.Equal(t, 1, sender.count())
}

func TestThrottleAndEscalation(t *testing.T) {
	sender := &fakeSender{}
	m := NewManager(DefaultSettings(), sender)

	m.OnFocusEvent(distracted(0))
	_, ok := m.OnFocusEvent(distracted(10))
	require.True(t, ok)

	_, ok = m.OnFocusEvent(distracted(50))
	assert.False(t, ok, "throttled by min interval")

	msg, ok := m.OnFocusEvent(distracted(130))
	require.True(t, ok)
	assert.Equal(t, 2, msg.Level)
	assert.Equal(t, "AURA: Nudge to refocus", msg.Title)

	msg, ok = m.OnFocusEvent(distracted(300))
	require.True(t, ok)
	assert.Equal(t, 3, msg.Level)
	assert.Equal(t, "AURA: Let's refocus", msg.Title)
}

func TestRefocusQuietWindow(t *testing.T) {
	sender := &fakeSender{}
	m := NewManager(DefaultSettings(), sender)

	m.OnFocusEvent(Event{At: at(0), Focused: true})
	m.OnFocusEvent(distracted(5))
	_, ok := m.OnFocusEvent(distracted(19))
	assert.False(t, ok, "inside the quiet window")

	// The distraction clock starts once the quiet window is over.
	_, ok = m.OnFocusEvent(distracted(20))
	assert.False(t, ok)
	_, ok = m.OnFocusEvent(distracted(30))
	assert.True(t, ok)
}

func TestCategoryChangeRestartsDelay(t *testing.T) {
	m := NewManager(DefaultSettings(), &fakeSender{})

	m.OnFocusEvent(distracted(0))
	e := distracted(9)
	e.Category = "social"
	m.OnFocusEvent(e)

	e.At = at(15)
	_, ok := m.OnFocusEvent(e)
	assert.False(t, ok)
	e.At = at(19)
	msg, ok := m.OnFocusEvent(e)
	require.True(t, ok)
	assert.Equal(t, "AURA: Nudge to refocus", msg.Title, "social is medium severity")
}

func TestIdleAndLockedNeverNudge(t *testing.T) {
	sender := &fakeSender{}
	m := NewManager(DefaultSettings(), sender)

	for _, category := range []string{"idle", "locked"} {
		for sec := 0; sec <= 60; sec += 5 {
			_, ok := m.OnFocusEvent(Event{At: at(sec), Category: category})
			assert.False(t, ok, "%s at %ds", category, sec)
		}
	}
	assert.Zero(t, sender.count())

	m.OnFocusEvent(distracted(100))
	m.OnFocusEvent(Event{At: at(105), Category: "idle"})
	_, ok := m.OnFocusEvent(distracted(110))
	assert.False(t, ok, "coming back from idle restarts the delay")
	_, ok = m.OnFocusEvent(distracted(120))
	assert.True(t, ok)
}

func TestBreakSuppression(t *testing.T) {
	sender := &fakeSender{}
	m := NewManager(DefaultSettings(), sender)
	m.SetBreak(at(100))

	m.OnFocusEvent(distracted(0))
	_, ok := m.OnFocusEvent(distracted(50))
	assert.False(t, ok)

	m.SetBreak(time.Time{})
	m.OnFocusEvent(distracted(60))
	_, ok = m.OnFocusEvent(distracted(70))
	assert.True(t, ok)

	cfg := DefaultSettings()
	cfg.SuppressDuringBreak = false
	m = NewManager(cfg, sender)
	m.SetBreak(at(100))
	m.OnFocusEvent(distracted(0))
	_, ok = m.OnFocusEvent(distracted(10))
	assert.True(t, ok)
}

func TestDisabledAndSendErrors(t *testing.T) {
	sender := &fakeSender{err: errors.New("no dbus")}
	cfg := DefaultSettings()
	cfg.Enabled = false
	m := NewManager(cfg, sender)

	m.OnFocusEvent(distracted(0))
	_, ok := m.OnFocusEvent(distracted(30))
	assert.False(t, ok)
	m.Notify("Work complete", "Time for a short break!")
	assert.Zero(t, sender.count())

	cfg.Enabled = true
	m.SetSettings(cfg)
	assert.NotPanics(t, func() { m.Notify("Work complete", "Time for a short break!") })
	assert.Equal(t, 1, sender.count())
}

func TestCompose(t *testing.T) {
	msg := Compose("youtube_shorts", "", "", 5*time.Second, 0)
	assert.Equal(t, "AURA: Let's refocus", msg.Title)
	assert.Contains(t, msg.Body, "You drifted to youtube shorts in this app.")

	msg = Compose("", "", "chat", 61*time.Second, 1)
	assert.Equal(t, "AURA: Gentle reminder", msg.Title)
	assert.Contains(t, msg.Body, "distraction in chat.\n61s away.")
}

func TestSeverity(t *testing.T) {
	assert.Equal(t, 3, Severity("Gaming"))
	assert.Equal(t, 2, Severity("social"))
	assert.Equal(t, 1, Severity("news"))
	assert.Equal(t, 1, Severity(""))
}
