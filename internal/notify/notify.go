// Package notify sends desktop notifications for prolonged distraction and
// for focus timer events.
package notify

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gen2brain/beeep"
	"github.com/rs/zerolog/log"
)

// Sender delivers a single desktop notification.
type Sender interface {
	Send(title, message string) error
}

// BeeepSender posts notifications through the platform notification service.
type BeeepSender struct {
	// Icon is an optional path or embedded image passed to beeep.
	Icon any
}

func NewBeeepSender(appName string) *BeeepSender {
	if appName != "" {
		beeep.AppName = appName
	}
	return &BeeepSender{Icon: ""}
}

func (b *BeeepSender) Send(title, message string) error {
	if err := beeep.Notify(title, message, b.Icon); err != nil {
		return fmt.Errorf("desktop notification: %w", err)
	}
	return nil
}

type Settings struct {
	Enabled bool
	// Delay is how long a distraction must last before the first alert.
	Delay time.Duration
	// MinInterval throttles alerts.
	MinInterval time.Duration
	// RefocusQuiet keeps quiet for this long after the user refocuses.
	RefocusQuiet time.Duration
	// Escalation thresholds, ascending. Reaching the n-th raises the level to n.
	Escalation          []time.Duration
	SuppressDuringBreak bool
}

func DefaultSettings() Settings {
	return Settings{
		Enabled:             true,
		Delay:               10 * time.Second,
		MinInterval:         60 * time.Second,
		RefocusQuiet:        20 * time.Second,
		Escalation:          []time.Duration{45 * time.Second, 120 * time.Second, 300 * time.Second},
		SuppressDuringBreak: true,
	}
}

// Event is one focus observation.
type Event struct {
	At       time.Time
	Focused  bool
	Category string
	App      string
	Title    string
}

// Categories reported while the user is away.
const (
	categoryIdle   = "idle"
	categoryLocked = "locked"
)

// Message is a composed notification.
type Message struct {
	Title string
	Body  string
	Level int
}

type Manager struct {
	sender Sender

	mu             sync.Mutex
	cfg            Settings
	breakUntil     time.Time
	lastNotify     time.Time
	lastRefocus    time.Time
	current        string
	currentStarted time.Time
	distracted     bool
}

func NewManager(cfg Settings, sender Sender) *Manager {
	if sender == nil {
		sender = NewBeeepSender("AURA")
	}
	return &Manager{cfg: cfg, sender: sender}
}

func (m *Manager) Settings() Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg
}

func (m *Manager) SetSettings(cfg Settings) {
	m.mu.Lock()
	m.cfg = cfg
	m.mu.Unlock()
}

// SetBreak suppresses distraction alerts until the given time. A zero
// time ends the break.
func (m *Manager) SetBreak(until time.Time) {
	m.mu.Lock()
	m.breakUntil = until
	m.mu.Unlock()
}

// OnFocusEvent records e and sends an alert when the distraction has
// lasted long enough and the throttle allows it. It returns the message
// sent, if any.
func (m *Manager) OnFocusEvent(e Event) (Message, bool) {
	if e.At.IsZero() {
		e.At = time.Now()
	}

	m.mu.Lock()
	msg, ok := m.evaluateLocked(e)
	if ok {
		m.lastNotify = e.At
	}
	m.mu.Unlock()

	if ok {
		m.send(msg.Title, msg.Body)
	}
	return msg, ok
}

func (m *Manager) evaluateLocked(e Event) (Message, bool) {
	if !m.cfg.Enabled {
		return Message{}, false
	}
	if m.cfg.SuppressDuringBreak && e.At.Before(m.breakUntil) {
		return Message{}, false
	}
	if e.Category == categoryIdle || e.Category == categoryLocked {
		// Nobody is at the screen to nudge.
		m.distracted = false
		m.current = ""
		return Message{}, false
	}
	if e.Focused {
		m.distracted = false
		m.current = ""
		m.lastRefocus = e.At
		return Message{}, false
	}
	if !m.lastRefocus.IsZero() && e.At.Sub(m.lastRefocus) < m.cfg.RefocusQuiet {
		return Message{}, false
	}

	category := e.Category
	if category == "" {
		category = "other"
	}
	if !m.distracted || m.current != category {
		m.distracted = true
		m.current = category
		m.currentStarted = e.At
	}

	away := e.At.Sub(m.currentStarted)
	if away < m.cfg.Delay {
		return Message{}, false
	}
	if !m.lastNotify.IsZero() && e.At.Sub(m.lastNotify) < m.cfg.MinInterval {
		return Message{}, false
	}

	level := 0
	for i, threshold := range m.cfg.Escalation {
		if away >= threshold {
			level = i + 1
		}
	}
	return Compose(category, e.Title, e.App, away, level), true
}

// Notify sends a one-off message, such as a timer completion.
func (m *Manager) Notify(title, message string) {
	m.mu.Lock()
	enabled := m.cfg.Enabled
	m.mu.Unlock()
	if !enabled {
		return
	}
	m.send(title, message)
}

func (m *Manager) send(title, message string) {
	if err := m.sender.Send(title, message); err != nil {
		log.Warn().Err(err).Str("title", title).Msg("Failed to send notification")
	}
}

// Severity ranks a distraction category from 1 (low) to 3 (high).
func Severity(category string) int {
	switch strings.ToLower(category) {
	case "youtube_shorts", "gaming":
		return 3
	case "social", "entertainment", "communication_personal":
		return 2
	default:
		return 1
	}
}

// Compose builds the alert text for a distraction that has lasted away.
func Compose(category, title, app string, away time.Duration, level int) Message {
	what := strings.ReplaceAll(category, "_", " ")
	if what == "" {
		what = "distraction"
	}
	where := title
	if where == "" {
		where = app
	}
	if where == "" {
		where = "this app"
	}

	severity := Severity(category)
	msg := Message{Level: level}
	var hint string
	switch {
	case level >= 3 || severity >= 3:
		msg.Title = "AURA: Let's refocus"
		hint = "Quick reset: close the tab, 3 deep breaths, then return to your task."
	case level == 2 || severity == 2:
		msg.Title = "AURA: Nudge to refocus"
		hint = "Try a 2-minute pause, then get back to your main goal."
	default:
		msg.Title = "AURA: Gentle reminder"
		hint = "Small nudge: switch back to your task when ready."
	}
	msg.Body = fmt.Sprintf("You drifted to %s in %s.\n%ds away. %s", what, where, int(away/time.Second), hint)
	return msg
}
