package tracker

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Source modes.
const (
	ModeAuto     = "auto"
	ModeSystem   = "system"
	ModeSimulate = "simulate"
)

// ErrNoWindowReader is returned when the desktop session offers no way to
// read the foreground window.
var ErrNoWindowReader = errors.New("no foreground window reader available")

// Window is one reading of the foreground window and input idleness.
type Window struct {
	Title string
	App   string
	Idle  time.Duration
}

// WindowReader reads the foreground window of the desktop session.
type WindowReader interface {
	Foreground() (Window, error)
}

// Swapped in tests.
var newWindowReader = platformReader

// lockedIdle is how long an empty foreground must be idle to count as a
// locked screen.
const lockedIdle = 5 * time.Second

// SystemSource samples the real foreground window and classifies it.
type SystemSource struct {
	reader     WindowReader
	classifier *Classifier
	// IdleTimeout marks the user as away once input has been idle this long.
	IdleTimeout time.Duration
}

func NewSystemSource(reader WindowReader, classifier *Classifier, idleTimeout time.Duration) *SystemSource {
	if classifier == nil {
		classifier = NewClassifier(DefaultClassifierConfig())
	}
	return &SystemSource{reader: reader, classifier: classifier, IdleTimeout: idleTimeout}
}

func (s *SystemSource) Sample(now time.Time) (Activity, error) {
	w, err := s.reader.Foreground()
	if err != nil {
		return Activity{}, err
	}
	app := normalizeApp(w.App)

	if w.Title == "" && app == "" && w.Idle > lockedIdle {
		return Activity{Category: CategoryLocked}, nil
	}
	if s.IdleTimeout > 0 && w.Idle >= s.IdleTimeout {
		return Activity{App: app, Title: w.Title, Category: CategoryIdle}, nil
	}

	c := s.classifier.Observe(w.Title, app, now)
	return Activity{
		Focused:  !c.Distracted,
		App:      app,
		Title:    w.Title,
		Category: c.Category,
	}, nil
}

// SourceConfig selects and tunes the activity source.
type SourceConfig struct {
	Mode        string
	IdleTimeout time.Duration
	Classifier  ClassifierConfig
}

func DefaultSourceConfig() SourceConfig {
	return SourceConfig{
		Mode:        ModeAuto,
		IdleTimeout: 5 * time.Minute,
		Classifier:  DefaultClassifierConfig(),
	}
}

// NewSource builds the source for cfg.Mode and returns the mode actually in
// use. Auto mode falls back to the simulator when no window reader is
// available.
func NewSource(cfg SourceConfig) (Source, string, error) {
	switch cfg.Mode {
	case ModeSimulate:
		return NewSimulator(nil), ModeSimulate, nil
	case ModeSystem, ModeAuto, "":
		reader, err := newWindowReader()
		if err != nil {
			if cfg.Mode == ModeSystem {
				return nil, "", fmt.Errorf("system activity source: %w", err)
			}
			log.Warn().Err(err).Msg("Foreground window unavailable, simulating activity")
			return NewSimulator(nil), ModeSimulate, nil
		}
		return NewSystemSource(reader, NewClassifier(cfg.Classifier), cfg.IdleTimeout), ModeSystem, nil
	default:
		return nil, "", fmt.Errorf("unknown tracker mode %q", cfg.Mode)
	}
}
