package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"aura-app/internal/config"
	"aura-app/internal/focustimer"
	"aura-app/internal/notify"
	"aura-app/internal/report"
	"aura-app/internal/session"
	"aura-app/internal/store"
	"aura-app/internal/tracker"
	"aura-app/internal/tray"
)

// App hosts the tray and wires tracking, the focus timer, notifications and
// history together.
type App struct {
	version    string
	silentMode bool
	cfg        *viper.Viper
	dataDir    string

	tray    *tray.Manager
	tracker *tracker.Tracker
	timer   *focustimer.Timer
	notify  *notify.Manager

	// openReport is swapped in tests.
	openReport func(dir string, p report.Page) (string, error)

	mu           sync.Mutex
	pomodoroBase int
	quit         chan struct{}
	quitOnce     sync.Once

	// sourceMode is fixed at construction. historyEnabled follows reloads.
	sourceMode     string
	settingsMu     sync.RWMutex
	historyEnabled bool

	reportMu   sync.Mutex
	reportStop chan struct{}
	reportDone chan struct{}
}

// liveReportInterval is how often the open report is rewritten.
var liveReportInterval = 5 * time.Second

// NewApp builds the host. A nil backend uses the native tray and a nil
// sender posts desktop notifications.
func NewApp(cfg *viper.Viper, dataDir string, backend tray.Backend, sender notify.Sender) *App {
	a := &App{
		cfg:        cfg,
		dataDir:    dataDir,
		openReport: report.Open,
		quit:       make(chan struct{}),
	}

	a.notify = notify.NewManager(config.NotifySettings(cfg), sender)

	src, mode, err := tracker.NewSource(config.TrackerConfig(cfg))
	if err != nil {
		log.Error().Err(err).Msg("Activity source unavailable, simulating activity")
		src, mode = tracker.NewSimulator(nil), tracker.ModeSimulate
	}
	a.sourceMode = mode
	a.historyEnabled = config.Bool(cfg, "history.enabled")

	a.tracker = tracker.New(src, config.PollInterval(cfg), nil)
	a.tracker.OnStatusChange = a.onStatusChange
	a.tracker.OnStatsUpdate = a.onStatsUpdate
	a.tracker.OnSample = a.onSample

	a.timer = focustimer.New(config.TimerConfig(cfg), nil)
	a.timer.Notify = a.notify.Notify
	a.timer.OnBreakStart = a.onBreakStart
	a.timer.OnBreakEnd = a.onBreakEnd

	a.tray = tray.NewManager(config.TrayConfig(cfg), tray.Callbacks{
		OnToggleWindow:  a.ToggleReport,
		OnStartTracking: a.startTrackingLogged,
		OnStopTracking:  a.stopTrackingLogged,
		OnShowStats:     a.ShowStats,
		OnExit:          a.Quit,
	}, backend)

	return a
}

// Run starts the tray and blocks until ctx is done or Exit is chosen.
func (a *App) Run(ctx context.Context) error {
	log.Info().Str("version", a.version).Str("source", a.sourceMode).Msg("AURA starting")

	trayErr := a.tray.Start()
	if trayErr != nil && !errors.Is(trayErr, tray.ErrUnavailable) {
		return fmt.Errorf("start tray: %w", trayErr)
	}

	if stopWatch, err := config.Watch(a.cfg, a.onConfigChange); err != nil {
		log.Warn().Err(err).Msg("Config changes will not be picked up")
	} else {
		defer stopWatch()
	}

	if config.Bool(a.cfg, "tracker.auto_start") || trayErr != nil {
		if err := a.StartTracking(); err != nil {
			log.Warn().Err(err).Msg("Failed to start tracking")
		}
	}
	if !a.silentMode {
		a.notify.Notify("AURA", "Focus tracking is running in the system tray.")
	}

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutdown requested")
	case <-a.quit:
		log.Info().Msg("Exit chosen from tray")
	}

	a.shutdown()
	return nil
}

// Quit ends Run. Safe to call more than once and from tray callbacks.
func (a *App) Quit() {
	a.quitOnce.Do(func() { close(a.quit) })
}

func (a *App) shutdown() {
	if a.tracker.IsRunning() {
		if err := a.StopTracking(); err != nil {
			log.Warn().Err(err).Msg("Failed to stop tracking on shutdown")
		}
	}
	a.closeLiveReport()
	a.timer.Close()
	if err := a.tray.Stop(); err != nil {
		log.Warn().Err(err).Msg("Failed to stop tray")
	}
	log.Info().Msg("AURA stopped")
}

// StartTracking begins a session and the first work period.
func (a *App) StartTracking() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.tracker.Start(); err != nil {
		return err
	}
	a.tray.SetTracking(true)
	a.tray.UpdateSessionStats(0, 0)
	a.pomodoroBase = a.timer.Completed()
	a.timer.StartWork(0)
	return nil
}

// StopTracking ends the session and records it in history.
func (a *App) StopTracking() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.timer.Reset()
	summary, err := a.tracker.Stop()
	if err != nil {
		return err
	}
	a.tray.SetTracking(false)
	a.tray.UpdateSessionStats(summary.Total(), summary.Focused)

	a.settingsMu.RLock()
	save := a.historyEnabled
	a.settingsMu.RUnlock()
	if !save || summary.Total() <= 0 {
		return nil
	}
	rec := store.FromSummary(summary, time.Now())
	rec.Mode = a.sourceMode
	rec.PomodorosDone = a.timer.Completed() - a.pomodoroBase
	if _, err := a.saveRecord(rec); err != nil {
		return err
	}
	return nil
}

func (a *App) saveRecord(r store.Record) (store.Record, error) {
	// Opened per save so the CLI can read history while the tray runs.
	st, err := store.Open(a.dataDir)
	if err != nil {
		return store.Record{}, err
	}
	defer st.Close()

	saved, err := st.Save(r)
	if err != nil {
		return store.Record{}, err
	}
	log.Info().Str("id", saved.ID).Dur("total", saved.Total()).Msg("Session saved to history")
	return saved, nil
}

func (a *App) startTrackingLogged() {
	if err := a.StartTracking(); err != nil {
		log.Warn().Err(err).Msg("Failed to start tracking")
	}
}

func (a *App) stopTrackingLogged() {
	if err := a.StopTracking(); err != nil {
		log.Warn().Err(err).Msg("Failed to stop tracking")
	}
}

// ShowStats posts the current session stats as a notification.
func (a *App) ShowStats() {
	snap := a.tray.Snapshot()
	msg := tray.StatsText(snap.Stats)
	if snap.Stats.Total > 0 {
		msg = fmt.Sprintf("%s\n%s focused of %s", msg,
			tray.FormatDuration(snap.Stats.Focused), tray.FormatDuration(snap.Stats.Total))
	}
	state, remaining, _ := a.timer.State()
	if state == focustimer.Working || state == focustimer.Break {
		msg = fmt.Sprintf("%s\n%s: %s left", msg, state, tray.FormatDuration(remaining))
	}
	a.notify.Notify("AURA: "+tray.StatusText(snap), msg)
}

// ToggleReport opens the history report with the live session and keeps
// it refreshing. A second call stops the refresh and leaves a final copy.
func (a *App) ToggleReport() {
	a.reportMu.Lock()
	defer a.reportMu.Unlock()

	if a.reportStop != nil {
		a.stopLiveReportLocked()
		a.tray.SetWindowVisible(false)
		log.Info().Msg("Report closed")
		return
	}

	path, err := a.openReport(a.dataDir, a.buildReport(refreshSeconds()))
	if err != nil {
		log.Warn().Err(err).Msg("Failed to open report")
		return
	}
	a.reportStop = make(chan struct{})
	a.reportDone = make(chan struct{})
	go a.refreshReport(a.reportStop, a.reportDone)
	a.tray.SetWindowVisible(true)
	log.Info().Str("path", path).Msg("Report opened")
}

func (a *App) closeLiveReport() {
	a.reportMu.Lock()
	defer a.reportMu.Unlock()
	if a.reportStop != nil {
		a.stopLiveReportLocked()
		a.tray.SetWindowVisible(false)
	}
}

// stopLiveReportLocked ends the refresh loop and rewrites the page without
// the refresh tag so the browser stops reloading it.
func (a *App) stopLiveReportLocked() {
	close(a.reportStop)
	<-a.reportDone
	a.reportStop, a.reportDone = nil, nil
	if _, err := report.Write(a.dataDir, a.buildReport(0)); err != nil {
		log.Warn().Err(err).Msg("Failed to write report")
	}
}

func (a *App) refreshReport(stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(liveReportInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if _, err := report.Write(a.dataDir, a.buildReport(refreshSeconds())); err != nil {
				log.Warn().Err(err).Msg("Failed to refresh report")
			}
		}
	}
}

func refreshSeconds() int {
	if s := int(liveReportInterval / time.Second); s > 1 {
		return s
	}
	return 1
}

// buildReport assembles the page from history plus the session in
// progress.
func (a *App) buildReport(refresh int) report.Page {
	var history []store.Record
	if st, err := store.Open(a.dataDir); err != nil {
		log.Warn().Err(err).Msg("Failed to open history")
	} else {
		history, err = st.List(50)
		st.Close()
		if err != nil {
			log.Warn().Err(err).Msg("Failed to read history")
		}
	}

	var live *store.Record
	if a.tracker.IsRunning() {
		rec := store.FromSummary(a.tracker.Summary(), time.Now())
		rec.Mode = a.sourceMode
		live = &rec
	}

	p := report.Build(history, live, time.Now())
	p.Refresh = refresh
	return p
}

func (a *App) onStatusChange(s tray.Status, app string) {
	a.tray.SetCurrentApp(app)
	a.tray.UpdateStatus(s)
}

func (a *App) onStatsUpdate(sum session.Summary) {
	a.tray.UpdateSessionStats(sum.Total(), sum.Focused)
}

func (a *App) onSample(act tracker.Activity, at time.Time) {
	a.notify.OnFocusEvent(notify.Event{
		At:       at,
		Focused:  act.Focused,
		Category: act.Category,
		App:      act.App,
		Title:    act.Title,
	})
}

func (a *App) onBreakStart(d time.Duration) {
	a.tracker.SetBreak(true)
	a.notify.SetBreak(time.Now().Add(d))
	a.tray.UpdateStatus(tray.StatusBreak)
}

func (a *App) onBreakEnd() {
	a.tracker.SetBreak(false)
	a.notify.SetBreak(time.Time{})
	// The next sample reports the real status.
	a.tray.UpdateStatus(tray.StatusIdle)
}

func (a *App) onConfigChange(e fsnotify.Event) {
	log.Info().Str("file", e.Name).Msg("Config changed, reloading")
	a.applyConfig()
}

// Reload re-reads the config file and applies it.
func (a *App) Reload() error {
	if err := config.Reload(a.cfg); err != nil {
		return err
	}
	a.applyConfig()
	return nil
}

// applyConfig pushes the settings that can change while running.
func (a *App) applyConfig() {
	a.tray.Reconfigure(config.TrayConfig(a.cfg))
	a.notify.SetSettings(config.NotifySettings(a.cfg))

	history := config.Bool(a.cfg, "history.enabled")
	a.settingsMu.Lock()
	a.historyEnabled = history
	a.settingsMu.Unlock()
}
