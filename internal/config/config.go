package config

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"aura-app/internal/focustimer"
	"aura-app/internal/logging"
	"aura-app/internal/notify"
	"aura-app/internal/tracker"
	"aura-app/internal/tray"
)

const dirName = ".aura"

var (
	instance *viper.Viper
	once     sync.Once
	configMu sync.RWMutex
)

// Get returns the process-wide config rooted at GetConfigDir.
func Get() *viper.Viper {
	once.Do(func() {
		instance = Load(GetConfigDir())
	})
	return instance
}

// Load reads config.yaml from dir, writing one with defaults on first run.
func Load(dir string) *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.SetEnvPrefix("AURA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := os.MkdirAll(dir, 0755); err != nil {
		dir = "."
	}
	v.AddConfigPath(dir)
	SetDefaults(v)

	configFile := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if err := v.SafeWriteConfigAs(configFile); err != nil {
			log.Debug().Err(err).Msg("Could not write default config")
		}
	}

	if err := v.ReadInConfig(); err != nil {
		log.Debug().Err(err).Msg("Using default config")
	}
	return v
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "aura.log")
	v.SetDefault("launch_on_startup", false)

	trayCfg := tray.DefaultConfig()
	v.SetDefault("tray.icon_size", trayCfg.IconSize)
	v.SetDefault("tray.icon_padding", trayCfg.IconPadding)
	v.SetDefault("tray.tooltip_template", trayCfg.TooltipTemplate)
	v.SetDefault("tray.refresh_interval", trayCfg.RefreshInterval.String())
	for s, c := range trayCfg.Colors {
		v.SetDefault("tray.color."+s.String(), tray.FormatColor(c))
	}

	srcCfg := tracker.DefaultSourceConfig()
	v.SetDefault("tracker.poll_interval", "1s")
	v.SetDefault("tracker.mode", srcCfg.Mode)
	v.SetDefault("tracker.auto_start", true)
	v.SetDefault("tracker.idle_timeout", srcCfg.IdleTimeout.String())
	v.SetDefault("tracker.whitelist_apps", []string{})
	v.SetDefault("tracker.whitelist_domains", []string{})
	v.SetDefault("tracker.work_domains", []string{})

	v.SetDefault("timer.work_minutes", 25)
	v.SetDefault("timer.break_minutes", 5)
	v.SetDefault("timer.tick", "200ms")

	ns := notify.DefaultSettings()
	v.SetDefault("notify.enabled", ns.Enabled)
	v.SetDefault("notify.distraction_delay", ns.Delay.String())
	v.SetDefault("notify.min_interval", ns.MinInterval.String())
	v.SetDefault("notify.refocus_quiet", ns.RefocusQuiet.String())
	v.SetDefault("notify.suppress_during_break", ns.SuppressDuringBreak)

	v.SetDefault("history.enabled", true)
}

func Save() error {
	return Write(instance)
}

// Write persists v to the file it was loaded from.
func Write(v *viper.Viper) error {
	configMu.Lock()
	defer configMu.Unlock()

	if v == nil {
		return nil
	}
	return v.WriteConfig()
}

// Reload re-reads the config file. Readers going through this package's
// accessors never see the config map while it is being replaced.
func Reload(v *viper.Viper) error {
	configMu.Lock()
	defer configMu.Unlock()
	return v.ReadInConfig()
}

// Bool reads a boolean key under the reload lock.
func Bool(v *viper.Viper, key string) bool {
	configMu.RLock()
	defer configMu.RUnlock()
	return v.GetBool(key)
}

// Watch reloads v whenever its config file changes on disk and then calls
// fn. The returned function stops watching.
func Watch(v *viper.Viper, fn func(fsnotify.Event)) (func(), error) {
	path := v.ConfigFileUsed()
	if path == "" {
		return func() {}, fmt.Errorf("watch config: no config file loaded")
	}
	path = filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return func() {}, fmt.Errorf("failed to create file watcher: %w", err)
	}
	// Editors replace the file on save, so watch the directory.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return func() {}, fmt.Errorf("failed to watch config dir: %w", err)
	}

	stop := make(chan struct{})
	go func() {
		for {
			select {
			case e, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(e.Name) != path || !(e.Has(fsnotify.Write) || e.Has(fsnotify.Create)) {
					continue
				}
				if err := Reload(v); err != nil {
					log.Warn().Err(err).Str("file", e.Name).Msg("Failed to reload config")
					continue
				}
				fn(e)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn().Err(err).Msg("Config watcher error")
			case <-stop:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			watcher.Close()
		})
	}, nil
}

func NormalizeKey(key string) string {
	return strings.ReplaceAll(key, "-", "_")
}

// settableKeys restricts which keys `config set` may modify.
var settableKeys = map[string]bool{
	"log_level":                    true,
	"log_file":                     true,
	"launch_on_startup":            true,
	"tray.icon_size":               true,
	"tray.icon_padding":            true,
	"tray.tooltip_template":        true,
	"tray.refresh_interval":        true,
	"tracker.poll_interval":        true,
	"tracker.mode":                 true,
	"tracker.auto_start":           true,
	"tracker.idle_timeout":         true,
	"timer.work_minutes":           true,
	"timer.break_minutes":          true,
	"timer.tick":                   true,
	"notify.enabled":               true,
	"notify.distraction_delay":     true,
	"notify.min_interval":          true,
	"notify.refocus_quiet":         true,
	"notify.suppress_during_break": true,
	"history.enabled":              true,
}

func init() {
	for _, s := range tray.AllStatuses() {
		settableKeys["tray.color."+s.String()] = true
	}
}

// Settable reports whether key may be changed from the CLI.
func Settable(key string) bool {
	return settableKeys[NormalizeKey(key)]
}

// SettableKeys returns the settable keys in sorted order.
func SettableKeys() []string {
	keys := make([]string, 0, len(settableKeys))
	for k := range settableKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate checks a value before it is written for key.
func Validate(key, value string) error {
	key = NormalizeKey(key)
	switch {
	case strings.HasPrefix(key, "tray.color."):
		_, err := tray.ParseColor(value)
		return err
	case key == "tracker.mode":
		switch value {
		case tracker.ModeAuto, tracker.ModeSystem, tracker.ModeSimulate:
		default:
			return fmt.Errorf("unknown tracker mode %q", value)
		}
	case strings.HasSuffix(key, "_interval"), strings.HasSuffix(key, "_delay"), strings.HasSuffix(key, "_timeout"),
		strings.HasSuffix(key, "_quiet"), key == "timer.tick":
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

func GetConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(homeDir, dirName)
}

// TrayConfig builds the tray settings. Unparseable colors keep their
// defaults.
func TrayConfig(v *viper.Viper) tray.Config {
	configMu.RLock()
	defer configMu.RUnlock()

	cfg := tray.DefaultConfig()
	cfg.IconSize = v.GetInt("tray.icon_size")
	cfg.IconPadding = v.GetInt("tray.icon_padding")
	cfg.TooltipTemplate = v.GetString("tray.tooltip_template")
	cfg.RefreshInterval = v.GetDuration("tray.refresh_interval")

	colors := make(map[tray.Status]color.RGBA, len(cfg.Colors))
	for _, s := range tray.AllStatuses() {
		key := "tray.color." + s.String()
		raw := v.GetString(key)
		if raw == "" {
			continue
		}
		c, err := tray.ParseColor(raw)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Ignoring invalid tray color")
			continue
		}
		colors[s] = c
	}
	cfg.Colors = colors
	return cfg
}

func TimerConfig(v *viper.Viper) focustimer.Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return focustimer.Config{
		WorkDuration:  time.Duration(v.GetFloat64("timer.work_minutes") * float64(time.Minute)),
		BreakDuration: time.Duration(v.GetFloat64("timer.break_minutes") * float64(time.Minute)),
		Tick:          v.GetDuration("timer.tick"),
	}
}

func NotifySettings(v *viper.Viper) notify.Settings {
	configMu.RLock()
	defer configMu.RUnlock()

	s := notify.DefaultSettings()
	s.Enabled = v.GetBool("notify.enabled")
	s.Delay = v.GetDuration("notify.distraction_delay")
	s.MinInterval = v.GetDuration("notify.min_interval")
	s.RefocusQuiet = v.GetDuration("notify.refocus_quiet")
	s.SuppressDuringBreak = v.GetBool("notify.suppress_during_break")
	return s
}

// TrackerConfig builds the activity source settings, including the user's
// whitelists.
func TrackerConfig(v *viper.Viper) tracker.SourceConfig {
	configMu.RLock()
	defer configMu.RUnlock()

	cfg := tracker.DefaultSourceConfig()
	cfg.Mode = v.GetString("tracker.mode")
	cfg.IdleTimeout = v.GetDuration("tracker.idle_timeout")
	cfg.Classifier.WhitelistApps = v.GetStringSlice("tracker.whitelist_apps")
	cfg.Classifier.WhitelistDomains = v.GetStringSlice("tracker.whitelist_domains")
	cfg.Classifier.WorkDomains = v.GetStringSlice("tracker.work_domains")
	return cfg
}

// PollInterval is the tracker sampling interval.
func PollInterval(v *viper.Viper) time.Duration {
	configMu.RLock()
	defer configMu.RUnlock()
	return v.GetDuration("tracker.poll_interval")
}

func LogOptions(v *viper.Viper, dir string) logging.Options {
	configMu.RLock()
	defer configMu.RUnlock()

	opts := logging.DefaultOptions()
	opts.Level = v.GetString("log_level")
	opts.File = v.GetString("log_file")
	opts.Dir = dir
	return opts
}
