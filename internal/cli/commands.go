package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"aura-app/internal/autostart"
	"aura-app/internal/config"
	"aura-app/internal/report"
	"aura-app/internal/selfinstall"
	"aura-app/internal/store"
	"aura-app/internal/tracker"
	"aura-app/internal/tray"
)

var appVersion = "1.0.0"

// Swapped in tests.
var (
	loadConfig     = config.Get
	dataDir        = config.GetConfigDir
	openReport     = report.Open
	trayAvailable  = func() bool { return tray.NewBackend().Available() }
	installBinary  = selfinstall.Install
	createLauncher = selfinstall.CreateLauncher
)

func SetVersion(v string) {
	appVersion = v
}

func Execute() error {
	return NewRootCmd().Execute()
}

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "aura",
		Short:         "AURA - focus tracker in your system tray",
		Long:          "AURA tracks focused and distracted time, shows it in the system tray and keeps a history of sessions.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newTrackCmd(),
		newStatusCmd(),
		newHistoryCmd(),
		newReportCmd(),
		newIconsCmd(),
		newConfigCmd(),
		newAutostartCmd(),
		newInstallCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

// newTrackCmd runs a tracking session without the tray until interrupted.
func newTrackCmd() *cobra.Command {
	var (
		duration time.Duration
		interval time.Duration
		noSave   bool
		mode     string
	)

	cmd := &cobra.Command{
		Use:   "track",
		Short: "Track a focus session in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			if interval <= 0 {
				interval = config.PollInterval(cfg)
			}
			srcCfg := config.TrackerConfig(cfg)
			if mode != "" {
				srcCfg.Mode = mode
			}
			src, used, err := tracker.NewSource(srcCfg)
			if err != nil {
				return err
			}

			tr := tracker.New(src, interval, nil)
			out := cmd.OutOrStdout()
			tr.OnStatusChange = func(s tray.Status, app string) {
				fmt.Fprintf(out, "[%s] %-18s %s\n", time.Now().Format("15:04:05"),
					tray.StatusText(tray.State{Status: s, Tracking: true}), app)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if duration > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, duration)
				defer cancel()
			}

			if err := tr.Start(); err != nil {
				return err
			}
			fmt.Fprintf(out, "Tracking started (%s). Press Ctrl+C to stop.\n", used)
			<-ctx.Done()

			summary, err := tr.Stop()
			if err != nil {
				return err
			}
			stats := tray.Stats{Total: summary.Total(), Focused: summary.Focused}.Normalize()
			fmt.Fprintf(out, "\nSession: %s focused of %s (%d%%)\n",
				tray.FormatDuration(stats.Focused), tray.FormatDuration(stats.Total), stats.FocusPercent())

			if noSave || !config.Bool(cfg, "history.enabled") {
				return nil
			}
			rec := store.FromSummary(summary, time.Now())
			rec.Mode = used
			rec, err = saveSession(rec)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Saved as %s\n", rec.ID)
			return nil
		},
	}

	cmd.Flags().DurationVar(&duration, "duration", 0, "Stop after this long (default: until interrupted)")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Sampling interval (default: tracker.poll_interval)")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Do not write the session to history")
	cmd.Flags().StringVar(&mode, "mode", "", "Activity source: auto, system or simulate (default: tracker.mode)")
	return cmd
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show AURA status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "AURA Status")
			fmt.Fprintln(out, "───────────")
			fmt.Fprintf(out, "Config file:   %s\n", cfg.ConfigFileUsed())
			fmt.Fprintf(out, "Data dir:      %s\n", dataDir())
			fmt.Fprintf(out, "System tray:   %s\n", availability(trayAvailable()))

			enabled, err := autostart.IsEnabled()
			if err != nil {
				fmt.Fprintf(out, "Autostart:     unknown (%v)\n", err)
			} else {
				fmt.Fprintf(out, "Autostart:     %v\n", enabled)
			}

			records, err := listHistory(1)
			if err != nil {
				fmt.Fprintf(out, "History:       unavailable (%v)\n", err)
				return nil
			}
			if len(records) == 0 {
				fmt.Fprintln(out, "Last session:  none")
				return nil
			}
			fmt.Fprintf(out, "Last session:  %s\n", sessionLine(records[0]))
			return nil
		},
	}
}

func newHistoryCmd() *cobra.Command {
	var (
		limit   int
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded sessions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := listHistory(limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if jsonOut {
				if records == nil {
					records = []store.Record{}
				}
				data, err := json.MarshalIndent(records, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
				return nil
			}

			if len(records) == 0 {
				fmt.Fprintln(out, "No sessions recorded")
				return nil
			}
			fmt.Fprintln(out, "Session History")
			fmt.Fprintln(out, "───────────────")
			for _, r := range records {
				fmt.Fprintf(out, "  %s  %s\n", sessionLine(r), r.ID)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of sessions (0 for all)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	return cmd
}

func newReportCmd() *cobra.Command {
	var (
		limit  int
		noOpen bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write the HTML focus report and open it in the browser",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := listHistory(limit)
			if err != nil {
				return err
			}
			page := report.Build(records, nil, time.Now())

			var path string
			if noOpen {
				path, err = report.Write(dataDir(), page)
			} else {
				path, err = openReport(dataDir(), page)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", path)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of sessions to include")
	cmd.Flags().BoolVar(&noOpen, "no-open", false, "Only write the file")
	return cmd
}

func newIconsCmd() *cobra.Command {
	iconsCmd := &cobra.Command{
		Use:   "icons",
		Short: "Work with tray icons",
	}

	exportCmd := &cobra.Command{
		Use:   "export <dir>",
		Short: "Write each status icon as a PNG file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}

			gen := tray.NewIconGenerator(config.TrayConfig(loadConfig()))
			for _, s := range tray.AllStatuses() {
				icon, err := gen.Icon(s)
				if err != nil {
					return err
				}
				path := filepath.Join(dir, s.String()+".png")
				if err := os.WriteFile(path, icon.PNG, 0644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  %-10s %s  %s\n", s, tray.FormatColor(gen.Color(s)), path)
			}
			return nil
		},
	}

	iconsCmd.AddCommand(exportCmd)
	return iconsCmd
}

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	setCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a config value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := config.NormalizeKey(args[0])
			value := args[1]

			if !config.Settable(key) {
				return fmt.Errorf("config key not allowed: %s", args[0])
			}
			if err := config.Validate(key, value); err != nil {
				return err
			}

			cfg := loadConfig()
			cfg.Set(key, value)
			if err := config.Write(cfg); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Config set: %s = %s\n", key, value)
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show all config values",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Configuration")
			fmt.Fprintln(out, "─────────────")
			for _, key := range config.SettableKeys() {
				fmt.Fprintf(out, "%-30s %s\n", key+":", cfg.GetString(key))
			}
			fmt.Fprintf(out, "%-30s %s\n", "config_file:", cfg.ConfigFileUsed())
			return nil
		},
	}

	getCmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Get a config value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			key := config.NormalizeKey(args[0])
			if !cfg.IsSet(key) {
				return fmt.Errorf("unknown config key: %s", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), cfg.GetString(key))
			return nil
		},
	}

	configCmd.AddCommand(setCmd, showCmd, getCmd)
	return configCmd
}

func newAutostartCmd() *cobra.Command {
	autostartCmd := &cobra.Command{
		Use:   "autostart",
		Short: "Launch AURA at login",
	}

	toggle := func(enable bool) func(cmd *cobra.Command, args []string) error {
		return func(cmd *cobra.Command, args []string) error {
			enabled, err := autostart.Toggle(enable)
			if err != nil {
				return fmt.Errorf("failed to update autostart: %w", err)
			}
			cfg := loadConfig()
			cfg.Set("launch_on_startup", enabled)
			if err := config.Write(cfg); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Autostart: %v\n", enabled)
			return nil
		}
	}

	enableCmd := &cobra.Command{
		Use:   "enable",
		Short: "Start AURA when you log in",
		RunE:  toggle(true),
	}
	disableCmd := &cobra.Command{
		Use:   "disable",
		Short: "Do not start AURA at login",
		RunE:  toggle(false),
	}
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether autostart is enabled",
		RunE: func(cmd *cobra.Command, args []string) error {
			enabled, err := autostart.IsEnabled()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Autostart: %v\n", enabled)
			return nil
		},
	}

	autostartCmd.AddCommand(enableCmd, disableCmd, statusCmd)
	return autostartCmd
}

func newInstallCmd() *cobra.Command {
	var noLauncher bool

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Copy AURA to the per-user install location",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			target, err := installBinary()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Installed to %s\n", target)

			if !noLauncher {
				icon, err := tray.NewIconGenerator(config.TrayConfig(loadConfig())).Icon(tray.StatusFocused)
				if err != nil {
					return err
				}
				path, err := createLauncher(target, icon.PNG)
				if err != nil {
					return fmt.Errorf("create launcher: %w", err)
				}
				if path != "" {
					fmt.Fprintf(out, "Launcher:     %s\n", path)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noLauncher, "no-launcher", false, "Skip the applications-menu entry")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "AURA v%s\n", appVersion)
			fmt.Fprintf(cmd.OutOrStdout(), "Platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
			fmt.Fprintf(cmd.OutOrStdout(), "Go:       %s\n", runtime.Version())
			fmt.Fprintf(cmd.OutOrStdout(), "Tray:     %s\n", availability(trayAvailable()))
			return nil
		},
	}
}

func listHistory(limit int) ([]store.Record, error) {
	st, err := store.Open(dataDir())
	if err != nil {
		return nil, err
	}
	defer st.Close()
	return st.List(limit)
}

func saveSession(r store.Record) (store.Record, error) {
	st, err := store.Open(dataDir())
	if err != nil {
		return store.Record{}, err
	}
	defer st.Close()
	return st.Save(r)
}

func sessionLine(r store.Record) string {
	stats := tray.Stats{Total: r.Total(), Focused: r.Focused()}.Normalize()
	line := fmt.Sprintf("%s  %-8s focus %3d%%",
		r.Start.Local().Format("2006-01-02 15:04"), tray.FormatDuration(stats.Total), stats.FocusPercent())
	if app := topApp(r); app != "" {
		line += "  top: " + app
	}
	if r.Mode == tracker.ModeSimulate {
		line += "  (simulated)"
	}
	return line
}

func topApp(r store.Record) string {
	names := make([]string, 0, len(r.Apps))
	for name := range r.Apps {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := r.Apps[names[i]], r.Apps[names[j]]
		ta, tb := a.FocusedSeconds+a.UnfocusedSeconds, b.FocusedSeconds+b.UnfocusedSeconds
		if ta != tb {
			return ta > tb
		}
		return names[i] < names[j]
	})
	if len(names) == 0 {
		return ""
	}
	return names[0]
}

func availability(ok bool) string {
	if ok {
		return "available"
	}
	return "unavailable"
}
