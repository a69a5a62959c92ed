package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"aura-app/internal/cli"
	"aura-app/internal/config"
	"aura-app/internal/logging"
	"aura-app/internal/singleinstance"
)

var version = "1.0.0"

func main() {
	// Extract --silent flag before routing to CLI or tray
	silent := false
	filteredArgs := []string{os.Args[0]}
	for _, arg := range os.Args[1:] {
		if arg == "--silent" {
			silent = true
		} else {
			filteredArgs = append(filteredArgs, arg)
		}
	}
	os.Args = filteredArgs

	if len(os.Args) > 1 {
		runCLI()
	} else {
		runTray(silent)
	}
}

func runCLI() {
	cfg := config.Get()
	off := false
	opts := config.LogOptions(cfg, config.GetConfigDir())
	opts.Console = &off
	if closer, err := logging.Setup(opts); err == nil {
		defer closer.Close()
	}

	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runTray(silent bool) {
	lock, err := singleinstance.Acquire()
	if errors.Is(err, singleinstance.ErrAlreadyRunning) {
		// Ask the running instance to show its stats instead.
		if sigErr := singleinstance.SignalExisting(); sigErr != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer lock.Release()

	cfg := config.Get()
	dir := config.GetConfigDir()
	closer, err := logging.Setup(config.LogOptions(cfg, dir))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := NewApp(cfg, dir, nil, nil)
	app.version = version
	app.silentMode = silent

	stopListening := listenShowSignal(app)
	defer stopListening()

	if err := app.Run(ctx); err != nil {
		log.Error().Err(err).Msg("AURA exited with error")
		closer.Close()
		lock.Release()
		os.Exit(1)
	}
}
