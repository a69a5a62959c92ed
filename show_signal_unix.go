//go:build !windows

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"aura-app/internal/singleinstance"
)

// listenShowSignal shows session stats when a second launch signals us
// (SIGUSR1) and reloads the config on SIGHUP.
func listenShowSignal(app *App) func() {
	stopShow := singleinstance.ListenForShowSignal(app.ShowStats)

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	go func() {
		for range hup {
			if err := app.Reload(); err != nil {
				log.Warn().Err(err).Msg("Failed to reload config")
				continue
			}
			log.Info().Msg("Config reloaded on SIGHUP")
		}
	}()

	return func() {
		stopShow()
		signal.Stop(hup)
		close(hup)
	}
}
