//go:build windows

package main

import "aura-app/internal/singleinstance"

func listenShowSignal(app *App) func() {
	return singleinstance.ListenForShowSignal(app.ShowStats)
}
