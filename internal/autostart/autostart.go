// Package autostart registers AURA to launch at login. Entries start the
// app with --silent so no startup notification is shown.
package autostart

import (
	"os"

	"aura-app/internal/selfinstall"
)

// Toggle enables or disables autostart and reports the resulting state.
func Toggle(enable bool) (bool, error) {
	var err error
	if enable {
		err = Enable()
	} else {
		err = Disable()
	}
	if err != nil {
		return false, err
	}
	return IsEnabled()
}

// launchTarget is the binary the login entry starts: the installed copy when
// `aura install` has placed one, otherwise the running executable.
func launchTarget() (string, error) {
	if installed := selfinstall.InstalledExePath(); installed != "" {
		if info, err := os.Stat(installed); err == nil && !info.IsDir() {
			return installed, nil
		}
	}
	return os.Executable()
}
