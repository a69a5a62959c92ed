//go:build !linux && !darwin && !windows

package selfinstall

import "errors"

func InstalledExePath() string { return "" }

func copySelf(currentExe, targetExe string) error {
	return errors.New("install not supported on this platform")
}

func CreateLauncher(exePath string, icon []byte) (string, error) {
	return "", nil
}
