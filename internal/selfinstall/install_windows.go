//go:build windows

package selfinstall

import (
	"os"
	"path/filepath"
)

func InstalledExePath() string {
	localAppData := os.Getenv("LOCALAPPDATA")
	if localAppData == "" {
		return ""
	}
	return filepath.Join(localAppData, "AURA", "aura.exe")
}

func copySelf(currentExe, targetExe string) error {
	return copyFile(currentExe, targetExe)
}

// CreateLauncher is a no-op; the autostart Run key is the Windows entry point.
func CreateLauncher(exePath string, icon []byte) (string, error) {
	return "", nil
}
