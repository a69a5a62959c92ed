//go:build linux

package selfinstall

import (
	"fmt"
	"os"
	"path/filepath"
)

func InstalledExePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "bin", "aura")
}

func copySelf(currentExe, targetExe string) error {
	return copyFile(currentExe, targetExe)
}

// CreateLauncher installs an applications-menu entry for exePath using
// icon (PNG) as its icon, and returns the .desktop file path.
func CreateLauncher(exePath string, icon []byte) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	share := filepath.Join(home, ".local", "share")

	iconPath := filepath.Join(share, "icons", "hicolor", "64x64", "apps", "aura.png")
	if err := os.MkdirAll(filepath.Dir(iconPath), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(iconPath, icon, 0644); err != nil {
		return "", err
	}

	content := fmt.Sprintf(`[Desktop Entry]
Name=AURA
Comment=Focus tracker in the system tray
Exec="%s"
Icon=%s
Type=Application
Terminal=false
Categories=Utility;
`, exePath, iconPath)

	appsDir := filepath.Join(share, "applications")
	if err := os.MkdirAll(appsDir, 0755); err != nil {
		return "", err
	}
	desktopFile := filepath.Join(appsDir, "aura.desktop")
	if err := os.WriteFile(desktopFile, []byte(content), 0755); err != nil {
		return "", err
	}
	return desktopFile, nil
}
