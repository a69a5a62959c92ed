//go:build darwin

package selfinstall

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

func InstalledExePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	currentExe, err := os.Executable()
	if err != nil {
		return ""
	}
	currentExe, _ = filepath.EvalSymlinks(currentExe)

	// If running inside a .app bundle, install entire .app to ~/Applications/
	if idx := strings.LastIndex(currentExe, ".app/Contents/MacOS/"); idx >= 0 {
		appName := filepath.Base(currentExe[:idx+4]) // "AURA.app"
		binaryName := filepath.Base(currentExe)
		return filepath.Join(home, "Applications", appName, "Contents", "MacOS", binaryName)
	}

	// Standalone binary
	return filepath.Join(home, ".local", "bin", "aura")
}

func copySelf(currentExe, targetExe string) error {
	// Inside a .app bundle the whole bundle is copied
	if idx := strings.LastIndex(currentExe, ".app/Contents/MacOS/"); idx >= 0 {
		srcApp := currentExe[:idx+4] // source .app directory
		dstApp := targetExe
		if idx2 := strings.LastIndex(dstApp, ".app/Contents/MacOS/"); idx2 >= 0 {
			dstApp = dstApp[:idx2+4] // target .app directory
		}

		if err := os.MkdirAll(filepath.Dir(dstApp), 0755); err != nil {
			return err
		}
		os.RemoveAll(dstApp)

		// Use cp -a to preserve the bundle structure
		return exec.Command("cp", "-a", srcApp, dstApp).Run()
	}

	// Standalone binary
	return copyFile(currentExe, targetExe)
}

// CreateLauncher is a no-op: app bundles carry their own icon and
// standalone binaries have no launcher.
func CreateLauncher(exePath string, icon []byte) (string, error) {
	return "", nil
}
