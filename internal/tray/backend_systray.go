//go:build cgo || windows

package tray

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/energye/systray"
)

type systrayBackend struct{}

// NewBackend returns the native tray backed by energye/systray.
func NewBackend() Backend {
	return systrayBackend{}
}

// Available is false on a Linux session without a display or session bus;
// systray would otherwise block forever waiting for a watcher.
func (systrayBackend) Available() bool {
	if runtime.GOOS != "linux" && runtime.GOOS != "freebsd" {
		return true
	}
	hasDisplay := os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
	return hasDisplay && hasSessionBus()
}

func hasSessionBus() bool {
	if os.Getenv("DBUS_SESSION_BUS_ADDRESS") != "" {
		return true
	}
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		_, err := os.Stat(filepath.Join(dir, "bus"))
		return err == nil
	}
	return false
}

func (systrayBackend) Run(onReady, onExit func()) {
	systray.Run(func() {
		// Right-click → explicitly show the context menu
		systray.SetOnRClick(func(menu systray.IMenu) {
			menu.ShowMenu()
		})
		onReady()
	}, onExit)
}

func (systrayBackend) Quit()                     { systray.Quit() }
func (systrayBackend) SetIcon(data []byte)       { systray.SetIcon(data) }
func (systrayBackend) SetTitle(title string)     { systray.SetTitle(title) }
func (systrayBackend) SetTooltip(tooltip string) { systray.SetTooltip(tooltip) }
func (systrayBackend) AddSeparator()             { systray.AddSeparator() }

func (systrayBackend) SetOnClick(fn func()) {
	systray.SetOnClick(func(menu systray.IMenu) { fn() })
	systray.SetOnDClick(func(menu systray.IMenu) { fn() })
}

func (systrayBackend) AddMenuItem(title, tooltip string) MenuItem {
	return systrayItem{systray.AddMenuItem(title, tooltip)}
}

type systrayItem struct {
	item *systray.MenuItem
}

func (i systrayItem) SetTitle(title string) { i.item.SetTitle(title) }
func (i systrayItem) Click(fn func())       { i.item.Click(fn) }
func (i systrayItem) Enable()               { i.item.Enable() }
func (i systrayItem) Disable()              { i.item.Disable() }
