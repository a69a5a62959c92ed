//go:build linux

package tracker

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog/log"
)

// x11Reader reads the active window through xdotool and idle time from the
// GNOME idle monitor on the session bus.
type x11Reader struct {
	run  func(name string, args ...string) (string, error)
	proc string
	bus  *dbus.Conn
}

func platformReader() (WindowReader, error) {
	if os.Getenv("DISPLAY") == "" {
		return nil, fmt.Errorf("%w: DISPLAY not set", ErrNoWindowReader)
	}
	if _, err := exec.LookPath("xdotool"); err != nil {
		return nil, fmt.Errorf("%w: xdotool not installed", ErrNoWindowReader)
	}

	p := &x11Reader{run: runCommand, proc: "/proc"}
	conn, err := dbus.SessionBus()
	if err != nil {
		log.Debug().Err(err).Msg("Session bus unavailable, idle time not tracked")
	} else {
		p.bus = conn
	}
	return p, nil
}

func (p *x11Reader) Foreground() (Window, error) {
	title, err := p.run("xdotool", "getactivewindow", "getwindowname")
	if err != nil {
		return Window{}, fmt.Errorf("read active window: %w", err)
	}
	w := Window{Title: title, Idle: p.idle()}

	out, err := p.run("xdotool", "getactivewindow", "getwindowpid")
	if err != nil {
		return w, nil
	}
	pid, err := strconv.Atoi(out)
	if err != nil || pid <= 0 {
		return w, nil
	}
	if comm, err := os.ReadFile(filepath.Join(p.proc, strconv.Itoa(pid), "comm")); err == nil {
		w.App = strings.TrimSpace(string(comm))
	}
	return w, nil
}

func (p *x11Reader) idle() time.Duration {
	if p.bus == nil {
		return 0
	}
	var ms uint64
	err := p.bus.Object("org.gnome.Mutter.IdleMonitor", "/org/gnome/Mutter/IdleMonitor/Core").
		Call("org.gnome.Mutter.IdleMonitor.GetIdletime", 0).
		Store(&ms)
	if err != nil {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}
