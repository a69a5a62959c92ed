//go:build darwin

package tracker

import (
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const frontmostScript = `tell application "System Events"
	set p to first application process whose frontmost is true
	set n to name of p
	set t to ""
	try
		set t to name of front window of p
	end try
end tell
return n & linefeed & t`

var hidIdlePattern = regexp.MustCompile(`"HIDIdleTime" = (\d+)`)

// scriptReader asks System Events for the frontmost app and reads idle time
// from the HID system registry entry.
type scriptReader struct {
	run func(name string, args ...string) (string, error)
}

func platformReader() (WindowReader, error) {
	if _, err := exec.LookPath("osascript"); err != nil {
		return nil, fmt.Errorf("%w: osascript not found", ErrNoWindowReader)
	}
	return &scriptReader{run: runCommand}, nil
}

func (p *scriptReader) Foreground() (Window, error) {
	out, err := p.run("osascript", "-e", frontmostScript)
	if err != nil {
		return Window{}, fmt.Errorf("read frontmost app: %w", err)
	}
	app, title, _ := strings.Cut(out, "\n")
	return Window{App: strings.TrimSpace(app), Title: strings.TrimSpace(title), Idle: p.idle()}, nil
}

func (p *scriptReader) idle() time.Duration {
	out, err := p.run("ioreg", "-c", "IOHIDSystem", "-d", "4")
	if err != nil {
		return 0
	}
	m := hidIdlePattern.FindStringSubmatch(out)
	if m == nil {
		return 0
	}
	ns, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0
	}
	return time.Duration(ns)
}
