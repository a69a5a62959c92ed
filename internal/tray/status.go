package tray

import (
	"fmt"
	"strings"
)

// Status is the focus state shown by the tray icon.
type Status int

const (
	StatusIdle Status = iota
	StatusFocused
	StatusDistracted
	StatusReading
	StatusBreak
)

var statusNames = [...]string{
	StatusIdle:       "idle",
	StatusFocused:    "focused",
	StatusDistracted: "distracted",
	StatusReading:    "reading",
	StatusBreak:      "break",
}

// AllStatuses lists every status in display order.
func AllStatuses() []Status {
	return []Status{StatusIdle, StatusFocused, StatusDistracted, StatusReading, StatusBreak}
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("status(%d)", int(s))
	}
	return statusNames[s]
}

func (s Status) valid() bool {
	return s >= StatusIdle && s <= StatusBreak
}

func ParseStatus(v string) (Status, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	for i, name := range statusNames {
		if name == v {
			return Status(i), nil
		}
	}
	return StatusIdle, fmt.Errorf("unknown status %q", v)
}
