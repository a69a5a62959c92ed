//go:build !linux && !darwin && !windows

package autostart

import (
	"fmt"
	"runtime"
)

var errUnsupported = fmt.Errorf("autostart not supported on %s", runtime.GOOS)

func IsEnabled() (bool, error) { return false, nil }

func Enable() error { return errUnsupported }

func Disable() error { return nil }
