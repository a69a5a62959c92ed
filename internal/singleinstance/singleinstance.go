// Package singleinstance keeps one AURA process per user session. A second
// launch asks the running instance to show its session stats.
package singleinstance

import "errors"

var ErrAlreadyRunning = errors.New("AURA is already running")

// Name identifies the lock; tests override it.
var Name = "aura"
