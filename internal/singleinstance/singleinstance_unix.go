//go:build !windows

package singleinstance

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

type Lock struct {
	file *os.File
	path string
}

func lockPath() string {
	return filepath.Join(os.TempDir(), Name+".lock")
}

func Acquire() (*Lock, error) {
	path := lockPath()
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, err
	}

	err = syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
	if err != nil {
		f.Close()
		return nil, ErrAlreadyRunning
	}

	// Write PID so second instance can signal us
	f.Truncate(0)
	f.Seek(0, 0)
	fmt.Fprintf(f, "%d", os.Getpid())
	f.Sync()

	return &Lock{file: f, path: path}, nil
}

func (l *Lock) Release() {
	if l.file != nil {
		syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
		l.file.Close()
		os.Remove(l.path)
		l.file = nil
	}
}

// SignalExisting sends SIGUSR1 to the running instance.
func SignalExisting() error {
	data, err := os.ReadFile(lockPath())
	if err != nil {
		return fmt.Errorf("cannot read lock file: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return fmt.Errorf("invalid PID in lock file: %w", err)
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return proc.Signal(syscall.SIGUSR1)
}

// ListenForShowSignal calls fn each time another launch signals this one.
// The returned func stops listening.
func ListenForShowSignal(fn func()) func() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGUSR1)
	go func() {
		for range ch {
			fn()
		}
	}()
	return func() {
		signal.Stop(ch)
		close(ch)
	}
}
