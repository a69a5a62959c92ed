//go:build windows

package singleinstance

import (
	"errors"

	"golang.org/x/sys/windows"
)

type Lock struct {
	handle windows.Handle
}

func mutexName() string { return `Local\` + Name + `_SingleInstance` }
func eventName() string { return `Local\` + Name + `_Show` }

func Acquire() (*Lock, error) {
	name, err := windows.UTF16PtrFromString(mutexName())
	if err != nil {
		return nil, err
	}
	handle, err := windows.CreateMutex(nil, false, name)
	if errors.Is(err, windows.ERROR_ALREADY_EXISTS) {
		if handle != 0 {
			windows.CloseHandle(handle)
		}
		return nil, ErrAlreadyRunning
	}
	if err != nil {
		return nil, err
	}
	return &Lock{handle: handle}, nil
}

func (l *Lock) Release() {
	if l.handle != 0 {
		windows.CloseHandle(l.handle)
		l.handle = 0
	}
}

// SignalExisting pulses the running instance's show event.
func SignalExisting() error {
	name, err := windows.UTF16PtrFromString(eventName())
	if err != nil {
		return err
	}
	h, err := windows.OpenEvent(windows.EVENT_MODIFY_STATE, false, name)
	if err != nil {
		return err
	}
	defer windows.CloseHandle(h)
	return windows.SetEvent(h)
}

// ListenForShowSignal calls fn each time another launch signals this one.
// The returned func stops listening.
func ListenForShowSignal(fn func()) func() {
	name, err := windows.UTF16PtrFromString(eventName())
	if err != nil {
		return func() {}
	}
	show, err := windows.CreateEvent(nil, 0, 0, name)
	if err != nil {
		return func() {}
	}
	stop, err := windows.CreateEvent(nil, 1, 0, nil)
	if err != nil {
		windows.CloseHandle(show)
		return func() {}
	}

	go func() {
		defer windows.CloseHandle(show)
		defer windows.CloseHandle(stop)
		handles := []windows.Handle{show, stop}
		for {
			ev, err := windows.WaitForMultipleObjects(handles, false, windows.INFINITE)
			if err != nil || ev != windows.WAIT_OBJECT_0 {
				return
			}
			fn()
		}
	}()
	return func() { windows.SetEvent(stop) }
}
