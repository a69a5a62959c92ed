//go:build windows

package tracker

import (
	"path/filepath"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procGetWindowTextW   = user32.NewProc("GetWindowTextW")
	procGetLastInputInfo = user32.NewProc("GetLastInputInfo")
	procGetTickCount     = kernel32.NewProc("GetTickCount")
)

type lastInputInfo struct {
	cbSize uint32
	dwTime uint32
}

type win32Reader struct{}

func platformReader() (WindowReader, error) {
	for _, p := range []*windows.LazyProc{procGetWindowTextW, procGetLastInputInfo, procGetTickCount} {
		if err := p.Find(); err != nil {
			return nil, err
		}
	}
	return win32Reader{}, nil
}

func (win32Reader) Foreground() (Window, error) {
	w := Window{Idle: idleTime()}

	hwnd := windows.GetForegroundWindow()
	if hwnd == 0 {
		return w, nil
	}

	buf := make([]uint16, 512)
	n, _, _ := procGetWindowTextW.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	w.Title = windows.UTF16ToString(buf[:n])

	var pid uint32
	if _, err := windows.GetWindowThreadProcessId(hwnd, &pid); err == nil && pid != 0 {
		w.App = processName(pid)
	}
	return w, nil
}

func processName(pid uint32) string {
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, pid)
	if err != nil {
		return ""
	}
	defer windows.CloseHandle(h)

	buf := make([]uint16, windows.MAX_PATH)
	size := uint32(len(buf))
	if err := windows.QueryFullProcessImageName(h, 0, &buf[0], &size); err != nil {
		return ""
	}
	return filepath.Base(windows.UTF16ToString(buf[:size]))
}

func idleTime() time.Duration {
	info := lastInputInfo{cbSize: uint32(unsafe.Sizeof(lastInputInfo{}))}
	if r, _, _ := procGetLastInputInfo.Call(uintptr(unsafe.Pointer(&info))); r == 0 {
		return 0
	}
	tick, _, _ := procGetTickCount.Call()
	// Both are 32-bit millisecond counters; the subtraction survives wraparound.
	return time.Duration(uint32(tick)-info.dwTime) * time.Millisecond
}
