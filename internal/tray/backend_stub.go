//go:build !(cgo || windows)

package tray

// Without cgo there is no native tray on darwin/linux; the manager degrades
// to a no-op.
type stubBackend struct{}

func NewBackend() Backend { return stubBackend{} }

func (stubBackend) Available() bool                     { return false }
func (stubBackend) Run(onReady, onExit func())          {}
func (stubBackend) Quit()                               {}
func (stubBackend) SetIcon(data []byte)                 {}
func (stubBackend) SetTitle(title string)               {}
func (stubBackend) SetTooltip(tooltip string)           {}
func (stubBackend) SetOnClick(fn func())                {}
func (stubBackend) AddMenuItem(string, string) MenuItem { return stubItem{} }
func (stubBackend) AddSeparator()                       {}

type stubItem struct{}

func (stubItem) SetTitle(string) {}
func (stubItem) Click(func())    {}
func (stubItem) Enable()         {}
func (stubItem) Disable()        {}
