package tray

// Backend is the platform tray surface. Run blocks on the calling goroutine
// until Quit is called; every other method is safe to call from any goroutine
// once onReady has fired.
type Backend interface {
	// Available reports whether a tray can be shown on this platform.
	Available() bool
	Run(onReady, onExit func())
	Quit()
	SetIcon(data []byte)
	SetTitle(title string)
	SetTooltip(tooltip string)
	// SetOnClick registers the primary (left) click handler. Secondary
	// click always opens the menu.
	SetOnClick(fn func())
	AddMenuItem(title, tooltip string) MenuItem
	AddSeparator()
}

type MenuItem interface {
	SetTitle(title string)
	Click(fn func())
	Enable()
	Disable()
}
