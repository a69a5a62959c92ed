package tray

import (
	"sync"
)

type fakeItem struct {
	mu      sync.Mutex
	title   string
	enabled bool
	click   func()
}

func (i *fakeItem) SetTitle(title string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.title = title
}

func (i *fakeItem) Click(fn func()) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.click = fn
}

func (i *fakeItem) Enable()  { i.setEnabled(true) }
func (i *fakeItem) Disable() { i.setEnabled(false) }

func (i *fakeItem) setEnabled(v bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.enabled = v
}

func (i *fakeItem) Title() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.title
}

func (i *fakeItem) Enabled() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.enabled
}

// trigger simulates the platform delivering a click.
func (i *fakeItem) trigger() {
	i.mu.Lock()
	fn := i.click
	i.mu.Unlock()
	if fn != nil {
		fn()
	}
}

type fakeBackend struct {
	available  bool
	ignoreQuit bool

	quitOnce sync.Once
	quitCh   chan struct{}
	readyCh  chan struct{}
	release  chan struct{}

	mu         sync.Mutex
	icons      [][]byte
	title      string
	tooltip    string
	onClick    func()
	items      []*fakeItem
	separators int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		available: true,
		quitCh:    make(chan struct{}),
		readyCh:   make(chan struct{}),
		release:   make(chan struct{}),
	}
}

func (f *fakeBackend) Available() bool { return f.available }

func (f *fakeBackend) Run(onReady, onExit func()) {
	onReady()
	close(f.readyCh)
	if f.ignoreQuit {
		<-f.release
	} else {
		<-f.quitCh
	}
	onExit()
}

func (f *fakeBackend) Quit() {
	f.quitOnce.Do(func() { close(f.quitCh) })
}

func (f *fakeBackend) SetIcon(data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.icons = append(f.icons, data)
}

func (f *fakeBackend) SetTitle(title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.title = title
}

func (f *fakeBackend) SetTooltip(tooltip string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tooltip = tooltip
}

func (f *fakeBackend) SetOnClick(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onClick = fn
}

func (f *fakeBackend) AddMenuItem(title, tooltip string) MenuItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	item := &fakeItem{title: title, enabled: true}
	f.items = append(f.items, item)
	return item
}

func (f *fakeBackend) AddSeparator() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.separators++
}

func (f *fakeBackend) iconCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.icons)
}

func (f *fakeBackend) lastIcon() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.icons) == 0 {
		return nil
	}
	return f.icons[len(f.icons)-1]
}

func (f *fakeBackend) currentTooltip() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tooltip
}

func (f *fakeBackend) item(i int) *fakeItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items[i]
}

func (f *fakeBackend) leftClick() {
	f.mu.Lock()
	fn := f.onClick
	f.mu.Unlock()
	if fn != nil {
		fn()
	}
}
