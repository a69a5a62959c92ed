package tray

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"
)

// Icon is a rendered tray bitmap for one status.
type Icon struct {
	Status Status
	// PNG is the encoded image.
	PNG []byte
	// Data is what the platform tray expects (ICO on Windows, PNG elsewhere).
	Data []byte
}

// IconGenerator renders status icons and memoizes them per status.
// Entries are never evicted; the domain is bounded by the Status enum.
type IconGenerator struct {
	mu    sync.Mutex
	cfg   Config
	cache map[Status]*Icon
}

func NewIconGenerator(cfg Config) *IconGenerator {
	return &IconGenerator{
		cfg:   cfg.withDefaults(),
		cache: make(map[Status]*Icon, len(statusNames)),
	}
}

// Icon returns the cached icon for s, rendering it on first use.
func (g *IconGenerator) Icon(s Status) (*Icon, error) {
	if !s.valid() {
		return nil, fmt.Errorf("render icon: invalid status %d", int(s))
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if icon, ok := g.cache[s]; ok {
		return icon, nil
	}

	img := g.render(s)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode %s icon: %w", s, err)
	}
	icon := &Icon{
		Status: s,
		PNG:    buf.Bytes(),
		Data:   platformIcon(buf.Bytes()),
	}
	g.cache[s] = icon
	return icon, nil
}

func (g *IconGenerator) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.cache)
}

// Reset swaps the configuration and drops every cached icon.
func (g *IconGenerator) Reset(cfg Config) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cfg = cfg.withDefaults()
	g.cache = make(map[Status]*Icon, len(statusNames))
}

// Color returns the fill color used for s.
func (g *IconGenerator) Color(s Status) color.RGBA {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cfg.Colors[s]
}

// render draws a filled circle in the status color. Every status except idle
// gets a white dot in the top-right corner marking active tracking.
func (g *IconGenerator) render(s Status) *image.RGBA {
	size := g.cfg.IconSize
	pad := g.cfg.IconPadding
	img := image.NewRGBA(image.Rect(0, 0, size, size))

	fillCircle(img, float64(size)/2, float64(size)/2, float64(size-2*pad)/2, g.cfg.Colors[s])

	if s != StatusIdle {
		dot := size / 6
		if dot < 2 {
			dot = 2
		}
		x := size - dot - 2
		r := float64(dot) / 2
		fillCircle(img, float64(x)+r, 2+r, r, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	}
	return img
}

func fillCircle(img *image.RGBA, cx, cy, r float64, c color.RGBA) {
	b := img.Bounds()
	r2 := r * r
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dx := float64(x) + 0.5 - cx
			dy := float64(y) + 0.5 - cy
			if dx*dx+dy*dy <= r2 {
				img.SetRGBA(x, y, c)
			}
		}
	}
}
