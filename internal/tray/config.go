package tray

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"time"
)

const DefaultTooltipTemplate = "AURA: {status} | {focused_time} focused of {total_time}"

// Config controls tray appearance and behavior.
type Config struct {
	Title           string
	IconSize        int
	IconPadding     int
	Colors          map[Status]color.RGBA
	TooltipTemplate string
	// RefreshInterval is how often the tooltip and stats line are re-rendered.
	// Zero disables the periodic refresh.
	RefreshInterval time.Duration
	// StopTimeout bounds how long Stop waits for the tray loop to exit.
	StopTimeout time.Duration
}

func DefaultColors() map[Status]color.RGBA {
	return map[Status]color.RGBA{
		StatusFocused:    {R: 46, G: 204, B: 113, A: 255},
		StatusDistracted: {R: 231, G: 76, B: 60, A: 255},
		StatusReading:    {R: 52, G: 152, B: 219, A: 255},
		StatusBreak:      {R: 243, G: 156, B: 18, A: 255},
		StatusIdle:       {R: 127, G: 140, B: 141, A: 255},
	}
}

func DefaultConfig() Config {
	return Config{
		Title:           "AURA",
		IconSize:        64,
		IconPadding:     8,
		Colors:          DefaultColors(),
		TooltipTemplate: DefaultTooltipTemplate,
		RefreshInterval: 5 * time.Second,
		StopTimeout:     3 * time.Second,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Title == "" {
		c.Title = def.Title
	}
	if c.IconSize <= 0 {
		c.IconSize = def.IconSize
	}
	if c.IconPadding < 0 || c.IconPadding*2 >= c.IconSize {
		c.IconPadding = c.IconSize / 8
	}
	colors := make(map[Status]color.RGBA, len(def.Colors))
	for s, col := range def.Colors {
		colors[s] = col
	}
	for s, col := range c.Colors {
		colors[s] = col
	}
	c.Colors = colors
	if c.TooltipTemplate == "" {
		c.TooltipTemplate = def.TooltipTemplate
	}
	if c.RefreshInterval < 0 {
		c.RefreshInterval = 0
	}
	if c.StopTimeout <= 0 {
		c.StopTimeout = def.StopTimeout
	}
	return c
}

// ParseColor parses "#RRGGBB" or "#RRGGBBAA".
func ParseColor(v string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(v), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", v)
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", v, err)
	}
	return color.RGBA{
		R: uint8(n >> 24),
		G: uint8(n >> 16),
		B: uint8(n >> 8),
		A: uint8(n),
	}, nil
}

// FormatColor is the inverse of ParseColor for opaque colors.
func FormatColor(c color.RGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}
