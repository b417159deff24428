package nodelink

import (
	"cmp"
	"slices"
)

// Threshold colors values strictly greater than Above.
type Threshold struct {
	Above float64 `toml:"above" json:"above"`
	Color string  `toml:"color" json:"color"`
}

// Palette maps node values to fill colors.
type Palette struct {
	Thresholds []Threshold `toml:"thresholds" json:"thresholds"`
	Fallback   string      `toml:"fallback" json:"fallback"`
}

// Default palette shades, darkest first.
const (
	ColorDarkest  = "#E74C3C"
	ColorDark     = "#EC7063"
	ColorMedium   = "#F1948A"
	ColorLight    = "#F5B7B1"
	ColorLightest = "#FADBD8"
)

// DefaultPalette returns the red ramp used for locality values.
func DefaultPalette() Palette {
	return Palette{
		Thresholds: []Threshold{
			{Above: 80, Color: ColorDarkest},
			{Above: 60, Color: ColorDark},
			{Above: 40, Color: ColorMedium},
			{Above: 20, Color: ColorLight},
		},
		Fallback: ColorLightest,
	}
}

// Color returns the fill for v: the color of the highest threshold v
// exceeds, or the fallback.
func (p Palette) Color(v float64) string {
	ts := slices.Clone(p.Thresholds)
	slices.SortStableFunc(ts, func(a, b Threshold) int { return cmp.Compare(b.Above, a.Above) })
	for _, t := range ts {
		if v > t.Above {
			return t.Color
		}
	}
	return p.Fallback
}

// IsZero reports whether the palette has no colors configured.
func (p Palette) IsZero() bool { return len(p.Thresholds) == 0 && p.Fallback == "" }
