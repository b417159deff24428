package nodelink

import "github.com/matzehuels/localitree/pkg/layout"

// Margin is the space between the SVG edge and the plot area.
type Margin struct {
	Top    float64 `toml:"top" json:"top"`
	Right  float64 `toml:"right" json:"right"`
	Bottom float64 `toml:"bottom" json:"bottom"`
	Left   float64 `toml:"left" json:"left"`
}

// Canvas is the plot area plus margins.
type Canvas struct {
	Width  float64 `toml:"width" json:"width"`
	Height float64 `toml:"height" json:"height"`
	Margin Margin  `toml:"margin" json:"margin"`
}

// Default canvas geometry.
const (
	DefaultMarginTop    = 200
	DefaultMarginRight  = 120
	DefaultMarginBottom = 20
	DefaultMarginLeft   = 120
	DefaultWidth        = 960*10000 - DefaultMarginRight - DefaultMarginLeft
	DefaultHeight       = 500*10 - DefaultMarginTop - DefaultMarginBottom
)

// DefaultCanvas returns the oversized default canvas.
func DefaultCanvas() Canvas {
	return Canvas{
		Width:  DefaultWidth,
		Height: DefaultHeight,
		Margin: Margin{
			Top:    DefaultMarginTop,
			Right:  DefaultMarginRight,
			Bottom: DefaultMarginBottom,
			Left:   DefaultMarginLeft,
		},
	}
}

// OuterWidth is the SVG width including margins.
func (c Canvas) OuterWidth() float64 { return c.Width + c.Margin.Left + c.Margin.Right }

// OuterHeight is the SVG height including margins.
func (c Canvas) OuterHeight() float64 { return c.Height + c.Margin.Top + c.Margin.Bottom }

// LayoutConfig sizes a tree layout to the canvas. The breadth axis spans
// the plot height and the depth axis the plot width.
func (c Canvas) LayoutConfig(depthSpacing float64) layout.Config {
	return layout.Config{
		Breadth:      c.Height,
		Depth:        c.Width,
		DepthSpacing: depthSpacing,
	}
}
