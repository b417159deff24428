package nodelink

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/matzehuels/localitree/pkg/layout"
)

const (
	// LabelThreshold is the value a node must exceed to get a label.
	LabelThreshold = 20.0
	// labelOffset is the vertical distance between a node and its label.
	labelOffset = 18.0
)

const styleSheet = `
    .node circle { stroke: steelblue; stroke-width: 3px; }
    .node text { font: 12px sans-serif; }
    .link { fill: none; stroke: #ccc; stroke-width: 2px; }`

// SVGOption configures [RenderSVG] and [RenderHTML].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	canvas     Canvas
	palette    Palette
	styleSheet bool
	title      string
}

// WithCanvas sets the drawing area. Defaults to [DefaultCanvas].
func WithCanvas(c Canvas) SVGOption { return func(r *svgRenderer) { r.canvas = c } }

// WithPalette sets the value→color mapping. Defaults to [DefaultPalette].
func WithPalette(p Palette) SVGOption {
	return func(r *svgRenderer) {
		if !p.IsZero() {
			r.palette = p
		}
	}
}

// WithStyleSheet toggles the embedded <style> element. Enabled by default.
func WithStyleSheet(on bool) SVGOption { return func(r *svgRenderer) { r.styleSheet = on } }

// WithTitle adds a <title> element (and the HTML page title).
func WithTitle(s string) SVGOption { return func(r *svgRenderer) { r.title = s } }

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{
		canvas:     DefaultCanvas(),
		palette:    DefaultPalette(),
		styleSheet: true,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderSVG draws the layout as a standalone SVG document.
//
// Edges are written before nodes so circles paint over them. Nodes are
// written in reverse pre-order.
func RenderSVG(l layout.Layout, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	var buf bytes.Buffer
	r.render(&buf, l)
	return buf.Bytes()
}

func (r *svgRenderer) render(buf *bytes.Buffer, l layout.Layout) {
	c := r.canvas
	w, h := num(c.OuterWidth()), num(c.OuterHeight())
	fmt.Fprintf(buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s" width="%s" height="%s">`+"\n", w, h, w, h)

	if r.title != "" {
		fmt.Fprintf(buf, "  <title>%s</title>\n", escape(r.title))
	}
	if r.styleSheet {
		fmt.Fprintf(buf, "  <style>%s\n  </style>\n", styleSheet)
	}

	fmt.Fprintf(buf, `  <g transform="translate(%s,%s)">`+"\n", num(c.Margin.Left), num(c.Margin.Top))
	for _, link := range l.Links {
		renderLink(buf, l.Nodes[link.Source], l.Nodes[link.Target])
	}
	for i := len(l.Nodes) - 1; i >= 0; i-- {
		r.renderNode(buf, l.Nodes[i])
	}
	buf.WriteString("  </g>\n")
	buf.WriteString("</svg>\n")
}

func renderLink(buf *bytes.Buffer, src, dst layout.Node) {
	d := Diagonal(Point{src.X, src.Y}, Point{dst.X, dst.Y})
	fmt.Fprintf(buf, `    <path class="link" d="%s" fill="none" stroke="#ccc" stroke-width="2"/>`+"\n", d)
}

func (r *svgRenderer) renderNode(buf *bytes.Buffer, n layout.Node) {
	fmt.Fprintf(buf, `    <g class="node" transform="translate(%s,%s)">`+"\n", num(n.X), num(n.Y))
	fmt.Fprintf(buf, `      <circle r="%s" fill="%s"/>`+"\n", num(Radius(n.Value)), r.palette.Color(n.Value))
	if HasLabel(n.Value) {
		fmt.Fprintf(buf, `      <text y="%s" dy=".35em" text-anchor="middle" fill-opacity="1">%s</text>`+"\n",
			num(LabelY(n)), escape(n.Name))
	}
	buf.WriteString("    </g>\n")
}

// Radius is the circle radius for a value; negative values draw nothing.
func Radius(v float64) float64 { return max(v, 0) }

// HasLabel reports whether a node with value v is labelled.
func HasLabel(v float64) bool { return v > LabelThreshold }

// LabelY is the label's offset from the node center: above for nodes with
// children (visible or collapsed), below for leaves.
func LabelY(n layout.Node) float64 {
	if n.HasChildren {
		return -labelOffset
	}
	return labelOffset
}

func escape(s string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// RenderHTML wraps the SVG in a minimal HTML page with the drawing
// appended to the page body.
func RenderHTML(l layout.Layout, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	title := r.title
	if title == "" {
		title = "locality tree"
	}

	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	buf.WriteString(`<meta charset="utf-8">` + "\n")
	fmt.Fprintf(&buf, "<title>%s</title>\n", escape(title))
	buf.WriteString("</head>\n<body>\n")
	r.render(&buf, l)
	buf.WriteString("</body>\n</html>\n")
	return buf.Bytes()
}
