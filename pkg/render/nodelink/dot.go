package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/localitree/pkg/layout"
)

// pointsPerInch converts circle radii (pixels) to Graphviz node sizes.
const pointsPerInch = 72.0

// ToDOT converts a layout to Graphviz DOT source. Only the tree structure,
// values and colors are used; Graphviz computes its own positions.
//
// Circle diameters follow node values and labels follow the same
// value > 20 rule as the SVG renderer.
func ToDOT(l layout.Layout, p Palette) string {
	if p.IsZero() {
		p = DefaultPalette()
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fixedsize=true, color=steelblue, penwidth=3, fontsize=12];\n")
	buf.WriteString("  edge [arrowhead=none, color=\"#cccccc\", penwidth=2];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for i, n := range l.Nodes {
		label := ""
		if HasLabel(n.Value) {
			label = n.Name
		}
		diameter := max(2*Radius(n.Value)/pointsPerInch, 0.01)
		fmt.Fprintf(&buf, "  n%d [label=%s, width=%s, fillcolor=%s];\n",
			i, dotQuote(label), strconv.FormatFloat(diameter, 'f', 3, 64), dotQuote(p.Color(n.Value)))
	}

	buf.WriteString("\n")
	for _, e := range l.Links {
		fmt.Fprintf(&buf, "  n%d -> n%d;\n", e.Source, e.Target)
	}

	buf.WriteString("}\n")
	return buf.String()
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// dotQuote returns s as a DOT double-quoted string. Only backslash and
// double quote are escaped; other bytes pass through unchanged.
func dotQuote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}

// RenderDOTSVG renders DOT source to SVG using Graphviz.
func RenderDOTSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-based root element with a
// pixel-sized one anchored at the origin.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
