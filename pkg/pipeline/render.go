package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"html"

	"github.com/matzehuels/localitree/pkg/layout"
	"github.com/matzehuels/localitree/pkg/render"
	"github.com/matzehuels/localitree/pkg/render/nodelink"
)

// RenderLayout generates output artifacts in the requested formats.
func RenderLayout(ctx context.Context, l layout.Layout, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))

	// SVG is shared by svg, html and png; draw it once.
	var svg []byte
	drawSVG := func() ([]byte, error) {
		if svg != nil {
			return svg, nil
		}
		var err error
		svg, err = renderSVG(ctx, l, opts)
		return svg, err
	}

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data, err = drawSVG()
		case FormatHTML:
			if opts.IsGraphviz() {
				var s []byte
				if s, err = drawSVG(); err == nil {
					data = wrapHTML(s, opts.Title)
				}
			} else {
				data = nodelink.RenderHTML(l, opts.SVGOptions()...)
			}
		case FormatPNG:
			var s []byte
			if s, err = drawSVG(); err == nil {
				data, err = render.ToPNG(s, opts.Scale)
			}
		case FormatJSON:
			data, err = layout.Marshal(l)
		case FormatDOT:
			data = []byte(nodelink.ToDOT(l, opts.Palette))
		default:
			err = ValidateFormat(format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

func renderSVG(ctx context.Context, l layout.Layout, opts Options) ([]byte, error) {
	if opts.IsGraphviz() {
		return nodelink.RenderDOTSVG(ctx, nodelink.ToDOT(l, opts.Palette))
	}
	return nodelink.RenderSVG(l, opts.SVGOptions()...), nil
}

// wrapHTML embeds an SVG produced outside the nodelink renderer in a page.
func wrapHTML(svg []byte, title string) []byte {
	if title == "" {
		title = "locality tree"
	}
	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&buf, "<title>%s</title>\n", html.EscapeString(title))
	buf.WriteString("</head>\n<body>\n")
	buf.Write(svg)
	buf.WriteString("\n</body>\n</html>\n")
	return buf.Bytes()
}
