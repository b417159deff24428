// Package render holds output conversions shared by the renderers.
//
// Renderers in subpackages produce SVG. [ToPNG] rasterizes such a document
// in process, without external tools, using [github.com/srwiley/oksvg] to
// parse the drawing and [github.com/srwiley/rasterx] to scan it.
//
// Rasterization covers shapes and paths only. Text elements are skipped by
// the parser, so labels do not appear in PNG output.
package render
