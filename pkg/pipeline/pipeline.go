// Package pipeline provides the load → layout → render pipeline for localitree.
//
// The CLI, the browse TUI and the HTTP server all run trees through this
// package, so every entry point draws the same picture for the same options.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: fetch the tree document (see [loader]) and decode it
//  2. Layout: apply collapse options and compute node positions
//  3. Render: generate each requested format (SVG, HTML, PNG, JSON, DOT)
//
// A failed load stops the run before anything is rendered.
//
// # Usage
//
//	runner := pipeline.NewRunner(loader.New(loader.Options{}), logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Source:  "http://localhost:8000/",
//	    Formats: []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Re-render an already loaded tree (after toggling nodes, for example):
//
//	result, err := runner.Render(ctx, root, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	apperr "github.com/matzehuels/localitree/pkg/errors"
	"github.com/matzehuels/localitree/pkg/layout"
	"github.com/matzehuels/localitree/pkg/render/nodelink"
	"github.com/matzehuels/localitree/pkg/tree"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultEngine is the default layout engine.
	DefaultEngine = EngineTidy

	// DefaultScale is the default PNG scale factor.
	DefaultScale = 1.0
)

// Layout engines.
const (
	// EngineTidy positions nodes with the built-in tidy tree layout.
	EngineTidy = "tidy"
	// EngineGraphviz lets Graphviz position nodes (svg, html and png only).
	EngineGraphviz = "graphviz"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatHTML = "html"
	FormatPNG  = "png"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatHTML: true,
	FormatPNG:  true,
	FormatJSON: true,
	FormatDOT:  true,
}

// ValidEngines is the set of supported layout engines.
var ValidEngines = map[string]bool{
	EngineTidy:     true,
	EngineGraphviz: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
type Options struct {
	// Load options
	Source string `json:"source,omitempty"`

	// Layout options
	Engine        string          `json:"engine,omitempty"`
	Canvas        nodelink.Canvas `json:"canvas"`
	DepthSpacing  float64         `json:"depth_spacing,omitempty"` // pixels per level; 0 means default
	FitDepth      bool            `json:"fit_depth,omitempty"`     // spread levels over the canvas width instead
	CollapseDepth int             `json:"collapse_depth,omitempty"`
	Collapse      []string        `json:"collapse,omitempty"` // name paths of nodes to collapse ("root/a/b")
	Expand        bool            `json:"expand,omitempty"`   // clear collapse state stored in the document

	// Render options
	Formats []string         `json:"formats,omitempty"`
	Palette nodelink.Palette `json:"palette"`
	Title   string           `json:"title,omitempty"`
	NoStyle bool             `json:"no_style,omitempty"`
	Scale   float64          `json:"scale,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Tree is the tree that was drawn, with collapse options applied.
	Tree *tree.Node

	// Layout contains node positions and links.
	Layout layout.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount    int
	VisibleCount int
	MaxDepth     int
	LoadTime     time.Duration
	LayoutTime   time.Duration
	RenderTime   time.Duration
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return apperr.New(apperr.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, html, png, json, dot)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateEngine checks that a layout engine is valid.
func ValidateEngine(engine string) error {
	if !ValidEngines[engine] {
		return apperr.New(apperr.ErrCodeInvalidEngine, "invalid engine: %q (must be one of: tidy, graphviz)", engine)
	}
	return nil
}

// ValidateCanvas checks that the plot area is positive and margins are not negative.
func ValidateCanvas(c nodelink.Canvas) error {
	if c.Width <= 0 || c.Height <= 0 {
		return apperr.New(apperr.ErrCodeInvalidInput, "canvas width and height must be positive (got %gx%g)", c.Width, c.Height)
	}
	m := c.Margin
	if m.Top < 0 || m.Right < 0 || m.Bottom < 0 || m.Left < 0 {
		return apperr.New(apperr.ErrCodeInvalidInput, "canvas margins cannot be negative")
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := apperr.ValidateSource(o.Source); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Engine == "" {
		o.Engine = DefaultEngine
	}
	if o.Canvas == (nodelink.Canvas{}) {
		o.Canvas = nodelink.DefaultCanvas()
	}
	if o.DepthSpacing == 0 {
		o.DepthSpacing = layout.DefaultDepthSpacing
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := ValidateEngine(o.Engine); err != nil {
		return err
	}
	if err := ValidateCanvas(o.Canvas); err != nil {
		return err
	}
	if o.DepthSpacing < 0 {
		return apperr.New(apperr.ErrCodeInvalidInput, "depth spacing cannot be negative")
	}
	if o.CollapseDepth < 0 {
		return apperr.New(apperr.ErrCodeInvalidInput, "collapse depth cannot be negative")
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Palette.IsZero() {
		o.Palette = nodelink.DefaultPalette()
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Scale < 0 {
		return apperr.New(apperr.ErrCodeInvalidInput, "png scale cannot be negative")
	}
	return nil
}

// LayoutConfig returns the layout configuration for these options.
func (o *Options) LayoutConfig() layout.Config {
	spacing := o.DepthSpacing
	if o.FitDepth {
		spacing = 0
	}
	return o.Canvas.LayoutConfig(spacing)
}

// SVGOptions returns the renderer options for these options.
func (o *Options) SVGOptions() []nodelink.SVGOption {
	opts := []nodelink.SVGOption{
		nodelink.WithCanvas(o.Canvas),
		nodelink.WithPalette(o.Palette),
		nodelink.WithStyleSheet(!o.NoStyle),
	}
	if o.Title != "" {
		opts = append(opts, nodelink.WithTitle(o.Title))
	}
	return opts
}

// IsGraphviz returns true if Graphviz positions the nodes.
func (o *Options) IsGraphviz() bool {
	return o.Engine == EngineGraphviz
}
