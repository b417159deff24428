package cli

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/localitree/pkg/config"
	"github.com/matzehuels/localitree/pkg/pipeline"
)

// viewFlags are the drawing flags shared by render, layout, browse and serve.
// Only flags set on the command line override the config.
type viewFlags struct {
	formats       string
	output        string
	width         float64
	height        float64
	marginTop     float64
	marginRight   float64
	marginBottom  float64
	marginLeft    float64
	depthSpacing  float64
	fitDepth      bool
	engine        string
	collapseDepth int
	collapse      []string
	expand        bool
	scale         float64
	title         string
	noStyle       bool
	noCache       bool
	timeout       time.Duration
}

// register adds the flags to cmd. Output flags (--output, --format, --scale)
// are only added when withOutput is set.
func (f *viewFlags) register(cmd *cobra.Command, withOutput bool) {
	def := config.Default()
	fs := cmd.Flags()

	if withOutput {
		fs.StringVarP(&f.output, "output", "o", "", "output file, or base path for several formats (default: "+defaultOutput+")")
		fs.StringVarP(&f.formats, "format", "f", "", "output format(s): "+strings.Join(formatNames(), ", ")+" (comma-separated)")
		fs.Float64Var(&f.scale, "scale", def.Scale, "png scale factor")
		fs.StringVar(&f.title, "title", "", "document title")
		fs.BoolVar(&f.noStyle, "no-style", false, "omit the embedded stylesheet")
	}

	fs.Float64Var(&f.width, "width", def.Canvas.Width, "plot width (depth axis)")
	fs.Float64Var(&f.height, "height", def.Canvas.Height, "plot height (breadth axis)")
	fs.Float64Var(&f.marginTop, "margin-top", def.Canvas.Margin.Top, "top margin")
	fs.Float64Var(&f.marginRight, "margin-right", def.Canvas.Margin.Right, "right margin")
	fs.Float64Var(&f.marginBottom, "margin-bottom", def.Canvas.Margin.Bottom, "bottom margin")
	fs.Float64Var(&f.marginLeft, "margin-left", def.Canvas.Margin.Left, "left margin")
	fs.Float64Var(&f.depthSpacing, "depth-spacing", def.DepthSpacing, "pixels between tree levels")
	fs.BoolVar(&f.fitDepth, "fit-depth", false, "spread levels across the full width instead of --depth-spacing")
	fs.StringVar(&f.engine, "engine", def.Engine, "layout engine: tidy, graphviz")
	fs.IntVar(&f.collapseDepth, "collapse-depth", 0, "collapse every node at this depth (0: keep document state)")
	fs.StringSliceVar(&f.collapse, "collapse", nil, "collapse nodes by name path, e.g. root/child (repeatable)")
	fs.BoolVar(&f.expand, "expand", false, "ignore collapse state stored in the document")
	fs.BoolVar(&f.noCache, "no-cache", false, "disable the response cache")
	fs.DurationVar(&f.timeout, "timeout", 0, "fetch timeout, e.g. 30s (0: none)")
}

// apply copies explicitly set flags into cfg and returns the resulting
// pipeline options.
func (f *viewFlags) apply(cmd *cobra.Command, cfg *config.Config) pipeline.Options {
	fs := cmd.Flags()
	set := func(name string, fn func()) {
		if fl := fs.Lookup(name); fl != nil && fl.Changed {
			fn()
		}
	}

	set("output", func() { cfg.Output = f.output })
	set("format", func() { cfg.Formats = parseFormats(f.formats) })
	set("scale", func() { cfg.Scale = f.scale })
	set("width", func() { cfg.Canvas.Width = f.width })
	set("height", func() { cfg.Canvas.Height = f.height })
	set("margin-top", func() { cfg.Canvas.Margin.Top = f.marginTop })
	set("margin-right", func() { cfg.Canvas.Margin.Right = f.marginRight })
	set("margin-bottom", func() { cfg.Canvas.Margin.Bottom = f.marginBottom })
	set("margin-left", func() { cfg.Canvas.Margin.Left = f.marginLeft })
	set("depth-spacing", func() { cfg.DepthSpacing = f.depthSpacing })
	set("engine", func() { cfg.Engine = f.engine })
	set("collapse-depth", func() { cfg.CollapseDepth = f.collapseDepth })
	set("no-cache", func() { cfg.NoCache = f.noCache })
	set("timeout", func() { cfg.Timeout = f.timeout })

	opts := cfg.PipelineOptions()
	opts.FitDepth = f.fitDepth
	opts.Collapse = append(opts.Collapse, f.collapse...)
	opts.Expand = f.expand
	opts.Title = f.title
	opts.NoStyle = f.noStyle
	return opts
}

func formatNames() []string {
	return []string{
		pipeline.FormatSVG,
		pipeline.FormatHTML,
		pipeline.FormatPNG,
		pipeline.FormatJSON,
		pipeline.FormatDOT,
	}
}
