package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/localitree/pkg/loader"
	"github.com/matzehuels/localitree/pkg/observability"
	"github.com/matzehuels/localitree/pkg/tree"
)

// Runner encapsulates pipeline execution.
// The CLI and the server both use it to avoid duplicating stage wiring.
//
// The Runner is stateless except for the loader and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Loader *loader.Loader
	Logger *log.Logger
}

// NewRunner creates a runner with the given loader.
// If l is nil, a loader with default options (no cache) is used.
func NewRunner(l *loader.Loader, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	if l == nil {
		l = loader.New(loader.Options{Logger: logger})
	}
	return &Runner{
		Loader: l,
		Logger: logger,
	}
}

// Execute runs the complete load → layout → render pipeline.
// Nothing is rendered when the load fails.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	// Stage 1: Load
	loadStart := time.Now()
	root, err := r.Loader.Load(ctx, opts.Source)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	loadTime := time.Since(loadStart)

	r.Logger.Info("loaded tree",
		"source", opts.Source,
		"nodes", tree.Count(root),
		"duration", loadTime)

	result, err := r.Render(ctx, root, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.LoadTime = loadTime
	return result, nil
}

// Render lays out and renders an already loaded tree. It is the re-render
// path used after collapse state changes; root itself is not modified.
func (r *Runner) Render(ctx context.Context, root *tree.Node, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if err := tree.Validate(root); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 2: Layout
	layoutStart := time.Now()
	work := Prepare(root, opts)
	observability.Pipeline().OnLayoutStart(ctx, opts.Engine, tree.Count(work))
	l := GenerateLayout(work, opts)
	result.Tree = work
	result.Layout = l
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.NodeCount = tree.Count(work)
	result.Stats.VisibleCount = len(l.Nodes)
	result.Stats.MaxDepth = l.MaxDepth()
	observability.Pipeline().OnLayoutComplete(ctx, opts.Engine, result.Stats.LayoutTime, nil)

	r.Logger.Info("computed layout",
		"nodes", len(l.Nodes),
		"links", len(l.Links),
		"depth", result.Stats.MaxDepth,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	artifacts, err := RenderLayout(ctx, l, opts)
	result.Stats.RenderTime = time.Since(renderStart)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, result.Stats.RenderTime, err)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
