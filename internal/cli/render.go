package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	apperr "github.com/matzehuels/localitree/pkg/errors"
	"github.com/matzehuels/localitree/pkg/pipeline"
)

// watchDebounce collapses bursts of writes from editors into one re-render.
const watchDebounce = 200 * time.Millisecond

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags viewFlags
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "render [source]",
		Short: "Draw a locality tree",
		Long: `Draw a locality tree as a node-link diagram.

The source is a URL or a local path. URLs ending in "/" and directories have
locality.json appended. Without an argument the configured source is used.

Nothing is written when the tree cannot be fetched: a non-200 response or a
network error fails the command.

Examples:
  localitree render http://localhost:8000/
  localitree render ./data -f svg,png --scale 0.5 -o out/tree
  localitree render tree.json --collapse root/big-subtree --watch`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := flags.apply(cmd, &cfg)
			opts.Source = sourceArg(args, cfg)

			runner, cleanup, err := c.newRunner(cfg)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer cleanup()

			if watch {
				return c.watchRender(cmd.Context(), runner, opts, cfg.Output)
			}
			return c.runRender(cmd.Context(), runner, opts, cfg.Output)
		},
	}

	flags.register(cmd, true)
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-render whenever the local source file changes")

	return cmd
}

// runRender executes the pipeline and writes one file per format. Files are
// only written after every format rendered.
func (c *CLI) runRender(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options, output string) error {
	spinner := newSpinnerWithContext(ctx, "Fetching "+opts.Source+"...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	paths, err := writeArtifacts(result.Artifacts, opts.Formats, output)
	if err != nil {
		return err
	}

	printSuccess("Rendered %s", opts.Source)
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats)
	return nil
}

// watchRender renders once and again on every change of a local source.
// Render failures while watching are reported and do not stop the loop.
func (c *CLI) watchRender(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options, output string) error {
	target, err := runner.Loader.Resolve(opts.Source)
	if err != nil {
		return err
	}
	if target.IsRemote() {
		return apperr.New(apperr.ErrCodeInvalidInput, "--watch needs a local source, got %s", target.URL)
	}

	render := func() {
		prog := newProgress(c.Logger)
		if err := c.runRender(ctx, runner, opts, output); err != nil {
			if ctx.Err() == nil {
				printError("%s", apperr.UserMessage(err))
				printWarning("Output left unchanged, waiting for the next change")
			}
			return
		}
		prog.done("Rendered " + target.Path)
	}

	render()
	printInfo("Watching %s (ctrl+c to stop)", target.Path)
	return watchFile(ctx, target.Path, watchDebounce, render)
}

// =============================================================================
// Output Files
// =============================================================================

// outputPaths maps each format to a file name. A known format extension on
// output is replaced; with several formats output acts as a base path.
//
//	outputPaths("", [svg])             → locality.svg
//	outputPaths("", [png])             → locality.png
//	outputPaths("out/tree", [svg png]) → out/tree.svg, out/tree.png
//	outputPaths("tree.txt", [dot])     → tree.txt
func outputPaths(output string, formats []string) map[string]string {
	if output == "" {
		output = defaultOutput
	}
	ext := filepath.Ext(output)
	known := pipeline.ValidFormats[strings.TrimPrefix(ext, ".")]

	paths := make(map[string]string, len(formats))
	for _, f := range formats {
		switch {
		case len(formats) == 1 && (!known || ext == "."+f):
			paths[f] = output
		case known:
			paths[f] = strings.TrimSuffix(output, ext) + "." + f
		default:
			paths[f] = output + "." + f
		}
	}
	return paths
}

// writeArtifacts writes every rendered format and returns the paths in
// format order.
func writeArtifacts(artifacts map[string][]byte, formats []string, output string) ([]string, error) {
	paths := outputPaths(output, formats)
	written := make([]string, 0, len(formats))
	for _, f := range formats {
		p := paths[f]
		if dir := filepath.Dir(p); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return written, fmt.Errorf("create output dir: %w", err)
			}
		}
		if err := os.WriteFile(p, artifacts[f], 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", p, err)
		}
		written = append(written, p)
	}
	return written, nil
}
