package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/localitree/pkg/pipeline"
)

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags  viewFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "layout [source]",
		Short: "Print the computed layout as JSON",
		Long: `Compute node positions and links for a locality tree and print them as JSON.

The output has one entry per visible node (name, value, x, y, depth, path)
and one per link, in the coordinates the SVG renderer uses.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := flags.apply(cmd, &cfg)
			opts.Source = sourceArg(args, cfg)
			opts.Formats = []string{pipeline.FormatJSON}

			runner, cleanup, err := c.newRunner(cfg)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer cleanup()

			result, err := runner.Execute(cmd.Context(), opts)
			if err != nil {
				return err
			}

			data := result.Artifacts[pipeline.FormatJSON]
			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write output %s: %w", output, err)
			}
			printSuccess("Layout complete")
			printFile(output)
			printStats(result.Stats)
			printNewline()
			printNextStep("Draw it", appName+" render "+opts.Source)
			return nil
		},
	}

	flags.register(cmd, false)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")

	return cmd
}
