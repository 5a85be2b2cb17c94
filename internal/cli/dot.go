package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/archdiagram/pkg/pipeline"
)

type dotOpts struct {
	engine    string
	images    bool
	direction string
}

// dotCommand creates the dot command, which prints Graphviz source.
func (c *CLI) dotCommand() *cobra.Command {
	opts := &dotOpts{}

	cmd := &cobra.Command{
		Use:   "dot [file]",
		Short: "Print the Graphviz DOT source of a diagram",
		Example: `  archdiagram dot
  archdiagram dot stack.yaml | dot -Tsvg > stack.svg`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("engine") {
				opts.engine = c.Config.Engine
			}
			return c.runDot(cmd.Context(), cmd.OutOrStdout(), args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.engine, "engine", "", "engine the source is prepared for: wasm (default), system")
	cmd.Flags().BoolVar(&opts.images, "images", false, "reference icon images (requires --engine system)")
	cmd.Flags().StringVar(&opts.direction, "direction", "", "layout direction: TB, BT, LR, RL")

	return cmd
}

func (c *CLI) runDot(ctx context.Context, w io.Writer, args []string, opts *dotOpts) error {
	d, baseDir, err := loadDiagram(args)
	if err != nil {
		return err
	}
	if err := applyDirection(d, opts.direction); err != nil {
		return err
	}

	runner := pipeline.NewRunner(nil, nil, c.Logger)
	result, err := runner.Execute(ctx, d, pipeline.Options{
		Formats: []string{pipeline.FormatDOT},
		Engine:  opts.engine,
		Images:  opts.images,
		BaseDir: baseDir,
	})
	if err != nil {
		return err
	}
	_, err = w.Write(result.Artifacts[pipeline.FormatDOT])
	return err
}
