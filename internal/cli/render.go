package cli

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/archdiagram/pkg/diagram"
	"github.com/matzehuels/archdiagram/pkg/errors"
	"github.com/matzehuels/archdiagram/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	formats   string  // comma-separated output formats
	output    string  // output directory
	engine    string  // wasm or system
	images    bool    // draw icon images (system engine)
	direction string  // layout direction override
	scale     float64 // png scale factor
	noCache   bool    // disable the render cache
	refresh   bool    // ignore cached artifacts
	show      bool    // open the first artifact when done
}

// renderDefaults returns render options seeded from the config file.
func (c *CLI) renderDefaults() *renderOpts {
	return &renderOpts{
		output: c.Config.OutputDir,
		engine: c.Config.Engine,
		images: c.Config.Images,
	}
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	opts := &renderOpts{}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render the built-in diagram or a definition file",
		Long: `Render the built-in architecture diagram, or a diagram definition file
(JSON, TOML or YAML), to one or more image formats.

Output files are named after the diagram title, e.g. "Web Services" is
written as web_services.png.`,
		Example: `  archdiagram render
  archdiagram render -f svg,pdf -o out/
  archdiagram render stack.yaml --engine system --images
  archdiagram render stack.yaml --direction TB --show`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.applyRenderConfig(cmd, opts)
			return c.runRender(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): "+strings.Join(pipeline.FormatNames, ", ")+" (comma-separated)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output directory (default \".\")")
	cmd.Flags().StringVar(&opts.engine, "engine", "", "graphviz engine: wasm (default), system")
	cmd.Flags().BoolVar(&opts.images, "images", false, "draw icon images (requires --engine system)")
	cmd.Flags().StringVar(&opts.direction, "direction", "", "layout direction: TB, BT, LR, RL")
	cmd.Flags().Float64Var(&opts.scale, "scale", 0, "scale factor for png output (requires rsvg-convert)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even when cached")
	cmd.Flags().BoolVar(&opts.show, "show", false, "open the rendered file")

	return cmd
}

// applyRenderConfig fills flags the user did not set from the config file.
func (c *CLI) applyRenderConfig(cmd *cobra.Command, opts *renderOpts) {
	def := c.renderDefaults()
	if !cmd.Flags().Changed("output") {
		opts.output = def.output
	}
	if !cmd.Flags().Changed("engine") {
		opts.engine = def.engine
	}
	if !cmd.Flags().Changed("images") {
		opts.images = def.images
	}
}

// runRender loads the diagram, renders it and writes the artifacts.
func (c *CLI) runRender(ctx context.Context, args []string, opts *renderOpts) error {
	d, baseDir, err := loadDiagram(args)
	if err != nil {
		return err
	}
	if err := applyDirection(d, opts.direction); err != nil {
		return err
	}

	pipeOpts := pipeline.Options{
		Formats: c.formatsFor(d, opts.formats),
		Engine:  opts.engine,
		Images:  opts.images,
		Scale:   opts.scale,
		Refresh: opts.refresh,
		BaseDir: baseDir,
	}

	runner, err := c.newRunner(ctx, c.Config.Cache.Backend, c.Config.Cache.RedisURL, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, os.Stderr, fmt.Sprintf("Rendering %s...", d.Name))
	spinner.Start()
	result, err := runner.Execute(ctx, d, pipeOpts)
	spinner.Stop()
	if err != nil {
		return renderError(ctx, err)
	}

	p := newProgress(c.Logger)
	paths, err := pipeline.Write(result, opts.output)
	if err != nil {
		return err
	}
	p.done(fmt.Sprintf("wrote %d files", len(paths)))

	printSuccess("Rendered %s", StyleHighlight.Render(d.Name))
	for _, path := range paths {
		printFile(path)
	}
	printStats(result.Stats, result.CacheInfo.RenderHit)
	for _, img := range result.MissingImages {
		printWarning("icon image not found: %s (drew fallback shape)", img)
	}
	if opts.images && !pipeOpts.DrawImages() {
		printNextStep("Draw icon images with", "archdiagram render --engine system --images")
	}

	if opts.show && len(paths) > 0 {
		if err := openFile(paths[0]); err != nil {
			printWarning("could not open %s: %v", paths[0], err)
		}
	}
	return nil
}

// formatsFor picks the formats to render: the flag value first, then the
// diagram's own formats, then the config file.
func (c *CLI) formatsFor(d *diagram.Diagram, flag string) []string {
	if f := pipeline.ParseFormats(flag); len(f) > 0 {
		return f
	}
	if len(d.Formats) > 0 {
		return nil
	}
	return c.Config.Formats
}

// applyDirection overrides the diagram's layout direction when dir is set.
func applyDirection(d *diagram.Diagram, dir string) error {
	if dir == "" {
		return nil
	}
	v := diagram.Direction(strings.ToUpper(dir))
	if !v.Valid() {
		return fmt.Errorf("invalid direction: %s (must be 'TB', 'BT', 'LR' or 'RL')", dir)
	}
	d.Direction = v
	return nil
}

// renderError adds a hint for missing renderers. Cancellation is passed
// through unchanged so main can exit with 130.
func renderError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, errors.ErrCodeRendererNotFound) {
		printNextStep("Use the in-process engine with", "archdiagram render --engine wasm")
	}
	return err
}

// openFile opens path with the platform's default viewer.
func openFile(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "linux":
		cmd = exec.Command("xdg-open", path)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", path)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}
