package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	dio "github.com/matzehuels/archdiagram/pkg/io"
)

// exportCommand creates the export command, which writes a diagram as a
// definition file.
func (c *CLI) exportCommand() *cobra.Command {
	var output, format string

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Write a diagram as a JSON, TOML or YAML definition",
		Long: `Write the built-in diagram, or a converted definition file, as a diagram
definition. The format follows the output file extension; without -o the
definition is printed to stdout in the --format encoding.`,
		Example: `  archdiagram export -o architecture.yaml
  archdiagram export stack.json -o stack.toml
  archdiagram export --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExport(cmd.OutOrStdout(), args, output, format)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.json, .toml, .yaml)")
	cmd.Flags().StringVar(&format, "format", string(dio.YAML), "encoding for stdout: json, toml, yaml")

	return cmd
}

func (c *CLI) runExport(w io.Writer, args []string, output, format string) error {
	d, _, err := loadDiagram(args)
	if err != nil {
		return err
	}

	if output == "" {
		f, err := dio.ParseFormat(format)
		if err != nil {
			return err
		}
		return dio.Write(d, w, f)
	}

	if err := dio.Export(d, output); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	printSuccess("Exported %s", StyleHighlight.Render(d.Name))
	printFile(output)
	return nil
}
