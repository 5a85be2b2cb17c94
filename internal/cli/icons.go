package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/archdiagram/pkg/diagram/icon"
)

// iconsCommand creates the icons command, which lists the icon catalog.
func (c *CLI) iconsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "icons",
		Short: "List the icon catalog",
		Long: `List the icons nodes can reference in definition files. Each icon is
drawn with its fallback shape and fill colour unless an image is configured.

Custom images are referenced as "custom:<path>".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			writeIcons(cmd.OutOrStdout())
			return nil
		},
	}
}

func writeIcons(w io.Writer) {
	all := icon.All()
	rows := make([][]string, 0, len(all))
	for _, i := range all {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(i.FillColor)).Render("■")
		rows = append(rows, []string{i.Ref(), i.Shape, swatch + " " + i.FillColor})
	}
	fmt.Fprintln(w, newTable("Icon", "Shape", "Fill").Rows(rows...).Render())
	fmt.Fprintln(w, StyleDim.Render(fmt.Sprintf("  %d icons · custom images: custom:<path>", len(all))))
}
