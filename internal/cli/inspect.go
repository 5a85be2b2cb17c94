package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/archdiagram/pkg/diagram"
)

var (
	tableHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Summarize the nodes, clusters and edges of a diagram",
		Example: `  archdiagram inspect
  archdiagram inspect stack.yaml -i`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, _, err := loadDiagram(args)
			if err != nil {
				return err
			}
			if interactive {
				_, err := tea.NewProgram(NewNodeBrowserModel(d), tea.WithContext(cmd.Context())).Run()
				return err
			}
			writeSummary(cmd.OutOrStdout(), d)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse nodes interactively")

	return cmd
}

// writeSummary prints the diagram header line and tables of its nodes and
// clusters.
func writeSummary(w io.Writer, d *diagram.Diagram) {
	fmt.Fprintln(w, StyleTitle.Render(d.Name))
	fmt.Fprintln(w, StyleDim.Render(fmt.Sprintf("  %s · %s · %d nodes · %d edges · %d clusters",
		d.Direction, d.CurveStyle, d.NodeCount(), d.EdgeCount(), len(d.Clusters()))))
	fmt.Fprintln(w)

	rows := make([][]string, 0, d.NodeCount())
	for _, n := range d.Nodes() {
		rows = append(rows, []string{
			n.ID,
			singleLine(n.Label),
			iconName(n),
			clusterPath(d, n.Cluster),
			strconv.Itoa(len(d.Incoming(n.ID))),
			strconv.Itoa(len(d.Outgoing(n.ID))),
		})
	}
	fmt.Fprintln(w, newTable("Node", "Label", "Icon", "Cluster", "In", "Out").Rows(rows...).Render())

	if len(d.Clusters()) == 0 {
		return
	}
	rows = nil
	for _, cl := range d.Clusters() {
		rows = append(rows, []string{
			cl.ID,
			strings.Repeat("  ", max(d.Depth(cl.ID), 0)) + cl.Label,
			strconv.Itoa(len(d.NodesIn(cl.ID))),
		})
	}
	fmt.Fprintln(w, newTable("Cluster", "Label", "Nodes").Rows(rows...).Render())
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return tableHeaderStyle
			}
			return tableCellStyle
		})
}
