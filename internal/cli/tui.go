package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/archdiagram/pkg/diagram"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)

	detailBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1).
			MarginLeft(2)
)

// =============================================================================
// NodeBrowserModel - Interactive node browser
// =============================================================================

// NodeBrowserModel is the bubbletea model for browsing a diagram's nodes and
// the edges entering and leaving them.
type NodeBrowserModel struct {
	Diagram *diagram.Diagram
	Nodes   []*diagram.Node
	Cursor  int
	Height  int
	Offset  int
}

// NewNodeBrowserModel creates a browser positioned on the first node.
func NewNodeBrowserModel(d *diagram.Diagram) NodeBrowserModel {
	return NodeBrowserModel{
		Diagram: d,
		Nodes:   d.Nodes(),
		Height:  15,
	}
}

func (m NodeBrowserModel) Init() tea.Cmd {
	return nil
}

func (m NodeBrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Nodes)-1 {
				m.Cursor++
			}
		case "home", "g":
			m.Cursor = 0
		case "end", "G":
			if len(m.Nodes) > 0 {
				m.Cursor = len(m.Nodes) - 1
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	m.scroll()
	return m, nil
}

// scroll keeps the cursor inside the visible window.
func (m *NodeBrowserModel) scroll() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m NodeBrowserModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Diagram.Name))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  g/G first/last  q quit"))
	b.WriteString("\n\n")

	if len(m.Nodes) == 0 {
		b.WriteString(listDimStyle.Render("  no nodes"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Nodes))
	var list strings.Builder
	for i := m.Offset; i < end; i++ {
		line := "  " + singleLine(m.Nodes[i].Label)
		if i == m.Cursor {
			list.WriteString(listSelectedStyle.Render("▸ " + singleLine(m.Nodes[i].Label)))
		} else {
			list.WriteString(listNormalStyle.Render(line))
		}
		list.WriteString("\n")
	}
	list.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Nodes))))

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, list.String(), detailBoxStyle.Render(m.detail())))
	b.WriteString("\n")
	return b.String()
}

// detail describes the selected node and its edges.
func (m NodeBrowserModel) detail() string {
	n := m.Nodes[m.Cursor]
	var b strings.Builder

	b.WriteString(StyleTitle.Render(singleLine(n.Label)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("id      ") + StyleValue.Render(n.ID) + "\n")
	b.WriteString(listDimStyle.Render("icon    ") + StyleValue.Render(iconName(n)) + "\n")
	b.WriteString(listDimStyle.Render("cluster ") + StyleValue.Render(clusterPath(m.Diagram, n.Cluster)) + "\n")

	b.WriteString("\n" + StyleHighlight.Render("Inbound") + "\n")
	writeEdges(&b, m.Diagram, m.Diagram.Incoming(n.ID), func(e diagram.Edge) string { return e.From })

	b.WriteString("\n" + StyleHighlight.Render("Outbound") + "\n")
	writeEdges(&b, m.Diagram, m.Diagram.Outgoing(n.ID), func(e diagram.Edge) string { return e.To })

	return b.String()
}

func writeEdges(b *strings.Builder, d *diagram.Diagram, edges []diagram.Edge, other func(diagram.Edge) string) {
	if len(edges) == 0 {
		b.WriteString(listDimStyle.Render("  none") + "\n")
		return
	}
	for _, e := range edges {
		peer := other(e)
		if n, ok := d.Node(peer); ok {
			peer = singleLine(n.Label)
		}
		line := fmt.Sprintf("  %s %s", edgeArrow(e), peer)
		if e.Label != "" {
			line += listDimStyle.Render("  " + e.Label)
		}
		b.WriteString(line + "\n")
	}
}

// =============================================================================
// Helpers
// =============================================================================

// edgeArrow draws the arrowheads of an edge as text.
func edgeArrow(e diagram.Edge) string {
	switch e.Dir() {
	case "both":
		return "<->"
	case "back":
		return "<--"
	case "none":
		return "---"
	default:
		return "-->"
	}
}

// clusterPath returns the labels from the outermost cluster down to id,
// joined with " / ". Ungrouped nodes return "-".
func clusterPath(d *diagram.Diagram, id string) string {
	var parts []string
	seen := map[string]bool{}
	for id != "" && !seen[id] {
		seen[id] = true
		c, ok := d.ClusterByID(id)
		if !ok {
			break
		}
		parts = append([]string{c.Label}, parts...)
		id = c.Parent
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " / ")
}

func iconName(n *diagram.Node) string {
	if ref := n.Icon.Ref(); ref != "" {
		return ref
	}
	return "-"
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
