package graphviz

import (
	"bytes"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/archdiagram/pkg/diagram"
)

// Options configures DOT generation.
type Options struct {
	// Images draws nodes with their icon image when the file exists.
	// When false, or the image is missing, nodes use the icon's fallback shape.
	Images bool

	// BaseDir resolves relative icon image paths. Empty means the working directory.
	BaseDir string
}

// Default attributes, matching the look of common architecture diagram tools.
var (
	defaultGraphAttrs = diagram.Attrs{
		"pad":       "2.0",
		"nodesep":   "0.60",
		"ranksep":   "0.75",
		"fontname":  "Sans-Serif",
		"fontsize":  "15",
		"fontcolor": "#2D3436",
	}
	defaultNodeAttrs = diagram.Attrs{
		"shape":      "box",
		"style":      "rounded",
		"fixedsize":  "true",
		"width":      "1.4",
		"height":     "1.4",
		"labelloc":   "b",
		"imagescale": "true",
		"fontname":   "Sans-Serif",
		"fontsize":   "13",
		"fontcolor":  "#2D3436",
	}
	defaultEdgeAttrs = diagram.Attrs{
		"color":     "#7B8894",
		"fontcolor": "#2D3436",
		"fontname":  "Sans-Serif",
		"fontsize":  "13",
	}
	defaultClusterAttrs = diagram.Attrs{
		"shape":     "box",
		"style":     "rounded",
		"labeljust": "l",
		"pencolor":  "#AEB6BE",
		"fontname":  "Sans-Serif",
		"fontsize":  "12",
	}

	// clusterBackgrounds are cycled by nesting depth.
	clusterBackgrounds = []string{"#E5F5FD", "#EBF3E7", "#ECE8F6", "#FDF7E3"}
)

// iconHeight is the node height used when an icon image is drawn; each extra
// label line adds labelLineHeight.
const (
	iconHeight      = 1.9
	labelLineHeight = 0.4
)

// ToDOT converts a diagram to Graphviz DOT source.
//
// Clusters become "cluster_<id>" subgraphs, nested as declared. Nodes and edges
// are emitted in declaration order and attributes are sorted, so the same
// diagram always yields the same bytes. The result can be rendered with
// [RenderSVG], [RenderPNG], [RenderJPG] or [RenderSystem].
func ToDOT(d *diagram.Diagram, opts Options) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %s {\n", quote(d.Name))
	fmt.Fprintf(&buf, "  graph [%s];\n", fmtAttrs(graphAttrs(d)))
	fmt.Fprintf(&buf, "  node [%s];\n", fmtAttrs(merge(defaultNodeAttrs, d.NodeAttrs)))
	fmt.Fprintf(&buf, "  edge [%s];\n", fmtAttrs(merge(defaultEdgeAttrs, d.EdgeAttrs)))

	for _, c := range d.Children("") {
		buf.WriteString("\n")
		writeCluster(&buf, d, c, 0, opts)
	}

	if nodes := d.NodesIn(""); len(nodes) > 0 {
		buf.WriteString("\n")
		for _, n := range nodes {
			writeNode(&buf, "  ", n, opts)
		}
	}

	if len(d.Edges()) > 0 {
		buf.WriteString("\n")
	}
	for _, e := range d.Edges() {
		fmt.Fprintf(&buf, "  %s -> %s [%s];\n", quote(e.From), quote(e.To), fmtAttrs(edgeAttrs(e)))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func graphAttrs(d *diagram.Diagram) diagram.Attrs {
	a := merge(defaultGraphAttrs, nil)
	a["label"] = d.Name
	a["rankdir"] = string(d.Direction)
	a["splines"] = string(d.CurveStyle)
	return merge(a, d.GraphAttrs)
}

func writeCluster(buf *bytes.Buffer, d *diagram.Diagram, c *diagram.Cluster, depth int, opts Options) {
	indent := strings.Repeat("  ", depth+1)
	attrs := merge(defaultClusterAttrs, nil)
	attrs["label"] = c.Label
	attrs["bgcolor"] = clusterBackgrounds[depth%len(clusterBackgrounds)]
	attrs = merge(attrs, c.Attrs)

	fmt.Fprintf(buf, "%ssubgraph %s {\n", indent, quote("cluster_"+c.ID))
	fmt.Fprintf(buf, "%s  graph [%s];\n", indent, fmtAttrs(attrs))
	for _, n := range d.NodesIn(c.ID) {
		writeNode(buf, indent+"  ", n, opts)
	}
	for _, child := range d.Children(c.ID) {
		writeCluster(buf, d, child, depth+1, opts)
	}
	fmt.Fprintf(buf, "%s}\n", indent)
}

func writeNode(buf *bytes.Buffer, indent string, n *diagram.Node, opts Options) {
	fmt.Fprintf(buf, "%s%s [%s];\n", indent, quote(n.ID), fmtAttrs(nodeAttrs(n, opts)))
}

// nodeAttrs returns the per-node attributes: the icon image when one can be
// drawn, otherwise the icon's fallback shape filled with its colour.
func nodeAttrs(n *diagram.Node, opts Options) diagram.Attrs {
	a := diagram.Attrs{"label": n.Label}
	if path, ok := resolveImage(n.Icon.Image, opts); ok {
		lines := strings.Count(n.Label, "\n")
		a["shape"] = "none"
		a["image"] = path
		a["height"] = strconv.FormatFloat(iconHeight+labelLineHeight*float64(lines), 'f', 1, 64)
	} else {
		a["shape"] = n.Icon.Shape
		a["style"] = "rounded,filled"
		a["fillcolor"] = n.Icon.FillColor
		a["fontcolor"] = contrastColor(n.Icon.FillColor)
		a["labelloc"] = "c"
		a["fixedsize"] = "false"
		a["height"] = "0.9"
	}
	return merge(a, n.Attrs)
}

func edgeAttrs(e diagram.Edge) diagram.Attrs {
	a := diagram.Attrs{"dir": e.Dir()}
	if e.Color != "" {
		a["color"] = e.Color
	}
	if e.Label != "" {
		a["label"] = e.Label
	}
	if e.Style != "" {
		a["style"] = string(e.Style)
	}
	return merge(a, e.Attrs)
}

// resolveImage returns the absolute path of an icon image if images are enabled
// and the file exists.
func resolveImage(path string, opts Options) (string, bool) {
	if !opts.Images || path == "" {
		return "", false
	}
	if !filepath.IsAbs(path) && opts.BaseDir != "" {
		path = filepath.Join(opts.BaseDir, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	if info, err := os.Stat(abs); err != nil || info.IsDir() {
		return "", false
	}
	return abs, true
}

// MissingImages lists the icon images referenced by d that would not be drawn
// with opts, in node order. It is empty when opts.Images is false.
func MissingImages(d *diagram.Diagram, opts Options) []string {
	if !opts.Images {
		return nil
	}
	var missing []string
	for _, n := range d.Nodes() {
		if n.Icon.Image == "" {
			continue
		}
		if _, ok := resolveImage(n.Icon.Image, opts); !ok && !slices.Contains(missing, n.Icon.Image) {
			missing = append(missing, n.Icon.Image)
		}
	}
	return missing
}

// ImageStamps describes the icon image files drawn with opts, one
// "path size mtime" entry per distinct file in node order. A file replaced in
// place changes its entry while the DOT source stays the same.
func ImageStamps(d *diagram.Diagram, opts Options) []string {
	var stamps, seen []string
	for _, n := range d.Nodes() {
		abs, ok := resolveImage(n.Icon.Image, opts)
		if !ok || slices.Contains(seen, abs) {
			continue
		}
		seen = append(seen, abs)
		info, err := os.Stat(abs)
		if err != nil {
			continue
		}
		stamps = append(stamps, fmt.Sprintf("%s %d %d", abs, info.Size(), info.ModTime().UnixNano()))
	}
	return stamps
}

// contrastColor picks a dark or light label colour for text drawn on fill.
// Non-hex fills get the default dark text.
func contrastColor(fill string) string {
	const dark, light = "#2D3436", "#FFFFFF"
	hex := strings.TrimPrefix(fill, "#")
	if len(hex) != 6 {
		return dark
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return dark
	}
	r, g, b := float64(v>>16&0xFF), float64(v>>8&0xFF), float64(v&0xFF)
	if 0.299*r+0.587*g+0.114*b < 140 {
		return light
	}
	return dark
}

func merge(base, override diagram.Attrs) diagram.Attrs {
	out := make(diagram.Attrs, len(base)+len(override))
	maps.Copy(out, base)
	maps.Copy(out, override)
	return out
}

func fmtAttrs(a diagram.Attrs) string {
	parts := make([]string, 0, len(a))
	for _, k := range slices.Sorted(maps.Keys(a)) {
		parts = append(parts, k+"="+quote(a[k]))
	}
	return strings.Join(parts, ", ")
}

// quote returns s as a DOT double-quoted string. Newlines become the DOT
// centered line break.
func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
	return `"` + r.Replace(s) + `"`
}
