package diagram

import (
	"strings"

	"github.com/matzehuels/archdiagram/pkg/diagram/icon"
)

// Direction is the main flow direction of the layout (Graphviz rankdir).
type Direction string

const (
	TopBottom Direction = "TB"
	BottomTop Direction = "BT"
	LeftRight Direction = "LR"
	RightLeft Direction = "RL"
)

// Valid reports whether d is one of the four known directions.
func (d Direction) Valid() bool {
	switch d {
	case TopBottom, BottomTop, LeftRight, RightLeft:
		return true
	}
	return false
}

// CurveStyle controls how edges are routed (Graphviz splines).
type CurveStyle string

const (
	Ortho    CurveStyle = "ortho"
	Curved   CurveStyle = "curved"
	Spline   CurveStyle = "spline"
	Polyline CurveStyle = "polyline"
)

// Valid reports whether c is a known curve style.
func (c CurveStyle) Valid() bool {
	switch c {
	case Ortho, Curved, Spline, Polyline:
		return true
	}
	return false
}

// EdgeStyle is the stroke used to draw an edge.
type EdgeStyle string

const (
	StyleSolid  EdgeStyle = "solid"
	StyleDashed EdgeStyle = "dashed"
	StyleDotted EdgeStyle = "dotted"
	StyleBold   EdgeStyle = "bold"
)

// Valid reports whether s is a known edge style. The empty style is valid and
// means solid.
func (s EdgeStyle) Valid() bool {
	switch s {
	case "", StyleSolid, StyleDashed, StyleDotted, StyleBold:
		return true
	}
	return false
}

// Attrs holds raw Graphviz attributes that override the renderer's defaults.
type Attrs map[string]string

// Clone returns a copy of a. A nil map clones to nil.
func (a Attrs) Clone() Attrs {
	if a == nil {
		return nil
	}
	out := make(Attrs, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Cluster is a visual grouping of nodes. Clusters may nest through Parent.
// They carry no semantics beyond the drawing.
type Cluster struct {
	ID     string
	Label  string
	Parent string // ID of the enclosing cluster, empty for top-level clusters
	Attrs  Attrs

	d *Diagram
}

// Node is a labeled, icon-typed box representing one system component.
type Node struct {
	ID      string
	Label   string
	Icon    icon.Icon
	Cluster string // ID of the enclosing cluster, empty when ungrouped
	Attrs   Attrs
}

// Edge is a directed connector between two nodes.
//
// Forward and Reverse record which ends carry an arrowhead. An edge declared
// as "a >> b" is Forward, "a << b" is Reverse, and "a >> Edge() << b" is both.
type Edge struct {
	From  string
	To    string
	Label string
	Color string
	Style EdgeStyle

	Forward bool
	Reverse bool

	Attrs Attrs
}

// Dir returns the Graphviz dir attribute for the edge's arrowheads.
func (e Edge) Dir() string {
	switch {
	case e.Forward && e.Reverse:
		return "both"
	case e.Forward:
		return "forward"
	case e.Reverse:
		return "back"
	default:
		return "none"
	}
}

// DirFromString sets Forward and Reverse from a Graphviz dir value.
// It reports false if s is not one of forward, back, both or none.
func (e *Edge) DirFromString(s string) bool {
	switch strings.ToLower(s) {
	case "", "forward":
		e.Forward, e.Reverse = true, false
	case "back":
		e.Forward, e.Reverse = false, true
	case "both":
		e.Forward, e.Reverse = true, true
	case "none":
		e.Forward, e.Reverse = false, false
	default:
		return false
	}
	return true
}
