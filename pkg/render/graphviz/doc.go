// Package graphviz turns diagrams into Graphviz DOT and renders DOT to images.
//
// # Usage
//
// Convert a diagram to DOT, then render it:
//
//	dot := graphviz.ToDOT(d, graphviz.Options{})
//	png, err := graphviz.RenderPNG(ctx, dot)
//	svg, err := graphviz.RenderSVG(ctx, dot)
//
// # Engines
//
// [RenderSVG], [RenderPNG] and [RenderJPG] run Graphviz in-process via
// [github.com/goccy/go-graphviz] (WebAssembly, no system dependency). The
// in-process engine cannot load image files, so nodes are drawn with their
// icon's fallback shape.
//
// [RenderSystem] pipes DOT through the "dot" binary. Combined with
// Options.Images it draws icon images.
//
// # DOT format
//
// The generated DOT sets the layout direction (rankdir), edge routing
// (splines) and the diagram title as graph label. Clusters are subgraphs
// whose background colour cycles with nesting depth. Diagram-level attribute
// overrides win over the defaults.
package graphviz
