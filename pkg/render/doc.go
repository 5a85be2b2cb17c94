// Package render converts rendered SVG into other output formats.
//
// Diagram layout and rendering live in the [graphviz] subpackage; this
// package holds the format conversions that sit on top of it:
//
//	svg, err := graphviz.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// Both conversions shell out to rsvg-convert (librsvg); [ConvertAvailable]
// reports whether it is installed.
//
// [graphviz]: github.com/matzehuels/archdiagram/pkg/render/graphviz
package render
