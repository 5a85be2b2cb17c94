// Package diagram models architecture diagrams: labeled nodes grouped into
// clusters and joined by styled, labeled edges.
//
// # Overview
//
// A [Diagram] is a declarative description handed to a renderer. It has no
// runtime semantics: clusters are purely visual, and edges describe
// relationships (a network call, a query) only for the reader of the image.
//
// # Building
//
//	d := diagram.New("Architecture")
//	backend := d.NewCluster("Backend")
//	api := backend.NewNode("REST Service", icon.EC2)
//	db := d.NewCluster("Data").NewNode("PostgreSQL", icon.PostgreSQL)
//	err := d.Connect(api, db, diagram.Edge{Label: "SQLX query", Color: "orange"})
//
// Node and cluster IDs are derived from labels unless set explicitly through
// [Diagram.AddNode] and [Diagram.AddCluster].
//
// # Edge direction
//
// Every edge is stored From -> To. Forward and Reverse say which ends are
// drawn with an arrowhead, so a bidirectional link is a single edge with both
// flags set ([Diagram.ConnectBoth]).
//
// # Output naming
//
// [Diagram.Filename] derives the output base name from the title, so a diagram
// titled "Architecture" renders to architecture.png.
package diagram
