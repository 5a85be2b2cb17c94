// Package io reads and writes diagram definitions as JSON, TOML or YAML.
//
// # Overview
//
// A definition is the data form of a [diagram.Diagram]. It lets a diagram be
// kept next to the code it documents, edited without recompiling, and posted
// to the render server.
//
// # Format
//
// The three encodings share one schema. In YAML:
//
//	name: Web Services
//	direction: LR        # TB, BT, LR (default) or RL
//	curve_style: ortho   # ortho (default), curved, spline or polyline
//	formats: [png, svg]
//	graph_attrs: {pad: "1.0"}
//	clusters:
//	  - {id: backend, label: Backend}
//	  - {id: workers, label: Workers, parent: backend}
//	nodes:
//	  - {id: api, label: REST Service, icon: aws.compute.ec2, cluster: backend}
//	  - {id: db, label: PostgreSQL, icon: onprem.database.postgresql}
//	  - {label: Worker, icon: "custom:./worker.png", cluster: workers}
//	edges:
//	  - {from: api, to: db, label: SQLX query, color: orange}
//	  - {from: api, to: worker, style: dotted, dir: both}
//
// Node and cluster IDs are optional and derived from labels like the builder
// API does. Icons are catalog references ("provider.category.kind") or
// "custom:<path>"; a catalog icon may carry an image override in "image".
// Edge "dir" is forward (default), back, both or none.
//
// # Errors
//
// Problems with individual entries are reported as [*FieldError] carrying
// the file path and the field path, e.g. "nodes[2].icon". Use errors.Is to
// test for the underlying diagram sentinel errors.
//
// # Round trip
//
// [Write] emits every cluster, node and edge with explicit IDs, so
// Write followed by [Read] reproduces an equivalent diagram.
//
// [diagram.Diagram]: github.com/matzehuels/archdiagram/pkg/diagram.Diagram
package io
