// Package pkg provides the libraries behind archdiagram, a tool that draws
// system architecture diagrams with Graphviz.
//
// # Overview
//
// A diagram is a set of icon-typed nodes, optionally grouped into nested
// clusters, joined by styled and labeled edges. The pkg directory is
// organized into four areas:
//
//  1. [diagram] - Domain model (diagrams, clusters, nodes, edges, icons)
//  2. [render] - Graphviz DOT generation and rendering, format conversion
//  3. [pipeline] - Orchestration (validate → DOT → render → cache)
//  4. [server] - HTTP front end for the pipeline
//
// # Architecture
//
// The typical data flow:
//
//	Go code ([architecture]) or definition file ([io])
//	         ↓
//	    [diagram] package (build + validate)
//	         ↓
//	    [render/graphviz] package (DOT source)
//	         ↓
//	    [pipeline] package (render each format, cache artifacts)
//	         ↓
//	    PNG/SVG/JPG/PDF/DOT/JSON output
//
// # Quick Start
//
// Build a diagram and render it:
//
//	d := diagram.New("Web Services")
//	api := d.NewCluster("Backend").NewNode("REST Service", icon.EC2)
//	db := d.NewNode("PostgreSQL", icon.PostgreSQL)
//	_ = d.Connect(api, db, diagram.Edge{Label: "SQLX query"})
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, err := runner.Execute(ctx, d, pipeline.Options{Formats: []string{"svg"}})
//	paths, err := pipeline.Write(result, ".")
//
// # Main Packages
//
// [diagram] - Diagrams, clusters, nodes and edges with builder methods and
// validation. [diagram/icon] holds the icon catalog and custom image icons.
//
// [architecture] - The built-in system architecture diagram.
//
// [io] - JSON, TOML and YAML diagram definitions.
//
// [render/graphviz] - DOT generation, in-process (WebAssembly) and system
// Graphviz rendering. [render] converts SVG to PDF and scaled PNG.
//
// [pipeline] - Validation, defaults, rendering and caching shared by the CLI
// and the server.
//
// [cache] - Render cache backends (null, file, Redis) and key schemes.
//
// [server] - chi-based HTTP server.
//
// [errors] - Coded errors mapped to exit messages and HTTP statuses.
//
// [observability] - Hooks for pipeline, cache and HTTP events.
//
// [buildinfo] - Version information set at build time.
//
// # Testing
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/diagram/...   # Specific package
//	go test -run Example        # Examples only
//
// [diagram]: https://pkg.go.dev/github.com/matzehuels/archdiagram/pkg/diagram
// [diagram/icon]: https://pkg.go.dev/github.com/matzehuels/archdiagram/pkg/diagram/icon
// [architecture]: https://pkg.go.dev/github.com/matzehuels/archdiagram/pkg/architecture
// [io]: https://pkg.go.dev/github.com/matzehuels/archdiagram/pkg/io
// [render]: https://pkg.go.dev/github.com/matzehuels/archdiagram/pkg/render
// [render/graphviz]: https://pkg.go.dev/github.com/matzehuels/archdiagram/pkg/render/graphviz
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/archdiagram/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/archdiagram/pkg/cache
// [server]: https://pkg.go.dev/github.com/matzehuels/archdiagram/pkg/server
// [errors]: https://pkg.go.dev/github.com/matzehuels/archdiagram/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/archdiagram/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/archdiagram/pkg/buildinfo
package pkg
