// Package pipeline turns a diagram into output files.
//
// This is the single code path shared by the CLI and the HTTP server:
//
//  1. Validate the diagram and the options.
//  2. Build the Graphviz DOT source (see [graphviz.ToDOT]).
//  3. Render each requested format, consulting the artifact cache first.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, d, pipeline.Options{Formats: []string{"png", "svg"}})
//	if err != nil {
//	    return err
//	}
//	paths, err := pipeline.Write(result, ".")
//
// # Formats and engines
//
// png, svg and jpg are rendered by Graphviz. pdf is rendered by the system
// engine directly, or converted from SVG with rsvg-convert under the wasm
// engine. dot is the generated DOT source and json is the diagram definition.
//
// The wasm engine (default) runs Graphviz in-process and needs nothing
// installed, but cannot draw icon images. The system engine shells out to
// the dot binary and draws images when Options.Images is set.
//
// [graphviz.ToDOT]: github.com/matzehuels/archdiagram/pkg/render/graphviz.ToDOT
package pipeline

import (
	"strings"
	"time"

	"github.com/matzehuels/archdiagram/pkg/cache"
	"github.com/matzehuels/archdiagram/pkg/diagram"
	"github.com/matzehuels/archdiagram/pkg/errors"
)

// Format constants for output formats.
const (
	FormatPNG  = "png"
	FormatSVG  = "svg"
	FormatJPG  = "jpg"
	FormatPDF  = "pdf"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// Engine constants.
const (
	EngineWASM   = "wasm"
	EngineSystem = "system"
)

const (
	// DefaultFormat matches the file the diagramming tool has always produced.
	DefaultFormat = FormatPNG

	// DefaultEngine needs no system dependency.
	DefaultEngine = EngineWASM
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPNG:  true,
	FormatSVG:  true,
	FormatJPG:  true,
	FormatPDF:  true,
	FormatDOT:  true,
	FormatJSON: true,
}

// FormatNames lists the output formats in display order.
var FormatNames = []string{FormatPNG, FormatSVG, FormatJPG, FormatPDF, FormatDOT, FormatJSON}

// ValidEngines is the set of supported render engines.
var ValidEngines = map[string]bool{
	EngineWASM:   true,
	EngineSystem: true,
}

// ContentTypes maps each format to the MIME type it is served with.
var ContentTypes = map[string]string{
	FormatPNG:  "image/png",
	FormatSVG:  "image/svg+xml",
	FormatJPG:  "image/jpeg",
	FormatPDF:  "application/pdf",
	FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	FormatJSON: "application/json",
}

// =============================================================================
// Options
// =============================================================================

// Options configures a pipeline run.
type Options struct {
	// Formats to produce. Empty means the diagram's own formats, or png.
	Formats []string `json:"formats,omitempty"`
	// Engine is wasm (default) or system.
	Engine string `json:"engine,omitempty"`
	// Images draws icon images where the files exist. System engine only.
	Images bool `json:"images,omitempty"`
	// Scale renders png through SVG at this factor when rsvg-convert is
	// available. 0 and 1 mean native resolution.
	Scale float64 `json:"scale,omitempty"`
	// Refresh bypasses cached artifacts.
	Refresh bool `json:"refresh,omitempty"`

	// BaseDir resolves relative icon image paths.
	BaseDir string `json:"-"`
}

// Result holds the outputs of one run.
type Result struct {
	Diagram *diagram.Diagram

	// DOT is the Graphviz source every format was rendered from.
	DOT string
	// DOTHash is the content hash of DOT, used for cache keys and ETags.
	DOTHash string
	// ImagesHash fingerprints the icon image files drawn into the artifacts.
	// Empty when no images are drawn.
	ImagesHash string

	// Formats lists the produced formats in request order.
	Formats []string
	// Artifacts maps format to bytes.
	Artifacts map[string][]byte

	// MissingImages lists icon images that were requested but not found.
	MissingImages []string

	Stats     Stats
	CacheInfo CacheInfo
}

// ContentHash identifies the rendered content: the DOT source plus, when
// icon images are drawn, the image files.
func (r *Result) ContentHash() string {
	if r.ImagesHash == "" {
		return r.DOTHash
	}
	return cache.Hash([]byte(r.DOTHash + "\n" + r.ImagesHash))
}

// Stats contains run statistics.
type Stats struct {
	NodeCount    int
	EdgeCount    int
	ClusterCount int
	RenderTime   time.Duration
}

// CacheInfo records which artifacts came from the cache.
type CacheInfo struct {
	Hits      []string // formats served from cache
	RenderHit bool     // every format was cached
}

// =============================================================================
// Validation
// =============================================================================

// ValidateFormat checks that a format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: %s)", format, strings.Join(FormatNames, ", "))
	}
	return nil
}

// ValidateFormats checks every format. An empty list is valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateEngine checks that an engine is supported.
func ValidateEngine(engine string) error {
	if !ValidEngines[engine] {
		return errors.New(errors.ErrCodeInvalidEngine,
			"invalid engine: %q (must be one of: wasm, system)", engine)
	}
	return nil
}

// ParseFormats splits a comma-separated list, lower-cases each entry and
// drops blanks and duplicates.
func ParseFormats(s string) []string {
	var out []string
	seen := map[string]bool{}
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// ValidateAndSetDefaults fills in formats and engine and validates them.
// d supplies the default formats and may be nil.
func (o *Options) ValidateAndSetDefaults(d *diagram.Diagram) error {
	if len(o.Formats) == 0 {
		if d != nil && len(d.Formats) > 0 {
			o.Formats = append([]string(nil), d.Formats...)
		} else {
			o.Formats = []string{DefaultFormat}
		}
	}
	if o.Engine == "" {
		o.Engine = DefaultEngine
	}
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must not be negative")
	}
	if err := ValidateEngine(o.Engine); err != nil {
		return err
	}
	return ValidateFormats(o.Formats)
}

// DrawImages reports whether icon images will actually be drawn.
func (o *Options) DrawImages() bool {
	return o.Images && o.Engine == EngineSystem
}

// ArtifactKeyOpts returns cache key options for one format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Format: format,
		Engine: o.Engine,
		Images: o.DrawImages(),
	}
	if format == FormatPNG {
		k.Scale = o.Scale
	}
	return k
}
