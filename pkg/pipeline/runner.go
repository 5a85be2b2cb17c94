package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archdiagram/pkg/cache"
	"github.com/matzehuels/archdiagram/pkg/diagram"
	"github.com/matzehuels/archdiagram/pkg/errors"
	"github.com/matzehuels/archdiagram/pkg/observability"
	"github.com/matzehuels/archdiagram/pkg/render/graphviz"
)

// Runner executes the pipeline with caching. It holds no per-run state, so
// one Runner can serve concurrent requests.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	// TTL for cached artifacts; zero means cache.DefaultTTL.
	TTL time.Duration
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer uses
// the default key scheme and a nil logger uses log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute validates d, builds its DOT source and renders every requested
// format.
func (r *Runner) Execute(ctx context.Context, d *diagram.Diagram, opts Options) (result *Result, err error) {
	if d == nil {
		return nil, errors.New(errors.ErrCodeInvalidDiagram, "no diagram")
	}
	if err := opts.ValidateAndSetDefaults(d); err != nil {
		return nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDiagram, err, "invalid diagram %q", d.Name)
	}

	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, d.Name, opts.Formats)
	defer func() {
		observability.Pipeline().OnRenderComplete(ctx, d.Name, opts.Formats, time.Since(start), err)
	}()

	if opts.Images && !opts.DrawImages() {
		r.Logger.Warn("icon images need the system engine, drawing fallback shapes", "engine", opts.Engine)
	}
	gvOpts := graphviz.Options{Images: opts.DrawImages(), BaseDir: opts.BaseDir}

	result = &Result{
		Diagram:       d,
		DOT:           graphviz.ToDOT(d, gvOpts),
		Formats:       opts.Formats,
		Artifacts:     make(map[string][]byte, len(opts.Formats)),
		MissingImages: graphviz.MissingImages(d, gvOpts),
		Stats: Stats{
			NodeCount:    d.NodeCount(),
			EdgeCount:    d.EdgeCount(),
			ClusterCount: len(d.Clusters()),
		},
	}
	result.DOTHash = cache.Hash([]byte(result.DOT))
	if stamps := graphviz.ImageStamps(d, gvOpts); len(stamps) > 0 {
		result.ImagesHash = cache.Hash([]byte(strings.Join(stamps, "\n")))
	}

	for _, path := range result.MissingImages {
		r.Logger.Warn("icon image not found, using fallback shape", "path", path)
	}

	for _, format := range opts.Formats {
		formatStart := time.Now()
		data, hit, err := r.RenderWithCacheInfo(ctx, result, format, opts)
		observability.Pipeline().OnFormatComplete(ctx, format, len(data), hit, time.Since(formatStart), err)
		if err != nil {
			return nil, err
		}
		result.Artifacts[format] = data
		if hit {
			result.CacheInfo.Hits = append(result.CacheInfo.Hits, format)
		}
	}
	result.CacheInfo.RenderHit = len(result.CacheInfo.Hits) == len(opts.Formats)
	result.Stats.RenderTime = time.Since(start)

	r.Logger.Debug("rendered diagram",
		"name", d.Name,
		"formats", opts.Formats,
		"cached", len(result.CacheInfo.Hits),
		"duration", result.Stats.RenderTime)

	return result, nil
}

func (r *Runner) artifactKey(res *Result, format string, opts Options) string {
	k := opts.ArtifactKeyOpts(format)
	k.ImagesHash = res.ImagesHash
	return r.Keyer.ArtifactKey(res.DOTHash, k)
}

// RenderWithCacheInfo renders one format of a prepared result, using the
// cache unless opts.Refresh is set. It reports whether the bytes were cached.
// dot and json are cheap to produce and are never cached.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, res *Result, format string, opts Options) ([]byte, bool, error) {
	if format == FormatDOT || format == FormatJSON {
		data, err := Render(ctx, res.Diagram, res.DOT, format, opts)
		return data, false, err
	}

	key := r.artifactKey(res, format, opts)
	if !opts.Refresh {
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil {
			r.Logger.Debug("cache read failed", "error", err)
		}
		if err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return data, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	data, err := Render(ctx, res.Diagram, res.DOT, format, opts)
	if err != nil {
		return nil, false, err
	}

	if err := r.Cache.Set(ctx, key, data, r.ttl()); err != nil {
		r.Logger.Debug("cache write failed", "error", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}
	return data, false, nil
}

func (r *Runner) ttl() time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return cache.DefaultTTL
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// Write saves each artifact as <dir>/<diagram filename>.<format> and returns
// the paths in format order. dir is created if needed.
func Write(result *Result, dir string) ([]string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	base := result.Diagram.Filename()
	paths := make([]string, 0, len(result.Formats))
	for _, format := range result.Formats {
		path := filepath.Join(dir, base+"."+format)
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
