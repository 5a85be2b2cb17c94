package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/archdiagram/pkg/cache"
	"github.com/matzehuels/archdiagram/pkg/diagram"
	"github.com/matzehuels/archdiagram/pkg/server"
)

type serveOpts struct {
	addr     string
	backend  string
	redisURL string
	prefix   string
	engine   string
	images   bool
	timeout  time.Duration
}

// serveCommand creates the serve command, which runs the HTTP server.
func (c *CLI) serveCommand() *cobra.Command {
	opts := &serveOpts{}

	cmd := &cobra.Command{
		Use:   "serve [file]",
		Short: "Serve diagrams over HTTP",
		Long: `Serve the built-in diagram, or a definition file, over HTTP.

A definition file is re-read on every request, so edits show up without a
restart. POST /render renders definitions sent in the request body.

Renders are cached. Use --cache redis to share the cache between instances.`,
		Example: `  archdiagram serve
  archdiagram serve stack.yaml --addr :9000
  archdiagram serve --cache redis --redis-url redis://localhost:6379/0`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.applyServeConfig(cmd, opts)
			ctx := cmd.Context()

			runner, err := c.newRunner(ctx, opts.backend, opts.redisURL, false)
			if err != nil {
				return err
			}
			defer runner.Close()
			if opts.prefix != "" {
				runner.Keyer = cache.NewScopedKeyer(nil, opts.prefix)
			}

			baseDir := "."
			if len(args) > 0 {
				// Fail fast on a broken file; later requests report errors.
				_, dir, err := loadDiagram(args)
				if err != nil {
					return err
				}
				baseDir = dir
			}

			srv, err := server.New(server.Config{
				Addr:   opts.addr,
				Runner: runner,
				Logger: c.Logger,
				Diagram: func() (*diagram.Diagram, error) {
					d, _, err := loadDiagram(args)
					return d, err
				},
				Engine:        opts.engine,
				Images:        opts.images,
				BaseDir:       baseDir,
				RenderTimeout: opts.timeout,
			})
			if err != nil {
				return err
			}

			printInfo("Serving on %s", StyleLink.Render(listenURL(srv.Addr())))
			printDetail("cache: %s · engine: %s", opts.backend, opts.engine)
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default \""+server.DefaultAddr+"\")")
	cmd.Flags().StringVar(&opts.backend, "cache", "", "cache backend: none, file (default), redis")
	cmd.Flags().StringVar(&opts.redisURL, "redis-url", "", "redis address or URL (default localhost:6379)")
	cmd.Flags().StringVar(&opts.prefix, "cache-prefix", "", "namespace for cache keys shared with other instances")
	cmd.Flags().StringVar(&opts.engine, "engine", "", "graphviz engine: wasm (default), system")
	cmd.Flags().BoolVar(&opts.images, "images", false, "draw icon images (requires --engine system)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", server.DefaultRenderTimeout, "render timeout per request")

	return cmd
}

// applyServeConfig fills flags the user did not set from the config file.
func (c *CLI) applyServeConfig(cmd *cobra.Command, opts *serveOpts) {
	cfg := c.Config
	if !cmd.Flags().Changed("addr") {
		opts.addr = cfg.Server.Addr
	}
	if !cmd.Flags().Changed("cache") {
		opts.backend = cfg.Cache.Backend
	}
	if !cmd.Flags().Changed("redis-url") {
		opts.redisURL = cfg.Cache.RedisURL
	}
	if !cmd.Flags().Changed("engine") {
		opts.engine = cfg.Engine
	}
	if !cmd.Flags().Changed("images") {
		opts.images = cfg.Images
	}
}

// listenURL turns a listen address into a URL for display.
func listenURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
