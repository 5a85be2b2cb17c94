// Package cli implements the archdiagram command-line interface.
//
// Running archdiagram without a subcommand renders the built-in architecture
// diagram to architecture.png in the working directory. The subcommands render
// definition files, print DOT, export and inspect diagrams, list icons and
// serve diagrams over HTTP.
//
// # Commands
//
//   - render: Render the built-in diagram or a definition file
//   - dot: Print the Graphviz DOT source
//   - export: Write a diagram as a JSON, TOML or YAML definition
//   - inspect: Summarize a diagram, or browse it interactively with -i
//   - icons: List the icon catalog
//   - serve: Serve diagrams over HTTP
//   - cache: Manage the render cache
//
// # Configuration
//
// Defaults are read from $XDG_CONFIG_HOME/archdiagram/config.toml when it
// exists. Command-line flags override file values.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// logs pipeline, cache and HTTP events.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/archdiagram/pkg/architecture"
	"github.com/matzehuels/archdiagram/pkg/buildinfo"
	"github.com/matzehuels/archdiagram/pkg/cache"
	"github.com/matzehuels/archdiagram/pkg/diagram"
	dio "github.com/matzehuels/archdiagram/pkg/io"
	"github.com/matzehuels/archdiagram/pkg/observability"
	"github.com/matzehuels/archdiagram/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "archdiagram"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config holds file defaults. It is loaded before a command runs.
	Config *Config

	configPath string
}

// New creates a new CLI instance with a logger writing to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: DefaultConfig(),
	}
}

// SetLogLevel updates the logger's level. At debug level the pipeline, cache
// and HTTP hooks log through the CLI logger.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		observability.NewLogHooks(c.Logger).Register()
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "archdiagram renders system architecture diagrams",
		Long: `archdiagram renders system architecture diagrams with Graphviz.

Without a subcommand it renders the built-in architecture diagram to
architecture.png in the current directory.`,
		Version:      buildinfo.Version,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), nil, c.renderDefaults())
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default "+defaultConfigHint()+")")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.dotCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.iconsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())
	registerCompletions(root)

	return root
}

// loadConfig reads the config file named by --config, or the default one
// when it exists.
func (c *CLI) loadConfig() error {
	path := c.configPath
	explicit := path != ""
	if !explicit {
		p, err := configPath()
		if err != nil {
			return nil
		}
		path = p
	}

	cfg, err := LoadConfig(path)
	if errors.Is(err, os.ErrNotExist) && !explicit {
		return nil
	}
	if err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("loaded config", "path", path)
	return nil
}

// =============================================================================
// Diagram Loading
// =============================================================================

// loadDiagram returns the built-in diagram when args is empty, or the
// definition file named by args[0]. The second value is the directory icon
// image paths are resolved against.
func loadDiagram(args []string) (*diagram.Diagram, string, error) {
	if len(args) == 0 {
		d, err := architecture.Diagram()
		if err != nil {
			return nil, "", fmt.Errorf("build diagram: %w", err)
		}
		return d, ".", nil
	}
	d, err := dio.Import(args[0])
	if err != nil {
		return nil, "", err
	}
	return d, filepath.Dir(args[0]), nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner using the configured cache backend.
// noCache forces the null cache. An unreachable Redis is not fatal: the
// runner falls back to rendering without a cache.
func (c *CLI) newRunner(ctx context.Context, backend, redisURL string, noCache bool) (*pipeline.Runner, error) {
	if noCache {
		backend = backendNone
	}
	if backend == backendRedis {
		cache.SetRedisLogger(c.Logger)
	}
	store, err := newCache(ctx, backend, redisURL)
	if errors.Is(err, cache.ErrUnavailable) {
		c.Logger.Warn("cache unavailable, rendering without cache", "backend", backend, "error", err)
		store, err = cache.NewNullCache(), nil
	}
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(store, nil, c.Logger)
	r.TTL = c.Config.Cache.TTL.Duration
	return r, nil
}

// Cache backends.
const (
	backendNone  = "none"
	backendFile  = "file"
	backendRedis = "redis"
)

func newCache(ctx context.Context, backend, redisURL string) (cache.Cache, error) {
	switch backend {
	case backendNone:
		return cache.NewNullCache(), nil
	case "", backendFile:
		dir, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	case backendRedis:
		return cache.NewRedisCache(ctx, redisURL)
	default:
		return nil, fmt.Errorf("invalid cache backend: %s (must be 'none', 'file' or 'redis')", backend)
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/archdiagram/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// configPath returns the config file path using XDG standard
// (~/.config/archdiagram/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

func defaultConfigHint() string {
	return "$XDG_CONFIG_HOME/" + appName + "/config.toml"
}
