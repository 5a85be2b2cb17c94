package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/archdiagram/pkg/pipeline"
	"github.com/matzehuels/archdiagram/pkg/server"
)

// Config holds the defaults read from config.toml.
//
//	formats = ["png", "svg"]
//	engine = "wasm"
//	images = false
//	output_dir = "."
//
//	[cache]
//	backend = "file"       # none, file or redis
//	ttl = "168h"
//	redis_url = "redis://localhost:6379/0"
//
//	[server]
//	addr = ":8080"
type Config struct {
	Formats   []string     `toml:"formats"`
	Engine    string       `toml:"engine"`
	Images    bool         `toml:"images"`
	OutputDir string       `toml:"output_dir"`
	Cache     CacheConfig  `toml:"cache"`
	Server    ServerConfig `toml:"server"`
}

// CacheConfig selects the render cache backend.
type CacheConfig struct {
	Backend  string   `toml:"backend"`
	TTL      Duration `toml:"ttl"`
	RedisURL string   `toml:"redis_url"`
}

// ServerConfig holds defaults for the serve command.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration written as a string ("24h", "90m") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Formats:   []string{pipeline.DefaultFormat},
		Engine:    pipeline.DefaultEngine,
		OutputDir: ".",
		Cache:     CacheConfig{Backend: backendFile},
		Server:    ServerConfig{Addr: server.DefaultAddr},
	}
}

// LoadConfig reads a TOML config file. Keys missing from the file keep their
// defaults; unknown keys are an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks formats, engine and cache backend.
func (c *Config) Validate() error {
	for i, f := range c.Formats {
		c.Formats[i] = strings.ToLower(strings.TrimSpace(f))
	}
	if err := pipeline.ValidateFormats(c.Formats); err != nil {
		return err
	}
	if err := pipeline.ValidateEngine(c.Engine); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case backendNone, backendFile, backendRedis:
	default:
		return fmt.Errorf("invalid cache backend: %s (must be 'none', 'file' or 'redis')", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return fmt.Errorf("cache ttl must not be negative")
	}
	return nil
}
