package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() error: %v", err)
	}
	if len(cfg.Formats) != 1 || cfg.Formats[0] != "png" {
		t.Errorf("Formats = %v, want [png]", cfg.Formats)
	}
	if cfg.Engine != "wasm" || cfg.Cache.Backend != backendFile || cfg.Server.Addr != ":8080" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
formats = ["SVG", "pdf"]
engine = "system"
images = true
output_dir = "out"

[cache]
backend = "redis"
ttl = "24h"
redis_url = "redis://cache:6379/1"

[server]
addr = ":9000"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if strings.Join(cfg.Formats, ",") != "svg,pdf" {
		t.Errorf("Formats = %v", cfg.Formats)
	}
	if cfg.Engine != "system" || !cfg.Images || cfg.OutputDir != "out" {
		t.Errorf("top-level values not loaded: %+v", cfg)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.TTL.Duration != 24*time.Hour || cfg.Cache.RedisURL != "redis://cache:6379/1" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
}

func TestLoadConfigPartial(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `images = true`))
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Images {
		t.Error("Images not loaded")
	}
	if cfg.Engine != "wasm" || cfg.Server.Addr != ":8080" {
		t.Errorf("missing keys should keep defaults: %+v", cfg)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad format", `formats = ["gif"]`, "invalid format"},
		{"bad engine", `engine = "neato"`, "invalid engine"},
		{"bad backend", "[cache]\nbackend = \"memcached\"", "invalid cache backend"},
		{"bad ttl", "[cache]\nttl = \"soon\"", "invalid duration"},
		{"negative ttl", "[cache]\nttl = \"-1h\"", "negative"},
		{"unknown key", `colour = "blue"`, "unknown keys: colour"},
		{"malformed", `formats = [`, "config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("LoadConfig() should fail")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("LoadConfig() error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadConfigMissing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadConfig(missing) error = %v, want os.ErrNotExist", err)
	}
}

func TestDurationText(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("90m")); err != nil {
		t.Fatal(err)
	}
	if d.Duration != 90*time.Minute {
		t.Errorf("Duration = %v", d.Duration)
	}
	text, _ := d.MarshalText()
	if string(text) != "1h30m0s" {
		t.Errorf("MarshalText() = %q", text)
	}
}
