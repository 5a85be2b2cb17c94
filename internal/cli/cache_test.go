package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archdiagram/pkg/cache"
)

func TestClearCache(t *testing.T) {
	dir := t.TempDir()
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for _, key := range []string{"a", "b", "c"} {
		if err := fc.Set(ctx, key, []byte(key), time.Hour); err != nil {
			t.Fatal(err)
		}
	}

	n, err := clearCache(dir)
	if err != nil {
		t.Fatalf("clearCache() error: %v", err)
	}
	if n != 3 {
		t.Errorf("clearCache() = %d, want 3", n)
	}
	if _, hit, _ := fc.Get(ctx, "a"); hit {
		t.Error("entry still cached after clear")
	}
}

func TestClearCacheMissingDir(t *testing.T) {
	n, err := clearCache(filepath.Join(t.TempDir(), "missing"))
	if err != nil || n != 0 {
		t.Errorf("clearCache(missing) = %d, %v; want 0, nil", n, err)
	}
}

func TestPrintCachePath(t *testing.T) {
	root := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", root)

	var buf bytes.Buffer
	if err := printCachePath(&buf); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(buf.String()); got != filepath.Join(root, appName) {
		t.Errorf("cache path = %q", got)
	}
}

func TestNewCache(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	ctx := context.Background()

	tests := []struct {
		backend string
		want    string
	}{
		{backendNone, "cache.NullCache"},
		{"", "*cache.FileCache"},
		{backendFile, "*cache.FileCache"},
	}
	for _, tt := range tests {
		c, err := newCache(ctx, tt.backend, "")
		if err != nil {
			t.Fatalf("newCache(%q) error: %v", tt.backend, err)
		}
		switch c.(type) {
		case cache.NullCache:
			if tt.want != "cache.NullCache" {
				t.Errorf("newCache(%q) = NullCache, want %s", tt.backend, tt.want)
			}
		case *cache.FileCache:
			if tt.want != "*cache.FileCache" {
				t.Errorf("newCache(%q) = FileCache, want %s", tt.backend, tt.want)
			}
		default:
			t.Errorf("newCache(%q) = %T", tt.backend, c)
		}
	}

	if _, err := newCache(ctx, "memcached", ""); err == nil {
		t.Error("newCache(memcached) should fail")
	}
}

func TestNewRunnerRedisFallback(t *testing.T) {
	old := cache.Backoff
	cache.Backoff = time.Millisecond
	defer func() { cache.Backoff = old }()

	var buf bytes.Buffer
	c := New(&buf, log.InfoLevel)

	r, err := c.newRunner(context.Background(), backendRedis, "127.0.0.1:1", false)
	if err != nil {
		t.Fatalf("newRunner() error: %v", err)
	}
	if _, ok := r.Cache.(cache.NullCache); !ok {
		t.Errorf("runner cache = %T, want NullCache fallback", r.Cache)
	}
	if !strings.Contains(buf.String(), "cache unavailable") {
		t.Errorf("missing fallback warning in %q", buf.String())
	}
}

func TestNewRunnerNoCache(t *testing.T) {
	c := New(&bytes.Buffer{}, log.InfoLevel)
	c.Config.Cache.TTL = Duration{time.Hour}

	r, err := c.newRunner(context.Background(), backendFile, "", true)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := r.Cache.(cache.NullCache); !ok {
		t.Errorf("runner cache = %T, want NullCache", r.Cache)
	}
	if r.TTL != time.Hour {
		t.Errorf("runner TTL = %v, want 1h", r.TTL)
	}
}

