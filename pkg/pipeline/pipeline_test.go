package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/archdiagram/pkg/cache"
	"github.com/matzehuels/archdiagram/pkg/diagram"
	"github.com/matzehuels/archdiagram/pkg/diagram/icon"
	"github.com/matzehuels/archdiagram/pkg/errors"
	"github.com/matzehuels/archdiagram/pkg/observability"
)

func sample(t *testing.T) *diagram.Diagram {
	t.Helper()
	d := diagram.New("Web Services")
	be := d.NewCluster("Backend")
	api := be.NewNode("REST Service", icon.EC2)
	db := d.NewNode("PostgreSQL", icon.PostgreSQL)
	if err := d.Connect(api, db, diagram.Edge{Label: "SQLX query"}); err != nil {
		t.Fatal(err)
	}
	return d
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"png", false},
		{"svg", false},
		{"jpg", false},
		{"pdf", false},
		{"dot", false},
		{"json", false},
		{"gif", true},
		{"PNG", true}, // case-sensitive
		{"", true},
	}
	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %v", tt.format, errors.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("invalid format should fail")
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("empty formats should pass: %v", err)
	}
}

func TestValidateEngine(t *testing.T) {
	for engine, wantErr := range map[string]bool{"wasm": false, "system": false, "cairo": true, "": true} {
		err := ValidateEngine(engine)
		if (err != nil) != wantErr {
			t.Errorf("ValidateEngine(%q) error = %v, wantErr %v", engine, err, wantErr)
		}
	}
}

func TestParseFormats(t *testing.T) {
	got := ParseFormats(" PNG, svg,,png ,Pdf")
	want := []string{"png", "svg", "pdf"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("ParseFormats() = %v, want %v", got, want)
	}
	if got := ParseFormats(""); got != nil {
		t.Errorf("ParseFormats(\"\") = %v, want nil", got)
	}
}

func TestOptionsDefaults(t *testing.T) {
	var o Options
	if err := o.ValidateAndSetDefaults(nil); err != nil {
		t.Fatal(err)
	}
	if len(o.Formats) != 1 || o.Formats[0] != FormatPNG || o.Engine != EngineWASM {
		t.Errorf("defaults = %+v", o)
	}

	d := diagram.New("x", diagram.WithFormats("svg", "pdf"))
	o = Options{}
	if err := o.ValidateAndSetDefaults(d); err != nil {
		t.Fatal(err)
	}
	if strings.Join(o.Formats, ",") != "svg,pdf" {
		t.Errorf("Formats from diagram = %v", o.Formats)
	}

	o = Options{Scale: -1}
	if err := o.ValidateAndSetDefaults(nil); err == nil {
		t.Error("negative scale should fail")
	}
}

func TestDrawImages(t *testing.T) {
	if (&Options{Images: true, Engine: EngineWASM}).DrawImages() {
		t.Error("wasm engine cannot draw images")
	}
	if !(&Options{Images: true, Engine: EngineSystem}).DrawImages() {
		t.Error("system engine with Images should draw images")
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	o := Options{Engine: EngineWASM, Scale: 2}
	if k := o.ArtifactKeyOpts(FormatPNG); k.Scale != 2 {
		t.Errorf("png key should carry scale: %+v", k)
	}
	if k := o.ArtifactKeyOpts(FormatSVG); k.Scale != 0 {
		t.Errorf("svg key should ignore scale: %+v", k)
	}
}

func TestExecute(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), sample(t), Options{Formats: []string{"svg", "png", "dot", "json"}})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if !strings.Contains(string(res.Artifacts["svg"]), "<svg") {
		t.Error("svg artifact is not SVG")
	}
	if !bytes.HasPrefix(res.Artifacts["png"], []byte("\x89PNG")) {
		t.Error("png artifact is not PNG")
	}
	if string(res.Artifacts["dot"]) != res.DOT {
		t.Error("dot artifact should be the DOT source")
	}
	if !strings.Contains(string(res.Artifacts["json"]), `"name": "Web Services"`) {
		t.Errorf("json artifact = %s", res.Artifacts["json"])
	}
	if res.Stats.NodeCount != 2 || res.Stats.EdgeCount != 1 || res.Stats.ClusterCount != 1 {
		t.Errorf("Stats = %+v", res.Stats)
	}
	if len(res.DOTHash) != 64 {
		t.Errorf("DOTHash = %q", res.DOTHash)
	}
}

func TestExecute_DefaultsToPNG(t *testing.T) {
	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), sample(t), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Formats) != 1 || res.Formats[0] != "png" {
		t.Errorf("Formats = %v, want [png]", res.Formats)
	}
}

func TestExecute_Cache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil)
	ctx := context.Background()
	opts := Options{Formats: []string{"svg"}}

	first, err := r.Execute(ctx, sample(t), opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.RenderHit {
		t.Error("first run should miss")
	}

	second, err := r.Execute(ctx, sample(t), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.RenderHit || len(second.CacheInfo.Hits) != 1 {
		t.Errorf("second run CacheInfo = %+v, want hit", second.CacheInfo)
	}
	if !bytes.Equal(first.Artifacts["svg"], second.Artifacts["svg"]) {
		t.Error("cached artifact differs")
	}

	opts.Refresh = true
	third, err := r.Execute(ctx, sample(t), opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.RenderHit {
		t.Error("Refresh should bypass the cache")
	}
}

func TestExecute_ImageChangesKey(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "worker.png")
	if err := os.WriteFile(img, []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
	d := sample(t)
	d.NewNode("Worker", icon.Custom("worker.png"))

	r := NewRunner(nil, nil, nil)
	opts := Options{Formats: []string{"dot"}, Engine: EngineSystem, Images: true, BaseDir: dir}
	before, err := r.Execute(context.Background(), d, opts)
	if err != nil {
		t.Fatal(err)
	}
	if before.ImagesHash == "" {
		t.Fatal("ImagesHash empty with images drawn")
	}

	if err := os.WriteFile(img, []byte("replaced png"), 0o644); err != nil {
		t.Fatal(err)
	}
	after, err := r.Execute(context.Background(), d, opts)
	if err != nil {
		t.Fatal(err)
	}
	if after.DOTHash != before.DOTHash {
		t.Fatal("DOT changed; want only the image file to differ")
	}
	if after.ImagesHash == before.ImagesHash || after.ContentHash() == before.ContentHash() {
		t.Error("hashes unchanged after replacing the image file")
	}
	if r.artifactKey(after, FormatPNG, opts) == r.artifactKey(before, FormatPNG, opts) {
		t.Error("artifact key unchanged after replacing the image file")
	}

	wasm, err := r.Execute(context.Background(), d, Options{Formats: []string{"dot"}, Images: true, BaseDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	if wasm.ImagesHash != "" || wasm.ContentHash() != wasm.DOTHash {
		t.Errorf("wasm engine draws no images, ImagesHash = %q", wasm.ImagesHash)
	}
}

func TestExecute_Errors(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx := context.Background()

	if _, err := r.Execute(ctx, sample(t), Options{Formats: []string{"gif"}}); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("bad format: %v", err)
	}
	if _, err := r.Execute(ctx, sample(t), Options{Engine: "cairo"}); !errors.Is(err, errors.ErrCodeInvalidEngine) {
		t.Errorf("bad engine: %v", err)
	}

	d := sample(t)
	d.Name = " "
	if _, err := r.Execute(ctx, d, Options{}); !errors.Is(err, errors.ErrCodeInvalidDiagram) {
		t.Errorf("invalid diagram: %v", err)
	}
	if _, err := r.Execute(ctx, nil, Options{}); !errors.Is(err, errors.ErrCodeInvalidDiagram) {
		t.Errorf("nil diagram: %v", err)
	}
}

func TestExecute_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewRunner(nil, nil, nil).Execute(ctx, sample(t), Options{}); err != context.Canceled {
		t.Errorf("Execute() error = %v, want context.Canceled", err)
	}
}

func TestExecute_Hooks(t *testing.T) {
	observability.Reset()
	defer observability.Reset()
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)

	if _, err := NewRunner(nil, nil, nil).Execute(context.Background(), sample(t), Options{Formats: []string{"dot", "svg"}}); err != nil {
		t.Fatal(err)
	}
	if hooks.starts != 1 || hooks.completes != 1 || hooks.formats != 2 {
		t.Errorf("hooks = %+v", hooks)
	}
}

func TestWrite(t *testing.T) {
	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), sample(t), Options{Formats: []string{"dot", "json"}})
	if err != nil {
		t.Fatal(err)
	}
	dir := filepath.Join(t.TempDir(), "out")
	paths, err := Write(res, dir)
	if err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	want := []string{filepath.Join(dir, "web_services.dot"), filepath.Join(dir, "web_services.json")}
	if strings.Join(paths, "|") != strings.Join(want, "|") {
		t.Errorf("paths = %v, want %v", paths, want)
	}
	data, err := os.ReadFile(paths[0])
	if err != nil || string(data) != res.DOT {
		t.Errorf("dot file content mismatch: %v", err)
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	starts, formats, completes int
}

func (h *recordingHooks) OnRenderStart(context.Context, string, []string) { h.starts++ }
func (h *recordingHooks) OnFormatComplete(context.Context, string, int, bool, time.Duration, error) {
	h.formats++
}
func (h *recordingHooks) OnRenderComplete(context.Context, string, []string, time.Duration, error) {
	h.completes++
}
