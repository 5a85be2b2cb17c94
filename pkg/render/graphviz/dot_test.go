package graphviz

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/archdiagram/pkg/diagram"
	"github.com/matzehuels/archdiagram/pkg/diagram/icon"
)

func sample(t *testing.T) *diagram.Diagram {
	t.Helper()
	d := diagram.New("Web Services")
	be := d.NewCluster("Backend")
	api := be.NewNode("REST Service", icon.EC2)
	inner := be.NewCluster("Workers")
	worker := inner.NewNode("Worker", icon.Server)
	db := d.NewNode("PostgreSQL", icon.PostgreSQL)
	if err := d.Connect(api, db, diagram.Edge{Label: "SQLX query", Color: "orange"}); err != nil {
		t.Fatal(err)
	}
	if err := d.ConnectBoth(api, worker, diagram.Edge{Style: diagram.StyleDotted}); err != nil {
		t.Fatal(err)
	}
	return d
}

func TestToDOT_Basic(t *testing.T) {
	dot := ToDOT(sample(t), Options{})

	for _, want := range []string{
		`digraph "Web Services" {`,
		`label="Web Services"`,
		`rankdir="LR"`,
		`splines="ortho"`,
		`subgraph "cluster_backend" {`,
		`subgraph "cluster_workers" {`,
		`"rest_service" [`,
		`"postgresql" [`,
		`"rest_service" -> "postgresql" [color="orange", dir="forward", label="SQLX query"];`,
		`"rest_service" -> "worker" [dir="both", style="dotted"];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() output missing %q\n%s", want, dot)
		}
	}
}

func TestToDOT_ClusterNesting(t *testing.T) {
	dot := ToDOT(sample(t), Options{})

	outer := strings.Index(dot, `"cluster_backend"`)
	inner := strings.Index(dot, `"cluster_workers"`)
	worker := strings.Index(dot, `"worker" [`)
	if outer < 0 || inner < outer || worker < inner {
		t.Errorf("cluster nesting order wrong: outer=%d inner=%d worker=%d", outer, inner, worker)
	}
	if !strings.Contains(dot, `bgcolor="#E5F5FD"`) || !strings.Contains(dot, `bgcolor="#EBF3E7"`) {
		t.Error("ToDOT() missing depth-based cluster backgrounds")
	}
}

func TestToDOT_Deterministic(t *testing.T) {
	a := ToDOT(sample(t), Options{})
	b := ToDOT(sample(t), Options{})
	if a != b {
		t.Error("ToDOT() is not deterministic")
	}
}

func TestToDOT_Overrides(t *testing.T) {
	d := diagram.New("x",
		diagram.WithDirection(diagram.TopBottom),
		diagram.WithGraphAttr("pad", "0.5"),
		diagram.WithNodeAttr("fontsize", "9"),
	)
	if _, err := d.AddNode(diagram.Node{ID: "a", Attrs: diagram.Attrs{"tooltip": "hello"}}); err != nil {
		t.Fatal(err)
	}

	dot := ToDOT(d, Options{})
	for _, want := range []string{`rankdir="TB"`, `pad="0.5"`, `fontsize="9"`, `tooltip="hello"`} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing override %q", want)
		}
	}
	if strings.Contains(dot, `pad="2.0"`) {
		t.Error("ToDOT() kept default pad despite override")
	}
}

func TestNodeAttrs_Fallback(t *testing.T) {
	n := &diagram.Node{ID: "db", Label: "PostgreSQL", Icon: icon.PostgreSQL}
	a := nodeAttrs(n, Options{})

	if a["shape"] != "cylinder" {
		t.Errorf("shape = %q, want cylinder", a["shape"])
	}
	if a["fillcolor"] != icon.PostgreSQL.FillColor {
		t.Errorf("fillcolor = %q", a["fillcolor"])
	}
	if _, ok := a["image"]; ok {
		t.Error("fallback node should not carry an image")
	}
}

func TestNodeAttrs_Image(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "nats.png"), []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
	n := &diagram.Node{ID: "nats", Label: "NATS\nServer", Icon: icon.Custom("./nats.png")}

	a := nodeAttrs(n, Options{Images: true, BaseDir: dir})
	if a["shape"] != "none" {
		t.Errorf("shape = %q, want none", a["shape"])
	}
	if a["image"] != filepath.Join(dir, "nats.png") {
		t.Errorf("image = %q", a["image"])
	}
	if a["height"] != "2.3" {
		t.Errorf("height = %q, want 2.3 for a two-line label", a["height"])
	}

	// Images disabled falls back to the shape.
	if a := nodeAttrs(n, Options{BaseDir: dir}); a["shape"] == "none" {
		t.Error("image drawn although Options.Images is false")
	}
}

func TestMissingImages(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "quic.png"), []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}

	d := diagram.New("x")
	d.NewNode("A", icon.Custom("quic.png"))
	d.NewNode("B", icon.Custom("nats.png"))
	d.NewNode("C", icon.Custom("nats.png"))
	d.NewNode("D", icon.Server)

	got := MissingImages(d, Options{Images: true, BaseDir: dir})
	if len(got) != 1 || got[0] != "nats.png" {
		t.Errorf("MissingImages() = %v, want [nats.png]", got)
	}
	if got := MissingImages(d, Options{}); got != nil {
		t.Errorf("MissingImages() with images disabled = %v", got)
	}
}

func TestImageStamps(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "quic.png")
	if err := os.WriteFile(img, []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}

	d := diagram.New("x")
	d.NewNode("A", icon.Custom("quic.png"))
	d.NewNode("B", icon.Custom("quic.png"))
	d.NewNode("C", icon.Custom("nats.png"))
	opts := Options{Images: true, BaseDir: dir}

	before := ImageStamps(d, opts)
	if len(before) != 1 || !strings.HasPrefix(before[0], img+" 3 ") {
		t.Fatalf("ImageStamps() = %v, want one entry for %s", before, img)
	}
	if got := ImageStamps(d, Options{BaseDir: dir}); got != nil {
		t.Errorf("ImageStamps() with images disabled = %v", got)
	}

	if err := os.WriteFile(img, []byte("new png"), 0o644); err != nil {
		t.Fatal(err)
	}
	if after := ImageStamps(d, opts); slices.Equal(after, before) {
		t.Errorf("ImageStamps() unchanged after rewriting %s: %v", img, after)
	}
}

func TestContrastColor(t *testing.T) {
	tests := []struct {
		fill string
		want string
	}{
		{"#FFFFFF", "#2D3436"},
		{"#336791", "#FFFFFF"},
		{"#000000", "#FFFFFF"},
		{"#F58536", "#2D3436"},
		{"orange", "#2D3436"},
		{"#zzzzzz", "#2D3436"},
	}
	for _, tt := range tests {
		if got := contrastColor(tt.fill); got != tt.want {
			t.Errorf("contrastColor(%q) = %q, want %q", tt.fill, got, tt.want)
		}
	}
}

func TestQuote(t *testing.T) {
	tests := map[string]string{
		`plain`:      `"plain"`,
		`say "hi"`:   `"say \"hi\""`,
		"two\nlines": `"two\nlines"`,
		`back\slash`: `"back\\slash"`,
	}
	for in, want := range tests {
		if got := quote(in); got != want {
			t.Errorf("quote(%q) = %s, want %s", in, got, want)
		}
	}
}
