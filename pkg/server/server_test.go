package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archdiagram/pkg/architecture"
	"github.com/matzehuels/archdiagram/pkg/cache"
	"github.com/matzehuels/archdiagram/pkg/diagram"
	apperrors "github.com/matzehuels/archdiagram/pkg/errors"
	dio "github.com/matzehuels/archdiagram/pkg/io"
	"github.com/matzehuels/archdiagram/pkg/pipeline"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	logger := log.NewWithOptions(io.Discard, log.Options{})
	s, err := New(Config{
		Runner:  pipeline.NewRunner(c, nil, logger),
		Logger:  logger,
		Diagram: architecture.Diagram,
	})
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string, header ...string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeError(t *testing.T, resp *http.Response) apiError {
	t.Helper()
	var e apiError
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return e
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Config{Diagram: architecture.Diagram}); err == nil {
		t.Error("New() without runner should fail")
	}
	if _, err := New(Config{Runner: pipeline.NewRunner(nil, nil, nil)}); err == nil {
		t.Error("New() without diagram should fail")
	}
	if _, err := New(Config{Runner: pipeline.NewRunner(nil, nil, nil), Diagram: architecture.Diagram, Engine: "cairo"}); err == nil {
		t.Error("New() with unknown engine should fail")
	}
	s, err := New(Config{Runner: pipeline.NewRunner(nil, nil, nil), Diagram: architecture.Diagram})
	if err != nil || s.Addr() != DefaultAddr {
		t.Errorf("New() defaults: addr=%v err=%v", s, err)
	}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	resp := get(t, ts.URL+"/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Status != "ok" {
		t.Errorf("body = %+v, err = %v", body, err)
	}
}

func TestRequestID(t *testing.T) {
	ts := newTestServer(t)

	resp := get(t, ts.URL+"/healthz")
	if id := resp.Header.Get(RequestIDHeader); len(id) != 36 {
		t.Errorf("generated request ID = %q, want a UUID", id)
	}

	resp = get(t, ts.URL+"/healthz", RequestIDHeader, "abc-123")
	if id := resp.Header.Get(RequestIDHeader); id != "abc-123" {
		t.Errorf("request ID = %q, want the incoming one", id)
	}
}

func TestIcons(t *testing.T) {
	ts := newTestServer(t)
	resp := get(t, ts.URL+"/icons")
	var icons []iconResponse
	if err := json.NewDecoder(resp.Body).Decode(&icons); err != nil {
		t.Fatal(err)
	}
	found := false
	for _, i := range icons {
		if i.Ref == "onprem.database.postgresql" {
			found = true
		}
	}
	if !found {
		t.Errorf("icons missing postgresql: %+v", icons)
	}
}

func TestDefinition(t *testing.T) {
	ts := newTestServer(t)

	resp := get(t, ts.URL+"/diagram")
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `"name": "Architecture"`) {
		t.Errorf("body = %s", body)
	}

	resp = get(t, ts.URL+"/diagram?encoding=yaml")
	body, _ = io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "name: Architecture") {
		t.Errorf("yaml body = %s", body)
	}

	resp = get(t, ts.URL+"/diagram?encoding=xml")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestDiagramSourceErrors(t *testing.T) {
	logger := log.NewWithOptions(io.Discard, log.Options{})
	gone := filepath.Join(t.TempDir(), "gone.yaml")
	tests := []struct {
		name   string
		source func() (*diagram.Diagram, error)
		status int
		code   apperrors.Code
	}{
		{
			"file removed",
			func() (*diagram.Diagram, error) { return dio.Import(gone) },
			http.StatusNotFound, apperrors.ErrCodeFileNotFound,
		},
		{
			"build failure",
			func() (*diagram.Diagram, error) { return nil, errors.New("boom") },
			http.StatusBadRequest, apperrors.ErrCodeInvalidDiagram,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(Config{
				Runner:  pipeline.NewRunner(nil, nil, logger),
				Logger:  logger,
				Diagram: tt.source,
			})
			if err != nil {
				t.Fatal(err)
			}
			ts := httptest.NewServer(s.Handler())
			defer ts.Close()

			for _, path := range []string{"/diagram", "/diagram.svg"} {
				resp := get(t, ts.URL+path)
				if resp.StatusCode != tt.status {
					t.Errorf("%s status = %d, want %d", path, resp.StatusCode, tt.status)
				}
				if e := decodeError(t, resp); e.Code != tt.code {
					t.Errorf("%s code = %s, want %s", path, e.Code, tt.code)
				}
			}
		})
	}
}

func TestRenderBuiltin(t *testing.T) {
	ts := newTestServer(t)

	resp := get(t, ts.URL+"/diagram.svg")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "QUIC/WebTransport") {
		t.Error("svg missing edge label")
	}
	if resp.Header.Get("X-Cache") != "MISS" {
		t.Errorf("first X-Cache = %q", resp.Header.Get("X-Cache"))
	}

	etag := resp.Header.Get("ETag")
	resp = get(t, ts.URL+"/diagram.svg")
	if resp.Header.Get("X-Cache") != "HIT" {
		t.Errorf("second X-Cache = %q", resp.Header.Get("X-Cache"))
	}

	resp = get(t, ts.URL+"/diagram.svg", "If-None-Match", etag)
	if resp.StatusCode != http.StatusNotModified {
		t.Errorf("conditional status = %d, want 304", resp.StatusCode)
	}
}

func TestRenderBuiltin_PNG(t *testing.T) {
	ts := newTestServer(t)
	resp := get(t, ts.URL+"/diagram.png")
	body, _ := io.ReadAll(resp.Body)
	if !bytes.HasPrefix(body, []byte("\x89PNG")) {
		t.Error("response is not a PNG")
	}
}

func TestRenderBuiltin_BadFormat(t *testing.T) {
	ts := newTestServer(t)
	resp := get(t, ts.URL+"/diagram.gif")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if e := decodeError(t, resp); e.Code != apperrors.ErrCodeInvalidFormat || e.RequestID == "" {
		t.Errorf("error = %+v", e)
	}
}

func TestRenderBody(t *testing.T) {
	ts := newTestServer(t)

	yamlDef := "name: Tiny\nnodes:\n  - {id: a, label: Alpha}\n  - {id: b, label: Beta}\nedges:\n  - {from: a, to: b, label: calls}\n"
	resp, err := http.Post(ts.URL+"/render?format=dot", "application/yaml", strings.NewReader(yamlDef))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `"a" -> "b"`) {
		t.Errorf("dot = %s", body)
	}
}

func TestRenderBody_Errors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		ct     string
		body   string
		status int
		code   apperrors.Code
	}{
		{"bad content type", "text/html", "<p>", http.StatusBadRequest, apperrors.ErrCodeInvalidInput},
		{"malformed json", "application/json", `{"name":`, http.StatusBadRequest, apperrors.ErrCodeInvalidDefinition},
		{"unknown icon", "application/json", `{"name":"x","nodes":[{"id":"a","icon":"no.such.icon"}]}`, http.StatusBadRequest, apperrors.ErrCodeInvalidDefinition},
		{"path traversal", "application/json", `{"name":"x","nodes":[{"id":"a","icon":"custom:../../etc/passwd"}]}`, http.StatusBadRequest, apperrors.ErrCodeInvalidDefinition},
		{"control chars", "application/json", `{"name":"x","nodes":[{"id":"a","label":"bad\u0007label"}]}`, http.StatusBadRequest, apperrors.ErrCodeInvalidDefinition},
		{"node image attr", "application/json", `{"name":"x","nodes":[{"id":"a","attrs":{"image":"/etc/passwd"}}]}`, http.StatusBadRequest, apperrors.ErrCodeInvalidDefinition},
		{"graph imagepath", "application/json", `{"name":"x","graph_attrs":{"imagepath":"/"},"nodes":[{"id":"a"}]}`, http.StatusBadRequest, apperrors.ErrCodeInvalidDefinition},
		{"node_attrs shapefile", "application/json", `{"name":"x","node_attrs":{"shapefile":"/etc/hosts"},"nodes":[{"id":"a"}]}`, http.StatusBadRequest, apperrors.ErrCodeInvalidDefinition},
		{"cluster fontpath", "application/json", `{"name":"x","clusters":[{"id":"c","label":"C","attrs":{"fontpath":"/"}}],"nodes":[{"id":"a","cluster":"c"}]}`, http.StatusBadRequest, apperrors.ErrCodeInvalidDefinition},
		{"edge stylesheet", "application/json", `{"name":"x","nodes":[{"id":"a"},{"id":"b"}],"edges":[{"from":"a","to":"b","attrs":{"Stylesheet":"/x.css"}}]}`, http.StatusBadRequest, apperrors.ErrCodeInvalidDefinition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/render", tt.ct, strings.NewReader(tt.body))
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if e := decodeError(t, resp); e.Code != tt.code {
				t.Errorf("code = %s, want %s (%s)", e.Code, tt.code, e.Message)
			}
		})
	}
}

func TestRenderBody_TooLarge(t *testing.T) {
	c := cache.NewNullCache()
	s, err := New(Config{
		Runner:       pipeline.NewRunner(c, nil, log.NewWithOptions(io.Discard, log.Options{})),
		Logger:       log.NewWithOptions(io.Discard, log.Options{}),
		Diagram:      architecture.Diagram,
		MaxBodyBytes: 16,
	})
	if err != nil {
		t.Fatal(err)
	}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/render", strings.NewReader(`{"name": "`+strings.Repeat("x", 64)+`"}`))
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestNotFound(t *testing.T) {
	ts := newTestServer(t)
	resp := get(t, ts.URL+"/nope")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	if e := decodeError(t, resp); e.Code != apperrors.ErrCodeNotFound {
		t.Errorf("code = %s", e.Code)
	}
}

func TestRecover(t *testing.T) {
	s, err := New(Config{
		Runner: pipeline.NewRunner(nil, nil, log.NewWithOptions(io.Discard, log.Options{})),
		Logger: log.NewWithOptions(io.Discard, log.Options{}),
		Diagram: func() (*diagram.Diagram, error) {
			panic("boom")
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/diagram.svg", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}
