package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/archdiagram/pkg/buildinfo"
	"github.com/matzehuels/archdiagram/pkg/diagram"
	"github.com/matzehuels/archdiagram/pkg/diagram/icon"
	apperrors "github.com/matzehuels/archdiagram/pkg/errors"
	dio "github.com/matzehuels/archdiagram/pkg/io"
	"github.com/matzehuels/archdiagram/pkg/pipeline"
)

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
}

type iconResponse struct {
	Ref       string `json:"ref"`
	Provider  string `json:"provider"`
	Category  string `json:"category"`
	Kind      string `json:"kind"`
	Shape     string `json:"shape"`
	FillColor string `json:"fill_color"`
}

func (s *Server) icons(w http.ResponseWriter, r *http.Request) {
	all := icon.All()
	out := make([]iconResponse, 0, len(all))
	for _, i := range all {
		out = append(out, iconResponse{
			Ref:       i.Ref(),
			Provider:  i.Provider,
			Category:  i.Category,
			Kind:      i.Kind,
			Shape:     i.Shape,
			FillColor: i.FillColor,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) definition(w http.ResponseWriter, r *http.Request) {
	enc := dio.JSON
	if q := r.URL.Query().Get("encoding"); q != "" {
		f, err := dio.ParseFormat(q)
		if err != nil {
			writeError(w, r, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "invalid encoding"))
			return
		}
		enc = f
	}

	d, err := s.cfg.Diagram()
	if err != nil {
		writeError(w, r, diagramError(err))
		return
	}
	var buf bytes.Buffer
	if err := dio.Write(d, &buf, enc); err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", enc.ContentType())
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) renderBuiltin(w http.ResponseWriter, r *http.Request) {
	d, err := s.cfg.Diagram()
	if err != nil {
		writeError(w, r, diagramError(err))
		return
	}
	s.render(w, r, d, chi.URLParam(r, "format"))
}

// diagramError keeps a coded error from the diagram source, such as a
// deleted definition file, and reports anything else as an invalid diagram.
func diagramError(err error) error {
	if apperrors.GetCode(err) != "" {
		return err
	}
	return apperrors.Wrap(apperrors.ErrCodeInvalidDiagram, err, "build diagram")
}

func (s *Server) renderBody(w http.ResponseWriter, r *http.Request) {
	enc, err := dio.FormatFromContentType(r.Header.Get("Content-Type"))
	if err != nil {
		writeError(w, r, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "unsupported body"))
		return
	}

	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	d, err := dio.Read(body, enc)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, apperrors.New(apperrors.ErrCodeInvalidInput, "body exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, r, apperrors.Wrap(apperrors.ErrCodeInvalidDefinition, err, "invalid definition"))
		return
	}
	if err := checkUntrusted(d); err != nil {
		writeError(w, r, err)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	s.render(w, r, d, format)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, d *diagram.Diagram, format string) {
	format = strings.ToLower(format)
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RenderTimeout)
	defer cancel()

	res, err := s.cfg.Runner.Execute(ctx, d, pipeline.Options{
		Formats: []string{format},
		Engine:  s.cfg.Engine,
		Images:  s.cfg.Images,
		BaseDir: s.cfg.BaseDir,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	etag := fmt.Sprintf(`"%s-%s"`, res.ContentHash()[:16], format)
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", pipeline.ContentTypes[format])
	if len(res.CacheInfo.Hits) > 0 {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	_, _ = w.Write(res.Artifacts[format])
}

// fileAttrs are Graphviz attributes that make the renderer read files from
// the server's filesystem.
var fileAttrs = map[string]bool{
	"image":      true,
	"imagepath":  true,
	"shapefile":  true,
	"fontpath":   true,
	"fontnames":  true,
	"stylesheet": true,
}

// checkAttrs rejects raw attributes that reference files.
func checkAttrs(a diagram.Attrs, where string) error {
	for k := range a {
		if fileAttrs[strings.ToLower(strings.TrimSpace(k))] {
			return apperrors.New(apperrors.ErrCodeInvalidDefinition, "%s: attribute %q is not allowed", where, k)
		}
	}
	return nil
}

// checkUntrusted rejects definitions a remote client should not be able to
// submit: oversized or control-character labels, image paths that escape
// the icon directory and raw attributes that reference files.
func checkUntrusted(d *diagram.Diagram) error {
	if err := apperrors.ValidateLabel(d.Name); err != nil {
		return err
	}
	for where, a := range map[string]diagram.Attrs{
		"graph_attrs": d.GraphAttrs,
		"node_attrs":  d.NodeAttrs,
		"edge_attrs":  d.EdgeAttrs,
	} {
		if err := checkAttrs(a, where); err != nil {
			return err
		}
	}
	for _, c := range d.Clusters() {
		if err := apperrors.ValidateLabel(c.Label); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeInvalidDefinition, err, "cluster %s", c.ID)
		}
		if err := checkAttrs(c.Attrs, "cluster "+c.ID); err != nil {
			return err
		}
	}
	for _, n := range d.Nodes() {
		if err := apperrors.ValidateLabel(n.Label); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeInvalidDefinition, err, "node %s", n.ID)
		}
		if err := checkAttrs(n.Attrs, "node "+n.ID); err != nil {
			return err
		}
		if n.Icon.Image != "" {
			if err := apperrors.ValidatePath(n.Icon.Image); err != nil {
				return apperrors.Wrap(apperrors.ErrCodeInvalidDefinition, err, "node %s image", n.ID)
			}
		}
	}
	for _, e := range d.Edges() {
		if err := apperrors.ValidateLabel(e.Label); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeInvalidDefinition, err, "edge %s->%s", e.From, e.To)
		}
		if err := checkAttrs(e.Attrs, "edge "+e.From+"->"+e.To); err != nil {
			return err
		}
	}
	return nil
}
