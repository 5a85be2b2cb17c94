package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/archdiagram/pkg/diagram"
)

// Write encodes d as a definition in the given format.
// Every entry is written with its ID so the output reads back identically.
func Write(d *diagram.Diagram, w io.Writer, format Format) error {
	def := toDefinition(d)

	switch format {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(def); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
	case TOML:
		if err := toml.NewEncoder(w).Encode(def); err != nil {
			return fmt.Errorf("encode toml: %w", err)
		}
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(def); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return nil
}

// Export writes d to path, picking the format from the file extension.
func Export(d *diagram.Diagram, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(d, f, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func toDefinition(d *diagram.Diagram) definition {
	def := definition{
		Name:       d.Name,
		Direction:  string(d.Direction),
		CurveStyle: string(d.CurveStyle),
		Formats:    d.Formats,
		GraphAttrs: d.GraphAttrs,
		NodeAttrs:  d.NodeAttrs,
		EdgeAttrs:  d.EdgeAttrs,
		Clusters:   make([]cluster, 0, len(d.Clusters())),
		Nodes:      make([]node, 0, d.NodeCount()),
		Edges:      make([]edge, 0, d.EdgeCount()),
	}
	for _, c := range d.Clusters() {
		def.Clusters = append(def.Clusters, cluster{
			ID:     c.ID,
			Label:  c.Label,
			Parent: c.Parent,
			Attrs:  c.Attrs,
		})
	}
	for _, n := range d.Nodes() {
		nd := node{
			ID:      n.ID,
			Label:   n.Label,
			Icon:    n.Icon.Ref(),
			Cluster: n.Cluster,
			Attrs:   n.Attrs,
		}
		if !n.Icon.IsCustom() && n.Icon.Image != "" {
			nd.Image = n.Icon.Image
		}
		if nd.Label == nd.ID {
			nd.Label = ""
		}
		def.Nodes = append(def.Nodes, nd)
	}
	for _, e := range d.Edges() {
		ed := edge{
			From:  e.From,
			To:    e.To,
			Label: e.Label,
			Color: e.Color,
			Style: string(e.Style),
			Attrs: e.Attrs,
		}
		if dir := e.Dir(); dir != "forward" {
			ed.Dir = dir
		}
		def.Edges = append(def.Edges, ed)
	}
	return def
}
