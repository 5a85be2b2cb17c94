package io

import (
	"fmt"
)

type definition struct {
	Name       string            `json:"name" toml:"name" yaml:"name"`
	Direction  string            `json:"direction,omitempty" toml:"direction,omitempty" yaml:"direction,omitempty"`
	CurveStyle string            `json:"curve_style,omitempty" toml:"curve_style,omitempty" yaml:"curve_style,omitempty"`
	Formats    []string          `json:"formats,omitempty" toml:"formats,omitempty" yaml:"formats,omitempty"`
	GraphAttrs map[string]string `json:"graph_attrs,omitempty" toml:"graph_attrs,omitempty" yaml:"graph_attrs,omitempty"`
	NodeAttrs  map[string]string `json:"node_attrs,omitempty" toml:"node_attrs,omitempty" yaml:"node_attrs,omitempty"`
	EdgeAttrs  map[string]string `json:"edge_attrs,omitempty" toml:"edge_attrs,omitempty" yaml:"edge_attrs,omitempty"`
	Clusters   []cluster         `json:"clusters,omitempty" toml:"clusters,omitempty" yaml:"clusters,omitempty"`
	Nodes      []node            `json:"nodes" toml:"nodes" yaml:"nodes"`
	Edges      []edge            `json:"edges,omitempty" toml:"edges,omitempty" yaml:"edges,omitempty"`
}

type cluster struct {
	ID     string            `json:"id,omitempty" toml:"id,omitempty" yaml:"id,omitempty"`
	Label  string            `json:"label" toml:"label" yaml:"label"`
	Parent string            `json:"parent,omitempty" toml:"parent,omitempty" yaml:"parent,omitempty"`
	Attrs  map[string]string `json:"attrs,omitempty" toml:"attrs,omitempty" yaml:"attrs,omitempty"`
}

type node struct {
	ID      string            `json:"id,omitempty" toml:"id,omitempty" yaml:"id,omitempty"`
	Label   string            `json:"label,omitempty" toml:"label,omitempty" yaml:"label,omitempty"`
	Icon    string            `json:"icon,omitempty" toml:"icon,omitempty" yaml:"icon,omitempty"`
	Image   string            `json:"image,omitempty" toml:"image,omitempty" yaml:"image,omitempty"`
	Cluster string            `json:"cluster,omitempty" toml:"cluster,omitempty" yaml:"cluster,omitempty"`
	Attrs   map[string]string `json:"attrs,omitempty" toml:"attrs,omitempty" yaml:"attrs,omitempty"`
}

type edge struct {
	From  string            `json:"from" toml:"from" yaml:"from"`
	To    string            `json:"to" toml:"to" yaml:"to"`
	Label string            `json:"label,omitempty" toml:"label,omitempty" yaml:"label,omitempty"`
	Color string            `json:"color,omitempty" toml:"color,omitempty" yaml:"color,omitempty"`
	Style string            `json:"style,omitempty" toml:"style,omitempty" yaml:"style,omitempty"`
	Dir   string            `json:"dir,omitempty" toml:"dir,omitempty" yaml:"dir,omitempty"`
	Attrs map[string]string `json:"attrs,omitempty" toml:"attrs,omitempty" yaml:"attrs,omitempty"`
}

// FieldError reports an invalid entry in a definition.
type FieldError struct {
	Path  string // file the definition came from, empty for readers
	Field string // e.g. "nodes[2].icon"
	Err   error
}

func (e *FieldError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("field %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("%s: field %s: %v", e.Path, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

func invalidField(field string, err error) error {
	return &FieldError{Field: field, Err: err}
}
