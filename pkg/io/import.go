package io

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/archdiagram/pkg/diagram"
	"github.com/matzehuels/archdiagram/pkg/diagram/icon"
	apperrors "github.com/matzehuels/archdiagram/pkg/errors"
)

// ErrEmptyDefinition is returned when the input holds no document.
var ErrEmptyDefinition = errors.New("empty definition")

// Read decodes a definition in the given format from r and builds the diagram.
//
// The diagram is validated before it is returned. Entry-level problems are
// reported as [*FieldError]; decoding problems are wrapped with "decode".
// Read does not close r.
func Read(r io.Reader, format Format) (*diagram.Diagram, error) {
	var def definition
	if err := decode(r, format, &def); err != nil {
		return nil, err
	}
	return build(def)
}

// Import reads the definition file at path, picking the format from the
// file extension. Field errors carry path; a missing file is reported with
// code FILE_NOT_FOUND.
func Import(path string) (*diagram.Diagram, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, apperrors.Wrap(apperrors.ErrCodeFileNotFound, err, "definition file not found")
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	d, err := Read(f, format)
	if err != nil {
		var fe *FieldError
		if errors.As(err, &fe) {
			fe.Path = path
			return nil, fe
		}
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

func decode(r io.Reader, format Format, def *definition) error {
	var err error
	switch format {
	case JSON:
		err = json.NewDecoder(r).Decode(def)
	case TOML:
		_, err = toml.NewDecoder(r).Decode(def)
	case YAML:
		err = yaml.NewDecoder(r).Decode(def)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if errors.Is(err, io.EOF) {
		return ErrEmptyDefinition
	}
	if err != nil {
		return fmt.Errorf("decode %s: %w", format, err)
	}
	return nil
}

func build(def definition) (*diagram.Diagram, error) {
	if strings.TrimSpace(def.Name) == "" {
		return nil, invalidField("name", diagram.ErrEmptyName)
	}

	var opts []diagram.Option
	if def.Direction != "" {
		dir := diagram.Direction(strings.ToUpper(def.Direction))
		if !dir.Valid() {
			return nil, invalidField("direction", fmt.Errorf("%w: %q", diagram.ErrInvalidDirection, def.Direction))
		}
		opts = append(opts, diagram.WithDirection(dir))
	}
	if def.CurveStyle != "" {
		cs := diagram.CurveStyle(strings.ToLower(def.CurveStyle))
		if !cs.Valid() {
			return nil, invalidField("curve_style", fmt.Errorf("%w: %q", diagram.ErrInvalidCurveStyle, def.CurveStyle))
		}
		opts = append(opts, diagram.WithCurveStyle(cs))
	}
	if len(def.Formats) > 0 {
		opts = append(opts, diagram.WithFormats(def.Formats...))
	}

	d := diagram.New(def.Name, opts...)
	d.GraphAttrs = diagram.Attrs(def.GraphAttrs)
	d.NodeAttrs = diagram.Attrs(def.NodeAttrs)
	d.EdgeAttrs = diagram.Attrs(def.EdgeAttrs)

	// Parents may be declared after their children, so clusters are added
	// in dependency order.
	if err := addClusters(d, def.Clusters); err != nil {
		return nil, err
	}

	for i, n := range def.Nodes {
		field := fmt.Sprintf("nodes[%d]", i)
		ic, err := icon.Lookup(n.Icon)
		if err != nil {
			return nil, invalidField(field+".icon", err)
		}
		if n.Image != "" {
			ic = ic.WithImage(n.Image)
		}
		if _, err := d.AddNode(diagram.Node{
			ID:      n.ID,
			Label:   n.Label,
			Icon:    ic,
			Cluster: n.Cluster,
			Attrs:   diagram.Attrs(n.Attrs),
		}); err != nil {
			return nil, invalidField(field, err)
		}
	}

	for i, e := range def.Edges {
		field := fmt.Sprintf("edges[%d]", i)
		de := diagram.Edge{
			From:  e.From,
			To:    e.To,
			Label: e.Label,
			Color: e.Color,
			Style: diagram.EdgeStyle(strings.ToLower(e.Style)),
			Attrs: diagram.Attrs(e.Attrs),
		}
		if !de.DirFromString(e.Dir) {
			return nil, invalidField(field+".dir", fmt.Errorf("unknown direction %q", e.Dir))
		}
		if err := d.AddEdge(de); err != nil {
			return nil, invalidField(field, err)
		}
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func addClusters(d *diagram.Diagram, clusters []cluster) error {
	added := make(map[int]bool, len(clusters))
	for len(added) < len(clusters) {
		progress := false
		for i, c := range clusters {
			if added[i] {
				continue
			}
			if c.Parent != "" {
				if _, ok := d.ClusterByID(c.Parent); !ok {
					continue
				}
			}
			if _, err := d.AddCluster(diagram.Cluster{
				ID:     c.ID,
				Label:  c.Label,
				Parent: c.Parent,
				Attrs:  diagram.Attrs(c.Attrs),
			}); err != nil {
				return invalidField(fmt.Sprintf("clusters[%d]", i), err)
			}
			added[i] = true
			progress = true
		}
		if !progress {
			// The first cluster left over names a missing or cyclic parent.
			for i, c := range clusters {
				if !added[i] {
					return invalidField(fmt.Sprintf("clusters[%d].parent", i),
						fmt.Errorf("parent %s: %w", c.Parent, diagram.ErrUnknownCluster))
				}
			}
		}
	}
	return nil
}
