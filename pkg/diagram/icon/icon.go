package icon

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// ErrUnknownIcon is returned by [Lookup] when a reference names no catalog entry.
var ErrUnknownIcon = errors.New("unknown icon")

// customPrefix marks a reference to a user-supplied image.
const customPrefix = "custom:"

// Icon describes how a node is drawn.
//
// Catalog icons are identified by provider, category and kind, mirroring the
// naming used by common architecture diagram tools (e.g. "aws.compute.ec2").
// Custom icons carry only an image path.
//
// Image is optional. When it is empty, or the file cannot be read at render time,
// the node is drawn using Shape and FillColor instead.
type Icon struct {
	Provider  string
	Category  string
	Kind      string
	Image     string
	Shape     string
	FillColor string
}

// Ref returns the reference string that [Lookup] resolves back to this icon.
func (i Icon) Ref() string {
	if i.IsCustom() {
		return customPrefix + i.Image
	}
	if i.Provider == "" {
		return ""
	}
	return i.Provider + "." + i.Category + "." + i.Kind
}

// IsCustom reports whether the icon is a user image rather than a catalog entry.
func (i Icon) IsCustom() bool { return i.Provider == ProviderCustom }

// IsZero reports whether no icon has been assigned.
func (i Icon) IsZero() bool { return i == Icon{} }

// String implements fmt.Stringer.
func (i Icon) String() string { return i.Ref() }

// WithImage returns a copy of i that uses the image at path.
func (i Icon) WithImage(path string) Icon {
	i.Image = path
	return i
}

// Custom returns an icon drawn from the image at path.
// The path is kept verbatim; relative paths are resolved by the renderer.
func Custom(path string) Icon {
	return Icon{
		Provider:  ProviderCustom,
		Category:  "image",
		Kind:      "custom",
		Image:     path,
		Shape:     "box",
		FillColor: "#FFFFFF",
	}
}

// Lookup resolves a reference to an icon.
//
// Accepted forms are "provider.category.kind" (case-insensitive) for catalog
// icons and "custom:<path>" for user images. An empty reference resolves to
// [Blank].
func Lookup(ref string) (Icon, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Blank, nil
	}
	if path, ok := strings.CutPrefix(ref, customPrefix); ok {
		if path == "" {
			return Icon{}, fmt.Errorf("%w: custom icon requires an image path", ErrUnknownIcon)
		}
		return Custom(path), nil
	}
	if i, ok := catalog[strings.ToLower(ref)]; ok {
		return i, nil
	}
	return Icon{}, fmt.Errorf("%w: %q", ErrUnknownIcon, ref)
}

// All returns every catalog icon sorted by reference.
func All() []Icon {
	out := make([]Icon, 0, len(catalog))
	for _, ref := range slices.Sorted(maps.Keys(catalog)) {
		out = append(out, catalog[ref])
	}
	return out
}
