package io

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnknownFormat is returned for a definition encoding other than JSON,
// TOML or YAML.
var ErrUnknownFormat = errors.New("unknown definition format")

// Format is a definition encoding.
type Format string

const (
	JSON Format = "json"
	TOML Format = "toml"
	YAML Format = "yaml"
)

// Formats lists the supported encodings.
var Formats = []Format{JSON, TOML, YAML}

// ParseFormat accepts a format name ("yml" is an alias for yaml).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "json":
		return JSON, nil
	case "toml":
		return TOML, nil
	case "yaml", "yml":
		return YAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatFromPath picks the encoding from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", fmt.Errorf("%w: %s has no extension", ErrUnknownFormat, path)
	}
	return ParseFormat(ext)
}

// FormatFromContentType picks the encoding from an HTTP Content-Type header.
// An empty header means JSON.
func FormatFromContentType(ct string) (Format, error) {
	mt, _, _ := strings.Cut(ct, ";")
	switch strings.ToLower(strings.TrimSpace(mt)) {
	case "", "application/json":
		return JSON, nil
	case "application/toml", "text/toml":
		return TOML, nil
	case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return YAML, nil
	}
	return "", fmt.Errorf("%w: content type %q", ErrUnknownFormat, ct)
}

// ContentType returns the MIME type used when serving f.
func (f Format) ContentType() string {
	switch f {
	case TOML:
		return "application/toml"
	case YAML:
		return "application/yaml"
	default:
		return "application/json"
	}
}
