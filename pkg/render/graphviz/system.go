package graphviz

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// DotBinary is the Graphviz executable used by [RenderSystem].
var DotBinary = "dot"

// SystemAvailable reports whether the Graphviz binary is on PATH.
func SystemAvailable() bool {
	_, err := exec.LookPath(DotBinary)
	return err == nil
}

// RenderSystem renders DOT source with the system Graphviz installation.
// Unlike the in-process renderer it can draw icon images. format is any
// Graphviz output type (svg, png, jpg, pdf, ...).
//
// Requires Graphviz: brew install graphviz (macOS), apt install graphviz (Linux).
func RenderSystem(ctx context.Context, dot, format string) ([]byte, error) {
	if !SystemAvailable() {
		return nil, fmt.Errorf("system engine requires Graphviz. Install with:\n  macOS:  brew install graphviz\n  Linux:  apt install graphviz")
	}

	cmd := exec.CommandContext(ctx, DotBinary, "-T"+format)
	cmd.Stdin = strings.NewReader(dot)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s: %v: %s", DotBinary, err, strings.TrimSpace(errBuf.String()))
	}
	return out.Bytes(), nil
}
