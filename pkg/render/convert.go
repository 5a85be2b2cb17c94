package render

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// RSVGBinary is the converter invoked by [ToPDF] and [ToPNG].
var RSVGBinary = "rsvg-convert"

// ConvertAvailable reports whether the SVG converter is on PATH.
func ConvertAvailable() bool {
	_, err := exec.LookPath(RSVGBinary)
	return err == nil
}

// ToPDF converts SVG bytes to PDF.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	return convert(ctx, svg, "pdf")
}

// ToPNG converts SVG bytes to PNG at the given scale factor; 2.0 doubles
// the resolution of the in-process PNG renderer.
func ToPNG(ctx context.Context, svg []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		return nil, fmt.Errorf("invalid scale %.2f", scale)
	}
	return convert(ctx, svg, "png", "-z", fmt.Sprintf("%.2f", scale))
}

func convert(ctx context.Context, svg []byte, format string, extra ...string) ([]byte, error) {
	if !ConvertAvailable() {
		return nil, fmt.Errorf("%s export requires librsvg. Install with:\n  macOS:  brew install librsvg\n  Linux:  apt install librsvg2-bin", format)
	}

	cmd := exec.CommandContext(ctx, RSVGBinary, append([]string{"-f", format}, extra...)...)
	cmd.Stdin = bytes.NewReader(svg)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s: %v: %s", RSVGBinary, err, strings.TrimSpace(errBuf.String()))
	}
	return out.Bytes(), nil
}
