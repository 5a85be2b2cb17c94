package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/matzehuels/archdiagram/pkg/diagram"
	"github.com/matzehuels/archdiagram/pkg/errors"
	dio "github.com/matzehuels/archdiagram/pkg/io"
	"github.com/matzehuels/archdiagram/pkg/render"
	"github.com/matzehuels/archdiagram/pkg/render/graphviz"
)

// Render produces a single format from DOT source. d is only needed for the
// json format.
func Render(ctx context.Context, d *diagram.Diagram, dot, format string, opts Options) ([]byte, error) {
	if opts.Engine == EngineSystem && format != FormatDOT && format != FormatJSON && !graphviz.SystemAvailable() {
		return nil, errors.New(errors.ErrCodeRendererNotFound,
			"system engine requires Graphviz (%s not found on PATH)", graphviz.DotBinary)
	}
	if opts.Engine != EngineSystem && format == FormatPDF && !render.ConvertAvailable() {
		return nil, errors.New(errors.ErrCodeRendererNotFound,
			"pdf export requires librsvg (%s not found on PATH)", render.RSVGBinary)
	}

	var (
		data []byte
		err  error
	)
	switch format {
	case FormatDOT:
		return []byte(dot), nil
	case FormatJSON:
		var buf bytes.Buffer
		if err := dio.Write(d, &buf, dio.JSON); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode definition")
		}
		return buf.Bytes(), nil
	case FormatSVG:
		data, err = renderSVG(ctx, dot, opts)
	case FormatPNG:
		data, err = renderPNG(ctx, dot, opts)
	case FormatJPG:
		if opts.Engine == EngineSystem {
			data, err = graphviz.RenderSystem(ctx, dot, FormatJPG)
		} else {
			data, err = graphviz.RenderJPG(ctx, dot)
		}
	case FormatPDF:
		data, err = renderPDF(ctx, dot, opts)
	default:
		return nil, ValidateFormat(format)
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "render %s", format)
	}
	return data, nil
}

func renderSVG(ctx context.Context, dot string, opts Options) ([]byte, error) {
	if opts.Engine == EngineSystem {
		return graphviz.RenderSystem(ctx, dot, FormatSVG)
	}
	return graphviz.RenderSVG(ctx, dot)
}

func renderPNG(ctx context.Context, dot string, opts Options) ([]byte, error) {
	if opts.Engine == EngineSystem {
		return graphviz.RenderSystem(ctx, dot, FormatPNG)
	}
	if opts.Scale > 1 && render.ConvertAvailable() {
		svg, err := graphviz.RenderSVG(ctx, dot)
		if err != nil {
			return nil, err
		}
		return render.ToPNG(ctx, svg, opts.Scale)
	}
	return graphviz.RenderPNG(ctx, dot)
}

func renderPDF(ctx context.Context, dot string, opts Options) ([]byte, error) {
	if opts.Engine == EngineSystem {
		return graphviz.RenderSystem(ctx, dot, FormatPDF)
	}
	svg, err := graphviz.RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	pdf, err := render.ToPDF(ctx, svg)
	if err != nil {
		return nil, fmt.Errorf("convert svg: %w", err)
	}
	return pdf, nil
}
