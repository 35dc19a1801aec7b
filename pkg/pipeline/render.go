package pipeline

import (
	"github.com/erdraw/erdraw/pkg/diagram"
	"github.com/erdraw/erdraw/pkg/er"
	"github.com/erdraw/erdraw/pkg/errors"
	"github.com/erdraw/erdraw/pkg/render"
	"github.com/erdraw/erdraw/pkg/render/nodelink"
	"github.com/erdraw/erdraw/pkg/schema"
)

// Render generates output artifacts in the requested formats.
// Chen output renders from the composed scene; nodelink output renders the
// model through Graphviz.
func Render(scene diagram.Scene, m er.Model, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	if opts.IsNodelink() {
		return renderNodelink(m, opts)
	}
	return renderChen(scene, m, opts)
}

func renderChen(scene diagram.Scene, m er.Model, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte)

	// SVG is the base for raster formats; render it once.
	var svg []byte
	needSVG := false
	for _, format := range opts.Formats {
		switch format {
		case FormatSVG, FormatPNG, FormatPDF:
			needSVG = true
		}
	}
	if needSVG {
		svg = render.SVG(scene)
	}

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = svg
		case FormatPNG:
			data, err = render.ToPNG(svg, opts.Scale)
		case FormatPDF:
			data, err = render.ToPDF(svg)
		case FormatJSON:
			data, err = diagram.MarshalScene(scene)
		case FormatDOT:
			data = []byte(nodelink.ToDOT(m, nodelink.Options{Attributes: opts.IncludeAttributes}))
		case FormatMermaid:
			data, err = renderMermaid(opts)
		default:
			return nil, errors.New(errors.ErrCodeUnsupported, "unsupported format: %s", format)
		}

		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

func renderNodelink(m er.Model, opts Options) (map[string][]byte, error) {
	dot := nodelink.ToDOT(m, nodelink.Options{Attributes: opts.IncludeAttributes})
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data, err = nodelink.RenderSVG(dot)
		case FormatPNG:
			data, err = nodelink.RenderPNG(dot, opts.Scale)
		case FormatPDF:
			data, err = nodelink.RenderPDF(dot)
		case FormatDOT:
			data = []byte(dot)
		case FormatJSON:
			data, err = er.MarshalModel(m)
		default:
			return nil, errors.New(errors.ErrCodeUnsupported, "unsupported nodelink format: %s", format)
		}

		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// renderMermaid re-parses the DDL source into a Mermaid Chen flowchart.
// Only available for mysql input, since Mermaid export works on tables.
func renderMermaid(opts Options) ([]byte, error) {
	if opts.Format != FormatInputMySQL || opts.Source == "" {
		return nil, errors.New(errors.ErrCodeUnsupported, "mermaid export requires mysql input")
	}
	tables, _ := schema.Parse(opts.Source)
	return []byte(schema.MermaidChen(tables)), nil
}
