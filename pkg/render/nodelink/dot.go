package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/erdraw/erdraw/pkg/er"
	"github.com/erdraw/erdraw/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Attributes includes attribute ellipses connected to their owners.
	// When false, only entities and relationships are shown.
	Attributes bool
}

// ToDOT converts an ER model to Graphviz DOT format for node-link
// visualization. The resulting DOT string can be rendered using
// [RenderSVG], [RenderPDF], or [RenderPNG].
func ToDOT(m er.Model, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph ER {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontsize=12, fillcolor=white, style=filled];\n")
	buf.WriteString("\n")

	for _, e := range m.Entities {
		fmt.Fprintf(&buf, "  %q [shape=box, label=%q];\n", e.ID, e.Name)
		if opts.Attributes {
			writeAttrs(&buf, e.ID, e.Attributes)
		}
	}
	for _, r := range m.Relationships {
		fmt.Fprintf(&buf, "  %q [shape=diamond, label=%q];\n", r.ID, r.Name)
		if opts.Attributes {
			writeAttrs(&buf, r.ID, r.Attributes)
		}
	}

	buf.WriteString("\n")
	known := make(map[string]bool, len(m.Entities))
	for _, e := range m.Entities {
		known[e.ID] = true
	}
	for _, r := range m.Relationships {
		for _, ep := range r.Endpoints {
			if !known[ep.EntityID] {
				continue
			}
			fmt.Fprintf(&buf, "  %q -- %q [label=%q];\n", ep.EntityID, r.ID, ep.Label())
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeAttrs(buf *bytes.Buffer, ownerID string, attrs []er.Attribute) {
	for _, a := range attrs {
		label := a.Name
		if a.Primary {
			label += " (PK)"
		}
		fmt.Fprintf(buf, "  %q [shape=ellipse, fontsize=10, label=%q];\n", a.ID, label)
		fmt.Fprintf(buf, "  %q -- %q;\n", ownerID, a.ID)
	}
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with
// [render.ToPDF] or [render.ToPNG].
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPDF].
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPNG].
//
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
