// Package nodelink renders ER models as traditional node-link diagrams.
//
// # Overview
//
// This package produces directed graph visualizations using Graphviz,
// where entities appear as boxes and relationships as diamonds. It's an
// alternative to the deterministic Chen layout for cases where a classic
// auto-laid-out diagram is preferred.
//
// # Usage
//
// Convert a model to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(model, nodelink.Options{Attributes: true})
//	svg, err := nodelink.RenderSVG(dot)
//
// For PDF or PNG output, use the render functions:
//
//	pdf, err := nodelink.RenderPDF(dot)
//	png, err := nodelink.RenderPNG(dot, 2.0)  // 2x scale
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Attributes: when true, attribute ellipses are included
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
