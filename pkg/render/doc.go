// Package render serializes composed diagram scenes to output formats.
//
// # Chen SVG
//
// [SVG] renders a [diagram.Scene] to a self-contained vector document with
// the interaction metadata the viewer needs (node ids, kinds, names, edge
// endpoints) and a fixed class set parameterized by the active style. The
// output is deterministic byte for byte.
//
// # Format conversion
//
// [ToPDF] and [ToPNG] convert any SVG to other formats using the external
// rsvg-convert tool (from librsvg):
//
//	svg := render.SVG(scene)
//	png, err := render.ToPNG(svg, 2.0) // 2x scale
//
// # Node-link view
//
// The [nodelink] subpackage renders the same ER model as a classic
// directed diagram through Graphviz, as an alternative to the Chen layout:
//
//	dot := nodelink.ToDOT(model, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//
// [nodelink]: github.com/erdraw/erdraw/pkg/render/nodelink
package render
