package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"

	"github.com/erdraw/erdraw/pkg/diagram"
)

// Serializer constants. Stroke widths derive from the global line width;
// font sizes scale with the global font factor, each with a floor.
const (
	hitPadding         = 10.0
	entityFontMin      = 11.0
	entityFontBase     = 14.0
	attributeFontMin   = 9.0
	attributeFontBase  = 12.0
	cardinalityFontMin = 8.0
	cardinalityFontVar = 11.0
	cardinalityPadX    = 5.0
	cardinalityPadY    = 3.0
	selectionColor     = "#2563eb"
)

// SVG serializes a composed scene into a self-contained vector document.
//
// The structural contract is load-bearing for the interactive viewer and
// the rasterizer: the root element carries explicit numeric width/height
// matching its viewBox, every node group carries data-node-id / data-kind /
// data-name (attributes also data-owner), and every connector line carries
// data-edge / data-from / data-to. Rendering is deterministic byte for
// byte for a fixed scene.
func SVG(s diagram.Scene) []byte {
	var buf bytes.Buffer
	st := s.Style

	fmt.Fprintf(&buf,
		`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.1f" height="%.1f">`+"\n",
		s.Width, s.Height, s.Width, s.Height)
	writeStyleDefs(&buf, st)

	// Draw order, back to front: relation connectors, attribute
	// connectors, cardinality labels, node shapes.
	for _, e := range s.Edges {
		if e.Kind == diagram.EdgeRelation {
			writeEdge(&buf, e, "edge")
		}
	}
	for _, e := range s.Edges {
		if e.Kind == diagram.EdgeAttribute {
			writeEdge(&buf, e, "attr-edge")
		}
	}
	for _, c := range s.Cardinalities {
		writeCardinality(&buf, c, st)
	}
	for _, n := range s.Nodes {
		switch n.Kind {
		case diagram.KindEntity:
			writeEntity(&buf, n, st)
		case diagram.KindRelationship:
			writeRelationship(&buf, n, st)
		case diagram.KindAttribute:
			writeAttribute(&buf, n, st)
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// backboneStroke returns the stroke width for entity/relationship shapes.
// A non-zero per-node override wins over the global rule.
func backboneStroke(st diagram.Style, ns diagram.NodeStyle) float64 {
	if ns.StrokeWidth > 0 {
		return ns.StrokeWidth
	}
	return math.Max(1.8, st.LineWidth*1.35)
}

func attributeStroke(st diagram.Style, ns diagram.NodeStyle) float64 {
	if ns.StrokeWidth > 0 {
		return ns.StrokeWidth
	}
	return math.Max(1.2, st.LineWidth*1.05)
}

func entityFont(st diagram.Style) float64 {
	return math.Max(entityFontMin, entityFontBase*st.FontScale)
}

func attributeFont(st diagram.Style) float64 {
	return math.Max(attributeFontMin, attributeFontBase*st.FontScale)
}

func cardinalityFont(st diagram.Style) float64 {
	return math.Max(cardinalityFontMin, cardinalityFontVar*st.FontScale)
}

func writeStyleDefs(buf *bytes.Buffer, st diagram.Style) {
	fmt.Fprintf(buf, "  <style>\n")
	fmt.Fprintf(buf, "    .edge { stroke: #111111; stroke-width: %.2f; fill: none; }\n", math.Max(1.0, st.LineWidth))
	fmt.Fprintf(buf, "    .attr-edge { stroke: #444444; stroke-width: %.2f; fill: none; }\n", math.Max(0.8, st.LineWidth*0.8))
	fmt.Fprintf(buf, "    .node { cursor: pointer; }\n")
	fmt.Fprintf(buf, "    .hit { fill: transparent; stroke: none; pointer-events: all; }\n")
	fmt.Fprintf(buf, "    .label { font-family: 'Helvetica Neue', Arial, sans-serif; text-anchor: middle; dominant-baseline: central; }\n")
	fmt.Fprintf(buf, "    .pk { text-decoration: underline; }\n")
	fmt.Fprintf(buf, "    .cardinality { font-family: 'Helvetica Neue', Arial, sans-serif; text-anchor: middle; dominant-baseline: central; fill: #111111; }\n")
	fmt.Fprintf(buf, "    .cardinality-bg { fill: #ffffff; fill-opacity: 0.85; stroke: none; }\n")
	fmt.Fprintf(buf, "    .node.selected .shape { stroke: %s; stroke-width: %.2f; }\n", selectionColor, math.Max(2.4, st.LineWidth*1.8))
	fmt.Fprintf(buf, "  </style>\n")
}

func writeEdge(buf *bytes.Buffer, e diagram.Edge, class string) {
	fmt.Fprintf(buf,
		`  <line class="%s" data-edge="%s" data-from="%s" data-to="%s" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>`+"\n",
		class, e.Kind, escape(e.FromID), escape(e.ToID), e.X1, e.Y1, e.X2, e.Y2)
}

func writeCardinality(buf *bytes.Buffer, c diagram.CardinalityLabel, st diagram.Style) {
	font := cardinalityFont(st)
	w := diagram.TextWidth(c.Text, font) + 2*cardinalityPadX
	h := font + 2*cardinalityPadY
	fmt.Fprintf(buf,
		`  <rect class="cardinality-bg" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="2"/>`+"\n",
		c.X-w/2, c.Y-h/2, w, h)
	fmt.Fprintf(buf,
		`  <text class="cardinality" data-entity="%s" data-relation="%s" x="%.1f" y="%.1f" font-size="%.1f">%s</text>`+"\n",
		escape(c.EntityID), escape(c.RelationID), c.X, c.Y, font, escape(c.Text))
}

func writeEntity(buf *bytes.Buffer, n diagram.Node, st diagram.Style) {
	openNodeGroup(buf, n)
	fmt.Fprintf(buf, `    <rect class="hit" x="%.1f" y="%.1f" width="%.1f" height="%.1f"/>`+"\n",
		n.X-n.W/2-hitPadding, n.Y-n.H/2-hitPadding, n.W+2*hitPadding, n.H+2*hitPadding)
	fmt.Fprintf(buf, `    <rect class="shape" x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" stroke="#111111" stroke-width="%.2f"/>`+"\n",
		n.X-n.W/2, n.Y-n.H/2, n.W, n.H, n.Style.Fill, backboneStroke(st, n.Style))
	writeLabel(buf, n.X, n.Y, n.Name, entityFont(st), n.Style.TextColor, false)
	buf.WriteString("  </g>\n")
}

func writeRelationship(buf *bytes.Buffer, n diagram.Node, st diagram.Style) {
	openNodeGroup(buf, n)
	fmt.Fprintf(buf, `    <polygon class="hit" points="%s"/>`+"\n",
		rhombusPoints(n.X, n.Y, n.W/2+hitPadding, n.H/2+hitPadding))
	fmt.Fprintf(buf, `    <polygon class="shape" points="%s" fill="%s" stroke="#111111" stroke-width="%.2f"/>`+"\n",
		rhombusPoints(n.X, n.Y, n.W/2, n.H/2), n.Style.Fill, backboneStroke(st, n.Style))
	writeLabel(buf, n.X, n.Y, n.Name, entityFont(st), n.Style.TextColor, false)
	buf.WriteString("  </g>\n")
}

func writeAttribute(buf *bytes.Buffer, n diagram.Node, st diagram.Style) {
	openNodeGroup(buf, n)
	fmt.Fprintf(buf, `    <ellipse class="hit" cx="%.1f" cy="%.1f" rx="%.1f" ry="%.1f"/>`+"\n",
		n.X, n.Y, n.W/2+hitPadding, n.H/2+hitPadding)
	fmt.Fprintf(buf, `    <ellipse class="shape" cx="%.1f" cy="%.1f" rx="%.1f" ry="%.1f" fill="%s" stroke="#111111" stroke-width="%.2f"/>`+"\n",
		n.X, n.Y, n.W/2, n.H/2, n.Style.Fill, attributeStroke(st, n.Style))

	// Primary-key attributes render underlined with an explicit suffix so
	// key status survives black-and-white export.
	label := n.Name
	if n.Primary {
		label += " (PK)"
	}
	writeLabel(buf, n.X, n.Y, label, attributeFont(st), n.Style.TextColor, n.Primary)
	buf.WriteString("  </g>\n")
}

func openNodeGroup(buf *bytes.Buffer, n diagram.Node) {
	fmt.Fprintf(buf, `  <g class="node" data-node-id="%s" data-kind="%s" data-name="%s"`,
		escape(n.ID), n.Kind, escape(n.Name))
	if n.OwnerID != "" {
		fmt.Fprintf(buf, ` data-owner="%s"`, escape(n.OwnerID))
	}
	buf.WriteString(">\n")
}

func writeLabel(buf *bytes.Buffer, x, y float64, text string, font float64, color string, pk bool) {
	class := "label"
	if pk {
		class = "label pk"
	}
	fmt.Fprintf(buf, `    <text class="%s" x="%.1f" y="%.1f" font-size="%.1f" fill="%s">%s</text>`+"\n",
		class, x, y, font, color, escape(text))
}

// rhombusPoints returns the four corner points of a diamond centered at
// (cx, cy).
func rhombusPoints(cx, cy, halfW, halfH float64) string {
	return fmt.Sprintf("%.1f,%.1f %.1f,%.1f %.1f,%.1f %.1f,%.1f",
		cx, cy-halfH,
		cx+halfW, cy,
		cx, cy+halfH,
		cx-halfW, cy)
}

// escape guards label text and metadata against the five reserved markup
// characters.
func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
