package diagram

import (
	"math"

	"github.com/erdraw/erdraw/pkg/er"
)

// Canvas constants. An empty model yields the fallback canvas instead of
// an error.
const (
	canvasPadding  = 40.0
	fallbackWidth  = 480.0
	fallbackHeight = 320.0
)

// cardinalityBias places the label 62% of the way from the entity to the
// relationship, biasing it toward the relationship shape.
const cardinalityBias = 0.62

// Scene is the fully positioned diagram: nodes with absolute coordinates,
// connector edges, cardinality label anchors, and canvas dimensions. It is
// derived per render call and never persisted.
type Scene struct {
	Nodes         []Node             `json:"nodes"`
	Edges         []Edge             `json:"edges"`
	Cardinalities []CardinalityLabel `json:"cardinalities"`
	Width         float64            `json:"width"`
	Height        float64            `json:"height"`

	// Style is the normalized global style the scene was composed with,
	// carried along for the serializer.
	Style Style `json:"style"`
}

// Node is one placed shape. X/Y are the shape center; W/H the full extent
// (for attributes, the ellipse diameters).
type Node struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Kind    NodeKind  `json:"kind"`
	OwnerID string    `json:"ownerId,omitempty"`   // owning backbone node id, attributes only
	Primary bool      `json:"isPrimary,omitempty"` // primary-key flag, attributes only
	X       float64   `json:"x"`
	Y       float64   `json:"y"`
	W       float64   `json:"w"`
	H       float64   `json:"h"`
	Style   NodeStyle `json:"style"`
}

// EdgeKind discriminates connector edges.
type EdgeKind uint8

const (
	// EdgeRelation connects an entity to a relationship.
	EdgeRelation EdgeKind = iota
	// EdgeAttribute connects an attribute to its owner.
	EdgeAttribute
)

// String returns the serialized edge kind used in output metadata.
func (k EdgeKind) String() string {
	switch k {
	case EdgeRelation:
		return "relation"
	case EdgeAttribute:
		return "attribute"
	}
	return "unknown"
}

// Edge is one connector line between node centers.
type Edge struct {
	Kind   EdgeKind `json:"kind"`
	FromID string   `json:"fromId"`
	ToID   string   `json:"toId"`
	X1     float64  `json:"x1"`
	Y1     float64  `json:"y1"`
	X2     float64  `json:"x2"`
	Y2     float64  `json:"y2"`
}

// CardinalityLabel anchors one endpoint's multiplicity text near its
// connector.
type CardinalityLabel struct {
	EntityID   string  `json:"entityId"`
	RelationID string  `json:"relationId"`
	Text       string  `json:"text"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
}

// Compose runs the full engine: normalize styles, size and place backbone
// nodes, place attributes, and merge everything into a canvas-normalized
// scene. It is referentially transparent and safe for concurrent use.
func Compose(m er.Model, params er.StyleParams, overrides map[string]er.NodeStyleParams) Scene {
	st := NormalizeStyle(params)
	ov := NormalizeOverrides(overrides)

	nodes, connectors := buildBackbone(m, st, ov)
	placeAttributes(nodes, connectors, st)

	return composeScene(nodes, connectors, st)
}

func composeScene(nodes []*backboneNode, connectors []connector, st Style) Scene {
	scene := Scene{Style: st}

	if len(nodes) == 0 {
		scene.Width, scene.Height = fallbackWidth, fallbackHeight
		return scene
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	extend := func(x, y, halfW, halfH float64) {
		minX = math.Min(minX, x-halfW)
		maxX = math.Max(maxX, x+halfW)
		minY = math.Min(minY, y-halfH)
		maxY = math.Max(maxY, y+halfH)
	}
	for _, n := range nodes {
		extend(n.x, n.y, n.w/2, n.h/2)
		for _, a := range n.attrs {
			extend(a.x, a.y, a.rx, a.ry)
		}
	}

	// Shift so the minimum bound lands on the padding; every coordinate in
	// the scene is non-negative.
	dx, dy := canvasPadding-minX, canvasPadding-minY
	scene.Width = (maxX - minX) + 2*canvasPadding
	scene.Height = (maxY - minY) + 2*canvasPadding

	byID := make(map[string]*backboneNode, len(nodes))
	for _, n := range nodes {
		n.x += dx
		n.y += dy
		byID[n.id] = n
		scene.Nodes = append(scene.Nodes, Node{
			ID: n.id, Name: n.name, Kind: n.kind,
			X: n.x, Y: n.y, W: n.w, H: n.h,
			Style: n.style,
		})
		for _, a := range n.attrs {
			a.x += dx
			a.y += dy
			scene.Nodes = append(scene.Nodes, Node{
				ID: a.id, Name: a.name, Kind: KindAttribute,
				OwnerID: n.id, Primary: a.primary,
				X: a.x, Y: a.y, W: 2 * a.rx, H: 2 * a.ry,
				Style: a.style,
			})
		}
	}

	for _, c := range connectors {
		e, r := byID[c.entityID], byID[c.relationID]
		scene.Edges = append(scene.Edges, Edge{
			Kind:   EdgeRelation,
			FromID: e.id, ToID: r.id,
			X1: e.x, Y1: e.y, X2: r.x, Y2: r.y,
		})
		scene.Cardinalities = append(scene.Cardinalities, CardinalityLabel{
			EntityID:   e.id,
			RelationID: r.id,
			Text:       c.cardinality,
			X:          e.x + (r.x-e.x)*cardinalityBias,
			Y:          e.y + (r.y-e.y)*cardinalityBias,
		})
	}
	for _, n := range nodes {
		for _, a := range n.attrs {
			scene.Edges = append(scene.Edges, Edge{
				Kind:   EdgeAttribute,
				FromID: n.id, ToID: a.id,
				X1: n.x, Y1: n.y, X2: a.x, Y2: a.y,
			})
		}
	}

	return scene
}
