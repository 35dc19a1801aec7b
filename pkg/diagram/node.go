package diagram

// NodeKind discriminates the three shape variants of a scene. It is a
// closed set; switches over it must be exhaustive.
type NodeKind uint8

const (
	KindEntity NodeKind = iota
	KindRelationship
	KindAttribute
)

// String returns the serialized kind name used in output metadata.
func (k NodeKind) String() string {
	switch k {
	case KindEntity:
		return "entity"
	case KindRelationship:
		return "relationship"
	case KindAttribute:
		return "attribute"
	}
	return "unknown"
}

// backboneNode is the working representation of an entity or relationship
// during layout. Coordinates are centers.
type backboneNode struct {
	id   string
	name string
	kind NodeKind // KindEntity or KindRelationship only
	w, h float64
	x, y float64

	style NodeStyle
	attrs []*attrShape

	// Envelope values, computed once after sizing.
	orbit float64
	envX  float64
	envY  float64
}

// attrShape is the working representation of an attribute ellipse.
type attrShape struct {
	id      string
	name    string
	primary bool
	rx, ry  float64
	x, y    float64
	style   NodeStyle
}

// connector records one entity↔relationship adjacency with its cardinality
// label. Endpoints referencing unknown entities never become connectors.
type connector struct {
	entityID    string
	relationID  string
	cardinality string
}
