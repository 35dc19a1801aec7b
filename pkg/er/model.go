// Package er defines the entity/relationship/attribute model rendered by the
// diagram engine.
//
// A Model is the canonical serialization format exchanged between the schema
// parser, the HTTP API, the diagram store, and the layout engine. The format
// is designed for round-trip fidelity: parse → save → load → render produces
// identical output.
package er

import (
	"encoding/json"
	"fmt"
)

// DefaultCardinality is used when an endpoint omits its cardinality.
const DefaultCardinality = "N"

// Model is the complete entity/relationship model for one diagram.
type Model struct {
	Entities      []Entity       `json:"entities" bson:"entities"`
	Relationships []Relationship `json:"relationships" bson:"relationships"`
}

// Entity is a first-class object type, drawn as a rectangle.
type Entity struct {
	ID         string      `json:"id" bson:"id"`
	Name       string      `json:"name" bson:"name"`
	Attributes []Attribute `json:"attributes,omitempty" bson:"attributes,omitempty"`
}

// Relationship is an association between entities, drawn as a rhombus.
// Its own attributes are distinct from the attributes of its endpoint
// entities.
type Relationship struct {
	ID         string      `json:"id" bson:"id"`
	Name       string      `json:"name" bson:"name"`
	Endpoints  []Endpoint  `json:"endpoints" bson:"endpoints"`
	Attributes []Attribute `json:"attributes,omitempty" bson:"attributes,omitempty"`
}

// Endpoint connects a relationship to one participating entity.
type Endpoint struct {
	EntityID    string `json:"entityId" bson:"entity_id"`
	Cardinality string `json:"cardinality,omitempty" bson:"cardinality,omitempty"`
}

// Label returns the endpoint cardinality, defaulting to "N" when absent.
func (e Endpoint) Label() string {
	if e.Cardinality == "" {
		return DefaultCardinality
	}
	return e.Cardinality
}

// Attribute is a named property of an entity or relationship, drawn as an
// ellipse connected to its owner. Attribute ids are unique across the whole
// model.
type Attribute struct {
	ID      string `json:"id" bson:"id"`
	Name    string `json:"name" bson:"name"`
	Primary bool   `json:"isPrimary,omitempty" bson:"is_primary,omitempty"`
}

// NodeCount returns the number of backbone nodes (entities + relationships).
func (m *Model) NodeCount() int {
	return len(m.Entities) + len(m.Relationships)
}

// AttributeCount returns the total number of attributes across all owners.
func (m *Model) AttributeCount() int {
	n := 0
	for _, e := range m.Entities {
		n += len(e.Attributes)
	}
	for _, r := range m.Relationships {
		n += len(r.Attributes)
	}
	return n
}

// MarshalModel serializes a Model to pretty-printed JSON bytes.
func MarshalModel(m Model) ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// UnmarshalModel deserializes JSON bytes into a Model.
func UnmarshalModel(data []byte) (Model, error) {
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return Model{}, fmt.Errorf("unmarshal model: %w", err)
	}
	return m, nil
}
