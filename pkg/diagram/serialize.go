package diagram

import (
	"encoding/json"
	"fmt"
)

// Kinds serialize as their string names so scene JSON stays readable and
// stable across releases.

// MarshalJSON implements json.Marshaler.
func (k NodeKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (k *NodeKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "entity":
		*k = KindEntity
	case "relationship":
		*k = KindRelationship
	case "attribute":
		*k = KindAttribute
	default:
		return fmt.Errorf("unknown node kind %q", s)
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (k EdgeKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (k *EdgeKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "relation":
		*k = EdgeRelation
	case "attribute":
		*k = EdgeAttribute
	default:
		return fmt.Errorf("unknown edge kind %q", s)
	}
	return nil
}

// MarshalScene serializes a scene to JSON. Output is deterministic for a
// given scene, so the bytes are safe to hash for cache keys.
func MarshalScene(s Scene) ([]byte, error) {
	return json.Marshal(s)
}

// UnmarshalScene deserializes a scene from JSON.
func UnmarshalScene(data []byte) (Scene, error) {
	var s Scene
	if err := json.Unmarshal(data, &s); err != nil {
		return Scene{}, err
	}
	return s, nil
}
