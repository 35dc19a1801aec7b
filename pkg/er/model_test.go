package er

import (
	"reflect"
	"strings"
	"testing"
)

func TestEndpointLabel(t *testing.T) {
	tests := []struct {
		cardinality string
		want        string
	}{
		{"", "N"},
		{"1", "1"},
		{"N", "N"},
		{"0..1", "0..1"},
	}
	for _, tt := range tests {
		ep := Endpoint{EntityID: "E_x", Cardinality: tt.cardinality}
		if got := ep.Label(); got != tt.want {
			t.Errorf("Label(%q) = %q, want %q", tt.cardinality, got, tt.want)
		}
	}
}

func TestModelCounts(t *testing.T) {
	m := Model{
		Entities: []Entity{
			{ID: "E_a", Name: "a", Attributes: []Attribute{{ID: "A_1", Name: "x"}, {ID: "A_2", Name: "y"}}},
			{ID: "E_b", Name: "b"},
		},
		Relationships: []Relationship{
			{ID: "R_1", Name: "r", Attributes: []Attribute{{ID: "A_3", Name: "z"}}},
		},
	}

	if got := m.NodeCount(); got != 3 {
		t.Errorf("NodeCount = %d, want 3", got)
	}
	if got := m.AttributeCount(); got != 3 {
		t.Errorf("AttributeCount = %d, want 3", got)
	}

	var empty Model
	if empty.NodeCount() != 0 || empty.AttributeCount() != 0 {
		t.Error("empty model counts non-zero")
	}
}

func TestModelRoundTrip(t *testing.T) {
	m := Model{
		Entities: []Entity{
			{ID: "E_users", Name: "users", Attributes: []Attribute{
				{ID: "A_id", Name: "id", Primary: true},
			}},
		},
		Relationships: []Relationship{
			{ID: "R_places", Name: "places", Endpoints: []Endpoint{
				{EntityID: "E_users", Cardinality: "1"},
			}},
		},
	}

	data, err := MarshalModel(m)
	if err != nil {
		t.Fatalf("MarshalModel: %v", err)
	}
	// Pretty-printed with the documented field names.
	if !strings.Contains(string(data), "\n  \"entities\"") {
		t.Errorf("unexpected serialization: %.120s", data)
	}
	if !strings.Contains(string(data), `"isPrimary": true`) {
		t.Error("primary flag not serialized")
	}

	got, err := UnmarshalModel(data)
	if err != nil {
		t.Fatalf("UnmarshalModel: %v", err)
	}
	if !reflect.DeepEqual(m, got) {
		t.Errorf("round trip changed model:\n got %+v\nwant %+v", got, m)
	}
}

func TestUnmarshalModelInvalid(t *testing.T) {
	if _, err := UnmarshalModel([]byte("{not json")); err == nil {
		t.Error("invalid JSON accepted")
	}
}
