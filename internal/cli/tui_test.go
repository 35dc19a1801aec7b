package cli

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/erdraw/erdraw/pkg/er"
)

func testInspectERModel() er.Model {
	return er.Model{
		Entities: []er.Entity{
			{ID: "E_users", Name: "users", Attributes: []er.Attribute{
				{ID: "A_users_id", Name: "id", Primary: true},
				{ID: "A_users_email", Name: "email"},
			}},
			{ID: "E_orders", Name: "orders"},
		},
		Relationships: []er.Relationship{
			{ID: "R_places", Name: "places", Endpoints: []er.Endpoint{
				{EntityID: "E_users", Cardinality: "1"},
				{EntityID: "E_orders", Cardinality: "N"},
			}},
		},
	}
}

func TestNewInspectModel(t *testing.T) {
	m := newInspectModel(testInspectERModel())

	if len(m.Entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(m.Entries))
	}
	if m.Entries[0].kind != inspectKindEntity || m.Entries[0].name != "users" {
		t.Errorf("first entry = %+v, want users entity", m.Entries[0])
	}
	if m.Entries[0].rows[0][1] != "PK" {
		t.Errorf("primary attribute should be flagged PK, got %v", m.Entries[0].rows[0])
	}

	rel := m.Entries[2]
	if rel.kind != inspectKindRelation {
		t.Fatalf("last entry kind = %q", rel.kind)
	}
	if len(rel.rows) != 2 || rel.rows[0][2] != "1" || rel.rows[1][2] != "N" {
		t.Errorf("relationship rows = %v", rel.rows)
	}
	// Endpoint ids resolve to entity names
	if rel.rows[1][1] != "orders" {
		t.Errorf("endpoint name = %q, want orders", rel.rows[1][1])
	}
}

func TestInspectModelNavigation(t *testing.T) {
	m := newInspectModel(testInspectERModel())

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(InspectModel)
	if m.Cursor != 1 {
		t.Errorf("cursor after down = %d, want 1", m.Cursor)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = next.(InspectModel)
	if m.Cursor != 0 {
		t.Errorf("cursor after up = %d, want 0", m.Cursor)
	}

	// Up at the top stays put
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = next.(InspectModel)
	if m.Cursor != 0 {
		t.Errorf("cursor should clamp at 0, got %d", m.Cursor)
	}

	if m.View() == "" {
		t.Error("View() should render content")
	}
}
