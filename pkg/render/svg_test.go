package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/erdraw/erdraw/pkg/diagram"
	"github.com/erdraw/erdraw/pkg/er"
)

func testScene() diagram.Scene {
	m := er.Model{
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
	return diagram.Compose(m, er.StyleParams{}, nil)
}

func TestSVGStructure(t *testing.T) {
	out := string(SVG(testScene()))

	if !strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg"`) {
		t.Fatalf("output does not start with an svg element: %.80s", out)
	}
	if !strings.HasSuffix(out, "</svg>\n") {
		t.Error("output is not closed")
	}

	// Every shape group carries the machine-readable metadata the viewer
	// selects on.
	for _, want := range []string{
		`data-node-id="E_users"`,
		`data-kind="entity"`,
		`data-kind="relationship"`,
		`data-kind="attribute"`,
		`data-owner="E_users"`,
		`data-from="E_users"`,
		`data-to="R_places"`,
		`data-edge="relation"`,
		`data-edge="attribute"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s", want)
		}
	}

	// Primary keys are underlined and suffixed.
	if !strings.Contains(out, `class="label pk"`) || !strings.Contains(out, "id (PK)") {
		t.Error("primary key attribute not marked")
	}

	// Both cardinality texts appear.
	if !strings.Contains(out, `>1</text>`) || !strings.Contains(out, `>N</text>`) {
		t.Error("cardinality labels missing")
	}
}

func TestSVGDeterministic(t *testing.T) {
	s := testScene()
	if !bytes.Equal(SVG(s), SVG(s)) {
		t.Error("two serializations of the same scene differ")
	}
}

func TestSVGEscapesLabels(t *testing.T) {
	m := er.Model{
		Entities: []er.Entity{{ID: "E_x", Name: `<script>&"'`}},
	}
	out := string(SVG(diagram.Compose(m, er.StyleParams{}, nil)))

	if strings.Contains(out, "<script>") {
		t.Fatal("unescaped markup in output")
	}
	if !strings.Contains(out, "&lt;script&gt;&amp;") {
		t.Error("escaped label missing from output")
	}
}

func TestSVGEmptyScene(t *testing.T) {
	out := string(SVG(diagram.Compose(er.Model{}, er.StyleParams{}, nil)))

	if !strings.Contains(out, `viewBox="0 0 480.0 320.0"`) {
		t.Errorf("fallback canvas missing: %.120s", out)
	}
	if strings.Contains(out, "<g") {
		t.Error("empty scene produced node groups")
	}
}

func TestRhombusPoints(t *testing.T) {
	got := rhombusPoints(10, 10, 5, 4)
	want := "10.0,6.0 15.0,10.0 10.0,14.0 5.0,10.0"
	if got != want {
		t.Errorf("rhombusPoints = %q, want %q", got, want)
	}
}

func TestEscape(t *testing.T) {
	got := escape(`a&b<c>"d'`)
	want := "a&amp;b&lt;c&gt;&#34;d&#39;"
	if got != want {
		t.Errorf("escape = %q, want %q", got, want)
	}
}
