package diagram

import (
	"math"
	"testing"

	"github.com/erdraw/erdraw/pkg/er"
)

func TestAngularDistance(t *testing.T) {
	tests := []struct {
		a, b, want float64
	}{
		{0, 0, 0},
		{0, math.Pi, math.Pi},
		{-math.Pi / 2, math.Pi / 2, math.Pi},
		{0.1, 2*math.Pi + 0.1, 0},
		{-3, 3, 2*math.Pi - 6},
	}
	for _, tt := range tests {
		if got := angularDistance(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("angularDistance(%g, %g) = %g, want %g", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSelectAngles(t *testing.T) {
	angles := selectAngles(4, nil)
	if len(angles) != 4 {
		t.Fatalf("got %d angles, want 4", len(angles))
	}

	// Unblocked selection starts at the top and keeps selections apart.
	if math.Abs(angles[0]-(-math.Pi/2)) > 1e-9 {
		t.Errorf("first angle = %g, want top (−π/2)", angles[0])
	}
	for i := range angles {
		for j := i + 1; j < len(angles); j++ {
			if angularDistance(angles[i], angles[j]) < 0.5 {
				t.Errorf("angles %g and %g too close", angles[i], angles[j])
			}
		}
	}
}

func TestSelectAnglesAvoidsBlocked(t *testing.T) {
	// One connector heading due east: the single attribute goes elsewhere.
	angles := selectAngles(1, []float64{0})
	if d := angularDistance(angles[0], 0); d < math.Pi/2 {
		t.Errorf("selected angle %g only %g from blocked direction", angles[0], d)
	}
}

func TestPlaceAttributesClearance(t *testing.T) {
	m := er.Model{
		Entities: []er.Entity{
			{ID: "E_users", Name: "users", Attributes: []er.Attribute{
				{ID: "A_1", Name: "id", Primary: true},
				{ID: "A_2", Name: "email"},
				{ID: "A_3", Name: "full_name"},
				{ID: "A_4", Name: "created_at"},
				{ID: "A_5", Name: "last_login"},
				{ID: "A_6", Name: "password_hash"},
			}},
		},
	}
	s := Compose(m, er.StyleParams{}, nil)

	owner := sceneNode(t, s, "E_users")
	var attrs []Node
	for _, n := range s.Nodes {
		if n.Kind == KindAttribute {
			attrs = append(attrs, n)
		}
	}
	if len(attrs) != 6 {
		t.Fatalf("got %d attribute nodes, want 6", len(attrs))
	}

	for i, a := range attrs {
		// Each ellipse clears the owner rectangle.
		if math.Abs(a.X-owner.X) < owner.W/2+a.W/2 &&
			math.Abs(a.Y-owner.Y) < owner.H/2+a.H/2 {
			t.Errorf("attribute %s overlaps its owner", a.ID)
		}
		// And its siblings.
		for _, b := range attrs[i+1:] {
			dx := (a.X - b.X) / (a.W/2 + b.W/2)
			dy := (a.Y - b.Y) / (a.H/2 + b.H/2)
			if dx*dx+dy*dy < 1 {
				t.Errorf("attributes %s and %s overlap", a.ID, b.ID)
			}
		}
	}
}

func TestComposeOffsetOverrideAdditive(t *testing.T) {
	m := testModel()
	base := Compose(m, er.StyleParams{}, nil)

	offset := 100.0
	shifted := Compose(m, er.StyleParams{}, map[string]er.NodeStyleParams{
		"E_users": {OffsetX: &offset},
	})

	// The canvas renormalizes after the shift, so compare positions
	// relative to an unmoved node.
	baseDiff := sceneNode(t, base, "E_users").X - sceneNode(t, base, "E_orders").X
	shiftDiff := sceneNode(t, shifted, "E_users").X - sceneNode(t, shifted, "E_orders").X
	if math.Abs(shiftDiff-(baseDiff+offset)) > 1e-6 {
		t.Errorf("relative shift = %g, want %g", shiftDiff-baseDiff, offset)
	}
}
