package diagram

import "math"

// Envelope constants: the orbit margin grows with the attribute-ellipse
// scale, the per-attribute widening is capped, and nodes without attributes
// keep a tighter bound.
const (
	orbitMargin        = 26.0
	orbitPerAttribute  = 9.0
	orbitAttributeCap  = 70.0
	orbitBareFactor    = 0.72
	envelopeNodePad    = 16.0
	envelopeOrbitPad   = 12.0
)

// computeEnvelope fills in the node's orbit radius and spacing half-extents.
// The orbit radius is the radial distance reserved before attribute
// ellipses begin; the envelope extents keep neighboring backbone nodes far
// enough apart that both shapes and their attribute orbits stay clear.
//
// Adding an attribute never decreases any of the three values.
func computeEnvelope(n *backboneNode, st Style) {
	orbit := math.Max(n.w, n.h)/2 + orbitMargin*st.AttributeScale
	if len(n.attrs) > 0 {
		orbit += math.Min(orbitAttributeCap, orbitPerAttribute*float64(len(n.attrs)))
	} else {
		orbit *= orbitBareFactor
	}
	n.orbit = orbit

	var maxRx, maxRy float64
	for _, a := range n.attrs {
		maxRx = math.Max(maxRx, a.rx)
		maxRy = math.Max(maxRy, a.ry)
	}

	n.envX = math.Max(n.w/2+envelopeNodePad, orbit+maxRx+envelopeOrbitPad)
	n.envY = math.Max(n.h/2+envelopeNodePad, orbit+maxRy+envelopeOrbitPad)
}
