package diagram

import (
	"math"
	"sort"
)

// Attribute placement tuning. maxPlacementSteps is a best-effort bound, not
// a hard no-overlap guarantee: dense graphs may keep residual overlaps once
// the step budget runs out.
const (
	minCandidateCount   = 24
	candidatesPerAttr   = 6
	unblockedScore      = 2.4 // baseline ceiling when no connector blocks any angle
	maxPlacementSteps   = 18
	placementAngleNudge = 0.08
	placementStepScale  = 12.0
	orbitEntryFactor    = 0.16
	collisionPad        = 6.0
)

// placeAttributes radially places every backbone node's attributes,
// steering clear of connector lines and already-placed shapes.
func placeAttributes(nodes []*backboneNode, connectors []connector, st Style) {
	byID := make(map[string]*backboneNode, len(nodes))
	for _, n := range nodes {
		byID[n.id] = n
	}

	// Neighbor lists in connector order so blocked angles are stable.
	neighbors := make(map[string][]*backboneNode, len(nodes))
	for _, c := range connectors {
		e, r := byID[c.entityID], byID[c.relationID]
		neighbors[e.id] = append(neighbors[e.id], r)
		neighbors[r.id] = append(neighbors[r.id], e)
	}

	var placed []*attrShape
	for _, owner := range nodes {
		if len(owner.attrs) == 0 {
			continue
		}

		var blocked []float64
		for _, nb := range neighbors[owner.id] {
			blocked = append(blocked, math.Atan2(nb.y-owner.y, nb.x-owner.x))
		}

		angles := selectAngles(len(owner.attrs), blocked)
		for i, a := range owner.attrs {
			placeAttr(a, owner, angles[i], nodes, placed, st)
			// Manual offsets are additive over the computed position, same
			// rule as for backbone nodes.
			a.x += a.style.OffsetX
			a.y += a.style.OffsetY
			placed = append(placed, a)
		}
	}
}

// selectAngles picks count directions around the full circle, preferring
// candidates far from every blocked angle while keeping a minimum gap
// between selections.
func selectAngles(count int, blocked []float64) []float64 {
	samples := minCandidateCount
	if n := candidatesPerAttr * count; n > samples {
		samples = n
	}

	// Candidates start at the top (−90°) and proceed clockwise.
	candidates := make([]float64, samples)
	scores := make([]float64, samples)
	for i := range candidates {
		a := -math.Pi/2 + 2*math.Pi*float64(i)/float64(samples)
		candidates[i] = a
		scores[i] = unblockedScore
		for _, b := range blocked {
			if d := angularDistance(a, b); d < scores[i] {
				scores[i] = d
			}
		}
	}

	order := make([]int, samples)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})

	// The gap tightens as attribute count grows but never collapses.
	minGap := math.Max(0.52, math.Min(0.95*math.Pi, 2*math.Pi/float64(count+2)*0.92))

	selected := make([]float64, 0, count)
	for _, idx := range order {
		if len(selected) == count {
			break
		}
		ok := true
		for _, s := range selected {
			if angularDistance(candidates[idx], s) < minGap {
				ok = false
				break
			}
		}
		if ok {
			selected = append(selected, candidates[idx])
		}
	}

	// Gap constraint too strict for the sample: fall back to a perfectly
	// even spread for the remainder.
	for i := len(selected); i < count; i++ {
		selected = append(selected, -math.Pi/2+2*math.Pi*float64(i)/float64(count))
	}
	return selected
}

// placeAttr walks an attribute outward from its owner's orbit until its
// ellipse clears every backbone rectangle and previously placed ellipse,
// or the step budget is exhausted.
func placeAttr(a *attrShape, owner *backboneNode, angle float64, nodes []*backboneNode, placed []*attrShape, st Style) {
	dist := owner.orbit + orbitEntryFactor*a.rx
	step := placementStepScale * st.AttributeScale

	x := owner.x + math.Cos(angle)*dist
	y := owner.y + math.Sin(angle)*dist
	for i := 0; i < maxPlacementSteps; i++ {
		if !collides(x, y, a.rx, a.ry, nodes, placed) {
			break
		}
		dist += step
		if i%2 == 0 {
			angle += placementAngleNudge
		} else {
			angle -= placementAngleNudge
		}
		x = owner.x + math.Cos(angle)*dist
		y = owner.y + math.Sin(angle)*dist
	}
	a.x, a.y = x, y
}

func collides(x, y, rx, ry float64, nodes []*backboneNode, placed []*attrShape) bool {
	for _, n := range nodes {
		if math.Abs(x-n.x) < n.w/2+rx+collisionPad && math.Abs(y-n.y) < n.h/2+ry+collisionPad {
			return true
		}
	}
	for _, p := range placed {
		dx := (x - p.x) / (rx + p.rx + collisionPad)
		dy := (y - p.y) / (ry + p.ry + collisionPad)
		if dx*dx+dy*dy < 1 {
			return true
		}
	}
	return false
}

// angularDistance returns the absolute wrapped distance between two angles
// in [0, π].
func angularDistance(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 2*math.Pi)
	if d > math.Pi {
		d = 2*math.Pi - d
	}
	return d
}
