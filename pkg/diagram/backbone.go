package diagram

import (
	"math"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/erdraw/erdraw/pkg/er"
)

// componentGapFactor widens the gap between connected components relative
// to the horizontal level margin.
const componentGapFactor = 1.3

// buildBackbone creates one sized node per entity and relationship, records
// the entity↔relationship connectors, and positions every node.
//
// Node creation order (entities first, then relationships, each in model
// order) drives component discovery and root selection, so the layout is
// deterministic for a fixed model regardless of map iteration order.
func buildBackbone(m er.Model, st Style, overrides map[string]NodeStyle) ([]*backboneNode, []connector) {
	nodes := make([]*backboneNode, 0, m.NodeCount())
	byID := make(map[string]*backboneNode, m.NodeCount())

	add := func(n *backboneNode) {
		if _, dup := byID[n.id]; dup {
			return
		}
		nodes = append(nodes, n)
		byID[n.id] = n
	}

	for _, e := range m.Entities {
		ns := nodeStyleFor(overrides, e.ID)
		w, h := entitySize(e.Name, st, ns.Scale)
		n := &backboneNode{id: e.ID, name: e.Name, kind: KindEntity, w: w, h: h, style: ns}
		n.attrs = buildAttrShapes(e.Attributes, st, overrides)
		add(n)
	}
	for _, r := range m.Relationships {
		ns := nodeStyleFor(overrides, r.ID)
		w, h := relationSize(r.Name, st, ns.Scale)
		n := &backboneNode{id: r.ID, name: r.Name, kind: KindRelationship, w: w, h: h, style: ns}
		n.attrs = buildAttrShapes(r.Attributes, st, overrides)
		add(n)
	}

	for _, n := range nodes {
		computeEnvelope(n, st)
	}

	// Undirected adjacency in endpoint order. Endpoints naming an unknown
	// entity are dropped here and never reappear downstream.
	adjacency := make(map[string][]string, len(nodes))
	var connectors []connector
	for _, r := range m.Relationships {
		for _, ep := range r.Endpoints {
			if _, ok := byID[ep.EntityID]; !ok {
				continue
			}
			connectors = append(connectors, connector{
				entityID:    ep.EntityID,
				relationID:  r.ID,
				cardinality: ep.Label(),
			})
			adjacency[r.ID] = append(adjacency[r.ID], ep.EntityID)
			adjacency[ep.EntityID] = append(adjacency[ep.EntityID], r.ID)
		}
	}

	layoutComponents(nodes, byID, adjacency, st)

	// Manual positioning is strictly additive over automatic layout:
	// re-rendering with the same override yields the same final position,
	// and clearing it restores the auto-computed one exactly.
	for _, n := range nodes {
		n.x += n.style.OffsetX
		n.y += n.style.OffsetY
	}

	return nodes, connectors
}

func buildAttrShapes(attrs []er.Attribute, st Style, overrides map[string]NodeStyle) []*attrShape {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]*attrShape, len(attrs))
	for i, a := range attrs {
		ns := nodeStyleFor(overrides, a.ID)
		rx, ry := attributeSize(a.Name, st, ns.Scale)
		out[i] = &attrShape{id: a.ID, name: a.Name, primary: a.Primary, rx: rx, ry: ry, style: ns}
	}
	return out
}

// layoutComponents decomposes the node set into connected components,
// places each with layered BFS, and shifts components apart horizontally.
func layoutComponents(nodes []*backboneNode, byID map[string]*backboneNode, adjacency map[string][]string, st Style) {
	coll := collate.New(language.Und)
	visited := make(map[string]bool, len(nodes))
	cursor := 0.0

	for _, seed := range nodes {
		if visited[seed.id] {
			continue
		}
		component := collectComponent(seed, byID, adjacency, visited)
		layoutComponent(component, byID, adjacency, st, coll)

		// Shift past everything placed so far. Components never overlap.
		minX, maxX := math.Inf(1), math.Inf(-1)
		for _, n := range component {
			minX = math.Min(minX, n.x-n.envX)
			maxX = math.Max(maxX, n.x+n.envX)
		}
		offset := cursor - minX
		for _, n := range component {
			n.x += offset
		}
		cursor += (maxX - minX) + componentGapFactor*st.GapX
	}
}

// collectComponent gathers the component containing seed in BFS encounter
// order. The visited set guarantees termination even when a relationship
// reaches the same entity through multiple endpoints.
func collectComponent(seed *backboneNode, byID map[string]*backboneNode, adjacency map[string][]string, visited map[string]bool) []*backboneNode {
	var component []*backboneNode
	queue := []*backboneNode{seed}
	visited[seed.id] = true
	for head := 0; head < len(queue); head++ {
		n := queue[head]
		component = append(component, n)
		for _, id := range adjacency[n.id] {
			if visited[id] {
				continue
			}
			visited[id] = true
			queue = append(queue, byID[id])
		}
	}
	return component
}

// layoutComponent assigns x by BFS depth level and stacks each level
// vertically, recentered around the level midpoint.
func layoutComponent(component []*backboneNode, byID map[string]*backboneNode, adjacency map[string][]string, st Style, coll *collate.Collator) {
	if len(component) == 0 {
		return
	}

	// Root choice: the first relationship-type node in component order, or
	// the component's first node when none is a relationship. Deliberately
	// arbitrary but stable; kept for output compatibility.
	root := component[0]
	for _, n := range component {
		if n.kind == KindRelationship {
			root = n
			break
		}
	}

	depths := bfsDepths(root, byID, adjacency)

	maxDepth := 0
	for _, n := range component {
		if d := depths[n.id]; d > maxDepth {
			maxDepth = d
		}
	}

	levels := make([][]*backboneNode, maxDepth+1)
	for _, n := range component {
		d := depths[n.id]
		levels[d] = append(levels[d], n)
	}

	x := 0.0
	prevHalf := 0.0
	for depth, level := range levels {
		if len(level) == 0 {
			continue
		}

		half := 0.0
		for _, n := range level {
			half = math.Max(half, n.envX)
		}
		if depth > 0 {
			x += prevHalf + half + st.GapX
		}
		prevHalf = half

		// Locale-aware name ordering keeps tie-breaking deterministic and
		// script-agnostic.
		sort.SliceStable(level, func(i, j int) bool {
			return coll.CompareString(level[i].name, level[j].name) < 0
		})

		y := 0.0
		for i, n := range level {
			if i > 0 {
				y += level[i-1].envY + n.envY + st.GapY
			}
			n.x = x
			n.y = y
		}
		mid := (level[0].y + level[len(level)-1].y) / 2
		for _, n := range level {
			n.y -= mid
		}
	}
}

// bfsDepths assigns every reachable node its distance from root. The queue
// is a head-indexed slice, so front removal is O(1) on large graphs.
func bfsDepths(root *backboneNode, byID map[string]*backboneNode, adjacency map[string][]string) map[string]int {
	depths := map[string]int{root.id: 0}
	queue := []*backboneNode{root}
	for head := 0; head < len(queue); head++ {
		n := queue[head]
		for _, id := range adjacency[n.id] {
			if _, seen := depths[id]; seen {
				continue
			}
			depths[id] = depths[n.id] + 1
			queue = append(queue, byID[id])
		}
	}
	return depths
}
