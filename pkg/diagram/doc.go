// Package diagram computes fully positioned Chen ER diagram scenes from an
// entity/relationship/attribute model.
//
// The engine is a pure, synchronous computation: identical (model, style,
// overrides) inputs always produce an identical Scene. There is no hidden
// state and no reliance on map iteration order; every order-sensitive step
// walks explicitly ordered slices. Concurrent calls need no locking.
//
// Processing runs strictly downward through these stages:
//
//  1. Style normalization — clamp/default global and per-node parameters.
//  2. Sizing — estimate label extents and derive shape sizes.
//  3. Envelopes — reserve orbit radii and spacing extents per backbone node.
//  4. Backbone layout — component decomposition and layered BFS placement
//     of entity/relationship nodes.
//  5. Attribute placement — radial angle selection with iterative collision
//     avoidance around each owner.
//  6. Scene composition — merge geometry, normalize to non-negative canvas
//     coordinates, derive cardinality label anchors.
//
// The composed Scene is serialized to SVG by pkg/render.
package diagram
