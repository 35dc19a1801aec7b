package schema

import (
	"regexp"
	"strconv"

	"github.com/erdraw/erdraw/pkg/er"
)

var unsafeIDRe = regexp.MustCompile(`[^A-Za-z0-9_]`)

// nodeID mints a deterministic, collision-free node id from a prefix and a
// raw name. Ids are stable across runs for the same input order.
func nodeID(prefix, raw string, used map[string]bool) string {
	safe := unsafeIDRe.ReplaceAllString(raw, "_")
	if safe == "" {
		safe = "N"
	}
	if safe[0] >= '0' && safe[0] <= '9' {
		safe = "N_" + safe
	}

	candidate := prefix + "_" + safe
	for suffix := 2; used[candidate]; suffix++ {
		candidate = prefix + "_" + safe + "_" + strconv.Itoa(suffix)
	}
	used[candidate] = true
	return candidate
}

// isFKUniqueByPK reports whether the foreign key columns are exactly the
// table's primary key, meaning each parent row maps to at most one child.
func isFKUniqueByPK(t *Table, fk *ForeignKey) bool {
	if len(fk.Columns) == 0 || len(fk.Columns) != len(t.PrimaryKeys) {
		return false
	}
	for _, c := range fk.Columns {
		if !t.IsPrimary(c) {
			return false
		}
	}
	return true
}

// IsAssociative reports whether the table looks like a junction table:
// exactly two foreign keys whose columns make up the primary key.
func IsAssociative(t *Table) bool {
	if len(t.ForeignKeys) != 2 {
		return false
	}

	fkCols := make(map[string]bool)
	for _, fk := range t.ForeignKeys {
		for _, c := range fk.Columns {
			fkCols[c] = true
		}
	}
	if len(fkCols) == 0 || len(t.PrimaryKeys) == 0 {
		return false
	}

	covered := 0
	for _, pk := range t.PrimaryKeys {
		if !fkCols[pk] {
			return false
		}
		covered++
	}
	return covered >= 2
}

// associationTables returns the set of junction tables whose two referenced
// tables both exist in the input. These become relationship nodes instead
// of entities.
func associationTables(tables []Table) map[string]bool {
	known := make(map[string]bool, len(tables))
	for i := range tables {
		known[tables[i].Name] = true
	}

	assoc := make(map[string]bool)
	for i := range tables {
		t := &tables[i]
		if !IsAssociative(t) {
			continue
		}
		refs := make(map[string]bool, 2)
		allKnown := true
		for _, fk := range t.ForeignKeys {
			refs[fk.RefTable] = true
			if !known[fk.RefTable] {
				allKnown = false
			}
		}
		if allKnown && len(refs) == 2 {
			assoc[t.Name] = true
		}
	}
	return assoc
}

// BuildModel derives the Chen ER model from parsed tables. Regular tables
// become entities with one attribute per column; junction tables become
// relationships carrying their non-key columns as relationship attributes;
// every other foreign key becomes a binary relationship with cardinality 1
// on the parent side and 1 or N on the child side depending on whether the
// key is unique.
func BuildModel(tables []Table) er.Model {
	assoc := associationTables(tables)
	used := make(map[string]bool)
	entityIDs := make(map[string]string)

	var m er.Model

	for i := range tables {
		t := &tables[i]
		if assoc[t.Name] {
			continue
		}

		entityID := nodeID("E", t.Name, used)
		entityIDs[t.Name] = entityID

		var attrs []er.Attribute
		for _, col := range t.Columns {
			attrs = append(attrs, er.Attribute{
				ID:      nodeID("A", t.Name+"_"+col.Name, used),
				Name:    col.Name,
				Primary: t.IsPrimary(col.Name),
			})
		}

		m.Entities = append(m.Entities, er.Entity{
			ID:         entityID,
			Name:       t.Name,
			Attributes: attrs,
		})
	}

	for i := range tables {
		t := &tables[i]
		if assoc[t.Name] {
			continue
		}
		childID := entityIDs[t.Name]
		if childID == "" {
			continue
		}

		for idx := range t.ForeignKeys {
			fk := &t.ForeignKeys[idx]
			parentID := entityIDs[fk.RefTable]
			if parentID == "" {
				continue
			}

			relationName := fk.ConstraintName
			if relationName == "" {
				relationName = t.Name + "_" + fk.RefTable + "_" + strconv.Itoa(idx+1)
			}
			childCard := "N"
			if isFKUniqueByPK(t, fk) {
				childCard = "1"
			}

			m.Relationships = append(m.Relationships, er.Relationship{
				ID:   nodeID("R", relationName, used),
				Name: relationName,
				Endpoints: []er.Endpoint{
					{EntityID: parentID, Cardinality: "1"},
					{EntityID: childID, Cardinality: childCard},
				},
			})
		}
	}

	for i := range tables {
		t := &tables[i]
		if !assoc[t.Name] {
			continue
		}

		relationID := nodeID("R_ASSOC", t.Name, used)
		fkCols := make(map[string]bool)
		var endpoints []er.Endpoint

		for idx := range t.ForeignKeys {
			fk := &t.ForeignKeys[idx]
			for _, c := range fk.Columns {
				fkCols[c] = true
			}
			parentID := entityIDs[fk.RefTable]
			if parentID == "" {
				continue
			}
			card := "N"
			if isFKUniqueByPK(t, fk) {
				card = "1"
			}
			endpoints = append(endpoints, er.Endpoint{EntityID: parentID, Cardinality: card})
		}

		var attrs []er.Attribute
		for _, col := range t.Columns {
			if fkCols[col.Name] {
				continue
			}
			attrs = append(attrs, er.Attribute{
				ID:      nodeID("A_ASSOC", t.Name+"_"+col.Name, used),
				Name:    col.Name,
				Primary: t.IsPrimary(col.Name),
			})
		}

		if len(endpoints) >= 2 {
			m.Relationships = append(m.Relationships, er.Relationship{
				ID:         relationID,
				Name:       t.Name,
				Endpoints:  endpoints,
				Attributes: attrs,
			})
		}
	}

	return m
}
