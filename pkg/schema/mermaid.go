package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// Mermaid export helpers. Two views of the same tables: MermaidER emits a
// crow's-foot erDiagram, MermaidChen emits a flowchart approximating the
// Chen notation (entities as boxes, relationships as diamonds, attributes
// as stadium nodes).

var typeCleanRe = unsafeIDRe

// entityName mints a Mermaid-safe entity identifier from a table name.
func entityName(tableName string, used map[string]bool) string {
	safe := unsafeIDRe.ReplaceAllString(tableName, "_")
	if safe == "" {
		safe = "T"
	}
	if safe[0] >= '0' && safe[0] <= '9' {
		safe = "T_" + safe
	}

	candidate := safe
	for suffix := 2; used[candidate]; suffix++ {
		candidate = safe + "_" + strconv.Itoa(suffix)
	}
	used[candidate] = true
	return candidate
}

// mermaidType reduces a SQL column type to a bare uppercase token.
func mermaidType(colType string) string {
	base := strings.TrimSpace(colType)
	if base == "" {
		return "UNKNOWN"
	}
	base = strings.ToUpper(base)
	if i := strings.Index(base, "("); i >= 0 {
		base = base[:i]
	}
	base = strings.Join(strings.Fields(base), "_")
	base = typeCleanRe.ReplaceAllString(base, "")
	if base == "" {
		return "UNKNOWN"
	}
	return base
}

func mermaidLabel(text string) string {
	text = strings.ReplaceAll(text, `\`, `\\`)
	return strings.ReplaceAll(text, `"`, `\"`)
}

// MermaidER renders tables as a Mermaid erDiagram with crow's-foot
// cardinalities. Identifying foreign keys (FK columns inside the child's
// primary key) use ||, all others o{.
func MermaidER(tables []Table) string {
	usedNames := make(map[string]bool)
	entityMap := make(map[string]string, len(tables))
	for i := range tables {
		entityMap[tables[i].Name] = entityName(tables[i].Name, usedNames)
	}

	fkColumns := make(map[string]map[string]bool)
	for i := range tables {
		t := &tables[i]
		for _, fk := range t.ForeignKeys {
			cols := fkColumns[t.Name]
			if cols == nil {
				cols = make(map[string]bool)
				fkColumns[t.Name] = cols
			}
			for _, c := range fk.Columns {
				cols[c] = true
			}
		}
	}

	lines := []string{"erDiagram"}

	for i := range tables {
		t := &tables[i]
		lines = append(lines, fmt.Sprintf("    %s {", entityMap[t.Name]))
		for _, col := range t.Columns {
			var flags []string
			if t.IsPrimary(col.Name) {
				flags = append(flags, "PK")
			}
			if fkColumns[t.Name][col.Name] {
				flags = append(flags, "FK")
			}
			flagText := ""
			if len(flags) > 0 {
				flagText = " " + strings.Join(flags, " ")
			}
			lines = append(lines, fmt.Sprintf("        %s %s%s", mermaidType(col.Type), col.Name, flagText))
		}
		lines = append(lines, "    }")
	}

	for i := range tables {
		t := &tables[i]
		childEntity := entityMap[t.Name]
		for idx := range t.ForeignKeys {
			fk := &t.ForeignKeys[idx]
			parentEntity := entityMap[fk.RefTable]
			if parentEntity == "" {
				continue
			}

			rightCardinality := "o{"
			if fkInsidePK(t, fk) {
				rightCardinality = "||"
			}

			label := strings.Join(fk.RefColumns, ", ") + " -> " + strings.Join(fk.Columns, ", ")
			lines = append(lines, fmt.Sprintf("    %s ||--%s %s : \"%s\"", parentEntity, rightCardinality, childEntity, label))
		}
	}

	return strings.Join(lines, "\n")
}

// fkInsidePK reports whether every FK column is part of the primary key.
func fkInsidePK(t *Table, fk *ForeignKey) bool {
	if len(fk.Columns) == 0 {
		return false
	}
	for _, c := range fk.Columns {
		if !t.IsPrimary(c) {
			return false
		}
	}
	return true
}

// MermaidChen renders tables as a Mermaid flowchart in Chen notation.
// Junction tables collapse into relationship diamonds, mirroring
// [BuildModel].
func MermaidChen(tables []Table) string {
	assoc := associationTables(tables)
	used := make(map[string]bool)
	entityIDs := make(map[string]string)

	lines := []string{
		"flowchart LR",
		"    classDef entity fill:#ffffff,stroke:#111111,stroke-width:2px,color:#111111;",
		"    classDef relationship fill:#ffffff,stroke:#111111,stroke-width:2px,color:#111111;",
		"    classDef attribute fill:#ffffff,stroke:#111111,stroke-width:1.6px,color:#111111;",
		"    classDef pk stroke:#111111,stroke-width:3px;",
	}

	for i := range tables {
		t := &tables[i]
		if assoc[t.Name] {
			continue
		}
		entityID := nodeID("E", t.Name, used)
		entityIDs[t.Name] = entityID
		lines = append(lines,
			fmt.Sprintf("    %s[\"%s\"]", entityID, mermaidLabel(t.Name)),
			fmt.Sprintf("    class %s entity;", entityID))
	}

	for i := range tables {
		t := &tables[i]
		if assoc[t.Name] {
			continue
		}
		entityID := entityIDs[t.Name]
		if entityID == "" {
			continue
		}

		for _, col := range t.Columns {
			attrID := nodeID("A", t.Name+"_"+col.Name, used)
			label := col.Name
			class := "attribute;"
			if t.IsPrimary(col.Name) {
				label += " (PK)"
				class = "attribute,pk;"
			}
			lines = append(lines,
				fmt.Sprintf("    %s([\"%s\"])", attrID, mermaidLabel(label)),
				fmt.Sprintf("    class %s %s", attrID, class),
				fmt.Sprintf("    %s --- %s", entityID, attrID))
		}
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
			relationID := nodeID("R", relationName, used)
			childCard := "N"
			if isFKUniqueByPK(t, fk) {
				childCard = "1"
			}

			lines = append(lines,
				fmt.Sprintf("    %s{\"%s\"}", relationID, mermaidLabel(relationName)),
				fmt.Sprintf("    class %s relationship;", relationID),
				fmt.Sprintf("    %s ---|1| %s", parentID, relationID),
				fmt.Sprintf("    %s ---|%s| %s", relationID, childCard, childID))
		}
	}

	for i := range tables {
		t := &tables[i]
		if !assoc[t.Name] {
			continue
		}

		relationID := nodeID("R_ASSOC", t.Name, used)
		lines = append(lines,
			fmt.Sprintf("    %s{\"%s\"}", relationID, mermaidLabel(t.Name)),
			fmt.Sprintf("    class %s relationship;", relationID))

		fkCols := make(map[string]bool)
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
			lines = append(lines, fmt.Sprintf("    %s ---|%s| %s", parentID, card, relationID))
		}

		for _, col := range t.Columns {
			if fkCols[col.Name] {
				continue
			}
			attrID := nodeID("A_ASSOC", t.Name+"_"+col.Name, used)
			label := col.Name
			class := "attribute;"
			if t.IsPrimary(col.Name) {
				label += " (PK)"
				class = "attribute,pk;"
			}
			lines = append(lines,
				fmt.Sprintf("    %s([\"%s\"])", attrID, mermaidLabel(label)),
				fmt.Sprintf("    class %s %s", attrID, class),
				fmt.Sprintf("    %s --- %s", relationID, attrID))
		}
	}

	return strings.Join(lines, "\n")
}
