package schema

import (
	"strings"
	"testing"
)

const sampleSQL = `
-- web shop
CREATE TABLE users (
    id INT NOT NULL AUTO_INCREMENT,
    email VARCHAR(255) NOT NULL,
    display_name VARCHAR(100),
    PRIMARY KEY (id)
);

CREATE TABLE orders (
    id INT PRIMARY KEY,
    user_id INT NOT NULL,
    total DECIMAL(10,2) DEFAULT 0,
    CONSTRAINT fk_orders_user FOREIGN KEY (user_id) REFERENCES users (id)
);
`

func TestParseBasic(t *testing.T) {
	tables, warnings := Parse(sampleSQL)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(tables) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(tables))
	}

	users := tables[0]
	if users.Name != "users" {
		t.Errorf("expected first table users, got %q", users.Name)
	}
	if len(users.Columns) != 3 {
		t.Fatalf("expected 3 columns, got %d", len(users.Columns))
	}
	if users.Columns[0].Type != "INT" {
		t.Errorf("expected INT, got %q", users.Columns[0].Type)
	}
	if users.Columns[0].Nullable {
		t.Error("id should not be nullable")
	}
	if !users.Columns[2].Nullable {
		t.Error("display_name should be nullable")
	}
	if !users.IsPrimary("id") {
		t.Error("id should be primary")
	}

	orders := tables[1]
	if !orders.IsPrimary("id") {
		t.Error("inline PRIMARY KEY not detected")
	}
	if len(orders.ForeignKeys) != 1 {
		t.Fatalf("expected 1 foreign key, got %d", len(orders.ForeignKeys))
	}
	fk := orders.ForeignKeys[0]
	if fk.ConstraintName != "fk_orders_user" {
		t.Errorf("constraint name = %q", fk.ConstraintName)
	}
	if fk.RefTable != "users" || len(fk.Columns) != 1 || fk.Columns[0] != "user_id" {
		t.Errorf("unexpected fk: %+v", fk)
	}
}

func TestParseInlineReferences(t *testing.T) {
	tables, _ := Parse("CREATE TABLE posts (id INT PRIMARY KEY, author_id INT REFERENCES users(id));")
	if len(tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(tables))
	}
	if len(tables[0].ForeignKeys) != 1 {
		t.Fatalf("inline REFERENCES not detected")
	}
	fk := tables[0].ForeignKeys[0]
	if fk.RefTable != "users" || fk.Columns[0] != "author_id" || fk.RefColumns[0] != "id" {
		t.Errorf("unexpected fk: %+v", fk)
	}
}

func TestParseQuotedAndQualified(t *testing.T) {
	tables, _ := Parse("CREATE TABLE IF NOT EXISTS `shop`.`items` (`item_id` INT, name VARCHAR(40) COMMENT 'a, b (c)');")
	if len(tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(tables))
	}
	if tables[0].Name != "items" {
		t.Errorf("expected items, got %q", tables[0].Name)
	}
	// Comma inside the COMMENT string must not split the definition.
	if len(tables[0].Columns) != 2 {
		t.Fatalf("expected 2 columns, got %d", len(tables[0].Columns))
	}
	if tables[0].Columns[1].Type != "VARCHAR(40)" {
		t.Errorf("expected VARCHAR(40), got %q", tables[0].Columns[1].Type)
	}
}

func TestParseWarnsOnGarbage(t *testing.T) {
	_, warnings := Parse("CREATE TABLE t (id INT, ???, KEY idx_id (id));")
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", warnings)
	}
	if !strings.Contains(warnings[0], "unrecognized definition") {
		t.Errorf("unexpected warning text: %q", warnings[0])
	}
}

func TestNormalizeIdentifier(t *testing.T) {
	cases := map[string]string{
		"`users`":        "users",
		`"db"."orders"`:  "orders",
		"email(191)":     "email",
		"  plain  ":      "plain",
		"schema.t.field": "field",
	}
	for in, want := range cases {
		if got := NormalizeIdentifier(in); got != want {
			t.Errorf("NormalizeIdentifier(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSplitTopLevel(t *testing.T) {
	parts := splitTopLevel(`a INT, b DECIMAL(10,2), c VARCHAR(5) DEFAULT 'x,y'`, ',')
	if len(parts) != 3 {
		t.Fatalf("expected 3 parts, got %d: %v", len(parts), parts)
	}
	if parts[1] != "b DECIMAL(10,2)" {
		t.Errorf("paren split broken: %q", parts[1])
	}
	if parts[2] != `c VARCHAR(5) DEFAULT 'x,y'` {
		t.Errorf("quote split broken: %q", parts[2])
	}
}

const junctionSQL = sampleSQL + `
CREATE TABLE order_items (
    order_id INT NOT NULL,
    item_id INT NOT NULL,
    quantity INT NOT NULL DEFAULT 1,
    PRIMARY KEY (order_id, item_id),
    FOREIGN KEY (order_id) REFERENCES orders (id),
    FOREIGN KEY (item_id) REFERENCES items (id)
);

CREATE TABLE items (
    id INT PRIMARY KEY,
    sku VARCHAR(64) NOT NULL
);
`

func TestIsAssociative(t *testing.T) {
	tables, _ := Parse(junctionSQL)
	byName := make(map[string]*Table)
	for i := range tables {
		byName[tables[i].Name] = &tables[i]
	}

	if !IsAssociative(byName["order_items"]) {
		t.Error("order_items should be associative")
	}
	if IsAssociative(byName["orders"]) {
		t.Error("orders should not be associative")
	}
}

func TestBuildModel(t *testing.T) {
	tables, _ := Parse(junctionSQL)
	m := BuildModel(tables)

	// order_items collapses into a relationship; the other three stay entities.
	if len(m.Entities) != 3 {
		t.Fatalf("expected 3 entities, got %d", len(m.Entities))
	}
	if m.Entities[0].ID != "E_users" || m.Entities[1].ID != "E_orders" || m.Entities[2].ID != "E_items" {
		t.Errorf("entity ids: %s %s %s", m.Entities[0].ID, m.Entities[1].ID, m.Entities[2].ID)
	}

	if len(m.Relationships) != 2 {
		t.Fatalf("expected 2 relationships, got %d", len(m.Relationships))
	}

	fkRel := m.Relationships[0]
	if fkRel.Name != "fk_orders_user" {
		t.Errorf("relationship name = %q", fkRel.Name)
	}
	if fkRel.Endpoints[0].Cardinality != "1" || fkRel.Endpoints[1].Cardinality != "N" {
		t.Errorf("cardinalities = %q/%q", fkRel.Endpoints[0].Cardinality, fkRel.Endpoints[1].Cardinality)
	}

	assocRel := m.Relationships[1]
	if assocRel.ID != "R_ASSOC_order_items" || assocRel.Name != "order_items" {
		t.Errorf("assoc relationship = %q/%q", assocRel.ID, assocRel.Name)
	}
	if len(assocRel.Endpoints) != 2 {
		t.Fatalf("assoc endpoints = %d", len(assocRel.Endpoints))
	}
	// quantity survives as a relationship attribute, fk columns do not.
	if len(assocRel.Attributes) != 1 || assocRel.Attributes[0].Name != "quantity" {
		t.Errorf("assoc attributes = %+v", assocRel.Attributes)
	}
}

func TestBuildModelAttributePrimaries(t *testing.T) {
	tables, _ := Parse(sampleSQL)
	m := BuildModel(tables)

	users := m.Entities[0]
	if users.Attributes[0].Name != "id" || !users.Attributes[0].Primary {
		t.Errorf("id attribute: %+v", users.Attributes[0])
	}
	if users.Attributes[1].Primary {
		t.Error("email should not be primary")
	}
	if users.Attributes[0].ID != "A_users_id" {
		t.Errorf("attribute id = %q", users.Attributes[0].ID)
	}
}

func TestNodeIDCollisions(t *testing.T) {
	used := make(map[string]bool)
	first := nodeID("E", "a b", used)
	second := nodeID("E", "a-b", used)
	if first != "E_a_b" {
		t.Errorf("first = %q", first)
	}
	if second != "E_a_b_2" {
		t.Errorf("second = %q", second)
	}
	if got := nodeID("E", "9lives", used); got != "E_N_9lives" {
		t.Errorf("digit prefix = %q", got)
	}
}

func TestMermaidER(t *testing.T) {
	tables, _ := Parse(sampleSQL)
	out := MermaidER(tables)

	if !strings.HasPrefix(out, "erDiagram") {
		t.Fatalf("missing header: %q", out[:20])
	}
	for _, want := range []string{
		"users {",
		"INT id PK",
		"INT user_id FK",
		`users ||--o{ orders : "id -> user_id"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestMermaidChen(t *testing.T) {
	tables, _ := Parse(junctionSQL)
	out := MermaidChen(tables)

	for _, want := range []string{
		"flowchart LR",
		`E_users["users"]`,
		`A_users_id(["id (PK)"])`,
		"class A_users_id attribute,pk;",
		`R_ASSOC_order_items{"order_items"}`,
		"E_orders ---|N| R_ASSOC_order_items",
		`A_ASSOC_order_items_quantity(["quantity"])`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}
