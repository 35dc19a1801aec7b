// Package schema parses MySQL CREATE TABLE statements into tables and
// derives the Chen ER model consumed by the diagram engine.
//
// The parser is intentionally tolerant: it extracts what it can recognize
// and reports everything else as warnings instead of failing. Index,
// unique, check, and fulltext clauses are skipped silently; anything else
// unrecognized produces a warning.
package schema

import (
	"regexp"
	"strings"
)

// Column is one parsed table column.
type Column struct {
	Name     string
	Type     string
	Nullable bool
}

// ForeignKey is one parsed foreign key, from either an inline REFERENCES
// clause or a table-level constraint.
type ForeignKey struct {
	Columns        []string
	RefTable       string
	RefColumns     []string
	ConstraintName string
}

// Table is one parsed CREATE TABLE block.
type Table struct {
	Name        string
	Columns     []Column
	PrimaryKeys []string
	ForeignKeys []ForeignKey
}

// IsPrimary reports whether the named column belongs to the primary key.
func (t *Table) IsPrimary(column string) bool {
	for _, pk := range t.PrimaryKeys {
		if pk == column {
			return true
		}
	}
	return false
}

func (t *Table) addPrimaryKeys(cols []string) {
	for _, c := range cols {
		if !t.IsPrimary(c) {
			t.PrimaryKeys = append(t.PrimaryKeys, c)
		}
	}
}

// constraintStarters open table-level constraint definitions rather than
// column definitions.
var constraintStarters = []string{
	"PRIMARY KEY",
	"UNIQUE",
	"KEY",
	"INDEX",
	"CONSTRAINT",
	"FOREIGN KEY",
	"CHECK",
	"FULLTEXT",
	"SPATIAL",
}

// columnConstraintKeywords terminate the type portion of a column
// definition.
var columnConstraintKeywords = map[string]bool{
	"NOT": true, "NULL": true, "DEFAULT": true, "AUTO_INCREMENT": true,
	"PRIMARY": true, "UNIQUE": true, "COMMENT": true, "REFERENCES": true,
	"COLLATE": true, "CHARACTER": true, "CHECK": true, "CONSTRAINT": true,
	"ON": true, "GENERATED": true, "AS": true, "VIRTUAL": true, "STORED": true,
}

var (
	trailingParenRe = regexp.MustCompile(`\([^)]*\)$`)
	blockCommentRe  = regexp.MustCompile(`(?s)/\*.*?\*/`)
	lineCommentRe   = regexp.MustCompile(`--[^\n]*`)
	hashCommentRe   = regexp.MustCompile(`#[^\n]*`)
	ifNotExistsRe   = regexp.MustCompile(`(?i)^if\s+not\s+exists\s+`)
	primaryKeyRe    = regexp.MustCompile(`(?is)PRIMARY\s+KEY\s*\(([^)]*)\)`)
	foreignKeyRe    = regexp.MustCompile(`(?is)^(?:CONSTRAINT\s+` + "`" + `?(\w+)` + "`" + `?\s+)?FOREIGN\s+KEY\s*\(([^)]*)\)\s+REFERENCES\s+(` + "`" + `?[\w]+` + "`" + `?(?:\.` + "`" + `?[\w]+` + "`" + `?)?)\s*\(([^)]*)\)`)
	referencesRe    = regexp.MustCompile(`(?is)REFERENCES\s+(` + "`" + `?[\w]+` + "`" + `?(?:\.` + "`" + `?[\w]+` + "`" + `?)?)\s*\(([^)]*)\)`)
	columnDefRe     = regexp.MustCompile(`(?s)^` + "`" + `?([A-Za-z_][\w$]*)` + "`" + `?\s+(.+)$`)
)

// NormalizeIdentifier strips quoting, qualification, and a trailing length
// specifier from an identifier token, returning its last path component.
func NormalizeIdentifier(token string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return token
	}
	token = trailingParenRe.ReplaceAllString(token, "")

	var parts []string
	for _, part := range strings.Split(token, ".") {
		part = strings.Trim(strings.TrimSpace(part), "`\"")
		if part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return strings.Trim(token, "`\"")
	}
	return parts[len(parts)-1]
}

func removeComments(sql string) string {
	sql = blockCommentRe.ReplaceAllString(sql, "")
	sql = lineCommentRe.ReplaceAllString(sql, "")
	sql = hashCommentRe.ReplaceAllString(sql, "")
	return sql
}

// splitTopLevel splits on the delimiter, respecting parenthesis depth and
// quoted strings (with backslash escapes).
func splitTopLevel(input string, delimiter rune) []string {
	var items []string
	var buf strings.Builder
	depth := 0
	var quote rune
	escaped := false

	flush := func() {
		if item := strings.TrimSpace(buf.String()); item != "" {
			items = append(items, item)
		}
		buf.Reset()
	}

	for _, ch := range input {
		if quote != 0 {
			buf.WriteRune(ch)
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == quote:
				quote = 0
			}
			continue
		}

		switch {
		case ch == '\'' || ch == '"' || ch == '`':
			quote = ch
			buf.WriteRune(ch)
		case ch == '(':
			depth++
			buf.WriteRune(ch)
		case ch == ')':
			if depth > 0 {
				depth--
			}
			buf.WriteRune(ch)
		case ch == delimiter && depth == 0:
			flush()
		default:
			buf.WriteRune(ch)
		}
	}
	flush()
	return items
}

// extractCreateTableBlocks finds every CREATE TABLE statement and returns
// (table name, body between the outer parentheses) pairs in source order.
func extractCreateTableBlocks(sql string) [][2]string {
	cleaned := removeComments(sql)
	lower := strings.ToLower(cleaned)
	var blocks [][2]string

	idx := 0
	for {
		start := strings.Index(lower[idx:], "create table")
		if start == -1 {
			break
		}
		start += idx

		openParen := strings.Index(cleaned[start:], "(")
		if openParen == -1 {
			break
		}
		openParen += start

		header := strings.TrimSpace(cleaned[start+len("create table") : openParen])
		header = strings.TrimSpace(ifNotExistsRe.ReplaceAllString(header, ""))
		tableName := NormalizeIdentifier(header)

		depth := 0
		closeParen := -1
		for i := openParen; i < len(cleaned); i++ {
			switch cleaned[i] {
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 {
					closeParen = i
				}
			}
			if closeParen != -1 {
				break
			}
		}
		if closeParen == -1 {
			break
		}

		if tableName != "" {
			blocks = append(blocks, [2]string{tableName, cleaned[openParen+1 : closeParen]})
		}
		idx = closeParen + 1
	}

	return blocks
}

// extractColumnType isolates the type portion of a column definition tail,
// stopping at the first top-level constraint keyword.
func extractColumnType(rest string) string {
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return "UNKNOWN"
	}

	depth := 0
	var quote rune
	escaped := false

	runes := []rune(rest)
	for i, ch := range runes {
		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == quote:
				quote = 0
			}
			continue
		}

		switch {
		case ch == '\'' || ch == '"' || ch == '`':
			quote = ch
		case ch == '(':
			depth++
		case ch == ')':
			if depth > 0 {
				depth--
			}
		case (ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r') && depth == 0:
			remainder := strings.TrimSpace(string(runes[i:]))
			keyword := ""
			if fields := strings.Fields(remainder); len(fields) > 0 {
				keyword = strings.ToUpper(fields[0])
			}
			if columnConstraintKeywords[keyword] {
				return strings.TrimSpace(string(runes[:i]))
			}
		}
	}
	return rest
}

func parseIdentifierList(text string) []string {
	var out []string
	for _, part := range splitTopLevel(text, ',') {
		if id := NormalizeIdentifier(part); id != "" {
			out = append(out, id)
		}
	}
	return out
}

func parsePrimaryKey(definition string) []string {
	match := primaryKeyRe.FindStringSubmatch(definition)
	if match == nil {
		return nil
	}
	return parseIdentifierList(match[1])
}

func parseForeignKey(definition string) *ForeignKey {
	match := foreignKeyRe.FindStringSubmatch(strings.TrimSpace(definition))
	if match == nil {
		return nil
	}
	return &ForeignKey{
		ConstraintName: match[1],
		Columns:        parseIdentifierList(match[2]),
		RefTable:       NormalizeIdentifier(match[3]),
		RefColumns:     parseIdentifierList(match[4]),
	}
}

// parseColumnDefinition parses one column definition, returning the column,
// whether it is an inline primary key, and any inline foreign key.
// Returns nil for table-level constraint definitions.
func parseColumnDefinition(definition string) (*Column, bool, *ForeignKey) {
	definition = strings.TrimSpace(definition)
	if definition == "" {
		return nil, false, nil
	}

	upper := strings.ToUpper(definition)
	for _, starter := range constraintStarters {
		if strings.HasPrefix(upper, starter) {
			return nil, false, nil
		}
	}

	match := columnDefRe.FindStringSubmatch(definition)
	if match == nil {
		return nil, false, nil
	}

	columnName := NormalizeIdentifier(match[1])
	tail := strings.TrimSpace(match[2])
	col := &Column{
		Name:     columnName,
		Type:     extractColumnType(tail),
		Nullable: !strings.Contains(upper, "NOT NULL"),
	}
	isPKInline := strings.Contains(upper, "PRIMARY KEY")

	var inlineFK *ForeignKey
	if ref := referencesRe.FindStringSubmatch(definition); ref != nil {
		inlineFK = &ForeignKey{
			Columns:    []string{columnName},
			RefTable:   NormalizeIdentifier(ref[1]),
			RefColumns: parseIdentifierList(ref[2]),
		}
	}

	return col, isPKInline, inlineFK
}

// Parse extracts every CREATE TABLE statement from the SQL input. It never
// fails: unrecognized definitions are reported as warnings and skipped.
func Parse(sql string) ([]Table, []string) {
	blocks := extractCreateTableBlocks(sql)
	var order []string
	byName := make(map[string]*Table)
	var warnings []string

	for _, block := range blocks {
		tableName, body := block[0], block[1]
		table, ok := byName[tableName]
		if !ok {
			table = &Table{Name: tableName}
			byName[tableName] = table
			order = append(order, tableName)
		}

		for _, definition := range splitTopLevel(body, ',') {
			cleaned := strings.TrimSpace(definition)
			upper := strings.ToUpper(cleaned)

			if strings.HasPrefix(upper, "PRIMARY KEY") {
				table.addPrimaryKeys(parsePrimaryKey(cleaned))
				continue
			}
			if fk := parseForeignKey(cleaned); fk != nil {
				table.ForeignKeys = append(table.ForeignKeys, *fk)
				continue
			}

			col, isPKInline, inlineFK := parseColumnDefinition(cleaned)
			if col == nil {
				if cleaned != "" && !hasAnyPrefix(upper, "UNIQUE", "KEY", "INDEX", "CHECK", "FULLTEXT", "SPATIAL") {
					warnings = append(warnings, "unrecognized definition: "+truncate(cleaned, 120))
				}
				continue
			}

			table.Columns = append(table.Columns, *col)
			if isPKInline {
				table.addPrimaryKeys([]string{col.Name})
			}
			if inlineFK != nil {
				table.ForeignKeys = append(table.ForeignKeys, *inlineFK)
			}
		}
	}

	tables := make([]Table, 0, len(order))
	for _, name := range order {
		tables = append(tables, *byName[name])
	}
	return tables, warnings
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
