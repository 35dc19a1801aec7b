package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/erdraw/erdraw/pkg/er"
)

const testDDL = `
CREATE TABLE users (
    id INT PRIMARY KEY,
    email VARCHAR(255) NOT NULL
);

CREATE TABLE orders (
    id INT PRIMARY KEY,
    user_id INT NOT NULL,
    FOREIGN KEY (user_id) REFERENCES users (id)
);
`

func writeTestDDL(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schema.sql")
	if err := os.WriteFile(path, []byte(testDDL), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestValidateParseFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"model", false},
		{"mermaid", false},
		{"mermaid-chen", false},
		{"", true},
		{"svg", true},
	}

	for _, tt := range tests {
		err := validateParseFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("validateParseFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestRunParseModel(t *testing.T) {
	c := New(io.Discard, LogInfo)
	input := writeTestDDL(t)
	output := filepath.Join(t.TempDir(), "model.json")

	err := c.runParse(input, &parseOpts{output: output, format: parseFormatModel})
	if err != nil {
		t.Fatalf("runParse() error: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	model, err := er.UnmarshalModel(data)
	if err != nil {
		t.Fatalf("output is not a valid model: %v", err)
	}
	if len(model.Entities) != 2 || len(model.Relationships) != 1 {
		t.Errorf("got %d entities, %d relationships", len(model.Entities), len(model.Relationships))
	}
}

func TestRunParseMermaid(t *testing.T) {
	c := New(io.Discard, LogInfo)
	input := writeTestDDL(t)
	output := filepath.Join(t.TempDir(), "diagram.mmd")

	err := c.runParse(input, &parseOpts{output: output, format: parseFormatMermaid})
	if err != nil {
		t.Fatalf("runParse() error: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "erDiagram") {
		t.Errorf("output should start with erDiagram, got %.40q", string(data))
	}
}

func TestRunParseNoTables(t *testing.T) {
	c := New(io.Discard, LogInfo)
	input := filepath.Join(t.TempDir(), "empty.sql")
	if err := os.WriteFile(input, []byte("SELECT 1;"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := c.runParse(input, &parseOpts{format: parseFormatModel})
	if err == nil {
		t.Fatal("runParse() should fail when no tables are found")
	}
}

func TestReadSourceMissingFile(t *testing.T) {
	if _, err := readSource(filepath.Join(t.TempDir(), "nope.sql")); err == nil {
		t.Error("readSource() should fail for a missing file")
	}
}

func TestIsModelInput(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		source string
		want   bool
	}{
		{"json extension", "model.json", "anything", true},
		{"json content", "input", `{"entities": []}`, true},
		{"ddl", "schema.sql", "CREATE TABLE t (id INT);", false},
		{"stdin ddl", "-", "  CREATE TABLE t (id INT);", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isModelInput(tt.path, tt.source); got != tt.want {
				t.Errorf("isModelInput(%q, ...) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}
