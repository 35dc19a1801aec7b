package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/erdraw/erdraw/pkg/er"
	"github.com/erdraw/erdraw/pkg/schema"
)

// Parse output formats.
const (
	parseFormatModel       = "model"        // canonical ER model JSON
	parseFormatMermaid     = "mermaid"      // Mermaid erDiagram (crow's foot)
	parseFormatMermaidChen = "mermaid-chen" // Mermaid flowchart in Chen notation
)

// parseOpts holds the command-line flags for the parse command.
type parseOpts struct {
	output string // output file path (stdout if empty)
	format string // output format: model, mermaid, mermaid-chen
}

// parseCommand creates the parse command for extracting ER models from SQL DDL.
//
// The default output is the canonical model JSON, which render and inspect
// accept directly. Mermaid exports are offered for embedding in markdown.
func (c *CLI) parseCommand() *cobra.Command {
	opts := parseOpts{format: parseFormatModel}

	cmd := &cobra.Command{
		Use:   "parse <ddl-file>",
		Short: "Parse SQL DDL into an entity-relationship model",
		Long: `Parse CREATE TABLE statements into an entity-relationship model.

Foreign keys become relationships, and pure junction tables (two foreign
keys covering the primary key) collapse into many-to-many relationships.

Examples:
  erdraw parse schema.sql                      # model JSON to stdout
  erdraw parse schema.sql -o model.json        # model JSON to a file
  erdraw parse schema.sql -f mermaid           # Mermaid erDiagram
  erdraw parse - < schema.sql                  # read DDL from stdin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateParseFormat(opts.format); err != nil {
				return err
			}
			return c.runParse(args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: model (default), mermaid, mermaid-chen")

	return cmd
}

// runParse reads the DDL, derives the model, and writes the requested export.
func (c *CLI) runParse(input string, opts *parseOpts) error {
	source, err := readSource(input)
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	tables, warnings := schema.Parse(source)
	if len(tables) == 0 {
		return fmt.Errorf("no CREATE TABLE statements found in %s", displayName(input))
	}
	for _, w := range warnings {
		printWarning("%s", w)
	}
	model := schema.BuildModel(tables)
	prog.done(fmt.Sprintf("Parsed %d tables into %d entities and %d relationships",
		len(tables), len(model.Entities), len(model.Relationships)))

	var data []byte
	switch opts.format {
	case parseFormatModel:
		data, err = er.MarshalModel(model)
		if err != nil {
			return err
		}
		data = append(data, '\n')
	case parseFormatMermaid:
		data = []byte(schema.MermaidER(tables))
	case parseFormatMermaidChen:
		data = []byte(schema.MermaidChen(tables))
	}

	if err := writeOutput(data, opts.output); err != nil {
		return err
	}
	if opts.output != "" {
		printSuccess("Wrote %s to %s", opts.format, opts.output)
		if opts.format == parseFormatModel {
			printNextStep("Render it", fmt.Sprintf("erdraw render %s", opts.output))
		}
	}
	return nil
}

// validateParseFormat checks the --format flag of the parse command.
func validateParseFormat(format string) error {
	switch format {
	case parseFormatModel, parseFormatMermaid, parseFormatMermaidChen:
		return nil
	}
	return fmt.Errorf("invalid format: %s (must be 'model', 'mermaid', or 'mermaid-chen')", format)
}

// readSource reads the input file, or stdin when path is "-".
func readSource(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// displayName returns a human-readable name for an input path.
func displayName(path string) string {
	if path == "-" {
		return "stdin"
	}
	return path
}

// isModelInput reports whether the input looks like model JSON rather than DDL.
// Detection is by extension plus a peek at the first non-space byte.
func isModelInput(path, source string) bool {
	if strings.HasSuffix(strings.ToLower(path), ".json") {
		return true
	}
	trimmed := strings.TrimSpace(source)
	return strings.HasPrefix(trimmed, "{")
}

// nopCloser wraps an io.Writer with a no-op Close method.
// It is used to make os.Stdout compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

// writeOutput writes data to path, or stdout when path is empty.
func writeOutput(data []byte, path string) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = out.Write(data)
	return err
}
