package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/erdraw/erdraw/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output     string   // output file (single format) or base path (multiple)
	vizType    string   // visualization type: "chen" or "nodelink"
	formats    []string // output formats: svg, png, pdf, json, dot, mermaid
	scale      float64  // raster scale for PNG export
	noCache    bool     // disable the pipeline cache entirely
	refresh    bool     // recompute even when cached results exist
	attributes bool     // include attribute ellipses in the nodelink view
}

// renderCommand creates the render command for generating diagrams.
// It accepts SQL DDL or model JSON and runs the full parse-compose-render
// pipeline, writing one file per requested format.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{
		vizType: pipeline.DefaultVizType,
		scale:   pipeline.DefaultScale,
	}

	cmd := &cobra.Command{
		Use:   "render <ddl-or-model-file>",
		Short: "Render an ER diagram from SQL DDL or a saved model",
		Long: `Render an entity-relationship diagram.

The input is either SQL DDL or model JSON produced by "erdraw parse";
the format is detected from the file extension and content.

Examples:
  erdraw render schema.sql                     # chen SVG next to the input
  erdraw render schema.sql -f svg,png,json     # several formats at once
  erdraw render model.json -t nodelink -f pdf  # Graphviz node-link view
  erdraw render schema.sql --no-cache          # bypass the pipeline cache`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			if err := pipeline.ValidateVizType(opts.vizType); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.vizType, "type", "t", opts.vizType, "visualization type: chen (default), nodelink")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, json, dot, mermaid (comma-separated)")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "raster scale for PNG export")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the pipeline cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even when cached results exist")
	cmd.Flags().BoolVar(&opts.attributes, "attributes", false, "include attribute ellipses in the nodelink view")

	return cmd
}

// runRender executes the pipeline for input and writes the artifacts.
func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	source, err := readSource(input)
	if err != nil {
		return err
	}

	popts := pipeline.Options{
		Source:            source,
		Format:            pipeline.FormatInputMySQL,
		VizType:           opts.vizType,
		Formats:           opts.formats,
		Scale:             opts.scale,
		Refresh:           opts.refresh,
		IncludeAttributes: opts.attributes,
		Logger:            c.Logger,
	}
	if isModelInput(input, source) {
		popts.Format = pipeline.FormatInputJSON
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	result, err := runner.Execute(ctx, popts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %s as %s", displayName(input), strings.Join(opts.formats, ", ")))

	for _, w := range result.Warnings {
		printWarning("%s", w)
	}

	for _, format := range opts.formats {
		path := artifactPath(opts.output, input, format, len(opts.formats) > 1)
		if err := writeOutput(result.Artifacts[format], path); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}

	cached := result.CacheInfo.ParseHit && result.CacheInfo.RenderHit
	printStats(result.Stats.EntityCount, result.Stats.RelationshipCount, result.Stats.AttributeCount, cached)
	return nil
}

// artifactPath derives the output path for one rendered format.
// A single-format render honors --output verbatim; multi-format renders
// treat it as a base path and append the format extension.
func artifactPath(output, input, format string, multi bool) string {
	if output != "" && !multi {
		return output
	}
	return basePath(output, input) + "." + format
}

// basePath derives the base output path from the output and input paths.
// If output is empty, it strips the extension from input; stdin input
// falls back to "diagram".
func basePath(output, input string) string {
	if output != "" {
		ext := filepath.Ext(output)
		if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
			return strings.TrimSuffix(output, ext)
		}
		return output
	}
	if input == "-" {
		return "diagram"
	}
	return strings.TrimSuffix(input, filepath.Ext(input))
}
