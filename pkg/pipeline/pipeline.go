// Package pipeline provides the core diagram pipeline shared by the CLI
// and the HTTP server.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: Derive the ER model from SQL DDL or load it from JSON
//  2. Compose: Run the layout engine to produce a positioned scene
//  3. Render: Serialize the scene (or model) to the requested formats
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Source:  ddl,
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"encoding/json"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/erdraw/erdraw/pkg/cache"
	"github.com/erdraw/erdraw/pkg/diagram"
	"github.com/erdraw/erdraw/pkg/er"
	"github.com/erdraw/erdraw/pkg/errors"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultFormat is the default input format.
	DefaultFormat = FormatInputMySQL

	// DefaultScale is the default raster scale for PNG export.
	DefaultScale = 2.0
)

// DefaultVizType is the default visualization type.
const DefaultVizType = VizTypeChen

// Input format constants.
const (
	FormatInputMySQL = "mysql"
	FormatInputJSON  = "json"
)

// Visualization type constants.
const (
	// VizTypeChen is the deterministic Chen notation layout.
	VizTypeChen = "chen"
	// VizTypeNodelink is the Graphviz-driven node-link view.
	VizTypeNodelink = "nodelink"
)

// Format constants for output formats.
const (
	FormatSVG     = "svg"
	FormatPNG     = "png"
	FormatPDF     = "pdf"
	FormatJSON    = "json"
	FormatDOT     = "dot"
	FormatMermaid = "mermaid"
)

// ValidInputFormats is the set of supported input formats.
var ValidInputFormats = map[string]bool{
	FormatInputMySQL: true,
	FormatInputJSON:  true,
}

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:     true,
	FormatPNG:     true,
	FormatPDF:     true,
	FormatJSON:    true,
	FormatDOT:     true,
	FormatMermaid: true,
}

// ValidVizTypes is the set of supported visualization types.
var ValidVizTypes = map[string]bool{
	VizTypeChen:     true,
	VizTypeNodelink: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the diagram pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Parse options
	Source  string    `json:"source,omitempty"` // SQL DDL or model JSON
	Format  string    `json:"format,omitempty"` // "mysql" or "json"
	Model   *er.Model `json:"model,omitempty"`  // pre-built model, skips parsing
	Refresh bool      `json:"refresh,omitempty"`

	// Compose options
	Style     er.StyleParams                `json:"style,omitempty"`
	Overrides map[string]er.NodeStyleParams `json:"overrides,omitempty"`

	// Render options
	VizType           string   `json:"viz_type,omitempty"`
	Formats           []string `json:"formats,omitempty"`
	Scale             float64  `json:"scale,omitempty"`         // raster scale for png
	IncludeAttributes bool     `json:"include_attrs,omitempty"` // attribute ellipses in nodelink view

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Model is the derived ER model.
	Model er.Model

	// ModelHash is the content hash of the canonical model JSON.
	ModelHash string

	// Warnings are non-fatal parser diagnostics.
	Warnings []string

	// Scene is the composed layout (chen visualization only).
	Scene diagram.Scene

	// SceneHash is the content hash of the scene JSON.
	SceneHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	EntityCount       int
	RelationshipCount int
	AttributeCount    int
	ParseTime         time.Duration
	ComposeTime       time.Duration
	RenderTime        time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ParseHit   bool // Whether the model came from cache
	ComposeHit bool // Whether the scene came from cache
	RenderHit  bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateInputFormat checks that an input format is valid.
func ValidateInputFormat(format string) error {
	if !ValidInputFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid input format: %q (must be one of: mysql, json)", format)
	}
	return nil
}

// ValidateFormat checks that an output format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: svg, png, pdf, json, dot, mermaid)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateVizType checks that a visualization type is valid.
func ValidateVizType(vizType string) error {
	if !ValidVizTypes[vizType] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid viz_type: %q (must be one of: chen, nodelink)", vizType)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForParse(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	if err := ValidateVizType(o.VizType); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForParse checks required fields for parsing.
func (o *Options) ValidateForParse() error {
	if o.Format == "" {
		o.Format = DefaultFormat
	}
	if err := ValidateInputFormat(o.Format); err != nil {
		return err
	}
	if o.Model == nil && o.Source == "" {
		return errors.New(errors.ErrCodeInvalidInput, "source or model is required")
	}

	// Logger default
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if o.VizType == "" {
		o.VizType = DefaultVizType
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateVizType(o.VizType); err != nil {
		return err
	}
	return ValidateFormats(o.Formats)
}

// IsChen returns true if this is a Chen layout visualization.
func (o *Options) IsChen() bool {
	return o.VizType == "" || o.VizType == VizTypeChen
}

// IsNodelink returns true if this is a nodelink visualization.
func (o *Options) IsNodelink() bool {
	return o.VizType == VizTypeNodelink
}

// ModelKeyOpts returns cache key options for the parse stage.
func (o *Options) ModelKeyOpts() cache.ModelKeyOpts {
	return cache.ModelKeyOpts{Format: o.Format}
}

// SceneKeyOpts returns cache key options for the compose stage.
// Style inputs are normalized before hashing, so equivalent partial styles
// share a cache entry.
func (o *Options) SceneKeyOpts() cache.SceneKeyOpts {
	styleJSON, _ := json.Marshal(diagram.NormalizeStyle(o.Style))
	overridesJSON, _ := json.Marshal(diagram.NormalizeOverrides(o.Overrides))
	return cache.SceneKeyOpts{
		Style:     string(styleJSON),
		Overrides: string(overridesJSON),
	}
}

// ArtifactKeyOpts returns cache key options for the render stage.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	scale := 0.0
	if format == FormatPNG {
		scale = o.Scale
	}
	return cache.ArtifactKeyOpts{
		Format: format,
		Scale:  scale,
	}
}
