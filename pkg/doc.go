// Package pkg provides the core libraries for erdraw diagram generation.
//
// # Overview
//
// Erdraw turns SQL DDL into Chen notation entity-relationship diagrams. The
// pkg directory is organized into four main areas:
//
//  1. [schema] + [er] - Domain model (DDL parsing, ER model types)
//  2. [diagram] + [render] - Layout and output (scene composition, SVG/raster)
//  3. [cache] + [integrations] - Infrastructure (result cache, external APIs)
//  4. [pipeline] - Orchestration (parse → compose → render)
//
// # Architecture
//
// The typical data flow through erdraw:
//
//	SQL DDL
//	     ↓
//	[schema] package (CREATE TABLE statements → er.Model)
//	     ↓
//	[diagram] package (deterministic Chen layout → Scene)
//	     ↓
//	[render] package (SVG serialization, PNG/PDF conversion)
//	     ↓
//	SVG/PNG/PDF/JSON/DOT/Mermaid output
//
// # Quick Start
//
// Parse a schema and render a diagram:
//
//	import (
//	    "context"
//	    "github.com/erdraw/erdraw/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, err := runner.Execute(context.Background(), pipeline.Options{
//	    Source:  ddl,
//	    Formats: []string{pipeline.FormatSVG},
//	})
//	// result.Artifacts["svg"] holds the rendered diagram.
//
// Lower-level stages are available individually: schema.Parse and
// schema.BuildModel derive the model, diagram.Compose lays it out, and
// render.SVG serializes a scene.
//
// [schema]: https://pkg.go.dev/github.com/erdraw/erdraw/pkg/schema
// [er]: https://pkg.go.dev/github.com/erdraw/erdraw/pkg/er
// [diagram]: https://pkg.go.dev/github.com/erdraw/erdraw/pkg/diagram
// [render]: https://pkg.go.dev/github.com/erdraw/erdraw/pkg/render
// [cache]: https://pkg.go.dev/github.com/erdraw/erdraw/pkg/cache
// [integrations]: https://pkg.go.dev/github.com/erdraw/erdraw/pkg/integrations
// [pipeline]: https://pkg.go.dev/github.com/erdraw/erdraw/pkg/pipeline
package pkg
