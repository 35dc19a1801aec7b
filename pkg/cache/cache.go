// Package cache provides caching for parsed models, composed scenes, and
// rendered artifacts. Three backends are available: FileCache for CLI
// usage, RedisCache for the server, and NullCache to disable caching.
package cache

import (
	"context"
	"time"
)

// Default TTLs per pipeline stage. Models are cheap to reparse, so they
// expire first; rendered artifacts are the most expensive and live longest.
const (
	TTLModel    = 6 * time.Hour
	TTLScene    = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is the storage interface all backends implement.
// Get returns (data, hit, error); a miss is not an error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// ModelKeyOpts captures the parsing inputs that affect the derived model.
type ModelKeyOpts struct {
	Format string // input format, e.g. "mysql"
}

// SceneKeyOpts captures the layout inputs that affect the composed scene.
type SceneKeyOpts struct {
	Style     string // canonical JSON of normalized style params
	Overrides string // canonical JSON of normalized per-node overrides
}

// ArtifactKeyOpts captures the export inputs that affect the final bytes.
type ArtifactKeyOpts struct {
	Format string  // "svg", "png", "pdf", "dot", "json"
	Scale  float64 // raster scale for png
}

// Keyer generates cache keys for the pipeline stages.
// Keys must be deterministic: the same inputs always produce the same key.
type Keyer interface {
	// ModelKey keys a parsed model by the hash of its source text.
	ModelKey(sourceHash string, opts ModelKeyOpts) string

	// SceneKey keys a composed scene by the model hash and style inputs.
	SceneKey(modelHash string, opts SceneKeyOpts) string

	// ArtifactKey keys rendered output by the scene hash and export options.
	ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer generates keys by hashing the option structs.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// ModelKey generates a key for model caching.
func (k *DefaultKeyer) ModelKey(sourceHash string, opts ModelKeyOpts) string {
	return hashKey("model", sourceHash, opts.Format)
}

// SceneKey generates a key for scene caching.
func (k *DefaultKeyer) SceneKey(modelHash string, opts SceneKeyOpts) string {
	return hashKey("scene", modelHash, opts.Style, opts.Overrides)
}

// ArtifactKey generates a key for artifact caching.
func (k *DefaultKeyer) ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", sceneHash, opts.Format, opts.Scale)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
