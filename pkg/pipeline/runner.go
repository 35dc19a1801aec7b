package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/erdraw/erdraw/pkg/cache"
	"github.com/erdraw/erdraw/pkg/diagram"
	"github.com/erdraw/erdraw/pkg/er"
	"github.com/erdraw/erdraw/pkg/errors"
	"github.com/erdraw/erdraw/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete parse → compose → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid options")
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Parse
	parseStart := time.Now()
	model, warnings, parseHit, err := r.ParseWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Model = model
	result.Warnings = warnings
	result.Stats.ParseTime = time.Since(parseStart)
	result.Stats.EntityCount = len(model.Entities)
	result.Stats.RelationshipCount = len(model.Relationships)
	result.Stats.AttributeCount = model.AttributeCount()
	result.CacheInfo.ParseHit = parseHit

	// Compute model hash for cache keys and API responses
	if modelData, err := er.MarshalModel(model); err == nil {
		result.ModelHash = cache.Hash(modelData)
	}

	r.Logger.Info("derived model",
		"entities", len(model.Entities),
		"relationships", len(model.Relationships),
		"duration", result.Stats.ParseTime)

	// Stage 2: Compose (chen only; nodelink renders straight from the model)
	if opts.IsChen() {
		composeStart := time.Now()
		scene, composeHit, err := r.ComposeWithCacheInfo(ctx, model, opts)
		if err != nil {
			return nil, err
		}
		result.Scene = scene
		result.Stats.ComposeTime = time.Since(composeStart)
		result.CacheInfo.ComposeHit = composeHit

		if sceneData, err := diagram.MarshalScene(scene); err == nil {
			result.SceneHash = cache.Hash(sceneData)
		}

		r.Logger.Info("composed scene",
			"nodes", len(scene.Nodes),
			"edges", len(scene.Edges),
			"duration", result.Stats.ComposeTime)
	}

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, result.Scene, model, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ParseWithCacheInfo derives the model with caching and returns cache hit info.
// Parser warnings are only available on a cache miss; cached models were
// already parsed cleanly enough to cache.
func (r *Runner) ParseWithCacheInfo(ctx context.Context, opts Options) (er.Model, []string, bool, error) {
	if err := opts.ValidateForParse(); err != nil {
		return er.Model{}, nil, false, err
	}
	r.applyLogger(&opts)

	// Pre-built models skip the cache entirely.
	if opts.Model != nil {
		return *opts.Model, nil, false, nil
	}

	cacheKey := r.Keyer.ModelKey(cache.Hash([]byte(opts.Source)), opts.ModelKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if model, err := er.UnmarshalModel(data); err == nil {
				observability.Cache().OnCacheHit(ctx, observability.KeyTypeModel)
				return model, nil, true, nil // Cache hit
			}
		}
	}
	observability.Cache().OnCacheMiss(ctx, observability.KeyTypeModel)

	start := time.Now()
	observability.Pipeline().OnParseStart(ctx, opts.Format)
	model, warnings, err := Parse(ctx, opts)
	observability.Pipeline().OnParseComplete(ctx, opts.Format, len(model.Entities), time.Since(start), err)
	if err != nil {
		return er.Model{}, warnings, false, err
	}

	// Cache the result
	if data, err := er.MarshalModel(model); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLModel)
		observability.Cache().OnCacheSet(ctx, observability.KeyTypeModel, len(data))
	}

	return model, warnings, false, nil // Cache miss
}

// Parse is a convenience wrapper that discards the cache hit info.
func (r *Runner) Parse(ctx context.Context, opts Options) (er.Model, []string, error) {
	model, warnings, _, err := r.ParseWithCacheInfo(ctx, opts)
	return model, warnings, err
}

// ComposeWithCacheInfo composes a scene with caching and returns cache hit info.
func (r *Runner) ComposeWithCacheInfo(ctx context.Context, m er.Model, opts Options) (diagram.Scene, bool, error) {
	r.applyLogger(&opts)

	modelData, err := er.MarshalModel(m)
	if err != nil {
		return diagram.Scene{}, false, errors.Wrap(errors.ErrCodeInternal, err, "serialize model for cache key")
	}
	cacheKey := r.Keyer.SceneKey(cache.Hash(modelData), opts.SceneKeyOpts())

	// Try cache first
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if cached, err := diagram.UnmarshalScene(data); err == nil {
				observability.Cache().OnCacheHit(ctx, observability.KeyTypeScene)
				return cached, true, nil // Cache hit
			}
			// If deserialization fails, fall through to recompute
		}
	}
	observability.Cache().OnCacheMiss(ctx, observability.KeyTypeScene)

	start := time.Now()
	observability.Pipeline().OnComposeStart(ctx, m.NodeCount())
	scene := Compose(m, opts)
	observability.Pipeline().OnComposeComplete(ctx, m.NodeCount(), time.Since(start), nil)

	// Cache the result
	if data, err := diagram.MarshalScene(scene); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLScene)
		observability.Cache().OnCacheSet(ctx, observability.KeyTypeScene, len(data))
	}

	return scene, false, nil // Cache miss
}

// Compose is a convenience wrapper that discards the cache hit info.
func (r *Runner) Compose(ctx context.Context, m er.Model, opts Options) (diagram.Scene, error) {
	scene, _, err := r.ComposeWithCacheInfo(ctx, m, opts)
	return scene, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, scene diagram.Scene, m er.Model, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	// Key artifacts off the scene for chen output and off the model for
	// nodelink, which never composes a scene.
	var keyHash string
	if opts.IsChen() {
		sceneData, err := diagram.MarshalScene(scene)
		if err != nil {
			return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "serialize scene for cache key")
		}
		keyHash = cache.Hash(sceneData)
	} else {
		modelData, err := er.MarshalModel(m)
		if err != nil {
			return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "serialize model for cache key")
		}
		keyHash = "nodelink:" + cache.Hash(modelData)
	}

	// Try to get all formats from cache
	allCached := true
	artifacts := make(map[string][]byte)

	if !opts.Refresh {
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(keyHash, opts.ArtifactKeyOpts(format))
			if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
				artifacts[format] = data
			} else {
				allCached = false
				break
			}
		}
		if allCached && len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, observability.KeyTypeArtifact)
			return artifacts, true, nil // All artifacts from cache
		}
	}
	observability.Cache().OnCacheMiss(ctx, observability.KeyTypeArtifact)

	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.VizType, opts.Formats)
	rendered, err := Render(scene, m, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.VizType, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(keyHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
		observability.Cache().OnCacheSet(ctx, observability.KeyTypeArtifact, len(data))
	}

	return rendered, false, nil // Cache miss
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, scene diagram.Scene, m er.Model, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, scene, m, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
