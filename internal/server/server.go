// Package server implements the HTTP API and frontend host.
//
// Routes:
//
//	POST /api/generate      parse DDL, return model + mermaid exports
//	POST /api/render        run the pipeline, return the rendered artifact
//	POST /api/chat          proxy to the chat completion API
//	POST /api/diagrams      save a diagram
//	GET  /api/diagrams      list saved diagrams
//	GET  /api/diagrams/{id} load a saved diagram
//	DELETE /api/diagrams/{id}
//	GET  /*                 static frontend with index.html fallback
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/erdraw/erdraw/internal/config"
	"github.com/erdraw/erdraw/pkg/cache"
	"github.com/erdraw/erdraw/pkg/errors"
	"github.com/erdraw/erdraw/pkg/integrations/chat"
	"github.com/erdraw/erdraw/pkg/pipeline"
)

// chatCompleter is the slice of the chat client the handlers need.
type chatCompleter interface {
	Complete(ctx context.Context, req chat.Request) (*chat.Response, error)
}

// Server holds the wired dependencies behind the HTTP handlers.
type Server struct {
	cfg    config.Config
	logger *log.Logger
	runner *pipeline.Runner
	store  Store
	chat   chatCompleter
}

// New wires a server from configuration: cache backend, diagram store,
// and chat client.
func New(ctx context.Context, cfg config.Config, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.Default()
	}

	backend, err := newCacheBackend(ctx, cfg.Cache)
	if err != nil {
		return nil, err
	}

	store, err := newStore(ctx, cfg.Store)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}

	return &Server{
		cfg:    cfg,
		logger: logger,
		runner: pipeline.NewRunner(backend, nil, logger),
		store:  store,
		chat:   chat.NewClient(cfg.Chat.BaseURL, cfg.Chat.APIKey),
	}, nil
}

func newCacheBackend(ctx context.Context, cfg config.CacheConfig) (cache.Cache, error) {
	switch cfg.Kind {
	case "redis":
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	case "file":
		dir := cfg.Dir
		if dir == "" {
			dir = defaultCacheDir()
		}
		return cache.NewFileCache(dir)
	case "none":
		return cache.NewNullCache(), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown cache kind %q", cfg.Kind)
}

func newStore(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Kind {
	case "mongo":
		return NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDB)
	case "memory":
		return NewMemoryStore(), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown store kind %q", cfg.Kind)
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/generate", s.handleGenerate)
		r.Post("/render", s.handleRender)
		r.Post("/chat", s.handleChat)

		r.Route("/diagrams", func(r chi.Router) {
			r.Get("/", s.handleListDiagrams)
			r.Post("/", s.handleSaveDiagram)
			r.Get("/{id}", s.handleGetDiagram)
			r.Delete("/{id}", s.handleDeleteDiagram)
		})

		// Unknown API paths answer JSON, never the frontend fallback.
		r.NotFound(func(w http.ResponseWriter, req *http.Request) {
			writeError(w, http.StatusNotFound, errors.ErrCodeNotFound, "not found")
		})
	})

	r.NotFound(s.handleFrontend)
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return s.Close(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// Close releases the cache and store.
func (s *Server) Close(ctx context.Context) error {
	err := s.runner.Close()
	if storeErr := s.store.Close(ctx); err == nil {
		err = storeErr
	}
	return err
}

// logRequests emits one structured line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start))
	})
}
