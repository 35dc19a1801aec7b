package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/erdraw/erdraw/pkg/er"
	"github.com/erdraw/erdraw/pkg/errors"
	"github.com/erdraw/erdraw/pkg/integrations/chat"
	"github.com/erdraw/erdraw/pkg/pipeline"
	"github.com/erdraw/erdraw/pkg/schema"
)

// maxBodySize caps request bodies; DDL dumps are text and stay well under
// this even for large schemas.
const maxBodySize = 4 << 20

type errorResponse struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errors.Code, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

// writeDomainError maps an error's code to an HTTP status.
func writeDomainError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidModel:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeUpstream, errors.ErrCodeNetwork:
		status = http.StatusBadGateway
	case errors.ErrCodeUnsupported:
		status = http.StatusUnprocessableEntity
	}
	writeError(w, status, code, errors.UserMessage(err))
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "invalid JSON body")
		return false
	}
	return true
}

// ---- /api/generate ----

type generateRequest struct {
	SQL string `json:"sql"`
}

type generateResponse struct {
	Model       er.Model `json:"chenModel"`
	Mermaid     string   `json:"mermaid"`
	MermaidCrow string   `json:"mermaidCrow"`
	MermaidChen string   `json:"mermaidChen"`
	TableCount  int      `json:"tableCount"`
	Warnings    []string `json:"warnings"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sql := strings.TrimSpace(req.SQL)
	if sql == "" {
		writeError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "sql must not be empty")
		return
	}

	tables, warnings := schema.Parse(sql)
	if len(tables) == 0 {
		writeError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput,
			"no CREATE TABLE statements found in input")
		return
	}
	if warnings == nil {
		warnings = []string{}
	}

	crow := schema.MermaidER(tables)
	writeJSON(w, http.StatusOK, generateResponse{
		Model:       schema.BuildModel(tables),
		Mermaid:     crow,
		MermaidCrow: crow,
		MermaidChen: schema.MermaidChen(tables),
		TableCount:  len(tables),
		Warnings:    warnings,
	})
}

// ---- /api/render ----

var formatContentTypes = map[string]string{
	pipeline.FormatSVG:     "image/svg+xml; charset=utf-8",
	pipeline.FormatPNG:     "image/png",
	pipeline.FormatPDF:     "application/pdf",
	pipeline.FormatJSON:    "application/json; charset=utf-8",
	pipeline.FormatDOT:     "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatMermaid: "text/plain; charset=utf-8",
}

type renderRequest struct {
	pipeline.Options
	// OutputFormat selects the single artifact to return. Defaults to svg.
	OutputFormat string `json:"output_format,omitempty"`
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	format := req.OutputFormat
	if format == "" {
		format = pipeline.FormatSVG
	}
	opts := req.Options
	opts.Formats = []string{format}
	opts.Logger = s.logger

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", formatContentTypes[format])
	w.Header().Set("X-Model-Hash", result.ModelHash)
	if result.SceneHash != "" {
		w.Header().Set("X-Scene-Hash", result.SceneHash)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

// ---- /api/chat ----

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chat.Request
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "messages must not be empty")
		return
	}
	if req.Model == "" {
		req.Model = s.cfg.Chat.Model
	}

	resp, err := s.chat.Complete(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ---- /api/diagrams ----

func (s *Server) handleSaveDiagram(w http.ResponseWriter, r *http.Request) {
	var d Diagram
	if !decodeBody(w, r, &d) {
		return
	}
	if len(d.Model.Entities) == 0 && len(d.Model.Relationships) == 0 {
		writeError(w, http.StatusBadRequest, errors.ErrCodeInvalidModel, "diagram model is empty")
		return
	}
	if err := errors.ValidateDiagramTitle(d.Title); err != nil {
		writeDomainError(w, err)
		return
	}
	if d.Title == "" {
		d.Title = "Untitled diagram"
	}

	if err := s.store.Put(r.Context(), &d); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (s *Server) handleListDiagrams(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.store.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if summaries == nil {
		summaries = []DiagramSummary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleGetDiagram(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateDiagramID(id); err != nil {
		writeDomainError(w, err)
		return
	}

	d, err := s.store.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleDeleteDiagram(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateDiagramID(id); err != nil {
		writeDomainError(w, err)
		return
	}

	if err := s.store.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- static frontend ----

// handleFrontend serves built frontend assets, falling back to index.html
// for client-side routes.
func (s *Server) handleFrontend(w http.ResponseWriter, r *http.Request) {
	dir := s.cfg.FrontendDir
	if _, err := os.Stat(dir); err != nil {
		http.Error(w, "frontend not built; run the frontend build first", http.StatusServiceUnavailable)
		return
	}

	reqPath := strings.TrimPrefix(filepath.Clean(r.URL.Path), "/")
	if reqPath != "" && reqPath != "." {
		full := filepath.Join(dir, reqPath)
		// Clean above prevents traversal; only serve regular files.
		if info, err := os.Stat(full); err == nil && info.Mode().IsRegular() {
			http.ServeFile(w, r, full)
			return
		}
	}

	http.ServeFile(w, r, filepath.Join(dir, "index.html"))
}

func defaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		return ".erdraw-cache"
	}
	return filepath.Join(base, "erdraw")
}
