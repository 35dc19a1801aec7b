package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/erdraw/erdraw/internal/config"
	"github.com/erdraw/erdraw/pkg/er"
	"github.com/erdraw/erdraw/pkg/errors"
	"github.com/erdraw/erdraw/pkg/integrations/chat"
	"github.com/erdraw/erdraw/pkg/pipeline"
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

type fakeChat struct {
	resp *chat.Response
	err  error
}

func (f *fakeChat) Complete(ctx context.Context, req chat.Request) (*chat.Response, error) {
	return f.resp, f.err
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	s := &Server{
		cfg:    config.Default(),
		logger: logger,
		runner: pipeline.NewRunner(nil, nil, logger),
		store:  NewMemoryStore(),
		chat:   &fakeChat{resp: &chat.Response{Reply: "hi", Model: "test"}},
	}
	return s
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestGenerate(t *testing.T) {
	router := newTestServer(t).Router()

	w := postJSON(t, router, "/api/generate", map[string]string{"sql": testDDL})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body)
	}

	var resp struct {
		Model       er.Model `json:"chenModel"`
		Mermaid     string   `json:"mermaid"`
		MermaidChen string   `json:"mermaidChen"`
		TableCount  int      `json:"tableCount"`
		Warnings    []string `json:"warnings"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.TableCount != 2 || len(resp.Model.Entities) != 2 {
		t.Errorf("unexpected response: %+v", resp)
	}
	if !strings.HasPrefix(resp.Mermaid, "erDiagram") {
		t.Errorf("mermaid missing: %q", resp.Mermaid)
	}
	if !strings.HasPrefix(resp.MermaidChen, "flowchart LR") {
		t.Errorf("mermaidChen missing: %q", resp.MermaidChen)
	}
	if resp.Warnings == nil {
		t.Error("warnings should serialize as an empty array")
	}
}

func TestGenerateEmptySQL(t *testing.T) {
	router := newTestServer(t).Router()
	w := postJSON(t, router, "/api/generate", map[string]string{"sql": "   "})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestRenderSVG(t *testing.T) {
	router := newTestServer(t).Router()

	w := postJSON(t, router, "/api/render", map[string]any{"source": testDDL})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "image/svg+xml") {
		t.Errorf("content type = %q", ct)
	}
	if !strings.HasPrefix(strings.TrimSpace(w.Body.String()), "<svg") {
		t.Errorf("body does not look like SVG: %.60s", w.Body.String())
	}
	if w.Header().Get("X-Model-Hash") == "" || w.Header().Get("X-Scene-Hash") == "" {
		t.Error("hash headers missing")
	}
}

func TestRenderJSONScene(t *testing.T) {
	router := newTestServer(t).Router()

	w := postJSON(t, router, "/api/render", map[string]any{
		"source":        testDDL,
		"output_format": "json",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body)
	}
	var scene struct {
		Nodes []struct {
			Kind string `json:"kind"`
		} `json:"nodes"`
		Width float64 `json:"width"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &scene); err != nil {
		t.Fatalf("decode scene: %v", err)
	}
	if len(scene.Nodes) == 0 || scene.Width <= 0 {
		t.Errorf("unexpected scene: %+v", scene)
	}
}

func TestRenderBadInput(t *testing.T) {
	router := newTestServer(t).Router()
	w := postJSON(t, router, "/api/render", map[string]any{"source": "SELECT 1;"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d: %s", w.Code, w.Body)
	}
	var resp errorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if resp.Code != errors.ErrCodeInvalidInput {
		t.Errorf("code = %q", resp.Code)
	}
}

func TestChat(t *testing.T) {
	router := newTestServer(t).Router()

	w := postJSON(t, router, "/api/chat", map[string]any{
		"messages": []map[string]string{{"role": "user", "content": "hello"}},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body)
	}
	var resp chat.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Reply != "hi" {
		t.Errorf("reply = %q", resp.Reply)
	}

	// Empty conversation rejected before hitting the upstream client
	w = postJSON(t, router, "/api/chat", map[string]any{"messages": []any{}})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d", w.Code)
	}
}

func TestChatUpstreamFailure(t *testing.T) {
	s := newTestServer(t)
	s.chat = &fakeChat{err: errors.New(errors.ErrCodeUpstream, "model unavailable")}
	router := s.Router()

	w := postJSON(t, router, "/api/chat", map[string]any{
		"messages": []map[string]string{{"role": "user", "content": "hello"}},
	})
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestDiagramLifecycle(t *testing.T) {
	router := newTestServer(t).Router()

	model := er.Model{Entities: []er.Entity{{ID: "E_users", Name: "users"}}}

	// Save
	w := postJSON(t, router, "/api/diagrams", Diagram{Title: "shop", Model: model})
	if w.Code != http.StatusCreated {
		t.Fatalf("save status = %d: %s", w.Code, w.Body)
	}
	var saved Diagram
	if err := json.Unmarshal(w.Body.Bytes(), &saved); err != nil {
		t.Fatal(err)
	}
	if saved.ID == "" || saved.CreatedAt.IsZero() {
		t.Fatalf("saved diagram incomplete: %+v", saved)
	}

	// List
	req := httptest.NewRequest(http.MethodGet, "/api/diagrams", nil)
	lw := httptest.NewRecorder()
	router.ServeHTTP(lw, req)
	var summaries []DiagramSummary
	if err := json.Unmarshal(lw.Body.Bytes(), &summaries); err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 1 || summaries[0].Title != "shop" {
		t.Errorf("list = %+v", summaries)
	}

	// Get
	gw := httptest.NewRecorder()
	router.ServeHTTP(gw, httptest.NewRequest(http.MethodGet, "/api/diagrams/"+saved.ID, nil))
	if gw.Code != http.StatusOK {
		t.Fatalf("get status = %d", gw.Code)
	}

	// Delete, then Get returns 404
	dw := httptest.NewRecorder()
	router.ServeHTTP(dw, httptest.NewRequest(http.MethodDelete, "/api/diagrams/"+saved.ID, nil))
	if dw.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", dw.Code)
	}
	gw = httptest.NewRecorder()
	router.ServeHTTP(gw, httptest.NewRequest(http.MethodGet, "/api/diagrams/"+saved.ID, nil))
	if gw.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d", gw.Code)
	}
}

func TestSaveEmptyDiagram(t *testing.T) {
	router := newTestServer(t).Router()
	w := postJSON(t, router, "/api/diagrams", Diagram{Title: "empty"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestUnknownAPIRouteIsJSON(t *testing.T) {
	router := newTestServer(t).Router()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("API 404 should be JSON, got %q", ct)
	}
}

func TestFrontendMissing(t *testing.T) {
	s := newTestServer(t)
	s.cfg.FrontendDir = "/nonexistent-frontend-dir"
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", w.Code)
	}
}
