package integrations

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erdraw/erdraw/pkg/httputil"
)

func TestGetDecodesJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Custom") != "yes" {
			t.Errorf("default header missing")
		}
		w.Write([]byte(`{"name":"ok"}`))
	}))
	defer srv.Close()

	c := NewClient(map[string]string{"X-Custom": "yes"})
	var out struct {
		Name string `json:"name"`
	}
	if err := c.Get(context.Background(), srv.URL, &out); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if out.Name != "ok" {
		t.Errorf("decoded = %+v", out)
	}
}

func TestPostJSONSendsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %s", ct)
		}
		w.Write([]byte(`{"echo":true}`))
	}))
	defer srv.Close()

	c := NewClient(nil)
	var out struct {
		Echo bool `json:"echo"`
	}
	err := c.PostJSON(context.Background(), srv.URL, nil, map[string]string{"k": "v"}, &out)
	if err != nil {
		t.Fatalf("PostJSON: %v", err)
	}
	if !out.Echo {
		t.Error("response not decoded")
	}
}

func TestStatusMapping(t *testing.T) {
	for _, tt := range []struct {
		code      int
		wantErr   error
		retryable bool
	}{
		{http.StatusOK, nil, false},
		{http.StatusNotFound, ErrNotFound, false},
		{http.StatusBadRequest, ErrNetwork, false},
		{http.StatusBadGateway, ErrNetwork, true},
	} {
		err := checkStatus(tt.code)
		if tt.wantErr == nil {
			if err != nil {
				t.Errorf("checkStatus(%d) = %v", tt.code, err)
			}
			continue
		}
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("checkStatus(%d) = %v, want %v", tt.code, err, tt.wantErr)
		}
		var re *httputil.RetryableError
		if got := errors.As(err, &re); got != tt.retryable {
			t.Errorf("checkStatus(%d) retryable = %v, want %v", tt.code, got, tt.retryable)
		}
	}
}
