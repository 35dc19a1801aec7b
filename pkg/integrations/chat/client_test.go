package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erdraw/erdraw/pkg/errors"
)

func TestNormalizeMessages(t *testing.T) {
	in := []Message{
		{Role: "user", Content: "  hello  "},
		{Role: "tool", Content: "ignored"},
		{Role: "assistant", Content: ""},
		{Role: " system ", Content: "be helpful"},
	}
	out := NormalizeMessages(in)
	if len(out) != 2 {
		t.Fatalf("expected 2 messages, got %d: %+v", len(out), out)
	}
	if out[0].Content != "hello" || out[1].Role != "system" {
		t.Errorf("unexpected normalization: %+v", out)
	}
}

func TestCompleteStringContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("auth header = %q", auth)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req["model"] != "deepseek-v3.2" {
			t.Errorf("model = %v", req["model"])
		}
		w.Write([]byte(`{
			"choices": [{"message": {"content": " the answer ", "reasoning_content": "thinking"}}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	resp, err := c.Complete(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "question"}},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Reply != "the answer" {
		t.Errorf("Reply = %q", resp.Reply)
	}
	if resp.Reasoning != "thinking" {
		t.Errorf("Reasoning = %q", resp.Reasoning)
	}
	if resp.Usage == nil || resp.Usage.TotalTokens != 15 {
		t.Errorf("Usage = %+v", resp.Usage)
	}
}

func TestCompletePartListContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": [{"message": {"content": [{"type":"text","text":"a"},{"type":"text","text":"b"}]}}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k")
	resp, err := c.Complete(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "q"}},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Reply != "ab" {
		t.Errorf("Reply = %q", resp.Reply)
	}
}

func TestCompleteNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k")
	_, err := c.Complete(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "q"}},
	})
	if errors.GetCode(err) != errors.ErrCodeUpstream {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestCompleteRejectsEmptyConversation(t *testing.T) {
	c := NewClient("http://unused", "k")
	_, err := c.Complete(context.Background(), Request{
		Messages: []Message{{Role: "tool", Content: "x"}},
	})
	if errors.GetCode(err) != errors.ErrCodeInvalidInput {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestCompleteMissingKey(t *testing.T) {
	c := NewClient("http://unused", "")
	_, err := c.Complete(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "q"}},
	})
	if err == nil {
		t.Fatal("expected error without API key")
	}
}
