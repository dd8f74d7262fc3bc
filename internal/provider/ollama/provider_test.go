package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestProvider_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var req struct {
			Model  string `json:"model"`
			Prompt string `json:"prompt"`
			Stream bool   `json:"stream"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.Stream {
			t.Error("stream must be false")
		}
		if req.Model != "llama3" {
			t.Errorf("model = %q, want default llama3", req.Model)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"model": "llama3", "response": "plain text reply", "done": true}`))
	}))
	defer srv.Close()

	p := New(srv.URL)

	text, err := p.Complete(context.Background(), "a prompt", 0.7)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if text != "plain text reply" {
		t.Errorf("Complete() = %q", text)
	}
}

func TestProvider_CompleteEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"model": "llama3", "response": "", "done": true}`))
	}))
	defer srv.Close()

	p := New(srv.URL)

	_, err := p.Complete(context.Background(), "a prompt", 0.7)
	if !errors.Is(err, ErrEmptyCompletion) {
		t.Errorf("Complete() error = %v, want ErrEmptyCompletion", err)
	}
}

func TestProvider_CompleteDaemonDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("model not loaded"))
	}))
	defer srv.Close()

	p := New(srv.URL)

	_, err := p.Complete(context.Background(), "a prompt", 0.7)
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
}
