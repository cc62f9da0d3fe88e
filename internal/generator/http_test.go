package generator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenRouter_Generate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key-1" {
			t.Errorf("expected bearer key-1, got %q", got)
		}

		var req chatRequest
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("expected system+user messages, got %+v", req.Messages)
		}
		if req.Messages[1].Content != "Mata do jogi" {
			t.Errorf("unexpected content %q", req.Messages[1].Content)
		}

		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "Yogamatte"}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	svc := NewOpenRouter(server.URL, "test-model")

	out, err := svc.Generate(context.Background(), "key-1", Request{Instructions: "translate", Content: "Mata do jogi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Yogamatte" {
		t.Errorf("expected 'Yogamatte', got %q", out)
	}
}

func TestOpenRouter_Generate_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"quota"}}`))
	}))
	defer server.Close()

	svc := NewOpenRouter(server.URL, "")

	_, err := svc.Generate(context.Background(), "key-1", Request{Content: "x"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsRateLimited(err) {
		t.Errorf("expected rate-limit error, got %v", err)
	}
}

func TestOpenRouter_Generate_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	svc := NewOpenRouter(server.URL, "")

	_, err := svc.Generate(context.Background(), "key-1", Request{Content: "x"})
	if err == nil {
		t.Fatal("expected error")
	}
	if IsRateLimited(err) {
		t.Error("502 must not be reported as rate limited")
	}
}

func TestOpenRouter_Generate_NoKey(t *testing.T) {
	svc := NewOpenRouter("http://127.0.0.1:0", "")

	if _, err := svc.Generate(context.Background(), "", Request{Content: "x"}); err == nil {
		t.Error("expected error without API key")
	}
}

func TestOpenRouter_Generate_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	svc := NewOpenRouter(server.URL, "")

	if _, err := svc.Generate(context.Background(), "k", Request{Content: "x"}); err == nil {
		t.Error("expected error for empty choices")
	}
}

func TestOllama_Generate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.System != "be brief" {
			t.Errorf("expected system prompt, got %q", req.System)
		}
		if req.Stream {
			t.Error("expected stream=false")
		}
		json.NewEncoder(w).Encode(ollamaResponse{Response: "Yogamatte"})
	}))
	defer server.Close()

	svc := NewOllama(server.URL, "llama3.2")

	out, err := svc.Generate(context.Background(), "", Request{Instructions: "be brief", Content: "Mata"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Yogamatte" {
		t.Errorf("expected 'Yogamatte', got %q", out)
	}
}

func TestOllama_Generate_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	svc := NewOllama(server.URL, "")

	_, err := svc.Generate(context.Background(), "", Request{Content: "x"})
	if !IsRateLimited(err) {
		t.Errorf("expected rate-limit error, got %v", err)
	}
}

func TestNames(t *testing.T) {
	tests := []struct {
		gen  Generator
		want string
	}{
		{NewOpenRouter("", ""), "openrouter"},
		{NewOllama("", ""), "ollama"},
		{NewGemini(""), "gemini"},
		{NewGoogleTranslate(""), "google"},
		{NewLambdaWithClient("fn", nil), "lambda"},
	}
	for _, tt := range tests {
		if got := tt.gen.Name(); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}
}
