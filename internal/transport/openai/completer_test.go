package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/grantdex/internal/domain"
	"github.com/kailas-cloud/grantdex/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterAIMetrics()
	os.Exit(m.Run())
}

// chatRequest mirrors the fields of the chat completion request the tests inspect.
type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	MaxTokens      int `json:"max_tokens"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

func chatResponse(content string, prompt, total int) map[string]any {
	return map[string]any{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"model":  "test-model",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
		"usage": map[string]any{"prompt_tokens": prompt, "completion_tokens": total - prompt, "total_tokens": total},
	}
}

func newTestCompleter(url string) *Completer {
	return NewCompleter(&Config{
		APIKey:   "test-key",
		BaseURL:  url,
		Model:    "test-model",
		Provider: "test",
		Logger:   zap.NewNop(),
	})
}

func TestCompleter_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "test-model" || len(req.Messages) != 2 {
			t.Errorf("unexpected request: %+v", req)
		}
		if req.Messages[0].Role != "system" || req.Messages[1].Content != "energi" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
		if req.ResponseFormat.Type != "json_object" {
			t.Errorf("response_format = %q, want json_object", req.ResponseFormat.Type)
		}
		if req.MaxTokens != 500 {
			t.Errorf("max_tokens = %d, want 500", req.MaxTokens)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatResponse(`{"sectors":["Energi"]}`, 30, 42))
	}))
	defer server.Close()

	res, err := newTestCompleter(server.URL).Complete(context.Background(), domain.Prompt{
		System: "classify", User: "energi", Temperature: 0.1, MaxTokens: 500,
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if res.Content != `{"sectors":["Energi"]}` {
		t.Errorf("content = %q", res.Content)
	}
	if res.PromptTokens != 30 || res.TotalTokens != 42 {
		t.Errorf("usage = %d/%d, want 30/42", res.PromptTokens, res.TotalTokens)
	}
}

func TestCompleter_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		resp := chatResponse("", 1, 1)
		resp["choices"] = []map[string]any{}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	_, err := newTestCompleter(server.URL).Complete(context.Background(), domain.Prompt{User: "x"})
	if !errors.Is(err, domain.ErrAIProviderError) {
		t.Fatalf("expected ErrAIProviderError, got %v", err)
	}
}

func TestCompleter_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit"}}`))
	}))
	defer server.Close()

	_, err := newTestCompleter(server.URL).Complete(context.Background(), domain.Prompt{User: "x"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, domain.ErrAIProviderError) {
		t.Errorf("expected ErrAIProviderError, got %v", err)
	}
}

func TestCompleter_DefaultModel(t *testing.T) {
	c := NewCompleter(&Config{APIKey: "k", Logger: zap.NewNop()})
	if c.Model() != domain.DefaultModel {
		t.Errorf("Model() = %q, want %q", c.Model(), domain.DefaultModel)
	}
}

func TestExtractDetail(t *testing.T) {
	if got := extractDetail([]byte(`{"detail":"model not found"}`)); got != "model not found" {
		t.Errorf("extractDetail() = %q", got)
	}
	if got := extractDetail([]byte(`not json`)); got != "" {
		t.Errorf("extractDetail() = %q, want empty", got)
	}
}
