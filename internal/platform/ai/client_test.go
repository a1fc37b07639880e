package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vaartalab/newsroom-backend/internal/config"
	"github.com/vaartalab/newsroom-backend/internal/platform/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func chatOK(t *testing.T, w http.ResponseWriter, text string) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": text}},
		},
		"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 20},
	})
}

func TestNewFromConfig_ProviderOrder(t *testing.T) {
	log := testLogger(t)

	cfg := config.AIConfig{
		ProviderOrder: "gemini,openai",
		OpenAIKey:     "sk-x",
		OpenAIModel:   "gpt-test",
		GeminiKey:     "g-x",
		GeminiModel:   "gemini-test",
		Timeout:       5 * time.Second,
	}
	c, err := NewFromConfig(cfg, log)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	if c.Provider() != "gemini" {
		t.Fatalf("provider = %q, want gemini", c.Provider())
	}

	cfg.GeminiKey = ""
	c, err = NewFromConfig(cfg, log)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	if c.Provider() != "openai" {
		t.Fatalf("provider = %q, want openai", c.Provider())
	}
}

func TestNewFromConfig_NoCredentials(t *testing.T) {
	_, err := NewFromConfig(config.AIConfig{ProviderOrder: "openai,gemini"}, testLogger(t))
	if !errors.Is(err, ErrNoProvider) {
		t.Fatalf("err = %v, want ErrNoProvider", err)
	}
}

func TestGenerate_RetriesOn429(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		chatOK(t, w, "second try")
	}))
	defer srv.Close()

	c, err := NewFromConfig(config.AIConfig{
		ProviderOrder: "openai",
		OpenAIKey:     "sk-x",
		OpenAIBaseURL: srv.URL,
		OpenAIModel:   "gpt-test",
		Timeout:       5 * time.Second,
	}, testLogger(t))
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}

	res, err := c.Generate(context.Background(), GenerateRequest{Prompt: "hello", Purpose: "compose"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Text != "second try" {
		t.Fatalf("text = %q", res.Text)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("calls = %d, want 2", got)
	}
	if res.Usage.InputTokens != 10 || res.Usage.OutputTokens != 20 {
		t.Fatalf("usage = %+v", res.Usage)
	}
}

func TestGenerate_FallbackModelOnFormatRejection(t *testing.T) {
	var sawFallback atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model == "gpt-primary" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"message":"Invalid parameter: response_format is not supported with this model."}}`))
			return
		}
		if req.ResponseFormat != nil {
			t.Errorf("fallback request still carries response_format")
		}
		sawFallback.Store(true)
		chatOK(t, w, "from fallback")
	}))
	defer srv.Close()

	c, err := NewFromConfig(config.AIConfig{
		ProviderOrder: "openai",
		OpenAIKey:     "sk-x",
		OpenAIBaseURL: srv.URL,
		OpenAIModel:   "gpt-primary",
		FallbackModel: "gpt-fallback",
		Timeout:       5 * time.Second,
	}, testLogger(t))
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}

	res, err := c.Generate(context.Background(), GenerateRequest{Prompt: "hello", JSONMode: true})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Text != "from fallback" {
		t.Fatalf("text = %q", res.Text)
	}
	if !sawFallback.Load() {
		t.Fatal("fallback model never called")
	}
}

func TestGenerate_NonRetryable400Surfaces(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"messages must not be empty"}}`))
	}))
	defer srv.Close()

	c, err := NewFromConfig(config.AIConfig{
		ProviderOrder: "openai",
		OpenAIKey:     "sk-x",
		OpenAIBaseURL: srv.URL,
		OpenAIModel:   "gpt-test",
		Timeout:       5 * time.Second,
	}, testLogger(t))
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}

	_, err = c.Generate(context.Background(), GenerateRequest{Prompt: "hello"})
	if err == nil {
		t.Fatal("expected error")
	}
	var httpErr *httpError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != 400 {
		t.Fatalf("err = %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("calls = %d, want 1 (no retry on plain 400)", got)
	}
}

func TestGenerate_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c, err := NewFromConfig(config.AIConfig{
		ProviderOrder: "openai",
		OpenAIKey:     "sk-x",
		OpenAIBaseURL: srv.URL,
		OpenAIModel:   "gpt-test",
		Timeout:       5 * time.Second,
	}, testLogger(t))
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}

	res, err := c.Generate(context.Background(), GenerateRequest{Prompt: "hello"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Text != "" {
		t.Fatalf("text = %q, want empty", res.Text)
	}
}
