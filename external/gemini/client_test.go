package gemini

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/wcckavaliers/scorebook/internal/platform/resilience"
	"github.com/wcckavaliers/scorebook/internal/usecase"
)

func newTestClient(serverURL string) *Client {
	return NewClient(ClientConfig{
		BaseURL: serverURL,
		APIKey:  "test-key",
		Timeout: 2 * time.Second,
	})
}

func TestListModelsFiltersAndReverses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Error("api key missing from query")
		}
		_, _ = w.Write([]byte(`{"models": [
			{"name": "models/gemini-1.0-pro", "description": "Deprecated legacy model", "supportedGenerationMethods": ["generateContent"]},
			{"name": "models/gemini-1.5-pro", "supportedGenerationMethods": ["generateContent"]},
			{"name": "models/text-embedding-004", "supportedGenerationMethods": ["embedContent"]},
			{"name": "models/gemini-2.0-flash-lite", "supportedGenerationMethods": ["generateContent"]},
			{"name": "models/gemini-2.0-flash", "supportedGenerationMethods": ["generateContent"]}
		]}`))
	}))
	defer server.Close()

	models, err := newTestClient(server.URL).ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}

	want := []string{"gemini-2.0-flash", "gemini-1.5-pro"}
	if len(models) != len(want) {
		t.Fatalf("models = %v, want %v", models, want)
	}
	for i := range want {
		if models[i] != want[i] {
			t.Fatalf("models = %v, want %v", models, want)
		}
	}
}

func TestGenerateReturnsCandidateText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %q", r.Method)
		}
		if !strings.Contains(r.URL.Path, "gemini-2.0-flash:generateContent") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"candidates": [{"content": {"parts": [{"text": "{\"match"}, {"text": "Info\": {}}"}]}}]}`))
	}))
	defer server.Close()

	text, err := newTestClient(server.URL).Generate(context.Background(), "gemini-2.0-flash", "prompt")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != `{"matchInfo": {}}` {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestGenerateStatusClassification(t *testing.T) {
	cases := []struct {
		name   string
		status int
		want   error
	}{
		{"overloaded", http.StatusTooManyRequests, usecase.ErrProviderOverloaded},
		{"service unavailable", http.StatusServiceUnavailable, usecase.ErrProviderUnavailable},
		{"internal error", http.StatusInternalServerError, usecase.ErrProviderUnavailable},
		{"model gone", http.StatusNotFound, usecase.ErrModelNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(`{"error": {"message": "boom"}}`))
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).Generate(context.Background(), "gemini-2.0-flash", "prompt")
			if !errors.Is(err, tc.want) {
				t.Fatalf("status %d: got %v, want %v", tc.status, err, tc.want)
			}
		})
	}
}

func TestGenerateFatalStatusIsNotSentinel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"message": "invalid prompt"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Generate(context.Background(), "gemini-2.0-flash", "prompt")
	if err == nil {
		t.Fatal("expected an error")
	}
	if errors.Is(err, usecase.ErrProviderOverloaded) || errors.Is(err, usecase.ErrProviderUnavailable) || errors.Is(err, usecase.ErrModelNotFound) {
		t.Fatalf("a 400 must be fatal, got %v", err)
	}
}

func TestCircuitBreakerOpensAfterRepeatedFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Timeout: 2 * time.Second,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	})

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := client.Generate(ctx, "gemini-2.0-flash", "prompt"); err == nil {
			t.Fatalf("attempt %d: expected an error", i)
		}
	}

	_, err := client.Generate(ctx, "gemini-2.0-flash", "prompt")
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected the open breaker to reject, got %v", err)
	}
}

func TestSanitizeSensitiveText(t *testing.T) {
	got := sanitizeSensitiveText("Get https://example.com/v1beta/models?key=secret-token: timeout", "secret-token")
	if strings.Contains(got, "secret-token") {
		t.Fatalf("api key leaked: %q", got)
	}
	if !strings.Contains(got, "key=REDACTED") {
		t.Fatalf("expected redaction marker, got %q", got)
	}
}
