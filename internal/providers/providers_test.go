package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New("watson", "some-model")
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
	if !strings.Contains(err.Error(), "watson") {
		t.Errorf("error should name the unknown provider: %v", err)
	}
}

func TestNewClaude_MissingKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	if _, err := NewClaude("claude-3-5-sonnet-20241022"); err == nil {
		t.Fatal("expected error when API key is unset")
	}
}

func newTestClaude(t *testing.T, handler http.HandlerFunc) *Claude {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	t.Setenv("ANTHROPIC_BASE_URL", srv.URL)
	c, err := NewClaude("claude-3-5-sonnet-20241022")
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestClaude_Analyze(t *testing.T) {
	c := newTestClaude(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		w.Write([]byte(`{"content":[{"type":"text","text":"## Purpose\nA CLI tool."}],"usage":{"input_tokens":10,"output_tokens":5}}`))
	})

	resp, err := c.Analyze(context.Background(), Request{UserPrompt: "analyze"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !strings.Contains(resp.Content, "A CLI tool.") {
		t.Errorf("unexpected content: %q", resp.Content)
	}
	if resp.TokensUsed != 15 {
		t.Errorf("TokensUsed = %d, want 15", resp.TokensUsed)
	}
}

func TestClaude_RateLimitClassification(t *testing.T) {
	c := newTestClaude(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.Analyze(context.Background(), Request{UserPrompt: "x"})
	if !IsRetryable(err) {
		t.Fatalf("429 should be retryable, got %v", err)
	}
	hint, ok := RetryAfterHint(err)
	if !ok || hint != 7*time.Second {
		t.Errorf("RetryAfterHint = %v, %v; want 7s, true", hint, ok)
	}
}

func TestClaude_AuthClassification(t *testing.T) {
	c := newTestClaude(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid api key"}`))
	})

	_, err := c.Analyze(context.Background(), Request{UserPrompt: "x"})
	if !IsAuthError(err) {
		t.Fatalf("401 should classify as auth error, got %v", err)
	}
	if IsRetryable(err) {
		t.Error("auth errors must not be retryable")
	}
}

func TestClaude_ServerErrorRetryable(t *testing.T) {
	c := newTestClaude(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.Analyze(context.Background(), Request{UserPrompt: "x"})
	if !IsRetryable(err) {
		t.Fatalf("502 should be retryable, got %v", err)
	}
	if IsAuthError(err) {
		t.Error("server errors must not classify as auth errors")
	}
}

func TestOpenAI_Analyze(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			t.Error("missing bearer token")
		}
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"result text"}}],"usage":{"total_tokens":42}}`))
	}))
	defer srv.Close()
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_BASE_URL", srv.URL)

	o, err := NewOpenAI("gpt-4o")
	if err != nil {
		t.Fatal(err)
	}
	resp, err := o.Analyze(context.Background(), Request{UserPrompt: "analyze"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if resp.Content != "result text" || resp.TokensUsed != 42 {
		t.Errorf("got %+v", resp)
	}
}

func TestErrorTaxonomy(t *testing.T) {
	var err error = &RateLimitError{}
	if !IsRetryable(err) || IsAuthError(err) {
		t.Error("rate limit: retryable, not auth")
	}
	err = &TransportError{Status: 503}
	if !IsRetryable(err) {
		t.Error("transport: retryable")
	}
	err = &AuthError{Message: "bad key"}
	if IsRetryable(err) || !IsAuthError(err) {
		t.Error("auth: non-retryable")
	}
	err = errors.New("malformed request")
	if IsRetryable(err) || IsAuthError(err) {
		t.Error("plain errors are neither retryable nor auth")
	}
}
