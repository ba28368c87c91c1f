package summarize

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*ClaudeClient, *LLMStats) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	stats := NewLLMStats(time.Hour)
	c := NewClaudeClient("key", "model-x", stats)
	c.url = srv.URL
	return c, stats
}

func TestClaudeClient_Complete(t *testing.T) {
	c, stats := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "key" || r.Header.Get("anthropic-version") != "2023-06-01" {
			t.Errorf("missing auth headers: %v", r.Header)
		}
		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "model-x" || len(req.Messages) != 1 || req.Messages[0].Content != "hi" {
			t.Errorf("unexpected request: %+v", req)
		}
		w.Write([]byte(`{"content":[{"type":"text","text":" Hello "},{"type":"text","text":"there"}]}`))
	})

	got, err := c.Complete(context.Background(), "hi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Hello there" {
		t.Errorf("unexpected text %q", got)
	}
	if stats.Snapshot().Count != 1 {
		t.Errorf("expected latency recorded")
	}
}

func TestClaudeClient_StatusErrors(t *testing.T) {
	cases := []struct {
		status    int
		retryable bool
	}{
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, true},
		{529, true},
		{http.StatusBadRequest, false},
		{http.StatusUnauthorized, false},
	}
	for _, tc := range cases {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"x"}`, tc.status)
		})
		_, err := c.Complete(context.Background(), "hi")
		if err == nil {
			t.Errorf("status %d: expected error", tc.status)
			continue
		}
		if IsRetryable(err) != tc.retryable {
			t.Errorf("status %d: retryable=%v, want %v (%v)", tc.status, IsRetryable(err), tc.retryable, err)
		}
	}
}

func TestClaudeClient_EmptyAndErrorBodies(t *testing.T) {
	for _, body := range []string{
		`{"content":[]}`,
		`{"error":{"type":"invalid_request_error","message":"nope"}}`,
		`not json`,
	} {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		})
		if _, err := c.Complete(context.Background(), "hi"); err == nil {
			t.Errorf("body %s: expected error", body)
		}
	}
}
