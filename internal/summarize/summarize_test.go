package summarize

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dgallion1/treerag/internal/doctree"
)

type fakeLLM struct {
	mu      sync.Mutex
	prompts []string
	reply   func(prompt string, call int) (string, error)
}

func (f *fakeLLM) Complete(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	call := len(f.prompts)
	f.mu.Unlock()
	return f.reply(prompt, call)
}

func (f *fakeLLM) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func noBackoff(int) time.Duration { return 0 }

func longText(words int) string {
	return strings.TrimSpace(strings.Repeat("word ", words))
}

func TestTree_ThresholdAndSummaries(t *testing.T) {
	llm := &fakeLLM{reply: func(string, int) (string, error) { return "  generated  ", nil }}
	s := New(llm, Options{TokenThreshold: 50, Concurrency: 2}, quietLogger())

	tree := &doctree.Tree{Name: "doc", Structure: []*doctree.Node{
		{NodeID: "0000", Title: "Short", Level: 1, Text: "tiny body", Children: []*doctree.Node{
			{NodeID: "0001", Title: "Long", Level: 2, Text: longText(100)},
		}},
		{NodeID: "0002", Title: "Empty", Level: 1},
	}}

	res, err := s.Tree(context.Background(), tree)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Copied != 1 || res.Summarized != 1 || res.Failed != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if got := tree.Structure[0].Summary; got != "tiny body" {
		t.Errorf("expected short text copied, got %q", got)
	}
	if got := tree.Structure[0].Children[0].Summary; got != "generated" {
		t.Errorf("expected generated summary, got %q", got)
	}
	if got := tree.Structure[1].Summary; got != "" {
		t.Errorf("expected no summary for empty node, got %q", got)
	}
	if llm.calls() != 1 {
		t.Errorf("expected 1 llm call, got %d", llm.calls())
	}
}

func TestTree_RetriesTransientErrors(t *testing.T) {
	llm := &fakeLLM{reply: func(_ string, call int) (string, error) {
		if call < 3 {
			return "", &RetryableError{StatusCode: 529, Message: "overloaded"}
		}
		return "ok", nil
	}}
	s := New(llm, Options{TokenThreshold: 10}, quietLogger())
	s.backoff = noBackoff

	tree := &doctree.Tree{Name: "doc", Structure: []*doctree.Node{
		{NodeID: "0000", Title: "A", Level: 1, Text: longText(50)},
	}}
	res, err := s.Tree(context.Background(), tree)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Summarized != 1 || tree.Structure[0].Summary != "ok" {
		t.Fatalf("expected summary after retries, got %+v %q", res, tree.Structure[0].Summary)
	}
	if llm.calls() != 3 {
		t.Errorf("expected 3 attempts, got %d", llm.calls())
	}
}

func TestTree_PermanentFailureLeavesNodeUnsummarized(t *testing.T) {
	llm := &fakeLLM{reply: func(string, int) (string, error) { return "", errors.New("bad request") }}
	s := New(llm, Options{TokenThreshold: 10}, quietLogger())
	s.backoff = noBackoff

	tree := &doctree.Tree{Name: "doc", Structure: []*doctree.Node{
		{NodeID: "0000", Title: "A", Level: 1, Text: longText(50)},
	}}
	res, err := s.Tree(context.Background(), tree)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Failed != 1 || tree.Structure[0].Summary != "" {
		t.Fatalf("expected one failure and no summary, got %+v", res)
	}
	if llm.calls() != 1 {
		t.Errorf("expected no retry for permanent errors, got %d calls", llm.calls())
	}
}

func TestTree_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	llm := &fakeLLM{reply: func(string, int) (string, error) {
		cancel()
		return "", context.Canceled
	}}
	s := New(llm, Options{TokenThreshold: 10, Concurrency: 1}, quietLogger())

	tree := &doctree.Tree{Name: "doc", Structure: []*doctree.Node{
		{NodeID: "0000", Title: "A", Level: 1, Text: longText(50)},
	}}
	if _, err := s.Tree(ctx, tree); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestTree_Describe(t *testing.T) {
	llm := &fakeLLM{reply: func(prompt string, _ int) (string, error) {
		if strings.Contains(prompt, "table of contents") {
			return "A guide to widgets.", nil
		}
		return "sum", nil
	}}
	s := New(llm, Options{Describe: true}, quietLogger())

	tree := &doctree.Tree{Name: "Widgets", Structure: []*doctree.Node{
		{NodeID: "0000", Title: "Intro", Level: 1, Text: "widgets are small"},
	}}
	if _, err := s.Tree(context.Background(), tree); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Description != "A guide to widgets." {
		t.Errorf("unexpected description %q", tree.Description)
	}
	if !strings.Contains(llm.prompts[0], "- Intro: widgets are small") {
		t.Errorf("expected outline in description prompt, got %q", llm.prompts[0])
	}
}

func TestEstimateTokens(t *testing.T) {
	cases := map[string]int{
		"":            0,
		"one":         1,
		"one two":     2,
		longText(100): 133,
	}
	for in, want := range cases {
		if got := EstimateTokens(in); got != want {
			t.Errorf("EstimateTokens(%d words) = %d, want %d", len(strings.Fields(in)), got, want)
		}
	}
}

func TestBackoff(t *testing.T) {
	for attempt, base := range []time.Duration{time.Second, 2 * time.Second, 4 * time.Second} {
		d := Backoff(attempt)
		if d < base || d >= base+base/2 {
			t.Errorf("Backoff(%d) = %s, want in [%s, %s)", attempt, d, base, base+base/2)
		}
	}
	if d := Backoff(10); d < 30*time.Second || d >= 45*time.Second {
		t.Errorf("Backoff(10) = %s, want capped near 30s", d)
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(&RetryableError{StatusCode: 429}) {
		t.Error("expected RetryableError to be retryable")
	}
	wrapped := errors.Join(errors.New("ctx"), &RetryableError{StatusCode: 500})
	if !IsRetryable(wrapped) {
		t.Error("expected wrapped RetryableError to be retryable")
	}
	if IsRetryable(errors.New("plain")) {
		t.Error("expected plain error not retryable")
	}
}
