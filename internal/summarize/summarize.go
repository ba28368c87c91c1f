// Package summarize fills in node summaries and document descriptions with
// an LLM.
package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/treerag/internal/doctree"
)

// Completer turns a prompt into text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Options control which nodes are summarized.
type Options struct {
	// Nodes whose text is estimated below this many tokens use the text
	// itself as the summary.
	TokenThreshold int
	// Concurrency bounds simultaneous LLM calls.
	Concurrency int
	// Describe asks for a one-sentence document description.
	Describe bool
}

// Summarizer annotates trees in place.
type Summarizer struct {
	llm     Completer
	opts    Options
	log     *slog.Logger
	backoff func(int) time.Duration
}

func New(llm Completer, opts Options, log *slog.Logger) *Summarizer {
	if opts.TokenThreshold <= 0 {
		opts.TokenThreshold = 200
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 5
	}
	return &Summarizer{llm: llm, opts: opts, log: log, backoff: Backoff}
}

// Result reports what Tree did.
type Result struct {
	Summarized int // summaries written by the LLM
	Copied     int // short nodes whose text became the summary
	Failed     int
}

// Tree sets Summary on every node with text. Failed LLM calls leave the
// node without a summary; only cancellation aborts the run.
func (s *Summarizer) Tree(ctx context.Context, tree *doctree.Tree) (Result, error) {
	var nodes []*doctree.Node
	doctree.Walk(tree.Structure, func(n *doctree.Node, _ int) bool {
		nodes = append(nodes, n)
		return true
	})

	var summarized, copied, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)

	for _, n := range nodes {
		text := strings.TrimSpace(n.Text)
		if text == "" {
			continue
		}
		if EstimateTokens(text) < s.opts.TokenThreshold {
			n.Summary = text
			copied.Add(1)
			continue
		}
		g.Go(func() error {
			prompt := BuildNodePrompt(tree.Name, n.Title, text)
			summary, err := completeWithRetry(gctx, s.llm, prompt, s.backoff, s.log)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				s.log.Warn("summarize node failed", "node_id", n.NodeID, "title", n.Title, "error", err)
				failed.Add(1)
				return nil
			}
			n.Summary = summary
			summarized.Add(1)
			return nil
		})
	}

	res := Result{}
	if err := g.Wait(); err != nil {
		return res, fmt.Errorf("summarize tree: %w", err)
	}
	res = Result{
		Summarized: int(summarized.Load()),
		Copied:     int(copied.Load()),
		Failed:     int(failed.Load()),
	}

	if s.opts.Describe {
		desc, err := s.Describe(ctx, tree)
		if err != nil {
			if ctx.Err() != nil {
				return res, fmt.Errorf("describe document: %w", ctx.Err())
			}
			s.log.Warn("describe document failed", "doc_name", tree.Name, "error", err)
		} else {
			tree.Description = desc
		}
	}
	return res, nil
}

// Describe returns a one-sentence description of the document built from
// its titles and summaries.
func (s *Summarizer) Describe(ctx context.Context, tree *doctree.Tree) (string, error) {
	var lines []string
	doctree.Walk(tree.Structure, func(n *doctree.Node, depth int) bool {
		line := strings.Repeat("  ", depth) + "- " + n.Title
		if n.Summary != "" {
			line += ": " + truncate(n.Summary, 200)
		}
		lines = append(lines, line)
		return true
	})
	desc, err := completeWithRetry(ctx, s.llm, BuildDescriptionPrompt(tree.Name, lines), s.backoff, s.log)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(desc), nil
}
