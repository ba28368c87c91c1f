// Package search answers keyword queries over stored document trees.
//
// Scoring is deterministic term matching: for every query token, a
// case-insensitive substring hit in a node's title adds 5, in its summary 3
// and in its body text 1.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"unicode"

	"github.com/dgallion1/treerag/internal/doctree"
	"github.com/dgallion1/treerag/internal/store"
)

// DefaultMaxResults applies when a caller passes a limit <= 0.
const DefaultMaxResults = 10

// Field weights.
const (
	TitleWeight   = 5
	SummaryWeight = 3
	TextWeight    = 1
)

const (
	snippetBefore   = 100
	snippetAfter    = 200
	snippetFallback = 300
	overviewSummary = 120
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrNodeNotFound     = errors.New("node not found")
)

// Engine runs queries against a store.
type Engine struct {
	store store.Store
	log   *slog.Logger
}

func NewEngine(s store.Store, log *slog.Logger) *Engine {
	return &Engine{store: s, log: log}
}

// FlatNode is a node together with its position in the tree.
type FlatNode struct {
	Node  *doctree.Node
	Path  string
	Depth int
}

// Section is the full content of one node.
type Section struct {
	DocID    string `json:"doc_id"`
	DocName  string `json:"doc_name"`
	NodeID   string `json:"node_id"`
	NodePath string `json:"node_path"`
	Title    string `json:"title"`
	Level    int    `json:"level"`
	Summary  string `json:"summary,omitempty"`
	Text     string `json:"text"`
}

// Search ranks nodes matching query. An empty docID searches every document;
// an unknown docID yields no hits.
func (e *Engine) Search(ctx context.Context, query, docID string, limit int) ([]doctree.Hit, error) {
	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return []doctree.Hit{}, nil
	}
	if limit <= 0 {
		limit = DefaultMaxResults
	}

	recs, err := e.scope(ctx, docID)
	if err != nil {
		return nil, err
	}

	hits := []doctree.Hit{}
	for _, rec := range recs {
		for _, fn := range Flatten(rec.Structure) {
			score := ScoreNode(fn.Node, tokens)
			if score == 0 {
				continue
			}
			hits = append(hits, doctree.Hit{
				DocID:       rec.DocID,
				DocName:     rec.Name(),
				NodeID:      fn.Node.NodeID,
				NodePath:    fn.Path,
				Title:       fn.Node.Title,
				Summary:     fn.Node.Summary,
				TextSnippet: Snippet(fn.Node.Text, tokens),
				Score:       score,
			})
		}
	}

	slices.SortStableFunc(hits, func(a, b doctree.Hit) int { return b.Score - a.Score })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	e.log.Debug("search", "query", query, "doc_id", docID, "documents", len(recs), "hits", len(hits))
	return hits, nil
}

func (e *Engine) scope(ctx context.Context, docID string) ([]*doctree.Record, error) {
	if docID == "" {
		recs, err := e.store.LoadAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("load documents: %w", err)
		}
		return recs, nil
	}
	rec, err := e.store.Load(ctx, docID)
	if errors.Is(err, store.ErrCorruptRecord) {
		e.log.Warn("skipping corrupt record", "doc_id", docID, "error", err)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	if rec == nil {
		return nil, nil
	}
	return []*doctree.Record{rec}, nil
}

// Overview renders the table of contents of a document. found is false when
// the document does not exist.
func (e *Engine) Overview(ctx context.Context, docID string) (text string, found bool, err error) {
	rec, err := e.load(ctx, docID)
	if errors.Is(err, ErrDocumentNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return RenderOverview(rec), true, nil
}

// RenderOverview formats rec as an indented outline, one line per node.
func RenderOverview(rec *doctree.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Document: %s\n", rec.Name())
	if rec.DocDescription != "" {
		fmt.Fprintf(&b, "Description: %s\n", rec.DocDescription)
	}
	b.WriteString("\n")

	doctree.Walk(rec.Structure, func(n *doctree.Node, depth int) bool {
		title := n.Title
		if title == "" {
			title = "Untitled"
		}
		fmt.Fprintf(&b, "%s- [%s] %s", strings.Repeat("  ", depth), n.NodeID, title)
		if n.Summary != "" {
			fmt.Fprintf(&b, " - %s", truncate(n.Summary, overviewSummary))
		}
		b.WriteString("\n")
		return true
	})
	return b.String()
}

// Section returns one node of a document.
func (e *Engine) Section(ctx context.Context, docID, nodeID string) (*Section, error) {
	rec, err := e.load(ctx, docID)
	if err != nil {
		return nil, err
	}
	for _, fn := range Flatten(rec.Structure) {
		if fn.Node.NodeID != nodeID {
			continue
		}
		return &Section{
			DocID:    rec.DocID,
			DocName:  rec.Name(),
			NodeID:   fn.Node.NodeID,
			NodePath: fn.Path,
			Title:    fn.Node.Title,
			Level:    fn.Node.Level,
			Summary:  fn.Node.Summary,
			Text:     fn.Node.Text,
		}, nil
	}
	return nil, fmt.Errorf("%s in %s: %w", nodeID, docID, ErrNodeNotFound)
}

func (e *Engine) load(ctx context.Context, docID string) (*doctree.Record, error) {
	rec, err := e.store.Load(ctx, docID)
	if errors.Is(err, store.ErrCorruptRecord) {
		e.log.Warn("corrupt record", "doc_id", docID, "error", err)
		return nil, fmt.Errorf("%s: %w", docID, ErrDocumentNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	if rec == nil {
		return nil, fmt.Errorf("%s: %w", docID, ErrDocumentNotFound)
	}
	return rec, nil
}

// Tokenize lowercases query and splits it on whitespace.
func Tokenize(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// Flatten lists nodes in document order with their slash-joined title path.
func Flatten(nodes []*doctree.Node) []FlatNode {
	var out []FlatNode
	var walk func(nodes []*doctree.Node, parent string, depth int)
	walk = func(nodes []*doctree.Node, parent string, depth int) {
		for _, n := range nodes {
			if n == nil {
				continue
			}
			path := n.Title
			if depth > 0 {
				path = parent + "/" + n.Title
			}
			out = append(out, FlatNode{Node: n, Path: path, Depth: depth})
			walk(n.Children, path, depth+1)
		}
	}
	walk(nodes, "", 0)
	return out
}

// ScoreNode sums the field weights of every token found in n. Tokens must
// already be lowercase.
func ScoreNode(n *doctree.Node, tokens []string) int {
	title := strings.ToLower(n.Title)
	summary := strings.ToLower(n.Summary)
	text := strings.ToLower(n.Text)

	score := 0
	for _, tok := range tokens {
		if strings.Contains(title, tok) {
			score += TitleWeight
		}
		if strings.Contains(summary, tok) {
			score += SummaryWeight
		}
		if strings.Contains(text, tok) {
			score += TextWeight
		}
	}
	return score
}

// Snippet excerpts text around the first token, in query order, that occurs
// in it. Without a match it returns the start of the text.
func Snippet(text string, tokens []string) string {
	if text == "" {
		return ""
	}
	runes := []rune(text)
	lower := lowerRunes(runes)

	for _, tok := range tokens {
		idx := indexRunes(lower, lowerRunes([]rune(tok)))
		if idx < 0 {
			continue
		}
		start := max(0, idx-snippetBefore)
		end := min(len(runes), idx+snippetAfter)

		var b strings.Builder
		if start > 0 {
			b.WriteString("...")
		}
		b.WriteString(string(runes[start:end]))
		if end < len(runes) {
			b.WriteString("...")
		}
		return b.String()
	}
	return truncate(text, snippetFallback)
}

// truncate cuts s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// lowerRunes lowercases rune by rune so offsets line up with the input.
func lowerRunes(r []rune) []rune {
	out := make([]rune, len(r))
	for i, c := range r {
		out[i] = unicode.ToLower(c)
	}
	return out
}

func indexRunes(haystack, needle []rune) int {
	if len(needle) == 0 {
		return 0
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if slices.Equal(haystack[i:i+len(needle)], needle) {
			return i
		}
	}
	return -1
}
