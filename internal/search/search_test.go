package search

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/treerag/internal/doctree"
	"github.com/dgallion1/treerag/internal/store"
)

func newEngine(t *testing.T) (*Engine, store.Store) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := store.NewFileStore(t.TempDir(), log)
	require.NoError(t, err)
	return NewEngine(s, log), s
}

func save(t *testing.T, s store.Store, source string, tree *doctree.Tree) string {
	t.Helper()
	id, err := s.Save(context.Background(), source, tree, nil)
	require.NoError(t, err)
	return id
}

func riskTree() *doctree.Tree {
	return &doctree.Tree{
		Name: "10-K",
		Structure: []*doctree.Node{
			{NodeID: "0000", Title: "Risk Factors", Level: 1, Text: "Several items follow."},
			{NodeID: "0001", Title: "Operations", Level: 1, Text: "There is a risk in supply chains."},
		},
	}
}

func TestSearch_TitleOutranksText(t *testing.T) {
	e, s := newEngine(t)
	save(t, s, "10k.html", riskTree())

	hits, err := e.Search(context.Background(), "risk", "", 0)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "0000", hits[0].NodeID)
	assert.Equal(t, 5, hits[0].Score)
	assert.Equal(t, "0001", hits[1].NodeID)
	assert.Equal(t, 1, hits[1].Score)
	assert.Equal(t, "10-K", hits[0].DocName)
}

func TestSearch_EmptyQuery(t *testing.T) {
	e, s := newEngine(t)
	save(t, s, "10k.html", riskTree())

	for _, q := range []string{"", "   ", "\t\n"} {
		hits, err := e.Search(context.Background(), q, "", 10)
		require.NoError(t, err)
		assert.Empty(t, hits)
	}
}

func TestSearch_Scope(t *testing.T) {
	e, s := newEngine(t)
	a := save(t, s, "a.md", riskTree())
	save(t, s, "b.md", riskTree())

	all, err := e.Search(context.Background(), "risk", "", 10)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	one, err := e.Search(context.Background(), "risk", a, 10)
	require.NoError(t, err)
	require.Len(t, one, 2)
	for _, h := range one {
		assert.Equal(t, a, h.DocID)
	}

	none, err := e.Search(context.Background(), "risk", "missing_00000000", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSearch_StableTiesAndLimit(t *testing.T) {
	e, s := newEngine(t)
	save(t, s, "ties.md", &doctree.Tree{
		Name: "ties",
		Structure: []*doctree.Node{
			{NodeID: "0000", Title: "one", Level: 1, Text: "alpha"},
			{NodeID: "0001", Title: "two", Level: 1, Text: "alpha"},
			{NodeID: "0002", Title: "alpha", Level: 1},
			{NodeID: "0003", Title: "three", Level: 1, Text: "alpha"},
		},
	})

	hits, err := e.Search(context.Background(), "alpha", "", 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, []string{"0002", "0000", "0001"}, []string{hits[0].NodeID, hits[1].NodeID, hits[2].NodeID})
}

func TestSearch_NodePath(t *testing.T) {
	e, s := newEngine(t)
	save(t, s, "nested.md", &doctree.Tree{
		Name: "nested",
		Structure: []*doctree.Node{
			{NodeID: "0000", Title: "", Level: 1, Children: []*doctree.Node{
				{NodeID: "0001", Title: "Part I", Level: 2, Children: []*doctree.Node{
					{NodeID: "0002", Title: "Item 1A", Level: 3, Text: "needle"},
				}},
			}},
		},
	})

	hits, err := e.Search(context.Background(), "needle", "", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "/Part I/Item 1A", hits[0].NodePath)
}

func TestScoreNode(t *testing.T) {
	n := &doctree.Node{Title: "Revenue", Summary: "revenue grew", Text: "Revenue and margin"}
	assert.Equal(t, 9, ScoreNode(n, []string{"revenue"}))
	assert.Equal(t, 10, ScoreNode(n, []string{"revenue", "margin"}))
	assert.Equal(t, 0, ScoreNode(n, []string{"loss"}))

	// Adding the token to the title adds exactly the title weight.
	m := &doctree.Node{Title: "Outlook", Text: "margin"}
	before := ScoreNode(m, []string{"margin"})
	m.Title = "Outlook margin"
	assert.Equal(t, before+TitleWeight, ScoreNode(m, []string{"margin"}))
}

func TestSnippet(t *testing.T) {
	long := strings.Repeat("a", 150) + "TARGET" + strings.Repeat("b", 300)

	t.Run("window around match", func(t *testing.T) {
		got := Snippet(long, []string{"target"})
		want := "..." + strings.Repeat("a", 100) + "TARGET" + strings.Repeat("b", 194) + "..."
		assert.Equal(t, want, got)
	})

	t.Run("match near start", func(t *testing.T) {
		assert.Equal(t, "the risk here", Snippet("the risk here", []string{"risk"}))
	})

	t.Run("first token in query order wins", func(t *testing.T) {
		text := "zzz " + strings.Repeat("x", 150) + " yyy"
		got := Snippet(text, []string{"yyy", "zzz"})
		assert.True(t, strings.HasPrefix(got, "..."))
		assert.True(t, strings.HasSuffix(got, "yyy"))
	})

	t.Run("no match falls back to start", func(t *testing.T) {
		text := strings.Repeat("c", 400)
		assert.Equal(t, strings.Repeat("c", 300)+"...", Snippet(text, []string{"nope"}))
		assert.Equal(t, "short", Snippet("short", []string{"nope"}))
	})

	t.Run("empty text", func(t *testing.T) {
		assert.Equal(t, "", Snippet("", []string{"x"}))
	})

	t.Run("multibyte offsets", func(t *testing.T) {
		text := strings.Repeat("é", 120) + "Ziel"
		got := Snippet(text, []string{"ziel"})
		assert.Equal(t, "..."+strings.Repeat("é", 100)+"Ziel", got)
	})
}

func TestOverview(t *testing.T) {
	e, s := newEngine(t)
	id := save(t, s, "ov.md", &doctree.Tree{
		Name:        "Guide",
		Description: "How things work",
		Structure: []*doctree.Node{
			{NodeID: "0000", Title: "Intro", Level: 1, Summary: strings.Repeat("s", 130), Children: []*doctree.Node{
				{NodeID: "0001", Title: "", Level: 2, Summary: "brief"},
			}},
		},
	})

	text, found, err := e.Overview(context.Background(), id)
	require.NoError(t, err)
	require.True(t, found)
	want := "Document: Guide\n" +
		"Description: How things work\n" +
		"\n" +
		"- [0000] Intro - " + strings.Repeat("s", 120) + "...\n" +
		"  - [0001] Untitled - brief\n"
	assert.Equal(t, want, text)

	_, found, err = e.Overview(context.Background(), "missing_00000000")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSection(t *testing.T) {
	e, s := newEngine(t)
	id := save(t, s, "10k.html", riskTree())

	sec, err := e.Section(context.Background(), id, "0001")
	require.NoError(t, err)
	assert.Equal(t, "Operations", sec.Title)
	assert.Equal(t, "There is a risk in supply chains.", sec.Text)
	assert.Equal(t, "Operations", sec.NodePath)

	_, err = e.Section(context.Background(), id, "9999")
	assert.ErrorIs(t, err, ErrNodeNotFound)

	_, err = e.Section(context.Background(), "missing_00000000", "0000")
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestDocNameFallsBackToSourceFile(t *testing.T) {
	e, s := newEngine(t)
	tree := riskTree()
	tree.Name = ""
	id := save(t, s, "unnamed.html", tree)

	hits, err := e.Search(context.Background(), "supply", "", 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "unnamed.html", hits[0].DocName)

	text, found, err := e.Overview(context.Background(), id)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, strings.HasPrefix(text, "Document: unnamed.html\n"), text)

	sec, err := e.Section(context.Background(), id, "0000")
	require.NoError(t, err)
	assert.Equal(t, "unnamed.html", sec.DocName)
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"net", "income"}, Tokenize("  Net\tINCOME \n"))
	assert.Empty(t, Tokenize("   "))
}
