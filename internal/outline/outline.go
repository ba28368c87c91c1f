// Package outline converts markup into a heading-leveled plain text outline.
//
// An outline is a sequence of lines. A line of the form "#"*d + " " + title
// marks a heading of depth d (1..6); every other line is body text belonging
// to the most recent heading.
package outline

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MaxDepth bounds element nesting during traversal.
const MaxDepth = 200

// ErrMalformedInput is returned for input that cannot be decoded or whose
// element nesting exceeds MaxDepth.
var ErrMalformedInput = errors.New("malformed input")

// FromReader reads raw markup, decodes it and builds its outline.
func FromReader(r io.Reader) (string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read markup: %w", err)
	}
	return FromBytes(raw, "")
}

// FromBytes decodes raw using declaredEncoding (empty means unknown) and
// builds its outline.
func FromBytes(raw []byte, declaredEncoding string) (string, error) {
	root, err := Parse(raw, declaredEncoding)
	if err != nil {
		return "", err
	}
	return FromNode(root)
}

// Parse decodes raw and parses it into an html node tree.
func Parse(raw []byte, declaredEncoding string) (*html.Node, error) {
	text, err := Decode(raw, declaredEncoding)
	if err != nil {
		return nil, err
	}
	root, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("%w: parse html: %v", ErrMalformedInput, err)
	}
	return root, nil
}

// FromNode builds the outline of an already parsed document. script, style
// and noscript subtrees are skipped without modifying root.
func FromNode(root *html.Node) (string, error) {
	if root == nil {
		return "", nil
	}
	start := findElement(root, atom.Body)
	if start == nil {
		start = root
	}
	var b builder
	if err := b.walk(start, 0); err != nil {
		return "", err
	}
	return Render(b.lines), nil
}

// Title returns the collapsed text of the document's <title>, if any.
func Title(root *html.Node) string {
	if root == nil {
		return ""
	}
	if t := findElement(root, atom.Title); t != nil {
		return collapsedText(t)
	}
	return ""
}

type builder struct {
	lines []string
}

func (b *builder) walk(n *html.Node, depth int) error {
	if depth > MaxDepth {
		return fmt.Errorf("%w: element nesting deeper than %d", ErrMalformedInput, MaxDepth)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || excluded(c) {
			continue
		}
		if level := headingLevel(c); level > 0 {
			if text := collapsedText(c); text != "" {
				b.lines = append(b.lines, strings.Repeat("#", level)+" "+text)
			}
			continue
		}
		if c.DataAtom == atom.Table {
			b.table(c)
			continue
		}
		if isBlock(c) && !hasNestedStructure(c) {
			if text := collapsedText(c); text != "" {
				b.lines = append(b.lines, text)
			}
			continue
		}
		if err := b.walk(c, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// table emits one line per row with non-empty cells, cells joined by " | ".
func (b *builder) table(t *html.Node) {
	for _, row := range descendants(t, func(n *html.Node) bool { return n.DataAtom == atom.Tr }) {
		cells := descendants(row, func(n *html.Node) bool {
			return n.DataAtom == atom.Td || n.DataAtom == atom.Th
		})
		texts := make([]string, len(cells))
		empty := true
		for i, cell := range cells {
			texts[i] = collapsedText(cell)
			if texts[i] != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		b.lines = append(b.lines, strings.Join(texts, " | "))
	}
}

func headingLevel(n *html.Node) int {
	switch n.DataAtom {
	case atom.H1:
		return 1
	case atom.H2:
		return 2
	case atom.H3:
		return 3
	case atom.H4:
		return 4
	case atom.H5:
		return 5
	case atom.H6:
		return 6
	}
	return 0
}

func isBlock(n *html.Node) bool {
	switch n.DataAtom {
	case atom.P, atom.Div, atom.Li, atom.Td, atom.Th, atom.Blockquote, atom.Pre,
		atom.Section, atom.Article, atom.Header, atom.Footer:
		return true
	}
	return false
}

func excluded(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Noscript:
		return true
	}
	return false
}

// hasNestedStructure reports whether n has a block, heading or table
// descendant.
func hasNestedStructure(n *html.Node) bool {
	return firstDescendant(n, func(d *html.Node) bool {
		return isBlock(d) || headingLevel(d) > 0 || d.DataAtom == atom.Table
	}) != nil
}

// descendants returns element descendants of n matching keep, in document
// order.
func descendants(n *html.Node, keep func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	visit(n, func(d *html.Node) bool {
		if keep(d) {
			out = append(out, d)
		}
		return true
	})
	return out
}

func firstDescendant(n *html.Node, keep func(*html.Node) bool) *html.Node {
	var found *html.Node
	visit(n, func(d *html.Node) bool {
		if keep(d) {
			found = d
			return false
		}
		return true
	})
	return found
}

// visit calls fn for each element descendant of n in document order, never
// entering excluded subtrees, until fn returns false. It uses an explicit
// stack so deep inputs cannot exhaust the goroutine stack.
func visit(n *html.Node, fn func(*html.Node) bool) {
	stack := childrenReversed(n, nil)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur.Type != html.ElementNode || excluded(cur) {
			continue
		}
		if !fn(cur) {
			return
		}
		stack = childrenReversed(cur, stack)
	}
}

func childrenReversed(n *html.Node, stack []*html.Node) []*html.Node {
	for c := n.LastChild; c != nil; c = c.PrevSibling {
		stack = append(stack, c)
	}
	return stack
}

// collapsedText joins the text nodes under n with single spaces, collapsing
// all whitespace runs.
func collapsedText(n *html.Node) string {
	var buf bytes.Buffer
	stack := childrenReversed(n, nil)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch cur.Type {
		case html.TextNode:
			buf.WriteString(cur.Data)
			buf.WriteByte(' ')
		case html.ElementNode:
			if excluded(cur) {
				continue
			}
			stack = childrenReversed(cur, stack)
		}
	}
	return strings.Join(strings.Fields(buf.String()), " ")
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	return firstDescendant(n, func(d *html.Node) bool { return d.DataAtom == a })
}
