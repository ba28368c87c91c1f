package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/treerag/internal/doctree"
	"github.com/dgallion1/treerag/internal/outline"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read markdown: %w", err)
	}

	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var lines []string
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		lines = appendBlock(lines, n, src)
	}

	return &Document{
		Name:     Stem(filename),
		Outline:  outline.Render(lines),
		Metadata: doctree.Metadata{doctree.MetaFileType: "markdown"},
	}, nil
}

// appendBlock renders a block node as outline lines. Code blocks keep their
// fences so '#' comments inside them are not read as headings.
func appendBlock(lines []string, n ast.Node, src []byte) []string {
	switch node := n.(type) {
	case *ast.Heading:
		if t := inlineText(node, src); t != "" {
			lines = append(lines, strings.Repeat("#", node.Level)+" "+t)
		}
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		lines = append(lines, "```")
		segs := n.Lines()
		for i := 0; i < segs.Len(); i++ {
			seg := segs.At(i)
			lines = append(lines, strings.TrimRight(string(seg.Value(src)), "\r\n"))
		}
		lines = append(lines, "```")
	case *ast.HTMLBlock, *ast.ThematicBreak:
	case *ast.Paragraph, *ast.TextBlock:
		if t := inlineText(node, src); t != "" {
			lines = append(lines, t)
		}
	default:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			lines = appendBlock(lines, c, src)
		}
	}
	return lines
}

// inlineText collects the visible text of a block's inline children on one
// line.
func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		case *ast.AutoLink:
			buf.Write(t.Label(src))
			return ast.WalkSkipChildren, nil
		case *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(strings.Fields(buf.String()), " ")
}
