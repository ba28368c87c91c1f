package parser

import (
	"fmt"
	"io"

	"github.com/dgallion1/treerag/internal/doctree"
	"github.com/dgallion1/treerag/internal/outline"
)

// HTMLParser handles HTML files, including SEC EDGAR filings.
type HTMLParser struct {
	// Encoding is the declared charset, if known from a transport header.
	Encoding string
}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read html: %w", err)
	}

	root, err := outline.Parse(raw, p.Encoding)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	text, err := outline.FromNode(root)
	if err != nil {
		return nil, fmt.Errorf("outline html: %w", err)
	}

	name := outline.Title(root)
	if name == "" {
		name = Stem(filename)
	}

	return &Document{
		Name:     name,
		Outline:  text,
		Metadata: doctree.Metadata{doctree.MetaFileType: "html"},
	}, nil
}
