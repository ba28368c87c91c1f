package parser

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/dgallion1/treerag/internal/doctree"
	"github.com/dgallion1/treerag/internal/outline"
)

// Filename conventions like AAPL_10K.txt or MSFT-Q3-2024.txt.
var (
	tickerPattern  = regexp.MustCompile(`(?i)^([A-Z]{1,5})[\s_\-]`)
	quarterPattern = regexp.MustCompile(`(?i)Q([1-4])\s*(\d{4})`)
)

// TextParser handles plain text files and transcripts.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}
	text, err := outline.Decode(raw, "")
	if err != nil {
		return nil, fmt.Errorf("decode text: %w", err)
	}

	meta := FilenameMetadata(filename)
	meta[doctree.MetaFileType] = "text"

	return &Document{
		Name:     Stem(filename),
		Outline:  outline.Render(strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")),
		Metadata: meta,
	}, nil
}

// FilenameMetadata detects a ticker and a fiscal quarter from the file stem.
func FilenameMetadata(filename string) doctree.Metadata {
	stem := Stem(filename)
	meta := doctree.Metadata{}
	if m := tickerPattern.FindStringSubmatch(stem); m != nil {
		meta[doctree.MetaTicker] = strings.ToUpper(m[1])
	}
	if m := quarterPattern.FindStringSubmatch(stem); m != nil {
		q, _ := strconv.Atoi(m[1])
		y, _ := strconv.Atoi(m[2])
		meta[doctree.MetaQuarter] = float64(q)
		meta[doctree.MetaYear] = float64(y)
	}
	return meta
}
