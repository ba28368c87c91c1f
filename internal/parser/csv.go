package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/treerag/internal/doctree"
	"github.com/dgallion1/treerag/internal/outline"
)

// csvBatchSize is the number of rows grouped under one heading.
const csvBatchSize = 20

// CSVParser handles CSV files. Each row becomes a "column: value, ..."
// sentence so keyword search can match on both.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	doc := &Document{
		Name:     Stem(filename),
		Metadata: doctree.Metadata{doctree.MetaFileType: "csv"},
	}
	if len(records) == 0 {
		doc.Metadata[doctree.MetaRows] = float64(0)
		doc.Metadata[doctree.MetaColumns] = ""
		return doc, nil
	}

	// First row is headers.
	headers := records[0]
	dataRows := records[1:]
	doc.Metadata[doctree.MetaRows] = float64(len(dataRows))
	doc.Metadata[doctree.MetaColumns] = strings.Join(headers, ", ")

	var lines []string
	for i := 0; i < len(dataRows); i += csvBatchSize {
		end := min(i+csvBatchSize, len(dataRows))
		lines = append(lines, fmt.Sprintf("# Rows %d-%d", i+2, end+1)) // 1-indexed, skip header
		for _, row := range dataRows[i:end] {
			if s := rowSentence(headers, row); s != "" {
				lines = append(lines, s)
			}
		}
	}
	doc.Outline = outline.Render(lines)
	return doc, nil
}

func rowSentence(headers, row []string) string {
	parts := make([]string, 0, len(row))
	for j, cell := range row {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		if j < len(headers) {
			parts = append(parts, headers[j]+": "+cell)
		} else {
			parts = append(parts, cell)
		}
	}
	return strings.Join(parts, ", ")
}
