// Package store persists document trees, one record per document.
//
// Every backend writes whole records atomically: readers observe either the
// previous record or the new one, never a partial write. Records that cannot
// be decoded are skipped by List and LoadAll with a warning.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/dgallion1/treerag/internal/doctree"
)

var (
	// ErrEmptyTree is returned when saving a tree without nodes.
	ErrEmptyTree = errors.New("empty tree")
	// ErrCorruptRecord is returned by Load for a record that cannot be decoded.
	ErrCorruptRecord = errors.New("corrupt record")
)

// Store is the persistence contract shared by all backends.
type Store interface {
	// Save writes the tree for sourceFile and returns its doc id. Saving the
	// same source file again replaces the record.
	Save(ctx context.Context, sourceFile string, tree *doctree.Tree, meta doctree.Metadata) (string, error)
	// Load returns the record for docID, or nil when none exists.
	Load(ctx context.Context, docID string) (*doctree.Record, error)
	// List returns a summary of every decodable record, ordered by doc id.
	List(ctx context.Context) ([]doctree.Summary, error)
	// Delete removes a record and reports whether it existed.
	Delete(ctx context.Context, docID string) (bool, error)
	// LoadAll returns every decodable record, ordered by doc id.
	LoadAll(ctx context.Context) ([]*doctree.Record, error)
	Close() error
}

// newRecord validates the inputs of Save and builds the record to persist.
func newRecord(log *slog.Logger, sourceFile string, tree *doctree.Tree, meta doctree.Metadata) (*doctree.Record, error) {
	if tree == nil || doctree.CountNodes(tree.Structure) == 0 {
		return nil, fmt.Errorf("save %q: %w", sourceFile, ErrEmptyTree)
	}
	m := doctree.NormalizeMetadata(meta)
	if err := m.Validate(); err != nil {
		log.Warn("unexpected metadata", "source_file", sourceFile, "error", err)
	}
	return &doctree.Record{
		DocID:          DocID(sourceFile),
		SourceFile:     sourceFile,
		Metadata:       m,
		DocName:        tree.Name,
		DocDescription: tree.Description,
		Structure:      tree.Structure,
	}, nil
}

func encodeRecord(rec *doctree.Record) ([]byte, error) {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal record %s: %w", rec.DocID, err)
	}
	return data, nil
}

func decodeRecord(data []byte) (*doctree.Record, error) {
	var rec doctree.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	if rec.DocID == "" {
		return nil, fmt.Errorf("%w: missing doc_id", ErrCorruptRecord)
	}
	if rec.Metadata == nil {
		rec.Metadata = doctree.Metadata{}
	}
	return &rec, nil
}

// validID rejects ids that could escape a backend's namespace.
func validID(docID string) bool {
	if docID == "" || docID == "." || docID == ".." {
		return false
	}
	return !strings.ContainsAny(docID, `/\`)
}

func sortRecords(recs []*doctree.Record) {
	slices.SortFunc(recs, func(a, b *doctree.Record) int { return strings.Compare(a.DocID, b.DocID) })
}

func summaries(recs []*doctree.Record) []doctree.Summary {
	out := make([]doctree.Summary, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Summarize())
	}
	return out
}
