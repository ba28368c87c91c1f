package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgallion1/treerag/internal/doctree"
	"github.com/dgallion1/treerag/internal/pathstore"
)

// listLimit bounds a single prefix scan.
const listLimit = 10000

// PathStore keeps each record as one pathstore node at prefix/docID. A PUT
// replaces the node in a single request.
type PathStore struct {
	client *pathstore.Client
	prefix string
	log    *slog.Logger
}

func NewPathStore(client *pathstore.Client, prefix string, log *slog.Logger) *PathStore {
	return &PathStore{
		client: client,
		prefix: strings.Trim(prefix, "/"),
		log:    log,
	}
}

func (s *PathStore) Save(ctx context.Context, sourceFile string, tree *doctree.Tree, meta doctree.Metadata) (string, error) {
	rec, err := newRecord(s.log, sourceFile, tree, meta)
	if err != nil {
		return "", err
	}
	data, err := encodeRecord(rec)
	if err != nil {
		return "", err
	}
	err = s.client.PutNode(ctx, s.key(rec.DocID), pathstore.NodeRequest{
		Value:      data,
		MemoryType: "document_tree",
		Source:     sourceFile,
	})
	if err != nil {
		return "", fmt.Errorf("save %s: %w", rec.DocID, err)
	}
	return rec.DocID, nil
}

func (s *PathStore) Load(ctx context.Context, docID string) (*doctree.Record, error) {
	if !validID(docID) {
		return nil, nil
	}
	node, err := s.client.GetNode(ctx, s.key(docID))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", docID, err)
	}
	if node == nil {
		return nil, nil
	}
	rec, err := decodeRecord(node.Value)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", docID, err)
	}
	return rec, nil
}

func (s *PathStore) List(ctx context.Context) ([]doctree.Summary, error) {
	recs, err := s.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return summaries(recs), nil
}

func (s *PathStore) LoadAll(ctx context.Context) ([]*doctree.Record, error) {
	nodes, err := s.client.ListChildren(ctx, s.prefix, listLimit)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	recs := make([]*doctree.Record, 0, len(nodes))
	for _, n := range nodes {
		rec, err := decodeRecord(n.Value)
		if err != nil {
			s.log.Warn("skipping corrupt record", "key", n.Key, "error", err)
			continue
		}
		recs = append(recs, rec)
	}
	sortRecords(recs)
	return recs, nil
}

func (s *PathStore) Delete(ctx context.Context, docID string) (bool, error) {
	if !validID(docID) {
		return false, nil
	}
	found, err := s.client.DeleteNode(ctx, s.key(docID), false)
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", docID, err)
	}
	return found, nil
}

func (s *PathStore) Close() error {
	s.client.Close()
	return nil
}

func (s *PathStore) key(docID string) string {
	return s.prefix + "/" + docID
}
