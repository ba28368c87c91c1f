// Package pipeline turns files into stored document trees: parse, assemble,
// summarize and save. It also runs the drop-folder ingest and the
// asynchronous job queue used by the HTTP API.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/treerag/internal/doctree"
	"github.com/dgallion1/treerag/internal/parser"
	"github.com/dgallion1/treerag/internal/store"
	"github.com/dgallion1/treerag/internal/summarize"
	"github.com/dgallion1/treerag/internal/treebuild"
)

// Indexer builds and stores document trees.
type Indexer struct {
	store      store.Store
	summarizer *summarize.Summarizer
	parsers    parser.Options
	log        *slog.Logger
}

// NewIndexer returns an indexer. summarizer may be nil, in which case trees
// are stored without summaries.
func NewIndexer(s store.Store, summarizer *summarize.Summarizer, parsers parser.Options, log *slog.Logger) *Indexer {
	return &Indexer{store: s, summarizer: summarizer, parsers: parsers, log: log}
}

// Request is one document to index.
type Request struct {
	Filename string
	Data     []byte
	// Title overrides the name found by the parser.
	Title string
	// Metadata is layered over what the parser detected.
	Metadata doctree.Metadata
}

// Result describes a stored document.
type Result struct {
	DocID      string
	DocName    string
	Nodes      int
	Summarized int
}

// stageFunc is told when indexing enters a new stage.
type stageFunc func(status JobStatus)

// Parse converts a file to its outline without assembling or storing it.
func (ix *Indexer) Parse(filename string, data []byte) (*parser.Document, error) {
	p, err := ix.parsers.ForFile(filename)
	if err != nil {
		return nil, err
	}
	doc, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	return doc, nil
}

// Build parses and assembles a document without storing it.
func (ix *Indexer) Build(ctx context.Context, req Request) (*doctree.Tree, doctree.Metadata, error) {
	return ix.build(ctx, req, func(JobStatus) {})
}

func (ix *Indexer) build(ctx context.Context, req Request, stage stageFunc) (*doctree.Tree, doctree.Metadata, error) {
	stage(StatusParsing)
	doc, err := ix.Parse(req.Filename, req.Data)
	if err != nil {
		return nil, nil, err
	}
	name := doc.Name
	if req.Title != "" {
		name = req.Title
	}

	stage(StatusAssembling)
	tree, err := treebuild.Build(doc.Outline, name)
	if err != nil {
		return nil, nil, fmt.Errorf("assemble %s: %w", req.Filename, err)
	}

	if ix.summarizer != nil {
		stage(StatusSummarizing)
		res, err := ix.summarizer.Tree(ctx, tree)
		if err != nil {
			return nil, nil, err
		}
		if res.Failed > 0 {
			ix.log.Warn("some summaries failed", "filename", req.Filename, "failed", res.Failed)
		}
	}

	meta := doc.Metadata.Merge(req.Metadata)
	return tree, meta, nil
}

// Index parses, assembles, optionally summarizes and stores one document.
// The source file recorded is the base name of req.Filename.
func (ix *Indexer) Index(ctx context.Context, req Request) (*Result, error) {
	return ix.index(ctx, req, func(JobStatus) {})
}

func (ix *Indexer) index(ctx context.Context, req Request, stage stageFunc) (*Result, error) {
	tree, meta, err := ix.build(ctx, req, stage)
	if err != nil {
		return nil, err
	}

	stage(StatusStoring)
	docID, err := ix.store.Save(ctx, filepath.Base(req.Filename), tree, meta)
	if err != nil {
		return nil, fmt.Errorf("store %s: %w", req.Filename, err)
	}

	res := &Result{DocID: docID, DocName: tree.Name, Nodes: doctree.CountNodes(tree.Structure)}
	doctree.Walk(tree.Structure, func(n *doctree.Node, _ int) bool {
		if n.Summary != "" {
			res.Summarized++
		}
		return true
	})
	ix.log.Info("indexed document", "doc_id", docID, "filename", req.Filename, "nodes", res.Nodes)
	return res, nil
}

// IndexBytes indexes an in-memory file and returns its doc id.
func (ix *Indexer) IndexBytes(ctx context.Context, filename string, data []byte, meta doctree.Metadata) (string, error) {
	res, err := ix.Index(ctx, Request{Filename: filename, Data: data, Metadata: meta})
	if err != nil {
		return "", err
	}
	return res.DocID, nil
}

// IndexFile reads path from disk and indexes it.
func (ix *Indexer) IndexFile(ctx context.Context, path string, meta doctree.Metadata) (string, error) {
	if !parser.IsSupportedExtension(path) {
		return "", fmt.Errorf("unsupported file extension: %q", strings.ToLower(filepath.Ext(path)))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return ix.IndexBytes(ctx, path, data, meta)
}
