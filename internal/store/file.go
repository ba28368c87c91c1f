package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/treerag/internal/doctree"
)

const recordExt = ".json"

// FileStore keeps one JSON file per record in a directory.
type FileStore struct {
	dir string
	log *slog.Logger
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string, log *slog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}
	return &FileStore{dir: dir, log: log}, nil
}

// Dir returns the directory records are written to.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) Save(ctx context.Context, sourceFile string, tree *doctree.Tree, meta doctree.Metadata) (string, error) {
	rec, err := newRecord(s.log, sourceFile, tree, meta)
	if err != nil {
		return "", err
	}
	data, err := encodeRecord(rec)
	if err != nil {
		return "", err
	}
	if err := s.writeAtomic(s.path(rec.DocID), data); err != nil {
		return "", fmt.Errorf("save %s: %w", rec.DocID, err)
	}
	s.log.Debug("saved record", "doc_id", rec.DocID, "source_file", sourceFile)
	return rec.DocID, nil
}

// writeAtomic writes to a temp file in the same directory and renames it
// over the target.
func (s *FileStore) writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, ".tmp-*"+recordExt)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

func (s *FileStore) Load(ctx context.Context, docID string) (*doctree.Record, error) {
	if !validID(docID) {
		return nil, nil
	}
	data, err := os.ReadFile(s.path(docID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read record %s: %w", docID, err)
	}
	rec, err := decodeRecord(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", docID, err)
	}
	return rec, nil
}

func (s *FileStore) List(ctx context.Context) ([]doctree.Summary, error) {
	recs, err := s.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return summaries(recs), nil
}

func (s *FileStore) LoadAll(ctx context.Context) ([]*doctree.Record, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read index dir: %w", err)
	}

	var recs []*doctree.Record
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != recordExt {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			s.log.Warn("skipping unreadable record", "file", name, "error", err)
			continue
		}
		rec, err := decodeRecord(data)
		if err != nil {
			s.log.Warn("skipping corrupt record", "file", name, "error", err)
			continue
		}
		recs = append(recs, rec)
	}
	sortRecords(recs)
	return recs, nil
}

func (s *FileStore) Delete(ctx context.Context, docID string) (bool, error) {
	if !validID(docID) {
		return false, nil
	}
	err := os.Remove(s.path(docID))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", docID, err)
	}
	return true, nil
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) path(docID string) string {
	return filepath.Join(s.dir, docID+recordExt)
}
