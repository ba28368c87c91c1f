package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/treerag/internal/parser"
)

// FileResult is the outcome of ingesting one file from the drop folder.
type FileResult struct {
	File  string `json:"file"`
	DocID string `json:"doc_id,omitempty"`
	Error string `json:"error,omitempty"`
	// MovedTo is where the file went after a successful ingest.
	MovedTo string `json:"moved_to,omitempty"`
}

// IngestDir indexes every supported file directly inside dropDir, at most
// limit at a time. Files that index successfully are moved to processedDir;
// failures stay in place. Results are ordered by file name.
func (ix *Indexer) IngestDir(ctx context.Context, dropDir, processedDir string, limit int) ([]FileResult, error) {
	entries, err := os.ReadDir(dropDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read drop dir: %w", err)
	}
	if err := os.MkdirAll(processedDir, 0o755); err != nil {
		return nil, fmt.Errorf("create processed dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || !parser.IsSupportedExtension(e.Name()) {
			continue
		}
		files = append(files, e.Name())
	}
	sort.Strings(files)
	if len(files) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 1
	}

	results := make([]FileResult, len(files))
	var moveMu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, name := range files {
		g.Go(func() error {
			src := filepath.Join(dropDir, name)
			results[i] = FileResult{File: name}

			docID, err := ix.IndexFile(gctx, src, nil)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				ix.log.Error("ingest failed", "file", name, "error", err)
				results[i].Error = err.Error()
				return nil
			}
			results[i].DocID = docID

			// Destination names are picked and claimed under one lock so
			// concurrent moves never race for the same name.
			moveMu.Lock()
			dst, err := moveFile(src, processedDir)
			moveMu.Unlock()
			if err != nil {
				ix.log.Warn("move processed file failed", "file", name, "error", err)
				results[i].Error = err.Error()
				return nil
			}
			results[i].MovedTo = dst
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, fmt.Errorf("ingest %s: %w", dropDir, err)
	}
	return results, nil
}

// moveFile renames src into dir, suffixing _1, _2, ... to the stem when the
// name is taken.
func moveFile(src, dir string) (string, error) {
	base := filepath.Base(src)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	dst := filepath.Join(dir, base)
	for i := 1; ; i++ {
		_, err := os.Lstat(dst)
		if errors.Is(err, fs.ErrNotExist) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", dst, err)
		}
		dst = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, i, ext))
	}
	if err := os.Rename(src, dst); err != nil {
		return "", fmt.Errorf("move %s: %w", base, err)
	}
	return dst, nil
}
