package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestIngestDir(t *testing.T) {
	ix, s := newTestIndexer(t, nil)
	drop := t.TempDir()
	processed := filepath.Join(t.TempDir(), "processed")

	writeFile(t, drop, "a.md", "# A\n\nalpha\n")
	writeFile(t, drop, "b.txt", "Item 1. Business\nbravo\n")
	writeFile(t, drop, "empty.txt", "\n")
	writeFile(t, drop, "skip.png", "x")
	writeFile(t, drop, ".hidden.md", "# H\n")

	results, err := ix.IngestDir(context.Background(), drop, processed, 2)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %+v", results)
	}

	byName := map[string]FileResult{}
	for _, r := range results {
		byName[r.File] = r
	}
	if r := byName["a.md"]; r.DocID == "" || r.Error != "" || r.MovedTo != filepath.Join(processed, "a.md") {
		t.Errorf("unexpected result for a.md: %+v", r)
	}
	if r := byName["empty.txt"]; r.Error == "" || r.MovedTo != "" {
		t.Errorf("expected failure for empty.txt: %+v", r)
	}

	if _, err := os.Stat(filepath.Join(drop, "empty.txt")); err != nil {
		t.Errorf("expected failed file left in drop dir: %v", err)
	}
	if _, err := os.Stat(filepath.Join(drop, "a.md")); !os.IsNotExist(err) {
		t.Errorf("expected a.md moved out of drop dir, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(drop, "skip.png")); err != nil {
		t.Errorf("expected unsupported file untouched: %v", err)
	}

	list, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("expected 2 stored documents, got %d", len(list))
	}
}

func TestIngestDir_NameClash(t *testing.T) {
	ix, _ := newTestIndexer(t, nil)
	drop := t.TempDir()
	processed := t.TempDir()

	writeFile(t, processed, "report.md", "old")
	writeFile(t, processed, "report_1.md", "older")
	writeFile(t, drop, "report.md", "# R\n\nnew\n")

	results, err := ix.IngestDir(context.Background(), drop, processed, 1)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if len(results) != 1 || results[0].MovedTo != filepath.Join(processed, "report_2.md") {
		t.Fatalf("expected move to report_2.md, got %+v", results)
	}
}

func TestIngestDir_MissingDropDir(t *testing.T) {
	ix, _ := newTestIndexer(t, nil)
	results, err := ix.IngestDir(context.Background(), filepath.Join(t.TempDir(), "nope"), t.TempDir(), 2)
	if err != nil || results != nil {
		t.Errorf("expected (nil, nil) for missing drop dir, got (%v, %v)", results, err)
	}
}
