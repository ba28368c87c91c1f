package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/dgallion1/treerag/internal/doctree"
)

// GCSStore keeps one JSON object per record under a bucket prefix. Object
// writes are atomic, so a reader never sees a partially written record.
type GCSStore struct {
	client *storage.Client
	bucket *storage.BucketHandle
	prefix string
	log    *slog.Logger

	// fetch reads a whole object. Tests swap it to inject read failures.
	fetch func(ctx context.Context, name string) ([]byte, error)
}

// NewGCSStore connects to bucket using application default credentials
// unless opts say otherwise.
func NewGCSStore(ctx context.Context, bucket, prefix string, log *slog.Logger, opts ...option.ClientOption) (*GCSStore, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return newGCSStore(client, bucket, prefix, log), nil
}

func newGCSStore(client *storage.Client, bucket, prefix string, log *slog.Logger) *GCSStore {
	prefix = strings.Trim(prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	s := &GCSStore{
		client: client,
		bucket: client.Bucket(bucket),
		prefix: prefix,
		log:    log,
	}
	s.fetch = s.read
	return s
}

func (s *GCSStore) Save(ctx context.Context, sourceFile string, tree *doctree.Tree, meta doctree.Metadata) (string, error) {
	rec, err := newRecord(s.log, sourceFile, tree, meta)
	if err != nil {
		return "", err
	}
	data, err := encodeRecord(rec)
	if err != nil {
		return "", err
	}

	w := s.bucket.Object(s.objectName(rec.DocID)).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("save %s: %w", rec.DocID, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("save %s: %w", rec.DocID, err)
	}
	return rec.DocID, nil
}

func (s *GCSStore) Load(ctx context.Context, docID string) (*doctree.Record, error) {
	if !validID(docID) {
		return nil, nil
	}
	data, err := s.fetch(ctx, s.objectName(docID))
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", docID, err)
	}
	rec, err := decodeRecord(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", docID, err)
	}
	return rec, nil
}

func (s *GCSStore) List(ctx context.Context) ([]doctree.Summary, error) {
	recs, err := s.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return summaries(recs), nil
}

func (s *GCSStore) LoadAll(ctx context.Context) ([]*doctree.Record, error) {
	it := s.bucket.Objects(ctx, &storage.Query{Prefix: s.prefix})
	var recs []*doctree.Record
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list objects: %w", err)
		}
		name := strings.TrimPrefix(attrs.Name, s.prefix)
		if strings.Contains(name, "/") || path.Ext(name) != recordExt {
			continue
		}
		data, err := s.fetch(ctx, attrs.Name)
		if errors.Is(err, storage.ErrObjectNotExist) {
			continue // deleted between list and read
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.log.Warn("skipping unreadable record", "object", attrs.Name, "error", err)
			continue
		}
		rec, err := decodeRecord(data)
		if err != nil {
			s.log.Warn("skipping corrupt record", "object", attrs.Name, "error", err)
			continue
		}
		recs = append(recs, rec)
	}
	sortRecords(recs)
	return recs, nil
}

func (s *GCSStore) Delete(ctx context.Context, docID string) (bool, error) {
	if !validID(docID) {
		return false, nil
	}
	err := s.bucket.Object(s.objectName(docID)).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", docID, err)
	}
	return true, nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}

func (s *GCSStore) objectName(docID string) string {
	return s.prefix + docID + recordExt
}

func (s *GCSStore) read(ctx context.Context, name string) ([]byte, error) {
	r, err := s.bucket.Object(name).NewReader(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
