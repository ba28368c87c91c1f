package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/treerag/internal/doctree"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS documents (
	doc_id      TEXT PRIMARY KEY,
	source_file TEXT NOT NULL,
	doc_name    TEXT NOT NULL DEFAULT '',
	body        TEXT NOT NULL,
	updated_at  TIMESTAMP NOT NULL
)`

// SQLiteStore keeps one row per record. The record itself is stored as JSON
// in the body column; the other columns are for inspection with sqlite3.
type SQLiteStore struct {
	db  *sql.DB
	log *slog.Logger
}

// NewSQLiteStore opens (or creates) the database at path. ":memory:" works
// for tests.
func NewSQLiteStore(path string, log *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open(SQLiteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Single connection: one writer, and :memory: databases stay shared.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{db: db, log: log}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, sourceFile string, tree *doctree.Tree, meta doctree.Metadata) (string, error) {
	rec, err := newRecord(s.log, sourceFile, tree, meta)
	if err != nil {
		return "", err
	}
	data, err := encodeRecord(rec)
	if err != nil {
		return "", err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (doc_id, source_file, doc_name, body, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(doc_id) DO UPDATE SET
			source_file = excluded.source_file,
			doc_name    = excluded.doc_name,
			body        = excluded.body,
			updated_at  = excluded.updated_at`,
		rec.DocID, rec.SourceFile, rec.DocName, string(data), time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("save %s: %w", rec.DocID, err)
	}
	return rec.DocID, nil
}

func (s *SQLiteStore) Load(ctx context.Context, docID string) (*doctree.Record, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE doc_id = ?`, docID).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", docID, err)
	}
	rec, err := decodeRecord([]byte(body))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", docID, err)
	}
	return rec, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]doctree.Summary, error) {
	recs, err := s.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return summaries(recs), nil
}

func (s *SQLiteStore) LoadAll(ctx context.Context) ([]*doctree.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT doc_id, body FROM documents ORDER BY doc_id`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var recs []*doctree.Record
	for rows.Next() {
		var docID, body string
		if err := rows.Scan(&docID, &body); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		rec, err := decodeRecord([]byte(body))
		if err != nil {
			s.log.Warn("skipping corrupt record", "doc_id", docID, "error", err)
			continue
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	sortRecords(recs)
	return recs, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, docID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE doc_id = ?`, docID)
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", docID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", docID, err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// putRaw writes a body without validation. Used by tests to plant corrupt
// rows.
func (s *SQLiteStore) putRaw(ctx context.Context, docID, body string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (doc_id, source_file, body, updated_at) VALUES (?, ?, ?, ?)`,
		docID, docID, body, time.Now().UTC())
	return err
}
