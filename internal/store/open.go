package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dgallion1/treerag/internal/config"
	"github.com/dgallion1/treerag/internal/pathstore"
)

// Open returns the backend selected by cfg.StoreBackend.
func Open(ctx context.Context, cfg config.Config, log *slog.Logger) (Store, error) {
	switch cfg.StoreBackend {
	case config.BackendFile, "":
		return NewFileStore(cfg.IndexDir, log)
	case config.BackendSQLite:
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		return NewSQLiteStore(cfg.SQLitePath, log)
	case config.BackendGCS:
		return NewGCSStore(ctx, cfg.GCSBucket, cfg.GCSPrefix, log)
	case config.BackendPathstore:
		client := pathstore.NewClient(cfg.PathstoreURL, cfg.PathstoreAPIKey)
		return NewPathStore(client, cfg.PathstorePrefix, log), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}
