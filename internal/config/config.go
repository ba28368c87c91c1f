package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Store backends.
const (
	BackendFile      = "file"
	BackendSQLite    = "sqlite"
	BackendGCS       = "gcs"
	BackendPathstore = "pathstore"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Storage
	DataDir      string
	StoreBackend string
	IndexDir     string
	SQLitePath   string
	GCSBucket    string
	GCSPrefix    string

	// Pathstore connection
	PathstoreURL    string
	PathstoreAPIKey string
	PathstorePrefix string

	// Drop folder ingestion
	DropDir             string
	ProcessedDir        string
	MaxConcurrentIngest int

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool

	// Node summaries
	SummariesEnabled       bool
	AnthropicAPIKey        string
	AnthropicModel         string
	SummaryTokenThreshold  int
	MaxConcurrentSummarize int

	// Search
	SearchMaxResults int
}

func Load() Config {
	dataDir := envOr("DATA_DIR", "./data")

	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("TREERAG_API_KEY"),

		DataDir:      dataDir,
		StoreBackend: envOr("STORE_BACKEND", BackendFile),
		IndexDir:     envOr("INDEX_DIR", filepath.Join(dataDir, "indexes")),
		SQLitePath:   envOr("SQLITE_PATH", filepath.Join(dataDir, "treerag.db")),
		GCSBucket:    os.Getenv("GCS_BUCKET"),
		GCSPrefix:    envOr("GCS_PREFIX", "indexes/"),

		PathstoreURL:    envOr("PATHSTORE_URL", "http://localhost:8080"),
		PathstoreAPIKey: os.Getenv("PATHSTORE_API_KEY"),
		PathstorePrefix: envOr("PATHSTORE_PREFIX", "treerag/documents"),

		DropDir:             envOr("DROP_DIR", filepath.Join(dataDir, "drop")),
		ProcessedDir:        envOr("PROCESSED_DIR", filepath.Join(dataDir, "processed")),
		MaxConcurrentIngest: envInt("MAX_CONCURRENT_INGEST", 4),

		WorkerCount:  envInt("WORKER_COUNT", 2),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		SummariesEnabled:       envBool("SUMMARIES_ENABLED", false),
		AnthropicAPIKey:        os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:         envOr("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),
		SummaryTokenThreshold:  envInt("SUMMARY_TOKEN_THRESHOLD", 200),
		MaxConcurrentSummarize: envInt("MAX_CONCURRENT_SUMMARIZE", 5),

		SearchMaxResults: envInt("SEARCH_MAX_RESULTS", 10),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxConcurrentIngest <= 0 {
		cfg.MaxConcurrentIngest = 4
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.SummaryTokenThreshold <= 0 {
		cfg.SummaryTokenThreshold = 200
	}
	if cfg.MaxConcurrentSummarize <= 0 {
		cfg.MaxConcurrentSummarize = 5
	}
	if cfg.SearchMaxResults <= 0 {
		cfg.SearchMaxResults = 10
	}

	return cfg
}

// Validate checks settings every entry point needs.
func (c Config) Validate() error {
	switch c.StoreBackend {
	case BackendFile, BackendSQLite:
	case BackendGCS:
		if c.GCSBucket == "" {
			return fmt.Errorf("GCS_BUCKET is required for the gcs store backend")
		}
	case BackendPathstore:
		if c.PathstoreAPIKey == "" {
			return fmt.Errorf("PATHSTORE_API_KEY is required for the pathstore store backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.SummariesEnabled && c.AnthropicAPIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is required when SUMMARIES_ENABLED is set")
	}
	return nil
}

// ValidateServer additionally requires the HTTP API key.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.APIKey == "" {
		return fmt.Errorf("TREERAG_API_KEY is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
