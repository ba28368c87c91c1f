//go:build !sqlite_cgo

package store

// Pure Go SQLite, no C toolchain required.
import (
	_ "modernc.org/sqlite"
)

// SQLiteDriverName is the database/sql driver backing SQLiteStore.
const SQLiteDriverName = "sqlite"
