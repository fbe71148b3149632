// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// The whole store is one table of key/value rows, mirroring the browser
// localStorage the screens were designed against: every key holds a
// single serialised document.
//
// The blank import below registers the sqlite3 driver with database/sql.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/aanand-mishra/local-crud/internal/config"

	// Blank import: side-effect only (registers the "sqlite3" driver).
	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the concrete implementation of storage.Storage.
// A single *sql.DB is safe for concurrent use by multiple goroutines.
type SQLite struct {
	Db *sql.DB
}

// New opens the SQLite database at cfg.StoragePath.
func New(cfg *config.Config) (*SQLite, error) {
	return Open(cfg.StoragePath)
}

// Open opens (or creates) the database file at path and makes sure the
// kv table exists. CREATE TABLE IF NOT EXISTS is idempotent, so this is
// safe to run on every startup.
func Open(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.Open: open db: %w", err)
	}

	// Schema:
	//   key   - storage key, e.g. "users"
	//   value - the serialised document for that key
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.Open: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// GetItem fetches the value for key.
//
// Return values:
//
//	value, true, nil  - the key exists
//	"", false, nil    - no row for key (sql.ErrNoRows is not an error here)
//	"", false, err    - the query itself failed
//
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) GetItem(key string) (string, bool, error) {
	stmt, err := s.Db.Prepare("SELECT value FROM kv WHERE key = ? LIMIT 1")
	if err != nil {
		return "", false, fmt.Errorf("GetItem: prepare: %w", err)
	}
	defer stmt.Close()

	var value string
	err = stmt.QueryRow(key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("GetItem: scan: %w", err)
	}

	return value, true, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// SetItem stores value under key, replacing any previous value.
//
// INSERT ... ON CONFLICT(key) DO UPDATE is SQLite's upsert: one statement
// either inserts the row or overwrites its value column. Both values are
// bound through ? placeholders, never concatenated into the SQL.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) SetItem(key, value string) error {
	stmt, err := s.Db.Prepare(
		"INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
	)
	if err != nil {
		return fmt.Errorf("SetItem: prepare: %w", err)
	}
	defer stmt.Close()

	if _, err := stmt.Exec(key, value); err != nil {
		return fmt.Errorf("SetItem: exec: %w", err)
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// RemoveItem deletes the row for key. Removing a missing key is not an
// error, matching localStorage.removeItem.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) RemoveItem(key string) error {
	stmt, err := s.Db.Prepare("DELETE FROM kv WHERE key = ?")
	if err != nil {
		return fmt.Errorf("RemoveItem: prepare: %w", err)
	}
	defer stmt.Close()

	if _, err := stmt.Exec(key); err != nil {
		return fmt.Errorf("RemoveItem: exec: %w", err)
	}

	return nil
}

// Close closes the underlying connection pool.
func (s *SQLite) Close() error {
	return s.Db.Close()
}
