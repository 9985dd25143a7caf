// Package db opens the SQLite databases used for on-disk caches.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver
)

// Memory is the data source name of a private in-memory database.
const Memory = ":memory:"

// Applied by the driver to every new connection of the pool.
const filePragmas = "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

// Open opens (creating if needed) the SQLite database at path and configures
// it for concurrent readers. Use Memory for a throwaway database.
func Open(path string) (*sql.DB, error) {
	if path == Memory {
		db, err := sql.Open("sqlite", Memory)
		if err != nil {
			return nil, err
		}
		// Every pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
		return db, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+filePragmas)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}
