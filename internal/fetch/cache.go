// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Cache is a SQLite-backed response cache, content-addressed by request
// URL. It is append-only from the fetcher's perspective: entries live
// as long as the database file. Safe for concurrent use; two fetches of
// the same URL race benignly on the upsert.
type Cache struct {
	db *sql.DB
}

// OpenCache opens or creates the cache database at path.
func OpenCache(path string) (*Cache, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS responses (
		url TEXT PRIMARY KEY,
		body BLOB NOT NULL,
		fetched_at TEXT NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close releases the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the cached body for url, with ok reporting a hit.
func (c *Cache) Get(ctx context.Context, url string) (body []byte, ok bool, err error) {
	err = c.db.QueryRowContext(ctx,
		`SELECT body FROM responses WHERE url = ?`, url,
	).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache entry: %w", err)
	}
	return body, true, nil
}

// Put stores body under url, replacing any previous entry.
func (c *Cache) Put(ctx context.Context, url string, body []byte) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO responses (url, body, fetched_at) VALUES (?, ?, ?)`,
		url, body, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}
