// Package cache stores downloaded dataset responses in SQLite so that
// repeated fetches of the same resource skip the network.
package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Cache wraps a SQLite database of HTTP response bodies keyed by URL.
type Cache struct {
	db  *sql.DB
	now func() time.Time
}

// Entry describes one cached response.
type Entry struct {
	URL       string    `json:"url"`
	Size      int       `json:"size"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Open opens or creates a cache database at the given path.
func Open(path string) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Cache{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS responses (
			url TEXT PRIMARY KEY,
			body BLOB NOT NULL,
			fetched_at INTEGER NOT NULL
		);
	`
	_, err := db.Exec(schema)
	return err
}

// Get returns the cached body for url. Entries older than maxAge are treated
// as missing; a zero maxAge accepts any age.
func (c *Cache) Get(url string, maxAge time.Duration) ([]byte, bool, error) {
	var body []byte
	var fetchedAt int64
	err := c.db.QueryRow(`SELECT body, fetched_at FROM responses WHERE url = ?`, url).Scan(&body, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("querying cache: %w", err)
	}

	if maxAge > 0 && c.now().Sub(time.Unix(fetchedAt, 0)) > maxAge {
		return nil, false, nil
	}
	return body, true, nil
}

// Put stores body for url, replacing any previous entry.
func (c *Cache) Put(url string, body []byte) error {
	_, err := c.db.Exec(`
		INSERT INTO responses (url, body, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET body = excluded.body, fetched_at = excluded.fetched_at
	`, url, body, c.now().Unix())
	if err != nil {
		return fmt.Errorf("storing %s: %w", url, err)
	}
	return nil
}

// List returns every cached entry ordered by URL.
func (c *Cache) List() ([]Entry, error) {
	rows, err := c.db.Query(`SELECT url, length(body), fetched_at FROM responses ORDER BY url`)
	if err != nil {
		return nil, fmt.Errorf("listing cache: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var fetchedAt int64
		if err := rows.Scan(&e.URL, &e.Size, &fetchedAt); err != nil {
			return nil, fmt.Errorf("scanning cache row: %w", err)
		}
		e.FetchedAt = time.Unix(fetchedAt, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Purge deletes every entry and returns how many were removed.
func (c *Cache) Purge() (int64, error) {
	res, err := c.db.Exec(`DELETE FROM responses`)
	if err != nil {
		return 0, fmt.Errorf("purging cache: %w", err)
	}
	return res.RowsAffected()
}
