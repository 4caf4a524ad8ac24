// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/theory-engine/pkg/types"
)

// Cache wraps a Searcher and stores raw (unfiltered) results per
// (query, limit) in SQLite. Entries older than the TTL are refetched.
type Cache struct {
	db     *sql.DB
	next   Searcher
	ttl    time.Duration
	now    func() time.Time
	logger *log.Logger
}

// OpenCache opens or creates the cache database at path.
func OpenCache(path string, next Searcher, ttl time.Duration, logger *log.Logger) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening search cache: %w", err)
	}
	if logger == nil {
		logger = log.Default()
	}

	c := &Cache{db: db, next: next, ttl: ttl, now: time.Now, logger: logger}
	if err := c.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return c, nil
}

// Close releases the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

func (c *Cache) createSchema() error {
	_, err := c.db.Exec(`CREATE TABLE IF NOT EXISTS queries (
		query TEXT NOT NULL,
		result_limit INTEGER NOT NULL,
		fetched_at TEXT NOT NULL,
		results TEXT NOT NULL,
		PRIMARY KEY (query, result_limit)
	)`)
	return err
}

// Search serves fresh cached results or delegates and stores the answer.
// Backend errors are never cached.
func (c *Cache) Search(ctx context.Context, query string, limit int) ([]types.SearchResult, error) {
	key := normalizeQuery(query)

	results, ok, err := c.lookup(ctx, key, limit)
	if err != nil {
		c.logger.Warn("search cache lookup failed", "query", key, "err", err)
	} else if ok {
		c.logger.Debug("search cache hit", "query", key)
		return results, nil
	}

	results, err = c.next.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	if err := c.store(ctx, key, limit, results); err != nil {
		c.logger.Warn("search cache store failed", "query", key, "err", err)
	}
	return results, nil
}

func (c *Cache) lookup(ctx context.Context, key string, limit int) ([]types.SearchResult, bool, error) {
	var fetchedAt, data string
	err := c.db.QueryRowContext(ctx,
		`SELECT fetched_at, results FROM queries WHERE query = ? AND result_limit = ?`,
		key, limit).Scan(&fetchedAt, &data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	t, err := time.Parse(time.RFC3339Nano, fetchedAt)
	if err != nil {
		return nil, false, fmt.Errorf("parsing fetched_at: %w", err)
	}
	if c.ttl > 0 && c.now().Sub(t) > c.ttl {
		return nil, false, nil
	}

	var results []types.SearchResult
	if err := json.Unmarshal([]byte(data), &results); err != nil {
		return nil, false, fmt.Errorf("decoding cached results: %w", err)
	}
	return results, true, nil
}

func (c *Cache) store(ctx context.Context, key string, limit int, results []types.SearchResult) error {
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO queries (query, result_limit, fetched_at, results) VALUES (?, ?, ?, ?)
		 ON CONFLICT(query, result_limit) DO UPDATE SET fetched_at = excluded.fetched_at, results = excluded.results`,
		key, limit, c.now().UTC().Format(time.RFC3339Nano), string(data))
	return err
}

// normalizeQuery lowercases and collapses whitespace so trivially different
// spellings of a query share an entry.
func normalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}
