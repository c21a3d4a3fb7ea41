package ontology

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// QueryCache is an append-only, on-disk cache of resolved term queries,
// keyed by (source, query). Entries are never updated or evicted; a resolved
// term is assumed stable for the lifetime of the cache file.
type QueryCache struct {
	db *sql.DB
}

const queryCacheSchema = `
CREATE TABLE IF NOT EXISTS term_cache (
	source  TEXT NOT NULL,
	query   TEXT NOT NULL,
	id      TEXT NOT NULL,
	label   TEXT NOT NULL,
	prefix  TEXT NOT NULL,
	version TEXT NOT NULL,
	PRIMARY KEY (source, query)
);`

// OpenQueryCache opens (creating if needed) a cache database at path. Use
// ":memory:" for an ephemeral cache.
func OpenQueryCache(path string) (*QueryCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open query cache: %w", err)
	}
	if _, err := db.Exec(queryCacheSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init query cache: %w", err)
	}
	return &QueryCache{db: db}, nil
}

// Close releases the underlying database.
func (c *QueryCache) Close() error {
	return c.db.Close()
}

// Get returns the cached resolution for (source, query), if present.
func (c *QueryCache) Get(ctx context.Context, source, query string) (Class, ResourceRef, bool, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT id, label, prefix, version FROM term_cache WHERE source = ? AND query = ?`,
		source, query)
	var class Class
	var ref ResourceRef
	err := row.Scan(&class.ID, &class.Label, &ref.Prefix, &ref.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return Class{}, ResourceRef{}, false, nil
	}
	if err != nil {
		return Class{}, ResourceRef{}, false, fmt.Errorf("query cache get: %w", err)
	}
	return class, ref, true, nil
}

// Put records a resolution. Re-inserting an existing key is a no-op.
func (c *QueryCache) Put(ctx context.Context, source, query string, class Class, ref ResourceRef) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO term_cache (source, query, id, label, prefix, version) VALUES (?, ?, ?, ?, ?, ?)`,
		source, query, class.ID, class.Label, ref.Prefix, ref.Version)
	if err != nil {
		return fmt.Errorf("query cache put: %w", err)
	}
	return nil
}
