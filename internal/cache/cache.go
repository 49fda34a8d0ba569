package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// IngestCache tracks already-archived files by content hash, in memory and
// in PostgreSQL, so re-running ingest over the same directory skips files
// whose content has not changed.
type IngestCache struct {
	pool   *pgxpool.Pool
	mu     sync.RWMutex
	memory map[string]struct{} // content hash set
}

// NewIngestCache creates a cache backed by PostgreSQL.
func NewIngestCache(pool *pgxpool.Pool) *IngestCache {
	return &IngestCache{
		pool:   pool,
		memory: make(map[string]struct{}),
	}
}

// EnsureSchema creates the ingested-files table.
func (c *IngestCache) EnsureSchema(ctx context.Context) error {
	_, err := c.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS ingested_files (
			hash         TEXT PRIMARY KEY,
			path         TEXT NOT NULL,
			measurements INT NOT NULL,
			ingested_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure ingest cache schema: %w", err)
	}
	return nil
}

// Seen reports whether a file with this content hash was already ingested.
func (c *IngestCache) Seen(ctx context.Context, hash string) bool {
	c.mu.RLock()
	if _, ok := c.memory[hash]; ok {
		c.mu.RUnlock()
		return true
	}
	c.mu.RUnlock()

	var found bool
	err := c.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM ingested_files WHERE hash = $1)`, hash).Scan(&found)
	if err != nil || !found {
		return false
	}

	c.mu.Lock()
	c.memory[hash] = struct{}{}
	c.mu.Unlock()

	return true
}

// Mark records a file as ingested.
func (c *IngestCache) Mark(ctx context.Context, hash, path string, measurements int) error {
	c.mu.Lock()
	c.memory[hash] = struct{}{}
	c.mu.Unlock()

	_, err := c.pool.Exec(ctx, `
		INSERT INTO ingested_files (hash, path, measurements)
		VALUES ($1, $2, $3)
		ON CONFLICT (hash) DO UPDATE SET
			path = EXCLUDED.path,
			measurements = EXCLUDED.measurements,
			ingested_at = now()
	`, hash, path, measurements)
	if err != nil {
		return fmt.Errorf("mark ingested: %w", err)
	}

	return nil
}

// Preload loads all known hashes into memory.
func (c *IngestCache) Preload(ctx context.Context) error {
	rows, err := c.pool.Query(ctx, `SELECT hash FROM ingested_files`)
	if err != nil {
		return fmt.Errorf("preload ingest cache: %w", err)
	}
	defer rows.Close()

	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for rows.Next() {
		var hash string
		if err := rows.Scan(&hash); err != nil {
			return fmt.Errorf("scan ingest cache row: %w", err)
		}
		c.memory[hash] = struct{}{}
		count++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("ingest cache rows: %w", err)
	}

	log.Info().Int("count", count).Msg("Preloaded ingest cache")
	return nil
}
