// Package cache persists generated artifact explanations in SQLite so they
// survive restarts.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/xhad/museum/internal/types"
	"github.com/xhad/museum/pkg/logging"
)

// MemoryPath keeps the cache in process memory.
const MemoryPath = ":memory:"

type CacheConfig struct {
	Path   string
	Logger *zap.Logger
}

type Cache struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

func NewWithConfig(config CacheConfig) (*Cache, error) {
	if config.Path == "" {
		config.Path = "explanations_cache.db"
	}

	if config.Path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(config.Path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	// One connection: writes are serialized and ":memory:" stays a single database.
	db.SetMaxOpenConns(1)

	c := &Cache{
		db:     db,
		path:   config.Path,
		logger: logging.OrNop(config.Logger).Named("cache"),
	}
	if err := c.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

func New(path string) (*Cache, error) {
	return NewWithConfig(CacheConfig{Path: path})
}

func (c *Cache) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS explanations (
		artifact_id TEXT PRIMARY KEY,
		explanation TEXT NOT NULL,
		length INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// Get returns the cached explanation. Read errors are logged and reported as
// a miss.
func (c *Cache) Get(ctx context.Context, artifactID string) (string, bool) {
	var text string
	err := c.db.QueryRowContext(ctx,
		`SELECT explanation FROM explanations WHERE artifact_id = ?`, artifactID).Scan(&text)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			c.logger.Warn("cache read failed", zap.String("artifact_id", artifactID), zap.Error(err))
		}
		return "", false
	}
	return text, true
}

func (c *Cache) Set(ctx context.Context, artifactID, explanation string) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO explanations (artifact_id, explanation, length, created_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(artifact_id) DO UPDATE SET
			explanation = excluded.explanation,
			length = excluded.length,
			created_at = excluded.created_at`,
		artifactID, explanation, utf8.RuneCountInString(explanation))
	if err != nil {
		return fmt.Errorf("failed to cache explanation: %w", err)
	}
	return nil
}

// Clear removes one entry, or every entry when artifactID is empty.
func (c *Cache) Clear(ctx context.Context, artifactID string) error {
	var err error
	if artifactID == "" {
		_, err = c.db.ExecContext(ctx, `DELETE FROM explanations`)
	} else {
		_, err = c.db.ExecContext(ctx, `DELETE FROM explanations WHERE artifact_id = ?`, artifactID)
	}
	if err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

func (c *Cache) Stats(ctx context.Context) (types.CacheStats, error) {
	stats := types.CacheStats{CacheFile: c.path}
	err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(length), 0) FROM explanations`).Scan(&stats.TotalCached, &stats.TotalCharacters)
	if err != nil {
		return stats, fmt.Errorf("failed to read cache stats: %w", err)
	}
	if c.path != MemoryPath {
		_, statErr := os.Stat(c.path)
		stats.FileExists = statErr == nil
	}
	return stats, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}
