package translate

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"subweave/internal/logging"
)

// CacheKey derives the deterministic lookup key for one translated line.
func CacheKey(srcLang, dstLang, text string) string {
	sum := sha256.Sum256([]byte(srcLang + "|" + dstLang + "|" + text))
	return hex.EncodeToString(sum[:])
}

// Cache stores translated lines. Implementations must be safe for
// concurrent use and must degrade to a no-op rather than fail the pipeline.
type Cache interface {
	Get(ctx context.Context, srcLang, dstLang, text string) (string, bool)
	Put(ctx context.Context, srcLang, dstLang, text, translated string)
}

// NopCache ignores everything. Used when caching is disabled.
type NopCache struct{}

func (NopCache) Get(context.Context, string, string, string) (string, bool) { return "", false }
func (NopCache) Put(context.Context, string, string, string, string)       {}

// SQLiteCache persists translations in a single-table SQLite database.
// The pipeline is the only writer; the CLI reads it for stats.
type SQLiteCache struct {
	mu     sync.Mutex
	db     *sql.DB
	path   string
	failed bool
	logger *slog.Logger
}

// OpenCache initializes or connects to the translation cache database.
func OpenCache(dir string, logger *slog.Logger) (*SQLiteCache, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure cache dir: %w", err)
	}
	dbPath := filepath.Join(dir, "translations.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS translations (
        cache_key TEXT PRIMARY KEY,
        src_lang TEXT NOT NULL,
        dst_lang TEXT NOT NULL,
        source_text TEXT NOT NULL,
        translated_text TEXT NOT NULL,
        updated_at TEXT NOT NULL
    )`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create translations table: %w", err)
	}
	return &SQLiteCache{db: db, path: dbPath, logger: logger}, nil
}

// Close closes the underlying database connection.
func (c *SQLiteCache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Path returns the database file location.
func (c *SQLiteCache) Path() string { return c.path }

// Get returns a cached translation. After the first backend error the cache
// answers nothing.
func (c *SQLiteCache) Get(ctx context.Context, srcLang, dstLang, text string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failed {
		return "", false
	}
	var translated string
	err := c.db.QueryRowContext(ctx,
		`SELECT translated_text FROM translations WHERE cache_key = ?`,
		CacheKey(srcLang, dstLang, text),
	).Scan(&translated)
	switch {
	case err == sql.ErrNoRows:
		return "", false
	case err != nil:
		c.disable(err)
		return "", false
	}
	return translated, true
}

// Put upserts a translation. Errors flip the cache to no-op for the rest of
// the process; the pipeline keeps going uncached.
func (c *SQLiteCache) Put(ctx context.Context, srcLang, dstLang, text, translated string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failed {
		return
	}
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO translations (cache_key, src_lang, dst_lang, source_text, translated_text, updated_at)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT(cache_key) DO UPDATE SET translated_text = excluded.translated_text, updated_at = excluded.updated_at`,
		CacheKey(srcLang, dstLang, text), srcLang, dstLang, text, translated,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		c.disable(err)
	}
}

// Stats reports entry counts per destination language plus the total.
func (c *SQLiteCache) Stats(ctx context.Context) (map[string]int64, int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rows, err := c.db.QueryContext(ctx,
		`SELECT dst_lang, COUNT(*) FROM translations GROUP BY dst_lang`)
	if err != nil {
		return nil, 0, fmt.Errorf("cache stats: %w", err)
	}
	defer rows.Close()
	perLang := make(map[string]int64)
	var total int64
	for rows.Next() {
		var lang string
		var count int64
		if err := rows.Scan(&lang, &count); err != nil {
			return nil, 0, fmt.Errorf("cache stats: %w", err)
		}
		perLang[lang] = count
		total += count
	}
	return perLang, total, rows.Err()
}

// Clear removes every cached translation.
func (c *SQLiteCache) Clear(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	res, err := c.db.ExecContext(ctx, `DELETE FROM translations`)
	if err != nil {
		return 0, fmt.Errorf("cache clear: %w", err)
	}
	return res.RowsAffected()
}

func (c *SQLiteCache) disable(err error) {
	c.failed = true
	c.logger.Warn("translation cache disabled after backend error",
		logging.Error(err),
		logging.String(logging.FieldEventType, "translate_cache_disabled"))
}
