package refresh

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/RobinCoderZhao/happening-now/internal/news"
	"github.com/RobinCoderZhao/happening-now/pkg/storage"
)

// CacheKey is the fixed key the article cache is stored under.
const CacheKey = "happening-now:news-cache"

// CacheEntry is the persisted result of the last successful refresh.
type CacheEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Articles  []news.Article `json:"articles"`
}

// Fresh reports whether the entry is younger than ttl at now.
func (e CacheEntry) Fresh(now time.Time, ttl time.Duration) bool {
	return !e.Timestamp.IsZero() && now.Sub(e.Timestamp) < ttl
}

// Cache stores a single CacheEntry.
type Cache interface {
	// Load returns the stored entry. ok is false when nothing is stored.
	Load(ctx context.Context) (entry CacheEntry, ok bool, err error)
	Save(ctx context.Context, entry CacheEntry) error
}

// MemoryCache keeps the entry in process memory.
type MemoryCache struct {
	mu    sync.Mutex
	entry *CacheEntry
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{}
}

func (m *MemoryCache) Load(ctx context.Context) (CacheEntry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entry == nil {
		return CacheEntry{}, false, nil
	}
	return *m.entry, true, nil
}

func (m *MemoryCache) Save(ctx context.Context, entry CacheEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entry = &entry
	return nil
}

// kvSchema is a generic key/value table; the cache uses a single row.
const kvSchema = `
CREATE TABLE IF NOT EXISTS kv (
    key         TEXT PRIMARY KEY,
    value       TEXT NOT NULL,
    updated_at  TEXT NOT NULL
);
`

// SQLiteCache stores the entry as JSON in the shared database.
type SQLiteCache struct {
	db  *storage.DB
	key string
}

// NewSQLiteCache creates the kv table if needed and returns a cache bound
// to CacheKey.
func NewSQLiteCache(ctx context.Context, db *storage.DB) (*SQLiteCache, error) {
	if err := db.Migrate(ctx, kvSchema); err != nil {
		return nil, fmt.Errorf("cache schema: %w", err)
	}
	return &SQLiteCache{db: db, key: CacheKey}, nil
}

func (c *SQLiteCache) Load(ctx context.Context) (CacheEntry, bool, error) {
	var raw string
	err := c.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, c.key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return CacheEntry{}, false, nil
	}
	if err != nil {
		return CacheEntry{}, false, fmt.Errorf("load cache: %w", err)
	}

	var entry CacheEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return CacheEntry{}, false, fmt.Errorf("decode cache: %w", err)
	}
	return entry, true, nil
}

func (c *SQLiteCache) Save(ctx context.Context, entry CacheEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, c.key, string(raw), entry.Timestamp.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save cache: %w", err)
	}
	return nil
}
