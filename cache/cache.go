package cache

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"time"
)

const (
	defaultPath = "cache.json"
	defaultTTL  = 24 * time.Hour
)

// Entry is the persisted form of a single cached response.
type Entry struct {
	Timestamp string `json:"timestamp"`
	Data      string `json:"data"`
}

// Stats tracks cache usage. Exactly one counter is incremented per Read.
type Stats struct {
	Hits    int64
	Misses  int64
	Expired int64
	Invalid int64
}

// Cache is a TTL-backed key/value store for remote API responses, persisted
// to a JSON file. It is not safe for concurrent use; the crawl is
// single-threaded by design. No method returns an error: every failure is
// logged and absorbed so callers stay branch-free.
type Cache struct {
	enabled bool
	path    string
	ttl     time.Duration
	entries map[string]Entry
	stats   Stats

	// now is swappable for tests.
	now func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithEnabled turns the cache on or off. A disabled cache reads absent and
// writes nothing.
func WithEnabled(enabled bool) Option {
	return func(c *Cache) {
		c.enabled = enabled
	}
}

// WithPath sets the persisted cache file location.
func WithPath(path string) Option {
	return func(c *Cache) {
		c.path = path
	}
}

// WithTTL sets the maximum age before an entry is considered stale.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// New creates a Cache. Call Load to populate it from disk.
func New(opts ...Option) *Cache {
	c := &Cache{
		enabled: true,
		path:    defaultPath,
		ttl:     defaultTTL,
		entries: make(map[string]Entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	slog.Debug("cache initialized", "path", c.path, "ttl", c.ttl, "enabled", c.enabled)
	return c
}

// Enabled reports whether the cache is active. Load may self-disable the
// cache when the persisted file is unreadable.
func (c *Cache) Enabled() bool {
	return c.enabled
}

// Stats returns a snapshot of the usage counters.
func (c *Cache) Stats() Stats {
	return c.stats
}

// Load reads the persisted cache file into memory. A missing file is fine:
// the cache starts empty. A file that exists but cannot be parsed disables
// the cache for the rest of the process, so the bad file can be inspected
// instead of being overwritten by the next Save.
func (c *Cache) Load() {
	if !c.enabled {
		return
	}

	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Info("cache file not found, starting empty", "path", c.path)
		return
	}
	if err != nil {
		c.enabled = false
		slog.Warn("cache file unreadable, cache disabled", "path", c.path, "error", err)
		return
	}

	entries := make(map[string]Entry)
	if err := json.Unmarshal(data, &entries); err != nil {
		c.enabled = false
		slog.Warn("cache file malformed, cache disabled", "path", c.path, "error", err)
		return
	}

	c.entries = entries
	slog.Info("cache file loaded", "path", c.path, "entries", len(entries))
}

// Save writes the entire in-memory store to the cache file, replacing any
// previous contents. Write failures are logged and ignored.
func (c *Cache) Save() {
	if !c.enabled {
		return
	}

	data, err := json.MarshalIndent(c.entries, "", "    ")
	if err != nil {
		slog.Error("failed to encode cache", "path", c.path, "error", err)
		return
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		slog.Error("failed to save cache file", "path", c.path, "error", err)
		return
	}
	slog.Info("cache file saved", "path", c.path, "entries", len(c.entries))
}

// Read returns the cached value for key if present and younger than the TTL.
// The second return value reports whether a usable value was found.
func (c *Cache) Read(key string) (string, bool) {
	if !c.enabled {
		return "", false
	}

	entry, ok := c.entries[key]
	if !ok {
		slog.Debug("cache miss", "key", key)
		c.stats.Misses++
		return "", false
	}

	if entry.Timestamp != "" {
		written, err := time.Parse(time.RFC3339Nano, entry.Timestamp)
		if err == nil {
			if c.now().UTC().Sub(written) < c.ttl {
				slog.Debug("cache hit", "key", key)
				c.stats.Hits++
				return entry.Data, true
			}
			// Stale entries are left in place; there is no eviction.
			slog.Debug("cache expired", "key", key)
			c.stats.Expired++
			return "", false
		}
	}

	slog.Debug("cache entry has missing or invalid timestamp", "key", key)
	c.stats.Invalid++
	return "", false
}

// Write inserts or replaces the entry for key, stamped with the current UTC
// time. Writing an existing key fully replaces its previous entry.
func (c *Cache) Write(key, value string) {
	if !c.enabled {
		return
	}
	c.entries[key] = Entry{
		Timestamp: c.now().UTC().Format(time.RFC3339Nano),
		Data:      value,
	}
}
