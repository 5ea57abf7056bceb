// Package cache persists fetched siteinfo queries between runs so repeated
// generation for the same wiki does not hit the API again.
package cache

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/wikimark/wikiconf/internal/siteinfo"
)

const cacheFile = "siteinfo_cache.gob"

// Entry is one cached query with its fetch time.
type Entry struct {
	Query     siteinfo.Query
	FetchedAt time.Time
}

// Cache holds the cached queries of every domain, keyed by domain name,
// and mirrors them to a gob file under Dir.
type Cache struct {
	Dir     string
	entries map[string]Entry
	mutex   sync.Mutex
	maxAge  time.Duration
}

// New opens the cache under dir, creating the directory if needed. Entries
// older than maxAge count as misses; maxAge zero disables expiry.
func New(dir string, maxAge time.Duration) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	c := &Cache{
		Dir:     dir,
		entries: make(map[string]Entry),
		maxAge:  maxAge,
	}

	if err := c.load(); err != nil {
		return nil, fmt.Errorf("failed to load cache: %w", err)
	}

	return c, nil
}

func (c *Cache) load() error {
	file, err := os.Open(filepath.Join(c.Dir, cacheFile))
	if os.IsNotExist(err) {
		return nil // cache file doesn't exist yet. This is fine.
	}
	if err != nil {
		return fmt.Errorf("failed to open cache file: %w", err)
	}
	defer file.Close()

	if err := gob.NewDecoder(file).Decode(&c.entries); err != nil {
		// A corrupt cache is a full miss, not a failure.
		c.entries = make(map[string]Entry)
	}

	return nil
}

func (c *Cache) save() error {
	file, err := os.Create(filepath.Join(c.Dir, cacheFile))
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(c.entries); err != nil {
		return fmt.Errorf("failed to encode cache file: %w", err)
	}

	return nil
}

// Get returns the cached query for domain, or false on a miss. Expired
// entries are dropped.
func (c *Cache) Get(domain string) (*siteinfo.Query, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, ok := c.entries[domain]
	if !ok {
		return nil, false
	}

	if c.maxAge > 0 && time.Since(entry.FetchedAt) > c.maxAge {
		delete(c.entries, domain)
		return nil, false
	}

	q := entry.Query
	return &q, true
}

// Put stores the query for domain and writes the cache file.
func (c *Cache) Put(domain string, q *siteinfo.Query) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries[domain] = Entry{
		Query:     *q,
		FetchedAt: time.Now(),
	}

	return c.save()
}

// InvalidateAll drops every entry.
func (c *Cache) InvalidateAll() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries = make(map[string]Entry)
	_ = c.save() // ignore error as this is a manual operation
}
