package cache

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ZaguanLabs/tercume"
)

// cacheEntry holds a cached translation with the time it was stored.
type cacheEntry struct {
	entry     tercume.CacheEntry
	timestamp time.Time
}

// InMemoryCache is a thread-safe in-memory cache with TTL support.
type InMemoryCache struct {
	cache map[string]cacheEntry
	mu    sync.RWMutex
	ttl   time.Duration
}

// NewInMemoryCache creates a new in-memory cache with the specified TTL.
// If ttlSeconds is 0 or negative, entries never expire.
func NewInMemoryCache(ttlSeconds int) *InMemoryCache {
	ttl := time.Duration(ttlSeconds) * time.Second
	if ttlSeconds <= 0 {
		ttl = 0 // No expiration
	}
	return &InMemoryCache{
		cache: make(map[string]cacheEntry),
		ttl:   ttl,
	}
}

// Get retrieves a translation from the cache.
func (c *InMemoryCache) Get(ctx context.Context, sourceText, sourceLang, targetLang string) (string, bool, error) {
	key := tercume.CacheKey(sourceText, sourceLang, targetLang)

	c.mu.RLock()
	e, ok := c.cache[key]
	c.mu.RUnlock()

	if !ok {
		return "", false, nil
	}

	if c.expired(e, time.Now()) {
		c.mu.Lock()
		delete(c.cache, key)
		c.mu.Unlock()
		return "", false, nil
	}

	return e.entry.TranslatedText, true, nil
}

// Put upserts a translation.
func (c *InMemoryCache) Put(ctx context.Context, entry tercume.CacheEntry) error {
	key := tercume.CacheKey(entry.SourceText, entry.SourceLang, entry.TargetLang)
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache[key] = cacheEntry{
		entry:     entry,
		timestamp: time.Now(),
	}
	return nil
}

// Len returns the number of entries in the cache (including expired ones).
func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// Clear removes all entries from the cache.
func (c *InMemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]cacheEntry)
}

// Entries returns all non-expired entries ordered by target language and
// source text.
func (c *InMemoryCache) Entries(ctx context.Context) ([]tercume.CacheEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := time.Now()
	result := make([]tercume.CacheEntry, 0, len(c.cache))
	for _, e := range c.cache {
		if c.expired(e, now) {
			continue
		}
		result = append(result, e.entry)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].TargetLang != result[j].TargetLang {
			return result[i].TargetLang < result[j].TargetLang
		}
		return result[i].SourceText < result[j].SourceText
	})
	return result, nil
}

// Purge deletes entries matching the filter. Cache rows are not tied to a
// content type, so a filter scoped to one leaves the cache untouched.
func (c *InMemoryCache) Purge(ctx context.Context, filter tercume.PurgeFilter) (tercume.PurgeResult, error) {
	if filter.ContentType != "" {
		return tercume.PurgeResult{}, nil
	}
	lang := tercume.NormalizeLang(filter.TargetLang)

	c.mu.Lock()
	defer c.mu.Unlock()

	var deleted int64
	for key, e := range c.cache {
		if lang != "" && e.entry.TargetLang != lang {
			continue
		}
		delete(c.cache, key)
		deleted++
	}
	return tercume.PurgeResult{CacheDeleted: deleted}, nil
}

func (c *InMemoryCache) expired(e cacheEntry, now time.Time) bool {
	return c.ttl > 0 && now.Sub(e.timestamp) > c.ttl
}

var (
	_ TranslationCache = (*InMemoryCache)(nil)
	_ EntryLister      = (*InMemoryCache)(nil)
	_ tercume.Purger   = (*InMemoryCache)(nil)
)
