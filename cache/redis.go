package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ZaguanLabs/tercume"
	"github.com/redis/go-redis/v9"
)

const (
	defaultKeyPrefix = "tercume:"
	scanCount        = 200
)

// RedisCache is a Redis-backed translation cache. Values are JSON-encoded
// cache entries so they can be exported.
type RedisCache struct {
	client    *redis.Client
	ttl       time.Duration
	keyPrefix string
}

// RedisConfig holds configuration for the Redis cache.
type RedisConfig struct {
	URL       string // Redis connection URL (e.g., "redis://localhost:6379")
	TTL       int    // TTL in seconds (0 = no expiration)
	KeyPrefix string // Prefix for all keys (default: "tercume:")
}

// NewRedisCache creates a new Redis cache with the given configuration.
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, &tercume.CacheError{Message: "parse redis url", Cause: err}
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, &tercume.CacheError{Message: "ping redis", Cause: err}
	}

	return NewRedisCacheFromClient(client, cfg.TTL, cfg.KeyPrefix), nil
}

// NewRedisCacheFromClient creates a RedisCache from an existing Redis client.
func NewRedisCacheFromClient(client *redis.Client, ttlSeconds int, keyPrefix string) *RedisCache {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}

	ttl := time.Duration(ttlSeconds) * time.Second
	if ttlSeconds <= 0 {
		ttl = 0
	}

	return &RedisCache{
		client:    client,
		ttl:       ttl,
		keyPrefix: keyPrefix,
	}
}

func (c *RedisCache) key(sourceText, sourceLang, targetLang string) string {
	return c.keyPrefix + tercume.CacheKey(sourceText, sourceLang, targetLang)
}

// Get retrieves a translation from Redis. A missing key is a miss, not an error.
func (c *RedisCache) Get(ctx context.Context, sourceText, sourceLang, targetLang string) (string, bool, error) {
	val, err := c.client.Get(ctx, c.key(sourceText, sourceLang, targetLang)).Bytes()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &tercume.CacheError{Message: "redis get", Cause: err}
	}

	var entry tercume.CacheEntry
	if err := json.Unmarshal(val, &entry); err != nil {
		return "", false, &tercume.CacheError{Message: "decode entry", Cause: err}
	}
	return entry.TranslatedText, true, nil
}

// Put stores a translation in Redis, overwriting any previous value.
func (c *RedisCache) Put(ctx context.Context, entry tercume.CacheEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return &tercume.CacheError{Message: "encode entry", Cause: err}
	}

	key := c.key(entry.SourceText, entry.SourceLang, entry.TargetLang)
	if err := c.client.Set(ctx, key, string(data), c.ttl).Err(); err != nil {
		return &tercume.CacheError{Message: "redis set", Cause: err}
	}
	return nil
}

// Entries returns every entry stored under the key prefix.
func (c *RedisCache) Entries(ctx context.Context) ([]tercume.CacheEntry, error) {
	var entries []tercume.CacheEntry
	err := c.scan(ctx, c.keyPrefix+"*", func(keys []string) error {
		vals, err := c.client.MGet(ctx, keys...).Result()
		if err != nil {
			return err
		}
		for _, v := range vals {
			s, ok := v.(string)
			if !ok {
				continue // expired between SCAN and MGET
			}
			var entry tercume.CacheEntry
			if err := json.Unmarshal([]byte(s), &entry); err != nil {
				continue
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, &tercume.CacheError{Message: "list entries", Cause: err}
	}
	return entries, nil
}

// Purge deletes entries for the filter's target language (all entries when
// empty). A content-type scoped filter leaves the cache untouched.
func (c *RedisCache) Purge(ctx context.Context, filter tercume.PurgeFilter) (tercume.PurgeResult, error) {
	if filter.ContentType != "" {
		return tercume.PurgeResult{}, nil
	}

	pattern := c.keyPrefix + "*"
	if lang := tercume.NormalizeLang(filter.TargetLang); lang != "" {
		pattern = c.keyPrefix + "*:" + lang
	}

	var deleted int64
	err := c.scan(ctx, pattern, func(keys []string) error {
		n, err := c.client.Del(ctx, keys...).Result()
		deleted += n
		return err
	})
	if err != nil {
		return tercume.PurgeResult{CacheDeleted: deleted}, &tercume.CacheError{Message: "purge", Cause: err}
	}
	return tercume.PurgeResult{CacheDeleted: deleted}, nil
}

// scan walks keys matching pattern page by page.
func (c *RedisCache) scan(ctx context.Context, pattern string, page func(keys []string) error) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, scanCount).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := page(keys); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Ping tests the Redis connection.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

var (
	_ TranslationCache = (*RedisCache)(nil)
	_ EntryLister      = (*RedisCache)(nil)
	_ tercume.Purger   = (*RedisCache)(nil)
)
