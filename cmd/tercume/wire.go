package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ZaguanLabs/tercume"
	"github.com/ZaguanLabs/tercume/api/handler"
	"github.com/ZaguanLabs/tercume/cache"
	"github.com/ZaguanLabs/tercume/config"
	"github.com/ZaguanLabs/tercume/detect"
	"github.com/ZaguanLabs/tercume/provider"
	"github.com/ZaguanLabs/tercume/store"
)

// backends are the storage components selected by configuration.
type backends struct {
	cache   tercume.TranslationCache
	fields  tercume.FieldStore
	lister  handler.FieldLister
	purgers []tercume.Purger
	pingers map[string]handler.Pinger
	closers []func()
}

func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// exportable returns the cache as an export source/import target.
func (b *backends) exportable() (cache.ExportableCache, error) {
	c, ok := b.cache.(cache.ExportableCache)
	if !ok {
		return nil, fmt.Errorf("cache backend does not support export")
	}
	return c, nil
}

func buildBackends(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*backends, error) {
	b := &backends{pingers: make(map[string]handler.Pinger)}

	var pg *store.PostgresStore
	if cfg.NeedsDatabase() {
		pool, err := store.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		b.closers = append(b.closers, pool.Close)

		if err := store.RunMigrations(cfg.Database.URL); err != nil {
			b.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("database migrations applied")

		pg = store.NewPostgresStore(pool)
		b.pingers["database"] = pg
	}

	switch cfg.Cache.Backend {
	case config.BackendPostgres:
		b.cache = pg
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{URL: cfg.Redis.URL, TTL: cfg.Cache.TTLSecs})
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("create redis cache: %w", err)
		}
		b.closers = append(b.closers, func() { _ = rc.Close() })
		b.cache = rc
		b.pingers["redis"] = rc
	default:
		b.cache = cache.NewInMemoryCache(cfg.Cache.TTLSecs)
	}

	switch cfg.Store.Backend {
	case config.BackendPostgres:
		b.fields = pg
		b.lister = pg
	default:
		mem := store.NewMemoryFieldStore()
		b.fields = mem
		b.lister = mem
	}

	// The Postgres store purges both tables, so it is registered once.
	seen := make(map[any]bool)
	for _, c := range []any{b.cache, b.fields} {
		p, ok := c.(tercume.Purger)
		if !ok || seen[c] {
			continue
		}
		seen[c] = true
		b.purgers = append(b.purgers, p)
	}

	logger.Info("backends ready", "cache", cfg.Cache.Backend, "store", cfg.Store.Backend)
	return b, nil
}

// buildChain assembles the provider tiers. The cloud tier is skipped without
// an API key and the phrasebook is always last.
func buildChain(cfg *config.Config, logger *slog.Logger) *provider.Chain {
	var tiers []provider.Tier

	if cfg.Primary.APIKey != "" {
		var p tercume.Provider = provider.NewOpenAIProvider(provider.OpenAIConfig{
			APIKey:  cfg.Primary.APIKey,
			Model:   cfg.Primary.Model,
			BaseURL: cfg.Primary.BaseURL,
		})
		// Every attempt, retries included, waits for a rate-limit token.
		if cfg.Primary.RPM > 0 {
			p = tercume.NewRateLimitedProvider(p, tercume.RateLimitConfig{RequestsPerMinute: cfg.Primary.RPM})
		}
		if cfg.Primary.Retries > 0 {
			retry := tercume.DefaultRetryConfig()
			retry.MaxRetries = cfg.Primary.Retries
			retry.OnRetry = func(attempt int, delay time.Duration, err error) {
				logger.Debug("retrying provider", "provider", provider.OpenAIName, "attempt", attempt, "delay_ms", delay.Milliseconds(), "error", err)
			}
			p = tercume.NewRetryableProvider(p, retry)
		}
		tiers = append(tiers, provider.Tier{Provider: p, Timeout: cfg.Primary.Timeout})
	}

	if cfg.Secondary.Enabled {
		tiers = append(tiers, provider.Tier{
			Provider: provider.NewLibreTranslateProvider(provider.LibreTranslateConfig{
				BaseURL: cfg.Secondary.BaseURL,
				APIKey:  cfg.Secondary.APIKey,
				Timeout: cfg.Secondary.Timeout,
			}),
			Timeout: cfg.Secondary.Timeout,
		})
	}

	chain := provider.NewChain(provider.DefaultPhrasebook(), tiers...).WithLogger(logger)
	logger.Info("provider chain ready", "tiers", chain.Tiers())
	return chain
}

func buildTranslator(cfg *config.Config, b *backends, logger *slog.Logger) *tercume.Translator {
	return tercume.NewTranslator(buildChain(cfg, logger),
		tercume.WithCache(b.cache),
		tercume.WithFieldStore(b.fields),
		tercume.WithDetector(detect.New()),
		tercume.WithDefaultLanguage(cfg.Translation.DefaultLanguage),
		tercume.WithTargetLanguages(cfg.Translation.TargetLanguages),
		tercume.WithProtectedTerms(cfg.Translation.ProtectedTerms),
		tercume.WithLogger(logger),
	)
}
