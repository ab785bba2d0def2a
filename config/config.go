package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Deployment profiles.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config holds all configuration for the tercume service.
type Config struct {
	Server      ServerConfig
	Translation TranslationConfig
	Cache       CacheConfig
	Store       StoreConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Primary     PrimaryConfig
	Secondary   SecondaryConfig
}

type ServerConfig struct {
	Port            int
	Env             string
	LogLevel        string
	ShutdownTimeout time.Duration
}

type TranslationConfig struct {
	DefaultLanguage string
	TargetLanguages []string
	ProtectedTerms  []string
}

type CacheConfig struct {
	Backend string
	TTLSecs int
}

type StoreConfig struct {
	Backend string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

// PrimaryConfig configures the cloud translation backend.
type PrimaryConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
	RPM     int
	Retries int
}

// SecondaryConfig configures the self-hosted LibreTranslate backend.
type SecondaryConfig struct {
	Enabled bool
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

var (
	validEnvs      = map[string]bool{EnvDevelopment: true, EnvProduction: true, EnvTest: true}
	validCaches    = map[string]bool{BackendMemory: true, BackendRedis: true, BackendPostgres: true}
	validStores    = map[string]bool{BackendMemory: true, BackendPostgres: true}
	validLanguages = map[string]bool{"en": true, "az": true, "ru": true}
	validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
)

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error naming the offending variable if any value is invalid.
func Load() (*Config, error) {
	env := strings.ToLower(envString("TERCUME_ENV", EnvDevelopment))
	production := env == EnvProduction

	primaryTimeout := 30 * time.Second
	if production {
		primaryTimeout = 10 * time.Second
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            envInt("TERCUME_PORT", 8080),
			Env:             env,
			LogLevel:        strings.ToLower(envString("TERCUME_LOG_LEVEL", "info")),
			ShutdownTimeout: envDuration("TERCUME_SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Translation: TranslationConfig{
			DefaultLanguage: strings.ToLower(envString("TERCUME_DEFAULT_LANGUAGE", "en")),
			TargetLanguages: lowerAll(envList("TERCUME_TARGET_LANGUAGES", []string{"az", "ru"})),
			ProtectedTerms:  envList("TERCUME_PROTECTED_TERMS", []string{"Tercume"}),
		},
		Cache: CacheConfig{
			Backend: strings.ToLower(envString("TERCUME_CACHE_BACKEND", BackendMemory)),
			TTLSecs: envInt("TERCUME_CACHE_TTL_SECS", 0),
		},
		Store: StoreConfig{
			Backend: strings.ToLower(envString("TERCUME_STORE_BACKEND", BackendMemory)),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Primary: PrimaryConfig{
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			Model:   envString("OPENAI_MODEL", "gpt-4o-mini"),
			BaseURL: os.Getenv("OPENAI_BASE_URL"),
			Timeout: envDuration("TERCUME_PRIMARY_TIMEOUT", primaryTimeout),
			RPM:     envInt("TERCUME_PRIMARY_RPM", 60),
			Retries: envInt("TERCUME_PRIMARY_RETRIES", 2),
		},
		Secondary: SecondaryConfig{
			Enabled: !production && envBool("TERCUME_SECONDARY_ENABLED", true),
			BaseURL: envString("LIBRETRANSLATE_URL", "http://localhost:5000"),
			APIKey:  os.Getenv("LIBRETRANSLATE_API_KEY"),
			Timeout: envDuration("TERCUME_SECONDARY_TIMEOUT", 5*time.Second),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if !validEnvs[c.Server.Env] {
		return fmt.Errorf("TERCUME_ENV must be one of development, production, test; got %q", c.Server.Env)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("TERCUME_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if !validLogLevels[c.Server.LogLevel] {
		return fmt.Errorf("TERCUME_LOG_LEVEL must be one of debug, info, warn, error; got %q", c.Server.LogLevel)
	}

	if !validLanguages[c.Translation.DefaultLanguage] {
		return fmt.Errorf("TERCUME_DEFAULT_LANGUAGE must be one of en, az, ru; got %q", c.Translation.DefaultLanguage)
	}
	if len(c.Translation.TargetLanguages) == 0 {
		return fmt.Errorf("TERCUME_TARGET_LANGUAGES must list at least one language")
	}
	for _, lang := range c.Translation.TargetLanguages {
		if !validLanguages[lang] {
			return fmt.Errorf("TERCUME_TARGET_LANGUAGES contains unsupported language %q", lang)
		}
	}

	if !validCaches[c.Cache.Backend] {
		return fmt.Errorf("TERCUME_CACHE_BACKEND must be one of memory, redis, postgres; got %q", c.Cache.Backend)
	}
	if !validStores[c.Store.Backend] {
		return fmt.Errorf("TERCUME_STORE_BACKEND must be one of memory, postgres; got %q", c.Store.Backend)
	}
	if c.Cache.Backend == BackendRedis && c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required when TERCUME_CACHE_BACKEND is redis")
	}
	if c.NeedsDatabase() && c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required when a postgres backend is selected")
	}

	if c.Primary.Timeout <= 0 {
		return fmt.Errorf("TERCUME_PRIMARY_TIMEOUT must be positive")
	}
	if c.Primary.RPM < 0 {
		return fmt.Errorf("TERCUME_PRIMARY_RPM must not be negative, got %d", c.Primary.RPM)
	}
	if c.Primary.Retries < 0 {
		return fmt.Errorf("TERCUME_PRIMARY_RETRIES must not be negative, got %d", c.Primary.Retries)
	}

	if c.Secondary.Enabled {
		if !strings.HasPrefix(c.Secondary.BaseURL, "http://") && !strings.HasPrefix(c.Secondary.BaseURL, "https://") {
			return fmt.Errorf("LIBRETRANSLATE_URL must start with http:// or https://, got %q", c.Secondary.BaseURL)
		}
		if c.Secondary.Timeout <= 0 {
			return fmt.Errorf("TERCUME_SECONDARY_TIMEOUT must be positive")
		}
	}

	return nil
}

// IsProduction reports whether the production profile is active.
func (c *Config) IsProduction() bool {
	return c.Server.Env == EnvProduction
}

// NeedsDatabase reports whether any backend is Postgres.
func (c *Config) NeedsDatabase() bool {
	return c.Cache.Backend == BackendPostgres || c.Store.Backend == BackendPostgres
}

// SlogLevel maps the configured log level to a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch c.Server.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

// envList splits a comma-separated variable, dropping blanks. A variable set
// to only separators yields an empty list.
func envList(key string, defaultVal []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
