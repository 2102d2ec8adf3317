package config

import (
	"flag"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Cache     CacheConfig
	Providers ProvidersConfig
	Fetch     FetchConfig
	Prefs     PrefsConfig
	Refresh   RefreshConfig
	Logging   LoggingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	HTTPAddr string
}

// CacheConfig holds cache configuration
type CacheConfig struct {
	Backend   string // "memory" or "redis"
	TTL       time.Duration
	RedisAddr string
}

// ProvidersConfig holds per-provider API credentials and endpoints. Base URLs
// default to the public APIs and exist mainly so tests can point a client at
// a local server.
type ProvidersConfig struct {
	NewsAPIKey      string
	NewsAPIBaseURL  string
	GuardianKey     string
	GuardianBaseURL string
	NYTimesKey      string
	NYTimesBaseURL  string
}

// FetchConfig holds settings shared by all provider clients
type FetchConfig struct {
	Timeout    time.Duration
	PageSize   int
	MaxRetries int
}

// PrefsConfig holds preference persistence configuration
type PrefsConfig struct {
	Backend   string // "file" or "redis"
	Dir       string
	RedisAddr string
}

// RefreshConfig holds background refresh configuration
type RefreshConfig struct {
	Enabled  bool
	CronSpec string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string
}

// Load parses flags and environment variables to build configuration
func Load() *Config {
	cfg := &Config{}

	httpAddr := flag.String("http", ":8080", "HTTP server address")
	cacheTTL := flag.Duration("cache-ttl", 5*time.Minute, "Cache TTL for aggregated articles")
	cacheBackend := flag.String("cache-backend", "memory", "Cache backend: memory or redis")
	redisAddr := flag.String("redis-addr", "localhost:6379", "Redis server address")
	fetchTimeout := flag.Duration("fetch-timeout", 15*time.Second, "Per-provider request timeout")
	pageSize := flag.Int("page-size", 20, "Articles requested per provider")
	maxRetries := flag.Int("max-retries", 2, "Retries per provider request on transient failures")
	prefsBackend := flag.String("prefs-backend", "file", "Preference storage backend: file or redis")
	prefsDir := flag.String("prefs-dir", defaultPrefsDir(), "Directory for file-backed preferences")
	refreshEnabled := flag.Bool("refresh", true, "Enable background feed refresh")
	refreshCron := flag.String("refresh-cron", "@every 15m", "Cron spec for background refresh")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")

	flag.Parse()

	applyEnvOverrides(httpAddr, cacheTTL, cacheBackend, redisAddr,
		fetchTimeout, pageSize, maxRetries,
		prefsBackend, prefsDir, refreshEnabled, refreshCron, logLevel)

	cfg.Server = ServerConfig{
		HTTPAddr: *httpAddr,
	}

	cfg.Cache = CacheConfig{
		Backend:   *cacheBackend,
		TTL:       *cacheTTL,
		RedisAddr: *redisAddr,
	}

	cfg.Providers = loadProvidersConfig()

	cfg.Fetch = FetchConfig{
		Timeout:    *fetchTimeout,
		PageSize:   *pageSize,
		MaxRetries: *maxRetries,
	}

	cfg.Prefs = PrefsConfig{
		Backend:   *prefsBackend,
		Dir:       *prefsDir,
		RedisAddr: *redisAddr,
	}

	cfg.Refresh = RefreshConfig{
		Enabled:  *refreshEnabled,
		CronSpec: *refreshCron,
	}

	cfg.Logging = LoggingConfig{
		Level: *logLevel,
	}

	return cfg
}

// loadProvidersConfig reads provider credentials from the environment only.
// API keys never come from flags; they would leak into process listings.
func loadProvidersConfig() ProvidersConfig {
	return ProvidersConfig{
		NewsAPIKey:      os.Getenv("NEWSAPI_KEY"),
		NewsAPIBaseURL:  getEnvOrDefault("NEWSAPI_BASE_URL", "https://newsapi.org/v2"),
		GuardianKey:     os.Getenv("GUARDIAN_KEY"),
		GuardianBaseURL: getEnvOrDefault("GUARDIAN_BASE_URL", "https://content.guardianapis.com"),
		NYTimesKey:      os.Getenv("NYTIMES_KEY"),
		NYTimesBaseURL:  getEnvOrDefault("NYTIMES_BASE_URL", "https://api.nytimes.com/svc"),
	}
}

func defaultPrefsDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir + "/newsdesk"
	}
	return "."
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func applyEnvOverrides(
	httpAddr *string,
	cacheTTL *time.Duration,
	cacheBackend *string,
	redisAddr *string,
	fetchTimeout *time.Duration,
	pageSize *int,
	maxRetries *int,
	prefsBackend *string,
	prefsDir *string,
	refreshEnabled *bool,
	refreshCron *string,
	logLevel *string,
) {
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		*httpAddr = v
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*cacheTTL = d
		}
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		*cacheBackend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		*redisAddr = v
	}
	if v := os.Getenv("FETCH_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*fetchTimeout = d
		}
	}
	if v := os.Getenv("PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			*pageSize = n
		}
	}
	if v := os.Getenv("MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			*maxRetries = n
		}
	}
	if v := os.Getenv("PREFS_BACKEND"); v != "" {
		*prefsBackend = v
	}
	if v := os.Getenv("PREFS_DIR"); v != "" {
		*prefsDir = v
	}
	if v := os.Getenv("REFRESH_ENABLED"); v == "false" || v == "0" {
		*refreshEnabled = false
	}
	if v := os.Getenv("REFRESH_CRON"); v != "" {
		*refreshCron = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		*logLevel = v
	}
}
