package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backends
const (
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	StoreBackend string
	RedisURL     string
	SQLitePath   string
	SessionTTL   time.Duration

	ManifestPath  string
	WatchManifest bool
	CasesDir      string
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		Environment:  getEnv("ENVIRONMENT", "development"),
		LogLevel:     parseLogLevel(getEnv("LOG_LEVEL", "info")),
		StoreBackend: strings.ToLower(getEnv("STORE_BACKEND", BackendRedis)),
		RedisURL:     getEnv("REDIS_URL", "localhost:6379"),
		SQLitePath:   getEnv("SQLITE_PATH", "./data/casefile.db"),
		ManifestPath: getEnv("MANIFEST_PATH", "./data/data.json"),
		CasesDir:     getEnv("CASES_DIR", "./data"),
	}

	switch cfg.StoreBackend {
	case BackendRedis, BackendSQLite, BackendMemory:
	default:
		return nil, fmt.Errorf("invalid STORE_BACKEND %q: want redis, sqlite or memory", cfg.StoreBackend)
	}

	ttl, err := parseDuration(getEnv("SESSION_TTL", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	cfg.SessionTTL = ttl

	watch, err := strconv.ParseBool(getEnv("MANIFEST_WATCH", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid MANIFEST_WATCH: %w", err)
	}
	cfg.WatchManifest = watch

	return cfg, nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// parseDuration accepts Go durations ("24h") and bare seconds ("3600").
func parseDuration(value string) (time.Duration, error) {
	if value == "0" {
		return 0, nil
	}
	var seconds int
	if _, err := fmt.Sscanf(value, "%d", &seconds); err == nil && fmt.Sprint(seconds) == value {
		if seconds < 0 {
			return 0, fmt.Errorf("negative duration %q", value)
		}
		return time.Duration(seconds) * time.Second, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", value)
	}
	return d, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
