// Package config provides application configuration with multi-source
// priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (VEIL_* runtime overrides, plus DATABASE_URL
//     and REDIS_URL shortcuts common in cloud deployments)
//  2. Config file (~/.veil/config.yaml)
//  3. Default values
//
// Main categories:
//   - Storage: durable tier selection and PostgreSQL/SQLite settings (storage.go)
//   - Cache: cache tier selection, Redis settings, TTL
//   - Resolver: permission-resolver rate limiting
//   - Log / Tracing: output format, level, OTLP endpoint
//
// Validation lives in validation.go and uses sentinel errors so callers can
// check failures with errors.Is().
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Durable tier selectors for Config.StorageBackend.
const (
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"
)

// Cache tier selectors for Config.CacheBackend.
const (
	CacheRedis  = "redis"
	CacheMemory = "memory"
	CacheNone   = "none"
)

// Config stores application configuration.
// SECURITY: sensitive fields (passwords) must never be logged; use the
// String method, which masks them.
type Config struct {
	// Durable tier
	StorageBackend string `mapstructure:"storage_backend"`
	SQLitePath     string `mapstructure:"sqlite_path"`

	PostgresHost     string `mapstructure:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password"`
	PostgresDBName   string `mapstructure:"postgres_db_name"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode"`

	// Cache tier
	CacheBackend    string `mapstructure:"cache_backend"`
	RedisAddr       string `mapstructure:"redis_addr"`
	RedisPassword   string `mapstructure:"redis_password"`
	RedisDB         int    `mapstructure:"redis_db"`
	CacheTTLSeconds int    `mapstructure:"cache_ttl_seconds"`

	// Permission resolver throttling (requests per second against the
	// external permission API)
	ResolverRPS   float64 `mapstructure:"resolver_rps"`
	ResolverBurst int     `mapstructure:"resolver_burst"`

	// Logging
	LogLevel string `mapstructure:"log_level"`
	LogJSON  bool   `mapstructure:"log_json"`

	// Tracing (OTLP/HTTP, off by default)
	TracingEnabled     bool   `mapstructure:"tracing_enabled"`
	TracingEndpoint    string `mapstructure:"tracing_endpoint"`
	TracingService     string `mapstructure:"tracing_service"`
	TracingEnvironment string `mapstructure:"tracing_environment"`
}

// CacheTTL returns the configured cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// SlogLevel maps the configured log level name to a slog.Level.
// Validate guarantees the name is one of debug/info/warn/error.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
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

// String implements fmt.Stringer with passwords masked.
func (c *Config) String() string {
	return fmt.Sprintf("Config{storage=%s cache=%s postgres=%s:%d/%s redis=%s log=%s}",
		c.StorageBackend, c.CacheBackend,
		c.PostgresHost, c.PostgresPort, c.PostgresDBName,
		c.RedisAddr, c.LogLevel)
}

// Load reads configuration from file, environment, and defaults, then
// validates it.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	configDir, err := Dir()
	if err == nil {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(configDir)

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			// Missing file is fine; defaults and env apply.
		}
	}

	v.SetEnvPrefix("VEIL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Cloud-style URL shortcuts override individual settings.
	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, err
	}
	if err := cfg.parseRedisURL(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Dir returns the veil configuration directory (~/.veil), creating it with
// restrictive permissions if needed.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	dir := filepath.Join(home, ".veil")
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return dir, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage_backend", StoragePostgres)
	v.SetDefault("sqlite_path", "")

	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("postgres_user", "veil")
	v.SetDefault("postgres_password", "")
	v.SetDefault("postgres_db_name", "veil")
	v.SetDefault("postgres_ssl_mode", "disable")

	v.SetDefault("cache_backend", CacheRedis)
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("cache_ttl_seconds", 3600)

	v.SetDefault("resolver_rps", 5.0)
	v.SetDefault("resolver_burst", 10)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)

	v.SetDefault("tracing_enabled", false)
	v.SetDefault("tracing_endpoint", "localhost:4318")
	v.SetDefault("tracing_service", "veil")
	v.SetDefault("tracing_environment", "dev")
}
