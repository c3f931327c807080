package config

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for configuration validation. Check with errors.Is().
var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrInvalidStorageBackend indicates an unknown durable tier selector.
	ErrInvalidStorageBackend = errors.New("invalid storage backend")

	// ErrInvalidCacheBackend indicates an unknown cache tier selector.
	ErrInvalidCacheBackend = errors.New("invalid cache backend")

	// ErrMissingSQLitePath indicates the sqlite backend was selected
	// without a database path.
	ErrMissingSQLitePath = errors.New("missing sqlite path")

	// ErrInvalidPostgresHost indicates the PostgreSQL host is empty.
	ErrInvalidPostgresHost = errors.New("invalid PostgreSQL host")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidPostgresDBName indicates the PostgreSQL database name is empty.
	ErrInvalidPostgresDBName = errors.New("invalid PostgreSQL database name")

	// ErrInvalidPostgresSSLMode indicates an unknown sslmode value.
	ErrInvalidPostgresSSLMode = errors.New("invalid PostgreSQL SSL mode")

	// ErrInvalidRedisAddr indicates the Redis address is empty.
	ErrInvalidRedisAddr = errors.New("invalid Redis address")

	// ErrInvalidCacheTTL indicates a non-positive cache TTL.
	ErrInvalidCacheTTL = errors.New("invalid cache TTL")

	// ErrInvalidResolverRate indicates a non-positive resolver rate or burst.
	ErrInvalidResolverRate = errors.New("invalid resolver rate limit")

	// ErrInvalidLogLevel indicates an unknown log level name.
	ErrInvalidLogLevel = errors.New("invalid log level")
)

var validSSLModes = map[string]bool{
	"disable":     true,
	"allow":       true,
	"prefer":      true,
	"require":     true,
	"verify-ca":   true,
	"verify-full": true,
}

// Validate checks the configuration for consistency. It returns the first
// failure wrapped around its sentinel error.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	switch c.StorageBackend {
	case StoragePostgres:
		if err := c.validatePostgres(); err != nil {
			return err
		}
	case StorageSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("%w: sqlite_path is required when storage_backend is %q",
				ErrMissingSQLitePath, StorageSQLite)
		}
	default:
		return fmt.Errorf("%w: %q (expected %q or %q)",
			ErrInvalidStorageBackend, c.StorageBackend, StoragePostgres, StorageSQLite)
	}

	switch c.CacheBackend {
	case CacheRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("%w: redis_addr is required when cache_backend is %q",
				ErrInvalidRedisAddr, CacheRedis)
		}
	case CacheMemory, CacheNone:
	default:
		return fmt.Errorf("%w: %q (expected %q, %q or %q)",
			ErrInvalidCacheBackend, c.CacheBackend, CacheRedis, CacheMemory, CacheNone)
	}

	if c.CacheTTLSeconds <= 0 {
		return fmt.Errorf("%w: %d (must be positive)", ErrInvalidCacheTTL, c.CacheTTLSeconds)
	}
	if c.ResolverRPS <= 0 || c.ResolverBurst <= 0 {
		return fmt.Errorf("%w: rps=%g burst=%d (both must be positive)",
			ErrInvalidResolverRate, c.ResolverRPS, c.ResolverBurst)
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}

	return nil
}

func (c *Config) validatePostgres() error {
	if c.PostgresHost == "" {
		return fmt.Errorf("%w: host is empty", ErrInvalidPostgresHost)
	}
	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: %d (must be 1-65535)", ErrInvalidPostgresPort, c.PostgresPort)
	}
	if c.PostgresDBName == "" {
		return fmt.Errorf("%w: database name is empty", ErrInvalidPostgresDBName)
	}
	if !validSSLModes[c.PostgresSSLMode] {
		return fmt.Errorf("%w: %q", ErrInvalidPostgresSSLMode, c.PostgresSSLMode)
	}
	return nil
}
