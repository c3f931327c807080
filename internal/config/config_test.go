package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestCacheTTL(t *testing.T) {
	cfg := &Config{CacheTTLSeconds: 90}
	if got := cfg.CacheTTL(); got != 90*time.Second {
		t.Errorf("CacheTTL() = %v, want %v", got, 90*time.Second)
	}
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		cfg := &Config{LogLevel: tt.level}
		if got := cfg.SlogLevel(); got != tt.want {
			t.Errorf("SlogLevel(%q) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestString_MasksSecrets(t *testing.T) {
	cfg := validConfig()
	cfg.PostgresPassword = "pg-secret"
	cfg.RedisPassword = "redis-secret"

	s := cfg.String()
	if strings.Contains(s, "pg-secret") || strings.Contains(s, "redis-secret") {
		t.Errorf("String() leaks a password: %s", s)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.StorageBackend != StoragePostgres {
		t.Errorf("storage backend = %q, want %q", cfg.StorageBackend, StoragePostgres)
	}
	if cfg.CacheBackend != CacheRedis {
		t.Errorf("cache backend = %q, want %q", cfg.CacheBackend, CacheRedis)
	}
	if cfg.CacheTTLSeconds != 3600 {
		t.Errorf("cache ttl = %d, want 3600", cfg.CacheTTLSeconds)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("log level = %q, want info", cfg.LogLevel)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("VEIL_STORAGE_BACKEND", "sqlite")
	t.Setenv("VEIL_SQLITE_PATH", "/tmp/veil-test.db")
	t.Setenv("VEIL_CACHE_BACKEND", "memory")
	t.Setenv("VEIL_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.StorageBackend != StorageSQLite {
		t.Errorf("storage backend = %q, want %q", cfg.StorageBackend, StorageSQLite)
	}
	if cfg.SQLitePath != "/tmp/veil-test.db" {
		t.Errorf("sqlite path = %q", cfg.SQLitePath)
	}
	if cfg.CacheBackend != CacheMemory {
		t.Errorf("cache backend = %q, want %q", cfg.CacheBackend, CacheMemory)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("slog level = %v, want debug", cfg.SlogLevel())
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")

	dir := filepath.Join(home, ".veil")
	if err := os.MkdirAll(dir, 0750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	content := "storage_backend: sqlite\nsqlite_path: /tmp/from-file.db\ncache_backend: none\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.StorageBackend != StorageSQLite {
		t.Errorf("storage backend = %q, want %q", cfg.StorageBackend, StorageSQLite)
	}
	if cfg.SQLitePath != "/tmp/from-file.db" {
		t.Errorf("sqlite path = %q", cfg.SQLitePath)
	}
	if cfg.CacheBackend != CacheNone {
		t.Errorf("cache backend = %q, want %q", cfg.CacheBackend, CacheNone)
	}
}

func TestLoad_InvalidConfigFails(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("VEIL_STORAGE_BACKEND", "etcd")

	if _, err := Load(); err == nil {
		t.Errorf("expected validation error for unknown storage backend")
	}
}

func TestLoad_DatabaseURLOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("REDIS_URL", "")
	t.Setenv("DATABASE_URL", "postgres://app:pw@db.prod:5432/app?sslmode=require")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.PostgresHost != "db.prod" || cfg.PostgresUser != "app" {
		t.Errorf("DATABASE_URL not applied: %s@%s", cfg.PostgresUser, cfg.PostgresHost)
	}
	if cfg.PostgresSSLMode != "require" {
		t.Errorf("sslmode = %q", cfg.PostgresSSLMode)
	}
}
