package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// cacheKeyPrefix namespaces cache entries so the store shares a cache
// service with other subsystems without key collisions.
const cacheKeyPrefix = "veil:kv:"

// DefaultCacheTTL bounds how long a cache entry may outlive its durable
// record (the post-delete staleness window, see package docs).
const DefaultCacheTTL = time.Hour

// Durable is the authoritative storage tier. Implementations must be safe
// for concurrent use; this package layers no locking on top.
type Durable interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set creates or overwrites the value for key.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes the key and reports whether it existed.
	Delete(ctx context.Context, key string) (bool, error)
}

// CacheBackend is the ephemeral accelerator tier. It may be stale, evict
// at will, or raise transient errors; KV catches every error it returns.
type CacheBackend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// KV is a get/set/delete store over a durable tier fronted by an optional
// cache backend, with read-through population and fail-open degradation
// when the cache is unavailable.
//
// KV is safe for concurrent use. Concurrent Store calls to the same key
// race with last-write-wins semantics at the storage engine.
type KV struct {
	durable Durable
	cache   CacheBackend // nil disables the cache tier
	ttl     time.Duration
	logger  *slog.Logger
}

// Option configures a KV.
type Option func(*KV)

// WithCacheTTL overrides DefaultCacheTTL for cache writes.
func WithCacheTTL(ttl time.Duration) Option {
	return func(kv *KV) {
		if ttl > 0 {
			kv.ttl = ttl
		}
	}
}

// New creates a KV over the given tiers. cache may be nil to run without a
// cache tier; logger may be nil (slog.Default()).
func New(durable Durable, cache CacheBackend, logger *slog.Logger, opts ...Option) *KV {
	if logger == nil {
		logger = slog.Default()
	}

	kv := &KV{
		durable: durable,
		cache:   cache,
		ttl:     DefaultCacheTTL,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(kv)
	}
	return kv
}

// LoadOption configures a single Load call.
type LoadOption func(*loadConfig)

type loadConfig struct {
	refresh bool
}

// WithRefresh bypasses the cache tier: the value is read from the durable
// tier and the cache is repopulated with it.
func WithRefresh() LoadOption {
	return func(c *loadConfig) {
		c.refresh = true
	}
}

// Store serializes value as JSON and writes it to the durable tier,
// overwriting any existing entry. The cache tier is then updated
// best-effort; a cache failure never fails the Store.
func (kv *KV) Store(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to serialize value for key %q: %w", key, err)
	}

	if err := kv.durable.Set(ctx, key, data); err != nil {
		return fmt.Errorf("failed to store key %q: %w", key, err)
	}

	kv.cacheSet(ctx, key, data)
	kv.logger.Debug("stored key", "key", key, "bytes", len(data))
	return nil
}

// Load returns the JSON value for key. The cache tier is consulted first
// unless WithRefresh is given; a cache error is logged and treated as a
// miss. On a miss the durable tier is read and, if the key exists, the
// cache is repopulated. Returns ErrKeyNotFound when the durable tier has
// no record.
func (kv *KV) Load(ctx context.Context, key string, opts ...LoadOption) (json.RawMessage, error) {
	var cfg loadConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	if !cfg.refresh && kv.cache != nil {
		data, found, err := kv.cache.Get(ctx, cacheKey(key))
		switch {
		case err != nil:
			kv.logger.Warn("cache read failed, falling back to durable tier",
				"key", key, "error", err)
		case found:
			return data, nil
		}
	}

	data, found, err := kv.durable.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load key %q: %w", key, err)
	}
	if !found {
		return nil, fmt.Errorf("load %q: %w", key, ErrKeyNotFound)
	}

	kv.cacheSet(ctx, key, data)
	return data, nil
}

// LoadInto loads key and unmarshals the value into dest.
func (kv *KV) LoadInto(ctx context.Context, key string, dest any, opts ...LoadOption) error {
	data, err := kv.Load(ctx, key, opts...)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to deserialize value for key %q: %w", key, err)
	}
	return nil
}

// Delete removes key from the durable tier, then best-effort from the
// cache tier. Returns ErrKeyNotFound when the durable tier has no record;
// callers should only delete keys they believe exist.
func (kv *KV) Delete(ctx context.Context, key string) error {
	existed, err := kv.durable.Delete(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to delete key %q: %w", key, err)
	}
	if !existed {
		return fmt.Errorf("delete %q: %w", key, ErrKeyNotFound)
	}

	if kv.cache != nil {
		if err := kv.cache.Delete(ctx, cacheKey(key)); err != nil {
			// Stale-but-present cache after a durable delete is accepted;
			// it reconciles via TTL expiry or a WithRefresh load.
			kv.logger.Warn("cache delete failed", "key", key, "error", err)
		}
	}
	kv.logger.Debug("deleted key", "key", key)
	return nil
}

func (kv *KV) cacheSet(ctx context.Context, key string, data []byte) {
	if kv.cache == nil {
		return
	}
	if err := kv.cache.Set(ctx, cacheKey(key), data, kv.ttl); err != nil {
		kv.logger.Warn("cache write failed", "key", key, "error", err)
	}
}

func cacheKey(key string) string {
	return cacheKeyPrefix + key
}
