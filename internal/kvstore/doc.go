// Package kvstore provides a cache-backed key/value store with graceful
// cache degradation.
//
// Values live in two tiers. The durable tier (PostgreSQL or SQLite) is
// authoritative: every Store writes it, every miss falls back to it, and
// its errors always propagate. The cache tier (Redis or in-process memory)
// is advisory: it is written best-effort, read errors are logged and
// treated as misses, and it may be absent entirely. The one user-visible
// failure is loading or deleting a key the durable tier has no record of,
// surfaced as ErrKeyNotFound.
//
// Failure semantics:
//
//	durable tier down   -> Store/Load/Delete fail (Load may still serve a cache hit)
//	cache tier down     -> everything succeeds, warnings logged
//	key absent          -> Load/Delete return ErrKeyNotFound
//
// A Delete removes the durable record first and the cache entry
// best-effort afterwards, so a concurrent Load may briefly observe the
// deleted value from cache. This eventual-consistency window is accepted:
// it self-heals via cache TTL expiry or a Load with WithRefresh.
package kvstore
