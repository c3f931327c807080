package redact

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Resolver computes per-object access decisions for one user. An external
// system (CRM API, directory service) implements this; the Redactor only
// consumes the resulting map. Ids missing from the returned map are treated
// as denied.
type Resolver interface {
	Resolve(ctx context.Context, objectIDs []string, identity string) (AccessMap, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, objectIDs []string, identity string) (AccessMap, error)

// Resolve calls fn.
func (fn ResolverFunc) Resolve(ctx context.Context, objectIDs []string, identity string) (AccessMap, error) {
	return fn(ctx, objectIDs, identity)
}

// StaticResolver answers from a fixed access map, ignoring identity.
// Useful for tests and config-driven allowlists.
type StaticResolver struct {
	access AccessMap
}

// NewStaticResolver creates a StaticResolver over the given map.
func NewStaticResolver(access AccessMap) *StaticResolver {
	return &StaticResolver{access: access}
}

// Resolve returns the decisions for the requested ids. Ids unknown to the
// resolver are omitted from the result, which the Redactor treats as denied.
func (s *StaticResolver) Resolve(_ context.Context, objectIDs []string, _ string) (AccessMap, error) {
	result := make(AccessMap, len(objectIDs))
	for _, id := range objectIDs {
		if allowed, ok := s.access[id]; ok {
			result[id] = allowed
		}
	}
	return result, nil
}

// RateLimitedResolver throttles calls to an inner Resolver. Permission
// lookups usually hit an external SaaS API with its own quota; the limiter
// blocks until a token is available or the context is done.
type RateLimitedResolver struct {
	inner   Resolver
	limiter *rate.Limiter
}

// NewRateLimitedResolver wraps inner with a token-bucket limiter allowing
// rps requests per second with the given burst.
func NewRateLimitedResolver(inner Resolver, rps rate.Limit, burst int) *RateLimitedResolver {
	return &RateLimitedResolver{
		inner:   inner,
		limiter: rate.NewLimiter(rps, burst),
	}
}

// Resolve waits for limiter admission, then delegates.
func (r *RateLimitedResolver) Resolve(ctx context.Context, objectIDs []string, identity string) (AccessMap, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait interrupted: %w", err)
	}
	return r.inner.Resolve(ctx, objectIDs, identity)
}
