package interceptors

import (
	"context"
	"fmt"
	"sync"

	"github.com/glimte/intercept-go/contracts"
	"github.com/glimte/intercept-go/interception"
)

// ResultCache stores invocation results by key.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]any, bool, error)
	Set(ctx context.Context, key string, results []any) error
}

// MemoryCache is an in-process ResultCache with no eviction.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string][]any
}

// NewMemoryCache creates an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string][]any)}
}

// Get implements ResultCache.
func (c *MemoryCache) Get(_ context.Context, key string) ([]any, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	results, ok := c.entries[key]
	return results, ok, nil
}

// Set implements ResultCache.
func (c *MemoryCache) Set(_ context.Context, key string, results []any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = results
	return nil
}

// KeyFunc derives a cache key from an invocation.
type KeyFunc func(inv *contracts.Invocation) string

// CachingInterceptor memoizes successful invocation results and
// short-circuits the chain on a cache hit. Failed invocations are never
// cached.
type CachingInterceptor struct {
	cache ResultCache
	keyFn KeyFunc
}

// NewCachingInterceptor creates a caching interceptor. A nil keyFn keys on
// the method identity and the formatted argument list.
func NewCachingInterceptor(cache ResultCache, keyFn KeyFunc) *CachingInterceptor {
	if keyFn == nil {
		keyFn = func(inv *contracts.Invocation) string {
			return fmt.Sprintf("%s|%v", inv.Method.Identity(), inv.Args)
		}
	}

	return &CachingInterceptor{cache: cache, keyFn: keyFn}
}

// Intercept implements interception.Interceptor.
func (i *CachingInterceptor) Intercept(ctx context.Context, inv *contracts.Invocation, next interception.Handler) ([]any, error) {
	key := i.keyFn(inv)

	cached, found, err := i.cache.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("cache lookup for %s: %w", inv.Method.Identity(), err)
	}
	if found {
		return cached, nil
	}

	results, err := next.Invoke(ctx, inv)
	if err != nil {
		return nil, err
	}

	if err := i.cache.Set(ctx, key, results); err != nil {
		return nil, fmt.Errorf("caching result for %s: %w", inv.Method.Identity(), err)
	}

	return results, nil
}

// Name implements interception.Interceptor.
func (i *CachingInterceptor) Name() string {
	return "CachingInterceptor"
}
