package interceptors

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"

	"github.com/glimte/intercept-go/contracts"
	"github.com/glimte/intercept-go/interception"
)

// RateLimitInterceptor applies a token bucket per method identity and
// rejects invocations that exceed it.
type RateLimitInterceptor struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	byMethod map[contracts.Identity]*rate.Limiter
}

// NewRateLimitInterceptor creates a rate limiting interceptor allowing rps
// invocations per second per method, with the given burst.
func NewRateLimitInterceptor(rps float64, burst int) *RateLimitInterceptor {
	return &RateLimitInterceptor{
		limit:    rate.Limit(rps),
		burst:    burst,
		byMethod: make(map[contracts.Identity]*rate.Limiter),
	}
}

// Intercept implements interception.Interceptor.
func (i *RateLimitInterceptor) Intercept(ctx context.Context, inv *contracts.Invocation, next interception.Handler) ([]any, error) {
	if !i.limiterFor(inv.Method.Identity()).Allow() {
		return nil, fmt.Errorf("rate limit exceeded for method %s", inv.Method.Identity())
	}

	return next.Invoke(ctx, inv)
}

// Name implements interception.Interceptor.
func (i *RateLimitInterceptor) Name() string {
	return "RateLimitInterceptor"
}

func (i *RateLimitInterceptor) limiterFor(id contracts.Identity) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	limiter, ok := i.byMethod[id]
	if !ok {
		limiter = rate.NewLimiter(i.limit, i.burst)
		i.byMethod[id] = limiter
	}
	return limiter
}
