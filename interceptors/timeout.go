package interceptors

import (
	"context"
	"fmt"
	"time"

	"github.com/glimte/intercept-go/contracts"
	"github.com/glimte/intercept-go/interception"
)

// TimeoutInterceptor bounds the downstream chain with a per-call deadline.
type TimeoutInterceptor struct {
	timeout time.Duration
}

// NewTimeoutInterceptor creates a new timeout interceptor.
func NewTimeoutInterceptor(timeout time.Duration) *TimeoutInterceptor {
	return &TimeoutInterceptor{timeout: timeout}
}

// Intercept implements interception.Interceptor.
func (i *TimeoutInterceptor) Intercept(ctx context.Context, inv *contracts.Invocation, next interception.Handler) ([]any, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	type outcome struct {
		results []any
		err     error
	}

	done := make(chan outcome, 1)
	go func() {
		results, err := next.Invoke(timeoutCtx, inv)
		done <- outcome{results: results, err: err}
	}()

	select {
	case o := <-done:
		return o.results, o.err
	case <-timeoutCtx.Done():
		return nil, fmt.Errorf("invocation %s of %s timed out after %v", inv.ID, inv.Method.Identity(), i.timeout)
	}
}

// Name implements interception.Interceptor.
func (i *TimeoutInterceptor) Name() string {
	return "TimeoutInterceptor"
}
