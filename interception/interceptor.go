package interception

import (
	"context"

	"github.com/glimte/intercept-go/contracts"
)

// Handler represents the next stage of an invocation: either another
// interceptor or the target method itself.
type Handler interface {
	Invoke(ctx context.Context, inv *contracts.Invocation) ([]any, error)
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc func(ctx context.Context, inv *contracts.Invocation) ([]any, error)

// Invoke implements Handler.
func (f HandlerFunc) Invoke(ctx context.Context, inv *contracts.Invocation) ([]any, error) {
	return f(ctx, inv)
}

// Interceptor wraps a method invocation with a cross-cutting concern and
// calls the next handler in the pipeline.
type Interceptor interface {
	// Intercept processes an invocation and calls the next handler.
	Intercept(ctx context.Context, inv *contracts.Invocation, next Handler) ([]any, error)

	// Name returns the interceptor name for logging and debugging.
	Name() string
}

// InterceptorFunc is a function adapter for Interceptor.
type InterceptorFunc struct {
	name string
	fn   func(ctx context.Context, inv *contracts.Invocation, next Handler) ([]any, error)
}

// NewInterceptorFunc creates a new function-based interceptor.
func NewInterceptorFunc(name string, fn func(ctx context.Context, inv *contracts.Invocation, next Handler) ([]any, error)) *InterceptorFunc {
	return &InterceptorFunc{name: name, fn: fn}
}

// Intercept implements Interceptor.
func (i *InterceptorFunc) Intercept(ctx context.Context, inv *contracts.Invocation, next Handler) ([]any, error) {
	return i.fn(ctx, inv, next)
}

// Name implements Interceptor.
func (i *InterceptorFunc) Name() string {
	return i.name
}
