package interception

import (
	"context"

	"github.com/glimte/intercept-go/contracts"
)

// EmptyPipeline is the process-wide shared zero-length pipeline. It is the
// default lookup result for methods with no registered pipeline; it is never
// written to, so it is safe to share across managers without synchronization.
var EmptyPipeline = &Pipeline{}

// Pipeline is the immutable ordered interceptor chain bound to one method
// identity. Pipelines are never mutated after being published to a manager;
// updates publish a new pipeline for the identity instead.
type Pipeline struct {
	interceptors []Interceptor
}

// NewPipeline creates a pipeline over the supplied interceptors. The order
// is preserved exactly as given; sorting declarations is the resolver's job.
// A nil or empty sequence yields EmptyPipeline.
func NewPipeline(interceptors []Interceptor) *Pipeline {
	if len(interceptors) == 0 {
		return EmptyPipeline
	}

	owned := make([]Interceptor, len(interceptors))
	copy(owned, interceptors)
	return &Pipeline{interceptors: owned}
}

// Count returns the number of interceptors in the pipeline.
func (p *Pipeline) Count() int {
	return len(p.interceptors)
}

// IsEmpty reports whether the pipeline has no interceptors. Callers use this
// to bypass interception machinery entirely for bare calls.
func (p *Pipeline) IsEmpty() bool {
	return len(p.interceptors) == 0
}

// Interceptors returns a copy of the interceptor sequence.
func (p *Pipeline) Interceptors() []Interceptor {
	if len(p.interceptors) == 0 {
		return nil
	}
	out := make([]Interceptor, len(p.interceptors))
	copy(out, p.interceptors)
	return out
}

// Execute runs the invocation through the pipeline, calling final last. An
// empty pipeline invokes final directly.
func (p *Pipeline) Execute(ctx context.Context, inv *contracts.Invocation, final Handler) ([]any, error) {
	if len(p.interceptors) == 0 {
		return final.Invoke(ctx, inv)
	}

	// Build the chain in reverse order
	handler := final
	for i := len(p.interceptors) - 1; i >= 0; i-- {
		interceptor := p.interceptors[i]
		next := handler
		handler = HandlerFunc(func(ctx context.Context, inv *contracts.Invocation) ([]any, error) {
			return interceptor.Intercept(ctx, inv, next)
		})
	}

	return handler.Invoke(ctx, inv)
}
