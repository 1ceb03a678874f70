package interceptors

import (
	"context"
	"fmt"

	"github.com/glimte/intercept-go/contracts"
	"github.com/glimte/intercept-go/interception"
)

// InvocationValidator validates an invocation before it reaches the target.
type InvocationValidator interface {
	Validate(ctx context.Context, inv *contracts.Invocation) error
}

// ValidatorFunc is a function adapter for InvocationValidator.
type ValidatorFunc func(ctx context.Context, inv *contracts.Invocation) error

// Validate implements InvocationValidator.
func (f ValidatorFunc) Validate(ctx context.Context, inv *contracts.Invocation) error {
	return f(ctx, inv)
}

// ValidationInterceptor rejects invocations that fail validation before the
// downstream chain runs.
type ValidationInterceptor struct {
	validator InvocationValidator
}

// NewValidationInterceptor creates a new validation interceptor.
func NewValidationInterceptor(validator InvocationValidator) *ValidationInterceptor {
	return &ValidationInterceptor{validator: validator}
}

// Intercept implements interception.Interceptor.
func (i *ValidationInterceptor) Intercept(ctx context.Context, inv *contracts.Invocation, next interception.Handler) ([]any, error) {
	if err := i.validator.Validate(ctx, inv); err != nil {
		return nil, fmt.Errorf("invocation validation failed: %w", err)
	}

	return next.Invoke(ctx, inv)
}

// Name implements interception.Interceptor.
func (i *ValidationInterceptor) Name() string {
	return "ValidationInterceptor"
}
