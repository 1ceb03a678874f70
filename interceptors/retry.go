package interceptors

import (
	"context"
	"log/slog"

	"github.com/glimte/intercept-go/contracts"
	"github.com/glimte/intercept-go/interception"
	"github.com/glimte/intercept-go/internal/reliability"
)

// RetryInterceptor re-invokes the downstream chain according to a retry
// policy. Only side-effect-free methods should be declared with it.
type RetryInterceptor struct {
	policy reliability.RetryPolicy
	logger *slog.Logger
}

// NewRetryInterceptor creates a new retry interceptor.
func NewRetryInterceptor(policy reliability.RetryPolicy) *RetryInterceptor {
	return &RetryInterceptor{
		policy: policy,
		logger: slog.Default(),
	}
}

// WithLogger sets the logger for the retry interceptor.
func (r *RetryInterceptor) WithLogger(logger *slog.Logger) *RetryInterceptor {
	r.logger = logger
	return r
}

// Intercept implements interception.Interceptor.
func (r *RetryInterceptor) Intercept(ctx context.Context, inv *contracts.Invocation, next interception.Handler) ([]any, error) {
	var results []any

	err := reliability.Retry(ctx, r.policy, func() error {
		var attemptErr error
		results, attemptErr = next.Invoke(ctx, inv)
		if attemptErr != nil {
			r.logger.Debug("invocation attempt failed",
				"invocationId", inv.ID,
				"method", inv.Method.Identity().String(),
				"error", attemptErr,
			)
		}
		return attemptErr
	})
	if err != nil {
		return nil, err
	}

	return results, nil
}

// Name implements interception.Interceptor.
func (r *RetryInterceptor) Name() string {
	return "RetryInterceptor"
}
