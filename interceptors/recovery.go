package interceptors

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/glimte/intercept-go/contracts"
	"github.com/glimte/intercept-go/interception"
)

// RecoveryInterceptor converts panics in downstream interceptors or the
// target method into errors.
type RecoveryInterceptor struct {
	logger *slog.Logger
}

// NewRecoveryInterceptor creates a new recovery interceptor.
func NewRecoveryInterceptor(logger *slog.Logger) *RecoveryInterceptor {
	if logger == nil {
		logger = slog.Default()
	}

	return &RecoveryInterceptor{logger: logger}
}

// Intercept implements interception.Interceptor.
func (i *RecoveryInterceptor) Intercept(ctx context.Context, inv *contracts.Invocation, next interception.Handler) (results []any, err error) {
	defer func() {
		if r := recover(); r != nil {
			i.logger.Error("panic during invocation",
				"invocationId", inv.ID,
				"method", inv.Method.Identity().String(),
				"panic", r,
			)
			results = nil
			err = fmt.Errorf("panic in %s: %v", inv.Method.Identity(), r)
		}
	}()

	return next.Invoke(ctx, inv)
}

// Name implements interception.Interceptor.
func (i *RecoveryInterceptor) Name() string {
	return "RecoveryInterceptor"
}
