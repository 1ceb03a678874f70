package interceptors

import (
	"context"
	"log/slog"
	"time"

	"github.com/glimte/intercept-go/contracts"
	"github.com/glimte/intercept-go/interception"
)

// LoggingInterceptor logs method invocations with timing information.
type LoggingInterceptor struct {
	logger *slog.Logger
}

// NewLoggingInterceptor creates a new logging interceptor.
func NewLoggingInterceptor(logger *slog.Logger) *LoggingInterceptor {
	if logger == nil {
		logger = slog.Default()
	}

	return &LoggingInterceptor{logger: logger}
}

// Intercept implements interception.Interceptor.
func (i *LoggingInterceptor) Intercept(ctx context.Context, inv *contracts.Invocation, next interception.Handler) ([]any, error) {
	start := time.Now()

	i.logger.Info("invoking method",
		"invocationId", inv.ID,
		"method", inv.Method.Identity().String(),
	)

	results, err := next.Invoke(ctx, inv)
	duration := time.Since(start)

	if err != nil {
		i.logger.Error("invocation failed",
			"invocationId", inv.ID,
			"method", inv.Method.Identity().String(),
			"duration", duration,
			"error", err,
		)
	} else {
		i.logger.Info("invocation completed",
			"invocationId", inv.ID,
			"method", inv.Method.Identity().String(),
			"duration", duration,
		)
	}

	return results, err
}

// Name implements interception.Interceptor.
func (i *LoggingInterceptor) Name() string {
	return "LoggingInterceptor"
}
