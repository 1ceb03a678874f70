// Package interceptors provides built-in interceptors for common
// cross-cutting concerns around method invocations:
//   - LoggingInterceptor: logs invocations with timing information
//   - MetricsInterceptor: Prometheus counters and latency histograms
//   - RateLimitInterceptor: per-method token bucket
//   - RetryInterceptor: policy-driven retries
//   - TimeoutInterceptor: per-call deadline
//   - RecoveryInterceptor: converts panics into errors
//   - CachingInterceptor: memoizes successful results
//   - ValidationInterceptor: pre-call argument validation
//   - AuditInterceptor: invocation audit records, with an AMQP sink
//
// All of them implement interception.Interceptor and are declared on
// methods through an interception.DeclarationSet; the declared order
// decides nesting, with lower orders wrapping higher ones.
//
// Custom interceptors implement the same interface:
//
//	func (i *Custom) Intercept(ctx context.Context, inv *contracts.Invocation, next interception.Handler) ([]any, error) {
//		// pre-processing
//		results, err := next.Invoke(ctx, inv)
//		// post-processing
//		return results, err
//	}
package interceptors
