package interceptors

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/glimte/intercept-go/contracts"
	"github.com/glimte/intercept-go/interception"
)

// MetricsInterceptor records invocation counts, failures and latency per
// method identity.
type MetricsInterceptor struct {
	calls    *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetricsInterceptor creates a metrics interceptor and registers its
// collectors. A nil registerer uses prometheus.DefaultRegisterer.
func NewMetricsInterceptor(reg prometheus.Registerer) (*MetricsInterceptor, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	i := &MetricsInterceptor{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "intercept",
			Name:      "invocations_total",
			Help:      "Total method invocations through interceptor pipelines.",
		}, []string{"method"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "intercept",
			Name:      "invocation_failures_total",
			Help:      "Total failed method invocations.",
		}, []string{"method"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "intercept",
			Name:      "invocation_duration_seconds",
			Help:      "Method invocation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}

	for _, c := range []prometheus.Collector{i.calls, i.failures, i.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return i, nil
}

// Intercept implements interception.Interceptor.
func (i *MetricsInterceptor) Intercept(ctx context.Context, inv *contracts.Invocation, next interception.Handler) ([]any, error) {
	method := inv.Method.Identity().String()
	i.calls.WithLabelValues(method).Inc()

	start := time.Now()
	results, err := next.Invoke(ctx, inv)
	i.duration.WithLabelValues(method).Observe(time.Since(start).Seconds())

	if err != nil {
		i.failures.WithLabelValues(method).Inc()
	}

	return results, err
}

// Name implements interception.Interceptor.
func (i *MetricsInterceptor) Name() string {
	return "MetricsInterceptor"
}
