// Package reliability holds the retry policies backing the retry
// interceptor: pluggable error classification, exponential backoff with
// jitter, fixed delay, and a context-aware retry runner.
package reliability
