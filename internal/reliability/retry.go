package reliability

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Classifier reports whether a failed attempt is worth retrying. A nil
// classifier retries every error.
type Classifier func(err error) bool

// RetryPolicy decides whether a failed attempt should be retried and how
// long to wait before the next one.
type RetryPolicy interface {
	// ShouldRetry returns whether attempt (zero-based) should be retried
	// after err, and the delay before the retry.
	ShouldRetry(attempt int, err error) (bool, time.Duration)

	// MaxAttempts returns the attempt budget.
	MaxAttempts() int
}

// ExponentialBackoff grows the delay geometrically up to a cap, with up to
// 20% random jitter to spread synchronized retries.
type ExponentialBackoff struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
	Attempts   int
	Classify   Classifier
}

// NewExponentialBackoff creates an exponential backoff policy.
func NewExponentialBackoff(initial, max time.Duration, multiplier float64, attempts int) *ExponentialBackoff {
	return &ExponentialBackoff{
		Initial:    initial,
		Max:        max,
		Multiplier: multiplier,
		Attempts:   attempts,
	}
}

// ShouldRetry implements RetryPolicy.
func (e *ExponentialBackoff) ShouldRetry(attempt int, err error) (bool, time.Duration) {
	if attempt >= e.Attempts {
		return false, 0
	}
	if e.Classify != nil && !e.Classify(err) {
		return false, 0
	}

	delay := float64(e.Initial) * math.Pow(e.Multiplier, float64(attempt))
	if delay > float64(e.Max) {
		delay = float64(e.Max)
	}
	delay += rand.Float64() * 0.2 * delay

	return true, time.Duration(delay)
}

// MaxAttempts implements RetryPolicy.
func (e *ExponentialBackoff) MaxAttempts() int {
	return e.Attempts
}

// FixedDelay waits the same duration between attempts.
type FixedDelay struct {
	Delay    time.Duration
	Attempts int
	Classify Classifier
}

// NewFixedDelay creates a fixed delay policy.
func NewFixedDelay(delay time.Duration, attempts int) *FixedDelay {
	return &FixedDelay{Delay: delay, Attempts: attempts}
}

// ShouldRetry implements RetryPolicy.
func (f *FixedDelay) ShouldRetry(attempt int, err error) (bool, time.Duration) {
	if attempt >= f.Attempts {
		return false, 0
	}
	if f.Classify != nil && !f.Classify(err) {
		return false, 0
	}
	return true, f.Delay
}

// MaxAttempts implements RetryPolicy.
func (f *FixedDelay) MaxAttempts() int {
	return f.Attempts
}

// Retry executes fn until it succeeds, the policy gives up, or the context
// is cancelled. It returns the last error on exhaustion.
func Retry(ctx context.Context, policy RetryPolicy, fn func() error) error {
	for attempt := 0; ; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := fn()
		if err == nil {
			return nil
		}

		retry, delay := policy.ShouldRetry(attempt, err)
		if !retry {
			return err
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
