package interceptors

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/glimte/intercept-go/contracts"
	"github.com/glimte/intercept-go/internal/reliability"
)

func TestRetryInterceptor(t *testing.T) {
	ctx := context.Background()

	t.Run("retries until the chain succeeds", func(t *testing.T) {
		transient := errors.New("connection reset")
		attempts := 0
		handler := &countingHandler{next: func(context.Context, *contracts.Invocation) ([]any, error) {
			attempts++
			if attempts < 3 {
				return nil, transient
			}
			return []any{3}, nil
		}}

		i := NewRetryInterceptor(reliability.NewFixedDelay(time.Millisecond, 5))
		results, err := i.Intercept(ctx, calcInvocation(t, 1, 2), handler)

		assert.NoError(t, err)
		assert.Equal(t, []any{3}, results)
		assert.Equal(t, 3, handler.calls)
	})

	t.Run("returns the last error when the budget is exhausted", func(t *testing.T) {
		persistent := errors.New("still down")
		handler := &countingHandler{next: func(context.Context, *contracts.Invocation) ([]any, error) {
			return nil, persistent
		}}

		i := NewRetryInterceptor(reliability.NewFixedDelay(time.Millisecond, 2))
		results, err := i.Intercept(ctx, calcInvocation(t, 1, 2), handler)

		assert.Nil(t, results)
		assert.ErrorIs(t, err, persistent)
		assert.Equal(t, 3, handler.calls)
	})

	t.Run("does not retry errors the classifier rules out", func(t *testing.T) {
		fatal := errors.New("bad request")
		handler := &countingHandler{next: func(context.Context, *contracts.Invocation) ([]any, error) {
			return nil, fatal
		}}

		policy := &reliability.FixedDelay{
			Delay:    time.Millisecond,
			Attempts: 5,
			Classify: func(err error) bool { return !errors.Is(err, fatal) },
		}
		i := NewRetryInterceptor(policy)
		_, err := i.Intercept(ctx, calcInvocation(t, 1, 2), handler)

		assert.ErrorIs(t, err, fatal)
		assert.Equal(t, 1, handler.calls)
	})
}
