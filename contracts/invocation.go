package contracts

import (
	"time"

	"github.com/google/uuid"
)

// Invocation carries one method call through an interceptor pipeline.
type Invocation struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Method    Method    `json:"-"`
	Target    any       `json:"-"`
	Args      []any     `json:"-"`
}

// NewInvocation creates an invocation with a generated ID and current timestamp.
func NewInvocation(method Method, target any, args ...any) *Invocation {
	return &Invocation{
		ID:        uuid.New().String(),
		Timestamp: time.Now().UTC(),
		Method:    method,
		Target:    target,
		Args:      args,
	}
}
