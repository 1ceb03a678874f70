package interceptors

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/glimte/intercept-go/contracts"
	"github.com/glimte/intercept-go/interception"
)

// AuditRecord is the document emitted for each completed invocation.
type AuditRecord struct {
	InvocationID string    `json:"invocationId"`
	Method       string    `json:"method"`
	Timestamp    time.Time `json:"timestamp"`
	DurationMs   int64     `json:"durationMs"`
	Error        string    `json:"error,omitempty"`
}

// AuditSink receives audit records.
type AuditSink interface {
	Publish(ctx context.Context, record AuditRecord) error
}

// AuditInterceptor emits an audit record after each invocation. Sink
// failures are logged, never propagated: auditing must not fail the call.
type AuditInterceptor struct {
	sink   AuditSink
	logger *slog.Logger
}

// NewAuditInterceptor creates a new audit interceptor.
func NewAuditInterceptor(sink AuditSink, logger *slog.Logger) *AuditInterceptor {
	if logger == nil {
		logger = slog.Default()
	}

	return &AuditInterceptor{sink: sink, logger: logger}
}

// Intercept implements interception.Interceptor.
func (i *AuditInterceptor) Intercept(ctx context.Context, inv *contracts.Invocation, next interception.Handler) ([]any, error) {
	start := time.Now()
	results, err := next.Invoke(ctx, inv)

	record := AuditRecord{
		InvocationID: inv.ID,
		Method:       inv.Method.Identity().String(),
		Timestamp:    start.UTC(),
		DurationMs:   time.Since(start).Milliseconds(),
	}
	if err != nil {
		record.Error = err.Error()
	}

	if perr := i.sink.Publish(ctx, record); perr != nil {
		i.logger.Error("failed to publish audit record",
			"invocationId", inv.ID,
			"method", record.Method,
			"error", perr,
		)
	}

	return results, err
}

// Name implements interception.Interceptor.
func (i *AuditInterceptor) Name() string {
	return "AuditInterceptor"
}

// AMQPPublisher is the channel surface the AMQP sink publishes through.
// *amqp.Channel satisfies it.
type AMQPPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPSink publishes audit records as JSON to a RabbitMQ exchange. The
// channel's connection lifecycle belongs to the caller; this library opens
// no broker connections of its own.
type AMQPSink struct {
	channel    AMQPPublisher
	exchange   string
	routingKey string
}

// NewAMQPSink creates a sink publishing to the given exchange and routing key.
func NewAMQPSink(channel AMQPPublisher, exchange, routingKey string) (*AMQPSink, error) {
	if channel == nil {
		return nil, fmt.Errorf("channel cannot be nil")
	}

	return &AMQPSink{
		channel:    channel,
		exchange:   exchange,
		routingKey: routingKey,
	}, nil
}

// Publish implements AuditSink.
func (s *AMQPSink) Publish(ctx context.Context, record AuditRecord) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshaling audit record: %w", err)
	}

	err = s.channel.PublishWithContext(ctx, s.exchange, s.routingKey, false, false, amqp.Publishing{
		ContentType: "application/json",
		MessageId:   record.InvocationID,
		Timestamp:   record.Timestamp,
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("publishing audit record: %w", err)
	}

	return nil
}
