package events

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	mqcontracts "simpletodos/contracts/mq"
	"simpletodos/internal/model"
	"simpletodos/pkg/circuitbreaker"
	"simpletodos/pkg/logger"
	"simpletodos/pkg/metrics"
	"simpletodos/pkg/trace"
)

// Publisher emits task events. Publishing is best effort: failures are
// logged and never reach the caller.
type Publisher interface {
	TaskEvent(ctx context.Context, routingKey string, actorID string, t *model.Task)
}

// Sender is the transport; *mq.Publisher satisfies it.
type Sender interface {
	PublishWithContext(ctx context.Context, routingKey string, payload any) error
}

type MQPublisher struct {
	sender  Sender
	breaker *circuitbreaker.CircuitBreaker
	logger  *zap.Logger
	timeout time.Duration
}

func NewMQPublisher(sender Sender, breaker *circuitbreaker.CircuitBreaker, logger *zap.Logger) *MQPublisher {
	if breaker == nil {
		breaker = circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig())
	}
	return &MQPublisher{
		sender:  sender,
		breaker: breaker,
		logger:  logger,
		timeout: 2 * time.Second,
	}
}

func (p *MQPublisher) TaskEvent(ctx context.Context, routingKey string, actorID string, t *model.Task) {
	payload := mqcontracts.TaskEventPayload{
		TaskID:     t.ID,
		Owner:      t.Owner,
		ActorID:    actorID,
		Text:       t.Text,
		Checked:    t.Checked,
		Private:    t.Private,
		OccurredAt: time.Now().UTC(),
		TraceID:    trace.FromContext(ctx),
	}

	// the request may finish before the broker answers
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	err := p.breaker.Execute(func() error {
		return p.sender.PublishWithContext(pubCtx, routingKey, payload)
	})
	log := logger.WithTrace(ctx, p.logger)
	switch {
	case errors.Is(err, circuitbreaker.ErrCircuitBreakerOpen):
		metrics.IncrementEventPublish(routingKey, "dropped")
		log.Warn("Task event dropped, breaker open",
			zap.String("routing_key", routingKey),
			zap.String("task_id", t.ID),
		)
	case err != nil:
		metrics.IncrementEventPublish(routingKey, "failed")
		log.Error("Failed to publish task event",
			zap.String("routing_key", routingKey),
			zap.String("task_id", t.ID),
			zap.Error(err),
		)
	default:
		metrics.IncrementEventPublish(routingKey, "ok")
		log.Debug("Task event published",
			zap.String("routing_key", routingKey),
			zap.String("task_id", t.ID),
		)
	}
}

// NopPublisher discards events; used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) TaskEvent(context.Context, string, string, *model.Task) {}
