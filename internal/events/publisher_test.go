package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	mqcontracts "simpletodos/contracts/mq"
	"simpletodos/internal/model"
	"simpletodos/pkg/circuitbreaker"
	"simpletodos/pkg/trace"
)

type recordingSender struct {
	err   error
	calls int
	keys  []string
	last  mqcontracts.TaskEventPayload
}

func (s *recordingSender) PublishWithContext(ctx context.Context, routingKey string, payload any) error {
	s.calls++
	s.keys = append(s.keys, routingKey)
	s.last = payload.(mqcontracts.TaskEventPayload)
	return s.err
}

func TestMQPublisher_Payload(t *testing.T) {
	sender := &recordingSender{}
	p := NewMQPublisher(sender, nil, zap.NewNop())

	ctx := trace.WithContext(context.Background(), "trace-1")
	p.TaskEvent(ctx, mqcontracts.RoutingTaskAdded, "u1", &model.Task{ID: "t1", Owner: "u1", Text: "Buy milk"})

	if sender.calls != 1 || sender.keys[0] != "task.added" {
		t.Fatalf("expected one task.added publish, got %v", sender.keys)
	}
	if sender.last.TaskID != "t1" || sender.last.ActorID != "u1" || sender.last.TraceID != "trace-1" {
		t.Fatalf("unexpected payload %+v", sender.last)
	}
}

func TestMQPublisher_BreakerStopsSending(t *testing.T) {
	sender := &recordingSender{err: errors.New("broker down")}
	breaker := circuitbreaker.NewCircuitBreaker(circuitbreaker.Config{
		FailureThreshold:    2,
		SuccessThreshold:    1,
		Timeout:             time.Hour,
		HalfOpenMaxRequests: 1,
	})
	p := NewMQPublisher(sender, breaker, zap.NewNop())

	for i := 0; i < 5; i++ {
		p.TaskEvent(context.Background(), mqcontracts.RoutingTaskDeleted, "u1", &model.Task{ID: "t1"})
	}
	if sender.calls != 2 {
		t.Fatalf("expected breaker to stop after 2 failures, got %d calls", sender.calls)
	}
}
