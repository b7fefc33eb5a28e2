package mq

import "time"

// Routing keys on the events exchange.
const (
	RoutingTaskAdded          = "task.added"
	RoutingTaskDeleted        = "task.deleted"
	RoutingTaskChecked        = "task.checked"
	RoutingTaskPrivacyChanged = "task.privacy_changed"
)

// TaskEventPayload is the body of every task.* event.
type TaskEventPayload struct {
	TaskID     string    `json:"task_id"`
	Owner      string    `json:"owner"`
	ActorID    string    `json:"actor_id"`
	Text       string    `json:"text"`
	Checked    bool      `json:"checked"`
	Private    bool      `json:"private"`
	OccurredAt time.Time `json:"occurred_at"`
	TraceID    string    `json:"trace_id,omitempty"`
}
