package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the planner and task services.
const (
	// EventTasksRegenerated fires after a project's task collection has
	// been regenerated and committed.
	EventTasksRegenerated = "tasks.regenerated"

	// EventTaskStatusChanged fires when a task's workflow status changes.
	EventTaskStatusChanged = "task.status_changed"

	// EventTaskAssigned fires when a task is assigned to a user.
	EventTaskAssigned = "task.assigned"

	// EventTaskDueReminder fires for each task surfaced by the daily
	// reminder sweep.
	EventTaskDueReminder = "task.due_reminder"
)

// TaskEvent is a notification about a task or project lifecycle change.
// Payloads carry event-specific data so handlers stay decoupled from the
// service layer.
type TaskEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the Event* constants
	Type string `json:"type"`

	// Payload contains the event-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *TaskEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewTaskEvent creates a new TaskEvent with the specified type and payload.
func NewTaskEvent(eventType string, payload interface{}) (*TaskEvent, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &TaskEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// RegeneratedPayload describes a completed regeneration.
type RegeneratedPayload struct {
	ProjectID      uuid.UUID `json:"project_id"`
	CreatedCount   int       `json:"created_count"`
	PreservedCount int       `json:"preserved_count"`
	TotalCount     int       `json:"total_count"`
}

// StatusChangedPayload describes a task status transition.
type StatusChangedPayload struct {
	TaskID    uuid.UUID `json:"task_id"`
	ProjectID uuid.UUID `json:"project_id"`
	OldStatus string    `json:"old_status"`
	NewStatus string    `json:"new_status"`
	ActorID   uuid.UUID `json:"actor_id"`
}

// AssignedPayload describes a task assignment.
type AssignedPayload struct {
	TaskID     uuid.UUID `json:"task_id"`
	ProjectID  uuid.UUID `json:"project_id"`
	AssigneeID uuid.UUID `json:"assignee_id"`
	ActorID    uuid.UUID `json:"actor_id"`
}

// DueReminderPayload describes a task due on the reminder date. DueLocal
// and Timezone are the assignee-facing rendering of the deadline.
type DueReminderPayload struct {
	TaskID     uuid.UUID  `json:"task_id"`
	ProjectID  uuid.UUID  `json:"project_id"`
	Title      string     `json:"title"`
	DueLocal   string     `json:"due_local"`
	Timezone   string     `json:"timezone"`
	AssigneeID *uuid.UUID `json:"assignee_id,omitempty"`
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *TaskEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *TaskEvent) error
}
