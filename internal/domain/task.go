package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the workflow state of a task record.
type TaskStatus string

// Possible task status values. The display forms ("In Progress") are the
// persisted values, matching what assignees see and edit.
const (
	TaskStatusPending    TaskStatus = "Pending"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusCompleted  TaskStatus = "Completed"
	TaskStatusCancelled  TaskStatus = "Cancelled"
)

// Common validation errors for TaskRecord.
var (
	ErrEmptyTaskID        = errors.New("task ID cannot be empty")
	ErrEmptyTaskProjectID = errors.New("task project ID cannot be empty")
	ErrEmptyTaskTitle     = errors.New("task title cannot be empty")
	ErrEmptyTaskDueDate   = errors.New("task due date cannot be empty")
)

// TaskRecord is one occurrence of a project's recurring schedule, or a
// manually created task attached to the project.
//
// DueAtUTC is the canonical instant: it is always UTC and is the single
// source of truth for ordering and due-date comparisons. DueLocal is a
// denormalized wall-clock snapshot taken in Timezone when the record was
// generated; it is display-oriented and is never recomputed when the
// assignee or viewer changes.
type TaskRecord struct {
	ID            uuid.UUID  `json:"id"`
	ProjectID     uuid.UUID  `json:"project_id"`
	Title         string     `json:"title"`
	DueAtUTC      time.Time  `json:"due_at_utc"`
	DueLocal      time.Time  `json:"due_local"`
	Timezone      string     `json:"timezone"`
	Status        TaskStatus `json:"status"`
	AssignedTo    *uuid.UUID `json:"assigned_to,omitempty"`
	AssignedRole  string     `json:"assigned_role,omitempty"`
	AutoGenerated bool       `json:"auto_generated"`
	Notes         string     `json:"notes,omitempty"`
	Organization  string     `json:"organization,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// NewTaskRecord creates a task record for the given project with a fresh ID
// and timestamps. Returns an error if validation fails.
func NewTaskRecord(projectID uuid.UUID, title string, dueAtUTC time.Time) (*TaskRecord, error) {
	now := time.Now().UTC()
	task := &TaskRecord{
		ID:        uuid.New(),
		ProjectID: projectID,
		Title:     title,
		DueAtUTC:  dueAtUTC,
		Status:    TaskStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the TaskRecord has valid data.
// Returns an error if any field fails validation.
func (t *TaskRecord) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if t.ProjectID == uuid.Nil {
		return ErrEmptyTaskProjectID
	}

	if t.Title == "" {
		return ErrEmptyTaskTitle
	}

	if t.DueAtUTC.IsZero() {
		return ErrEmptyTaskDueDate
	}

	if !isValidTaskStatus(t.Status) {
		return ErrInvalidTaskStatus
	}

	return nil
}

// UpdateStatus updates the task's status and the UpdatedAt timestamp.
// Returns an error if the new status is invalid.
func (t *TaskRecord) UpdateStatus(status TaskStatus) error {
	if !isValidTaskStatus(status) {
		return ErrInvalidTaskStatus
	}

	t.Status = status
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// AssignTo assigns the task to the given user and updates the UpdatedAt
// timestamp. A nil userID clears the assignment, leaving the task on its
// role queue.
func (t *TaskRecord) AssignTo(userID *uuid.UUID) {
	t.AssignedTo = userID
	t.UpdatedAt = time.Now().UTC()
}

// DueDate returns the calendar date the task is keyed by for
// reconciliation: the date component of its local wall-clock due time.
func (t *TaskRecord) DueDate() time.Time {
	return DateOnly(t.DueLocal)
}

// Terminal reports whether the task has reached a final state.
func (t *TaskRecord) Terminal() bool {
	return t.Status == TaskStatusCompleted || t.Status == TaskStatusCancelled
}

// ParseTaskStatus converts a status string to a TaskStatus.
func ParseTaskStatus(value string) (TaskStatus, error) {
	switch TaskStatus(value) {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled:
		return TaskStatus(value), nil
	default:
		return "", ErrInvalidTaskStatus
	}
}

// isValidTaskStatus checks if the given status is a valid TaskStatus.
func isValidTaskStatus(status TaskStatus) bool {
	switch status {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled:
		return true
	default:
		return false
	}
}
