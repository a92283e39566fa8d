package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/planner-api/internal/domain"
)

// DueWindow selects tasks by how their due date relates to today.
type DueWindow string

// Supported due windows for task listing.
const (
	DueAny     DueWindow = ""
	DueToday   DueWindow = "today"
	DueWeek    DueWindow = "week"
	DueMonth   DueWindow = "month"
	DueOverdue DueWindow = "overdue"
)

// TaskFilter narrows task listings. Visibility fields (AssignedTo, Roles,
// Organization) are supplied by the caller from the external authorization
// component; the store applies them verbatim and never evaluates
// permissions itself.
type TaskFilter struct {
	Status       *domain.TaskStatus
	Due          DueWindow
	Search       string
	AssignedTo   *uuid.UUID
	Roles        []string
	Organization string
}

// TaskStats is the status rollup reported alongside task listings.
type TaskStats struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	InProgress int `json:"in_progress"`
	Pending    int `json:"pending"`
	Overdue    int `json:"overdue"`
}

// LegacyTaskRow is a task record missing canonical timezone data, as
// surfaced for the backfill operation. NaiveDueDate is whatever naive
// due timestamp the legacy writer stored.
type LegacyTaskRow struct {
	ID           uuid.UUID
	ProjectID    uuid.UUID
	NaiveDueDate sql.NullTime
}

// TaskStore defines the interface for task record persistence.
type TaskStore interface {
	// GetByID retrieves a task record by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.TaskRecord, error)

	// FindByProject retrieves all of a project's task records, ordered
	// ascending by canonical UTC due date.
	FindByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.TaskRecord, error)

	// ReplaceForProject replaces the project's entire task collection with
	// the given records. Callers run it inside a transaction (via WithTx)
	// so regeneration commits a complete collection or nothing.
	ReplaceForProject(ctx context.Context, projectID uuid.UUID, tasks []*domain.TaskRecord) error

	// Update saves changes to an existing task record.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.TaskRecord) error

	// UpdateTitles rewrites only the titles of the given tasks, by ID.
	// Used by the title-only update path; dates and statuses are untouched.
	UpdateTitles(ctx context.Context, titles map[uuid.UUID]string) error

	// FindWithFilter retrieves task records matching the filter, ordered
	// ascending by due date.
	FindWithFilter(ctx context.Context, filter TaskFilter) ([]*domain.TaskRecord, error)

	// CountByStatus computes the status rollup for records matching the
	// filter, ignoring its Search term.
	CountByStatus(ctx context.Context, filter TaskFilter) (TaskStats, error)

	// FindDueOn retrieves non-terminal tasks whose local due date falls on
	// the given calendar date. Used by the daily reminder job.
	FindDueOn(ctx context.Context, date string) ([]*domain.TaskRecord, error)

	// FindMissingTimezoneData retrieves rows lacking canonical timezone
	// fields, optionally restricted to one project. Used by backfill.
	FindMissingTimezoneData(ctx context.Context, projectID *uuid.UUID) ([]LegacyTaskRow, error)

	// BackfillTimezoneFields writes the derived due_at_utc, due_local, and
	// timezone values for one legacy row.
	BackfillTimezoneFields(ctx context.Context, id uuid.UUID, task *domain.TaskRecord) error

	// WithTx returns a TaskStore that runs against the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}
