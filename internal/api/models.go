package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/planner-api/internal/domain"
	"github.com/phrazzld/planner-api/internal/service"
	"github.com/phrazzld/planner-api/internal/store"
)

// Common request/response structures

// ProjectRequest defines the payload for creating or updating a project
// and its recurrence schedule. Dates use "2006-01-02"; the task time uses
// "15:04:05".
type ProjectRequest struct {
	Name          string   `json:"name"           validate:"required,max=140"`
	Organization  string   `json:"organization"   validate:"required"`
	ScheduleType  string   `json:"schedule_type"  validate:"required"`
	StartDate     string   `json:"start_date"     validate:"required"`
	EndDate       *string  `json:"end_date,omitempty"`
	IntervalDays  int      `json:"interval_days,omitempty"`
	WeeklyDays    []string `json:"weekly_days,omitempty"`
	TaskTime      *string  `json:"task_time,omitempty"`
	DurationHours *float64 `json:"duration_hours,omitempty"`
	DefaultRole   *string  `json:"default_role,omitempty"`
	TaskTemplate  *string  `json:"task_template,omitempty"`
}

// ProjectResponse defines the representation of a project returned by the API.
type ProjectResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Organization  string    `json:"organization"`
	OwnerID       uuid.UUID `json:"owner_id"`
	ScheduleType  string    `json:"schedule_type"`
	StartDate     string    `json:"start_date"`
	EndDate       *string   `json:"end_date,omitempty"`
	IntervalDays  int       `json:"interval_days,omitempty"`
	WeeklyDays    []string  `json:"weekly_days,omitempty"`
	TaskTime      string    `json:"task_time"`
	DurationHours float64   `json:"duration_hours"`
	DefaultRole   string    `json:"default_role"`
	TaskTemplate  *string   `json:"task_template,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SaveProjectResponse wraps a saved project with its regeneration outcome.
type SaveProjectResponse struct {
	Project      ProjectResponse `json:"project"`
	TaskCount    int             `json:"task_count"`
	CreatedCount int             `json:"created_count"`
}

// RegenerateResponse defines the response for the regeneration endpoint.
type RegenerateResponse struct {
	Success        bool `json:"success"`
	TaskCount      int  `json:"task_count"`
	CreatedCount   int  `json:"created_count"`
	PreservedCount int  `json:"preserved_count"`
}

// PreviewResponse lists the due dates a schedule would produce over the
// preview window.
type PreviewResponse struct {
	Dates []string `json:"dates"`
	Count int      `json:"count"`
}

// TaskResponse defines the representation of a task record returned by the API.
type TaskResponse struct {
	ID            uuid.UUID  `json:"id"`
	ProjectID     uuid.UUID  `json:"project_id"`
	Title         string     `json:"title"`
	DueAtUTC      time.Time  `json:"due_at_utc"`
	DueLocal      string     `json:"due_local"`
	Timezone      string     `json:"timezone"`
	Status        string     `json:"status"`
	AssignedTo    *uuid.UUID `json:"assigned_to,omitempty"`
	AssignedRole  string     `json:"assigned_role"`
	AutoGenerated bool       `json:"auto_generated"`
	Notes         string     `json:"notes,omitempty"`
	Organization  string     `json:"organization"`
}

// TaskListResponse defines the response for the task listing endpoint.
type TaskListResponse struct {
	Tasks []TaskResponse  `json:"tasks"`
	Count int             `json:"count"`
	Stats store.TaskStats `json:"stats"`
}

// UpdateStatusRequest defines the payload for the task status endpoint.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// AssignRequest defines the payload for the task assignment endpoint.
type AssignRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
}

// DueDateResponse defines the response for the formatted due date endpoint.
type DueDateResponse struct {
	TaskID    uuid.UUID `json:"task_id"`
	Formatted string    `json:"formatted_due_date"`
}

// BackfillResponse defines the response for the timezone backfill endpoint.
type BackfillResponse struct {
	FixedCount int                     `json:"fixed_count"`
	Errors     []service.BackfillError `json:"errors"`
}

// newTaskResponse converts a domain task record to its API representation.
func newTaskResponse(task *domain.TaskRecord) TaskResponse {
	return TaskResponse{
		ID:            task.ID,
		ProjectID:     task.ProjectID,
		Title:         task.Title,
		DueAtUTC:      task.DueAtUTC,
		DueLocal:      task.DueLocal.Format("2006-01-02 15:04:05"),
		Timezone:      task.Timezone,
		Status:        string(task.Status),
		AssignedTo:    task.AssignedTo,
		AssignedRole:  task.AssignedRole,
		AutoGenerated: task.AutoGenerated,
		Notes:         task.Notes,
		Organization:  task.Organization,
	}
}

// newProjectResponse converts a domain project to its API representation.
func newProjectResponse(project *domain.Project) ProjectResponse {
	spec := project.Schedule

	resp := ProjectResponse{
		ID:            project.ID,
		Name:          project.Name,
		Organization:  project.Organization,
		OwnerID:       project.OwnerID,
		ScheduleType:  string(spec.Type),
		StartDate:     spec.StartDate.Format("2006-01-02"),
		IntervalDays:  spec.IntervalDays,
		WeeklyDays:    spec.WeeklyDayNames(),
		TaskTime:      spec.TaskTime.String(),
		DurationHours: spec.DurationHours,
		DefaultRole:   spec.DefaultRole,
		TaskTemplate:  spec.TaskTemplate,
		CreatedAt:     project.CreatedAt,
		UpdatedAt:     project.UpdatedAt,
	}
	if spec.EndDate != nil {
		end := spec.EndDate.Format("2006-01-02")
		resp.EndDate = &end
	}
	return resp
}

// toScheduleSpec converts the request payload to a domain schedule spec.
// Parse failures surface as field-level validation errors; spec-level
// invariants are checked later by the orchestrator.
func (req *ProjectRequest) toScheduleSpec() (domain.ScheduleSpec, error) {
	scheduleType, err := domain.ParseScheduleType(req.ScheduleType)
	if err != nil {
		return domain.ScheduleSpec{}, domain.NewValidationError(
			"schedule_type", "is not a supported recurrence kind", err)
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return domain.ScheduleSpec{}, domain.NewValidationError(
			"start_date", "must use the 2006-01-02 format", domain.ErrValidation)
	}

	spec := domain.NewScheduleSpec(scheduleType, startDate)
	spec.IntervalDays = req.IntervalDays
	spec.TaskTemplate = req.TaskTemplate

	if req.EndDate != nil {
		endDate, err := time.Parse("2006-01-02", *req.EndDate)
		if err != nil {
			return domain.ScheduleSpec{}, domain.NewValidationError(
				"end_date", "must use the 2006-01-02 format", domain.ErrValidation)
		}
		endDate = domain.DateOnly(endDate)
		spec.EndDate = &endDate
	}

	for _, name := range req.WeeklyDays {
		day, err := domain.ParseWeekday(name)
		if err != nil {
			return domain.ScheduleSpec{}, domain.NewValidationError(
				"weekly_days", "contains an unknown weekday name", err)
		}
		spec.WeeklyDays = append(spec.WeeklyDays, day)
	}

	if req.TaskTime != nil {
		parsed, err := time.Parse("15:04:05", *req.TaskTime)
		if err != nil {
			return domain.ScheduleSpec{}, domain.NewValidationError(
				"task_time", "must use the 15:04:05 format", domain.ErrValidation)
		}
		spec.TaskTime = domain.TimeOfDay{
			Hour:   parsed.Hour(),
			Minute: parsed.Minute(),
			Second: parsed.Second(),
		}
	}
	if req.DurationHours != nil {
		spec.DurationHours = *req.DurationHours
	}
	if req.DefaultRole != nil {
		spec.DefaultRole = *req.DefaultRole
	}

	return spec, nil
}
