package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Project.
var (
	ErrEmptyProjectID      = errors.New("project ID cannot be empty")
	ErrEmptyProjectName    = errors.New("project name cannot be empty")
	ErrEmptyProjectOwnerID = errors.New("project owner ID cannot be empty")
)

// Project is the aggregate that owns a recurring schedule and the task
// records generated from it. Task records always belong to exactly one
// project; regeneration replaces the project's collection wholesale.
type Project struct {
	ID           uuid.UUID    `json:"id"`
	Name         string       `json:"name"`
	Organization string       `json:"organization"`
	OwnerID      uuid.UUID    `json:"owner_id"`
	Schedule     ScheduleSpec `json:"schedule"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// NewProject creates a new Project with the given owner, name, and schedule.
// Returns an error if validation fails.
func NewProject(ownerID uuid.UUID, name, organization string, schedule ScheduleSpec) (*Project, error) {
	now := time.Now().UTC()
	project := &Project{
		ID:           uuid.New(),
		Name:         name,
		Organization: organization,
		OwnerID:      ownerID,
		Schedule:     schedule,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := project.Validate(); err != nil {
		return nil, err
	}

	return project, nil
}

// Validate checks if the Project has valid data. Schedule invariants are
// not checked here; they are the orchestrator's concern and are reported
// collected rather than one at a time.
func (p *Project) Validate() error {
	if p.ID == uuid.Nil {
		return ErrEmptyProjectID
	}

	if p.Name == "" {
		return ErrEmptyProjectName
	}

	if p.OwnerID == uuid.Nil {
		return ErrEmptyProjectOwnerID
	}

	return nil
}

// User is a collaborator entity: the owner of projects, the assignee of
// tasks, and the source of timezone preferences. Credential and role
// management live outside this service.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Timezone     string    `json:"timezone,omitempty"`
	Role         string    `json:"role,omitempty"`
	Organization string    `json:"organization,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
