package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTaskRecord(t *testing.T) {
	projectID := uuid.New()
	due := time.Date(2026, 4, 1, 14, 0, 0, 0, time.UTC)

	task, err := NewTaskRecord(projectID, "Inspection - 2026-04-01", due)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, task.ID)
	assert.Equal(t, projectID, task.ProjectID)
	assert.Equal(t, "Inspection - 2026-04-01", task.Title)
	assert.Equal(t, due, task.DueAtUTC)
	assert.Equal(t, TaskStatusPending, task.Status)
	assert.Nil(t, task.AssignedTo)
	assert.False(t, task.AutoGenerated)
	assert.False(t, task.CreatedAt.IsZero())
	assert.Equal(t, task.CreatedAt, task.UpdatedAt)
}

func TestNewTaskRecordValidation(t *testing.T) {
	due := time.Date(2026, 4, 1, 14, 0, 0, 0, time.UTC)

	_, err := NewTaskRecord(uuid.Nil, "Title", due)
	assert.ErrorIs(t, err, ErrEmptyTaskProjectID)

	_, err = NewTaskRecord(uuid.New(), "", due)
	assert.ErrorIs(t, err, ErrEmptyTaskTitle)

	_, err = NewTaskRecord(uuid.New(), "Title", time.Time{})
	assert.ErrorIs(t, err, ErrEmptyTaskDueDate)
}

func TestTaskRecordValidate(t *testing.T) {
	task, err := NewTaskRecord(uuid.New(), "Title", time.Now().UTC())
	require.NoError(t, err)

	task.Status = "Done"
	assert.ErrorIs(t, task.Validate(), ErrInvalidTaskStatus)

	task.Status = TaskStatusCompleted
	assert.NoError(t, task.Validate())

	task.ID = uuid.Nil
	assert.ErrorIs(t, task.Validate(), ErrEmptyTaskID)
}

func TestTaskRecordUpdateStatus(t *testing.T) {
	task, err := NewTaskRecord(uuid.New(), "Title", time.Now().UTC())
	require.NoError(t, err)
	created := task.UpdatedAt

	require.NoError(t, task.UpdateStatus(TaskStatusInProgress))
	assert.Equal(t, TaskStatusInProgress, task.Status)
	assert.False(t, task.UpdatedAt.Before(created))

	err = task.UpdateStatus("Archived")
	assert.ErrorIs(t, err, ErrInvalidTaskStatus)
	assert.Equal(t, TaskStatusInProgress, task.Status,
		"a rejected status change should leave the task untouched")
}

func TestTaskRecordAssignTo(t *testing.T) {
	task, err := NewTaskRecord(uuid.New(), "Title", time.Now().UTC())
	require.NoError(t, err)

	userID := uuid.New()
	task.AssignTo(&userID)
	require.NotNil(t, task.AssignedTo)
	assert.Equal(t, userID, *task.AssignedTo)

	task.AssignTo(nil)
	assert.Nil(t, task.AssignedTo)
}

func TestTaskRecordDueDate(t *testing.T) {
	task, err := NewTaskRecord(uuid.New(), "Title", time.Date(2026, 4, 2, 2, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	task.DueLocal = time.Date(2026, 4, 1, 21, 0, 0, 0, time.UTC)

	// Reconciliation keys on the local calendar date, not the UTC one.
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), task.DueDate())
}

func TestTaskRecordTerminal(t *testing.T) {
	tests := []struct {
		status TaskStatus
		want   bool
	}{
		{TaskStatusPending, false},
		{TaskStatusInProgress, false},
		{TaskStatusCompleted, true},
		{TaskStatusCancelled, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			task := &TaskRecord{Status: tt.status}
			assert.Equal(t, tt.want, task.Terminal())
		})
	}
}

func TestParseTaskStatus(t *testing.T) {
	status, err := ParseTaskStatus("In Progress")
	require.NoError(t, err)
	assert.Equal(t, TaskStatusInProgress, status)

	_, err = ParseTaskStatus("in progress")
	assert.ErrorIs(t, err, ErrInvalidTaskStatus)

	_, err = ParseTaskStatus("")
	assert.ErrorIs(t, err, ErrInvalidTaskStatus)
}

func TestNewProject(t *testing.T) {
	ownerID := uuid.New()
	spec := NewScheduleSpec(ScheduleDaily, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))

	project, err := NewProject(ownerID, "Plant Maintenance", "Acme", spec)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, project.ID)
	assert.Equal(t, ownerID, project.OwnerID)
	assert.Equal(t, spec, project.Schedule)

	_, err = NewProject(ownerID, "", "Acme", spec)
	assert.ErrorIs(t, err, ErrEmptyProjectName)

	_, err = NewProject(uuid.Nil, "Plant Maintenance", "Acme", spec)
	assert.ErrorIs(t, err, ErrEmptyProjectOwnerID)
}
