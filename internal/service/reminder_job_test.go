package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/planner-api/internal/domain"
	"github.com/phrazzld/planner-api/internal/events"
)

func TestReminderJobRunOnce(t *testing.T) {
	tasks := &mockTaskStore{}
	emitter := &mockEmitter{}

	assigneeID := uuid.New()
	dueToday := storedTask(t)
	dueToday.DueLocal = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	dueToday.Timezone = "America/New_York"
	dueToday.AssignedTo = &assigneeID
	alsoDue := storedTask(t)
	alsoDue.DueLocal = time.Date(2026, 4, 1, 14, 0, 0, 0, time.UTC)
	alsoDue.Timezone = "UTC"

	tasks.FindDueOnFn = func(_ context.Context, date string) ([]*domain.TaskRecord, error) {
		assert.Equal(t, "2026-04-01", date)
		return []*domain.TaskRecord{dueToday, alsoDue}, nil
	}

	job, err := NewReminderJob(tasks, emitter, "0 7 * * *", testLogger())
	require.NoError(t, err)

	sweepDay := time.Date(2026, 4, 1, 7, 0, 0, 0, time.UTC)
	require.NoError(t, job.RunOnce(context.Background(), sweepDay))

	require.Len(t, emitter.Events, 2)
	assert.Equal(t, []string{events.EventTaskDueReminder, events.EventTaskDueReminder},
		emitter.eventTypes())

	var payload events.DueReminderPayload
	require.NoError(t, emitter.Events[0].UnmarshalPayload(&payload))
	assert.Equal(t, dueToday.ID, payload.TaskID)
	assert.Equal(t, "2026-04-01 09:00:00", payload.DueLocal)
	assert.Equal(t, "America/New_York", payload.Timezone)
	require.NotNil(t, payload.AssigneeID)
	assert.Equal(t, assigneeID, *payload.AssigneeID)

	var unassigned events.DueReminderPayload
	require.NoError(t, emitter.Events[1].UnmarshalPayload(&unassigned))
	assert.Nil(t, unassigned.AssigneeID)
}

func TestReminderJobRunOnceNothingDue(t *testing.T) {
	emitter := &mockEmitter{}
	job, err := NewReminderJob(&mockTaskStore{}, emitter, "0 7 * * *", testLogger())
	require.NoError(t, err)

	require.NoError(t, job.RunOnce(context.Background(), time.Now().UTC()))
	assert.Empty(t, emitter.Events)
}

func TestReminderJobStartInvalidCron(t *testing.T) {
	job, err := NewReminderJob(&mockTaskStore{}, &mockEmitter{}, "not a cron line", testLogger())
	require.NoError(t, err)

	err = job.Start()
	require.Error(t, err)

	var serr *TaskServiceError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "reminder_start", serr.Operation)
}

func TestReminderJobStartAndStop(t *testing.T) {
	job, err := NewReminderJob(&mockTaskStore{}, &mockEmitter{}, "0 7 * * *", testLogger())
	require.NoError(t, err)

	require.NoError(t, job.Start())
	job.Stop()
}
