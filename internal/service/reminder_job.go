package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/phrazzld/planner-api/internal/events"
	"github.com/phrazzld/planner-api/internal/store"
)

// ReminderJob runs the daily due-task sweep on a cron schedule. Each task
// due on the sweep date produces a reminder event; delivering reminders to
// users is the job of an external notifier subscribed to those events.
type ReminderJob struct {
	taskStore store.TaskStore
	emitter   events.EventEmitter
	cronSpec  string
	logger    *slog.Logger

	cron *cron.Cron
}

// NewReminderJob creates a ReminderJob that fires on the given cron
// expression (standard five-field syntax, e.g. "0 7 * * *").
func NewReminderJob(
	taskStore store.TaskStore,
	emitter events.EventEmitter,
	cronSpec string,
	logger *slog.Logger,
) (*ReminderJob, error) {
	if taskStore == nil {
		return nil, NewTaskServiceError("reminder_init", "taskStore cannot be nil", nil)
	}
	if emitter == nil {
		return nil, NewTaskServiceError("reminder_init", "emitter cannot be nil", nil)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ReminderJob{
		taskStore: taskStore,
		emitter:   emitter,
		cronSpec:  cronSpec,
		logger:    logger.With(slog.String("component", "reminder_job")),
	}, nil
}

// Start registers the sweep with the cron scheduler and begins running it.
func (j *ReminderJob) Start() error {
	j.cron = cron.New()
	_, err := j.cron.AddFunc(j.cronSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := j.RunOnce(ctx, time.Now().UTC()); err != nil {
			j.logger.Error("reminder sweep failed", slog.String("error", err.Error()))
		}
	})
	if err != nil {
		return NewTaskServiceError("reminder_start", "invalid cron expression", err)
	}

	j.cron.Start()
	j.logger.Info("reminder job started", slog.String("cron", j.cronSpec))
	return nil
}

// Stop halts the scheduler. Running sweeps finish.
func (j *ReminderJob) Stop() {
	if j.cron != nil {
		j.cron.Stop()
		j.logger.Info("reminder job stopped")
	}
}

// RunOnce sweeps tasks due on the given day and emits a reminder event for
// each. Exposed so the sweep can be triggered outside the cron schedule.
func (j *ReminderJob) RunOnce(ctx context.Context, day time.Time) error {
	date := day.Format("2006-01-02")

	tasks, err := j.taskStore.FindDueOn(ctx, date)
	if err != nil {
		return NewTaskServiceError("reminder_sweep", "failed to find due tasks", err)
	}

	for _, task := range tasks {
		event, err := events.NewTaskEvent(events.EventTaskDueReminder, events.DueReminderPayload{
			TaskID:     task.ID,
			ProjectID:  task.ProjectID,
			Title:      task.Title,
			DueLocal:   task.DueLocal.Format("2006-01-02 15:04:05"),
			Timezone:   task.Timezone,
			AssigneeID: task.AssignedTo,
		})
		if err != nil {
			j.logger.Error("failed to build reminder event",
				slog.String("task_id", task.ID.String()),
				slog.String("error", err.Error()))
			continue
		}
		if err := j.emitter.EmitEvent(ctx, event); err != nil {
			j.logger.Error("failed to emit reminder event",
				slog.String("task_id", task.ID.String()),
				slog.String("error", err.Error()))
		}
	}

	j.logger.Info("reminder sweep complete",
		slog.String("date", date),
		slog.Int("due_tasks", len(tasks)))
	return nil
}
