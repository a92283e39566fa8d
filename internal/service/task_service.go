package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/planner-api/internal/domain"
	"github.com/phrazzld/planner-api/internal/events"
	"github.com/phrazzld/planner-api/internal/store"
)

// ListOptions narrows a task listing. All fields are optional.
type ListOptions struct {
	Status string
	Due    store.DueWindow
	Search string
}

// TaskListing is a filtered task list with its status rollup.
type TaskListing struct {
	Tasks []*domain.TaskRecord `json:"tasks"`
	Count int                  `json:"count"`
	Stats store.TaskStats      `json:"stats"`
}

// TaskService provides collaborator-facing task operations.
type TaskService interface {
	// ListForUser retrieves the tasks visible to the actor: records
	// assigned to them plus unassigned records matching their role within
	// their organization, narrowed by the given options, with a status
	// rollup computed over the unsearched visible set.
	ListForUser(ctx context.Context, actorID uuid.UUID, opts ListOptions) (*TaskListing, error)

	// UpdateStatus transitions a task to the given workflow status and
	// emits a status-changed event.
	UpdateStatus(ctx context.Context, taskID, actorID uuid.UUID, status domain.TaskStatus) (*domain.TaskRecord, error)

	// Assign assigns a task to the given user and emits an assignment
	// event. The assignee must exist.
	Assign(ctx context.Context, taskID, assigneeID, actorID uuid.UUID) (*domain.TaskRecord, error)
}

// taskServiceImpl implements the TaskService interface.
type taskServiceImpl struct {
	taskStore store.TaskStore
	userStore store.UserStore
	emitter   events.EventEmitter
	logger    *slog.Logger
}

// NewTaskService creates a new TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	taskStore store.TaskStore,
	userStore store.UserStore,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (TaskService, error) {
	if taskStore == nil {
		return nil, NewTaskServiceError("init", "taskStore cannot be nil", domain.ErrValidation)
	}
	if userStore == nil {
		return nil, NewTaskServiceError("init", "userStore cannot be nil", domain.ErrValidation)
	}
	if emitter == nil {
		return nil, NewTaskServiceError("init", "emitter cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		taskStore: taskStore,
		userStore: userStore,
		emitter:   emitter,
		logger:    logger.With(slog.String("component", "task_service")),
	}, nil
}

// ListForUser implements TaskService.ListForUser.
func (s *taskServiceImpl) ListForUser(
	ctx context.Context,
	actorID uuid.UUID,
	opts ListOptions,
) (*TaskListing, error) {
	actor, err := s.userStore.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	filter := store.TaskFilter{
		Due:          opts.Due,
		Search:       opts.Search,
		AssignedTo:   &actorID,
		Organization: actor.Organization,
	}
	if actor.Role != "" {
		filter.Roles = []string{actor.Role}
	}
	if opts.Status != "" {
		status, err := domain.ParseTaskStatus(opts.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = &status
	}

	tasks, err := s.taskStore.FindWithFilter(ctx, filter)
	if err != nil {
		return nil, NewTaskServiceError("list_for_user", "failed to list tasks", err)
	}

	stats, err := s.taskStore.CountByStatus(ctx, filter)
	if err != nil {
		return nil, NewTaskServiceError("list_for_user", "failed to compute stats", err)
	}

	if tasks == nil {
		tasks = []*domain.TaskRecord{}
	}
	return &TaskListing{Tasks: tasks, Count: len(tasks), Stats: stats}, nil
}

// UpdateStatus implements TaskService.UpdateStatus.
func (s *taskServiceImpl) UpdateStatus(
	ctx context.Context,
	taskID, actorID uuid.UUID,
	status domain.TaskStatus,
) (*domain.TaskRecord, error) {
	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	oldStatus := task.Status
	if err := task.UpdateStatus(status); err != nil {
		return nil, err
	}

	if err := s.taskStore.Update(ctx, task); err != nil {
		return nil, NewTaskServiceError("update_status", "failed to save task", err)
	}

	s.emit(ctx, events.EventTaskStatusChanged, events.StatusChangedPayload{
		TaskID:    task.ID,
		ProjectID: task.ProjectID,
		OldStatus: string(oldStatus),
		NewStatus: string(status),
		ActorID:   actorID,
	})

	s.logger.Info("task status updated",
		slog.String("task_id", taskID.String()),
		slog.String("old_status", string(oldStatus)),
		slog.String("new_status", string(status)))
	return task, nil
}

// Assign implements TaskService.Assign.
func (s *taskServiceImpl) Assign(
	ctx context.Context,
	taskID, assigneeID, actorID uuid.UUID,
) (*domain.TaskRecord, error) {
	if _, err := s.userStore.GetByID(ctx, assigneeID); err != nil {
		return nil, err
	}

	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	task.AssignTo(&assigneeID)

	if err := s.taskStore.Update(ctx, task); err != nil {
		return nil, NewTaskServiceError("assign", "failed to save task", err)
	}

	s.emit(ctx, events.EventTaskAssigned, events.AssignedPayload{
		TaskID:     task.ID,
		ProjectID:  task.ProjectID,
		AssigneeID: assigneeID,
		ActorID:    actorID,
	})

	s.logger.Info("task assigned",
		slog.String("task_id", taskID.String()),
		slog.String("assignee_id", assigneeID.String()))
	return task, nil
}

func (s *taskServiceImpl) emit(ctx context.Context, eventType string, payload any) {
	event, err := events.NewTaskEvent(eventType, payload)
	if err != nil {
		s.logger.Error("failed to build event",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()))
		return
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		s.logger.Error("failed to emit event",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()))
	}
}
