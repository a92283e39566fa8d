package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/planner-api/internal/api/shared"
	"github.com/phrazzld/planner-api/internal/domain"
	"github.com/phrazzld/planner-api/internal/service"
	"github.com/phrazzld/planner-api/internal/store"
)

// TaskHandler handles task-related HTTP requests.
type TaskHandler struct {
	taskService    service.TaskService
	plannerService service.PlannerService
	logger         *slog.Logger
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
func NewTaskHandler(
	taskService service.TaskService,
	plannerService service.PlannerService,
	logger *slog.Logger,
) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		taskService:    taskService,
		plannerService: plannerService,
		logger:         logger.With(slog.String("component", "task_handler")),
	}
}

// ListTasks handles GET /api/tasks.
// Query parameters: status, due (today/week/month/overdue), search.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	actorID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	query := r.URL.Query()
	opts := service.ListOptions{
		Status: query.Get("status"),
		Search: query.Get("search"),
	}
	switch due := store.DueWindow(query.Get("due")); due {
	case store.DueAny, store.DueToday, store.DueWeek, store.DueMonth, store.DueOverdue:
		opts.Due = due
	default:
		shared.RespondWithError(w, r, http.StatusBadRequest, "due must be today, week, month, or overdue")
		return
	}

	listing, err := h.taskService.ListForUser(r.Context(), actorID, opts)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	tasks := make([]TaskResponse, 0, len(listing.Tasks))
	for _, task := range listing.Tasks {
		tasks = append(tasks, newTaskResponse(task))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, TaskListResponse{
		Tasks: tasks,
		Count: listing.Count,
		Stats: listing.Stats,
	})
}

// UpdateStatus handles PATCH /api/tasks/{id}/status.
func (h *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actorID, taskID, ok := requireActorAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	status, err := domain.ParseTaskStatus(req.Status)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	task, err := h.taskService.UpdateStatus(r.Context(), taskID, actorID, status)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newTaskResponse(task))
}

// Assign handles POST /api/tasks/{id}/assign.
func (h *TaskHandler) Assign(w http.ResponseWriter, r *http.Request) {
	actorID, taskID, ok := requireActorAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req AssignRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if req.UserID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "user_id is required")
		return
	}

	task, err := h.taskService.Assign(r.Context(), taskID, req.UserID, actorID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newTaskResponse(task))
}

// DueDate handles GET /api/tasks/{id}/due-date?viewer=.
// Without a viewer parameter the assignee's timezone is used when the
// task is assigned, falling back to the acting user's.
func (h *TaskHandler) DueDate(w http.ResponseWriter, r *http.Request) {
	actorID, taskID, ok := requireActorAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var viewerID *uuid.UUID
	if raw := r.URL.Query().Get("viewer"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "viewer must be a valid UUID")
			return
		}
		viewerID = &parsed
	}

	formatted, err := h.plannerService.FormattedDueDate(r.Context(), taskID, viewerID, actorID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, DueDateResponse{
		TaskID:    taskID,
		Formatted: formatted,
	})
}

// Diagnose handles GET /api/tasks/{id}/diagnose.
func (h *TaskHandler) Diagnose(w http.ResponseWriter, r *http.Request) {
	_, taskID, ok := requireActorAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	diagnosis, err := h.plannerService.DiagnoseTimezone(r.Context(), taskID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, diagnosis)
}
