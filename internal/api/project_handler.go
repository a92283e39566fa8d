package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/phrazzld/planner-api/internal/api/shared"
	"github.com/phrazzld/planner-api/internal/domain"
	"github.com/phrazzld/planner-api/internal/platform/logger"
	"github.com/phrazzld/planner-api/internal/schedule"
	"github.com/phrazzld/planner-api/internal/service"
	"github.com/phrazzld/planner-api/internal/store"
)

// ProjectHandler handles project and schedule-related HTTP requests.
type ProjectHandler struct {
	plannerService service.PlannerService
	projectStore   store.ProjectStore
	previewDays    int
	logger         *slog.Logger
}

// NewProjectHandler creates a new ProjectHandler with the given dependencies.
// previewDays is the default window length for date previews.
func NewProjectHandler(
	plannerService service.PlannerService,
	projectStore store.ProjectStore,
	previewDays int,
	logger *slog.Logger,
) *ProjectHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProjectHandler{
		plannerService: plannerService,
		projectStore:   projectStore,
		previewDays:    previewDays,
		logger:         logger.With(slog.String("component", "project_handler")),
	}
}

// CreateProject handles POST /api/projects.
// It persists the project and generates its initial task collection.
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	actorID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req ProjectRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	spec, err := req.toScheduleSpec()
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	project, err := domain.NewProject(actorID, req.Name, req.Organization, spec)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	result, err := h.plannerService.SaveProject(r.Context(), project)
	if err != nil {
		h.respondScheduleError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, SaveProjectResponse{
		Project:      newProjectResponse(project),
		TaskCount:    result.TaskCount,
		CreatedCount: result.Created,
	})
}

// UpdateProject handles PUT /api/projects/{id}.
// Schedule changes trigger regeneration; a name or template change alone
// rewrites titles without touching dates.
func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	actorID, projectID, ok := requireActorAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req ProjectRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	spec, err := req.toScheduleSpec()
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	existing, err := h.projectStore.GetByID(r.Context(), projectID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	if existing.OwnerID != actorID {
		shared.RespondWithError(w, r, http.StatusForbidden, "You do not own this project")
		return
	}

	existing.Name = req.Name
	existing.Organization = req.Organization
	existing.Schedule = spec

	result, err := h.plannerService.SaveProject(r.Context(), existing)
	if err != nil {
		h.respondScheduleError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SaveProjectResponse{
		Project:      newProjectResponse(existing),
		TaskCount:    result.TaskCount,
		CreatedCount: result.Created,
	})
}

// ListProjects handles GET /api/projects.
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	if _, ok := getUserIDFromContext(r); !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	projects, err := h.projectStore.List(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	responses := make([]ProjectResponse, 0, len(projects))
	for _, project := range projects {
		responses = append(responses, newProjectResponse(project))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// RegenerateTasks handles POST /api/projects/{id}/regenerate.
func (h *ProjectHandler) RegenerateTasks(w http.ResponseWriter, r *http.Request) {
	_, projectID, ok := requireActorAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	log := logger.FromContextOrDefault(r.Context(), h.logger)

	result, err := h.plannerService.RegenerateTasks(r.Context(), projectID)
	if err != nil {
		h.respondScheduleError(w, r, err)
		return
	}

	log.Info("task regeneration requested",
		slog.String("project_id", projectID.String()),
		slog.Int("task_count", result.TaskCount))

	shared.RespondWithJSON(w, r, http.StatusOK, RegenerateResponse{
		Success:        true,
		TaskCount:      result.TaskCount,
		CreatedCount:   result.Created,
		PreservedCount: result.Preserved,
	})
}

// PreviewDates handles GET /api/projects/{id}/preview?days=N.
func (h *ProjectHandler) PreviewDates(w http.ResponseWriter, r *http.Request) {
	_, projectID, ok := requireActorAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	days := h.previewDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		days = parsed
	}

	dates, err := h.plannerService.PreviewUpcomingDates(r.Context(), projectID, days)
	if err != nil {
		h.respondScheduleError(w, r, err)
		return
	}

	formatted := make([]string, 0, len(dates))
	for _, date := range dates {
		formatted = append(formatted, date.Format("2006-01-02"))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, PreviewResponse{
		Dates: formatted,
		Count: len(formatted),
	})
}

// respondScheduleError renders schedule validation failures with their
// full violation list; everything else goes through the standard mapping.
func (h *ProjectHandler) respondScheduleError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *schedule.ValidationError
	if errors.As(err, &validationErr) {
		shared.RespondWithJSON(w, r, http.StatusBadRequest, map[string]any{
			"error":      "invalid schedule spec",
			"violations": validationErr.Violations,
		})
		return
	}

	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
}
