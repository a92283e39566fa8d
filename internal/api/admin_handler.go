package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/planner-api/internal/api/shared"
	"github.com/phrazzld/planner-api/internal/service"
)

// AdminHandler handles operational endpoints.
type AdminHandler struct {
	plannerService service.PlannerService
	logger         *slog.Logger
}

// NewAdminHandler creates a new AdminHandler with the given dependencies.
func NewAdminHandler(plannerService service.PlannerService, logger *slog.Logger) *AdminHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminHandler{
		plannerService: plannerService,
		logger:         logger.With(slog.String("component", "admin_handler")),
	}
}

// BackfillTimezones handles POST /api/admin/backfill-timezones[?project_id=].
// It derives the canonical timezone fields for legacy task rows; per-record
// failures are reported in the response, never abort the run.
func (h *AdminHandler) BackfillTimezones(w http.ResponseWriter, r *http.Request) {
	if _, ok := getUserIDFromContext(r); !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var projectID *uuid.UUID
	if raw := r.URL.Query().Get("project_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "project_id must be a valid UUID")
			return
		}
		projectID = &parsed
	}

	result, err := h.plannerService.BackfillTimezoneFields(r.Context(), projectID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, BackfillResponse{
		FixedCount: result.FixedCount,
		Errors:     result.Errors,
	})
}
