package api

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/phrazzld/planner-api/internal/api/shared"
	"github.com/phrazzld/planner-api/internal/domain"
	"github.com/phrazzld/planner-api/internal/service"
	"github.com/phrazzld/planner-api/internal/store"
)

// Function-field mocks for the service interfaces the handlers depend on.

type mockPlannerService struct {
	SaveProjectFn            func(ctx context.Context, project *domain.Project) (service.RegenerationResult, error)
	RegenerateTasksFn        func(ctx context.Context, projectID uuid.UUID) (service.RegenerationResult, error)
	PreviewUpcomingDatesFn   func(ctx context.Context, projectID uuid.UUID, days int) ([]time.Time, error)
	FormattedDueDateFn       func(ctx context.Context, taskID uuid.UUID, viewerID *uuid.UUID, actorID uuid.UUID) (string, error)
	DiagnoseTimezoneFn       func(ctx context.Context, taskID uuid.UUID) (service.TimezoneDiagnosis, error)
	BackfillTimezoneFieldsFn func(ctx context.Context, projectID *uuid.UUID) (service.BackfillResult, error)
}

var _ service.PlannerService = (*mockPlannerService)(nil)

func (m *mockPlannerService) SaveProject(ctx context.Context, project *domain.Project) (service.RegenerationResult, error) {
	if m.SaveProjectFn != nil {
		return m.SaveProjectFn(ctx, project)
	}
	return service.RegenerationResult{}, nil
}

func (m *mockPlannerService) RegenerateTasks(ctx context.Context, projectID uuid.UUID) (service.RegenerationResult, error) {
	if m.RegenerateTasksFn != nil {
		return m.RegenerateTasksFn(ctx, projectID)
	}
	return service.RegenerationResult{}, nil
}

func (m *mockPlannerService) PreviewUpcomingDates(ctx context.Context, projectID uuid.UUID, days int) ([]time.Time, error) {
	if m.PreviewUpcomingDatesFn != nil {
		return m.PreviewUpcomingDatesFn(ctx, projectID, days)
	}
	return nil, nil
}

func (m *mockPlannerService) FormattedDueDate(ctx context.Context, taskID uuid.UUID, viewerID *uuid.UUID, actorID uuid.UUID) (string, error) {
	if m.FormattedDueDateFn != nil {
		return m.FormattedDueDateFn(ctx, taskID, viewerID, actorID)
	}
	return "", nil
}

func (m *mockPlannerService) DiagnoseTimezone(ctx context.Context, taskID uuid.UUID) (service.TimezoneDiagnosis, error) {
	if m.DiagnoseTimezoneFn != nil {
		return m.DiagnoseTimezoneFn(ctx, taskID)
	}
	return service.TimezoneDiagnosis{}, nil
}

func (m *mockPlannerService) BackfillTimezoneFields(ctx context.Context, projectID *uuid.UUID) (service.BackfillResult, error) {
	if m.BackfillTimezoneFieldsFn != nil {
		return m.BackfillTimezoneFieldsFn(ctx, projectID)
	}
	return service.BackfillResult{}, nil
}

type mockTaskService struct {
	ListForUserFn  func(ctx context.Context, actorID uuid.UUID, opts service.ListOptions) (*service.TaskListing, error)
	UpdateStatusFn func(ctx context.Context, taskID, actorID uuid.UUID, status domain.TaskStatus) (*domain.TaskRecord, error)
	AssignFn       func(ctx context.Context, taskID, assigneeID, actorID uuid.UUID) (*domain.TaskRecord, error)
}

var _ service.TaskService = (*mockTaskService)(nil)

func (m *mockTaskService) ListForUser(ctx context.Context, actorID uuid.UUID, opts service.ListOptions) (*service.TaskListing, error) {
	if m.ListForUserFn != nil {
		return m.ListForUserFn(ctx, actorID, opts)
	}
	return &service.TaskListing{Tasks: []*domain.TaskRecord{}}, nil
}

func (m *mockTaskService) UpdateStatus(ctx context.Context, taskID, actorID uuid.UUID, status domain.TaskStatus) (*domain.TaskRecord, error) {
	if m.UpdateStatusFn != nil {
		return m.UpdateStatusFn(ctx, taskID, actorID, status)
	}
	return nil, store.ErrTaskNotFound
}

func (m *mockTaskService) Assign(ctx context.Context, taskID, assigneeID, actorID uuid.UUID) (*domain.TaskRecord, error) {
	if m.AssignFn != nil {
		return m.AssignFn(ctx, taskID, assigneeID, actorID)
	}
	return nil, store.ErrTaskNotFound
}

type mockProjectStore struct {
	CreateFn  func(ctx context.Context, project *domain.Project) error
	GetByIDFn func(ctx context.Context, id uuid.UUID) (*domain.Project, error)
	UpdateFn  func(ctx context.Context, project *domain.Project) error
	ListFn    func(ctx context.Context) ([]*domain.Project, error)
}

var _ store.ProjectStore = (*mockProjectStore)(nil)

func (m *mockProjectStore) Create(ctx context.Context, project *domain.Project) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, project)
	}
	return nil
}

func (m *mockProjectStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, store.ErrProjectNotFound
}

func (m *mockProjectStore) Update(ctx context.Context, project *domain.Project) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, project)
	}
	return nil
}

func (m *mockProjectStore) List(ctx context.Context) ([]*domain.Project, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return nil, nil
}

func (m *mockProjectStore) WithTx(tx *sql.Tx) store.ProjectStore { return m }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// authedRequest builds a request carrying the acting user ID and, when
// params are given, a chi route context with those URL parameters.
func authedRequest(method, target string, body io.Reader, actorID uuid.UUID, params map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, body)
	ctx := context.WithValue(req.Context(), shared.UserIDContextKey, actorID)

	if len(params) > 0 {
		routeCtx := chi.NewRouteContext()
		for key, value := range params {
			routeCtx.URLParams.Add(key, value)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, routeCtx)
	}

	return req.WithContext(ctx)
}
