package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phrazzld/planner-api/internal/domain"
	"github.com/phrazzld/planner-api/internal/events"
	"github.com/phrazzld/planner-api/internal/store"
)

// Function-field mocks for the store interfaces. Unset fields return zero
// values so each test configures only what it exercises.

type mockProjectStore struct {
	CreateFn  func(ctx context.Context, project *domain.Project) error
	GetByIDFn func(ctx context.Context, id uuid.UUID) (*domain.Project, error)
	UpdateFn  func(ctx context.Context, project *domain.Project) error
	ListFn    func(ctx context.Context) ([]*domain.Project, error)
}

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

type mockTaskStore struct {
	GetByIDFn                 func(ctx context.Context, id uuid.UUID) (*domain.TaskRecord, error)
	FindByProjectFn           func(ctx context.Context, projectID uuid.UUID) ([]*domain.TaskRecord, error)
	ReplaceForProjectFn       func(ctx context.Context, projectID uuid.UUID, tasks []*domain.TaskRecord) error
	UpdateFn                  func(ctx context.Context, task *domain.TaskRecord) error
	UpdateTitlesFn            func(ctx context.Context, titles map[uuid.UUID]string) error
	FindWithFilterFn          func(ctx context.Context, filter store.TaskFilter) ([]*domain.TaskRecord, error)
	CountByStatusFn           func(ctx context.Context, filter store.TaskFilter) (store.TaskStats, error)
	FindDueOnFn               func(ctx context.Context, date string) ([]*domain.TaskRecord, error)
	FindMissingTimezoneDataFn func(ctx context.Context, projectID *uuid.UUID) ([]store.LegacyTaskRow, error)
	BackfillTimezoneFieldsFn  func(ctx context.Context, id uuid.UUID, task *domain.TaskRecord) error
}

func (m *mockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.TaskRecord, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, store.ErrTaskNotFound
}

func (m *mockTaskStore) FindByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.TaskRecord, error) {
	if m.FindByProjectFn != nil {
		return m.FindByProjectFn(ctx, projectID)
	}
	return nil, nil
}

func (m *mockTaskStore) ReplaceForProject(ctx context.Context, projectID uuid.UUID, tasks []*domain.TaskRecord) error {
	if m.ReplaceForProjectFn != nil {
		return m.ReplaceForProjectFn(ctx, projectID, tasks)
	}
	return nil
}

func (m *mockTaskStore) Update(ctx context.Context, task *domain.TaskRecord) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, task)
	}
	return nil
}

func (m *mockTaskStore) UpdateTitles(ctx context.Context, titles map[uuid.UUID]string) error {
	if m.UpdateTitlesFn != nil {
		return m.UpdateTitlesFn(ctx, titles)
	}
	return nil
}

func (m *mockTaskStore) FindWithFilter(ctx context.Context, filter store.TaskFilter) ([]*domain.TaskRecord, error) {
	if m.FindWithFilterFn != nil {
		return m.FindWithFilterFn(ctx, filter)
	}
	return nil, nil
}

func (m *mockTaskStore) CountByStatus(ctx context.Context, filter store.TaskFilter) (store.TaskStats, error) {
	if m.CountByStatusFn != nil {
		return m.CountByStatusFn(ctx, filter)
	}
	return store.TaskStats{}, nil
}

func (m *mockTaskStore) FindDueOn(ctx context.Context, date string) ([]*domain.TaskRecord, error) {
	if m.FindDueOnFn != nil {
		return m.FindDueOnFn(ctx, date)
	}
	return nil, nil
}

func (m *mockTaskStore) FindMissingTimezoneData(ctx context.Context, projectID *uuid.UUID) ([]store.LegacyTaskRow, error) {
	if m.FindMissingTimezoneDataFn != nil {
		return m.FindMissingTimezoneDataFn(ctx, projectID)
	}
	return nil, nil
}

func (m *mockTaskStore) BackfillTimezoneFields(ctx context.Context, id uuid.UUID, task *domain.TaskRecord) error {
	if m.BackfillTimezoneFieldsFn != nil {
		return m.BackfillTimezoneFieldsFn(ctx, id, task)
	}
	return nil
}

func (m *mockTaskStore) WithTx(tx *sql.Tx) store.TaskStore { return m }

type mockUserStore struct {
	GetByIDFn     func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetTimezoneFn func(ctx context.Context, id uuid.UUID) (string, error)
}

func (m *mockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, store.ErrUserNotFound
}

func (m *mockUserStore) GetTimezone(ctx context.Context, id uuid.UUID) (string, error) {
	if m.GetTimezoneFn != nil {
		return m.GetTimezoneFn(ctx, id)
	}
	return "", nil
}

func (m *mockUserStore) WithTx(tx *sql.Tx) store.UserStore { return m }

// mockEmitter records every emitted event.
type mockEmitter struct {
	Events  []*events.TaskEvent
	EmitErr error
}

func (m *mockEmitter) EmitEvent(_ context.Context, event *events.TaskEvent) error {
	if m.EmitErr != nil {
		return m.EmitErr
	}
	m.Events = append(m.Events, event)
	return nil
}

func (m *mockEmitter) eventTypes() []string {
	types := make([]string, len(m.Events))
	for i, event := range m.Events {
		types[i] = event.Type
	}
	return types
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
