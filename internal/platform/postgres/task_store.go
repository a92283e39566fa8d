package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/planner-api/internal/domain"
	"github.com/phrazzld/planner-api/internal/platform/logger"
	"github.com/phrazzld/planner-api/internal/store"
)

// TaskStore implements the store.TaskStore interface using a PostgreSQL
// database as the storage backend.
type TaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewTaskStore creates a new PostgreSQL implementation of the
// store.TaskStore interface. If logger is nil, a default logger is used.
func NewTaskStore(db store.DBTX, logger *slog.Logger) *TaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure TaskStore implements store.TaskStore.
var _ store.TaskStore = (*TaskStore)(nil)

const taskColumns = `id, project_id, title, due_at_utc, due_local, timezone,
		status, assigned_to, assigned_role, auto_generated, notes,
		organization, created_at, updated_at`

// GetByID implements store.TaskStore.GetByID.
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *TaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.TaskRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, mapError(err)
	}

	return task, nil
}

// FindByProject implements store.TaskStore.FindByProject.
func (s *TaskStore) FindByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.TaskRecord, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE project_id = $1 ORDER BY due_at_utc`
	return s.queryTasks(ctx, query, projectID)
}

// ReplaceForProject implements store.TaskStore.ReplaceForProject. It
// deletes the project's current records and inserts the new collection.
// Run it inside a transaction so the replacement is atomic.
func (s *TaskStore) ReplaceForProject(
	ctx context.Context,
	projectID uuid.UUID,
	tasks []*domain.TaskRecord,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE project_id = $1`, projectID); err != nil {
		log.Error("failed to clear project tasks",
			slog.String("error", err.Error()),
			slog.String("project_id", projectID.String()))
		return mapError(err)
	}

	insert := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	for _, task := range tasks {
		if err := task.Validate(); err != nil {
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}
		_, err := s.db.ExecContext(
			ctx,
			insert,
			task.ID,
			task.ProjectID,
			task.Title,
			task.DueAtUTC,
			task.DueLocal,
			task.Timezone,
			string(task.Status),
			task.AssignedTo,
			task.AssignedRole,
			task.AutoGenerated,
			task.Notes,
			task.Organization,
			task.CreatedAt,
			task.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to insert task during replace",
				slog.String("error", err.Error()),
				slog.String("task_id", task.ID.String()))
			return mapError(err)
		}
	}

	log.Info("project task collection replaced",
		slog.String("project_id", projectID.String()),
		slog.Int("count", len(tasks)))
	return nil
}

// Update implements store.TaskStore.Update.
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *TaskStore) Update(ctx context.Context, task *domain.TaskRecord) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE tasks
		SET title = $2, due_at_utc = $3, due_local = $4, timezone = $5,
			status = $6, assigned_to = $7, assigned_role = $8, notes = $9,
			updated_at = $10
		WHERE id = $1
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.Title,
		task.DueAtUTC,
		task.DueLocal,
		task.Timezone,
		string(task.Status),
		task.AssignedTo,
		task.AssignedRole,
		task.Notes,
		time.Now().UTC(),
	)
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return mapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return mapError(err)
	}
	if rows == 0 {
		return store.ErrTaskNotFound
	}

	return nil
}

// UpdateTitles implements store.TaskStore.UpdateTitles.
func (s *TaskStore) UpdateTitles(ctx context.Context, titles map[uuid.UUID]string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `UPDATE tasks SET title = $2, updated_at = $3 WHERE id = $1`
	now := time.Now().UTC()
	for id, title := range titles {
		if _, err := s.db.ExecContext(ctx, query, id, title, now); err != nil {
			log.Error("failed to update task title",
				slog.String("error", err.Error()),
				slog.String("task_id", id.String()))
			return mapError(err)
		}
	}
	return nil
}

// FindWithFilter implements store.TaskStore.FindWithFilter.
func (s *TaskStore) FindWithFilter(ctx context.Context, filter store.TaskFilter) ([]*domain.TaskRecord, error) {
	where, args := buildTaskFilter(filter, true)
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE ` + where +
		` ORDER BY due_at_utc, created_at DESC`
	return s.queryTasks(ctx, query, args...)
}

// CountByStatus implements store.TaskStore.CountByStatus. The filter's
// search term is ignored so the rollup reflects the full visible set.
func (s *TaskStore) CountByStatus(ctx context.Context, filter store.TaskFilter) (store.TaskStats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	filter.Search = ""
	where, args := buildTaskFilter(filter, true)

	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'Completed') AS completed,
			COUNT(*) FILTER (WHERE status = 'In Progress') AS in_progress,
			COUNT(*) FILTER (WHERE status = 'Pending') AS pending,
			COUNT(*) FILTER (WHERE due_local < NOW() AND status != 'Completed') AS overdue
		FROM tasks
		WHERE ` + where

	var stats store.TaskStats
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&stats.Total,
		&stats.Completed,
		&stats.InProgress,
		&stats.Pending,
		&stats.Overdue,
	)
	if err != nil {
		log.Error("failed to count tasks by status", slog.String("error", err.Error()))
		return store.TaskStats{}, mapError(err)
	}

	return stats, nil
}

// FindDueOn implements store.TaskStore.FindDueOn.
func (s *TaskStore) FindDueOn(ctx context.Context, date string) ([]*domain.TaskRecord, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE due_local::date = $1::date
		AND status NOT IN ('Completed', 'Cancelled')
		ORDER BY due_at_utc
	`
	return s.queryTasks(ctx, query, date)
}

// FindMissingTimezoneData implements store.TaskStore.FindMissingTimezoneData.
func (s *TaskStore) FindMissingTimezoneData(
	ctx context.Context,
	projectID *uuid.UUID,
) ([]store.LegacyTaskRow, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, project_id, COALESCE(due_local, due_at_utc)
		FROM tasks
		WHERE (due_at_utc IS NULL OR timezone IS NULL OR due_local IS NULL)
	`
	var args []any
	if projectID != nil {
		query += ` AND project_id = $1`
		args = append(args, *projectID)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to find legacy task rows", slog.String("error", err.Error()))
		return nil, mapError(err)
	}
	defer func() { _ = rows.Close() }()

	var legacy []store.LegacyTaskRow
	for rows.Next() {
		var row store.LegacyTaskRow
		if err := rows.Scan(&row.ID, &row.ProjectID, &row.NaiveDueDate); err != nil {
			return nil, mapError(err)
		}
		legacy = append(legacy, row)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return legacy, nil
}

// BackfillTimezoneFields implements store.TaskStore.BackfillTimezoneFields.
func (s *TaskStore) BackfillTimezoneFields(
	ctx context.Context,
	id uuid.UUID,
	task *domain.TaskRecord,
) error {
	query := `
		UPDATE tasks
		SET due_at_utc = $2, due_local = $3, timezone = $4, updated_at = $5
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query, id, task.DueAtUTC, task.DueLocal, task.Timezone, time.Now().UTC())
	if err != nil {
		return mapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return mapError(err)
	}
	if rows == 0 {
		return store.ErrTaskNotFound
	}

	return nil
}

// WithTx implements store.TaskStore.WithTx.
func (s *TaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &TaskStore{db: tx, logger: s.logger}
}

func (s *TaskStore) queryTasks(ctx context.Context, query string, args ...any) ([]*domain.TaskRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("task query failed", slog.String("error", err.Error()))
		return nil, mapError(err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []*domain.TaskRecord
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, mapError(err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return tasks, nil
}

func scanTask(row rowScanner) (*domain.TaskRecord, error) {
	var (
		task       domain.TaskRecord
		dueAtUTC   sql.NullTime
		dueLocal   sql.NullTime
		timezone   sql.NullString
		status     string
		assignedTo uuid.NullUUID
	)

	err := row.Scan(
		&task.ID,
		&task.ProjectID,
		&task.Title,
		&dueAtUTC,
		&dueLocal,
		&timezone,
		&status,
		&assignedTo,
		&task.AssignedRole,
		&task.AutoGenerated,
		&task.Notes,
		&task.Organization,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	// Legacy rows awaiting backfill may lack canonical fields; zero values
	// surface them rather than guessing.
	if dueAtUTC.Valid {
		task.DueAtUTC = dueAtUTC.Time.UTC()
	}
	if dueLocal.Valid {
		task.DueLocal = dueLocal.Time
	}
	task.Timezone = timezone.String
	task.Status = domain.TaskStatus(status)
	if assignedTo.Valid {
		id := assignedTo.UUID
		task.AssignedTo = &id
	}

	return &task, nil
}

// buildTaskFilter renders a WHERE clause and its arguments for the given
// filter. Visibility conditions come from the caller; the store applies
// them verbatim (the original role/organization query conditions live in
// the external authorization component).
func buildTaskFilter(filter store.TaskFilter, includeVisibility bool) (string, []any) {
	var (
		conditions []string
		args       []any
	)

	arg := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if includeVisibility {
		if filter.AssignedTo != nil {
			user := arg(*filter.AssignedTo)
			roleConditions := make([]string, 0, len(filter.Roles))
			for _, role := range filter.Roles {
				roleConditions = append(roleConditions, "assigned_role = "+arg(role))
			}
			if len(roleConditions) > 0 {
				conditions = append(conditions, fmt.Sprintf(
					"(assigned_to = %s OR ((%s) AND assigned_to IS NULL))",
					user, strings.Join(roleConditions, " OR ")))
			} else {
				conditions = append(conditions, "assigned_to = "+user)
			}
		}
		if filter.Organization != "" {
			conditions = append(conditions, "organization = "+arg(filter.Organization))
		}
	}

	if filter.Status != nil {
		conditions = append(conditions, "status = "+arg(string(*filter.Status)))
	}

	now := time.Now().UTC()
	today := domain.DateOnly(now)
	switch filter.Due {
	case store.DueToday:
		conditions = append(conditions,
			fmt.Sprintf("due_local >= %s AND due_local < %s", arg(today), arg(today.AddDate(0, 0, 1))))
	case store.DueWeek:
		conditions = append(conditions,
			fmt.Sprintf("due_local >= %s AND due_local < %s", arg(today), arg(today.AddDate(0, 0, 8))))
	case store.DueMonth:
		conditions = append(conditions,
			fmt.Sprintf("due_local >= %s AND due_local < %s", arg(today), arg(today.AddDate(0, 1, 1))))
	case store.DueOverdue:
		conditions = append(conditions, "due_local < "+arg(now), "status != 'Completed'")
	}

	if filter.Search != "" {
		pattern := arg("%" + filter.Search + "%")
		conditions = append(conditions, fmt.Sprintf("(title ILIKE %s OR notes ILIKE %s)", pattern, pattern))
	}

	if len(conditions) == 0 {
		return "TRUE", nil
	}
	return strings.Join(conditions, " AND "), args
}
