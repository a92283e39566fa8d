package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/planner-api/internal/domain"
	"github.com/phrazzld/planner-api/internal/platform/logger"
	"github.com/phrazzld/planner-api/internal/store"
)

// ProjectStore implements the store.ProjectStore interface using a
// PostgreSQL database as the storage backend.
type ProjectStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewProjectStore creates a new PostgreSQL implementation of the
// store.ProjectStore interface. If logger is nil, a default logger is used.
func NewProjectStore(db store.DBTX, logger *slog.Logger) *ProjectStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ProjectStore{
		db:     db,
		logger: logger.With(slog.String("component", "project_store")),
	}
}

// Ensure ProjectStore implements store.ProjectStore.
var _ store.ProjectStore = (*ProjectStore)(nil)

const projectColumns = `id, name, organization, owner_id,
		schedule_type, start_date, end_date, interval_days, weekly_days,
		task_time, duration_hours, default_role, task_template,
		created_at, updated_at`

// Create implements store.ProjectStore.Create.
func (s *ProjectStore) Create(ctx context.Context, project *domain.Project) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := project.Validate(); err != nil {
		log.Warn("project validation failed during create",
			slog.String("error", err.Error()),
			slog.String("project_id", project.ID.String()))
		return err
	}

	query := `
		INSERT INTO projects (` + projectColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	spec := project.Schedule
	_, err := s.db.ExecContext(
		ctx,
		query,
		project.ID,
		project.Name,
		project.Organization,
		project.OwnerID,
		string(spec.Type),
		spec.StartDate,
		nullTime(spec.EndDate),
		nullPositiveInt(spec.IntervalDays),
		encodeWeekdays(spec.WeeklyDays),
		spec.TaskTime.String(),
		spec.DurationHours,
		spec.DefaultRole,
		nullString(spec.TaskTemplate),
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create project",
			slog.String("error", err.Error()),
			slog.String("project_id", project.ID.String()))
		return mapError(err)
	}

	log.Info("project created",
		slog.String("project_id", project.ID.String()),
		slog.String("schedule_type", string(spec.Type)))
	return nil
}

// GetByID implements store.ProjectStore.GetByID.
// Returns store.ErrProjectNotFound if the project does not exist.
func (s *ProjectStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`

	project, err := scanProject(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("project not found", slog.String("project_id", id.String()))
			return nil, store.ErrProjectNotFound
		}
		log.Error("failed to get project by ID",
			slog.String("error", err.Error()),
			slog.String("project_id", id.String()))
		return nil, mapError(err)
	}

	return project, nil
}

// Update implements store.ProjectStore.Update.
// Returns store.ErrProjectNotFound if the project does not exist.
func (s *ProjectStore) Update(ctx context.Context, project *domain.Project) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := project.Validate(); err != nil {
		return err
	}

	project.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE projects
		SET name = $2, organization = $3, owner_id = $4,
			schedule_type = $5, start_date = $6, end_date = $7,
			interval_days = $8, weekly_days = $9, task_time = $10,
			duration_hours = $11, default_role = $12, task_template = $13,
			updated_at = $14
		WHERE id = $1
	`
	spec := project.Schedule
	result, err := s.db.ExecContext(
		ctx,
		query,
		project.ID,
		project.Name,
		project.Organization,
		project.OwnerID,
		string(spec.Type),
		spec.StartDate,
		nullTime(spec.EndDate),
		nullPositiveInt(spec.IntervalDays),
		encodeWeekdays(spec.WeeklyDays),
		spec.TaskTime.String(),
		spec.DurationHours,
		spec.DefaultRole,
		nullString(spec.TaskTemplate),
		project.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to update project",
			slog.String("error", err.Error()),
			slog.String("project_id", project.ID.String()))
		return mapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return mapError(err)
	}
	if rows == 0 {
		return store.ErrProjectNotFound
	}

	return nil
}

// List implements store.ProjectStore.List.
func (s *ProjectStore) List(ctx context.Context) ([]*domain.Project, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to list projects", slog.String("error", err.Error()))
		return nil, mapError(err)
	}
	defer func() { _ = rows.Close() }()

	var projects []*domain.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, mapError(err)
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return projects, nil
}

// WithTx implements store.ProjectStore.WithTx.
func (s *ProjectStore) WithTx(tx *sql.Tx) store.ProjectStore {
	return &ProjectStore{db: tx, logger: s.logger}
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scan code.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var (
		project      domain.Project
		scheduleType string
		endDate      sql.NullTime
		intervalDays sql.NullInt64
		weeklyDays   sql.NullString
		taskTime     string
		taskTemplate sql.NullString
	)

	err := row.Scan(
		&project.ID,
		&project.Name,
		&project.Organization,
		&project.OwnerID,
		&scheduleType,
		&project.Schedule.StartDate,
		&endDate,
		&intervalDays,
		&weeklyDays,
		&taskTime,
		&project.Schedule.DurationHours,
		&project.Schedule.DefaultRole,
		&taskTemplate,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	project.Schedule.Type = domain.ScheduleType(scheduleType)
	project.Schedule.StartDate = domain.DateOnly(project.Schedule.StartDate)
	if endDate.Valid {
		end := domain.DateOnly(endDate.Time)
		project.Schedule.EndDate = &end
	}
	if intervalDays.Valid {
		project.Schedule.IntervalDays = int(intervalDays.Int64)
	}
	if weeklyDays.Valid && weeklyDays.String != "" {
		days, err := decodeWeekdays(weeklyDays.String)
		if err != nil {
			return nil, err
		}
		project.Schedule.WeeklyDays = days
	}
	if taskTemplate.Valid {
		template := taskTemplate.String
		project.Schedule.TaskTemplate = &template
	}

	tod, err := parseTimeOfDay(taskTime)
	if err != nil {
		return nil, err
	}
	project.Schedule.TaskTime = tod

	return &project, nil
}

// encodeWeekdays renders selected weekdays as a comma-separated list of
// weekday numbers (0=Sunday) in ascending order, or NULL when empty.
func encodeWeekdays(days []time.Weekday) sql.NullString {
	if len(days) == 0 {
		return sql.NullString{}
	}

	var parts []string
	for day := time.Sunday; day <= time.Saturday; day++ {
		for _, d := range days {
			if d == day {
				parts = append(parts, strconv.Itoa(int(day)))
				break
			}
		}
	}
	return sql.NullString{String: strings.Join(parts, ","), Valid: true}
}

func decodeWeekdays(encoded string) ([]time.Weekday, error) {
	parts := strings.Split(encoded, ",")
	days := make([]time.Weekday, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 || n > 6 {
			return nil, fmt.Errorf("invalid weekly_days value %q", encoded)
		}
		days = append(days, time.Weekday(n))
	}
	return days, nil
}

func parseTimeOfDay(value string) (domain.TimeOfDay, error) {
	parsed, err := time.Parse("15:04:05", value)
	if err != nil {
		return domain.TimeOfDay{}, fmt.Errorf("invalid task_time value %q: %w", value, err)
	}
	return domain.TimeOfDay{
		Hour:   parsed.Hour(),
		Minute: parsed.Minute(),
		Second: parsed.Second(),
	}, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullPositiveInt(n int) sql.NullInt64 {
	if n <= 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(n), Valid: true}
}
