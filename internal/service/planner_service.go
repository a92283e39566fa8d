package service

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/planner-api/internal/domain"
	"github.com/phrazzld/planner-api/internal/events"
	"github.com/phrazzld/planner-api/internal/schedule"
	"github.com/phrazzld/planner-api/internal/store"
	"github.com/phrazzld/planner-api/internal/tz"
)

// RegenerationResult reports the outcome of a regeneration run.
type RegenerationResult struct {
	TaskCount int `json:"task_count"`
	Created   int `json:"created"`
	Preserved int `json:"preserved"`
}

// TimezoneDiagnosis reports whether a task's stored local time agrees with
// its canonical UTC instant when recomputed through the zone database. A
// discrepancy above one minute marks the record as inconsistent.
type TimezoneDiagnosis struct {
	TaskID             uuid.UUID `json:"task_id"`
	Timezone           string    `json:"timezone"`
	DueAtUTC           time.Time `json:"due_at_utc"`
	DueLocal           time.Time `json:"due_local"`
	RecomputedUTC      time.Time `json:"recomputed_utc"`
	DiscrepancySeconds float64   `json:"discrepancy_seconds"`
	Consistent         bool      `json:"consistent"`
	ZoneOffset         string    `json:"zone_offset"`
	DST                bool      `json:"dst"`
}

// BackfillError records a single legacy row that could not be repaired.
type BackfillError struct {
	TaskID uuid.UUID `json:"task_id"`
	Reason string    `json:"reason"`
}

// BackfillResult reports the outcome of a timezone backfill run. Errors
// are collected per record and never abort the run.
type BackfillResult struct {
	FixedCount int             `json:"fixed_count"`
	Errors     []BackfillError `json:"errors"`
}

// PlannerService provides schedule-driven task generation operations.
type PlannerService interface {
	// SaveProject persists a new or updated project, regenerating its task
	// collection in the same transaction when generation-affecting schedule
	// fields changed. Returns a *schedule.ValidationError listing every
	// violation when the spec is invalid; nothing is persisted in that case.
	SaveProject(ctx context.Context, project *domain.Project) (RegenerationResult, error)

	// RegenerateTasks forces a full regeneration for the project,
	// reconciling the new date sequence against the existing collection
	// within one transaction.
	RegenerateTasks(ctx context.Context, projectID uuid.UUID) (RegenerationResult, error)

	// PreviewUpcomingDates computes the due dates the schedule would
	// produce over the next days days, without touching persistence.
	PreviewUpcomingDates(ctx context.Context, projectID uuid.UUID, days int) ([]time.Time, error)

	// FormattedDueDate renders a task's due date in the most relevant
	// timezone: the viewer's when given, otherwise the assignee's,
	// otherwise the acting user's. Internal callers may pass uuid.Nil as
	// the actor to fall back to the zone stored on the record.
	FormattedDueDate(ctx context.Context, taskID uuid.UUID, viewerID *uuid.UUID, actorID uuid.UUID) (string, error)

	// DiagnoseTimezone recomputes a task's UTC instant from its stored
	// local time and zone and reports any discrepancy.
	DiagnoseTimezone(ctx context.Context, taskID uuid.UUID) (TimezoneDiagnosis, error)

	// BackfillTimezoneFields derives the canonical timezone fields for
	// legacy rows that lack them, optionally restricted to one project.
	BackfillTimezoneFields(ctx context.Context, projectID *uuid.UUID) (BackfillResult, error)
}

// plannerServiceImpl implements the PlannerService interface.
type plannerServiceImpl struct {
	db           *sql.DB
	projectStore store.ProjectStore
	taskStore    store.TaskStore
	orchestrator *schedule.Orchestrator
	converter    *tz.Converter
	emitter      events.EventEmitter
	logger       *slog.Logger
}

// NewPlannerService creates a new PlannerService.
// It returns an error if any of the required dependencies are nil.
func NewPlannerService(
	db *sql.DB,
	projectStore store.ProjectStore,
	taskStore store.TaskStore,
	orchestrator *schedule.Orchestrator,
	converter *tz.Converter,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (PlannerService, error) {
	if db == nil {
		return nil, NewPlannerServiceError("init", "db cannot be nil", domain.ErrValidation)
	}
	if projectStore == nil {
		return nil, NewPlannerServiceError("init", "projectStore cannot be nil", domain.ErrValidation)
	}
	if taskStore == nil {
		return nil, NewPlannerServiceError("init", "taskStore cannot be nil", domain.ErrValidation)
	}
	if orchestrator == nil {
		return nil, NewPlannerServiceError("init", "orchestrator cannot be nil", domain.ErrValidation)
	}
	if converter == nil {
		return nil, NewPlannerServiceError("init", "converter cannot be nil", domain.ErrValidation)
	}
	if emitter == nil {
		return nil, NewPlannerServiceError("init", "emitter cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &plannerServiceImpl{
		db:           db,
		projectStore: projectStore,
		taskStore:    taskStore,
		orchestrator: orchestrator,
		converter:    converter,
		emitter:      emitter,
		logger:       logger.With(slog.String("component", "planner_service")),
	}, nil
}

// SaveProject implements PlannerService.SaveProject.
func (s *plannerServiceImpl) SaveProject(
	ctx context.Context,
	project *domain.Project,
) (RegenerationResult, error) {
	if err := s.orchestrator.Validate(project.Schedule); err != nil {
		return RegenerationResult{}, err
	}

	var (
		previous    *domain.ScheduleSpec
		nameChanged bool
		isNew       bool
	)
	stored, err := s.projectStore.GetByID(ctx, project.ID)
	switch {
	case err == nil:
		previous = &stored.Schedule
		nameChanged = stored.Name != project.Name
	case store.IsNotFoundError(err):
		isNew = true
	default:
		return RegenerationResult{}, NewPlannerServiceError("save_project", "failed to load project", err)
	}

	project.Schedule.OwnerTimezone = s.converter.ResolveUserTimezone(ctx, project.OwnerID)

	var result RegenerationResult
	txErr := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		projectTx := s.projectStore.WithTx(tx)
		taskTx := s.taskStore.WithTx(tx)

		if isNew {
			if err := projectTx.Create(ctx, project); err != nil {
				return err
			}
		} else if err := projectTx.Update(ctx, project); err != nil {
			return err
		}

		existing, err := taskTx.FindByProject(ctx, project.ID)
		if err != nil {
			return err
		}

		final, report, changed, err := s.orchestrator.RegenerateIfNeeded(
			project, previous, nameChanged, existing)
		if err != nil {
			return err
		}

		if changed {
			// A title-only change patches titles in place; anything else
			// replaces the whole collection.
			if len(report.TitleUpdates) > 0 {
				if err := taskTx.UpdateTitles(ctx, report.TitleUpdates); err != nil {
					return err
				}
			} else if err := taskTx.ReplaceForProject(ctx, project.ID, final); err != nil {
				return err
			}
		}

		result = RegenerationResult{
			TaskCount: len(final),
			Created:   report.Created,
			Preserved: report.Preserved,
		}
		return nil
	})
	if txErr != nil {
		return RegenerationResult{}, txErr
	}

	s.emitRegenerated(ctx, project.ID, result)
	return result, nil
}

// RegenerateTasks implements PlannerService.RegenerateTasks.
func (s *plannerServiceImpl) RegenerateTasks(
	ctx context.Context,
	projectID uuid.UUID,
) (RegenerationResult, error) {
	project, err := s.projectStore.GetByID(ctx, projectID)
	if err != nil {
		return RegenerationResult{}, err
	}

	if err := s.orchestrator.Validate(project.Schedule); err != nil {
		return RegenerationResult{}, err
	}

	project.Schedule.OwnerTimezone = s.converter.ResolveUserTimezone(ctx, project.OwnerID)

	var result RegenerationResult
	txErr := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		taskTx := s.taskStore.WithTx(tx)

		existing, err := taskTx.FindByProject(ctx, projectID)
		if err != nil {
			return err
		}

		final, report, err := s.orchestrator.Regenerate(project, existing)
		if err != nil {
			return err
		}

		if err := taskTx.ReplaceForProject(ctx, projectID, final); err != nil {
			return err
		}

		result = RegenerationResult{
			TaskCount: len(final),
			Created:   report.Created,
			Preserved: report.Preserved,
		}
		return nil
	})
	if txErr != nil {
		return RegenerationResult{}, txErr
	}

	s.emitRegenerated(ctx, projectID, result)
	return result, nil
}

// PreviewUpcomingDates implements PlannerService.PreviewUpcomingDates.
func (s *plannerServiceImpl) PreviewUpcomingDates(
	ctx context.Context,
	projectID uuid.UUID,
	days int,
) ([]time.Time, error) {
	project, err := s.projectStore.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if err := s.orchestrator.Validate(project.Schedule); err != nil {
		return nil, err
	}

	today := domain.DateOnly(time.Now().UTC())
	end := today.AddDate(0, 0, days)
	return schedule.DateSequence(project.Schedule, today, &end), nil
}

// FormattedDueDate implements PlannerService.FormattedDueDate.
func (s *plannerServiceImpl) FormattedDueDate(
	ctx context.Context,
	taskID uuid.UUID,
	viewerID *uuid.UUID,
	actorID uuid.UUID,
) (string, error) {
	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		return "", err
	}

	// Zone preference: explicit viewer, then the assignee, then the
	// acting user. The record's own zone applies only without an actor.
	zone := task.Timezone
	switch {
	case viewerID != nil:
		zone = s.converter.ResolveUserTimezone(ctx, *viewerID)
	case task.AssignedTo != nil:
		zone = s.converter.ResolveUserTimezone(ctx, *task.AssignedTo)
	case actorID != uuid.Nil:
		zone = s.converter.ResolveUserTimezone(ctx, actorID)
	}
	if zone == "" {
		zone = tz.UTCZone
	}

	formatted, err := s.converter.FormatInZone(task.DueAtUTC, zone)
	if err != nil {
		return "", NewPlannerServiceError("formatted_due_date", "failed to render due date", err)
	}
	return formatted, nil
}

// DiagnoseTimezone implements PlannerService.DiagnoseTimezone.
func (s *plannerServiceImpl) DiagnoseTimezone(
	ctx context.Context,
	taskID uuid.UUID,
) (TimezoneDiagnosis, error) {
	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		return TimezoneDiagnosis{}, err
	}

	if task.Timezone == "" || task.DueAtUTC.IsZero() || task.DueLocal.IsZero() {
		return TimezoneDiagnosis{}, NewPlannerServiceError(
			"diagnose_timezone", "task lacks canonical timezone fields", ErrMissingTimezoneData)
	}

	recomputed, err := s.converter.Localize(task.DueLocal, task.Timezone)
	if err != nil {
		return TimezoneDiagnosis{}, NewPlannerServiceError(
			"diagnose_timezone", "failed to recompute UTC instant", err)
	}

	discrepancy := recomputed.Sub(task.DueAtUTC).Seconds()
	if discrepancy < 0 {
		discrepancy = -discrepancy
	}

	offset, err := s.converter.ZoneOffset(task.DueAtUTC, task.Timezone)
	if err != nil {
		return TimezoneDiagnosis{}, NewPlannerServiceError(
			"diagnose_timezone", "failed to resolve zone offset", err)
	}

	return TimezoneDiagnosis{
		TaskID:             task.ID,
		Timezone:           task.Timezone,
		DueAtUTC:           task.DueAtUTC,
		DueLocal:           task.DueLocal,
		RecomputedUTC:      recomputed,
		DiscrepancySeconds: discrepancy,
		Consistent:         discrepancy <= 60,
		ZoneOffset:         offset,
		DST:                s.converter.IsDST(task.DueAtUTC, task.Timezone),
	}, nil
}

// BackfillTimezoneFields implements PlannerService.BackfillTimezoneFields.
// Each legacy row is repaired independently; failures are collected and
// reported, never fatal to the run.
func (s *plannerServiceImpl) BackfillTimezoneFields(
	ctx context.Context,
	projectID *uuid.UUID,
) (BackfillResult, error) {
	rows, err := s.taskStore.FindMissingTimezoneData(ctx, projectID)
	if err != nil {
		return BackfillResult{}, NewPlannerServiceError(
			"backfill_timezones", "failed to find legacy rows", err)
	}

	// Owner zones are stable within a run; resolve each project once.
	zones := make(map[uuid.UUID]string)

	result := BackfillResult{Errors: []BackfillError{}}
	for _, row := range rows {
		if err := s.backfillRow(ctx, row, zones); err != nil {
			s.logger.Warn("timezone backfill failed for task",
				slog.String("task_id", row.ID.String()),
				slog.String("error", err.Error()))
			result.Errors = append(result.Errors, BackfillError{
				TaskID: row.ID,
				Reason: err.Error(),
			})
			continue
		}
		result.FixedCount++
	}

	s.logger.Info("timezone backfill complete",
		slog.Int("fixed", result.FixedCount),
		slog.Int("failed", len(result.Errors)))
	return result, nil
}

func (s *plannerServiceImpl) backfillRow(
	ctx context.Context,
	row store.LegacyTaskRow,
	zones map[uuid.UUID]string,
) error {
	if !row.NaiveDueDate.Valid {
		return ErrTaskHasNoDueDate
	}

	zone, ok := zones[row.ProjectID]
	if !ok {
		project, err := s.projectStore.GetByID(ctx, row.ProjectID)
		if err != nil {
			return err
		}
		zone = s.converter.ResolveUserTimezone(ctx, project.OwnerID)
		zones[row.ProjectID] = zone
	}

	dueAtUTC, err := s.converter.Localize(row.NaiveDueDate.Time, zone)
	if err != nil {
		return err
	}

	return s.taskStore.BackfillTimezoneFields(ctx, row.ID, &domain.TaskRecord{
		DueAtUTC: dueAtUTC,
		DueLocal: row.NaiveDueDate.Time,
		Timezone: zone,
	})
}

func (s *plannerServiceImpl) emitRegenerated(
	ctx context.Context,
	projectID uuid.UUID,
	result RegenerationResult,
) {
	event, err := events.NewTaskEvent(events.EventTasksRegenerated, events.RegeneratedPayload{
		ProjectID:      projectID,
		CreatedCount:   result.Created,
		PreservedCount: result.Preserved,
		TotalCount:     result.TaskCount,
	})
	if err != nil {
		s.logger.Error("failed to build regeneration event", slog.String("error", err.Error()))
		return
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		s.logger.Error("failed to emit regeneration event", slog.String("error", err.Error()))
	}
}
