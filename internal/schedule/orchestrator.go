package schedule

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/planner-api/internal/domain"
)

// Orchestrator validates schedule specs and drives the generator,
// factory, and reconciler to produce a project's task collection. It is
// computation-only: the surrounding persistence layer invokes Validate and
// RegenerateIfNeeded explicitly before commit, and guarantees that no two
// regenerations run concurrently for the same project.
type Orchestrator struct {
	converter  LocalTimeConverter
	reconciler *Reconciler
	logger     *slog.Logger
}

// NewOrchestrator creates an Orchestrator using the given converter for
// local-to-UTC due date computation. If logger is nil, the default logger
// is used.
func NewOrchestrator(converter LocalTimeConverter, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		converter:  converter,
		reconciler: NewReconciler(logger),
		logger:     logger.With(slog.String("component", "orchestrator")),
	}
}

// Validate checks every schedule spec invariant and returns a
// *ValidationError listing all violations together, or nil when the spec
// is valid. Validation never mutates anything.
func (o *Orchestrator) Validate(spec domain.ScheduleSpec) error {
	if violations := spec.Violations(); len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// NeedsRegeneration reports whether the task collection must be rebuilt:
// either the project is new with no tasks yet, or a field that affects
// which dates exist or what records carry has changed since the previous
// persisted spec.
func (o *Orchestrator) NeedsRegeneration(
	spec domain.ScheduleSpec,
	previous *domain.ScheduleSpec,
	hasExistingTasks bool,
) bool {
	if previous == nil {
		// First save: generate only when no tasks exist yet (manual tasks
		// created ahead of the schedule are left alone).
		return !hasExistingTasks
	}

	return spec.Type != previous.Type ||
		!domain.SameDate(spec.StartDate, previous.StartDate) ||
		!sameOptionalDate(spec.EndDate, previous.EndDate) ||
		!sameWeekdays(spec.WeeklyDays, previous.WeeklyDays) ||
		spec.IntervalDays != previous.IntervalDays ||
		spec.TaskTime != previous.TaskTime ||
		spec.DefaultRole != previous.DefaultRole ||
		spec.DurationHours != previous.DurationHours
}

// NeedsTitleOnlyUpdate reports whether only the task title template or the
// project's display name changed. It is mutually exclusive with
// NeedsRegeneration: when a generation-affecting field changed too, full
// regeneration wins and this returns false.
func (o *Orchestrator) NeedsTitleOnlyUpdate(
	spec domain.ScheduleSpec,
	previous *domain.ScheduleSpec,
	nameChanged bool,
) bool {
	if previous == nil {
		return false
	}
	if o.NeedsRegeneration(spec, previous, true) {
		return false
	}
	return nameChanged || !sameOptionalString(spec.TaskTemplate, previous.TaskTemplate)
}

// Regenerate computes the project's new task collection: it generates the
// date sequence for the project's schedule, reconciles it against the
// existing records, and returns the sorted final collection with a
// creation/preservation report. The spec must already be validated and
// carry the owner's resolved timezone.
func (o *Orchestrator) Regenerate(
	project *domain.Project,
	existing []*domain.TaskRecord,
) ([]*domain.TaskRecord, Report, error) {
	dates := DateSequence(project.Schedule, project.Schedule.StartDate, nil)

	factory := NewFactory(
		project.Schedule,
		project.ID,
		project.Name,
		project.Organization,
		o.converter,
		o.logger,
	)

	final, report, err := o.reconciler.Reconcile(existing, dates, factory)
	if err != nil {
		return nil, Report{}, err
	}

	o.logger.Info("task collection regenerated",
		slog.String("project_id", project.ID.String()),
		slog.Int("dates", len(dates)),
		slog.Int("created", report.Created),
		slog.Int("preserved", report.Preserved))

	return final, report, nil
}

// RegenerateIfNeeded validates the spec and regenerates only when
// NeedsRegeneration holds, handling the title-only path when just the
// template or project name changed. The returned bool reports whether the
// collection changed at all. This is the single extension point the
// persistence layer calls before committing a project save.
func (o *Orchestrator) RegenerateIfNeeded(
	project *domain.Project,
	previous *domain.ScheduleSpec,
	nameChanged bool,
	existing []*domain.TaskRecord,
) ([]*domain.TaskRecord, Report, bool, error) {
	if err := o.Validate(project.Schedule); err != nil {
		return nil, Report{}, false, err
	}

	if o.NeedsRegeneration(project.Schedule, previous, len(existing) > 0) {
		final, report, err := o.Regenerate(project, existing)
		if err != nil {
			return nil, Report{}, false, err
		}
		return final, report, true, nil
	}

	if o.NeedsTitleOnlyUpdate(project.Schedule, previous, nameChanged) {
		final, titles := o.RewriteTitles(project, existing)
		report := Report{
			Preserved:    len(existing) - len(titles),
			TitleUpdates: titles,
		}
		return final, report, len(titles) > 0, nil
	}

	return existing, Report{Preserved: len(existing)}, false, nil
}

// RewriteTitles rewrites the titles of unprotected auto-generated tasks
// using the shared title generation, leaving dates, statuses, and
// protected records untouched. Returns the new collection and the
// rewritten titles keyed by record ID.
func (o *Orchestrator) RewriteTitles(
	project *domain.Project,
	existing []*domain.TaskRecord,
) ([]*domain.TaskRecord, map[uuid.UUID]string) {
	factory := NewFactory(
		project.Schedule,
		project.ID,
		project.Name,
		project.Organization,
		o.converter,
		o.logger,
	)
	factoryNotes := factory.Notes()

	final := make([]*domain.TaskRecord, 0, len(existing))
	titles := make(map[uuid.UUID]string)
	for _, task := range existing {
		if Protected(task, factoryNotes) {
			final = append(final, task)
			continue
		}

		copied := *task
		copied.Title = factory.Title(task.DueDate())
		copied.UpdatedAt = time.Now().UTC()
		final = append(final, &copied)
		titles[copied.ID] = copied.Title
	}

	return final, titles
}

func sameOptionalDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return domain.SameDate(*a, *b)
}

func sameOptionalString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func sameWeekdays(a, b []time.Weekday) bool {
	if len(a) != len(b) {
		return false
	}
	var setA, setB uint8
	for _, d := range a {
		setA |= 1 << uint(d)
	}
	for _, d := range b {
		setB |= 1 << uint(d)
	}
	return setA == setB
}
