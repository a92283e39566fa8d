package schedule

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/planner-api/internal/domain"
)

// MaxTitleLength is the rune limit applied to generated task titles.
const MaxTitleLength = 140

// LocalTimeConverter localizes a naive wall-clock time in a zone to UTC.
// Satisfied by *tz.Converter.
type LocalTimeConverter interface {
	Localize(naive time.Time, zoneID string) (time.Time, error)
}

// Factory builds fresh auto-generated task records for calendar dates,
// bound to one project and its schedule spec. The notes it writes are the
// manual-edit signal the reconciler compares against, so both sides use
// the shared ScheduleNotes function.
type Factory struct {
	spec         domain.ScheduleSpec
	projectID    uuid.UUID
	projectName  string
	organization string
	converter    LocalTimeConverter
	logger       *slog.Logger
}

// NewFactory creates a Factory for the given project and spec. If logger
// is nil, the default logger is used.
func NewFactory(
	spec domain.ScheduleSpec,
	projectID uuid.UUID,
	projectName, organization string,
	converter LocalTimeConverter,
	logger *slog.Logger,
) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{
		spec:         spec,
		projectID:    projectID,
		projectName:  projectName,
		organization: organization,
		converter:    converter,
		logger:       logger.With(slog.String("component", "task_factory")),
	}
}

// Build produces a fresh pending task record for the given calendar date.
// The local due time combines the date with the spec's time of day; the
// canonical UTC instant is derived through the converter using the offset
// in effect on that specific date. A zone resolution failure is
// recoverable: the local time is treated as UTC and a warning is logged.
func (f *Factory) Build(date time.Time) (*domain.TaskRecord, error) {
	date = domain.DateOnly(date)

	dueLocal := time.Date(
		date.Year(), date.Month(), date.Day(),
		f.spec.TaskTime.Hour, f.spec.TaskTime.Minute, f.spec.TaskTime.Second, 0,
		time.UTC,
	)

	timezone := f.spec.OwnerTimezone
	if timezone == "" {
		timezone = "UTC"
	}

	dueAtUTC, err := f.converter.Localize(dueLocal, timezone)
	if err != nil {
		f.logger.Warn("timezone localization failed, treating local time as UTC",
			slog.String("timezone", timezone),
			slog.String("date", date.Format("2006-01-02")),
			slog.String("error", err.Error()))
		timezone = "UTC"
		dueAtUTC = dueLocal
	}

	task, err := domain.NewTaskRecord(f.projectID, f.Title(date), dueAtUTC)
	if err != nil {
		return nil, fmt.Errorf("building task for %s: %w", date.Format("2006-01-02"), err)
	}

	task.DueLocal = dueLocal
	task.Timezone = timezone
	task.AssignedRole = f.spec.DefaultRole
	task.AutoGenerated = true
	task.Notes = ScheduleNotes(f.spec)
	task.Organization = f.organization

	return task, nil
}

// Title renders the task title for the given date. When the spec carries a
// template, its {date}, {project}, and {organization} placeholders are
// substituted; on render failure the default "{project} - {date}" form is
// used instead. Either way the result is truncated to MaxTitleLength runes.
func (f *Factory) Title(date time.Time) string {
	if f.spec.TaskTemplate != nil {
		rendered, err := renderTitle(*f.spec.TaskTemplate, date, f.projectName, f.organization)
		if err != nil {
			f.logger.Warn("task title template render failed, using default title",
				slog.String("template", *f.spec.TaskTemplate),
				slog.String("error", err.Error()))
		} else {
			return truncate(rendered, MaxTitleLength)
		}
	}

	return truncate(defaultTitle(f.projectName, date), MaxTitleLength)
}

// Notes returns the deterministic notes text this factory writes, used by
// the reconciler to detect manual edits.
func (f *Factory) Notes() string {
	return ScheduleNotes(f.spec)
}

// ScheduleNotes summarizes a spec as the notes text for its generated
// tasks: the schedule kind, the task duration, and the selected weekdays
// or interval. The text is deterministic for a given spec; any difference
// between a record's notes and this text marks the record as manually
// edited and therefore protected.
func ScheduleNotes(spec domain.ScheduleSpec) string {
	switch spec.Type {
	case domain.ScheduleWeekly:
		return fmt.Sprintf("Generated by weekly schedule on %s; duration %sh",
			strings.Join(spec.WeeklyDayNames(), ", "), formatHours(spec.DurationHours))
	case domain.ScheduleEveryXDays:
		return fmt.Sprintf("Generated by every_x_days schedule with %d day interval; duration %sh",
			spec.IntervalDays, formatHours(spec.DurationHours))
	default:
		return fmt.Sprintf("Generated by %s schedule; duration %sh",
			spec.Type, formatHours(spec.DurationHours))
	}
}

func defaultTitle(projectName string, date time.Time) string {
	return fmt.Sprintf("%s - %s", projectName, date.Format("2006-01-02"))
}

// renderTitle substitutes {date}, {project}, and {organization}
// placeholders. An unknown or unterminated placeholder fails the render.
func renderTitle(template string, date time.Time, projectName, organization string) (string, error) {
	var b strings.Builder
	rest := template

	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}

		b.WriteString(rest[:open])
		rest = rest[open+1:]

		closing := strings.IndexByte(rest, '}')
		if closing < 0 {
			return "", &TemplateRenderError{
				Template: template,
				Err:      fmt.Errorf("unterminated placeholder"),
			}
		}

		switch name := rest[:closing]; name {
		case "date":
			b.WriteString(date.Format("2006-01-02"))
		case "project":
			b.WriteString(projectName)
		case "organization":
			b.WriteString(organization)
		default:
			return "", &TemplateRenderError{
				Template: template,
				Err:      fmt.Errorf("unknown placeholder %q", name),
			}
		}

		rest = rest[closing+1:]
	}
}

func formatHours(hours float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", hours), "0"), ".")
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
