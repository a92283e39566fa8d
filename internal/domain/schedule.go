package domain

import (
	"fmt"
	"strings"
	"time"
)

// ScheduleType identifies the recurrence kind of a project schedule.
type ScheduleType string

// Supported schedule types.
const (
	ScheduleDaily      ScheduleType = "daily"
	ScheduleWeekly     ScheduleType = "weekly"
	ScheduleEveryXDays ScheduleType = "every_x_days"
)

// Defaults applied by NewScheduleSpec when the caller leaves a field unset.
const (
	DefaultTaskHour      = 9
	DefaultDurationHours = 1.0
	DefaultRole          = "Engineer"
)

// TimeOfDay is a wall-clock time with no date or zone attached. Tasks are
// due at this time in the project owner's timezone.
type TimeOfDay struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
	Second int `json:"second"`
}

// String returns the time in HH:MM:SS form.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// Valid reports whether the time of day is within the 24-hour clock.
func (t TimeOfDay) Valid() bool {
	return t.Hour >= 0 && t.Hour < 24 &&
		t.Minute >= 0 && t.Minute < 60 &&
		t.Second >= 0 && t.Second < 60
}

// ScheduleSpec is the recurrence configuration owned by a project. It
// describes which calendar dates task records should exist on and what
// defaults those records carry.
//
// Optional fields are pointers so that presence is always explicit:
// a nil EndDate means the schedule is open-ended, a nil TaskTemplate
// means the default title format is used.
type ScheduleSpec struct {
	Type          ScheduleType   `json:"type"`
	StartDate     time.Time      `json:"start_date"`
	EndDate       *time.Time     `json:"end_date,omitempty"`
	IntervalDays  int            `json:"interval_days,omitempty"`
	WeeklyDays    []time.Weekday `json:"weekly_days,omitempty"`
	TaskTime      TimeOfDay      `json:"task_time"`
	DurationHours float64        `json:"duration_hours"`
	DefaultRole   string         `json:"default_role"`
	TaskTemplate  *string        `json:"task_template,omitempty"`

	// OwnerTimezone is resolved from the project owner at generation time.
	// It is not persisted with the spec.
	OwnerTimezone string `json:"-"`
}

// NewScheduleSpec creates a ScheduleSpec with the given type and start date,
// filling in the default task time, duration, and role.
func NewScheduleSpec(scheduleType ScheduleType, startDate time.Time) ScheduleSpec {
	return ScheduleSpec{
		Type:          scheduleType,
		StartDate:     DateOnly(startDate),
		TaskTime:      TimeOfDay{Hour: DefaultTaskHour},
		DurationHours: DefaultDurationHours,
		DefaultRole:   DefaultRole,
	}
}

// Violations returns every invariant the spec breaks, in a stable order.
// An empty slice means the spec is valid. Violations are collected rather
// than short-circuited so callers can surface all problems at once.
func (s ScheduleSpec) Violations() []string {
	var violations []string

	switch s.Type {
	case ScheduleDaily, ScheduleWeekly, ScheduleEveryXDays:
	default:
		violations = append(violations,
			fmt.Sprintf("schedule type %q is not one of daily, weekly, every_x_days", s.Type))
	}

	if s.StartDate.IsZero() {
		violations = append(violations, "start date is required")
	}

	if s.EndDate != nil && !s.StartDate.IsZero() && s.EndDate.Before(DateOnly(s.StartDate)) {
		violations = append(violations, "end date must not be before start date")
	}

	if s.Type == ScheduleEveryXDays && s.IntervalDays < 1 {
		violations = append(violations, "interval days must be a positive number for every_x_days schedules")
	}

	if s.Type == ScheduleWeekly && len(s.WeeklyDays) == 0 {
		violations = append(violations, "weekly schedules require at least one weekday")
	}

	if !s.TaskTime.Valid() {
		violations = append(violations, "task time must be a valid time of day")
	}

	if s.DurationHours <= 0 {
		violations = append(violations, "duration hours must be positive")
	}

	return violations
}

// HasWeekday reports whether the given weekday is selected for a weekly
// schedule.
func (s ScheduleSpec) HasWeekday(day time.Weekday) bool {
	for _, d := range s.WeeklyDays {
		if d == day {
			return true
		}
	}
	return false
}

// WeeklyDayNames returns the selected weekday names in a stable
// Sunday-first order, regardless of the order they were configured in.
func (s ScheduleSpec) WeeklyDayNames() []string {
	names := make([]string, 0, len(s.WeeklyDays))
	for day := time.Sunday; day <= time.Saturday; day++ {
		if s.HasWeekday(day) {
			names = append(names, day.String())
		}
	}
	return names
}

// ParseWeekday converts a weekday name such as "Monday" (case-insensitive)
// to its time.Weekday value.
func ParseWeekday(name string) (time.Weekday, error) {
	for day := time.Sunday; day <= time.Saturday; day++ {
		if strings.EqualFold(day.String(), name) {
			return day, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown weekday %q", ErrValidation, name)
}

// ParseScheduleType converts a schedule type string, accepting both the
// canonical snake_case values and the legacy display forms ("Daily",
// "Weekly", "Every X Days").
func ParseScheduleType(value string) (ScheduleType, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "daily":
		return ScheduleDaily, nil
	case "weekly":
		return ScheduleWeekly, nil
	case "every_x_days", "every x days":
		return ScheduleEveryXDays, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidScheduleType, value)
	}
}

// DateOnly strips the time-of-day component, returning the calendar date
// at UTC midnight. All schedule arithmetic operates on such values.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDate reports whether two instants fall on the same calendar date,
// ignoring their time-of-day and location.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
