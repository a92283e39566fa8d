package schedule

import (
	"time"

	"github.com/phrazzld/planner-api/internal/domain"
)

// MaxIterations caps date generation at two years of daily iterations.
// The cap is a hard safety limit independent of the spec's end date: an
// open-ended schedule can never produce an unbounded sequence.
const MaxIterations = 730

// DateSequence computes the ordered calendar dates on which a task record
// should exist for the given spec, starting no earlier than windowStart
// and ending no later than the tighter of windowEnd (when non-nil) and the
// spec's end date (when present).
//
// The result is ascending, duplicate-free, and finite. The function is
// pure: calling it repeatedly with the same inputs yields the same output,
// so it is safe to use for previews.
func DateSequence(spec domain.ScheduleSpec, windowStart time.Time, windowEnd *time.Time) []time.Time {
	start := domain.DateOnly(spec.StartDate)
	if ws := domain.DateOnly(windowStart); ws.After(start) {
		start = ws
	}

	end := boundary(spec, windowEnd)

	var dates []time.Time
	cursor := start
	for i := 0; i < MaxIterations; i++ {
		if end != nil && cursor.After(*end) {
			break
		}

		switch spec.Type {
		case domain.ScheduleDaily:
			dates = append(dates, cursor)
			cursor = cursor.AddDate(0, 0, 1)
		case domain.ScheduleWeekly:
			// Advance one day at a time, not one week, so every selected
			// weekday in the week is captured.
			if spec.HasWeekday(cursor.Weekday()) {
				dates = append(dates, cursor)
			}
			cursor = cursor.AddDate(0, 0, 1)
		case domain.ScheduleEveryXDays:
			dates = append(dates, cursor)
			cursor = cursor.AddDate(0, 0, spec.IntervalDays)
		default:
			// Unknown schedule types advance without emitting; validation
			// catches these before regeneration runs.
			cursor = cursor.AddDate(0, 0, 1)
		}
	}

	return dates
}

// boundary returns the tighter of the window end and the spec end date,
// or nil when the sequence is bounded only by the iteration cap.
func boundary(spec domain.ScheduleSpec, windowEnd *time.Time) *time.Time {
	var end *time.Time
	if windowEnd != nil {
		we := domain.DateOnly(*windowEnd)
		end = &we
	}
	if spec.EndDate != nil {
		se := domain.DateOnly(*spec.EndDate)
		if end == nil || se.Before(*end) {
			end = &se
		}
	}
	return end
}
