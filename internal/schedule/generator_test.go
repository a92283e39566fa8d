package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/planner-api/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func TestDateSequenceDaily(t *testing.T) {
	spec := domain.NewScheduleSpec(domain.ScheduleDaily, date(2026, 3, 1))

	dates := DateSequence(spec, spec.StartDate, datePtr(2026, 3, 10))

	require.Len(t, dates, 10)
	assert.Equal(t, date(2026, 3, 1), dates[0])
	assert.Equal(t, date(2026, 3, 10), dates[9])
	for i := 1; i < len(dates); i++ {
		assert.Equal(t, dates[i-1].AddDate(0, 0, 1), dates[i])
	}
}

func TestDateSequenceWeekly(t *testing.T) {
	// Start on a Sunday; select Monday and Thursday over two weeks.
	spec := domain.NewScheduleSpec(domain.ScheduleWeekly, date(2026, 3, 1))
	spec.WeeklyDays = []time.Weekday{time.Monday, time.Thursday}

	dates := DateSequence(spec, spec.StartDate, datePtr(2026, 3, 14))

	assert.Equal(t, []time.Time{
		date(2026, 3, 2),  // Monday
		date(2026, 3, 5),  // Thursday
		date(2026, 3, 9),  // Monday
		date(2026, 3, 12), // Thursday
	}, dates)
}

func TestDateSequenceEveryXDays(t *testing.T) {
	spec := domain.NewScheduleSpec(domain.ScheduleEveryXDays, date(2026, 3, 1))
	spec.IntervalDays = 3

	dates := DateSequence(spec, spec.StartDate, datePtr(2026, 3, 10))

	assert.Equal(t, []time.Time{
		date(2026, 3, 1),
		date(2026, 3, 4),
		date(2026, 3, 7),
		date(2026, 3, 10),
	}, dates)
}

func TestDateSequenceOpenEndedCap(t *testing.T) {
	spec := domain.NewScheduleSpec(domain.ScheduleDaily, date(2026, 1, 1))

	dates := DateSequence(spec, spec.StartDate, nil)

	assert.Len(t, dates, MaxIterations,
		"an open-ended schedule is bounded only by the iteration cap")
}

func TestDateSequenceWindowStartAfterSpecStart(t *testing.T) {
	spec := domain.NewScheduleSpec(domain.ScheduleDaily, date(2026, 3, 1))

	dates := DateSequence(spec, date(2026, 3, 5), datePtr(2026, 3, 7))

	assert.Equal(t, []time.Time{
		date(2026, 3, 5),
		date(2026, 3, 6),
		date(2026, 3, 7),
	}, dates)
}

func TestDateSequenceSpecEndTighterThanWindow(t *testing.T) {
	spec := domain.NewScheduleSpec(domain.ScheduleDaily, date(2026, 3, 1))
	spec.EndDate = datePtr(2026, 3, 3)

	dates := DateSequence(spec, spec.StartDate, datePtr(2026, 3, 31))

	assert.Equal(t, []time.Time{
		date(2026, 3, 1),
		date(2026, 3, 2),
		date(2026, 3, 3),
	}, dates)
}

func TestDateSequenceWindowTighterThanSpecEnd(t *testing.T) {
	spec := domain.NewScheduleSpec(domain.ScheduleDaily, date(2026, 3, 1))
	spec.EndDate = datePtr(2026, 3, 31)

	dates := DateSequence(spec, spec.StartDate, datePtr(2026, 3, 2))

	assert.Equal(t, []time.Time{
		date(2026, 3, 1),
		date(2026, 3, 2),
	}, dates)
}

func TestDateSequenceUnknownTypeEmitsNothing(t *testing.T) {
	spec := domain.NewScheduleSpec("monthly", date(2026, 3, 1))

	dates := DateSequence(spec, spec.StartDate, datePtr(2026, 3, 10))

	assert.Empty(t, dates)
}

func TestDateSequenceEndBeforeStart(t *testing.T) {
	spec := domain.NewScheduleSpec(domain.ScheduleDaily, date(2026, 3, 10))

	dates := DateSequence(spec, spec.StartDate, datePtr(2026, 3, 5))

	assert.Empty(t, dates)
}

func TestDateSequenceDeterministic(t *testing.T) {
	spec := domain.NewScheduleSpec(domain.ScheduleWeekly, date(2026, 3, 1))
	spec.WeeklyDays = []time.Weekday{time.Friday}

	first := DateSequence(spec, spec.StartDate, datePtr(2026, 4, 30))
	second := DateSequence(spec, spec.StartDate, datePtr(2026, 4, 30))

	assert.Equal(t, first, second)
}
