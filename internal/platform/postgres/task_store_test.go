package postgres

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/planner-api/internal/domain"
	"github.com/phrazzld/planner-api/internal/store"
)

func TestBuildTaskFilterEmpty(t *testing.T) {
	where, args := buildTaskFilter(store.TaskFilter{}, true)
	assert.Equal(t, "TRUE", where)
	assert.Nil(t, args)
}

func TestBuildTaskFilterVisibility(t *testing.T) {
	userID := uuid.New()

	t.Run("assignment only", func(t *testing.T) {
		where, args := buildTaskFilter(store.TaskFilter{AssignedTo: &userID}, true)
		assert.Equal(t, "assigned_to = $1", where)
		assert.Equal(t, []any{userID}, args)
	})

	t.Run("assignment or role queue", func(t *testing.T) {
		where, args := buildTaskFilter(store.TaskFilter{
			AssignedTo: &userID,
			Roles:      []string{"Technician", "Supervisor"},
		}, true)

		assert.Equal(t,
			"(assigned_to = $1 OR ((assigned_role = $2 OR assigned_role = $3) AND assigned_to IS NULL))",
			where)
		assert.Equal(t, []any{userID, "Technician", "Supervisor"}, args)
	})

	t.Run("organization scoping", func(t *testing.T) {
		where, args := buildTaskFilter(store.TaskFilter{
			AssignedTo:   &userID,
			Organization: "Acme",
		}, true)

		assert.Equal(t, "assigned_to = $1 AND organization = $2", where)
		assert.Equal(t, []any{userID, "Acme"}, args)
	})

	t.Run("visibility excluded", func(t *testing.T) {
		where, args := buildTaskFilter(store.TaskFilter{
			AssignedTo:   &userID,
			Organization: "Acme",
		}, false)

		assert.Equal(t, "TRUE", where)
		assert.Nil(t, args)
	})
}

func TestBuildTaskFilterStatus(t *testing.T) {
	status := domain.TaskStatusPending
	where, args := buildTaskFilter(store.TaskFilter{Status: &status}, true)

	assert.Equal(t, "status = $1", where)
	assert.Equal(t, []any{"Pending"}, args)
}

func TestBuildTaskFilterDueWindows(t *testing.T) {
	today := domain.DateOnly(time.Now().UTC())

	t.Run("today", func(t *testing.T) {
		where, args := buildTaskFilter(store.TaskFilter{Due: store.DueToday}, true)
		assert.Equal(t, "due_local >= $1 AND due_local < $2", where)
		require.Len(t, args, 2)
		assert.Equal(t, today, args[0])
		assert.Equal(t, today.AddDate(0, 0, 1), args[1])
	})

	t.Run("week spans eight days", func(t *testing.T) {
		_, args := buildTaskFilter(store.TaskFilter{Due: store.DueWeek}, true)
		require.Len(t, args, 2)
		assert.Equal(t, today.AddDate(0, 0, 8), args[1])
	})

	t.Run("month", func(t *testing.T) {
		_, args := buildTaskFilter(store.TaskFilter{Due: store.DueMonth}, true)
		require.Len(t, args, 2)
		assert.Equal(t, today.AddDate(0, 1, 1), args[1])
	})

	t.Run("overdue excludes completed", func(t *testing.T) {
		where, args := buildTaskFilter(store.TaskFilter{Due: store.DueOverdue}, true)
		assert.Equal(t, "due_local < $1 AND status != 'Completed'", where)
		require.Len(t, args, 1)
	})
}

func TestBuildTaskFilterSearch(t *testing.T) {
	where, args := buildTaskFilter(store.TaskFilter{Search: "pump"}, true)

	assert.Equal(t, "(title ILIKE $1 OR notes ILIKE $1)", where)
	assert.Equal(t, []any{"%pump%"}, args)
}

func TestBuildTaskFilterCombined(t *testing.T) {
	userID := uuid.New()
	status := domain.TaskStatusInProgress

	where, args := buildTaskFilter(store.TaskFilter{
		AssignedTo:   &userID,
		Roles:        []string{"Technician"},
		Organization: "Acme",
		Status:       &status,
		Due:          store.DueToday,
		Search:       "boiler",
	}, true)

	require.Len(t, args, 7)

	// Placeholders must be sequential across every condition.
	for i := 1; i <= len(args); i++ {
		assert.Contains(t, where, fmt.Sprintf("$%d", i))
	}
	assert.NotContains(t, where, fmt.Sprintf("$%d", len(args)+1))
}

func TestEncodeDecodeWeekdays(t *testing.T) {
	encoded := encodeWeekdays([]time.Weekday{time.Thursday, time.Monday})
	require.True(t, encoded.Valid)
	assert.Equal(t, "1,4", encoded.String, "weekdays encode Sunday-first ascending")

	decoded, err := decodeWeekdays(encoded.String)
	require.NoError(t, err)
	assert.Equal(t, []time.Weekday{time.Monday, time.Thursday}, decoded)

	assert.False(t, encodeWeekdays(nil).Valid)

	_, err = decodeWeekdays("1,7")
	assert.Error(t, err)
	_, err = decodeWeekdays("mon")
	assert.Error(t, err)
}

func TestParseTimeOfDay(t *testing.T) {
	parsed, err := parseTimeOfDay("09:30:15")
	require.NoError(t, err)
	assert.Equal(t, domain.TimeOfDay{Hour: 9, Minute: 30, Second: 15}, parsed)

	_, err = parseTimeOfDay("9:30")
	assert.Error(t, err)
}
