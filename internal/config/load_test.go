package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("PLANNER_DATABASE_URL", "postgres://localhost:5432/planner_test")
	t.Setenv("PLANNER_AUTH_JWT_SECRET", strings.Repeat("s", 32))
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "UTC", cfg.Schedule.DefaultTimezone)
	assert.Equal(t, 30, cfg.Schedule.PreviewDays)
	assert.Equal(t, "0 7 * * *", cfg.Schedule.ReminderCron)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PLANNER_SERVER_PORT", "9090")
	t.Setenv("PLANNER_SERVER_LOG_LEVEL", "debug")
	t.Setenv("PLANNER_SCHEDULE_DEFAULT_TIMEZONE", "America/New_York")
	t.Setenv("PLANNER_SCHEDULE_PREVIEW_DAYS", "14")
	t.Setenv("PLANNER_SCHEDULE_REMINDER_CRON", "30 6 * * *")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "America/New_York", cfg.Schedule.DefaultTimezone)
	assert.Equal(t, 14, cfg.Schedule.PreviewDays)
	assert.Equal(t, "30 6 * * *", cfg.Schedule.ReminderCron)
}

func TestLoadMissingDatabaseURL(t *testing.T) {
	t.Setenv("PLANNER_AUTH_JWT_SECRET", strings.Repeat("s", 32))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestLoadShortJWTSecret(t *testing.T) {
	t.Setenv("PLANNER_DATABASE_URL", "postgres://localhost:5432/planner_test")
	t.Setenv("PLANNER_AUTH_JWT_SECRET", "too-short")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestLoadInvalidLogLevel(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PLANNER_SERVER_LOG_LEVEL", "verbose")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}
