package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Schedule ScheduleConfig `mapstructure:"schedule" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains authentication settings. Only token verification
// happens in this service; credential management is external.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`
}

// ScheduleConfig contains settings for the task generation engine and the
// reminder job.
type ScheduleConfig struct {
	// DefaultTimezone is the system-wide fallback zone applied when a user
	// has no timezone preference. Must be a valid IANA identifier.
	DefaultTimezone string `mapstructure:"default_timezone" validate:"required"`

	// PreviewDays is the default window length for upcoming-date previews.
	PreviewDays int `mapstructure:"preview_days" validate:"required,gt=0,lte=730"`

	// ReminderCron is the cron expression for the daily due-task reminder
	// sweep. Empty disables the job.
	ReminderCron string `mapstructure:"reminder_cron"`
}
