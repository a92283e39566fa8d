package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/planner-api/internal/config"
	"github.com/phrazzld/planner-api/internal/events"
	"github.com/phrazzld/planner-api/internal/platform/postgres"
	"github.com/phrazzld/planner-api/internal/schedule"
	"github.com/phrazzld/planner-api/internal/service"
	"github.com/phrazzld/planner-api/internal/service/auth"
	"github.com/phrazzld/planner-api/internal/store"
	"github.com/phrazzld/planner-api/internal/tz"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	projectStore store.ProjectStore
	taskStore    store.TaskStore
	userStore    store.UserStore

	// Engine
	converter    *tz.Converter
	orchestrator *schedule.Orchestrator

	// Service interfaces
	jwtService     auth.JWTService
	plannerService service.PlannerService
	taskService    service.TaskService

	// Event system
	eventEmitter events.EventEmitter

	// Background jobs
	reminderJob *service.ReminderJob
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// database connection that must be established before initialization.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	// Initialize stores
	app.projectStore = postgres.NewProjectStore(db, logger)
	app.taskStore = postgres.NewTaskStore(db, logger)
	app.userStore = postgres.NewUserStore(db, logger)

	// Initialize the timezone converter and the schedule engine
	app.converter = tz.NewConverter(app.userStore, cfg.Schedule.DefaultTimezone, logger)
	app.orchestrator = schedule.NewOrchestrator(app.converter, logger)

	// Initialize event emitter with the logging handler as the default
	// notification sink
	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(events.NewLoggingHandler(logger))
	app.eventEmitter = emitter

	app.plannerService, err = service.NewPlannerService(
		db,
		app.projectStore,
		app.taskStore,
		app.orchestrator,
		app.converter,
		app.eventEmitter,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create planner service: %w", err)
	}

	app.taskService, err = service.NewTaskService(
		app.taskStore,
		app.userStore,
		app.eventEmitter,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	if cfg.Schedule.ReminderCron != "" {
		app.reminderJob, err = service.NewReminderJob(
			app.taskStore,
			app.eventEmitter,
			cfg.Schedule.ReminderCron,
			logger,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create reminder job: %w", err)
		}
		if err := app.reminderJob.Start(); err != nil {
			return nil, fmt.Errorf("failed to start reminder job: %w", err)
		}
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.reminderJob != nil {
		app.reminderJob.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
