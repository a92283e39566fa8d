package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/planner-api/internal/api"
	apiMiddleware "github.com/phrazzld/planner-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	// Create API handlers using the application's services
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	projectHandler := api.NewProjectHandler(
		app.plannerService,
		app.projectStore,
		app.config.Schedule.PreviewDays,
		app.logger,
	)
	taskHandler := api.NewTaskHandler(app.taskService, app.plannerService, app.logger)
	adminHandler := api.NewAdminHandler(app.plannerService, app.logger)

	// Register routes
	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		// Project and schedule endpoints
		r.Post("/projects", projectHandler.CreateProject)
		r.Get("/projects", projectHandler.ListProjects)
		r.Put("/projects/{id}", projectHandler.UpdateProject)
		r.Post("/projects/{id}/regenerate", projectHandler.RegenerateTasks)
		r.Get("/projects/{id}/preview", projectHandler.PreviewDates)

		// Task endpoints
		r.Get("/tasks", taskHandler.ListTasks)
		r.Patch("/tasks/{id}/status", taskHandler.UpdateStatus)
		r.Post("/tasks/{id}/assign", taskHandler.Assign)
		r.Get("/tasks/{id}/due-date", taskHandler.DueDate)
		r.Get("/tasks/{id}/diagnose", taskHandler.Diagnose)

		// Operational endpoints
		r.Post("/admin/backfill-timezones", adminHandler.BackfillTimezones)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
