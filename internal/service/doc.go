// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects, the schedule
// engine, and repositories (defined in internal/store) to fulfill
// application features.
//
// Key components:
//
//  1. PlannerService drives schedule validation, task regeneration, date
//     previews, timezone-aware due date rendering, and the legacy backfill.
//     Regeneration runs inside a single transaction so a project's task
//     collection is replaced completely or not at all.
//
//  2. TaskService covers the collaborator-facing task operations: filtered
//     listings with a status rollup, status transitions, and assignment.
//
//  3. ReminderJob runs the daily due-task sweep on a cron schedule and
//     publishes reminder events; delivery is an external concern.
//
// Services receive dependencies through constructor injection and depend
// only on domain entities and store interfaces, never on specific
// infrastructure implementations.
package service
