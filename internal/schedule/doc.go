// Package schedule implements the recurring task generation engine: a
// pure date-sequence generator, a task record factory, a reconciler that
// merges freshly generated dates with existing records without
// overwriting protected work, and an orchestrator that ties them
// together behind validate/regenerate operations.
//
// Everything here is computation-only. Persistence, authorization, and
// notification delivery are the caller's concern.
package schedule
