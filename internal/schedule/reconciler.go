package schedule

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/planner-api/internal/domain"
)

// Report summarizes what a reconciliation produced.
type Report struct {
	// Created is the number of records freshly built by the factory.
	Created int `json:"created"`
	// Preserved is the number of protected records retained unchanged,
	// including those whose dates fell outside the new sequence.
	Preserved int `json:"preserved"`
	// TitleUpdates maps record IDs to their rewritten titles. It is
	// populated only on the title-only path, where the persistence layer
	// patches titles in place instead of replacing the collection.
	TitleUpdates map[uuid.UUID]string `json:"-"`
}

// Reconciler merges a freshly generated date sequence with a project's
// existing task records. Completed or manually touched work is never
// overwritten or dropped; only untouched auto-generated records are
// rebuilt or removed.
type Reconciler struct {
	logger *slog.Logger
}

// NewReconciler creates a Reconciler. If logger is nil, the default logger
// is used.
func NewReconciler(logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{logger: logger.With(slog.String("component", "reconciler"))}
}

// Protected reports whether a record must survive regeneration untouched.
// A record is protected when it represents started or finished work, was
// created manually, is assigned to a specific user, left the Pending
// state, or carries notes differing from what the factory would generate
// (the manual-edit signal).
func Protected(task *domain.TaskRecord, factoryNotes string) bool {
	switch {
	case task.Status == domain.TaskStatusCompleted,
		task.Status == domain.TaskStatusInProgress:
		return true
	case !task.AutoGenerated:
		return true
	case task.AssignedTo != nil:
		return true
	case task.Status != domain.TaskStatusPending:
		return true
	case task.Notes != factoryNotes:
		return true
	default:
		return false
	}
}

// Reconcile produces the project's new task collection from its existing
// records and the freshly generated dates:
//
//   - a protected record keeps its place for its date;
//   - every other date in the sequence gets a fresh factory-built record,
//     overwriting any unprotected record that was there;
//   - protected records dated outside the sequence are still retained
//     (schedule shrinkage never deletes protected work);
//   - unprotected records dated outside the sequence are dropped.
//
// The result is a brand-new collection sorted ascending by canonical UTC
// due date; the inputs are never mutated.
func (r *Reconciler) Reconcile(
	existing []*domain.TaskRecord,
	newDates []time.Time,
	factory *Factory,
) ([]*domain.TaskRecord, Report, error) {
	factoryNotes := factory.Notes()

	byDate := make(map[string]*domain.TaskRecord, len(existing))
	for _, task := range existing {
		key := dateKey(task.DueDate())
		current, ok := byDate[key]
		if !ok {
			byDate[key] = task
			continue
		}

		// Two records on one calendar date should not occur with correct
		// date keying. The first protected record wins deterministically;
		// the conflict is logged, not raised.
		r.logger.Warn("duplicate task records for calendar date",
			slog.String("date", key),
			slog.String("kept_task_id", current.ID.String()),
			slog.String("conflicting_task_id", task.ID.String()))
		if !Protected(current, factoryNotes) && Protected(task, factoryNotes) {
			byDate[key] = task
		}
	}

	inSequence := make(map[string]bool, len(newDates))
	final := make([]*domain.TaskRecord, 0, len(newDates))
	var report Report

	for _, date := range newDates {
		key := dateKey(date)
		if inSequence[key] {
			continue
		}
		inSequence[key] = true

		if task, ok := byDate[key]; ok && Protected(task, factoryNotes) {
			final = append(final, task)
			report.Preserved++
			continue
		}

		task, err := factory.Build(date)
		if err != nil {
			return nil, Report{}, fmt.Errorf("reconcile: %w", err)
		}
		final = append(final, task)
		report.Created++
	}

	for _, task := range existing {
		key := dateKey(task.DueDate())
		if inSequence[key] || byDate[key] != task {
			continue
		}
		if Protected(task, factoryNotes) {
			final = append(final, task)
			report.Preserved++
		}
	}

	sort.SliceStable(final, func(i, j int) bool {
		return final[i].DueAtUTC.Before(final[j].DueAtUTC)
	})

	return final, report, nil
}

func dateKey(date time.Time) string {
	return date.Format("2006-01-02")
}
