package report

import (
	"time"

	"go.uber.org/zap"

	"taskboard/internal/model"
	"taskboard/pkg/metrics"
)

const (
	levelTask    = "task"
	levelSubtask = "subtask"
	levelNano    = "nano"
)

// itemVisit is one work item handed to a traversal visitor, regardless of
// its level in the hierarchy.
type itemVisit struct {
	Level     string
	Billed    []model.TimeEntry
	Logged    []model.TimeEntry
	UpdatedAt *time.Time
}

// walkProject visits every work item reachable from a project: its tasks,
// their subtasks and their nano-subtasks. This is the single traversal core
// shared by every report assembler.
func walkProject(projectID int, idx *Index, visit func(itemVisit)) {
	for _, t := range idx.TasksByProject[projectID] {
		visit(itemVisit{Level: levelTask, Billed: t.Billed, Logged: t.Logged, UpdatedAt: t.UpdatedAt})
		for _, s := range idx.SubtasksByTask[t.ID] {
			visit(itemVisit{Level: levelSubtask, Billed: s.Billed, Logged: s.Logged, UpdatedAt: s.UpdatedAt})
			for _, n := range idx.NanosBySubtask[s.ID] {
				visit(itemVisit{Level: levelNano, Billed: n.Billed, Logged: n.Logged, UpdatedAt: n.UpdatedAt})
			}
		}
	}
}

// Rollup is the result of aggregating one project's full hierarchy. It is a
// plain value built fresh per call; nothing is shared across projects.
type Rollup struct {
	ProjectID     int
	BilledMinutes int
	LoggedMinutes int
	// PerUser accumulates contributions from all three levels into a
	// single flat map keyed by user id. Entries without a user ref count
	// toward the project totals only.
	PerUser UserLedger
	// LastActivity is the max updated_at across all visited items. Items
	// without one are excluded from the comparison.
	LastActivity *time.Time
}

// AggregateProject walks one project's hierarchy and sums billed and logged
// minutes, optionally restricted to a date range. Malformed entries are
// skipped and logged, never fatal.
func AggregateProject(p model.Project, idx *Index, rng *DateRange, logger *zap.Logger) Rollup {
	rollup := Rollup{
		ProjectID: p.ID,
		PerUser:   UserLedger{},
	}

	walkProject(p.ID, idx, func(item itemVisit) {
		metrics.IncrementEntriesScanned(item.Level, len(item.Billed)+len(item.Logged))

		for _, e := range item.Billed {
			minutes, ok := entryMinutes(p.ID, e, rng, logger)
			if !ok {
				continue
			}
			rollup.BilledMinutes += minutes
			if e.UserID != nil {
				rollup.PerUser.Get(*e.UserID).Billed += minutes
			}
		}

		for _, e := range item.Logged {
			minutes, ok := entryMinutes(p.ID, e, rng, logger)
			if !ok {
				continue
			}
			rollup.LoggedMinutes += minutes
			if e.UserID != nil {
				rollup.PerUser.Get(*e.UserID).Logged += minutes
			}
		}

		if item.UpdatedAt != nil {
			if rollup.LastActivity == nil || item.UpdatedAt.After(*rollup.LastActivity) {
				rollup.LastActivity = item.UpdatedAt
			}
		}
	})

	return rollup
}

func entryMinutes(projectID int, e model.TimeEntry, rng *DateRange, logger *zap.Logger) (int, bool) {
	if !e.Valid() {
		metrics.IncrementEntriesSkipped()
		if logger != nil {
			logger.Warn("Skipping malformed time entry",
				zap.Int("project_id", projectID),
				zap.Int("hours", e.Hours),
				zap.Int("minutes", e.Minutes),
			)
		}
		return 0, false
	}
	if !rng.Contains(e.Date) {
		return 0, false
	}
	return e.TotalMinutes(), true
}
