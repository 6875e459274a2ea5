package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"taskboard/internal/model"
)

// Time entries live in a single table keyed by (parent_kind, parent_id) so
// one query per level loads every billed and logged list at once.
const (
	parentTask    = "task"
	parentSubtask = "subtask"
	parentNano    = "nano"
)

type WorkItemRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewWorkItemRepository(db *pgxpool.Pool, logger *zap.Logger) *WorkItemRepository {
	return &WorkItemRepository{db: db, logger: logger}
}

// entryLists holds the billed and logged entries for one parent kind,
// grouped by parent id.
type entryLists struct {
	billed map[int][]model.TimeEntry
	logged map[int][]model.TimeEntry
}

func (r *WorkItemRepository) loadEntries(ctx context.Context, parentKind string) (entryLists, error) {
	query := `
        SELECT parent_id, entry_kind, user_id, entry_date, hours, minutes
        FROM time_entries
        WHERE parent_kind = $1
        ORDER BY id
    `

	rows, err := r.db.Query(ctx, query, parentKind)
	if err != nil {
		r.logger.Error("Failed to load time entries",
			zap.String("parent_kind", parentKind),
			zap.Error(err),
		)
		return entryLists{}, err
	}
	defer rows.Close()

	lists := entryLists{
		billed: make(map[int][]model.TimeEntry),
		logged: make(map[int][]model.TimeEntry),
	}

	for rows.Next() {
		var parentID int
		var kind string
		var e model.TimeEntry

		if err := rows.Scan(&parentID, &kind, &e.UserID, &e.Date, &e.Hours, &e.Minutes); err != nil {
			return entryLists{}, err
		}

		switch kind {
		case "billed":
			lists.billed[parentID] = append(lists.billed[parentID], e)
		case "logged":
			lists.logged[parentID] = append(lists.logged[parentID], e)
		}
	}

	return lists, rows.Err()
}

// ListTasks returns all non-archived tasks, each carrying its own billed and
// logged time-entry lists.
func (r *WorkItemRepository) ListTasks(ctx context.Context) ([]model.Task, error) {
	query := `
        SELECT id, project_id, title, archived, updated_at
        FROM tasks
        WHERE NOT archived
        ORDER BY id
    `

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list tasks", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Archived, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	lists, err := r.loadEntries(ctx, parentTask)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		tasks[i].Billed = lists.billed[tasks[i].ID]
		tasks[i].Logged = lists.logged[tasks[i].ID]
	}

	return tasks, nil
}

// ListSubtasks returns all non-archived subtasks with their entry lists.
func (r *WorkItemRepository) ListSubtasks(ctx context.Context) ([]model.Subtask, error) {
	query := `
        SELECT id, task_id, title, archived, updated_at
        FROM subtasks
        WHERE NOT archived
        ORDER BY id
    `

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list subtasks", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	subtasks := []model.Subtask{}
	for rows.Next() {
		var s model.Subtask
		if err := rows.Scan(&s.ID, &s.TaskID, &s.Title, &s.Archived, &s.UpdatedAt); err != nil {
			return nil, err
		}
		subtasks = append(subtasks, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	lists, err := r.loadEntries(ctx, parentSubtask)
	if err != nil {
		return nil, err
	}
	for i := range subtasks {
		subtasks[i].Billed = lists.billed[subtasks[i].ID]
		subtasks[i].Logged = lists.logged[subtasks[i].ID]
	}

	return subtasks, nil
}

// ListNanoSubtasks returns all non-archived nano-subtasks with their entry
// lists.
func (r *WorkItemRepository) ListNanoSubtasks(ctx context.Context) ([]model.NanoSubtask, error) {
	query := `
        SELECT id, subtask_id, title, archived, updated_at
        FROM nano_subtasks
        WHERE NOT archived
        ORDER BY id
    `

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list nano subtasks", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	nanos := []model.NanoSubtask{}
	for rows.Next() {
		var n model.NanoSubtask
		if err := rows.Scan(&n.ID, &n.SubtaskID, &n.Title, &n.Archived, &n.UpdatedAt); err != nil {
			return nil, err
		}
		nanos = append(nanos, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	lists, err := r.loadEntries(ctx, parentNano)
	if err != nil {
		return nil, err
	}
	for i := range nanos {
		nanos[i].Billed = lists.billed[nanos[i].ID]
		nanos[i].Logged = lists.logged[nanos[i].ID]
	}

	return nanos, nil
}
