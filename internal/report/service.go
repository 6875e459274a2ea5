package report

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"taskboard/internal/model"
	"taskboard/internal/repository"
	"taskboard/pkg/circuitbreaker"
	"taskboard/pkg/metrics"
)

// ProjectStore lists report-scoped projects from the entity store.
type ProjectStore interface {
	List(ctx context.Context, filter repository.ProjectFilter) ([]model.Project, error)
	DepartmentExists(ctx context.Context, id int) (bool, error)
}

// WorkItemStore lists the non-archived work-item hierarchy, each item
// carrying its own time-entry lists.
type WorkItemStore interface {
	ListTasks(ctx context.Context) ([]model.Task, error)
	ListSubtasks(ctx context.Context) ([]model.Subtask, error)
	ListNanoSubtasks(ctx context.Context) ([]model.NanoSubtask, error)
}

// Service computes report documents from read-only snapshots of the entity
// store. It never mutates store state, so any number of reports may be
// computed concurrently.
type Service struct {
	projects ProjectStore
	items    WorkItemStore
	resolver *NameResolver
	breaker  *circuitbreaker.CircuitBreaker
	logger   *zap.Logger
	workers  int
}

func NewService(projects ProjectStore, items WorkItemStore, resolver *NameResolver, logger *zap.Logger, workers int) *Service {
	if workers < 1 {
		workers = 1
	}
	return &Service{
		projects: projects,
		items:    items,
		resolver: resolver,
		breaker:  circuitbreaker.New(circuitbreaker.DefaultConfig()),
		logger:   logger,
		workers:  workers,
	}
}

// snapshot is one request's joined, in-memory view of the store. The
// aggregation stage never re-queries after it is built.
type snapshot struct {
	projects []model.Project
	idx      *Index
	names    Names
}

// loadSnapshot runs the fetch stage: the four store reads are dispatched
// concurrently and joined, then user names are resolved in one batch.
func (s *Service) loadSnapshot(ctx context.Context, p Params) (*snapshot, error) {
	notArchived := false
	filter := repository.ProjectFilter{
		Archived:     &notArchived,
		DepartmentID: p.DepartmentID,
		ID:           p.ProjectID,
	}

	var (
		projects []model.Project
		tasks    []model.Task
		subtasks []model.Subtask
		nanos    []model.NanoSubtask
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.breaker.Execute(gctx, func(ctx context.Context) error {
			var err error
			projects, err = s.projects.List(ctx, filter)
			return err
		})
	})
	g.Go(func() error {
		return s.breaker.Execute(gctx, func(ctx context.Context) error {
			var err error
			tasks, err = s.items.ListTasks(ctx)
			return err
		})
	})
	g.Go(func() error {
		return s.breaker.Execute(gctx, func(ctx context.Context) error {
			var err error
			subtasks, err = s.items.ListSubtasks(ctx)
			return err
		})
	})
	g.Go(func() error {
		return s.breaker.Execute(gctx, func(ctx context.Context) error {
			var err error
			nanos, err = s.items.ListNanoSubtasks(ctx)
			return err
		})
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if p.ProjectID != nil && len(projects) == 0 {
		return nil, &NotFoundError{Resource: "project", ID: *p.ProjectID}
	}
	if p.DepartmentID != nil && len(projects) == 0 {
		exists, err := s.projects.DepartmentExists(ctx, *p.DepartmentID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, &NotFoundError{Resource: "department", ID: *p.DepartmentID}
		}
	}

	// One batch covers entry users, coordinators and the requested user.
	ids := CollectUserIDs(tasks, subtasks, nanos)
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	for _, proj := range projects {
		for _, c := range proj.Coordinators {
			if _, ok := seen[c]; !ok {
				seen[c] = struct{}{}
				ids = append(ids, c)
			}
		}
	}
	if p.UserID != nil {
		if _, ok := seen[*p.UserID]; !ok {
			ids = append(ids, *p.UserID)
		}
	}

	names, err := s.resolver.Resolve(ctx, ids)
	if err != nil {
		return nil, err
	}

	if p.UserID != nil {
		if _, ok := names[*p.UserID]; !ok {
			return nil, &NotFoundError{Resource: "user", ID: *p.UserID}
		}
	}

	return &snapshot{
		projects: projects,
		idx:      BuildIndex(tasks, subtasks, nanos),
		names:    names,
	}, nil
}

// rollupAll aggregates every project in scope on a bounded worker pool.
// Each worker folds into its own partial map; the partials are merged by a
// single reducer after the pool drains, so no accumulator is ever shared.
func (s *Service) rollupAll(ctx context.Context, snap *snapshot, rng *DateRange) map[int]Rollup {
	workers := s.workers
	if workers > len(snap.projects) {
		workers = len(snap.projects)
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan model.Project)
	partials := make([]map[int]Rollup, workers)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			part := map[int]Rollup{}
			for proj := range jobs {
				part[proj.ID] = AggregateProject(proj, snap.idx, rng, s.logger)
			}
			partials[w] = part
		}(w)
	}

feed:
	for _, proj := range snap.projects {
		select {
		case <-ctx.Done():
			// Caller aborted; nothing to roll back, the result is
			// simply discarded.
			break feed
		case jobs <- proj:
		}
	}
	close(jobs)
	wg.Wait()

	merged := make(map[int]Rollup, len(snap.projects))
	for _, part := range partials {
		for id, r := range part {
			merged[id] = r
		}
	}
	return merged
}

// Summary builds the org-wide totals report.
func (s *Service) Summary(ctx context.Context, p Params) (*SummaryReport, error) {
	return timed(s, ctx, p, "summary", s.buildSummary)
}

// Users builds the user-centric report.
func (s *Service) Users(ctx context.Context, p Params) (*UserReport, error) {
	return timed(s, ctx, p, "users", s.buildUserReport)
}

// Projects builds the project-centric report.
func (s *Service) Projects(ctx context.Context, p Params) (*ProjectReport, error) {
	return timed(s, ctx, p, "projects", s.buildProjectReport)
}

// Weekly builds the week-bucketed time series for a year or single month.
func (s *Service) Weekly(ctx context.Context, p Params) (*WeeklyReport, error) {
	if p.Year == nil {
		return nil, &ValidationError{Field: "year", Reason: "required for the weekly view"}
	}
	return timed(s, ctx, p, "weekly", s.buildWeeklyReport)
}

// timed wraps a report build with snapshot loading and metrics.
func timed[T any](s *Service, ctx context.Context, p Params, name string, build func(context.Context, *snapshot, Params) (*T, error)) (*T, error) {
	start := time.Now()

	snap, err := s.loadSnapshot(ctx, p)
	if err != nil {
		metrics.RecordReportBuild(name, "failed", time.Since(start))
		return nil, err
	}

	doc, err := build(ctx, snap, p)
	status := "success"
	if err != nil {
		status = "failed"
	}
	metrics.RecordReportBuild(name, status, time.Since(start))
	return doc, err
}
