package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"taskboard/internal/model"
)

// UnknownUser is the display name used when a referenced user id cannot be
// resolved.
const UnknownUser = "Unknown"

// UserStore batch-fetches user records. The batch must be a single call
// regardless of input size.
type UserStore interface {
	FindByIDs(ctx context.Context, ids []int) ([]model.User, error)
}

// Names maps user ids to display names.
type Names map[int]string

// Get falls back to UnknownUser for ids absent from the batch result.
func (n Names) Get(id int) string {
	if name, ok := n[id]; ok {
		return name
	}
	return UnknownUser
}

// CollectUserIDs scans every billed and logged time entry across all three
// levels and returns the set of referenced user ids, sorted.
func CollectUserIDs(tasks []model.Task, subtasks []model.Subtask, nanos []model.NanoSubtask) []int {
	seen := map[int]struct{}{}

	collect := func(entries []model.TimeEntry) {
		for _, e := range entries {
			if e.UserID != nil {
				seen[*e.UserID] = struct{}{}
			}
		}
	}

	for _, t := range tasks {
		collect(t.Billed)
		collect(t.Logged)
	}
	for _, s := range subtasks {
		collect(s.Billed)
		collect(s.Logged)
	}
	for _, n := range nanos {
		collect(n.Billed)
		collect(n.Logged)
	}

	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// NameResolver turns user ids into display names with one batch fetch,
// fronted by an optional redis cache. It exists to avoid one user lookup
// per time entry.
type NameResolver struct {
	users  UserStore
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewNameResolver(users UserStore, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *NameResolver {
	return &NameResolver{users: users, rdb: rdb, ttl: ttl, logger: logger}
}

// Resolve returns the id→name lookup for ids. Cached names are read with
// one MGET; the remaining ids go to the store in a single batch. Redis
// being down never fails a report.
func (r *NameResolver) Resolve(ctx context.Context, ids []int) (Names, error) {
	names := Names{}
	if len(ids) == 0 {
		return names, nil
	}

	missing := ids
	if r.rdb != nil {
		missing = r.fromCache(ctx, ids, names)
	}

	if len(missing) == 0 {
		return names, nil
	}

	users, err := r.users.FindByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}

	for _, u := range users {
		names[u.ID] = u.DisplayName
	}

	if r.rdb != nil && len(users) > 0 {
		r.fillCache(ctx, users)
	}

	return names, nil
}

func cacheKey(id int) string {
	return fmt.Sprintf("user:name:%d", id)
}

// fromCache fills names from redis and returns the ids still missing.
func (r *NameResolver) fromCache(ctx context.Context, ids []int, names Names) []int {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = cacheKey(id)
	}

	values, err := r.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		// Redis 挂了？fail open：全部走数据库
		r.logger.Warn("Name cache read failed", zap.Error(err))
		return ids
	}

	missing := []int{}
	for i, v := range values {
		if s, ok := v.(string); ok {
			names[ids[i]] = s
		} else {
			missing = append(missing, ids[i])
		}
	}
	return missing
}

func (r *NameResolver) fillCache(ctx context.Context, users []model.User) {
	pipe := r.rdb.Pipeline()
	for _, u := range users {
		pipe.Set(ctx, cacheKey(u.ID), u.DisplayName, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Warn("Name cache write failed", zap.Error(err))
	}
}
