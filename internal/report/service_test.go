package report

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskboard/internal/model"
	"taskboard/internal/repository"
)

type fakeProjectStore struct {
	projects    []model.Project
	departments map[int]bool
}

func (f *fakeProjectStore) List(ctx context.Context, filter repository.ProjectFilter) ([]model.Project, error) {
	out := []model.Project{}
	for _, p := range f.projects {
		if filter.Archived != nil && p.Archived != *filter.Archived {
			continue
		}
		if filter.ID != nil && p.ID != *filter.ID {
			continue
		}
		if filter.DepartmentID != nil && (p.DepartmentID == nil || *p.DepartmentID != *filter.DepartmentID) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProjectStore) DepartmentExists(ctx context.Context, id int) (bool, error) {
	return f.departments[id], nil
}

type fakeWorkItemStore struct {
	tasks    []model.Task
	subtasks []model.Subtask
	nanos    []model.NanoSubtask
}

func (f *fakeWorkItemStore) ListTasks(ctx context.Context) ([]model.Task, error) {
	return f.tasks, nil
}

func (f *fakeWorkItemStore) ListSubtasks(ctx context.Context) ([]model.Subtask, error) {
	return f.subtasks, nil
}

func (f *fakeWorkItemStore) ListNanoSubtasks(ctx context.Context) ([]model.NanoSubtask, error) {
	return f.nanos, nil
}

type fakeUserStore struct {
	users map[int]string
	calls int
}

func (f *fakeUserStore) FindByIDs(ctx context.Context, ids []int) ([]model.User, error) {
	f.calls++
	out := []model.User{}
	for _, id := range ids {
		if name, ok := f.users[id]; ok {
			out = append(out, model.User{ID: id, DisplayName: name})
		}
	}
	return out, nil
}

func newTestService(projects *fakeProjectStore, items *fakeWorkItemStore, users *fakeUserStore, workers int) *Service {
	log := zap.NewNop()
	resolver := NewNameResolver(users, nil, time.Minute, log)
	return NewService(projects, items, resolver, log, workers)
}

// testFixture is two projects: #1 hourly at $20 with billed and logged work
// across all three levels, #2 fixed at $500.
func testFixture() (*fakeProjectStore, *fakeWorkItemStore, *fakeUserStore) {
	dept := 3
	projects := &fakeProjectStore{
		projects: []model.Project{
			{
				ID: 1, Name: "Atlas", DepartmentID: &dept, DepartmentName: "Engineering",
				Billing: model.BillingHourly, HourlyRate: decimal.RequireFromString("20"),
				Coordinators: []int{100},
			},
			{
				ID: 2, Name: "Beacon",
				Billing: model.BillingFixed, FixedPrice: decimal.RequireFromString("500"),
			},
		},
		departments: map[int]bool{3: true, 4: true},
	}

	items := &fakeWorkItemStore{
		tasks: []model.Task{
			{
				ID: 10, ProjectID: 1,
				Billed: []model.TimeEntry{entry(intp(100), datep(2024, time.January, 3), 1, 0)},
				Logged: []model.TimeEntry{entry(intp(100), datep(2024, time.January, 3), 2, 0)},
			},
			{
				ID: 11, ProjectID: 2,
				Billed: []model.TimeEntry{entry(intp(101), datep(2024, time.January, 10), 3, 0)},
			},
		},
		subtasks: []model.Subtask{
			{
				ID: 20, TaskID: 10,
				Billed: []model.TimeEntry{entry(intp(101), datep(2024, time.January, 4), 1, 0)},
			},
		},
		nanos: []model.NanoSubtask{
			{
				ID: 30, SubtaskID: 20,
				Billed: []model.TimeEntry{entry(intp(100), datep(2024, time.February, 7), 0, 30)},
			},
		},
	}

	users := &fakeUserStore{users: map[int]string{
		100: "Ada",
		101: "Blaise",
	}}

	return projects, items, users
}

func TestSummary(t *testing.T) {
	projects, items, users := testFixture()
	svc := newTestService(projects, items, users, 2)

	doc, err := svc.Summary(context.Background(), Params{})
	require.NoError(t, err)

	// Project 1: 150 billed minutes hourly at $20 = $50. Project 2 is a
	// $500 flat fee.
	assert.Equal(t, "550", doc.TotalRevenue.String())
	assert.Equal(t, HoursMinutes{Hours: 5, Minutes: 30}, doc.TotalBilled)
	assert.Equal(t, HoursMinutes{Hours: 2, Minutes: 0}, doc.TotalLogged)
	// Only project 1 logged more than it billed: 120 - 150 clamps to 0.
	assert.Equal(t, HoursMinutes{Hours: 0, Minutes: 0}, doc.TotalUnbilled)
	assert.Equal(t, 2, doc.ProjectCount)

	require.NotNil(t, doc.TopProject)
	assert.Equal(t, 2, doc.TopProject.ProjectID)
	assert.Equal(t, "500", doc.TopProject.Payment.String())

	require.NotNil(t, doc.TopEarner)
	assert.Equal(t, 101, doc.TopEarner.UserID)
	assert.Equal(t, "Blaise", doc.TopEarner.Name)
	assert.Equal(t, HoursMinutes{Hours: 4, Minutes: 0}, doc.TopEarner.Billed)
}

func TestSummary_TopEarnerTieBreaksOnLowestID(t *testing.T) {
	projects := &fakeProjectStore{projects: []model.Project{{ID: 1, Billing: model.BillingHourly, HourlyRate: decimal.RequireFromString("10")}}}
	items := &fakeWorkItemStore{tasks: []model.Task{{
		ID: 10, ProjectID: 1,
		Billed: []model.TimeEntry{
			entry(intp(9), datep(2024, time.January, 3), 1, 0),
			entry(intp(4), datep(2024, time.January, 3), 1, 0),
		},
	}}}
	users := &fakeUserStore{users: map[int]string{4: "Four", 9: "Nine"}}
	svc := newTestService(projects, items, users, 1)

	doc, err := svc.Summary(context.Background(), Params{})
	require.NoError(t, err)
	require.NotNil(t, doc.TopEarner)
	assert.Equal(t, 4, doc.TopEarner.UserID)
}

func TestSummary_DateRangeNarrowsScope(t *testing.T) {
	projects, items, users := testFixture()
	svc := newTestService(projects, items, users, 2)

	doc, err := svc.Summary(context.Background(), Params{
		Range: &DateRange{Start: datep(2024, time.January, 1), End: datep(2024, time.January, 8)},
	})
	require.NoError(t, err)

	// Only project 1's two January entries qualify: 120 minutes, $40.
	assert.Equal(t, HoursMinutes{Hours: 2, Minutes: 0}, doc.TotalBilled)
	assert.Equal(t, "540", doc.TotalRevenue.String()) // $40 + flat $500
}

func TestSummary_ProjectNotFound(t *testing.T) {
	projects, items, users := testFixture()
	svc := newTestService(projects, items, users, 2)

	_, err := svc.Summary(context.Background(), Params{ProjectID: intp(99)})
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "project", nf.Resource)
}

func TestSummary_DepartmentScope(t *testing.T) {
	projects, items, users := testFixture()
	svc := newTestService(projects, items, users, 2)

	// Unknown department fails closed.
	_, err := svc.Summary(context.Background(), Params{DepartmentID: intp(77)})
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "department", nf.Resource)

	// A known department with no projects is an empty report, not an error.
	doc, err := svc.Summary(context.Background(), Params{DepartmentID: intp(4)})
	require.NoError(t, err)
	assert.Equal(t, 0, doc.ProjectCount)
	assert.Equal(t, "0", doc.TotalRevenue.String())
}

func TestUsersReport(t *testing.T) {
	projects, items, users := testFixture()
	svc := newTestService(projects, items, users, 2)

	doc, err := svc.Users(context.Background(), Params{})
	require.NoError(t, err)
	require.Len(t, doc.Users, 2)

	ada := doc.Users[0]
	assert.Equal(t, 100, ada.UserID)
	assert.Equal(t, "Ada", ada.Name)
	require.Len(t, ada.Projects, 1)
	assert.Equal(t, HoursMinutes{Hours: 1, Minutes: 30}, ada.TotalBilled)
	assert.Equal(t, "30", ada.TotalPayment.String())

	blaise := doc.Users[1]
	assert.Equal(t, 101, blaise.UserID)
	require.Len(t, blaise.Projects, 2)
	// The fixed-price project contributes no per-user payment share.
	assert.Equal(t, 2, blaise.Projects[1].ProjectID)
	assert.Equal(t, "0", blaise.Projects[1].Payment.String())
	assert.Equal(t, "20", blaise.TotalPayment.String())
}

func TestUsersReport_SingleUserScope(t *testing.T) {
	projects, items, users := testFixture()
	svc := newTestService(projects, items, users, 2)

	doc, err := svc.Users(context.Background(), Params{UserID: intp(101)})
	require.NoError(t, err)
	require.Len(t, doc.Users, 1)
	assert.Equal(t, 101, doc.Users[0].UserID)

	_, err = svc.Users(context.Background(), Params{UserID: intp(404)})
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "user", nf.Resource)
}

func TestProjectsReport(t *testing.T) {
	projects, items, users := testFixture()
	updated := time.Date(2024, time.February, 8, 9, 0, 0, 0, time.UTC)
	items.tasks[0].UpdatedAt = &updated
	svc := newTestService(projects, items, users, 2)

	doc, err := svc.Projects(context.Background(), Params{})
	require.NoError(t, err)
	require.Len(t, doc.Projects, 2)

	atlas := doc.Projects[0]
	assert.Equal(t, "Engineering", atlas.Department)
	assert.Equal(t, "50", atlas.Payment.String())
	require.NotNil(t, atlas.LastActivity)
	assert.Equal(t, updated, *atlas.LastActivity)
	require.Len(t, atlas.Coordinators, 1)
	assert.Equal(t, "Ada", atlas.Coordinators[0].Name)

	beacon := doc.Projects[1]
	assert.Equal(t, UnassignedDepartment, beacon.Department)
	assert.Equal(t, "500", beacon.Payment.String())
	assert.Nil(t, beacon.LastActivity)
}

func TestProjectsReport_CoordinatorsAreCapped(t *testing.T) {
	projects := &fakeProjectStore{projects: []model.Project{{
		ID: 1, Name: "Crowded", Billing: model.BillingHourly,
		HourlyRate:   decimal.RequireFromString("10"),
		Coordinators: []int{1, 2, 3, 4, 5, 6, 7},
	}}}
	items := &fakeWorkItemStore{}
	users := &fakeUserStore{users: map[int]string{}}
	svc := newTestService(projects, items, users, 1)

	doc, err := svc.Projects(context.Background(), Params{})
	require.NoError(t, err)
	require.Len(t, doc.Projects, 1)
	assert.Len(t, doc.Projects[0].Coordinators, 5)
	// Unresolvable coordinator ids fall back to "Unknown".
	assert.Equal(t, UnknownUser, doc.Projects[0].Coordinators[0].Name)
}

func TestWeeklyReport(t *testing.T) {
	projects, items, users := testFixture()
	svc := newTestService(projects, items, users, 2)

	year := 2024
	doc, err := svc.Weekly(context.Background(), Params{Year: &year, View: ViewUsers})
	require.NoError(t, err)

	// Data exists in January and February only; empty months are omitted.
	require.Len(t, doc.Months, 2)
	assert.Equal(t, 0, doc.Months[0].Month)
	assert.Equal(t, 1, doc.Months[1].Month)

	jan := doc.Months[0]
	// Jan 3-4 land in week 1, Jan 10 in week 2; other weeks are omitted.
	require.Len(t, jan.Weeks, 2)
	assert.Equal(t, 1, jan.Weeks[0].Week)
	assert.Equal(t, 2, jan.Weeks[1].Week)

	week1 := jan.Weeks[0]
	require.Len(t, week1.Rows, 2)
	assert.Equal(t, 100, week1.Rows[0].ID)
	assert.Equal(t, "Ada", week1.Rows[0].Name)
	assert.Equal(t, HoursMinutes{Hours: 1, Minutes: 0}, week1.Rows[0].Billed)
	assert.Equal(t, "20", week1.Rows[0].Payment.String())

	// Blaise's week-2 work is on the fixed project: minutes counted,
	// payment share zero.
	week2 := jan.Weeks[1]
	require.Len(t, week2.Rows, 1)
	assert.Equal(t, 101, week2.Rows[0].ID)
	assert.Equal(t, "0", week2.Rows[0].Payment.String())
}

func TestWeeklyReport_ProjectView(t *testing.T) {
	projects, items, users := testFixture()
	svc := newTestService(projects, items, users, 2)

	year := 2024
	month := 0
	doc, err := svc.Weekly(context.Background(), Params{Year: &year, Month: &month, View: ViewProjects})
	require.NoError(t, err)

	require.Len(t, doc.Months, 1)
	jan := doc.Months[0]
	require.Len(t, jan.Weeks, 2)

	week1 := jan.Weeks[0]
	require.Len(t, week1.Rows, 1)
	assert.Equal(t, 1, week1.Rows[0].ID)
	assert.Equal(t, "Atlas", week1.Rows[0].Name)
	assert.Equal(t, "40", week1.Rows[0].Payment.String())

	// The fixed project shows its flat fee in its active week.
	week2 := jan.Weeks[1]
	require.Len(t, week2.Rows, 1)
	assert.Equal(t, 2, week2.Rows[0].ID)
	assert.Equal(t, "500", week2.Rows[0].Payment.String())
}

func TestWeeklyReport_YearRequired(t *testing.T) {
	projects, items, users := testFixture()
	svc := newTestService(projects, items, users, 2)

	_, err := svc.Weekly(context.Background(), Params{})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "year", ve.Field)
}

func TestRollupAll_PoolMatchesSequential(t *testing.T) {
	// Per-project aggregation is independent, so the bounded pool must
	// produce identical results to a single worker.
	projects := &fakeProjectStore{}
	items := &fakeWorkItemStore{}
	for i := 1; i <= 12; i++ {
		projects.projects = append(projects.projects, model.Project{
			ID: i, Billing: model.BillingHourly, HourlyRate: decimal.RequireFromString("15"),
		})
		items.tasks = append(items.tasks, model.Task{
			ID: 100 + i, ProjectID: i,
			Billed: []model.TimeEntry{entry(intp(i), datep(2024, time.March, 1+i%20), i%5, (i * 7) % 60)},
		})
	}
	users := &fakeUserStore{users: map[int]string{}}

	pooled := newTestService(projects, items, users, 3)
	serial := newTestService(projects, items, users, 1)

	got, err := pooled.Summary(context.Background(), Params{})
	require.NoError(t, err)
	want, err := serial.Summary(context.Background(), Params{})
	require.NoError(t, err)

	assert.Equal(t, want.TotalBilled, got.TotalBilled)
	assert.True(t, want.TotalRevenue.Equal(got.TotalRevenue))
}

func TestFetchStage_SingleUserBatch(t *testing.T) {
	projects, items, users := testFixture()
	svc := newTestService(projects, items, users, 2)

	_, err := svc.Users(context.Background(), Params{})
	require.NoError(t, err)

	// Name resolution issues exactly one batch fetch per report.
	assert.Equal(t, 1, users.calls)
}
