package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskboard/internal/model"
	"taskboard/internal/report"
	"taskboard/internal/repository"
)

type stubProjectStore struct {
	projects []model.Project
}

func (s *stubProjectStore) List(ctx context.Context, filter repository.ProjectFilter) ([]model.Project, error) {
	if filter.ID != nil {
		for _, p := range s.projects {
			if p.ID == *filter.ID {
				return []model.Project{p}, nil
			}
		}
		return nil, nil
	}
	return s.projects, nil
}

func (s *stubProjectStore) DepartmentExists(ctx context.Context, id int) (bool, error) {
	return false, nil
}

type stubWorkItemStore struct {
	tasks []model.Task
}

func (s *stubWorkItemStore) ListTasks(ctx context.Context) ([]model.Task, error) {
	return s.tasks, nil
}

func (s *stubWorkItemStore) ListSubtasks(ctx context.Context) ([]model.Subtask, error) {
	return nil, nil
}

func (s *stubWorkItemStore) ListNanoSubtasks(ctx context.Context) ([]model.NanoSubtask, error) {
	return nil, nil
}

type stubUserStore struct {
	users map[int]string
}

func (s *stubUserStore) FindByIDs(ctx context.Context, ids []int) ([]model.User, error) {
	out := []model.User{}
	for _, id := range ids {
		if name, ok := s.users[id]; ok {
			out = append(out, model.User{ID: id, DisplayName: name})
		}
	}
	return out, nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	userID := 7
	date := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	projects := &stubProjectStore{projects: []model.Project{{
		ID: 1, Name: "Atlas", Billing: model.BillingHourly,
		HourlyRate: decimal.RequireFromString("20"),
	}}}
	items := &stubWorkItemStore{tasks: []model.Task{{
		ID: 10, ProjectID: 1,
		Billed: []model.TimeEntry{{UserID: &userID, Date: &date, Hours: 2}},
	}}}
	users := &stubUserStore{users: map[int]string{7: "Ada"}}

	log := zap.NewNop()
	resolver := report.NewNameResolver(users, nil, time.Minute, log)
	svc := report.NewService(projects, items, resolver, log, 2)
	h := NewReportHandler(svc, log)

	r := gin.New()
	r.GET("/reports/summary", h.GetSummary)
	r.GET("/reports/users", h.GetUsers)
	r.GET("/reports/weekly", h.GetWeekly)
	return r
}

func doGet(t *testing.T, r *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetSummary_OK(t *testing.T) {
	r := newTestRouter(t)

	w := doGet(t, r, "/reports/summary")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		TotalRevenue string `json:"total_revenue"`
		ProjectCount int    `json:"project_count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "40", body.TotalRevenue)
	assert.Equal(t, 1, body.ProjectCount)
}

func TestGetSummary_BadDateRange(t *testing.T) {
	r := newTestRouter(t)

	w := doGet(t, r, "/reports/summary?start_date=2024-02-01&end_date=2024-01-01")
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "end_date")
}

func TestGetSummary_ProjectNotFound(t *testing.T) {
	r := newTestRouter(t)

	w := doGet(t, r, "/reports/summary?project_id=999")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetUsers_OK(t *testing.T) {
	r := newTestRouter(t)

	w := doGet(t, r, "/reports/users")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Users []struct {
			UserID int    `json:"user_id"`
			Name   string `json:"name"`
		} `json:"users"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Users, 1)
	assert.Equal(t, 7, body.Users[0].UserID)
	assert.Equal(t, "Ada", body.Users[0].Name)
}

func TestGetWeekly_RequiresYear(t *testing.T) {
	r := newTestRouter(t)

	w := doGet(t, r, "/reports/weekly")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
