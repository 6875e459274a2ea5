package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskboard/internal/report"
	"taskboard/pkg/logger"
)

type ReportHandler struct {
	svc    *report.Service
	logger *zap.Logger
}

func NewReportHandler(svc *report.Service, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{svc: svc, logger: logger}
}

func rawParams(c *gin.Context) report.RawParams {
	return report.RawParams{
		StartDate:    c.Query("start_date"),
		EndDate:      c.Query("end_date"),
		DepartmentID: c.Query("department_id"),
		ProjectID:    c.Query("project_id"),
		UserID:       c.Query("user_id"),
		View:         c.Query("view"),
		Year:         c.Query("year"),
		Month:        c.Query("month"),
	}
}

// respond writes the report document or maps the error to its HTTP shape.
// Internal failures return a generic body; the detail stays in the log.
func (h *ReportHandler) respond(c *gin.Context, name string, doc interface{}, err error) {
	log := logger.WithTrace(c.Request.Context(), h.logger)
	if err != nil {
		status, msg := report.ClassifyHTTP(err)
		if status >= http.StatusInternalServerError {
			log.Error("Report build failed", zap.String("report", name), zap.Error(err))
		} else {
			log.Warn("Report request rejected",
				zap.String("report", name),
				zap.Int("status", status),
				zap.Error(err),
			)
		}
		c.JSON(status, gin.H{"error": msg})
		return
	}

	log.Info("Report built", zap.String("report", name))
	c.JSON(http.StatusOK, doc)
}

// GetSummary handles GET /reports/summary
func (h *ReportHandler) GetSummary(c *gin.Context) {
	params, err := report.ParseParams(rawParams(c))
	if err != nil {
		h.respond(c, "summary", nil, err)
		return
	}
	doc, err := h.svc.Summary(c.Request.Context(), params)
	h.respond(c, "summary", doc, err)
}

// GetUsers handles GET /reports/users
func (h *ReportHandler) GetUsers(c *gin.Context) {
	params, err := report.ParseParams(rawParams(c))
	if err != nil {
		h.respond(c, "users", nil, err)
		return
	}
	doc, err := h.svc.Users(c.Request.Context(), params)
	h.respond(c, "users", doc, err)
}

// GetProjects handles GET /reports/projects
func (h *ReportHandler) GetProjects(c *gin.Context) {
	params, err := report.ParseParams(rawParams(c))
	if err != nil {
		h.respond(c, "projects", nil, err)
		return
	}
	doc, err := h.svc.Projects(c.Request.Context(), params)
	h.respond(c, "projects", doc, err)
}

// GetWeekly handles GET /reports/weekly
func (h *ReportHandler) GetWeekly(c *gin.Context) {
	params, err := report.ParseParams(rawParams(c))
	if err != nil {
		h.respond(c, "weekly", nil, err)
		return
	}
	doc, err := h.svc.Weekly(c.Request.Context(), params)
	h.respond(c, "weekly", doc, err)
}
