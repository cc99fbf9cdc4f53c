package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"
	"worldmon/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReportStore interface {
	GetReports(limit, offset int) ([]model.Report, error)
	GetLatestCompleted() (*model.Report, error)
	GetByID(id uuid.UUID) (*model.Report, error)
	GetSectionsByReportID(reportID uuid.UUID) ([]model.Section, error)
	SearchReports(topic string, since time.Time, limit int) ([]model.Report, error)
	GetStats(since time.Time) (*model.ReportStats, error)
	GetReportTotal() (int, error)
}

type RunTrigger interface {
	TriggerManual() bool
}

type ReportHandler struct {
	repository ReportStore
	trigger    RunTrigger
}

func NewReportHandler(repository ReportStore, trigger RunTrigger) *ReportHandler {
	return &ReportHandler{repository: repository, trigger: trigger}
}

func (h *ReportHandler) ListReports(c *gin.Context) {
	limit := getQueryLimit(c)
	offset := getQueryOffset(c)

	reports, err := h.repository.GetReports(limit, offset)
	if err != nil {
		slog.Error("error fetching reports", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	res := make([]ReportListItem, 0, len(reports))
	for _, r := range reports {
		res = append(res, ReportListItem{
			ID:        r.ID.String(),
			CreatedAt: r.CreatedAt.Format(time.RFC3339),
			Status:    r.Status,
			Summary:   r.Summary,
			RunKind:   r.RunKind,
		})
	}

	c.JSON(http.StatusOK, res)
}

func (h *ReportHandler) GetLatestReport(c *gin.Context) {
	report, err := h.repository.GetLatestCompleted()
	if err != nil {
		slog.Error("error fetching latest report", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if report == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No completed reports found"})
		return
	}

	res, err := h.buildReportResponse(report)
	if err != nil {
		slog.Error("error fetching report sections", "report_id", report.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *ReportHandler) GetReport(c *gin.Context) {
	id := c.Param("id")

	reportID, err := uuid.Parse(id)
	if err != nil {
		slog.Error("invalid report id", "id", id, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid report ID format"})
		return
	}

	report, err := h.repository.GetByID(reportID)
	if err != nil {
		slog.Error("error fetching report", "report_id", reportID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if report == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return
	}

	res, err := h.buildReportResponse(report)
	if err != nil {
		slog.Error("error fetching report sections", "report_id", report.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *ReportHandler) SearchReports(c *gin.Context) {
	topic := c.Query("topic")
	if topic != "" && !validTopic(topic) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown topic"})
		return
	}

	hours := getQueryInt("hours", 24, c)
	limit := getQueryLimit(c)
	since := time.Now().Add(-time.Duration(hours) * time.Hour)

	reports, err := h.repository.SearchReports(topic, since, limit)
	if err != nil {
		slog.Error("error searching reports", "topic", topic, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	res := make([]ReportListItem, 0, len(reports))
	for _, r := range reports {
		res = append(res, ReportListItem{
			ID:        r.ID.String(),
			CreatedAt: r.CreatedAt.Format(time.RFC3339),
			Status:    r.Status,
			Summary:   r.Summary,
			RunKind:   r.RunKind,
		})
	}

	c.JSON(http.StatusOK, res)
}

func (h *ReportHandler) GetStats(c *gin.Context) {
	hours := getQueryInt("hours", 24, c)
	since := time.Now().Add(-time.Duration(hours) * time.Hour)

	stats, err := h.repository.GetStats(since)
	if err != nil {
		slog.Error("error fetching report stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	res := StatsResponse{
		Total:       stats.Total,
		Completed:   stats.Completed,
		Failed:      stats.Failed,
		SuccessRate: stats.SuccessRate,
	}
	if stats.LatestCompletedAt != nil {
		formatted := stats.LatestCompletedAt.Format(time.RFC3339)
		res.LatestCompletedAt = &formatted
	}

	c.JSON(http.StatusOK, res)
}

func (h *ReportHandler) TriggerReport(c *gin.Context) {
	started := h.trigger.TriggerManual()

	message := "Monitoring run started"
	if !started {
		message = "A run is already in progress"
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "triggered", "message": message})
}

func (h *ReportHandler) GetHealth(c *gin.Context) {
	_, err := h.repository.GetReportTotal()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "disconnected",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": "connected",
	})
}

func (h *ReportHandler) buildReportResponse(report *model.Report) (*ReportResponse, error) {
	sections, err := h.repository.GetSectionsByReportID(report.ID)
	if err != nil {
		return nil, err
	}

	sectionMap := make(map[string]SectionResponse, len(sections))
	for _, s := range sections {
		sectionMap[s.Topic] = SectionResponse{
			Title:        s.Title,
			Summary:      s.Summary,
			Items:        json.RawMessage(s.Items),
			SourcesCount: s.SourcesCount,
		}
	}

	return &ReportResponse{
		ID:           report.ID.String(),
		CreatedAt:    report.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    report.UpdatedAt.Format(time.RFC3339),
		Status:       report.Status,
		RunKind:      report.RunKind,
		Summary:      report.Summary,
		FullReport:   json.RawMessage(report.FullReport),
		ErrorMessage: report.ErrorMessage,
		Sections:     sectionMap,
	}, nil
}

func validTopic(topic string) bool {
	for _, t := range model.Topics() {
		if t == topic {
			return true
		}
	}
	return false
}

func getQueryInt(name string, defaultValue int, c *gin.Context) int {
	paramValue := c.Query(name)

	if paramValue == "" {
		return defaultValue
	}

	parsedValue, err := strconv.Atoi(paramValue)
	if err != nil {
		slog.Warn("invalid query parameter, using default", "param", name, "value", paramValue, "error", err)
		return defaultValue
	}

	return parsedValue
}

func getQueryLimit(c *gin.Context) int {
	const (
		defaultLimit = 10
		maxLimit     = 100
	)

	limit := getQueryInt("limit", defaultLimit, c)
	if limit < 1 {
		slog.Warn("invalid query parameter, using default", "param", "limit", "value", limit, "default", defaultLimit)
		return defaultLimit
	}

	if limit > maxLimit {
		slog.Warn("query parameter exceeds max, clamping", "param", "limit", "value", limit, "max", maxLimit)
		return maxLimit
	}

	return limit
}

func getQueryOffset(c *gin.Context) int {
	offset := getQueryInt("offset", 0, c)
	if offset < 0 {
		slog.Warn("invalid query parameter, using default", "param", "offset", "value", offset, "default", 0)
		return 0
	}
	return offset
}
