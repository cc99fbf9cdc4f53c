package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"worldmon/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/assert/v2"
	"github.com/google/uuid"
)

type fakeReportStore struct {
	reports     []model.Report
	latest      *model.Report
	byID        *model.Report
	byIDCalls   int
	sections    []model.Section
	stats       *model.ReportStats
	total       int
	err         error
	sectionsErr error
}

func (f *fakeReportStore) GetReports(limit, offset int) ([]model.Report, error) {
	return f.reports, f.err
}

func (f *fakeReportStore) GetLatestCompleted() (*model.Report, error) {
	return f.latest, f.err
}

func (f *fakeReportStore) GetByID(id uuid.UUID) (*model.Report, error) {
	f.byIDCalls++
	return f.byID, f.err
}

func (f *fakeReportStore) GetSectionsByReportID(reportID uuid.UUID) ([]model.Section, error) {
	return f.sections, f.sectionsErr
}

func (f *fakeReportStore) SearchReports(topic string, since time.Time, limit int) ([]model.Report, error) {
	return f.reports, f.err
}

func (f *fakeReportStore) GetStats(since time.Time) (*model.ReportStats, error) {
	return f.stats, f.err
}

func (f *fakeReportStore) GetReportTotal() (int, error) {
	return f.total, f.err
}

type fakeTrigger struct {
	started bool
	calls   int
}

func (f *fakeTrigger) TriggerManual() bool {
	f.calls++
	return f.started
}

func newTestReportRouter(store ReportStore, trigger RunTrigger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewReportHandler(store, trigger)
	r.GET("/reports", h.ListReports)
	r.GET("/reports/latest", h.GetLatestReport)
	r.GET("/reports/search", h.SearchReports)
	r.GET("/reports/stats", h.GetStats)
	r.GET("/reports/:id", h.GetReport)
	r.POST("/reports/trigger", h.TriggerReport)
	r.GET("/health", h.GetHealth)
	return r
}

func TestListReports_DBError(t *testing.T) {
	r := newTestReportRouter(&fakeReportStore{err: errors.New("DB down")}, &fakeTrigger{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/reports", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestListReports_Empty(t *testing.T) {
	r := newTestReportRouter(&fakeReportStore{}, &fakeTrigger{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/reports", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var res []ReportListItem
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, 0, len(res))
}

func TestListReports_WithResults(t *testing.T) {
	now := time.Now()
	store := &fakeReportStore{
		reports: []model.Report{
			{ID: uuid.New(), CreatedAt: now, Status: model.StatusCompleted, Summary: "Quiet day", RunKind: model.RunKindScheduled},
			{ID: uuid.New(), CreatedAt: now.Add(-time.Hour), Status: model.StatusFailed, RunKind: model.RunKindManual},
		},
	}
	r := newTestReportRouter(store, &fakeTrigger{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/reports", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var res []ReportListItem
	json.Unmarshal(w.Body.Bytes(), &res)

	assert.Equal(t, 2, len(res))
	assert.Equal(t, "completed", res[0].Status)
	assert.Equal(t, "Quiet day", res[0].Summary)
	assert.Equal(t, "scheduled", res[0].RunKind)
	assert.Equal(t, "manual", res[1].RunKind)
}

func TestGetReport_InvalidID(t *testing.T) {
	store := &fakeReportStore{}
	r := newTestReportRouter(store, &fakeTrigger{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/reports/not-a-uuid", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	// the store must not be queried for a malformed id
	assert.Equal(t, 0, store.byIDCalls)
}

func TestGetReport_NotFound(t *testing.T) {
	r := newTestReportRouter(&fakeReportStore{}, &fakeTrigger{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/reports/"+uuid.NewString(), nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetReport_WithSections(t *testing.T) {
	reportID := uuid.New()
	store := &fakeReportStore{
		byID: &model.Report{
			ID:         reportID,
			CreatedAt:  time.Now(),
			UpdatedAt:  time.Now(),
			Status:     model.StatusCompleted,
			RunKind:    model.RunKindScheduled,
			Summary:    "All quiet",
			FullReport: []byte(`{"executive_summary":"All quiet"}`),
		},
		sections: []model.Section{
			{ReportID: reportID, Topic: model.TopicNews, Title: "News", Items: []byte(`[{"key_points":["a"]}]`), SourcesCount: 1},
			{ReportID: reportID, Topic: model.TopicMarkets, Title: "Markets", Items: []byte(`[]`)},
			{ReportID: reportID, Topic: model.TopicSocial, Title: "Tech", Items: []byte(`[]`)},
		},
	}
	r := newTestReportRouter(store, &fakeTrigger{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/reports/"+reportID.String(), nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var res ReportResponse
	json.Unmarshal(w.Body.Bytes(), &res)

	assert.Equal(t, reportID.String(), res.ID)
	assert.Equal(t, "completed", res.Status)
	assert.Equal(t, 3, len(res.Sections))
	assert.Equal(t, "News", res.Sections["news"].Title)
	assert.Equal(t, 1, res.Sections["news"].SourcesCount)
}

func TestGetReport_FailedHasErrorMessage(t *testing.T) {
	reportID := uuid.New()
	store := &fakeReportStore{
		byID: &model.Report{
			ID:           reportID,
			Status:       model.StatusFailed,
			RunKind:      model.RunKindScheduled,
			ErrorMessage: "model timeout",
		},
	}
	r := newTestReportRouter(store, &fakeTrigger{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/reports/"+reportID.String(), nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var res ReportResponse
	json.Unmarshal(w.Body.Bytes(), &res)

	assert.Equal(t, "failed", res.Status)
	assert.Equal(t, "model timeout", res.ErrorMessage)
	assert.Equal(t, 0, len(res.Sections))
}

func TestGetLatestReport_NoneCompleted(t *testing.T) {
	r := newTestReportRouter(&fakeReportStore{}, &fakeTrigger{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/reports/latest", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetLatestReport_OK(t *testing.T) {
	reportID := uuid.New()
	store := &fakeReportStore{
		latest: &model.Report{ID: reportID, Status: model.StatusCompleted, RunKind: model.RunKindScheduled, Summary: "Busy day"},
		sections: []model.Section{
			{ReportID: reportID, Topic: model.TopicNews, Items: []byte(`[]`)},
		},
	}
	r := newTestReportRouter(store, &fakeTrigger{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/reports/latest", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var res ReportResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, "Busy day", res.Summary)
}

func TestTriggerReport(t *testing.T) {
	trigger := &fakeTrigger{started: true}
	r := newTestReportRouter(&fakeReportStore{}, trigger)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/reports/trigger", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, 1, trigger.calls)

	var res map[string]string
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, "triggered", res["status"])
}

func TestTriggerReport_AlreadyRunning(t *testing.T) {
	trigger := &fakeTrigger{started: false}
	r := newTestReportRouter(&fakeReportStore{}, trigger)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/reports/trigger", nil)
	r.ServeHTTP(w, req)

	// dropped trigger still answers 202: the effect is idempotent
	assert.Equal(t, http.StatusAccepted, w.Code)

	var res map[string]string
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, "triggered", res["status"])
}

func TestSearchReports_UnknownTopic(t *testing.T) {
	r := newTestReportRouter(&fakeReportStore{}, &fakeTrigger{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/reports/search?topic=weather", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetStats(t *testing.T) {
	latest := time.Now()
	store := &fakeReportStore{
		stats: &model.ReportStats{Total: 10, Completed: 8, Failed: 2, SuccessRate: 0.8, LatestCompletedAt: &latest},
	}
	r := newTestReportRouter(store, &fakeTrigger{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/reports/stats", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var res StatsResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, 10, res.Total)
	assert.Equal(t, 8, res.Completed)
	assert.Equal(t, 0.8, res.SuccessRate)
	assert.NotEqual(t, nil, res.LatestCompletedAt)
}

func TestGetHealth_Unhealthy(t *testing.T) {
	r := newTestReportRouter(&fakeReportStore{err: errors.New("DB down")}, &fakeTrigger{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
