package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/alerting"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/observability/metrics"
)

func TestEvaluateSubmission(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)

	// no threshold yet
	rec := a.submit(t, 1, "residential", 10)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, alerting.OutcomeNoThreshold, decode[EvaluateResponse](t, rec).Outcome)

	a.setThreshold(t, "global", 70)

	rec = a.submit(t, 1, "residential", 69.9)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[EvaluateResponse](t, rec)
	assert.True(t, created.Created)
	assert.Equal(t, alerting.OutcomeCreated, created.Outcome)
	require.NotNil(t, created.Alert)
	assert.InDelta(t, 70.0, created.Alert.ThresholdValue, 0)

	rec = a.submit(t, 1, "residential", 50)
	require.Equal(t, http.StatusOK, rec.Code)
	dup := decode[EvaluateResponse](t, rec)
	assert.False(t, dup.Created)
	assert.Equal(t, alerting.OutcomeDuplicate, dup.Outcome)
	assert.Equal(t, created.Alert.ID, dup.Alert.ID)

	rec = a.submit(t, 2, "residential", 70)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, alerting.OutcomeAboveThreshold, decode[EvaluateResponse](t, rec).Outcome)
}

func TestEvaluateSubmissionValidation(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)

	tests := []struct {
		name string
		body any
	}{
		{"unknown form type", alerting.Submission{InspectionID: 1, FormType: "hospital", Score: 1}},
		{"missing inspection id", alerting.Submission{FormType: "burial", Score: 1}},
		{"malformed json", "not an object"},
	}
	for _, tt := range tests {
		rec := a.do(t, http.MethodPost, "/api/v2/alerts", tt.body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, tt.name)
	}
}

func TestListAlertsAndCounts(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)
	a.setThreshold(t, "global", 70)

	a.submit(t, 1, "residential", 10)
	a.submit(t, 2, "burial", 20)
	rec := a.submit(t, 3, "burial", 30)
	third := decode[EvaluateResponse](t, rec).Alert

	rec = a.do(t, http.MethodPost, fmt.Sprintf("/api/v2/alerts/%d/acknowledge", third.ID), ActorRequest{Actor: "admin"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, http.MethodGet, "/api/v2/alerts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	all := decode[AlertListResponse](t, rec)
	assert.Equal(t, 3, all.Count)
	assert.Equal(t, int64(2), all.UnacknowledgedCount)
	// unacknowledged first, newest first
	assert.False(t, all.Alerts[0].Acknowledged)
	assert.True(t, all.Alerts[2].Acknowledged)

	rec = a.do(t, http.MethodGet, "/api/v2/alerts?status=unacknowledged&type=burial", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	filtered := decode[AlertListResponse](t, rec)
	require.Equal(t, 1, filtered.Count)
	assert.Equal(t, int64(2), filtered.Alerts[0].InspectionID)

	rec = a.do(t, http.MethodGet, "/api/v2/alerts/unacknowledged/count", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(2), decode[CountResponse](t, rec).Count)

	rec = a.do(t, http.MethodGet, "/api/v2/alerts?type=hospital", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListAlertsEmptyIsArray(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)

	rec := a.do(t, http.MethodGet, "/api/v2/alerts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"alerts":[],"count":0,"unacknowledged_count":0}`, rec.Body.String())
}

func TestGetAlert(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)
	a.setThreshold(t, "global", 70)
	created := decode[EvaluateResponse](t, a.submit(t, 5, "barbershop", 40)).Alert

	rec := a.do(t, http.MethodGet, fmt.Sprintf("/api/v2/alerts/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(5), decode[AlertResponse](t, rec).Alert.InspectionID)

	rec = a.do(t, http.MethodGet, "/api/v2/alerts/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(t, http.MethodGet, "/api/v2/alerts/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAcknowledgeAlert(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)
	a.setThreshold(t, "global", 70)
	created := decode[EvaluateResponse](t, a.submit(t, 1, "small_hotel", 40)).Alert
	path := fmt.Sprintf("/api/v2/alerts/%d/acknowledge", created.ID)

	rec := a.do(t, http.MethodPost, path, ActorRequest{Actor: "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodPost, path, ActorRequest{Actor: "supervisor"})
	require.Equal(t, http.StatusOK, rec.Code)
	first := decode[AlertResponse](t, rec).Alert
	require.NotNil(t, first.AcknowledgedBy)
	assert.Equal(t, "supervisor", *first.AcknowledgedBy)

	rec = a.do(t, http.MethodPost, path, ActorRequest{Actor: "someone-else"})
	require.Equal(t, http.StatusOK, rec.Code)
	second := decode[AlertResponse](t, rec).Alert
	assert.Equal(t, "supervisor", *second.AcknowledgedBy)

	rec = a.do(t, http.MethodPost, "/api/v2/alerts/4242/acknowledge", ActorRequest{Actor: "supervisor"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAcknowledgeAllAndClear(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)
	a.setThreshold(t, "global", 70)
	for i := range 3 {
		a.submit(t, int64(i+1), "institutional", 10)
	}

	rec := a.do(t, http.MethodPost, "/api/v2/alerts/acknowledge-all", ActorRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodPost, "/api/v2/alerts/acknowledge-all", ActorRequest{Actor: "admin"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(3), decode[CountResponse](t, rec).Count)

	rec = a.do(t, http.MethodPost, "/api/v2/alerts/clear-acknowledged", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(3), decode[CountResponse](t, rec).Count)

	rec = a.do(t, http.MethodPost, "/api/v2/alerts/clear-acknowledged", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(0), decode[CountResponse](t, rec).Count)

	assert.InDelta(t, 1.0, a.counterValue(t, "http_handler_operations_total", map[string]string{
		"handler": handlerAlerts, "operation": "acknowledge_all", "status": metrics.StatusSuccess,
	}), 0)
	assert.InDelta(t, 1.0, a.counterValue(t, "http_handler_operations_total", map[string]string{
		"handler": handlerAlerts, "operation": "acknowledge_all", "status": metrics.StatusError,
	}), 0)
}

func TestAlertStats(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)
	a.setThreshold(t, "global", 70)
	a.submit(t, 1, "residential", 10)
	a.submit(t, 2, "burial", 10)

	rec := a.do(t, http.MethodGet, "/api/v2/alerts/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[alerting.AlertStats](t, rec)
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(2), stats.Unacknowledged)
	assert.Equal(t, int64(1), stats.ByFormType["burial"])
}
