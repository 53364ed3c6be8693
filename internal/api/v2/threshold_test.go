package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThresholdGetAbsent(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)

	rec := a.do(t, http.MethodGet, "/api/v2/threshold", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"scope":"global","enabled":false}`, rec.Body.String())
}

func TestThresholdSetAndGet(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)

	rec := a.do(t, http.MethodPost, "/api/v2/threshold", map[string]any{"value": 75.5})
	require.Equal(t, http.StatusOK, rec.Code)
	set := decode[ThresholdResponse](t, rec)
	assert.Equal(t, "global", set.Scope)
	require.NotNil(t, set.Value)
	assert.InDelta(t, 75.5, *set.Value, 0)
	assert.True(t, set.Enabled)

	rec = a.do(t, http.MethodPost, "/api/v2/threshold", map[string]any{"value": 60, "scope": "swimming_pool"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, http.MethodGet, "/api/v2/threshold?scope=swimming_pool", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[ThresholdResponse](t, rec)
	assert.InDelta(t, 60.0, *got.Value, 0)
	assert.NotNil(t, got.UpdatedAt)

	rec = a.do(t, http.MethodGet, "/api/v2/thresholds", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[map[string][]ThresholdResponse](t, rec)
	assert.Len(t, list["thresholds"], 2)
}

func TestThresholdRejectedUpdateKeepsValue(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)
	a.setThreshold(t, "global", 70)

	bad := []map[string]any{
		{"value": 101},
		{"value": -1},
		{},
		{"value": 50, "scope": "hospital"},
	}
	for _, body := range bad {
		rec := a.do(t, http.MethodPost, "/api/v2/threshold", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "%v", body)
	}

	rec := a.do(t, http.MethodPost, "/api/v2/threshold", "seventy")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodGet, "/api/v2/threshold", nil)
	got := decode[ThresholdResponse](t, rec)
	require.NotNil(t, got.Value)
	assert.InDelta(t, 70.0, *got.Value, 0)

	rec = a.do(t, http.MethodGet, "/api/v2/threshold?scope=hospital", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
