// internal/api/v2/threshold.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/alerting"
)

const handlerThreshold = "threshold"

// ThresholdResponse describes one threshold scope. Value and UpdatedAt
// are omitted when the scope has no stored threshold.
type ThresholdResponse struct {
	Scope     string     `json:"scope"`
	Value     *float64   `json:"value,omitempty"`
	Enabled   bool       `json:"enabled"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// ThresholdUpdateRequest is the body of POST /threshold.
type ThresholdUpdateRequest struct {
	Value *float64 `json:"value"`
	Scope string   `json:"scope,omitempty"`
}

func (c *Controller) initThresholdRoutes() {
	c.Group.GET("/threshold", c.GetThreshold)
	c.Group.POST("/threshold", c.UpdateThreshold)
	c.Group.GET("/thresholds", c.ListThresholds)
}

func toThresholdResponse(scope string, setting *alerting.ThresholdSetting) ThresholdResponse {
	if setting == nil {
		return ThresholdResponse{Scope: scope}
	}
	value := setting.Value
	updated := setting.UpdatedAt
	return ThresholdResponse{
		Scope:     setting.Scope,
		Value:     &value,
		Enabled:   setting.Enabled,
		UpdatedAt: &updated,
	}
}

func scopeOrGlobal(scope string) string {
	scope = strings.TrimSpace(scope)
	if scope == "" {
		return alerting.ScopeGlobal
	}
	return scope
}

// GetThreshold handles GET /api/v2/threshold?scope=
func (c *Controller) GetThreshold(ctx echo.Context) error {
	scope := scopeOrGlobal(ctx.QueryParam("scope"))

	setting, err := c.thresholds.Get(ctx.Request().Context(), scope)
	c.recordOperation(handlerThreshold, "get", err)
	if err != nil {
		return c.handleServiceError(ctx, err, "Invalid threshold scope")
	}
	return ctx.JSON(http.StatusOK, toThresholdResponse(scope, setting))
}

// UpdateThreshold handles POST /api/v2/threshold. A rejected update
// leaves the stored value unchanged.
func (c *Controller) UpdateThreshold(ctx echo.Context) error {
	var req ThresholdUpdateRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid threshold body", http.StatusBadRequest)
	}
	if req.Value == nil {
		return c.HandleError(ctx, alerting.ErrInvalidThreshold, "Threshold value is required", http.StatusBadRequest)
	}

	scope := scopeOrGlobal(req.Scope)
	setting, err := c.thresholds.Set(ctx.Request().Context(), scope, *req.Value)
	c.recordOperation(handlerThreshold, "set", err)
	if err != nil {
		return c.handleServiceError(ctx, err, "Invalid threshold")
	}
	return ctx.JSON(http.StatusOK, toThresholdResponse(scope, setting))
}

// ListThresholds handles GET /api/v2/thresholds
func (c *Controller) ListThresholds(ctx echo.Context) error {
	settings, err := c.thresholds.List(ctx.Request().Context())
	c.recordOperation(handlerThreshold, "list", err)
	if err != nil {
		return c.handleServiceError(ctx, err, "Failed to list thresholds")
	}

	resp := make([]ThresholdResponse, 0, len(settings))
	for i := range settings {
		resp = append(resp, toThresholdResponse(settings[i].Scope, &settings[i]))
	}
	return ctx.JSON(http.StatusOK, map[string]any{"thresholds": resp})
}
