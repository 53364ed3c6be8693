// internal/api/v2/alerts.go
package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/alerting"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/errors"
)

const handlerAlerts = "alerts"

// AlertListResponse is returned by GET /alerts.
type AlertListResponse struct {
	Alerts              []alerting.Alert `json:"alerts"`
	Count               int              `json:"count"`
	UnacknowledgedCount int64            `json:"unacknowledged_count"`
}

// EvaluateResponse is returned by POST /alerts.
type EvaluateResponse struct {
	Created bool             `json:"created"`
	Outcome alerting.Outcome `json:"outcome"`
	Alert   *alerting.Alert  `json:"alert,omitempty"`
}

// AlertResponse wraps a single alert.
type AlertResponse struct {
	Alert *alerting.Alert `json:"alert"`
}

// CountResponse carries the number of affected or matching alerts.
type CountResponse struct {
	Count int64 `json:"count"`
}

// ActorRequest names who performs an acknowledgment.
type ActorRequest struct {
	Actor string `json:"actor"`
}

func (c *Controller) initAlertRoutes() {
	alerts := c.Group.Group("/alerts")

	alerts.GET("", c.ListAlerts)
	alerts.POST("", c.EvaluateSubmission)
	alerts.GET("/stats", c.GetAlertStats)
	alerts.GET("/unacknowledged/count", c.GetUnacknowledgedCount)
	alerts.POST("/acknowledge-all", c.AcknowledgeAllAlerts)
	alerts.POST("/clear-acknowledged", c.ClearAcknowledgedAlerts)
	alerts.GET("/:id", c.GetAlert)
	alerts.POST("/:id/acknowledge", c.AcknowledgeAlert)
}

// ListAlerts handles GET /api/v2/alerts?status=&type=
func (c *Controller) ListAlerts(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	status := alerting.StatusFilter(ctx.QueryParam("status"))
	formType := ctx.QueryParam("type")

	alerts, err := c.query.List(reqCtx, status, formType)
	c.recordOperation(handlerAlerts, "list", err)
	if err != nil {
		return c.handleServiceError(ctx, err, "Invalid alert filter")
	}

	unacknowledged, err := c.query.UnacknowledgedCount(reqCtx)
	if err != nil {
		return c.handleServiceError(ctx, err, "Failed to count unacknowledged alerts")
	}

	if alerts == nil {
		alerts = []alerting.Alert{}
	}
	return ctx.JSON(http.StatusOK, AlertListResponse{
		Alerts:              alerts,
		Count:               len(alerts),
		UnacknowledgedCount: unacknowledged,
	})
}

// EvaluateSubmission handles POST /api/v2/alerts. It runs the threshold
// check for a saved inspection.
func (c *Controller) EvaluateSubmission(ctx echo.Context) error {
	var sub alerting.Submission
	if err := ctx.Bind(&sub); err != nil {
		return c.HandleError(ctx, err, "Invalid submission body", http.StatusBadRequest)
	}

	alert, outcome, err := c.evaluator.Evaluate(ctx.Request().Context(), sub)
	c.recordOperation(handlerAlerts, "evaluate", err)
	if err != nil {
		return c.handleServiceError(ctx, err, "Invalid submission")
	}

	if outcome == alerting.OutcomeCreated {
		return ctx.JSON(http.StatusCreated, EvaluateResponse{Created: true, Outcome: outcome, Alert: alert})
	}
	return ctx.JSON(http.StatusOK, EvaluateResponse{Created: false, Outcome: outcome, Alert: alert})
}

// GetAlert handles GET /api/v2/alerts/:id
func (c *Controller) GetAlert(ctx echo.Context) error {
	id, err := parseAlertID(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid alert id", http.StatusBadRequest)
	}

	alert, err := c.query.Get(ctx.Request().Context(), id)
	c.recordOperation(handlerAlerts, "get", err)
	if err != nil {
		return c.handleServiceError(ctx, err, "Failed to load alert")
	}
	return ctx.JSON(http.StatusOK, AlertResponse{Alert: alert})
}

// AcknowledgeAlert handles POST /api/v2/alerts/:id/acknowledge
func (c *Controller) AcknowledgeAlert(ctx echo.Context) error {
	id, err := parseAlertID(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid alert id", http.StatusBadRequest)
	}

	var req ActorRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}

	alert, err := c.lifecycle.Acknowledge(ctx.Request().Context(), id, req.Actor)
	c.recordOperation(handlerAlerts, "acknowledge", err)
	if err != nil {
		return c.handleServiceError(ctx, err, "Invalid acknowledgment")
	}
	return ctx.JSON(http.StatusOK, AlertResponse{Alert: alert})
}

// AcknowledgeAllAlerts handles POST /api/v2/alerts/acknowledge-all
func (c *Controller) AcknowledgeAllAlerts(ctx echo.Context) error {
	var req ActorRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}

	count, err := c.lifecycle.AcknowledgeAll(ctx.Request().Context(), req.Actor)
	c.recordOperation(handlerAlerts, "acknowledge_all", err)
	if err != nil {
		return c.handleServiceError(ctx, err, "Invalid acknowledgment")
	}
	return ctx.JSON(http.StatusOK, CountResponse{Count: count})
}

// ClearAcknowledgedAlerts handles POST /api/v2/alerts/clear-acknowledged
func (c *Controller) ClearAcknowledgedAlerts(ctx echo.Context) error {
	count, err := c.lifecycle.ClearAcknowledged(ctx.Request().Context())
	c.recordOperation(handlerAlerts, "clear", err)
	if err != nil {
		return c.handleServiceError(ctx, err, "Failed to clear alerts")
	}
	return ctx.JSON(http.StatusOK, CountResponse{Count: count})
}

// GetUnacknowledgedCount handles GET /api/v2/alerts/unacknowledged/count
func (c *Controller) GetUnacknowledgedCount(ctx echo.Context) error {
	count, err := c.query.UnacknowledgedCount(ctx.Request().Context())
	if err != nil {
		return c.handleServiceError(ctx, err, "Failed to count alerts")
	}
	return ctx.JSON(http.StatusOK, CountResponse{Count: count})
}

// GetAlertStats handles GET /api/v2/alerts/stats
func (c *Controller) GetAlertStats(ctx echo.Context) error {
	stats, err := c.query.Stats(ctx.Request().Context())
	c.recordOperation(handlerAlerts, "stats", err)
	if err != nil {
		return c.handleServiceError(ctx, err, "Failed to compute alert statistics")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func parseAlertID(ctx echo.Context) (uint, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.NewStd("alert id must be a positive integer")
	}
	return uint(id), nil
}
