// internal/api/v2/api.go
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/patrickmn/go-cache"

	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/alerting"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/conf"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/errors"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/logger"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/observability/metrics"
)

// systemStatsTTL bounds how often host stats are sampled for /health.
const systemStatsTTL = 10 * time.Second

// Services are the alerting components the API exposes.
type Services struct {
	Evaluator  *alerting.Evaluator
	Query      *alerting.QueryService
	Lifecycle  *alerting.LifecycleManager
	Thresholds *alerting.ThresholdStore

	// Ping checks database connectivity for the health endpoint.
	Ping func(ctx context.Context) error
}

// Controller manages the API routes and handlers
type Controller struct {
	Echo     *echo.Echo
	Group    *echo.Group
	Settings *conf.Settings

	evaluator  *alerting.Evaluator
	query      *alerting.QueryService
	lifecycle  *alerting.LifecycleManager
	thresholds *alerting.ThresholdStore
	ping       func(ctx context.Context) error

	logger      logger.Logger
	httpMetrics *metrics.HTTPMetrics
	startTime   time.Time
	systemStats func(ctx context.Context) map[string]any
	statsCache  *cache.Cache
}

// Option is a functional option for configuring the Controller.
type Option func(*Controller)

// WithHTTPMetrics records per-handler operation counters.
func WithHTTPMetrics(m *metrics.HTTPMetrics) Option {
	return func(c *Controller) {
		c.httpMetrics = m
	}
}

// WithSystemStats adds host resource usage to the health response.
func WithSystemStats(enabled bool) Option {
	return func(c *Controller) {
		if enabled {
			c.systemStats = collectSystemStats
		} else {
			c.systemStats = nil
		}
	}
}

// New creates the API controller and mounts its routes under /api/v2.
func New(e *echo.Echo, settings *conf.Settings, svc Services, log logger.Logger, opts ...Option) (*Controller, error) {
	if svc.Evaluator == nil || svc.Query == nil || svc.Lifecycle == nil || svc.Thresholds == nil {
		return nil, errors.Newf("api controller requires evaluator, query, lifecycle and threshold services").
			Component("api").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if settings == nil {
		settings = &conf.Settings{}
	}

	c := &Controller{
		Echo:        e,
		Group:       e.Group("/api/v2"),
		Settings:    settings,
		evaluator:   svc.Evaluator,
		query:       svc.Query,
		lifecycle:   svc.Lifecycle,
		thresholds:  svc.Thresholds,
		ping:        svc.Ping,
		logger:      logger.OrDiscard(log).Module("api"),
		startTime:   time.Now(),
		systemStats: collectSystemStats,
		statsCache:  cache.New(systemStatsTTL, 2*systemStatsTTL),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.initRoutes()
	return c, nil
}

// initRoutes registers all API endpoints
func (c *Controller) initRoutes() {
	c.Group.GET("/health", c.HealthCheck)
	c.initAlertRoutes()
	c.initThresholdRoutes()
}

// HealthCheck reports service status, database connectivity and uptime.
func (c *Controller) HealthCheck(ctx echo.Context) error {
	uptime := time.Since(c.startTime)
	response := map[string]any{
		"status":         "healthy",
		"version":        c.Settings.Version,
		"build_date":     c.Settings.BuildDate,
		"timestamp":      time.Now().Format(time.RFC3339),
		"uptime":         uptime.Round(time.Second).String(),
		"uptime_seconds": uptime.Seconds(),
	}

	status := http.StatusOK
	if c.ping == nil {
		response["database_status"] = "unknown"
	} else if err := c.ping(ctx.Request().Context()); err != nil {
		status = http.StatusServiceUnavailable
		response["status"] = "degraded"
		response["database_status"] = "disconnected"
		response["database_error"] = err.Error()
	} else {
		response["database_status"] = "connected"
	}

	if c.systemStats != nil {
		response["system"] = c.cachedSystemStats(ctx.Request().Context())
	}

	return ctx.JSON(status, response)
}

// cachedSystemStats samples host stats at most once per systemStatsTTL.
func (c *Controller) cachedSystemStats(ctx context.Context) map[string]any {
	if cached, ok := c.statsCache.Get("system"); ok {
		if stats, ok := cached.(map[string]any); ok {
			return stats
		}
	}
	stats := c.systemStats(ctx)
	c.statsCache.SetDefault("system", stats)
	return stats
}

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Code          int    `json:"code"`
	CorrelationID string `json:"correlation_id"` // Unique identifier for tracking this error
}

// NewErrorResponse creates a new API error response
func NewErrorResponse(err error, message string, code int) *ErrorResponse {
	errorStr := message
	if err != nil {
		errorStr = err.Error()
	}

	return &ErrorResponse{
		Error:         errorStr,
		Message:       message,
		Code:          code,
		CorrelationID: uuid.NewString()[:8],
	}
}

// HandleError logs err and writes an ErrorResponse with code.
func (c *Controller) HandleError(ctx echo.Context, err error, message string, code int) error {
	errorResp := NewErrorResponse(err, message, code)

	fields := []logger.Field{
		logger.String("correlation_id", errorResp.CorrelationID),
		logger.String("message", message),
		logger.Int("code", code),
		logger.String("path", ctx.Request().URL.Path),
		logger.String("method", ctx.Request().Method),
		logger.String("ip", ctx.RealIP()),
	}
	if err != nil {
		fields = append(fields, logger.Error(err))
	}

	log := c.logger.WithContext(ctx.Request().Context())
	if code >= http.StatusInternalServerError {
		log.Error("API error", fields...)
	} else {
		log.Debug("API error", fields...)
	}

	return ctx.JSON(code, errorResp)
}

// handleServiceError maps alerting errors to HTTP status codes.
func (c *Controller) handleServiceError(ctx echo.Context, err error, message string) error {
	switch {
	case alerting.IsValidation(err):
		return c.HandleError(ctx, err, message, http.StatusBadRequest)
	case errors.Is(err, alerting.ErrAlertNotFound):
		return c.HandleError(ctx, err, "Alert not found", http.StatusNotFound)
	case errors.Is(err, alerting.ErrStorageUnavailable):
		return c.HandleError(ctx, err, "Alert storage is temporarily unavailable", http.StatusServiceUnavailable)
	default:
		return c.HandleError(ctx, err, message, http.StatusInternalServerError)
	}
}

// recordOperation counts a handler outcome when metrics are enabled.
func (c *Controller) recordOperation(handler, operation string, err error) {
	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusError
	}
	c.httpMetrics.RecordHandlerOperation(handler, operation, status)
}
