package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/observability/metrics"
)

// NewMetrics records request counts and latency by route template, so
// /alerts/1 and /alerts/2 share one series.
func NewMetrics(m *metrics.HTTPMetrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if m == nil {
				return next(c)
			}

			start := time.Now()
			err := next(c)

			status := c.Response().Status
			var he *echo.HTTPError
			if errors.As(err, &he) {
				status = he.Code
			} else if err != nil {
				status = http.StatusInternalServerError
			}

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			method := c.Request().Method
			m.RecordHTTPRequest(method, path, status, time.Since(start).Seconds())
			if status >= http.StatusBadRequest {
				m.RecordHTTPRequestError(method, path, strconv.Itoa(status))
			}
			return err
		}
	}
}
