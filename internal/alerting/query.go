package alerting

import (
	"context"

	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/datastore/repository"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/errors"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/observability/metrics"
)

// AlertStats summarizes the alert queue.
type AlertStats = repository.AlertStats

// QueryService answers read-only questions about the alert queue.
type QueryService struct {
	alerts  repository.AlertRepository
	metrics *metrics.AlertingMetrics
}

// NewQueryService creates a QueryService.
func NewQueryService(alerts repository.AlertRepository, m *metrics.AlertingMetrics) *QueryService {
	return &QueryService{alerts: alerts, metrics: m}
}

// List returns the alerts matching status and formType in queue order.
// Empty strings mean "all".
func (q *QueryService) List(ctx context.Context, status StatusFilter, formType string) ([]Alert, error) {
	return q.ListLimit(ctx, status, formType, 0)
}

// ListLimit is List capped to limit rows. A limit of 0 returns everything.
func (q *QueryService) ListLimit(ctx context.Context, status StatusFilter, formType string, limit int) ([]Alert, error) {
	if limit < 0 {
		return nil, ErrInvalidFilter
	}
	filter, err := buildFilter(status, formType)
	if err != nil {
		return nil, err
	}
	filter.Limit = limit

	alerts, err := q.alerts.ListAll(ctx, filter)
	if err != nil {
		return nil, storageError(err, "list-alerts")
	}
	return alerts, nil
}

// Get returns one alert by id.
func (q *QueryService) Get(ctx context.Context, id uint) (*Alert, error) {
	alert, err := q.alerts.Get(ctx, id)
	switch {
	case errors.Is(err, repository.ErrAlertNotFound):
		return nil, ErrAlertNotFound
	case err != nil:
		return nil, storageError(err, "get-alert")
	}
	return alert, nil
}

// UnacknowledgedCount counts open alerts with the same filter List uses
// for (unacknowledged, all).
func (q *QueryService) UnacknowledgedCount(ctx context.Context) (int64, error) {
	filter, err := buildFilter(StatusUnacknowledged, FormTypeAll)
	if err != nil {
		return 0, err
	}
	count, err := q.alerts.Count(ctx, filter)
	if err != nil {
		return 0, storageError(err, "count-unacknowledged")
	}
	q.metrics.SetUnacknowledged(count)
	return count, nil
}

// Stats returns aggregate counts for the alert table.
func (q *QueryService) Stats(ctx context.Context) (*AlertStats, error) {
	stats, err := q.alerts.Stats(ctx)
	if err != nil {
		return nil, storageError(err, "alert-stats")
	}
	q.metrics.SetUnacknowledged(stats.Unacknowledged)
	return stats, nil
}

func buildFilter(status StatusFilter, formType string) (repository.AlertFilter, error) {
	var filter repository.AlertFilter

	switch status {
	case "", StatusAll:
	case StatusUnacknowledged:
		acknowledged := false
		filter.Acknowledged = &acknowledged
	case StatusAcknowledged:
		acknowledged := true
		filter.Acknowledged = &acknowledged
	default:
		return filter, ErrInvalidFilter
	}

	switch {
	case formType == "" || formType == FormTypeAll:
	case FormType(formType).Valid():
		filter.FormType = formType
	default:
		return filter, ErrInvalidFilter
	}

	return filter, nil
}
