package alerting

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/datastore/repository"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/errors"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/logger"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/observability/metrics"
)

// maxActorLength matches the acknowledged_by column size.
const maxActorLength = 200

// LifecycleManager moves alerts through unacknowledged, acknowledged and
// deleted. There is no way back.
type LifecycleManager struct {
	alerts  repository.AlertRepository
	metrics *metrics.AlertingMetrics
	log     logger.Logger
	now     func() time.Time
}

// NewLifecycleManager creates a LifecycleManager.
func NewLifecycleManager(alerts repository.AlertRepository, m *metrics.AlertingMetrics, log logger.Logger) *LifecycleManager {
	return &LifecycleManager{
		alerts:  alerts,
		metrics: m,
		log:     logger.OrDiscard(log).Module("alerting"),
		now:     time.Now,
	}
}

func normalizeActor(actor string) (string, error) {
	actor = strings.TrimSpace(actor)
	if actor == "" || utf8.RuneCountInString(actor) > maxActorLength {
		return "", ErrInvalidActor
	}
	return actor, nil
}

// Acknowledge marks one alert as reviewed by actor. Acknowledging an
// already acknowledged alert changes nothing and returns it with its
// original acknowledger.
func (l *LifecycleManager) Acknowledge(ctx context.Context, id uint, actor string) (*Alert, error) {
	actor, err := normalizeActor(actor)
	if err != nil {
		return nil, err
	}

	changed, err := l.alerts.MarkAcknowledged(ctx, id, actor, l.now().UTC())
	if err != nil {
		return nil, storageError(err, "acknowledge")
	}

	alert, err := l.alerts.Get(ctx, id)
	if errors.Is(err, repository.ErrAlertNotFound) {
		return nil, fmt.Errorf("%w: id %d", ErrAlertNotFound, id)
	}
	if err != nil {
		return nil, storageError(err, "acknowledge")
	}

	if changed {
		l.metrics.RecordAcknowledged(metrics.AckSingle, 1)
		l.log.WithContext(ctx).Info("alert acknowledged",
			logger.Uint64("alert_id", uint64(id)),
			logger.String("actor", actor))
	}
	return alert, nil
}

// AcknowledgeAll acknowledges every alert that is open when the call
// starts and returns how many changed.
func (l *LifecycleManager) AcknowledgeAll(ctx context.Context, actor string) (int64, error) {
	actor, err := normalizeActor(actor)
	if err != nil {
		return 0, err
	}

	count, err := l.alerts.AcknowledgeAll(ctx, actor, l.now().UTC())
	if err != nil {
		return 0, storageError(err, "acknowledge-all")
	}

	l.metrics.RecordAcknowledged(metrics.AckBulk, count)
	l.log.WithContext(ctx).Info("alerts acknowledged",
		logger.Int64("count", count),
		logger.String("actor", actor))
	return count, nil
}

// ClearAcknowledged deletes every acknowledged alert and returns the count.
func (l *LifecycleManager) ClearAcknowledged(ctx context.Context) (int64, error) {
	count, err := l.alerts.DeleteAcknowledged(ctx)
	if err != nil {
		return 0, storageError(err, "clear-acknowledged")
	}

	l.metrics.RecordCleared(count)
	l.log.WithContext(ctx).Info("acknowledged alerts cleared", logger.Int64("count", count))
	return count, nil
}
