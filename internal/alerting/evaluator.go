package alerting

import (
	"context"
	"time"

	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/datastore/repository"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/logger"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/observability/metrics"
)

// Notifier receives newly created alerts. Notify must not block; it
// returns false when the alert could not be queued.
type Notifier interface {
	Notify(alert Alert) bool
}

// EvaluatorOptions configures an Evaluator.
type EvaluatorOptions struct {
	// DedupeByInspection returns the open alert of an inspection instead of
	// inserting another one.
	DedupeByInspection bool
	Notifier           Notifier
	Metrics            *metrics.AlertingMetrics
	Logger             logger.Logger
}

// Evaluator compares submitted inspection scores with the effective
// threshold and records an alert for every score below it.
type Evaluator struct {
	thresholds *ThresholdStore
	alerts     repository.AlertRepository
	dedupe     bool
	notifier   Notifier
	metrics    *metrics.AlertingMetrics
	log        logger.Logger
	now        func() time.Time
}

// NewEvaluator creates an Evaluator.
func NewEvaluator(thresholds *ThresholdStore, alerts repository.AlertRepository, opts EvaluatorOptions) *Evaluator {
	return &Evaluator{
		thresholds: thresholds,
		alerts:     alerts,
		dedupe:     opts.DedupeByInspection,
		notifier:   opts.Notifier,
		metrics:    opts.Metrics,
		log:        logger.OrDiscard(opts.Logger).Module("alerting"),
		now:        time.Now,
	}
}

// Evaluate checks one submission. Storage failures never fail the
// submission: they are logged and reported as OutcomeFailOpen with a nil
// error. Only an invalid submission returns an error.
func (e *Evaluator) Evaluate(ctx context.Context, sub Submission) (alert *Alert, outcome Outcome, err error) {
	if err := sub.validate(); err != nil {
		return nil, "", err
	}

	start := time.Now()
	defer func() {
		e.metrics.RecordEvaluation(sub.FormType, string(outcome), time.Since(start))
	}()

	log := e.log.WithContext(ctx).With(
		logger.Int64("inspection_id", sub.InspectionID),
		logger.String("form_type", sub.FormType))

	threshold, err := e.thresholds.Effective(ctx, sub.FormType)
	if err != nil {
		return e.failOpen(log, metrics.StageThresholdLookup, err)
	}
	if threshold == nil {
		log.Debug("no threshold configured")
		return nil, OutcomeNoThreshold, nil
	}
	if sub.Score >= threshold.Value {
		return nil, OutcomeAboveThreshold, nil
	}

	created := &Alert{
		InspectionID:   sub.InspectionID,
		InspectorName:  sub.InspectorName,
		FormType:       sub.FormType,
		Score:          sub.Score,
		ThresholdValue: threshold.Value,
		CreatedAt:      e.now().UTC(),
	}
	if e.dedupe {
		inserted, err := e.alerts.InsertUnlessOpen(ctx, created)
		if err != nil {
			return e.failOpen(log, metrics.StageDuplicateCheck, err)
		}
		if !inserted {
			log.Debug("open alert already exists", logger.Uint64("alert_id", uint64(created.ID)))
			return created, OutcomeDuplicate, nil
		}
	} else if _, err := e.alerts.Insert(ctx, created); err != nil {
		return e.failOpen(log, metrics.StageInsert, err)
	}

	e.metrics.RecordAlertCreated(sub.FormType)
	log.Info("threshold alert created",
		logger.Uint64("alert_id", uint64(created.ID)),
		logger.Float64("score", sub.Score),
		logger.Float64("threshold", threshold.Value))

	if e.notifier != nil && !e.notifier.Notify(*created) {
		log.Warn("notification queue full, alert event dropped",
			logger.Uint64("alert_id", uint64(created.ID)))
	}

	return created, OutcomeCreated, nil
}

func (e *Evaluator) failOpen(log logger.Logger, stage string, err error) (*Alert, Outcome, error) {
	e.metrics.RecordEvaluationError(stage)
	log.Warn("alert evaluation skipped after storage error",
		logger.String("stage", stage),
		logger.Error(err))
	return nil, OutcomeFailOpen, nil
}
