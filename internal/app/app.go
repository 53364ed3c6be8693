// Package app assembles the alerting services from settings. It is shared
// by the server and the command line tools.
package app

import (
	"context"
	"time"

	"gorm.io/gorm"

	v2 "github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/api/v2"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/alerting"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/conf"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/datastore"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/datastore/repository"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/logger"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/observability/metrics"
)

const seedTimeout = 10 * time.Second

// Options configures Open.
type Options struct {
	Metrics  *metrics.AlertingMetrics
	Notifier alerting.Notifier
	Logger   logger.Logger
	// SkipSeed leaves an empty threshold table untouched.
	SkipSeed bool
}

// Services holds the database handle and the alerting components built on it.
type Services struct {
	DB         *gorm.DB
	Thresholds *alerting.ThresholdStore
	Evaluator  *alerting.Evaluator
	Query      *alerting.QueryService
	Lifecycle  *alerting.LifecycleManager
}

// Open connects to the configured database and builds the alerting
// services. The global threshold is seeded from
// alerting.default_threshold when it has never been set.
func Open(ctx context.Context, settings *conf.Settings, opts Options) (*Services, error) {
	log := logger.OrDiscard(opts.Logger)

	db, err := datastore.Open(settings, log)
	if err != nil {
		return nil, err
	}

	svc := build(db, settings, opts)

	if !opts.SkipSeed && settings.Alerting.DefaultThreshold > 0 {
		seedCtx, cancel := context.WithTimeout(ctx, seedTimeout)
		seeded, err := svc.Thresholds.SeedGlobal(seedCtx, settings.Alerting.DefaultThreshold)
		cancel()
		if err != nil {
			_ = datastore.Close(db)
			return nil, err
		}
		if seeded {
			log.Module("app").Info("seeded global threshold",
				logger.Float64("threshold", settings.Alerting.DefaultThreshold))
		}
	}

	return svc, nil
}

func build(db *gorm.DB, settings *conf.Settings, opts Options) *Services {
	log := logger.OrDiscard(opts.Logger)
	timeout := settings.Database.QueryTimeout

	thresholdRepo := repository.NewThresholdRepository(db, timeout)
	alertRepo := repository.NewAlertRepository(db, timeout)

	thresholds := alerting.NewThresholdStore(thresholdRepo, opts.Metrics, log)

	return &Services{
		DB:         db,
		Thresholds: thresholds,
		Evaluator: alerting.NewEvaluator(thresholds, alertRepo, alerting.EvaluatorOptions{
			DedupeByInspection: settings.Alerting.DedupeByInspection,
			Notifier:           opts.Notifier,
			Metrics:            opts.Metrics,
			Logger:             log,
		}),
		Query:     alerting.NewQueryService(alertRepo, opts.Metrics),
		Lifecycle: alerting.NewLifecycleManager(alertRepo, opts.Metrics, log),
	}
}

// API returns the services in the form the HTTP API expects.
func (s *Services) API() v2.Services {
	return v2.Services{
		Evaluator:  s.Evaluator,
		Query:      s.Query,
		Lifecycle:  s.Lifecycle,
		Thresholds: s.Thresholds,
		Ping: func(ctx context.Context) error {
			return datastore.Ping(ctx, s.DB)
		},
	}
}

// Close releases the database connection.
func (s *Services) Close() error {
	return datastore.Close(s.DB)
}
