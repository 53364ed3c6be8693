package alerting

import (
	"context"
	"math"
	"time"

	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/datastore/repository"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/errors"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/logger"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/observability/metrics"
)

// ThresholdStore reads and writes score thresholds. Every read goes to
// the database so all processes see a committed Set immediately.
type ThresholdStore struct {
	repo    repository.ThresholdRepository
	metrics *metrics.AlertingMetrics
	log     logger.Logger
	now     func() time.Time
}

// NewThresholdStore creates a ThresholdStore.
func NewThresholdStore(repo repository.ThresholdRepository, m *metrics.AlertingMetrics, log logger.Logger) *ThresholdStore {
	return &ThresholdStore{
		repo:    repo,
		metrics: m,
		log:     logger.OrDiscard(log).Module("alerting"),
		now:     time.Now,
	}
}

// Get returns the threshold stored for scope, or nil when the scope has none.
func (s *ThresholdStore) Get(ctx context.Context, scope string) (*ThresholdSetting, error) {
	if !validScope(scope) {
		return nil, ErrInvalidScope
	}

	setting, err := s.repo.Get(ctx, scope)
	if errors.Is(err, repository.ErrThresholdNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storageError(err, "get-threshold")
	}
	return setting, nil
}

// Set validates and stores the threshold for scope. On failure the stored
// value is left untouched.
func (s *ThresholdStore) Set(ctx context.Context, scope string, value float64) (*ThresholdSetting, error) {
	if math.IsNaN(value) || value < 0 || value > 100 {
		s.metrics.RecordThresholdUpdate(scope, metrics.StatusError)
		return nil, ErrInvalidThreshold
	}
	if !validScope(scope) {
		s.metrics.RecordThresholdUpdate("invalid", metrics.StatusError)
		return nil, ErrInvalidScope
	}

	stored, err := s.repo.Upsert(ctx, &ThresholdSetting{
		Scope:     scope,
		Value:     value,
		Enabled:   true,
		UpdatedAt: s.now().UTC(),
	})
	if err != nil {
		s.metrics.RecordThresholdUpdate(scope, metrics.StatusError)
		return nil, storageError(err, "set-threshold")
	}

	s.metrics.RecordThresholdUpdate(scope, metrics.StatusSuccess)
	s.log.Info("threshold updated",
		logger.String("scope", scope),
		logger.Float64("value", value))
	return stored, nil
}

// Effective returns the enabled threshold that applies to formType: its own
// scope first, then the global scope. It returns nil when neither is set.
func (s *ThresholdStore) Effective(ctx context.Context, formType string) (*ThresholdSetting, error) {
	if FormType(formType).Valid() {
		setting, err := s.Get(ctx, formType)
		if err != nil {
			return nil, err
		}
		if setting != nil && setting.Enabled {
			return setting, nil
		}
	}

	setting, err := s.Get(ctx, ScopeGlobal)
	if err != nil {
		return nil, err
	}
	if setting != nil && setting.Enabled {
		return setting, nil
	}
	return nil, nil
}

// List returns every stored threshold ordered by scope.
func (s *ThresholdStore) List(ctx context.Context) ([]ThresholdSetting, error) {
	settings, err := s.repo.List(ctx)
	if err != nil {
		return nil, storageError(err, "list-thresholds")
	}
	return settings, nil
}

// SeedGlobal stores value as the global threshold when none exists yet.
// It reports whether a row was written.
func (s *ThresholdStore) SeedGlobal(ctx context.Context, value float64) (bool, error) {
	if value <= 0 {
		return false, nil
	}
	existing, err := s.Get(ctx, ScopeGlobal)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}
	if _, err := s.Set(ctx, ScopeGlobal, value); err != nil {
		return false, err
	}
	return true, nil
}
