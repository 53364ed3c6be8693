package repository

import (
	"context"

	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/datastore/entities"
)

// ThresholdRepository handles threshold setting persistence.
type ThresholdRepository interface {
	// Get returns ErrThresholdNotFound when the scope has no row.
	Get(ctx context.Context, scope string) (*entities.ThresholdSetting, error)
	// Upsert inserts or replaces the row for setting.Scope and returns the stored row.
	Upsert(ctx context.Context, setting *entities.ThresholdSetting) (*entities.ThresholdSetting, error)
	List(ctx context.Context) ([]entities.ThresholdSetting, error)
}
