package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/datastore/entities"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/errors"
)

// thresholdRepository implements ThresholdRepository.
type thresholdRepository struct {
	db           *gorm.DB
	queryTimeout time.Duration
}

// NewThresholdRepository creates a new ThresholdRepository.
func NewThresholdRepository(db *gorm.DB, queryTimeout time.Duration) ThresholdRepository {
	return &thresholdRepository{db: db, queryTimeout: queryTimeout}
}

func (r *thresholdRepository) Get(ctx context.Context, scope string) (*entities.ThresholdSetting, error) {
	ctx, cancel := withQueryTimeout(ctx, r.queryTimeout)
	defer cancel()

	var setting entities.ThresholdSetting
	err := r.db.WithContext(ctx).Where("scope = ?", scope).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrThresholdNotFound
	}
	if err != nil {
		return nil, repoError(err, "get-threshold", "scope", scope)
	}
	return &setting, nil
}

func (r *thresholdRepository) Upsert(ctx context.Context, setting *entities.ThresholdSetting) (*entities.ThresholdSetting, error) {
	if setting == nil || setting.Scope == "" {
		return nil, ErrInvalidInput
	}
	ctx, cancel := withQueryTimeout(ctx, r.queryTimeout)
	defer cancel()

	if setting.UpdatedAt.IsZero() {
		setting.UpdatedAt = time.Now()
	}

	var stored entities.ThresholdSetting
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := entities.ThresholdSetting{
			Scope:     setting.Scope,
			Value:     setting.Value,
			Enabled:   setting.Enabled,
			UpdatedAt: setting.UpdatedAt,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "scope"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "enabled", "updated_at"}),
		}).Create(&row).Error; err != nil {
			return err
		}
		// Re-read: the conflict path does not report the existing id on every dialect.
		return tx.Where("scope = ?", setting.Scope).First(&stored).Error
	})
	if err != nil {
		return nil, repoError(err, "upsert-threshold", "scope", setting.Scope)
	}
	return &stored, nil
}

func (r *thresholdRepository) List(ctx context.Context) ([]entities.ThresholdSetting, error) {
	ctx, cancel := withQueryTimeout(ctx, r.queryTimeout)
	defer cancel()

	settings := []entities.ThresholdSetting{}
	if err := r.db.WithContext(ctx).Order("scope ASC").Find(&settings).Error; err != nil {
		return nil, repoError(err, "list-thresholds")
	}
	return settings, nil
}
