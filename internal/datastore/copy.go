package datastore

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/datastore/entities"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/errors"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/logger"
)

// DefaultCopyBatchSize is used when CopyOptions.BatchSize is not positive.
const DefaultCopyBatchSize = 500

// CopyOptions controls Copy.
type CopyOptions struct {
	BatchSize int
	// Clean deletes all target rows before copying.
	Clean  bool
	Logger logger.Logger
}

// TableStats reports the outcome of copying one table.
type TableStats struct {
	Name     string
	Source   int64
	Copied   int64
	Skipped  int64
	Target   int64
	Duration time.Duration
}

// CopyStats reports the outcome of Copy.
type CopyStats struct {
	Tables []TableStats
}

// Copy transfers threshold settings and alerts from src to dst, keeping
// primary keys. Rows whose key already exists in dst are skipped, so the
// copy can be re-run after an interruption.
func Copy(ctx context.Context, src, dst *gorm.DB, opts CopyOptions) (*CopyStats, error) {
	log := logger.OrDiscard(opts.Logger).Module("datastore")
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultCopyBatchSize
	}

	if err := Migrate(dst); err != nil {
		return nil, err
	}

	stats := &CopyStats{}
	for _, table := range []func(context.Context, *gorm.DB, *gorm.DB, CopyOptions) (TableStats, error){
		copyTable[entities.ThresholdSetting],
		copyTable[entities.Alert],
	} {
		ts, err := table(ctx, src, dst, opts)
		if err != nil {
			return stats, err
		}
		log.Info("table copied",
			logger.String("table", ts.Name),
			logger.Int64("copied", ts.Copied),
			logger.Int64("skipped", ts.Skipped),
			logger.Duration("duration", ts.Duration))
		stats.Tables = append(stats.Tables, ts)
	}
	return stats, nil
}

type tabler interface {
	TableName() string
}

func copyTable[T tabler](ctx context.Context, src, dst *gorm.DB, opts CopyOptions) (TableStats, error) {
	start := time.Now()
	var model T
	ts := TableStats{Name: model.TableName()}

	if opts.Clean {
		if err := dst.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).
			Delete(new(T)).Error; err != nil {
			return ts, dbError(err, "copy-clean", errors.PriorityHigh, "table", ts.Name)
		}
	}

	if err := src.WithContext(ctx).Model(new(T)).Count(&ts.Source).Error; err != nil {
		return ts, dbError(err, "copy-count-source", "", "table", ts.Name)
	}

	if ts.Source > 0 {
		var batch []T
		result := src.WithContext(ctx).Model(new(T)).Order("id").
			FindInBatches(&batch, opts.BatchSize, func(_ *gorm.DB, _ int) error {
				res := dst.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&batch)
				if res.Error != nil {
					return res.Error
				}
				ts.Copied += res.RowsAffected
				ts.Skipped += int64(len(batch)) - res.RowsAffected
				return nil
			})
		if result.Error != nil {
			return ts, dbError(result.Error, "copy-batch", errors.PriorityHigh,
				"table", ts.Name, "copied", ts.Copied)
		}
	}

	if err := dst.WithContext(ctx).Model(new(T)).Count(&ts.Target).Error; err != nil {
		return ts, dbError(err, "copy-count-target", "", "table", ts.Name)
	}
	ts.Duration = time.Since(start)
	return ts, nil
}

// Verify reports an error when a copied table holds fewer rows than its
// source.
func (s *CopyStats) Verify() error {
	for _, t := range s.Tables {
		if t.Target < t.Source {
			return errors.Newf("table %s has %d rows, source has %d", t.Name, t.Target, t.Source).
				Component("datastore").
				Category(errors.CategoryDatabase).
				Context("operation", "copy-verify").
				Build()
		}
	}
	return nil
}
