package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/datastore/entities"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/errors"
)

// acknowledgeBatchSize bounds the IN list of a single acknowledge statement.
const acknowledgeBatchSize = 500

// alertRepository implements AlertRepository.
type alertRepository struct {
	db           *gorm.DB
	queryTimeout time.Duration
}

// NewAlertRepository creates a new AlertRepository.
// A positive queryTimeout bounds every call.
func NewAlertRepository(db *gorm.DB, queryTimeout time.Duration) AlertRepository {
	return &alertRepository{db: db, queryTimeout: queryTimeout}
}

func (r *alertRepository) session(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	ctx, cancel := withQueryTimeout(ctx, r.queryTimeout)
	return r.db.WithContext(ctx).Model(&entities.Alert{}), cancel
}

// applyAlertFilter is the single WHERE builder for listing and counting.
func applyAlertFilter(q *gorm.DB, filter AlertFilter) *gorm.DB {
	if filter.Acknowledged != nil {
		q = q.Where("acknowledged = ?", *filter.Acknowledged)
	}
	if filter.FormType != "" {
		q = q.Where("form_type = ?", filter.FormType)
	}
	return q
}

// Insert creates the alert row and returns its id.
func (r *alertRepository) Insert(ctx context.Context, alert *entities.Alert) (uint, error) {
	if alert == nil {
		return 0, ErrInvalidInput
	}
	q, cancel := r.session(ctx)
	defer cancel()

	if err := q.Create(alert).Error; err != nil {
		return 0, repoError(err, "insert-alert", "inspection_id", alert.InspectionID)
	}
	return alert.ID, nil
}

// insertUnlessOpenSQL is a single INSERT ... SELECT guarded by NOT EXISTS,
// so concurrent writers in any process cannot both open an alert for one
// inspection. %s is the dummy table MySQL needs for SELECT ... WHERE.
const insertUnlessOpenSQL = `INSERT INTO threshold_alerts
	(inspection_id, inspector_name, form_type, score, threshold_value, acknowledged, created_at)
SELECT ?, ?, ?, ?, ?, ?, ?%s
WHERE NOT EXISTS (
	SELECT 1 FROM threshold_alerts WHERE inspection_id = ? AND acknowledged = ?
)`

// InsertUnlessOpen inserts alert unless its inspection already has an open
// alert. On return alert holds the open row: the new one or the existing one.
func (r *alertRepository) InsertUnlessOpen(ctx context.Context, alert *entities.Alert) (bool, error) {
	if alert == nil {
		return false, ErrInvalidInput
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now().UTC()
	}

	ctx, cancel := withQueryTimeout(ctx, r.queryTimeout)
	defer cancel()

	fromDual := ""
	if r.db.Dialector.Name() == "mysql" {
		fromDual = " FROM DUAL"
	}

	var inserted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Exec(fmt.Sprintf(insertUnlessOpenSQL, fromDual),
			alert.InspectionID, alert.InspectorName, alert.FormType, alert.Score,
			alert.ThresholdValue, false, alert.CreatedAt,
			alert.InspectionID, false)
		if result.Error != nil {
			return result.Error
		}
		inserted = result.RowsAffected == 1

		// the newest open row, in case older duplicates predate the guard
		var open entities.Alert
		if err := tx.Where("inspection_id = ? AND acknowledged = ?", alert.InspectionID, false).
			Order("created_at DESC").
			Order("id DESC").
			First(&open).Error; err != nil {
			return err
		}
		*alert = open
		return nil
	})
	if err != nil {
		return false, repoError(err, "insert-unless-open", "inspection_id", alert.InspectionID)
	}
	return inserted, nil
}

// ListAll returns alerts matching filter in queue order.
func (r *alertRepository) ListAll(ctx context.Context, filter AlertFilter) ([]entities.Alert, error) {
	q, cancel := r.session(ctx)
	defer cancel()

	q = applyAlertFilter(q, filter).
		Order("acknowledged ASC").
		Order("created_at DESC").
		Order("id DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	alerts := []entities.Alert{}
	if err := q.Find(&alerts).Error; err != nil {
		return nil, repoError(err, "list-alerts")
	}
	return alerts, nil
}

// Count returns the number of alerts matching filter. Limit is ignored.
func (r *alertRepository) Count(ctx context.Context, filter AlertFilter) (int64, error) {
	q, cancel := r.session(ctx)
	defer cancel()

	filter.Limit = 0
	var count int64
	if err := applyAlertFilter(q, filter).Count(&count).Error; err != nil {
		return 0, repoError(err, "count-alerts")
	}
	return count, nil
}

// CountUnacknowledged counts open alerts, optionally for one form type.
func (r *alertRepository) CountUnacknowledged(ctx context.Context, formType string) (int64, error) {
	unacknowledged := false
	return r.Count(ctx, AlertFilter{Acknowledged: &unacknowledged, FormType: formType})
}

// Get retrieves an alert by id.
func (r *alertRepository) Get(ctx context.Context, id uint) (*entities.Alert, error) {
	q, cancel := r.session(ctx)
	defer cancel()

	var alert entities.Alert
	err := q.Where("id = ?", id).First(&alert).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAlertNotFound
	}
	if err != nil {
		return nil, repoError(err, "get-alert", "alert_id", id)
	}
	return &alert, nil
}

// MarkAcknowledged acknowledges an alert only if it is still open, so the
// first acknowledger wins and later calls change nothing.
func (r *alertRepository) MarkAcknowledged(ctx context.Context, id uint, by string, at time.Time) (bool, error) {
	q, cancel := r.session(ctx)
	defer cancel()

	result := q.Where("id = ? AND acknowledged = ?", id, false).
		Updates(acknowledgeColumns(by, at))
	if result.Error != nil {
		return false, repoError(result.Error, "acknowledge-alert", "alert_id", id)
	}
	return result.RowsAffected == 1, nil
}

// AcknowledgeAll snapshots the open alert ids inside a transaction and
// acknowledges exactly those. Alerts inserted after the snapshot stay open.
func (r *alertRepository) AcknowledgeAll(ctx context.Context, by string, at time.Time) (int64, error) {
	ctx, cancel := withQueryTimeout(ctx, r.queryTimeout)
	defer cancel()

	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := tx.Model(&entities.Alert{}).
			Where("acknowledged = ?", false).
			Pluck("id", &ids).Error; err != nil {
			return err
		}

		for start := 0; start < len(ids); start += acknowledgeBatchSize {
			end := min(start+acknowledgeBatchSize, len(ids))
			result := tx.Model(&entities.Alert{}).
				Where("id IN ? AND acknowledged = ?", ids[start:end], false).
				Updates(acknowledgeColumns(by, at))
			if result.Error != nil {
				return result.Error
			}
			affected += result.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, repoError(err, "acknowledge-all")
	}
	return affected, nil
}

// DeleteAcknowledged removes every acknowledged alert.
func (r *alertRepository) DeleteAcknowledged(ctx context.Context) (int64, error) {
	ctx, cancel := withQueryTimeout(ctx, r.queryTimeout)
	defer cancel()

	result := r.db.WithContext(ctx).
		Where("acknowledged = ?", true).
		Delete(&entities.Alert{})
	if result.Error != nil {
		return 0, repoError(result.Error, "delete-acknowledged")
	}
	return result.RowsAffected, nil
}

type formTypeCount struct {
	FormType string
	Count    int64
}

// Stats aggregates alert counts in one read transaction.
func (r *alertRepository) Stats(ctx context.Context) (*AlertStats, error) {
	ctx, cancel := withQueryTimeout(ctx, r.queryTimeout)
	defer cancel()

	stats := &AlertStats{ByFormType: map[string]int64{}}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entities.Alert{}).Count(&stats.Total).Error; err != nil {
			return err
		}
		if err := tx.Model(&entities.Alert{}).
			Where("acknowledged = ?", false).
			Count(&stats.Unacknowledged).Error; err != nil {
			return err
		}
		stats.Acknowledged = stats.Total - stats.Unacknowledged

		var rows []formTypeCount
		if err := tx.Model(&entities.Alert{}).
			Select("form_type, COUNT(*) AS count").
			Group("form_type").
			Scan(&rows).Error; err != nil {
			return err
		}
		for _, row := range rows {
			stats.ByFormType[row.FormType] = row.Count
		}

		var latest entities.Alert
		err := tx.Model(&entities.Alert{}).
			Select("created_at").
			Order("created_at DESC").
			Take(&latest).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
		case err != nil:
			return err
		default:
			stats.Latest = &latest.CreatedAt
		}
		return nil
	})
	if err != nil {
		return nil, repoError(err, "alert-stats")
	}
	return stats, nil
}

func acknowledgeColumns(by string, at time.Time) map[string]any {
	return map[string]any{
		"acknowledged":    true,
		"acknowledged_by": by,
		"acknowledged_at": at,
	}
}
