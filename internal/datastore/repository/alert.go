package repository

import (
	"context"
	"time"

	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/datastore/entities"
)

// AlertFilter narrows alert queries. Zero values match everything.
type AlertFilter struct {
	Acknowledged *bool  // nil matches both states
	FormType     string // empty matches every form type
	Limit        int    // 0 means no limit
}

// AlertStats summarizes the alert table.
type AlertStats struct {
	Total          int64            `json:"total"`
	Acknowledged   int64            `json:"acknowledged"`
	Unacknowledged int64            `json:"unacknowledged"`
	ByFormType     map[string]int64 `json:"by_form_type"`
	Latest         *time.Time       `json:"latest"`
}

// AlertRepository handles threshold alert persistence.
//
// ListAll orders unacknowledged alerts first, then newest created_at,
// then highest id. Count and ListAll share one filter builder.
type AlertRepository interface {
	Insert(ctx context.Context, alert *entities.Alert) (uint, error)
	// InsertUnlessOpen inserts alert only when its inspection has no
	// unacknowledged alert, and fills alert with the stored open row
	// either way. It reports whether a row was inserted.
	InsertUnlessOpen(ctx context.Context, alert *entities.Alert) (bool, error)
	ListAll(ctx context.Context, filter AlertFilter) ([]entities.Alert, error)
	Count(ctx context.Context, filter AlertFilter) (int64, error)
	CountUnacknowledged(ctx context.Context, formType string) (int64, error)
	Get(ctx context.Context, id uint) (*entities.Alert, error)

	// MarkAcknowledged reports whether this call performed the transition.
	MarkAcknowledged(ctx context.Context, id uint, by string, at time.Time) (bool, error)
	AcknowledgeAll(ctx context.Context, by string, at time.Time) (int64, error)
	DeleteAcknowledged(ctx context.Context) (int64, error)

	Stats(ctx context.Context) (*AlertStats, error)
}
