package entities

import "time"

// ScopeGlobal is the threshold scope applied to every form type without
// a dedicated setting.
const ScopeGlobal = "global"

// ThresholdSetting stores the minimum passing score for a scope.
// At most one row exists per scope; rows are upserted, never deleted.
type ThresholdSetting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Scope     string    `gorm:"uniqueIndex;size:50;not null;default:global" json:"scope"`
	Value     float64   `gorm:"not null" json:"value"`
	Enabled   bool      `gorm:"not null;default:true" json:"enabled"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for GORM.
func (ThresholdSetting) TableName() string {
	return "threshold_settings"
}
