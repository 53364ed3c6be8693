package entities

import "time"

// Alert records an inspection whose score fell below the threshold in
// effect at evaluation time. InspectorName, FormType and ThresholdValue
// are snapshots and never change after insert.
type Alert struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	InspectionID   int64      `gorm:"index;not null" json:"inspection_id"`
	InspectorName  string     `gorm:"size:200;not null" json:"inspector_name"`
	FormType       string     `gorm:"index;size:50;not null" json:"form_type"`
	Score          float64    `gorm:"not null" json:"score"`
	ThresholdValue float64    `gorm:"not null" json:"threshold_value"`
	Acknowledged   bool       `gorm:"index;not null;default:false" json:"acknowledged"`
	AcknowledgedBy *string    `gorm:"size:200" json:"acknowledged_by"`
	AcknowledgedAt *time.Time `json:"acknowledged_at"`
	CreatedAt      time.Time  `gorm:"index;autoCreateTime" json:"created_at"`
}

// TableName returns the table name for GORM.
func (Alert) TableName() string {
	return "threshold_alerts"
}
