// Package metrics provides constants used across metric definitions.
package metrics

// Status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusDropped = "dropped"
	StatusLimited = "rate_limited"
)

// Acknowledgment modes.
const (
	AckSingle = "single"
	AckBulk   = "bulk"
)

// Evaluation error stages.
const (
	StageThresholdLookup = "threshold_lookup"
	StageDuplicateCheck  = "duplicate_check"
	StageInsert          = "insert"
)

// Histogram bucket parameters.
const (
	BucketStart1ms = 0.001
	BucketFactor2  = 2
	BucketCount12  = 12
)
