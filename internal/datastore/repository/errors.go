// Package repository provides the alert and threshold persistence
// interfaces and their GORM implementations.
package repository

import "github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/errors"

// Sentinel errors for repository operations.
var (
	// ErrAlertNotFound indicates the requested alert does not exist.
	ErrAlertNotFound = errors.NewStd("alert not found")

	// ErrThresholdNotFound indicates no threshold row exists for the scope.
	ErrThresholdNotFound = errors.NewStd("threshold not found")

	// ErrInvalidInput indicates invalid input parameters.
	ErrInvalidInput = errors.NewStd("invalid input")
)
