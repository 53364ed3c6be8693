package alerting

import (
	"fmt"

	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/datastore/repository"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/errors"
)

// Sentinel errors returned by the alerting services.
var (
	ErrInvalidThreshold  = errors.NewStd("threshold must be a number between 0 and 100")
	ErrInvalidScope      = errors.NewStd("unknown threshold scope")
	ErrInvalidSubmission = errors.NewStd("invalid submission")
	ErrInvalidFilter     = errors.NewStd("invalid alert filter")
	ErrInvalidActor      = errors.NewStd("actor is required")

	// ErrAlertNotFound is shared with the repository so errors.Is works across layers.
	ErrAlertNotFound = repository.ErrAlertNotFound

	// ErrStorageUnavailable marks a retryable storage failure.
	ErrStorageUnavailable = errors.NewStd("alert storage unavailable")
)

func invalidSubmission(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidSubmission, reason)
}

// IsValidation reports whether err was caused by bad caller input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidThreshold) ||
		errors.Is(err, ErrInvalidScope) ||
		errors.Is(err, ErrInvalidSubmission) ||
		errors.Is(err, ErrInvalidFilter) ||
		errors.Is(err, ErrInvalidActor)
}

// storageError wraps a repository failure so that both the sentinel and
// the original cause stay reachable through errors.Is.
func storageError(err error, operation string) error {
	return errors.New(fmt.Errorf("%w: %w", ErrStorageUnavailable, err)).
		Component("alerting").
		Category(errors.CategoryDatabase).
		Context("operation", operation).
		Build()
}
