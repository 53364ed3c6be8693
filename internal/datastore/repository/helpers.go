package repository

import (
	"context"
	"time"

	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/errors"
)

func withQueryTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// repoError wraps a storage failure as a database category error.
func repoError(err error, operation string, kv ...any) error {
	builder := errors.New(err).
		Component("datastore").
		Category(errors.CategoryDatabase).
		Context("operation", operation)

	if errors.Is(err, context.DeadlineExceeded) {
		builder = builder.Category(errors.CategoryTimeout)
	}

	for i := 0; i+1 < len(kv); i += 2 {
		if key, ok := kv[i].(string); ok {
			builder = builder.Context(key, kv[i+1])
		}
	}
	return builder.Build()
}
