// Package services holds the business logic between the HTTP surface
// and the repositories: catalog integrity, category ordering, click and
// favorite accounting, stats aggregation, API tokens and sessions.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "toolnav/internal/errors"
)

// DefaultDBTimeout bounds a storage operation when no explicit timeout
// was configured.
const DefaultDBTimeout = 5 * time.Second

// CacheInvalidator is implemented by the stats aggregator; writers call
// it after any change that affects aggregates.
type CacheInvalidator interface {
	Invalidate()
}

// noopInvalidator lets services run without a stats cache wired in.
type noopInvalidator struct{}

func (noopInvalidator) Invalidate() {}

// boundedCtx derives the per-operation storage deadline.
func boundedCtx(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultDBTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// storeError translates a repository error into the service taxonomy.
// A storage deadline becomes a retryable Unavailable; everything
// unexpected stays wrapped as Internal so no driver detail leaks out.
func storeError(err error, notFoundMsg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		if notFoundMsg == "" {
			notFoundMsg = "resource not found"
		}
		return apperrors.NotFound("%s", notFoundMsg)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.Conflict("value conflicts with an existing record")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return apperrors.Unavailable("storage unavailable, retry the request")
	default:
		return apperrors.Internal(err)
	}
}
