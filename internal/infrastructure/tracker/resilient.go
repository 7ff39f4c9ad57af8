package tracker

import (
	"context"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/fortify/timeout"

	"github.com/felixgeelhaar/flowmetrics/pkg/domain"
)

// ResilientRepository wraps a tracker-backed repository with retries and an
// overall timeout. Snapshot reads do their own retrying; this wrapper exists
// for the network trackers.
type ResilientRepository struct {
	inner       domain.HistoryRepository
	retryConfig retry.Config
	limit       time.Duration
}

func NewResilientRepository(inner domain.HistoryRepository) *ResilientRepository {
	return &ResilientRepository{
		inner: inner,
		retryConfig: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  time.Second,
			BackoffPolicy: retry.BackoffExponential,
		},
		limit: 120 * time.Second,
	}
}

func (r *ResilientRepository) ListItems(ctx context.Context) ([]domain.WorkItem, error) {
	retrier := retry.New[[]domain.WorkItem](r.retryConfig)
	guard := timeout.New[[]domain.WorkItem](timeout.Config{
		DefaultTimeout: r.limit,
	})

	return guard.Execute(ctx, r.limit, func(ctx context.Context) ([]domain.WorkItem, error) {
		return retrier.Do(ctx, func(ctx context.Context) ([]domain.WorkItem, error) {
			return r.inner.ListItems(ctx)
		})
	})
}
