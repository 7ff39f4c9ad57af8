package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/flowmetrics/pkg/domain"
)

func newFastResilient(inner domain.HistoryRepository) *ResilientRepository {
	repo := NewResilientRepository(inner)
	repo.retryConfig.InitialDelay = time.Millisecond
	return repo
}

type flakyRepo struct {
	failures int
	calls    int
}

func (r *flakyRepo) ListItems(ctx context.Context) ([]domain.WorkItem, error) {
	r.calls++
	if r.calls <= r.failures {
		return nil, errors.New("transient")
	}
	return []domain.WorkItem{{Key: domain.MustItemKey("A-1")}}, nil
}

func TestResilientRepositoryRetries(t *testing.T) {
	inner := &flakyRepo{failures: 2}
	repo := newFastResilient(inner)

	items, err := repo.ListItems(context.Background())
	if err != nil {
		t.Fatalf("ListItems() error = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(items))
	}
	if inner.calls != 3 {
		t.Errorf("calls = %d, want 3", inner.calls)
	}
}

func TestResilientRepositoryGivesUp(t *testing.T) {
	inner := &flakyRepo{failures: 10}
	repo := newFastResilient(inner)

	if _, err := repo.ListItems(context.Background()); err == nil {
		t.Error("ListItems() expected error after exhausted retries, got nil")
	}
	if inner.calls != 3 {
		t.Errorf("calls = %d, want 3", inner.calls)
	}
}
