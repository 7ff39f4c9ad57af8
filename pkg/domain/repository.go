package domain

import "context"

// HistoryRepository loads work items with their status histories from a
// tracker or an offline snapshot. Implementations must populate every
// entry's start; end is populated only for closed occupancies.
type HistoryRepository interface {
	ListItems(ctx context.Context) ([]WorkItem, error)
}
