// Package storage reads work-item history snapshots from disk. A snapshot is
// the offline exchange format between a tracker export and the report
// commands.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/xeipuuv/gojsonschema"

	"github.com/felixgeelhaar/flowmetrics/pkg/domain"
	"github.com/felixgeelhaar/flowmetrics/pkg/domain/history"
)

// snapshotSchemaJSON guards the snapshot structure before decoding so that a
// malformed export fails with a field-level message instead of a zero-value
// surprise deep inside a report.
const snapshotSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["items"],
  "properties": {
    "items": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["key", "history"],
        "properties": {
          "key": { "type": "string" },
          "title": { "type": "string" },
          "author": { "type": "string" },
          "team": { "type": "string" },
          "created_at": { "type": "string" },
          "history": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["status", "start"],
              "properties": {
                "status": { "type": "string" },
                "display_status": { "type": "string" },
                "start": { "type": "string" },
                "end": { "type": "string" }
              }
            }
          }
        }
      }
    }
  }
}`

var snapshotSchemaLoader = gojsonschema.NewStringLoader(snapshotSchemaJSON)

type snapshotFile struct {
	Items []snapshotItem `json:"items"`
}

type snapshotItem struct {
	Key       string          `json:"key"`
	Title     string          `json:"title"`
	Author    string          `json:"author"`
	Team      string          `json:"team"`
	CreatedAt string          `json:"created_at"`
	History   []snapshotEntry `json:"history"`
}

type snapshotEntry struct {
	Status        string `json:"status"`
	DisplayStatus string `json:"display_status"`
	Start         string `json:"start"`
	End           string `json:"end"`
}

// SnapshotRepository loads work items from a JSON snapshot file.
type SnapshotRepository struct {
	path        string
	retryConfig retry.Config
}

// NewSnapshotRepository creates a repository over the given snapshot path.
func NewSnapshotRepository(path string) *SnapshotRepository {
	return &SnapshotRepository{
		path: path,
		retryConfig: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  10 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
}

// ListItems reads, validates and decodes the snapshot.
func (r *SnapshotRepository) ListItems(ctx context.Context) ([]domain.WorkItem, error) {
	reader := retry.New[[]byte](r.retryConfig)
	data, err := reader.Do(ctx, func(ctx context.Context) ([]byte, error) {
		return os.ReadFile(r.path)
	})
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", r.path, err)
	}

	result, err := gojsonschema.Validate(snapshotSchemaLoader, gojsonschema.NewStringLoader(string(data)))
	if err != nil {
		return nil, fmt.Errorf("validate snapshot %s: %w", r.path, err)
	}
	if !result.Valid() {
		return nil, fmt.Errorf("snapshot %s: %s", r.path, result.Errors()[0].String())
	}

	var file snapshotFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", r.path, err)
	}

	items := make([]domain.WorkItem, 0, len(file.Items))
	for _, it := range file.Items {
		key, err := domain.NewItemKey(it.Key)
		if err != nil {
			return nil, fmt.Errorf("snapshot %s: %w", r.path, err)
		}
		items = append(items, domain.WorkItem{
			Key:       key,
			Title:     it.Title,
			Author:    it.Author,
			Team:      it.Team,
			CreatedAt: parseTime(it.CreatedAt),
			History:   mapHistory(it.History),
		})
	}
	return items, nil
}

func mapHistory(entries []snapshotEntry) history.History {
	h := make(history.History, 0, len(entries))
	for _, e := range entries {
		h = append(h, history.Entry{
			Status:        e.Status,
			DisplayStatus: e.DisplayStatus,
			Start:         parseTime(e.Start),
			End:           parseTime(e.End),
		})
	}
	return h
}

// parseTime returns the zero time for empty or unparseable values; the
// engine excludes entries it cannot order.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
