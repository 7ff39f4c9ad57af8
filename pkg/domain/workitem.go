// Package domain holds the work-item model shared by the metrics engine, the
// report services and the tracker adapters.
package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/felixgeelhaar/flowmetrics/pkg/domain/history"
)

// keyPattern matches tracker-style item keys: PROJ-123, repo#45, plain ids.
var keyPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9/_#-]*$`)

// ItemKey is a validated work-item identifier.
type ItemKey struct {
	value string
}

// NewItemKey creates an ItemKey from a string value.
func NewItemKey(value string) (ItemKey, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return ItemKey{}, fmt.Errorf("item key cannot be empty")
	}
	if !keyPattern.MatchString(value) {
		return ItemKey{}, fmt.Errorf("invalid item key format: %s", value)
	}
	return ItemKey{value: value}, nil
}

// MustItemKey creates an ItemKey or panics if invalid. Use only in tests.
func MustItemKey(value string) ItemKey {
	k, err := NewItemKey(value)
	if err != nil {
		panic(err)
	}
	return k
}

// String returns the string representation of the key.
func (k ItemKey) String() string {
	return k.value
}

// IsZero returns true if the key is empty.
func (k ItemKey) IsZero() bool {
	return k.value == ""
}

// WorkItem is one tracked unit of work together with its full status history.
// The history is treated as immutable; services hand the same slice to every
// calculator call.
type WorkItem struct {
	Key       ItemKey
	Title     string
	Author    string
	Team      string
	CreatedAt time.Time
	History   history.History
}
