package metrics

import "sort"

// TargetStatusSet is a named set of status identifiers that qualify as a
// calculator's goal (done-like, discovery-ready, external-test). Membership
// is exact identifier equality; order is irrelevant.
type TargetStatusSet struct {
	name     string
	statuses map[string]struct{}
}

// NewTargetStatusSet builds a set from the given identifiers. Empty
// identifiers are ignored.
func NewTargetStatusSet(name string, statuses ...string) TargetStatusSet {
	m := make(map[string]struct{}, len(statuses))
	for _, s := range statuses {
		if s == "" {
			continue
		}
		m[s] = struct{}{}
	}
	return TargetStatusSet{name: name, statuses: m}
}

// Name returns the set's label.
func (s TargetStatusSet) Name() string {
	return s.name
}

// Contains reports whether the status belongs to the set.
func (s TargetStatusSet) Contains(status string) bool {
	_, ok := s.statuses[status]
	return ok
}

// Empty reports whether the set has no members. Calculators treat an empty
// target set as "never reached" rather than an error.
func (s TargetStatusSet) Empty() bool {
	return len(s.statuses) == 0
}

// Statuses returns the members in sorted order.
func (s TargetStatusSet) Statuses() []string {
	out := make([]string, 0, len(s.statuses))
	for k := range s.statuses {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
