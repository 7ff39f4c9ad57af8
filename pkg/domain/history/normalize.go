package history

import "sort"

// Sorted returns a copy of h ordered ascending by start time, with every
// timestamp converted to UTC. The sort is stable: entries with equal start
// times keep their original relative order. Entries with a zero start cannot
// be ordered and are excluded; everything else is retained.
func Sorted(h History) History {
	out := make(History, 0, len(h))
	for _, e := range h {
		if e.Start.IsZero() {
			continue
		}
		e.Start = e.Start.UTC()
		if !e.End.IsZero() {
			e.End = e.End.UTC()
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out
}
