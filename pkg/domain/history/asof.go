package history

import "time"

// AsOf reconstructs the history as it would have looked when observed at the
// given moment: entries starting after asOf are dropped, and a retained entry
// whose end lies beyond asOf becomes open again. Both bounds are inclusive:
// an entry starting exactly at asOf is kept, and an entry ending exactly at
// asOf keeps its end.
//
// The result is sorted and UTC-normalized; the source history is untouched.
// Used to recompute metrics of still-open items at a past report date.
func AsOf(h History, asOf time.Time) History {
	asOf = asOf.UTC()
	s := Sorted(h)
	out := make(History, 0, len(s))
	for _, e := range s {
		if e.Start.After(asOf) {
			continue
		}
		if !e.End.IsZero() && e.End.After(asOf) {
			e.End = time.Time{}
		}
		out = append(out, e)
	}
	return out
}
