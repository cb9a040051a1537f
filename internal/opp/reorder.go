package opp

import (
	"sort"
	"time"

	"oppmap-go/internal/model"
)

// Reorder recomputes every record's Score from Impact and Complexity,
// stable-sorts by Score descending, reassigns IDs as the dense rank 1..N,
// and stamps Modified on every record — including untouched ones. IDs are
// therefore volatile across any mutation; only the UUID is stable.
//
// Tie-break: records with equal Score keep their pre-sort relative order
// (the previously persisted ranking).
//
// The input slice is not modified; a reordered copy is returned.
func Reorder(records []model.Opportunity, now time.Time) []model.Opportunity {
	out := make([]model.Opportunity, len(records))
	copy(out, records)

	stamp := now.Format(model.TimeLayout)
	for i := range out {
		out[i].Score = Score(out[i].Impact, out[i].Complexity)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})

	for i := range out {
		out[i].ID = i + 1
		out[i].Modified = stamp
	}

	return out
}
