package conditions

import (
	"math"
	"sort"
)

// ConditionDuration is the time share of one condition label over a period.
type ConditionDuration struct {
	Label   string `json:"label"`
	Hours   int    `json:"hours"`
	Percent int    `json:"percent"`
}

// SummarizeDurations buckets a classified sequence into per-label totals,
// sorted descending by hours. Ties keep first-encounter order (stable sort).
// Percentages sum to 100 within rounding. Empty input yields an empty slice.
func SummarizeDurations(classified []ClassifiedObservation) []ConditionDuration {
	summary := []ConditionDuration{}
	if len(classified) == 0 {
		return summary
	}

	index := make(map[string]int)
	for _, c := range classified {
		i, ok := index[c.Label]
		if !ok {
			i = len(summary)
			index[c.Label] = i
			summary = append(summary, ConditionDuration{Label: c.Label})
		}
		summary[i].Hours++
	}

	total := float64(len(classified))
	for i := range summary {
		summary[i].Percent = int(math.Round(100 * float64(summary[i].Hours) / total))
	}

	sort.SliceStable(summary, func(i, j int) bool {
		return summary[i].Hours > summary[j].Hours
	})
	return summary
}
