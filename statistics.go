package megasena

import (
	"math"
	"slices"
	"sort"
)

// NumberStat describes one number over an analysis period
type NumberStat struct {
	Number         int     `json:"number"`
	Frequency      int     `json:"frequency"`
	Percentage     float64 `json:"percentage"`
	LastAppearance *int    `json:"last_appearance"` // contest number, nil when absent from the period
	DrawsAgo       *int    `json:"draws_ago"`       // 1 means the latest draw of the period
}

// CombinationStat is a pair or trio with its frequency over the period
type CombinationStat struct {
	Numbers    []int   `json:"numbers"`
	Frequency  int     `json:"frequency"`
	Percentage float64 `json:"percentage"`
}

// Statistics is the aggregate report of a period
type Statistics struct {
	TotalDraws   int               `json:"total_draws"`
	OverallDraws int               `json:"overall_draws"`
	FirstContest int               `json:"first_contest"`
	LastContest  int               `json:"last_contest"`
	Numbers      []NumberStat      `json:"numbers"`
	Pairs        []CombinationStat `json:"pairs"`
	Trios        []CombinationStat `json:"trios"`
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func percentageOf(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(count) / float64(total) * 100)
}

// Statistics computes the frequency report over the last lastN draws;
// lastN <= 0 covers the whole history.
func (h *DrawHistory) Statistics(lastN int) (*Statistics, error) {
	draws := h.Tail(lastN)
	if len(draws) == 0 {
		return nil, ErrDatasetNotFound.WithDetails("history is empty")
	}

	return &Statistics{
		TotalDraws:   len(draws),
		OverallDraws: h.Len(),
		FirstContest: draws[0].Number,
		LastContest:  draws[len(draws)-1].Number,
		Numbers:      TopNumbers(draws, DefaultTopNumbers),
		Pairs:        TopCombinations(draws, 2, DefaultTopCombinations),
		Trios:        TopCombinations(draws, 3, DefaultTopCombinations),
	}, nil
}

// TopNumbers ranks 1..60 by frequency, ties in ascending order, and keeps the first limit
func TopNumbers(draws []Draw, limit int) []NumberStat {
	freq := frequencies(draws)
	stats := make([]NumberStat, 0, MaxNumber)
	for n := MinNumber; n <= MaxNumber; n++ {
		stat := NumberStat{
			Number:     n,
			Frequency:  freq[n],
			Percentage: percentageOf(freq[n], len(draws)),
		}
		for idx := len(draws) - 1; idx >= 0; idx-- {
			if draws[idx].Contains(n) {
				contest, ago := draws[idx].Number, len(draws)-idx
				stat.LastAppearance, stat.DrawsAgo = &contest, &ago
				break
			}
		}
		stats = append(stats, stat)
	}

	sort.SliceStable(stats, func(i, j int) bool { return stats[i].Frequency > stats[j].Frequency })
	return stats[:min(limit, len(stats))]
}

// TopCombinations counts every size-k subset of every draw and returns the
// limit most frequent. Ties keep the order in which combinations first appeared.
func TopCombinations(draws []Draw, k, limit int) []CombinationStat {
	index := make(map[[3]int]int)
	var stats []CombinationStat

	for _, d := range draws {
		forEachCombination(d.Sorted(), k, func(combo []int) {
			var key [3]int
			copy(key[:], combo)
			pos, ok := index[key]
			if !ok {
				pos = len(stats)
				index[key] = pos
				stats = append(stats, CombinationStat{Numbers: slices.Clone(combo)})
			}
			stats[pos].Frequency++
		})
	}

	for i := range stats {
		stats[i].Percentage = percentageOf(stats[i].Frequency, len(draws))
	}
	sort.SliceStable(stats, func(i, j int) bool { return stats[i].Frequency > stats[j].Frequency })
	return stats[:min(limit, len(stats))]
}

// forEachCombination calls fn with each size-k subset of sorted in
// lexicographic order. fn must not retain the slice. k is at most 3.
func forEachCombination(sorted []int, k int, fn func([]int)) {
	combo := make([]int, k)
	var walk func(start, depth int)
	walk = func(start, depth int) {
		if depth == k {
			fn(combo)
			return
		}
		for i := start; i <= len(sorted)-(k-depth); i++ {
			combo[depth] = sorted[i]
			walk(i+1, depth+1)
		}
	}
	walk(0, 0)
}

// Summary is the latest draw and the ones right before it
type Summary struct {
	Latest   Draw   `json:"latest"`
	Previous []Draw `json:"previous"` // oldest first
}

// Summary returns the latest draw and up to SummaryPreviousDraws before it
func (h *DrawHistory) Summary() (*Summary, error) {
	latest, ok := h.Latest()
	if !ok {
		return nil, ErrDatasetNotFound.WithDetails("history is empty")
	}

	end := len(h.draws) - 1
	start := max(0, end-SummaryPreviousDraws)
	return &Summary{Latest: latest, Previous: slices.Clone(h.draws[start:end])}, nil
}

// DelayedNumber reports how late a number is relative to its natural cycle
type DelayedNumber struct {
	Number       int     `json:"number"`
	LastContest  *int    `json:"last_contest"`
	DrawsAgo     int     `json:"draws_ago"`
	NaturalCycle int     `json:"natural_cycle"`
	DelayRatio   float64 `json:"delay_ratio"`
	Appearances  int     `json:"appearances"`
}

// DelayReport is the delayed-number ranking of a range
type DelayReport struct {
	Total         int             `json:"total"`
	LastContest   int             `json:"last_contest"`
	AnalyzedDraws int             `json:"analyzed_draws"`
	OrderedBy     string          `json:"ordered_by"`
	Delayed       []DelayedNumber `json:"delayed"`
}

// DelayedNumbers ranks 1..60 by draws-since-last-appearance over natural
// cycle, highest first, and keeps the first count.
//
// The natural cycle is the mean gap between appearances in the range
// (truncated), the range length for a single appearance, and the range
// length plus one when the number never appeared. Draws-ago is measured in
// contest numbers; a number absent from the range counts as the range length.
func (h *DrawHistory) DelayedNumbers(r AnalysisRange, count int) (*DelayReport, error) {
	draws := h.Resolve(r)
	if len(draws) == 0 {
		return nil, ErrDatasetNotFound.WithDetails("history is empty")
	}
	if count < 0 {
		return nil, ErrInvalidParameter.WithDetailsf("count cannot be negative, got %d", count)
	}

	lastContest := draws[len(draws)-1].Number
	firstContest := draws[0].Number

	appearances := make([][]int, MaxNumber+1)
	for idx, d := range draws {
		for _, n := range d.Numbers {
			appearances[n] = append(appearances[n], idx)
		}
	}

	delayed := make([]DelayedNumber, 0, MaxNumber)
	for n := MinNumber; n <= MaxNumber; n++ {
		seen := appearances[n]
		item := DelayedNumber{Number: n, Appearances: len(seen)}

		switch {
		case len(seen) > 1:
			item.NaturalCycle = (seen[len(seen)-1] - seen[0]) / (len(seen) - 1)
		case len(seen) == 1:
			item.NaturalCycle = len(draws)
		default:
			item.NaturalCycle = len(draws) + 1
		}

		if len(seen) > 0 {
			contest := draws[seen[len(seen)-1]].Number
			item.LastContest = &contest
			item.DrawsAgo = lastContest - contest
		} else {
			item.DrawsAgo = len(draws)
			if contest, ok := h.lastAppearance(n); ok {
				item.LastContest = &contest
				if contest >= firstContest {
					item.DrawsAgo = lastContest - contest
				}
			}
		}

		item.DelayRatio = round2(float64(item.DrawsAgo) / float64(item.NaturalCycle))
		delayed = append(delayed, item)
	}

	sort.SliceStable(delayed, func(i, j int) bool { return delayed[i].DelayRatio > delayed[j].DelayRatio })

	return &DelayReport{
		Total:         len(delayed),
		LastContest:   lastContest,
		AnalyzedDraws: len(draws),
		OrderedBy:     "delay_ratio",
		Delayed:       delayed[:min(count, len(delayed))],
	}, nil
}

// lastAppearance returns the contest number of the latest draw holding n
func (h *DrawHistory) lastAppearance(n int) (int, bool) {
	for i := len(h.draws) - 1; i >= 0; i-- {
		if h.draws[i].Contains(n) {
			return h.draws[i].Number, true
		}
	}
	return 0, false
}
