package megasena

import (
	"strconv"
	"strings"
)

// AllDraws is the textual analysis range covering the whole history
const AllDraws = "all"

// AnalysisRange selects either the whole history or its most recent draws.
type AnalysisRange struct {
	last int // 0 means all
}

// RangeAll covers every draw
var RangeAll = AnalysisRange{}

// LastDraws covers the n most recent draws; n <= 0 covers everything
func LastDraws(n int) AnalysisRange {
	if n <= 0 {
		return RangeAll
	}
	return AnalysisRange{last: n}
}

// ParseAnalysisRange accepts "all" or any string whose final "_"-separated
// token is a positive integer ("100", "last_100"). Anything else silently
// degrades to the whole history.
func ParseAnalysisRange(s string) AnalysisRange {
	if s == AllDraws {
		return RangeAll
	}
	tokens := strings.Split(s, "_")
	n, err := strconv.Atoi(strings.TrimSpace(tokens[len(tokens)-1]))
	if err != nil {
		return RangeAll
	}
	return LastDraws(n)
}

// IsAll reports whether r covers the whole history
func (r AnalysisRange) IsAll() bool { return r.last == 0 }

// Last returns the draw count, 0 for the whole history
func (r AnalysisRange) Last() int { return r.last }

// String renders r in the form accepted by ParseAnalysisRange
func (r AnalysisRange) String() string {
	if r.IsAll() {
		return AllDraws
	}
	return "last_" + strconv.Itoa(r.last)
}

// MarshalText implements encoding.TextMarshaler
func (r AnalysisRange) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler; it never fails
func (r *AnalysisRange) UnmarshalText(text []byte) error {
	*r = ParseAnalysisRange(string(text))
	return nil
}

// Resolve returns the contiguous suffix of the history selected by r,
// oldest first. The returned slice must not be modified.
func (h *DrawHistory) Resolve(r AnalysisRange) []Draw {
	return h.Tail(r.last)
}

// PoolFromPeriod returns, ascending, every number drawn at least once in
// the range minus the excluded numbers.
func (h *DrawHistory) PoolFromPeriod(r AnalysisRange, exclude []int) []int {
	var drawn [MaxNumber + 1]bool
	for _, d := range h.Resolve(r) {
		for _, n := range d.Numbers {
			drawn[n] = true
		}
	}
	for _, n := range exclude {
		if n >= MinNumber && n <= MaxNumber {
			drawn[n] = false
		}
	}

	pool := make([]int, 0, MaxNumber)
	for n := MinNumber; n <= MaxNumber; n++ {
		if drawn[n] {
			pool = append(pool, n)
		}
	}
	return pool
}

// Frequencies counts appearances of every number in the range, indexed by number.
func (h *DrawHistory) Frequencies(r AnalysisRange) [MaxNumber + 1]int {
	return frequencies(h.Resolve(r))
}

// FrequencyOf counts how many draws in the range contain n
func (h *DrawHistory) FrequencyOf(n int, r AnalysisRange) int {
	if n < MinNumber || n > MaxNumber {
		return 0
	}
	freq := h.Frequencies(r)
	return freq[n]
}

func frequencies(draws []Draw) [MaxNumber + 1]int {
	var freq [MaxNumber + 1]int
	for _, d := range draws {
		for _, n := range d.Numbers {
			freq[n]++
		}
	}
	return freq
}
