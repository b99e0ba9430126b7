package megasena

import (
	"math"
	"sort"
)

// gamePicker produces one candidate game per call. Advanced strategies do
// their scoring once per request and keep only the sampling per game.
type gamePicker func(rng *RandomGenerator) ([]int, error)

// scoredNumber pairs a number with a strategy score
type scoredNumber struct {
	Number int     `json:"number"`
	Score  float64 `json:"score"`
}

// rankDescending orders numbers 1..60 by score, highest first. Ties keep
// ascending number order.
func rankDescending(scores [MaxNumber + 1]float64) []scoredNumber {
	ranked := make([]scoredNumber, 0, MaxNumber)
	for n := MinNumber; n <= MaxNumber; n++ {
		ranked = append(ranked, scoredNumber{Number: n, Score: scores[n]})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	return ranked
}

func topNumbers(ranked []scoredNumber, limit int, keep func(scoredNumber) bool) []int {
	if limit > len(ranked) {
		limit = len(ranked)
	}
	out := make([]int, 0, limit)
	for _, s := range ranked[:limit] {
		if keep == nil || keep(s) {
			out = append(out, s.Number)
		}
	}
	return out
}

func uniformPicker(pool []int, numbersPerGame int) gamePicker {
	return func(rng *RandomGenerator) ([]int, error) {
		return rng.Sample(pool, numbersPerGame)
	}
}

// QuadrantFrequencies sums the appearances of every number of each quadrant
func QuadrantFrequencies(draws []Draw) map[Quadrant]int {
	freq := frequencies(draws)
	out := make(map[Quadrant]int, 4)
	for _, q := range Quadrants() {
		for _, n := range q.Numbers() {
			out[q] += freq[n]
		}
	}
	return out
}

// ActiveQuadrants resolves which quadrants stay in play. Caller-supplied
// names are filtered to Q1..Q4 and capped to the first two. With no names
// the single least frequent quadrant of the range is suppressed.
func ActiveQuadrants(draws []Draw, suppressed []string) (active, removed []Quadrant) {
	if len(suppressed) == 0 {
		freq := QuadrantFrequencies(draws)
		order := Quadrants()
		sort.SliceStable(order, func(i, j int) bool { return freq[order[i]] > freq[order[j]] })
		removed = []Quadrant{order[len(order)-1]}
	} else {
		for _, name := range suppressed {
			if q, ok := ParseQuadrant(name); ok {
				removed = append(removed, q)
			}
		}
		if len(removed) > MaxSuppressedQuadrants {
			removed = removed[:MaxSuppressedQuadrants]
		}
	}

	for _, q := range Quadrants() {
		isRemoved := false
		for _, r := range removed {
			if r == q {
				isRemoved = true
				break
			}
		}
		if !isRemoved {
			active = append(active, q)
		}
	}
	return active, removed
}

func newQuadrantPicker(draws []Draw, numbersPerGame int, suppressed []string, logger Logger) (gamePicker, error) {
	active, removed := ActiveQuadrants(draws, suppressed)
	if len(suppressed) == 0 {
		logger.Debug("quadrant frequencies: %v, auto-suppressing %v", QuadrantFrequencies(draws), removed)
	}
	logger.Debug("active quadrants: %v, suppressed quadrants: %v", active, removed)

	pool := make([]int, 0, len(active)*QuadrantSize)
	for _, q := range active {
		pool = append(pool, q.Numbers()...)
	}
	if len(pool) < numbersPerGame {
		return nil, ErrPoolInsufficient.WithDetailsf("active quadrants hold %d numbers, need %d", len(pool), numbersPerGame)
	}
	return uniformPicker(pool, numbersPerGame), nil
}

// CycleScores scores every number by how close its current delay is to its
// natural cycle: max(0, 1 - |delay - cycle| / cycle). Numbers seen fewer
// than twice score 0.
func CycleScores(draws []Draw) [MaxNumber + 1]float64 {
	appearances := make([][]int, MaxNumber+1)
	for idx, d := range draws {
		for _, n := range d.Numbers {
			appearances[n] = append(appearances[n], idx)
		}
	}

	var scores [MaxNumber + 1]float64
	for n := MinNumber; n <= MaxNumber; n++ {
		seen := appearances[n]
		if len(seen) < 2 {
			continue
		}

		cycle := float64(seen[len(seen)-1]-seen[0]) / float64(len(seen)-1)
		delay := float64(len(draws) - seen[len(seen)-1] - 1)
		if cycle > 0 {
			scores[n] = math.Max(0, 1-math.Abs(delay-cycle)/cycle)
		}
	}
	return scores
}

func newCyclePicker(draws []Draw, numbersPerGame int, logger Logger) gamePicker {
	ranked := rankDescending(CycleScores(draws))
	logger.Debug("top cycle scores: %v", ranked[:10])

	return uniformPicker(topNumbers(ranked, numbersPerGame*CandidatePoolFactor, nil), numbersPerGame)
}

// TrendSlopes fits a least-squares line to each number's 0/1 appearance
// series over the range and returns the slopes.
func TrendSlopes(draws []Draw) [MaxNumber + 1]float64 {
	var slopes [MaxNumber + 1]float64
	count := len(draws)
	if count < 2 {
		return slopes
	}

	meanX := float64(count-1) / 2
	var sxx float64
	for i := range count {
		dx := float64(i) - meanX
		sxx += dx * dx
	}

	var sxy [MaxNumber + 1]float64
	for i, d := range draws {
		dx := float64(i) - meanX
		for _, n := range d.Numbers {
			sxy[n] += dx
		}
	}

	// sum((x-mx)(y-my)) reduces to the sum of (x-mx) over hits since sum(x-mx) is 0
	for n := MinNumber; n <= MaxNumber; n++ {
		slopes[n] = sxy[n] / sxx
	}
	return slopes
}

func newTrendPicker(draws []Draw, numbersPerGame int, logger Logger) gamePicker {
	if len(draws) < MinDrawsForTrend {
		logger.Debug("only %d draws in range, linear_regression falls back to random", len(draws))
		return uniformPicker(allNumbers(), numbersPerGame)
	}

	ranked := rankDescending(TrendSlopes(draws))
	logger.Debug("top trends: %v", ranked[:10])

	limit := numbersPerGame * CandidatePoolFactor
	candidates := topNumbers(ranked, limit, func(s scoredNumber) bool { return s.Score >= 0 })
	if len(candidates) < numbersPerGame {
		candidates = topNumbers(ranked, limit, nil)
	}
	return uniformPicker(candidates, min(numbersPerGame, len(candidates)))
}

// CooccurrenceMatrix counts, for every pair of numbers, the draws holding
// both. Row and column i hold number i+1; the diagonal is zero.
func CooccurrenceMatrix(draws []Draw) [][]float64 {
	matrix := make([][]float64, MaxNumber)
	for i := range matrix {
		matrix[i] = make([]float64, MaxNumber)
	}
	for _, d := range draws {
		for _, a := range d.Numbers {
			for _, b := range d.Numbers {
				if a != b {
					matrix[a-1][b-1]++
				}
			}
		}
	}
	return matrix
}

// ClusterNumbers groups 1..60 by co-occurrence into at most k clusters.
// Clusters are listed in order of their lowest number.
func ClusterNumbers(draws []Draw, k int) [][]int {
	labels := KMeans(CooccurrenceMatrix(draws), k, ClusterSeed, ClusterRestarts)

	index := make(map[int]int)
	var clusters [][]int
	for i, label := range labels {
		pos, ok := index[label]
		if !ok {
			pos = len(clusters)
			index[label] = pos
			clusters = append(clusters, nil)
		}
		clusters[pos] = append(clusters[pos], i+1)
	}
	return clusters
}

func newClusterPicker(draws []Draw, numbersPerGame int, logger Logger) gamePicker {
	if len(draws) < MinDrawsForClustering {
		logger.Debug("only %d draws in range, clustering_kmeans falls back to random", len(draws))
		return uniformPicker(allNumbers(), numbersPerGame)
	}

	clusters := ClusterNumbers(draws, min(MaxClusters, numbersPerGame))
	logger.Debug("%d clusters formed", len(clusters))
	perCluster := numbersPerGame/len(clusters) + 1

	return func(rng *RandomGenerator) ([]int, error) {
		selected := make([]int, 0, len(clusters)*perCluster)
		for _, cluster := range clusters {
			picked, err := rng.Sample(cluster, min(perCluster, len(cluster)))
			if err != nil {
				return nil, err
			}
			selected = append(selected, picked...)
		}

		if len(selected) < numbersPerGame {
			var used [MaxNumber + 1]bool
			for _, n := range selected {
				used[n] = true
			}
			unused := make([]int, 0, MaxNumber)
			for n := MinNumber; n <= MaxNumber; n++ {
				if !used[n] {
					unused = append(unused, n)
				}
			}
			extra, err := rng.Sample(unused, numbersPerGame-len(selected))
			if err != nil {
				return nil, err
			}
			selected = append(selected, extra...)
		}

		return rng.Sample(selected, numbersPerGame)
	}
}

// newAdvancedPicker prepares the per-game sampler of an advanced strategy
func newAdvancedPicker(s Strategy, draws []Draw, numbersPerGame int, suppressed []string, logger Logger) (gamePicker, error) {
	switch s {
	case StrategyQuadrantSuppression:
		return newQuadrantPicker(draws, numbersPerGame, suppressed, logger)
	case StrategyCycleAnalysis:
		return newCyclePicker(draws, numbersPerGame, logger), nil
	case StrategyLinearRegression:
		return newTrendPicker(draws, numbersPerGame, logger), nil
	case StrategyClusteringKMeans:
		return newClusterPicker(draws, numbersPerGame, logger), nil
	default:
		return nil, ErrUnknownStrategy.WithDetailsf("%s is not an advanced strategy", s)
	}
}
