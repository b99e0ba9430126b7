package megasena

// CalculateWeights turns the historical frequency of each pool number over
// the range into a probability distribution over the pool. When no pool
// number was ever drawn the distribution is uniform.
func CalculateWeights(history *DrawHistory, r AnalysisRange, pool []int) map[int]float64 {
	weights := make(map[int]float64, len(pool))
	if len(pool) == 0 {
		return weights
	}

	freq := history.Frequencies(r)
	total := 0
	for _, n := range pool {
		total += freq[n]
	}

	if total == 0 {
		for _, n := range pool {
			weights[n] = 1.0 / float64(len(pool))
		}
		return weights
	}

	for _, n := range pool {
		weights[n] = float64(freq[n]) / float64(total)
	}
	return weights
}

// cumulativeWeights returns running sums of w and their total
func cumulativeWeights(w []float64) ([]float64, float64) {
	cumulative := make([]float64, len(w))
	var sum float64
	for i, v := range w {
		sum += v
		cumulative[i] = sum
	}
	return cumulative, sum
}

// findWeightIndex finds the first cumulative weight strictly above value
// using binary search, so zero-weight entries are never selected.
func findWeightIndex(cumulative []float64, value float64) int {
	left, right := 0, len(cumulative)-1

	for left <= right {
		mid := left + (right-left)/2
		if cumulative[mid] > value {
			if mid == 0 || cumulative[mid-1] <= value {
				return mid
			}
			right = mid - 1
		} else {
			left = mid + 1
		}
	}

	return len(cumulative) - 1
}

// WeightedSample draws count distinct numbers from pool with probability
// proportional to weights, renormalising after every pick. Numbers missing
// from weights weigh zero; once the remaining weight is zero the rest of the
// pick is uniform.
func (g *RandomGenerator) WeightedSample(pool []int, weights map[int]float64, count int) ([]int, error) {
	if count < 0 || count > len(pool) {
		return nil, ErrPoolInsufficient.WithDetailsf("weighted sample of %d from pool of %d", count, len(pool))
	}

	remaining := make([]int, len(pool))
	copy(remaining, pool)
	w := make([]float64, len(pool))
	for i, n := range pool {
		if v := weights[n]; v > 0 {
			w[i] = v
		}
	}

	selected := make([]int, 0, count)
	for len(selected) < count {
		cumulative, total := cumulativeWeights(w)
		if total <= 0 {
			rest, err := g.Sample(remaining, count-len(selected))
			if err != nil {
				return nil, err
			}
			return append(selected, rest...), nil
		}

		idx := findWeightIndex(cumulative, g.GenerateFloat()*total)
		// rounding can push the draw onto the final total
		for w[idx] == 0 && idx > 0 {
			idx--
		}

		selected = append(selected, remaining[idx])
		remaining = append(remaining[:idx], remaining[idx+1:]...)
		w = append(w[:idx], w[idx+1:]...)
	}
	return selected, nil
}
