package megasena

import "slices"

// IsBalanced requires at least two even and two odd numbers and one number
// in each quadrant. Sets smaller than six always pass.
func IsBalanced(numbers []int) bool {
	if len(numbers) < NumbersPerDraw {
		return true
	}

	evens := 0
	var quadrants [5]int
	for _, n := range numbers {
		if n%2 == 0 {
			evens++
		}
		quadrants[QuadrantOf(n)]++
	}

	if evens < MinEvenOdd || len(numbers)-evens < MinEvenOdd {
		return false
	}
	for _, q := range Quadrants() {
		if quadrants[q] == 0 {
			return false
		}
	}
	return true
}

// HasPatterns detects a run of three consecutive numbers, three numbers in
// the same decade, or three multiples of 5 (or of 10).
func HasPatterns(numbers []int) bool {
	if len(numbers) < PatternThreshold {
		return false
	}

	sorted := slices.Clone(numbers)
	slices.Sort(sorted)
	run := 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1]+1 {
			run++
			if run >= PatternThreshold {
				return true
			}
		} else {
			run = 1
		}
	}

	decades := make(map[int]int)
	for _, n := range numbers {
		decades[n/10]++
		if decades[n/10] >= PatternThreshold {
			return true
		}
	}

	for _, mult := range []int{5, 10} {
		count := 0
		for _, n := range numbers {
			if n%mult == 0 {
				count++
			}
		}
		if count >= PatternThreshold {
			return true
		}
	}
	return false
}

// AvoidsPatterns is the acceptance predicate of the avoid_patterns strategy
func AvoidsPatterns(numbers []int) bool { return !HasPatterns(numbers) }

// SumInRange requires the total to fall in [MinControlledSum, MaxControlledSum].
// Sets smaller than six always pass.
func SumInRange(numbers []int) bool {
	if len(numbers) < NumbersPerDraw {
		return true
	}
	total := 0
	for _, n := range numbers {
		total += n
	}
	return total >= MinControlledSum && total <= MaxControlledSum
}

// Validate runs the acceptance predicate bound to s. Strategies without a
// predicate accept everything.
func (s Strategy) Validate(numbers []int) (bool, error) {
	switch s {
	case StrategyBalanced:
		return IsBalanced(numbers), nil
	case StrategyAvoidPatterns:
		return AvoidsPatterns(numbers), nil
	case StrategyControlledSum:
		return SumInRange(numbers), nil
	case StrategyRandom, StrategyNeuralWeighted,
		StrategyQuadrantSuppression, StrategyCycleAnalysis, StrategyLinearRegression, StrategyClusteringKMeans:
		return true, nil
	default:
		return false, ErrUnknownStrategy.WithDetails(s.String())
	}
}
