package megasena

import "fmt"

// Strategy is the closed set of game selection algorithms.
type Strategy int

const (
	StrategyRandom Strategy = iota + 1
	StrategyBalanced
	StrategyAvoidPatterns
	StrategyControlledSum
	StrategyNeuralWeighted
	StrategyQuadrantSuppression
	StrategyCycleAnalysis
	StrategyLinearRegression
	StrategyClusteringKMeans
)

var strategyNames = map[Strategy]string{
	StrategyRandom:              "random",
	StrategyBalanced:            "balanced",
	StrategyAvoidPatterns:       "avoid_patterns",
	StrategyControlledSum:       "controlled_sum",
	StrategyNeuralWeighted:      "neural_weighted",
	StrategyQuadrantSuppression: "quadrant_suppression",
	StrategyCycleAnalysis:       "cycle_analysis",
	StrategyLinearRegression:    "linear_regression",
	StrategyClusteringKMeans:    "clustering_kmeans",
}

// Strategies lists every strategy, classical first
func Strategies() []Strategy {
	return []Strategy{
		StrategyRandom, StrategyBalanced, StrategyAvoidPatterns, StrategyControlledSum, StrategyNeuralWeighted,
		StrategyQuadrantSuppression, StrategyCycleAnalysis, StrategyLinearRegression, StrategyClusteringKMeans,
	}
}

// ParseStrategy maps a wire name to its Strategy
func ParseStrategy(name string) (Strategy, error) {
	for s, n := range strategyNames {
		if n == name {
			return s, nil
		}
	}
	return 0, ErrUnknownStrategy.WithDetailsf("strategy %q", name)
}

// String returns the wire name
func (s Strategy) String() string {
	if n, ok := strategyNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// Valid reports whether s is one of the declared strategies
func (s Strategy) Valid() bool {
	_, ok := strategyNames[s]
	return ok
}

// IsAdvanced reports whether s is a heuristic strategy that rejects fixed numbers
func (s Strategy) IsAdvanced() bool {
	switch s {
	case StrategyQuadrantSuppression, StrategyCycleAnalysis, StrategyLinearRegression, StrategyClusteringKMeans:
		return true
	}
	return false
}

// MarshalText implements encoding.TextMarshaler
func (s Strategy) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, ErrUnknownStrategy.WithDetails(s.String())
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Quadrant is one of four fixed ranges partitioning 1..60
type Quadrant int

const (
	Q1 Quadrant = iota + 1 // 1-15
	Q2                     // 16-30
	Q3                     // 31-45
	Q4                     // 46-60
)

// Quadrants lists the four quadrants in order
func Quadrants() []Quadrant { return []Quadrant{Q1, Q2, Q3, Q4} }

// ParseQuadrant maps "Q1".."Q4"
func ParseQuadrant(name string) (Quadrant, bool) {
	for _, q := range Quadrants() {
		if q.String() == name {
			return q, true
		}
	}
	return 0, false
}

// QuadrantOf returns the quadrant containing n
func QuadrantOf(n int) Quadrant {
	return Quadrant((n-MinNumber)/QuadrantSize + 1)
}

// String returns "Q1".."Q4"
func (q Quadrant) String() string { return fmt.Sprintf("Q%d", int(q)) }

// Numbers returns the numbers of the quadrant ascending
func (q Quadrant) Numbers() []int {
	first := (int(q)-1)*QuadrantSize + MinNumber
	out := make([]int, QuadrantSize)
	for i := range out {
		out[i] = first + i
	}
	return out
}
