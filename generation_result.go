package megasena

import (
	"slices"
	"strconv"
	"strings"
)

// Game is one generated bet: ascending, distinct numbers in [1,60]
type Game []int

// key renders the game as a comparable set key
func (g Game) key() string {
	parts := make([]string, len(g))
	for i, n := range g {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, "-")
}

// Contains reports whether n is part of the game
func (g Game) Contains(n int) bool {
	_, found := slices.BinarySearch(g, n)
	return found
}

// newGame sorts numbers and checks the size and distinctness invariants
func newGame(numbers []int, size int) (Game, bool) {
	if len(numbers) != size {
		return nil, false
	}
	game := Game(slices.Clone(numbers))
	slices.Sort(game)
	for i, n := range game {
		if n < MinNumber || n > MaxNumber {
			return nil, false
		}
		if i > 0 && game[i-1] == n {
			return nil, false
		}
	}
	return game, true
}

// gameSet collects games in completion order, dropping repeats
type gameSet struct {
	seen  map[string]struct{}
	games []Game
}

// maxPreallocatedGames bounds the up-front allocation of a gameSet
const maxPreallocatedGames = 1024

func newGameSet(capacity int) *gameSet {
	capacity = min(max(capacity, 0), maxPreallocatedGames)
	return &gameSet{seen: make(map[string]struct{}, capacity), games: make([]Game, 0, capacity)}
}

// add stores g unless an identical game is already present
func (s *gameSet) add(g Game) bool {
	k := g.key()
	if _, dup := s.seen[k]; dup {
		return false
	}
	s.seen[k] = struct{}{}
	s.games = append(s.games, g)
	return true
}

func (s *gameSet) len() int { return len(s.games) }

// ProgressCallback is invoked after every newly accepted game
type ProgressCallback func(completed, total int, game Game)

// GenerateRequest describes one generation call
type GenerateRequest struct {
	Strategy            Strategy         `json:"strategy"`
	NumGames            int              `json:"num_games"`
	NumbersPerGame      int              `json:"numbers_per_game"`
	Range               AnalysisRange    `json:"analysis_range"`
	FixedNumbers        []int            `json:"fixed_numbers,omitempty"`
	SuppressedQuadrants []string         `json:"suppressed_quadrants,omitempty"`
	Progress            ProgressCallback `json:"-"`
}

// GenerationResult is the outcome of a generation call. Fewer games than
// requested is not an error; Empty and PartialSuccess tell the cases apart.
type GenerationResult struct {
	Games          []Game   `json:"games"`
	Strategy       Strategy `json:"strategy"`
	TotalRequested int      `json:"total_requested"`
	Completed      int      `json:"completed"`
	Attempts       int      `json:"attempts"`
	MaxAttempts    int      `json:"max_attempts"`
	PoolSize       int      `json:"pool_size"`
	PartialSuccess bool     `json:"partial_success"`
	Empty          bool     `json:"empty"`
}

// IsComplete returns true if every requested game was produced
func (r *GenerationResult) IsComplete() bool {
	return r.Completed >= r.TotalRequested
}

// SuccessRate returns produced games as a percentage of the request
func (r *GenerationResult) SuccessRate() float64 {
	if r.TotalRequested == 0 {
		return 0.0
	}
	return float64(r.Completed) / float64(r.TotalRequested) * 100.0
}

// Numbers returns the games as plain int slices
func (r *GenerationResult) Numbers() [][]int {
	out := make([][]int, len(r.Games))
	for i, g := range r.Games {
		out[i] = []int(g)
	}
	return out
}
