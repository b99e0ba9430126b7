package megasena

import (
	"math"
	"slices"
	"sync"
	"time"
)

// Generator is the game generation engine. It holds no dataset; every call
// receives the history snapshot to work on.
type Generator struct {
	config *GeneratorConfig
	logger Logger
	mu     sync.RWMutex // 保护配置的并发访问

	performanceMonitor *PerformanceMonitor
	newRandom          func() *RandomGenerator
}

// NewGenerator creates a generator with default configuration
func NewGenerator() *Generator {
	return NewGeneratorWithConfigAndLogger(DefaultGeneratorConfig(), &DefaultLogger{})
}

// NewGeneratorWithLogger creates a generator with a custom logger
func NewGeneratorWithLogger(logger Logger) *Generator {
	return NewGeneratorWithConfigAndLogger(DefaultGeneratorConfig(), logger)
}

// NewGeneratorWithConfigAndLogger creates a generator with custom configuration and logger
func NewGeneratorWithConfigAndLogger(config *GeneratorConfig, logger Logger) *Generator {
	if config == nil {
		config = DefaultGeneratorConfig()
	}
	if logger == nil {
		logger = NewSilentLogger()
	}
	return &Generator{
		config: config,
		logger: logger,

		performanceMonitor: NewPerformanceMonitor(),
		newRandom:          NewTimeSeededGenerator,
	}
}

// GetConfig returns a copy of the generator configuration
func (g *Generator) GetConfig() GeneratorConfig {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return *g.config
}

// UpdateConfig swaps the generator configuration at runtime
func (g *Generator) UpdateConfig(config *GeneratorConfig) error {
	if config == nil {
		return ErrInvalidParameter.WithDetails("nil generator configuration")
	}
	if err := config.Validate(); err != nil {
		g.logger.Error("UpdateConfig validation failed: %v", err)
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	c := *config
	g.config = &c
	g.logger.Info("Generator configuration updated: AttemptsPerGame=%d, ProgressInterval=%d",
		c.AttemptsPerGame, c.ProgressInterval)
	return nil
}

// SetLogger updates the logger at runtime
func (g *Generator) SetLogger(logger Logger) {
	if logger != nil {
		g.logger = logger
	}
}

// PerformanceMetrics returns a snapshot of the generation metrics
func (g *Generator) PerformanceMetrics() GenerationMetrics {
	return g.performanceMonitor.GetMetrics()
}

// ResetPerformanceMetrics 重置性能指标
func (g *Generator) ResetPerformanceMetrics() { g.performanceMonitor.ResetMetrics() }

// Monitor exposes the monitor so collaborators can record dataset events
func (g *Generator) Monitor() *PerformanceMonitor { return g.performanceMonitor }

// MaxFixedNumbers is the largest fixed-number count allowed for a bet size
func MaxFixedNumbers(numbersPerGame int) int {
	return int(math.Floor(float64(numbersPerGame) * MaxFixedRatio))
}

// validateRequest checks the request preconditions and returns the
// deduplicated, sorted fixed numbers.
func validateRequest(req GenerateRequest) ([]int, error) {
	if req.NumbersPerGame < MinNumbersPerGame || req.NumbersPerGame > MaxNumbersPerGame {
		return nil, ErrInvalidParameter.WithDetailsf("numbers per game must be between %d and %d, got %d",
			MinNumbersPerGame, MaxNumbersPerGame, req.NumbersPerGame)
	}
	if req.NumGames < 0 {
		return nil, ErrInvalidParameter.WithDetailsf("number of games cannot be negative, got %d", req.NumGames)
	}
	if !req.Strategy.Valid() {
		return nil, ErrUnknownStrategy.WithDetails(req.Strategy.String())
	}

	if req.Strategy.IsAdvanced() {
		if len(req.FixedNumbers) > 0 {
			return nil, ErrConstraintViolation.WithDetailsf("strategy %s does not accept fixed numbers", req.Strategy)
		}
		return nil, nil
	}

	fixed := slices.Clone(req.FixedNumbers)
	slices.Sort(fixed)
	fixed = slices.Compact(fixed)

	if len(fixed) > req.NumbersPerGame {
		return nil, ErrConstraintViolation.WithDetailsf("%d fixed numbers exceed %d numbers per game",
			len(fixed), req.NumbersPerGame)
	}
	if maxFixed := MaxFixedNumbers(req.NumbersPerGame); len(fixed) > maxFixed {
		return nil, ErrConstraintViolation.WithDetailsf("at most %d fixed numbers allowed (30%%), got %d",
			maxFixed, len(fixed))
	}
	for _, n := range fixed {
		if n < MinNumber || n > MaxNumber {
			return nil, ErrConstraintViolation.WithDetailsf("fixed number %d outside [%d,%d]", n, MinNumber, MaxNumber)
		}
	}
	return fixed, nil
}

// GenerateGames produces up to req.NumGames distinct games. Games come back
// in the order they were accepted. Running out of attempts is not an error:
// the result then carries fewer games, possibly none.
func (g *Generator) GenerateGames(history *DrawHistory, req GenerateRequest) (*GenerationResult, error) {
	startTime := time.Now()

	result, err := g.generate(history, req)

	duration := time.Since(startTime)
	g.performanceMonitor.RecordGeneration(result, duration)
	if err != nil {
		g.logger.Error("GenerateGames failed: strategy=%s, error=%v", req.Strategy, err)
		return nil, err
	}

	switch {
	case result.Empty:
		g.logger.Warn("No game generated: strategy=%s, attempts=%d/%d", req.Strategy, result.Attempts, result.MaxAttempts)
	case result.PartialSuccess:
		g.logger.Warn("Generated %d of %d games: strategy=%s, attempts=%d/%d",
			result.Completed, result.TotalRequested, req.Strategy, result.Attempts, result.MaxAttempts)
	default:
		g.logger.Info("Generated %d games: strategy=%s, attempts=%d, duration=%v",
			result.Completed, req.Strategy, result.Attempts, duration)
	}
	return result, nil
}

func (g *Generator) generate(history *DrawHistory, req GenerateRequest) (*GenerationResult, error) {
	fixed, err := validateRequest(req)
	if err != nil {
		return nil, err
	}
	if history == nil {
		return nil, ErrDatasetNotFound
	}

	g.mu.RLock()
	config := *g.config
	g.mu.RUnlock()

	g.logger.Info("GenerateGames called: strategy=%s, range=%s, numbersPerGame=%d, games=%d, fixed=%v",
		req.Strategy, req.Range, req.NumbersPerGame, req.NumGames, fixed)

	rng := g.newRandom()
	if req.Strategy.IsAdvanced() {
		return g.generateAdvanced(history, req, rng, config)
	}
	return g.generateClassical(history, req, fixed, rng, config)
}

// generateAdvanced calls the strategy once per requested game; repeated
// games collapse, so the result may be short.
func (g *Generator) generateAdvanced(
	history *DrawHistory, req GenerateRequest, rng *RandomGenerator, config GeneratorConfig,
) (*GenerationResult, error) {
	draws := history.Resolve(req.Range)
	picker, err := newAdvancedPicker(req.Strategy, draws, req.NumbersPerGame, req.SuppressedQuadrants, g.logger)
	if err != nil {
		return nil, err
	}

	games := newGameSet(req.NumGames)
	for range req.NumGames {
		numbers, err := picker(rng)
		if err != nil {
			return nil, err
		}
		game, ok := newGame(numbers, req.NumbersPerGame)
		if !ok {
			return nil, ErrSystemError.WithDetailsf("strategy %s produced invalid game %v", req.Strategy, numbers)
		}
		if games.add(game) {
			g.reportProgress(req, games, config)
		}
	}

	return newResult(req, games, req.NumGames, req.NumGames, len(draws)), nil
}

// generateClassical runs the rejection-sampling loop over the range pool.
func (g *Generator) generateClassical(
	history *DrawHistory, req GenerateRequest, fixed []int, rng *RandomGenerator, config GeneratorConfig,
) (*GenerationResult, error) {
	remaining := req.NumbersPerGame - len(fixed)
	pool := history.PoolFromPeriod(req.Range, fixed)
	if len(pool) < remaining {
		return nil, ErrPoolInsufficient.WithDetailsf("need %d numbers, pool has %d", remaining, len(pool))
	}

	var weights map[int]float64
	if req.Strategy == StrategyNeuralWeighted {
		weights = CalculateWeights(history, req.Range, pool)
		g.logger.Debug("frequency weights computed for %d pool numbers", len(weights))
	}

	maxAttempts := attemptBudget(req.NumGames, config.AttemptsPerGame)
	g.logger.Debug("pool=%d numbers, slots=%d, fixed=%v, maxAttempts=%d", len(pool), remaining, fixed, maxAttempts)

	games := newGameSet(req.NumGames)
	attempts := 0
	for games.len() < req.NumGames && attempts < maxAttempts {
		attempts++

		var (
			selected []int
			err      error
		)
		if weights != nil {
			selected, err = rng.WeightedSample(pool, weights, remaining)
		} else {
			selected, err = rng.Sample(pool, remaining)
		}
		if err != nil {
			return nil, err
		}

		accepted, err := req.Strategy.Validate(selected)
		if err != nil {
			return nil, err
		}
		if !accepted {
			continue
		}

		game, ok := newGame(append(slices.Clone(fixed), selected...), req.NumbersPerGame)
		if !ok || !containsAll(game, fixed) {
			continue
		}
		if games.add(game) {
			g.reportProgress(req, games, config)
		}
	}

	return newResult(req, games, attempts, maxAttempts, len(pool)), nil
}

func (g *Generator) reportProgress(req GenerateRequest, games *gameSet, config GeneratorConfig) {
	completed := games.len()
	if config.ProgressInterval > 0 && completed%config.ProgressInterval == 0 {
		g.logger.Info("Progress: %d/%d", completed, req.NumGames)
	}
	if req.Progress != nil {
		req.Progress(completed, req.NumGames, games.games[completed-1])
	}
}

// attemptBudget is numGames*perGame, saturating at math.MaxInt
func attemptBudget(numGames, perGame int) int {
	if numGames > 0 && perGame > math.MaxInt/numGames {
		return math.MaxInt
	}
	return numGames * perGame
}

func containsAll(game Game, numbers []int) bool {
	for _, n := range numbers {
		if !game.Contains(n) {
			return false
		}
	}
	return true
}

func newResult(req GenerateRequest, games *gameSet, attempts, maxAttempts, poolSize int) *GenerationResult {
	completed := games.len()
	return &GenerationResult{
		Games:          games.games,
		Strategy:       req.Strategy,
		TotalRequested: req.NumGames,
		Completed:      completed,
		Attempts:       attempts,
		MaxAttempts:    maxAttempts,
		PoolSize:       poolSize,
		PartialSuccess: completed > 0 && completed < req.NumGames,
		Empty:          completed == 0 && req.NumGames > 0,
	}
}
