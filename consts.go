package megasena

import "time"

const (
	// MinNumber is the lowest number that can be drawn
	MinNumber = 1

	// MaxNumber is the highest number that can be drawn
	MaxNumber = 60

	// NumbersPerDraw is the count of numbers in one official draw
	NumbersPerDraw = 6

	// MinNumbersPerGame is the smallest bet size accepted by the generator
	MinNumbersPerGame = 6

	// MaxNumbersPerGame is the largest bet size accepted by the generator
	MaxNumbersPerGame = 20

	// MaxFixedRatio caps fixed numbers to floor(numbersPerGame * MaxFixedRatio)
	MaxFixedRatio = 0.3

	// DefaultAttemptsPerGame is the rejection-sampling budget per requested game
	DefaultAttemptsPerGame = 3000

	// DefaultProgressInterval is how many accepted games pass between progress logs
	DefaultProgressInterval = 500

	// QuadrantSize is the width of each of the four quadrants
	QuadrantSize = 15

	// MaxSuppressedQuadrants keeps at least two quadrants active
	MaxSuppressedQuadrants = 2
)

const (
	// MinControlledSum is the lower bound for the controlled_sum strategy
	MinControlledSum = 120

	// MaxControlledSum is the upper bound for the controlled_sum strategy
	MaxControlledSum = 210

	// MaxGameCount caps the games a single budget or count may request
	MaxGameCount = 1<<31 - 1

	// MinEvenOdd is the minimum count of evens and of odds in a balanced game
	MinEvenOdd = 2

	// PatternThreshold is the count at which a run, decade or multiple pattern is rejected
	PatternThreshold = 3

	// CandidatePoolFactor sizes ranked candidate pools as factor * numbersPerGame
	CandidatePoolFactor = 2

	// MinDrawsForTrend is the minimum range length for the linear_regression strategy
	MinDrawsForTrend = 10

	// MinDrawsForClustering is the minimum range length for the clustering_kmeans strategy
	MinDrawsForClustering = 20

	// MaxClusters caps the number of co-occurrence clusters
	MaxClusters = 8

	// ClusterSeed keeps clustering reproducible
	ClusterSeed = 42

	// ClusterRestarts is the number of k-means initialisations kept for the best inertia
	ClusterRestarts = 10

	// ClusterMaxIterations bounds Lloyd iterations per restart
	ClusterMaxIterations = 300
)

const (
	// DefaultTopNumbers is the size of the frequency ranking in statistics
	DefaultTopNumbers = 10

	// DefaultTopCombinations is the size of the pair and trio rankings
	DefaultTopCombinations = 10

	// DefaultDelayedCount is the default size of the delayed-number report
	DefaultDelayedCount = 20

	// SummaryPreviousDraws is the number of draws listed before the latest one
	SummaryPreviousDraws = 5
)

const (
	// DefaultLockTimeout is the default timeout for acquiring the dataset lock
	DefaultLockTimeout = 30 * time.Second

	// DefaultRetryAttempts is the default number of retry attempts
	DefaultRetryAttempts = 3

	// DefaultRetryInterval is the default interval between retry attempts
	DefaultRetryInterval = 100 * time.Millisecond

	// LockKeyPrefix is the prefix for Redis lock keys
	LockKeyPrefix = "megasena:lock:"

	// DatasetLockKey is the lock guarding dataset replacement
	DatasetLockKey = "dataset"

	// DefaultLockExpiration is the default expiration time for locks
	DefaultLockExpiration = 30 * time.Second

	// MaxRetryAttempts is the maximum number of retry attempts allowed
	MaxRetryAttempts = 10

	// MinLockTimeout is the minimum lock timeout allowed
	MinLockTimeout = 1 * time.Second

	// MaxLockTimeout is the maximum lock timeout allowed
	MaxLockTimeout = 5 * time.Minute
)

const (
	// DefaultCircuitBreakerName is the default name for Circuit Breaker
	DefaultCircuitBreakerName = "megasena-dataset"

	// DefaultCircuitBreakerMaxRequests is the default max requests
	DefaultCircuitBreakerMaxRequests = 3

	// DefaultCircuitBreakerInterval is the default interval
	DefaultCircuitBreakerInterval = 60 * time.Second

	// DefaultCircuitBreakerTimeout is the default timeout
	DefaultCircuitBreakerTimeout = 30 * time.Second

	// DefaultCircuitBreakerFailureRatio is the default failure ratio
	DefaultCircuitBreakerFailureRatio = 0.6

	// DefaultCircuitBreakerMinRequests is the default min requests
	DefaultCircuitBreakerMinRequests = 3

	// DefaultCircuitBreakerOnStateChange is the default on state change
	DefaultCircuitBreakerOnStateChange = true
)

const (
	DefaultRedisAddr         = "localhost:6379"
	DefaultRedisPassword     = ""
	DefaultRedisDB           = 0
	DefaultRedisPoolSize     = 50
	DefaultRedisMinIdleConns = 10
	DefaultRedisMaxRetries   = 3
	DefaultRedisDialTimeout  = 5 * time.Second
	DefaultRedisReadTimeout  = 3 * time.Second
	DefaultRedisWriteTimeout = 3 * time.Second
	DefaultRedisPoolTimeout  = 4 * time.Second
)

const (
	DefaultServerAddr      = ":8000"
	DefaultDatasetFilePath = "data/Mega-Sena.csv"
	DefaultAllowedOrigin   = "http://localhost:3000"
)
