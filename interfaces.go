package megasena

import (
	"context"
	"io"
	"time"
)

// GameGenerator defines the game generation operation
type GameGenerator interface {
	// GenerateGames runs one generation request against a history snapshot
	GenerateGames(history *DrawHistory, req GenerateRequest) (*GenerationResult, error)
}

// DatasetStore persists the draw history snapshot
type DatasetStore interface {
	// SaveHistory replaces the stored snapshot
	SaveHistory(ctx context.Context, history *DrawHistory) error

	// LoadHistory returns the stored snapshot, or nil when none exists
	LoadHistory(ctx context.Context) (*DrawHistory, error)

	// DeleteHistory removes the stored snapshot and reports whether one existed
	DeleteHistory(ctx context.Context) (bool, error)
}

// Locker serializes dataset replacement across processes
type Locker interface {
	// AcquireLock retries for a bounded number of attempts
	AcquireLock(ctx context.Context, lockKey, lockValue string, expireTime time.Duration) (bool, error)

	// TryAcquireLock makes a single attempt
	TryAcquireLock(ctx context.Context, lockKey, lockValue string, expireTime time.Duration) (bool, error)

	// AcquireLockWithTimeout keeps retrying until timeout elapses
	AcquireLockWithTimeout(ctx context.Context, lockKey, lockValue string, expireTime, timeout time.Duration) (bool, error)

	ReleaseLock(ctx context.Context, lockKey, lockValue string) (bool, error)
}

// HistoryLoader parses a dataset file into draws
type HistoryLoader func(r io.Reader) (*DrawHistory, error)
