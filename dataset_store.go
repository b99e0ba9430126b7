package megasena

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	// DatasetKeyPrefix is the prefix for Redis dataset keys
	DatasetKeyPrefix = "megasena:dataset:"

	// DefaultDatasetName names the snapshot key when none is configured
	DefaultDatasetName = "history"

	// SnapshotVersion is written into every stored snapshot
	SnapshotVersion = 1

	// MaxSnapshotSize is the maximum allowed size for a serialized snapshot (10MB)
	MaxSnapshotSize = 10 * 1024 * 1024

	// MaxRetryDelay caps the exponential backoff between store retries
	MaxRetryDelay = 5 * time.Second
)

// datasetSnapshot is the JSON document kept in Redis
type datasetSnapshot struct {
	Version int       `json:"version"`
	SavedAt time.Time `json:"saved_at"`
	Draws   []Draw    `json:"draws"`
}

// RedisDatasetStore keeps the draw history snapshot in Redis
type RedisDatasetStore struct {
	redisClient    *redis.Client
	logger         Logger
	key            string
	ttl            time.Duration
	retryAttempts  int
	retryBaseDelay time.Duration
}

// NewRedisDatasetStore creates a store under the default key, without expiry
func NewRedisDatasetStore(redisClient *redis.Client, logger Logger) *RedisDatasetStore {
	return NewRedisDatasetStoreWithRetry(redisClient, logger, DefaultDatasetName, 0, DefaultRetryAttempts, DefaultRetryInterval)
}

// NewRedisDatasetStoreWithRetry creates a store with custom key, TTL and retry settings
func NewRedisDatasetStoreWithRetry(
	redisClient *redis.Client, logger Logger, name string, ttl time.Duration, retryAttempts int, retryDelay time.Duration,
) *RedisDatasetStore {
	if logger == nil {
		logger = NewSilentLogger()
	}
	if name == "" {
		name = DefaultDatasetName
	}
	return &RedisDatasetStore{
		redisClient:    redisClient,
		logger:         logger,
		key:            DatasetKeyPrefix + name,
		ttl:            ttl,
		retryAttempts:  retryAttempts,
		retryBaseDelay: retryDelay,
	}
}

// Key returns the Redis key holding the snapshot
func (s *RedisDatasetStore) Key() string { return s.key }

func serializeHistory(history *DrawHistory) ([]byte, error) {
	data, err := json.Marshal(datasetSnapshot{
		Version: SnapshotVersion,
		SavedAt: time.Now().UTC(),
		Draws:   history.draws,
	})
	if err != nil {
		return nil, ErrDatasetSaveFailure.WithDetails("serialization failed").WithCause(err)
	}
	if len(data) > MaxSnapshotSize {
		return nil, ErrDatasetSaveFailure.WithDetailsf("snapshot of %d draws is %d bytes, limit %d",
			history.Len(), len(data), MaxSnapshotSize)
	}
	return data, nil
}

func deserializeHistory(data []byte) (*DrawHistory, error) {
	var snapshot datasetSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, ErrDatasetCorrupted.WithDetails("snapshot is not valid JSON").WithCause(err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, ErrDatasetCorrupted.WithDetailsf("unsupported snapshot version %d", snapshot.Version)
	}

	history, err := NewDrawHistory(snapshot.Draws)
	if err != nil {
		return nil, ErrDatasetCorrupted.WithDetails("stored draws failed validation").WithCause(err)
	}
	return history, nil
}

// isRetriableRedisError checks if a Redis error is transient
func isRetriableRedisError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	for _, retriable := range []string{
		"connection refused",
		"connection reset",
		"timeout",
		"broken pipe",
		"i/o timeout",
		"dial tcp",
		"server closed",
		"no route to host",
		"redis: connection pool timeout",
	} {
		if strings.Contains(errStr, retriable) {
			return true
		}
	}
	return false
}

// executeWithRetry runs fn, retrying transient Redis failures with exponential backoff
func (s *RedisDatasetStore) executeWithRetry(ctx context.Context, operation string, fn func() error) error {
	var lastErr error
	startTime := time.Now()

	for attempt := 0; attempt <= s.retryAttempts; attempt++ {
		if attempt > 0 {
			delay := min(time.Duration(1<<(attempt-1))*s.retryBaseDelay, MaxRetryDelay)
			s.logger.Debug("Retrying %s (attempt %d/%d) after %v", operation, attempt, s.retryAttempts, delay)

			select {
			case <-ctx.Done():
				return fmt.Errorf("%s cancelled after %v: %w", operation, time.Since(startTime), ctx.Err())
			case <-time.After(delay):
			}
		}

		err := fn()
		if err == nil {
			if attempt > 0 {
				s.logger.Info("%s succeeded after %d retries in %v", operation, attempt, time.Since(startTime))
			}
			return nil
		}

		lastErr = err
		if !isRetriableRedisError(err) {
			s.logger.Debug("Non-retriable error for %s: %v", operation, err)
			break
		}
	}

	return fmt.Errorf("%s failed after %v: %w", operation, time.Since(startTime), lastErr)
}

// SaveHistory replaces the stored snapshot
func (s *RedisDatasetStore) SaveHistory(ctx context.Context, history *DrawHistory) error {
	if history == nil {
		return ErrInvalidParameter.WithDetails("nil history")
	}

	data, err := serializeHistory(history)
	if err != nil {
		return err
	}

	err = s.executeWithRetry(ctx, "save["+s.key+"]", func() error {
		return s.redisClient.Set(ctx, s.key, data, s.ttl).Err()
	})
	if err != nil {
		s.logger.Error("Failed to save dataset: key=%s, draws=%d, size=%d bytes, error=%v", s.key, history.Len(), len(data), err)
		return ErrDatasetSaveFailure.WithCause(err)
	}

	s.logger.Debug("Saved dataset: key=%s, draws=%d, size=%d bytes, ttl=%v", s.key, history.Len(), len(data), s.ttl)
	return nil
}

// LoadHistory returns the stored snapshot, or nil when the key is absent
func (s *RedisDatasetStore) LoadHistory(ctx context.Context) (*DrawHistory, error) {
	var data []byte
	err := s.executeWithRetry(ctx, "load["+s.key+"]", func() error {
		var err error
		data, err = s.redisClient.Get(ctx, s.key).Bytes()
		if err == redis.Nil {
			data = nil
			return nil
		}
		return err
	})
	if err != nil {
		s.logger.Error("Failed to load dataset: key=%s, error=%v", s.key, err)
		return nil, ErrDatasetLoadFailure.WithCause(err)
	}

	if len(data) == 0 {
		s.logger.Debug("No stored dataset: key=%s", s.key)
		return nil, nil
	}
	if len(data) > MaxSnapshotSize {
		return nil, ErrDatasetCorrupted.WithDetailsf("stored snapshot is %d bytes, limit %d", len(data), MaxSnapshotSize)
	}

	history, err := deserializeHistory(data)
	if err != nil {
		s.logger.Error("Stored dataset is unreadable: key=%s, size=%d bytes, error=%v", s.key, len(data), err)
		return nil, err
	}

	s.logger.Debug("Loaded dataset: key=%s, draws=%d", s.key, history.Len())
	return history, nil
}

// DeleteHistory removes the snapshot and reports whether one existed
func (s *RedisDatasetStore) DeleteHistory(ctx context.Context) (bool, error) {
	var deleted int64
	err := s.executeWithRetry(ctx, "delete["+s.key+"]", func() error {
		var err error
		deleted, err = s.redisClient.Del(ctx, s.key).Result()
		return err
	})
	if err != nil {
		s.logger.Error("Failed to delete dataset: key=%s, error=%v", s.key, err)
		return false, ErrDatasetSaveFailure.WithDetails("delete failed").WithCause(err)
	}
	return deleted > 0, nil
}
