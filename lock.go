package megasena

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// Dataset replacement is serialized with a Redis lock:
// acquisition is a single SET NX, release goes through a Lua script so only
// the owner's token can delete the key.

// releaseLockScript deletes the key only while it still holds our token,
// so an expired holder cannot release a lock taken over by another replica.
const releaseLockScript = `
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`

// DistributedLockManager manages Redis distributed locks
type DistributedLockManager struct {
	redisClient   *redis.Client
	lockTimeout   time.Duration
	retryAttempts int
	retryInterval time.Duration
}

// NewLockManager creates a new distributed lock manager
func NewLockManager(redisClient *redis.Client, lockTimeout time.Duration) *DistributedLockManager {
	return NewLockManagerWithRetry(redisClient, lockTimeout, DefaultRetryAttempts, DefaultRetryInterval)
}

// NewLockManagerWithRetry creates a new distributed lock manager with custom retry settings
func NewLockManagerWithRetry(
	redisClient *redis.Client, lockTimeout time.Duration, retryAttempts int, retryInterval time.Duration,
) *DistributedLockManager {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	return &DistributedLockManager{
		redisClient:   redisClient,
		lockTimeout:   lockTimeout,
		retryAttempts: retryAttempts,
		retryInterval: retryInterval,
	}
}

// AcquireLock attempts to acquire a distributed lock, retrying while it is held elsewhere
func (m *DistributedLockManager) AcquireLock(ctx context.Context, lockKey, lockValue string, expireTime time.Duration) (bool, error) {
	if lockKey == "" || lockValue == "" {
		return false, ErrInvalidParameter.WithDetails("lock key and value are required")
	}
	if expireTime <= 0 {
		expireTime = DefaultLockExpiration
	}

	fullLockKey := LockKeyPrefix + lockKey

	for attempt := 0; attempt <= m.retryAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		default:
		}

		acquired, err := m.redisClient.SetNX(ctx, fullLockKey, lockValue, expireTime).Result()
		if err != nil {
			if attempt == m.retryAttempts {
				return false, ErrRedisConnectionFailed.WithCause(err)
			}
			time.Sleep(m.retryInterval)
			continue
		}
		if acquired {
			return true, nil
		}

		if attempt < m.retryAttempts {
			time.Sleep(m.retryInterval)
		}
	}

	return false, ErrLockAcquisitionFailed.WithDetails(lockKey)
}

// ReleaseLock releases the lock if lockValue still owns it
func (m *DistributedLockManager) ReleaseLock(ctx context.Context, lockKey, lockValue string) (bool, error) {
	if lockKey == "" || lockValue == "" {
		return false, ErrInvalidParameter.WithDetails("lock key and value are required")
	}

	fullLockKey := LockKeyPrefix + lockKey

	var lastErr error
	for attempt := 0; attempt <= m.retryAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		default:
		}

		result, err := m.redisClient.Eval(ctx, releaseLockScript, []string{fullLockKey}, lockValue).Int64()
		if err != nil {
			lastErr = err
			if attempt < m.retryAttempts {
				time.Sleep(m.retryInterval)
			}
			continue
		}

		// 0 means the lock expired or belongs to someone else
		return result == 1, nil
	}

	return false, ErrRedisConnectionFailed.WithCause(lastErr)
}

// AcquireLockWithTimeout keeps trying until the lock is taken or timeout elapses
func (m *DistributedLockManager) AcquireLockWithTimeout(
	ctx context.Context, lockKey, lockValue string, expireTime, timeout time.Duration,
) (bool, error) {
	if lockKey == "" || lockValue == "" {
		return false, ErrInvalidParameter.WithDetails("lock key and value are required")
	}
	if expireTime <= 0 {
		expireTime = DefaultLockExpiration
	}
	if timeout <= 0 {
		timeout = m.lockTimeout
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	fullLockKey := LockKeyPrefix + lockKey
	for {
		select {
		case <-timeoutCtx.Done():
			return false, ErrLockAcquisitionFailed.WithDetailsf("%s: timed out after %v", lockKey, timeout)
		default:
		}

		acquired, err := m.redisClient.SetNX(timeoutCtx, fullLockKey, lockValue, expireTime).Result()
		if err == nil && acquired {
			return true, nil
		}
		if timeoutCtx.Err() != nil {
			return false, ErrLockAcquisitionFailed.WithDetailsf("%s: timed out after %v", lockKey, timeout)
		}

		time.Sleep(m.retryInterval)
	}
}

// TryAcquireLock attempts to acquire a lock without retries (single attempt)
func (m *DistributedLockManager) TryAcquireLock(ctx context.Context, lockKey, lockValue string, expireTime time.Duration) (bool, error) {
	if lockKey == "" || lockValue == "" {
		return false, ErrInvalidParameter.WithDetails("lock key and value are required")
	}
	if expireTime <= 0 {
		expireTime = DefaultLockExpiration
	}

	acquired, err := m.redisClient.SetNX(ctx, LockKeyPrefix+lockKey, lockValue, expireTime).Result()
	if err != nil {
		return false, ErrRedisConnectionFailed.WithCause(err)
	}
	return acquired, nil
}
