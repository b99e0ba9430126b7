package megasena

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLockManager(t *testing.T) (*DistributedLockManager, redismock.ClientMock) {
	t.Helper()
	db, mock := redismock.NewClientMock()
	return NewLockManagerWithRetry(db, time.Second, 2, time.Millisecond), mock
}

func TestDistributedLockManager_AcquireLock(t *testing.T) {
	ctx := context.Background()
	key := LockKeyPrefix + DatasetLockKey

	t.Run("acquired", func(t *testing.T) {
		manager, mock := newTestLockManager(t)
		mock.ExpectSetNX(key, "owner", 5*time.Second).SetVal(true)

		ok, err := manager.AcquireLock(ctx, DatasetLockKey, "owner", 5*time.Second)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("acquired_after_holder_leaves", func(t *testing.T) {
		manager, mock := newTestLockManager(t)
		mock.ExpectSetNX(key, "owner", 5*time.Second).SetVal(false)
		mock.ExpectSetNX(key, "owner", 5*time.Second).SetVal(true)

		ok, err := manager.AcquireLock(ctx, DatasetLockKey, "owner", 5*time.Second)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("held_elsewhere", func(t *testing.T) {
		manager, mock := newTestLockManager(t)
		for range 3 {
			mock.ExpectSetNX(key, "owner", 5*time.Second).SetVal(false)
		}

		ok, err := manager.AcquireLock(ctx, DatasetLockKey, "owner", 5*time.Second)
		assert.False(t, ok)
		assert.ErrorIs(t, err, ErrLockAcquisitionFailed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("redis_down", func(t *testing.T) {
		manager, mock := newTestLockManager(t)
		for range 3 {
			mock.ExpectSetNX(key, "owner", 5*time.Second).SetErr(fmt.Errorf("connection refused"))
		}

		_, err := manager.AcquireLock(ctx, DatasetLockKey, "owner", 5*time.Second)
		assert.ErrorIs(t, err, ErrRedisConnectionFailed)
		assert.True(t, IsRetryableError(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing_arguments", func(t *testing.T) {
		manager, _ := newTestLockManager(t)
		_, err := manager.AcquireLock(ctx, "", "owner", time.Second)
		assert.ErrorIs(t, err, ErrInvalidParameter)
		_, err = manager.AcquireLock(ctx, DatasetLockKey, "", time.Second)
		assert.ErrorIs(t, err, ErrInvalidParameter)
	})

	t.Run("cancelled_context", func(t *testing.T) {
		manager, _ := newTestLockManager(t)
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := manager.AcquireLock(cancelled, DatasetLockKey, "owner", time.Second)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestDistributedLockManager_ReleaseLock(t *testing.T) {
	ctx := context.Background()
	keys := []string{LockKeyPrefix + DatasetLockKey}

	tests := []struct {
		name      string
		mockSetup func(mock redismock.ClientMock)
		want      bool
		wantErr   error
	}{
		{
			name: "owner releases",
			mockSetup: func(mock redismock.ClientMock) {
				mock.ExpectEval(releaseLockScript, keys, "owner").SetVal(int64(1))
			},
			want: true,
		},
		{
			name: "lock taken over",
			mockSetup: func(mock redismock.ClientMock) {
				mock.ExpectEval(releaseLockScript, keys, "owner").SetVal(int64(0))
			},
			want: false,
		},
		{
			name: "transient error retried",
			mockSetup: func(mock redismock.ClientMock) {
				mock.ExpectEval(releaseLockScript, keys, "owner").SetErr(fmt.Errorf("i/o timeout"))
				mock.ExpectEval(releaseLockScript, keys, "owner").SetVal(int64(1))
			},
			want: true,
		},
		{
			name: "redis down",
			mockSetup: func(mock redismock.ClientMock) {
				for range 3 {
					mock.ExpectEval(releaseLockScript, keys, "owner").SetErr(fmt.Errorf("connection refused"))
				}
			},
			wantErr: ErrRedisConnectionFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager, mock := newTestLockManager(t)
			tt.mockSetup(mock)

			released, err := manager.ReleaseLock(ctx, DatasetLockKey, "owner")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, released)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDistributedLockManager_TryAcquireLock(t *testing.T) {
	ctx := context.Background()
	manager, mock := newTestLockManager(t)
	key := LockKeyPrefix + "probe"

	mock.ExpectSetNX(key, "owner", DefaultLockExpiration).SetVal(false)
	ok, err := manager.TryAcquireLock(ctx, "probe", "owner", 0)
	require.NoError(t, err)
	assert.False(t, ok)

	mock.ExpectSetNX(key, "owner", DefaultLockExpiration).SetErr(fmt.Errorf("connection refused"))
	_, err = manager.TryAcquireLock(ctx, "probe", "owner", 0)
	assert.ErrorIs(t, err, ErrRedisConnectionFailed)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDistributedLockManager_AcquireLockWithTimeout(t *testing.T) {
	manager, mock := newTestLockManager(t)
	key := LockKeyPrefix + DatasetLockKey

	mock.ExpectSetNX(key, "owner", time.Second).SetVal(false)
	mock.ExpectSetNX(key, "owner", time.Second).SetVal(true)

	ok, err := manager.AcquireLockWithTimeout(context.Background(), DatasetLockKey, "owner", time.Second, time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
