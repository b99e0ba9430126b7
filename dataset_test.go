package megasena

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingLocker is an in-process Locker that counts calls
type recordingLocker struct {
	mu       sync.Mutex
	held     map[string]string
	deny     bool
	acquires int
	releases int
	modes    []string
}

func (l *recordingLocker) take(mode, key, value string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.acquires++
	l.modes = append(l.modes, mode)
	if l.deny {
		return false, nil
	}
	if l.held == nil {
		l.held = map[string]string{}
	}
	if _, taken := l.held[key]; taken {
		return false, nil
	}
	l.held[key] = value
	return true, nil
}

func (l *recordingLocker) AcquireLock(_ context.Context, key, value string, _ time.Duration) (bool, error) {
	return l.take("retry", key, value)
}

func (l *recordingLocker) TryAcquireLock(_ context.Context, key, value string, _ time.Duration) (bool, error) {
	return l.take("try", key, value)
}

func (l *recordingLocker) AcquireLockWithTimeout(_ context.Context, key, value string, _, _ time.Duration) (bool, error) {
	return l.take("timeout", key, value)
}

func (l *recordingLocker) ReleaseLock(_ context.Context, key, value string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.releases++
	if l.held[key] != value {
		return false, nil
	}
	delete(l.held, key)
	return true, nil
}

func newTestDatasetManager(t *testing.T, store DatasetStore, locker Locker, filePath string) *DatasetManager {
	t.Helper()
	config := DefaultDatasetConfig()
	config.FilePath = filePath
	return NewDatasetManager(store, locker, config, NewSilentLogger())
}

func TestDatasetManager_Replace(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{}
	locker := &recordingLocker{}
	m := newTestDatasetManager(t, store, locker, "")

	_, err := m.Require()
	assert.ErrorIs(t, err, ErrDatasetNotFound)
	assert.False(t, m.Status().Exists)

	h, err := m.Replace(ctx, strings.NewReader(semicolonSheet), "upload.csv")
	require.NoError(t, err)
	assert.Equal(t, 3, h.Len())

	current, err := m.Require()
	require.NoError(t, err)
	assert.Same(t, h, current)
	assert.Same(t, h, store.history, "replacement is persisted")
	assert.Equal(t, 1, locker.acquires)
	assert.Equal(t, 1, locker.releases)
	assert.Empty(t, locker.held)

	status := m.Status()
	assert.True(t, status.Exists)
	assert.Equal(t, 3, status.TotalDraws)
	assert.Equal(t, 3, status.LastContest)
	assert.Equal(t, "upload.csv", status.Source)
	assert.NotNil(t, status.UpdatedAt)
}

func TestDatasetManager_ReplaceFailureKeepsPrevious(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{}
	m := newTestDatasetManager(t, store, &recordingLocker{}, "")

	previous, err := m.Replace(ctx, strings.NewReader(semicolonSheet), "first.csv")
	require.NoError(t, err)

	t.Run("unparseable_upload", func(t *testing.T) {
		_, err := m.Replace(ctx, strings.NewReader("not a sheet"), "bad.csv")
		assert.ErrorIs(t, err, ErrDatasetCorrupted)
		assert.Same(t, previous, m.Current())
	})

	t.Run("store_failure", func(t *testing.T) {
		store.saveErr = ErrDatasetSaveFailure
		defer func() { store.saveErr = nil }()

		_, err := m.Replace(ctx, strings.NewReader(semicolonSheet), "second.csv")
		assert.ErrorIs(t, err, ErrDatasetSaveFailure)
		assert.Same(t, previous, m.Current())
		assert.Equal(t, "first.csv", m.Status().Source)
	})

	t.Run("lock_held_elsewhere", func(t *testing.T) {
		denied := newTestDatasetManager(t, store, &recordingLocker{deny: true}, "")
		_, err := denied.Replace(ctx, strings.NewReader(semicolonSheet), "third.csv")
		assert.ErrorIs(t, err, ErrLockAcquisitionFailed)
		assert.Nil(t, denied.Current())
	})
}

func TestDatasetManager_Delete(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{}
	m := newTestDatasetManager(t, store, nil, "")

	assert.ErrorIs(t, m.Delete(ctx), ErrDatasetNotFound)

	_, err := m.Replace(ctx, strings.NewReader(semicolonSheet), "upload.csv")
	require.NoError(t, err)

	require.NoError(t, m.Delete(ctx))
	assert.Nil(t, m.Current())
	assert.Nil(t, store.history)
	assert.False(t, m.Status().Exists)

	assert.ErrorIs(t, m.Delete(ctx), ErrDatasetNotFound)

	t.Run("store_error", func(t *testing.T) {
		store.deleteErr = ErrDatasetSaveFailure
		assert.ErrorIs(t, m.Delete(ctx), ErrDatasetSaveFailure)
	})
}

func TestDatasetManager_LockModes(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "mega.csv")
	require.NoError(t, os.WriteFile(path, []byte(semicolonSheet), 0o600))

	locker := &recordingLocker{}
	m := newTestDatasetManager(t, &memoryStore{}, locker, path)

	_, err := m.Restore(ctx)
	require.NoError(t, err)
	_, err = m.Replace(ctx, strings.NewReader(semicolonSheet), "upload.csv")
	require.NoError(t, err)
	require.NoError(t, m.Delete(ctx))

	assert.Equal(t, []string{"timeout", "retry", "try"}, locker.modes)
	assert.Equal(t, 3, locker.releases)
	assert.Empty(t, locker.held)

	t.Run("restore_from_store_takes_no_lock", func(t *testing.T) {
		locker := &recordingLocker{}
		stored := newTestDatasetManager(t, &memoryStore{history: syntheticHistory(t, 5, 63)}, locker, "")
		_, err := stored.Restore(ctx)
		require.NoError(t, err)
		assert.Empty(t, locker.modes)
	})

	t.Run("delete_gives_up_while_replacement_runs", func(t *testing.T) {
		_, err := m.Replace(ctx, strings.NewReader(semicolonSheet), "again.csv")
		require.NoError(t, err)
		current := m.Current()

		locker.held[DatasetLockKey] = "other-replica"
		defer delete(locker.held, DatasetLockKey)

		err = m.Delete(ctx)
		assert.ErrorIs(t, err, ErrLockAcquisitionFailed)
		assert.Same(t, current, m.Current())
		assert.Equal(t, "try", locker.modes[len(locker.modes)-1])
	})
}

func TestDatasetManager_Restore(t *testing.T) {
	ctx := context.Background()

	t.Run("from_store", func(t *testing.T) {
		stored := syntheticHistory(t, 12, 61)
		m := newTestDatasetManager(t, &memoryStore{history: stored}, nil, "")

		h, err := m.Restore(ctx)
		require.NoError(t, err)
		assert.Same(t, stored, h)
		assert.Equal(t, "store", m.Status().Source)
	})

	t.Run("from_file_when_store_empty", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "mega.csv")
		require.NoError(t, os.WriteFile(path, []byte(semicolonSheet), 0o600))

		store := &memoryStore{}
		m := newTestDatasetManager(t, store, nil, path)

		h, err := m.Restore(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, h.Len())
		assert.Same(t, h, store.history, "file dataset is written to the store")
		assert.Equal(t, path, m.Status().Source)
	})

	t.Run("from_file_when_store_down", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "mega.csv")
		require.NoError(t, os.WriteFile(path, []byte(semicolonSheet), 0o600))

		store := &memoryStore{loadErr: ErrDatasetLoadFailure, saveErr: ErrDatasetSaveFailure}
		m := newTestDatasetManager(t, store, nil, path)
		monitor := NewPerformanceMonitor()
		m.SetPerformanceMonitor(monitor)

		h, err := m.Restore(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, h.Len())
		assert.Equal(t, int64(2), monitor.GetMetrics().StoreErrors)
		assert.Equal(t, int64(1), monitor.GetMetrics().DatasetReplacements)
	})

	t.Run("nothing_anywhere", func(t *testing.T) {
		m := newTestDatasetManager(t, &memoryStore{}, nil, filepath.Join(t.TempDir(), "missing.csv"))
		_, err := m.Restore(ctx)
		assert.ErrorIs(t, err, ErrDatasetNotFound)

		memoryOnly := newTestDatasetManager(t, nil, nil, "")
		_, err = memoryOnly.Restore(ctx)
		assert.ErrorIs(t, err, ErrDatasetNotFound)
	})
}

func TestDatasetManager_CustomLoader(t *testing.T) {
	m := newTestDatasetManager(t, nil, nil, "")
	want := syntheticHistory(t, 4, 62)
	m.SetLoader(func(r io.Reader) (*DrawHistory, error) { return want, nil })

	got, err := m.Replace(context.Background(), strings.NewReader(""), "custom")
	require.NoError(t, err)
	assert.Same(t, want, got)
}

func TestDatasetManager_StatusIncludesBreaker(t *testing.T) {
	store := NewCircuitBreakerStore(&memoryStore{}, DefaultCircuitBreakerConfig(), nil)
	m := newTestDatasetManager(t, store, nil, "")

	status := m.Status()
	require.NotNil(t, status.Store)
	assert.Equal(t, "closed", status.Store["state"])
}

func TestDatasetManager_ConcurrentReaders(t *testing.T) {
	ctx := context.Background()
	m := newTestDatasetManager(t, &memoryStore{}, &recordingLocker{}, "")
	_, err := m.Replace(ctx, strings.NewReader(semicolonSheet), "initial")
	require.NoError(t, err)

	gen := newTestGenerator(t, 0)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h, err := m.Require()
			if !assert.NoError(t, err) {
				return
			}
			_, err = gen.GenerateGames(h, GenerateRequest{Strategy: StrategyRandom, NumGames: 2, NumbersPerGame: 6})
			assert.NoError(t, err)
		}()
	}
	for i := 0; i < 3; i++ {
		_, err := m.Replace(ctx, strings.NewReader(semicolonSheet), "reload")
		assert.NoError(t, err)
	}
	wg.Wait()
}
