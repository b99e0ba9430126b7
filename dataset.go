package megasena

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// DatasetStatus describes the loaded dataset
type DatasetStatus struct {
	Exists      bool           `json:"exists"`
	TotalDraws  int            `json:"total_draws"`
	LastContest int            `json:"last_contest,omitempty"`
	Source      string         `json:"source,omitempty"`
	UpdatedAt   *time.Time     `json:"updated_at,omitempty"`
	Store       map[string]any `json:"store,omitempty"`
}

// DatasetManager owns the current draw history. Readers take a snapshot
// with Current; replacement swaps in a new history, so in-flight readers
// keep the one they started with.
type DatasetManager struct {
	current atomic.Pointer[DrawHistory]

	store  DatasetStore // nil keeps the dataset in memory only
	locker Locker       // nil skips cross-process locking
	loader HistoryLoader
	config *DatasetConfig
	logger Logger

	performanceMonitor *PerformanceMonitor

	mu        sync.Mutex // serializes writers within the process
	source    string
	updatedAt time.Time
}

// NewDatasetManager creates a dataset manager
func NewDatasetManager(store DatasetStore, locker Locker, config *DatasetConfig, logger Logger) *DatasetManager {
	if config == nil {
		config = DefaultDatasetConfig()
	}
	if logger == nil {
		logger = NewSilentLogger()
	}
	return &DatasetManager{
		store:  store,
		locker: locker,
		loader: LoadHistoryCSV,
		config: config,
		logger: logger,

		performanceMonitor: NewPerformanceMonitor(),
	}
}

// SetPerformanceMonitor shares a monitor with the generator
func (m *DatasetManager) SetPerformanceMonitor(monitor *PerformanceMonitor) {
	if monitor != nil {
		m.performanceMonitor = monitor
	}
}

// SetLoader replaces the parser used by Replace and Restore
func (m *DatasetManager) SetLoader(loader HistoryLoader) {
	if loader != nil {
		m.loader = loader
	}
}

// Current returns the loaded history, or nil when no dataset is loaded
func (m *DatasetManager) Current() *DrawHistory { return m.current.Load() }

// Require returns the loaded history or ErrDatasetNotFound
func (m *DatasetManager) Require() (*DrawHistory, error) {
	if h := m.current.Load(); h != nil {
		return h, nil
	}
	return nil, ErrDatasetNotFound
}

// generateLockValue generates a unique lock owner token
func generateLockValue() string {
	randomBytes := make([]byte, 8)
	if _, err := rand.Read(randomBytes); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return time.Now().Format("20060102_150405") + "_" + hex.EncodeToString(randomBytes)
}

// lockAcquirer is one of the Locker acquisition modes bound to the dataset key
type lockAcquirer func(ctx context.Context, lockValue string) (bool, error)

// waitForLock retries within the locker's own attempt budget
func (m *DatasetManager) waitForLock(ctx context.Context, lockValue string) (bool, error) {
	return m.locker.AcquireLock(ctx, DatasetLockKey, lockValue, m.config.LockTimeout)
}

// tryLock gives up at once when another process holds the lock
func (m *DatasetManager) tryLock(ctx context.Context, lockValue string) (bool, error) {
	return m.locker.TryAcquireLock(ctx, DatasetLockKey, lockValue, m.config.LockTimeout)
}

// waitForLockUntilTimeout waits up to one lock lifetime
func (m *DatasetManager) waitForLockUntilTimeout(ctx context.Context, lockValue string) (bool, error) {
	return m.locker.AcquireLockWithTimeout(ctx, DatasetLockKey, lockValue, m.config.LockTimeout, m.config.LockTimeout)
}

// withLock runs fn while holding the dataset lock taken through acquire
func (m *DatasetManager) withLock(ctx context.Context, acquire lockAcquirer, fn func() error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.locker == nil {
		return fn()
	}

	lockValue := generateLockValue()
	acquired, err := acquire(ctx, lockValue)
	if err != nil {
		return err
	}
	if !acquired {
		return ErrLockAcquisitionFailed.WithDetails(DatasetLockKey)
	}
	defer func() {
		// release on a fresh context so a cancelled request still frees the lock
		releaseCtx, cancel := context.WithTimeout(context.Background(), m.config.LockTimeout)
		defer cancel()
		if _, err := m.locker.ReleaseLock(releaseCtx, DatasetLockKey, lockValue); err != nil {
			m.logger.Error("Failed to release dataset lock: %v", err)
		}
	}()

	return fn()
}

func (m *DatasetManager) install(history *DrawHistory, source string) {
	m.current.Store(history)
	m.source = source
	m.updatedAt = time.Now()
	m.performanceMonitor.RecordDatasetReplacement()

	if latest, ok := history.Latest(); ok {
		m.logger.Info("Dataset loaded from %s: %d draws, latest contest %d (%s)",
			source, history.Len(), latest.Number, latest.Date.Format("2006-01-02"))
	}
}

// Replace parses r, persists the result and makes it the current history.
// On any failure the previous history stays in place.
func (m *DatasetManager) Replace(ctx context.Context, r io.Reader, source string) (*DrawHistory, error) {
	history, err := m.loader(r)
	if err != nil {
		m.logger.Warn("Rejected dataset from %s: %v", source, err)
		return nil, err
	}

	err = m.withLock(ctx, m.waitForLock, func() error {
		if m.store != nil {
			if err := m.store.SaveHistory(ctx, history); err != nil {
				m.performanceMonitor.RecordStoreError()
				return err
			}
		}
		m.install(history, source)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return history, nil
}

// Delete drops the current history and the stored snapshot. It fails with
// ErrDatasetNotFound when there was nothing to delete, and with
// ErrLockAcquisitionFailed while a replacement holds the lock.
func (m *DatasetManager) Delete(ctx context.Context) error {
	return m.withLock(ctx, m.tryLock, func() error {
		stored := false
		if m.store != nil {
			var err error
			if stored, err = m.store.DeleteHistory(ctx); err != nil {
				m.performanceMonitor.RecordStoreError()
				return err
			}
		}

		loaded := m.current.Swap(nil) != nil
		m.source = ""
		m.updatedAt = time.Time{}
		if !loaded && !stored {
			return ErrDatasetNotFound.WithDetails("no dataset to delete")
		}

		m.logger.Info("Dataset deleted")
		return nil
	})
}

// Restore loads the stored snapshot, falling back to the configured file.
// A history read from the file is written to the store.
func (m *DatasetManager) Restore(ctx context.Context) (*DrawHistory, error) {
	if m.store != nil {
		history, err := m.store.LoadHistory(ctx)
		if err != nil {
			m.performanceMonitor.RecordStoreError()
			m.logger.Warn("Stored dataset unavailable, trying %s: %v", m.config.FilePath, err)
		} else if history != nil {
			m.mu.Lock()
			m.install(history, "store")
			m.mu.Unlock()
			return history, nil
		}
	}

	if m.config.FilePath == "" {
		return nil, ErrDatasetNotFound
	}

	history, err := LoadHistoryFile(m.config.FilePath)
	if err != nil {
		if errors.Is(err, ErrDatasetNotFound) {
			m.logger.Warn("No dataset found at %s, upload one to start generating", m.config.FilePath)
		}
		return nil, err
	}

	err = m.withLock(ctx, m.waitForLockUntilTimeout, func() error {
		if m.store != nil {
			if err := m.store.SaveHistory(ctx, history); err != nil {
				m.performanceMonitor.RecordStoreError()
				m.logger.Warn("Dataset from %s not persisted: %v", m.config.FilePath, err)
			}
		}
		m.install(history, m.config.FilePath)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return history, nil
}

// Status reports what is currently loaded
func (m *DatasetManager) Status() DatasetStatus {
	status := DatasetStatus{}
	if cb, ok := m.store.(*CircuitBreakerStore); ok {
		status.Store = cb.Health()
	}

	history := m.current.Load()
	if history == nil {
		return status
	}

	m.mu.Lock()
	source, updatedAt := m.source, m.updatedAt
	m.mu.Unlock()

	status.Exists = true
	status.TotalDraws = history.Len()
	status.Source = source
	if !updatedAt.IsZero() {
		status.UpdatedAt = &updatedAt
	}
	if latest, ok := history.Latest(); ok {
		status.LastContest = latest.Number
	}
	return status
}
