package megasena

import (
	"context"
	"errors"

	"github.com/sony/gobreaker"
)

// CircuitBreakerStore 带熔断器的数据集存储
type CircuitBreakerStore struct {
	store DatasetStore

	breaker *gobreaker.CircuitBreaker
	logger  Logger
	config  *CircuitBreakerConfig
}

// NewCircuitBreakerStore wraps store with a circuit breaker. A disabled
// configuration yields a pass-through wrapper.
func NewCircuitBreakerStore(store DatasetStore, config *CircuitBreakerConfig, logger Logger) *CircuitBreakerStore {
	if config == nil {
		config = DefaultCircuitBreakerConfig()
	}
	if logger == nil {
		logger = NewSilentLogger()
	}

	c := &CircuitBreakerStore{store: store, logger: logger, config: config}
	if config.Enabled {
		c.breaker = c.newBreaker()
	}
	return c
}

func (c *CircuitBreakerStore) newBreaker() *gobreaker.CircuitBreaker {
	config := c.config
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// 当请求数达到最小要求且失败率超过阈值时触发熔断
			return counts.Requests >= config.MinRequests &&
				float64(counts.TotalFailures)/float64(counts.Requests) >= config.FailureRatio
		},
		// bad input and unreadable snapshots say nothing about Redis health
		IsSuccessful: func(err error) bool {
			return err == nil || IsClientError(err) || errors.Is(err, ErrDatasetCorrupted)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if config.OnStateChange {
				c.logger.Warn("Circuit breaker '%s' state changed from %s to %s", name, from, to)
			}
		},
	})
}

// executeWithBreaker 使用熔断器执行操作
func (c *CircuitBreakerStore) executeWithBreaker(operation func() (any, error)) (any, error) {
	if c.breaker == nil {
		return operation()
	}

	result, err := c.breaker.Execute(operation)
	if errors.Is(err, gobreaker.ErrOpenState) {
		return nil, ErrCircuitBreakerOpen.WithDetails("dataset store unavailable, requests are being rejected")
	}
	if errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, ErrCircuitBreakerOpen.WithDetails("too many requests, circuit breaker is half-open")
	}
	return result, err
}

// SaveHistory 保存数据集
func (c *CircuitBreakerStore) SaveHistory(ctx context.Context, history *DrawHistory) error {
	_, err := c.executeWithBreaker(func() (any, error) {
		return nil, c.store.SaveHistory(ctx, history)
	})
	return err
}

// LoadHistory 加载数据集
func (c *CircuitBreakerStore) LoadHistory(ctx context.Context) (*DrawHistory, error) {
	result, err := c.executeWithBreaker(func() (any, error) {
		return c.store.LoadHistory(ctx)
	})
	if err != nil {
		return nil, err
	}

	history, _ := result.(*DrawHistory)
	return history, nil
}

// DeleteHistory 删除数据集
func (c *CircuitBreakerStore) DeleteHistory(ctx context.Context) (bool, error) {
	result, err := c.executeWithBreaker(func() (any, error) {
		return c.store.DeleteHistory(ctx)
	})
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}

// State 获取熔断器状态
func (c *CircuitBreakerStore) State() string {
	if c.breaker == nil {
		return "disabled"
	}
	return c.breaker.State().String()
}

// Counts 获取熔断器统计信息
func (c *CircuitBreakerStore) Counts() gobreaker.Counts {
	if c.breaker == nil {
		return gobreaker.Counts{}
	}
	return c.breaker.Counts()
}

// Reset recreates the breaker; gobreaker has no reset of its own
func (c *CircuitBreakerStore) Reset() {
	if c.breaker == nil {
		return
	}
	c.breaker = c.newBreaker()
	c.logger.Info("Circuit breaker '%s' has been reset", c.config.Name)
}

// Health reports the breaker state for the status endpoint
func (c *CircuitBreakerStore) Health() map[string]any {
	result := map[string]any{
		"circuit_breaker_enabled": c.breaker != nil,
		"state":                   c.State(),
	}
	if c.breaker == nil {
		result["healthy"] = true
		return result
	}

	counts := c.Counts()
	result["requests"] = counts.Requests
	result["total_failures"] = counts.TotalFailures
	result["consecutive_failures"] = counts.ConsecutiveFailures

	switch c.breaker.State() {
	case gobreaker.StateOpen:
		result["healthy"] = false
	case gobreaker.StateHalfOpen:
		result["healthy"] = counts.ConsecutiveFailures <= 2
	default:
		result["healthy"] = true
	}
	return result
}
