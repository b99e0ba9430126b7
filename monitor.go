package megasena

import (
	"sync"
	"sync/atomic"
	"time"
)

// GenerationMetrics 生成指标
type GenerationMetrics struct {
	// 请求统计
	TotalRequests    int64 `json:"total_requests"`    // 总请求数
	CompleteRequests int64 `json:"complete_requests"` // 全部生成的请求数
	PartialRequests  int64 `json:"partial_requests"`  // 部分生成的请求数
	EmptyRequests    int64 `json:"empty_requests"`    // 零结果的请求数
	FailedRequests   int64 `json:"failed_requests"`   // 参数或系统错误的请求数

	// 采样统计
	GamesGenerated int64 `json:"games_generated"` // 生成的游戏总数
	TotalAttempts  int64 `json:"total_attempts"`  // 采样尝试总数

	// 性能统计
	AverageGenerationTime int64 `json:"average_generation_time"` // 平均生成时间(纳秒)
	TotalGenerationTime   int64 `json:"total_generation_time"`   // 总生成时间(纳秒)

	// 数据集统计
	DatasetReplacements int64 `json:"dataset_replacements"` // 数据集替换次数
	StoreErrors         int64 `json:"store_errors"`         // Redis 存储错误数

	// 时间戳
	StartTime      int64 `json:"start_time"`       // 开始时间
	LastUpdateTime int64 `json:"last_update_time"` // 最后更新时间
}

// GetAcceptanceRate returns accepted games per sampling attempt, in percent
func (m *GenerationMetrics) GetAcceptanceRate() float64 {
	attempts := atomic.LoadInt64(&m.TotalAttempts)
	if attempts == 0 {
		return 0.0
	}
	return float64(atomic.LoadInt64(&m.GamesGenerated)) / float64(attempts) * 100.0
}

// GetAverageGenerationTime 获取平均生成时间
func (m *GenerationMetrics) GetAverageGenerationTime() time.Duration {
	return time.Duration(atomic.LoadInt64(&m.AverageGenerationTime))
}

// Reset 重置指标
func (m *GenerationMetrics) Reset() {
	atomic.StoreInt64(&m.TotalRequests, 0)
	atomic.StoreInt64(&m.CompleteRequests, 0)
	atomic.StoreInt64(&m.PartialRequests, 0)
	atomic.StoreInt64(&m.EmptyRequests, 0)
	atomic.StoreInt64(&m.FailedRequests, 0)
	atomic.StoreInt64(&m.GamesGenerated, 0)
	atomic.StoreInt64(&m.TotalAttempts, 0)
	atomic.StoreInt64(&m.AverageGenerationTime, 0)
	atomic.StoreInt64(&m.TotalGenerationTime, 0)
	atomic.StoreInt64(&m.DatasetReplacements, 0)
	atomic.StoreInt64(&m.StoreErrors, 0)
	atomic.StoreInt64(&m.StartTime, time.Now().UnixNano())
	atomic.StoreInt64(&m.LastUpdateTime, time.Now().UnixNano())
}

// ================================================================================

// PerformanceMonitor 性能监控器
type PerformanceMonitor struct {
	metrics *GenerationMetrics
	mu      sync.RWMutex
	enabled bool
}

// NewPerformanceMonitor 创建新的性能监控器
func NewPerformanceMonitor() *PerformanceMonitor {
	pm := &PerformanceMonitor{
		metrics: &GenerationMetrics{},
		enabled: true,
	}
	pm.metrics.Reset()
	return pm
}

// Enable 启用性能监控
func (pm *PerformanceMonitor) Enable() {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.enabled = true
}

// Disable 禁用性能监控
func (pm *PerformanceMonitor) Disable() {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.enabled = false
}

// IsEnabled 检查是否启用了性能监控
func (pm *PerformanceMonitor) IsEnabled() bool {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	return pm.enabled
}

// RecordGeneration records one finished generation call. A nil result
// counts as a failed request.
func (pm *PerformanceMonitor) RecordGeneration(result *GenerationResult, duration time.Duration) {
	if !pm.IsEnabled() {
		return
	}

	total := atomic.AddInt64(&pm.metrics.TotalRequests, 1)
	totalTime := atomic.AddInt64(&pm.metrics.TotalGenerationTime, int64(duration))
	atomic.StoreInt64(&pm.metrics.AverageGenerationTime, totalTime/total)

	switch {
	case result == nil:
		atomic.AddInt64(&pm.metrics.FailedRequests, 1)
	case result.Empty:
		atomic.AddInt64(&pm.metrics.EmptyRequests, 1)
	case result.PartialSuccess:
		atomic.AddInt64(&pm.metrics.PartialRequests, 1)
	default:
		atomic.AddInt64(&pm.metrics.CompleteRequests, 1)
	}

	if result != nil {
		atomic.AddInt64(&pm.metrics.GamesGenerated, int64(result.Completed))
		atomic.AddInt64(&pm.metrics.TotalAttempts, int64(result.Attempts))
	}

	atomic.StoreInt64(&pm.metrics.LastUpdateTime, time.Now().UnixNano())
}

// RecordDatasetReplacement 记录数据集替换
func (pm *PerformanceMonitor) RecordDatasetReplacement() {
	if !pm.IsEnabled() {
		return
	}

	atomic.AddInt64(&pm.metrics.DatasetReplacements, 1)
	atomic.StoreInt64(&pm.metrics.LastUpdateTime, time.Now().UnixNano())
}

// RecordStoreError 记录 Redis 存储错误
func (pm *PerformanceMonitor) RecordStoreError() {
	if !pm.IsEnabled() {
		return
	}

	atomic.AddInt64(&pm.metrics.StoreErrors, 1)
	atomic.StoreInt64(&pm.metrics.LastUpdateTime, time.Now().UnixNano())
}

// GetMetrics 获取指标的副本
func (pm *PerformanceMonitor) GetMetrics() GenerationMetrics {
	return GenerationMetrics{
		TotalRequests:         atomic.LoadInt64(&pm.metrics.TotalRequests),
		CompleteRequests:      atomic.LoadInt64(&pm.metrics.CompleteRequests),
		PartialRequests:       atomic.LoadInt64(&pm.metrics.PartialRequests),
		EmptyRequests:         atomic.LoadInt64(&pm.metrics.EmptyRequests),
		FailedRequests:        atomic.LoadInt64(&pm.metrics.FailedRequests),
		GamesGenerated:        atomic.LoadInt64(&pm.metrics.GamesGenerated),
		TotalAttempts:         atomic.LoadInt64(&pm.metrics.TotalAttempts),
		AverageGenerationTime: atomic.LoadInt64(&pm.metrics.AverageGenerationTime),
		TotalGenerationTime:   atomic.LoadInt64(&pm.metrics.TotalGenerationTime),
		DatasetReplacements:   atomic.LoadInt64(&pm.metrics.DatasetReplacements),
		StoreErrors:           atomic.LoadInt64(&pm.metrics.StoreErrors),
		StartTime:             atomic.LoadInt64(&pm.metrics.StartTime),
		LastUpdateTime:        atomic.LoadInt64(&pm.metrics.LastUpdateTime),
	}
}

// ResetMetrics 重置指标
func (pm *PerformanceMonitor) ResetMetrics() { pm.metrics.Reset() }
