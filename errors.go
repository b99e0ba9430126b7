package megasena

import (
	"errors"
	"fmt"
	"runtime"
	"time"
)

// ErrorCode 错误代码类型
type ErrorCode string

// 错误代码常量
const (
	// 系统级错误 (1000-1999)
	ErrCodeSystem             ErrorCode = "MEGASENA_1000"
	ErrCodeRedisConnection    ErrorCode = "MEGASENA_1001"
	ErrCodeConfigInvalid      ErrorCode = "MEGASENA_1002"
	ErrCodeCircuitBreakerOpen ErrorCode = "MEGASENA_1003"

	// 生成参数错误 (2000-2999)
	ErrCodeInvalidParameter    ErrorCode = "MEGASENA_2000"
	ErrCodeConstraintViolation ErrorCode = "MEGASENA_2001"
	ErrCodePoolInsufficient    ErrorCode = "MEGASENA_2002"
	ErrCodeUnknownStrategy     ErrorCode = "MEGASENA_2003"
	ErrCodeInvalidBudget       ErrorCode = "MEGASENA_2004"
	ErrCodeInvalidDraw         ErrorCode = "MEGASENA_2005"

	// 锁相关错误 (3000-3999)
	ErrCodeLockAcquisitionFailed ErrorCode = "MEGASENA_3000"

	// 数据集相关错误 (6000-6999)
	ErrCodeDatasetNotFound    ErrorCode = "MEGASENA_6000"
	ErrCodeDatasetSaveFailure ErrorCode = "MEGASENA_6001"
	ErrCodeDatasetLoadFailure ErrorCode = "MEGASENA_6002"
	ErrCodeDatasetCorrupted   ErrorCode = "MEGASENA_6003"
)

// ErrorSeverity 错误严重程度
type ErrorSeverity string

const (
	SeverityCritical ErrorSeverity = "critical"
	SeverityHigh     ErrorSeverity = "high"
	SeverityMedium   ErrorSeverity = "medium"
	SeverityLow      ErrorSeverity = "low"
)

// GeneratorError is the coded error returned by every exported operation.
type GeneratorError struct {
	Code       ErrorCode     `json:"code"`
	Message    string        `json:"message"`
	Details    string        `json:"details,omitempty"`
	Severity   ErrorSeverity `json:"severity"`
	Timestamp  time.Time     `json:"timestamp"`
	Operation  string        `json:"operation,omitempty"`
	StackTrace string        `json:"stack_trace,omitempty"`
	Cause      error         `json:"-"`
	Retryable  bool          `json:"retryable"`
}

// Error 实现 error 接口
func (e *GeneratorError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 实现 errors.Unwrap 接口
func (e *GeneratorError) Unwrap() error {
	return e.Cause
}

// Is matches any GeneratorError carrying the same code.
func (e *GeneratorError) Is(target error) bool {
	if t, ok := target.(*GeneratorError); ok {
		return e.Code == t.Code
	}
	return false
}

// clone copies e so the package-level sentinels are never mutated.
func (e *GeneratorError) clone() *GeneratorError {
	c := *e
	c.Timestamp = time.Now()
	return &c
}

// WithCause returns a copy of e wrapping cause
func (e *GeneratorError) WithCause(cause error) *GeneratorError {
	c := e.clone()
	c.Cause = cause
	return c
}

// WithDetails returns a copy of e with details attached
func (e *GeneratorError) WithDetails(details string) *GeneratorError {
	c := e.clone()
	c.Details = details
	return c
}

// WithDetailsf is WithDetails with fmt formatting
func (e *GeneratorError) WithDetailsf(format string, args ...any) *GeneratorError {
	return e.WithDetails(fmt.Sprintf(format, args...))
}

// WithOperation returns a copy of e tagged with the failing operation
func (e *GeneratorError) WithOperation(operation string) *GeneratorError {
	c := e.clone()
	c.Operation = operation
	return c
}

// WithStackTrace 添加堆栈跟踪
func (e *GeneratorError) WithStackTrace() *GeneratorError {
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	e.StackTrace = string(buf[:n])
	return e
}

// NewError 创建新的错误
func NewError(code ErrorCode, message string) *GeneratorError {
	return &GeneratorError{
		Code:      code,
		Message:   message,
		Severity:  SeverityMedium,
		Timestamp: time.Now(),
	}
}

// NewRetryableError 创建可重试的错误
func NewRetryableError(code ErrorCode, message string) *GeneratorError {
	err := NewError(code, message)
	err.Retryable = true
	return err
}

// NewCriticalError 创建严重错误
func NewCriticalError(code ErrorCode, message string) *GeneratorError {
	err := NewError(code, message)
	err.Severity = SeverityCritical
	return err.WithStackTrace()
}

// 预定义的错误实例
var (
	// 系统级错误
	ErrSystemError           = NewCriticalError(ErrCodeSystem, "system error occurred")
	ErrRedisConnectionFailed = NewRetryableError(ErrCodeRedisConnection, "Redis connection failed")
	ErrConfigInvalid         = NewCriticalError(ErrCodeConfigInvalid, "configuration is invalid")
	ErrCircuitBreakerOpen    = NewRetryableError(ErrCodeCircuitBreakerOpen, "circuit breaker is open")

	// 生成参数错误
	ErrInvalidParameter    = NewError(ErrCodeInvalidParameter, "invalid parameter")
	ErrConstraintViolation = NewError(ErrCodeConstraintViolation, "constraint violation")
	ErrPoolInsufficient    = NewError(ErrCodePoolInsufficient, "insufficient number pool")
	ErrUnknownStrategy     = NewError(ErrCodeUnknownStrategy, "unknown strategy")
	ErrInvalidBudget       = NewError(ErrCodeInvalidBudget, "insufficient budget")
	ErrInvalidDraw         = NewError(ErrCodeInvalidDraw, "invalid draw")

	// 锁相关错误
	ErrLockAcquisitionFailed = NewRetryableError(ErrCodeLockAcquisitionFailed, "failed to acquire distributed lock")

	// 数据集相关错误
	ErrDatasetNotFound    = NewError(ErrCodeDatasetNotFound, "dataset not loaded")
	ErrDatasetSaveFailure = NewRetryableError(ErrCodeDatasetSaveFailure, "failed to save dataset")
	ErrDatasetLoadFailure = NewRetryableError(ErrCodeDatasetLoadFailure, "failed to load dataset")
	ErrDatasetCorrupted   = NewError(ErrCodeDatasetCorrupted, "dataset is corrupted")
)

// IsClientError reports whether err was caused by caller input rather than the system.
func IsClientError(err error) bool {
	for _, target := range []error{
		ErrInvalidParameter,
		ErrConstraintViolation,
		ErrPoolInsufficient,
		ErrUnknownStrategy,
		ErrInvalidBudget,
		ErrInvalidDraw,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsRetryableError reports whether err is a GeneratorError flagged retryable.
func IsRetryableError(err error) bool {
	var genErr *GeneratorError
	if errors.As(err, &genErr) {
		return genErr.Retryable
	}
	return false
}
