package megasena

import "log"

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Debug(msg string, args ...any)
}

// DefaultLogger writes printf-style lines through the standard log package.
// Debug lines are dropped unless Verbose is set.
type DefaultLogger struct {
	Prefix  string
	Verbose bool
}

// NewDefaultLogger creates a logger tagging every line with prefix
func NewDefaultLogger(prefix string, verbose bool) *DefaultLogger {
	return &DefaultLogger{Prefix: prefix, Verbose: verbose}
}

func (l *DefaultLogger) printf(level, msg string, args ...any) {
	if l.Prefix != "" {
		log.Printf("["+level+"] "+l.Prefix+": "+msg, args...)
		return
	}
	log.Printf("["+level+"] "+msg, args...)
}

// Info logs an info message
func (l *DefaultLogger) Info(msg string, args ...any) { l.printf("INFO", msg, args...) }

// Warn logs a warning message
func (l *DefaultLogger) Warn(msg string, args ...any) { l.printf("WARN", msg, args...) }

// Error logs an error message
func (l *DefaultLogger) Error(msg string, args ...any) { l.printf("ERROR", msg, args...) }

// Debug logs a debug message
func (l *DefaultLogger) Debug(msg string, args ...any) {
	if !l.Verbose {
		return
	}
	l.printf("DEBUG", msg, args...)
}

// SilentLogger implements Logger interface but does not output any logs
type SilentLogger struct{}

// NewSilentLogger creates a new silent logger instance
func NewSilentLogger() *SilentLogger {
	return &SilentLogger{}
}

func (l *SilentLogger) Info(msg string, args ...any)  {}
func (l *SilentLogger) Warn(msg string, args ...any)  {}
func (l *SilentLogger) Error(msg string, args ...any) {}
func (l *SilentLogger) Debug(msg string, args ...any) {}
