package core

import (
	"fmt"
	"log"
	"time"
)

// Logger interface for structured logging
// Implementations can provide custom logging behavior (e.g., integration with logrus, zap, etc.)
type Logger interface {
	// Debug logs a debug message with optional fields
	Debug(msg string, fields ...Field)

	// Info logs an info message with optional fields
	Info(msg string, fields ...Field)

	// Warn logs a warning message with optional fields
	Warn(msg string, fields ...Field)

	// Error logs an error message with optional fields
	Error(msg string, fields ...Field)
}

// Field represents a key-value pair for structured logging
type Field struct {
	Key   string
	Value any
}

// F creates a new Field with the given key and value
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// DefaultLogger is a simple logger implementation using the standard log package
type DefaultLogger struct{}

// NewDefaultLogger creates a new DefaultLogger
func NewDefaultLogger() *DefaultLogger {
	return &DefaultLogger{}
}

// Debug logs a debug message
func (l *DefaultLogger) Debug(msg string, fields ...Field) {
	l.log("DEBUG", msg, fields...)
}

// Info logs an info message
func (l *DefaultLogger) Info(msg string, fields ...Field) {
	l.log("INFO", msg, fields...)
}

// Warn logs a warning message
func (l *DefaultLogger) Warn(msg string, fields ...Field) {
	l.log("WARN", msg, fields...)
}

// Error logs an error message
func (l *DefaultLogger) Error(msg string, fields ...Field) {
	l.log("ERROR", msg, fields...)
}

// log is the internal logging method
func (l *DefaultLogger) log(level, msg string, fields ...Field) {
	logMsg := fmt.Sprintf("[%s] %s", level, msg)
	if len(fields) > 0 {
		logMsg += " {"
		for i, f := range fields {
			if i > 0 {
				logMsg += ", "
			}
			logMsg += fmt.Sprintf("%s: %v", f.Key, f.Value)
		}
		logMsg += "}"
	}
	log.Println(logMsg)
}

// NoOpLogger is a logger that discards all log messages
// Useful for tests or when logging is not desired
type NoOpLogger struct{}

// NewNoOpLogger creates a new NoOpLogger
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (l *NoOpLogger) Debug(msg string, fields ...Field) {}
func (l *NoOpLogger) Info(msg string, fields ...Field)  {}
func (l *NoOpLogger) Warn(msg string, fields ...Field)  {}
func (l *NoOpLogger) Error(msg string, fields ...Field) {}

// =============================================================================
// Error Backoff Policy
// =============================================================================

// ErrorBackoff controls how a cycle runner paces its loop after failed
// iterations. On a failed iteration the runner waits the backoff delay
// instead of the regular interval; the delay grows with each consecutive
// failure and resets on the first success.
type ErrorBackoff struct {
	// MaxConsecutive stops the loop (status Errored) after this many
	// consecutive failed iterations. 0 means the loop never stops on
	// repeated failures.
	MaxConsecutive int

	// InitialDelay is the delay after the first failed iteration
	InitialDelay time.Duration

	// MaxDelay is the maximum delay between failed iterations
	MaxDelay time.Duration

	// BackoffRatio is the delay multiplier per consecutive failure
	// (e.g., 2.0 for exponential backoff).
	// For example, with InitialDelay=100ms and BackoffRatio=2.0:
	// - Failure 1 delay: 100ms
	// - Failure 2 delay: 200ms
	// - Failure 3 delay: 400ms (capped by MaxDelay)
	BackoffRatio float64
}

// DefaultErrorBackoff returns the default policy: keep looping on errors
// with no extra delay and no failure cap.
func DefaultErrorBackoff() ErrorBackoff {
	return ErrorBackoff{
		MaxConsecutive: 0,
		InitialDelay:   0,
		MaxDelay:       0,
		BackoffRatio:   1.0,
	}
}

// ExponentialErrorBackoff returns a sensible exponential policy for loops
// hitting transient failures.
func ExponentialErrorBackoff() ErrorBackoff {
	return ErrorBackoff{
		MaxConsecutive: 0,
		InitialDelay:   100 * time.Millisecond,
		MaxDelay:       5 * time.Second,
		BackoffRatio:   2.0,
	}
}

// delayFor calculates the delay after the given consecutive failure count.
// consecutive is 1-indexed (1 = first failure).
func (p ErrorBackoff) delayFor(consecutive int) time.Duration {
	if p.InitialDelay == 0 || consecutive <= 0 {
		return 0
	}

	// Calculate exponential backoff
	delay := float64(p.InitialDelay)
	for i := 1; i < consecutive; i++ {
		delay *= p.BackoffRatio
	}

	// Cap at MaxDelay
	if p.MaxDelay > 0 && delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}

	return time.Duration(delay)
}
