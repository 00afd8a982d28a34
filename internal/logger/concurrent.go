package logger

import "sync"

// ConcurrentLogger wraps a Logger with a mutex so it is safe for use by the
// worker goroutines the scheduler dispatches within a priority group.
type ConcurrentLogger struct {
	logger *Logger
	mu     sync.Mutex
}

func NewConcurrent(logger *Logger) *ConcurrentLogger {
	return &ConcurrentLogger{logger: logger}
}

func (l *ConcurrentLogger) Printf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.Printf(format, args...)
}

func (l *ConcurrentLogger) Successf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.Successf(format, args...)
}

func (l *ConcurrentLogger) AllowFailf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.AllowFailf(format, args...)
}

func (l *ConcurrentLogger) Failuref(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.Failuref(format, args...)
}

func (l *ConcurrentLogger) Abortf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.Abortf(format, args...)
}

func (l *ConcurrentLogger) Warnf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.Warnf(format, args...)
}

func (l *ConcurrentLogger) Errorf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.Errorf(format, args...)
}
