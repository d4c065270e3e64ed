package logging

import (
	"fmt"
	"io"
	"log"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
)

// Logger is a leveled facade that submits to a Store and tees to an optional io.Writer.
type Logger struct {
	mu           sync.Mutex
	store        *Store
	writer       io.Writer
	goLog        *log.Logger
	debug        bool
	captureTrace bool
	failures     uint64
}

// NewLogger creates a Logger on top of store. A nil store gets a private one.
func NewLogger(store *Store) *Logger {
	if store == nil {
		store = NewStore(DefaultCapacity, nil)
	}
	l := &Logger{
		store:  store,
		writer: io.Discard, // Default to discarding output
	}
	l.goLog = log.New(l, "", 0) // The logger will write through our Write method
	return l
}

// Write implements the io.Writer interface. This allows the standard log package
// to write through our logger, which will then dispatch to the configured writer.
func (l *Logger) Write(p []byte) (n int, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.writer == nil {
		return len(p), nil
	}
	return l.writer.Write(p)
}

// SetWriter sets the tee destination, typically a log file.
func (l *Logger) SetWriter(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writer = w
}

// Store returns the underlying Store.
func (l *Logger) Store() *Store {
	return l.store
}

// SetDebug enables or disables Debug output. Debug messages are stored at LevelInfo.
func (l *Logger) SetDebug(enable bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.debug = enable
}

// IsDebugEnabled reports whether Debug output is enabled.
func (l *Logger) IsDebugEnabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.debug
}

// SetCaptureTrace makes error-level calls attach the caller's stack trace.
func (l *Logger) SetCaptureTrace(enable bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.captureTrace = enable
}

// ListenerFailures returns how many listener failures this logger has observed.
func (l *Logger) ListenerFailures() uint64 {
	return atomic.LoadUint64(&l.failures)
}

func (l *Logger) emit(level LogLevel, prefix, message string) {
	l.mu.Lock()
	capture := l.captureTrace && level == LevelError
	l.mu.Unlock()

	var trace string
	if capture {
		trace = string(debug.Stack())
	}
	failures := l.store.SubmitTrace(prefix+message, level, trace)

	l.goLog.Printf("%s %-5s %s%s", l.store.clock.Now().Format("15:04:05.000"), level.String(), prefix, message)
	for _, f := range failures {
		atomic.AddUint64(&l.failures, 1)
		l.goLog.Printf("logging: %v", f)
	}
}

// log is the internal handler for variadic logging.
func (l *Logger) log(level LogLevel, v ...interface{}) {
	l.emit(level, "", strings.TrimSpace(fmt.Sprintln(v...)))
}

// logf is the internal handler for formatted logging.
func (l *Logger) logf(level LogLevel, format string, v ...interface{}) {
	l.emit(level, "", fmt.Sprintf(format, v...))
}

// Info logs an informational message.
func (l *Logger) Info(v ...interface{}) {
	l.log(LevelInfo, v...)
}

// Infof logs a formatted informational message.
func (l *Logger) Infof(format string, v ...interface{}) {
	l.logf(LevelInfo, format, v...)
}

// Warn logs a warning message.
func (l *Logger) Warn(v ...interface{}) {
	l.log(LevelWarning, v...)
}

// Warnf logs a formatted warning message.
func (l *Logger) Warnf(format string, v ...interface{}) {
	l.logf(LevelWarning, format, v...)
}

// Error logs an error message.
func (l *Logger) Error(v ...interface{}) {
	l.log(LevelError, v...)
}

// Errorf logs a formatted error message.
func (l *Logger) Errorf(format string, v ...interface{}) {
	l.logf(LevelError, format, v...)
}

// Debug logs a debug message when debug output is enabled.
func (l *Logger) Debug(v ...interface{}) {
	if !l.IsDebugEnabled() {
		return
	}
	l.emit(LevelInfo, "DEBUG: ", strings.TrimSpace(fmt.Sprintln(v...)))
}

// Debugf logs a formatted debug message when debug output is enabled.
func (l *Logger) Debugf(format string, v ...interface{}) {
	if !l.IsDebugEnabled() {
		return
	}
	l.emit(LevelInfo, "DEBUG: ", fmt.Sprintf(format, v...))
}

// ---- Global / Default Logger ----

var defaultLogger atomic.Pointer[Logger]

func init() {
	ResetDefault()
}

// Default returns the package-level logger.
func Default() *Logger {
	return defaultLogger.Load()
}

// SetDefault replaces the default logger instance.
func SetDefault(logger *Logger) {
	if logger != nil {
		defaultLogger.Store(logger)
	}
}

// ResetDefault installs a fresh default logger with its own store and returns it.
func ResetDefault() *Logger {
	l := NewLogger(nil)
	defaultLogger.Store(l)
	return l
}

// Info logs an informational message using the default logger.
func Info(v ...interface{}) {
	Default().Info(v...)
}

// Infof logs a formatted informational message using the default logger.
func Infof(format string, v ...interface{}) {
	Default().Infof(format, v...)
}

// Warn logs a warning message using the default logger.
func Warn(v ...interface{}) {
	Default().Warn(v...)
}

// Warnf logs a formatted warning message using the default logger.
func Warnf(format string, v ...interface{}) {
	Default().Warnf(format, v...)
}

// Error logs an error message using the default logger.
func Error(v ...interface{}) {
	Default().Error(v...)
}

// Errorf logs a formatted error message using the default logger.
func Errorf(format string, v ...interface{}) {
	Default().Errorf(format, v...)
}

// Debug logs a debug message using the default logger.
func Debug(v ...interface{}) {
	Default().Debug(v...)
}

// Debugf logs a formatted debug message using the default logger.
func Debugf(format string, v ...interface{}) {
	Default().Debugf(format, v...)
}
