package app

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Logger is the printf-style logger shared by the application and
// infrastructure layers. The CLI installs its leveled logger through SetLogger.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// writerLogger prints every message with a timestamp and no level filtering
type writerLogger struct {
	mu     sync.Mutex
	output io.Writer
	now    func() time.Time
}

// NewWriterLogger returns a Logger writing every level to w
func NewWriterLogger(w io.Writer) Logger {
	return &writerLogger{output: w, now: time.Now}
}

func (l *writerLogger) Debug(format string, args ...interface{}) { l.write("DEBUG", format, args) }
func (l *writerLogger) Info(format string, args ...interface{})  { l.write("INFO", format, args) }
func (l *writerLogger) Warn(format string, args ...interface{})  { l.write("WARN", format, args) }
func (l *writerLogger) Error(format string, args ...interface{}) { l.write("ERROR", format, args) }

func (l *writerLogger) write(level, format string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.output, "%s %s: %s\n", l.now().UTC().Format(time.RFC3339), level, fmt.Sprintf(format, args...))
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// NopLogger discards everything. Useful in tests.
var NopLogger Logger = nopLogger{}

var (
	loggerMu     sync.RWMutex
	globalLogger = NewWriterLogger(os.Stderr)
)

// SetLogger replaces the process-wide logger; nil is ignored
func SetLogger(logger Logger) {
	if logger == nil {
		return
	}
	loggerMu.Lock()
	globalLogger = logger
	loggerMu.Unlock()
}

// GetLogger returns the current logger
func GetLogger() Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return globalLogger
}
