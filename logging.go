package evloop

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// LogLevel represents the severity of a log entry.
type LogLevel int32

const (
	// LevelDebug for allocator and lifecycle diagnostics.
	LevelDebug LogLevel = iota

	// LevelInfo for general informational messages.
	LevelInfo

	// LevelWarn for rejected posts and other recoverable conditions.
	LevelWarn

	// LevelError for error conditions.
	LevelError
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int32(l))
	}
}

// LogEntry is one structured log record emitted by the package.
type LogEntry struct {
	Level   LogLevel
	Message string

	// Pending is the number of occupied cells at the time of the event.
	Pending int

	// Footprint is the cell count of the record involved, when relevant.
	Footprint int
}

// Logger is the structured logging hook. Implementations must be safe for
// concurrent use. Log entries on hot paths are gated by IsEnabled, so a
// disabled logger costs a single interface call.
type Logger interface {
	Log(entry LogEntry)
	IsEnabled(level LogLevel) bool
}

var globalLogger struct {
	sync.RWMutex
	logger Logger
}

// SetLogger installs the package-level logger. Logging is a cross-cutting
// concern shared by all loops, so it is configured once at startup rather
// than per instance. Passing nil restores the default no-op logger.
func SetLogger(logger Logger) {
	globalLogger.Lock()
	defer globalLogger.Unlock()
	globalLogger.logger = logger
}

func getLogger() Logger {
	globalLogger.RLock()
	defer globalLogger.RUnlock()
	if globalLogger.logger != nil {
		return globalLogger.logger
	}
	return NoOpLogger{}
}

// NoOpLogger discards everything. It is the default.
type NoOpLogger struct{}

// Log satisfies the Logger interface.
func (NoOpLogger) Log(LogEntry) {}

// IsEnabled satisfies the Logger interface.
func (NoOpLogger) IsEnabled(LogLevel) bool { return false }

// DefaultLogger implements Logger with line-oriented output to a file.
type DefaultLogger struct {
	level atomic.Int32
	mu    sync.Mutex
	Out   *os.File
}

// NewDefaultLogger creates a logger writing to stderr with the given
// minimum level.
func NewDefaultLogger(level LogLevel) *DefaultLogger {
	l := &DefaultLogger{Out: os.Stderr}
	l.level.Store(int32(level))
	return l
}

// SetLevel changes the minimum level at runtime.
func (l *DefaultLogger) SetLevel(level LogLevel) {
	l.level.Store(int32(level))
}

// IsEnabled satisfies the Logger interface.
func (l *DefaultLogger) IsEnabled(level LogLevel) bool {
	return int32(level) >= l.level.Load()
}

// Log satisfies the Logger interface.
func (l *DefaultLogger) Log(entry LogEntry) {
	if !l.IsEnabled(entry.Level) {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.Out, "%s [%s] %s pending=%d footprint=%d\n",
		time.Now().Format(time.RFC3339Nano), entry.Level, entry.Message,
		entry.Pending, entry.Footprint)
}

func logEvent(level LogLevel, message string, pending, footprint int) {
	if lg := getLogger(); lg.IsEnabled(level) {
		lg.Log(LogEntry{Level: level, Message: message, Pending: pending, Footprint: footprint})
	}
}
