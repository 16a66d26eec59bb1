package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Level is the severity of a log line
type Level int

const (
	TRACE Level = iota
	DEBUG
	INFO
	WARN
	ERROR
)

// String returns the level name
func (l Level) String() string {
	switch l {
	case TRACE:
		return "TRACE"
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a level name (case-insensitive) to a Level
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return TRACE, nil
	case "DEBUG":
		return DEBUG, nil
	case "", "INFO":
		return INFO, nil
	case "WARN", "WARNING":
		return WARN, nil
	case "ERROR":
		return ERROR, nil
	}
	return INFO, errors.Errorf("unknown log level %q", s)
}

// Logger writes leveled lines to the console and, optionally, a file.
// The file receives every level; the console only lines at or above minLevel.
type Logger struct {
	mu            sync.Mutex
	minLevel      Level
	consoleLogger *log.Logger
	fileLogger    *log.Logger
	file          *os.File
}

var (
	globalMu     sync.RWMutex
	globalLogger = &Logger{
		minLevel:      INFO,
		consoleLogger: log.New(os.Stdout, "", log.LstdFlags),
	}
)

// Init configures the global logger. An empty dir disables the file sink.
func Init(level Level, dir string) error {
	l := &Logger{
		minLevel:      level,
		consoleLogger: log.New(os.Stdout, "", log.LstdFlags),
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "create log directory")
		}
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		filename := filepath.Join(dir, fmt.Sprintf("voxelcore_%s.log", timestamp))
		file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return errors.Wrap(err, "open log file")
		}
		l.file = file
		l.fileLogger = log.New(file, "", log.LstdFlags)
	}

	globalMu.Lock()
	old := globalLogger
	globalLogger = l
	globalMu.Unlock()
	old.close()
	return nil
}

// SetOutput redirects console output, mainly for tests.
func SetOutput(w io.Writer) {
	globalMu.RLock()
	l := globalLogger
	globalMu.RUnlock()
	l.mu.Lock()
	l.consoleLogger = log.New(w, "", 0)
	l.mu.Unlock()
}

// Close flushes and closes the file sink, if any.
func Close() {
	globalMu.RLock()
	l := globalLogger
	globalMu.RUnlock()
	l.close()
}

func (l *Logger) close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		l.file.Close()
		l.file = nil
		l.fileLogger = nil
	}
}

func (l *Logger) write(level Level, format string, args ...interface{}) {
	message := fmt.Sprintf("[%s] %s", level.String(), fmt.Sprintf(format, args...))

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fileLogger != nil {
		l.fileLogger.Println(message)
	}
	if level >= l.minLevel {
		l.consoleLogger.Println(message)
	}
}

func logMessage(level Level, format string, args ...interface{}) {
	globalMu.RLock()
	l := globalLogger
	globalMu.RUnlock()
	l.write(level, format, args...)
}

// Trace logs at TRACE level
func Trace(format string, args ...interface{}) { logMessage(TRACE, format, args...) }

// Debug logs at DEBUG level
func Debug(format string, args ...interface{}) { logMessage(DEBUG, format, args...) }

// Info logs at INFO level
func Info(format string, args ...interface{}) { logMessage(INFO, format, args...) }

// Warn logs at WARN level
func Warn(format string, args ...interface{}) { logMessage(WARN, format, args...) }

// Error logs at ERROR level
func Error(format string, args ...interface{}) { logMessage(ERROR, format, args...) }
