// internal/logger/app_logger.go

package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// LogLevel defines the levels of the process diagnostic logger. This is
// separate from Level, which classifies queued records; the AppLogger is
// the ambient logger of the daemon itself.
type LogLevel int

const (
	TRACE LogLevel = 10
	DEBUG LogLevel = 20
	INFO  LogLevel = 30
	WARN  LogLevel = 40
	ERROR LogLevel = 50
	FATAL LogLevel = 60
)

var logLevelNames = map[LogLevel]string{
	TRACE: "TRACE",
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
	FATAL: "FATAL",
}

// LogLevelNameToLevel maps string level names to level values
var LogLevelNameToLevel = map[string]LogLevel{
	"TRACE": TRACE,
	"DEBUG": DEBUG,
	"INFO":  INFO,
	"WARN":  WARN,
	"ERROR": ERROR,
	"FATAL": FATAL,
}

// AppLogger writes the daemon's own diagnostic messages to stderr.
type AppLogger struct {
	mu     sync.Mutex
	writer io.Writer
	level  LogLevel
}

var (
	defaultLogger *AppLogger
	once          sync.Once
)

// GetAppLogger returns the singleton instance of the application logger
func GetAppLogger() *AppLogger {
	once.Do(func() {
		defaultLogger = &AppLogger{
			writer: os.Stderr,
			level:  WARN,
		}
	})
	return defaultLogger
}

// SetLogLevel sets the minimum log level
func (l *AppLogger) SetLogLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetLogLevelFromString sets the log level from a string name
func (l *AppLogger) SetLogLevelFromString(levelName string) error {
	level, ok := LogLevelNameToLevel[strings.ToUpper(levelName)]
	if !ok {
		return fmt.Errorf("invalid log level: %s", levelName)
	}
	l.SetLogLevel(level)
	return nil
}

// logf formats and logs a message if the level is sufficient.
// The lock is only held during the level check and the write, not during
// formatting.
func (l *AppLogger) logf(level LogLevel, format string, args ...interface{}) {
	l.mu.Lock()
	skip := level < l.level
	l.mu.Unlock()
	if skip {
		return
	}

	now := time.Now().Format("2006-01-02T15:04:05Z07:00")
	message := fmt.Sprintf(format, args...)
	logLine := fmt.Sprintf("[%s] %s: %s\n", now, logLevelNames[level], message)

	l.mu.Lock()
	_, _ = fmt.Fprint(l.writer, logLine)
	l.mu.Unlock()

	if level == FATAL {
		os.Exit(1)
	}
}

// Trace logs a message at TRACE level
func (l *AppLogger) Trace(format string, args ...interface{}) {
	l.logf(TRACE, format, args...)
}

// Debug logs a message at DEBUG level
func (l *AppLogger) Debug(format string, args ...interface{}) {
	l.logf(DEBUG, format, args...)
}

// Info logs a message at INFO level
func (l *AppLogger) Info(format string, args ...interface{}) {
	l.logf(INFO, format, args...)
}

// Warn logs a message at WARN level
func (l *AppLogger) Warn(format string, args ...interface{}) {
	l.logf(WARN, format, args...)
}

// Error logs a message at ERROR level
func (l *AppLogger) Error(format string, args ...interface{}) {
	l.logf(ERROR, format, args...)
}

// Fatal logs a message at FATAL level and exits the program
func (l *AppLogger) Fatal(format string, args ...interface{}) {
	l.logf(FATAL, format, args...)
}
