// internal/logger/logger.go

package logger

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Level classifies a queued log record.
type Level int

const (
	LevelInfo Level = iota
	LevelDebug
	LevelWarning
	LevelFatal
)

// String returns the level name as it appears in rendered records.
func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	case LevelWarning:
		return "WARNING"
	case LevelFatal:
		return "FATAL"
	}
	return ""
}

// ParseLevel converts a level name (case-insensitive) to a Level.
func ParseLevel(name string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "INFO":
		return LevelInfo, nil
	case "DEBUG":
		return LevelDebug, nil
	case "WARNING", "WARN":
		return LevelWarning, nil
	case "FATAL":
		return LevelFatal, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level: %q", name)
}

// Default record templates. The message format takes three positional
// values: datetime, level name, message body.
const (
	DefaultFormat         = "[%s] %s %s"
	DefaultDatetimeFormat = "02.01.2006 15:04:05"
)

// Logger is an asynchronous, thread-safe message logger. Producers enqueue
// rendered records with AddMessage from any goroutine; a single worker
// goroutine (started with Start) drains the queue and writes each record to
// the Destination, so destination I/O latency never blocks producers.
//
// The Logger takes exclusive ownership of its Destination for its entire
// lifetime. Termination is cooperative: FinishWriting asks the worker to
// drain the backlog and stop, Wait blocks until it has. Records enqueued
// after the worker terminated are never written.
type Logger struct {
	dest Destination

	mu       sync.Mutex
	notEmpty *sync.Cond
	pending  []string
	// Mirrors len(pending) so the worker's busy-check and Pending() can
	// read the queue length without taking the lock.
	size   atomic.Int64
	finish atomic.Bool
	errStr string

	format         string
	datetimeFormat string

	startOnce sync.Once
	done      chan struct{}
}

// New creates a Logger writing to dest. The worker is not running until
// Start is called.
func New(dest Destination) *Logger {
	l := &Logger{
		dest:           dest,
		format:         DefaultFormat,
		datetimeFormat: DefaultDatetimeFormat,
		done:           make(chan struct{}),
	}
	l.notEmpty = sync.NewCond(&l.mu)
	return l
}

// Start launches the background worker. Subsequent calls are no-ops; the
// worker runs to completion exactly once.
func (l *Logger) Start() {
	l.startOnce.Do(func() {
		go l.run()
	})
}

// AddMessage renders message with the current templates (the timestamp is
// taken now, not at write time) and appends it to the queue. It is safe to
// call from any goroutine and never blocks on destination I/O. Messages
// queued after FinishWriting but before the worker noticed the flag are
// still delivered; messages queued after Wait returned are lost.
func (l *Logger) AddMessage(message string, level Level) {
	now := time.Now()

	l.mu.Lock()
	datetime := now.Format(l.datetimeFormat)
	record := fmt.Sprintf(l.format, datetime, level.String(), message) + "\n"
	l.pending = append(l.pending, record)
	l.size.Store(int64(len(l.pending)))
	// Signal after the append so a woken worker always finds the record.
	l.notEmpty.Signal()
	l.mu.Unlock()
}

// FinishWriting asks the worker to drain the remaining backlog and
// terminate. It returns immediately; use Wait to observe termination.
// Repeated calls are harmless.
func (l *Logger) FinishWriting() {
	l.mu.Lock()
	l.finish.Store(true)
	l.notEmpty.Signal()
	l.mu.Unlock()
}

// Wait blocks until the worker goroutine has terminated and the destination
// is closed. It must only be used after Start.
func (l *Logger) Wait() {
	<-l.done
}

// run is the worker loop. It opens the destination, writes queued records in
// FIFO order, and exits once FinishWriting was requested and the queue is
// empty. An open failure is fatal: the error is recorded and the loop is
// never entered. Write failures are dropped without retry; the sink is
// best-effort.
func (l *Logger) run() {
	defer close(l.done)

	if err := l.dest.Open(); err != nil {
		l.mu.Lock()
		l.errStr = l.dest.ErrorString()
		if l.errStr == "" {
			l.errStr = err.Error()
		}
		l.mu.Unlock()
		l.dest.Close()
		return
	}

	for !l.finish.Load() || l.size.Load() != 0 {
		if l.size.Load() != 0 {
			l.mu.Lock()
			record := l.pending[0]
			l.pending = l.pending[1:]
			l.size.Store(int64(len(l.pending)))
			l.mu.Unlock()

			// The write happens outside the lock so producers are never
			// blocked by destination I/O. The result is discarded.
			l.dest.Write(record)
		} else if !l.finish.Load() {
			l.mu.Lock()
			// Re-check under the lock: a record may have arrived (or
			// shutdown may have been requested) since the outer check.
			if l.size.Load() == 0 && !l.finish.Load() {
				l.notEmpty.Wait()
			}
			l.mu.Unlock()
			// A wake may be spurious; the outer loop re-checks.
		}
	}

	l.dest.Close()
}

// Messages returns a snapshot copy of the records still waiting to be
// written, for diagnostics and tests.
func (l *Logger) Messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.pending))
	copy(out, l.pending)
	return out
}

// Pending returns the number of records waiting to be written. It reads the
// atomic mirror and does not take the lock.
func (l *Logger) Pending() int {
	return int(l.size.Load())
}

// ErrorString returns the last fatal error, or the empty string. Only an
// Open failure is recorded here; inspect it after Wait returned.
func (l *Logger) ErrorString() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.errStr
}

// Destination returns the destination the logger owns. Callers must not
// invoke I/O methods on it while the worker is running.
func (l *Logger) Destination() Destination {
	return l.dest
}

// Format returns the record template.
func (l *Logger) Format() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.format
}

// SetFormat replaces the record template. It must contain three %s verbs:
// datetime, level name, message body.
func (l *Logger) SetFormat(format string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.format = format
}

// DatetimeFormat returns the timestamp layout.
func (l *Logger) DatetimeFormat() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.datetimeFormat
}

// SetDatetimeFormat replaces the timestamp layout (a time.Format layout).
func (l *Logger) SetDatetimeFormat(layout string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.datetimeFormat = layout
}
