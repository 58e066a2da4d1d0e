// internal/logger/file.go

package logger

import (
	"errors"
	"fmt"
	"os"
)

// DefaultFlushRate is the number of successful writes between forced
// flushes to stable storage. A rate <= 0 disables periodic flushing.
const DefaultFlushRate = 4

// Hook for tests to observe flush calls.
var fileSync = func(f *os.File) error { return f.Sync() }

// FileDestination appends rendered records to a plain UTF-8 text file, one
// record per line. Every Nth successful write (N = flush rate) forces the
// bytes to stable storage, amortizing the fsync cost instead of paying it
// on every record.
type FileDestination struct {
	path       string
	flushRate  int
	flushCount int
	file       *os.File
	lastErr    string
}

// NewFileDestination creates a file destination for path with the default
// flush rate. The file is not opened until Open.
func NewFileDestination(path string) *FileDestination {
	return &FileDestination{
		path:      path,
		flushRate: DefaultFlushRate,
	}
}

// Open opens the file in append mode, creating it if needed.
func (d *FileDestination) Open() error {
	f, err := os.OpenFile(d.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		d.lastErr = err.Error()
		return fmt.Errorf("failed to open log file %s: %w", d.path, err)
	}
	d.file = f
	d.flushCount = 0
	return nil
}

// IsOpen reports whether the file is currently open.
func (d *FileDestination) IsOpen() bool {
	return d.file != nil
}

// Write appends s to the file. Every flushRate-th successful write triggers
// a flush to stable storage; a flush failure does not fail the write, it is
// only recorded in ErrorString.
func (d *FileDestination) Write(s string) (int, error) {
	if d.file == nil {
		d.lastErr = "file destination is not open"
		return 0, errors.New("write to closed file destination")
	}

	n, err := d.file.WriteString(s)
	if err != nil {
		d.lastErr = err.Error()
		return n, err
	}

	if d.flushRate > 0 {
		d.flushCount = (d.flushCount + 1) % d.flushRate
		if d.flushCount == 0 {
			if err := fileSync(d.file); err != nil {
				d.lastErr = err.Error()
			}
		}
	}
	return n, nil
}

// Flush forces any buffered bytes to stable storage.
func (d *FileDestination) Flush() error {
	if d.file == nil {
		return errors.New("flush on closed file destination")
	}
	if err := fileSync(d.file); err != nil {
		d.lastErr = err.Error()
		return err
	}
	return nil
}

// Close releases the file handle. Calling Close on an already closed
// destination is a no-op.
func (d *FileDestination) Close() error {
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	if err != nil {
		d.lastErr = err.Error()
	}
	return err
}

// ErrorString returns the last I/O error description.
func (d *FileDestination) ErrorString() string {
	return d.lastErr
}

// SetPath changes the file path used by the next Open. Changing the path
// while the file is open has no effect on the open handle; close first.
func (d *FileDestination) SetPath(path string) {
	d.path = path
}

// Path returns the configured file path.
func (d *FileDestination) Path() string {
	return d.path
}

// SetFlushRate changes the flush rate and resets the flush counter. A rate
// <= 0 disables periodic flushing; callers must then call Flush themselves.
func (d *FileDestination) SetFlushRate(rate int) {
	d.flushRate = rate
	d.flushCount = 0
}

// FlushRate returns the configured flush rate.
func (d *FileDestination) FlushRate() int {
	return d.flushRate
}

var _ Destination = (*FileDestination)(nil)
