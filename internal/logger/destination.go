// internal/logger/destination.go

package logger

// Destination is the sink a Logger writes rendered records to.
// Each destination type (file, socket, gelf, debug) implements this interface.
//
// A Destination is owned exclusively by one Logger: the worker goroutine opens
// it once on start, writes to it, and closes it once on termination. None of
// the methods are safe for concurrent use; callers other than the owning
// worker must not invoke them while the worker is running.
type Destination interface {
	// Open prepares the destination for writing (opens the file, connects
	// the socket). It blocks until the destination is ready or fails.
	Open() error

	// IsOpen reports whether the destination is currently open.
	IsOpen() bool

	// Write persists one rendered record as UTF-8 bytes and returns the
	// number of bytes written.
	Write(s string) (int, error)

	// Close releases the destination. It must be idempotent and best-effort.
	Close() error

	// ErrorString returns a description of the last error the destination
	// encountered, or the empty string if none.
	ErrorString() string
}
