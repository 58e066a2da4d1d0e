// internal/logger/debug.go

package logger

import (
	"fmt"
	"io"
	"os"
)

// DebugDestination is a trivial destination writing records to an io.Writer
// (stdout by default). It never fails; useful for development and tests.
type DebugDestination struct {
	out  io.Writer
	open bool
}

// NewDebugDestination creates a debug destination. A nil out writes to
// stdout.
func NewDebugDestination(out io.Writer) *DebugDestination {
	if out == nil {
		out = os.Stdout
	}
	return &DebugDestination{out: out}
}

func (d *DebugDestination) Open() error {
	d.open = true
	return nil
}

func (d *DebugDestination) IsOpen() bool {
	return d.open
}

func (d *DebugDestination) Write(s string) (int, error) {
	fmt.Fprint(d.out, s)
	return len(s), nil
}

func (d *DebugDestination) Close() error {
	d.open = false
	return nil
}

func (d *DebugDestination) ErrorString() string {
	return ""
}

var _ Destination = (*DebugDestination)(nil)
