package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileDestination_OpenWriteClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	dest := NewFileDestination(path)

	if dest.IsOpen() {
		t.Fatal("IsOpen() = true before Open")
	}
	if err := dest.Open(); err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if !dest.IsOpen() {
		t.Fatal("IsOpen() = false after Open")
	}

	n, err := dest.Write("line one\n")
	if err != nil {
		t.Fatalf("Write() failed: %v", err)
	}
	if n != len("line one\n") {
		t.Errorf("Write() = %d bytes, want %d", n, len("line one\n"))
	}

	if err := dest.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if dest.IsOpen() {
		t.Error("IsOpen() = true after Close")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(data) != "line one\n" {
		t.Errorf("File content = %q, want %q", string(data), "line one\n")
	}
}

func TestFileDestination_AppendsOnReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "append.log")
	dest := NewFileDestination(path)

	if err := dest.Open(); err != nil {
		t.Fatalf("First Open() failed: %v", err)
	}
	dest.Write("first\n")
	dest.Close()

	if err := dest.Open(); err != nil {
		t.Fatalf("Second Open() failed: %v", err)
	}
	dest.Write("second\n")
	dest.Close()

	data, _ := os.ReadFile(path)
	if string(data) != "first\nsecond\n" {
		t.Errorf("File content = %q, want appended lines", string(data))
	}
}

func TestFileDestination_OpenFailure(t *testing.T) {
	dest := NewFileDestination(filepath.Join(t.TempDir(), "no-such-dir", "out.log"))

	err := dest.Open()
	if err == nil {
		t.Fatal("Open() succeeded for a missing directory")
	}
	if dest.IsOpen() {
		t.Error("IsOpen() = true after failed Open")
	}
	if dest.ErrorString() == "" {
		t.Error("ErrorString() is empty after failed Open")
	}
	if !strings.Contains(err.Error(), "failed to open log file") {
		t.Errorf("Unexpected error message: %v", err)
	}
}

func TestFileDestination_FlushCadence(t *testing.T) {
	syncs := 0
	origSync := fileSync
	fileSync = func(f *os.File) error {
		syncs++
		return nil
	}
	defer func() { fileSync = origSync }()

	path := filepath.Join(t.TempDir(), "flush.log")
	dest := NewFileDestination(path)
	dest.SetFlushRate(3)
	if err := dest.Open(); err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer dest.Close()

	for i := 0; i < 3; i++ {
		dest.Write("x\n")
	}
	if syncs != 1 {
		t.Errorf("Expected 1 flush after 3 writes at rate 3, got %d", syncs)
	}

	for i := 0; i < 3; i++ {
		dest.Write("x\n")
	}
	if syncs != 2 {
		t.Errorf("Expected 2 flushes after 6 writes at rate 3, got %d", syncs)
	}
}

func TestFileDestination_FlushRateZeroDisablesFlushing(t *testing.T) {
	syncs := 0
	origSync := fileSync
	fileSync = func(f *os.File) error {
		syncs++
		return nil
	}
	defer func() { fileSync = origSync }()

	dest := NewFileDestination(filepath.Join(t.TempDir(), "noflush.log"))
	dest.SetFlushRate(0)
	if err := dest.Open(); err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer dest.Close()

	for i := 0; i < 10; i++ {
		dest.Write("x\n")
	}
	if syncs != 0 {
		t.Errorf("Expected no flushes at rate 0, got %d", syncs)
	}

	// Explicit Flush still works.
	if err := dest.Flush(); err != nil {
		t.Errorf("Flush() failed: %v", err)
	}
	if syncs != 1 {
		t.Errorf("Expected 1 flush after explicit Flush, got %d", syncs)
	}
}

func TestFileDestination_SetFlushRateResetsCounter(t *testing.T) {
	syncs := 0
	origSync := fileSync
	fileSync = func(f *os.File) error {
		syncs++
		return nil
	}
	defer func() { fileSync = origSync }()

	dest := NewFileDestination(filepath.Join(t.TempDir(), "reset.log"))
	dest.SetFlushRate(4)
	if err := dest.Open(); err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer dest.Close()

	dest.Write("x\n")
	dest.Write("x\n")
	dest.Write("x\n")
	dest.SetFlushRate(4) // counter back to zero
	dest.Write("x\n")
	if syncs != 0 {
		t.Errorf("Expected no flush after counter reset, got %d", syncs)
	}
	dest.Write("x\n")
	dest.Write("x\n")
	dest.Write("x\n")
	if syncs != 1 {
		t.Errorf("Expected 1 flush four writes after the reset, got %d", syncs)
	}
}

func TestFileDestination_WriteWhenClosed(t *testing.T) {
	dest := NewFileDestination(filepath.Join(t.TempDir(), "closed.log"))

	if _, err := dest.Write("nope\n"); err == nil {
		t.Error("Write() on a closed destination succeeded")
	}
	if dest.ErrorString() == "" {
		t.Error("ErrorString() is empty after write to closed destination")
	}
}

func TestFileDestination_CloseIsIdempotent(t *testing.T) {
	dest := NewFileDestination(filepath.Join(t.TempDir(), "idem.log"))
	if err := dest.Open(); err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	if err := dest.Close(); err != nil {
		t.Fatalf("First Close() failed: %v", err)
	}
	if err := dest.Close(); err != nil {
		t.Errorf("Second Close() failed: %v", err)
	}
}

func TestFileDestination_SetPath(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.log")
	second := filepath.Join(dir, "second.log")

	dest := NewFileDestination(first)
	if err := dest.Open(); err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	dest.Write("to first\n")
	dest.Close()

	dest.SetPath(second)
	if dest.Path() != second {
		t.Errorf("Path() = %q, want %q", dest.Path(), second)
	}
	if err := dest.Open(); err != nil {
		t.Fatalf("Open() after SetPath failed: %v", err)
	}
	dest.Write("to second\n")
	dest.Close()

	firstData, _ := os.ReadFile(first)
	secondData, _ := os.ReadFile(second)
	if string(firstData) != "to first\n" {
		t.Errorf("First file content = %q", string(firstData))
	}
	if string(secondData) != "to second\n" {
		t.Errorf("Second file content = %q", string(secondData))
	}
}
