package services

import (
	"fmt"
	"io"
	"log"
	"sync"
)

// Notifier shows transient messages to the user after a write succeeds or fails.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// LogNotifier writes notifications to the standard logger.
type LogNotifier struct{}

func (LogNotifier) Success(msg string) { log.Printf("ok: %s", msg) }
func (LogNotifier) Error(msg string)   { log.Printf("error: %s", msg) }

// WriterNotifier prints notifications as single lines, for terminal front-ends.
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

func (n *WriterNotifier) Success(msg string) { n.print("✓", msg) }
func (n *WriterNotifier) Error(msg string)   { n.print("✗", msg) }

func (n *WriterNotifier) print(mark, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.w, "%s %s\n", mark, msg)
}

// RecordingNotifier keeps every notification. Useful in tests and for batch front-ends.
type RecordingNotifier struct {
	mu        sync.Mutex
	Successes []string
	Errors    []string
}

func (n *RecordingNotifier) Success(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Successes = append(n.Successes, msg)
}

func (n *RecordingNotifier) Error(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Errors = append(n.Errors, msg)
}

// Snapshot returns copies of the recorded messages.
func (n *RecordingNotifier) Snapshot() (successes, errs []string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.Successes...), append([]string(nil), n.Errors...)
}
