package journal

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// WriterSink writes lines to an io.Writer. Close closes the writer when it
// is an io.Closer.
type WriterSink struct {
	w io.Writer
}

// NewWriterSink creates a sink writing to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Write implements Sink.
func (s *WriterSink) Write(line []byte) error {
	_, err := s.w.Write(line)
	return err
}

// Close implements Sink.
func (s *WriterSink) Close() error {
	if c, ok := s.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// OpenFile creates dir if needed and opens a new journal file in it, named
// after the current time.
func OpenFile(dir string, now time.Time) (*WriterSink, string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, "", fmt.Errorf("journal: create dir: %w", err)
	}
	path := filepath.Join(dir, "journal-"+now.UTC().Format("20060102T150405Z")+".jsonl")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, "", fmt.Errorf("journal: open file: %w", err)
	}
	return NewWriterSink(f), path, nil
}
