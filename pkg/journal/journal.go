// Package journal persists the stream of live-tree mutations as JSON lines,
// one line per flushed render batch.
//
// A Journal is fed by subscribing Journal.Observe to a dom.Recorder. Lines
// go to a Sink: a local writer or file, or an S3 bucket that receives one
// object per rotation.
package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vango-dev/canopy/pkg/dom"
)

// ErrClosed is returned when recording into a closed Journal.
var ErrClosed = errors.New("journal: closed")

// Entry is one journal line.
type Entry struct {
	Seq  uint64    `json:"seq"`
	Time time.Time `json:"time"`
	Ops  []dom.Op  `json:"ops"`
}

// Sink receives encoded journal lines, each terminated by a newline.
type Sink interface {
	Write(line []byte) error
	Close() error
}

// Rotator is implemented by sinks that can start a new segment.
type Rotator interface {
	Rotate(ctx context.Context) error
}

// Journal numbers and encodes mutation batches. It is safe for concurrent
// use.
type Journal struct {
	mu     sync.Mutex
	sink   Sink
	seq    uint64
	closed bool
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Journal.
type Option func(*Journal)

// WithClock sets the time source for entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(j *Journal) {
		j.now = now
	}
}

// WithLogger sets the logger Observe reports failures to.
func WithLogger(l *slog.Logger) Option {
	return func(j *Journal) {
		j.logger = l
	}
}

// New creates a Journal writing to sink.
func New(sink Sink, opts ...Option) *Journal {
	j := &Journal{
		sink:   sink,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Record appends one entry for ops. Empty batches are not recorded.
func (j *Journal) Record(ops []dom.Op) error {
	if len(ops) == 0 {
		return nil
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return ErrClosed
	}

	j.seq++
	line, err := json.Marshal(Entry{Seq: j.seq, Time: j.now().UTC(), Ops: ops})
	if err != nil {
		return fmt.Errorf("journal: encode entry %d: %w", j.seq, err)
	}
	line = append(line, '\n')
	if err := j.sink.Write(line); err != nil {
		return fmt.Errorf("journal: write entry %d: %w", j.seq, err)
	}
	return nil
}

// Observe records ops and logs any failure. Pass it to
// dom.Recorder.Subscribe.
func (j *Journal) Observe(ops []dom.Op) {
	if err := j.Record(ops); err != nil && !errors.Is(err, ErrClosed) {
		j.logger.Error("journal record failed", "error", err)
	}
}

// Seq returns the sequence number of the last recorded entry.
func (j *Journal) Seq() uint64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.seq
}

// Rotate starts a new segment if the sink supports it.
func (j *Journal) Rotate(ctx context.Context) error {
	r, ok := j.sink.(Rotator)
	if !ok {
		return nil
	}
	return r.Rotate(ctx)
}

// Close closes the sink. Later records fail with ErrClosed.
func (j *Journal) Close() error {
	j.mu.Lock()
	if j.closed {
		j.mu.Unlock()
		return nil
	}
	j.closed = true
	j.mu.Unlock()
	return j.sink.Close()
}
