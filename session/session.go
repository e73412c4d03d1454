package session

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Daniel-Forbes-HWU/speed-of-sound/serial"
)

// MaxRepetitions is the per-batch bound the front-ends hold the
// operator to. The core guards only the lower bound.
const MaxRepetitions = 50

// Stats contains counters for a measurement session.
type Stats struct {
	Batches       int64     `json:"batches"`
	SamplesTaken  int64     `json:"samples_taken"`
	Failures      int64     `json:"failures"`
	LastError     string    `json:"last_error,omitempty"`
	LastBatchTime time.Time `json:"last_batch_time"`
	StartTime     time.Time `json:"start_time"`
}

// Session runs the request/response protocol against the controller and
// owns the in-memory dataset and its unsaved-changes flag. The link is
// nil while disconnected. The mutex serializes callers: the GUI runs
// Measure on a worker goroutine while the monitoring server reads
// state, and a batch must append atomically or not at all.
type Session struct {
	mu      sync.Mutex
	link    *serial.Link
	samples []Sample
	nextID  int64
	dirty   bool
	logger  *slog.Logger
	stats   Stats
}

// New creates a disconnected session. Call Reconnect before Measure.
func New(logger *slog.Logger) *Session {
	return &Session{
		logger: logger,
		stats:  Stats{StartTime: time.Now()},
	}
}

// NewWithLink creates a session over an already-open link. Used by
// tests and tooling that bring their own transport.
func NewWithLink(link *serial.Link, logger *slog.Logger) *Session {
	s := New(logger)
	s.link = link
	return s
}

// Connect creates a session and opens the named port.
func Connect(portName string, logger *slog.Logger) (*Session, error) {
	s := New(logger)
	if err := s.Reconnect(portName); err != nil {
		return nil, err
	}
	return s, nil
}

// Measure requests one batch of timing samples from the controller and
// appends them to the dataset. The command line is the decimal
// repetition count; the controller answers with one acknowledgement
// line followed by one integer travel time per repetition. The batch
// either fully succeeds or is discarded whole: a timed-out line fails
// with ErrTimeout, a non-integer value line with ErrProtocol, and in
// both cases no sample is appended. Returns the parsed times in
// response order.
func (s *Session) Measure(repetitions int, distance, temperature string) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if repetitions < 1 {
		return nil, fmt.Errorf("%w: repetitions must be at least 1, got %d", ErrValidation, repetitions)
	}
	if s.link == nil {
		return nil, ErrNotConnected
	}

	// A previous timed-out or partially-read exchange may have left
	// stale bytes that would corrupt this parse.
	if err := s.link.FlushInput(); err != nil {
		return nil, s.dropConnection(err)
	}

	if err := s.link.WriteLine(strconv.Itoa(repetitions)); err != nil {
		return nil, s.dropConnection(err)
	}

	// Line count is the only framing on this wire.
	lines := make([][]byte, 0, repetitions+1)
	for i := 0; i < repetitions+1; i++ {
		line, err := s.link.ReadLine()
		if err != nil {
			return nil, s.dropConnection(err)
		}
		if len(line) == 0 {
			return nil, s.recordFailure(fmt.Errorf("%w after %d of %d lines", ErrTimeout, i, repetitions+1))
		}
		lines = append(lines, line)
	}

	// The first line is the acknowledgement; its content is ignored.
	times := make([]int64, 0, repetitions)
	for _, raw := range lines[1:] {
		text := strings.TrimSpace(string(raw))
		value, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, s.recordFailure(fmt.Errorf("%w: %q", ErrProtocol, text))
		}
		times = append(times, value)
	}

	temperature = normalizeLabel(temperature, TemperaturePrompt)
	distance = normalizeLabel(distance, DistancePrompt)
	for _, t := range times {
		s.nextID++
		s.samples = append(s.samples, Sample{
			ID:          s.nextID,
			Temperature: temperature,
			Distance:    distance,
			TimeMicros:  t,
		})
	}
	s.dirty = true

	s.stats.Batches++
	s.stats.SamplesTaken += int64(len(times))
	s.stats.LastBatchTime = time.Now()

	s.logger.Info("measurement batch complete",
		"repetitions", repetitions,
		"distance", distance,
		"temperature", temperature,
	)
	return times, nil
}

// Reconnect replaces the active connection with a freshly opened one.
// The dataset is untouched. On failure the session is disconnected.
func (s *Session) Reconnect(portName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.link != nil {
		s.link.Close()
		s.link = nil
	}

	link, err := serial.Open(portName)
	if err != nil {
		s.stats.Failures++
		s.stats.LastError = err.Error()
		s.logger.Error("failed to open port", "port", portName, "error", err)
		return err
	}

	s.link = link
	s.logger.Info("connected to controller", "port", portName)
	return nil
}

// DeleteSamples removes the samples with the given IDs, keeping the
// relative order of the rest, and returns how many were removed.
func (s *Session) DeleteSamples(ids []int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	doomed := make(map[int64]bool, len(ids))
	for _, id := range ids {
		doomed[id] = true
	}

	kept := s.samples[:0]
	for _, sample := range s.samples {
		if !doomed[sample.ID] {
			kept = append(kept, sample)
		}
	}

	removed := len(s.samples) - len(kept)
	s.samples = kept
	if removed > 0 {
		// An emptied dataset has nothing left to lose.
		s.dirty = len(s.samples) > 0
	}
	return removed
}

// Clear empties the dataset and clears the unsaved-changes flag. The
// front-end confirms with the operator before calling this.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples = nil
	s.dirty = false
}

// Samples returns a copy of the dataset in display order.
func (s *Session) Samples() []Sample {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Sample, len(s.samples))
	copy(out, s.samples)
	return out
}

// Len returns the number of samples in the dataset.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.samples)
}

// Dirty reports whether the dataset changed since the last export.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Connected reports whether the session holds an open connection.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.link != nil
}

// PortName returns the connected port's name, or "" when disconnected.
func (s *Session) PortName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.link == nil {
		return ""
	}
	return s.link.PortName()
}

// Stats returns a copy of the session counters.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Close drops the connection. The dataset survives until Clear.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.link == nil {
		return nil
	}
	err := s.link.Close()
	s.link = nil
	return err
}

// dropConnection handles a hard transport failure: the port can no
// longer be trusted, so the session returns to disconnected and the
// caller must Reconnect before the next batch.
func (s *Session) dropConnection(err error) error {
	if s.link != nil {
		s.link.Close()
		s.link = nil
	}
	s.stats.Failures++
	s.stats.LastError = err.Error()
	s.logger.Error("connection lost", "error", err)
	return err
}

// recordFailure handles a timeout or protocol failure. The port itself
// is healthy, so the session stays connected; recovery is a controller
// reset and a retry, not a reopen.
func (s *Session) recordFailure(err error) error {
	s.stats.Failures++
	s.stats.LastError = err.Error()
	s.logger.Warn("measurement batch discarded", "error", err)
	return err
}
