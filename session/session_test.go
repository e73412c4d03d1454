package session

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"testing"

	"github.com/Daniel-Forbes-HWU/speed-of-sound/serial"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSession() (*Session, *serial.MockPort) {
	port := serial.NewMockPort("/dev/ttyACM0")
	s := New(discardLogger())
	s.link = serial.NewLink(port, "/dev/ttyACM0")
	return s, port
}

// respondWith scripts the controller: one ack line, then the given
// values regardless of the requested repetition count.
func respondWith(port *serial.MockPort, values ...string) {
	port.SetResponder(func(line string) {
		port.QueueLine("ok")
		for _, v := range values {
			port.QueueLine(v)
		}
	})
}

// respondEcho scripts a well-behaved controller that honors the
// requested repetition count.
func respondEcho(port *serial.MockPort, base int64) {
	port.SetResponder(func(line string) {
		reps, err := strconv.Atoi(line)
		if err != nil {
			return
		}
		port.QueueLine("ok")
		for i := 0; i < reps; i++ {
			port.QueueLine(strconv.FormatInt(base+int64(i), 10))
		}
	})
}

func TestMeasureHappyPath(t *testing.T) {
	for _, reps := range []int{1, 3, 50} {
		s, port := newTestSession()
		respondEcho(port, 2900)

		times, err := s.Measure(reps, "100", "20")
		if err != nil {
			t.Fatalf("reps=%d: Measure returned error: %v", reps, err)
		}
		if len(times) != reps {
			t.Fatalf("reps=%d: expected %d values, got %d", reps, reps, len(times))
		}
		for i, v := range times {
			if v != 2900+int64(i) {
				t.Errorf("reps=%d: value %d: expected %d, got %d", reps, i, 2900+i, v)
			}
		}
		if s.Len() != reps {
			t.Errorf("reps=%d: expected %d samples appended, got %d", reps, reps, s.Len())
		}
	}
}

func TestMeasureSendsDecimalCommandLine(t *testing.T) {
	s, port := newTestSession()
	respondEcho(port, 3000)

	if _, err := s.Measure(5, "100", "20"); err != nil {
		t.Fatalf("Measure returned error: %v", err)
	}

	writes := port.Writes()
	if len(writes) != 1 {
		t.Fatalf("expected 1 write, got %d", len(writes))
	}
	if string(writes[0]) != "5\r\n" {
		t.Errorf("expected command %q, got %q", "5\r\n", writes[0])
	}
	if port.FlushCount() == 0 {
		t.Error("expected input flush before the exchange")
	}
}

func TestMeasureRejectsRepetitionsBelowOne(t *testing.T) {
	for _, reps := range []int{0, -1} {
		s, port := newTestSession()

		_, err := s.Measure(reps, "100", "20")
		if !errors.Is(err, ErrValidation) {
			t.Errorf("reps=%d: expected ErrValidation, got %v", reps, err)
		}
		if len(port.Writes()) != 0 {
			t.Errorf("reps=%d: validation must reject before any I/O", reps)
		}
		if s.Len() != 0 {
			t.Errorf("reps=%d: dataset must be unchanged", reps)
		}
	}
}

func TestMeasureWhileDisconnected(t *testing.T) {
	s := New(discardLogger())
	_, err := s.Measure(3, "100", "20")
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
}

func TestMeasureTimeoutDiscardsWholeBatch(t *testing.T) {
	s, port := newTestSession()
	// Ack plus two of the three requested values, then a stall.
	respondWith(port, "2941", "2952")

	before := s.Len()
	_, err := s.Measure(3, "100", "20")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if s.Len() != before {
		t.Errorf("no partial append allowed: had %d samples, now %d", before, s.Len())
	}
	if !s.Connected() {
		t.Error("a timeout must not drop the connection")
	}
}

func TestMeasureMalformedValueDiscardsWholeBatch(t *testing.T) {
	s, port := newTestSession()
	respondWith(port, "2941", "abc", "2950")

	_, err := s.Measure(3, "100", "20")
	if !errors.Is(err, ErrProtocol) {
		t.Fatalf("expected ErrProtocol, got %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("no sample from a malformed batch may be appended, got %d", s.Len())
	}
	if !s.Connected() {
		t.Error("a protocol failure must not drop the connection")
	}
}

func TestMeasureWriteFailureDropsConnection(t *testing.T) {
	s, port := newTestSession()
	port.SetWriteError(fmt.Errorf("device unplugged"))

	_, err := s.Measure(3, "100", "20")
	if !errors.Is(err, serial.ErrCommunication) {
		t.Fatalf("expected ErrCommunication, got %v", err)
	}
	if s.Connected() {
		t.Error("a write failure must return the session to disconnected")
	}
	if s.Len() != 0 {
		t.Errorf("dataset must be unchanged, got %d samples", s.Len())
	}
}

func TestMeasureReadFailureDropsConnection(t *testing.T) {
	s, port := newTestSession()
	port.SetReadError(fmt.Errorf("device unplugged"))

	_, err := s.Measure(3, "100", "20")
	if !errors.Is(err, serial.ErrCommunication) {
		t.Fatalf("expected ErrCommunication, got %v", err)
	}
	if s.Connected() {
		t.Error("a hard read failure must return the session to disconnected")
	}
}

func TestMeasureNormalizesPlaceholderLabels(t *testing.T) {
	s, port := newTestSession()
	respondEcho(port, 2900)

	if _, err := s.Measure(1, DistancePrompt, TemperaturePrompt); err != nil {
		t.Fatalf("Measure returned error: %v", err)
	}
	samples := s.Samples()
	if samples[0].Distance != Unlabeled {
		t.Errorf("expected distance %q, got %q", Unlabeled, samples[0].Distance)
	}
	if samples[0].Temperature != Unlabeled {
		t.Errorf("expected temperature %q, got %q", Unlabeled, samples[0].Temperature)
	}

	if _, err := s.Measure(1, "150", "21.5"); err != nil {
		t.Fatalf("Measure returned error: %v", err)
	}
	samples = s.Samples()
	if samples[1].Distance != "150" || samples[1].Temperature != "21.5" {
		t.Errorf("non-placeholder labels must be stored verbatim, got %q/%q",
			samples[1].Distance, samples[1].Temperature)
	}
}

func TestMeasureFlushesStaleInput(t *testing.T) {
	s, port := newTestSession()
	// Leftovers from an earlier desynchronized exchange.
	port.QueueLine("9999")
	respondEcho(port, 2900)

	times, err := s.Measure(2, "100", "20")
	if err != nil {
		t.Fatalf("Measure returned error: %v", err)
	}
	if times[0] != 2900 || times[1] != 2901 {
		t.Errorf("stale input must be flushed before the exchange, got %v", times)
	}
}

func TestDeleteSamplesKeepsRelativeOrder(t *testing.T) {
	s, port := newTestSession()
	respondEcho(port, 1000)
	if _, err := s.Measure(5, "100", "20"); err != nil {
		t.Fatalf("Measure returned error: %v", err)
	}

	samples := s.Samples()
	removed := s.DeleteSamples([]int64{samples[1].ID, samples[3].ID})
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}

	left := s.Samples()
	want := []int64{1000, 1002, 1004}
	if len(left) != len(want) {
		t.Fatalf("expected %d samples left, got %d", len(want), len(left))
	}
	for i, sample := range left {
		if sample.TimeMicros != want[i] {
			t.Errorf("sample %d: expected %d, got %d", i, want[i], sample.TimeMicros)
		}
	}
	if !s.Dirty() {
		t.Error("a partial delete leaves unsaved changes")
	}
}

func TestDeleteAllSamplesClearsDirty(t *testing.T) {
	s, port := newTestSession()
	respondEcho(port, 1000)
	if _, err := s.Measure(2, "100", "20"); err != nil {
		t.Fatalf("Measure returned error: %v", err)
	}

	var ids []int64
	for _, sample := range s.Samples() {
		ids = append(ids, sample.ID)
	}
	if removed := s.DeleteSamples(ids); removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	if s.Dirty() {
		t.Error("an emptied dataset has nothing left to lose")
	}
}

func TestDeleteUnknownIDsIsNoOp(t *testing.T) {
	s, port := newTestSession()
	respondEcho(port, 1000)
	if _, err := s.Measure(2, "100", "20"); err != nil {
		t.Fatalf("Measure returned error: %v", err)
	}

	if removed := s.DeleteSamples([]int64{777, 888}); removed != 0 {
		t.Errorf("expected 0 removed, got %d", removed)
	}
	if s.Len() != 2 {
		t.Errorf("expected 2 samples, got %d", s.Len())
	}
}

func TestClearEmptiesDatasetAndClearsDirty(t *testing.T) {
	s, port := newTestSession()
	respondEcho(port, 1000)
	if _, err := s.Measure(3, "100", "20"); err != nil {
		t.Fatalf("Measure returned error: %v", err)
	}

	s.Clear()
	if s.Len() != 0 {
		t.Errorf("expected empty dataset, got %d samples", s.Len())
	}
	if s.Dirty() {
		t.Error("clear must reset the unsaved-changes flag")
	}
}

func TestCloseDisconnectsButKeepsDataset(t *testing.T) {
	s, port := newTestSession()
	respondEcho(port, 1000)
	if _, err := s.Measure(2, "100", "20"); err != nil {
		t.Fatalf("Measure returned error: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if s.Connected() {
		t.Error("expected disconnected after Close")
	}
	if s.Len() != 2 {
		t.Errorf("dataset must survive Close, got %d samples", s.Len())
	}
	if port.IsOpen() {
		t.Error("underlying port must be closed")
	}
}
