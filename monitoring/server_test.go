package monitoring

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Daniel-Forbes-HWU/speed-of-sound/serial"
	"github.com/Daniel-Forbes-HWU/speed-of-sound/session"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func connectedSession(t *testing.T) *session.Session {
	t.Helper()
	port := serial.NewMockPort("/dev/ttyACM0")
	port.SetResponder(func(line string) {
		port.QueueLine("ok")
		port.QueueLine("2941")
		port.QueueLine("2952")
	})
	sess := session.NewWithLink(serial.NewLink(port, "/dev/ttyACM0"), discardLogger())
	if _, err := sess.Measure(2, "100", "20"); err != nil {
		t.Fatalf("fixture measurement failed: %v", err)
	}
	return sess
}

func TestHealthHandlerConnected(t *testing.T) {
	handler := NewHealthHandler("bench-1", "1.0.0", connectedSession(t))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Status != "healthy" || !resp.Connected {
		t.Errorf("expected healthy connected response, got %+v", resp)
	}
	if resp.Samples != 2 || !resp.Dirty {
		t.Errorf("expected 2 unsaved samples, got %+v", resp)
	}
	if resp.Port != "/dev/ttyACM0" {
		t.Errorf("expected port in response, got %q", resp.Port)
	}
}

func TestHealthHandlerDisconnected(t *testing.T) {
	handler := NewHealthHandler("bench-1", "1.0.0", session.New(discardLogger()))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != 503 {
		t.Fatalf("expected 503 while disconnected, got %d", rec.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Status != "degraded" || resp.Connected {
		t.Errorf("expected degraded disconnected response, got %+v", resp)
	}
}

func TestMetricsHandlerFormat(t *testing.T) {
	handler := NewMetricsHandler(connectedSession(t))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	for _, want := range []string{
		`speedofsound_batches_total{port="/dev/ttyACM0"} 1`,
		`speedofsound_samples_total{port="/dev/ttyACM0"} 2`,
		"speedofsound_connected 1",
		"speedofsound_dataset_size 2",
		"speedofsound_unsaved_changes 1",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q\n%s", want, body)
		}
	}
}

func TestSamplesHandlerLimit(t *testing.T) {
	handler := NewSamplesHandler(connectedSession(t))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/samples?limit=1", nil))

	var resp struct {
		Total   int              `json:"total"`
		Samples []session.Sample `json:"samples"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Total != 2 {
		t.Errorf("expected total 2, got %d", resp.Total)
	}
	if len(resp.Samples) != 1 || resp.Samples[0].TimeMicros != 2952 {
		t.Errorf("expected the most recent sample only, got %+v", resp.Samples)
	}
}

func TestSamplesHandlerRejectsBadLimit(t *testing.T) {
	handler := NewSamplesHandler(session.New(discardLogger()))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/samples?limit=x", nil))

	if rec.Code != 400 {
		t.Errorf("expected 400 for a non-numeric limit, got %d", rec.Code)
	}
}
