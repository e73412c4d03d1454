package monitoring

import (
	"fmt"
	"net/http"

	"github.com/Daniel-Forbes-HWU/speed-of-sound/session"
)

// MetricsHandler creates an HTTP handler for Prometheus metrics
type MetricsHandler struct {
	session *session.Session
}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler(sess *session.Session) *MetricsHandler {
	return &MetricsHandler{
		session: sess,
	}
}

// ServeHTTP handles the /metrics endpoint in Prometheus format
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	stats := h.session.Stats()
	port := h.session.PortName()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	fmt.Fprintln(w, "# HELP speedofsound_batches_total Total measurement batches completed")
	fmt.Fprintln(w, "# TYPE speedofsound_batches_total counter")
	fmt.Fprintf(w, "speedofsound_batches_total{port=%q} %d\n", port, stats.Batches)

	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "# HELP speedofsound_samples_total Total timing samples collected")
	fmt.Fprintln(w, "# TYPE speedofsound_samples_total counter")
	fmt.Fprintf(w, "speedofsound_samples_total{port=%q} %d\n", port, stats.SamplesTaken)

	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "# HELP speedofsound_failures_total Total failed exchanges")
	fmt.Fprintln(w, "# TYPE speedofsound_failures_total counter")
	fmt.Fprintf(w, "speedofsound_failures_total{port=%q} %d\n", port, stats.Failures)

	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "# HELP speedofsound_connected Controller connection status (1=connected)")
	fmt.Fprintln(w, "# TYPE speedofsound_connected gauge")
	connected := 0
	if h.session.Connected() {
		connected = 1
	}
	fmt.Fprintf(w, "speedofsound_connected %d\n", connected)

	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "# HELP speedofsound_dataset_size Samples currently held in memory")
	fmt.Fprintln(w, "# TYPE speedofsound_dataset_size gauge")
	fmt.Fprintf(w, "speedofsound_dataset_size %d\n", h.session.Len())

	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "# HELP speedofsound_unsaved_changes Dataset changed since last export (1=dirty)")
	fmt.Fprintln(w, "# TYPE speedofsound_unsaved_changes gauge")
	dirty := 0
	if h.session.Dirty() {
		dirty = 1
	}
	fmt.Fprintf(w, "speedofsound_unsaved_changes %d\n", dirty)

	if !stats.LastBatchTime.IsZero() {
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, "# HELP speedofsound_last_batch_timestamp Unix timestamp of the last completed batch")
		fmt.Fprintln(w, "# TYPE speedofsound_last_batch_timestamp gauge")
		fmt.Fprintf(w, "speedofsound_last_batch_timestamp %d\n", stats.LastBatchTime.Unix())
	}
}
