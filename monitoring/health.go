package monitoring

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Daniel-Forbes-HWU/speed-of-sound/session"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string        `json:"status"`
	InstanceID string        `json:"instance_id"`
	Version    string        `json:"version"`
	UptimeSec  int64         `json:"uptime_sec"`
	Connected  bool          `json:"connected"`
	Port       string        `json:"port,omitempty"`
	Samples    int           `json:"samples"`
	Dirty      bool          `json:"dirty"`
	Stats      session.Stats `json:"stats"`
}

// HealthHandler creates an HTTP handler for health checks
type HealthHandler struct {
	instanceID string
	version    string
	startTime  time.Time
	session    *session.Session
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(instanceID, version string, sess *session.Session) *HealthHandler {
	return &HealthHandler{
		instanceID: instanceID,
		version:    version,
		startTime:  time.Now(),
		session:    sess,
	}
}

// ServeHTTP handles the /health endpoint
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	connected := h.session.Connected()

	status := "healthy"
	if !connected {
		status = "degraded"
	}

	response := HealthResponse{
		Status:     status,
		InstanceID: h.instanceID,
		Version:    h.version,
		UptimeSec:  int64(time.Since(h.startTime).Seconds()),
		Connected:  connected,
		Port:       h.session.PortName(),
		Samples:    h.session.Len(),
		Dirty:      h.session.Dirty(),
		Stats:      h.session.Stats(),
	}

	w.Header().Set("Content-Type", "application/json")
	if status != "healthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(response)
}
