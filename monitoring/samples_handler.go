package monitoring

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Daniel-Forbes-HWU/speed-of-sound/session"
)

// SamplesHandler handles requests for recently collected samples
type SamplesHandler struct {
	session *session.Session
}

// NewSamplesHandler creates a new samples handler
func NewSamplesHandler(sess *session.Session) *SamplesHandler {
	return &SamplesHandler{
		session: sess,
	}
}

// ServeHTTP handles sample requests. An optional limit parameter caps
// the response to the most recent N samples.
func (h *SamplesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	samples := h.session.Samples()

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			http.Error(w, "invalid limit parameter", http.StatusBadRequest)
			return
		}
		if limit < len(samples) {
			samples = samples[len(samples)-limit:]
		}
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"total":   h.session.Len(),
		"dirty":   h.session.Dirty(),
		"samples": samples,
	})
}
