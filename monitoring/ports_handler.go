package monitoring

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Daniel-Forbes-HWU/speed-of-sound/serial"
)

// PortsHandler handles requests for system serial port information
type PortsHandler struct{}

// NewPortsHandler creates a new system ports handler
func NewPortsHandler() *PortsHandler {
	return &PortsHandler{}
}

// ServeHTTP lists the system's serial ports with their USB identity,
// flagging the ones that match the controller's vendor ID.
func (h *PortsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ports, err := serial.DetailedPorts()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	type portEntry struct {
		serial.PortInfo
		Controller bool `json:"controller"`
	}

	entries := make([]portEntry, 0, len(ports))
	for _, p := range ports {
		vid, err := strconv.ParseUint(p.VID, 16, 32)
		entries = append(entries, portEntry{
			PortInfo:   p,
			Controller: err == nil && vid == serial.VendorID,
		})
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"vendor_id": fmt.Sprintf("%04X", serial.VendorID),
		"ports":     entries,
	})
}
