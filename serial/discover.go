package serial

import (
	"fmt"
	"strconv"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// VendorID is the USB vendor ID of the measurement controller
// (Raspberry Pi, decimal 11914).
const VendorID = 0x2E8A

// Held in a variable so tests can substitute the enumeration.
var detailedPortsList = enumerator.GetDetailedPortsList

// Discover enumerates the connected serial devices and returns the name
// of the first one whose USB vendor ID matches the controller's.
func Discover() (string, error) {
	ports, err := detailedPortsList()
	if err != nil {
		return "", fmt.Errorf("%w: enumerate ports: %v", ErrConnection, err)
	}

	for _, p := range ports {
		if !p.IsUSB {
			continue
		}
		vid, err := strconv.ParseUint(p.VID, 16, 32)
		if err != nil {
			continue
		}
		if vid == VendorID {
			return p.Name, nil
		}
	}

	return "", fmt.Errorf("%w: no device with vendor ID %04X found", ErrConnection, VendorID)
}

// PortInfo describes one system serial port for listings.
type PortInfo struct {
	Name    string `json:"name"`
	Product string `json:"product,omitempty"`
	VID     string `json:"vid,omitempty"`
	PID     string `json:"pid,omitempty"`
	IsUSB   bool   `json:"is_usb"`
}

// DetailedPorts returns every system serial port with its USB identity,
// for the CLI listing and the monitoring API.
func DetailedPorts() ([]PortInfo, error) {
	ports, err := detailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]PortInfo, 0, len(ports))
	for _, p := range ports {
		result = append(result, PortInfo{
			Name:    p.Name,
			Product: p.Product,
			VID:     p.VID,
			PID:     p.PID,
			IsUSB:   p.IsUSB,
		})
	}
	return result, nil
}

// ListPorts returns the names of the available serial ports.
func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	return ports, nil
}
