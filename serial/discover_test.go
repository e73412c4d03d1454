package serial

import (
	"errors"
	"fmt"
	"testing"

	"go.bug.st/serial/enumerator"
)

func stubPorts(ports []*enumerator.PortDetails, err error) func() {
	orig := detailedPortsList
	detailedPortsList = func() ([]*enumerator.PortDetails, error) {
		return ports, err
	}
	return func() { detailedPortsList = orig }
}

func TestDiscoverMatchesVendorID(t *testing.T) {
	restore := stubPorts([]*enumerator.PortDetails{
		{Name: "/dev/ttyS0", IsUSB: false},
		{Name: "/dev/ttyUSB0", IsUSB: true, VID: "0403", PID: "6001"},
		{Name: "/dev/ttyACM0", IsUSB: true, VID: "2E8A", PID: "0005"},
		{Name: "/dev/ttyACM1", IsUSB: true, VID: "2E8A", PID: "0005"},
	}, nil)
	defer restore()

	name, err := Discover()
	if err != nil {
		t.Fatalf("Discover returned error: %v", err)
	}
	if name != "/dev/ttyACM0" {
		t.Errorf("expected first matching device /dev/ttyACM0, got %s", name)
	}
}

func TestDiscoverNoMatchIsConnectionError(t *testing.T) {
	restore := stubPorts([]*enumerator.PortDetails{
		{Name: "/dev/ttyUSB0", IsUSB: true, VID: "0403", PID: "6001"},
	}, nil)
	defer restore()

	_, err := Discover()
	if !errors.Is(err, ErrConnection) {
		t.Errorf("expected ErrConnection, got %v", err)
	}
}

func TestDiscoverEnumerationFailure(t *testing.T) {
	restore := stubPorts(nil, fmt.Errorf("udev unavailable"))
	defer restore()

	_, err := Discover()
	if !errors.Is(err, ErrConnection) {
		t.Errorf("expected ErrConnection, got %v", err)
	}
}

func TestDiscoverSkipsMalformedVID(t *testing.T) {
	restore := stubPorts([]*enumerator.PortDetails{
		{Name: "/dev/ttyUSB0", IsUSB: true, VID: "????"},
		{Name: "/dev/ttyACM0", IsUSB: true, VID: "2e8a"},
	}, nil)
	defer restore()

	name, err := Discover()
	if err != nil {
		t.Fatalf("Discover returned error: %v", err)
	}
	if name != "/dev/ttyACM0" {
		t.Errorf("expected /dev/ttyACM0, got %s", name)
	}
}
