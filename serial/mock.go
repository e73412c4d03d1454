package serial

import (
	"bytes"
	"fmt"
	"sync"
	"time"
)

// MockPort implements Port for testing purposes. Bytes written to it
// are recorded; an optional responder plays the controller's role by
// queueing reply bytes for subsequent reads. An empty read queue
// behaves like a read timeout.
type MockPort struct {
	mu        sync.Mutex
	device    string
	isOpen    bool
	input     bytes.Buffer
	writes    [][]byte
	writeErr  error
	readErr   error
	flushes   int
	responder func(line string)
}

// NewMockPort creates a new mock port.
func NewMockPort(device string) *MockPort {
	return &MockPort{
		device: device,
		isOpen: true,
	}
}

// SetResponder installs a callback invoked once per complete line
// written to the port, terminator stripped. The callback typically
// calls QueueLine to script the controller's replies.
func (p *MockPort) SetResponder(fn func(line string)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responder = fn
}

// QueueLine appends one CRLF-terminated line to the read queue.
func (p *MockPort) QueueLine(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.input.WriteString(text + "\r\n")
}

// QueueBytes appends raw bytes to the read queue.
func (p *MockPort) QueueBytes(data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.input.Write(data)
}

// Read pops queued bytes. An empty queue returns (0, nil), matching the
// timeout behavior of a real port with a read timeout set.
func (p *MockPort) Read(buf []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.isOpen {
		return 0, fmt.Errorf("port is closed")
	}
	if p.readErr != nil {
		return 0, p.readErr
	}
	if p.input.Len() == 0 {
		return 0, nil
	}
	return p.input.Read(buf)
}

// Write records the data and feeds any complete lines to the responder.
func (p *MockPort) Write(data []byte) (int, error) {
	p.mu.Lock()

	if !p.isOpen {
		p.mu.Unlock()
		return 0, fmt.Errorf("port is closed")
	}
	if p.writeErr != nil {
		p.mu.Unlock()
		return 0, p.writeErr
	}

	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)
	p.writes = append(p.writes, dataCopy)
	responder := p.responder
	p.mu.Unlock()

	if responder != nil {
		for _, line := range bytes.Split(data, []byte("\n")) {
			line = bytes.TrimRight(line, "\r")
			if len(line) > 0 {
				responder(string(line))
			}
		}
	}
	return len(data), nil
}

// Close closes the mock port.
func (p *MockPort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.isOpen = false
	return nil
}

// ResetInputBuffer discards any queued read bytes.
func (p *MockPort) ResetInputBuffer() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.isOpen {
		return fmt.Errorf("port is closed")
	}
	p.input.Reset()
	p.flushes++
	return nil
}

// SetReadTimeout is a no-op for the mock port.
func (p *MockPort) SetReadTimeout(t time.Duration) error {
	return nil
}

// Writes returns a copy of every individual write operation.
func (p *MockPort) Writes() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()

	result := make([][]byte, len(p.writes))
	for i, w := range p.writes {
		result[i] = make([]byte, len(w))
		copy(result[i], w)
	}
	return result
}

// FlushCount returns how many times the input buffer was reset.
func (p *MockPort) FlushCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.flushes
}

// IsOpen returns true if the mock port is open.
func (p *MockPort) IsOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.isOpen
}

// SetWriteError sets an error to be returned on subsequent writes.
func (p *MockPort) SetWriteError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writeErr = err
}

// SetReadError sets an error to be returned on subsequent reads.
func (p *MockPort) SetReadError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.readErr = err
}
