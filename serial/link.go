package serial

import (
	"errors"
	"fmt"

	"go.bug.st/serial"
)

// Link provides line-oriented I/O to one open serial device. It has no
// knowledge of measurement semantics; the session layer owns those.
type Link struct {
	port Port
	name string
}

// Open opens the named port with the fixed controller parameters
// (115200 baud, 8 data bits, no parity, 1 stop bit, 1 s read timeout).
func Open(name string) (*Link, error) {
	mode := &serial.Mode{
		BaudRate: BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(name, mode)
	if err != nil {
		var portErr *serial.PortError
		if errors.As(err, &portErr) && portErr.Code() == serial.PortBusy {
			return nil, fmt.Errorf("%w: %s", ErrPortBusy, name)
		}
		return nil, fmt.Errorf("%w: open %s: %v", ErrConnection, name, err)
	}

	if err := port.SetReadTimeout(ReadTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("%w: set read timeout on %s: %v", ErrConnection, name, err)
	}

	return &Link{port: port, name: name}, nil
}

// NewLink wraps an already-open port. Used by tests and the simulator.
func NewLink(port Port, name string) *Link {
	return &Link{port: port, name: name}
}

// PortName returns the device path the link was opened on.
func (l *Link) PortName() string {
	return l.name
}

// FlushInput discards any buffered unread bytes. A timed-out or
// partially-read exchange leaves stale bytes that would corrupt the
// next parse, so every exchange starts with a flush.
func (l *Link) FlushInput() error {
	if err := l.port.ResetInputBuffer(); err != nil {
		return fmt.Errorf("%w: flush %s: %v", ErrCommunication, l.name, err)
	}
	return nil
}

// WriteLine appends a CRLF terminator and writes the line to the port.
func (l *Link) WriteLine(text string) error {
	if _, err := l.port.Write([]byte(text + "\r\n")); err != nil {
		return fmt.Errorf("%w: write to %s: %v", ErrCommunication, l.name, err)
	}
	return nil
}

// ReadLine reads bytes up to and including the next line terminator. A
// read timeout yields an empty result and a nil error; callers
// distinguish timeout from data by emptiness. A partial line cut off by
// the timeout is useless without its terminator and is dropped.
func (l *Link) ReadLine() ([]byte, error) {
	var line []byte
	buf := make([]byte, 1)
	for {
		n, err := l.port.Read(buf)
		if err != nil {
			return nil, fmt.Errorf("%w: read from %s: %v", ErrCommunication, l.name, err)
		}
		if n == 0 {
			return nil, nil
		}
		line = append(line, buf[0])
		if buf[0] == '\n' {
			return line, nil
		}
	}
}

// Close closes the underlying port. The link must not be used after.
func (l *Link) Close() error {
	return l.port.Close()
}
