package serial

import (
	"errors"
	"io"
	"time"
)

// Fixed connection parameters for the measurement controller. The
// firmware side is not configurable, so neither is this side.
const (
	BaudRate    = 115200
	ReadTimeout = time.Second
)

// Transport failures, distinguished for user messaging.
var (
	// ErrPortBusy means the port is already held by another process.
	ErrPortBusy = errors.New("serial port is in use by another application")

	// ErrConnection covers every other open or discovery failure.
	ErrConnection = errors.New("could not connect to the controller")

	// ErrCommunication means an exchange on an open port failed.
	ErrCommunication = errors.New("communication with the controller failed")
)

// Port is the minimal transport the measurement session needs from a
// serial device. A go.bug.st/serial port satisfies it directly; tests
// use MockPort.
type Port interface {
	io.ReadWriteCloser

	// ResetInputBuffer discards any buffered unread bytes.
	ResetInputBuffer() error

	// SetReadTimeout bounds how long a single Read may block.
	SetReadTimeout(t time.Duration) error
}
