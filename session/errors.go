package session

import "errors"

// Protocol and session failures. Transport failures (port busy,
// connection, communication) are defined in the serial package and
// propagate through unmodified; callers dispatch on all of them with
// errors.Is and own the presentation.
var (
	// ErrNotConnected means an operation needing the controller was
	// called while the session is disconnected.
	ErrNotConnected = errors.New("not connected to the controller")

	// ErrTimeout means an expected response line never arrived within
	// the read timeout. The whole batch is discarded.
	ErrTimeout = errors.New("data request timed out")

	// ErrProtocol means the controller sent a line that is not a
	// well-formed integer. The whole batch is discarded.
	ErrProtocol = errors.New("controller sent a malformed response")

	// ErrValidation means the caller-supplied repetition count is out
	// of range. Rejected before any I/O.
	ErrValidation = errors.New("invalid repetition count")
)
