// Package rawsock opens a raw Ethernet channel on a named interface,
// mirroring the teacher's raw.Dial(ifi, syscall.ETH_P_ALL) design: a
// small Conn contract that production code backs with an AF_PACKET
// socket and tests back with an in-memory pipe (see testconn.go).
package rawsock

import "errors"

// ErrClosed is returned from Recv once the underlying socket has been
// closed, the terminal error kind the capture loop treats as a clean
// shutdown.
var ErrClosed = errors.New("rawsock: connection closed")

// Conn is an open raw Ethernet channel on one interface.
type Conn interface {
	// Send best-effort writes a raw Ethernet frame. Send errors are never
	// fatal to the caller; the capture/forward pipeline only logs them.
	Send(frame []byte) error

	// Recv blocks for the next raw Ethernet frame. It returns ErrClosed
	// once the socket has been closed, or a wrapped OS error when the
	// socket can no longer produce frames; both are terminal. Frames are
	// returned unparsed, so malformed frames are not a Recv error.
	Recv() ([]byte, error)

	Close() error
}
