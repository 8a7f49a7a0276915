// Package bus implements the single-consumer event queue that decouples
// the capture goroutine, the ARP timer goroutine, and the termination
// watcher from the main forwarder loop, grounded on the teacher's own use
// of a buffered Go channel as its notification bus (session.go's
// `session.C = make(chan Notification, 128)`).
package bus

// Kind distinguishes the three event shapes the bus carries.
type Kind int

const (
	// FrameIn carries a frame captured off the wire.
	FrameIn Kind = iota
	// FrameOut carries a frame to be injected back onto the wire.
	FrameOut
	// Terminate signals that a producer has observed the termination
	// flag (or hit a fatal error) and the forwarder loop should exit.
	Terminate
)

// Event is the sum type flowing through the bus. Exactly one of Frame/Err
// is meaningful, selected by Kind.
type Event struct {
	Kind  Kind
	Frame []byte // owned, self-contained copy — never a borrowed capture-ring slice
	Err   error  // set only for Terminate
}

// Bus is an unbounded, multi-producer, single-consumer event queue.
// Backpressure is implicit: the channel is generously buffered and the
// real limiting resource is the capture socket's own kernel buffer, not
// this channel (spec §4.2).
type Bus struct {
	events chan Event
}

// New creates a Bus with the given channel capacity.
func New(capacity int) *Bus {
	if capacity <= 0 {
		capacity = 1024
	}
	return &Bus{events: make(chan Event, capacity)}
}

// PublishFrameIn enqueues a captured frame. The caller must pass an owned
// copy; Bus never copies defensively.
func (b *Bus) PublishFrameIn(frame []byte) {
	b.events <- Event{Kind: FrameIn, Frame: frame}
}

// PublishFrameOut enqueues a frame for injection.
func (b *Bus) PublishFrameOut(frame []byte) {
	b.events <- Event{Kind: FrameOut, Frame: frame}
}

// PublishTerminate enqueues the terminal event. Safe to call more than
// once; the forwarder loop exits on the first one it drains.
func (b *Bus) PublishTerminate(err error) {
	b.events <- Event{Kind: Terminate, Err: err}
}

// Events exposes the receive side for the forwarder loop's range/select.
func (b *Bus) Events() <-chan Event {
	return b.events
}
