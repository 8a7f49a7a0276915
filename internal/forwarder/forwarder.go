// Package forwarder wires the raw capture socket, the event bus and a
// daemon's forwarding policy into the C1→C2→{C4,C5|C6}→C2→C1 data flow
// described in spec §2/§5: a capture goroutine feeds FrameIn events, a
// termination watcher feeds the terminal event, and each daemon's own
// dispatch loop drains the bus, using ParseFrame and Inject from here to
// turn decisions back into FrameOut writes. Grounded
// on the teacher's own split between a blocking-read producer goroutine
// and a single consuming dispatch loop (capture.go's ReadFrom loop
// feeding session.C, drained by arp/handler.go's Begin select loop).
package forwarder

import (
	"context"
	"errors"
	"time"

	"github.com/go-logr/logr"

	"github.com/TimeToogo/chain-net/internal/bus"
	"github.com/TimeToogo/chain-net/internal/metrics"
	"github.com/TimeToogo/chain-net/internal/rawsock"
	"github.com/TimeToogo/chain-net/internal/wire"
)

// terminator is the lock-free flag both state.Central and state.Node
// expose; the watcher and capture-close goroutines only need this much.
type terminator interface {
	Running() bool
}

// watcherInterval is how often the termination watcher polls the
// lock-free flag (spec §4.3: "polls the termination flag" on a short
// fixed period rather than blocking on it).
const watcherInterval = 500 * time.Millisecond

// Capture runs the blocking capture loop (C1) until conn is closed or
// Recv fails, publishing every frame it reads as FrameIn. Recv
// never returns a recoverable error for this daemon (frame parsing
// happens downstream, not in the socket layer), so any error — a clean
// Close or a fatal OS error alike — is the spec §4.1/§7 terminal kind:
// it is published as Terminate and Capture returns, surfacing a non-nil
// Err to the supervisor for everything but the expected ErrClosed.
func Capture(conn rawsock.Conn, b *bus.Bus, log logr.Logger, m *metrics.Registry) {
	for {
		frame, err := conn.Recv()
		if err != nil {
			if errors.Is(err, rawsock.ErrClosed) {
				b.PublishTerminate(nil)
				return
			}
			log.Error(err, "capture: fatal recv error")
			b.PublishTerminate(err)
			return
		}
		if m != nil {
			m.FramesCaptured.Inc()
		}
		b.PublishFrameIn(frame)
	}
}

// WatchTermination polls t.Running() every watcherInterval and, the
// moment it goes false, closes conn (unblocking Capture's Recv) and
// publishes Terminate so the main loop exits even if no more frames ever
// arrive (spec §4.3's termination watcher thread).
func WatchTermination(ctx context.Context, t terminator, conn rawsock.Conn, b *bus.Bus) {
	ticker := time.NewTicker(watcherInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close()
			return
		case <-ticker.C:
			if !t.Running() {
				_ = conn.Close()
				b.PublishTerminate(nil)
				return
			}
		}
	}
}

// Inject writes every FrameOut event back onto the wire (the C2→C1 leg).
// Send errors are logged, never fatal (spec §7: injection failures are
// transient and do not bring down the daemon).
func Inject(conn rawsock.Conn, frame []byte, log logr.Logger) {
	if err := conn.Send(frame); err != nil {
		log.V(1).Info("injection failed", "error", err)
	}
}

// ParseFrame validates the captured bytes as an Ethernet frame, the
// shared first step both daemons' dispatch loops perform before
// consulting their respective policy.
func ParseFrame(frame []byte) (wire.Ethernet, error) {
	return wire.ParseEthernet(frame)
}
