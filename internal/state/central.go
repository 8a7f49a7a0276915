// Package state holds the process-wide mutable state for each daemon:
// the central router's participant chain + on/off flag, and both
// daemons' lock-free termination flag. Grounded on the teacher's
// Session struct (session.go: one sync.RWMutex guarding the host/MAC
// tables, a lock-free atomic heartbeat) and on
// original_source/central-router/src/state.rs's SharedState (a single
// Mutex<State> plus an Arc<AtomicBool> for termination) — this port
// keeps the same one-mutex-plus-one-atomic shape spec §3/§5 calls for.
package state

import (
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// Central is the single mutex-guarded state object for the central
// router: the participant chain and the forwarding on/off flag, plus a
// lock-free termination flag shared with signal handling and watchers.
//
// Every mutation is a short critical section with no I/O and no frame
// allocation (spec §5's shared-resource policy); callers must not invoke
// blocking calls while holding mu.
type Central struct {
	mu    sync.Mutex
	on    bool
	nodes []Participant

	terminating atomic.Bool
}

// NewCentral creates Central with forwarding initially set per initialOn
// (spec §6: FORWARDER_ON env var at startup).
func NewCentral(initialOn bool) *Central {
	return &Central{on: initialOn}
}

// On reports whether forwarding is currently enabled.
func (c *Central) On() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.on
}

// SetOn sets the forwarding flag (POST /api/status).
func (c *Central) SetOn(on bool) {
	c.mu.Lock()
	c.on = on
	c.mu.Unlock()
}

// Nodes returns a shallow copy of the participant chain, safe to retain
// and range over outside the lock.
func (c *Central) Nodes() []Participant {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Participant, len(c.nodes))
	copy(out, c.nodes)
	return out
}

// FindByMAC returns the first participant whose MAC matches, used by the
// chain router to locate the source of a captured frame (spec §4.5 step 5).
func (c *Central) FindByMAC(mac net.HardwareAddr) (Participant, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, n := range c.nodes {
		if macEqual(n.MAC, mac) {
			return n, true
		}
	}
	return Participant{}, false
}

// FindByIP returns the first participant whose IP matches, used by the
// chain router to locate the destination of a captured frame (spec §4.5
// step 6). UpsertByIP and DeleteByIP match by IP with their own loops.
func (c *Central) FindByIP(ip net.IP) (Participant, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, n := range c.nodes {
		if n.IP.Equal(ip) {
			return n, true
		}
	}
	return Participant{}, false
}

// NextHop implements the §4.5.1 next-hop algorithm over the current
// chain. src and dst must both already be resolved participants.
func (c *Central) NextHop(src, dst Participant) (Participant, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if src.Equal(dst) {
		return dst, true
	}

	srcIdx, srcOK := indexOf(c.nodes, src)
	dstIdx, dstOK := indexOf(c.nodes, dst)
	if !srcOK || !dstOK {
		return Participant{}, false
	}

	var nextIdx int
	if srcIdx < dstIdx {
		nextIdx = srcIdx + 1
	} else {
		nextIdx = srcIdx - 1
	}
	if nextIdx < 0 || nextIdx >= len(c.nodes) {
		return Participant{}, false
	}
	return c.nodes[nextIdx], true
}

// UpsertByIP implements POST /api/nodes: rename the participant owning ip
// if one exists, else append a new one (spec §4.8).
func (c *Central) UpsertByIP(ip net.IP, name string, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.nodes {
		if c.nodes[i].IP.Equal(ip) {
			c.nodes[i].Name = name
			return
		}
	}
	c.nodes = append(c.nodes, Participant{Name: name, IP: ip, Created: now})
}

// DeleteByIP implements DELETE /api/nodes: remove the participant owning
// ip, if any. Reports whether a participant was removed.
func (c *Central) DeleteByIP(ip net.IP) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.nodes {
		if c.nodes[i].IP.Equal(ip) {
			c.nodes = append(c.nodes[:i], c.nodes[i+1:]...)
			return true
		}
	}
	return false
}

// Reorder implements PUT /api/nodes: move the participant at curI to
// newI. Out-of-range indices leave the chain unchanged and make Reorder
// report false; the PUT handler logs that and still answers 200 (spec
// §4.8, scenario S6).
func (c *Central) Reorder(curI, newI int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if curI < 0 || curI >= len(c.nodes) || newI < 0 || newI >= len(c.nodes) {
		return false
	}

	node := c.nodes[curI]
	rest := append(append([]Participant{}, c.nodes[:curI]...), c.nodes[curI+1:]...)
	out := make([]Participant, 0, len(rest)+1)
	out = append(out, rest[:newI]...)
	out = append(out, node)
	out = append(out, rest[newI:]...)
	c.nodes = out
	return true
}

// SetMAC overwrites the MAC of the participant owning ip (ARP learning,
// spec §4.4). Last-writer-wins: MAC updates are idempotent and
// overwriting is allowed, tolerating MAC changes. Returns false if no
// participant owns ip.
func (c *Central) SetMAC(ip net.IP, mac net.HardwareAddr) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.nodes {
		if c.nodes[i].IP.Equal(ip) {
			m := make(net.HardwareAddr, len(mac))
			copy(m, mac)
			c.nodes[i].MAC = m
			return true
		}
	}
	return false
}

// MissingMAC returns a copy of every participant with no learned MAC yet,
// the ARP engine's per-tick scan target (spec §4.4).
func (c *Central) MissingMAC() []Participant {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Participant
	for _, n := range c.nodes {
		if len(n.MAC) == 0 {
			out = append(out, n)
		}
	}
	return out
}

// Running reports whether the daemon has not yet been asked to
// terminate. Lock-free (spec §4.3).
func (c *Central) Running() bool {
	return !c.terminating.Load()
}

// MarkTerminating sets the termination flag. Idempotent and monotonic:
// once set, Running never reports true again (spec §3 lifecycle).
func (c *Central) MarkTerminating() {
	c.terminating.Store(true)
}

func indexOf(nodes []Participant, p Participant) (int, bool) {
	for i, n := range nodes {
		if n.Equal(p) {
			return i, true
		}
	}
	return 0, false
}
