// Package chainrouter implements the central router's chain-forwarding
// decision logic (C5, spec §4.5): for each captured IPv4 frame, decide
// the next hop along the ordered chain and re-emit the frame with a
// rewritten Ethernet header. Grounded on
// original_source/central-router/src/eth/ip_forwarder.rs's
// process_packet/find_next_hop_node for the exact policy ordering,
// rendered in the teacher's hand-rolled-frame style (icmp4/send4.go).
package chainrouter

import (
	"github.com/go-logr/logr"

	"github.com/TimeToogo/chain-net/internal/metrics"
	"github.com/TimeToogo/chain-net/internal/nic"
	"github.com/TimeToogo/chain-net/internal/state"
	"github.com/TimeToogo/chain-net/internal/wire"
)

// Router holds the state and interface snapshot the chain-forward
// policy reads on every captured IPv4 frame.
type Router struct {
	central *state.Central
	iface   nic.Info
	log     logr.Logger
	metrics *metrics.Registry
}

// New constructs a Router bound to one interface snapshot and the
// central chain state.
func New(central *state.Central, iface nic.Info, log logr.Logger, m *metrics.Registry) *Router {
	return &Router{central: central, iface: iface, log: log, metrics: m}
}

func (r *Router) drop(reason string, kv ...any) {
	if r.metrics != nil {
		r.metrics.FramesDropped.WithLabelValues(reason).Inc()
	}
	r.log.V(1).Info("dropping frame", append([]any{"reason", reason}, kv...)...)
}

// Forward applies the §4.5 policy to a captured Ethernet/IPv4 frame and
// returns the frame to re-inject, or nil if the policy says to drop.
// eth's payload must already be validated as IPv4 by the caller.
func (r *Router) Forward(eth wire.Ethernet, ip wire.IPv4) []byte {
	// 1. off-state silence
	if !r.central.On() {
		r.drop("forwarding_off")
		return nil
	}

	dstIP := ip.Dst()

	// 2. must be a LAN-local destination
	if !r.iface.ContainsAny(dstIP) {
		r.drop("not_local", "dst_ip", dstIP)
		return nil
	}

	// 3. not destined for this router itself
	if r.iface.HasIP(dstIP) {
		r.drop("destined_for_self", "dst_ip", dstIP)
		return nil
	}

	srcMAC := eth.Src()

	// 4. not a loop from our own emissions
	if macEqual(srcMAC, r.iface.MAC) {
		r.drop("self_loop")
		return nil
	}

	// 5. resolve source participant by MAC
	src, ok := r.central.FindByMAC(srcMAC)
	if !ok {
		r.drop("unknown_source_mac", "src_mac", srcMAC)
		return nil
	}

	// 6. resolve destination participant by IP
	dst, ok := r.central.FindByIP(dstIP)
	if !ok {
		r.drop("unknown_dest_ip", "dst_ip", dstIP)
		return nil
	}

	// 7. compute next hop
	next, ok := r.central.NextHop(src, dst)
	if !ok {
		r.drop("no_next_hop", "src", src.Name, "dst", dst.Name)
		return nil
	}

	if src.Equal(dst) {
		r.log.Info("looping frame back to sender", "participant", src.Name)
	}

	// 8. both MACs must be known to rewrite the header
	if next.MAC == nil || r.iface.MAC == nil {
		r.drop("next_hop_mac_unknown", "next_hop", next.Name)
		return nil
	}

	// 9. rewrite only the Ethernet src/dst; payload is untouched
	out := eth.Clone()
	out.SetSrc(r.iface.MAC)
	out.SetDst(next.MAC)

	if r.metrics != nil {
		r.metrics.FramesForwarded.Inc()
	}
	r.log.V(1).Info("forwarded frame", "src", src.Name, "dst", dst.Name, "next_hop", next.Name)
	return out
}

func macEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
