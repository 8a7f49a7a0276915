// Package bouncerouter implements the node router's bounce-forwarding
// policy (C6, spec §4.6): re-emit any captured IPv4 frame that is not
// addressed to this host back toward the original sender so the central
// router can continue forwarding it along the chain. Grounded on
// original_source/node-router/src/ip/mod.rs and client-router's
// ip_forwarder.rs for the exact ordering of checks, rendered in the
// teacher's early-return drop-with-reason style (capture.go).
package bouncerouter

import (
	"net"

	"github.com/go-logr/logr"

	"github.com/TimeToogo/chain-net/internal/dumper"
	"github.com/TimeToogo/chain-net/internal/metrics"
	"github.com/TimeToogo/chain-net/internal/nic"
	"github.com/TimeToogo/chain-net/internal/state"
	"github.com/TimeToogo/chain-net/internal/wire"
)

// Router holds the node's interface snapshot and promiscuous/dump
// configuration for the bounce-forward policy.
type Router struct {
	iface   nic.Info
	node    *state.Node
	dumper  *dumper.Dumper
	log     logr.Logger
	metrics *metrics.Registry
}

// New constructs a Router for one node interface.
func New(iface nic.Info, node *state.Node, d *dumper.Dumper, log logr.Logger, m *metrics.Registry) *Router {
	return &Router{iface: iface, node: node, dumper: d, log: log, metrics: m}
}

func (r *Router) drop(reason string) {
	if r.metrics != nil {
		r.metrics.FramesDropped.WithLabelValues(reason).Inc()
	}
	r.log.V(1).Info("dropping frame", "reason", reason)
}

// Process applies the §4.6 policy to a captured Ethernet/IPv4 frame,
// dumping it when it's addressed to this host and returning a bounced
// frame to re-inject otherwise (or nil to drop entirely).
func (r *Router) Process(eth wire.Ethernet, ip wire.IPv4) []byte {
	srcMAC := eth.Src()

	// 1. not a loop from our own emission
	if macEqual(srcMAC, r.iface.MAC) {
		r.drop("self_loop")
		return nil
	}

	srcIP, dstIP := ip.Src(), ip.Dst()

	// 2 & 3. both endpoints must be within the local subnet, applying the
	// node-side /32→/24 override (spec §4.6 step 4, §9).
	if !r.localSubnetContains(srcIP) {
		r.drop("src_not_local")
		return nil
	}
	if !r.localSubnetContains(dstIP) {
		r.drop("dst_not_local")
		return nil
	}

	// 5. addressed to this host: dump and stop
	if r.iface.HasIP(dstIP) {
		r.dumper.Dump(ip)
		return nil
	}

	// 6. otherwise bounce back toward the original sender, optionally
	// dumping first if promiscuous mode is on.
	if r.node.Promisc {
		r.dumper.Dump(ip)
	}

	out := eth.Clone()
	out.SetSrc(r.iface.MAC)
	out.SetDst(srcMAC)

	if r.metrics != nil {
		r.metrics.FramesForwarded.Inc()
	}
	return out
}

func (r *Router) localSubnetContains(ip net.IP) bool {
	for _, p := range r.iface.IPs {
		mask := nic.NodeSubnetMask(p)
		network := p.IP.Mask(mask)
		candidate := ip.Mask(mask)
		if network.Equal(candidate) {
			return true
		}
	}
	return false
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
