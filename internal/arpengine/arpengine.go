// Package arpengine implements the central router's ARP component (C4,
// spec §4.4): a 1-second ticker that requests MACs for participants that
// don't have one yet, and ingestion of ARP replies to learn them.
// Grounded on paskozdilar-packet/arp/handler.go's Begin ticker-goroutine
// shape and arp/send.go's request-construction style.
package arpengine

import (
	"context"
	"net"
	"time"

	"github.com/go-logr/logr"

	"github.com/TimeToogo/chain-net/internal/bus"
	"github.com/TimeToogo/chain-net/internal/metrics"
	"github.com/TimeToogo/chain-net/internal/nic"
	"github.com/TimeToogo/chain-net/internal/state"
	"github.com/TimeToogo/chain-net/internal/wire"
)

// RequestInterval is the spec-mandated ARP burst period (§4.4).
const RequestInterval = 1 * time.Second

// Engine owns the periodic ARP-request ticker and reply ingestion for
// the central router.
type Engine struct {
	central *state.Central
	iface   nic.Info
	bus     *bus.Bus
	log     logr.Logger
	metrics *metrics.Registry
}

// New validates the interface has a MAC and IPv4 address — without both,
// participants can never be reached, so construction fails fast (spec
// §4.4: "the engine logs and aborts startup").
func New(central *state.Central, iface nic.Info, b *bus.Bus, log logr.Logger, m *metrics.Registry) (*Engine, error) {
	if iface.MAC == nil {
		return nil, startupError{what: "mac address", iface: iface.Name}
	}
	if len(iface.IPs) == 0 {
		return nil, startupError{what: "ipv4 address", iface: iface.Name}
	}
	return &Engine{central: central, iface: iface, bus: b, log: log, metrics: m}, nil
}

type startupError struct {
	what, iface string
}

func (e startupError) Error() string {
	return "arpengine: interface " + e.iface + " has no " + e.what + "; participants cannot be reached"
}

// Run drives the 1-second request ticker until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(RequestInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.sendRequests()
		}
	}
}

func (e *Engine) sendRequests() {
	srcIP := e.iface.IPs[0].IP
	for _, p := range e.central.MissingMAC() {
		frame, err := buildRequest(e.iface.MAC, srcIP, p.IP)
		if err != nil {
			e.log.Error(err, "failed to build arp request", "target_ip", p.IP)
			continue
		}
		e.bus.PublishFrameOut(frame)
		if e.metrics != nil {
			e.metrics.ARPRequestsSent.Inc()
		}
	}
}

// buildRequest builds a broadcast ARP request frame per spec §6's wire
// table: sender HW/proto = interface MAC/IP, target HW = all-zero,
// target proto = the participant's IP, opcode = request.
func buildRequest(srcMAC net.HardwareAddr, srcIP, targetIP net.IP) ([]byte, error) {
	eth := wire.MarshalEthernet(make([]byte, wire.ARPFrameLen), wire.EthTypeARP, srcMAC, wire.BroadcastMAC)
	arp, err := wire.MarshalARP(eth.Payload(), wire.ARPRequest, srcMAC, srcIP, wire.ZeroMAC, targetIP)
	if err != nil {
		return nil, err
	}
	return append([]byte(eth[:wire.EthernetHeaderLen]), arp...), nil
}

// HandleReply ingests a captured ARP frame (spec §4.4's "On FrameIn
// whose ethertype is ARP"). Non-reply or non-IPv4-proto packets, and
// replies from unknown senders, are silently dropped.
func (e *Engine) HandleReply(eth wire.Ethernet) {
	arp, err := wire.ParseARP(eth.Payload())
	if err != nil {
		e.log.V(1).Info("dropping malformed arp packet", "error", err)
		return
	}
	if arp.Op() != wire.ARPReply {
		return
	}
	if ok := e.central.SetMAC(arp.SenderProto(), arp.SenderHW()); !ok {
		e.log.V(1).Info("arp reply from unknown participant", "ip", arp.SenderProto())
		return
	}
	e.log.Info("learned participant mac", "ip", arp.SenderProto(), "mac", arp.SenderHW())
}
