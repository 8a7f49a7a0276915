package wire

import (
	"encoding/binary"
	"errors"
	"net"
)

// IPv4 protocol numbers relevant to the dumper.
const (
	ProtoICMP = 1
	ProtoTCP  = 6
	ProtoUDP  = 17
)

// ErrInvalidIPv4 is returned when a buffer is too short or not IPv4.
var ErrInvalidIPv4 = errors.New("wire: invalid ipv4 packet")

// IPv4 is an IPv4 header plus payload, memory-mapped over its wire bytes.
// Only the fields the router and dumper need are exposed; TTL is
// readable but never changed and checksums are never recomputed, since
// this router only ever
// rewrites the Ethernet header around an untouched IP payload.
type IPv4 []byte

// ParseIPv4 validates b as an IPv4 packet. b is not copied.
func ParseIPv4(b []byte) (IPv4, error) {
	p := IPv4(b)
	if len(b) < 20 {
		return nil, ErrInvalidIPv4
	}
	if p.Version() != 4 {
		return nil, ErrInvalidIPv4
	}
	ihl := int(p.IHL()) * 4
	if ihl < 20 || len(b) < ihl {
		return nil, ErrInvalidIPv4
	}
	return p, nil
}

func (p IPv4) Version() uint8  { return p[0] >> 4 }
func (p IPv4) IHL() uint8      { return p[0] & 0x0f }
func (p IPv4) TTL() uint8      { return p[8] }
func (p IPv4) Protocol() uint8 { return p[9] }

func (p IPv4) Src() net.IP { return net.IP(p[12:16]) }
func (p IPv4) Dst() net.IP { return net.IP(p[16:20]) }

// Payload returns the transport-layer payload following the (possibly
// option-bearing) IPv4 header.
func (p IPv4) Payload() []byte {
	ihl := int(p.IHL()) * 4
	if ihl > len(p) {
		return nil
	}
	return p[ihl:]
}

// TCPPorts reads the source/destination ports from a TCP segment.
func TCPPorts(b []byte) (src, dst uint16, ok bool) {
	if len(b) < 4 {
		return 0, 0, false
	}
	return binary.BigEndian.Uint16(b[0:2]), binary.BigEndian.Uint16(b[2:4]), true
}

// TCPHeaderLen reads the data-offset nibble (byte 12, high 4 bits) and
// returns the real TCP header length in bytes, the same IHL-style
// computation IPv4.Payload() does for the IP header: options push the
// payload past the fixed 20-byte minimum, so the offset must be read
// rather than assumed.
func TCPHeaderLen(b []byte) (n int, ok bool) {
	if len(b) < 13 {
		return 0, false
	}
	n = int(b[12]>>4) * 4
	if n < 20 || n > len(b) {
		return 0, false
	}
	return n, true
}

// UDPPorts reads the source/destination ports from a UDP datagram.
func UDPPorts(b []byte) (src, dst uint16, ok bool) {
	if len(b) < 4 {
		return 0, 0, false
	}
	return binary.BigEndian.Uint16(b[0:2]), binary.BigEndian.Uint16(b[2:4]), true
}

// ICMPType reads the type byte from an ICMP message.
func ICMPType(b []byte) (t uint8, ok bool) {
	if len(b) < 1 {
		return 0, false
	}
	return b[0], true
}

// ICMPv4 type values used by the dumper's label table (spec §4.7).
const (
	ICMPEchoReply          = 0
	ICMPDestinationUnreach = 3
	ICMPEchoRequest        = 8
	ICMPInformationRequest = 15
	ICMPTraceroute         = 30
)
