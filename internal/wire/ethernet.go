// Package wire implements hand-rolled byte-layout accessors for the
// Ethernet, ARP and IPv4 headers this router needs to inspect and rewrite.
// Frames are treated as named []byte slices with accessor/setter methods,
// not parsed into allocated structs, so that forwarding never needs more
// than the handful of header fields the chain algorithm actually reads.
package wire

import (
	"encoding/binary"
	"errors"
	"net"
)

// EthernetHeaderLen is the length of an Ethernet II header (dst+src+ethertype).
const EthernetHeaderLen = 14

// Ethertype values this router understands.
const (
	EthTypeIPv4 = 0x0800
	EthTypeARP  = 0x0806
)

// ErrRuntFrame is returned by ParseEthernet when the buffer is too short
// to contain an Ethernet header.
var ErrRuntFrame = errors.New("wire: runt frame")

// Ethernet is an Ethernet II frame: the first 14 bytes are dst MAC, src MAC,
// ethertype; everything after is the payload.
type Ethernet []byte

// ParseEthernet validates and wraps b as an Ethernet frame. b is not copied.
func ParseEthernet(b []byte) (Ethernet, error) {
	e := Ethernet(b)
	if len(b) < EthernetHeaderLen {
		return nil, ErrRuntFrame
	}
	return e, nil
}

func (e Ethernet) Dst() net.HardwareAddr { return net.HardwareAddr(e[0:6]) }
func (e Ethernet) Src() net.HardwareAddr { return net.HardwareAddr(e[6:12]) }
func (e Ethernet) EtherType() uint16     { return binary.BigEndian.Uint16(e[12:14]) }
func (e Ethernet) Payload() []byte       { return e[EthernetHeaderLen:] }

func (e Ethernet) SetDst(mac net.HardwareAddr) { copy(e[0:6], mac) }
func (e Ethernet) SetSrc(mac net.HardwareAddr) { copy(e[6:12], mac) }

// Clone returns an owned copy of the frame, decoupling it from whatever
// buffer produced it (e.g. a capture ring) before it crosses the event bus.
func (e Ethernet) Clone() Ethernet {
	c := make([]byte, len(e))
	copy(c, e)
	return Ethernet(c)
}

// MarshalEthernet builds a new Ethernet header (no payload) into b, or
// allocates one if b is nil.
func MarshalEthernet(b []byte, ethertype uint16, src, dst net.HardwareAddr) Ethernet {
	if b == nil || cap(b) < EthernetHeaderLen {
		b = make([]byte, EthernetHeaderLen)
	}
	b = b[:EthernetHeaderLen]
	e := Ethernet(b)
	e.SetDst(dst)
	e.SetSrc(src)
	binary.BigEndian.PutUint16(e[12:14], ethertype)
	return e
}
