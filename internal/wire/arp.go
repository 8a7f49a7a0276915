package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net"
)

// ARP operation codes.
const (
	ARPRequest = 1
	ARPReply   = 2
)

// arpLen is header (8) + 2*MAC (12) + 2*IPv4 (8).
const arpLen = 8 + 2*6 + 2*4

// ErrInvalidARP is returned when a buffer does not hold a well-formed
// Ethernet/IPv4 ARP packet.
var ErrInvalidARP = errors.New("wire: invalid arp packet")

// ARP is an ARP packet for Ethernet hardware addresses and IPv4 protocol
// addresses, memory-mapped over its wire bytes like Ethernet.
//
//	htype(2) ptype(2) hlen(1) plen(1) op(2) sha(6) spa(4) tha(6) tpa(4)
type ARP []byte

// ParseARP validates b as an ARP packet. b is not copied.
func ParseARP(b []byte) (ARP, error) {
	a := ARP(b)
	if len(b) < arpLen {
		return nil, ErrInvalidARP
	}
	if a.hType() != 1 || a.pType() != EthTypeIPv4 || a.hLen() != 6 || a.pLen() != 4 {
		return nil, ErrInvalidARP
	}
	return a, nil
}

func (a ARP) hType() uint16 { return binary.BigEndian.Uint16(a[0:2]) }
func (a ARP) pType() uint16 { return binary.BigEndian.Uint16(a[2:4]) }
func (a ARP) hLen() uint8   { return a[4] }
func (a ARP) pLen() uint8   { return a[5] }

// Op returns the ARP opcode (ARPRequest or ARPReply).
func (a ARP) Op() uint16 { return binary.BigEndian.Uint16(a[6:8]) }

// SenderHW is the sender hardware (MAC) address.
func (a ARP) SenderHW() net.HardwareAddr { return net.HardwareAddr(a[8:14]) }

// SenderProto is the sender protocol (IPv4) address.
func (a ARP) SenderProto() net.IP { return net.IP(a[14:18]) }

// TargetHW is the target hardware (MAC) address.
func (a ARP) TargetHW() net.HardwareAddr { return net.HardwareAddr(a[18:24]) }

// TargetProto is the target protocol (IPv4) address.
func (a ARP) TargetProto() net.IP { return net.IP(a[24:28]) }

func (a ARP) String() string {
	return fmt.Sprintf("op=%d sha=%s spa=%s tha=%s tpa=%s", a.Op(), a.SenderHW(), a.SenderProto(), a.TargetHW(), a.TargetProto())
}

// MarshalARP builds an ARP packet into b (or allocates one if b is nil).
func MarshalARP(b []byte, op uint16, senderHW net.HardwareAddr, senderIP net.IP, targetHW net.HardwareAddr, targetIP net.IP) (ARP, error) {
	if b == nil || cap(b) < arpLen {
		b = make([]byte, arpLen)
	}
	b = b[:arpLen]

	senderIP4 := senderIP.To4()
	targetIP4 := targetIP.To4()
	if senderIP4 == nil || targetIP4 == nil {
		return nil, fmt.Errorf("wire: arp addresses must be ipv4")
	}

	binary.BigEndian.PutUint16(b[0:2], 1)
	binary.BigEndian.PutUint16(b[2:4], EthTypeIPv4)
	b[4] = 6
	b[5] = 4
	binary.BigEndian.PutUint16(b[6:8], op)
	copy(b[8:14], senderHW)
	copy(b[14:18], senderIP4)
	copy(b[18:24], targetHW)
	copy(b[24:28], targetIP4)
	return ARP(b), nil
}

// BroadcastMAC is the Ethernet broadcast address ff:ff:ff:ff:ff:ff.
var BroadcastMAC = net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

// ZeroMAC is the all-zero hardware address used as ARP request TargetHW.
var ZeroMAC = net.HardwareAddr{0, 0, 0, 0, 0, 0}

// ARPFrameLen is the total wire length of an ARP-in-Ethernet frame.
const ARPFrameLen = EthernetHeaderLen + arpLen
