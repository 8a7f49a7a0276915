//go:build linux

package rawsock

import (
	"encoding/binary"
	"fmt"
	"net"
	"sync"

	"golang.org/x/sys/unix"
)

// htons converts a host-order uint16 to network byte order.
func htons(v uint16) uint16 {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, v)
	return binary.LittleEndian.Uint16(b)
}

// linuxConn is a raw AF_PACKET/SOCK_RAW socket bound to one interface,
// capturing every ethertype (ETH_P_ALL) as the teacher's raw.Dial does.
type linuxConn struct {
	fd      int
	ifindex int

	closeOnce sync.Once
	closed    chan struct{}
}

// OpenLive opens a promiscuous raw Ethernet channel on the named
// interface. It fails with "interface not found" per spec §4.1 when the
// name does not resolve.
func OpenLive(ifaceName string) (Conn, error) {
	iface, err := net.InterfaceByName(ifaceName)
	if err != nil {
		return nil, fmt.Errorf("interface not found: %s: %w", ifaceName, err)
	}

	proto := htons(unix.ETH_P_ALL)
	fd, err := unix.Socket(unix.AF_PACKET, unix.SOCK_RAW, int(proto))
	if err != nil {
		return nil, fmt.Errorf("rawsock: socket: %w", err)
	}

	addr := &unix.SockaddrLinklayer{
		Protocol: proto,
		Ifindex:  iface.Index,
	}
	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("rawsock: bind %s: %w", ifaceName, err)
	}

	mreq := unix.PacketMreq{
		Ifindex: int32(iface.Index),
		Type:    unix.PACKET_MR_PROMISC,
	}
	_ = unix.SetsockoptPacketMreq(fd, unix.SOL_PACKET, unix.PACKET_ADD_MEMBERSHIP, &mreq)

	return &linuxConn{fd: fd, ifindex: iface.Index, closed: make(chan struct{})}, nil
}

func (c *linuxConn) Send(frame []byte) error {
	addr := &unix.SockaddrLinklayer{
		Ifindex: c.ifindex,
	}
	if err := unix.Sendto(c.fd, frame, 0, addr); err != nil {
		return fmt.Errorf("rawsock: send: %w", err)
	}
	return nil
}

func (c *linuxConn) Recv() ([]byte, error) {
	buf := make([]byte, 65536)
	for {
		n, _, err := unix.Recvfrom(c.fd, buf, 0)
		if err != nil {
			select {
			case <-c.closed:
				return nil, ErrClosed
			default:
			}
			if err == unix.EINTR {
				continue
			}
			return nil, fmt.Errorf("rawsock: recv: %w", err)
		}
		out := make([]byte, n)
		copy(out, buf[:n])
		return out, nil
	}
}

func (c *linuxConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return unix.Close(c.fd)
}
