// Package nic captures a snapshot of one network interface's MAC and
// IPv4/prefix addresses at startup, grounded on the teacher's NICInfo
// (paskozdilar-packet/test/setup_test.go: HostMAC, HostIP4 net.IPNet).
// The spec treats this snapshot as stable for the process lifetime
// (spec §3), so it is captured once and never refreshed.
package nic

import (
	"fmt"
	"net"
)

// Prefix is one IPv4 address plus its prefix length on the interface.
type Prefix struct {
	IP   net.IP
	Mask net.IPMask
}

// Contains reports whether ip falls within this prefix's network.
func (p Prefix) Contains(ip net.IP) bool {
	network := &net.IPNet{IP: p.IP.Mask(p.Mask), Mask: p.Mask}
	return network.Contains(ip)
}

// Info is the interface snapshot: name, MAC (if any) and the IPv4
// prefixes configured on it.
type Info struct {
	Name string
	MAC  net.HardwareAddr
	IPs  []Prefix
}

// HasIP reports whether ip equals any address configured on the
// interface (spec §4.5 step 3 / §4.6 step 5).
func (i Info) HasIP(ip net.IP) bool {
	for _, p := range i.IPs {
		if p.IP.Equal(ip) {
			return true
		}
	}
	return false
}

// ContainsAny reports whether ip falls within any of the interface's
// configured IPv4 prefixes (spec §4.5 step 2). The bounce router does not
// use it; its local-subnet check applies NodeSubnetMask instead.
func (i Info) ContainsAny(ip net.IP) bool {
	for _, p := range i.IPs {
		if p.Contains(ip) {
			return true
		}
	}
	return false
}

// Snapshot resolves ifaceName and captures its MAC and IPv4 addresses.
// It returns an "interface not found" error (spec §4.1) if the name does
// not resolve to a live interface.
func Snapshot(ifaceName string) (Info, error) {
	iface, err := net.InterfaceByName(ifaceName)
	if err != nil {
		return Info{}, fmt.Errorf("interface not found: %s: %w", ifaceName, err)
	}

	addrs, err := iface.Addrs()
	if err != nil {
		return Info{}, fmt.Errorf("nic: reading addresses for %s: %w", ifaceName, err)
	}

	info := Info{Name: iface.Name, MAC: iface.HardwareAddr}
	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		v4 := ipnet.IP.To4()
		if v4 == nil {
			continue
		}
		info.IPs = append(info.IPs, Prefix{IP: v4, Mask: ipnet.Mask})
	}
	return info, nil
}

// NodeSubnetMask returns the prefix the bounce router should use for its
// local-subnet containment check, applying the spec's documented /32→/24
// override (spec §4.6 step 4, §9 "the /32→/24 override ... is
// load-bearing"): a node interface is typically configured with a /32 so
// all egress transits the host's default route (which is what lets the
// central router intercept it), but a /32 would make the containment
// check against that same address vacuous, so a /32 prefix is widened to
// /24 for the purposes of this check only — it never changes kernel
// routing.
func NodeSubnetMask(p Prefix) net.IPMask {
	ones, bits := p.Mask.Size()
	if bits == 32 && ones == 32 {
		return net.CIDRMask(24, 32)
	}
	return p.Mask
}
