package wire

import (
	"net"
	"testing"
)

func mustMAC(t *testing.T, s string) net.HardwareAddr {
	t.Helper()
	mac, err := net.ParseMAC(s)
	if err != nil {
		t.Fatalf("ParseMAC(%q): %v", s, err)
	}
	return mac
}

func TestParseEthernetRuntFrame(t *testing.T) {
	_, err := ParseEthernet(make([]byte, 10))
	if err != ErrRuntFrame {
		t.Fatalf("got %v, want ErrRuntFrame", err)
	}
}

func TestEthernetAccessors(t *testing.T) {
	src := mustMAC(t, "aa:aa:aa:aa:aa:02")
	dst := mustMAC(t, "ee:ee:ee:ee:ee:ee")

	e := MarshalEthernet(nil, EthTypeIPv4, src, dst)
	if e.EtherType() != EthTypeIPv4 {
		t.Fatalf("ethertype = %#x, want %#x", e.EtherType(), EthTypeIPv4)
	}
	if e.Src().String() != src.String() {
		t.Fatalf("src = %s, want %s", e.Src(), src)
	}
	if e.Dst().String() != dst.String() {
		t.Fatalf("dst = %s, want %s", e.Dst(), dst)
	}
}

func TestEthernetCloneIsIndependent(t *testing.T) {
	src := mustMAC(t, "aa:aa:aa:aa:aa:02")
	dst := mustMAC(t, "ee:ee:ee:ee:ee:ee")
	e := MarshalEthernet(nil, EthTypeIPv4, src, dst)

	c := e.Clone()
	c.SetSrc(mustMAC(t, "bb:bb:bb:bb:bb:bb"))

	if e.Src().String() != src.String() {
		t.Fatalf("mutating clone affected original: %s", e.Src())
	}
}
