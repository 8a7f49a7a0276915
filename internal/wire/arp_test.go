package wire

import (
	"net"
	"testing"
)

func TestMarshalParseARPRoundTrip(t *testing.T) {
	sha := mustMAC(t, "aa:aa:aa:aa:aa:02")
	tha := ZeroMAC
	spa := net.ParseIP("10.0.0.2").To4()
	tpa := net.ParseIP("10.0.0.3").To4()

	a, err := MarshalARP(nil, ARPRequest, sha, spa, tha, tpa)
	if err != nil {
		t.Fatalf("MarshalARP: %v", err)
	}

	parsed, err := ParseARP(a)
	if err != nil {
		t.Fatalf("ParseARP: %v", err)
	}
	if parsed.Op() != ARPRequest {
		t.Fatalf("op = %d, want %d", parsed.Op(), ARPRequest)
	}
	if parsed.SenderHW().String() != sha.String() {
		t.Fatalf("sender hw = %s, want %s", parsed.SenderHW(), sha)
	}
	if !parsed.SenderProto().Equal(net.IP(spa)) {
		t.Fatalf("sender proto = %s, want %s", parsed.SenderProto(), spa)
	}
	if !parsed.TargetProto().Equal(net.IP(tpa)) {
		t.Fatalf("target proto = %s, want %s", parsed.TargetProto(), tpa)
	}
}

func TestParseARPRejectsNonIPv4(t *testing.T) {
	buf := make([]byte, arpLen)
	buf[0], buf[1] = 0, 1 // valid htype; ptype stays 0, not IPv4
	if _, err := ParseARP(buf); err != ErrInvalidARP {
		t.Fatalf("got %v, want ErrInvalidARP", err)
	}
}

func TestMarshalARPRejectsNonIPv4Address(t *testing.T) {
	sha := mustMAC(t, "aa:aa:aa:aa:aa:02")
	_, err := MarshalARP(nil, ARPRequest, sha, net.ParseIP("::1"), ZeroMAC, net.ParseIP("10.0.0.3"))
	if err == nil {
		t.Fatal("expected error for non-ipv4 sender address")
	}
}
