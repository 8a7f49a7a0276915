package wire

import (
	"net"
	"testing"
)

func buildIPv4(t *testing.T, src, dst string, proto uint8, payload []byte) []byte {
	t.Helper()
	b := make([]byte, 20+len(payload))
	b[0] = 0x45 // version 4, IHL 5
	b[9] = proto
	copy(b[12:16], net.ParseIP(src).To4())
	copy(b[16:20], net.ParseIP(dst).To4())
	copy(b[20:], payload)
	return b
}

func TestParseIPv4(t *testing.T) {
	raw := buildIPv4(t, "10.0.0.2", "10.0.0.4", ProtoTCP, []byte{0, 80, 0x01, 0xbb})

	p, err := ParseIPv4(raw)
	if err != nil {
		t.Fatalf("ParseIPv4: %v", err)
	}
	if !p.Src().Equal(net.ParseIP("10.0.0.2")) {
		t.Fatalf("src = %s", p.Src())
	}
	if !p.Dst().Equal(net.ParseIP("10.0.0.4")) {
		t.Fatalf("dst = %s", p.Dst())
	}
	if p.Protocol() != ProtoTCP {
		t.Fatalf("protocol = %d, want %d", p.Protocol(), ProtoTCP)
	}

	src, dst, ok := TCPPorts(p.Payload())
	if !ok || src != 80 || dst != 443 {
		t.Fatalf("TCPPorts = %d,%d,%v", src, dst, ok)
	}
}

func TestTCPHeaderLenAccountsForOptions(t *testing.T) {
	// data offset 7 (28 bytes): 5 words of fixed header + 2 words of options.
	seg := make([]byte, 28+4)
	seg[12] = 7 << 4
	copy(seg[28:], []byte("abcd"))

	n, ok := TCPHeaderLen(seg)
	if !ok || n != 28 {
		t.Fatalf("TCPHeaderLen = %d,%v, want 28,true", n, ok)
	}
	if string(seg[n:]) != "abcd" {
		t.Fatalf("payload after header = %q, want %q", seg[n:], "abcd")
	}
}

func TestTCPHeaderLenRejectsRuntSegment(t *testing.T) {
	if _, ok := TCPHeaderLen(make([]byte, 8)); ok {
		t.Fatal("expected ok=false for a buffer shorter than the TCP header")
	}
}

func TestParseIPv4RejectsShortBuffer(t *testing.T) {
	if _, err := ParseIPv4(make([]byte, 10)); err != ErrInvalidIPv4 {
		t.Fatalf("got %v, want ErrInvalidIPv4", err)
	}
}

func TestParseIPv4RejectsWrongVersion(t *testing.T) {
	raw := buildIPv4(t, "10.0.0.2", "10.0.0.4", ProtoUDP, nil)
	raw[0] = 0x55 // version 5
	if _, err := ParseIPv4(raw); err != ErrInvalidIPv4 {
		t.Fatalf("got %v, want ErrInvalidIPv4", err)
	}
}
