package dumper

import (
	"bytes"
	"net"
	"strings"
	"testing"

	"github.com/go-logr/logr"

	"github.com/TimeToogo/chain-net/internal/wire"
)

func buildUDP(t *testing.T, payload []byte) wire.IPv4 {
	t.Helper()
	udp := make([]byte, 8+len(payload))
	udp[0], udp[1] = 0, 53
	udp[2], udp[3] = 0x1f, 0x90
	copy(udp[8:], payload)

	b := make([]byte, 20+len(udp))
	b[0] = 0x45
	b[9] = wire.ProtoUDP
	copy(b[12:16], net.ParseIP("10.0.0.2").To4())
	copy(b[16:20], net.ParseIP("10.0.0.4").To4())
	copy(b[20:], udp)

	ip, err := wire.ParseIPv4(b)
	if err != nil {
		t.Fatalf("ParseIPv4: %v", err)
	}
	return ip
}

// buildTCP builds an IPv4/TCP packet whose header is extended by
// optWords 32-bit option words, so dataOffset != the 20-byte minimum.
func buildTCP(t *testing.T, optWords int, payload []byte) wire.IPv4 {
	t.Helper()
	hlen := 20 + 4*optWords
	tcp := make([]byte, hlen+len(payload))
	tcp[0], tcp[1] = 0, 22
	tcp[2], tcp[3] = 0x1f, 0x90
	tcp[12] = byte(hlen/4) << 4
	copy(tcp[hlen:], payload)

	b := make([]byte, 20+len(tcp))
	b[0] = 0x45
	b[9] = wire.ProtoTCP
	copy(b[12:16], net.ParseIP("10.0.0.2").To4())
	copy(b[16:20], net.ParseIP("10.0.0.4").To4())
	copy(b[20:], tcp)

	ip, err := wire.ParseIPv4(b)
	if err != nil {
		t.Fatalf("ParseIPv4: %v", err)
	}
	return ip
}

func TestDumpTCPShowsPorts(t *testing.T) {
	var buf bytes.Buffer
	d := New(2, &buf, logr.Discard())
	d.Dump(buildTCP(t, 0, []byte("hello")))

	if !strings.Contains(buf.String(), "tcp 22 -> 8080") {
		t.Fatalf("missing transport line: %q", buf.String())
	}
}

func TestDumpTCPWithOptionsExcludesOptionsFromPayload(t *testing.T) {
	var buf bytes.Buffer
	d := New(3, &buf, logr.Discard())
	// 2 option words (8 bytes) push the real header to 28 bytes; a fixed
	// 20-byte skip would leak the last 8 option bytes into the dump.
	d.Dump(buildTCP(t, 2, []byte("hi")))

	if !strings.Contains(buf.String(), `"hi"`) {
		t.Fatalf("expected exact payload %q, got: %q", `"hi"`, buf.String())
	}
}

func TestDumpLevelZeroIsSilent(t *testing.T) {
	var buf bytes.Buffer
	d := New(0, &buf, logr.Discard())
	d.Dump(buildUDP(t, []byte("hello")))
	if buf.Len() != 0 {
		t.Fatalf("level 0 wrote output: %q", buf.String())
	}
}

func TestDumpLevelOneShowsAddressesOnly(t *testing.T) {
	var buf bytes.Buffer
	d := New(1, &buf, logr.Discard())
	d.Dump(buildUDP(t, []byte("hello")))

	out := buf.String()
	if !strings.Contains(out, "10.0.0.2") || !strings.Contains(out, "10.0.0.4") {
		t.Fatalf("missing addresses: %q", out)
	}
	if strings.Contains(out, "udp") {
		t.Fatalf("level 1 should not show transport detail: %q", out)
	}
}

func TestDumpLevelTwoShowsTransport(t *testing.T) {
	var buf bytes.Buffer
	d := New(2, &buf, logr.Discard())
	d.Dump(buildUDP(t, []byte("hello")))

	if !strings.Contains(buf.String(), "udp 53 -> 8080") {
		t.Fatalf("missing transport line: %q", buf.String())
	}
}

func TestDumpLevelThreeShowsEscapedPayload(t *testing.T) {
	var buf bytes.Buffer
	d := New(3, &buf, logr.Discard())
	d.Dump(buildUDP(t, []byte("hi\n\x01")))

	if !strings.Contains(buf.String(), `"hi\n\x01"`) {
		t.Fatalf("missing escaped payload: %q", buf.String())
	}
}

func TestDumpUnknownProtocol(t *testing.T) {
	b := make([]byte, 20)
	b[0] = 0x45
	b[9] = 253 // reserved/unassigned
	copy(b[12:16], net.ParseIP("10.0.0.2").To4())
	copy(b[16:20], net.ParseIP("10.0.0.4").To4())
	ip, err := wire.ParseIPv4(b)
	if err != nil {
		t.Fatalf("ParseIPv4: %v", err)
	}

	var buf bytes.Buffer
	d := New(2, &buf, logr.Discard())
	d.Dump(ip)

	if !strings.Contains(buf.String(), "Unknown transport protocol") {
		t.Fatalf("missing unknown-protocol line: %q", buf.String())
	}
}
