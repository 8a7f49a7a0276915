package api

import (
	"errors"
	"net"
	"net/http"
)

// ErrInvalidPeer is returned when the request's peer address cannot be
// used to identify a participant: non-IPv4, loopback, or broadcast
// (spec §4.8's peer-IP validation).
var ErrInvalidPeer = errors.New("api: invalid peer address")

// peerIP extracts and validates the caller's IPv4 address from the
// connection's remote address, grounded on
// original_source/central-router/src/web/nodes.rs's get_client_ip.
func peerIP(r *http.Request) (net.IP, error) {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return nil, ErrInvalidPeer
	}

	ip := net.ParseIP(host)
	if ip == nil {
		return nil, ErrInvalidPeer
	}

	v4 := ip.To4()
	if v4 == nil {
		return nil, ErrInvalidPeer
	}
	if v4.IsLoopback() || v4.Equal(net.IPv4bcast) {
		return nil, ErrInvalidPeer
	}
	return v4, nil
}
