package api

import (
	"bytes"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/TimeToogo/chain-net/internal/state"
)

func newTestServer(t *testing.T, central *state.Central) *Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	s, err := New(central, reg, 0, logr.Discard())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func do(t *testing.T, handler http.Handler, method, path, remoteAddr string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = remoteAddr
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

// TestReorderScenarioS6 reproduces spec scenario S6 through the control
// plane: PUT {cur_i:0,new_i:2} on [X,Y,Z] yields [Y,Z,X], and a
// subsequent out-of-range PUT leaves the chain unchanged and returns 200.
func TestReorderScenarioS6(t *testing.T) {
	c := state.NewCentral(true)
	now := time.Now()
	c.UpsertByIP(mustIP("10.0.0.2"), "X", now)
	c.UpsertByIP(mustIP("10.0.0.3"), "Y", now)
	c.UpsertByIP(mustIP("10.0.0.4"), "Z", now)

	s := newTestServer(t, c)

	rr := do(t, s.http.Handler, http.MethodPut, "/api/nodes", "10.9.9.9:1234", reorderDTO{CurI: 0, NewI: 2})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	names := chainNames(c)
	want := []string{"Y", "Z", "X"}
	if !sliceEqual(names, want) {
		t.Fatalf("chain = %v, want %v", names, want)
	}

	rr = do(t, s.http.Handler, http.MethodPut, "/api/nodes", "10.9.9.9:1234", reorderDTO{CurI: 5, NewI: 0})
	if rr.Code != http.StatusOK {
		t.Fatalf("out-of-range reorder status = %d, want 200", rr.Code)
	}
	if names2 := chainNames(c); !sliceEqual(names2, want) {
		t.Fatalf("out-of-range reorder mutated chain: %v", names2)
	}
}

func TestPeerGuardRejectsLoopback(t *testing.T) {
	c := state.NewCentral(true)
	s := newTestServer(t, c)

	rr := do(t, s.http.Handler, http.MethodPost, "/api/nodes", "127.0.0.1:1234", newNodeDTO{Name: "X"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for loopback peer", rr.Code)
	}
}

func TestPeerGuardRejectsBroadcast(t *testing.T) {
	c := state.NewCentral(true)
	s := newTestServer(t, c)

	rr := do(t, s.http.Handler, http.MethodPost, "/api/nodes", "255.255.255.255:1234", newNodeDTO{Name: "X"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for broadcast peer", rr.Code)
	}
}

func TestPostNodesUpsertsByPeerIP(t *testing.T) {
	c := state.NewCentral(true)
	s := newTestServer(t, c)

	rr := do(t, s.http.Handler, http.MethodPost, "/api/nodes", "10.0.0.5:4321", newNodeDTO{Name: "laptop"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	p, ok := c.FindByIP(mustIP("10.0.0.5"))
	if !ok || p.Name != "laptop" {
		t.Fatalf("node not upserted: %+v, %v", p, ok)
	}
}

func TestStatusRoundTrip(t *testing.T) {
	c := state.NewCentral(false)
	s := newTestServer(t, c)

	rr := do(t, s.http.Handler, http.MethodPost, "/api/status", "10.0.0.5:4321", statusDTO{On: true})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if !c.On() {
		t.Fatal("expected forwarding to be turned on")
	}

	rr = do(t, s.http.Handler, http.MethodGet, "/api/status", "10.0.0.5:4321", nil)
	var got statusDTO
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !got.On {
		t.Fatal("expected status response to report on=true")
	}
}

func chainNames(c *state.Central) []string {
	nodes := c.Nodes()
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}

func sliceEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func mustIP(s string) net.IP {
	return net.ParseIP(s).To4()
}
