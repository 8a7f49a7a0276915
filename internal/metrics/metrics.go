// Package metrics exposes Prometheus counters for the forwarding
// pipeline, the domain-stack expansion described in SPEC_FULL.md §4.8,
// grounded on gpillon-kubevirt-wol's use of
// github.com/prometheus/client_golang for operational counters.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registry groups the counters one daemon instance exposes on /metrics.
type Registry struct {
	FramesCaptured  prometheus.Counter
	FramesForwarded prometheus.Counter
	FramesDropped   *prometheus.CounterVec
	ARPRequestsSent prometheus.Counter
}

// NewRegistry creates and registers a fresh counter set against reg.
func NewRegistry(reg prometheus.Registerer, namespace string) *Registry {
	r := &Registry{
		FramesCaptured: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_captured_total",
			Help:      "Raw Ethernet frames read off the capture socket.",
		}),
		FramesForwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_forwarded_total",
			Help:      "Frames re-emitted with a rewritten Ethernet header.",
		}),
		FramesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_dropped_total",
			Help:      "Frames dropped by policy, labeled by reason.",
		}, []string{"reason"}),
		ARPRequestsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "arp_requests_sent_total",
			Help:      "ARP requests emitted for participants with no known MAC.",
		}),
	}
	reg.MustRegister(r.FramesCaptured, r.FramesForwarded, r.FramesDropped, r.ARPRequestsSent)
	return r
}
