package state

import "sync/atomic"

// Node is the node router's process-wide state. Its promiscuous/dump
// configuration is set once at startup from CLI flags and never mutated
// afterwards, so only the termination flag needs to be lock-free shared
// state (spec §3: node router has no chain to own).
type Node struct {
	Promisc   bool
	DumpLevel int

	terminating atomic.Bool
}

// NewNode creates Node state from the CLI-derived promiscuous/dump config.
func NewNode(promisc bool, dumpLevel int) *Node {
	return &Node{Promisc: promisc, DumpLevel: dumpLevel}
}

// Running reports whether the daemon has not yet been asked to terminate.
func (n *Node) Running() bool {
	return !n.terminating.Load()
}

// MarkTerminating sets the termination flag. Idempotent and monotonic.
func (n *Node) MarkTerminating() {
	n.terminating.Store(true)
}
