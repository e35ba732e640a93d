// Package ipassign maps (graph-node, IP) pairs, supporting both pinned
// addresses supplied literally in configuration and auto-assigned
// addresses drawn from one address pool shared by all nodes. spec.md §4.2 requires pinned
// hosts to register before auto-assigned ones so a generated address can
// never collide with a pinned one; this package enforces that by
// rejecting any assignment — pinned or auto — that collides with an
// address already held.
package ipassign

import (
	"encoding/binary"
	"fmt"
	"net"
	"sync"

	"github.com/shadowsim/controller/netsim/netgraph"
)

// DefaultPoolBase and DefaultPoolSize describe the /24-ish
// auto-assignment pool that every node draws from: 11.0.0.1 .. 11.0.0.254.
// Each node keeps its own scan position in it; addresses already held by
// any node are skipped.
var (
	DefaultPoolBase = net.IPv4(11, 0, 0, 1).To4()
	DefaultPoolSize = 254
)

// Assignment is the bidirectional (node, IP) map built up during host
// registration. Construct it with New; the zero value has no maps
// allocated and assignment on it panics.
type Assignment struct {
	mu        sync.Mutex
	byNode    map[netgraph.NodeID][]net.IP
	nodeOfIP  map[string]netgraph.NodeID
	nextIndex map[netgraph.NodeID]int
}

// New returns an empty Assignment.
func New() *Assignment {
	return &Assignment{
		byNode:    make(map[netgraph.NodeID][]net.IP),
		nodeOfIP:  make(map[string]netgraph.NodeID),
		nextIndex: make(map[netgraph.NodeID]int),
	}
}

// AssignHostWithIp pins ip to node. Fails if ip is already assigned to
// any node (spec.md §4.2.2: "must succeed or fatal").
func (a *Assignment) AssignHostWithIp(node netgraph.NodeID, ip net.IP) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	key := ip.String()
	if existing, ok := a.nodeOfIP[key]; ok {
		return fmt.Errorf("ipassign: address %s already assigned to node %q", key, existing)
	}
	a.nodeOfIP[key] = node
	a.byNode[node] = append(a.byNode[node], ip)
	return nil
}

// AssignHost draws the next unused address from node's pool and returns
// it. Fails when the pool is exhausted.
func (a *Assignment) AssignHost(node netgraph.NodeID) (net.IP, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	base := binary.BigEndian.Uint32(DefaultPoolBase)
	for i := a.nextIndex[node]; i < DefaultPoolSize; i++ {
		candidate := make(net.IP, 4)
		binary.BigEndian.PutUint32(candidate, base+uint32(i))
		key := candidate.String()
		if _, taken := a.nodeOfIP[key]; taken {
			continue
		}
		a.nextIndex[node] = i + 1
		a.nodeOfIP[key] = node
		a.byNode[node] = append(a.byNode[node], candidate)
		return candidate, nil
	}
	return nil, fmt.Errorf("ipassign: address pool exhausted for node %q", node)
}

// NodeOf returns the node an IP was assigned to, if any.
func (a *Assignment) NodeOf(ip net.IP) (netgraph.NodeID, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	n, ok := a.nodeOfIP[ip.String()]
	return n, ok
}

// AddressesOf returns every address assigned to node, in assignment order.
func (a *Assignment) AddressesOf(node netgraph.NodeID) []net.IP {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]net.IP, len(a.byNode[node]))
	copy(out, a.byNode[node])
	return out
}

// Len returns the total number of assigned addresses.
func (a *Assignment) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.nodeOfIP)
}
