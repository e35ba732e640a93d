// Package testdata generates synthetic topologies and host lists for
// tests, using gofakeit instead of hand-written literal fixtures so
// test inputs vary across runs while staying well-formed. Grounded on
// Ali-Mohammed-open-source-radius's tests/radius.go, which builds its
// RADIUS test fixtures the same way (gofakeit.UUID()) rather than
// literal constants.
package testdata

import (
	"fmt"
	"net"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/shadowsim/controller/netsim/config"
	"github.com/shadowsim/controller/netsim/netgraph"
)

// RandomGraph builds a connected graph of nodeCount nodes with
// randomized per-edge latency and loss.
func RandomGraph(nodeCount int) *netgraph.Graph {
	g := &netgraph.Graph{
		Nodes: make(map[netgraph.NodeID]*netgraph.Node, nodeCount),
	}

	for i := 0; i < nodeCount; i++ {
		id := netgraph.NodeID(fmt.Sprintf("node%d", i))
		g.Nodes[id] = &netgraph.Node{
			ID:                id,
			BandwidthDownBits: uint64(gofakeit.Number(1_000_000, 1_000_000_000)),
			BandwidthUpBits:   uint64(gofakeit.Number(1_000_000, 1_000_000_000)),
		}
	}

	// Chain the nodes so the graph is guaranteed connected, then add a
	// handful of random extra edges for realistic fan-out.
	for i := 1; i < nodeCount; i++ {
		g.Edges = append(g.Edges, randomEdge(
			netgraph.NodeID(fmt.Sprintf("node%d", i-1)),
			netgraph.NodeID(fmt.Sprintf("node%d", i))))
	}
	extra := nodeCount / 2
	for i := 0; i < extra && nodeCount > 2; i++ {
		a := gofakeit.Number(0, nodeCount-1)
		b := gofakeit.Number(0, nodeCount-1)
		if a == b {
			continue
		}
		g.Edges = append(g.Edges, randomEdge(
			netgraph.NodeID(fmt.Sprintf("node%d", a)),
			netgraph.NodeID(fmt.Sprintf("node%d", b))))
	}

	return g
}

func randomEdge(from, to netgraph.NodeID) *netgraph.Edge {
	return &netgraph.Edge{
		From:       from,
		To:         to,
		Latency:    time.Duration(gofakeit.Number(1, 200)) * time.Millisecond,
		PacketLoss: float64(gofakeit.Float32Range(0, 0.05)),
		Undirected: true,
	}
}

// RandomHosts builds count HostOptions entries, attached to nodes
// 0..nodeCount-1; every third entry (index 0, 3, 6, ...) gets a pinned
// IP and the rest are auto-assigned. Names
// are suffixed with a UUID fragment to guarantee uniqueness across
// repeated calls within one test.
func RandomHosts(count, nodeCount int) []config.HostOptions {
	hosts := make([]config.HostOptions, 0, count)
	for i := 0; i < count; i++ {
		h := config.HostOptions{
			Name:          fmt.Sprintf("host%d-%s", i, gofakeit.UUID()[:8]),
			NetworkNodeID: fmt.Sprintf("node%d", i%nodeCount),
			Quantity:      1,
		}
		if i%3 == 0 {
			ip := net.IPv4(10, 0, byte(i/256), byte(i%256)).String()
			h.IPAddr = &ip
		}
		hosts = append(hosts, h)
	}
	return hosts
}
