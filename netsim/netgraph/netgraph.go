// Package netgraph loads the network topology: a graph of nodes carrying
// per-node bandwidth annotations, connected by edges carrying latency and
// packet-loss. It is intentionally a thin in-memory structure — the
// controller discards it once routing has been computed (spec.md §4.4
// RELEASE_GRAPH).
package netgraph

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// NodeID identifies a node in the topology document.
type NodeID string

// Node is one topology node, with the bandwidth caps host registration
// resolves against when a host doesn't specify its own.
type Node struct {
	ID                NodeID `yaml:"id"`
	BandwidthDownBits uint64 `yaml:"bandwidth_down_bits"`
	BandwidthUpBits   uint64 `yaml:"bandwidth_up_bits"`
}

// Edge is a directed or undirected link between two nodes (Undirected
// controls whether the routing layer adds the reverse edge too).
type Edge struct {
	From       NodeID        `yaml:"from"`
	To         NodeID        `yaml:"to"`
	Latency    time.Duration `yaml:"latency"`
	PacketLoss float64       `yaml:"packet_loss"` // in [0, 1]; reliability = 1 - PacketLoss
	Undirected bool          `yaml:"undirected"`
}

// Graph is the parsed topology. Owned by the controller until routing is
// computed; after that the field is released (spec.md §3 invariant 3).
type Graph struct {
	Nodes map[NodeID]*Node
	Edges []*Edge
}

type document struct {
	Nodes []Node `yaml:"nodes"`
	Edges []Edge `yaml:"edges"`
}

// Load parses the topology document at path into a Graph.
func Load(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("netgraph: reading %s: %w", path, err)
	}

	var doc document
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("netgraph: parsing %s: %w", path, err)
	}

	g := &Graph{Nodes: make(map[NodeID]*Node, len(doc.Nodes))}
	for i := range doc.Nodes {
		n := doc.Nodes[i]
		if n.ID == "" {
			return nil, fmt.Errorf("netgraph: %s: node at index %d has empty id", path, i)
		}
		if _, dup := g.Nodes[n.ID]; dup {
			return nil, fmt.Errorf("netgraph: %s: duplicate node id %q", path, n.ID)
		}
		nCopy := n
		g.Nodes[n.ID] = &nCopy
	}

	for i := range doc.Edges {
		e := doc.Edges[i]
		if _, ok := g.Nodes[e.From]; !ok {
			return nil, fmt.Errorf("netgraph: %s: edge %d references unknown node %q", path, i, e.From)
		}
		if _, ok := g.Nodes[e.To]; !ok {
			return nil, fmt.Errorf("netgraph: %s: edge %d references unknown node %q", path, i, e.To)
		}
		eCopy := e
		g.Edges = append(g.Edges, &eCopy)
	}

	return g, nil
}

// Node looks up a node by ID, returning (nil, false) if absent.
func (g *Graph) Node(id NodeID) (*Node, bool) {
	n, ok := g.Nodes[id]
	return n, ok
}

// NeighborEdge is one hop reachable directly from a node.
type NeighborEdge struct {
	Node        NodeID
	Latency     time.Duration
	Reliability float64
}

// Neighbors returns, for each edge touching id, the directly reachable
// neighbor. Undirected edges contribute in both directions.
func (g *Graph) Neighbors(id NodeID) []NeighborEdge {
	var out []NeighborEdge
	for _, e := range g.Edges {
		if e.From == id {
			out = append(out, NeighborEdge{e.To, e.Latency, 1 - e.PacketLoss})
		}
		if e.Undirected && e.To == id {
			out = append(out, NeighborEdge{e.From, e.Latency, 1 - e.PacketLoss})
		}
	}
	return out
}
